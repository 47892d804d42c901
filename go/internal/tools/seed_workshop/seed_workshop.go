package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mcdev12/liveworkshop/go/internal/dbconfig"
	"github.com/mcdev12/liveworkshop/go/internal/models"
	"github.com/mcdev12/liveworkshop/go/internal/sqlutil"
	"github.com/sqlc-dev/pqtype"
)

func main() {
	path := "go/internal/assets/workshop.yaml"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	// 1) Load the YAML definition
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read YAML: %v\n", err)
		os.Exit(1)
	}
	workshop, sessions, err := parseSeed(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid workshop definition: %v\n", err)
		os.Exit(1)
	}

	// 2) Connect using shared dbconfig
	ctx := context.Background()
	cfg := dbconfig.NewConfigFromEnv()
	pool, err := pgxpool.New(ctx, cfg.DSN())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	// 3) Upsert everything in one transaction
	err = pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		return seed(ctx, tx, workshop, sessions)
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "seed failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Seeded workshop %q (%s) with %d sessions\n", workshop.Title, workshop.ID, len(sessions))
	for _, s := range sessions {
		fmt.Printf("  %d. %s  %s  build=%ds discuss=%ds\n", s.Position, s.ID, s.Title, s.BuildDurationSec, s.DiscussDurationSec)
	}
}

func seed(ctx context.Context, tx pgx.Tx, workshop *models.Workshop, sessions []models.Session) error {
	intro, outro, err := slideColumns(workshop)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
        INSERT INTO workshops (id, title, intro_slides, outro_slides)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (id) DO UPDATE
        SET title = EXCLUDED.title,
            intro_slides = EXCLUDED.intro_slides,
            outro_slides = EXCLUDED.outro_slides
    `, workshop.ID.String(), workshop.Title, intro, outro)
	if err != nil {
		return fmt.Errorf("upsert workshop: %w", err)
	}

	// Positions are unique per workshop. Negate the old layout before writing
	// the new one.
	if _, err := tx.Exec(ctx, `UPDATE sessions SET position = -position WHERE workshop_id = $1`, workshop.ID.String()); err != nil {
		return fmt.Errorf("release session positions: %w", err)
	}

	for _, s := range sessions {
		_, err := tx.Exec(ctx, `
            INSERT INTO sessions (id, workshop_id, title, position, build_duration_sec, discuss_duration_sec)
            VALUES ($1, $2, $3, $4, $5, $6)
            ON CONFLICT (id) DO UPDATE
            SET title = EXCLUDED.title,
                position = EXCLUDED.position,
                build_duration_sec = EXCLUDED.build_duration_sec,
                discuss_duration_sec = EXCLUDED.discuss_duration_sec
        `, s.ID.String(), workshop.ID.String(), s.Title, s.Position, s.BuildDurationSec, s.DiscussDurationSec)
		if err != nil {
			return fmt.Errorf("upsert session %q: %w", s.Title, err)
		}
	}

	// Sessions dropped from the file still hold a released position.
	if _, err := tx.Exec(ctx, `DELETE FROM sessions WHERE workshop_id = $1 AND position < 0`, workshop.ID.String()); err != nil {
		return fmt.Errorf("delete removed sessions: %w", err)
	}

	_, err = tx.Exec(ctx, `
        INSERT INTO workshop_pointers (workshop_id)
        VALUES ($1)
        ON CONFLICT (workshop_id) DO NOTHING
    `, workshop.ID.String())
	if err != nil {
		return fmt.Errorf("create workshop pointer: %w", err)
	}
	return nil
}

// slideColumns encodes the workshop's slides as JSONB parameters. A workshop
// without slides stores an empty array, not NULL.
func slideColumns(workshop *models.Workshop) (intro, outro pqtype.NullRawMessage, err error) {
	introSlides, outroSlides := workshop.IntroSlides, workshop.OutroSlides
	if introSlides == nil {
		introSlides = []models.SlideContent{}
	}
	if outroSlides == nil {
		outroSlides = []models.SlideContent{}
	}

	intro, err = sqlutil.ToNullJSON(introSlides)
	if err != nil {
		return intro, outro, fmt.Errorf("intro slides: %w", err)
	}
	outro, err = sqlutil.ToNullJSON(outroSlides)
	if err != nil {
		return intro, outro, fmt.Errorf("outro slides: %w", err)
	}
	return intro, outro, nil
}
