package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mcdev12/liveworkshop/go/internal/live"
	"github.com/mcdev12/liveworkshop/go/internal/models"
	"github.com/mcdev12/liveworkshop/go/internal/sqlutil"
	"github.com/sqlc-dev/pqtype"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Repository implements live.Store on Postgres
type Repository struct {
	// db is nil once the repository is bound to a transaction.
	db *sql.DB
	q  DBTX
}

var _ live.Store = (*Repository)(nil)

// NewRepository creates a new live repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db, q: db}
}

// WithinTx runs fn with a repository bound to one transaction. Calls made
// on an already bound repository join the outer transaction.
func (r *Repository) WithinTx(ctx context.Context, fn func(live.Store) error) error {
	if r.db == nil {
		return fn(r)
	}
	return sqlutil.Run(ctx, r.db,
		func(tx *sql.Tx) *Repository { return &Repository{q: tx} },
		func(q *Repository) error { return fn(q) },
	)
}

const getWorkshopQuery = `SELECT id, title, intro_slides, outro_slides, created_at
FROM workshops WHERE id = $1`

// GetWorkshop retrieves a workshop and its static slides
func (r *Repository) GetWorkshop(ctx context.Context, id uuid.UUID) (*models.Workshop, error) {
	var (
		w            models.Workshop
		intro, outro pqtype.NullRawMessage
	)
	err := r.q.QueryRowContext(ctx, getWorkshopQuery, id).
		Scan(&w.ID, &w.Title, &intro, &outro, &w.CreatedAt)
	if err != nil {
		return nil, notFound(err, "workshop", id)
	}

	if err := sqlutil.FromNullJSON(intro, &w.IntroSlides); err != nil {
		return nil, fmt.Errorf("workshop %s intro slides: %w", id, err)
	}
	if err := sqlutil.FromNullJSON(outro, &w.OutroSlides); err != nil {
		return nil, fmt.Errorf("workshop %s outro slides: %w", id, err)
	}
	return &w, nil
}

const sessionColumns = `id, workshop_id, title, position, build_duration_sec, discuss_duration_sec`

// ListSessions returns a workshop's sessions in running order
func (r *Repository) ListSessions(ctx context.Context, workshopID uuid.UUID) ([]models.Session, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE workshop_id = $1 ORDER BY position, id`, workshopID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []models.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sessions: %w", err)
	}
	return sessions, nil
}

// GetSession retrieves a session by ID
func (r *Repository) GetSession(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = $1`, id)
	s, err := scanSession(row)
	if err != nil {
		return nil, notFound(err, "session", id)
	}
	return s, nil
}

const getPointerQuery = `SELECT workshop_id, active_session_id, active_slide_index, display_mode, updated_at
FROM workshop_pointers WHERE workshop_id = $1`

// GetPointer retrieves the workshop's live pointer
func (r *Repository) GetPointer(ctx context.Context, workshopID uuid.UUID) (*models.WorkshopPointer, error) {
	var (
		p      models.WorkshopPointer
		active uuid.NullUUID
	)
	err := r.q.QueryRowContext(ctx, getPointerQuery, workshopID).
		Scan(&p.WorkshopID, &active, &p.ActiveSlideIndex, &p.DisplayMode, &p.UpdatedAt)
	if err != nil {
		return nil, notFound(err, "workshop pointer", workshopID)
	}
	p.ActiveSessionID = sqlutil.FromNullUUID(active)
	return &p, nil
}

const savePointerQuery = `INSERT INTO workshop_pointers
    (workshop_id, active_session_id, active_slide_index, display_mode, updated_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (workshop_id) DO UPDATE SET
    active_session_id  = EXCLUDED.active_session_id,
    active_slide_index = EXCLUDED.active_slide_index,
    display_mode       = EXCLUDED.display_mode,
    updated_at         = EXCLUDED.updated_at`

// SavePointer upserts the workshop's live pointer (last write wins)
func (r *Repository) SavePointer(ctx context.Context, p *models.WorkshopPointer) error {
	_, err := r.q.ExecContext(ctx, savePointerQuery,
		p.WorkshopID,
		sqlutil.ToNullUUID(p.ActiveSessionID),
		p.ActiveSlideIndex,
		string(p.DisplayMode),
		p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save workshop pointer: %w", err)
	}
	return nil
}

const getTimerQuery = `SELECT session_id, phase, kind, remaining_seconds, remainder_ms, is_running,
    alarm_muted, snooze_until, version, updated_at
FROM session_timers WHERE session_id = $1`

// GetTimer retrieves a session's timer checkpoint
func (r *Repository) GetTimer(ctx context.Context, sessionID uuid.UUID) (*models.SessionTimer, error) {
	var (
		t      models.SessionTimer
		snooze sql.NullTime
	)
	err := r.q.QueryRowContext(ctx, getTimerQuery, sessionID).Scan(
		&t.SessionID, &t.Phase, &t.Kind, &t.RemainingSeconds, &t.RemainderMillis, &t.IsRunning,
		&t.AlarmMuted, &snooze, &t.Version, &t.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err, "timer for session", sessionID)
	}
	if !t.Phase.Valid() {
		return nil, fmt.Errorf("timer for session %s has unknown phase %q", sessionID, t.Phase)
	}
	t.SnoozeUntil = sqlutil.FromSqlTime(snooze)
	return &t, nil
}

const insertTimerQuery = `INSERT INTO session_timers
    (session_id, phase, kind, remaining_seconds, is_running, alarm_muted, snooze_until, updated_at,
     remainder_ms, version)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 1)
ON CONFLICT (session_id) DO NOTHING`

const updateTimerQuery = `UPDATE session_timers SET
    phase = $2, kind = $3, remaining_seconds = $4, is_running = $5, alarm_muted = $6,
    snooze_until = $7, updated_at = $8, remainder_ms = $9, version = version + 1
WHERE session_id = $1 AND version = $10`

// SaveTimer writes a timer checkpoint guarded by its version
func (r *Repository) SaveTimer(ctx context.Context, t *models.SessionTimer) error {
	args := []any{
		t.SessionID,
		string(t.Phase),
		string(t.Kind),
		t.RemainingSeconds,
		t.IsRunning,
		t.AlarmMuted,
		sqlutil.ToSqlTime(t.SnoozeUntil),
		t.UpdatedAt,
		t.RemainderMillis,
	}

	query := insertTimerQuery
	if t.Version > 0 {
		query = updateTimerQuery
		args = append(args, t.Version)
	}

	res, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to save timer: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: timer for session %s changed since version %d", live.ErrConflict, t.SessionID, t.Version)
	}

	t.Version++
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*models.Session, error) {
	var s models.Session
	if err := row.Scan(&s.ID, &s.WorkshopID, &s.Title, &s.Position, &s.BuildDurationSec, &s.DiscussDurationSec); err != nil {
		return nil, err
	}
	return &s, nil
}

func notFound(err error, what string, id uuid.UUID) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s %s", live.ErrNotFound, what, id)
	}
	return fmt.Errorf("failed to get %s %s: %w", what, id, err)
}
