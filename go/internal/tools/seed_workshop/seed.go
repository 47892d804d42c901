package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/liveworkshop/go/internal/models"
	"gopkg.in/yaml.v3"
)

// seedNamespace derives stable IDs for entries that omit one, so reseeding
// the same file updates rows instead of duplicating them.
var seedNamespace = uuid.MustParse("6f1c1f0e-5a7e-4c55-9d0b-2f4b1f3c8a11")

// SeedFile mirrors the YAML layout of a workshop definition.
type SeedFile struct {
	ID          string                `yaml:"id"`
	Title       string                `yaml:"title"`
	IntroSlides []models.SlideContent `yaml:"intro_slides"`
	OutroSlides []models.SlideContent `yaml:"outro_slides"`
	Sessions    []SeedSession         `yaml:"sessions"`
}

// SeedSession is one session entry. Durations use Go syntax ("15m").
type SeedSession struct {
	ID      string        `yaml:"id"`
	Title   string        `yaml:"title"`
	Build   time.Duration `yaml:"build"`
	Discuss time.Duration `yaml:"discuss"`
}

// parseSeed decodes and validates a workshop definition.
func parseSeed(data []byte) (*models.Workshop, []models.Session, error) {
	var file SeedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, nil, fmt.Errorf("parse yaml: %w", err)
	}

	title := strings.TrimSpace(file.Title)
	if title == "" {
		return nil, nil, errors.New("workshop title is required")
	}

	workshopID, err := seedID(file.ID, title)
	if err != nil {
		return nil, nil, fmt.Errorf("workshop id: %w", err)
	}

	workshop := &models.Workshop{
		ID:          workshopID,
		Title:       title,
		IntroSlides: file.IntroSlides,
		OutroSlides: file.OutroSlides,
	}

	sessions := make([]models.Session, 0, len(file.Sessions))
	for i, s := range file.Sessions {
		if strings.TrimSpace(s.Title) == "" {
			return nil, nil, fmt.Errorf("session %d: title is required", i+1)
		}
		if s.Build < 0 || s.Discuss < 0 {
			return nil, nil, fmt.Errorf("session %q: durations cannot be negative", s.Title)
		}
		id, err := seedID(s.ID, workshopID.String()+"/"+s.Title)
		if err != nil {
			return nil, nil, fmt.Errorf("session %q id: %w", s.Title, err)
		}
		sessions = append(sessions, models.Session{
			ID:                 id,
			WorkshopID:         workshopID,
			Title:              s.Title,
			Position:           i + 1,
			BuildDurationSec:   int(s.Build / time.Second),
			DiscussDurationSec: int(s.Discuss / time.Second),
		})
	}

	return workshop, sessions, nil
}

func seedID(raw, name string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.NewSHA1(seedNamespace, []byte(name)), nil
	}
	return uuid.Parse(raw)
}
