package livetest

import (
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/liveworkshop/go/internal/models"
)

// Fixture is a seeded workshop with two sessions.
type Fixture struct {
	Store    *Store
	Workshop models.Workshop
	Sessions []models.Session
}

// NewFixture seeds a workshop with one intro slide, two sessions
// (300s/120s and 600s/240s) and one outro slide.
func NewFixture(createdAt time.Time) *Fixture {
	w := models.Workshop{
		ID:          uuid.New(),
		Title:       "Build with agents",
		IntroSlides: []models.SlideContent{{Title: "Welcome", Body: "Grab a seat"}},
		OutroSlides: []models.SlideContent{{Title: "Thanks", Body: "See you next time"}},
		CreatedAt:   createdAt,
	}
	sessions := []models.Session{
		{ID: uuid.New(), Title: "Warmup", Position: 1, BuildDurationSec: 300, DiscussDurationSec: 120},
		{ID: uuid.New(), Title: "Main build", Position: 2, BuildDurationSec: 600, DiscussDurationSec: 240},
	}

	store := NewStore()
	store.AddWorkshop(w, sessions...)
	for i := range sessions {
		sessions[i].WorkshopID = w.ID
	}
	return &Fixture{Store: store, Workshop: w, Sessions: sessions}
}
