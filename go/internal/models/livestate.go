package models

import (
	"time"

	"github.com/google/uuid"
)

// SlideKind classifies a slide in the deck.
type SlideKind string

const (
	SlideKindIntro   SlideKind = "intro"
	SlideKindSession SlideKind = "session"
	SlideKindOutro   SlideKind = "outro"
)

// Slide is one entry of the derived deck. It is never persisted.
type Slide struct {
	Index     int        `json:"index"`
	Kind      SlideKind  `json:"kind"`
	Title     string     `json:"title"`
	Body      string     `json:"body,omitempty"`
	SessionID *uuid.UUID `json:"session_id,omitempty"`
}

// Alarm describes the run-out alarm.
type Alarm struct {
	Active      bool       `json:"active"`
	Muted       bool       `json:"muted"`
	SnoozeUntil *time.Time `json:"snooze_until,omitempty"`
}

// LiveState is a self-sufficient snapshot of a workshop at one instant.
// It is computed on every read and must not be cached past a tick.
type LiveState struct {
	WorkshopID       uuid.UUID    `json:"workshop_id"`
	ActiveSlideIndex int          `json:"active_slide_index"`
	Slides           []Slide      `json:"slides"`
	ActiveSessionID  *uuid.UUID   `json:"active_session_id,omitempty"`
	Phase            DisplayPhase `json:"phase"`
	RemainingSeconds int          `json:"remaining_seconds"`
	TotalSeconds     int          `json:"total_seconds"`
	TimerRunning     bool         `json:"timer_running"`
	LastTickAt       time.Time    `json:"last_tick_at"`
	DisplayMode      DisplayMode  `json:"display_mode"`
	Alarm            Alarm        `json:"alarm"`
	UpdatedAt        time.Time    `json:"updated_at"`
}

// ActiveSlide returns the slide the pointer selects, or nil when the index
// falls outside the deck.
func (s *LiveState) ActiveSlide() *Slide {
	if s.ActiveSlideIndex < 0 || s.ActiveSlideIndex >= len(s.Slides) {
		return nil
	}
	return &s.Slides[s.ActiveSlideIndex]
}
