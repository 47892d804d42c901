package models

import (
	"time"

	"github.com/google/uuid"
)

// SlideContent is a static intro or outro slide configured on a workshop.
type SlideContent struct {
	Title string `json:"title" yaml:"title"`
	Body  string `json:"body,omitempty" yaml:"body"`
}

// Workshop is a single live event.
type Workshop struct {
	ID          uuid.UUID      `json:"id"`
	Title       string         `json:"title"`
	IntroSlides []SlideContent `json:"intro_slides"`
	OutroSlides []SlideContent `json:"outro_slides"`
	CreatedAt   time.Time      `json:"created_at"`
}

// Session is one schedulable block of a workshop.
type Session struct {
	ID                 uuid.UUID `json:"id"`
	WorkshopID         uuid.UUID `json:"workshop_id"`
	Title              string    `json:"title"`
	Position           int       `json:"position"`
	BuildDurationSec   int       `json:"build_duration_sec"`
	DiscussDurationSec int       `json:"discuss_duration_sec"`
}

// Duration returns the configured duration in seconds for a phase kind.
func (s Session) Duration(kind PhaseKind) int {
	if kind == PhaseKindDiscuss {
		return s.DiscussDurationSec
	}
	return s.BuildDurationSec
}

// SessionTimer is the persisted checkpoint of a session's countdown.
// RemainingSeconds is only valid as of UpdatedAt; the live value is always
// recomputed from it. RemainderMillis carries the sub-second part so that
// repeated checkpoints never lose time to truncation.
type SessionTimer struct {
	SessionID        uuid.UUID  `json:"session_id"`
	Phase            Phase      `json:"phase"`
	Kind             PhaseKind  `json:"kind"`
	RemainingSeconds int        `json:"remaining_seconds"`
	RemainderMillis  int        `json:"remainder_ms"`
	IsRunning        bool       `json:"is_running"`
	AlarmMuted       bool       `json:"alarm_muted"`
	SnoozeUntil      *time.Time `json:"snooze_until,omitempty"`
	Version          int64      `json:"version"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// Remaining returns the checkpointed countdown including the sub-second carry.
func (t *SessionTimer) Remaining() time.Duration {
	return time.Duration(t.RemainingSeconds)*time.Second + time.Duration(t.RemainderMillis)*time.Millisecond
}

// SetRemaining stores d at millisecond precision, clamped at zero.
func (t *SessionTimer) SetRemaining(d time.Duration) {
	if d < 0 {
		d = 0
	}
	ms := d.Milliseconds()
	t.RemainingSeconds = int(ms / 1000)
	t.RemainderMillis = int(ms % 1000)
}

// WorkshopPointer tracks what a workshop is currently showing.
type WorkshopPointer struct {
	WorkshopID       uuid.UUID   `json:"workshop_id"`
	ActiveSessionID  *uuid.UUID  `json:"active_session_id,omitempty"`
	ActiveSlideIndex int         `json:"active_slide_index"`
	DisplayMode      DisplayMode `json:"display_mode"`
	UpdatedAt        time.Time   `json:"updated_at"`
}
