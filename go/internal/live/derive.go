package live

import (
	"time"

	"github.com/mcdev12/liveworkshop/go/internal/models"
)

// DeriveInput is the persisted state a snapshot is computed from.
type DeriveInput struct {
	Pointer *models.WorkshopPointer
	Slides  []models.Slide
	// Session and Timer are nil when no session is active.
	Session *models.Session
	Timer   *models.SessionTimer
}

// Reconcile computes the live remaining seconds of a running timer from its
// checkpoint. The result is truncated and never negative.
func Reconcile(remaining int, since, now time.Time) int {
	return int(ReconcileDuration(time.Duration(remaining)*time.Second, since, now) / time.Second)
}

// ReconcileDuration is Reconcile without truncation. A clock behind the
// checkpoint counts as no time passed.
func ReconcileDuration(remaining time.Duration, since, now time.Time) time.Duration {
	elapsed := now.Sub(since)
	if elapsed < 0 {
		elapsed = 0
	}
	if remaining <= elapsed {
		return 0
	}
	return remaining - elapsed
}

// DeriveState turns persisted records plus wall-clock time into a LiveState.
// It is pure: calling it never changes the inputs.
func DeriveState(in DeriveInput, now time.Time) models.LiveState {
	p := in.Pointer
	state := models.LiveState{
		WorkshopID:       p.WorkshopID,
		ActiveSlideIndex: p.ActiveSlideIndex,
		Slides:           in.Slides,
		ActiveSessionID:  p.ActiveSessionID,
		Phase:            models.DisplayPhaseIdle,
		DisplayMode:      p.DisplayMode,
		LastTickAt:       p.UpdatedAt,
		UpdatedAt:        p.UpdatedAt,
	}

	t := in.Timer
	if p.ActiveSessionID == nil || t == nil {
		return state
	}

	left := t.Remaining()
	lastTick := t.UpdatedAt
	if t.IsRunning {
		left = ReconcileDuration(left, t.UpdatedAt, now)
		lastTick = now
	}
	reconciled := int(left / time.Second)

	state.RemainingSeconds = reconciled
	state.TimerRunning = t.IsRunning
	state.LastTickAt = lastTick
	state.Phase = displayPhase(t, left)

	state.TotalSeconds = reconciled
	if in.Session != nil {
		state.TotalSeconds = in.Session.Duration(t.Kind)
	}

	state.Alarm = models.Alarm{
		Active:      t.Phase == models.PhaseComplete || (left == 0 && !t.IsRunning),
		Muted:       t.AlarmMuted,
		SnoozeUntil: t.SnoozeUntil,
	}

	if t.UpdatedAt.After(state.UpdatedAt) {
		state.UpdatedAt = t.UpdatedAt
	}
	return state
}

func displayPhase(t *models.SessionTimer, left time.Duration) models.DisplayPhase {
	switch t.Phase {
	case models.PhaseComplete:
		return models.DisplayPhaseComplete
	case models.PhaseTransition:
		return models.DisplayPhaseTransition
	case models.PhasePaused:
		return models.DisplayPhasePaused
	}

	// A stopped BUILD/DISCUSS timer with time left was paused; one at zero ran
	// out and keeps its phase so the alarm shows against it.
	if !t.IsRunning && left > 0 {
		return models.DisplayPhasePaused
	}
	if t.Phase == models.PhaseDiscuss {
		return models.DisplayPhaseDiscuss
	}
	return models.DisplayPhaseBuild
}
