package live_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/liveworkshop/go/internal/live"
	"github.com/mcdev12/liveworkshop/go/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestReconcile(t *testing.T) {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		remaining int
		elapsed   time.Duration
		want      int
	}{
		{name: "no time passed", remaining: 300, elapsed: 0, want: 300},
		{name: "ninety seconds", remaining: 300, elapsed: 90 * time.Second, want: 210},
		{name: "fractional truncates", remaining: 300, elapsed: 1500 * time.Millisecond, want: 298},
		{name: "clamps at zero", remaining: 30, elapsed: 45 * time.Second, want: 0},
		{name: "clock behind checkpoint", remaining: 100, elapsed: -20 * time.Second, want: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, live.Reconcile(tt.remaining, base, base.Add(tt.elapsed)))
		})
	}
}

func TestReconcileDuration(t *testing.T) {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	assert.Equal(t, 299500*time.Millisecond, live.ReconcileDuration(300*time.Second, base, base.Add(500*time.Millisecond)))
	assert.Equal(t, time.Duration(0), live.ReconcileDuration(time.Second, base, base.Add(2*time.Second)))
	assert.Equal(t, 5*time.Second, live.ReconcileDuration(5*time.Second, base, base.Add(-time.Second)))

	// Chained checkpoints lose nothing to truncation.
	left := 300 * time.Second
	at := base
	for i := 0; i < 10; i++ {
		next := at.Add(500 * time.Millisecond)
		left = live.ReconcileDuration(left, at, next)
		at = next
	}
	assert.Equal(t, 295*time.Second, left)
}

func TestDeriveState(t *testing.T) {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	workshopID := uuid.New()
	session := &models.Session{ID: uuid.New(), WorkshopID: workshopID, BuildDurationSec: 300, DiscussDurationSec: 120}
	sessionID := session.ID

	pointer := func(active *uuid.UUID) *models.WorkshopPointer {
		return &models.WorkshopPointer{
			WorkshopID:       workshopID,
			ActiveSessionID:  active,
			ActiveSlideIndex: 1,
			DisplayMode:      models.DisplayModeFocus,
			UpdatedAt:        base,
		}
	}

	t.Run("no active session is idle", func(t *testing.T) {
		state := live.DeriveState(live.DeriveInput{Pointer: pointer(nil)}, base.Add(time.Hour))

		assert.Equal(t, models.DisplayPhaseIdle, state.Phase)
		assert.Equal(t, 0, state.RemainingSeconds)
		assert.Equal(t, 0, state.TotalSeconds)
		assert.False(t, state.Alarm.Active)
		assert.Equal(t, models.DisplayModeFocus, state.DisplayMode)
		assert.Equal(t, 1, state.ActiveSlideIndex)
	})

	t.Run("running timer reconciles", func(t *testing.T) {
		timer := &models.SessionTimer{
			SessionID: sessionID, Phase: models.PhaseBuild, Kind: models.PhaseKindBuild,
			RemainingSeconds: 300, IsRunning: true, UpdatedAt: base,
		}
		now := base.Add(90 * time.Second)
		state := live.DeriveState(live.DeriveInput{Pointer: pointer(&sessionID), Session: session, Timer: timer}, now)

		assert.Equal(t, models.DisplayPhaseBuild, state.Phase)
		assert.Equal(t, 210, state.RemainingSeconds)
		assert.Equal(t, 300, state.TotalSeconds)
		assert.True(t, state.TimerRunning)
		assert.Equal(t, now, state.LastTickAt)
		assert.False(t, state.Alarm.Active)
		assert.Equal(t, 300, timer.RemainingSeconds, "deriving must not touch the checkpoint")
	})

	t.Run("stopped timer is frozen", func(t *testing.T) {
		timer := &models.SessionTimer{
			SessionID: sessionID, Phase: models.PhaseDiscuss, Kind: models.PhaseKindDiscuss,
			RemainingSeconds: 75, UpdatedAt: base,
		}
		state := live.DeriveState(live.DeriveInput{Pointer: pointer(&sessionID), Session: session, Timer: timer}, base.Add(10*time.Minute))

		assert.Equal(t, models.DisplayPhasePaused, state.Phase)
		assert.Equal(t, 75, state.RemainingSeconds)
		assert.Equal(t, 120, state.TotalSeconds)
		assert.Equal(t, base, state.LastTickAt)
		assert.False(t, state.Alarm.Active)
	})

	t.Run("run out timer alarms", func(t *testing.T) {
		timer := &models.SessionTimer{
			SessionID: sessionID, Phase: models.PhaseBuild, Kind: models.PhaseKindBuild,
			RemainingSeconds: 0, UpdatedAt: base,
		}
		state := live.DeriveState(live.DeriveInput{Pointer: pointer(&sessionID), Session: session, Timer: timer}, base)

		assert.Equal(t, models.DisplayPhaseBuild, state.Phase)
		assert.True(t, state.Alarm.Active)
	})

	t.Run("running past zero does not alarm until stopped", func(t *testing.T) {
		timer := &models.SessionTimer{
			SessionID: sessionID, Phase: models.PhaseBuild, Kind: models.PhaseKindBuild,
			RemainingSeconds: 10, IsRunning: true, UpdatedAt: base,
		}
		state := live.DeriveState(live.DeriveInput{Pointer: pointer(&sessionID), Session: session, Timer: timer}, base.Add(time.Minute))

		assert.Equal(t, 0, state.RemainingSeconds)
		assert.False(t, state.Alarm.Active)
	})

	t.Run("complete alarms and keeps mute state", func(t *testing.T) {
		snooze := base.Add(time.Minute)
		timer := &models.SessionTimer{
			SessionID: sessionID, Phase: models.PhaseComplete, Kind: models.PhaseKindBuild,
			AlarmMuted: true, SnoozeUntil: &snooze, UpdatedAt: base.Add(time.Second),
		}
		state := live.DeriveState(live.DeriveInput{Pointer: pointer(&sessionID), Session: session, Timer: timer}, base.Add(time.Hour))

		assert.Equal(t, models.DisplayPhaseComplete, state.Phase)
		assert.True(t, state.Alarm.Active)
		assert.True(t, state.Alarm.Muted)
		assert.Equal(t, &snooze, state.Alarm.SnoozeUntil)
		assert.Equal(t, base.Add(time.Second), state.UpdatedAt)
	})

	t.Run("active session without session config totals reconciled", func(t *testing.T) {
		timer := &models.SessionTimer{
			SessionID: sessionID, Phase: models.PhaseBuild, Kind: models.PhaseKindBuild,
			RemainingSeconds: 42, UpdatedAt: base,
		}
		state := live.DeriveState(live.DeriveInput{Pointer: pointer(&sessionID), Timer: timer}, base)
		assert.Equal(t, 42, state.TotalSeconds)
	})

	t.Run("sub-second remainder counts toward the reconciled value", func(t *testing.T) {
		timer := &models.SessionTimer{
			SessionID: sessionID, Phase: models.PhaseBuild, Kind: models.PhaseKindBuild,
			RemainingSeconds: 10, RemainderMillis: 700, IsRunning: true, UpdatedAt: base,
		}
		state := live.DeriveState(live.DeriveInput{Pointer: pointer(&sessionID), Session: session, Timer: timer}, base.Add(1500*time.Millisecond))
		assert.Equal(t, 9, state.RemainingSeconds)
	})

	t.Run("legacy paused row", func(t *testing.T) {
		timer := &models.SessionTimer{
			SessionID: sessionID, Phase: models.PhasePaused, Kind: models.PhaseKindDiscuss,
			RemainingSeconds: 50, UpdatedAt: base,
		}
		state := live.DeriveState(live.DeriveInput{Pointer: pointer(&sessionID), Session: session, Timer: timer}, base)
		assert.Equal(t, models.DisplayPhasePaused, state.Phase)
	})
}
