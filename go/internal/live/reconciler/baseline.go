package reconciler

import (
	"time"

	"github.com/mcdev12/liveworkshop/go/internal/models"
)

// Baseline is the last received snapshot plus the local time it arrived.
// Display values are computed from it with local arithmetic only.
type Baseline struct {
	state     *models.LiveState
	remaining int
	at        time.Time
	running   bool
}

// Apply replaces the baseline with state, received at receivedAt. The most
// recent call always wins; there is no ordering check.
func (b *Baseline) Apply(state *models.LiveState, receivedAt time.Time) {
	if state == nil {
		return
	}
	copied := *state
	b.state = &copied
	b.remaining = state.RemainingSeconds
	b.at = receivedAt
	b.running = state.TimerRunning
}

// Ready reports whether any snapshot has been applied.
func (b *Baseline) Ready() bool {
	return b.state != nil
}

// Running reports whether the baseline timer is counting down.
func (b *Baseline) Running() bool {
	return b.running
}

// Display returns the seconds to show at now: whole elapsed seconds are taken
// off the baseline while running, and it never drops below zero.
func (b *Baseline) Display(now time.Time) int {
	if !b.running {
		return b.remaining
	}
	elapsed := now.Sub(b.at)
	if elapsed < 0 {
		elapsed = 0
	}
	display := b.remaining - int(elapsed/time.Second)
	if display < 0 {
		return 0
	}
	return display
}

// View returns the baseline snapshot with the remaining value for now.
func (b *Baseline) View(now time.Time) (models.LiveState, bool) {
	if b.state == nil {
		return models.LiveState{}, false
	}
	view := *b.state
	view.RemainingSeconds = b.Display(now)
	return view, true
}
