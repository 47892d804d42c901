// Package reconciler keeps a screen's countdown ticking between snapshots.
package reconciler

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/liveworkshop/go/internal/models"
	"github.com/rs/zerolog/log"
)

// Completer ends a phase when the local countdown hits zero.
type Completer interface {
	CompletePhase(ctx context.Context, workshopID, sessionID uuid.UUID) (*models.LiveState, error)
}

// Config wires a Reconciler.
type Config struct {
	Clock clockwork.Clock
	// OnView receives every computed view. It runs on the reconciler goroutine.
	OnView func(view models.LiveState)
	// Completer is optional; only the controller screen sets it.
	Completer Completer
	// TickInterval defaults to one second.
	TickInterval time.Duration
}

type snapshot struct {
	state      *models.LiveState
	receivedAt time.Time
}

// Reconciler owns one Baseline on a single goroutine. Snapshots go in through
// Apply; views come out through OnView on every snapshot and every tick.
type Reconciler struct {
	clock     clockwork.Clock
	ticker    clockwork.Ticker
	onView    func(models.LiveState)
	completer Completer

	snapshots chan snapshot
	done      chan struct{}

	// Owned by the Run goroutine.
	baseline Baseline
	fired    bool
}

// New creates a Reconciler. The ticker starts immediately, so call Run soon after.
func New(cfg Config) *Reconciler {
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = time.Second
	}
	if cfg.OnView == nil {
		cfg.OnView = func(models.LiveState) {}
	}
	return &Reconciler{
		clock:     cfg.Clock,
		ticker:    cfg.Clock.NewTicker(cfg.TickInterval),
		onView:    cfg.OnView,
		completer: cfg.Completer,
		snapshots: make(chan snapshot, 16),
		done:      make(chan struct{}),
	}
}

// Apply hands a snapshot to the reconciler, stamped with the local receive time.
func (r *Reconciler) Apply(state *models.LiveState) {
	if state == nil {
		return
	}
	select {
	case r.snapshots <- snapshot{state: state, receivedAt: r.clock.Now()}:
	case <-r.done:
	}
}

// Run processes snapshots and ticks until ctx is cancelled.
func (r *Reconciler) Run(ctx context.Context) {
	defer close(r.done)
	defer r.ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case s := <-r.snapshots:
			r.baseline.Apply(s.state, s.receivedAt)
			if s.state.TimerRunning && s.state.RemainingSeconds > 0 {
				r.fired = false
			}
			r.emit(ctx, r.clock.Now())

		case <-r.ticker.Chan():
			r.emit(ctx, r.clock.Now())
		}
	}
}

func (r *Reconciler) emit(ctx context.Context, now time.Time) {
	view, ok := r.baseline.View(now)
	if !ok {
		return
	}
	r.onView(view)

	if r.baseline.Running() && view.RemainingSeconds == 0 {
		r.complete(ctx, view)
	}
}

// complete asks the Completer to end the phase once per run-out.
func (r *Reconciler) complete(ctx context.Context, view models.LiveState) {
	if r.completer == nil || r.fired || view.ActiveSessionID == nil {
		return
	}
	r.fired = true

	workshopID, sessionID := view.WorkshopID, *view.ActiveSessionID
	go func() {
		state, err := r.completer.CompletePhase(ctx, workshopID, sessionID)
		if err != nil {
			log.Warn().Err(err).
				Str("workshop_id", workshopID.String()).
				Str("session_id", sessionID.String()).
				Msg("auto complete failed")
			return
		}
		r.Apply(state)
	}()
}
