package live

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/liveworkshop/go/internal/models"
	"github.com/rs/zerolog/log"
)

// App is the command layer. It is the only writer of timer and pointer
// records, and every command answers with a freshly derived snapshot.
//
// App holds no timer state of its own; the countdown lives in the persisted
// checkpoint and is recomputed on each call.
type App struct {
	store Store
	auth  Authorizer
	clock clockwork.Clock
}

// NewApp creates a new live App
func NewApp(store Store, auth Authorizer, clock clockwork.Clock) *App {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &App{
		store: store,
		auth:  auth,
		clock: clock,
	}
}

// Derive returns the current snapshot of a workshop. It is safe to call at
// any time and needs no controller authority.
func (a *App) Derive(ctx context.Context, workshopID uuid.UUID) (*models.LiveState, error) {
	return a.derive(ctx, workshopID, a.clock.Now())
}

// StartPhase arms a session's timer with the configured duration for kind
// and makes the session the workshop's active one.
func (a *App) StartPhase(ctx context.Context, workshopID, sessionID uuid.UUID, kind models.PhaseKind) (*models.LiveState, error) {
	identity, err := a.requireController(ctx, CommandStart)
	if err != nil {
		return nil, err
	}
	if kind != models.PhaseKindBuild && kind != models.PhaseKindDiscuss {
		return nil, fmt.Errorf("%w: invalid phase kind %q", ErrValidation, kind)
	}

	session, err := a.sessionInWorkshop(ctx, workshopID, sessionID)
	if err != nil {
		return nil, err
	}

	now := a.clock.Now()
	err = a.store.WithinTx(ctx, func(tx Store) error {
		timer, err := tx.GetTimer(ctx, sessionID)
		switch {
		case errors.Is(err, ErrNotFound):
			timer = &models.SessionTimer{SessionID: sessionID}
		case err != nil:
			return fmt.Errorf("failed to get timer: %w", err)
		}

		phase, err := NextPhase(timer.Phase, kind, CommandStart)
		if err != nil {
			return err
		}
		timer.Phase = phase
		timer.Kind = kind
		timer.SetRemaining(time.Duration(session.Duration(kind)) * time.Second)
		timer.IsRunning = true
		timer.SnoozeUntil = nil
		timer.UpdatedAt = now
		if err := tx.SaveTimer(ctx, timer); err != nil {
			return fmt.Errorf("failed to save timer: %w", err)
		}

		pointer, err := tx.GetPointer(ctx, workshopID)
		if err != nil {
			return fmt.Errorf("failed to get workshop pointer: %w", err)
		}
		pointer.ActiveSessionID = &sessionID
		pointer.UpdatedAt = now
		if err := tx.SavePointer(ctx, pointer); err != nil {
			return fmt.Errorf("failed to save workshop pointer: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("start phase: %w", err)
	}

	return a.commandResult(ctx, CommandStart, identity, workshopID, &sessionID, now)
}

// Pause stops a running timer, freezing the reconciled remaining value.
func (a *App) Pause(ctx context.Context, workshopID, sessionID uuid.UUID) (*models.LiveState, error) {
	return a.mutateTimer(ctx, workshopID, sessionID, CommandPause, nil, func(t *models.SessionTimer, _ time.Time) {
		t.IsRunning = false
	})
}

// Resume restarts a stopped timer from its frozen remaining value.
func (a *App) Resume(ctx context.Context, workshopID, sessionID uuid.UUID) (*models.LiveState, error) {
	return a.mutateTimer(ctx, workshopID, sessionID, CommandResume, nil, func(t *models.SessionTimer, _ time.Time) {
		t.IsRunning = true
	})
}

// Snooze adds seconds to a timer without touching whether it runs.
func (a *App) Snooze(ctx context.Context, workshopID, sessionID uuid.UUID, seconds int) (*models.LiveState, error) {
	var invalid error
	if seconds <= 0 {
		invalid = fmt.Errorf("%w: snooze seconds must be positive, got %d", ErrValidation, seconds)
	}
	return a.mutateTimer(ctx, workshopID, sessionID, CommandSnooze, invalid, func(t *models.SessionTimer, now time.Time) {
		t.RemainingSeconds += seconds
		until := now.Add(time.Duration(seconds) * time.Second)
		t.SnoozeUntil = &until
	})
}

// ToggleMute sets whether the run-out alarm is audible.
func (a *App) ToggleMute(ctx context.Context, workshopID, sessionID uuid.UUID, muted bool) (*models.LiveState, error) {
	return a.mutateTimer(ctx, workshopID, sessionID, CommandMute, nil, func(t *models.SessionTimer, _ time.Time) {
		t.AlarmMuted = muted
	})
}

// CompletePhase ends the session's current phase regardless of its state.
func (a *App) CompletePhase(ctx context.Context, workshopID, sessionID uuid.UUID) (*models.LiveState, error) {
	return a.mutateTimer(ctx, workshopID, sessionID, CommandComplete, nil, func(t *models.SessionTimer, _ time.Time) {
		t.SetRemaining(0)
		t.IsRunning = false
	})
}

// SetActiveSlide moves the workshop to the slide at index.
func (a *App) SetActiveSlide(ctx context.Context, workshopID uuid.UUID, index int) (*models.LiveState, error) {
	identity, err := a.requireController(ctx, CommandSetSlide)
	if err != nil {
		return nil, err
	}

	pointer, err := a.store.GetPointer(ctx, workshopID)
	if err != nil {
		return nil, fmt.Errorf("failed to get workshop pointer: %w", err)
	}
	slides, err := a.slides(ctx, workshopID)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(slides) {
		return nil, fmt.Errorf("%w: slide index %d out of range [0,%d)", ErrValidation, index, len(slides))
	}

	now := a.clock.Now()
	pointer.ActiveSlideIndex = index
	pointer.UpdatedAt = now
	if err := a.store.SavePointer(ctx, pointer); err != nil {
		return nil, fmt.Errorf("failed to save workshop pointer: %w", err)
	}

	return a.commandResult(ctx, CommandSetSlide, identity, workshopID, nil, now)
}

// SetDisplayMode switches the presenter layout.
func (a *App) SetDisplayMode(ctx context.Context, workshopID uuid.UUID, mode models.DisplayMode) (*models.LiveState, error) {
	identity, err := a.requireController(ctx, CommandSetDisplayMode)
	if err != nil {
		return nil, err
	}

	canonical, err := models.ParseDisplayMode(string(mode))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	pointer, err := a.store.GetPointer(ctx, workshopID)
	if err != nil {
		return nil, fmt.Errorf("failed to get workshop pointer: %w", err)
	}

	now := a.clock.Now()
	pointer.DisplayMode = canonical
	pointer.UpdatedAt = now
	if err := a.store.SavePointer(ctx, pointer); err != nil {
		return nil, fmt.Errorf("failed to save workshop pointer: %w", err)
	}

	return a.commandResult(ctx, CommandSetDisplayMode, identity, workshopID, nil, now)
}

// mutateTimer runs the shared read-checkpoint-write path for timer commands.
// A non-nil invalid is returned once the caller has passed the controller gate.
func (a *App) mutateTimer(ctx context.Context, workshopID, sessionID uuid.UUID, cmd Command, invalid error, apply func(t *models.SessionTimer, now time.Time)) (*models.LiveState, error) {
	identity, err := a.requireController(ctx, cmd)
	if err != nil {
		return nil, err
	}
	if invalid != nil {
		return nil, invalid
	}
	if _, err := a.sessionInWorkshop(ctx, workshopID, sessionID); err != nil {
		return nil, err
	}

	timer, err := a.store.GetTimer(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get timer: %w", err)
	}

	phase, err := NextPhase(timer.Phase, timer.Kind, cmd)
	if err != nil {
		return nil, err
	}

	now := a.clock.Now()
	checkpoint(timer, now)
	timer.Phase = phase
	apply(timer, now)
	timer.UpdatedAt = now

	if err := a.store.SaveTimer(ctx, timer); err != nil {
		return nil, fmt.Errorf("%s: failed to save timer: %w", cmd, err)
	}

	return a.commandResult(ctx, cmd, identity, workshopID, &sessionID, now)
}

// checkpoint folds the time elapsed since the last write into a running
// timer's remaining value. Every write goes through it, so moving
// updatedAt never gives back time that already passed. The sub-second
// part is kept, otherwise frequent writes would drain the countdown.
func checkpoint(t *models.SessionTimer, now time.Time) {
	if t.IsRunning {
		t.SetRemaining(ReconcileDuration(t.Remaining(), t.UpdatedAt, now))
	}
}

func (a *App) commandResult(ctx context.Context, cmd Command, identity Identity, workshopID uuid.UUID, sessionID *uuid.UUID, now time.Time) (*models.LiveState, error) {
	state, err := a.derive(ctx, workshopID, now)
	if err != nil {
		return nil, err
	}

	event := log.Info().
		Str("command", string(cmd)).
		Str("workshop_id", workshopID.String()).
		Str("controller", identity.Subject).
		Str("phase", string(state.Phase)).
		Int("remaining_sec", state.RemainingSeconds)
	if sessionID != nil {
		event = event.Str("session_id", sessionID.String())
	}
	event.Msg("live command applied")

	return state, nil
}

func (a *App) derive(ctx context.Context, workshopID uuid.UUID, now time.Time) (*models.LiveState, error) {
	pointer, err := a.store.GetPointer(ctx, workshopID)
	if err != nil {
		return nil, fmt.Errorf("failed to get workshop pointer: %w", err)
	}

	workshop, err := a.store.GetWorkshop(ctx, workshopID)
	if err != nil {
		return nil, fmt.Errorf("failed to get workshop: %w", err)
	}
	sessions, err := a.store.ListSessions(ctx, workshopID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	in := DeriveInput{
		Pointer: pointer,
		Slides:  BuildSlides(workshop, sessions),
	}

	if id := pointer.ActiveSessionID; id != nil {
		for i := range sessions {
			if sessions[i].ID == *id {
				in.Session = &sessions[i]
				break
			}
		}

		timer, err := a.store.GetTimer(ctx, *id)
		switch {
		case err == nil:
			in.Timer = timer
		case errors.Is(err, ErrNotFound):
			// Active session without a timer yet derives as idle.
		default:
			return nil, fmt.Errorf("failed to get timer: %w", err)
		}
	}

	state := DeriveState(in, now)
	return &state, nil
}

func (a *App) slides(ctx context.Context, workshopID uuid.UUID) ([]models.Slide, error) {
	workshop, err := a.store.GetWorkshop(ctx, workshopID)
	if err != nil {
		return nil, fmt.Errorf("failed to get workshop: %w", err)
	}
	sessions, err := a.store.ListSessions(ctx, workshopID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return BuildSlides(workshop, sessions), nil
}

func (a *App) sessionInWorkshop(ctx context.Context, workshopID, sessionID uuid.UUID) (*models.Session, error) {
	session, err := a.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session.WorkshopID != workshopID {
		return nil, fmt.Errorf("%w: session %s does not belong to workshop %s", ErrNotFound, sessionID, workshopID)
	}
	return session, nil
}

func (a *App) requireController(ctx context.Context, cmd Command) (Identity, error) {
	identity, err := a.auth.RequireController(ctx)
	if err != nil {
		if !errors.Is(err, ErrUnauthorized) {
			err = fmt.Errorf("%w: %v", ErrUnauthorized, err)
		}
		return Identity{}, fmt.Errorf("%s: %w", cmd, err)
	}
	return identity, nil
}
