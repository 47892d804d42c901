// Package controller is the facilitator side: it issues commands and
// broadcasts every resulting snapshot to the workshop's screens.
package controller

import (
	"context"

	"github.com/google/uuid"
	"github.com/mcdev12/liveworkshop/go/internal/live"
	"github.com/mcdev12/liveworkshop/go/internal/live/broadcast"
	"github.com/mcdev12/liveworkshop/go/internal/live/reconciler"
	"github.com/mcdev12/liveworkshop/go/internal/models"
	"github.com/rs/zerolog/log"
)

// Publisher is what the controller needs from the broadcast hub.
type Publisher interface {
	Publish(ctx context.Context, msgType broadcast.MessageType, state *models.LiveState) error
}

// Controller wraps a command surface and publishes each successful result.
type Controller struct {
	commands  live.LiveApp
	publisher Publisher
}

var (
	_ live.LiveApp         = (*Controller)(nil)
	_ reconciler.Completer = (*Controller)(nil)
	_ Publisher            = (*broadcast.Publisher)(nil)
)

// New creates a Controller.
func New(commands live.LiveApp, publisher Publisher) *Controller {
	return &Controller{commands: commands, publisher: publisher}
}

// Derive reads the current snapshot without publishing it.
func (c *Controller) Derive(ctx context.Context, workshopID uuid.UUID) (*models.LiveState, error) {
	return c.commands.Derive(ctx, workshopID)
}

// Sync derives the current snapshot and publishes it as a STATE_SYNC, for
// screens that joined without a cold read.
func (c *Controller) Sync(ctx context.Context, workshopID uuid.UUID) (*models.LiveState, error) {
	return c.publish(ctx, broadcast.MessageStateSync, "sync")(c.commands.Derive(ctx, workshopID))
}

func (c *Controller) StartPhase(ctx context.Context, workshopID, sessionID uuid.UUID, kind models.PhaseKind) (*models.LiveState, error) {
	return c.publish(ctx, broadcast.MessageTimerUpdate, live.CommandStart)(c.commands.StartPhase(ctx, workshopID, sessionID, kind))
}

func (c *Controller) Pause(ctx context.Context, workshopID, sessionID uuid.UUID) (*models.LiveState, error) {
	return c.publish(ctx, broadcast.MessageTimerUpdate, live.CommandPause)(c.commands.Pause(ctx, workshopID, sessionID))
}

func (c *Controller) Resume(ctx context.Context, workshopID, sessionID uuid.UUID) (*models.LiveState, error) {
	return c.publish(ctx, broadcast.MessageTimerUpdate, live.CommandResume)(c.commands.Resume(ctx, workshopID, sessionID))
}

func (c *Controller) Snooze(ctx context.Context, workshopID, sessionID uuid.UUID, seconds int) (*models.LiveState, error) {
	return c.publish(ctx, broadcast.MessageTimerUpdate, live.CommandSnooze)(c.commands.Snooze(ctx, workshopID, sessionID, seconds))
}

func (c *Controller) ToggleMute(ctx context.Context, workshopID, sessionID uuid.UUID, muted bool) (*models.LiveState, error) {
	return c.publish(ctx, broadcast.MessageTimerUpdate, live.CommandMute)(c.commands.ToggleMute(ctx, workshopID, sessionID, muted))
}

func (c *Controller) CompletePhase(ctx context.Context, workshopID, sessionID uuid.UUID) (*models.LiveState, error) {
	return c.publish(ctx, broadcast.MessageTimerUpdate, live.CommandComplete)(c.commands.CompletePhase(ctx, workshopID, sessionID))
}

func (c *Controller) SetActiveSlide(ctx context.Context, workshopID uuid.UUID, index int) (*models.LiveState, error) {
	return c.publish(ctx, broadcast.MessageStateSync, live.CommandSetSlide)(c.commands.SetActiveSlide(ctx, workshopID, index))
}

func (c *Controller) SetDisplayMode(ctx context.Context, workshopID uuid.UUID, mode models.DisplayMode) (*models.LiveState, error) {
	return c.publish(ctx, broadcast.MessageStateSync, live.CommandSetDisplayMode)(c.commands.SetDisplayMode(ctx, workshopID, mode))
}

// publish returns a func that broadcasts a successful result and passes the
// command's outcome through unchanged. Broadcast failures are only logged:
// screens catch up on the next message or their next cold read.
func (c *Controller) publish(ctx context.Context, msgType broadcast.MessageType, cmd live.Command) func(*models.LiveState, error) (*models.LiveState, error) {
	return func(state *models.LiveState, err error) (*models.LiveState, error) {
		if err != nil || state == nil {
			return state, err
		}
		if pubErr := c.publisher.Publish(ctx, msgType, state); pubErr != nil {
			log.Warn().Err(pubErr).
				Str("command", string(cmd)).
				Str("workshop_id", state.WorkshopID.String()).
				Msg("broadcast dropped")
		}
		return state, nil
	}
}
