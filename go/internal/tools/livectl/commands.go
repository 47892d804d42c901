package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/mcdev12/liveworkshop/go/internal/live/controller"
	"github.com/mcdev12/liveworkshop/go/internal/models"
	"github.com/spf13/cobra"
)

// runControl opens a controller, runs fn against the selected workshop and
// prints the resulting snapshot.
func runControl(cmd *cobra.Command, o *options, fn func(ctx context.Context, ctl *controller.Controller, workshopID uuid.UUID) (*models.LiveState, error)) error {
	workshopID, err := o.workshopID()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	ctl, transport, err := o.controller(ctx)
	if err != nil {
		return err
	}
	defer transport.Close()

	state, err := fn(ctx, ctl, workshopID)
	if err != nil {
		return err
	}
	return writeState(cmd, o, state)
}

// sessionCmd builds a command that takes a session ID argument.
func sessionCmd(o *options, use, short string, fn func(ctx context.Context, ctl *controller.Controller, workshopID, sessionID uuid.UUID) (*models.LiveState, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <session-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sessionID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid session ID %q: %w", args[0], err)
			}
			return runControl(cmd, o, func(ctx context.Context, ctl *controller.Controller, workshopID uuid.UUID) (*models.LiveState, error) {
				return fn(ctx, ctl, workshopID, sessionID)
			})
		},
	}
}

func newStateCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "state",
		Short: "Show the current snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			workshopID, err := o.workshopID()
			if err != nil {
				return err
			}
			state, err := o.client().Derive(cmd.Context(), workshopID)
			if err != nil {
				return err
			}
			return writeState(cmd, o, state)
		},
	}
}

func newSyncCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Re-broadcast the current snapshot to every screen",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runControl(cmd, o, func(ctx context.Context, ctl *controller.Controller, workshopID uuid.UUID) (*models.LiveState, error) {
				return ctl.Sync(ctx, workshopID)
			})
		},
	}
}

func newStartCmd(o *options) *cobra.Command {
	var kind string
	cmd := sessionCmd(o, "start", "Start a build or discuss phase", func(ctx context.Context, ctl *controller.Controller, workshopID, sessionID uuid.UUID) (*models.LiveState, error) {
		k, err := models.ParsePhaseKind(kind)
		if err != nil {
			return nil, err
		}
		return ctl.StartPhase(ctx, workshopID, sessionID, k)
	})
	cmd.Flags().StringVarP(&kind, "kind", "k", string(models.PhaseKindBuild), "phase kind (build or discuss)")
	return cmd
}

func newPauseCmd(o *options) *cobra.Command {
	return sessionCmd(o, "pause", "Pause a running timer", func(ctx context.Context, ctl *controller.Controller, workshopID, sessionID uuid.UUID) (*models.LiveState, error) {
		return ctl.Pause(ctx, workshopID, sessionID)
	})
}

func newResumeCmd(o *options) *cobra.Command {
	return sessionCmd(o, "resume", "Resume a paused timer", func(ctx context.Context, ctl *controller.Controller, workshopID, sessionID uuid.UUID) (*models.LiveState, error) {
		return ctl.Resume(ctx, workshopID, sessionID)
	})
}

func newSnoozeCmd(o *options) *cobra.Command {
	var seconds int
	cmd := sessionCmd(o, "snooze", "Silence the alarm and add time", func(ctx context.Context, ctl *controller.Controller, workshopID, sessionID uuid.UUID) (*models.LiveState, error) {
		return ctl.Snooze(ctx, workshopID, sessionID, seconds)
	})
	cmd.Flags().IntVarP(&seconds, "seconds", "s", 60, "seconds to add")
	return cmd
}

func newMuteCmd(o *options) *cobra.Command {
	var off bool
	cmd := sessionCmd(o, "mute", "Mute (or with --off unmute) the alarm", func(ctx context.Context, ctl *controller.Controller, workshopID, sessionID uuid.UUID) (*models.LiveState, error) {
		return ctl.ToggleMute(ctx, workshopID, sessionID, !off)
	})
	cmd.Flags().BoolVar(&off, "off", false, "unmute instead")
	return cmd
}

func newCompleteCmd(o *options) *cobra.Command {
	return sessionCmd(o, "complete", "End the current phase now", func(ctx context.Context, ctl *controller.Controller, workshopID, sessionID uuid.UUID) (*models.LiveState, error) {
		return ctl.CompletePhase(ctx, workshopID, sessionID)
	})
}

func newSlideCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "slide <index>",
		Short: "Move the workshop to a slide",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid slide index %q: %w", args[0], err)
			}
			return runControl(cmd, o, func(ctx context.Context, ctl *controller.Controller, workshopID uuid.UUID) (*models.LiveState, error) {
				return ctl.SetActiveSlide(ctx, workshopID, index)
			})
		},
	}
}

func newModeCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "mode <standard|focus|pause>",
		Short: "Switch the presenter layout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := models.ParseDisplayMode(args[0])
			if err != nil {
				return err
			}
			return runControl(cmd, o, func(ctx context.Context, ctl *controller.Controller, workshopID uuid.UUID) (*models.LiveState, error) {
				return ctl.SetDisplayMode(ctx, workshopID, mode)
			})
		},
	}
}
