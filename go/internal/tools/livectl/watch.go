package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/mcdev12/liveworkshop/go/internal/live/broadcast"
	"github.com/mcdev12/liveworkshop/go/internal/live/controller"
	"github.com/mcdev12/liveworkshop/go/internal/live/reconciler"
	"github.com/mcdev12/liveworkshop/go/internal/live/render"
	"github.com/mcdev12/liveworkshop/go/internal/models"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const clearScreen = "\x1b[H\x1b[2J"

func newWatchCmd(o *options) *cobra.Command {
	var drive bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow the live countdown",
		Long: "Subscribe to the workshop's broadcasts and redraw the countdown every second. " +
			"With --drive the watcher also completes a phase when its timer runs out, which needs a controller token.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			workshopID, err := o.workshopID()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg := reconciler.Config{
				Clock:  o.clock,
				OnView: viewWriter(cmd, o),
			}

			var transport broadcast.Transport
			if drive {
				var ctl *controller.Controller
				ctl, transport, err = o.controller(ctx)
				if err != nil {
					return err
				}
				defer transport.Close()
				cfg.Completer = ctl
			} else {
				transport, err = o.openTransport(ctx, o)
				if err != nil {
					return fmt.Errorf("open broadcast transport: %w", err)
				}
				defer transport.Close()
			}

			rec := reconciler.New(cfg)
			done := make(chan struct{})
			go func() {
				defer close(done)
				rec.Run(ctx)
			}()

			gate := &snapshotGate{apply: rec.Apply}
			unsubscribe, err := broadcast.NewSubscriber(transport).Subscribe(workshopID, func(msg broadcast.Message) {
				log.Debug().Str("type", string(msg.Type)).Msg("snapshot received")
				gate.broadcast(msg.Payload)
			})
			if err != nil {
				stop()
				<-done
				return fmt.Errorf("subscribe: %w", err)
			}
			defer unsubscribe()

			state, err := o.client().Derive(ctx, workshopID)
			if err != nil {
				stop()
				<-done
				return fmt.Errorf("load snapshot: %w", err)
			}
			if !gate.cold(state) {
				log.Debug().Msg("initial snapshot superseded by broadcast")
			}

			<-done
			return nil
		},
	}

	cmd.Flags().BoolVar(&drive, "drive", false, "complete phases when the countdown reaches zero")
	return cmd
}

// snapshotGate orders the initial snapshot against live broadcasts. The
// initial load can finish after a broadcast of a newer state has arrived;
// applying it then would roll the screen back.
type snapshotGate struct {
	mu     sync.Mutex
	seen   bool
	latest time.Time
	apply  func(*models.LiveState)
}

func (g *snapshotGate) broadcast(state *models.LiveState) {
	if state == nil {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.seen || state.UpdatedAt.After(g.latest) {
		g.latest = state.UpdatedAt
	}
	g.seen = true
	g.apply(state)
}

// cold applies state unless a broadcast at least as recent was already
// applied, and reports whether it did.
func (g *snapshotGate) cold(state *models.LiveState) bool {
	if state == nil {
		return false
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.seen && !state.UpdatedAt.After(g.latest) {
		return false
	}
	g.apply(state)
	return true
}

// viewWriter prints each reconciled view, as a redrawn screen or as one JSON
// line per tick.
func viewWriter(cmd *cobra.Command, o *options) func(models.LiveState) {
	out := cmd.OutOrStdout()
	if o.jsonOutput {
		enc := json.NewEncoder(out)
		return func(view models.LiveState) {
			if err := enc.Encode(view); err != nil {
				log.Error().Err(err).Msg("failed to write view")
			}
		}
	}

	return func(view models.LiveState) {
		screen := render.Terminal(render.Build(view, o.clock.Now()), o.width)
		fmt.Fprint(out, clearScreen+screen+"\n")
	}
}
