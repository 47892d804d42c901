package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/joho/godotenv"
	"github.com/mcdev12/liveworkshop/go/internal/live"
	"github.com/mcdev12/liveworkshop/go/internal/live/broadcast"
	"github.com/mcdev12/liveworkshop/go/internal/live/client"
	"github.com/mcdev12/liveworkshop/go/internal/live/controller"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// deps are the process-level collaborators, swapped out in tests.
type deps struct {
	clock         clockwork.Clock
	httpClient    *http.Client
	openTransport func(ctx context.Context, o *options) (broadcast.Transport, error)
}

func defaultDeps() deps {
	return deps{
		clock:      clockwork.NewRealClock(),
		httpClient: http.DefaultClient,
		openTransport: func(ctx context.Context, o *options) (broadcast.Transport, error) {
			natsCfg := broadcast.DefaultNATSConfig()
			natsCfg.URL = o.natsURL
			return broadcast.Open(ctx, broadcast.OpenConfig{
				Kind:     o.transport,
				NATS:     natsCfg,
				RedisURL: o.redisURL,
			})
		},
	}
}

// options holds the persistent flags shared by every subcommand.
type options struct {
	deps

	apiURL     string
	token      string
	workshop   string
	transport  string
	natsURL    string
	redisURL   string
	width      int
	jsonOutput bool
	verbose    bool
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func newRootCmd(d deps) *cobra.Command {
	// Best effort; a missing .env is normal.
	_ = godotenv.Load()

	o := &options{deps: d}

	rootCmd := &cobra.Command{
		Use:           "livectl",
		Short:         "Control and watch a live workshop",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(*cobra.Command, []string) {
			if o.verbose {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&o.apiURL, "api-url", envOr("LIVE_API_URL", "http://localhost:8080"), "live API server URL")
	flags.StringVar(&o.token, "token", os.Getenv("LIVE_TOKEN"), "controller bearer token")
	flags.StringVarP(&o.workshop, "workshop", "w", os.Getenv("LIVE_WORKSHOP_ID"), "workshop ID")
	flags.StringVar(&o.transport, "transport", envOr("BROADCAST_TRANSPORT", broadcast.KindNATS), "broadcast transport (nats or redis)")
	flags.StringVar(&o.natsURL, "nats-url", envOr("NATS_URL", broadcast.DefaultNATSConfig().URL), "NATS server URL")
	flags.StringVar(&o.redisURL, "redis-url", envOr("REDIS_URL", "redis://localhost:6379/0"), "Redis URL")
	flags.IntVar(&o.width, "width", 64, "render width in columns")
	flags.BoolVar(&o.jsonOutput, "json", false, "print the raw snapshot as JSON")
	flags.BoolVarP(&o.verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(
		newTokenCmd(o),
		newStateCmd(o),
		newSyncCmd(o),
		newStartCmd(o),
		newPauseCmd(o),
		newResumeCmd(o),
		newSnoozeCmd(o),
		newMuteCmd(o),
		newCompleteCmd(o),
		newSlideCmd(o),
		newModeCmd(o),
		newWatchCmd(o),
	)

	return rootCmd
}

func (o *options) workshopID() (uuid.UUID, error) {
	if o.workshop == "" {
		return uuid.Nil, fmt.Errorf("--workshop (or LIVE_WORKSHOP_ID) is required")
	}
	id, err := uuid.Parse(o.workshop)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid workshop ID %q: %w", o.workshop, err)
	}
	return id, nil
}

func (o *options) client() *client.Client {
	return client.New(o.httpClient, o.apiURL, o.token)
}

// controller wraps the API client with a publisher so every command result
// reaches the workshop's screens. The caller closes the returned transport.
func (o *options) controller(ctx context.Context) (*controller.Controller, broadcast.Transport, error) {
	if o.token == "" {
		return nil, nil, fmt.Errorf("--token (or LIVE_TOKEN) is required: %w", live.ErrUnauthorized)
	}
	transport, err := o.openTransport(ctx, o)
	if err != nil {
		return nil, nil, fmt.Errorf("open broadcast transport: %w", err)
	}
	pub, err := broadcast.NewPublisher(transport, broadcast.RoleController)
	if err != nil {
		transport.Close()
		return nil, nil, err
	}
	return controller.New(o.client(), pub), transport, nil
}
