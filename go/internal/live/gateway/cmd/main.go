package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/joho/godotenv"
	"github.com/mcdev12/liveworkshop/go/internal/dbconfig"
	"github.com/mcdev12/liveworkshop/go/internal/live"
	"github.com/mcdev12/liveworkshop/go/internal/live/broadcast"
	"github.com/mcdev12/liveworkshop/go/internal/live/gateway"
	"github.com/mcdev12/liveworkshop/go/internal/live/repository"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	level, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	port := getEnv("GATEWAY_PORT", "8081")
	transportKind := getEnv("BROADCAST_TRANSPORT", broadcast.KindNATS)

	dbCfg := dbconfig.NewConfigFromEnv()
	db, err := dbCfg.Open()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	natsCfg := broadcast.DefaultNATSConfig()
	natsCfg.URL = getEnv("NATS_URL", natsCfg.URL)
	transport, err := broadcast.Open(ctx, broadcast.OpenConfig{
		Kind:     transportKind,
		NATS:     natsCfg,
		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379/0"),
	})
	if err != nil {
		log.Fatal().Err(err).Str("transport", transportKind).Msg("failed to open broadcast transport")
	}
	defer transport.Close()

	log.Info().
		Str("database", dbCfg.Database).
		Str("transport", transportKind).
		Str("port", port).
		Msg("starting live gateway")

	// The gateway only derives snapshots, so it never holds controller authority.
	app := live.NewApp(repository.NewRepository(db), live.ReadOnly, clockwork.NewRealClock())

	config := gateway.DefaultConfig()
	if origins := os.Getenv("GATEWAY_ALLOWED_ORIGINS"); origins != "" {
		config.AllowedOrigins = strings.Split(origins, ",")
	}
	gatewayService := gateway.NewService(config, transport, app)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", port),
		Handler:      gatewayService.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go gatewayService.Start(ctx)

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan

	stats := gatewayService.GetStats()
	log.Info().
		Str("signal", sig.String()).
		Int("connections", stats.TotalConnections).
		Int("workshops", stats.ActiveWorkshops).
		Msg("received shutdown signal")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}

	cancel()
	log.Info().Msg("live gateway shutdown complete")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
