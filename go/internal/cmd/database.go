package main

import (
	"database/sql"
	"fmt"

	"github.com/mcdev12/liveworkshop/go/internal/dbconfig"
	"github.com/mcdev12/liveworkshop/go/internal/live/repository"
	"github.com/rs/zerolog/log"
)

// setupDatabase connects to Postgres and brings the schema up to date.
func setupDatabase() (*sql.DB, error) {
	dbConfig := dbconfig.NewConfigFromEnv()

	database, err := dbConfig.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := repository.Migrate(database); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Info().
		Str("host", dbConfig.Host).
		Str("database", dbConfig.Database).
		Msg("connected to database")
	return database, nil
}
