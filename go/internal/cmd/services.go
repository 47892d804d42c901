package main

import (
	"database/sql"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/liveworkshop/go/internal/live"
	"github.com/mcdev12/liveworkshop/go/internal/live/auth"
	"github.com/mcdev12/liveworkshop/go/internal/live/repository"
)

type Services struct {
	Live *live.Service
}

func setupServices(database *sql.DB, authorizer *auth.Authorizer, clock clockwork.Clock) *Services {
	// Database layer → Repository layer → App layer → Service layer
	liveRepo := repository.NewRepository(database)
	liveApp := live.NewApp(liveRepo, authorizer, clock)

	return &Services{
		Live: live.NewService(liveApp),
	}
}
