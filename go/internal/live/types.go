package live

import (
	"context"

	"github.com/google/uuid"
	"github.com/mcdev12/liveworkshop/go/internal/models"
)

// Store is what the live app needs from persistence.
type Store interface {
	GetWorkshop(ctx context.Context, id uuid.UUID) (*models.Workshop, error)
	ListSessions(ctx context.Context, workshopID uuid.UUID) ([]models.Session, error)
	GetSession(ctx context.Context, id uuid.UUID) (*models.Session, error)
	GetPointer(ctx context.Context, workshopID uuid.UUID) (*models.WorkshopPointer, error)
	SavePointer(ctx context.Context, pointer *models.WorkshopPointer) error
	GetTimer(ctx context.Context, sessionID uuid.UUID) (*models.SessionTimer, error)
	// SaveTimer inserts the timer when Version is 0 and otherwise updates it
	// only if the stored version still matches. On success Version is bumped.
	SaveTimer(ctx context.Context, timer *models.SessionTimer) error
	WithinTx(ctx context.Context, fn func(Store) error) error
}

// Identity is the caller that passed the controller gate.
type Identity struct {
	Subject string
}

// Authorizer decides whether the caller may issue mutating commands.
type Authorizer interface {
	RequireController(ctx context.Context) (Identity, error)
}

// WorkshopRequest addresses a workshop.
type WorkshopRequest struct {
	WorkshopID string `json:"workshop_id"`
}

// StartPhaseRequest starts a build or discuss phase on a session.
type StartPhaseRequest struct {
	WorkshopID string `json:"workshop_id"`
	SessionID  string `json:"session_id"`
	Kind       string `json:"kind"`
}

// SessionRequest addresses a session timer.
type SessionRequest struct {
	WorkshopID string `json:"workshop_id"`
	SessionID  string `json:"session_id"`
}

// SnoozeRequest adds seconds to a session timer.
type SnoozeRequest struct {
	WorkshopID string `json:"workshop_id"`
	SessionID  string `json:"session_id"`
	Seconds    int    `json:"seconds"`
}

// ToggleMuteRequest mutes or unmutes a session alarm.
type ToggleMuteRequest struct {
	WorkshopID string `json:"workshop_id"`
	SessionID  string `json:"session_id"`
	Muted      bool   `json:"muted"`
}

// SetActiveSlideRequest moves the workshop to a slide.
type SetActiveSlideRequest struct {
	WorkshopID string `json:"workshop_id"`
	Index      int    `json:"index"`
}

// SetDisplayModeRequest switches the presenter layout.
type SetDisplayModeRequest struct {
	WorkshopID string `json:"workshop_id"`
	Mode       string `json:"mode"`
}

// LiveStateResponse carries the snapshot every procedure returns.
type LiveStateResponse struct {
	State *models.LiveState `json:"state"`
}

// ReadOnly refuses every controller check. Processes that only derive
// snapshots use it.
var ReadOnly Authorizer = readOnly{}

type readOnly struct{}

func (readOnly) RequireController(context.Context) (Identity, error) {
	return Identity{}, ErrUnauthorized
}
