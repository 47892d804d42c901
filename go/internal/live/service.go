package live

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"connectrpc.com/connect"
	"github.com/google/uuid"
	"github.com/mcdev12/liveworkshop/go/internal/models"
)

// LiveServiceName is the fully-qualified name of the live service.
const LiveServiceName = "liveworkshop.v1.LiveService"

const (
	DeriveProcedure         = "/" + LiveServiceName + "/Derive"
	StartPhaseProcedure     = "/" + LiveServiceName + "/StartPhase"
	PauseProcedure          = "/" + LiveServiceName + "/Pause"
	ResumeProcedure         = "/" + LiveServiceName + "/Resume"
	SnoozeProcedure         = "/" + LiveServiceName + "/Snooze"
	ToggleMuteProcedure     = "/" + LiveServiceName + "/ToggleMute"
	CompletePhaseProcedure  = "/" + LiveServiceName + "/CompletePhase"
	SetActiveSlideProcedure = "/" + LiveServiceName + "/SetActiveSlide"
	SetDisplayModeProcedure = "/" + LiveServiceName + "/SetDisplayMode"
)

// LiveApp defines what the service layer needs from the live application
type LiveApp interface {
	Derive(ctx context.Context, workshopID uuid.UUID) (*models.LiveState, error)
	StartPhase(ctx context.Context, workshopID, sessionID uuid.UUID, kind models.PhaseKind) (*models.LiveState, error)
	Pause(ctx context.Context, workshopID, sessionID uuid.UUID) (*models.LiveState, error)
	Resume(ctx context.Context, workshopID, sessionID uuid.UUID) (*models.LiveState, error)
	Snooze(ctx context.Context, workshopID, sessionID uuid.UUID, seconds int) (*models.LiveState, error)
	ToggleMute(ctx context.Context, workshopID, sessionID uuid.UUID, muted bool) (*models.LiveState, error)
	CompletePhase(ctx context.Context, workshopID, sessionID uuid.UUID) (*models.LiveState, error)
	SetActiveSlide(ctx context.Context, workshopID uuid.UUID, index int) (*models.LiveState, error)
	SetDisplayMode(ctx context.Context, workshopID uuid.UUID, mode models.DisplayMode) (*models.LiveState, error)
}

var _ LiveApp = (*App)(nil)

// Service exposes the live app as connect procedures
type Service struct {
	app LiveApp
}

// NewService creates a new live connect service
func NewService(app LiveApp) *Service {
	return &Service{app: app}
}

// NewLiveServiceHandler builds an HTTP handler for every live procedure. It
// returns the path prefix to mount it on.
func NewLiveServiceHandler(svc *Service, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{WithJSONCodec()}, opts...)

	mux := http.NewServeMux()
	mux.Handle(DeriveProcedure, connect.NewUnaryHandler(DeriveProcedure, svc.Derive, opts...))
	mux.Handle(StartPhaseProcedure, connect.NewUnaryHandler(StartPhaseProcedure, svc.StartPhase, opts...))
	mux.Handle(PauseProcedure, connect.NewUnaryHandler(PauseProcedure, svc.Pause, opts...))
	mux.Handle(ResumeProcedure, connect.NewUnaryHandler(ResumeProcedure, svc.Resume, opts...))
	mux.Handle(SnoozeProcedure, connect.NewUnaryHandler(SnoozeProcedure, svc.Snooze, opts...))
	mux.Handle(ToggleMuteProcedure, connect.NewUnaryHandler(ToggleMuteProcedure, svc.ToggleMute, opts...))
	mux.Handle(CompletePhaseProcedure, connect.NewUnaryHandler(CompletePhaseProcedure, svc.CompletePhase, opts...))
	mux.Handle(SetActiveSlideProcedure, connect.NewUnaryHandler(SetActiveSlideProcedure, svc.SetActiveSlide, opts...))
	mux.Handle(SetDisplayModeProcedure, connect.NewUnaryHandler(SetDisplayModeProcedure, svc.SetDisplayMode, opts...))

	return "/" + LiveServiceName + "/", mux
}

// Derive returns the current snapshot of a workshop
func (s *Service) Derive(ctx context.Context, req *connect.Request[WorkshopRequest]) (*connect.Response[LiveStateResponse], error) {
	workshopID, err := parseID("workshop_id", req.Msg.WorkshopID)
	if err != nil {
		return nil, err
	}
	return respond(s.app.Derive(ctx, workshopID))
}

// StartPhase starts a build or discuss phase
func (s *Service) StartPhase(ctx context.Context, req *connect.Request[StartPhaseRequest]) (*connect.Response[LiveStateResponse], error) {
	workshopID, sessionID, err := parseSession(req.Msg.WorkshopID, req.Msg.SessionID)
	if err != nil {
		return nil, err
	}
	kind, err := models.ParsePhaseKind(req.Msg.Kind)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	return respond(s.app.StartPhase(ctx, workshopID, sessionID, kind))
}

// Pause stops a running timer
func (s *Service) Pause(ctx context.Context, req *connect.Request[SessionRequest]) (*connect.Response[LiveStateResponse], error) {
	workshopID, sessionID, err := parseSession(req.Msg.WorkshopID, req.Msg.SessionID)
	if err != nil {
		return nil, err
	}
	return respond(s.app.Pause(ctx, workshopID, sessionID))
}

// Resume restarts a stopped timer
func (s *Service) Resume(ctx context.Context, req *connect.Request[SessionRequest]) (*connect.Response[LiveStateResponse], error) {
	workshopID, sessionID, err := parseSession(req.Msg.WorkshopID, req.Msg.SessionID)
	if err != nil {
		return nil, err
	}
	return respond(s.app.Resume(ctx, workshopID, sessionID))
}

// Snooze adds seconds to a timer
func (s *Service) Snooze(ctx context.Context, req *connect.Request[SnoozeRequest]) (*connect.Response[LiveStateResponse], error) {
	workshopID, sessionID, err := parseSession(req.Msg.WorkshopID, req.Msg.SessionID)
	if err != nil {
		return nil, err
	}
	return respond(s.app.Snooze(ctx, workshopID, sessionID, req.Msg.Seconds))
}

// ToggleMute mutes or unmutes the alarm
func (s *Service) ToggleMute(ctx context.Context, req *connect.Request[ToggleMuteRequest]) (*connect.Response[LiveStateResponse], error) {
	workshopID, sessionID, err := parseSession(req.Msg.WorkshopID, req.Msg.SessionID)
	if err != nil {
		return nil, err
	}
	return respond(s.app.ToggleMute(ctx, workshopID, sessionID, req.Msg.Muted))
}

// CompletePhase ends the current phase
func (s *Service) CompletePhase(ctx context.Context, req *connect.Request[SessionRequest]) (*connect.Response[LiveStateResponse], error) {
	workshopID, sessionID, err := parseSession(req.Msg.WorkshopID, req.Msg.SessionID)
	if err != nil {
		return nil, err
	}
	return respond(s.app.CompletePhase(ctx, workshopID, sessionID))
}

// SetActiveSlide moves the workshop to a slide
func (s *Service) SetActiveSlide(ctx context.Context, req *connect.Request[SetActiveSlideRequest]) (*connect.Response[LiveStateResponse], error) {
	workshopID, err := parseID("workshop_id", req.Msg.WorkshopID)
	if err != nil {
		return nil, err
	}
	return respond(s.app.SetActiveSlide(ctx, workshopID, req.Msg.Index))
}

// SetDisplayMode switches the presenter layout
func (s *Service) SetDisplayMode(ctx context.Context, req *connect.Request[SetDisplayModeRequest]) (*connect.Response[LiveStateResponse], error) {
	workshopID, err := parseID("workshop_id", req.Msg.WorkshopID)
	if err != nil {
		return nil, err
	}
	return respond(s.app.SetDisplayMode(ctx, workshopID, models.DisplayMode(req.Msg.Mode)))
}

// ConnectCode maps a live error onto the connect code the service answers with.
func ConnectCode(err error) connect.Code {
	switch {
	case errors.Is(err, ErrNotFound):
		return connect.CodeNotFound
	case errors.Is(err, ErrUnauthorized):
		return connect.CodeUnauthenticated
	case errors.Is(err, ErrValidation):
		return connect.CodeInvalidArgument
	case errors.Is(err, ErrConflict):
		return connect.CodeAborted
	}
	return connect.CodeInternal
}

func respond(state *models.LiveState, err error) (*connect.Response[LiveStateResponse], error) {
	if err != nil {
		return nil, connect.NewError(ConnectCode(err), err)
	}
	return connect.NewResponse(&LiveStateResponse{State: state}), nil
}

func parseSession(workshop, session string) (uuid.UUID, uuid.UUID, error) {
	workshopID, err := parseID("workshop_id", workshop)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	sessionID, err := parseID("session_id", session)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return workshopID, sessionID, nil
}

func parseID(field, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("invalid %s %q: %w", field, raw, err))
	}
	return id, nil
}
