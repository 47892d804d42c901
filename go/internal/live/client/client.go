// Package client calls the live service over connect.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"connectrpc.com/connect"
	"github.com/google/uuid"
	"github.com/mcdev12/liveworkshop/go/internal/live"
	"github.com/mcdev12/liveworkshop/go/internal/live/auth"
	"github.com/mcdev12/liveworkshop/go/internal/models"
)

// Client implements the nine live operations against a remote server.
type Client struct {
	derive         *connect.Client[live.WorkshopRequest, live.LiveStateResponse]
	startPhase     *connect.Client[live.StartPhaseRequest, live.LiveStateResponse]
	pause          *connect.Client[live.SessionRequest, live.LiveStateResponse]
	resume         *connect.Client[live.SessionRequest, live.LiveStateResponse]
	snooze         *connect.Client[live.SnoozeRequest, live.LiveStateResponse]
	toggleMute     *connect.Client[live.ToggleMuteRequest, live.LiveStateResponse]
	completePhase  *connect.Client[live.SessionRequest, live.LiveStateResponse]
	setActiveSlide *connect.Client[live.SetActiveSlideRequest, live.LiveStateResponse]
	setDisplayMode *connect.Client[live.SetDisplayModeRequest, live.LiveStateResponse]
}

var _ live.LiveApp = (*Client)(nil)

// New creates a client for the server at baseURL. token may be empty for
// read-only use.
func New(httpClient connect.HTTPClient, baseURL, token string, opts ...connect.ClientOption) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{
		live.WithJSONCodec(),
		connect.WithInterceptors(auth.NewClientInterceptor(token)),
	}, opts...)

	return &Client{
		derive:         connect.NewClient[live.WorkshopRequest, live.LiveStateResponse](httpClient, baseURL+live.DeriveProcedure, opts...),
		startPhase:     connect.NewClient[live.StartPhaseRequest, live.LiveStateResponse](httpClient, baseURL+live.StartPhaseProcedure, opts...),
		pause:          connect.NewClient[live.SessionRequest, live.LiveStateResponse](httpClient, baseURL+live.PauseProcedure, opts...),
		resume:         connect.NewClient[live.SessionRequest, live.LiveStateResponse](httpClient, baseURL+live.ResumeProcedure, opts...),
		snooze:         connect.NewClient[live.SnoozeRequest, live.LiveStateResponse](httpClient, baseURL+live.SnoozeProcedure, opts...),
		toggleMute:     connect.NewClient[live.ToggleMuteRequest, live.LiveStateResponse](httpClient, baseURL+live.ToggleMuteProcedure, opts...),
		completePhase:  connect.NewClient[live.SessionRequest, live.LiveStateResponse](httpClient, baseURL+live.CompletePhaseProcedure, opts...),
		setActiveSlide: connect.NewClient[live.SetActiveSlideRequest, live.LiveStateResponse](httpClient, baseURL+live.SetActiveSlideProcedure, opts...),
		setDisplayMode: connect.NewClient[live.SetDisplayModeRequest, live.LiveStateResponse](httpClient, baseURL+live.SetDisplayModeProcedure, opts...),
	}
}

func (c *Client) Derive(ctx context.Context, workshopID uuid.UUID) (*models.LiveState, error) {
	return call(ctx, c.derive, &live.WorkshopRequest{WorkshopID: workshopID.String()})
}

func (c *Client) StartPhase(ctx context.Context, workshopID, sessionID uuid.UUID, kind models.PhaseKind) (*models.LiveState, error) {
	return call(ctx, c.startPhase, &live.StartPhaseRequest{
		WorkshopID: workshopID.String(),
		SessionID:  sessionID.String(),
		Kind:       string(kind),
	})
}

func (c *Client) Pause(ctx context.Context, workshopID, sessionID uuid.UUID) (*models.LiveState, error) {
	return call(ctx, c.pause, sessionRequest(workshopID, sessionID))
}

func (c *Client) Resume(ctx context.Context, workshopID, sessionID uuid.UUID) (*models.LiveState, error) {
	return call(ctx, c.resume, sessionRequest(workshopID, sessionID))
}

func (c *Client) Snooze(ctx context.Context, workshopID, sessionID uuid.UUID, seconds int) (*models.LiveState, error) {
	return call(ctx, c.snooze, &live.SnoozeRequest{
		WorkshopID: workshopID.String(),
		SessionID:  sessionID.String(),
		Seconds:    seconds,
	})
}

func (c *Client) ToggleMute(ctx context.Context, workshopID, sessionID uuid.UUID, muted bool) (*models.LiveState, error) {
	return call(ctx, c.toggleMute, &live.ToggleMuteRequest{
		WorkshopID: workshopID.String(),
		SessionID:  sessionID.String(),
		Muted:      muted,
	})
}

func (c *Client) CompletePhase(ctx context.Context, workshopID, sessionID uuid.UUID) (*models.LiveState, error) {
	return call(ctx, c.completePhase, sessionRequest(workshopID, sessionID))
}

func (c *Client) SetActiveSlide(ctx context.Context, workshopID uuid.UUID, index int) (*models.LiveState, error) {
	return call(ctx, c.setActiveSlide, &live.SetActiveSlideRequest{WorkshopID: workshopID.String(), Index: index})
}

func (c *Client) SetDisplayMode(ctx context.Context, workshopID uuid.UUID, mode models.DisplayMode) (*models.LiveState, error) {
	return call(ctx, c.setDisplayMode, &live.SetDisplayModeRequest{WorkshopID: workshopID.String(), Mode: string(mode)})
}

func sessionRequest(workshopID, sessionID uuid.UUID) *live.SessionRequest {
	return &live.SessionRequest{WorkshopID: workshopID.String(), SessionID: sessionID.String()}
}

func call[Req any](ctx context.Context, c *connect.Client[Req, live.LiveStateResponse], req *Req) (*models.LiveState, error) {
	res, err := c.CallUnary(ctx, connect.NewRequest(req))
	if err != nil {
		return nil, fromConnectError(err)
	}
	if res.Msg.State == nil {
		return nil, errors.New("live: empty state in response")
	}
	return res.Msg.State, nil
}

// fromConnectError maps connect codes back onto the live sentinels so
// callers can use errors.Is across the wire.
func fromConnectError(err error) error {
	var sentinel error
	switch connect.CodeOf(err) {
	case connect.CodeNotFound:
		sentinel = live.ErrNotFound
	case connect.CodeUnauthenticated, connect.CodePermissionDenied:
		sentinel = live.ErrUnauthorized
	case connect.CodeInvalidArgument:
		sentinel = live.ErrValidation
	case connect.CodeAborted:
		sentinel = live.ErrConflict
	default:
		return err
	}

	msg := err.Error()
	var cerr *connect.Error
	if errors.As(err, &cerr) {
		msg = cerr.Message()
	}
	return fmt.Errorf("%w: %s", sentinel, msg)
}
