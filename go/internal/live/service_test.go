package live_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"connectrpc.com/connect"
	"github.com/mcdev12/liveworkshop/go/internal/live"
	"github.com/mcdev12/liveworkshop/go/internal/live/livetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectCode(t *testing.T) {
	tests := []struct {
		err  error
		want connect.Code
	}{
		{err: fmt.Errorf("get: %w", live.ErrNotFound), want: connect.CodeNotFound},
		{err: fmt.Errorf("pause: %w", live.ErrUnauthorized), want: connect.CodeUnauthenticated},
		{err: fmt.Errorf("slide: %w", live.ErrValidation), want: connect.CodeInvalidArgument},
		{err: fmt.Errorf("save: %w", live.ErrConflict), want: connect.CodeAborted},
		{err: errors.New("disk on fire"), want: connect.CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, live.ConnectCode(tt.err))
		})
	}
}

func TestService_RejectsMalformedIDs(t *testing.T) {
	h := newAppHarness(t, livetest.Controller("facilitator"))
	svc := live.NewService(h.app)

	_, err := svc.Derive(context.Background(), connect.NewRequest(&live.WorkshopRequest{WorkshopID: "nope"}))
	require.Error(t, err)
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))

	_, err = svc.Pause(context.Background(), connect.NewRequest(&live.SessionRequest{
		WorkshopID: h.fixture.Workshop.ID.String(),
		SessionID:  "",
	}))
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))

	_, err = svc.StartPhase(context.Background(), connect.NewRequest(&live.StartPhaseRequest{
		WorkshopID: h.fixture.Workshop.ID.String(),
		SessionID:  h.fixture.Sessions[0].ID.String(),
		Kind:       "lunch",
	}))
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))
}

func TestService_StartPhase(t *testing.T) {
	h := newAppHarness(t, livetest.Controller("facilitator"))
	svc := live.NewService(h.app)

	res, err := svc.StartPhase(context.Background(), connect.NewRequest(&live.StartPhaseRequest{
		WorkshopID: h.fixture.Workshop.ID.String(),
		SessionID:  h.fixture.Sessions[1].ID.String(),
		Kind:       "BUILD",
	}))
	require.NoError(t, err)
	assert.Equal(t, 600, res.Msg.State.RemainingSeconds)
}
