package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/liveworkshop/go/internal/live"
	"github.com/mcdev12/liveworkshop/go/internal/live/auth"
	"github.com/mcdev12/liveworkshop/go/internal/live/broadcast"
	"github.com/mcdev12/liveworkshop/go/internal/live/livetest"
	"github.com/mcdev12/liveworkshop/go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "livectl-test-secret"

// sharedTransport keeps the in-memory hub open across commands.
type sharedTransport struct {
	broadcast.Transport
}

func (sharedTransport) Close() error { return nil }

type harness struct {
	deps      deps
	clock     *clockwork.FakeClock
	fixture   *livetest.Fixture
	transport *broadcast.MemoryTransport
	server    *httptest.Server
	token     string

	mu       sync.Mutex
	received []broadcast.Message
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	fixture := livetest.NewFixture(clock.Now())

	authorizer, err := auth.NewAuthorizer(auth.Config{Secret: testSecret, Issuer: "liveworkshop"}, clock)
	require.NoError(t, err)
	token, err := authorizer.IssueToken("facilitator")
	require.NoError(t, err)

	app := live.NewApp(fixture.Store, authorizer, clock)
	path, handler := live.NewLiveServiceHandler(live.NewService(app), connect.WithInterceptors(auth.NewServerInterceptor()))
	mux := http.NewServeMux()
	mux.Handle(path, handler)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	transport := broadcast.NewMemoryTransport()
	h := &harness{
		clock:     clock,
		fixture:   fixture,
		transport: transport,
		server:    server,
		token:     token,
	}
	h.deps = deps{
		clock:      clock,
		httpClient: server.Client(),
		openTransport: func(context.Context, *options) (broadcast.Transport, error) {
			return sharedTransport{transport}, nil
		},
	}

	_, err = broadcast.NewSubscriber(transport).Subscribe(fixture.Workshop.ID, func(msg broadcast.Message) {
		h.mu.Lock()
		defer h.mu.Unlock()
		h.received = append(h.received, msg)
	})
	require.NoError(t, err)
	return h
}

func (h *harness) messages() []broadcast.Message {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]broadcast.Message(nil), h.received...)
}

func (h *harness) run(ctx context.Context, out io.Writer, args ...string) error {
	cmd := newRootCmd(h.deps)
	cmd.SetOut(out)
	cmd.SetErr(io.Discard)
	base := []string{"--api-url", h.server.URL, "--workshop", h.fixture.Workshop.ID.String()}
	cmd.SetArgs(append(base, args...))
	return cmd.ExecuteContext(ctx)
}

func (h *harness) runJSON(t *testing.T, args ...string) *models.LiveState {
	t.Helper()
	var out bytes.Buffer
	require.NoError(t, h.run(context.Background(), &out, append([]string{"--json"}, args...)...))

	var state models.LiveState
	require.NoError(t, json.Unmarshal(out.Bytes(), &state))
	return &state
}

func TestTokenCommand(t *testing.T) {
	h := newHarness(t)

	var out bytes.Buffer
	require.NoError(t, h.run(context.Background(), &out, "token", "--secret", testSecret, "--subject", "mc"))

	authorizer, err := auth.NewAuthorizer(auth.Config{Secret: testSecret, Issuer: "liveworkshop"}, h.clock)
	require.NoError(t, err)
	identity, err := authorizer.Verify(strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.Equal(t, "mc", identity.Subject)

	err = h.run(context.Background(), io.Discard, "token", "--secret", "")
	assert.Error(t, err)
}

func TestStateCommand(t *testing.T) {
	h := newHarness(t)

	state := h.runJSON(t, "state")
	assert.Equal(t, h.fixture.Workshop.ID, state.WorkshopID)
	assert.Equal(t, models.DisplayPhaseIdle, state.Phase)
	assert.Empty(t, h.messages(), "reads never broadcast")

	var out bytes.Buffer
	require.NoError(t, h.run(context.Background(), &out, "state"))
	assert.Contains(t, out.String(), "Welcome")
}

func TestTimerCommandsPublish(t *testing.T) {
	h := newHarness(t)
	session := h.fixture.Sessions[0].ID.String()

	state := h.runJSON(t, "--token", h.token, "start", session, "--kind", "build")
	assert.Equal(t, models.DisplayPhaseBuild, state.Phase)
	assert.Equal(t, 300, state.RemainingSeconds)

	h.clock.Advance(30 * time.Second)
	state = h.runJSON(t, "--token", h.token, "pause", session)
	assert.Equal(t, models.DisplayPhasePaused, state.Phase)
	assert.Equal(t, 270, state.RemainingSeconds)

	state = h.runJSON(t, "--token", h.token, "snooze", session, "--seconds", "30")
	assert.Equal(t, 300, state.RemainingSeconds)

	state = h.runJSON(t, "--token", h.token, "mute", session)
	assert.True(t, state.Alarm.Muted)

	state = h.runJSON(t, "--token", h.token, "complete", session)
	assert.Equal(t, models.DisplayPhaseComplete, state.Phase)

	msgs := h.messages()
	require.Len(t, msgs, 5)
	for _, msg := range msgs {
		assert.Equal(t, broadcast.MessageTimerUpdate, msg.Type)
	}
}

func TestSlideAndModeCommandsPublishStateSync(t *testing.T) {
	h := newHarness(t)

	state := h.runJSON(t, "--token", h.token, "slide", "3")
	assert.Equal(t, 3, state.ActiveSlideIndex)

	state = h.runJSON(t, "--token", h.token, "mode", "focus")
	assert.Equal(t, models.DisplayModeFocus, state.DisplayMode)

	h.runJSON(t, "--token", h.token, "sync")

	msgs := h.messages()
	require.Len(t, msgs, 3)
	for _, msg := range msgs {
		assert.Equal(t, broadcast.MessageStateSync, msg.Type)
	}
}

func TestCommandErrors(t *testing.T) {
	h := newHarness(t)
	session := h.fixture.Sessions[0].ID.String()

	tests := []struct {
		name string
		args []string
	}{
		{name: "no token", args: []string{"pause", session}},
		{name: "bad token", args: []string{"--token", "garbage", "pause", session}},
		{name: "bad session", args: []string{"--token", h.token, "pause", "nope"}},
		{name: "bad kind", args: []string{"--token", h.token, "start", session, "--kind", "nap"}},
		{name: "bad mode", args: []string{"--token", h.token, "mode", "cinema"}},
		{name: "bad slide", args: []string{"--token", h.token, "slide", "99"}},
		{name: "zero snooze", args: []string{"--token", h.token, "snooze", session, "--seconds", "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, h.run(context.Background(), io.Discard, tt.args...))
		})
	}
	assert.Empty(t, h.messages(), "failed commands never broadcast")

	cmd := newRootCmd(h.deps)
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"--api-url", h.server.URL, "--workshop", "", "state"})
	assert.Error(t, cmd.Execute())
}

// lockedBuffer is written by the reconciler goroutine and read by the test.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestWatchFollowsBroadcasts(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out := &lockedBuffer{}
	errCh := make(chan error, 1)
	go func() {
		errCh <- h.run(ctx, out, "--json", "watch")
	}()

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), `"phase":"idle"`)
	}, 2*time.Second, 10*time.Millisecond)

	h.runJSON(t, "--token", h.token, "start", h.fixture.Sessions[1].ID.String())

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), `"remaining_seconds":600`)
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop")
	}
}

func TestSnapshotGate(t *testing.T) {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	at := func(offset time.Duration, remaining int) *models.LiveState {
		return &models.LiveState{RemainingSeconds: remaining, TimerRunning: true, UpdatedAt: base.Add(offset)}
	}

	newGate := func() (*snapshotGate, *[]int) {
		var applied []int
		return &snapshotGate{apply: func(s *models.LiveState) { applied = append(applied, s.RemainingSeconds) }}, &applied
	}

	t.Run("initial snapshot before any broadcast", func(t *testing.T) {
		gate, applied := newGate()
		assert.True(t, gate.cold(at(0, 300)))
		gate.broadcast(at(time.Second, 290))
		assert.Equal(t, []int{300, 290}, *applied)
	})

	t.Run("stale initial snapshot after a newer broadcast is dropped", func(t *testing.T) {
		gate, applied := newGate()
		gate.broadcast(at(10*time.Second, 330))
		assert.False(t, gate.cold(at(0, 300)))
		assert.Equal(t, []int{330}, *applied)
	})

	t.Run("same state already broadcast is dropped", func(t *testing.T) {
		gate, applied := newGate()
		gate.broadcast(at(5*time.Second, 295))
		assert.False(t, gate.cold(at(5*time.Second, 294)))
		assert.Equal(t, []int{295}, *applied)
	})

	t.Run("initial snapshot newer than the broadcast still applies", func(t *testing.T) {
		gate, applied := newGate()
		gate.broadcast(at(0, 300))
		assert.True(t, gate.cold(at(20*time.Second, 280)))
		assert.Equal(t, []int{300, 280}, *applied)
	})

	t.Run("nil snapshots are ignored", func(t *testing.T) {
		gate, applied := newGate()
		gate.broadcast(nil)
		assert.False(t, gate.cold(nil))
		assert.Empty(t, *applied)
	})
}
