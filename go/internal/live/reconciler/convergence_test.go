package reconciler

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/liveworkshop/go/internal/live"
	"github.com/mcdev12/liveworkshop/go/internal/live/livetest"
	"github.com/mcdev12/liveworkshop/go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// commandSnapshots drives a real App through a facilitator session and
// returns every command snapshot along with the time it was produced.
func commandSnapshots(t *testing.T) ([]*models.LiveState, []time.Time) {
	t.Helper()
	clock := clockwork.NewFakeClockAt(start)
	fixture := livetest.NewFixture(clock.Now())
	app := live.NewApp(fixture.Store, livetest.Controller("facilitator"), clock)
	ctx := context.Background()
	workshopID, sessionID := fixture.Workshop.ID, fixture.Sessions[0].ID

	steps := []struct {
		wait time.Duration
		run  func() (*models.LiveState, error)
	}{
		{0, func() (*models.LiveState, error) {
			return app.StartPhase(ctx, workshopID, sessionID, models.PhaseKindBuild)
		}},
		{20 * time.Second, func() (*models.LiveState, error) { return app.Pause(ctx, workshopID, sessionID) }},
		{5 * time.Second, func() (*models.LiveState, error) { return app.Resume(ctx, workshopID, sessionID) }},
		{7*time.Second + 300*time.Millisecond, func() (*models.LiveState, error) {
			return app.Snooze(ctx, workshopID, sessionID, 30)
		}},
		{3 * time.Second, func() (*models.LiveState, error) { return app.ToggleMute(ctx, workshopID, sessionID, true) }},
		{2*time.Second + 600*time.Millisecond, func() (*models.LiveState, error) { return app.Derive(ctx, workshopID) }},
	}

	var (
		states []*models.LiveState
		times  []time.Time
	)
	for _, step := range steps {
		clock.Advance(step.wait)
		state, err := step.run()
		require.NoError(t, err)
		states = append(states, state)
		times = append(times, clock.Now())
	}
	return states, times
}

func TestBaseline_DroppedSnapshotsConverge(t *testing.T) {
	states, times := commandSnapshots(t)
	last := len(states) - 1

	var full, lossy, late Baseline
	for i, s := range states {
		full.Apply(s, times[i])
		if i%3 == 0 || i == last {
			lossy.Apply(s, times[i])
		}
	}
	late.Apply(states[last], times[last].Add(400*time.Millisecond))

	for offset := time.Duration(0); offset <= 10*time.Second; offset += 250 * time.Millisecond {
		at := times[last].Add(400 * time.Millisecond).Add(offset)
		want := full.Display(at)
		assert.Equal(t, want, lossy.Display(at), "lossy at +%s", offset)
		assert.InDelta(t, want, late.Display(at), 1, "late at +%s", offset)
	}

	fullView, _ := full.View(times[last])
	lossyView, _ := lossy.View(times[last])
	assert.Equal(t, fullView, lossyView)
}

func TestReconciler_DroppedSnapshotsConverge(t *testing.T) {
	states, _ := commandSnapshots(t)

	full := newHarness(t, nil)
	for _, s := range states {
		full.r.Apply(s)
		full.next(t)
	}

	lossy := newHarness(t, nil)
	lossy.r.Apply(states[len(states)-1])
	lossy.next(t)

	for i := 0; i < 5; i++ {
		a, b := full.tick(t), lossy.tick(t)
		assert.Equal(t, a.RemainingSeconds, b.RemainingSeconds)
		assert.Equal(t, a.Phase, b.Phase)
		assert.Equal(t, a.Alarm, b.Alarm)
	}
}
