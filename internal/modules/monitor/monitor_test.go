package monitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/serverwarden/serverwarden/internal/modules/lifecycle"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

type nopPublisher struct{}

func (nopPublisher) PublishStatus(lifecycle.RunState, string) error { return nil }

// fakeRemote scripts the monitor's polls. PlayerCount pops counts from a
// sequence, repeating the last entry.
type fakeRemote struct {
	name     string
	nameErr  error
	counts   []int
	countErr error

	nameCalls  int
	countCalls int
}

func (f *fakeRemote) ServerName(context.Context) (string, error) {
	f.nameCalls++
	if f.nameErr != nil {
		return "", f.nameErr
	}
	return f.name, nil
}

func (f *fakeRemote) PlayerCount(context.Context) (int, error) {
	f.countCalls++
	if f.countErr != nil {
		return 0, f.countErr
	}
	if len(f.counts) == 0 {
		return 0, nil
	}
	count := f.counts[0]
	if len(f.counts) > 1 {
		f.counts = f.counts[1:]
	}
	return count, nil
}

type fakeStopper struct {
	outcome lifecycle.ShutdownOutcome
	calls   int
	reasons []string

	// onStop lets a test flip state when the stop "succeeds".
	onStop func()
}

func (f *fakeStopper) Shutdown(_ context.Context, reason string) lifecycle.ShutdownOutcome {
	f.calls++
	f.reasons = append(f.reasons, reason)
	if f.onStop != nil {
		f.onStop()
	}
	return f.outcome
}

func newTestMonitor(t *testing.T, threshold int, remote *fakeRemote, stopper *fakeStopper) (*Monitor, *lifecycle.Tracker) {
	t.Helper()
	tracker := lifecycle.NewTracker(nopPublisher{}, nopLogger{})
	m := New(time.Hour, threshold, true, remote, tracker, stopper, nopLogger{})
	tracker.OnTransition(m.HandleTransition)
	return m, tracker
}

func TestTickSkippedWhileDown(t *testing.T) {
	remote := &fakeRemote{name: "srv"}
	m, tracker := newTestMonitor(t, 2, remote, &fakeStopper{})
	tracker.NotifyDown()

	m.tick(context.Background())

	assert.Zero(t, remote.nameCalls, "a down server must cost no remote calls")
	assert.Zero(t, remote.countCalls)
}

func TestTickMarksDownWhenLivenessFails(t *testing.T) {
	remote := &fakeRemote{nameErr: errors.New("connection refused")}
	m, tracker := newTestMonitor(t, 2, remote, &fakeStopper{})
	tracker.NotifyUp()
	m.idleTicks.Store(1)

	m.tick(context.Background())

	assert.Equal(t, lifecycle.StateDown, tracker.State())
	assert.Zero(t, m.IdleTicks(), "transition away from up resets the counter")
	assert.Zero(t, remote.countCalls, "no player poll after a failed liveness poll")
}

func TestTickConfirmsUpFromUnknown(t *testing.T) {
	remote := &fakeRemote{name: "Aurora SMP", counts: []int{3}}
	m, tracker := newTestMonitor(t, 2, remote, &fakeStopper{})

	m.tick(context.Background())

	assert.Equal(t, lifecycle.StateUp, tracker.State())
	assert.Equal(t, "Aurora SMP", tracker.LastKnownName())
	assert.Zero(t, m.IdleTicks())
}

func TestIdleCounterIncrementsWhileEmpty(t *testing.T) {
	remote := &fakeRemote{name: "srv", counts: []int{0}}
	m, _ := newTestMonitor(t, 10, remote, &fakeStopper{})

	m.tick(context.Background())
	assert.EqualValues(t, 1, m.IdleTicks())

	m.tick(context.Background())
	assert.EqualValues(t, 2, m.IdleTicks())
}

func TestIdleCounterResetsOnPlayers(t *testing.T) {
	remote := &fakeRemote{name: "srv", counts: []int{0, 0, 3}}
	m, _ := newTestMonitor(t, 10, remote, &fakeStopper{})

	m.tick(context.Background())
	m.tick(context.Background())
	require.EqualValues(t, 2, m.IdleTicks())

	m.tick(context.Background())
	assert.Zero(t, m.IdleTicks())
}

func TestErroringTickLeavesCounterUntouched(t *testing.T) {
	remote := &fakeRemote{name: "srv", counts: []int{0}}
	m, _ := newTestMonitor(t, 10, remote, &fakeStopper{})

	m.tick(context.Background())
	require.EqualValues(t, 1, m.IdleTicks())

	remote.countErr = errors.New("timeout")
	m.tick(context.Background())
	assert.EqualValues(t, 1, m.IdleTicks())
}

func TestAutoStopTriggersAtThreshold(t *testing.T) {
	remote := &fakeRemote{name: "srv", counts: []int{0}}
	stopper := &fakeStopper{outcome: lifecycle.ShutdownOutcome{Success: true, Message: "server stopped"}}
	m, tracker := newTestMonitor(t, 2, remote, stopper)
	stopper.onStop = tracker.NotifyDown

	m.tick(context.Background())
	assert.Zero(t, stopper.calls, "below threshold: no action")

	m.tick(context.Background())
	require.Equal(t, 1, stopper.calls)
	assert.Equal(t, autoStopReason, stopper.reasons[0])
	assert.Zero(t, m.IdleTicks(), "successful auto-stop resets the counter")
}

func TestAutoStopDeclinedKeepsCounter(t *testing.T) {
	remote := &fakeRemote{name: "srv", counts: []int{0}}
	stopper := &fakeStopper{outcome: lifecycle.ShutdownOutcome{
		Success: false,
		Message: "aborted: 1 player(s) just connected",
	}}
	m, _ := newTestMonitor(t, 2, remote, stopper)

	m.tick(context.Background())
	m.tick(context.Background())
	require.Equal(t, 1, stopper.calls)
	assert.EqualValues(t, 2, m.IdleTicks(), "declined attempt leaves the counter for re-evaluation")

	m.tick(context.Background())
	assert.Equal(t, 2, stopper.calls, "threshold still met on the next tick")
	assert.EqualValues(t, 3, m.IdleTicks())
}

func TestAutoStopBusySkipsSilently(t *testing.T) {
	remote := &fakeRemote{name: "srv", counts: []int{0}}
	stopper := &fakeStopper{outcome: lifecycle.ShutdownOutcome{
		Success: false,
		Message: lifecycle.MsgBusy,
	}}
	m, _ := newTestMonitor(t, 2, remote, stopper)

	m.tick(context.Background())
	m.tick(context.Background())

	assert.Equal(t, 1, stopper.calls)
	assert.EqualValues(t, 2, m.IdleTicks(), "busy skip must not move the counter")
}

func TestAutoShutdownDisabledNeverStops(t *testing.T) {
	remote := &fakeRemote{name: "srv", counts: []int{0}}
	stopper := &fakeStopper{}
	tracker := lifecycle.NewTracker(nopPublisher{}, nopLogger{})
	m := New(time.Hour, 1, false, remote, tracker, stopper, nopLogger{})
	tracker.OnTransition(m.HandleTransition)

	m.tick(context.Background())
	m.tick(context.Background())

	assert.Zero(t, stopper.calls)
}

func TestTickPanicDoesNotEscape(t *testing.T) {
	// A nil stopper makes a threshold tick panic; safeTick must swallow it.
	remote := &fakeRemote{name: "srv", counts: []int{0}}
	tracker := lifecycle.NewTracker(nopPublisher{}, nopLogger{})
	m := New(time.Hour, 1, true, remote, tracker, nil, nopLogger{})
	tracker.OnTransition(m.HandleTransition)

	require.NotPanics(t, func() {
		m.safeTick(context.Background())
	})
}

func TestSeedMarksServerUp(t *testing.T) {
	remote := &fakeRemote{name: "Aurora SMP"}
	m, tracker := newTestMonitor(t, 2, remote, &fakeStopper{})

	m.Start(context.Background())
	defer m.Stop()

	assert.Equal(t, lifecycle.StateUp, tracker.State())
	assert.Equal(t, "Aurora SMP", tracker.LastKnownName())
}

func TestSeedMarksServerDown(t *testing.T) {
	remote := &fakeRemote{nameErr: errors.New("connection refused")}
	m, tracker := newTestMonitor(t, 2, remote, &fakeStopper{})

	m.Start(context.Background())
	defer m.Stop()

	assert.Equal(t, lifecycle.StateDown, tracker.State())
}

func TestStartAndStopAreIdempotent(t *testing.T) {
	remote := &fakeRemote{name: "srv"}
	m, _ := newTestMonitor(t, 2, remote, &fakeStopper{})

	ctx := context.Background()
	m.Start(ctx)
	m.Start(ctx)
	assert.Equal(t, 1, remote.nameCalls, "second Start must not re-seed")

	m.Stop()
	require.NotPanics(t, m.Stop)

	// Restartable after a stop.
	m.Start(ctx)
	assert.Equal(t, 2, remote.nameCalls)
	m.Stop()
}
