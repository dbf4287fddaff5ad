package lifecycle

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

type recordingPublisher struct {
	states []RunState
	names  []string
	err    error
}

func (p *recordingPublisher) PublishStatus(state RunState, name string) error {
	p.states = append(p.states, state)
	p.names = append(p.names, name)
	return p.err
}

func TestTrackerStartsUnknown(t *testing.T) {
	tracker := NewTracker(&recordingPublisher{}, nopLogger{})
	assert.Equal(t, StateUnknown, tracker.State())
}

func TestTrackerPublishesOncePerRealTransition(t *testing.T) {
	publisher := &recordingPublisher{}
	tracker := NewTracker(publisher, nopLogger{})

	tracker.NotifyUp()
	tracker.NotifyUp()
	tracker.NotifyUp()

	assert.Equal(t, StateUp, tracker.State())
	require.Len(t, publisher.states, 1, "idempotent notify must not re-publish")
	assert.Equal(t, StateUp, publisher.states[0])

	tracker.NotifyDown()
	require.Len(t, publisher.states, 2)
	assert.Equal(t, StateDown, publisher.states[1])
}

func TestTrackerHookFiresOncePerRealTransition(t *testing.T) {
	tracker := NewTracker(&recordingPublisher{}, nopLogger{})

	var fired []RunState
	tracker.OnTransition(func(state RunState) {
		fired = append(fired, state)
	})

	tracker.NotifyUp()
	tracker.NotifyUp()
	tracker.NotifyDown()
	tracker.NotifyDown()

	assert.Equal(t, []RunState{StateUp, StateDown}, fired)
}

func TestTrackerNameRetainedAcrossDown(t *testing.T) {
	tracker := NewTracker(&recordingPublisher{}, nopLogger{})

	tracker.NotifyUp()
	tracker.RememberName("Aurora SMP")
	tracker.NotifyDown()

	assert.Equal(t, "Aurora SMP", tracker.LastKnownName())
}

func TestTrackerIgnoresEmptyName(t *testing.T) {
	tracker := NewTracker(&recordingPublisher{}, nopLogger{})

	tracker.RememberName("Aurora SMP")
	tracker.RememberName("")

	assert.Equal(t, "Aurora SMP", tracker.LastKnownName())
}

func TestTrackerPublisherFailureDoesNotPropagate(t *testing.T) {
	publisher := &recordingPublisher{err: errors.New("display offline")}
	tracker := NewTracker(publisher, nopLogger{})

	require.NotPanics(t, func() {
		tracker.NotifyUp()
	})
	assert.Equal(t, StateUp, tracker.State(), "cosmetic failure must not abort the transition")
}
