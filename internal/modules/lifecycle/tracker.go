package lifecycle

import "sync"

// RunState is the orchestrator's belief about whether the supervised server
// is reachable.
type RunState int32

// Possible run-states. A fresh tracker starts at StateUnknown.
const (
	StateUnknown RunState = iota
	StateUp
	StateDown
)

func (s RunState) String() string {
	switch s {
	case StateUnknown:
		return "unknown"
	case StateUp:
		return "up"
	case StateDown:
		return "down"
	default:
		return "invalid"
	}
}

// StatusPublisher receives the display-status side effect of a real run-state
// transition. Publication is best-effort: a returned error is logged by the
// tracker and never propagated to the caller of a lifecycle operation.
type StatusPublisher interface {
	PublishStatus(state RunState, name string) error
}

// Tracker holds the believed run-state of the supervised server and its last
// known display name. It is the only place run-state transitions happen;
// callers drive it through NotifyUp and NotifyDown, which are idempotent.
type Tracker struct {
	mu            sync.Mutex
	state         RunState
	lastKnownName string
	onTransition  func(RunState)

	publisher StatusPublisher
	logger    Logger
}

// NewTracker creates a Tracker in StateUnknown.
func NewTracker(publisher StatusPublisher, logger Logger) *Tracker {
	return &Tracker{
		state:     StateUnknown,
		publisher: publisher,
		logger:    logger,
	}
}

// OnTransition registers a hook invoked once per real transition, after the
// new state is committed. Set once during wiring, before the monitor starts.
func (t *Tracker) OnTransition(fn func(RunState)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onTransition = fn
}

// NotifyUp records that the server was confirmed up. A no-op while already up.
func (t *Tracker) NotifyUp() {
	t.transitionTo(StateUp)
}

// NotifyDown records that the server was confirmed down. A no-op while
// already down.
func (t *Tracker) NotifyDown() {
	t.transitionTo(StateDown)
}

// State returns the current believed run-state.
func (t *Tracker) State() RunState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// RememberName caches the server's display name. The name survives a
// transition to down so status display stays meaningful while stopped.
func (t *Tracker) RememberName(name string) {
	if name == "" {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lastKnownName = name
}

// LastKnownName returns the cached display name, possibly empty.
func (t *Tracker) LastKnownName() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastKnownName
}

// transitionTo commits an observed run-state. Equal states are a no-op; a
// real change fires the transition hook and publishes the new status exactly
// once.
func (t *Tracker) transitionTo(observed RunState) {
	t.mu.Lock()
	if t.state == observed {
		t.mu.Unlock()
		return
	}
	t.state = observed
	name := t.lastKnownName
	hook := t.onTransition
	t.mu.Unlock()

	t.logger.Info("Server state changed to %s", observed)

	if hook != nil {
		hook(observed)
	}

	if t.publisher != nil {
		if err := t.publisher.PublishStatus(observed, name); err != nil {
			t.logger.Warn("Failed to publish status: %v", err)
		}
	}
}
