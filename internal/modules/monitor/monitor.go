// Package monitor implements the recurring watch loop: it polls the
// supervised server's liveness and player count, keeps the consecutive-idle
// counter and triggers the graceful shutdown protocol once the idle
// threshold is reached.
package monitor

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/serverwarden/serverwarden/internal/metrics"
	"github.com/serverwarden/serverwarden/internal/modules/lifecycle"
)

type (
	// Logger defines the logging interface used by the monitor.
	Logger interface {
		Debug(format string, args ...any)
		Warn(format string, args ...any)
		Info(format string, args ...any)
		Error(format string, args ...any)
	}

	// Remote is the slice of the management API the monitor polls. A failed
	// ServerName call doubles as a negative liveness probe.
	Remote interface {
		ServerName(ctx context.Context) (string, error)
		PlayerCount(ctx context.Context) (int, error)
	}

	// Stopper runs the graceful shutdown protocol. The monitor shares this
	// code path with the manual stop command.
	Stopper interface {
		Shutdown(ctx context.Context, reason string) lifecycle.ShutdownOutcome
	}
)

const autoStopReason = "Stopping idle server"

// Monitor drives one tick per interval. It owns the consecutive-idle
// counter; nothing else mutates it except the tracker's transition hook.
type Monitor struct {
	interval     time.Duration
	threshold    int64
	autoShutdown bool

	remote  Remote
	tracker *lifecycle.Tracker
	stopper Stopper
	logger  Logger

	idleTicks atomic.Int64

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a Monitor. It does not start ticking until Start is called.
func New(
	interval time.Duration,
	threshold int,
	autoShutdown bool,
	remote Remote,
	tracker *lifecycle.Tracker,
	stopper Stopper,
	logger Logger,
) *Monitor {
	return &Monitor{
		interval:     interval,
		threshold:    int64(threshold),
		autoShutdown: autoShutdown,
		remote:       remote,
		tracker:      tracker,
		stopper:      stopper,
		logger:       logger,
	}
}

// HandleTransition is the tracker's transition hook: any real run-state
// change restarts idle accounting from zero.
func (m *Monitor) HandleTransition(state lifecycle.RunState) {
	m.idleTicks.Store(0)
	metrics.SetIdleTicks(0)
	m.logger.Debug("Idle counter reset on transition to %s", state)
}

// IdleTicks returns the current consecutive-idle counter.
func (m *Monitor) IdleTicks() int64 {
	return m.idleTicks.Load()
}

// Start begins the recurring tick loop after one immediate status check that
// seeds the run-state without waiting a full interval. Calling Start while
// already running is a no-op.
func (m *Monitor) Start(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil {
		return
	}

	loopCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.done = make(chan struct{})

	m.seed(loopCtx)

	m.logger.Info("Monitor started with interval %s", m.interval)
	go m.run(loopCtx, m.done)
}

// Stop cancels the recurring loop and waits for the in-flight tick to
// finish. Calling Stop while already stopped is a no-op.
func (m *Monitor) Stop() {
	m.mu.Lock()
	cancel, done := m.cancel, m.done
	m.cancel, m.done = nil, nil
	m.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	m.logger.Info("Monitor stopped")
}

func (m *Monitor) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.safeTick(ctx)
		}
	}
}

// seed performs the out-of-band status check that gives the tracker its
// first real state.
func (m *Monitor) seed(ctx context.Context) {
	name, err := m.remote.ServerName(ctx)
	if err != nil {
		m.logger.Info("Initial status check: server is down")
		m.tracker.NotifyDown()
		return
	}

	m.logger.Info("Initial status check: server %q is up", name)
	m.tracker.NotifyUp()
	m.tracker.RememberName(name)
}

// safeTick shields the loop from a panicking tick; one bad tick must never
// stop future ticks.
func (m *Monitor) safeTick(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("Monitor tick panicked: %v", r)
			metrics.IncTickError()
		}
	}()

	m.tick(ctx)
}

// tick is one pass of the watch loop. While the server is believed down the
// tick is skipped entirely, so a stopped server costs no remote calls.
func (m *Monitor) tick(ctx context.Context) {
	if m.tracker.State() == lifecycle.StateDown {
		return
	}

	name, err := m.remote.ServerName(ctx)
	if err != nil {
		m.logger.Info("Liveness poll failed, marking server down: %v", err)
		m.tracker.NotifyDown()
		return
	}

	if m.tracker.State() != lifecycle.StateUp {
		m.tracker.NotifyUp()
	}
	m.tracker.RememberName(name)

	count, err := m.remote.PlayerCount(ctx)
	if err != nil {
		// Erroring tick: log, count the error, leave the idle counter alone.
		m.logger.Warn("Player poll failed: %v", err)
		metrics.IncTickError()
		return
	}
	metrics.SetPlayersOnline(count)

	if count > 0 {
		m.idleTicks.Store(0)
		metrics.SetIdleTicks(0)
		return
	}

	idle := m.idleTicks.Add(1)
	metrics.SetIdleTicks(idle)
	m.logger.Debug("Server is empty (%d/%d idle ticks)", idle, m.threshold)

	if idle < m.threshold || !m.autoShutdown {
		return
	}

	m.logger.Info("Server idle for %d ticks, attempting auto-stop", idle)
	outcome := m.stopper.Shutdown(ctx, autoStopReason)
	switch {
	case outcome.Success:
		m.idleTicks.Store(0)
		metrics.SetIdleTicks(0)
		metrics.IncAutoStop(metrics.ResultSuccess)
	case outcome.Message == lifecycle.MsgBusy:
		// A manual operation holds the lock; try again next tick without
		// touching the counter.
		m.logger.Debug("Auto-stop skipped: %s", outcome.Message)
		metrics.IncAutoStop(metrics.ResultBusy)
	default:
		// The attempt was declined (players reconnected, save failed, ...).
		// The counter keeps its value so the next tick re-evaluates.
		m.logger.Info("Auto-stop declined: %s", outcome.Message)
		metrics.IncAutoStop(metrics.ResultDeclined)
	}
}
