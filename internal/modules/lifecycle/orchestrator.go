// Package lifecycle implements the server lifecycle orchestrator: the
// operation lock, the run-state tracker and the startup and graceful
// shutdown protocols.
package lifecycle

import (
	"context"
	"errors"
	"time"

	"github.com/serverwarden/serverwarden/internal/adapters/launcher"
)

// Start result reasons surfaced to callers.
const (
	ReasonAlreadyRunning = "already_running"
	ReasonBusy           = "busy"
	ReasonLaunchFailed   = "launch failed"
	ReasonStartTimeout   = "did not come up in time"
)

// MsgBusy is the ShutdownOutcome message used when the operation lock is held.
var MsgBusy = ErrBusy.Error()

type (
	// Logger defines the logging interface used by the lifecycle components.
	Logger interface {
		Debug(format string, args ...any)
		Warn(format string, args ...any)
		Info(format string, args ...any)
		Error(format string, args ...any)
	}

	// RemoteConsole is the slice of the management API the protocols need.
	RemoteConsole interface {
		IsUp(ctx context.Context) bool
		PlayerCount(ctx context.Context) (int, error)
		SaveWorld(ctx context.Context) error
		RequestShutdown(ctx context.Context, delaySeconds int, message string) error
	}

	// Launcher starts the supervised server process.
	Launcher interface {
		Launch(ctx context.Context, target launcher.Target) error
	}
)

// StartResult is the value returned by the startup protocol. Started=false
// with a reason is an expected non-success, not an error.
type StartResult struct {
	Started bool   `json:"started"`
	Reason  string `json:"reason,omitempty"`
}

// ShutdownOutcome is the value returned by the shutdown protocol to any
// caller, manual or automatic. Expected "cannot stop yet" conditions are
// carried here, never as errors.
type ShutdownOutcome struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Timings holds the externally supplied, pre-validated timing parameters of
// the protocols.
type Timings struct {
	StartTimeout    time.Duration
	PollInterval    time.Duration
	SettleDelay     time.Duration
	ShutdownGrace   time.Duration
	ShutdownTimeout time.Duration
}

// Orchestrator runs the startup and shutdown protocols. Both execute under
// the operation lock, so at most one state-mutating operation is in flight
// at any instant, regardless of whether it was triggered manually or by the
// idle monitor.
type Orchestrator struct {
	remote   RemoteConsole
	launcher Launcher
	target   launcher.Target
	tracker  *Tracker
	lock     *OpLock
	timings  Timings
	logger   Logger
}

// NewOrchestrator wires an Orchestrator.
func NewOrchestrator(
	remote RemoteConsole,
	launch Launcher,
	target launcher.Target,
	tracker *Tracker,
	lock *OpLock,
	timings Timings,
	logger Logger,
) *Orchestrator {
	return &Orchestrator{
		remote:   remote,
		launcher: launch,
		target:   target,
		tracker:  tracker,
		lock:     lock,
		timings:  timings,
		logger:   logger,
	}
}

// Start runs the startup protocol under the operation lock and notifies the
// tracker on confirmed liveness. If another operation holds the lock the
// result carries ReasonBusy.
func (o *Orchestrator) Start(ctx context.Context) StartResult {
	var result StartResult
	err := o.lock.Do(func() {
		result = o.start(ctx)
	})
	if errors.Is(err, ErrBusy) {
		return StartResult{Started: false, Reason: ReasonBusy}
	}

	if result.Started {
		o.tracker.NotifyUp()
	}

	return result
}

// start is the startup protocol: check, launch, poll until up or timeout.
// It does not own run-state; the caller notifies the tracker on success.
func (o *Orchestrator) start(ctx context.Context) StartResult {
	if o.remote.IsUp(ctx) {
		return StartResult{Started: false, Reason: ReasonAlreadyRunning}
	}

	o.logger.Info("Launching server (%s)", o.target.Describe())
	if err := o.launcher.Launch(ctx, o.target); err != nil {
		o.logger.Error("Launch failed: %v", err)
		return StartResult{Started: false, Reason: ReasonLaunchFailed}
	}

	if !o.awaitLiveness(ctx, o.timings.StartTimeout, true) {
		o.logger.Error("Server did not come up within %s", o.timings.StartTimeout)
		return StartResult{Started: false, Reason: ReasonStartTimeout}
	}

	o.logger.Info("Server is up")
	return StartResult{Started: true}
}

// awaitLiveness polls the liveness probe at the configured interval until it
// matches wantUp or the timeout elapses. A failed probe during the loop is a
// transient condition, swallowed and retried.
func (o *Orchestrator) awaitLiveness(ctx context.Context, timeout time.Duration, wantUp bool) bool {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(o.timings.PollInterval)
	defer ticker.Stop()

	attempt := 1
	for {
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
			if o.remote.IsUp(ctx) == wantUp {
				return true
			}
			o.logger.Debug("Liveness poll attempt %d: still waiting (want up=%t)", attempt, wantUp)
			attempt++
		}
	}
}

// sleep waits for d or until the context is canceled. Returns false on
// cancellation.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
