// Package launcher starts the supervised server process. It supports two
// mutually exclusive launch targets: a managed systemd unit or a plain
// executable with arguments.
package launcher

import (
	"context"
	"errors"
	"fmt"

	"github.com/serverwarden/serverwarden/config"
)

var (
	// ErrNoTarget is returned when Launch is called with a nil target.
	ErrNoTarget = errors.New("no launch target configured")

	// ErrLaunchFailed is returned when the target could not be started.
	ErrLaunchFailed = errors.New("failed to launch server process")
)

// Target is the tagged launch-target variant. The two implementations,
// ServiceTarget and CommandTarget, are the only members.
type Target interface {
	// Describe returns a short human-readable identification of the target.
	Describe() string

	launchTarget()
}

// ServiceTarget launches a named systemd unit.
type ServiceTarget struct {
	Unit    string
	UserBus bool
}

// Describe implements Target.
func (t ServiceTarget) Describe() string { return "unit " + t.Unit }

func (ServiceTarget) launchTarget() {}

// CommandTarget launches an executable with arguments.
type CommandTarget struct {
	Executable string
	Args       []string
	WorkingDir string
}

// Describe implements Target.
func (t CommandTarget) Describe() string { return "command " + t.Executable }

func (CommandTarget) launchTarget() {}

// TargetFromConfig converts the validated config launch section into a Target.
func TargetFromConfig(launch config.Launch) (Target, error) {
	switch {
	case launch.Service != nil:
		return ServiceTarget{
			Unit:    launch.Service.Unit,
			UserBus: launch.Service.UserBus,
		}, nil
	case launch.Command != nil:
		return CommandTarget{
			Executable: launch.Command.Executable,
			Args:       launch.Command.Args,
			WorkingDir: launch.Command.WorkingDir,
		}, nil
	default:
		return nil, ErrNoTarget
	}
}

// Logger defines the logging interface used by the launcher.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
}

// Launcher starts launch targets. It is side-effecting only: callers observe
// process readiness through the management API, not through the launcher.
type Launcher struct {
	logger Logger
}

// New creates a Launcher.
func New(logger Logger) *Launcher {
	return &Launcher{logger: logger}
}

// Launch starts the given target. It returns once the launch has been handed
// to the operating system; it does not wait for the server to become ready.
func (l *Launcher) Launch(ctx context.Context, target Target) error {
	switch t := target.(type) {
	case ServiceTarget:
		return l.launchService(ctx, t)
	case CommandTarget:
		return l.launchCommand(t)
	case nil:
		return ErrNoTarget
	default:
		return fmt.Errorf("%w: unsupported target %T", ErrLaunchFailed, target)
	}
}
