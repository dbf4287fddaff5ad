package launcher

import (
	"fmt"
	"os/exec"
)

// launchCommand starts the executable target as a detached child process.
// The server's lifetime is observed through the management API, so the
// process handle is released instead of waited on.
func (l *Launcher) launchCommand(target CommandTarget) error {
	cmd := exec.Command(target.Executable, target.Args...)
	cmd.Dir = target.WorkingDir

	l.logger.Info("Starting server process %s", target.Executable)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrLaunchFailed, target.Executable, err)
	}

	l.logger.Debug("Server process started with pid %d", cmd.Process.Pid)
	if err := cmd.Process.Release(); err != nil {
		return fmt.Errorf("%w: release %s: %v", ErrLaunchFailed, target.Executable, err)
	}

	return nil
}
