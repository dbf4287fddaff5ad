package launcher

import (
	"context"
	"fmt"

	"github.com/coreos/go-systemd/v22/dbus"
)

// launchService starts a systemd unit over D-Bus using the replace mode.
// The connection is opened per launch; starts are rare enough that keeping a
// long-lived bus connection is not worth its reconnect handling.
func (l *Launcher) launchService(ctx context.Context, target ServiceTarget) error {
	conn, err := l.connect(ctx, target.UserBus)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLaunchFailed, err)
	}
	defer conn.Close()

	l.logger.Info("Starting systemd unit %s", target.Unit)
	if _, err := conn.StartUnitContext(ctx, target.Unit, "replace", nil); err != nil {
		return fmt.Errorf("%w: unit %s: %v", ErrLaunchFailed, target.Unit, err)
	}

	return nil
}

func (l *Launcher) connect(ctx context.Context, userBus bool) (*dbus.Conn, error) {
	if userBus {
		return dbus.NewUserConnectionContext(ctx)
	}
	return dbus.NewSystemConnectionContext(ctx)
}
