package lifecycle

import (
	"context"
	"errors"
	"fmt"
)

// Shutdown runs the graceful shutdown protocol under the operation lock and
// notifies the tracker on a confirmed stop. The reason string is broadcast
// to connected players through the remote shutdown request. If another
// operation holds the lock the outcome carries MsgBusy.
func (o *Orchestrator) Shutdown(ctx context.Context, reason string) ShutdownOutcome {
	var outcome ShutdownOutcome
	err := o.lock.Do(func() {
		outcome = o.gracefulShutdown(ctx, reason)
	})
	if errors.Is(err, ErrBusy) {
		return ShutdownOutcome{Success: false, Message: MsgBusy}
	}

	if outcome.Success {
		o.tracker.NotifyDown()
	}

	return outcome
}

// gracefulShutdown is the player-aware stop sequence. Each step is a hard
// gate: verify up, verify empty, save the world, wait out the settle delay,
// re-verify empty to close the race with players joining during the save,
// request the stop, confirm the server went down. Every outcome, expected or
// not, is returned as a value with a short sanitized message.
func (o *Orchestrator) gracefulShutdown(ctx context.Context, reason string) ShutdownOutcome {
	if !o.remote.IsUp(ctx) {
		return ShutdownOutcome{Success: false, Message: "server is already down"}
	}

	count, err := o.remote.PlayerCount(ctx)
	if err != nil {
		o.logger.Error("Player check failed: %v", err)
		return ShutdownOutcome{Success: false, Message: "could not check players"}
	}
	if count > 0 {
		return ShutdownOutcome{
			Success: false,
			Message: fmt.Sprintf("cannot stop: %d player(s) online", count),
		}
	}

	o.logger.Info("Saving world before shutdown")
	if err := o.remote.SaveWorld(ctx); err != nil {
		o.logger.Error("World save failed: %v", err)
		return ShutdownOutcome{Success: false, Message: "world save failed"}
	}

	// Settle delay: give a last-instant join time to register before the
	// final player check.
	if !sleep(ctx, o.timings.SettleDelay) {
		return ShutdownOutcome{Success: false, Message: "shutdown canceled"}
	}

	count, err = o.remote.PlayerCount(ctx)
	if err != nil {
		o.logger.Error("Player re-check failed: %v", err)
		return ShutdownOutcome{Success: false, Message: "could not re-check players"}
	}
	if count > 0 {
		return ShutdownOutcome{
			Success: false,
			Message: fmt.Sprintf("aborted: %d player(s) just connected", count),
		}
	}

	grace := int(o.timings.ShutdownGrace.Seconds())
	o.logger.Info("Requesting shutdown with %ds grace: %s", grace, reason)
	if err := o.remote.RequestShutdown(ctx, grace, reason); err != nil {
		o.logger.Error("Shutdown request failed: %v", err)
		return ShutdownOutcome{Success: false, Message: "shutdown request failed"}
	}

	if !o.awaitLiveness(ctx, o.timings.ShutdownTimeout, false) {
		o.logger.Error("Server still up after %s", o.timings.ShutdownTimeout)
		return ShutdownOutcome{Success: false, Message: "shutdown timed out"}
	}

	o.logger.Info("Server stopped")
	return ShutdownOutcome{Success: true, Message: "server stopped"}
}
