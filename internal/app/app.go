// Package app wires the supervisor together and runs it.
package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/serverwarden/serverwarden/config"
	"github.com/serverwarden/serverwarden/internal/adapters/launcher"
	"github.com/serverwarden/serverwarden/internal/adapters/remote"
	"github.com/serverwarden/serverwarden/internal/api"
	"github.com/serverwarden/serverwarden/internal/modules/lifecycle"
	"github.com/serverwarden/serverwarden/internal/modules/monitor"
	"github.com/serverwarden/serverwarden/pkg/logger"
)

const drainTimeout = 5 * time.Second

// App owns every long-lived component: the remote client, the lifecycle
// orchestrator, the idle monitor and the control endpoint. Constructed once
// at process start.
type App struct {
	cfg     config.Config
	logger  *logger.Logger
	monitor *monitor.Monitor
	api     *api.Server
}

// NewApp builds the full component graph from the validated configuration.
func NewApp(cfg config.Config, log *logger.Logger) (*App, error) {
	remoteClient := remote.New(cfg)

	target, err := launcher.TargetFromConfig(cfg.Launch)
	if err != nil {
		return nil, err
	}
	launch := launcher.New(log.WithPrefix("launcher"))

	tracker := lifecycle.NewTracker(
		newStatusReporter(log.WithPrefix("status")),
		log.WithPrefix("tracker"),
	)

	orchestrator := lifecycle.NewOrchestrator(
		remoteClient,
		launch,
		target,
		tracker,
		lifecycle.NewOpLock(),
		lifecycle.Timings{
			StartTimeout:    cfg.Timings.StartTimeout.Std(),
			PollInterval:    cfg.Timings.PollInterval.Std(),
			SettleDelay:     cfg.Timings.SettleDelay.Std(),
			ShutdownGrace:   cfg.Timings.ShutdownGrace.Std(),
			ShutdownTimeout: cfg.Timings.ShutdownTimeout.Std(),
		},
		log.WithPrefix("lifecycle"),
	)

	mon := monitor.New(
		cfg.Timings.MonitorInterval.Std(),
		cfg.Timings.IdleThreshold,
		cfg.AutoShutdown,
		remoteClient,
		tracker,
		orchestrator,
		log.WithPrefix("monitor"),
	)
	tracker.OnTransition(mon.HandleTransition)

	apiServer := api.NewServer(
		cfg.ListenAddr,
		orchestrator,
		tracker,
		remoteClient,
		log.WithPrefix("api"),
	)

	return &App{
		cfg:     cfg,
		logger:  log,
		monitor: mon,
		api:     apiServer,
	}, nil
}

// Run starts the monitor and the control endpoint and blocks until the
// context is canceled or the endpoint fails.
func (app *App) Run(ctx context.Context) error {
	app.monitor.Start(ctx)
	defer app.monitor.Stop()

	go func() {
		<-ctx.Done()
		app.logger.Info("Shutting down")

		drainCtx, cancel := context.WithTimeout(context.Background(), drainTimeout)
		defer cancel()
		if err := app.api.Shutdown(drainCtx); err != nil {
			app.logger.Warn("Control endpoint shutdown: %v", err)
		}
	}()

	if err := app.api.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
