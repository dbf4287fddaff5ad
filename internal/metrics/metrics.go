// Package metrics exposes Prometheus collectors for the supervisor.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Auto-stop attempt results.
const (
	ResultSuccess  = "success"
	ResultDeclined = "declined"
	ResultBusy     = "busy"
)

var (
	runState = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "serverwarden",
		Name:      "run_state",
		Help:      "Believed server run-state (0 = unknown, 1 = up, 2 = down)",
	})

	playersOnline = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "serverwarden",
		Name:      "players_online",
		Help:      "Connected players seen by the last monitor tick",
	})

	idleTicks = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "serverwarden",
		Name:      "idle_ticks",
		Help:      "Consecutive monitor ticks with the server up and empty",
	})

	tickErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "serverwarden",
		Subsystem: "monitor",
		Name:      "tick_errors_total",
		Help:      "Monitor ticks that failed with an unexpected error",
	})

	autoStopAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "serverwarden",
		Subsystem: "monitor",
		Name:      "autostop_attempts_total",
		Help:      "Idle auto-stop attempts by result",
	}, []string{"result"})

	operations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "serverwarden",
		Subsystem: "lifecycle",
		Name:      "operations_total",
		Help:      "Start/stop operations by result",
	}, []string{"op", "result"})
)

// SetRunState records the tracker's current belief.
func SetRunState(state float64) { runState.Set(state) }

// SetPlayersOnline records the player count from the last monitor tick.
func SetPlayersOnline(n int) { playersOnline.Set(float64(n)) }

// SetIdleTicks records the current consecutive-idle counter.
func SetIdleTicks(n int64) { idleTicks.Set(float64(n)) }

// IncTickError counts a monitor tick that ended in an unexpected error.
func IncTickError() { tickErrors.Inc() }

// IncAutoStop counts an idle auto-stop attempt with the given result.
func IncAutoStop(result string) { autoStopAttempts.WithLabelValues(result).Inc() }

// IncOperation counts a lifecycle operation with the given result.
func IncOperation(op, result string) { operations.WithLabelValues(op, result).Inc() }
