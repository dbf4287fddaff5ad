package app

import (
	"github.com/serverwarden/serverwarden/internal/metrics"
	"github.com/serverwarden/serverwarden/internal/modules/lifecycle"
	"github.com/serverwarden/serverwarden/pkg/logger"
)

// statusReporter is the tracker's publication side effect: it logs the new
// display status and mirrors it into the run-state gauge. Cosmetic by
// contract; any failure here must never abort a lifecycle operation.
type statusReporter struct {
	logger *logger.Logger
}

func newStatusReporter(log *logger.Logger) *statusReporter {
	return &statusReporter{logger: log}
}

// PublishStatus implements lifecycle.StatusPublisher.
func (r *statusReporter) PublishStatus(state lifecycle.RunState, name string) error {
	metrics.SetRunState(float64(state))

	if name != "" {
		r.logger.Info("Status: %s is %s", name, state)
	} else {
		r.logger.Info("Status: server is %s", state)
	}

	return nil
}
