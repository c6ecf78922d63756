package worker

import (
	"context"
	"time"

	"queueline-app/internal/service"

	"github.com/sirupsen/logrus"
)

// AlertWorker periodically sweeps alert-enabled tickets and dispatches
// notifications for those that reached their threshold.
type AlertWorker struct {
	alertService service.AlertService
}

func NewAlertWorker(alertService service.AlertService) *AlertWorker {
	return &AlertWorker{
		alertService: alertService,
	}
}

// Run executes a single sweep. The periodic scheduler drives it.
func (w *AlertWorker) Run(ctx context.Context) {
	start := time.Now()

	dispatched, err := w.alertService.SweepOnce(ctx)
	if err != nil {
		logrus.Errorf("Alert sweep failed: %v", err)
		return
	}

	if dispatched > 0 {
		logrus.Infof("Alert sweep dispatched %d alerts in %s",
			dispatched, time.Since(start).Round(time.Millisecond))
	} else {
		logrus.Debug("Alert sweep found no tickets to notify")
	}
}
