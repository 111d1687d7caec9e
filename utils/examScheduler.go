package utils

import (
	"log"
	"time"

	"examly/config"
	"examly/database"
	"examly/lifecycle"

	"github.com/robfig/cron/v3"
)

func logScheduler(message string) {
	log.Printf("[EXAM-SCHEDULER %s] %s", time.Now().Format(time.RFC3339), message)
}

// InitializeExamScheduler starts the optional cron sweep that
// reconciles exam statuses on a schedule. Request-path reconciliation
// already keeps statuses correct for everything that is observed; the
// sweep only tightens staleness for exams nobody touches. Disabled
// unless EXAM_SWEEP_CRON is set; returns nil in that case.
func InitializeExamScheduler() *cron.Cron {
	spec := config.AppConfig.ExamSweepCron
	if spec == "" {
		logScheduler("EXAM_SWEEP_CRON not set, background sweep disabled")
		return nil
	}

	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		changed, err := lifecycle.ReconcileAll(database.Database.Db, time.Now())
		if err != nil {
			logScheduler("Error reconciling exam statuses: " + err.Error())
			return
		}
		if changed > 0 {
			logScheduler("Sweep reconciled exam statuses")
		}
	})
	if err != nil {
		logScheduler("Invalid EXAM_SWEEP_CRON, background sweep disabled: " + err.Error())
		return nil
	}

	c.Start()
	logScheduler("Background sweep started with spec " + spec)
	return c
}
