package middleware

import (
	"log"
	"time"

	"examly/config"
	"examly/database"
	"examly/lifecycle"

	"github.com/gofiber/fiber/v2"
)

// smartScheduler owns the process-wide "last global scan" timestamp for
// the throttled policy. Initialized by InitExamStatusScheduler; its zero
// state reconciles on the first request.
var smartScheduler = lifecycle.NewScheduler(15 * time.Minute)

// InitExamStatusScheduler configures the throttle interval from config.
// Call once after LoadConfig.
func InitExamStatusScheduler() {
	smartScheduler = lifecycle.NewScheduler(
		time.Duration(config.AppConfig.ExamCheckIntervalMinutes) * time.Minute)
}

// AutoUpdateExamStatus is the eager policy: every request through it
// reconciles all exams before the handler runs. Apply to routes where
// observed status must be exact.
func AutoUpdateExamStatus(c *fiber.Ctx) error {
	if _, err := lifecycle.ReconcileAll(database.Database.Db, time.Now()); err != nil {
		// Reconciliation is best effort on read paths; the handler
		// still runs against whatever status is persisted.
		log.Printf("[LIFECYCLE] eager reconcile failed: %v", err)
	}
	return c.Next()
}

// SmartUpdateExamStatus is the throttled policy: the global scan is
// skipped unless the configured interval has elapsed since the last
// one. Apply to hot listing routes.
func SmartUpdateExamStatus(c *fiber.Ctx) error {
	if _, err := smartScheduler.MaybeReconcileAll(database.Database.Db, time.Now()); err != nil {
		log.Printf("[LIFECYCLE] throttled reconcile failed: %v", err)
	}
	return c.Next()
}
