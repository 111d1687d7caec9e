// Package lifecycle keeps an exam's publication status consistent with
// wall-clock time. Reconciliation is lazy: it runs on the request paths
// that observe exams, not from a background thread, so staleness is
// bounded by "time until some request touches the exam".
package lifecycle

import (
	"log"
	"sync"
	"time"

	"examly/models"

	"gorm.io/gorm"
)

// Reconcile applies the time-driven status transitions to a single exam
// and reports whether the status changed. It is pure and idempotent:
//
//	published, end_time < now -> finished
//	finished,  end_time > now -> published (deadline was extended)
//	draft is never touched
//
// Timestamps are folded to UTC before comparing so offset-aware values
// coming from different drivers cannot cause flapping.
func Reconcile(exam *models.Exam, now time.Time) bool {
	nowUTC := now.UTC()
	end := exam.EndTime.UTC()

	switch exam.Status {
	case models.ExamPublished:
		if end.Before(nowUTC) {
			exam.Status = models.ExamFinished
			return true
		}
	case models.ExamFinished:
		if end.After(nowUTC) {
			exam.Status = models.ExamPublished
			return true
		}
	}
	return false
}

// ReconcileExam reconciles one exam by ID and persists the new status if
// it changed. Used on targeted accesses (start attempt, get exam).
func ReconcileExam(db *gorm.DB, examID uint, now time.Time) (*models.Exam, error) {
	var exam models.Exam
	if err := db.First(&exam, examID).Error; err != nil {
		return nil, err
	}
	if Reconcile(&exam, now) {
		if err := db.Model(&exam).Update("status", exam.Status).Error; err != nil {
			return nil, err
		}
		log.Printf("[LIFECYCLE] exam %d status reconciled to %s", exam.ID, exam.Status)
	}
	return &exam, nil
}

// ReconcileAll scans every non-draft exam and persists the transitions.
// Returns the number of exams whose status changed.
func ReconcileAll(db *gorm.DB, now time.Time) (int, error) {
	nowUTC := now.UTC()
	changed := 0

	// published -> finished
	var expired []models.Exam
	if err := db.Where("status = ? AND end_time < ?", models.ExamPublished, nowUTC).
		Find(&expired).Error; err != nil {
		return 0, err
	}
	for i := range expired {
		if Reconcile(&expired[i], now) {
			if err := db.Model(&expired[i]).Update("status", expired[i].Status).Error; err != nil {
				return changed, err
			}
			changed++
		}
	}

	// finished -> published (deadline extensions)
	var reopened []models.Exam
	if err := db.Where("status = ? AND end_time > ?", models.ExamFinished, nowUTC).
		Find(&reopened).Error; err != nil {
		return changed, err
	}
	for i := range reopened {
		if Reconcile(&reopened[i], now) {
			if err := db.Model(&reopened[i]).Update("status", reopened[i].Status).Error; err != nil {
				return changed, err
			}
			changed++
		}
	}

	if changed > 0 {
		log.Printf("[LIFECYCLE] reconciled %d exam(s)", changed)
	}
	return changed, nil
}

// Scheduler owns the "last global scan" timestamp for the throttled
// reconciliation policy. The zero value always reconciles on first use.
type Scheduler struct {
	mu        sync.Mutex
	lastCheck time.Time
	interval  time.Duration
}

// NewScheduler builds a throttled scheduler. A non-positive interval
// means every call scans.
func NewScheduler(interval time.Duration) *Scheduler {
	return &Scheduler{interval: interval}
}

// MaybeReconcileAll runs a global scan unless one already ran within the
// configured interval. Returns whether a scan was performed.
func (s *Scheduler) MaybeReconcileAll(db *gorm.DB, now time.Time) (bool, error) {
	s.mu.Lock()
	if !s.lastCheck.IsZero() && s.interval > 0 && now.Sub(s.lastCheck) < s.interval {
		s.mu.Unlock()
		return false, nil
	}
	s.lastCheck = now
	s.mu.Unlock()

	_, err := ReconcileAll(db, now)
	return true, err
}
