package lifecycle

import (
	"testing"
	"time"

	"examly/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDb(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// In-memory sqlite gives every pooled connection its own database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.Exam{}))
	return db
}

func newExam(status models.ExamStatus, end time.Time) models.Exam {
	return models.Exam{
		Title:           "Midterm",
		DurationMinutes: 60,
		StartTime:       end.Add(-24 * time.Hour),
		EndTime:         end,
		Status:          status,
	}
}

func TestReconcile(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		status     models.ExamStatus
		end        time.Time
		wantStatus models.ExamStatus
		wantChange bool
	}{
		{"published past end closes", models.ExamPublished, now.Add(-time.Minute), models.ExamFinished, true},
		{"published before end stays", models.ExamPublished, now.Add(time.Minute), models.ExamPublished, false},
		{"finished with extended end reopens", models.ExamFinished, now.Add(time.Hour), models.ExamPublished, true},
		{"finished past end stays", models.ExamFinished, now.Add(-time.Hour), models.ExamFinished, false},
		{"draft past end is not touched", models.ExamDraft, now.Add(-time.Hour), models.ExamDraft, false},
		{"draft before end is not touched", models.ExamDraft, now.Add(time.Hour), models.ExamDraft, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exam := newExam(tt.status, tt.end)
			changed := Reconcile(&exam, now)
			assert.Equal(t, tt.wantChange, changed)
			assert.Equal(t, tt.wantStatus, exam.Status)
		})
	}
}

func TestReconcileIdempotent(t *testing.T) {
	now := time.Now().UTC()
	exam := newExam(models.ExamPublished, now.Add(-time.Hour))

	assert.True(t, Reconcile(&exam, now))
	assert.False(t, Reconcile(&exam, now))
	assert.Equal(t, models.ExamFinished, exam.Status)
}

func TestReconcileMixedTimezones(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	// Same instant expressed in another zone must not flip the exam.
	exam := newExam(models.ExamPublished, now.Add(time.Minute).In(loc))
	assert.False(t, Reconcile(&exam, now))

	exam = newExam(models.ExamPublished, now.Add(-time.Minute).In(loc))
	assert.True(t, Reconcile(&exam, now))
}

func TestReconcileExtensionRoundTrip(t *testing.T) {
	now := time.Now().UTC()
	exam := newExam(models.ExamPublished, now.Add(-time.Hour))

	require.True(t, Reconcile(&exam, now))
	require.Equal(t, models.ExamFinished, exam.Status)

	// Instructor extends the deadline past now; the exam reopens.
	exam.EndTime = now.Add(2 * time.Hour)
	require.True(t, Reconcile(&exam, now))
	assert.Equal(t, models.ExamPublished, exam.Status)

	// And closes again once the extension elapses.
	require.True(t, Reconcile(&exam, now.Add(3*time.Hour)))
	assert.Equal(t, models.ExamFinished, exam.Status)
}

func TestReconcileExam(t *testing.T) {
	db := openTestDb(t)
	now := time.Now().UTC()

	exam := newExam(models.ExamPublished, now.Add(-time.Hour))
	require.NoError(t, db.Create(&exam).Error)

	got, err := ReconcileExam(db, exam.ID, now)
	require.NoError(t, err)
	assert.Equal(t, models.ExamFinished, got.Status)

	var stored models.Exam
	require.NoError(t, db.First(&stored, exam.ID).Error)
	assert.Equal(t, models.ExamFinished, stored.Status)
}

func TestReconcileExamNotFound(t *testing.T) {
	db := openTestDb(t)
	_, err := ReconcileExam(db, 999, time.Now().UTC())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestReconcileAll(t *testing.T) {
	db := openTestDb(t)
	now := time.Now().UTC()

	expired := newExam(models.ExamPublished, now.Add(-time.Hour))
	active := newExam(models.ExamPublished, now.Add(time.Hour))
	extended := newExam(models.ExamFinished, now.Add(time.Hour))
	draft := newExam(models.ExamDraft, now.Add(-time.Hour))
	for _, e := range []*models.Exam{&expired, &active, &extended, &draft} {
		require.NoError(t, db.Create(e).Error)
	}

	changed, err := ReconcileAll(db, now)
	require.NoError(t, err)
	assert.Equal(t, 2, changed)

	assertStatus := func(id uint, want models.ExamStatus) {
		var e models.Exam
		require.NoError(t, db.First(&e, id).Error)
		assert.Equal(t, want, e.Status)
	}
	assertStatus(expired.ID, models.ExamFinished)
	assertStatus(active.ID, models.ExamPublished)
	assertStatus(extended.ID, models.ExamPublished)
	assertStatus(draft.ID, models.ExamDraft)

	// A second pass finds nothing to do.
	changed, err = ReconcileAll(db, now)
	require.NoError(t, err)
	assert.Zero(t, changed)
}

func TestSchedulerThrottles(t *testing.T) {
	db := openTestDb(t)
	now := time.Now().UTC()

	s := NewScheduler(15 * time.Minute)

	ran, err := s.MaybeReconcileAll(db, now)
	require.NoError(t, err)
	assert.True(t, ran, "first call always scans")

	ran, err = s.MaybeReconcileAll(db, now.Add(5*time.Minute))
	require.NoError(t, err)
	assert.False(t, ran, "inside the interval")

	ran, err = s.MaybeReconcileAll(db, now.Add(16*time.Minute))
	require.NoError(t, err)
	assert.True(t, ran, "past the interval")
}

func TestSchedulerZeroIntervalAlwaysScans(t *testing.T) {
	db := openTestDb(t)
	now := time.Now().UTC()

	s := NewScheduler(0)
	for i := 0; i < 3; i++ {
		ran, err := s.MaybeReconcileAll(db, now.Add(time.Duration(i)*time.Second))
		require.NoError(t, err)
		assert.True(t, ran)
	}
}
