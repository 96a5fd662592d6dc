package worker

import (
	"testing"
	"time"

	"github.com/brightclass/brightclass-backend/internal/model"
	"github.com/brightclass/brightclass-backend/internal/schedule"
	"github.com/rs/zerolog"
)

func newTestWorker(retention time.Duration) *RetentionWorker {
	return NewRetentionWorker(nil, retention, time.Hour, schedule.RealClock{}, zerolog.Nop())
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func strPtr(s string) *string { return &s }

func TestOverdueScheduledQuiz(t *testing.T) {
	retention := 30 * 24 * time.Hour
	w := newTestWorker(retention)

	// Window ends 2024-03-10 12:00 UTC.
	quiz := &model.Quiz{
		IsScheduled:  true,
		ScheduleDate: datePtr(2024, time.March, 10),
		StartTime:    strPtr("10:00"),
		EndTime:      strPtr("12:00"),
		Status:       model.QuizStatusScheduled,
	}

	cases := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"window still open", time.Date(2024, time.March, 10, 11, 0, 0, 0, time.UTC), false},
		{"expired but inside retention", time.Date(2024, time.March, 20, 0, 0, 0, 0, time.UTC), false},
		{"just under retention", time.Date(2024, time.April, 9, 11, 59, 0, 0, time.UTC), false},
		{"exactly at retention", time.Date(2024, time.April, 9, 12, 0, 0, 0, time.UTC), true},
		{"well past retention", time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC), true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := w.overdue(quiz, tc.now); got != tc.want {
				t.Errorf("overdue() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestOverdueCrossMidnightWindow(t *testing.T) {
	retention := 30 * 24 * time.Hour
	w := newTestWorker(retention)

	// 22:00 to 02:00 the next day: the window ends 2024-03-11 02:00, so
	// retention counts from there, not from the calendar date.
	quiz := &model.Quiz{
		IsScheduled:  true,
		ScheduleDate: datePtr(2024, time.March, 10),
		StartTime:    strPtr("22:00"),
		EndTime:      strPtr("02:00"),
		Status:       model.QuizStatusScheduled,
	}

	beforeEnd := time.Date(2024, time.April, 10, 1, 0, 0, 0, time.UTC)
	if w.overdue(quiz, beforeEnd) {
		t.Errorf("overdue() = true one hour before the cross-midnight window's retention point")
	}

	afterEnd := time.Date(2024, time.April, 10, 2, 0, 0, 0, time.UTC)
	if !w.overdue(quiz, afterEnd) {
		t.Errorf("overdue() = false at the cross-midnight window's retention point")
	}
}

func TestOverdueSoftDeletedQuiz(t *testing.T) {
	retention := 30 * 24 * time.Hour
	w := newTestWorker(retention)

	quiz := &model.Quiz{
		IsDeleted: true,
		UpdatedAt: time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
	}

	if w.overdue(quiz, time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("soft-deleted quiz purged before retention elapsed")
	}
	if !w.overdue(quiz, time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("soft-deleted quiz not purged after retention elapsed")
	}
}

func TestOverdueNeverScheduled(t *testing.T) {
	w := newTestWorker(30 * 24 * time.Hour)

	// A live draft has no window end to count retention from.
	quiz := &model.Quiz{Status: model.QuizStatusDraft}
	if w.overdue(quiz, time.Date(2030, time.January, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unscheduled live quiz must never be purged")
	}

	// Malformed times disqualify rather than purge.
	quiz = &model.Quiz{
		IsScheduled:  true,
		ScheduleDate: datePtr(2024, time.March, 10),
		StartTime:    strPtr("bad"),
		EndTime:      strPtr("12:00"),
	}
	if w.overdue(quiz, time.Date(2030, time.January, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("quiz with malformed window must not be purged")
	}
}
