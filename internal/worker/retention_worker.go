package worker

import (
	"context"
	"time"

	"github.com/brightclass/brightclass-backend/internal/model"
	"github.com/brightclass/brightclass-backend/internal/repository"
	"github.com/brightclass/brightclass-backend/internal/schedule"
	"github.com/rs/zerolog"
)

// RetentionWorker periodically purges quizzes past their retention period:
// scheduled quizzes whose window expired more than the retention ago, and
// soft-deleted quizzes untouched for as long. Deleting a quiz cascades to
// its submissions and notifications.
//
// The worker keeps no state between passes. Every pass derives its work
// from the rows themselves, so a missed pass (downtime, crash) is made up
// by the next one and running two instances is merely wasteful, not wrong.
type RetentionWorker struct {
	quizzes   *repository.QuizRepository
	retention time.Duration
	interval  time.Duration
	clock     schedule.Clock
	log       zerolog.Logger
}

func NewRetentionWorker(quizzes *repository.QuizRepository, retention, interval time.Duration, clock schedule.Clock, log zerolog.Logger) *RetentionWorker {
	return &RetentionWorker{
		quizzes:   quizzes,
		retention: retention,
		interval:  interval,
		clock:     clock,
		log:       log.With().Str("component", "retention_worker").Logger(),
	}
}

func (w *RetentionWorker) Start(ctx context.Context) {
	w.log.Info().Dur("interval", w.interval).Dur("retention", w.retention).Msg("RetentionWorker started")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	// First pass immediately so a restart doesn't postpone overdue purges
	// by a full interval.
	w.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("RetentionWorker stopped")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

// sweep runs one purge pass. Per-quiz failures are logged and skipped so
// one bad row cannot wedge the whole sweep.
func (w *RetentionWorker) sweep(ctx context.Context) {
	now := w.clock.Now()

	// The SQL filter is deliberately coarse (calendar date only); the exact
	// window end, including cross-midnight spill into the next day, is
	// re-checked here.
	dateCutoff := now.Add(-w.retention)
	candidates, err := w.quizzes.ListRetentionCandidates(ctx, dateCutoff, dateCutoff)
	if err != nil {
		w.log.Error().Err(err).Msg("Retention candidate query failed")
		return
	}

	purged := 0
	for i := range candidates {
		q := &candidates[i]
		if !w.overdue(q, now) {
			continue
		}
		if err := w.quizzes.HardDelete(ctx, q.ID); err != nil {
			w.log.Error().Err(err).Str("quiz_id", q.ID.String()).Msg("Purge failed")
			continue
		}
		purged++
	}

	if purged > 0 {
		w.log.Info().Int("purged", purged).Int("candidates", len(candidates)).Msg("Retention sweep done")
	}
}

// overdue decides whether a candidate is actually past retention.
func (w *RetentionWorker) overdue(q *model.Quiz, now time.Time) bool {
	if q.IsDeleted {
		return now.Sub(q.UpdatedAt) >= w.retention
	}

	if q.ScheduleDate == nil || q.StartTime == nil || q.EndTime == nil {
		return false
	}
	_, end, err := schedule.Bounds(*q.ScheduleDate, *q.StartTime, *q.EndTime, now.Location())
	if err != nil {
		return false
	}
	return now.Sub(end) >= w.retention
}
