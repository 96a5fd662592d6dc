package repository

import (
	"context"
	"time"

	"github.com/brightclass/brightclass-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const quizColumns = `id, teacher_id, title, subject, grade_levels, questions,
	        is_scheduled, schedule_date, start_time, end_time, status, is_deleted,
	        created_at, updated_at`

// QuizRepository handles quiz data access. Soft-deleted quizzes are
// excluded from every read path; they stay in the table until the
// retention sweeper purges them.
type QuizRepository struct {
	pool *pgxpool.Pool
}

// NewQuizRepository creates a new QuizRepository.
func NewQuizRepository(pool *pgxpool.Pool) *QuizRepository {
	return &QuizRepository{pool: pool}
}

func scanQuiz(row interface{ Scan(...any) error }) (*model.Quiz, error) {
	q := &model.Quiz{}
	err := row.Scan(&q.ID, &q.TeacherID, &q.Title, &q.Subject, &q.GradeLevels, &q.Questions,
		&q.IsScheduled, &q.ScheduleDate, &q.StartTime, &q.EndTime, &q.Status, &q.IsDeleted,
		&q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return q, nil
}

// GetByID retrieves a non-deleted quiz by its UUID.
// Returns pgx.ErrNoRows for unknown and soft-deleted ids alike.
func (r *QuizRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Quiz, error) {
	return scanQuiz(r.pool.QueryRow(ctx,
		`SELECT `+quizColumns+` FROM quizzes WHERE id = $1 AND NOT is_deleted`, id))
}

// ListByTeacher retrieves all non-deleted quizzes authored by a teacher.
func (r *QuizRepository) ListByTeacher(ctx context.Context, teacherID int) ([]model.Quiz, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+quizColumns+` FROM quizzes
		 WHERE teacher_id = $1 AND NOT is_deleted
		 ORDER BY created_at DESC`, teacherID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var quizzes []model.Quiz
	for rows.Next() {
		q, err := scanQuiz(rows)
		if err != nil {
			return nil, err
		}
		quizzes = append(quizzes, *q)
	}
	return quizzes, rows.Err()
}

// ListScheduledForGrade retrieves scheduled quizzes targeting a grade level.
// Used for the student quiz list; window filtering happens in the service.
func (r *QuizRepository) ListScheduledForGrade(ctx context.Context, gradeLevel string) ([]model.Quiz, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+quizColumns+` FROM quizzes
		 WHERE is_scheduled AND NOT is_deleted
		   AND status IN ($1, $2)
		   AND $3 = ANY(grade_levels)
		 ORDER BY schedule_date, start_time`,
		model.QuizStatusScheduled, model.QuizStatusActive, gradeLevel)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var quizzes []model.Quiz
	for rows.Next() {
		q, err := scanQuiz(rows)
		if err != nil {
			return nil, err
		}
		quizzes = append(quizzes, *q)
	}
	return quizzes, rows.Err()
}

// Create inserts a new draft quiz.
func (r *QuizRepository) Create(ctx context.Context, q *model.Quiz) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO quizzes (teacher_id, title, subject, grade_levels, questions, status)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at, updated_at`,
		q.TeacherID, q.Title, q.Subject, q.GradeLevels, q.Questions, q.Status,
	).Scan(&q.ID, &q.CreatedAt, &q.UpdatedAt)
}

// Update replaces the editable content fields of a quiz.
func (r *QuizRepository) Update(ctx context.Context, q *model.Quiz) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE quizzes
		 SET title = $1, subject = $2, grade_levels = $3, questions = $4, updated_at = NOW()
		 WHERE id = $5 AND NOT is_deleted`,
		q.Title, q.Subject, q.GradeLevels, q.Questions, q.ID)
	return err
}

// SetSchedule stores the time window, flips the workflow status to
// scheduled and marks the quiz as scheduled in one statement.
func (r *QuizRepository) SetSchedule(ctx context.Context, id uuid.UUID, scheduleDate time.Time, startTime, endTime string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE quizzes
		 SET is_scheduled = TRUE, schedule_date = $1, start_time = $2, end_time = $3,
		     status = $4, updated_at = NOW()
		 WHERE id = $5 AND NOT is_deleted`,
		scheduleDate, startTime, endTime, model.QuizStatusScheduled, id)
	return err
}

// UpdateStatus updates a quiz's workflow status.
func (r *QuizRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.QuizStatus) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE quizzes SET status = $1, updated_at = NOW() WHERE id = $2 AND NOT is_deleted`,
		status, id)
	return err
}

// SoftDelete hides a quiz from all queries without removing its rows.
func (r *QuizRepository) SoftDelete(ctx context.Context, id uuid.UUID, teacherID int) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE quizzes SET is_deleted = TRUE, updated_at = NOW()
		 WHERE id = $1 AND teacher_id = $2 AND NOT is_deleted`, id, teacherID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// ListRetentionCandidates retrieves quizzes that may be overdue for purging:
// scheduled quizzes whose calendar date is on or before dateCutoff, plus
// soft-deleted quizzes untouched since cutoff. The sweeper re-checks the
// exact window end in Go before deleting.
func (r *QuizRepository) ListRetentionCandidates(ctx context.Context, dateCutoff, cutoff time.Time) ([]model.Quiz, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+quizColumns+` FROM quizzes
		 WHERE (is_scheduled AND schedule_date IS NOT NULL AND schedule_date <= $1)
		    OR (is_deleted AND updated_at <= $2)`,
		dateCutoff, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var quizzes []model.Quiz
	for rows.Next() {
		q, err := scanQuiz(rows)
		if err != nil {
			return nil, err
		}
		quizzes = append(quizzes, *q)
	}
	return quizzes, rows.Err()
}

// HardDelete removes a quiz permanently. Notifications and submissions
// referencing it are removed by ON DELETE CASCADE.
func (r *QuizRepository) HardDelete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM quizzes WHERE id = $1`, id)
	return err
}
