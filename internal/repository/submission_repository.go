package repository

import (
	"context"

	"github.com/brightclass/brightclass-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SubmissionRepository handles submission data access. Every submission is
// stored; there is deliberately no uniqueness on (quiz_id, student_id).
type SubmissionRepository struct {
	pool *pgxpool.Pool
}

// NewSubmissionRepository creates a new SubmissionRepository.
func NewSubmissionRepository(pool *pgxpool.Pool) *SubmissionRepository {
	return &SubmissionRepository{pool: pool}
}

// Create inserts a graded submission.
func (r *SubmissionRepository) Create(ctx context.Context, s *model.Submission) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO submissions (quiz_id, student_id, answers, score, correct_count,
		                          total_questions, time_taken_seconds)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at`,
		s.QuizID, s.StudentID, s.Answers, s.Score, s.CorrectCount,
		s.TotalQuestions, s.TimeTakenSeconds,
	).Scan(&s.ID, &s.CreatedAt)
}

// ListByQuiz retrieves all submissions for a quiz, newest first.
func (r *SubmissionRepository) ListByQuiz(ctx context.Context, quizID uuid.UUID) ([]model.Submission, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, quiz_id, student_id, answers, score, correct_count,
		        total_questions, time_taken_seconds, created_at
		 FROM submissions
		 WHERE quiz_id = $1
		 ORDER BY created_at DESC`, quizID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var submissions []model.Submission
	for rows.Next() {
		var s model.Submission
		if err := rows.Scan(&s.ID, &s.QuizID, &s.StudentID, &s.Answers, &s.Score,
			&s.CorrectCount, &s.TotalQuestions, &s.TimeTakenSeconds, &s.CreatedAt); err != nil {
			return nil, err
		}
		submissions = append(submissions, s)
	}
	return submissions, rows.Err()
}

// ListByStudentAndQuiz retrieves a student's submissions for one quiz,
// newest first.
func (r *SubmissionRepository) ListByStudentAndQuiz(ctx context.Context, studentID int, quizID uuid.UUID) ([]model.Submission, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, quiz_id, student_id, answers, score, correct_count,
		        total_questions, time_taken_seconds, created_at
		 FROM submissions
		 WHERE student_id = $1 AND quiz_id = $2
		 ORDER BY created_at DESC`, studentID, quizID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var submissions []model.Submission
	for rows.Next() {
		var s model.Submission
		if err := rows.Scan(&s.ID, &s.QuizID, &s.StudentID, &s.Answers, &s.Score,
			&s.CorrectCount, &s.TotalQuestions, &s.TimeTakenSeconds, &s.CreatedAt); err != nil {
			return nil, err
		}
		submissions = append(submissions, s)
	}
	return submissions, rows.Err()
}
