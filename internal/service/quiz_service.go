package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/brightclass/brightclass-backend/internal/config"
	"github.com/brightclass/brightclass-backend/internal/model"
	"github.com/brightclass/brightclass-backend/internal/schedule"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// QuizStore is the quiz persistence surface. Implemented by
// repository.QuizRepository.
type QuizStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Quiz, error)
	ListByTeacher(ctx context.Context, teacherID int) ([]model.Quiz, error)
	ListScheduledForGrade(ctx context.Context, gradeLevel string) ([]model.Quiz, error)
	Create(ctx context.Context, q *model.Quiz) error
	Update(ctx context.Context, q *model.Quiz) error
	SetSchedule(ctx context.Context, id uuid.UUID, scheduleDate time.Time, startTime, endTime string) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.QuizStatus) error
	SoftDelete(ctx context.Context, id uuid.UUID, teacherID int) (int64, error)
}

// SubmissionStore is the submission persistence surface. Implemented by
// repository.SubmissionRepository.
type SubmissionStore interface {
	Create(ctx context.Context, s *model.Submission) error
	ListByQuiz(ctx context.Context, quizID uuid.UUID) ([]model.Submission, error)
	ListByStudentAndQuiz(ctx context.Context, studentID int, quizID uuid.UUID) ([]model.Submission, error)
}

// StudentDirectory resolves fan-out recipients. Implemented by
// repository.UserRepository.
type StudentDirectory interface {
	GetStudentByID(ctx context.Context, id int) (*model.Student, error)
	ListStudentsByGradeLevels(ctx context.Context, gradeLevels []string) ([]model.Student, error)
}

// Notifier is the slice of NotificationService the quiz flows need.
type Notifier interface {
	FanOutAssigned(ctx context.Context, quiz *model.Quiz, recipients []model.Student) (int, error)
	RecordGraded(ctx context.Context, student *model.Student, quiz *model.Quiz, score int) (bool, error)
}

// StatsCache is the subset of redis commands used for dashboard-count
// caching. Satisfied by *redis.Client; nil disables caching.
type StatsCache interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// QuizService handles quiz authoring, scheduling, submission and the
// dashboard status aggregation.
type QuizService struct {
	quizzes     QuizStore
	submissions SubmissionStore
	students    StudentDirectory
	notifier    Notifier
	cache       StatsCache
	cacheTTL    time.Duration
	clock       schedule.Clock
	log         zerolog.Logger
}

// NewQuizService creates a new QuizService. cache may be nil.
func NewQuizService(
	quizzes QuizStore,
	submissions SubmissionStore,
	students StudentDirectory,
	notifier Notifier,
	cache StatsCache,
	cacheTTL time.Duration,
	clock schedule.Clock,
	log zerolog.Logger,
) *QuizService {
	return &QuizService{
		quizzes:     quizzes,
		submissions: submissions,
		students:    students,
		notifier:    notifier,
		cache:       cache,
		cacheTTL:    cacheTTL,
		clock:       clock,
		log:         log.With().Str("component", "quiz_service").Logger(),
	}
}

// Create stores a new draft quiz for a teacher.
func (s *QuizService) Create(ctx context.Context, teacherID int, req *model.CreateQuizRequest) (*model.Quiz, error) {
	if err := validateQuestions(req.Questions); err != nil {
		return nil, err
	}

	quiz := &model.Quiz{
		TeacherID:   teacherID,
		Title:       req.Title,
		Subject:     req.Subject,
		GradeLevels: req.GradeLevels,
		Questions:   req.Questions,
		Status:      model.QuizStatusDraft,
	}
	if err := s.quizzes.Create(ctx, quiz); err != nil {
		return nil, fmt.Errorf("create quiz: %w", err)
	}

	s.invalidateStats(ctx, teacherID)
	return quiz, nil
}

// ListByTeacher returns a teacher's quizzes, newest first.
func (s *QuizService) ListByTeacher(ctx context.Context, teacherID int) ([]model.Quiz, error) {
	return s.quizzes.ListByTeacher(ctx, teacherID)
}

// GetForTeacher loads a quiz and verifies ownership.
func (s *QuizService) GetForTeacher(ctx context.Context, quizID uuid.UUID, teacherID int) (*model.Quiz, error) {
	quiz, err := s.getQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if quiz.TeacherID != teacherID {
		return nil, ErrNotQuizOwner
	}
	return quiz, nil
}

// Update replaces a quiz's editable content.
func (s *QuizService) Update(ctx context.Context, quizID uuid.UUID, teacherID int, req *model.UpdateQuizRequest) (*model.Quiz, error) {
	quiz, err := s.GetForTeacher(ctx, quizID, teacherID)
	if err != nil {
		return nil, err
	}

	if req.Title != "" {
		quiz.Title = req.Title
	}
	if req.Subject != "" {
		quiz.Subject = req.Subject
	}
	if len(req.GradeLevels) > 0 {
		quiz.GradeLevels = req.GradeLevels
	}
	if len(req.Questions) > 0 {
		if err := validateQuestions(req.Questions); err != nil {
			return nil, err
		}
		quiz.Questions = req.Questions
	}

	if err := s.quizzes.Update(ctx, quiz); err != nil {
		return nil, fmt.Errorf("update quiz: %w", err)
	}

	s.invalidateStats(ctx, teacherID)
	return quiz, nil
}

// Delete soft-deletes a quiz. The rows stay behind until the retention
// sweeper purges them.
func (s *QuizService) Delete(ctx context.Context, quizID uuid.UUID, teacherID int) error {
	affected, err := s.quizzes.SoftDelete(ctx, quizID, teacherID)
	if err != nil {
		return fmt.Errorf("delete quiz: %w", err)
	}
	if affected == 0 {
		return ErrQuizNotFound
	}
	s.invalidateStats(ctx, teacherID)
	return nil
}

// Close explicitly closes a quiz regardless of its time window.
func (s *QuizService) Close(ctx context.Context, quizID uuid.UUID, teacherID int) (*model.Quiz, error) {
	quiz, err := s.GetForTeacher(ctx, quizID, teacherID)
	if err != nil {
		return nil, err
	}
	if err := s.quizzes.UpdateStatus(ctx, quizID, model.QuizStatusClosed); err != nil {
		return nil, fmt.Errorf("close quiz: %w", err)
	}
	quiz.Status = model.QuizStatusClosed

	s.invalidateStats(ctx, teacherID)
	return quiz, nil
}

// Schedule assigns a time window to a quiz, flips it to scheduled and fans
// out assignment notifications to every student whose grade level matches.
// Returns the updated quiz and the number of notifications actually
// created — 0 when the quiz had already been announced, which is a normal
// outcome for retried schedule calls, not an error.
func (s *QuizService) Schedule(ctx context.Context, quizID uuid.UUID, teacherID int, req *model.ScheduleQuizRequest) (*model.Quiz, int, error) {
	quiz, err := s.GetForTeacher(ctx, quizID, teacherID)
	if err != nil {
		return nil, 0, err
	}

	scheduleDate, err := time.Parse("2006-01-02", req.ScheduleDate)
	if err != nil {
		return nil, 0, fmt.Errorf("parse schedule date: %w", err)
	}

	if err := s.quizzes.SetSchedule(ctx, quizID, scheduleDate, req.StartTime, req.EndTime); err != nil {
		return nil, 0, fmt.Errorf("set schedule: %w", err)
	}

	quiz.IsScheduled = true
	quiz.ScheduleDate = &scheduleDate
	quiz.StartTime = &req.StartTime
	quiz.EndTime = &req.EndTime
	quiz.Status = model.QuizStatusScheduled

	recipients, err := s.students.ListStudentsByGradeLevels(ctx, quiz.GradeLevels)
	if err != nil {
		return nil, 0, fmt.Errorf("resolve recipients: %w", err)
	}

	created, err := s.notifier.FanOutAssigned(ctx, quiz, recipients)
	if err != nil {
		return nil, 0, err
	}

	s.invalidateStats(ctx, teacherID)
	return quiz, created, nil
}

// Submit grades a student's answers against a quiz. The quiz window must
// be active; otherwise a WindowError carrying the computed status is
// returned. Every submission is persisted — only the graded notification
// is deduplicated.
func (s *QuizService) Submit(ctx context.Context, quizID uuid.UUID, studentID int, req *model.SubmitQuizRequest) (*model.SubmitResult, error) {
	quiz, err := s.getQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}

	status := schedule.Evaluate(quiz.ScheduleDate, quiz.StartTime, quiz.EndTime, s.clock.Now())
	if status != schedule.StatusActive {
		return nil, &WindowError{Status: status}
	}

	if len(req.Answers) != len(quiz.Questions) {
		return nil, ErrAnswerCountMismatch
	}

	result := grade(quiz.Questions, req.Answers)

	submission := &model.Submission{
		QuizID:           quiz.ID,
		StudentID:        studentID,
		Answers:          req.Answers,
		Score:            result.Score,
		CorrectCount:     result.CorrectAnswers,
		TotalQuestions:   result.TotalQuestions,
		TimeTakenSeconds: req.TimeTaken,
	}
	if err := s.submissions.Create(ctx, submission); err != nil {
		return nil, fmt.Errorf("store submission: %w", err)
	}

	// The submission is already durable; a notification failure must not
	// fail the request.
	student, err := s.students.GetStudentByID(ctx, studentID)
	if err != nil {
		s.log.Warn().Err(err).Int("student_id", studentID).Msg("Graded notification skipped, student lookup failed")
		return result, nil
	}
	if _, err := s.notifier.RecordGraded(ctx, student, quiz, result.Score); err != nil {
		s.log.Warn().Err(err).Int("student_id", studentID).
			Str("quiz_id", quiz.ID.String()).Msg("Graded notification failed")
	}

	return result, nil
}

// LatestSubmission returns a student's most recent submission for a quiz.
func (s *QuizService) LatestSubmission(ctx context.Context, quizID uuid.UUID, studentID int) (*model.Submission, error) {
	subs, err := s.submissions.ListByStudentAndQuiz(ctx, studentID, quizID)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	if len(subs) == 0 {
		return nil, ErrQuizNotFound
	}
	return &subs[0], nil
}

// Results returns every submission for one of the teacher's quizzes.
func (s *QuizService) Results(ctx context.Context, quizID uuid.UUID, teacherID int) ([]model.Submission, error) {
	if _, err := s.GetForTeacher(ctx, quizID, teacherID); err != nil {
		return nil, err
	}
	return s.submissions.ListByQuiz(ctx, quizID)
}

// ListForStudent returns the quizzes currently visible to a student:
// scheduled quizzes targeting their grade whose window has not expired,
// with correct answers stripped and the window status attached.
func (s *QuizService) ListForStudent(ctx context.Context, student *model.Student) ([]model.StudentQuiz, error) {
	quizzes, err := s.quizzes.ListScheduledForGrade(ctx, student.GradeLevel)
	if err != nil {
		return nil, fmt.Errorf("list quizzes for grade: %w", err)
	}

	now := s.clock.Now()
	visible := make([]model.StudentQuiz, 0, len(quizzes))
	for i := range quizzes {
		q := &quizzes[i]
		status := schedule.Evaluate(q.ScheduleDate, q.StartTime, q.EndTime, now)
		if status != schedule.StatusUpcoming && status != schedule.StatusActive {
			continue
		}
		visible = append(visible, model.NewStudentQuiz(q, string(status)))
	}
	return visible, nil
}

// Stats buckets a teacher's quizzes into the dashboard counts, serving
// from the Redis cache when fresh. The four buckets always sum to Total.
func (s *QuizService) Stats(ctx context.Context, teacherID int) (*model.QuizStats, error) {
	key := config.CacheKey.TeacherStatsKey(teacherID)

	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, key).Result(); err == nil {
			stats := &model.QuizStats{}
			if err := json.Unmarshal([]byte(raw), stats); err == nil {
				return stats, nil
			}
		}
	}

	quizzes, err := s.quizzes.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}

	stats := aggregateStats(quizzes, s.clock.Now())

	if s.cache != nil {
		if raw, err := json.Marshal(stats); err == nil {
			if err := s.cache.Set(ctx, key, raw, s.cacheTTL).Err(); err != nil {
				s.log.Warn().Err(err).Msg("Stats cache write failed")
			}
		}
	}

	return stats, nil
}

// GetQuiz loads a quiz without an ownership check. Used where the caller
// only needs read access to quiz metadata, e.g. feedback on a graded
// attempt.
func (s *QuizService) GetQuiz(ctx context.Context, quizID uuid.UUID) (*model.Quiz, error) {
	return s.getQuiz(ctx, quizID)
}

func (s *QuizService) getQuiz(ctx context.Context, quizID uuid.UUID) (*model.Quiz, error) {
	quiz, err := s.quizzes.GetByID(ctx, quizID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrQuizNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get quiz: %w", err)
	}
	return quiz, nil
}

// invalidateStats drops the cached dashboard counts after any mutation.
func (s *QuizService) invalidateStats(ctx context.Context, teacherID int) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, config.CacheKey.TeacherStatsKey(teacherID)).Err(); err != nil {
		s.log.Warn().Err(err).Int("teacher_id", teacherID).Msg("Stats cache invalidation failed")
	}
}

// validateQuestions rejects questions whose correct option index falls
// outside their option list.
func validateQuestions(questions []model.Question) error {
	for _, q := range questions {
		if len(q.Options) < 2 || q.CorrectOption < 0 || q.CorrectOption >= len(q.Options) {
			return ErrInvalidQuestion
		}
	}
	return nil
}

// grade scores answers against the stored correct options.
// Score is round(correct/total*100).
func grade(questions []model.Question, answers []int) *model.SubmitResult {
	result := &model.SubmitResult{
		TotalQuestions: len(questions),
		Answers:        make([]model.AnswerReview, len(questions)),
	}

	for i, q := range questions {
		correct := answers[i] == q.CorrectOption
		if correct {
			result.CorrectAnswers++
		}
		result.Answers[i] = model.AnswerReview{
			Question:  q.Text,
			Selected:  answers[i],
			Correct:   q.CorrectOption,
			IsCorrect: correct,
		}
	}

	if result.TotalQuestions > 0 {
		result.Score = int(math.Round(float64(result.CorrectAnswers) / float64(result.TotalQuestions) * 100))
	}
	return result
}

// aggregateStats places every quiz in exactly one dashboard bucket, in
// fixed precedence order:
//
//  1. active — the time window is open right now, whatever the stored
//     workflow status says;
//  2. scheduled — stored draft/scheduled with a pending window;
//  3. drafts — stored draft without a schedule;
//  4. closed — stored closed, or the window has expired.
//
// Quizzes matching none of the rules (inconsistent rows, e.g. stored
// scheduled with the schedule fields wiped) count as drafts so the
// buckets always sum to the total.
func aggregateStats(quizzes []model.Quiz, now time.Time) *model.QuizStats {
	stats := &model.QuizStats{Total: len(quizzes)}

	for i := range quizzes {
		q := &quizzes[i]
		timeStatus := schedule.Evaluate(q.ScheduleDate, q.StartTime, q.EndTime, now)

		switch {
		case timeStatus == schedule.StatusActive:
			stats.Active++
		case (q.Status == model.QuizStatusDraft || q.Status == model.QuizStatusScheduled) &&
			timeStatus == schedule.StatusUpcoming:
			stats.Scheduled++
		case q.Status == model.QuizStatusDraft && !q.IsScheduled:
			stats.Drafts++
		case q.Status == model.QuizStatusClosed || timeStatus == schedule.StatusExpired:
			stats.Closed++
		default:
			stats.Drafts++
		}
	}
	return stats
}
