package model

import (
	"time"

	"github.com/google/uuid"
)

// QuizStatus enumerates the teacher-facing workflow states of a quiz.
// This is the stored lifecycle label, distinct from the time-derived
// window status computed by the schedule package.
type QuizStatus string

const (
	QuizStatusDraft     QuizStatus = "draft"
	QuizStatusScheduled QuizStatus = "scheduled"
	QuizStatusActive    QuizStatus = "active"
	QuizStatusClosed    QuizStatus = "closed"
)

// Question is a single multiple-choice question stored inside a quiz.
type Question struct {
	Text          string   `json:"text"`
	Options       []string `json:"options"`
	CorrectOption int      `json:"correct_option"`
}

// Quiz represents one assignment authored by a teacher.
//
// A quiz is only considered scheduled when ScheduleDate, StartTime and
// EndTime are all present; IsScheduled alone is not trusted.
type Quiz struct {
	ID           uuid.UUID  `json:"id"`
	TeacherID    int        `json:"teacher_id"`
	Title        string     `json:"title"`
	Subject      string     `json:"subject"`
	GradeLevels  []string   `json:"grade_levels"`
	Questions    []Question `json:"questions"`
	IsScheduled  bool       `json:"is_scheduled"`
	ScheduleDate *time.Time `json:"schedule_date,omitempty"`
	StartTime    *string    `json:"start_time,omitempty"` // "HH:MM", 24-hour
	EndTime      *string    `json:"end_time,omitempty"`   // "HH:MM", 24-hour
	Status       QuizStatus `json:"status"`
	IsDeleted    bool       `json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// CreateQuizRequest is the payload for creating a new draft quiz.
type CreateQuizRequest struct {
	Title       string     `json:"title" binding:"required,min=3,max=255"`
	Subject     string     `json:"subject" binding:"omitempty,max=100"`
	GradeLevels []string   `json:"grade_levels" binding:"required,min=1,dive,required"`
	Questions   []Question `json:"questions" binding:"required,min=1"`
}

// UpdateQuizRequest is the payload for updating an existing quiz.
type UpdateQuizRequest struct {
	Title       string     `json:"title" binding:"omitempty,min=3,max=255"`
	Subject     string     `json:"subject" binding:"omitempty,max=100"`
	GradeLevels []string   `json:"grade_levels" binding:"omitempty,min=1,dive,required"`
	Questions   []Question `json:"questions" binding:"omitempty,min=1"`
}

// ScheduleQuizRequest is the payload for scheduling a quiz into a time window.
// All three fields are required; a window whose end time is earlier than its
// start time spans midnight into the next day.
type ScheduleQuizRequest struct {
	ScheduleDate string `json:"schedule_date" binding:"required,datetime=2006-01-02"`
	StartTime    string `json:"start_time" binding:"required,datetime=15:04"`
	EndTime      string `json:"end_time" binding:"required,datetime=15:04"`
}

// GenerateQuestionsRequest asks the AI collaborator for draft questions.
type GenerateQuestionsRequest struct {
	Subject       string `json:"subject" binding:"required,max=100"`
	Topic         string `json:"topic" binding:"required,max=255"`
	GradeLevel    string `json:"grade_level" binding:"required,max=20"`
	QuestionCount int    `json:"question_count" binding:"required,min=1,max=20"`
}

// QuestionForStudent is a question with the correct option stripped, as
// served to quiz takers.
type QuestionForStudent struct {
	Text    string   `json:"text"`
	Options []string `json:"options"`
}

// StudentQuiz is the student-facing view of a scheduled quiz: answers
// removed, time-derived window status attached.
type StudentQuiz struct {
	ID           uuid.UUID            `json:"id"`
	Title        string               `json:"title"`
	Subject      string               `json:"subject"`
	Questions    []QuestionForStudent `json:"questions"`
	ScheduleDate *time.Time           `json:"schedule_date,omitempty"`
	StartTime    *string              `json:"start_time,omitempty"`
	EndTime      *string              `json:"end_time,omitempty"`
	WindowStatus string               `json:"window_status"`
}

// NewStudentQuiz builds the student view of a quiz.
func NewStudentQuiz(q *Quiz, windowStatus string) StudentQuiz {
	questions := make([]QuestionForStudent, len(q.Questions))
	for i, question := range q.Questions {
		questions[i] = QuestionForStudent{Text: question.Text, Options: question.Options}
	}
	return StudentQuiz{
		ID:           q.ID,
		Title:        q.Title,
		Subject:      q.Subject,
		Questions:    questions,
		ScheduleDate: q.ScheduleDate,
		StartTime:    q.StartTime,
		EndTime:      q.EndTime,
		WindowStatus: windowStatus,
	}
}

// QuizStats are the dashboard bucket counts for one teacher's quizzes.
// The four buckets always sum to Total.
type QuizStats struct {
	Total     int `json:"total"`
	Drafts    int `json:"drafts"`
	Scheduled int `json:"scheduled"`
	Active    int `json:"active"`
	Closed    int `json:"closed"`
}
