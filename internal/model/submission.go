package model

import (
	"time"

	"github.com/google/uuid"
)

// Submission is one graded attempt at a quiz. Multiple submissions per
// (student, quiz) pair are allowed and each is stored; only the graded
// notification is deduplicated.
type Submission struct {
	ID               uuid.UUID `json:"id"`
	QuizID           uuid.UUID `json:"quiz_id"`
	StudentID        int       `json:"student_id"`
	Answers          []int     `json:"answers"`
	Score            int       `json:"score"`
	CorrectCount     int       `json:"correct_count"`
	TotalQuestions   int       `json:"total_questions"`
	TimeTakenSeconds int       `json:"time_taken_seconds"`
	CreatedAt        time.Time `json:"created_at"`
}

// SubmitQuizRequest is the payload for submitting quiz answers.
// Answers holds the selected option index per question, in question order;
// -1 marks an unanswered question.
type SubmitQuizRequest struct {
	Answers   []int `json:"answers" binding:"required,min=1"`
	TimeTaken int   `json:"time_taken" binding:"omitempty,min=0"`
}

// AnswerReview is the per-question breakdown returned after grading.
type AnswerReview struct {
	Question  string `json:"question"`
	Selected  int    `json:"selected"`
	Correct   int    `json:"correct"`
	IsCorrect bool   `json:"is_correct"`
}

// SubmitResult is the graded outcome of a submission.
type SubmitResult struct {
	Score          int            `json:"score"`
	CorrectAnswers int            `json:"correct_answers"`
	TotalQuestions int            `json:"total_questions"`
	Answers        []AnswerReview `json:"answers"`
}
