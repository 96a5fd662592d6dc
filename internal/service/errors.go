package service

import (
	"errors"
	"fmt"

	"github.com/brightclass/brightclass-backend/internal/schedule"
)

// Common service errors, mapped to API error codes in the handlers.
var (
	ErrQuizNotFound         = errors.New("quiz not found")
	ErrNotQuizOwner         = errors.New("not the quiz author")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrAnswerCountMismatch  = errors.New("answer count does not match question count")
	ErrInvalidQuestion      = errors.New("question has no valid correct option")
	ErrAIUnavailable        = errors.New("AI service is not configured")
)

// WindowError rejects a submission attempted outside the active window.
// It carries the computed time status so the handler can present a
// kind-specific message (upcoming vs expired vs never scheduled).
type WindowError struct {
	Status schedule.Status
}

func (e *WindowError) Error() string {
	return fmt.Sprintf("quiz window is %s, not active", e.Status)
}
