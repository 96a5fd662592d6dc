package model

import (
	"time"

	"github.com/google/uuid"
)

// NotificationType enumerates recipient-facing event kinds.
type NotificationType string

const (
	NotificationQuizAssigned NotificationType = "quiz_assigned"
	NotificationQuizGraded   NotificationType = "quiz_graded"
	NotificationReminder     NotificationType = "reminder"
	NotificationAnnouncement NotificationType = "announcement"
	NotificationDataExport   NotificationType = "data_export"
)

// RecipientRole identifies which user table a notification recipient
// belongs to.
type RecipientRole string

const (
	RoleStudent RecipientRole = "student"
	RoleTeacher RecipientRole = "teacher"
)

// Notification is a recipient-facing event record.
//
// For quiz_assigned, (recipient_id, quiz_id) is unique — enforced by a
// partial unique index, not just the application-level existence check.
type Notification struct {
	ID            uuid.UUID        `json:"id"`
	RecipientID   int              `json:"recipient_id"`
	RecipientRole RecipientRole    `json:"recipient_role"`
	Type          NotificationType `json:"type"`
	QuizID        *uuid.UUID       `json:"quiz_id,omitempty"`
	Score         *string          `json:"score,omitempty"`
	Message       string           `json:"message"`
	IsRead        bool             `json:"is_read"`
	CreatedAt     time.Time        `json:"created_at"`
}
