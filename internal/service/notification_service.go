package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/brightclass/brightclass-backend/internal/config"
	"github.com/brightclass/brightclass-backend/internal/mailer"
	"github.com/brightclass/brightclass-backend/internal/model"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// NotificationStore is the persistence surface the deduplicator needs.
// Implemented by repository.NotificationRepository.
type NotificationStore interface {
	CreateAssigned(ctx context.Context, n *model.Notification) (bool, error)
	Create(ctx context.Context, n *model.Notification) error
	ExistsAssignedForQuiz(ctx context.Context, quizID uuid.UUID) (bool, error)
	LatestGradedScore(ctx context.Context, recipientID int, quizID uuid.UUID) (*string, error)
	ListByRecipient(ctx context.Context, recipientID int, role model.RecipientRole) ([]model.Notification, error)
	MarkRead(ctx context.Context, id uuid.UUID, recipientID int, role model.RecipientRole) (int64, error)
	MarkManyRead(ctx context.Context, ids []uuid.UUID) error
	MarkAllRead(ctx context.Context, recipientID int, role model.RecipientRole) error
	Delete(ctx context.Context, id uuid.UUID, recipientID int, role model.RecipientRole) (int64, error)
}

// Publisher is the pub/sub surface for live notification streaming.
// Satisfied by *redis.Client; nil disables publishing.
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// NotificationService creates and lists notifications with idempotency
// guarantees:
//
//   - assignment fan-out happens at most once per quiz, with the partial
//     unique index as the authoritative guard under concurrent schedulers;
//   - graded notifications are deduplicated by outcome, so a resubmission
//     with an unchanged score is silent;
//   - every read path collapses historical duplicates before returning.
type NotificationService struct {
	store NotificationStore
	mail  mailer.Mailer
	pub   Publisher
	log   zerolog.Logger
}

// NewNotificationService creates a new NotificationService. mail and pub
// may be nil; both are best-effort side channels.
func NewNotificationService(store NotificationStore, mail mailer.Mailer, pub Publisher, log zerolog.Logger) *NotificationService {
	return &NotificationService{
		store: store,
		mail:  mail,
		pub:   pub,
		log:   log.With().Str("component", "notification_service").Logger(),
	}
}

// FanOutAssigned creates one quiz_assigned notification per recipient.
//
// If the quiz already has any assignment notification the whole fan-out is
// skipped and 0 is returned — a duplicate schedule call is a success, not
// an error. Individual recipient failures (insert or email) do not abort
// the remaining recipients.
func (s *NotificationService) FanOutAssigned(ctx context.Context, quiz *model.Quiz, recipients []model.Student) (int, error) {
	exists, err := s.store.ExistsAssignedForQuiz(ctx, quiz.ID)
	if err != nil {
		return 0, fmt.Errorf("check existing fan-out: %w", err)
	}
	if exists {
		s.log.Info().Str("quiz_id", quiz.ID.String()).Msg("Fan-out already done, skipping")
		return 0, nil
	}

	message := fmt.Sprintf("New quiz assigned: %s", quiz.Title)
	created := 0

	for _, student := range recipients {
		n := &model.Notification{
			RecipientID:   student.ID,
			RecipientRole: model.RoleStudent,
			QuizID:        &quiz.ID,
			Type:          model.NotificationQuizAssigned,
			Message:       message,
		}

		ok, err := s.store.CreateAssigned(ctx, n)
		if err != nil {
			s.log.Error().Err(err).Int("student_id", student.ID).
				Str("quiz_id", quiz.ID.String()).Msg("Assignment notification failed")
			continue
		}
		if !ok {
			// Lost a race against a concurrent fan-out for this recipient.
			continue
		}
		created++

		s.publish(ctx, n)

		if s.mail != nil {
			subject := fmt.Sprintf("New quiz: %s", quiz.Title)
			html := fmt.Sprintf("<p>Hi %s,</p><p>A new quiz <strong>%s</strong> has been assigned to you.</p>",
				student.Name, quiz.Title)
			if err := s.mail.Send(ctx, student.Email, subject, html); err != nil {
				s.log.Warn().Err(err).Str("to", student.Email).Msg("Assignment email failed")
			}
		}
	}

	return created, nil
}

// RecordGraded creates a quiz_graded notification unless the most recent
// one for this (student, quiz) pair already carries the same score.
// Returns whether a notification was created.
func (s *NotificationService) RecordGraded(ctx context.Context, student *model.Student, quiz *model.Quiz, score int) (bool, error) {
	scoreStr := strconv.Itoa(score)

	prev, err := s.store.LatestGradedScore(ctx, student.ID, quiz.ID)
	if err != nil {
		return false, fmt.Errorf("look up previous grade: %w", err)
	}
	if prev != nil && *prev == scoreStr {
		s.log.Debug().Int("student_id", student.ID).Str("quiz_id", quiz.ID.String()).
			Str("score", scoreStr).Msg("Unchanged score, skipping graded notification")
		return false, nil
	}

	n := &model.Notification{
		RecipientID:   student.ID,
		RecipientRole: model.RoleStudent,
		QuizID:        &quiz.ID,
		Score:         &scoreStr,
		Type:          model.NotificationQuizGraded,
		Message:       fmt.Sprintf("Your quiz %q was graded: %s%%", quiz.Title, scoreStr),
	}
	if err := s.store.Create(ctx, n); err != nil {
		return false, fmt.Errorf("create graded notification: %w", err)
	}

	s.publish(ctx, n)
	return true, nil
}

// List returns a recipient's notifications newest-first with duplicates
// collapsed, plus the post-collapse unread count. When unreadOnly is set,
// only unread notifications are returned; the count is the same either way.
func (s *NotificationService) List(ctx context.Context, recipientID int, role model.RecipientRole, unreadOnly bool) ([]model.Notification, int, error) {
	all, err := s.store.ListByRecipient(ctx, recipientID, role)
	if err != nil {
		return nil, 0, fmt.Errorf("list notifications: %w", err)
	}

	visible, dupIDs := collapse(all)

	// Retire duplicate unread rows so the badge count stays consistent on
	// the next read even if this request's client ignores the collapse.
	if len(dupIDs) > 0 {
		if err := s.store.MarkManyRead(ctx, dupIDs); err != nil {
			s.log.Warn().Err(err).Int("count", len(dupIDs)).Msg("Collapse mark-read failed")
		}
	}

	sort.SliceStable(visible, func(i, j int) bool {
		return visible[i].CreatedAt.After(visible[j].CreatedAt)
	})

	unread := 0
	for _, n := range visible {
		if !n.IsRead {
			unread++
		}
	}

	if unreadOnly {
		filtered := make([]model.Notification, 0, unread)
		for _, n := range visible {
			if !n.IsRead {
				filtered = append(filtered, n)
			}
		}
		visible = filtered
	}

	return visible, unread, nil
}

// MarkRead marks one notification read.
func (s *NotificationService) MarkRead(ctx context.Context, id uuid.UUID, recipientID int, role model.RecipientRole) error {
	affected, err := s.store.MarkRead(ctx, id, recipientID, role)
	if err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	if affected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

// MarkAllRead marks every notification of a recipient read.
func (s *NotificationService) MarkAllRead(ctx context.Context, recipientID int, role model.RecipientRole) error {
	return s.store.MarkAllRead(ctx, recipientID, role)
}

// Delete removes one notification.
func (s *NotificationService) Delete(ctx context.Context, id uuid.UUID, recipientID int, role model.RecipientRole) error {
	affected, err := s.store.Delete(ctx, id, recipientID, role)
	if err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	if affected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

// publish pushes a created notification onto the recipient's live stream.
// Best-effort: a pub/sub failure never fails the creating operation.
func (s *NotificationService) publish(ctx context.Context, n *model.Notification) {
	if s.pub == nil {
		return
	}
	payload, err := json.Marshal(n)
	if err != nil {
		return
	}
	channel := config.CacheKey.NotificationChannel(string(n.RecipientRole), n.RecipientID)
	if err := s.pub.Publish(ctx, channel, payload).Err(); err != nil {
		s.log.Warn().Err(err).Str("channel", channel).Msg("Notification publish failed")
	}
}

// collapse hides duplicate notifications, keeping the first-created record
// of each group. quiz_assigned rows are keyed by (recipient, quiz);
// quiz_graded rows by (quiz, score). Later unread duplicates are returned
// for mark-read; nothing is ever deleted here. Input must be in creation
// order (oldest first). Collapsing an already-collapsed set is a no-op.
func collapse(ns []model.Notification) (visible []model.Notification, dupIDs []uuid.UUID) {
	seen := make(map[string]bool, len(ns))

	for _, n := range ns {
		key := collapseKey(n)
		if key == "" {
			visible = append(visible, n)
			continue
		}
		if seen[key] {
			if !n.IsRead {
				dupIDs = append(dupIDs, n.ID)
			}
			continue
		}
		seen[key] = true
		visible = append(visible, n)
	}
	return visible, dupIDs
}

// collapseKey returns the dedup key for a notification, or "" for types
// that are never collapsed.
func collapseKey(n model.Notification) string {
	quizID := ""
	if n.QuizID != nil {
		quizID = n.QuizID.String()
	}
	switch n.Type {
	case model.NotificationQuizAssigned:
		return fmt.Sprintf("assigned|%d|%s", n.RecipientID, quizID)
	case model.NotificationQuizGraded:
		score := ""
		if n.Score != nil {
			score = *n.Score
		}
		return fmt.Sprintf("graded|%s|%s", quizID, score)
	default:
		return ""
	}
}
