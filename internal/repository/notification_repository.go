package repository

import (
	"context"
	"errors"

	"github.com/brightclass/brightclass-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const notificationColumns = `id, recipient_id, recipient_role, type, quiz_id, score,
	        message, is_read, created_at`

// NotificationRepository handles notification data access.
//
// The notifications table carries a partial unique index on
// (recipient_id, quiz_id) WHERE type = 'quiz_assigned'. That constraint,
// not the application-level existence check, is the authoritative guard
// against duplicate assignment notifications under concurrent writers.
type NotificationRepository struct {
	pool *pgxpool.Pool
}

// NewNotificationRepository creates a new NotificationRepository.
func NewNotificationRepository(pool *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{pool: pool}
}

// CreateAssigned inserts a quiz_assigned notification, relying on the
// partial unique index to swallow duplicates. Returns false when the row
// already existed (concurrent or repeated fan-out), true when created.
func (r *NotificationRepository) CreateAssigned(ctx context.Context, n *model.Notification) (bool, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO notifications (recipient_id, recipient_role, type, quiz_id, message)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (recipient_id, quiz_id) WHERE type = 'quiz_assigned' DO NOTHING
		 RETURNING id, created_at`,
		n.RecipientID, n.RecipientRole, model.NotificationQuizAssigned, n.QuizID, n.Message,
	).Scan(&n.ID, &n.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil // Suppressed by the uniqueness constraint
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Create inserts a notification without uniqueness handling. Used for
// quiz_graded and the broadcast types, which are deduplicated by outcome
// in the service layer instead.
func (r *NotificationRepository) Create(ctx context.Context, n *model.Notification) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO notifications (recipient_id, recipient_role, type, quiz_id, score, message)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		n.RecipientID, n.RecipientRole, n.Type, n.QuizID, n.Score, n.Message,
	).Scan(&n.ID, &n.CreatedAt)
}

// ExistsAssignedForQuiz reports whether any quiz_assigned notification
// exists for the quiz. The fan-out fast path keys on this: a quiz that
// has been announced once is never announced again.
func (r *NotificationRepository) ExistsAssignedForQuiz(ctx context.Context, quizID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (
		   SELECT 1 FROM notifications WHERE quiz_id = $1 AND type = $2
		 )`, quizID, model.NotificationQuizAssigned).Scan(&exists)
	return exists, err
}

// LatestGradedScore returns the score recorded on the most recent
// quiz_graded notification for the (recipient, quiz) pair, or nil when
// there is none.
func (r *NotificationRepository) LatestGradedScore(ctx context.Context, recipientID int, quizID uuid.UUID) (*string, error) {
	var score *string
	err := r.pool.QueryRow(ctx,
		`SELECT score FROM notifications
		 WHERE recipient_id = $1 AND quiz_id = $2 AND type = $3
		 ORDER BY created_at DESC
		 LIMIT 1`, recipientID, quizID, model.NotificationQuizGraded).Scan(&score)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return score, nil
}

// ListByRecipient retrieves all notifications for a recipient in creation
// order (oldest first). The service's read-time collapse depends on this
// ordering: the first-created record of a duplicate group is the keeper.
func (r *NotificationRepository) ListByRecipient(ctx context.Context, recipientID int, role model.RecipientRole) ([]model.Notification, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+notificationColumns+` FROM notifications
		 WHERE recipient_id = $1 AND recipient_role = $2
		 ORDER BY created_at ASC`, recipientID, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []model.Notification
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.RecipientID, &n.RecipientRole, &n.Type, &n.QuizID,
			&n.Score, &n.Message, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// MarkRead marks one notification read, scoped to its owner.
// Returns the number of rows updated (0 when the id does not resolve).
func (r *NotificationRepository) MarkRead(ctx context.Context, id uuid.UUID, recipientID int, role model.RecipientRole) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE notifications SET is_read = TRUE
		 WHERE id = $1 AND recipient_id = $2 AND recipient_role = $3`, id, recipientID, role)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// MarkManyRead marks a batch of notifications read. Used by the read-time
// collapse to retire duplicate rows without deleting them.
func (r *NotificationRepository) MarkManyRead(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.pool.Exec(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE id = ANY($1)`, ids)
	return err
}

// MarkAllRead marks every notification of a recipient read.
func (r *NotificationRepository) MarkAllRead(ctx context.Context, recipientID int, role model.RecipientRole) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE notifications SET is_read = TRUE
		 WHERE recipient_id = $1 AND recipient_role = $2 AND NOT is_read`, recipientID, role)
	return err
}

// Delete removes one notification, scoped to its owner.
func (r *NotificationRepository) Delete(ctx context.Context, id uuid.UUID, recipientID int, role model.RecipientRole) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM notifications
		 WHERE id = $1 AND recipient_id = $2 AND recipient_role = $3`, id, recipientID, role)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
