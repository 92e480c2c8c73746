// internal/repository/postgres/notification_repo.go
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"adscreen-service/internal/domain/notification"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type NotificationRepository struct {
	db *pgxpool.Pool
}

func NewNotificationRepository(db *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{db: db}
}

const notificationColumns = `id, user_id, title, message, type, metadata, is_read, created_at, read_at`

func scanNotification(row pgx.Row) (*notification.Notification, error) {
	var n notification.Notification
	var metadataJSON []byte

	err := row.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.Type, &metadataJSON, &n.IsRead, &n.CreatedAt, &n.ReadAt)
	if err != nil {
		return nil, err
	}
	if len(metadataJSON) > 0 {
		if err := json.Unmarshal(metadataJSON, &n.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
	}
	return &n, nil
}

// Create stores a notification
func (r *NotificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	query := `
		INSERT INTO notifications (user_id, title, message, type, metadata)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	var metadataJSON []byte
	if n.Metadata != nil {
		var err error
		metadataJSON, err = json.Marshal(n.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal metadata: %w", err)
		}
	}

	err := r.db.QueryRow(ctx, query, n.UserID, n.Title, n.Message, n.Type, metadataJSON).Scan(&n.ID, &n.CreatedAt)
	return mapError(err, "failed to create notification")
}

// ListByUser returns a page of the user's notifications, newest first
func (r *NotificationRepository) ListByUser(ctx context.Context, userID int64, filters *notification.NotificationListFilters) ([]notification.Notification, int64, error) {
	var w where
	w.add("user_id = $%d", userID)
	if filters.IsRead != nil {
		w.add("is_read = $%d", *filters.IsRead)
	}

	var total int64
	if err := r.db.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM notifications WHERE %s", w.clause()), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	page, size, offset := normalizePage(filters.Page, filters.PageSize)
	filters.Page, filters.PageSize = page, size

	query := fmt.Sprintf(`SELECT %s FROM notifications WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		notificationColumns, w.clause(), w.next(), w.next()+1)

	rows, err := r.db.Query(ctx, query, append(w.args, size, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	notifications := []notification.Notification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, *n)
	}
	return notifications, total, rows.Err()
}

// MarkAsRead marks one of the user's notifications as read
func (r *NotificationRepository) MarkAsRead(ctx context.Context, id, userID int64) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE notifications SET is_read = TRUE, read_at = $1
		WHERE id = $2 AND user_id = $3 AND is_read = FALSE
	`, time.Now(), id, userID)
	if err != nil {
		return fmt.Errorf("failed to mark notification as read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return mapError(pgx.ErrNoRows, "")
	}
	return nil
}

func (r *NotificationRepository) MarkAllAsRead(ctx context.Context, userID int64) error {
	_, err := r.db.Exec(ctx, `
		UPDATE notifications SET is_read = TRUE, read_at = $1
		WHERE user_id = $2 AND is_read = FALSE
	`, time.Now(), userID)
	return mapError(err, "failed to mark notifications as read")
}

func (r *NotificationRepository) GetSummary(ctx context.Context, userID int64) (*notification.NotificationSummary, error) {
	var summary notification.NotificationSummary
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE NOT is_read)
		FROM notifications
		WHERE user_id = $1
	`, userID).Scan(&summary.Total, &summary.TotalUnread)
	if err != nil {
		return nil, fmt.Errorf("failed to get notification summary: %w", err)
	}
	return &summary, nil
}

func (r *NotificationRepository) Delete(ctx context.Context, id, userID int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM notifications WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return mapError(pgx.ErrNoRows, "")
	}
	return nil
}
