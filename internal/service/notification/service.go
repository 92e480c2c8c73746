// internal/service/notification/service.go
package notification

import (
	"context"
	"fmt"
	"time"

	"adscreen-service/internal/domain/auth"
	"adscreen-service/internal/domain/notification"
	wstypes "adscreen-service/internal/domain/websocket"
	"adscreen-service/internal/queue"
	"adscreen-service/internal/repository/postgres"

	"go.uber.org/zap"
)

type NotificationStore interface {
	Create(ctx context.Context, n *notification.Notification) error
	ListByUser(ctx context.Context, userID int64, filters *notification.NotificationListFilters) ([]notification.Notification, int64, error)
	MarkAsRead(ctx context.Context, id, userID int64) error
	MarkAllAsRead(ctx context.Context, userID int64) error
	GetSummary(ctx context.Context, userID int64) (*notification.NotificationSummary, error)
	Delete(ctx context.Context, id, userID int64) error
}

type UserLookup interface {
	FindByID(ctx context.Context, id int64) (*auth.User, error)
}

// Pusher delivers realtime events; the websocket hub implements it.
type Pusher interface {
	BroadcastNotification(userID int64, n *wstypes.NotificationData)
	BroadcastNotificationCount(userID int64, count int64)
}

// EmailQueue accepts email jobs: the RabbitMQ publisher, or the direct
// async sender when no broker is configured.
type EmailQueue interface {
	PublishEmail(ctx context.Context, job queue.EmailJob) error
}

// NotificationService persists in-app notifications, pushes them over the
// websocket hub and mirrors them to email.
type NotificationService struct {
	repo   NotificationStore
	users  UserLookup
	pusher Pusher
	emails EmailQueue
	logger *zap.Logger
}

// NewNotificationService builds the service. pusher and emails may be nil.
func NewNotificationService(repo NotificationStore, users UserLookup, pusher Pusher, emails EmailQueue, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		repo:   repo,
		users:  users,
		pusher: pusher,
		emails: emails,
		logger: logger,
	}
}

// Notify dispatches an event. It runs after the business transaction has
// committed, so failures are logged and never returned.
func (s *NotificationService) Notify(ctx context.Context, ev notification.Event) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	n := &notification.Notification{
		UserID:   ev.UserID,
		Title:    ev.TitleAr,
		Message:  ev.MessageAr,
		Type:     ev.Type,
		Metadata: ev.Metadata,
	}
	if n.Title == "" {
		n.Title = ev.TitleEn
	}
	if n.Message == "" {
		n.Message = ev.MessageEn
	}

	if err := s.repo.Create(ctx, n); err != nil {
		s.logger.Error("failed to store notification",
			zap.Int64("user_id", ev.UserID),
			zap.String("type", string(ev.Type)),
			zap.Error(err))
	} else {
		s.pushToWebSocket(n)
	}

	s.sendEmail(ctx, ev)
}

func (s *NotificationService) sendEmail(ctx context.Context, ev notification.Event) {
	if s.emails == nil {
		return
	}

	user, err := s.users.FindByID(ctx, ev.UserID)
	if err != nil {
		s.logger.Warn("failed to load notification recipient", zap.Int64("user_id", ev.UserID), zap.Error(err))
		return
	}

	job := queue.EmailJob{
		To:          user.Email,
		UserID:      user.ID,
		Type:        string(ev.Type),
		SubjectAr:   ev.TitleAr,
		SubjectEn:   ev.TitleEn,
		MessageAr:   ev.MessageAr,
		MessageEn:   ev.MessageEn,
		RequestedAt: time.Now().UTC(),
	}
	if err := s.emails.PublishEmail(ctx, job); err != nil {
		s.logger.Error("failed to enqueue email",
			zap.Int64("user_id", ev.UserID),
			zap.String("type", string(ev.Type)),
			zap.Error(err))
	}
}

// GetUserNotifications retrieves notifications for a user with filters
func (s *NotificationService) GetUserNotifications(ctx context.Context, userID int64, filters *notification.NotificationListFilters) (*notification.NotificationListResponse, error) {
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PageSize < 1 {
		filters.PageSize = 20
	}

	notifications, total, err := s.repo.ListByUser(ctx, userID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to get notifications: %w", err)
	}

	summary, err := s.repo.GetSummary(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get summary: %w", err)
	}

	return &notification.NotificationListResponse{
		Notifications: notifications,
		Summary:       *summary,
		Page:          filters.Page,
		PageSize:      filters.PageSize,
		TotalPages:    postgres.TotalPages(total, filters.PageSize),
	}, nil
}

// MarkAsRead marks a notification as read
func (s *NotificationService) MarkAsRead(ctx context.Context, id, userID int64) error {
	if err := s.repo.MarkAsRead(ctx, id, userID); err != nil {
		return fmt.Errorf("failed to mark as read: %w", err)
	}
	s.pushUnreadCount(ctx, userID)
	return nil
}

// MarkAllAsRead marks all notifications as read for a user
func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID int64) error {
	if err := s.repo.MarkAllAsRead(ctx, userID); err != nil {
		return fmt.Errorf("failed to mark all as read: %w", err)
	}
	if s.pusher != nil {
		s.pusher.BroadcastNotificationCount(userID, 0)
	}
	return nil
}

func (s *NotificationService) Delete(ctx context.Context, id, userID int64) error {
	if err := s.repo.Delete(ctx, id, userID); err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	s.pushUnreadCount(ctx, userID)
	return nil
}

func (s *NotificationService) GetSummary(ctx context.Context, userID int64) (*notification.NotificationSummary, error) {
	return s.repo.GetSummary(ctx, userID)
}

func (s *NotificationService) pushUnreadCount(ctx context.Context, userID int64) {
	if s.pusher == nil {
		return
	}
	summary, err := s.repo.GetSummary(ctx, userID)
	if err != nil {
		s.logger.Warn("failed to get unread count", zap.Int64("user_id", userID), zap.Error(err))
		return
	}
	s.pusher.BroadcastNotificationCount(userID, summary.TotalUnread)
}

func (s *NotificationService) pushToWebSocket(n *notification.Notification) {
	if s.pusher == nil {
		return
	}
	s.pusher.BroadcastNotification(n.UserID, &wstypes.NotificationData{
		ID:        n.ID,
		Title:     n.Title,
		Message:   n.Message,
		Type:      string(n.Type),
		IsRead:    n.IsRead,
		Metadata:  n.Metadata,
		CreatedAt: n.CreatedAt,
	})
}
