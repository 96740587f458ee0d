package service

import (
	"context"
	"fmt"
	"time"

	"github.com/burnsbros/taskdeck/internal/domain"
	"github.com/google/uuid"
)

// NotificationService manages user notifications
type NotificationService struct {
	repo NotificationRepository
}

// NewNotificationService creates a new notification service
func NewNotificationService(repo NotificationRepository) *NotificationService {
	return &NotificationService{repo: repo}
}

// Notify records a notification for a user
func (s *NotificationService) Notify(ctx context.Context, userID uuid.UUID, notifType, message string) error {
	n := &domain.Notification{
		ID:        uuid.New(),
		UserID:    userID,
		Type:      notifType,
		Message:   message,
		Read:      false,
		CreatedAt: time.Now(),
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// List returns the user's most recent notifications
func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, limit int) ([]domain.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.repo.ListByUser(ctx, userID, limit)
}

// MarkRead marks one of the user's notifications as read
func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	found, err := s.repo.MarkRead(ctx, notificationID, userID)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	if !found {
		return ErrNotFound
	}
	return nil
}

// MarkAllRead marks every notification of the user as read
func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	return s.repo.MarkAllRead(ctx, userID)
}

// Delete removes one of the user's notifications
func (s *NotificationService) Delete(ctx context.Context, userID, notificationID uuid.UUID) error {
	return s.repo.Delete(ctx, notificationID, userID)
}
