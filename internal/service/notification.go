package service

import (
	"context"

	"guestflow-backend/internal/domain"
	"guestflow-backend/internal/repository"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type notificationService struct {
	noteRepo repository.NotificationRepository
}

func NewNotificationService(noteRepo repository.NotificationRepository) NotificationService {
	return &notificationService{noteRepo: noteRepo}
}

func (s *notificationService) GetNotifications(ctx context.Context, guestID string, page, pageSize int32) ([]domain.Notification, int32, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	offset := (page - 1) * pageSize
	return s.noteRepo.List(ctx, guestID, pageSize, offset)
}

func (s *notificationService) MarkAsRead(ctx context.Context, guestID, notificationID string) error {
	return s.noteRepo.MarkAsRead(ctx, notificationID, guestID)
}
