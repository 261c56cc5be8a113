package grpc

import (
	"context"

	"guestflow-backend/internal/service"
)

type NotificationHandler struct {
	noteSvc  service.NotificationService
	guestSvc service.GuestService
}

func NewNotificationHandler(noteSvc service.NotificationService, guestSvc service.GuestService) *NotificationHandler {
	return &NotificationHandler{noteSvc: noteSvc, guestSvc: guestSvc}
}

var notificationServiceDesc = serviceDesc("NotificationService",
	unary("NotificationService", "GetNotifications", (*NotificationHandler).GetNotifications),
	unary("NotificationService", "MarkNotificationRead", (*NotificationHandler).MarkNotificationRead),
)

func (h *NotificationHandler) GetNotifications(ctx context.Context, req *GetNotificationsRequest) (*GetNotificationsResponse, error) {
	if _, err := loadAuthorizedGuest(ctx, h.guestSvc, req.GuestID); err != nil {
		return nil, err
	}
	notes, count, err := h.noteSvc.GetNotifications(ctx, req.GuestID, req.Page, req.PageSize)
	if err != nil {
		return nil, err
	}
	return &GetNotificationsResponse{Notifications: notes, TotalCount: count}, nil
}

func (h *NotificationHandler) MarkNotificationRead(ctx context.Context, req *MarkNotificationReadRequest) (*MarkNotificationReadResponse, error) {
	if _, err := loadAuthorizedGuest(ctx, h.guestSvc, req.GuestID); err != nil {
		return nil, err
	}
	if err := h.noteSvc.MarkAsRead(ctx, req.GuestID, req.NotificationID); err != nil {
		return nil, err
	}
	return &MarkNotificationReadResponse{Success: true}, nil
}
