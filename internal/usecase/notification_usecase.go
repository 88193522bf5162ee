package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"masterhub/internal/domain/entity"
	"masterhub/internal/domain/repository"
	"masterhub/internal/infrastructure/metrics"
	ws "masterhub/internal/infrastructure/websocket"
	"masterhub/pkg/errors"
	"masterhub/pkg/logger"
	"masterhub/pkg/utils"
)

type NotificationUseCase struct {
	notificationRepo repository.NotificationRepository
	userRepo         repository.UserRepository
	publisher        RealtimePublisher
	push             PushSender
	now              Clock
}

// NewNotificationUseCase builds the dispatcher. push may be nil when mobile
// push is disabled.
func NewNotificationUseCase(
	notificationRepo repository.NotificationRepository,
	userRepo repository.UserRepository,
	publisher RealtimePublisher,
	push PushSender,
) *NotificationUseCase {
	return &NotificationUseCase{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		publisher:        publisher,
		push:             push,
		now:              time.Now,
	}
}

func (uc *NotificationUseCase) SetClock(now Clock) {
	uc.now = now
}

type SendNotificationInput struct {
	UserID            string
	Type              entity.NotificationType
	Title             string
	Message           string
	Priority          entity.NotificationPriority
	RelatedObjectType string
	RelatedObjectID   string
	Data              map[string]interface{}
}

type ListNotificationsInput struct {
	UnreadOnly bool
	Pagination utils.PaginationParams
}

type UnreadCountResponse struct {
	UnreadCount int64 `json:"unread_count"`
}

// Send stores the notification and fans it out to websocket and mobile
// push. Only the store error is returned; delivery failures are logged.
func (uc *NotificationUseCase) Send(ctx context.Context, input SendNotificationInput) (*entity.Notification, error) {
	if input.UserID == "" || strings.TrimSpace(input.Title) == "" {
		return nil, errors.Validation("userId and title are required")
	}
	if input.Type == "" {
		input.Type = entity.NotificationSystem
	}
	if input.Priority == "" {
		input.Priority = entity.PriorityNormal
	}

	notification := &entity.Notification{
		ID:                uuid.New().String(),
		UserID:            input.UserID,
		Title:             input.Title,
		Message:           input.Message,
		NotificationType:  input.Type,
		Priority:          input.Priority,
		IsRead:            false,
		RelatedObjectType: input.RelatedObjectType,
		RelatedObjectID:   input.RelatedObjectID,
		Data:              input.Data,
		CreatedAt:         uc.now(),
	}

	if err := uc.notificationRepo.Create(ctx, notification); err != nil {
		logger.Error("SendNotification Error: failed to store notification for %s: %v", input.UserID, err)
		metrics.NotificationsDispatched.WithLabelValues("store", "failure").Inc()
		return nil, errors.Internal("Failed to create notification", err)
	}
	metrics.NotificationsDispatched.WithLabelValues("store", "success").Inc()

	uc.deliverRealtime(notification)
	uc.deliverPush(ctx, notification)

	return notification, nil
}

func (uc *NotificationUseCase) deliverRealtime(notification *entity.Notification) {
	if uc.publisher == nil {
		return
	}
	err := uc.publisher.Push(notification.UserID, ws.Event{Type: ws.EventNotification, Data: notification})
	if err != nil {
		logger.Warn("SendNotification: websocket delivery to %s failed: %v", notification.UserID, err)
		metrics.NotificationsDispatched.WithLabelValues("websocket", "failure").Inc()
		return
	}
	metrics.NotificationsDispatched.WithLabelValues("websocket", "success").Inc()
}

func (uc *NotificationUseCase) deliverPush(ctx context.Context, notification *entity.Notification) {
	if uc.push == nil {
		return
	}

	user, err := uc.userRepo.GetByID(ctx, notification.UserID)
	if err != nil {
		logger.Warn("SendNotification: cannot load device tokens for %s: %v", notification.UserID, err)
		return
	}
	if len(user.DeviceTokens) == 0 {
		return
	}

	data := map[string]string{
		"notification_id": notification.ID,
		"type":            string(notification.NotificationType),
	}
	if notification.RelatedObjectID != "" {
		data["related_object_type"] = notification.RelatedObjectType
		data["related_object_id"] = notification.RelatedObjectID
	}
	for k, v := range notification.Data {
		if _, taken := data[k]; !taken {
			data[k] = fmt.Sprint(v)
		}
	}

	if err := uc.push.Send(ctx, user.DeviceTokens, notification.Title, notification.Message, data); err != nil {
		logger.Warn("SendNotification: push delivery to %s failed: %v", notification.UserID, err)
	}
}

func (uc *NotificationUseCase) List(ctx context.Context, userID string, input ListNotificationsInput) ([]*entity.Notification, int64, error) {
	p := input.Pagination
	notifications, total, err := uc.notificationRepo.ListByUser(ctx, userID, input.UnreadOnly, p.PageSize, p.Offset)
	if err != nil {
		logger.Error("ListNotifications Error: %v", err)
		return nil, 0, err
	}
	return notifications, total, nil
}

// UnreadCount is recomputed from the records on every call.
func (uc *NotificationUseCase) UnreadCount(ctx context.Context, userID string) (*UnreadCountResponse, error) {
	count, err := uc.notificationRepo.CountUnread(ctx, userID)
	if err != nil {
		logger.Error("UnreadCount Error: %v", err)
		return nil, err
	}
	return &UnreadCountResponse{UnreadCount: count}, nil
}

func (uc *NotificationUseCase) getOwned(ctx context.Context, userID, notificationID string) (*entity.Notification, error) {
	notification, err := uc.notificationRepo.GetByID(ctx, notificationID)
	if err != nil {
		return nil, err
	}
	if notification.UserID != userID {
		return nil, errors.Forbidden("You don't have permission to access this notification", nil)
	}
	return notification, nil
}

// MarkRead is idempotent; an already read notification keeps its readAt.
func (uc *NotificationUseCase) MarkRead(ctx context.Context, userID, notificationID string) (*entity.Notification, error) {
	notification, err := uc.getOwned(ctx, userID, notificationID)
	if err != nil {
		logger.Error("MarkNotificationRead Error: %v", err)
		return nil, err
	}
	if notification.IsRead {
		return notification, nil
	}

	now := uc.now()
	if err := uc.notificationRepo.MarkRead(ctx, notificationID, now); err != nil {
		logger.Error("MarkNotificationRead Error: %v", err)
		return nil, err
	}
	notification.IsRead = true
	notification.ReadAt = &now
	return notification, nil
}

func (uc *NotificationUseCase) MarkAllRead(ctx context.Context, userID string) (int, error) {
	changed, err := uc.notificationRepo.MarkAllRead(ctx, userID, uc.now())
	if err != nil {
		logger.Error("MarkAllNotificationsRead Error: %v", err)
		return 0, err
	}
	return changed, nil
}

func (uc *NotificationUseCase) Delete(ctx context.Context, userID, notificationID string) error {
	if _, err := uc.getOwned(ctx, userID, notificationID); err != nil {
		logger.Error("DeleteNotification Error: %v", err)
		return err
	}
	if err := uc.notificationRepo.Delete(ctx, notificationID); err != nil {
		logger.Error("DeleteNotification Error: %v", err)
		return err
	}
	return nil
}

func (uc *NotificationUseCase) DeleteAll(ctx context.Context, userID string) (int, error) {
	deleted, err := uc.notificationRepo.DeleteAllByUser(ctx, userID)
	if err != nil {
		logger.Error("DeleteAllNotifications Error: %v", err)
		return 0, err
	}
	return deleted, nil
}

// RegisterDevice stores an FCM token on the user's profile.
func (uc *NotificationUseCase) RegisterDevice(ctx context.Context, userID, token string) error {
	if strings.TrimSpace(token) == "" {
		return errors.Validation("token is required")
	}
	if err := uc.userRepo.AddDeviceToken(ctx, userID, token); err != nil {
		logger.Error("RegisterDevice Error: %v", err)
		return err
	}
	return nil
}
