package entity

import "time"

type NotificationType string

const (
	NotificationNewMessage      NotificationType = "NEW_MESSAGE"
	NotificationNewReview       NotificationType = "NEW_REVIEW"
	NotificationTrackingStarted NotificationType = "TRACKING_STARTED"
	NotificationTrackingShared  NotificationType = "TRACKING_SHARED"
	NotificationSystem          NotificationType = "SYSTEM"
)

type NotificationPriority string

const (
	PriorityLow    NotificationPriority = "LOW"
	PriorityNormal NotificationPriority = "NORMAL"
	PriorityHigh   NotificationPriority = "HIGH"
	PriorityUrgent NotificationPriority = "URGENT"
)

type Notification struct {
	ID                string                 `json:"id" firestore:"id"`
	UserID            string                 `json:"user_id" firestore:"userId"`
	Title             string                 `json:"title" firestore:"title"`
	Message           string                 `json:"message" firestore:"message"`
	NotificationType  NotificationType       `json:"notification_type" firestore:"notificationType"`
	Priority          NotificationPriority   `json:"priority" firestore:"priority"`
	IsRead            bool                   `json:"is_read" firestore:"isRead"`
	ReadAt            *time.Time             `json:"read_at,omitempty" firestore:"readAt,omitempty"`
	RelatedObjectType string                 `json:"related_object_type,omitempty" firestore:"relatedObjectType,omitempty"`
	RelatedObjectID   string                 `json:"related_object_id,omitempty" firestore:"relatedObjectId,omitempty"`
	Data              map[string]interface{} `json:"data,omitempty" firestore:"data,omitempty"`
	CreatedAt         time.Time              `json:"created_at" firestore:"createdAt"`
}
