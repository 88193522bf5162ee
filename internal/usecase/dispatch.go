package usecase

import (
	"context"

	ws "masterhub/internal/infrastructure/websocket"
	"masterhub/pkg/logger"
)

// notify is fire-and-forget: a failed dispatch is logged and never fails
// the operation that triggered it.
func notify(ctx context.Context, notifier Notifier, op string, input SendNotificationInput) {
	if notifier == nil {
		return
	}
	if _, err := notifier.Send(ctx, input); err != nil {
		logger.Warn("%s: notification to %s failed: %v", op, input.UserID, err)
	}
}

func publish(publisher RealtimePublisher, op, userID, eventType string, data interface{}) {
	if publisher == nil {
		return
	}
	if err := publisher.Push(userID, ws.Event{Type: eventType, Data: data}); err != nil {
		logger.Warn("%s: websocket push %s to %s failed: %v", op, eventType, userID, err)
	}
}
