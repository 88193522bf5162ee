package firebase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"firebase.google.com/go/v4/messaging"
	gobreaker "github.com/sony/gobreaker/v2"

	"masterhub/internal/infrastructure/metrics"
	"masterhub/pkg/logger"
)

const breakerName = "fcm-push"

// multicastSender is the part of *messaging.Client we use.
type multicastSender interface {
	SendEachForMulticast(ctx context.Context, message *messaging.MulticastMessage) (*messaging.BatchResponse, error)
}

// PushSender delivers mobile push through FCM behind a circuit breaker so a
// failing FCM does not slow every notification down.
type PushSender struct {
	client multicastSender
	cb     *gobreaker.CircuitBreaker[*messaging.BatchResponse]
}

func NewPushSender(client multicastSender) *PushSender {
	return newPushSender(client, gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
	})
}

func newPushSender(client multicastSender, settings gobreaker.Settings) *PushSender {
	settings.ReadyToTrip = func(counts gobreaker.Counts) bool {
		return counts.ConsecutiveFailures >= 5
	}
	settings.OnStateChange = func(name string, from, to gobreaker.State) {
		logger.Warn("circuit breaker %s: %s -> %s", name, from.String(), to.String())
	}

	return &PushSender{
		client: client,
		cb:     gobreaker.NewCircuitBreaker[*messaging.BatchResponse](settings),
	}
}

// Send pushes one notification to every device token of a user.
func (p *PushSender) Send(ctx context.Context, tokens []string, title, body string, data map[string]string) error {
	if len(tokens) == 0 {
		return nil
	}

	resp, err := p.cb.Execute(func() (*messaging.BatchResponse, error) {
		return p.client.SendEachForMulticast(ctx, &messaging.MulticastMessage{
			Tokens: tokens,
			Notification: &messaging.Notification{
				Title: title,
				Body:  body,
			},
			Data: data,
		})
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.NotificationsDispatched.WithLabelValues("push", "rejected").Inc()
		} else {
			metrics.NotificationsDispatched.WithLabelValues("push", "failure").Inc()
		}
		return fmt.Errorf("fcm multicast: %w", err)
	}

	if resp.FailureCount > 0 {
		logger.Warn("fcm multicast: %d of %d deliveries failed", resp.FailureCount, len(tokens))
	}
	metrics.NotificationsDispatched.WithLabelValues("push", "success").Inc()
	return nil
}

// State reports the breaker state.
func (p *PushSender) State() gobreaker.State {
	return p.cb.State()
}
