package firebase

import (
	"context"
	"errors"
	"testing"
	"time"

	"firebase.google.com/go/v4/messaging"
	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubMulticast struct {
	calls int
	err   error
	last  *messaging.MulticastMessage
}

func (s *stubMulticast) SendEachForMulticast(ctx context.Context, message *messaging.MulticastMessage) (*messaging.BatchResponse, error) {
	s.calls++
	s.last = message
	if s.err != nil {
		return nil, s.err
	}
	return &messaging.BatchResponse{SuccessCount: len(message.Tokens)}, nil
}

func TestSendBuildsMulticast(t *testing.T) {
	stub := &stubMulticast{}
	sender := NewPushSender(stub)

	err := sender.Send(context.Background(), []string{"t1", "t2"}, "New message", "hello", map[string]string{"room_id": "r1"})
	require.NoError(t, err)

	assert.Equal(t, []string{"t1", "t2"}, stub.last.Tokens)
	assert.Equal(t, "New message", stub.last.Notification.Title)
	assert.Equal(t, "r1", stub.last.Data["room_id"])
}

func TestSendWithoutTokensSkipsFCM(t *testing.T) {
	stub := &stubMulticast{}
	require.NoError(t, NewPushSender(stub).Send(context.Background(), nil, "t", "b", nil))
	assert.Zero(t, stub.calls)
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	stub := &stubMulticast{err: errors.New("unavailable")}
	sender := newPushSender(stub, gobreaker.Settings{Name: "test", Timeout: time.Hour})

	for i := 0; i < 5; i++ {
		assert.Error(t, sender.Send(context.Background(), []string{"t"}, "t", "b", nil))
	}
	assert.Equal(t, gobreaker.StateOpen, sender.State())

	err := sender.Send(context.Background(), []string{"t"}, "t", "b", nil)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 5, stub.calls)
}
