package usecase_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"masterhub/internal/domain/entity"
	ws "masterhub/internal/infrastructure/websocket"
	"masterhub/internal/testutil"
	"masterhub/internal/usecase"
	"masterhub/pkg/errors"
	"masterhub/pkg/utils"
)

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

type chatFixture struct {
	uc        *usecase.ChatUseCase
	chats     *testutil.ChatRepository
	notifier  *testutil.Notifier
	publisher *testutil.Publisher
	limiter   *testutil.Limiter
	clock     *testutil.Clock
}

func newChatFixture() *chatFixture {
	f := &chatFixture{
		chats:     testutil.NewChatRepository(),
		notifier:  &testutil.Notifier{},
		publisher: &testutil.Publisher{},
		limiter:   &testutil.Limiter{},
		clock:     testutil.NewClock(t0),
	}
	users := testutil.NewUserRepository(
		&entity.User{ID: "client-1", Role: entity.RoleClient, Name: "Aida"},
		&entity.User{ID: "master-1", Role: entity.RoleMaster, Name: "Bakyt"},
		&entity.User{ID: "outsider", Role: entity.RoleClient, Name: "Chyngyz"},
	)
	f.uc = usecase.NewChatUseCase(f.chats, users, f.notifier, f.publisher, f.limiter)
	f.uc.SetClock(f.clock.Now)
	return f
}

func (f *chatFixture) room(t *testing.T) string {
	t.Helper()
	room, err := f.uc.CreateRoom(context.Background(), "client-1", usecase.CreateRoomInput{ParticipantID: "master-1", OrderID: "order-1"})
	require.NoError(t, err)
	return room.ID
}

func (f *chatFixture) send(t *testing.T, from, roomID, content string) *entity.Message {
	t.Helper()
	f.clock.Advance(time.Second)
	msg, err := f.uc.SendMessage(context.Background(), from, roomID, usecase.SendMessageInput{Content: content})
	require.NoError(t, err)
	return msg
}

func (f *chatFixture) unread(t *testing.T, roomID, userID string) int {
	t.Helper()
	p, err := f.chats.GetParticipant(context.Background(), roomID, userID)
	require.NoError(t, err)
	return p.UnreadCount
}

func TestCreateRoom(t *testing.T) {
	f := newChatFixture()
	ctx := context.Background()

	_, err := f.uc.CreateRoom(ctx, "client-1", usecase.CreateRoomInput{ParticipantID: "client-1"})
	assert.True(t, errors.Is(err, errors.CodeValidation))

	_, err = f.uc.CreateRoom(ctx, "client-1", usecase.CreateRoomInput{ParticipantID: "ghost"})
	assert.True(t, errors.IsNotFound(err))

	first, err := f.uc.CreateRoom(ctx, "client-1", usecase.CreateRoomInput{ParticipantID: "master-1", OrderID: "order-1"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"client-1", "master-1"}, first.ParticipantIDs)
	assert.Equal(t, 0, f.unread(t, first.ID, "client-1"))
	assert.Equal(t, 0, f.unread(t, first.ID, "master-1"))

	again, err := f.uc.CreateRoom(ctx, "master-1", usecase.CreateRoomInput{ParticipantID: "client-1", OrderID: "order-1"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)

	other, err := f.uc.CreateRoom(ctx, "client-1", usecase.CreateRoomInput{ParticipantID: "master-1", OrderID: "order-2"})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, other.ID)
}

func TestCreateRoomRateLimited(t *testing.T) {
	f := newChatFixture()
	f.limiter.Deny = true

	_, err := f.uc.CreateRoom(context.Background(), "client-1", usecase.CreateRoomInput{ParticipantID: "master-1"})
	assert.True(t, errors.Is(err, errors.CodeTooManyRequests))
}

func TestSendMessageIncrementsRecipientOnly(t *testing.T) {
	f := newChatFixture()
	roomID := f.room(t)

	msg := f.send(t, "client-1", roomID, "hello")
	assert.False(t, msg.IsRead)
	f.send(t, "client-1", roomID, "are you there?")

	assert.Equal(t, 2, f.unread(t, roomID, "master-1"))
	assert.Equal(t, 0, f.unread(t, roomID, "client-1"))

	assert.Equal(t, []string{ws.EventNewMessage, ws.EventNewMessage}, f.publisher.Types("master-1"))
	assert.Equal(t, []string{"master-1", "master-1"}, f.notifier.Recipients())
	assert.Equal(t, entity.NotificationNewMessage, f.notifier.Sent[0].Type)

	room, err := f.chats.GetRoom(context.Background(), roomID)
	require.NoError(t, err)
	assert.Equal(t, "are you there?", room.LastMessage)
}

func TestSendMessageSurvivesNotifierFailure(t *testing.T) {
	f := newChatFixture()
	roomID := f.room(t)
	f.notifier.Err = testutil.ErrUnavailable

	f.send(t, "client-1", roomID, "hello")
	assert.Equal(t, 1, f.unread(t, roomID, "master-1"))
}

func TestSendMessageValidation(t *testing.T) {
	f := newChatFixture()
	roomID := f.room(t)
	ctx := context.Background()

	_, err := f.uc.SendMessage(ctx, "client-1", roomID, usecase.SendMessageInput{Content: "   "})
	assert.True(t, errors.Is(err, errors.CodeValidation))

	_, err = f.uc.SendMessage(ctx, "client-1", roomID, usecase.SendMessageInput{Content: "x", Type: "VIDEO"})
	assert.True(t, errors.Is(err, errors.CodeValidation))

	_, err = f.uc.SendMessage(ctx, "outsider", roomID, usecase.SendMessageInput{Content: "hi"})
	assert.True(t, errors.Is(err, errors.CodeForbidden))
}

func TestMarkMessageReadDecrementsOnce(t *testing.T) {
	f := newChatFixture()
	roomID := f.room(t)
	ctx := context.Background()

	msg := f.send(t, "client-1", roomID, "one")
	f.send(t, "client-1", roomID, "two")

	resp, err := f.uc.MarkMessageRead(ctx, "master-1", msg.ID)
	require.NoError(t, err)
	assert.True(t, resp.Changed)
	assert.True(t, resp.Message.IsRead)
	assert.NotNil(t, resp.Message.ReadAt)
	assert.Equal(t, 1, resp.UnreadCount)

	again, err := f.uc.MarkMessageRead(ctx, "master-1", msg.ID)
	require.NoError(t, err)
	assert.False(t, again.Changed)
	assert.Equal(t, 1, again.UnreadCount)
	assert.Equal(t, 1, f.unread(t, roomID, "master-1"))

	assert.Contains(t, f.publisher.Types("client-1"), ws.EventMessageRead)
}

func TestConcurrentMarkMessageReadDecrementsOnce(t *testing.T) {
	f := newChatFixture()
	roomID := f.room(t)

	msg := f.send(t, "client-1", roomID, "one")
	f.send(t, "client-1", roomID, "two")

	const readers = 20
	var (
		wg      sync.WaitGroup
		changed atomic.Int32
	)
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := f.uc.MarkMessageRead(context.Background(), "master-1", msg.ID)
			if assert.NoError(t, err) && resp.Changed {
				changed.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, changed.Load())
	assert.Equal(t, 1, f.unread(t, roomID, "master-1"))
	assert.Equal(t, 1, f.chats.CountUnreadFor(roomID, "master-1"))
}

func TestMarkRoomReadWithConcurrentMessageReads(t *testing.T) {
	f := newChatFixture()
	roomID := f.room(t)

	var ids []string
	for _, content := range []string{"a", "b", "c", "d", "e"} {
		ids = append(ids, f.send(t, "client-1", roomID, content).ID)
	}
	require.Equal(t, 5, f.unread(t, roomID, "master-1"))

	var wg sync.WaitGroup
	for _, id := range ids {
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func(id string) {
				defer wg.Done()
				resp, err := f.uc.MarkMessageRead(context.Background(), "master-1", id)
				if assert.NoError(t, err) {
					assert.GreaterOrEqual(t, resp.UnreadCount, 0)
				}
			}(id)
		}
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := f.uc.MarkRoomRead(context.Background(), "master-1", roomID)
		assert.NoError(t, err)
	}()
	wg.Wait()

	assert.Equal(t, 0, f.unread(t, roomID, "master-1"))
	assert.Equal(t, 0, f.chats.CountUnreadFor(roomID, "master-1"))
}

func TestMarkOwnMessageIsNoop(t *testing.T) {
	f := newChatFixture()
	roomID := f.room(t)

	msg := f.send(t, "client-1", roomID, "mine")

	resp, err := f.uc.MarkMessageRead(context.Background(), "client-1", msg.ID)
	require.NoError(t, err)
	assert.False(t, resp.Changed)

	stored, err := f.chats.GetMessage(context.Background(), msg.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsRead)
	assert.Equal(t, 1, f.unread(t, roomID, "master-1"))
}

func TestMarkMessageReadClampsAtZero(t *testing.T) {
	f := newChatFixture()
	roomID := f.room(t)

	msg := f.send(t, "client-1", roomID, "drifted")
	f.chats.SetUnread(roomID, "master-1", 0)

	resp, err := f.uc.MarkMessageRead(context.Background(), "master-1", msg.ID)
	require.NoError(t, err)
	assert.True(t, resp.Changed)
	assert.Equal(t, 0, resp.UnreadCount)
	assert.Equal(t, 0, f.unread(t, roomID, "master-1"))
}

func TestMarkMessageReadErrors(t *testing.T) {
	f := newChatFixture()
	roomID := f.room(t)
	msg := f.send(t, "client-1", roomID, "secret")

	_, err := f.uc.MarkMessageRead(context.Background(), "master-1", "missing")
	assert.True(t, errors.IsNotFound(err))

	_, err = f.uc.MarkMessageRead(context.Background(), "outsider", msg.ID)
	assert.True(t, errors.Is(err, errors.CodeForbidden))
}

func TestMarkRoomRead(t *testing.T) {
	f := newChatFixture()
	roomID := f.room(t)
	ctx := context.Background()

	f.send(t, "client-1", roomID, "a")
	f.send(t, "client-1", roomID, "b")
	f.send(t, "client-1", roomID, "c")
	f.send(t, "master-1", roomID, "reply")
	f.chats.SetUnread(roomID, "master-1", 7)

	resp, err := f.uc.MarkRoomRead(ctx, "master-1", roomID)
	require.NoError(t, err)
	assert.Equal(t, 3, resp.MarkedCount)
	assert.Equal(t, 0, resp.UnreadCount)
	assert.Equal(t, 0, f.unread(t, roomID, "master-1"))
	assert.Equal(t, 0, f.chats.CountUnreadFor(roomID, "master-1"))

	// the master's own reply stays unread for the client
	assert.Equal(t, 1, f.chats.CountUnreadFor(roomID, "client-1"))
	assert.Equal(t, 1, f.unread(t, roomID, "client-1"))
	assert.Contains(t, f.publisher.Types("client-1"), ws.EventRoomRead)

	again, err := f.uc.MarkRoomRead(ctx, "master-1", roomID)
	require.NoError(t, err)
	assert.Equal(t, 0, again.MarkedCount)

	_, err = f.uc.MarkRoomRead(ctx, "outsider", roomID)
	assert.True(t, errors.Is(err, errors.CodeForbidden))
}

func TestListMessagesNewestFirst(t *testing.T) {
	f := newChatFixture()
	roomID := f.room(t)

	f.send(t, "client-1", roomID, "first")
	f.send(t, "master-1", roomID, "second")

	messages, total, err := f.uc.ListMessages(context.Background(), "client-1", roomID, 10, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, messages, 2)
	assert.Equal(t, "second", messages[0].Content)

	_, _, err = f.uc.ListMessages(context.Background(), "outsider", roomID, 10, 0)
	assert.True(t, errors.Is(err, errors.CodeForbidden))
}

func TestListRoomsAndUnreadSummary(t *testing.T) {
	f := newChatFixture()
	ctx := context.Background()
	roomA := f.room(t)
	roomB, err := f.uc.CreateRoom(ctx, "outsider", usecase.CreateRoomInput{ParticipantID: "master-1"})
	require.NoError(t, err)

	f.send(t, "client-1", roomA, "a1")
	f.send(t, "client-1", roomA, "a2")
	f.send(t, "outsider", roomB.ID, "b1")

	rooms, total, err := f.uc.ListRooms(ctx, "master-1", utils.NewPaginationParams(1, 10))
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, rooms, 2)
	assert.Equal(t, roomB.ID, rooms[0].ID)
	assert.Equal(t, 1, rooms[0].UnreadCount)

	summary, err := f.uc.UnreadSummary(ctx, "master-1")
	require.NoError(t, err)
	assert.Equal(t, 3, summary.TotalUnread)
	for _, r := range summary.Rooms {
		assert.Equal(t, r.Recomputed, r.UnreadCount)
	}
}
