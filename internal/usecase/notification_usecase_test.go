package usecase_test

import (
	"context"
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

type notificationFixture struct {
	uc        *usecase.NotificationUseCase
	repo      *testutil.NotificationRepository
	users     *testutil.UserRepository
	publisher *testutil.Publisher
	push      *testutil.PushSender
	clock     *testutil.Clock
}

func newNotificationFixture() *notificationFixture {
	f := &notificationFixture{
		repo: testutil.NewNotificationRepository(),
		users: testutil.NewUserRepository(
			&entity.User{ID: "u1", Role: entity.RoleClient, DeviceTokens: []string{"device-a"}},
			&entity.User{ID: "u2", Role: entity.RoleMaster},
		),
		publisher: &testutil.Publisher{},
		push:      &testutil.PushSender{},
		clock:     testutil.NewClock(t0),
	}
	f.uc = usecase.NewNotificationUseCase(f.repo, f.users, f.publisher, f.push)
	f.uc.SetClock(f.clock.Now)
	return f
}

func (f *notificationFixture) send(t *testing.T, userID, title string) *entity.Notification {
	t.Helper()
	f.clock.Advance(time.Second)
	n, err := f.uc.Send(context.Background(), usecase.SendNotificationInput{
		UserID:  userID,
		Type:    entity.NotificationSystem,
		Title:   title,
		Message: "body",
	})
	require.NoError(t, err)
	return n
}

func TestSendFansOut(t *testing.T) {
	f := newNotificationFixture()

	n := f.send(t, "u1", "Welcome")
	assert.False(t, n.IsRead)
	assert.Equal(t, entity.PriorityNormal, n.Priority)

	assert.Equal(t, []string{ws.EventNotification}, f.publisher.Types("u1"))
	require.Len(t, f.push.Calls, 1)
	assert.Equal(t, []string{"device-a"}, f.push.Calls[0].Tokens)
	assert.Equal(t, n.ID, f.push.Calls[0].Data["notification_id"])

	// no device tokens, no push
	f.send(t, "u2", "Hi")
	assert.Len(t, f.push.Calls, 1)
}

func TestSendIgnoresDeliveryFailures(t *testing.T) {
	f := newNotificationFixture()
	f.publisher.Err = testutil.ErrUnavailable
	f.push.Err = testutil.ErrUnavailable

	f.send(t, "u1", "Still stored")

	count, err := f.uc.UnreadCount(context.Background(), "u1")
	require.NoError(t, err)
	assert.EqualValues(t, 1, count.UnreadCount)
}

func TestSendRequiresTitle(t *testing.T) {
	f := newNotificationFixture()
	_, err := f.uc.Send(context.Background(), usecase.SendNotificationInput{UserID: "u1"})
	assert.True(t, errors.Is(err, errors.CodeValidation))
}

func TestNotificationReadState(t *testing.T) {
	f := newNotificationFixture()
	ctx := context.Background()

	a := f.send(t, "u1", "a")
	f.send(t, "u1", "b")
	other := f.send(t, "u2", "c")

	_, err := f.uc.MarkRead(ctx, "u1", other.ID)
	assert.True(t, errors.Is(err, errors.CodeForbidden))

	_, err = f.uc.MarkRead(ctx, "u1", "missing")
	assert.True(t, errors.IsNotFound(err))

	read, err := f.uc.MarkRead(ctx, "u1", a.ID)
	require.NoError(t, err)
	assert.True(t, read.IsRead)
	firstReadAt := *read.ReadAt

	f.clock.Advance(time.Hour)
	again, err := f.uc.MarkRead(ctx, "u1", a.ID)
	require.NoError(t, err)
	assert.Equal(t, firstReadAt, *again.ReadAt)

	count, err := f.uc.UnreadCount(ctx, "u1")
	require.NoError(t, err)
	assert.EqualValues(t, 1, count.UnreadCount)

	changed, err := f.uc.MarkAllRead(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, changed)

	count, err = f.uc.UnreadCount(ctx, "u1")
	require.NoError(t, err)
	assert.EqualValues(t, 0, count.UnreadCount)

	// scoped to the caller
	count, err = f.uc.UnreadCount(ctx, "u2")
	require.NoError(t, err)
	assert.EqualValues(t, 1, count.UnreadCount)
}

func TestListNotifications(t *testing.T) {
	f := newNotificationFixture()
	ctx := context.Background()

	a := f.send(t, "u1", "older")
	f.send(t, "u1", "newer")
	_, err := f.uc.MarkRead(ctx, "u1", a.ID)
	require.NoError(t, err)

	all, total, err := f.uc.List(ctx, "u1", usecase.ListNotificationsInput{Pagination: utils.NewPaginationParams(1, 10)})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Equal(t, "newer", all[0].Title)

	unread, total, err := f.uc.List(ctx, "u1", usecase.ListNotificationsInput{UnreadOnly: true, Pagination: utils.NewPaginationParams(1, 10)})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "newer", unread[0].Title)
}

func TestDeleteNotifications(t *testing.T) {
	f := newNotificationFixture()
	ctx := context.Background()

	a := f.send(t, "u1", "a")
	f.send(t, "u1", "b")
	theirs := f.send(t, "u2", "c")

	assert.True(t, errors.Is(f.uc.Delete(ctx, "u1", theirs.ID), errors.CodeForbidden))
	require.NoError(t, f.uc.Delete(ctx, "u1", a.ID))

	deleted, err := f.uc.DeleteAll(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	_, err = f.repo.GetByID(ctx, theirs.ID)
	assert.NoError(t, err)
}

func TestRegisterDevice(t *testing.T) {
	f := newNotificationFixture()
	ctx := context.Background()

	assert.True(t, errors.Is(f.uc.RegisterDevice(ctx, "u2", " "), errors.CodeValidation))
	require.NoError(t, f.uc.RegisterDevice(ctx, "u2", "device-b"))
	require.NoError(t, f.uc.RegisterDevice(ctx, "u2", "device-b"))

	user, err := f.users.GetByID(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, []string{"device-b"}, user.DeviceTokens)
}
