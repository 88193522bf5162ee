package usecase_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"masterhub/internal/domain/entity"
	"masterhub/internal/testutil"
	"masterhub/internal/usecase"
	"masterhub/pkg/errors"
)

type profileFixture struct {
	uc    *usecase.ProfileUseCase
	users *testutil.UserRepository
	chats *testutil.ChatRepository
	store *testutil.ObjectStore
	roles *testutil.RoleAssigner
}

func newProfileFixture(t *testing.T) *profileFixture {
	f := &profileFixture{
		users: testutil.NewUserRepository(&entity.User{ID: "master-1", Role: entity.RoleMaster, Name: "Bakyt"}),
		chats: testutil.NewChatRepository(),
		store: testutil.NewObjectStore(),
		roles: &testutil.RoleAssigner{},
	}
	require.NoError(t, f.chats.CreateRoom(context.Background(), &entity.ChatRoom{
		ID:             "room-1",
		ParticipantIDs: []string{"master-1", "client-1"},
	}, nil))

	f.uc = usecase.NewProfileUseCase(f.users, f.chats, f.store, f.roles)
	f.uc.SetClock(testutil.NewClock(t0).Now)
	return f
}

func TestCreateProfile(t *testing.T) {
	f := newProfileFixture(t)
	ctx := context.Background()

	_, err := f.uc.Create(ctx, "u-new", usecase.CreateProfileInput{Role: "admin", Name: "X"})
	assert.True(t, errors.Is(err, errors.CodeValidation))

	user, err := f.uc.Create(ctx, "u-new", usecase.CreateProfileInput{Role: entity.RoleClient, Name: " Aida ", City: "Osh"})
	require.NoError(t, err)
	assert.Equal(t, "Aida", user.Name)
	assert.Equal(t, entity.RoleClient, f.roles.Roles["u-new"])

	_, err = f.uc.Create(ctx, "u-new", usecase.CreateProfileInput{Role: entity.RoleClient, Name: "Aida"})
	assert.True(t, errors.Is(err, errors.CodeConflict))
}

func TestUpdateProfileKeepsUnsetFields(t *testing.T) {
	f := newProfileFixture(t)

	user, err := f.uc.Update(context.Background(), "master-1", usecase.UpdateProfileInput{City: "Karakol"})
	require.NoError(t, err)
	assert.Equal(t, "Karakol", user.City)
	assert.Equal(t, "Bakyt", user.Name)

	_, err = f.uc.Update(context.Background(), "ghost", usecase.UpdateProfileInput{City: "Osh"})
	assert.True(t, errors.IsNotFound(err))
}

func TestUploadAvatarReplacesPrevious(t *testing.T) {
	f := newProfileFixture(t)
	ctx := context.Background()

	first, err := f.uc.UploadAvatar(ctx, "master-1", []byte("png-1"), "image/png")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(first.AvatarURL, ".png"))
	assert.Contains(t, first.AvatarURL, "avatars/master-1/")

	// deletion of the old avatar failing does not fail the upload
	f.store.DeleteErr = testutil.ErrUnavailable
	second, err := f.uc.UploadAvatar(ctx, "master-1", []byte("jpg-2"), "image/jpeg")
	require.NoError(t, err)
	assert.NotEqual(t, first.AvatarURL, second.AvatarURL)
	assert.Equal(t, []string{first.AvatarURL}, f.store.Deleted)

	stored, err := f.users.GetByID(ctx, "master-1")
	require.NoError(t, err)
	assert.Equal(t, second.AvatarURL, stored.AvatarURL)
}

func TestUploadAvatarValidation(t *testing.T) {
	f := newProfileFixture(t)
	ctx := context.Background()

	_, err := f.uc.UploadAvatar(ctx, "master-1", []byte("gif"), "image/gif")
	assert.True(t, errors.Is(err, errors.CodeValidation))

	_, err = f.uc.UploadAvatar(ctx, "master-1", []byte("%PDF"), "application/pdf")
	assert.True(t, errors.Is(err, errors.CodeValidation))

	_, err = f.uc.UploadAvatar(ctx, "master-1", make([]byte, usecase.MaxAvatarBytes+1), "image/png")
	assert.True(t, errors.Is(err, errors.CodeValidation))
}

func TestPresignAttachmentUpload(t *testing.T) {
	f := newProfileFixture(t)
	ctx := context.Background()

	upload, err := f.uc.PresignAttachmentUpload(ctx, "client-1", "room-1", "application/pdf")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(upload.Key, "chat/room-1/"))
	assert.True(t, strings.HasSuffix(upload.Key, ".pdf"))
	assert.NotContains(t, upload.FileURL, "?")
	assert.Contains(t, upload.UploadURL, "signature")

	_, err = f.uc.PresignAttachmentUpload(ctx, "stranger", "room-1", "image/png")
	assert.True(t, errors.Is(err, errors.CodeForbidden))

	_, err = f.uc.PresignAttachmentUpload(ctx, "client-1", "room-1", "text/html")
	assert.True(t, errors.Is(err, errors.CodeValidation))

	_, err = f.uc.PresignAttachmentUpload(ctx, "client-1", "missing", "image/png")
	assert.True(t, errors.IsNotFound(err))
}
