package usecase

import (
	"bytes"
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"masterhub/internal/domain/entity"
	"masterhub/internal/domain/repository"
	"masterhub/internal/domain/service"
	"masterhub/pkg/errors"
	"masterhub/pkg/logger"
)

const MaxAvatarBytes = 5 << 20

type ProfileUseCase struct {
	userRepo     repository.UserRepository
	chatRepo     repository.ChatRepository
	files        service.FileUploadService
	roleAssigner RoleAssigner
	now          Clock
}

// NewProfileUseCase wires the usecase. roleAssigner may be nil when roles
// are not mirrored to the identity provider.
func NewProfileUseCase(
	userRepo repository.UserRepository,
	chatRepo repository.ChatRepository,
	files service.FileUploadService,
	roleAssigner RoleAssigner,
) *ProfileUseCase {
	return &ProfileUseCase{
		userRepo:     userRepo,
		chatRepo:     chatRepo,
		files:        files,
		roleAssigner: roleAssigner,
		now:          time.Now,
	}
}

func (uc *ProfileUseCase) SetClock(now Clock) {
	uc.now = now
}

type CreateProfileInput struct {
	Role       string
	Name       string
	Phone      string
	City       string
	Bio        string
	Categories []string
}

type UpdateProfileInput struct {
	Name       string
	Phone      string
	City       string
	Bio        string
	Categories []string
}

type PresignedUpload struct {
	UploadURL string `json:"upload_url"`
	FileURL   string `json:"file_url"`
	Key       string `json:"key"`
}

// Create registers the profile of a freshly authenticated user.
func (uc *ProfileUseCase) Create(ctx context.Context, userID string, input CreateProfileInput) (*entity.User, error) {
	if input.Role != entity.RoleClient && input.Role != entity.RoleMaster {
		return nil, errors.Validation("role must be one of: client master")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, errors.Validation("name is required")
	}

	now := uc.now()
	user := &entity.User{
		ID:         userID,
		Role:       input.Role,
		Name:       strings.TrimSpace(input.Name),
		Phone:      input.Phone,
		City:       strings.TrimSpace(input.City),
		Bio:        input.Bio,
		Categories: input.Categories,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		logger.Error("CreateProfile Error: %v", err)
		return nil, err
	}

	if uc.roleAssigner != nil {
		if err := uc.roleAssigner.SetRole(ctx, userID, user.Role); err != nil {
			logger.Warn("CreateProfile: failed to set role claim for %s: %v", userID, err)
		}
	}
	return user, nil
}

func (uc *ProfileUseCase) Get(ctx context.Context, userID string) (*entity.User, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		logger.Error("GetProfile Error: %v", err)
		return nil, err
	}
	return user, nil
}

// Update changes only the fields that are set.
func (uc *ProfileUseCase) Update(ctx context.Context, userID string, input UpdateProfileInput) (*entity.User, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		logger.Error("UpdateProfile Error: %v", err)
		return nil, err
	}

	if input.Name != "" {
		user.Name = strings.TrimSpace(input.Name)
	}
	if input.Phone != "" {
		user.Phone = input.Phone
	}
	if input.City != "" {
		user.City = strings.TrimSpace(input.City)
	}
	if input.Bio != "" {
		user.Bio = input.Bio
	}
	if input.Categories != nil {
		user.Categories = input.Categories
	}
	user.UpdatedAt = uc.now()

	if err := uc.userRepo.Update(ctx, user); err != nil {
		logger.Error("UpdateProfile Error: %v", err)
		return nil, err
	}
	return user, nil
}

// UploadAvatar stores a new avatar and removes the previous one. Failing to
// remove the old object never fails the upload.
func (uc *ProfileUseCase) UploadAvatar(ctx context.Context, userID string, data []byte, contentType string) (*entity.User, error) {
	ext, ok := service.ExtensionFor(contentType)
	if !ok || contentType == "application/pdf" {
		return nil, errors.Validation("avatar must be a JPEG, PNG or WebP image")
	}
	if len(data) == 0 {
		return nil, errors.Validation("file is empty")
	}
	if len(data) > MaxAvatarBytes {
		return nil, errors.Validation("file must be at most 5MB")
	}

	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		logger.Error("UploadAvatar Error: %v", err)
		return nil, err
	}

	key := "avatars/" + userID + "/" + uuid.New().String() + ext
	url, err := uc.files.UploadFile(ctx, key, bytes.NewReader(data), contentType)
	if err != nil {
		logger.Error("UploadAvatar Error: %v", err)
		return nil, errors.Internal("Failed to upload avatar", err)
	}

	previous := user.AvatarURL
	user.AvatarURL = url
	user.UpdatedAt = uc.now()
	if err := uc.userRepo.Update(ctx, user); err != nil {
		logger.Error("UploadAvatar Error: %v", err)
		return nil, err
	}

	if previous != "" && previous != url {
		if err := uc.files.DeleteFile(ctx, previous); err != nil {
			logger.Warn("UploadAvatar: failed to delete previous avatar %s: %v", previous, err)
		}
	}
	return user, nil
}

// PresignAttachmentUpload returns a signed PUT URL for a chat attachment.
func (uc *ProfileUseCase) PresignAttachmentUpload(ctx context.Context, userID, roomID, contentType string) (*PresignedUpload, error) {
	ext, ok := service.ExtensionFor(contentType)
	if !ok {
		return nil, errors.Validation("content_type must be one of: image/jpeg image/png image/webp application/pdf")
	}

	room, err := uc.chatRepo.GetRoom(ctx, roomID)
	if err != nil {
		logger.Error("PresignAttachmentUpload Error: %v", err)
		return nil, err
	}
	if !room.HasParticipant(userID) {
		return nil, errors.Forbidden("User is not a participant in this chat", nil)
	}

	key := "chat/" + room.ID + "/" + uuid.New().String() + ext
	uploadURL, err := uc.files.GenerateSignedUploadURL(ctx, key, contentType)
	if err != nil {
		logger.Error("PresignAttachmentUpload Error: %v", err)
		return nil, errors.Internal("Failed to create upload URL", err)
	}

	return &PresignedUpload{
		UploadURL: uploadURL,
		FileURL:   publicURL(uploadURL),
		Key:       key,
	}, nil
}

// publicURL strips the signature query from a presigned URL.
func publicURL(signed string) string {
	if i := strings.IndexByte(signed, '?'); i >= 0 {
		return signed[:i]
	}
	return signed
}
