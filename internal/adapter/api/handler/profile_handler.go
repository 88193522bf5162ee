package handler

import (
	"io"

	"github.com/labstack/echo/v4"

	"masterhub/internal/usecase"
	"masterhub/pkg/errors"
	"masterhub/pkg/logger"
	"masterhub/pkg/response"
)

type ProfileHandler struct {
	profileUseCase *usecase.ProfileUseCase
}

func NewProfileHandler(profileUseCase *usecase.ProfileUseCase) *ProfileHandler {
	return &ProfileHandler{
		profileUseCase: profileUseCase,
	}
}

type createProfileRequest struct {
	Role       string   `json:"role" validate:"required,oneof=client master"`
	Name       string   `json:"name" validate:"required,max=120"`
	Phone      string   `json:"phone" validate:"max=32"`
	City       string   `json:"city" validate:"max=80"`
	Bio        string   `json:"bio" validate:"max=1000"`
	Categories []string `json:"categories" validate:"max=20,dive,required"`
}

type updateProfileRequest struct {
	Name       string   `json:"name" validate:"max=120"`
	Phone      string   `json:"phone" validate:"max=32"`
	City       string   `json:"city" validate:"max=80"`
	Bio        string   `json:"bio" validate:"max=1000"`
	Categories []string `json:"categories" validate:"max=20,dive,required"`
}

type presignRequest struct {
	ContentType string `json:"content_type" validate:"required"`
}

func (h *ProfileHandler) CreateProfile(c echo.Context) error {
	var req createProfileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return response.Error(c, err)
	}

	user, err := h.profileUseCase.Create(c.Request().Context(), currentUser(c), usecase.CreateProfileInput{
		Role:       req.Role,
		Name:       req.Name,
		Phone:      req.Phone,
		City:       req.City,
		Bio:        req.Bio,
		Categories: req.Categories,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, user)
}

func (h *ProfileHandler) GetProfile(c echo.Context) error {
	user, err := h.profileUseCase.Get(c.Request().Context(), currentUser(c))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, user)
}

func (h *ProfileHandler) GetUser(c echo.Context) error {
	user, err := h.profileUseCase.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, user)
}

func (h *ProfileHandler) UpdateProfile(c echo.Context) error {
	var req updateProfileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return response.Error(c, err)
	}

	user, err := h.profileUseCase.Update(c.Request().Context(), currentUser(c), usecase.UpdateProfileInput{
		Name:       req.Name,
		Phone:      req.Phone,
		City:       req.City,
		Bio:        req.Bio,
		Categories: req.Categories,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, user)
}

// UploadAvatar accepts a multipart "file" field.
func (h *ProfileHandler) UploadAvatar(c echo.Context) error {
	file, err := c.FormFile("file")
	if err != nil {
		return response.Error(c, errors.BadRequest("Missing or invalid file", err))
	}
	if file.Size > usecase.MaxAvatarBytes {
		return response.Error(c, errors.Validation("file must be at most 5MB"))
	}

	src, err := file.Open()
	if err != nil {
		logger.Error("UploadAvatar: error opening file: %v", err)
		return response.Error(c, errors.Internal("Unable to read file", err))
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, usecase.MaxAvatarBytes+1))
	if err != nil {
		return response.Error(c, errors.Internal("Unable to read file", err))
	}

	user, err := h.profileUseCase.UploadAvatar(c.Request().Context(), currentUser(c), data, file.Header.Get("Content-Type"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, user)
}

// PresignAttachment issues a signed upload URL for a file sent in a chat room.
func (h *ProfileHandler) PresignAttachment(c echo.Context) error {
	var req presignRequest
	if err := bindAndValidate(c, &req); err != nil {
		return response.Error(c, err)
	}

	upload, err := h.profileUseCase.PresignAttachmentUpload(c.Request().Context(), currentUser(c), c.Param("id"), req.ContentType)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, upload)
}
