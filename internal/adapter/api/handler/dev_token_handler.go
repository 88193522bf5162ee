package handler

import (
	"time"

	"github.com/labstack/echo/v4"

	"masterhub/internal/domain/entity"
	"masterhub/internal/domain/repository"
	"masterhub/internal/infrastructure/auth"
	"masterhub/pkg/errors"
	"masterhub/pkg/response"
)

const devTokenTTL = 30 * 24 * time.Hour

type DevTokenHandler struct {
	issuer   *auth.JWTVerifier
	userRepo repository.UserRepository
}

func NewDevTokenHandler(issuer *auth.JWTVerifier, userRepo repository.UserRepository) *DevTokenHandler {
	return &DevTokenHandler{
		issuer:   issuer,
		userRepo: userRepo,
	}
}

// GenerateToken signs a long-lived development token. With ?uid= it is
// issued for that user, otherwise for the first stored user with the role.
func (h *DevTokenHandler) GenerateToken(c echo.Context) error {
	role := c.Param("role")
	if role != entity.RoleClient && role != entity.RoleMaster && role != entity.RoleAdmin {
		return response.Error(c, errors.Validation("role must be one of: client master admin"))
	}

	uid := c.QueryParam("uid")
	if uid == "" {
		users, err := h.userRepo.ListByRole(c.Request().Context(), role, 1)
		if err != nil {
			return response.Error(c, err)
		}
		if len(users) == 0 {
			return response.Error(c, errors.NotFound("User with role "+role, nil))
		}
		uid = users[0].ID
	}

	token, err := h.issuer.Issue(uid, role, devTokenTTL)
	if err != nil {
		return response.Error(c, errors.Internal("Failed to sign token", err))
	}

	return response.Success(c, map[string]interface{}{
		"token":      token,
		"uid":        uid,
		"role":       role,
		"expires_in": int(devTokenTTL.Seconds()),
	})
}
