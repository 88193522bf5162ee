package usecase

import (
	"context"
	"crypto/rand"
	"strings"
	"time"

	"masterhub/internal/domain/entity"
	"masterhub/internal/domain/repository"
	"masterhub/internal/infrastructure/metrics"
	"masterhub/pkg/errors"
	"masterhub/pkg/logger"
)

const (
	shareCodeLength        = 8
	shareCodeAlphabet      = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	defaultExpirationHours = 24
	maxExpirationHours     = 168
	shareCodeAttempts      = 3
)

type ShareLinkUseCase struct {
	shareRepo    repository.ShareLinkRepository
	trackingRepo repository.TrackingRepository
	notifier     Notifier
	rateLimiter  RateLimiter
	baseURL      string
	now          Clock
}

func NewShareLinkUseCase(
	shareRepo repository.ShareLinkRepository,
	trackingRepo repository.TrackingRepository,
	notifier Notifier,
	rateLimiter RateLimiter,
	baseURL string,
) *ShareLinkUseCase {
	return &ShareLinkUseCase{
		shareRepo:    shareRepo,
		trackingRepo: trackingRepo,
		notifier:     notifier,
		rateLimiter:  rateLimiter,
		baseURL:      strings.TrimRight(baseURL, "/"),
		now:          time.Now,
	}
}

func (uc *ShareLinkUseCase) SetClock(now Clock) {
	uc.now = now
}

type CreateShareLinkInput struct {
	TrackingID      string
	ShareWith       []string
	ExpirationHours int
	AllowAnonymous  bool
}

type ShareLinkResponse struct {
	ShareCode      string    `json:"share_code"`
	ShareURL       string    `json:"share_url"`
	ExpiresAt      time.Time `json:"expires_at"`
	ShareWith      []string  `json:"share_with"`
	AllowAnonymous bool      `json:"allow_anonymous"`
}

type SharePermissions struct {
	CanViewHistory  bool `json:"can_view_history"`
	CanViewRealTime bool `json:"can_view_real_time"`
	CanViewStats    bool `json:"can_view_stats"`
}

type SharedTrackingResponse struct {
	Tracking       *entity.TrackingSession `json:"tracking"`
	LatestLocation *entity.LocationSample  `json:"latest_location,omitempty"`
	IsLive         bool                    `json:"is_live"`
	Permissions    SharePermissions        `json:"permissions"`
	ExpiresAt      time.Time               `json:"expires_at"`
}

// Create issues a share link for a session the requester owns.
func (uc *ShareLinkUseCase) Create(ctx context.Context, requesterID string, input CreateShareLinkInput) (*ShareLinkResponse, error) {
	if allowed, wait := uc.rateLimiter.Allow(requesterID, "create_share_link"); !allowed {
		logger.Warn("CreateShareLink Rate Limited: user %s must wait %v", requesterID, wait)
		return nil, errors.TooManyRequests("Rate limit exceeded. Please wait before creating another share link")
	}

	hours := input.ExpirationHours
	if hours == 0 {
		hours = defaultExpirationHours
	}
	if hours < 1 || hours > maxExpirationHours {
		return nil, errors.Validation("expiration_hours must be between 1 and 168")
	}

	session, err := uc.trackingRepo.GetByID(ctx, input.TrackingID)
	if err != nil {
		logger.Error("CreateShareLink Error: %v", err)
		return nil, err
	}
	if session.MasterID != requesterID {
		return nil, errors.Forbidden("Only the tracking session owner can share it", nil)
	}

	now := uc.now()
	expiresAt := now.Add(time.Duration(hours) * time.Hour)
	link := &entity.ShareLink{
		TrackingID:     session.ID,
		MasterID:       session.MasterID,
		ShareWith:      dedupe(input.ShareWith, requesterID),
		AllowAnonymous: input.AllowAnonymous,
		ExpiresAt:      expiresAt,
		CreatedAt:      now,
		DeleteAt:       expiresAt,
	}

	if err := uc.persistWithFreshCode(ctx, link); err != nil {
		logger.Error("CreateShareLink Error: %v", err)
		return nil, err
	}

	shareURL := uc.ShareURL(link.ShareCode)
	for _, userID := range link.ShareWith {
		notify(ctx, uc.notifier, "CreateShareLink", SendNotificationInput{
			UserID:            userID,
			Type:              entity.NotificationTrackingShared,
			Title:             "Location shared with you",
			Message:           "A master shared a live tracking session with you",
			Priority:          entity.PriorityNormal,
			RelatedObjectType: "tracking_session",
			RelatedObjectID:   session.ID,
			Data: map[string]interface{}{
				"share_code": link.ShareCode,
				"share_url":  shareURL,
			},
		})
	}

	return &ShareLinkResponse{
		ShareCode:      link.ShareCode,
		ShareURL:       shareURL,
		ExpiresAt:      link.ExpiresAt,
		ShareWith:      link.ShareWith,
		AllowAnonymous: link.AllowAnonymous,
	}, nil
}

// persistWithFreshCode retries on the unlikely collision of two codes.
func (uc *ShareLinkUseCase) persistWithFreshCode(ctx context.Context, link *entity.ShareLink) error {
	var err error
	for attempt := 0; attempt < shareCodeAttempts; attempt++ {
		link.ShareCode, err = GenerateShareCode()
		if err != nil {
			return errors.Internal("Failed to generate share code", err)
		}

		err = uc.shareRepo.Create(ctx, link)
		if err == nil || !errors.Is(err, errors.CodeConflict) {
			return err
		}
	}
	return errors.Internal("Failed to allocate a unique share code", err)
}

func (uc *ShareLinkUseCase) ShareURL(code string) string {
	return uc.baseURL + "/tracking/share/" + code
}

// Resolve checks, in order: the link exists for this session, it has not
// expired, and the requester is permitted. Only then is the session read.
func (uc *ShareLinkUseCase) Resolve(ctx context.Context, requesterID, shareCode, trackingID string) (*SharedTrackingResponse, error) {
	code := NormalizeShareCode(shareCode)

	link, err := uc.shareRepo.GetByCode(ctx, code)
	if err != nil {
		metrics.ShareLinkResolutions.WithLabelValues("not_found").Inc()
		logger.Error("ResolveShareLink Error: %v", err)
		return nil, err
	}
	if trackingID != "" && link.TrackingID != trackingID {
		metrics.ShareLinkResolutions.WithLabelValues("not_found").Inc()
		return nil, errors.NotFound("Share link", nil)
	}

	if link.Expired(uc.now()) {
		metrics.ShareLinkResolutions.WithLabelValues("expired").Inc()
		return nil, errors.Forbidden("Share link has expired", nil)
	}

	if !link.Permits(requesterID) {
		metrics.ShareLinkResolutions.WithLabelValues("denied").Inc()
		return nil, errors.Forbidden("No permission to view this tracking session", nil)
	}

	session, err := uc.trackingRepo.GetByID(ctx, link.TrackingID)
	if err != nil {
		metrics.ShareLinkResolutions.WithLabelValues("session_missing").Inc()
		logger.Error("ResolveShareLink Error: %v", err)
		return nil, err
	}

	resp := &SharedTrackingResponse{
		Tracking:  session,
		IsLive:    session.IsLive(),
		ExpiresAt: link.ExpiresAt,
		Permissions: SharePermissions{
			CanViewHistory:  true,
			CanViewRealTime: session.IsLive(),
			CanViewStats:    true,
		},
	}

	latest, err := uc.trackingRepo.LatestLocation(ctx, session.ID)
	switch {
	case err == nil:
		resp.LatestLocation = latest
	case !errors.IsNotFound(err):
		logger.Error("ResolveShareLink Error: %v", err)
		return nil, err
	}

	metrics.ShareLinkResolutions.WithLabelValues("granted").Inc()
	return resp, nil
}

func (uc *ShareLinkUseCase) ListForSession(ctx context.Context, masterID, trackingID string) ([]*entity.ShareLink, error) {
	session, err := uc.trackingRepo.GetByID(ctx, trackingID)
	if err != nil {
		logger.Error("ListShareLinks Error: %v", err)
		return nil, err
	}
	if session.MasterID != masterID {
		return nil, errors.Forbidden("Only the tracking session owner can list its share links", nil)
	}

	links, err := uc.shareRepo.ListByTracking(ctx, session.ID)
	if err != nil {
		logger.Error("ListShareLinks Error: %v", err)
		return nil, err
	}
	return links, nil
}

func (uc *ShareLinkUseCase) Revoke(ctx context.Context, masterID, shareCode string) error {
	code := NormalizeShareCode(shareCode)

	link, err := uc.shareRepo.GetByCode(ctx, code)
	if err != nil {
		logger.Error("RevokeShareLink Error: %v", err)
		return err
	}
	if link.MasterID != masterID {
		return errors.Forbidden("Only the tracking session owner can revoke this share link", nil)
	}

	if err := uc.shareRepo.Delete(ctx, link.ShareCode); err != nil {
		logger.Error("RevokeShareLink Error: %v", err)
		return err
	}
	return nil
}

// GenerateShareCode returns 8 uppercase alphanumerics from crypto/rand.
func GenerateShareCode() (string, error) {
	const limit = 256 - 256%len(shareCodeAlphabet)

	code := make([]byte, 0, shareCodeLength)
	buf := make([]byte, shareCodeLength*2)
	for len(code) < shareCodeLength {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			// skip bytes that would bias the modulo
			if int(b) >= limit {
				continue
			}
			code = append(code, shareCodeAlphabet[int(b)%len(shareCodeAlphabet)])
			if len(code) == shareCodeLength {
				break
			}
		}
	}
	return string(code), nil
}

func NormalizeShareCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// dedupe drops blanks, repeats and the owner from a user list.
func dedupe(ids []string, owner string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || id == owner || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
