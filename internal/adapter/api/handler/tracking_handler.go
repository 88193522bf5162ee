package handler

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"masterhub/internal/usecase"
	"masterhub/pkg/response"
)

type TrackingHandler struct {
	trackingUseCase  *usecase.TrackingUseCase
	shareLinkUseCase *usecase.ShareLinkUseCase
}

func NewTrackingHandler(trackingUseCase *usecase.TrackingUseCase, shareLinkUseCase *usecase.ShareLinkUseCase) *TrackingHandler {
	return &TrackingHandler{
		trackingUseCase:  trackingUseCase,
		shareLinkUseCase: shareLinkUseCase,
	}
}

type startTrackingRequest struct {
	ClientID              string `json:"client_id"`
	BookingID             string `json:"booking_id"`
	ProjectID             string `json:"project_id"`
	ShareWithClient       bool   `json:"share_with_client"`
	UpdateIntervalSeconds int    `json:"update_interval_seconds" validate:"omitempty,min=5,max=3600"`
}

type recordLocationRequest struct {
	Latitude   float64    `json:"latitude" validate:"latitude"`
	Longitude  float64    `json:"longitude" validate:"longitude"`
	Accuracy   float64    `json:"accuracy" validate:"min=0"`
	Speed      float64    `json:"speed" validate:"min=0"`
	Heading    float64    `json:"heading" validate:"min=0,max=360"`
	RecordedAt *time.Time `json:"recorded_at"`
}

type createShareLinkRequest struct {
	ShareWith       []string `json:"share_with"`
	ExpirationHours int      `json:"expiration_hours"`
	AllowAnonymous  bool     `json:"allow_anonymous"`
}

func (h *TrackingHandler) Start(c echo.Context) error {
	var req startTrackingRequest
	if err := bindAndValidate(c, &req); err != nil {
		return response.Error(c, err)
	}

	session, err := h.trackingUseCase.Start(c.Request().Context(), currentUser(c), usecase.StartTrackingInput{
		ClientID:              req.ClientID,
		BookingID:             req.BookingID,
		ProjectID:             req.ProjectID,
		ShareWithClient:       req.ShareWithClient,
		UpdateIntervalSeconds: req.UpdateIntervalSeconds,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, session)
}

func (h *TrackingHandler) Get(c echo.Context) error {
	result, err := h.trackingUseCase.Get(c.Request().Context(), currentUser(c), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, result)
}

func (h *TrackingHandler) RecordLocation(c echo.Context) error {
	var req recordLocationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return response.Error(c, err)
	}

	input := usecase.RecordLocationInput{
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Accuracy:  req.Accuracy,
		Speed:     req.Speed,
		Heading:   req.Heading,
	}
	if req.RecordedAt != nil {
		input.RecordedAt = *req.RecordedAt
	}

	sample, err := h.trackingUseCase.RecordLocation(c.Request().Context(), currentUser(c), c.Param("id"), input)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, sample)
}

func (h *TrackingHandler) History(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	samples, err := h.trackingUseCase.History(c.Request().Context(), currentUser(c), c.Param("id"), limit)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, samples)
}

func (h *TrackingHandler) Pause(c echo.Context) error {
	session, err := h.trackingUseCase.Pause(c.Request().Context(), currentUser(c), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, session)
}

func (h *TrackingHandler) Resume(c echo.Context) error {
	session, err := h.trackingUseCase.Resume(c.Request().Context(), currentUser(c), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, session)
}

func (h *TrackingHandler) Stop(c echo.Context) error {
	session, err := h.trackingUseCase.Stop(c.Request().Context(), currentUser(c), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, session)
}

func (h *TrackingHandler) CreateShareLink(c echo.Context) error {
	var req createShareLinkRequest
	if err := bindAndValidate(c, &req); err != nil {
		return response.Error(c, err)
	}

	link, err := h.shareLinkUseCase.Create(c.Request().Context(), currentUser(c), usecase.CreateShareLinkInput{
		TrackingID:      c.Param("id"),
		ShareWith:       req.ShareWith,
		ExpirationHours: req.ExpirationHours,
		AllowAnonymous:  req.AllowAnonymous,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, link)
}

func (h *TrackingHandler) ListShareLinks(c echo.Context) error {
	links, err := h.shareLinkUseCase.ListForSession(c.Request().Context(), currentUser(c), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, links)
}

func (h *TrackingHandler) RevokeShareLink(c echo.Context) error {
	if err := h.shareLinkUseCase.Revoke(c.Request().Context(), currentUser(c), c.Param("code")); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{"message": "Share link revoked"})
}

// ResolveShareLink runs behind optional auth; anonymous callers get through
// only when the link allows it.
func (h *TrackingHandler) ResolveShareLink(c echo.Context) error {
	result, err := h.shareLinkUseCase.Resolve(c.Request().Context(), currentUser(c), c.Param("code"), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, result)
}
