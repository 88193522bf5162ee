package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"masterhub/internal/domain/entity"
	"masterhub/internal/domain/repository"
	"masterhub/pkg/errors"
	"masterhub/pkg/logger"
)

const (
	defaultUpdateInterval = 30
	defaultHistoryLimit   = 500
	maxHistoryLimit       = 5000
)

type TrackingUseCase struct {
	trackingRepo repository.TrackingRepository
	userRepo     repository.UserRepository
	notifier     Notifier
	now          Clock
}

func NewTrackingUseCase(
	trackingRepo repository.TrackingRepository,
	userRepo repository.UserRepository,
	notifier Notifier,
) *TrackingUseCase {
	return &TrackingUseCase{
		trackingRepo: trackingRepo,
		userRepo:     userRepo,
		notifier:     notifier,
		now:          time.Now,
	}
}

func (uc *TrackingUseCase) SetClock(now Clock) {
	uc.now = now
}

type StartTrackingInput struct {
	ClientID              string
	BookingID             string
	ProjectID             string
	ShareWithClient       bool
	UpdateIntervalSeconds int
}

type RecordLocationInput struct {
	Latitude   float64
	Longitude  float64
	Accuracy   float64
	Speed      float64
	Heading    float64
	RecordedAt time.Time
}

type TrackingResponse struct {
	*entity.TrackingSession
	LatestLocation *entity.LocationSample `json:"latest_location,omitempty"`
	IsLive         bool                   `json:"is_live"`
}

func (uc *TrackingUseCase) Start(ctx context.Context, masterID string, input StartTrackingInput) (*entity.TrackingSession, error) {
	master, err := uc.userRepo.GetByID(ctx, masterID)
	if err != nil {
		logger.Error("StartTracking Error: %v", err)
		return nil, err
	}
	if master.Role != entity.RoleMaster {
		return nil, errors.Forbidden("Only masters can start tracking", nil)
	}

	if input.BookingID != "" {
		_, err := uc.trackingRepo.FindActiveByBooking(ctx, masterID, input.BookingID)
		if err == nil {
			return nil, errors.Conflict("An active tracking session already exists for this booking")
		}
		if !errors.IsNotFound(err) {
			logger.Error("StartTracking Error: %v", err)
			return nil, err
		}
	}

	interval := input.UpdateIntervalSeconds
	if interval <= 0 {
		interval = defaultUpdateInterval
	}

	now := uc.now()
	session := &entity.TrackingSession{
		ID:        uuid.New().String(),
		MasterID:  masterID,
		ClientID:  input.ClientID,
		BookingID: input.BookingID,
		ProjectID: input.ProjectID,
		Status:    entity.TrackingActive,
		Settings: entity.TrackingSettings{
			ShareWithClient:       input.ShareWithClient,
			UpdateIntervalSeconds: interval,
		},
		StartedAt: now,
		UpdatedAt: now,
	}

	if err := uc.trackingRepo.Create(ctx, session); err != nil {
		logger.Error("StartTracking Error: %v", err)
		return nil, err
	}

	if session.Settings.ShareWithClient && session.ClientID != "" {
		notify(ctx, uc.notifier, "StartTracking", SendNotificationInput{
			UserID:            session.ClientID,
			Type:              entity.NotificationTrackingStarted,
			Title:             "Your master is on the way",
			Message:           master.Name + " started sharing their location",
			Priority:          entity.PriorityHigh,
			RelatedObjectType: "tracking_session",
			RelatedObjectID:   session.ID,
		})
	}

	return session, nil
}

// loadOwned returns the session if masterID owns it.
func (uc *TrackingUseCase) loadOwned(ctx context.Context, masterID, trackingID string) (*entity.TrackingSession, error) {
	session, err := uc.trackingRepo.GetByID(ctx, trackingID)
	if err != nil {
		return nil, err
	}
	if session.MasterID != masterID {
		return nil, errors.Forbidden("Only the session owner can modify this tracking session", nil)
	}
	return session, nil
}

func (uc *TrackingUseCase) RecordLocation(ctx context.Context, masterID, trackingID string, input RecordLocationInput) (*entity.LocationSample, error) {
	if input.Latitude < -90 || input.Latitude > 90 {
		return nil, errors.Validation("latitude must be between -90 and 90")
	}
	if input.Longitude < -180 || input.Longitude > 180 {
		return nil, errors.Validation("longitude must be between -180 and 180")
	}

	session, err := uc.loadOwned(ctx, masterID, trackingID)
	if err != nil {
		logger.Error("RecordLocation Error: %v", err)
		return nil, err
	}
	if session.Status != entity.TrackingActive {
		return nil, errors.Validation("Tracking session is not active")
	}

	recordedAt := input.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = uc.now()
	}

	sample := &entity.LocationSample{
		ID:         uuid.New().String(),
		TrackingID: session.ID,
		Latitude:   input.Latitude,
		Longitude:  input.Longitude,
		Accuracy:   input.Accuracy,
		Speed:      input.Speed,
		Heading:    input.Heading,
		RecordedAt: recordedAt,
	}
	if err := uc.trackingRepo.AddLocation(ctx, sample); err != nil {
		logger.Error("RecordLocation Error: %v", err)
		return nil, err
	}
	return sample, nil
}

func (uc *TrackingUseCase) Pause(ctx context.Context, masterID, trackingID string) (*entity.TrackingSession, error) {
	return uc.transition(ctx, "PauseTracking", masterID, trackingID, entity.TrackingPaused)
}

func (uc *TrackingUseCase) Resume(ctx context.Context, masterID, trackingID string) (*entity.TrackingSession, error) {
	return uc.transition(ctx, "ResumeTracking", masterID, trackingID, entity.TrackingActive)
}

func (uc *TrackingUseCase) Stop(ctx context.Context, masterID, trackingID string) (*entity.TrackingSession, error) {
	return uc.transition(ctx, "StopTracking", masterID, trackingID, entity.TrackingCompleted)
}

// allowedTransitions lists the statuses each status may move to.
var allowedTransitions = map[entity.TrackingStatus][]entity.TrackingStatus{
	entity.TrackingActive: {entity.TrackingPaused, entity.TrackingCompleted, entity.TrackingCancelled},
	entity.TrackingPaused: {entity.TrackingActive, entity.TrackingCompleted, entity.TrackingCancelled},
}

func canTransition(from, to entity.TrackingStatus) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func (uc *TrackingUseCase) transition(ctx context.Context, op, masterID, trackingID string, to entity.TrackingStatus) (*entity.TrackingSession, error) {
	session, err := uc.loadOwned(ctx, masterID, trackingID)
	if err != nil {
		logger.Error("%s Error: %v", op, err)
		return nil, err
	}
	if !canTransition(session.Status, to) {
		return nil, errors.Validation("Cannot change tracking status from " + string(session.Status) + " to " + string(to))
	}

	now := uc.now()
	session.Status = to
	session.UpdatedAt = now
	if to.Terminal() {
		session.EndedAt = &now
	}

	if err := uc.trackingRepo.Update(ctx, session); err != nil {
		logger.Error("%s Error: %v", op, err)
		return nil, err
	}
	return session, nil
}

func (uc *TrackingUseCase) loadViewable(ctx context.Context, userID, trackingID string) (*entity.TrackingSession, error) {
	session, err := uc.trackingRepo.GetByID(ctx, trackingID)
	if err != nil {
		return nil, err
	}
	if !session.CanView(userID) {
		return nil, errors.Forbidden("No permission to view this tracking session", nil)
	}
	return session, nil
}

func (uc *TrackingUseCase) Get(ctx context.Context, userID, trackingID string) (*TrackingResponse, error) {
	session, err := uc.loadViewable(ctx, userID, trackingID)
	if err != nil {
		logger.Error("GetTracking Error: %v", err)
		return nil, err
	}

	resp := &TrackingResponse{TrackingSession: session, IsLive: session.IsLive()}
	latest, err := uc.trackingRepo.LatestLocation(ctx, session.ID)
	switch {
	case err == nil:
		resp.LatestLocation = latest
	case !errors.IsNotFound(err):
		logger.Error("GetTracking Error: %v", err)
		return nil, err
	}
	return resp, nil
}

// History returns up to limit samples, oldest first.
func (uc *TrackingUseCase) History(ctx context.Context, userID, trackingID string, limit int) ([]*entity.LocationSample, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	session, err := uc.loadViewable(ctx, userID, trackingID)
	if err != nil {
		logger.Error("TrackingHistory Error: %v", err)
		return nil, err
	}

	samples, err := uc.trackingRepo.ListLocations(ctx, session.ID, limit)
	if err != nil {
		logger.Error("TrackingHistory Error: %v", err)
		return nil, err
	}
	return samples, nil
}
