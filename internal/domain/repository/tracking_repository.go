package repository

import (
	"context"

	"masterhub/internal/domain/entity"
)

type TrackingRepository interface {
	Create(ctx context.Context, session *entity.TrackingSession) error
	GetByID(ctx context.Context, id string) (*entity.TrackingSession, error)
	Update(ctx context.Context, session *entity.TrackingSession) error
	FindActiveByBooking(ctx context.Context, masterID, bookingID string) (*entity.TrackingSession, error)

	AddLocation(ctx context.Context, sample *entity.LocationSample) error
	LatestLocation(ctx context.Context, trackingID string) (*entity.LocationSample, error)
	// ListLocations returns samples oldest first.
	ListLocations(ctx context.Context, trackingID string, limit int) ([]*entity.LocationSample, error)
}

type ShareLinkRepository interface {
	Create(ctx context.Context, link *entity.ShareLink) error
	GetByCode(ctx context.Context, code string) (*entity.ShareLink, error)
	ListByTracking(ctx context.Context, trackingID string) ([]*entity.ShareLink, error)
	Delete(ctx context.Context, code string) error
}
