package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"masterhub/internal/domain/entity"
	"masterhub/internal/domain/repository"
	"masterhub/pkg/errors"
)

const (
	trackingCollection  = "trackingSessions"
	locationsCollection = "locations"
	shareLinkCollection = "shareLinks"
)

type firestoreTrackingRepository struct {
	client *firestore.Client
}

func NewFirestoreTrackingRepository(client *firestore.Client) repository.TrackingRepository {
	return &firestoreTrackingRepository{
		client: client,
	}
}

func (r *firestoreTrackingRepository) sessionRef(id string) *firestore.DocumentRef {
	return r.client.Collection(trackingCollection).Doc(id)
}

func (r *firestoreTrackingRepository) Create(ctx context.Context, session *entity.TrackingSession) error {
	if _, err := r.sessionRef(session.ID).Create(ctx, session); err != nil {
		return storeError(err, "Tracking session", "create")
	}
	return nil
}

func (r *firestoreTrackingRepository) GetByID(ctx context.Context, id string) (*entity.TrackingSession, error) {
	doc, err := r.sessionRef(id).Get(ctx)
	if err != nil {
		return nil, storeError(err, "Tracking session", "get")
	}

	var session entity.TrackingSession
	if err := doc.DataTo(&session); err != nil {
		return nil, errors.Internal("Failed to parse tracking session data", err)
	}
	return &session, nil
}

func (r *firestoreTrackingRepository) Update(ctx context.Context, session *entity.TrackingSession) error {
	updates := []firestore.Update{
		{Path: "status", Value: session.Status},
		{Path: "settings", Value: session.Settings},
		{Path: "updatedAt", Value: session.UpdatedAt},
	}
	if session.EndedAt != nil {
		updates = append(updates, firestore.Update{Path: "endedAt", Value: *session.EndedAt})
	}

	if _, err := r.sessionRef(session.ID).Update(ctx, updates); err != nil {
		return storeError(err, "Tracking session", "update")
	}
	return nil
}

func (r *firestoreTrackingRepository) FindActiveByBooking(ctx context.Context, masterID, bookingID string) (*entity.TrackingSession, error) {
	iter := r.client.Collection(trackingCollection).
		Where("masterId", "==", masterID).
		Where("bookingId", "==", bookingID).
		Where("status", "==", entity.TrackingActive).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, errors.NotFound("Tracking session", nil)
	}
	if err != nil {
		return nil, errors.Internal("Failed to query tracking sessions", err)
	}

	var session entity.TrackingSession
	if err := doc.DataTo(&session); err != nil {
		return nil, errors.Internal("Failed to parse tracking session data", err)
	}
	return &session, nil
}

func (r *firestoreTrackingRepository) AddLocation(ctx context.Context, sample *entity.LocationSample) error {
	ref := r.sessionRef(sample.TrackingID).Collection(locationsCollection).Doc(sample.ID)
	if _, err := ref.Set(ctx, sample); err != nil {
		return storeError(err, "Location", "store")
	}
	return nil
}

func (r *firestoreTrackingRepository) newest(ctx context.Context, trackingID string, limit int) ([]*entity.LocationSample, error) {
	query := r.sessionRef(trackingID).Collection(locationsCollection).
		OrderBy("recordedAt", firestore.Desc)
	if limit > 0 {
		query = query.Limit(limit)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	var samples []*entity.LocationSample
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Internal("Failed to iterate locations", err)
		}

		var sample entity.LocationSample
		if err := doc.DataTo(&sample); err != nil {
			return nil, errors.Internal("Failed to parse location data", err)
		}
		samples = append(samples, &sample)
	}
	return samples, nil
}

func (r *firestoreTrackingRepository) LatestLocation(ctx context.Context, trackingID string) (*entity.LocationSample, error) {
	samples, err := r.newest(ctx, trackingID, 1)
	if err != nil {
		return nil, err
	}
	if len(samples) == 0 {
		return nil, errors.NotFound("Location", nil)
	}
	return samples[0], nil
}

// ListLocations returns the newest limit samples in chronological order.
func (r *firestoreTrackingRepository) ListLocations(ctx context.Context, trackingID string, limit int) ([]*entity.LocationSample, error) {
	samples, err := r.newest(ctx, trackingID, limit)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(samples)-1; i < j; i, j = i+1, j-1 {
		samples[i], samples[j] = samples[j], samples[i]
	}
	return samples, nil
}

type firestoreShareLinkRepository struct {
	client *firestore.Client
}

// NewFirestoreShareLinkRepository stores links keyed by share code. The
// collection's TTL policy should target the deleteAt field.
func NewFirestoreShareLinkRepository(client *firestore.Client) repository.ShareLinkRepository {
	return &firestoreShareLinkRepository{
		client: client,
	}
}

func (r *firestoreShareLinkRepository) Create(ctx context.Context, link *entity.ShareLink) error {
	_, err := r.client.Collection(shareLinkCollection).Doc(link.ShareCode).Create(ctx, link)
	if err != nil {
		return storeError(err, "Share link", "create")
	}
	return nil
}

func (r *firestoreShareLinkRepository) GetByCode(ctx context.Context, code string) (*entity.ShareLink, error) {
	doc, err := r.client.Collection(shareLinkCollection).Doc(code).Get(ctx)
	if err != nil {
		return nil, storeError(err, "Share link", "get")
	}

	var link entity.ShareLink
	if err := doc.DataTo(&link); err != nil {
		return nil, errors.Internal("Failed to parse share link data", err)
	}
	return &link, nil
}

func (r *firestoreShareLinkRepository) ListByTracking(ctx context.Context, trackingID string) ([]*entity.ShareLink, error) {
	iter := r.client.Collection(shareLinkCollection).
		Where("trackingId", "==", trackingID).
		OrderBy("createdAt", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	var links []*entity.ShareLink
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Internal("Failed to iterate share links", err)
		}

		var link entity.ShareLink
		if err := doc.DataTo(&link); err != nil {
			return nil, errors.Internal("Failed to parse share link data", err)
		}
		links = append(links, &link)
	}
	return links, nil
}

func (r *firestoreShareLinkRepository) Delete(ctx context.Context, code string) error {
	_, err := r.client.Collection(shareLinkCollection).Doc(code).Delete(ctx, firestore.Exists)
	if err != nil {
		return storeError(err, "Share link", "delete")
	}
	return nil
}
