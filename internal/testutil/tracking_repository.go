package testutil

import (
	"context"
	"sort"
	"strings"
	"sync"

	"masterhub/internal/domain/entity"
	"masterhub/pkg/errors"
)

type TrackingRepository struct {
	mu        sync.Mutex
	sessions  map[string]*entity.TrackingSession
	locations map[string][]*entity.LocationSample
}

func NewTrackingRepository() *TrackingRepository {
	return &TrackingRepository{
		sessions:  make(map[string]*entity.TrackingSession),
		locations: make(map[string][]*entity.LocationSample),
	}
}

func (r *TrackingRepository) Create(ctx context.Context, session *entity.TrackingSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *session
	r.sessions[session.ID] = &cp
	return nil
}

func (r *TrackingRepository) GetByID(ctx context.Context, id string) (*entity.TrackingSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, errors.NotFound("Tracking session", nil)
	}
	cp := *s
	return &cp, nil
}

func (r *TrackingRepository) Update(ctx context.Context, session *entity.TrackingSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[session.ID]; !ok {
		return errors.NotFound("Tracking session", nil)
	}
	cp := *session
	r.sessions[session.ID] = &cp
	return nil
}

func (r *TrackingRepository) FindActiveByBooking(ctx context.Context, masterID, bookingID string) (*entity.TrackingSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range r.sessions {
		if s.MasterID == masterID && s.BookingID == bookingID && s.Status == entity.TrackingActive {
			cp := *s
			return &cp, nil
		}
	}
	return nil, errors.NotFound("Tracking session", nil)
}

// Remove deletes a session, simulating a session that vanished.
func (r *TrackingRepository) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

func (r *TrackingRepository) AddLocation(ctx context.Context, sample *entity.LocationSample) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *sample
	r.locations[sample.TrackingID] = append(r.locations[sample.TrackingID], &cp)
	return nil
}

func (r *TrackingRepository) LatestLocation(ctx context.Context, trackingID string) (*entity.LocationSample, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	samples := r.sorted(trackingID)
	if len(samples) == 0 {
		return nil, errors.NotFound("Location", nil)
	}
	return samples[len(samples)-1], nil
}

func (r *TrackingRepository) ListLocations(ctx context.Context, trackingID string, limit int) ([]*entity.LocationSample, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	samples := r.sorted(trackingID)
	if limit > 0 && len(samples) > limit {
		samples = samples[len(samples)-limit:]
	}
	return samples, nil
}

func (r *TrackingRepository) sorted(trackingID string) []*entity.LocationSample {
	out := make([]*entity.LocationSample, 0, len(r.locations[trackingID]))
	for _, s := range r.locations[trackingID] {
		cp := *s
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].RecordedAt.Before(out[j].RecordedAt)
	})
	return out
}

type ShareLinkRepository struct {
	mu    sync.Mutex
	links map[string]*entity.ShareLink
}

func NewShareLinkRepository() *ShareLinkRepository {
	return &ShareLinkRepository{links: make(map[string]*entity.ShareLink)}
}

func (r *ShareLinkRepository) Create(ctx context.Context, link *entity.ShareLink) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.links[link.ShareCode]; exists {
		return errors.Conflict("Share code already exists")
	}
	cp := *link
	cp.ShareWith = append([]string(nil), link.ShareWith...)
	r.links[link.ShareCode] = &cp
	return nil
}

func (r *ShareLinkRepository) GetByCode(ctx context.Context, code string) (*entity.ShareLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	link, ok := r.links[strings.ToUpper(code)]
	if !ok {
		return nil, errors.NotFound("Share link", nil)
	}
	cp := *link
	return &cp, nil
}

func (r *ShareLinkRepository) ListByTracking(ctx context.Context, trackingID string) ([]*entity.ShareLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*entity.ShareLink
	for _, link := range r.links {
		if link.TrackingID == trackingID {
			cp := *link
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *ShareLinkRepository) Delete(ctx context.Context, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.links[code]; !ok {
		return errors.NotFound("Share link", nil)
	}
	delete(r.links, code)
	return nil
}
