package entity

import "time"

// ShareLink grants read access to a tracking session until ExpiresAt.
// DeleteAt mirrors ExpiresAt and is the store's TTL field.
type ShareLink struct {
	ShareCode      string    `json:"share_code" firestore:"shareCode"`
	TrackingID     string    `json:"tracking_id" firestore:"trackingId"`
	MasterID       string    `json:"master_id" firestore:"masterId"`
	ShareWith      []string  `json:"share_with" firestore:"shareWith"`
	AllowAnonymous bool      `json:"allow_anonymous" firestore:"allowAnonymous"`
	ExpiresAt      time.Time `json:"expires_at" firestore:"expiresAt"`
	CreatedAt      time.Time `json:"created_at" firestore:"createdAt"`
	DeleteAt       time.Time `json:"-" firestore:"deleteAt"`
}

// Expired reports whether the link no longer grants access; the link is
// valid only while now is strictly before ExpiresAt.
func (l *ShareLink) Expired(now time.Time) bool {
	return !now.Before(l.ExpiresAt)
}

// Permits is the access predicate: anonymous links admit anyone, otherwise
// the requester must be the master or listed in ShareWith.
func (l *ShareLink) Permits(requesterID string) bool {
	if l.AllowAnonymous {
		return true
	}
	if requesterID == "" {
		return false
	}
	if requesterID == l.MasterID {
		return true
	}
	for _, id := range l.ShareWith {
		if id == requesterID {
			return true
		}
	}
	return false
}
