package entity

import "time"

type TrackingStatus string

const (
	TrackingActive    TrackingStatus = "ACTIVE"
	TrackingPaused    TrackingStatus = "PAUSED"
	TrackingCompleted TrackingStatus = "COMPLETED"
	TrackingCancelled TrackingStatus = "CANCELLED"
)

func (s TrackingStatus) Terminal() bool {
	return s == TrackingCompleted || s == TrackingCancelled
}

type TrackingSettings struct {
	ShareWithClient       bool `json:"share_with_client" firestore:"shareWithClient"`
	UpdateIntervalSeconds int  `json:"update_interval_seconds" firestore:"updateIntervalSeconds"`
}

// TrackingSession is a master's live location session for a booking.
type TrackingSession struct {
	ID        string           `json:"id" firestore:"id"`
	MasterID  string           `json:"master_id" firestore:"masterId"`
	ClientID  string           `json:"client_id,omitempty" firestore:"clientId,omitempty"`
	BookingID string           `json:"booking_id,omitempty" firestore:"bookingId,omitempty"`
	ProjectID string           `json:"project_id,omitempty" firestore:"projectId,omitempty"`
	Status    TrackingStatus   `json:"status" firestore:"status"`
	Settings  TrackingSettings `json:"settings" firestore:"settings"`
	StartedAt time.Time        `json:"started_at" firestore:"startedAt"`
	EndedAt   *time.Time       `json:"ended_at,omitempty" firestore:"endedAt,omitempty"`
	UpdatedAt time.Time        `json:"updated_at" firestore:"updatedAt"`
}

func (s *TrackingSession) IsLive() bool {
	return s.Status == TrackingActive
}

// CanView reports whether a user may see the session without a share link.
func (s *TrackingSession) CanView(userID string) bool {
	if userID == "" {
		return false
	}
	return userID == s.MasterID || (s.Settings.ShareWithClient && userID == s.ClientID)
}

type LocationSample struct {
	ID         string    `json:"id" firestore:"id"`
	TrackingID string    `json:"tracking_id" firestore:"trackingId"`
	Latitude   float64   `json:"latitude" firestore:"latitude"`
	Longitude  float64   `json:"longitude" firestore:"longitude"`
	Accuracy   float64   `json:"accuracy,omitempty" firestore:"accuracy,omitempty"`
	Speed      float64   `json:"speed,omitempty" firestore:"speed,omitempty"`
	Heading    float64   `json:"heading,omitempty" firestore:"heading,omitempty"`
	RecordedAt time.Time `json:"recorded_at" firestore:"recordedAt"`
}
