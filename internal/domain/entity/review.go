package entity

import (
	"time"
)

// Review is left by one party of an order about the other.
type Review struct {
	ID         string    `json:"id" firestore:"id"`
	OrderID    string    `json:"order_id" firestore:"orderId"`
	ReviewerID string    `json:"reviewer_id" firestore:"reviewerId"`
	TargetID   string    `json:"target_id" firestore:"targetId"`
	Rating     int       `json:"rating" firestore:"rating"` // 1-5
	Comment    string    `json:"comment,omitempty" firestore:"comment,omitempty"`
	CreatedAt  time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt  time.Time `json:"updated_at" firestore:"updatedAt"`
}
