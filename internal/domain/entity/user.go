package entity

import (
	"time"
)

const (
	RoleClient = "client"
	RoleMaster = "master"
	RoleAdmin  = "admin"
)

type User struct {
	ID         string   `json:"id" firestore:"id"`
	Role       string   `json:"role" firestore:"role"`
	Name       string   `json:"name" firestore:"name"`
	Phone      string   `json:"phone,omitempty" firestore:"phone,omitempty"`
	City       string   `json:"city,omitempty" firestore:"city,omitempty"`
	Bio        string   `json:"bio,omitempty" firestore:"bio,omitempty"`
	Categories []string `json:"categories,omitempty" firestore:"categories,omitempty"`
	AvatarURL  string   `json:"avatar_url,omitempty" firestore:"avatarUrl,omitempty"`

	DeviceTokens []string `json:"-" firestore:"deviceTokens,omitempty"`

	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" firestore:"updatedAt"`
}

func (u *User) OffersCategory(category string) bool {
	for _, c := range u.Categories {
		if c == category {
			return true
		}
	}
	return false
}
