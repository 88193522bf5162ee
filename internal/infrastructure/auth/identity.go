package auth

import "context"

// Identity is the authenticated caller.
type Identity struct {
	UID  string
	Role string
}

// TokenVerifier turns a bearer token into an Identity.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}
