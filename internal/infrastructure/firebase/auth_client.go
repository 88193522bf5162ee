package firebase

import (
	"context"

	"firebase.google.com/go/v4/auth"

	authn "masterhub/internal/infrastructure/auth"
)

// FirebaseAuthClient verifies Firebase ID tokens. The role comes from the
// "role" custom claim.
type FirebaseAuthClient struct {
	client *auth.Client
}

func NewFirebaseAuthClient(client *auth.Client) *FirebaseAuthClient {
	return &FirebaseAuthClient{
		client: client,
	}
}

func (f *FirebaseAuthClient) Verify(ctx context.Context, token string) (*authn.Identity, error) {
	result, err := f.client.VerifyIDToken(ctx, token)
	if err != nil {
		return nil, err
	}

	role, _ := result.Claims["role"].(string)
	return &authn.Identity{UID: result.UID, Role: role}, nil
}

// SetRole stores the role as a custom claim so later tokens carry it.
func (f *FirebaseAuthClient) SetRole(ctx context.Context, uid, role string) error {
	return f.client.SetCustomUserClaims(ctx, uid, map[string]interface{}{"role": role})
}
