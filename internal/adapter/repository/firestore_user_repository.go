package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"masterhub/internal/domain/entity"
	"masterhub/internal/domain/repository"
	"masterhub/pkg/errors"
)

const usersCollection = "users"

type firestoreUserRepository struct {
	client *firestore.Client
}

func NewFirestoreUserRepository(client *firestore.Client) repository.UserRepository {
	return &firestoreUserRepository{
		client: client,
	}
}

func (r *firestoreUserRepository) Create(ctx context.Context, user *entity.User) error {
	_, err := r.client.Collection(usersCollection).Doc(user.ID).Create(ctx, user)
	if err != nil {
		return storeError(err, "User", "create")
	}
	return nil
}

func (r *firestoreUserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	doc, err := r.client.Collection(usersCollection).Doc(id).Get(ctx)
	if err != nil {
		return nil, storeError(err, "User", "get")
	}

	var user entity.User
	if err := doc.DataTo(&user); err != nil {
		return nil, errors.Internal("Failed to parse user data", err)
	}
	return &user, nil
}

// Update writes the editable profile fields only, leaving device tokens
// and role alone.
func (r *firestoreUserRepository) Update(ctx context.Context, user *entity.User) error {
	_, err := r.client.Collection(usersCollection).Doc(user.ID).Update(ctx, []firestore.Update{
		{Path: "name", Value: user.Name},
		{Path: "phone", Value: user.Phone},
		{Path: "city", Value: user.City},
		{Path: "bio", Value: user.Bio},
		{Path: "categories", Value: user.Categories},
		{Path: "avatarUrl", Value: user.AvatarURL},
		{Path: "updatedAt", Value: user.UpdatedAt},
	})
	if err != nil {
		return storeError(err, "User", "update")
	}
	return nil
}

func (r *firestoreUserRepository) ListByRole(ctx context.Context, role string, limit int) ([]*entity.User, error) {
	query := r.client.Collection(usersCollection).Where("role", "==", role)
	if limit > 0 {
		query = query.Limit(limit)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	var users []*entity.User
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Internal("Failed to iterate users", err)
		}

		var user entity.User
		if err := doc.DataTo(&user); err != nil {
			return nil, errors.Internal("Failed to parse user data", err)
		}
		users = append(users, &user)
	}
	return users, nil
}

func (r *firestoreUserRepository) AddDeviceToken(ctx context.Context, userID, token string) error {
	_, err := r.client.Collection(usersCollection).Doc(userID).Update(ctx, []firestore.Update{
		{Path: "deviceTokens", Value: firestore.ArrayUnion(token)},
	})
	if err != nil {
		return storeError(err, "User", "update")
	}
	return nil
}
