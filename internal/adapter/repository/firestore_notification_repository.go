package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"masterhub/internal/domain/entity"
	"masterhub/internal/domain/repository"
	"masterhub/pkg/errors"
)

const notificationsCollection = "notifications"

type firestoreNotificationRepository struct {
	client *firestore.Client
}

func NewFirestoreNotificationRepository(client *firestore.Client) repository.NotificationRepository {
	return &firestoreNotificationRepository{
		client: client,
	}
}

func (r *firestoreNotificationRepository) Create(ctx context.Context, notification *entity.Notification) error {
	_, err := r.client.Collection(notificationsCollection).Doc(notification.ID).Create(ctx, notification)
	if err != nil {
		return storeError(err, "Notification", "create")
	}
	return nil
}

func (r *firestoreNotificationRepository) GetByID(ctx context.Context, id string) (*entity.Notification, error) {
	doc, err := r.client.Collection(notificationsCollection).Doc(id).Get(ctx)
	if err != nil {
		return nil, storeError(err, "Notification", "get")
	}

	var notification entity.Notification
	if err := doc.DataTo(&notification); err != nil {
		return nil, errors.Internal("Failed to parse notification data", err)
	}
	return &notification, nil
}

func (r *firestoreNotificationRepository) byUser(userID string, unreadOnly bool) firestore.Query {
	query := r.client.Collection(notificationsCollection).Where("userId", "==", userID)
	if unreadOnly {
		query = query.Where("isRead", "==", false)
	}
	return query
}

func (r *firestoreNotificationRepository) ListByUser(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]*entity.Notification, int64, error) {
	query := r.byUser(userID, unreadOnly)

	total, err := count(ctx, query)
	if err != nil {
		return nil, 0, errors.Internal("Failed to count notifications", err)
	}

	iter := page(query.OrderBy("createdAt", firestore.Desc), limit, offset).Documents(ctx)
	defer iter.Stop()

	var notifications []*entity.Notification
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, 0, errors.Internal("Failed to iterate notifications", err)
		}

		var notification entity.Notification
		if err := doc.DataTo(&notification); err != nil {
			return nil, 0, errors.Internal("Failed to parse notification data", err)
		}
		notifications = append(notifications, &notification)
	}

	return notifications, total, nil
}

// CountUnread is a point-in-time count, not a stored counter.
func (r *firestoreNotificationRepository) CountUnread(ctx context.Context, userID string) (int64, error) {
	n, err := count(ctx, r.byUser(userID, true))
	if err != nil {
		return 0, errors.Internal("Failed to count unread notifications", err)
	}
	return n, nil
}

func (r *firestoreNotificationRepository) MarkRead(ctx context.Context, id string, at time.Time) error {
	_, err := r.client.Collection(notificationsCollection).Doc(id).Update(ctx, []firestore.Update{
		{Path: "isRead", Value: true},
		{Path: "readAt", Value: at},
	})
	if err != nil {
		return storeError(err, "Notification", "update")
	}
	return nil
}

func (r *firestoreNotificationRepository) MarkAllRead(ctx context.Context, userID string, at time.Time) (int, error) {
	return r.bulk(ctx, r.byUser(userID, true), func(bw *firestore.BulkWriter, ref *firestore.DocumentRef) (*firestore.BulkWriterJob, error) {
		return bw.Update(ref, []firestore.Update{
			{Path: "isRead", Value: true},
			{Path: "readAt", Value: at},
		})
	})
}

func (r *firestoreNotificationRepository) Delete(ctx context.Context, id string) error {
	_, err := r.client.Collection(notificationsCollection).Doc(id).Delete(ctx, firestore.Exists)
	if err != nil {
		return storeError(err, "Notification", "delete")
	}
	return nil
}

func (r *firestoreNotificationRepository) DeleteAllByUser(ctx context.Context, userID string) (int, error) {
	return r.bulk(ctx, r.byUser(userID, false), func(bw *firestore.BulkWriter, ref *firestore.DocumentRef) (*firestore.BulkWriterJob, error) {
		return bw.Delete(ref)
	})
}

// bulk applies op to every document matched by query and returns how many
// writes succeeded.
func (r *firestoreNotificationRepository) bulk(
	ctx context.Context,
	query firestore.Query,
	op func(*firestore.BulkWriter, *firestore.DocumentRef) (*firestore.BulkWriterJob, error),
) (int, error) {
	refs, err := query.Select().Documents(ctx).GetAll()
	if err != nil {
		return 0, errors.Internal("Failed to query notifications", err)
	}
	if len(refs) == 0 {
		return 0, nil
	}

	bw := r.client.BulkWriter(ctx)
	jobs := make([]*firestore.BulkWriterJob, 0, len(refs))
	for _, doc := range refs {
		job, err := op(bw, doc.Ref)
		if err != nil {
			bw.End()
			return 0, errors.Internal("Failed to enqueue notification write", err)
		}
		jobs = append(jobs, job)
	}
	bw.End()

	done := 0
	var firstErr error
	for _, job := range jobs {
		if _, err := job.Results(); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		done++
	}
	if firstErr != nil {
		return done, errors.Internal("Failed to update notifications", firstErr)
	}
	return done, nil
}
