package repository

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/firestore/apiv1/firestorepb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"masterhub/pkg/errors"
)

// storeError maps a Firestore error onto the application error set.
func storeError(err error, resource, action string) error {
	switch status.Code(err) {
	case codes.NotFound:
		return errors.NotFound(resource, err)
	case codes.AlreadyExists:
		return errors.Conflict(resource + " already exists")
	}
	return errors.Internal(fmt.Sprintf("Failed to %s %s", action, resource), err)
}

// count runs a server-side count aggregation over q.
func count(ctx context.Context, q firestore.Query) (int64, error) {
	result, err := q.NewAggregationQuery().WithCount("total").Get(ctx)
	if err != nil {
		return 0, err
	}

	value, ok := result["total"].(*firestorepb.Value)
	if !ok {
		return 0, fmt.Errorf("unexpected count result type %T", result["total"])
	}
	return value.GetIntegerValue(), nil
}

// page applies offset and limit; a non-positive limit means no limit.
func page(q firestore.Query, limit, offset int) firestore.Query {
	if offset > 0 {
		q = q.Offset(offset)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	return q
}
