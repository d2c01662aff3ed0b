package mongodb

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/x/mongo/driver/topology"

	"github.com/kbukum/multimongo/errors"
)

// IsConnectionError reports whether err means the deployment could not be
// reached.
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}
	var sel topology.ServerSelectionError
	return mongo.IsNetworkError(err) ||
		stderrors.As(err, &sel) ||
		stderrors.Is(err, topology.ErrServerSelectionTimeout) ||
		stderrors.Is(err, mongo.ErrClientDisconnected)
}

// FromMongo converts a driver error to an AppError. It returns nil for nil.
func FromMongo(err error, resource string) error {
	if err == nil {
		return nil
	}
	if errors.IsAppError(err) {
		return err
	}

	switch {
	case stderrors.Is(err, mongo.ErrNoDocuments), stderrors.Is(err, gridfs.ErrFileNotFound):
		return errors.NotFound(resource, "").WithCause(err)
	case mongo.IsDuplicateKeyError(err):
		return (&errors.AppError{
			Code:       errors.ErrCodeAlreadyExists,
			Message:    fmt.Sprintf("A %s with these details already exists.", resource),
			HTTPStatus: http.StatusConflict,
		}).WithCause(err)
	case stderrors.Is(err, context.DeadlineExceeded), mongo.IsTimeout(err):
		return errors.Timeout(resource).WithCause(err)
	case IsConnectionError(err):
		return (&errors.AppError{
			Code:       errors.ErrCodeConnectionFailed,
			Message:    "Database is temporarily unavailable. Please try again.",
			HTTPStatus: http.StatusServiceUnavailable,
			Retryable:  true,
		}).WithCause(err)
	case stderrors.Is(err, context.Canceled):
		return err
	}
	return errors.DatabaseError(err)
}
