package mongodb

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"

	"github.com/kbukum/multimongo/errors"
)

func TestFromMongo(t *testing.T) {
	dup := mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key error"}}}

	tests := []struct {
		name      string
		err       error
		code      errors.ErrorCode
		retryable bool
	}{
		{"no documents", mongo.ErrNoDocuments, errors.ErrCodeNotFound, false},
		{"file not found", gridfs.ErrFileNotFound, errors.ErrCodeNotFound, false},
		{"duplicate key", dup, errors.ErrCodeAlreadyExists, false},
		{"deadline", context.DeadlineExceeded, errors.ErrCodeTimeout, true},
		{"disconnected", mongo.ErrClientDisconnected, errors.ErrCodeConnectionFailed, true},
		{"wrapped disconnected", fmt.Errorf("find: %w", mongo.ErrClientDisconnected), errors.ErrCodeConnectionFailed, true},
		{"other", stderrors.New("boom"), errors.ErrCodeDatabaseError, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := FromMongo(tc.err, "order")
			assert.True(t, errors.HasCode(err, tc.code), "got %v", err)
			assert.Equal(t, tc.retryable, errors.IsRetryable(err))
			appErr, ok := errors.AsAppError(err)
			if assert.True(t, ok) {
				assert.Equal(t, tc.err, appErr.Cause)
			}
		})
	}
}

func TestFromMongoPassThrough(t *testing.T) {
	assert.NoError(t, FromMongo(nil, "order"))
	assert.Equal(t, context.Canceled, FromMongo(context.Canceled, "order"))

	appErr := errors.Conflict("stale")
	assert.Same(t, appErr, FromMongo(appErr, "order"))
}

func TestIsConnectionError(t *testing.T) {
	assert.False(t, IsConnectionError(nil))
	assert.False(t, IsConnectionError(stderrors.New("boom")))
	assert.True(t, IsConnectionError(mongo.ErrClientDisconnected))
}

func TestIsTransactionUnsupported(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"standalone", mongo.CommandError{Code: 20, Name: "IllegalOperation", Message: "Transaction numbers are only allowed on a replica set member or mongos"}, true},
		{"wrapped standalone", fmt.Errorf("tx: %w", mongo.CommandError{Code: 20, Message: "Transaction numbers are only allowed on a replica set member or mongos"}), true},
		{"message only", stderrors.New("(IllegalOperation) Transaction numbers are only allowed on a replica set member or mongos"), true},
		{"illegal operation without transaction message", mongo.CommandError{Code: 20, Message: "cannot run on a capped collection"}, false},
		{"operation not supported in transaction", mongo.CommandError{Code: 263, Name: "OperationNotSupportedInTransaction", Message: "Cannot run 'count' in a multi-document transaction."}, false},
		{"generic not supported message", stderrors.New("transaction option not supported"), false},
		{"write conflict", mongo.CommandError{Code: 112, Message: "WriteConflict"}, false},
		{"other", stderrors.New("boom"), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsTransactionUnsupported(tc.err))
		})
	}
}
