package mongodb

import (
	"context"
	stderrors "errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kbukum/multimongo/errors"
	"github.com/kbukum/multimongo/logger"
)

// TransactionManager runs functions inside client sessions of one database
// factory.
type TransactionManager struct {
	factory *DatabaseFactory
	opts    *options.TransactionOptions
	log     *logger.Logger
}

// NewTransactionManager creates a manager; opts may be nil.
func NewTransactionManager(factory *DatabaseFactory, opts *options.TransactionOptions) *TransactionManager {
	return &TransactionManager{factory: factory, opts: opts, log: logger.Get("mongodb")}
}

func (m *TransactionManager) Options() *options.TransactionOptions { return m.opts }

// Execute runs fn in a transaction. fn receives the session context and
// must use it for its operations. Only when a standalone server rejects the
// transaction does fn run once more without one. Other driver failures are
// returned as TRANSACTION_FAILED errors.
func (m *TransactionManager) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := m.factory.Client().StartSession()
	if err != nil {
		m.log.Warn("cannot start session, running without transaction", logger.ErrorFields("start_session", err))
		return fn(ctx)
	}
	defer session.EndSession(ctx)

	var txOpts []*options.TransactionOptions
	if m.opts != nil {
		txOpts = append(txOpts, m.opts)
	}
	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	}, txOpts...)
	if err == nil {
		return nil
	}
	if IsTransactionUnsupported(err) {
		m.log.Warn("transactions not supported, running without transaction", logger.ErrorFields("transaction", err))
		return fn(ctx)
	}
	if errors.IsAppError(err) {
		return err
	}
	return errors.TransactionFailed(err)
}

// IsTransactionUnsupported reports whether err means the deployment cannot
// run multi-document transactions, i.e. a standalone server rejecting
// transaction numbers. An operation refused inside a running transaction
// (code 263) is not such an error.
func IsTransactionUnsupported(err error) bool {
	if err == nil {
		return false
	}
	var cmdErr mongo.CommandError
	if stderrors.As(err, &cmdErr) {
		return cmdErr.Code == codeIllegalOperation && transactionNumbersRejected(cmdErr.Message)
	}
	return transactionNumbersRejected(err.Error())
}

const codeIllegalOperation = 20

func transactionNumbersRejected(msg string) bool {
	return strings.Contains(strings.ToLower(msg), "transaction numbers are only allowed")
}
