package mongo

import (
	"context"
	"fmt"
	apperrors "parkbook/pkg/errors"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

// DefaultMaxCommitTime bounds how long the server may spend committing one
// booking transaction.
const DefaultMaxCommitTime = 5 * time.Second

// TransactionFunc runs inside a transaction. The context it receives carries
// the session, so repository calls made with it join the transaction.
type TransactionFunc func(ctx context.Context) error

type TransactionManager interface {
	ExecuteTransaction(ctx context.Context, fn TransactionFunc) error
}

type mongoTransactionManager struct {
	client *mongo.Client
	opts   *options.TransactionOptions
}

func NewTransactionManager(client *mongo.Client) TransactionManager {
	return &mongoTransactionManager{
		client: client,
		opts:   TransactionOptions(),
	}
}

// TransactionOptions reads a snapshot and commits with majority so that two
// check-then-insert transactions on the same slot cannot both commit.
func TransactionOptions() *options.TransactionOptions {
	maxCommit := DefaultMaxCommitTime
	return options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority()).
		SetReadPreference(readpref.Primary()).
		SetMaxCommitTime(&maxCommit)
}

// ExecuteTransaction runs fn and retries it on transient transaction errors
// until ctx expires. AppErrors returned by fn abort the transaction and are
// passed through unchanged.
func (m *mongoTransactionManager) ExecuteTransaction(ctx context.Context, fn TransactionFunc) error {
	session, err := m.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(context.WithoutCancel(ctx))

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (any, error) {
		return nil, fn(sessCtx)
	}, m.opts)
	if err == nil {
		return nil
	}
	if apperrors.IsAppError(err) {
		return err
	}
	return fmt.Errorf("transaction failed: %w", err)
}
