package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/BartekS5/tmmigrate/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

// Executor runs the write phase of a migration. It is chosen once per run.
type Executor interface {
	// Run executes work. Writes issued with the ctx passed to work belong to
	// the executor's transaction, if it has one.
	Run(ctx context.Context, work func(ctx context.Context) error) error
	// Transactional reports whether Run commits all writes atomically.
	Transactional() bool
	// Close releases the session. Safe to call more than once.
	Close(ctx context.Context)
}

// NewExecutor probes the deployment and returns a transactional executor for
// replica sets and sharded clusters, or a direct executor otherwise.
func NewExecutor(ctx context.Context, client *mongo.Client) (Executor, error) {
	ok, err := SupportsTransactions(ctx, client)
	if err != nil {
		return nil, err
	}
	if !ok {
		logger.Warnf("deployment does not support transactions; stage writes are durable as they complete")
		return DirectExecutor(), nil
	}

	sess, err := client.StartSession()
	if err != nil {
		if IsNotSupported(err) {
			logger.Warnf("sessions not supported, falling back to direct execution: %v", err)
			return DirectExecutor(), nil
		}
		return nil, fmt.Errorf("start session: %w", err)
	}
	return &txnExecutor{sess: sess}, nil
}

// SupportsTransactions asks the server whether it is a replica set member or
// a mongos router.
func SupportsTransactions(ctx context.Context, client *mongo.Client) (bool, error) {
	var hello struct {
		SetName string `bson:"setName"`
		Msg     string `bson:"msg"`
	}
	err := client.Database("admin").RunCommand(ctx, bson.D{{Key: "hello", Value: 1}}).Decode(&hello)
	if err != nil {
		return false, fmt.Errorf("hello command: %w", err)
	}
	return hello.SetName != "" || hello.Msg == "isdbgrid", nil
}

type txnExecutor struct {
	sess      mongo.Session
	closeOnce sync.Once
	fellBack  bool
}

func (e *txnExecutor) Run(ctx context.Context, work func(ctx context.Context) error) error {
	opts := options.Transaction().
		SetReadConcern(readconcern.Local()).
		SetWriteConcern(writeconcern.Majority())

	_, err := e.sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, work(sc)
	}, opts)
	if err != nil && IsNotSupported(err) {
		// The aborted transaction left nothing behind, so replaying is safe.
		logger.Warnf("transaction rejected by server, re-running without a transaction: %v", err)
		e.fellBack = true
		return work(ctx)
	}
	return err
}

func (e *txnExecutor) Transactional() bool { return !e.fellBack }

func (e *txnExecutor) Close(ctx context.Context) {
	e.closeOnce.Do(func() {
		e.sess.EndSession(ctx)
	})
}

type directExecutor struct{}

// DirectExecutor runs work without a transaction.
func DirectExecutor() Executor { return directExecutor{} }

func (directExecutor) Run(ctx context.Context, work func(ctx context.Context) error) error {
	return work(ctx)
}

func (directExecutor) Transactional() bool { return false }

func (directExecutor) Close(context.Context) {}

// IsNotSupported reports whether err means the deployment cannot run
// sessions or multi-document transactions (standalone servers, some
// Mongo-compatible stores).
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) {
		switch ce.Code {
		case 20, 51, 263: // IllegalOperation, IllegalOperation (legacy), OperationNotSupportedInTransaction
			return true
		}
	}
	s := strings.ToLower(err.Error())
	has := func(w string) bool { return strings.Contains(s, w) }
	switch {
	case has("transaction") && has("replica set"):
		return true
	case has("session") && has("not supported"):
		return true
	case has("transaction") && has("session"):
		return true
	case has("illegal operation"):
		return true
	}
	return false
}
