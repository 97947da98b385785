package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"
)

const (
	defaultTimeout = 10 * time.Second
	// One document is read or written per session operation.
	maxPoolSize = 4
)

// Config locates the database holding the session document. Database falls
// back to the path component of URI.
type Config struct {
	URI      string
	Database string
	Timeout  time.Duration
	AppName  string
}

// databaseName resolves the target database from cfg.
func databaseName(cfg Config) (string, error) {
	if cfg.Database != "" {
		return cfg.Database, nil
	}
	cs, err := connstring.ParseAndValidate(cfg.URI)
	if err != nil {
		return "", fmt.Errorf("mongo uri: %w", err)
	}
	if cs.Database == "" {
		return "", errors.New("mongo: no database in config or uri")
	}
	return cs.Database, nil
}

// Connect opens a client, pings the primary and returns the session database.
// Timeout bounds the connect and ping as well as every later operation.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	name, err := databaseName(cfg)
	if err != nil {
		return nil, nil, err
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetServerSelectionTimeout(timeout).
		SetTimeout(timeout).
		SetMaxPoolSize(maxPoolSize).
		SetRetryWrites(true)
	if cfg.AppName != "" {
		opts.SetAppName(cfg.AppName)
	}
	if err := opts.Validate(); err != nil {
		return nil, nil, fmt.Errorf("mongo options: %w", err)
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, nil, fmt.Errorf("mongo ping %s: %w", name, err)
	}
	return client, client.Database(name), nil
}
