// Package mongo hosts the remote document-table replica: one collection per
// replicated table, every row a {_id, content, updated_at} envelope.
package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/imoview/realty-crm/internal/core/ports"
)

const defaultTimeout = 10 * time.Second

// Config captures the settings required to reach the replica.
type Config struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// Connect establishes the replica client, verifies connectivity with a ping
// and puts an updated_at index on every replicated table so rows can be
// queried by recency. A default timeout is applied when none is provided.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}

	db := client.Database(cfg.Database)
	if err := ensureTableIndexes(connectCtx, db); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, nil, err
	}
	return client, db, nil
}

func ensureTableIndexes(ctx context.Context, db *mongo.Database) error {
	idx := mongo.IndexModel{Keys: bson.D{{Key: "updated_at", Value: -1}}}
	for _, table := range ports.ReplicatedTables {
		if _, err := db.Collection(table).Indexes().CreateOne(ctx, idx); err != nil {
			return fmt.Errorf("ensure index on %s: %w", table, err)
		}
	}
	return nil
}
