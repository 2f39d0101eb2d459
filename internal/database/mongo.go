package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Open connects to MongoDB, verifies the connection and makes sure the
// unique indexes exist. The returned database handle is shared by all
// repositories.
func Open(uri, name string) (*mongo.Database, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	// Ping with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	db := client.Database(name)
	if err := ensureIndexes(ctx, db); err != nil {
		return nil, err
	}
	return db, nil
}

// ensureIndexes creates the indexes the application relies on. Unique
// username/email back the registration sentinels; author_id supports
// the index/show lookups.
func ensureIndexes(ctx context.Context, db *mongo.Database) error {
	type idx struct {
		col    string
		keys   bson.D
		unique bool
	}
	indexes := []idx{
		{"users", bson.D{{Key: "username", Value: 1}}, true},
		{"users", bson.D{{Key: "email", Value: 1}}, true},
		{"campgrounds", bson.D{{Key: "author_id", Value: 1}}, false},
		{"campgrounds", bson.D{{Key: "created_at", Value: 1}}, false},
		{"reviews", bson.D{{Key: "author_id", Value: 1}}, false},
	}
	for _, i := range indexes {
		m := mongo.IndexModel{Keys: i.keys}
		if i.unique {
			m.Options = options.Index().SetUnique(true)
		}
		if _, err := db.Collection(i.col).Indexes().CreateOne(ctx, m); err != nil {
			return fmt.Errorf("create index on %s: %w", i.col, err)
		}
	}
	return nil
}
