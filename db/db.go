package db

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"speecheval/utils"
)

// extractDBName parses the database name from the URI, falling back to def
func extractDBName(uri, def string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return def
	}
	if u.Path != "" && u.Path != "/" {
		return u.Path[1:] // Trim leading '/'
	}
	return def
}

// ConnectMongoDB connects to MongoDB, verifies the connection with a ping and
// returns the database named in the URI (or defaultName).
func ConnectMongoDB(ctx context.Context, uri, defaultName string) (*mongo.Client, *mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	dbName := extractDBName(uri, defaultName)
	utils.Info("using database", "name", dbName)
	return client, client.Database(dbName), nil
}
