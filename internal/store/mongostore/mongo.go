// Package mongostore implements the persistence interfaces on MongoDB.
// Conditional updates (matching on the current token value) are the
// atomicity boundary: two requests racing on the same user document
// cannot both win a token transition, and failed-login counting uses a
// server-side increment so no update is lost.
package mongostore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

const connectTimeout = 10 * time.Second

// Connect dials MongoDB and verifies the connection with a ping against
// the primary, so read-your-writes holds for subsequent operations.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	return client, nil
}
