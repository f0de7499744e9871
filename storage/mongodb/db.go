package mongorepos

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/trezcool/elimu/core"
)

// Collections
const (
	usersCollection         = "users"
	coursesCollection       = "courses"
	assignmentsCollection   = "assignments"
	threadsCollection       = "threads"
	notificationsCollection = "notifications"
	contactsCollection      = "contacts"
)

// Open connects to the document store with a bounded connection pool and
// verifies the connection.
func Open(ctx context.Context, conf *core.Config) (*mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, conf.Database.Timeout)
	defer cancel()

	opts := options.Client().
		ApplyURI(conf.Database.URI).
		SetMaxPoolSize(conf.Database.MaxPoolSize).
		SetServerSelectionTimeout(conf.Database.Timeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, errors.Wrap(err, "connecting to mongodb")
	}
	if err = client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, errors.Wrap(err, "pinging mongodb")
	}
	return client.Database(conf.Database.Name), nil
}

// Close disconnects the underlying client.
func Close(ctx context.Context, db *mongo.Database) error {
	return errors.Wrap(db.Client().Disconnect(ctx), "disconnecting from mongodb")
}
