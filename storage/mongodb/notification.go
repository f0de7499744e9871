package mongorepos

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/trezcool/elimu/core/notification"
)

type NotificationRepository struct {
	coll *mongo.Collection
}

var _ notification.Repository = (*NotificationRepository)(nil)

func NewNotificationRepository(db *mongo.Database) *NotificationRepository {
	return &NotificationRepository{coll: db.Collection(notificationsCollection)}
}

func (repo *NotificationRepository) CreateNotification(ctx context.Context, n notification.Notification) (notification.Notification, error) {
	res, err := repo.coll.InsertOne(ctx, n)
	if err != nil {
		return notification.Notification{}, errors.Wrap(err, "inserting notification")
	}
	n.ID = res.InsertedID.(primitive.ObjectID)
	return n, nil
}

func (repo *NotificationRepository) QueryNotificationsByUser(ctx context.Context, userID string) ([]notification.Notification, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := repo.coll.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, errors.Wrap(err, "querying notifications")
	}
	notifs := []notification.Notification{}
	if err = cursor.All(ctx, &notifs); err != nil {
		return nil, errors.Wrap(err, "decoding notifications")
	}
	return notifs, nil
}

func (repo *NotificationRepository) MarkNotificationRead(ctx context.Context, id primitive.ObjectID, userID string) (notification.Notification, error) {
	filter := bson.M{"_id": id, "user_id": userID}
	update := bson.M{"$set": bson.M{"is_read": true}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var n notification.Notification
	err := repo.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&n)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return notification.Notification{}, notification.ErrNotFound
		}
		return notification.Notification{}, errors.Wrap(err, "marking notification read")
	}
	return n, nil
}
