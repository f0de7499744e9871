package mongorepos

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/trezcool/elimu/core/discussion"
)

type ThreadRepository struct {
	coll *mongo.Collection
}

var _ discussion.Repository = (*ThreadRepository)(nil)

func NewThreadRepository(db *mongo.Database) *ThreadRepository {
	return &ThreadRepository{coll: db.Collection(threadsCollection)}
}

func (repo *ThreadRepository) CreateThread(ctx context.Context, t discussion.Thread) (discussion.Thread, error) {
	res, err := repo.coll.InsertOne(ctx, t)
	if err != nil {
		return discussion.Thread{}, errors.Wrap(err, "inserting thread")
	}
	t.ID = res.InsertedID.(primitive.ObjectID)
	return t, nil
}

func (repo *ThreadRepository) GetThreadByID(ctx context.Context, id primitive.ObjectID) (discussion.Thread, error) {
	var t discussion.Thread
	err := repo.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&t)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return discussion.Thread{}, discussion.ErrNotFound
		}
		return discussion.Thread{}, errors.Wrap(err, "finding thread")
	}
	return t, nil
}

func (repo *ThreadRepository) QueryThreadsByCourse(ctx context.Context, courseID primitive.ObjectID) ([]discussion.Thread, error) {
	sort := bson.D{{Key: "is_pinned", Value: -1}, {Key: "last_activity", Value: -1}}
	cursor, err := repo.coll.Find(ctx, bson.M{"course": courseID}, options.Find().SetSort(sort))
	if err != nil {
		return nil, errors.Wrap(err, "querying threads")
	}
	threads := []discussion.Thread{}
	if err = cursor.All(ctx, &threads); err != nil {
		return nil, errors.Wrap(err, "decoding threads")
	}
	return threads, nil
}

func (repo *ThreadRepository) SaveThread(ctx context.Context, t discussion.Thread) (discussion.Thread, error) {
	res, err := repo.coll.ReplaceOne(ctx, bson.M{"_id": t.ID}, t)
	if err != nil {
		return discussion.Thread{}, errors.Wrap(err, "replacing thread")
	}
	if res.MatchedCount == 0 {
		return discussion.Thread{}, discussion.ErrNotFound
	}
	return t, nil
}

func (repo *ThreadRepository) DeleteThread(ctx context.Context, id primitive.ObjectID) error {
	res, err := repo.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(err, "deleting thread")
	}
	if res.DeletedCount == 0 {
		return discussion.ErrNotFound
	}
	return nil
}

func (repo *ThreadRepository) IncrementViews(ctx context.Context, id primitive.ObjectID) error {
	res, err := repo.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"views": 1}})
	if err != nil {
		return errors.Wrap(err, "incrementing views")
	}
	if res.MatchedCount == 0 {
		return discussion.ErrNotFound
	}
	return nil
}
