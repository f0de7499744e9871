package mongorepos

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/trezcool/elimu/core/user"
)

type UserRepository struct {
	coll *mongo.Collection
}

var _ user.Repository = (*UserRepository)(nil)

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(usersCollection)}
}

func (repo *UserRepository) CheckUniqueness(ctx context.Context, clerkID, email string) error {
	var existing user.User
	filter := bson.M{"$or": bson.A{bson.M{"clerk_id": clerkID}, bson.M{"email": email}}}
	err := repo.coll.FindOne(ctx, filter).Decode(&existing)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil
		}
		return errors.Wrap(err, "checking uniqueness")
	}
	if existing.ClerkID == clerkID {
		return user.ErrClerkIDExists
	}
	return user.ErrEmailExists
}

func (repo *UserRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	res, err := repo.coll.InsertOne(ctx, usr)
	if err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	usr.ID = res.InsertedID.(primitive.ObjectID)
	return usr, nil
}

func (repo *UserRepository) GetUserByClerkID(ctx context.Context, clerkID string) (user.User, error) {
	var usr user.User
	err := repo.coll.FindOne(ctx, bson.M{"clerk_id": clerkID}).Decode(&usr)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "finding user")
	}
	return usr, nil
}

func (repo *UserRepository) UpsertUserByClerkID(ctx context.Context, usr user.User) (user.User, error) {
	update := bson.M{
		"$set": bson.M{
			"email":      usr.Email,
			"first_name": usr.FirstName,
			"last_name":  usr.LastName,
			"updated_at": usr.UpdatedAt,
		},
		"$setOnInsert": bson.M{
			"clerk_id":   usr.ClerkID,
			"role":       usr.Role,
			"created_at": time.Now().UTC(),
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var upserted user.User
	err := repo.coll.FindOneAndUpdate(ctx, bson.M{"clerk_id": usr.ClerkID}, update, opts).Decode(&upserted)
	if err != nil {
		return user.User{}, errors.Wrap(err, "upserting user")
	}
	return upserted, nil
}

func (repo *UserRepository) DeleteUserByClerkID(ctx context.Context, clerkID string) error {
	res, err := repo.coll.DeleteOne(ctx, bson.M{"clerk_id": clerkID})
	if err != nil {
		return errors.Wrap(err, "deleting user")
	}
	if res.DeletedCount == 0 {
		return user.ErrNotFound
	}
	return nil
}
