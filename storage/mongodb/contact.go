package mongorepos

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/trezcool/elimu/core/contact"
)

type ContactRepository struct {
	coll *mongo.Collection
}

var _ contact.Repository = (*ContactRepository)(nil)

func NewContactRepository(db *mongo.Database) *ContactRepository {
	return &ContactRepository{coll: db.Collection(contactsCollection)}
}

func (repo *ContactRepository) CreateMessage(ctx context.Context, msg contact.Message) (contact.Message, error) {
	res, err := repo.coll.InsertOne(ctx, msg)
	if err != nil {
		return contact.Message{}, errors.Wrap(err, "inserting contact message")
	}
	msg.ID = res.InsertedID.(primitive.ObjectID)
	return msg, nil
}
