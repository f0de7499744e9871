package inmemdb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/trezcool/elimu/core/contact"
)

type contactRepository struct {
	db *contactTable
}

func NewContactRepository(db *DB) contact.Repository {
	return &contactRepository{db: db.contact}
}

func (repo *contactRepository) CreateMessage(ctx context.Context, msg contact.Message) (contact.Message, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	msg.ID = primitive.NewObjectID()
	repo.db.table[msg.ID] = &msg
	return msg, nil
}
