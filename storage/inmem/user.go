package inmemdb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/trezcool/elimu/core/user"
)

type userRepository struct {
	db *userTable
}

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{db: db.user}
}

func (repo *userRepository) CheckUniqueness(ctx context.Context, clerkID, email string) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, usr := range repo.db.table {
		if usr.ClerkID == clerkID {
			return user.ErrClerkIDExists
		}
		if usr.Email == email {
			return user.ErrEmailExists
		}
	}
	return nil
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	usr.ID = primitive.NewObjectID()
	repo.db.table[usr.ClerkID] = &usr
	return usr, nil
}

func (repo *userRepository) GetUserByClerkID(ctx context.Context, clerkID string) (user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if usr, ok := repo.db.table[clerkID]; ok {
		return *usr, nil
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) UpsertUserByClerkID(ctx context.Context, usr user.User) (user.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if orig, ok := repo.db.table[usr.ClerkID]; ok {
		orig.Email = usr.Email
		orig.FirstName = usr.FirstName
		orig.LastName = usr.LastName
		orig.UpdatedAt = usr.UpdatedAt
		return *orig, nil
	}
	usr.ID = primitive.NewObjectID()
	repo.db.table[usr.ClerkID] = &usr
	return usr, nil
}

func (repo *userRepository) DeleteUserByClerkID(ctx context.Context, clerkID string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	delete(repo.db.table, clerkID)
	return nil
}
