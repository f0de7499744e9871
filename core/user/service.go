package user

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/elimu/core"
)

var (
	// errors
	ErrNotFound      = core.NewNotFoundError("user not found")
	ErrEmailExists   = errors.New("a user with this email already exists")
	ErrClerkIDExists = errors.New("a user with this clerk id already exists")
)

type (
	Repository interface {
		CheckUniqueness(ctx context.Context, clerkID, email string) error
		CreateUser(ctx context.Context, usr User) (User, error)
		GetUserByClerkID(ctx context.Context, clerkID string) (User, error)
		// UpsertUserByClerkID overwrites the mirrored identity fields,
		// inserting the user when absent.
		UpsertUserByClerkID(ctx context.Context, usr User) (User, error)
		DeleteUserByClerkID(ctx context.Context, clerkID string) error
	}

	ServiceInterface interface {
		CheckUniqueness(clerkID, email string) error
		Create(ctx context.Context, nu NewUser) (User, error)
		GetByClerkID(ctx context.Context, clerkID string) (User, error)
		SyncCreated(ctx context.Context, su SyncedUser) error
		SyncUpdated(ctx context.Context, su SyncedUser) error
		SyncDeleted(ctx context.Context, clerkID string) error
	}

	Service struct {
		repo Repository
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) CheckUniqueness(clerkID, email string) error {
	if err := svc.repo.CheckUniqueness(context.Background(), clerkID, email); err != nil {
		var field string
		switch err {
		case ErrClerkIDExists:
			field = "clerk_id"
		case ErrEmailExists:
			field = "email"
		default:
			return err
		}
		return core.NewValidationError(err, core.FieldError{Field: field, Error: err.Error()})
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, nu NewUser) (User, error) {
	now := time.Now().UTC()
	usr := User{
		ClerkID:   nu.ClerkID,
		Email:     nu.Email,
		Role:      nu.Role,
		FirstName: nu.FirstName,
		LastName:  nu.LastName,
		CreatedAt: now,
		UpdatedAt: now,
	}
	usr, err := svc.repo.CreateUser(ctx, usr)
	return usr, errors.Wrap(err, "creating user")
}

func (svc *Service) GetByClerkID(ctx context.Context, clerkID string) (User, error) {
	return svc.repo.GetUserByClerkID(ctx, clerkID)
}

// SyncCreated mirrors a `user.created` lifecycle event.
// Re-delivery of the same event is a no-op.
func (svc *Service) SyncCreated(ctx context.Context, su SyncedUser) error {
	if _, err := svc.repo.GetUserByClerkID(ctx, su.ClerkID); err == nil {
		return nil // already mirrored
	} else if errors.Cause(err) != ErrNotFound {
		return errors.Wrap(err, "finding user by clerk id")
	}

	now := time.Now().UTC()
	usr := User{
		ClerkID:   su.ClerkID,
		Email:     su.Email,
		FirstName: su.FirstName,
		LastName:  su.LastName,
		Role:      RoleStudent,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := svc.repo.CreateUser(ctx, usr)
	return errors.Wrap(err, "creating mirrored user")
}

// SyncUpdated mirrors a `user.updated` lifecycle event, creating the user when absent.
func (svc *Service) SyncUpdated(ctx context.Context, su SyncedUser) error {
	usr := User{
		ClerkID:   su.ClerkID,
		Email:     su.Email,
		FirstName: su.FirstName,
		LastName:  su.LastName,
		Role:      RoleStudent,
		UpdatedAt: time.Now().UTC(),
	}
	_, err := svc.repo.UpsertUserByClerkID(ctx, usr)
	return errors.Wrap(err, "upserting mirrored user")
}

// SyncDeleted mirrors a `user.deleted` lifecycle event; absence is not an error.
func (svc *Service) SyncDeleted(ctx context.Context, clerkID string) error {
	err := svc.repo.DeleteUserByClerkID(ctx, clerkID)
	if err != nil && errors.Cause(err) != ErrNotFound {
		return errors.Wrap(err, "deleting mirrored user")
	}
	return nil
}
