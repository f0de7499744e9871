package user_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/elimu/core"
	"github.com/trezcool/elimu/core/user"
	inmemdb "github.com/trezcool/elimu/storage/inmem"
)

func newTestService(t *testing.T) *user.Service {
	t.Helper()
	db, err := inmemdb.Open()
	require.NoError(t, err)
	return user.NewService(inmemdb.NewUserRepository(db))
}

func TestService_CheckUniqueness(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	_, err := svc.Create(ctx, user.NewUser{
		ClerkID:   "user_abc",
		Email:     "jane@test.cd",
		FirstName: "Jane",
		LastName:  "Doe",
		Role:      user.RoleStudent,
	})
	require.NoError(t, err)

	assert.NoError(t, svc.CheckUniqueness("user_xyz", "john@test.cd"))

	var vErr *core.ValidationError
	require.ErrorAs(t, svc.CheckUniqueness("user_abc", "john@test.cd"), &vErr)
	assert.Equal(t, user.ErrClerkIDExists, vErr.Err)
	require.ErrorAs(t, svc.CheckUniqueness("user_xyz", "jane@test.cd"), &vErr)
	assert.Equal(t, user.ErrEmailExists, vErr.Err)
}

func TestService_SyncCreated(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	su := user.SyncedUser{ClerkID: "user_abc", Email: "jane@test.cd", FirstName: "Jane", LastName: "Doe"}
	require.NoError(t, svc.SyncCreated(ctx, su))

	usr, err := svc.GetByClerkID(ctx, "user_abc")
	require.NoError(t, err)
	assert.Equal(t, "jane@test.cd", usr.Email)
	assert.Equal(t, user.RoleStudent, usr.Role, "mirrored users default to student")

	// event re-delivery is a no-op
	su.Email = "changed@test.cd"
	require.NoError(t, svc.SyncCreated(ctx, su))
	usr, err = svc.GetByClerkID(ctx, "user_abc")
	require.NoError(t, err)
	assert.Equal(t, "jane@test.cd", usr.Email)
}

func TestService_SyncUpdated(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	// updating an unseen user creates the mirror
	su := user.SyncedUser{ClerkID: "user_abc", Email: "jane@test.cd", FirstName: "Jane", LastName: "Doe"}
	require.NoError(t, svc.SyncUpdated(ctx, su))

	usr, err := svc.GetByClerkID(ctx, "user_abc")
	require.NoError(t, err)
	assert.Equal(t, "Jane", usr.FirstName)

	su.Email = "jane.doe@test.cd"
	su.LastName = "Smith"
	require.NoError(t, svc.SyncUpdated(ctx, su))

	usr, err = svc.GetByClerkID(ctx, "user_abc")
	require.NoError(t, err)
	assert.Equal(t, "jane.doe@test.cd", usr.Email)
	assert.Equal(t, "Smith", usr.LastName)
}

func TestService_SyncDeleted(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	require.NoError(t, svc.SyncCreated(ctx, user.SyncedUser{ClerkID: "user_abc", Email: "jane@test.cd"}))
	require.NoError(t, svc.SyncDeleted(ctx, "user_abc"))

	_, err := svc.GetByClerkID(ctx, "user_abc")
	assert.Equal(t, user.ErrNotFound, errors.Cause(err))

	// deleting an unknown user is not an error
	assert.NoError(t, svc.SyncDeleted(ctx, "user_abc"))
	assert.NoError(t, svc.SyncDeleted(ctx, "user_never_seen"))
}

func TestUser_FullName(t *testing.T) {
	tests := []struct {
		name string
		usr  user.User
		want string
	}{
		{name: "both", usr: user.User{FirstName: "Jane", LastName: "Doe"}, want: "Jane Doe"},
		{name: "first only", usr: user.User{FirstName: "Jane"}, want: "Jane"},
		{name: "last only", usr: user.User{LastName: "Doe"}, want: "Doe"},
		{name: "neither", usr: user.User{}, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.usr.FullName())
		})
	}
}
