package sqlite

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/connectapp/connect-server/internal/domain"
	"github.com/connectapp/connect-server/internal/store"
)

func TestCreateAndGetUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := &domain.User{
		Name:      "Grace",
		Email:     "grace@example.edu",
		Role:      domain.RoleMentor,
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	require.NoError(t, s.CreateUser(ctx, u))
	assert.NotZero(t, u.ID)
	assert.Equal(t, domain.UserStatusActive, u.Status, "empty status defaults to active")

	got, err := s.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Grace", got.Name)
	assert.Equal(t, "grace@example.edu", got.Email)
	assert.Equal(t, domain.RoleMentor, got.Role)
	assert.Equal(t, domain.UserStatusActive, got.Status)
	assert.True(t, u.CreatedAt.Equal(got.CreatedAt))
}

func TestCreateUser_ExplicitID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := &domain.User{ID: 42, Name: "a", Email: "a@example.edu", Role: domain.RoleStudent}
	require.NoError(t, s.CreateUser(ctx, u))
	assert.Equal(t, int64(42), u.ID)

	dup := &domain.User{ID: 42, Name: "b", Email: "b@example.edu", Role: domain.RoleStudent}
	assert.ErrorIs(t, s.CreateUser(ctx, dup), store.ErrAlreadyExists)
}

func TestCreateUser_DuplicateEmailIgnoresCase(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	createUser(t, s, "ada")

	dup := &domain.User{Name: "other", Email: " ADA@example.edu", Role: domain.RoleStudent}
	assert.ErrorIs(t, s.CreateUser(ctx, dup), store.ErrAlreadyExists)
}

func TestGetUser_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetUser(context.Background(), 999)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestListUsers_OrderedByID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, id := range []int64{30, 10, 20} {
		u := &domain.User{ID: id, Name: "u", Email: fmt.Sprintf("u%d@example.edu", id), Role: domain.RoleStudent}
		require.NoError(t, s.CreateUser(ctx, u))
	}

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, int64(10), users[0].ID)
	assert.Equal(t, int64(20), users[1].ID)
	assert.Equal(t, int64(30), users[2].ID)
}

func TestCreateUserWithProfile(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := &domain.User{Name: "ada", Email: "ada@example.edu", Role: domain.RoleStudent}
	p := &domain.Profile{Course: "Maths", FieldsOfInterest: []string{"python"}}
	require.NoError(t, s.CreateUserWithProfile(ctx, u, p))
	assert.NotZero(t, u.ID)
	assert.Equal(t, u.ID, p.UserID)

	got, err := s.GetProfile(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Maths", got.Course)
	assert.Equal(t, []string{"python"}, got.FieldsOfInterest)

	bare := &domain.User{Name: "bob", Email: "bob@example.edu", Role: domain.RoleStudent}
	require.NoError(t, s.CreateUserWithProfile(ctx, bare, nil))
	_, err = s.GetProfile(ctx, bare.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestCreateUserWithProfile_ProfileFailureRollsBackUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.db.Exec("DROP TABLE profiles")
	require.NoError(t, err)

	u := &domain.User{Name: "ada", Email: "ada@example.edu", Role: domain.RoleStudent}
	err = s.CreateUserWithProfile(ctx, u, &domain.Profile{Course: "Maths"})
	require.Error(t, err)
	assert.Zero(t, u.ID)

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestCreateUserWithProfile_DuplicateEmailWritesNothing(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ada := createUser(t, s, "ada")

	dup := &domain.User{Name: "other", Email: ada.Email, Role: domain.RoleStudent}
	err := s.CreateUserWithProfile(ctx, dup, &domain.Profile{Course: "Maths"})
	assert.ErrorIs(t, err, store.ErrAlreadyExists)

	_, err = s.GetProfile(ctx, ada.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}
