package service

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/connectapp/connect-server/internal/domain"
	domainerrors "github.com/connectapp/connect-server/internal/errors"
	"github.com/connectapp/connect-server/internal/store"
	"github.com/connectapp/connect-server/internal/store/sqlite"
	"github.com/connectapp/connect-server/internal/validation"
)

func setupTestUserService(t *testing.T) (*UserService, *sqlite.Store) {
	t.Helper()
	s := newTestSQLite(t)
	return NewUserService(s, validation.New(), slog.New(slog.DiscardHandler)), s
}

func TestRegisterUser(t *testing.T) {
	svc, s := setupTestUserService(t)
	ctx := context.Background()

	user, err := svc.RegisterUser(ctx, RegisterUserInput{
		Name:             "  Ada Lovelace ",
		Email:            "ada@example.edu",
		Role:             "student",
		Course:           "Computer Science",
		FieldsOfInterest: []string{"python", "math", "python"},
	})
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "Ada Lovelace", user.Name)
	assert.Equal(t, domain.RoleStudent, user.Role)
	assert.Equal(t, domain.UserStatusActive, user.Status)

	profile, err := s.GetProfile(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Computer Science", profile.Course)
	assert.Equal(t, []string{"python", "math"}, profile.FieldsOfInterest)
}

func TestRegisterUser_WithoutProfileFields(t *testing.T) {
	svc, _ := setupTestUserService(t)
	ctx := context.Background()

	user, err := svc.RegisterUser(ctx, RegisterUserInput{Name: "Bob", Email: "bob@example.edu", Role: "mentor"})
	require.NoError(t, err)

	profile, err := svc.GetProfile(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, profile.UserID)
	assert.Nil(t, profile.FieldsOfInterest)
}

// profileWriteFailStore fails any user creation that carries a profile.
type profileWriteFailStore struct {
	store.Store
}

func (s profileWriteFailStore) CreateUserWithProfile(ctx context.Context, user *domain.User, profile *domain.Profile) error {
	if profile != nil {
		return errors.New("disk full")
	}
	return s.Store.CreateUserWithProfile(ctx, user, nil)
}

func TestRegisterUser_ProfileFailureLeavesNoUser(t *testing.T) {
	base := newTestSQLite(t)
	svc := NewUserService(profileWriteFailStore{Store: base}, validation.New(), slog.New(slog.DiscardHandler))
	ctx := context.Background()

	_, err := svc.RegisterUser(ctx, RegisterUserInput{
		Name:   "Ada",
		Email:  "ada@example.edu",
		Role:   "student",
		Course: "Maths",
	})
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrStorage))

	users, err := base.ListUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)

	// The same email is still free.
	_, err = svc.RegisterUser(ctx, RegisterUserInput{Name: "Ada", Email: "ada@example.edu", Role: "student"})
	require.NoError(t, err)
}

func TestRegisterUser_Validation(t *testing.T) {
	svc, _ := setupTestUserService(t)

	tests := []struct {
		name  string
		in    RegisterUserInput
		field string
	}{
		{name: "missing name", in: RegisterUserInput{Email: "a@b.edu", Role: "student"}, field: "name"},
		{name: "blank name", in: RegisterUserInput{Name: "   ", Email: "a@b.edu", Role: "student"}, field: "name"},
		{name: "bad email", in: RegisterUserInput{Name: "A", Email: "nope", Role: "student"}, field: "email"},
		{name: "unknown role", in: RegisterUserInput{Name: "A", Email: "a@b.edu", Role: "teacher"}, field: "role"},
		{name: "blank interest", in: RegisterUserInput{Name: "A", Email: "a@b.edu", Role: "student", FieldsOfInterest: []string{""}}, field: "fields_of_interest[0]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.RegisterUser(context.Background(), tt.in)
			require.Error(t, err)
			assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))

			var domainErr *domainerrors.Error
			require.ErrorAs(t, err, &domainErr)
			assert.Contains(t, domainErr.Details, tt.field)
		})
	}
}

func TestRegisterUser_DuplicateEmail(t *testing.T) {
	svc, _ := setupTestUserService(t)
	ctx := context.Background()

	_, err := svc.RegisterUser(ctx, RegisterUserInput{Name: "Ada", Email: "ada@example.edu", Role: "student"})
	require.NoError(t, err)

	_, err = svc.RegisterUser(ctx, RegisterUserInput{Name: "Other Ada", Email: "ADA@example.edu", Role: "alumni"})
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrAlreadyExists))
}

func TestGetUser_NotFound(t *testing.T) {
	svc, _ := setupTestUserService(t)

	_, err := svc.GetUser(context.Background(), 404)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))
}

func TestUpdateInterests(t *testing.T) {
	svc, _ := setupTestUserService(t)
	ctx := context.Background()

	user, err := svc.RegisterUser(ctx, RegisterUserInput{Name: "Ada", Email: "ada@example.edu", Role: "student", Course: "Physics"})
	require.NoError(t, err)

	profile, err := svc.UpdateInterests(ctx, user.ID, UpdateInterestsInput{FieldsOfInterest: []string{"research", "research", "ai"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"research", "ai"}, profile.FieldsOfInterest)
	assert.Equal(t, "Physics", profile.Course, "other profile fields are kept")

	profile, err = svc.UpdateInterests(ctx, user.ID, UpdateInterestsInput{})
	require.NoError(t, err)
	assert.Nil(t, profile.FieldsOfInterest)
}

func TestUpdateInterests_UnknownUser(t *testing.T) {
	svc, _ := setupTestUserService(t)

	_, err := svc.UpdateInterests(context.Background(), 7, UpdateInterestsInput{FieldsOfInterest: []string{"go"}})
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))
}

func TestCreatePost(t *testing.T) {
	svc, _ := setupTestUserService(t)
	ctx := context.Background()

	user, err := svc.RegisterUser(ctx, RegisterUserInput{Name: "Ada", Email: "ada@example.edu", Role: "student"})
	require.NoError(t, err)

	post, err := svc.CreatePost(ctx, user.ID, CreatePostInput{Content: "Hello", Tags: []string{"go", "web"}})
	require.NoError(t, err)
	assert.NotZero(t, post.ID)

	untagged, err := svc.CreatePost(ctx, user.ID, CreatePostInput{Content: "No tags"})
	require.NoError(t, err)
	assert.Nil(t, untagged.Tags)

	posts, err := svc.ListPosts(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, []string{"go", "web"}, posts[0].Tags)
	assert.Nil(t, posts[1].Tags)
}

func TestCreatePost_Errors(t *testing.T) {
	svc, _ := setupTestUserService(t)
	ctx := context.Background()

	_, err := svc.CreatePost(ctx, 99, CreatePostInput{Content: "orphan"})
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))

	_, err = svc.CreatePost(ctx, 99, CreatePostInput{})
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))
}

func TestListSuggestionsFor(t *testing.T) {
	svc, s := setupTestUserService(t)
	ctx := context.Background()

	requester := createTaggedUser(t, s, "ada", []string{"python"})
	candidate := createTaggedUser(t, s, "bob", []string{"python"})

	rows, err := svc.ListSuggestionsFor(ctx, requester.ID)
	require.NoError(t, err)
	assert.Empty(t, rows)

	_, err = svc.ListSuggestionsFor(ctx, 1234)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))

	require.NoError(t, s.UpsertSuggestions(ctx, []domain.Suggestion{{
		UserID:          requester.ID,
		SuggestedUserID: candidate.ID,
		SimilarityScore: 1,
		Domain:          "technical",
		RunID:           "run-test",
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}}))
	rows, err = svc.ListSuggestionsFor(ctx, requester.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, candidate.ID, rows[0].SuggestedUserID)
}
