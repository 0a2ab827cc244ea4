package badger

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/connectapp/connect-server/internal/domain"
	"github.com/connectapp/connect-server/internal/store"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir(), slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func createUser(t *testing.T, s *Store, name string) *domain.User {
	t.Helper()
	u := &domain.User{
		Name:      name,
		Email:     name + "@example.edu",
		Role:      domain.RoleStudent,
		CreatedAt: time.Now(),
	}
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}

func TestIDKey_SortsNumerically(t *testing.T) {
	assert.Less(t, string(idKey(prefixUser, 9)), string(idKey(prefixUser, 10)))
	assert.Equal(t, "post:00000000000000000001:00000000000000000002", string(idKey(prefixPost, 1, 2)))
}

func TestUsers(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	ada := createUser(t, s, "ada")
	bob := createUser(t, s, "bob")
	assert.Equal(t, int64(1), ada.ID)
	assert.Equal(t, int64(2), bob.ID)
	assert.Equal(t, domain.UserStatusActive, ada.Status)

	got, err := s.GetUser(ctx, ada.ID)
	require.NoError(t, err)
	assert.Equal(t, "ada", got.Name)

	_, err = s.GetUser(ctx, 999)
	assert.ErrorIs(t, err, store.ErrNotFound)

	dup := &domain.User{Name: "x", Email: "ADA@example.edu", Role: domain.RoleStudent}
	assert.ErrorIs(t, s.CreateUser(ctx, dup), store.ErrAlreadyExists)

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, ada.ID, users[0].ID)
	assert.Equal(t, bob.ID, users[1].ID)
}

func TestCreateUser_SkipsExplicitlyTakenIDs(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateUser(ctx, &domain.User{ID: 1, Name: "a", Email: "a@x.edu", Role: domain.RoleStudent}))

	b := createUser(t, s, "b")
	assert.Equal(t, int64(2), b.ID)
}

func TestCreateUserWithProfile(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	u := &domain.User{Name: "ada", Email: "ada@example.edu", Role: domain.RoleStudent}
	p := &domain.Profile{Course: "Maths", FieldsOfInterest: []string{"python"}}
	require.NoError(t, s.CreateUserWithProfile(ctx, u, p))
	assert.Equal(t, int64(1), u.ID)
	assert.Equal(t, u.ID, p.UserID)

	got, err := s.GetProfile(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Maths", got.Course)

	t.Run("duplicate email writes no profile", func(t *testing.T) {
		dup := &domain.User{ID: 7, Name: "x", Email: "ADA@example.edu", Role: domain.RoleStudent}
		err := s.CreateUserWithProfile(ctx, dup, &domain.Profile{Course: "Art"})
		assert.ErrorIs(t, err, store.ErrAlreadyExists)

		_, err = s.GetUser(ctx, 7)
		assert.ErrorIs(t, err, store.ErrNotFound)
		_, err = s.GetProfile(ctx, 7)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestProfilesAndPosts(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	ada := createUser(t, s, "ada")

	_, err := s.GetProfile(ctx, ada.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	p := domain.NewProfile(ada.ID)
	p.FieldsOfInterest = []string{"go"}
	require.NoError(t, s.SaveProfile(ctx, p))

	got, err := s.GetProfile(ctx, ada.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"go"}, got.FieldsOfInterest)

	assert.ErrorIs(t, s.SaveProfile(ctx, domain.NewProfile(404)), store.ErrNotFound)

	require.NoError(t, s.CreatePost(ctx, &domain.Post{UserID: ada.ID, Content: "one", Tags: []string{"docker"}}))
	require.NoError(t, s.CreatePost(ctx, &domain.Post{UserID: ada.ID, Content: "two"}))
	assert.ErrorIs(t, s.CreatePost(ctx, &domain.Post{UserID: 404, Content: "x"}), store.ErrNotFound)

	posts, err := s.ListPostsByUser(ctx, ada.ID)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "one", posts[0].Content)
	assert.Equal(t, []string{"docker"}, posts[0].Tags)
	assert.Nil(t, posts[1].Tags)
}

func TestUpsertSuggestions(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	a, b, c := createUser(t, s, "a"), createUser(t, s, "b"), createUser(t, s, "c")

	first := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	second := first.Add(time.Hour)

	require.NoError(t, s.UpsertSuggestions(ctx, []domain.Suggestion{
		{UserID: a.ID, SuggestedUserID: b.ID, SimilarityScore: 0.2, Domain: "technical", RunID: "r1", CreatedAt: first, UpdatedAt: first},
		{UserID: a.ID, SuggestedUserID: c.ID, SimilarityScore: 0.2, Domain: "other", RunID: "r1", CreatedAt: first, UpdatedAt: first},
	}))
	require.NoError(t, s.UpsertSuggestions(ctx, []domain.Suggestion{
		{UserID: a.ID, SuggestedUserID: c.ID, SimilarityScore: 0.9, Domain: "creative", RunID: "r2", CreatedAt: second, UpdatedAt: second},
	}))

	got, err := s.ListSuggestions(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, c.ID, got[0].SuggestedUserID)
	assert.Equal(t, 0.9, got[0].SimilarityScore)
	assert.Equal(t, "r2", got[0].RunID)
	assert.True(t, first.Equal(got[0].CreatedAt), "created_at is kept")
	assert.True(t, second.Equal(got[0].UpdatedAt))
	assert.Equal(t, b.ID, got[1].SuggestedUserID)
}

func TestUpsertSuggestions_RollsBackWholeBatch(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	a, b := createUser(t, s, "a"), createUser(t, s, "b")

	err := s.UpsertSuggestions(ctx, []domain.Suggestion{
		{UserID: a.ID, SuggestedUserID: b.ID, SimilarityScore: 0.5, Domain: "technical", RunID: "r"},
		{UserID: a.ID, SuggestedUserID: 9999, SimilarityScore: 0.5, Domain: "technical", RunID: "r"},
	})
	assert.ErrorIs(t, err, store.ErrNotFound)

	got, err := s.ListSuggestions(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestUpsertSuggestions_ConcurrentWritersLastWins(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	a, b := createUser(t, s, "a"), createUser(t, s, "b")

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Go(func() {
			_ = s.UpsertSuggestions(ctx, []domain.Suggestion{{
				UserID: a.ID, SuggestedUserID: b.ID, SimilarityScore: 0.5,
				Domain: "technical", RunID: fmt.Sprintf("run-%d", i),
			}})
		})
	}
	wg.Wait()

	got, err := s.ListSuggestions(ctx, a.ID)
	require.NoError(t, err)
	assert.Len(t, got, 1, "one row per pair regardless of interleaving")
}

func TestPing(t *testing.T) {
	s := setupTestStore(t)
	assert.NoError(t, s.Ping(context.Background()))
}
