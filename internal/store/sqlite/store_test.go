package sqlite

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/connectapp/connect-server/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	s, err := Open(dbPath, logger)
	require.NoError(t, err, "open store")
	t.Cleanup(func() { s.Close() })
	return s
}

// createUser inserts a user with an auto-assigned id and returns it.
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

func TestOpen(t *testing.T) {
	s := newTestStore(t)

	var journalMode string
	require.NoError(t, s.db.QueryRow("PRAGMA journal_mode").Scan(&journalMode))
	assert.Equal(t, "wal", journalMode)

	// Check on several pooled connections, not just the first.
	ctx := context.Background()
	for range 3 {
		conn, err := s.db.Conn(ctx)
		require.NoError(t, err)
		var fk int
		require.NoError(t, conn.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&fk))
		assert.Equal(t, 1, fk)
		defer conn.Close()
	}

	for _, table := range []string{"users", "profiles", "posts", "suggestions"} {
		var name string
		err := s.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		assert.NoError(t, err, "table %s not found", table)
	}
}

func TestOpenClose_Reopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	logger := slog.New(slog.DiscardHandler)

	s, err := Open(dbPath, logger)
	require.NoError(t, err)
	createUser(t, s, "ada")
	require.NoError(t, s.Close())

	// Schema is idempotent and data survives.
	s2, err := Open(dbPath, logger)
	require.NoError(t, err)
	defer s2.Close()

	users, err := s2.ListUsers(context.Background())
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestPing(t *testing.T) {
	s := newTestStore(t)
	assert.NoError(t, s.Ping(context.Background()))
}

func TestEncodeDecodeTags_NilVersusEmpty(t *testing.T) {
	null, err := encodeTags(nil)
	require.NoError(t, err)
	assert.False(t, null.Valid)

	empty, err := encodeTags([]string{})
	require.NoError(t, err)
	assert.Equal(t, "[]", empty.String)

	decoded, err := decodeTags(null)
	require.NoError(t, err)
	assert.Nil(t, decoded)

	decoded, err = decodeTags(empty)
	require.NoError(t, err)
	assert.NotNil(t, decoded)
	assert.Empty(t, decoded)
}
