package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/connectapp/connect-server/internal/domain"
	"github.com/connectapp/connect-server/internal/store"
)

// userColumns is the ordered list of columns selected in user queries.
// Must match the scan order in scanUser.
const userColumns = `id, name, email, role, status, created_at`

// scanUser scans a sql.Row (or sql.Rows via its Scan method) into a domain.User.
func scanUser(scanner interface{ Scan(dest ...any) error }) (*domain.User, error) {
	var (
		u         domain.User
		role      string
		status    string
		createdAt string
	)

	err := scanner.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&role,
		&status,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	u.Role = domain.Role(role)
	u.Status = domain.UserStatus(status)

	u.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}

	return &u, nil
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// CreateUser inserts a new user and sets user.ID when it was zero.
// Returns store.ErrAlreadyExists if the id or email is already taken.
func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	id, status, err := insertUser(ctx, s.db, user)
	if err != nil {
		return err
	}
	user.ID = id
	user.Status = status
	return nil
}

// CreateUserWithProfile inserts a user and, when profile is non-nil, its
// profile in one transaction. Nothing is written if either insert fails.
func (s *Store) CreateUserWithProfile(ctx context.Context, user *domain.User, profile *domain.Profile) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	id, status, err := insertUser(ctx, tx, user)
	if err != nil {
		return err
	}

	if profile != nil {
		p := *profile
		p.UserID = id
		if err := upsertProfile(ctx, tx, &p); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit user: %w", err)
	}

	user.ID = id
	user.Status = status
	if profile != nil {
		profile.UserID = id
	}
	return nil
}

// insertUser returns the stored id and status without touching user, so a
// rolled back transaction leaves the caller's value unchanged.
func insertUser(ctx context.Context, db execer, user *domain.User) (int64, domain.UserStatus, error) {
	status := user.Status
	if status == "" {
		status = domain.UserStatusActive
	}

	res, err := db.ExecContext(ctx, `
		INSERT INTO users (id, name, email, email_lower, role, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		nullInt64(user.ID),
		user.Name,
		user.Email,
		strings.ToLower(strings.TrimSpace(user.Email)),
		string(user.Role),
		string(status),
		formatTime(user.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, "", store.ErrAlreadyExists.WithCause(err)
		}
		return 0, "", fmt.Errorf("insert user: %w", err)
	}

	id := user.ID
	if id == 0 {
		if id, err = res.LastInsertId(); err != nil {
			return 0, "", fmt.Errorf("read user id: %w", err)
		}
	}
	return id, status, nil
}

// GetUser retrieves a user by ID.
// Returns store.ErrNotFound if the user does not exist.
func (s *Store) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)

	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// ListUsers returns all users ordered by id.
func (s *Store) ListUsers(ctx context.Context) ([]*domain.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}
