// Package store defines the persistence interface for the Connect server.
//
// Two implementations exist: internal/store/sqlite (the default) and
// internal/store/badger. Both satisfy Store and share the sentinel errors
// declared in this package.
package store

import (
	"context"

	"github.com/connectapp/connect-server/internal/domain"
)

// Store defines the interface for all persistence operations.
type Store interface {
	// Lifecycle
	Close() error
	Ping(ctx context.Context) error

	// Users
	// CreateUser assigns user.ID when it is zero. Returns ErrAlreadyExists
	// when the id or the case-insensitive email is taken.
	CreateUser(ctx context.Context, user *domain.User) error
	// CreateUserWithProfile is CreateUser plus, when profile is non-nil, a
	// profile write for the new id in the same transaction.
	CreateUserWithProfile(ctx context.Context, user *domain.User, profile *domain.Profile) error
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	// ListUsers returns every user ordered by id.
	ListUsers(ctx context.Context) ([]*domain.User, error)

	// Profiles
	GetProfile(ctx context.Context, userID int64) (*domain.Profile, error)
	// SaveProfile creates or replaces a profile. Returns ErrNotFound when the user does not exist.
	SaveProfile(ctx context.Context, profile *domain.Profile) error

	// Posts
	// CreatePost assigns post.ID. Returns ErrNotFound when the author does not exist.
	CreatePost(ctx context.Context, post *domain.Post) error
	// ListPostsByUser returns a user's posts ordered by id.
	ListPostsByUser(ctx context.Context, userID int64) ([]*domain.Post, error)

	// Suggestions
	// UpsertSuggestions writes the batch atomically: every row is inserted or
	// overwritten, or none is. An existing row keeps its CreatedAt.
	UpsertSuggestions(ctx context.Context, suggestions []domain.Suggestion) error
	// ListSuggestions returns the stored rows for a user, highest score first
	// with ties broken by suggested user id.
	ListSuggestions(ctx context.Context, userID int64) ([]*domain.Suggestion, error)
}
