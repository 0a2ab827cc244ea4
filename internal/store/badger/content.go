package badger

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"

	badgerdb "github.com/dgraph-io/badger/v4"

	"github.com/connectapp/connect-server/internal/domain"
	"github.com/connectapp/connect-server/internal/store"
)

// GetProfile retrieves a profile by user ID.
// Returns store.ErrNotFound if the user has no profile.
func (s *Store) GetProfile(ctx context.Context, userID int64) (*domain.Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var p domain.Profile
	err := s.db.View(func(txn *badgerdb.Txn) error {
		return getJSON(txn, idKey(prefixProfile, userID), &p)
	})
	if errors.Is(err, badgerdb.ErrKeyNotFound) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// SaveProfile creates or fully replaces a profile.
// Returns store.ErrNotFound if the user does not exist.
func (s *Store) SaveProfile(ctx context.Context, profile *domain.Profile) error {
	return s.update(ctx, func(txn *badgerdb.Txn) error {
		if err := requireUser(txn, profile.UserID); err != nil {
			return err
		}
		return setJSON(txn, idKey(prefixProfile, profile.UserID), profile)
	})
}

// CreatePost stores a post and sets post.ID when it was zero.
// Returns store.ErrNotFound if the author does not exist.
func (s *Store) CreatePost(ctx context.Context, post *domain.Post) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	id := post.ID
	if id == 0 {
		n, err := s.postSeq.Next()
		if err != nil {
			return fmt.Errorf("next post id: %w", err)
		}
		id = int64(n) + 1
	}

	p := *post
	p.ID = id

	err := s.update(ctx, func(txn *badgerdb.Txn) error {
		if err := requireUser(txn, p.UserID); err != nil {
			return err
		}
		key := idKey(prefixPost, p.UserID, p.ID)
		if taken, err := exists(txn, key); err != nil {
			return err
		} else if taken {
			return store.ErrAlreadyExists.WithCause(fmt.Errorf("post %d", p.ID))
		}
		return setJSON(txn, key, &p)
	})
	if err != nil {
		return err
	}

	post.ID = id
	return nil
}

// ListPostsByUser returns a user's posts ordered by id.
func (s *Store) ListPostsByUser(ctx context.Context, userID int64) ([]*domain.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var posts []*domain.Post
	err := s.db.View(func(txn *badgerdb.Txn) error {
		var err error
		posts, err = scanPrefix[domain.Post](txn, scopeKey(prefixPost, userID))
		return err
	})
	return posts, err
}

// UpsertSuggestions writes the batch in one transaction. Existing rows keep
// their CreatedAt; everything else is overwritten. Either every row is
// written or none is.
func (s *Store) UpsertSuggestions(ctx context.Context, suggestions []domain.Suggestion) error {
	if len(suggestions) == 0 {
		return nil
	}

	return s.update(ctx, func(txn *badgerdb.Txn) error {
		for _, sg := range suggestions {
			if err := requireUser(txn, sg.UserID); err != nil {
				return fmt.Errorf("upsert suggestion %d->%d: %w", sg.UserID, sg.SuggestedUserID, err)
			}
			if err := requireUser(txn, sg.SuggestedUserID); err != nil {
				return fmt.Errorf("upsert suggestion %d->%d: %w", sg.UserID, sg.SuggestedUserID, err)
			}

			key := idKey(prefixSuggestion, sg.UserID, sg.SuggestedUserID)

			var existing domain.Suggestion
			err := getJSON(txn, key, &existing)
			switch {
			case err == nil:
				sg.CreatedAt = existing.CreatedAt
			case !errors.Is(err, badgerdb.ErrKeyNotFound):
				return err
			}

			if err := setJSON(txn, key, &sg); err != nil {
				return err
			}
		}
		return nil
	})
}

// ListSuggestions returns the stored suggestions for a user, best first.
func (s *Store) ListSuggestions(ctx context.Context, userID int64) ([]*domain.Suggestion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []*domain.Suggestion
	err := s.db.View(func(txn *badgerdb.Txn) error {
		var err error
		out, err = scanPrefix[domain.Suggestion](txn, scopeKey(prefixSuggestion, userID))
		return err
	})
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(out, func(a, b *domain.Suggestion) int {
		if c := cmp.Compare(b.SimilarityScore, a.SimilarityScore); c != 0 {
			return c
		}
		return cmp.Compare(a.SuggestedUserID, b.SuggestedUserID)
	})
	return out, nil
}
