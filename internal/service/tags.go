package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/connectapp/connect-server/internal/domain"
	"github.com/connectapp/connect-server/internal/store"
	"github.com/connectapp/connect-server/internal/taxonomy"
)

// TagSource is the read side of the store the tag collector needs.
type TagSource interface {
	GetProfile(ctx context.Context, userID int64) (*domain.Profile, error)
	ListPostsByUser(ctx context.Context, userID int64) ([]*domain.Post, error)
}

// TagCollector builds a user's tag set from profile interests and post tags.
// Nothing is cached; every call reads the current state of the store.
type TagCollector struct {
	source TagSource
}

// NewTagCollector creates a tag collector reading from source.
func NewTagCollector(source TagSource) *TagCollector {
	return &TagCollector{source: source}
}

// Tags returns the union of a user's profile interests and post tags,
// in first-seen order without duplicates. A user without a profile, without
// posts, or unknown to the store simply contributes nothing.
func (c *TagCollector) Tags(ctx context.Context, userID int64) ([]string, error) {
	var tags []string
	seen := make(map[string]struct{})
	add := func(list []string) {
		for _, tag := range list {
			if _, ok := seen[tag]; ok {
				continue
			}
			seen[tag] = struct{}{}
			tags = append(tags, tag)
		}
	}

	profile, err := c.source.GetProfile(ctx, userID)
	switch {
	case errors.Is(err, store.ErrNotFound):
	case err != nil:
		return nil, fmt.Errorf("get profile %d: %w", userID, err)
	default:
		add(profile.FieldsOfInterest)
	}

	posts, err := c.source.ListPostsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list posts of %d: %w", userID, err)
	}
	for _, p := range posts {
		// Posts without tags carry a nil slice.
		add(p.Tags)
	}

	return tags, nil
}

// Collect returns the user's tags bucketed by tax.
func (c *TagCollector) Collect(ctx context.Context, tax *taxonomy.Taxonomy, userID int64) (taxonomy.Buckets, error) {
	tags, err := c.Tags(ctx, userID)
	if err != nil {
		return nil, err
	}
	return tax.Bucket(tags), nil
}
