// Package service holds the business logic of the Connect server: suggestion
// ranking and the small collaborator surface that feeds it.
package service

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/connectapp/connect-server/internal/domain"
	domainerrors "github.com/connectapp/connect-server/internal/errors"
	"github.com/connectapp/connect-server/internal/id"
	"github.com/connectapp/connect-server/internal/metrics"
	"github.com/connectapp/connect-server/internal/similarity"
	"github.com/connectapp/connect-server/internal/store"
	"github.com/connectapp/connect-server/internal/taxonomy"
)

const (
	// DefaultLimit is the number of suggestions returned when the caller does not say.
	DefaultLimit = 10
	// DefaultLimitPerDomain caps each group of GetDomainSuggestions.
	DefaultLimitPerDomain = 5
	// OversampleLimit is how many ranked candidates GetDomainSuggestions
	// generates before grouping. It bounds which domains can appear at all.
	OversampleLimit = 50
)

// SuggestionService ranks peers by tag overlap and persists the ranking.
type SuggestionService struct {
	store     store.Store
	collector *TagCollector
	taxonomy  taxonomy.Provider
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// NewSuggestionService creates a suggestion service. m may be nil.
func NewSuggestionService(s store.Store, tax taxonomy.Provider, m *metrics.Metrics, logger *slog.Logger) *SuggestionService {
	return &SuggestionService{
		store:     s,
		collector: NewTagCollector(s),
		taxonomy:  tax,
		metrics:   m,
		logger:    logger,
	}
}

// GenerateSuggestions returns up to limit users ranked by overall Jaccard
// similarity with userID, best first, ties broken by lower user id.
// The returned ranking is persisted as one atomic batch before returning.
//
// A negative limit is treated as zero. A user without tags, including an
// unknown user, gets an empty list.
func (s *SuggestionService) GenerateSuggestions(ctx context.Context, userID int64, limit int) ([]domain.SuggestionResult, error) {
	start := time.Now()
	limit = max(limit, 0)

	// One taxonomy for the whole request, even if a reload lands mid-way.
	tax := s.taxonomy.Current()

	requester, err := s.collector.Collect(ctx, tax, userID)
	if err != nil {
		err = domainerrors.Storage(err, "collect requester tags")
		s.metrics.RecordGeneration(time.Since(start), 0, 0, err)
		return nil, err
	}
	userTags := requester.Flatten()
	if len(userTags) == 0 {
		s.logger.Debug("requester has no tags", "user_id", userID)
		s.metrics.RecordGeneration(time.Since(start), 0, 0, nil)
		return []domain.SuggestionResult{}, nil
	}

	users, err := s.store.ListUsers(ctx)
	if err != nil {
		err = domainerrors.Storage(err, "list candidates")
		s.metrics.RecordGeneration(time.Since(start), 0, 0, err)
		return nil, err
	}

	results := make([]domain.SuggestionResult, 0, len(users))
	scanned := 0
	for _, candidate := range users {
		if candidate.ID == userID {
			continue
		}
		scanned++

		buckets, err := s.collector.Collect(ctx, tax, candidate.ID)
		if err != nil {
			err = domainerrors.Storage(err, fmt.Sprintf("collect tags of user %d", candidate.ID))
			s.metrics.RecordGeneration(time.Since(start), scanned, 0, err)
			return nil, err
		}

		score, matches := similarity.Jaccard(userTags, buckets.Flatten())
		if score <= 0 {
			continue
		}

		primary, domainMatches := primaryDomain(tax, requester, buckets, matches)
		results = append(results, domain.SuggestionResult{
			User:         candidate,
			Score:        score,
			Domain:       primary,
			MatchingTags: domainMatches,
		})
	}

	slices.SortFunc(results, func(a, b domain.SuggestionResult) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.User.ID, b.User.ID)
	})
	results = results[:min(limit, len(results))]

	runID, err := s.persist(ctx, userID, results)
	if err != nil {
		s.metrics.RecordGeneration(time.Since(start), scanned, 0, err)
		return nil, err
	}

	s.metrics.RecordGeneration(time.Since(start), scanned, len(results), nil)
	s.logger.Debug("suggestions generated",
		"user_id", userID,
		"candidates", scanned,
		"results", len(results),
		"run_id", runID,
		"duration", time.Since(start),
	)

	return results, nil
}

// GetDomainSuggestions groups the top OversampleLimit suggestions by primary
// domain, keeping global rank order and at most limitPerDomain per group.
// Domains no candidate was assigned to are absent. limitPerDomain below one
// is treated as one.
func (s *SuggestionService) GetDomainSuggestions(ctx context.Context, userID int64, limitPerDomain int) (map[string][]domain.SuggestionResult, error) {
	limitPerDomain = max(limitPerDomain, 1)

	ranked, err := s.GenerateSuggestions(ctx, userID, OversampleLimit)
	if err != nil {
		return nil, err
	}

	grouped := make(map[string][]domain.SuggestionResult)
	for _, r := range ranked {
		if len(grouped[r.Domain]) < limitPerDomain {
			grouped[r.Domain] = append(grouped[r.Domain], r)
		}
	}
	for name := range grouped {
		s.metrics.RecordDomainGroup(name)
	}

	return grouped, nil
}

// primaryDomain picks the bucket with the strictly highest Jaccard score among
// the buckets the requester has tags in, walking them in taxonomy order with
// Other last. Ties keep the earlier bucket. When nothing scores above zero the
// result is DomainGeneral with the overall matches.
func primaryDomain(tax *taxonomy.Taxonomy, requester, candidate taxonomy.Buckets, overallMatches []string) (string, []string) {
	best, bestScore, bestMatches := domain.DomainGeneral, 0.0, overallMatches

	for _, name := range tax.BucketOrder() {
		mine := requester[name]
		if len(mine) == 0 {
			continue
		}
		score, matches := similarity.Jaccard(mine, candidate[name])
		if score > bestScore {
			best, bestScore, bestMatches = name, score, matches
		}
	}

	return best, bestMatches
}

// persist upserts the ranking in one transaction and returns the run id.
func (s *SuggestionService) persist(ctx context.Context, userID int64, results []domain.SuggestionResult) (string, error) {
	if len(results) == 0 {
		return "", nil
	}

	runID, err := id.NewRunID()
	if err != nil {
		return "", domainerrors.Wrap(err, domainerrors.CodeInternal, "generate run id")
	}

	now := time.Now().UTC()
	rows := make([]domain.Suggestion, 0, len(results))
	for _, r := range results {
		rows = append(rows, domain.Suggestion{
			UserID:          userID,
			SuggestedUserID: r.User.ID,
			SimilarityScore: r.Score,
			Domain:          r.Domain,
			RunID:           runID,
			CreatedAt:       now,
			UpdatedAt:       now,
		})
	}

	if err := s.store.UpsertSuggestions(ctx, rows); err != nil {
		s.metrics.RecordPersistFailure()
		s.logger.Error("failed to persist suggestions",
			"user_id", userID,
			"run_id", runID,
			"rows", len(rows),
			"error", err,
		)
		return "", domainerrors.Storage(err, "persist suggestions")
	}

	return runID, nil
}
