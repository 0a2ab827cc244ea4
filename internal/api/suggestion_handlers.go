package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/connectapp/connect-server/internal/domain"
)

func (s *Server) registerSuggestionRoutes() {
	var guard huma.Middlewares
	if s.opts.RateLimiter != nil {
		guard = huma.Middlewares{s.rateLimitMiddleware(s.opts.RateLimiter)}
	}

	huma.Register(s.api, huma.Operation{
		OperationID: "getSuggestions",
		Method:      http.MethodGet,
		Path:        "/suggestions/{user_id}",
		Summary:     "Get suggestions",
		Description: "Ranks every other user by Jaccard similarity of interest tags and persists the result. " +
			"Ordered by similarity descending, then user id ascending.",
		Tags:        []string{"Suggestions"},
		Middlewares: guard,
	}, s.handleGetSuggestions)

	huma.Register(s.api, huma.Operation{
		OperationID: "getSuggestionsByDomain",
		Method:      http.MethodGet,
		Path:        "/suggestions/{user_id}/by-domain",
		Summary:     "Get suggestions grouped by domain",
		Description: "Groups the top 50 suggestions by primary domain, keeping global rank order within each group.",
		Tags:        []string{"Suggestions"},
		Middlewares: guard,
	}, s.handleGetSuggestionsByDomain)
}

// SuggestionResponse is one ranked peer in API responses.
type SuggestionResponse struct {
	UserID          int64    `json:"user_id" doc:"Suggested user ID"`
	Name            string   `json:"name" doc:"Display name"`
	Email           string   `json:"email" doc:"Email address"`
	Role            string   `json:"role" doc:"Member role"`
	SimilarityScore float64  `json:"similarity_score" doc:"Overall Jaccard similarity in [0,1]"`
	Domain          string   `json:"domain" doc:"Primary domain of the match"`
	MatchingTags    []string `json:"matching_tags" doc:"Tags shared within the primary domain, sorted"`
}

// GetSuggestionsInput contains parameters for ranking suggestions.
// The limit default is configurable, so it cannot be a default tag.
type GetSuggestionsInput struct {
	UserID int64 `path:"user_id" doc:"Requesting user ID"`
	Limit  int   `query:"limit" doc:"Maximum results; negative values are treated as 0"`

	limitSet bool
}

// Resolve records whether limit was sent, so an explicit 0 stays 0.
func (i *GetSuggestionsInput) Resolve(ctx huma.Context) []error {
	i.limitSet = ctx.Query("limit") != ""
	return nil
}

// SuggestionsOutput contains the ranked list.
type SuggestionsOutput struct {
	Body []SuggestionResponse
}

// GetDomainSuggestionsInput contains parameters for grouped suggestions.
type GetDomainSuggestionsInput struct {
	UserID         int64 `path:"user_id" doc:"Requesting user ID"`
	LimitPerDomain int   `query:"limit_per_domain" doc:"Maximum results per domain; values below 1 are treated as 1"`

	limitSet bool
}

func (i *GetDomainSuggestionsInput) Resolve(ctx huma.Context) []error {
	i.limitSet = ctx.Query("limit_per_domain") != ""
	return nil
}

// DomainSuggestionsOutput maps a domain to its ranked suggestions.
type DomainSuggestionsOutput struct {
	Body map[string][]SuggestionResponse
}

func (s *Server) handleGetSuggestions(ctx context.Context, input *GetSuggestionsInput) (*SuggestionsOutput, error) {
	limit := s.opts.DefaultLimit
	if input.limitSet {
		limit = input.Limit
	}

	// Unknown users are a 404 here; the ranker itself would return an empty list.
	if _, err := s.services.User.GetUser(ctx, input.UserID); err != nil {
		return nil, err
	}

	results, err := s.services.Suggestion.GenerateSuggestions(ctx, input.UserID, limit)
	if err != nil {
		return nil, err
	}

	return &SuggestionsOutput{Body: mapSuggestions(results)}, nil
}

func (s *Server) handleGetSuggestionsByDomain(ctx context.Context, input *GetDomainSuggestionsInput) (*DomainSuggestionsOutput, error) {
	limit := s.opts.DefaultLimitPerDomain
	if input.limitSet {
		limit = input.LimitPerDomain
	}

	if _, err := s.services.User.GetUser(ctx, input.UserID); err != nil {
		return nil, err
	}

	grouped, err := s.services.Suggestion.GetDomainSuggestions(ctx, input.UserID, limit)
	if err != nil {
		return nil, err
	}

	body := make(map[string][]SuggestionResponse, len(grouped))
	for name, results := range grouped {
		body[name] = mapSuggestions(results)
	}
	return &DomainSuggestionsOutput{Body: body}, nil
}

func mapSuggestions(results []domain.SuggestionResult) []SuggestionResponse {
	out := make([]SuggestionResponse, len(results))
	for i, r := range results {
		out[i] = SuggestionResponse{
			UserID:          r.User.ID,
			Name:            r.User.Name,
			Email:           r.User.Email,
			Role:            string(r.User.Role),
			SimilarityScore: r.Score,
			Domain:          r.Domain,
			MatchingTags:    r.MatchingTags,
		}
	}
	return out
}
