package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/connectapp/connect-server/internal/domain"
	"github.com/connectapp/connect-server/internal/service"
)

// suggestion is one printed result.
type suggestion struct {
	UserID          int64    `json:"user_id"`
	Name            string   `json:"name"`
	Email           string   `json:"email"`
	Role            string   `json:"role"`
	SimilarityScore float64  `json:"similarity_score"`
	Domain          string   `json:"domain"`
	MatchingTags    []string `json:"matching_tags"`
}

func toSuggestions(results []domain.SuggestionResult) []suggestion {
	out := make([]suggestion, 0, len(results))
	for _, r := range results {
		out = append(out, suggestion{
			UserID:          r.User.ID,
			Name:            r.User.Name,
			Email:           r.User.Email,
			Role:            string(r.User.Role),
			SimilarityScore: r.Score,
			Domain:          r.Domain,
			MatchingTags:    r.MatchingTags,
		})
	}
	return out
}

func parseUserID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid user id %q", arg)
	}
	return id, nil
}

func newSuggestCmd(opts *rootOptions) *cobra.Command {
	var limit int

	c := &cobra.Command{
		Use:   "suggest <user_id>",
		Short: "Compute ranked suggestions for a user",
		Long:  "Computes suggestions, stores them like the API does and prints them as JSON.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseUserID(args[0])
			if err != nil {
				return err
			}
			return opts.run(cmd, func(ctx context.Context, a *app) error {
				if _, err := a.users.GetUser(ctx, userID); err != nil {
					return err
				}
				results, err := a.suggestions.GenerateSuggestions(ctx, userID, limit)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), toSuggestions(results))
			})
		},
	}
	c.Flags().IntVar(&limit, "limit", service.DefaultLimit, "Maximum number of suggestions")
	return c
}

func newByDomainCmd(opts *rootOptions) *cobra.Command {
	var limitPerDomain int

	c := &cobra.Command{
		Use:   "by-domain <user_id>",
		Short: "Compute suggestions grouped by primary domain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseUserID(args[0])
			if err != nil {
				return err
			}
			return opts.run(cmd, func(ctx context.Context, a *app) error {
				if _, err := a.users.GetUser(ctx, userID); err != nil {
					return err
				}
				groups, err := a.suggestions.GetDomainSuggestions(ctx, userID, limitPerDomain)
				if err != nil {
					return err
				}
				out := make(map[string][]suggestion, len(groups))
				for name, results := range groups {
					out[name] = toSuggestions(results)
				}
				return writeJSON(cmd.OutOrStdout(), out)
			})
		},
	}
	c.Flags().IntVar(&limitPerDomain, "limit-per-domain", service.DefaultLimitPerDomain, "Maximum suggestions per domain")
	return c
}
