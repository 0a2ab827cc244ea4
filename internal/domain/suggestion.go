package domain

import "time"

// DomainGeneral is reported when no taxonomy domain (nor "other") scored above zero.
const DomainGeneral = "general"

// Suggestion is the persisted form of one ranked recommendation.
// (UserID, SuggestedUserID) is unique; recomputation overwrites the row in place.
type Suggestion struct {
	UserID          int64     `json:"user_id"`
	SuggestedUserID int64     `json:"suggested_user_id"`
	SimilarityScore float64   `json:"similarity_score"`
	Domain          string    `json:"domain"`
	RunID           string    `json:"run_id"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// SuggestionResult is one ranked candidate as returned to callers.
// Score is the overall similarity; Domain is the primary domain and
// MatchingTags are the shared tags within that domain.
type SuggestionResult struct {
	User         *User
	Score        float64
	Domain       string
	MatchingTags []string
}
