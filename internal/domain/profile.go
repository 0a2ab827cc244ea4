package domain

import "time"

// Profile holds the self-declared part of a user's identity.
// Stored separately from User so the account subsystem owns only auth concerns.
type Profile struct {
	UserID      int64  `json:"user_id"`
	YearOfStudy string `json:"year_of_study,omitempty"` // Students only
	Course      string `json:"course,omitempty"`
	// FieldsOfInterest is nil when the user never declared any interests.
	FieldsOfInterest []string  `json:"fields_of_interest"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// NewProfile creates an empty profile for a user.
func NewProfile(userID int64) *Profile {
	return &Profile{
		UserID:    userID,
		UpdatedAt: time.Now(),
	}
}
