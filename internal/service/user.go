package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/connectapp/connect-server/internal/domain"
	domainerrors "github.com/connectapp/connect-server/internal/errors"
	"github.com/connectapp/connect-server/internal/store"
	"github.com/connectapp/connect-server/internal/validation"
)

// RegisterUserInput contains the data needed to register a user.
type RegisterUserInput struct {
	Name             string   `json:"name" yaml:"name" validate:"required,max=100"`
	Email            string   `json:"email" yaml:"email" validate:"required,email,max=254"`
	Role             string   `json:"role" yaml:"role" validate:"required,role"`
	YearOfStudy      string   `json:"year_of_study,omitempty" yaml:"year_of_study" validate:"max=20"`
	Course           string   `json:"course,omitempty" yaml:"course" validate:"max=100"`
	FieldsOfInterest []string `json:"fields_of_interest,omitempty" yaml:"fields_of_interest" validate:"max=50,dive,tag,max=50"`
}

// UpdateInterestsInput replaces a user's declared interests. Nil clears them.
type UpdateInterestsInput struct {
	FieldsOfInterest []string `json:"fields_of_interest,omitempty" validate:"max=50,dive,tag,max=50"`
}

// CreatePostInput contains the data for a new post.
type CreatePostInput struct {
	Content string   `json:"content" yaml:"content" validate:"required,max=5000"`
	Tags    []string `json:"tags,omitempty" yaml:"tags" validate:"max=20,dive,tag,max=50"`
}

// UserService is the write surface feeding the suggestion engine:
// registration, interests and posts.
type UserService struct {
	store     store.Store
	validator *validation.Validator
	logger    *slog.Logger
}

// NewUserService creates a new user service.
func NewUserService(s store.Store, v *validation.Validator, logger *slog.Logger) *UserService {
	return &UserService{
		store:     s,
		validator: v,
		logger:    logger,
	}
}

// RegisterUser creates a user and, when any profile field is given, its profile.
func (s *UserService) RegisterUser(ctx context.Context, in RegisterUserInput) (*domain.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	user := &domain.User{
		Name:      in.Name,
		Email:     in.Email,
		Role:      domain.Role(in.Role),
		Status:    domain.UserStatusActive,
		CreatedAt: time.Now().UTC(),
	}

	var profile *domain.Profile
	if in.YearOfStudy != "" || in.Course != "" || in.FieldsOfInterest != nil {
		profile = domain.NewProfile(0)
		profile.YearOfStudy = in.YearOfStudy
		profile.Course = in.Course
		profile.FieldsOfInterest = dedupe(in.FieldsOfInterest)
	}

	if err := s.store.CreateUserWithProfile(ctx, user, profile); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.AlreadyExistsf("email %q is already registered", in.Email)
		}
		return nil, domainerrors.Storage(err, "create user")
	}

	s.logger.Info("user registered",
		"user_id", user.ID,
		"role", user.Role,
	)

	return user, nil
}

// GetUser returns a user or a not found error.
func (s *UserService) GetUser(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, userErr(err, userID)
	}
	return user, nil
}

// GetProfile returns the user's profile, or an empty one if none was saved.
func (s *UserService) GetProfile(ctx context.Context, userID int64) (*domain.Profile, error) {
	if _, err := s.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	profile, err := s.store.GetProfile(ctx, userID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return domain.NewProfile(userID), nil
	case err != nil:
		return nil, domainerrors.Storage(err, "get profile")
	}
	return profile, nil
}

// UpdateInterests replaces the user's fields of interest, keeping the rest
// of the profile. Duplicate interests collapse.
func (s *UserService) UpdateInterests(ctx context.Context, userID int64, in UpdateInterestsInput) (*domain.Profile, error) {
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	profile, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile.FieldsOfInterest = dedupe(in.FieldsOfInterest)
	profile.UpdatedAt = time.Now().UTC()

	if err := s.store.SaveProfile(ctx, profile); err != nil {
		return nil, userErr(err, userID)
	}

	s.logger.Debug("interests updated",
		"user_id", userID,
		"count", len(profile.FieldsOfInterest),
	)

	return profile, nil
}

// CreatePost stores a post authored by userID.
func (s *UserService) CreatePost(ctx context.Context, userID int64, in CreatePostInput) (*domain.Post, error) {
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	post := &domain.Post{
		UserID:    userID,
		Content:   in.Content,
		Tags:      in.Tags,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.CreatePost(ctx, post); err != nil {
		return nil, userErr(err, userID)
	}

	return post, nil
}

// ListPosts returns the user's posts, oldest first.
func (s *UserService) ListPosts(ctx context.Context, userID int64) ([]*domain.Post, error) {
	if _, err := s.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	posts, err := s.store.ListPostsByUser(ctx, userID)
	if err != nil {
		return nil, domainerrors.Storage(err, "list posts")
	}
	return posts, nil
}

// ListSuggestionsFor returns the suggestion rows last persisted for a user.
func (s *UserService) ListSuggestionsFor(ctx context.Context, userID int64) ([]*domain.Suggestion, error) {
	if _, err := s.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	rows, err := s.store.ListSuggestions(ctx, userID)
	if err != nil {
		return nil, domainerrors.Storage(err, "list suggestions")
	}
	return rows, nil
}

// userErr maps a store error about userID to a domain error.
func userErr(err error, userID int64) error {
	if errors.Is(err, store.ErrNotFound) {
		return domainerrors.NotFoundf("user %d not found", userID)
	}
	return domainerrors.Storage(err, fmt.Sprintf("user %d", userID))
}

// dedupe drops repeated tags, keeping first occurrences. Nil stays nil.
func dedupe(tags []string) []string {
	if tags == nil {
		return nil
	}
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
