package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/connectapp/connect-server/internal/domain"
	"github.com/connectapp/connect-server/internal/service"
)

func (s *Server) registerUserRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "registerUser",
		Method:        http.MethodPost,
		Path:          "/api/v1/users",
		Summary:       "Register user",
		Description:   "Creates a user and, when profile fields are given, their profile",
		Tags:          []string{"Users"},
		DefaultStatus: http.StatusCreated,
	}, s.handleRegisterUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "getUser",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/{user_id}",
		Summary:     "Get user",
		Description: "Returns a user with their profile",
		Tags:        []string{"Users"},
	}, s.handleGetUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateInterests",
		Method:      http.MethodPut,
		Path:        "/api/v1/users/{user_id}/interests",
		Summary:     "Replace interests",
		Description: "Replaces the user's declared fields of interest. Omit the list to clear it.",
		Tags:        []string{"Users"},
	}, s.handleUpdateInterests)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createPost",
		Method:        http.MethodPost,
		Path:          "/api/v1/users/{user_id}/posts",
		Summary:       "Create post",
		Description:   "Creates a post authored by the user",
		Tags:          []string{"Posts"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreatePost)

	huma.Register(s.api, huma.Operation{
		OperationID: "listPosts",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/{user_id}/posts",
		Summary:     "List posts",
		Description: "Returns the user's posts, oldest first",
		Tags:        []string{"Posts"},
	}, s.handleListPosts)

	huma.Register(s.api, huma.Operation{
		OperationID: "listStoredSuggestions",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/{user_id}/suggestions/stored",
		Summary:     "List stored suggestions",
		Description: "Returns the suggestion rows persisted by the last generation runs, without recomputing",
		Tags:        []string{"Suggestions"},
	}, s.handleListStoredSuggestions)
}

// UserResponse contains user data in API responses.
type UserResponse struct {
	ID        int64     `json:"user_id" doc:"User ID"`
	Name      string    `json:"name" doc:"Display name"`
	Email     string    `json:"email" doc:"Email address"`
	Role      string    `json:"role" doc:"Member role"`
	Status    string    `json:"status" doc:"Account status"`
	CreatedAt time.Time `json:"created_at" doc:"Registration time"`
}

// ProfileResponse contains profile data in API responses.
type ProfileResponse struct {
	YearOfStudy      string    `json:"year_of_study,omitempty" doc:"Year of study"`
	Course           string    `json:"course,omitempty" doc:"Course"`
	FieldsOfInterest []string  `json:"fields_of_interest" doc:"Declared interests"`
	UpdatedAt        time.Time `json:"updated_at" doc:"Last profile change"`
}

// UserDetailResponse is a user with their profile.
type UserDetailResponse struct {
	UserResponse
	Profile ProfileResponse `json:"profile" doc:"Profile"`
}

// PostResponse contains post data in API responses.
type PostResponse struct {
	ID        int64     `json:"post_id" doc:"Post ID"`
	UserID    int64     `json:"user_id" doc:"Author ID"`
	Content   string    `json:"content" doc:"Post body"`
	Tags      []string  `json:"tags" doc:"Tags; null when the post has none"`
	CreatedAt time.Time `json:"created_at" doc:"Creation time"`
}

// StoredSuggestionResponse is a persisted suggestion row.
type StoredSuggestionResponse struct {
	SuggestedUserID int64     `json:"suggested_user_id" doc:"Suggested user ID"`
	SimilarityScore float64   `json:"similarity_score" doc:"Overall similarity at computation time"`
	Domain          string    `json:"domain" doc:"Primary domain at computation time"`
	RunID           string    `json:"run_id" doc:"Generation run that last wrote the row"`
	CreatedAt       time.Time `json:"created_at" doc:"First computation"`
	UpdatedAt       time.Time `json:"updated_at" doc:"Last recomputation"`
}

// RegisterUserInput wraps the registration body for Huma.
type RegisterUserInput struct {
	Body service.RegisterUserInput
}

// UserIDInput identifies a user by path.
type UserIDInput struct {
	UserID int64 `path:"user_id" doc:"User ID"`
}

// UpdateInterestsInput wraps the interests body for Huma.
type UpdateInterestsInput struct {
	UserID int64 `path:"user_id" doc:"User ID"`
	Body   service.UpdateInterestsInput
}

// CreatePostInput wraps the post body for Huma.
type CreatePostInput struct {
	UserID int64 `path:"user_id" doc:"User ID"`
	Body   service.CreatePostInput
}

// UserOutput wraps a user for Huma.
type UserOutput struct {
	Body UserResponse
}

// UserDetailOutput wraps a user with profile for Huma.
type UserDetailOutput struct {
	Body UserDetailResponse
}

// ProfileOutput wraps a profile for Huma.
type ProfileOutput struct {
	Body ProfileResponse
}

// PostOutput wraps a post for Huma.
type PostOutput struct {
	Body PostResponse
}

// PostsOutput wraps a post list for Huma.
type PostsOutput struct {
	Body []PostResponse
}

// StoredSuggestionsOutput wraps stored rows for Huma.
type StoredSuggestionsOutput struct {
	Body []StoredSuggestionResponse
}

func (s *Server) handleRegisterUser(ctx context.Context, input *RegisterUserInput) (*UserOutput, error) {
	user, err := s.services.User.RegisterUser(ctx, input.Body)
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: mapUser(user)}, nil
}

func (s *Server) handleGetUser(ctx context.Context, input *UserIDInput) (*UserDetailOutput, error) {
	user, err := s.services.User.GetUser(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	profile, err := s.services.User.GetProfile(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	return &UserDetailOutput{Body: UserDetailResponse{
		UserResponse: mapUser(user),
		Profile:      mapProfile(profile),
	}}, nil
}

func (s *Server) handleUpdateInterests(ctx context.Context, input *UpdateInterestsInput) (*ProfileOutput, error) {
	profile, err := s.services.User.UpdateInterests(ctx, input.UserID, input.Body)
	if err != nil {
		return nil, err
	}
	return &ProfileOutput{Body: mapProfile(profile)}, nil
}

func (s *Server) handleCreatePost(ctx context.Context, input *CreatePostInput) (*PostOutput, error) {
	post, err := s.services.User.CreatePost(ctx, input.UserID, input.Body)
	if err != nil {
		return nil, err
	}
	return &PostOutput{Body: mapPost(post)}, nil
}

func (s *Server) handleListPosts(ctx context.Context, input *UserIDInput) (*PostsOutput, error) {
	posts, err := s.services.User.ListPosts(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	out := make([]PostResponse, len(posts))
	for i, p := range posts {
		out[i] = mapPost(p)
	}
	return &PostsOutput{Body: out}, nil
}

func (s *Server) handleListStoredSuggestions(ctx context.Context, input *UserIDInput) (*StoredSuggestionsOutput, error) {
	rows, err := s.services.User.ListSuggestionsFor(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	out := make([]StoredSuggestionResponse, len(rows))
	for i, r := range rows {
		out[i] = StoredSuggestionResponse{
			SuggestedUserID: r.SuggestedUserID,
			SimilarityScore: r.SimilarityScore,
			Domain:          r.Domain,
			RunID:           r.RunID,
			CreatedAt:       r.CreatedAt,
			UpdatedAt:       r.UpdatedAt,
		}
	}
	return &StoredSuggestionsOutput{Body: out}, nil
}

func mapUser(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      string(u.Role),
		Status:    string(u.Status),
		CreatedAt: u.CreatedAt,
	}
}

func mapProfile(p *domain.Profile) ProfileResponse {
	return ProfileResponse{
		YearOfStudy:      p.YearOfStudy,
		Course:           p.Course,
		FieldsOfInterest: p.FieldsOfInterest,
		UpdatedAt:        p.UpdatedAt,
	}
}

func mapPost(p *domain.Post) PostResponse {
	return PostResponse{
		ID:        p.ID,
		UserID:    p.UserID,
		Content:   p.Content,
		Tags:      p.Tags,
		CreatedAt: p.CreatedAt,
	}
}
