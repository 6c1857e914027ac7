package gateway

import (
	"github.com/justestif/moodmuse/internal/model"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is the body of a successful login or register call. Every
// field is optional; callers fall back to the submitted values.
type AuthResponse struct {
	Message      string           `json:"message,omitempty"`
	User         string           `json:"user,omitempty"`
	UserID       model.FlexString `json:"user_id,omitempty"`
	Name         string           `json:"name,omitempty"`
	UserMetadata struct {
		Name string `json:"name,omitempty"`
	} `json:"user_metadata"`
	AccessToken  string `json:"access_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// RecommendRequest is the body of POST /home/.
type RecommendRequest struct {
	Mood        string            `json:"mood"`
	Text        string            `json:"text"`
	ContentType model.ContentType `json:"content_type"`
	Language    string            `json:"language"`
	Page        int               `json:"page"`
	Limit       int               `json:"limit"`
	UserID      string            `json:"user_id,omitempty"`
}

type recommendResponse struct {
	Mood    string       `json:"mood,omitempty"`
	Count   int          `json:"count,omitempty"`
	Results []model.Item `json:"results"`
}

type activityListResponse struct {
	Activities []model.Activity `json:"activities"`
}

type logActivityRequest struct {
	UserID string `json:"user_id"`
	Action string `json:"action"`
	Mood   string `json:"mood"`
}

type logActivityResponse struct {
	Activity *model.Activity `json:"activity"`
}

type errorResponse struct {
	Error string `json:"error"`
}
