package backend

import (
	"context"
	"net/http"
)

type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	User         User   `json:"user"`
}

// AuthClient talks to the GoTrue admin and token endpoints.
type AuthClient struct{ rest *restClient }

// CreateUser registers a user through the admin API.
func (a *AuthClient) CreateUser(ctx context.Context, email, password string, emailConfirm bool) (*User, error) {
	in := map[string]any{
		"email":         email,
		"password":      password,
		"email_confirm": emailConfirm,
	}
	var u User
	if err := a.rest.doJSON(ctx, http.MethodPost, "/auth/v1/admin/users", in, &u); err != nil {
		return nil, err
	}
	if u.ID == "" {
		return nil, nil
	}
	return &u, nil
}

// SignInWithPassword exchanges credentials for a session. A nil session with
// a nil error means the API answered without tokens.
func (a *AuthClient) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	in := map[string]string{"email": email, "password": password}
	var s Session
	if err := a.rest.doJSON(ctx, http.MethodPost, "/auth/v1/token?grant_type=password", in, &s); err != nil {
		return nil, err
	}
	if s.AccessToken == "" {
		return nil, nil
	}
	return &s, nil
}
