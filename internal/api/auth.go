package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/set-night/finmind/internal/domain"
)

type AuthAPI struct {
	client *Client
}

func NewAuthAPI(client *Client) *AuthAPI {
	return &AuthAPI{client: client}
}

func (a *AuthAPI) Login(ctx context.Context, creds domain.Credentials) (*domain.AuthResponse, error) {
	var resp domain.AuthResponse
	if err := a.client.Do(ctx, http.MethodPost, "/auth/login", nil, creds, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (a *AuthAPI) Register(ctx context.Context, in domain.RegisterInput) (*domain.AuthResponse, error) {
	var resp domain.AuthResponse
	if err := a.client.Do(ctx, http.MethodPost, "/auth/register", nil, in, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (a *AuthAPI) Profile(ctx context.Context) (*domain.UserProfile, error) {
	var user domain.UserProfile
	if err := a.client.Do(ctx, http.MethodGet, "/users/profile", nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (a *AuthAPI) UpdateUser(ctx context.Context, id string, in domain.UserUpdate) (*domain.UserProfile, error) {
	var user domain.UserProfile
	if err := a.client.Do(ctx, http.MethodPatch, "/users/"+url.PathEscape(id), nil, in, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (a *AuthAPI) DeleteUser(ctx context.Context, id string) error {
	return a.client.Do(ctx, http.MethodDelete, "/users/"+url.PathEscape(id), nil, nil, nil)
}
