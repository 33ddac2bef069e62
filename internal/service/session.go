package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/set-night/finmind/internal/domain"
	"github.com/set-night/finmind/internal/storage"
)

// AuthBackend is the part of the REST backend the session needs.
type AuthBackend interface {
	Login(ctx context.Context, creds domain.Credentials) (*domain.AuthResponse, error)
	Register(ctx context.Context, in domain.RegisterInput) (*domain.AuthResponse, error)
	Profile(ctx context.Context) (*domain.UserProfile, error)
	UpdateUser(ctx context.Context, id string, in domain.UserUpdate) (*domain.UserProfile, error)
	DeleteUser(ctx context.Context, id string) error
}

// SessionService owns the bearer token and the cached user profile. Both are
// written through the bridge on every change and read back on construction.
//
// Concurrent Login/Register calls are neither cancelled nor coalesced: whichever
// resolves last wins.
type SessionService struct {
	bridge *storage.Bridge
	auth   AuthBackend

	mu       sync.RWMutex
	session  domain.Session
	inflight int
}

func NewSessionService(ctx context.Context, bridge *storage.Bridge, auth AuthBackend) *SessionService {
	s := &SessionService{bridge: bridge, auth: auth}
	s.session.Token = storage.Read(ctx, bridge, storage.KeyAccessToken, "")
	s.session.User = storage.Read[*domain.UserProfile](ctx, bridge, storage.KeyUser, nil)
	return s
}

func (s *SessionService) Login(ctx context.Context, creds domain.Credentials) (*domain.UserProfile, error) {
	s.begin()
	defer s.end()

	resp, err := s.auth.Login(ctx, creds)
	if err != nil {
		slog.Warn("login failed", "email", creds.Email, "error", err)
		return nil, asAuthError(err)
	}
	if err := s.apply(ctx, resp); err != nil {
		return nil, err
	}
	return s.User(), nil
}

func (s *SessionService) Register(ctx context.Context, in domain.RegisterInput) error {
	s.begin()
	defer s.end()

	resp, err := s.auth.Register(ctx, in)
	if err != nil {
		slog.Warn("registration failed", "email", in.Email, "error", err)
		return asAuthError(err)
	}
	return s.apply(ctx, resp)
}

// Logout clears the session. It is idempotent and never fails.
func (s *SessionService) Logout(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = domain.Session{}
	s.bridge.Remove(ctx, storage.KeyAccessToken)
	s.bridge.Remove(ctx, storage.KeyUser)
}

func (s *SessionService) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.IsAuthenticated()
}

func (s *SessionService) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.Token
}

// User returns a copy of the cached profile, or nil when anonymous.
func (s *SessionService) User() *domain.UserProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session.User == nil {
		return nil
	}
	u := *s.session.User
	return &u
}

// Loading reports whether a login or registration is in flight.
func (s *SessionService) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inflight > 0
}

// RefreshProfile replaces the cached profile with the backend's.
func (s *SessionService) RefreshProfile(ctx context.Context) (*domain.UserProfile, error) {
	if !s.IsAuthenticated() {
		return nil, domain.ErrNotAuthenticated
	}
	user, err := s.auth.Profile(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch profile: %w", err)
	}
	s.setUser(ctx, user)
	return s.User(), nil
}

func (s *SessionService) UpdateProfile(ctx context.Context, in domain.UserUpdate) (*domain.UserProfile, error) {
	current := s.User()
	if current == nil || !s.IsAuthenticated() {
		return nil, domain.ErrNotAuthenticated
	}
	user, err := s.auth.UpdateUser(ctx, current.ID, in)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	s.setUser(ctx, user)
	return s.User(), nil
}

// DeleteProfile deletes the current user on the backend and then logs out.
func (s *SessionService) DeleteProfile(ctx context.Context) error {
	current := s.User()
	if current == nil || !s.IsAuthenticated() {
		return domain.ErrNotAuthenticated
	}
	if err := s.auth.DeleteUser(ctx, current.ID); err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	s.Logout(ctx)
	return nil
}

// ExpiresAt reads the exp claim of the bearer token without verifying its
// signature. It is informational only.
func (s *SessionService) ExpiresAt() (time.Time, bool) {
	tok := s.Token()
	if tok == "" {
		return time.Time{}, false
	}
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(tok, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

func (s *SessionService) apply(ctx context.Context, resp *domain.AuthResponse) error {
	if resp == nil || resp.AccessToken == "" || resp.User == nil {
		return &domain.AuthError{Message: "Invalid authentication response"}
	}
	user := *resp.User

	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = domain.Session{Token: resp.AccessToken, User: &user}
	if err := s.bridge.Write(ctx, storage.KeyAccessToken, resp.AccessToken); err != nil {
		slog.Error("persist token", "error", err)
	}
	if err := s.bridge.Write(ctx, storage.KeyUser, &user); err != nil {
		slog.Error("persist user", "error", err)
	}
	return nil
}

func (s *SessionService) setUser(ctx context.Context, user *domain.UserProfile) {
	if user == nil {
		return
	}
	u := *user
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session.User = &u
	if err := s.bridge.Write(ctx, storage.KeyUser, &u); err != nil {
		slog.Error("persist user", "error", err)
	}
}

func (s *SessionService) begin() {
	s.mu.Lock()
	s.inflight++
	s.mu.Unlock()
}

func (s *SessionService) end() {
	s.mu.Lock()
	s.inflight--
	s.mu.Unlock()
}

// asAuthError turns a backend rejection (4xx) into *domain.AuthError carrying
// the backend message. Transport failures and 5xx pass through unchanged.
func asAuthError(err error) error {
	var apiErr *domain.APIError
	if errors.As(err, &apiErr) && apiErr.Status >= http.StatusBadRequest && apiErr.Status < http.StatusInternalServerError {
		return &domain.AuthError{Message: apiErr.Message, Err: apiErr}
	}
	return err
}
