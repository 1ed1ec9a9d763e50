package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/thenextevent/eventdesk/internal/apiclient"
	"github.com/thenextevent/eventdesk/internal/models"
)

type Auth struct {
	api     API
	session *apiclient.Session
	logger  *slog.Logger
}

// NewAuth uses slog.Default when logger is nil.
func NewAuth(api API, session *apiclient.Session, logger *slog.Logger) *Auth {
	if logger == nil {
		logger = slog.Default()
	}
	return &Auth{api: api, session: session, logger: logger}
}

// Login stores the returned token and user in the session.
func (s *Auth) Login(ctx context.Context, creds models.LoginRequest) (*models.LoginResponse, error) {
	var out models.LoginResponse
	if err := s.api.Post(ctx, "/auth/login", creds, &out); err != nil {
		return nil, err
	}
	if err := s.session.SetToken(out.Token); err != nil {
		return nil, fmt.Errorf("store token: %w", err)
	}
	if err := s.session.SetUser(&out.User); err != nil {
		return nil, fmt.Errorf("store user: %w", err)
	}
	return &out, nil
}

// Logout tells the server, then clears the local session whatever the
// server said. Only a failure to clear local state is returned.
func (s *Auth) Logout(ctx context.Context) error {
	if err := s.api.Post(ctx, "/auth/logout", nil, nil); err != nil {
		s.logger.WarnContext(ctx, "remote logout failed", "error", err)
	}
	return s.session.RemoveToken()
}

// CurrentUser refreshes the cached user from the server.
func (s *Auth) CurrentUser(ctx context.Context) (*models.User, error) {
	var out models.User
	if err := s.api.Get(ctx, "/auth/me", nil, &out); err != nil {
		return nil, err
	}
	if err := s.session.SetUser(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Auth) LocalUser() *models.User {
	return s.session.User()
}

// IsAuthenticated is true only when both a token and a cached user exist.
func (s *Auth) IsAuthenticated() bool {
	return s.session.Token() != "" && s.session.User() != nil
}

func (s *Auth) ChangePassword(ctx context.Context, req models.ChangePasswordRequest) error {
	return s.api.Post(ctx, "/auth/change-password", req, nil)
}

func (s *Auth) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	var out models.User
	if err := s.api.Post(ctx, "/auth/register", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Auth) Users(ctx context.Context) ([]models.User, error) {
	var out []models.User
	err := s.api.Get(ctx, "/auth/users", nil, &out)
	return out, err
}

func (s *Auth) UpdateUser(ctx context.Context, id int64, upd models.UserUpdate) (*models.User, error) {
	var out models.User
	if err := s.api.Put(ctx, fmt.Sprintf("/auth/users/%d", id), upd, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Auth) DeleteUser(ctx context.Context, id int64) error {
	return s.api.Delete(ctx, fmt.Sprintf("/auth/users/%d", id), nil)
}
