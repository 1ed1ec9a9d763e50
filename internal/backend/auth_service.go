package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/thenextevent/eventdesk/internal/auth"
	"github.com/thenextevent/eventdesk/internal/logging"
	"github.com/thenextevent/eventdesk/internal/models"
	"github.com/thenextevent/eventdesk/internal/repository"
	"github.com/thenextevent/eventdesk/internal/validation"
)

type AuthService struct {
	users     *repository.UserRepo
	jwtSecret string
	tokenTTL  time.Duration
	now       func() time.Time
}

func NewAuthService(users *repository.UserRepo, jwtSecret string, tokenTTL time.Duration) *AuthService {
	return &AuthService{users: users, jwtSecret: jwtSecret, tokenTTL: tokenTTL, now: time.Now}
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	user, err := s.users.FindByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !user.IsActive || !auth.CheckPassword(password, user.PasswordHash) {
		slog.WarnContext(ctx, "login rejected", "email", logging.RedactEmail(email))
		return nil, ErrInvalidCredentials
	}
	token, expires, err := auth.GenerateToken(s.jwtSecret, user.ID, user.Email, string(user.Role), s.tokenTTL)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	if err := s.users.TouchLogin(ctx, user.ID, now); err != nil {
		return nil, err
	}
	user.LastLoginAt = &now
	return &models.LoginResponse{Token: token, ExpiresAt: expires, User: user.ToResponse()}, nil
}

func (s *AuthService) Me(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := user.ToResponse()
	return &resp, nil
}

// Register creates a staff account. Only admins reach it.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	errs := FieldErrors{}
	if !validation.ValidEmail(req.Email) {
		errs.add("email", "email address is not valid")
	}
	if len(req.Password) < auth.MinPasswordLength {
		errs.add("password", fmt.Sprintf("password must be at least %d characters", auth.MinPasswordLength))
	}
	if strings.TrimSpace(req.FirstName) == "" {
		errs.add("firstName", "first name is required")
	}
	if err := errs.err(); err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Role:         models.RoleStaff,
		IsActive:     true,
		CreatedAt:    s.now().UTC(),
	}
	id, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, err
	}
	user.ID = id
	resp := user.ToResponse()
	return &resp, nil
}

func (s *AuthService) ChangePassword(ctx context.Context, userID int64, req models.ChangePasswordRequest) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(req.CurrentPassword, user.PasswordHash) {
		return FieldErrors{"currentPassword": {"current password is incorrect"}}
	}
	if len(req.NewPassword) < auth.MinPasswordLength {
		return FieldErrors{"newPassword": {fmt.Sprintf("password must be at least %d characters", auth.MinPasswordLength)}}
	}
	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	return s.users.SetPassword(ctx, userID, hash)
}

func (s *AuthService) Users(ctx context.Context) ([]models.User, error) {
	return s.users.List(ctx)
}

func (s *AuthService) UpdateUser(ctx context.Context, id int64, upd models.UserUpdate) (*models.User, error) {
	if err := s.users.Update(ctx, id, upd); err != nil {
		return nil, err
	}
	return s.Me(ctx, id)
}

// DeleteUser refuses to remove the caller's own account.
func (s *AuthService) DeleteUser(ctx context.Context, actorID, id int64) error {
	if actorID == id {
		return fmt.Errorf("%w: cannot delete your own account", repository.ErrInvalid)
	}
	return s.users.Delete(ctx, id)
}

// SeedAdmin creates the admin account unless a user with that email exists.
func (s *AuthService) SeedAdmin(ctx context.Context, email, password string) error {
	_, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	_, err = s.users.Create(ctx, &models.User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    "Admin",
		Role:         models.RoleAdmin,
		IsActive:     true,
		CreatedAt:    s.now().UTC(),
	})
	if err != nil {
		return err
	}
	slog.InfoContext(ctx, "admin account created", "email", logging.RedactEmail(email))
	return nil
}
