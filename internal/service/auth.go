package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/trip-planner/backend/internal/auth"
	"github.com/pkordes/trip-planner/backend/internal/domain"
	"github.com/pkordes/trip-planner/backend/internal/repo"
)

// TokenIssuer signs access tokens for a user.
type TokenIssuer interface {
	Issue(u domain.User) (token string, expiresAt time.Time, err error)
}

// Session is the result of a successful registration or login.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      domain.User
}

// AuthService registers accounts and exchanges credentials for tokens.
type AuthService struct {
	users  repo.UserRepo
	tokens TokenIssuer
	fx     Effects
	now    func() time.Time
}

// NewAuthService constructs an AuthService.
func NewAuthService(users repo.UserRepo, tokens TokenIssuer, fx Effects) *AuthService {
	return &AuthService{users: users, tokens: tokens, fx: fx, now: time.Now}
}

// ErrBadCredentials is returned by Login for an unknown email and a wrong password alike.
var ErrBadCredentials = fmt.Errorf("invalid email or password: %w", domain.ErrUnauthenticated)

// CreateUser validates and stores a new account with the given role.
func (s *AuthService) CreateUser(ctx context.Context, email, name, password string, role domain.UserRole) (domain.User, error) {
	email, err := domain.NormalizeEmail(email)
	if err != nil {
		return domain.User{}, fmt.Errorf("service.AuthService.CreateUser: %w", err)
	}
	if name, err = domain.NormalizeName(name); err != nil {
		return domain.User{}, fmt.Errorf("service.AuthService.CreateUser: %w", err)
	}
	if err := domain.CheckPasswordLength("password", password); err != nil {
		return domain.User{}, fmt.Errorf("service.AuthService.CreateUser: %w", err)
	}
	if !role.Valid() {
		return domain.User{}, fmt.Errorf("service.AuthService.CreateUser: %w", domain.Invalid("role", fmt.Sprintf("unknown role %q", role)))
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return domain.User{}, fmt.Errorf("service.AuthService.CreateUser: %w", err)
	}

	u, err := s.users.Create(ctx, domain.User{
		ID:           uuid.New(),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    s.now().UTC(),
	})
	if err != nil {
		return domain.User{}, fmt.Errorf("service.AuthService.CreateUser: %w", err)
	}
	return u, nil
}

// Register creates a regular account and signs the new user in.
func (s *AuthService) Register(ctx context.Context, email, name, password string) (Session, error) {
	u, err := s.CreateUser(ctx, email, name, password, domain.UserRoleUser)
	if err != nil {
		return Session{}, fmt.Errorf("service.AuthService.Register: %w", err)
	}
	return s.session(u)
}

// Login checks credentials and returns a fresh token.
func (s *AuthService) Login(ctx context.Context, email, password string) (Session, error) {
	normalized, err := domain.NormalizeEmail(email)
	if err != nil {
		return Session{}, fmt.Errorf("service.AuthService.Login: %w", ErrBadCredentials)
	}
	u, err := s.users.GetByEmail(ctx, normalized)
	if errors.Is(err, domain.ErrNotFound) {
		return Session{}, fmt.Errorf("service.AuthService.Login: %w", ErrBadCredentials)
	}
	if err != nil {
		return Session{}, fmt.Errorf("service.AuthService.Login: %w", err)
	}
	ok, err := auth.CheckPassword(u.PasswordHash, password)
	if err != nil {
		return Session{}, fmt.Errorf("service.AuthService.Login: %w", err)
	}
	if !ok {
		return Session{}, fmt.Errorf("service.AuthService.Login: %w", ErrBadCredentials)
	}

	at := s.now().UTC()
	if err := s.users.TouchLogin(ctx, u.ID, at); err != nil {
		s.fx.logger().WarnContext(ctx, "record last login failed", "user_id", u.ID.String(), "error", err)
	} else {
		u.LastLoginAt = &at
	}
	return s.session(u)
}

// Me returns the caller's account without its password hash.
func (s *AuthService) Me(ctx context.Context, actor uuid.UUID) (domain.User, error) {
	u, err := s.users.GetByID(ctx, actor)
	if err != nil {
		return domain.User{}, fmt.Errorf("service.AuthService.Me: %w", err)
	}
	u.PasswordHash = ""
	return u, nil
}

// UpdateProfile changes the caller's display name.
func (s *AuthService) UpdateProfile(ctx context.Context, actor uuid.UUID, name string) (domain.User, error) {
	name, err := domain.NormalizeName(name)
	if err != nil {
		return domain.User{}, fmt.Errorf("service.AuthService.UpdateProfile: %w", err)
	}
	u, err := s.users.GetByID(ctx, actor)
	if err != nil {
		return domain.User{}, fmt.Errorf("service.AuthService.UpdateProfile: %w", err)
	}
	u.Name = name
	u, err = s.users.Update(ctx, u)
	if err != nil {
		return domain.User{}, fmt.Errorf("service.AuthService.UpdateProfile: %w", err)
	}
	u.PasswordHash = ""
	return u, nil
}

// ChangePassword replaces the caller's password after checking the current one.
// A wrong current password is a validation error on current_password so that
// clients do not mistake it for an expired session.
func (s *AuthService) ChangePassword(ctx context.Context, actor uuid.UUID, current, next string) error {
	if err := domain.CheckPasswordLength("new_password", next); err != nil {
		return fmt.Errorf("service.AuthService.ChangePassword: %w", err)
	}
	u, err := s.users.GetByID(ctx, actor)
	if err != nil {
		return fmt.Errorf("service.AuthService.ChangePassword: %w", err)
	}
	ok, err := auth.CheckPassword(u.PasswordHash, current)
	if err != nil {
		return fmt.Errorf("service.AuthService.ChangePassword: %w", err)
	}
	if !ok {
		return fmt.Errorf("service.AuthService.ChangePassword: %w",
			domain.Invalid("current_password", "current password is incorrect"))
	}
	if u.PasswordHash, err = auth.HashPassword(next); err != nil {
		return fmt.Errorf("service.AuthService.ChangePassword: %w", err)
	}
	if _, err := s.users.Update(ctx, u); err != nil {
		return fmt.Errorf("service.AuthService.ChangePassword: %w", err)
	}
	return nil
}

func (s *AuthService) session(u domain.User) (Session, error) {
	token, exp, err := s.tokens.Issue(u)
	if err != nil {
		return Session{}, fmt.Errorf("service.AuthService: issue token: %w", err)
	}
	u.PasswordHash = ""
	return Session{Token: token, ExpiresAt: exp, User: u}, nil
}
