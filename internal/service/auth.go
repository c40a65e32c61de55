package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/wordnest/wordnest/internal/auth"
	"github.com/wordnest/wordnest/internal/metrics"
	"github.com/wordnest/wordnest/internal/model"
	"github.com/wordnest/wordnest/internal/repository"
)

// Auth service errors.
var (
	ErrMissingCredentials = errors.New("username, email and password are required")
	ErrPasswordTooShort   = errors.New("password must be at least 6 characters long")
	ErrUserExists         = errors.New("username or email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 6

// AuthService handles account creation and login.
type AuthService struct {
	users   UserStore
	codec   *auth.TokenCodec
	metrics metrics.Recorder
	logger  *slog.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(users UserStore, codec *auth.TokenCodec, recorder metrics.Recorder, logger *slog.Logger) *AuthService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &AuthService{
		users:   users,
		codec:   codec,
		metrics: recorder,
		logger:  logger,
	}
}

// Signup registers a new account and returns it with a fresh token.
// The taken-checks are an optimization; the store's unique constraints
// are the final backstop and surface as ErrUserExists too.
func (s *AuthService) Signup(ctx context.Context, username, email, password string) (*model.User, string, error) {
	if username == "" || email == "" || password == "" {
		return nil, "", ErrMissingCredentials
	}
	if len(password) < MinPasswordLength {
		return nil, "", ErrPasswordTooShort
	}

	usernameTaken, err := s.users.UsernameTaken(ctx, username, 0)
	if err != nil {
		return nil, "", fmt.Errorf("check username: %w", err)
	}
	emailTaken, err := s.users.EmailTaken(ctx, email, 0)
	if err != nil {
		return nil, "", fmt.Errorf("check email: %w", err)
	}
	if usernameTaken || emailTaken {
		return nil, "", ErrUserExists
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUsernameExists) || errors.Is(err, repository.ErrEmailExists) {
			return nil, "", ErrUserExists
		}
		return nil, "", fmt.Errorf("create user: %w", err)
	}

	token, err := s.codec.Issue(user.ID, user.Username)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}

	s.metrics.IncSignup()
	s.logger.Info("user signed up", slog.Int64("user_id", user.ID), slog.String("username", user.Username))

	return user, token, nil
}

// Login verifies credentials and returns the account with a fresh
// token. Unknown email and wrong password yield the same error so the
// response never confirms whether an account exists.
func (s *AuthService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	if email == "" || password == "" {
		return nil, "", ErrMissingCredentials
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("get user: %w", err)
	}

	match, err := auth.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, "", fmt.Errorf("verify password: %w", err)
	}
	if !match {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.codec.Issue(user.ID, user.Username)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}

	s.metrics.IncLogin()

	return user, token, nil
}
