package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/wordnest/wordnest/internal/auth"
	"github.com/wordnest/wordnest/internal/metrics"
	"github.com/wordnest/wordnest/internal/model"
	"github.com/wordnest/wordnest/internal/repository"
)

// Profile service errors.
var (
	ErrUsernameTaken           = errors.New("username already taken")
	ErrEmailTaken              = errors.New("email already taken")
	ErrNoFieldsToUpdate        = errors.New("no fields to update")
	ErrEmptyProfileField       = errors.New("username and email cannot be empty")
	ErrCurrentPasswordRequired = errors.New("current password is required to change password")
	ErrWrongPassword           = errors.New("current password is incorrect")
	ErrNewPasswordTooShort     = errors.New("new password must be at least 6 characters long")
	ErrNoImageProvided         = errors.New("no image file provided")
	ErrNoProfilePicture        = errors.New("no profile picture to delete")
	ErrUserGone                = errors.New("user not found")
)

// ProfileService manages the authenticated caller's own account.
type ProfileService struct {
	users   UserStore
	posts   PostStore
	assets  AssetStore
	metrics metrics.Recorder
	logger  *slog.Logger
}

// NewProfileService creates a new ProfileService.
func NewProfileService(users UserStore, posts PostStore, assets AssetStore, recorder metrics.Recorder, logger *slog.Logger) *ProfileService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &ProfileService{
		users:   users,
		posts:   posts,
		assets:  assets,
		metrics: recorder,
		logger:  logger,
	}
}

// Profile is an account plus derived fields.
type Profile struct {
	User      *model.User
	PostCount int
}

// GetProfile returns the caller's account with their post count.
func (s *ProfileService) GetProfile(ctx context.Context, userID int64) (*Profile, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserGone
		}
		return nil, err
	}

	count, err := s.posts.CountPostsByAuthor(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count posts: %w", err)
	}

	return &Profile{User: user, PostCount: count}, nil
}

// UpdateProfileInput defines a partial profile mutation. Nil fields are
// left unchanged. Bio may be set to the empty string to clear it;
// username and email may not.
type UpdateProfileInput struct {
	Username        *string
	Email           *string
	Bio             *string
	CurrentPassword *string
	NewPassword     *string
}

// UpdateProfile validates and applies the provided fields as a single
// store mutation. Uniqueness is pre-checked against all other users;
// the store's constraints remain the authoritative guard.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID int64, input UpdateProfileInput) (*model.User, error) {
	current, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserGone
		}
		return nil, err
	}

	var update model.UserUpdate

	if input.Username != nil && *input.Username != current.Username {
		if *input.Username == "" {
			return nil, ErrEmptyProfileField
		}
		taken, err := s.users.UsernameTaken(ctx, *input.Username, userID)
		if err != nil {
			return nil, fmt.Errorf("check username: %w", err)
		}
		if taken {
			return nil, ErrUsernameTaken
		}
		update.Username = input.Username
	}

	if input.Email != nil && *input.Email != current.Email {
		if *input.Email == "" {
			return nil, ErrEmptyProfileField
		}
		taken, err := s.users.EmailTaken(ctx, *input.Email, userID)
		if err != nil {
			return nil, fmt.Errorf("check email: %w", err)
		}
		if taken {
			return nil, ErrEmailTaken
		}
		update.Email = input.Email
	}

	if input.Bio != nil {
		update.Bio = input.Bio
	}

	if input.NewPassword != nil {
		if input.CurrentPassword == nil || *input.CurrentPassword == "" {
			return nil, ErrCurrentPasswordRequired
		}
		match, err := auth.VerifyPassword(*input.CurrentPassword, current.PasswordHash)
		if err != nil {
			return nil, fmt.Errorf("verify password: %w", err)
		}
		if !match {
			return nil, ErrWrongPassword
		}
		if len(*input.NewPassword) < MinPasswordLength {
			return nil, ErrNewPasswordTooShort
		}
		hash, err := auth.HashPassword(*input.NewPassword)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		update.PasswordHash = &hash
	}

	if update.IsEmpty() {
		return nil, ErrNoFieldsToUpdate
	}

	if err := s.users.UpdateUserFields(ctx, userID, update); err != nil {
		switch {
		case errors.Is(err, repository.ErrUsernameExists):
			return nil, ErrUsernameTaken
		case errors.Is(err, repository.ErrEmailExists):
			return nil, ErrEmailTaken
		case errors.Is(err, repository.ErrUserNotFound):
			return nil, ErrUserGone
		}
		return nil, fmt.Errorf("update user: %w", err)
	}

	s.logger.Info("profile updated",
		slog.Int64("user_id", userID),
		slog.Bool("password_changed", update.PasswordHash != nil),
	)

	return s.users.GetUserByID(ctx, userID)
}

// SetProfilePicture stores the uploaded image, points the account at
// it, and removes the previous picture. The old file is dropped only
// after the row update succeeds; if the update fails, the just-stored
// file is removed instead.
func (s *ProfileService) SetProfilePicture(ctx context.Context, userID int64, upload *Upload) (*model.User, error) {
	if upload == nil {
		return nil, ErrNoImageProvided
	}

	current, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserGone
		}
		return nil, err
	}

	url, err := s.assets.Save(ctx, upload.File, upload.Filename)
	if err != nil {
		return nil, fmt.Errorf("store image: %w", err)
	}
	s.metrics.IncAssetStored()

	if err := s.users.SetProfilePicture(ctx, userID, &url); err != nil {
		s.assets.RemoveQuietly(url)
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserGone
		}
		return nil, fmt.Errorf("set profile picture: %w", err)
	}

	if current.ProfilePictureURL != nil {
		s.assets.RemoveQuietly(*current.ProfilePictureURL)
		s.metrics.IncAssetRemoved()
	}

	s.logger.Info("profile picture updated", slog.Int64("user_id", userID))

	return s.users.GetUserByID(ctx, userID)
}

// ClearProfilePicture removes the caller's picture: the file goes
// best-effort first, then the reference is nulled.
func (s *ProfileService) ClearProfilePicture(ctx context.Context, userID int64) (*model.User, error) {
	current, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserGone
		}
		return nil, err
	}

	if current.ProfilePictureURL == nil {
		return nil, ErrNoProfilePicture
	}

	s.assets.RemoveQuietly(*current.ProfilePictureURL)
	s.metrics.IncAssetRemoved()

	if err := s.users.SetProfilePicture(ctx, userID, nil); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserGone
		}
		return nil, fmt.Errorf("clear profile picture: %w", err)
	}

	s.logger.Info("profile picture removed", slog.Int64("user_id", userID))

	return s.users.GetUserByID(ctx, userID)
}

// Stats summarizes the caller's posting activity.
type Stats struct {
	TotalPosts   int
	LatestPostAt *time.Time
}

// GetStats returns the caller's post count and most recent post time.
func (s *ProfileService) GetStats(ctx context.Context, userID int64) (*Stats, error) {
	count, err := s.posts.CountPostsByAuthor(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count posts: %w", err)
	}

	latest, err := s.posts.LatestPostAt(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("latest post: %w", err)
	}

	return &Stats{TotalPosts: count, LatestPostAt: latest}, nil
}
