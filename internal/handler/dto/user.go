// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"time"

	"github.com/wordnest/wordnest/internal/model"
)

// SignupRequest represents the request body for creating an account.
type SignupRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginRequest represents the request body for logging in.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateProfileRequest represents a partial profile update. Omitted
// fields are left unchanged; bio may be sent as an empty string to
// clear it.
type UpdateProfileRequest struct {
	Username        *string `json:"username,omitempty" validate:"omitempty,min=3,max=50"`
	Email           *string `json:"email,omitempty" validate:"omitempty,email"`
	Bio             *string `json:"bio,omitempty" validate:"omitempty,max=500"`
	CurrentPassword *string `json:"currentPassword,omitempty"`
	NewPassword     *string `json:"newPassword,omitempty"`
}

// UserResponse represents an account in API responses.
type UserResponse struct {
	ID                int64     `json:"id"`
	Username          string    `json:"username"`
	Email             string    `json:"email"`
	ProfilePictureURL *string   `json:"profilePictureUrl"`
	Bio               *string   `json:"bio"`
	CreatedAt         time.Time `json:"createdAt"`
}

// ProfileResponse is an account plus derived fields.
type ProfileResponse struct {
	UserResponse
	PostCount int `json:"postCount"`
}

// AuthResponse is returned by signup and login.
type AuthResponse struct {
	Message string       `json:"message"`
	Token   string       `json:"token"`
	User    UserResponse `json:"user"`
}

// StatsResponse summarizes the caller's posting activity.
type StatsResponse struct {
	TotalPosts   int        `json:"totalPosts"`
	LatestPostAt *time.Time `json:"latestPostAt"`
}

// ErrorResponse is the uniform error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// ToUserResponse converts a user model to its API representation.
func ToUserResponse(u *model.User) UserResponse {
	return UserResponse{
		ID:                u.ID,
		Username:          u.Username,
		Email:             u.Email,
		ProfilePictureURL: u.ProfilePictureURL,
		Bio:               u.Bio,
		CreatedAt:         u.CreatedAt,
	}
}
