// Package model defines domain entities for the application.
package model

import "time"

// User represents a registered account.
// PasswordHash is never serialized; responses go through handler DTOs.
type User struct {
	ID                int64     `json:"id"`
	Username          string    `json:"username"`
	Email             string    `json:"email"`
	PasswordHash      string    `json:"-"`
	ProfilePictureURL *string   `json:"profile_picture_url"`
	Bio               *string   `json:"bio"`
	CreatedAt         time.Time `json:"created_at"`
}

// UserUpdate describes a partial profile mutation.
// A nil field means "leave unchanged"; a non-nil field overwrites,
// including overwriting bio with an empty string.
type UserUpdate struct {
	Username     *string
	Email        *string
	Bio          *string
	PasswordHash *string
}

// IsEmpty reports whether the update carries no changes.
func (u UserUpdate) IsEmpty() bool {
	return u.Username == nil && u.Email == nil && u.Bio == nil && u.PasswordHash == nil
}
