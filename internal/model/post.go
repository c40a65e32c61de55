package model

import "time"

// MaxTitleLength is the maximum allowed length for a post title.
const MaxTitleLength = 255

// Post represents a blog post. AuthorName is denormalized from the
// users table on read; it is never written through this struct.
type Post struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	ImageURL   *string   `json:"image_url"`
	AuthorID   int64     `json:"author_id"`
	AuthorName string    `json:"author_name"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
