package dto

import (
	"time"

	"github.com/wordnest/wordnest/internal/model"
)

// CreatePostRequest represents the request body for creating a post.
// Used for JSON requests; multipart requests carry the same fields as
// form values plus an optional image file.
type CreatePostRequest struct {
	Title   string `json:"title" validate:"required,max=255"`
	Content string `json:"content" validate:"required"`
}

// UpdatePostRequest represents a partial post update. Omitted fields
// keep their stored values.
type UpdatePostRequest struct {
	Title   *string `json:"title,omitempty" validate:"omitempty,max=255"`
	Content *string `json:"content,omitempty"`
}

// PostResponse represents a post in API responses.
type PostResponse struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	ImageURL   *string   `json:"imageUrl"`
	AuthorID   int64     `json:"authorId"`
	AuthorName string    `json:"authorName"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// PaginationResponse mirrors model.Pagination on the wire.
type PaginationResponse struct {
	CurrentPage     int  `json:"currentPage"`
	TotalPages      int  `json:"totalPages"`
	TotalPosts      int  `json:"totalPosts"`
	Limit           int  `json:"limit"`
	HasNextPage     bool `json:"hasNextPage"`
	HasPreviousPage bool `json:"hasPreviousPage"`
}

// PostListResponse represents a paginated list of posts.
type PostListResponse struct {
	Posts      []PostResponse     `json:"posts"`
	Pagination PaginationResponse `json:"pagination"`
}

// ToPostResponse converts a post model to its API representation.
func ToPostResponse(p *model.Post) PostResponse {
	return PostResponse{
		ID:         p.ID,
		Title:      p.Title,
		Content:    p.Content,
		ImageURL:   p.ImageURL,
		AuthorID:   p.AuthorID,
		AuthorName: p.AuthorName,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}

// ToPostListResponse converts one page of posts with its metadata.
func ToPostListResponse(posts []*model.Post, p model.Pagination) PostListResponse {
	out := PostListResponse{
		Posts: make([]PostResponse, 0, len(posts)),
		Pagination: PaginationResponse{
			CurrentPage:     p.CurrentPage,
			TotalPages:      p.TotalPages,
			TotalPosts:      p.TotalPosts,
			Limit:           p.Limit,
			HasNextPage:     p.HasNextPage,
			HasPreviousPage: p.HasPreviousPage,
		},
	}
	for _, post := range posts {
		out.Posts = append(out.Posts, ToPostResponse(post))
	}
	return out
}
