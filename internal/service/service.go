// Package service provides business logic for the application: the
// authorization and ownership checks between token authentication and
// the store, and the paired file/row lifecycle for uploaded images.
package service

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/wordnest/wordnest/internal/model"
	"github.com/wordnest/wordnest/internal/repository"
)

// Pagination bounds for list operations.
const (
	MaxPageSize     = 100
	DefaultPageSize = 10
)

// ErrInvalidPagination indicates page/limit outside the allowed range.
var ErrInvalidPagination = errors.New("page must be >= 1 and limit between 1 and 100")

// UserStore is the persistence surface the services need for users.
// *repository.Repository satisfies it; tests use an in-memory fake.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	UsernameTaken(ctx context.Context, username string, excludeID int64) (bool, error)
	EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error)
	UpdateUserFields(ctx context.Context, id int64, update model.UserUpdate) error
	SetProfilePicture(ctx context.Context, id int64, url *string) error
}

// PostStore is the persistence surface the services need for posts.
type PostStore interface {
	CreatePost(ctx context.Context, post *model.Post) error
	GetPostByID(ctx context.Context, id int64) (*model.Post, error)
	ListPosts(ctx context.Context, filter repository.PostFilter, page, limit int) ([]*model.Post, int, error)
	UpdatePost(ctx context.Context, post *model.Post) error
	DeletePost(ctx context.Context, id int64) error
	CountPostsByAuthor(ctx context.Context, authorID int64) (int, error)
	LatestPostAt(ctx context.Context, authorID int64) (*time.Time, error)
}

// AssetStore couples uploaded files to the rows that reference them.
// *asset.Store satisfies it.
type AssetStore interface {
	Save(ctx context.Context, r io.Reader, originalName string) (string, error)
	Remove(url string) error
	RemoveQuietly(url string)
}

// Upload is an incoming image file attached to a request.
type Upload struct {
	File     io.Reader
	Filename string
}

// ListResult is one page of posts plus pagination metadata.
type ListResult struct {
	Posts      []*model.Post
	Pagination model.Pagination
}

func validatePagination(page, limit int) error {
	if page < 1 || limit < 1 || limit > MaxPageSize {
		return ErrInvalidPagination
	}
	return nil
}
