package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/wordnest/wordnest/internal/metrics"
	"github.com/wordnest/wordnest/internal/model"
	"github.com/wordnest/wordnest/internal/repository"
)

// Post service errors.
var (
	ErrPostNotFound     = errors.New("post not found")
	ErrNotPostAuthor    = errors.New("caller is not the post's author")
	ErrMissingPostField = errors.New("title and content are required")
	ErrTitleTooLong     = errors.New("title cannot exceed 255 characters")
	ErrEmptyUpdate      = errors.New("at least one of title, content or image must be provided")
)

// PostService applies ownership checks and the image lifecycle around
// the post store.
type PostService struct {
	posts   PostStore
	assets  AssetStore
	metrics metrics.Recorder
	logger  *slog.Logger
}

// NewPostService creates a new PostService.
func NewPostService(posts PostStore, assets AssetStore, recorder metrics.Recorder, logger *slog.Logger) *PostService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &PostService{
		posts:   posts,
		assets:  assets,
		metrics: recorder,
		logger:  logger,
	}
}

// CreatePostInput defines input for creating a post.
type CreatePostInput struct {
	Title   string
	Content string
	Image   *Upload
}

// Create stores a new post authored by the caller. The image file, if
// any, is written before the row insert; a failed insert removes the
// just-stored file so no upload outlives a failed request.
func (s *PostService) Create(ctx context.Context, authorID int64, input CreatePostInput) (*model.Post, error) {
	if input.Title == "" || input.Content == "" {
		return nil, ErrMissingPostField
	}
	if utf8.RuneCountInString(input.Title) > model.MaxTitleLength {
		return nil, ErrTitleTooLong
	}

	var imageURL *string
	if input.Image != nil {
		url, err := s.assets.Save(ctx, input.Image.File, input.Image.Filename)
		if err != nil {
			return nil, fmt.Errorf("store image: %w", err)
		}
		s.metrics.IncAssetStored()
		imageURL = &url
	}

	post := &model.Post{
		Title:    input.Title,
		Content:  input.Content,
		ImageURL: imageURL,
		AuthorID: authorID,
	}

	if err := s.posts.CreatePost(ctx, post); err != nil {
		if imageURL != nil {
			s.assets.RemoveQuietly(*imageURL)
		}
		return nil, fmt.Errorf("create post: %w", err)
	}

	s.metrics.IncPostCreated()
	s.logger.Info("post created",
		slog.Int64("post_id", post.ID),
		slog.Int64("author_id", authorID),
		slog.Bool("has_image", imageURL != nil),
	)

	// Re-read for the author-joined row.
	return s.posts.GetPostByID(ctx, post.ID)
}

// Get retrieves a post by ID.
func (s *PostService) Get(ctx context.Context, id int64) (*model.Post, error) {
	post, err := s.posts.GetPostByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return post, nil
}

// List returns one page of all posts newest-first.
func (s *PostService) List(ctx context.Context, page, limit int) (*ListResult, error) {
	return s.list(ctx, repository.PostFilter{}, page, limit)
}

// ListByAuthor returns one page of the given author's posts.
func (s *PostService) ListByAuthor(ctx context.Context, authorID int64, page, limit int) (*ListResult, error) {
	return s.list(ctx, repository.PostFilter{AuthorID: &authorID}, page, limit)
}

func (s *PostService) list(ctx context.Context, filter repository.PostFilter, page, limit int) (*ListResult, error) {
	if err := validatePagination(page, limit); err != nil {
		return nil, err
	}

	posts, total, err := s.posts.ListPosts(ctx, filter, page, limit)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}

	return &ListResult{
		Posts:      posts,
		Pagination: model.NewPagination(page, limit, total),
	}, nil
}

// UpdatePostInput defines input for a partial post update. A nil field
// keeps the stored value; at least one field must be set.
type UpdatePostInput struct {
	Title   *string
	Content *string
	Image   *Upload
}

// Update applies a partial-merge mutation to the caller's own post.
// A replacement image is written before the row update, and the prior
// image is removed only after the update succeeds, so a failure never
// loses the only stored copy.
func (s *PostService) Update(ctx context.Context, callerID, postID int64, input UpdatePostInput) (*model.Post, error) {
	if input.Title == nil && input.Content == nil && input.Image == nil {
		return nil, ErrEmptyUpdate
	}

	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	if post.AuthorID != callerID {
		return nil, ErrNotPostAuthor
	}

	if input.Title != nil {
		post.Title = *input.Title
	}
	if input.Content != nil {
		post.Content = *input.Content
	}
	if post.Title == "" || post.Content == "" {
		return nil, ErrMissingPostField
	}
	if utf8.RuneCountInString(post.Title) > model.MaxTitleLength {
		return nil, ErrTitleTooLong
	}

	oldImage := post.ImageURL
	var newImage *string
	if input.Image != nil {
		url, err := s.assets.Save(ctx, input.Image.File, input.Image.Filename)
		if err != nil {
			return nil, fmt.Errorf("store image: %w", err)
		}
		s.metrics.IncAssetStored()
		newImage = &url
		post.ImageURL = &url
	}

	if err := s.posts.UpdatePost(ctx, post); err != nil {
		if newImage != nil {
			s.assets.RemoveQuietly(*newImage)
		}
		if errors.Is(err, repository.ErrPostNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("update post: %w", err)
	}

	// The old file is safe to drop only now that the row points at the
	// replacement.
	if newImage != nil && oldImage != nil {
		s.assets.RemoveQuietly(*oldImage)
		s.metrics.IncAssetRemoved()
	}

	s.metrics.IncPostUpdated()
	s.logger.Info("post updated", slog.Int64("post_id", postID), slog.Int64("author_id", callerID))

	return s.posts.GetPostByID(ctx, postID)
}

// Delete removes the caller's own post. The associated image file is
// removed best-effort first; a file error never blocks the row delete.
func (s *PostService) Delete(ctx context.Context, callerID, postID int64) error {
	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return ErrPostNotFound
		}
		return err
	}

	if post.AuthorID != callerID {
		return ErrNotPostAuthor
	}

	if post.ImageURL != nil {
		s.assets.RemoveQuietly(*post.ImageURL)
		s.metrics.IncAssetRemoved()
	}

	if err := s.posts.DeletePost(ctx, postID); err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return ErrPostNotFound
		}
		return fmt.Errorf("delete post: %w", err)
	}

	s.metrics.IncPostDeleted()
	s.logger.Info("post deleted", slog.Int64("post_id", postID), slog.Int64("author_id", callerID))

	return nil
}
