package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/wordnest/wordnest/internal/model"
)

// ErrPostNotFound indicates no post row matched the given ID.
var ErrPostNotFound = errors.New("post not found")

// PostFilter narrows post listings. A nil AuthorID matches all posts.
type PostFilter struct {
	AuthorID *int64
}

// postColumns is the joined projection served to callers: every post
// row carries the author's display name.
const postColumns = `
	p.id, p.title, p.content, p.image_url, p.author_id, u.username AS author_name,
	p.created_at, p.updated_at
`

// CreatePost inserts a new post and fills in the generated ID and
// timestamps. AuthorName is not populated; fetch the post afterwards
// for the joined row.
func (r *Repository) CreatePost(ctx context.Context, post *model.Post) error {
	query := `
		INSERT INTO posts (title, content, image_url, author_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		post.Title,
		post.Content,
		post.ImageURL,
		post.AuthorID,
	).Scan(&post.ID, &post.CreatedAt, &post.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}

	return nil
}

// GetPostByID retrieves a post joined with its author's name.
func (r *Repository) GetPostByID(ctx context.Context, id int64) (*model.Post, error) {
	query := `
		SELECT ` + postColumns + `
		FROM posts p
		JOIN users u ON p.author_id = u.id
		WHERE p.id = $1
	`

	post, err := scanPost(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to get post by ID: %w", err)
	}

	return post, nil
}

// ListPosts returns one page of posts newest-first along with the total
// row count matching the filter. Ties on created_at break by id so the
// ordering is deterministic.
func (r *Repository) ListPosts(ctx context.Context, filter PostFilter, page, limit int) ([]*model.Post, int, error) {
	countQuery := `SELECT COUNT(*) FROM posts p WHERE ($1::bigint IS NULL OR p.author_id = $1)`

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, filter.AuthorID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count posts: %w", err)
	}

	query := `
		SELECT ` + postColumns + `
		FROM posts p
		JOIN users u ON p.author_id = u.id
		WHERE ($1::bigint IS NULL OR p.author_id = $1)
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT $2 OFFSET $3
	`

	offset := (page - 1) * limit
	rows, err := r.pool.Query(ctx, query, filter.AuthorID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	var posts []*model.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, post)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating posts: %w", err)
	}

	return posts, total, nil
}

// UpdatePost writes a post's mutable fields and bumps updated_at.
func (r *Repository) UpdatePost(ctx context.Context, post *model.Post) error {
	query := `
		UPDATE posts
		SET title = $2, content = $3, image_url = $4, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query,
		post.ID,
		post.Title,
		post.Content,
		post.ImageURL,
	)

	if err != nil {
		return fmt.Errorf("failed to update post: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrPostNotFound
	}

	return nil
}

// DeletePost removes a post row.
func (r *Repository) DeletePost(ctx context.Context, id int64) error {
	query := `DELETE FROM posts WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrPostNotFound
	}

	return nil
}

// CountPostsByAuthor returns how many posts a user has authored.
func (r *Repository) CountPostsByAuthor(ctx context.Context, authorID int64) (int, error) {
	query := `SELECT COUNT(*) FROM posts WHERE author_id = $1`

	var count int
	if err := r.pool.QueryRow(ctx, query, authorID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count posts: %w", err)
	}
	return count, nil
}

// LatestPostAt returns the creation time of the author's most recent
// post, or nil if they have none.
func (r *Repository) LatestPostAt(ctx context.Context, authorID int64) (*time.Time, error) {
	query := `
		SELECT created_at FROM posts
		WHERE author_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`

	var createdAt time.Time
	err := r.pool.QueryRow(ctx, query, authorID).Scan(&createdAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest post: %w", err)
	}

	return &createdAt, nil
}

// scanPost scans a joined post row into a Post model.
func scanPost(row pgx.Row) (*model.Post, error) {
	var post model.Post
	err := row.Scan(
		&post.ID,
		&post.Title,
		&post.Content,
		&post.ImageURL,
		&post.AuthorID,
		&post.AuthorName,
		&post.CreatedAt,
		&post.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &post, nil
}
