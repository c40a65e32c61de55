package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/wordnest/wordnest/internal/auth"
	"github.com/wordnest/wordnest/internal/model"
	"github.com/wordnest/wordnest/internal/repository"
)

type output struct {
	UserID   int64   `json:"user_id"`
	Username string  `json:"username"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	PostIDs  []int64 `json:"post_ids"`
}

func main() {
	var (
		databaseURL = flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
		username    = flag.String("username", "demo", "Username for the seeded account")
		email       = flag.String("email", "demo@wordnest.local", "Email for the seeded account")
		password    = flag.String("password", "demo-password", "Password for the seeded account")
		postCount   = flag.Int("posts", 3, "Number of sample posts to create")
		format      = flag.String("format", "plain", "Output format: plain or json")
	)
	flag.Parse()

	if *databaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}
	if *postCount < 0 {
		fmt.Fprintln(os.Stderr, "posts must be >= 0")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo, err := repository.New(ctx, *databaseURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, "connect database:", err)
		os.Exit(1)
	}
	defer repo.Close()

	user, err := ensureUser(ctx, repo, *username, *email, *password)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	postIDs := make([]int64, 0, *postCount)
	for i := 1; i <= *postCount; i++ {
		post := &model.Post{
			Title:    fmt.Sprintf("Sample post %d", i),
			Content:  fmt.Sprintf("This is sample post number %d, seeded for local development.", i),
			AuthorID: user.ID,
		}
		if err := repo.CreatePost(ctx, post); err != nil {
			fmt.Fprintln(os.Stderr, "create post:", err)
			os.Exit(1)
		}
		postIDs = append(postIDs, post.ID)
	}

	out := output{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		Password: *password,
		PostIDs:  postIDs,
	}

	switch strings.ToLower(*format) {
	case "plain":
		fmt.Printf("user=%d email=%s password=%s posts=%d\n", out.UserID, out.Email, out.Password, len(out.PostIDs))
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
	default:
		fmt.Fprintln(os.Stderr, "invalid format; use plain or json")
		os.Exit(1)
	}
}

func ensureUser(ctx context.Context, repo *repository.Repository, username, email, password string) (*model.User, error) {
	existing, err := repo.GetUserByEmail(ctx, email)
	if err == nil {
		if existing.Username != username {
			return nil, fmt.Errorf("email %s already used by account %s", email, existing.Username)
		}
		return existing, nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}
	if err := repo.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}
