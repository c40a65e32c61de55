package testutil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/wordnest/wordnest/internal/model"
	"github.com/wordnest/wordnest/internal/repository"
)

// FakeUserStore is an in-memory user store for service tests.
type FakeUserStore struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*model.User

	// CreateErr, when set, is returned by CreateUser.
	CreateErr error
	// UpdateErr, when set, is returned by UpdateUserFields and
	// SetProfilePicture.
	UpdateErr error
}

// NewFakeUserStore returns an empty in-memory user store.
func NewFakeUserStore() *FakeUserStore {
	return &FakeUserStore{users: make(map[int64]*model.User)}
}

func cloneUser(u *model.User) *model.User {
	c := *u
	if u.ProfilePictureURL != nil {
		v := *u.ProfilePictureURL
		c.ProfilePictureURL = &v
	}
	if u.Bio != nil {
		v := *u.Bio
		c.Bio = &v
	}
	return &c
}

// Seed inserts a user directly, assigning an ID, and returns it.
func (s *FakeUserStore) Seed(user *model.User) *model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	user.ID = s.nextID
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	s.users[user.ID] = cloneUser(user)
	return user
}

func (s *FakeUserStore) CreateUser(_ context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.CreateErr != nil {
		return s.CreateErr
	}
	for _, existing := range s.users {
		if existing.Username == user.Username {
			return repository.ErrUsernameExists
		}
		if existing.Email == user.Email {
			return repository.ErrEmailExists
		}
	}
	s.nextID++
	user.ID = s.nextID
	user.CreatedAt = time.Now().UTC()
	s.users[user.ID] = cloneUser(user)
	return nil
}

func (s *FakeUserStore) GetUserByID(_ context.Context, id int64) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return cloneUser(user), nil
}

func (s *FakeUserStore) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Email == email {
			return cloneUser(user), nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (s *FakeUserStore) UsernameTaken(_ context.Context, username string, excludeID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Username == username && user.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (s *FakeUserStore) EmailTaken(_ context.Context, email string, excludeID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Email == email && user.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (s *FakeUserStore) UpdateUserFields(_ context.Context, id int64, update model.UserUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.UpdateErr != nil {
		return s.UpdateErr
	}
	user, ok := s.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	for _, existing := range s.users {
		if existing.ID == id {
			continue
		}
		if update.Username != nil && existing.Username == *update.Username {
			return repository.ErrUsernameExists
		}
		if update.Email != nil && existing.Email == *update.Email {
			return repository.ErrEmailExists
		}
	}
	if update.Username != nil {
		user.Username = *update.Username
	}
	if update.Email != nil {
		user.Email = *update.Email
	}
	if update.Bio != nil {
		v := *update.Bio
		user.Bio = &v
	}
	if update.PasswordHash != nil {
		user.PasswordHash = *update.PasswordHash
	}
	return nil
}

func (s *FakeUserStore) SetProfilePicture(_ context.Context, id int64, url *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.UpdateErr != nil {
		return s.UpdateErr
	}
	user, ok := s.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	if url == nil {
		user.ProfilePictureURL = nil
		return nil
	}
	v := *url
	user.ProfilePictureURL = &v
	return nil
}

// FakePostStore is an in-memory post store for service tests. Author
// names are resolved through an optional linked FakeUserStore.
type FakePostStore struct {
	mu     sync.Mutex
	nextID int64
	posts  map[int64]*model.Post
	Users  *FakeUserStore

	// CreateErr, when set, is returned by CreatePost.
	CreateErr error
	// UpdateErr, when set, is returned by UpdatePost.
	UpdateErr error
}

// NewFakePostStore returns an empty in-memory post store resolving
// author names against users.
func NewFakePostStore(users *FakeUserStore) *FakePostStore {
	return &FakePostStore{posts: make(map[int64]*model.Post), Users: users}
}

func clonePost(p *model.Post) *model.Post {
	c := *p
	if p.ImageURL != nil {
		v := *p.ImageURL
		c.ImageURL = &v
	}
	return &c
}

func (s *FakePostStore) authorName(authorID int64) string {
	if s.Users == nil {
		return ""
	}
	user, err := s.Users.GetUserByID(context.Background(), authorID)
	if err != nil {
		return ""
	}
	return user.Username
}

func (s *FakePostStore) CreatePost(_ context.Context, post *model.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.CreateErr != nil {
		return s.CreateErr
	}
	s.nextID++
	post.ID = s.nextID
	now := time.Now().UTC()
	post.CreatedAt = now
	post.UpdatedAt = now
	s.posts[post.ID] = clonePost(post)
	return nil
}

func (s *FakePostStore) GetPostByID(_ context.Context, id int64) (*model.Post, error) {
	s.mu.Lock()
	post, ok := s.posts[id]
	if !ok {
		s.mu.Unlock()
		return nil, repository.ErrPostNotFound
	}
	out := clonePost(post)
	s.mu.Unlock()
	out.AuthorName = s.authorName(out.AuthorID)
	return out, nil
}

func (s *FakePostStore) ListPosts(_ context.Context, filter repository.PostFilter, page, limit int) ([]*model.Post, int, error) {
	s.mu.Lock()
	var matched []*model.Post
	for _, post := range s.posts {
		if filter.AuthorID != nil && post.AuthorID != *filter.AuthorID {
			continue
		}
		matched = append(matched, clonePost(post))
	}
	s.mu.Unlock()

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	total := len(matched)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	pageItems := matched[start:end]
	for _, post := range pageItems {
		post.AuthorName = s.authorName(post.AuthorID)
	}
	return pageItems, total, nil
}

func (s *FakePostStore) UpdatePost(_ context.Context, post *model.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.UpdateErr != nil {
		return s.UpdateErr
	}
	existing, ok := s.posts[post.ID]
	if !ok {
		return repository.ErrPostNotFound
	}
	existing.Title = post.Title
	existing.Content = post.Content
	if post.ImageURL != nil {
		v := *post.ImageURL
		existing.ImageURL = &v
	} else {
		existing.ImageURL = nil
	}
	existing.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *FakePostStore) DeletePost(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[id]; !ok {
		return repository.ErrPostNotFound
	}
	delete(s.posts, id)
	return nil
}

func (s *FakePostStore) CountPostsByAuthor(_ context.Context, authorID int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, post := range s.posts {
		if post.AuthorID == authorID {
			count++
		}
	}
	return count, nil
}

func (s *FakePostStore) LatestPostAt(_ context.Context, authorID int64) (*time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var latest *time.Time
	for _, post := range s.posts {
		if post.AuthorID != authorID {
			continue
		}
		if latest == nil || post.CreatedAt.After(*latest) {
			t := post.CreatedAt
			latest = &t
		}
	}
	return latest, nil
}

// FakeAssetStore is an in-memory asset store tracking stored and
// removed URLs.
type FakeAssetStore struct {
	mu      sync.Mutex
	nextID  int
	files   map[string][]byte
	Removed []string

	// SaveErr, when set, is returned by Save.
	SaveErr error
}

// NewFakeAssetStore returns an empty in-memory asset store.
func NewFakeAssetStore() *FakeAssetStore {
	return &FakeAssetStore{files: make(map[string][]byte)}
}

func (s *FakeAssetStore) Save(_ context.Context, r io.Reader, originalName string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SaveErr != nil {
		return "", s.SaveErr
	}
	ext := strings.ToLower(path.Ext(originalName))
	if ext == "" {
		return "", errors.New("missing extension")
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.nextID++
	url := fmt.Sprintf("/uploads/fake-%d%s", s.nextID, ext)
	s.files[url] = data
	return url, nil
}

func (s *FakeAssetStore) Remove(url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, url)
	s.Removed = append(s.Removed, url)
	return nil
}

func (s *FakeAssetStore) RemoveQuietly(url string) {
	_ = s.Remove(url)
}

// Exists reports whether a URL is currently stored.
func (s *FakeAssetStore) Exists(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.files[url]
	return ok
}

// Stored returns the number of currently stored files.
func (s *FakeAssetStore) Stored() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.files)
}
