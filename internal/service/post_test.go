package service_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wordnest/wordnest/internal/metrics"
	"github.com/wordnest/wordnest/internal/model"
	"github.com/wordnest/wordnest/internal/service"
	"github.com/wordnest/wordnest/internal/testutil"
)

type postFixture struct {
	users   *testutil.FakeUserStore
	posts   *testutil.FakePostStore
	assets  *testutil.FakeAssetStore
	metrics *metrics.InMemoryRecorder
	svc     *service.PostService
	author  *model.User
}

func newPostFixture(t *testing.T) *postFixture {
	t.Helper()
	users := testutil.NewFakeUserStore()
	posts := testutil.NewFakePostStore(users)
	assets := testutil.NewFakeAssetStore()
	recorder := metrics.NewInMemory()
	author := users.Seed(testutil.NewTestUser(t, "alice"))
	return &postFixture{
		users:   users,
		posts:   posts,
		assets:  assets,
		metrics: recorder,
		svc:     service.NewPostService(posts, assets, recorder, testLogger()),
		author:  author,
	}
}

func upload(name, content string) *service.Upload {
	return &service.Upload{File: strings.NewReader(content), Filename: name}
}

func TestPostServiceCreate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("creates post without image", func(t *testing.T) {
		t.Parallel()
		f := newPostFixture(t)

		post, err := f.svc.Create(ctx, f.author.ID, service.CreatePostInput{
			Title:   "First Post",
			Content: "Hello world",
		})
		require.NoError(t, err)
		require.NotZero(t, post.ID)
		require.Equal(t, "First Post", post.Title)
		require.Equal(t, f.author.ID, post.AuthorID)
		require.Equal(t, "alice", post.AuthorName)
		require.Nil(t, post.ImageURL)
		require.Equal(t, uint64(1), f.metrics.Snapshot().PostsCreated)
	})

	t.Run("creates post with image", func(t *testing.T) {
		t.Parallel()
		f := newPostFixture(t)

		post, err := f.svc.Create(ctx, f.author.ID, service.CreatePostInput{
			Title:   "With Image",
			Content: "Content",
			Image:   upload("photo.jpg", "jpeg-bytes"),
		})
		require.NoError(t, err)
		require.NotNil(t, post.ImageURL)
		require.True(t, f.assets.Exists(*post.ImageURL))
		require.Equal(t, uint64(1), f.metrics.Snapshot().AssetsStored)
	})

	t.Run("rejects missing title or content", func(t *testing.T) {
		t.Parallel()
		f := newPostFixture(t)

		_, err := f.svc.Create(ctx, f.author.ID, service.CreatePostInput{Content: "c"})
		require.ErrorIs(t, err, service.ErrMissingPostField)

		_, err = f.svc.Create(ctx, f.author.ID, service.CreatePostInput{Title: "t"})
		require.ErrorIs(t, err, service.ErrMissingPostField)
	})

	t.Run("rejects overlong title", func(t *testing.T) {
		t.Parallel()
		f := newPostFixture(t)

		_, err := f.svc.Create(ctx, f.author.ID, service.CreatePostInput{
			Title:   strings.Repeat("x", model.MaxTitleLength+1),
			Content: "Content",
		})
		require.ErrorIs(t, err, service.ErrTitleTooLong)
	})

	t.Run("title length counts characters not bytes", func(t *testing.T) {
		t.Parallel()
		f := newPostFixture(t)

		// 200 characters, 600 bytes; within the limit.
		post, err := f.svc.Create(ctx, f.author.ID, service.CreatePostInput{
			Title:   strings.Repeat("日", 200),
			Content: "Content",
		})
		require.NoError(t, err)
		require.Equal(t, strings.Repeat("日", 200), post.Title)

		_, err = f.svc.Create(ctx, f.author.ID, service.CreatePostInput{
			Title:   strings.Repeat("日", model.MaxTitleLength+1),
			Content: "Content",
		})
		require.ErrorIs(t, err, service.ErrTitleTooLong)
	})

	t.Run("failed insert removes stored image", func(t *testing.T) {
		t.Parallel()
		f := newPostFixture(t)
		f.posts.CreateErr = errors.New("insert failed")

		_, err := f.svc.Create(ctx, f.author.ID, service.CreatePostInput{
			Title:   "Doomed",
			Content: "Content",
			Image:   upload("photo.png", "png-bytes"),
		})
		require.Error(t, err)
		require.Equal(t, 0, f.assets.Stored())
	})
}

func TestPostServiceGet(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("returns post with author name", func(t *testing.T) {
		t.Parallel()
		f := newPostFixture(t)
		created, err := f.svc.Create(ctx, f.author.ID, service.CreatePostInput{Title: "T", Content: "C"})
		require.NoError(t, err)

		post, err := f.svc.Get(ctx, created.ID)
		require.NoError(t, err)
		require.Equal(t, "alice", post.AuthorName)
	})

	t.Run("unknown post", func(t *testing.T) {
		t.Parallel()
		f := newPostFixture(t)

		_, err := f.svc.Get(ctx, 9999)
		require.ErrorIs(t, err, service.ErrPostNotFound)
	})
}

func TestPostServiceList(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	seed := func(t *testing.T, f *postFixture, authorID int64, n int) {
		t.Helper()
		for i := 0; i < n; i++ {
			_, err := f.svc.Create(ctx, authorID, service.CreatePostInput{
				Title:   fmt.Sprintf("Post %d", i),
				Content: "Content",
			})
			require.NoError(t, err)
		}
	}

	t.Run("paginates newest first", func(t *testing.T) {
		t.Parallel()
		f := newPostFixture(t)
		seed(t, f, f.author.ID, 5)

		result, err := f.svc.List(ctx, 1, 2)
		require.NoError(t, err)
		require.Len(t, result.Posts, 2)
		require.Equal(t, 5, result.Pagination.TotalPosts)
		require.Equal(t, 3, result.Pagination.TotalPages)
		require.True(t, result.Pagination.HasNextPage)
		require.False(t, result.Pagination.HasPreviousPage)
		// Equal timestamps fall back to descending IDs.
		require.Greater(t, result.Posts[0].ID, result.Posts[1].ID)
	})

	t.Run("page past the end is empty", func(t *testing.T) {
		t.Parallel()
		f := newPostFixture(t)
		seed(t, f, f.author.ID, 3)

		result, err := f.svc.List(ctx, 5, 10)
		require.NoError(t, err)
		require.Empty(t, result.Posts)
		require.Equal(t, 3, result.Pagination.TotalPosts)
	})

	t.Run("rejects invalid pagination", func(t *testing.T) {
		t.Parallel()
		f := newPostFixture(t)

		for _, tc := range []struct{ page, limit int }{
			{0, 10}, {-1, 10}, {1, 0}, {1, service.MaxPageSize + 1},
		} {
			_, err := f.svc.List(ctx, tc.page, tc.limit)
			require.ErrorIs(t, err, service.ErrInvalidPagination)
		}
	})

	t.Run("filters by author", func(t *testing.T) {
		t.Parallel()
		f := newPostFixture(t)
		other := f.users.Seed(testutil.NewTestUser(t, "bob"))
		seed(t, f, f.author.ID, 2)
		seed(t, f, other.ID, 3)

		result, err := f.svc.ListByAuthor(ctx, other.ID, 1, 10)
		require.NoError(t, err)
		require.Len(t, result.Posts, 3)
		for _, post := range result.Posts {
			require.Equal(t, other.ID, post.AuthorID)
		}
	})
}

func TestPostServiceUpdate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("partial merge keeps unset fields", func(t *testing.T) {
		t.Parallel()
		f := newPostFixture(t)
		created, err := f.svc.Create(ctx, f.author.ID, service.CreatePostInput{Title: "Old", Content: "Body"})
		require.NoError(t, err)

		updated, err := f.svc.Update(ctx, f.author.ID, created.ID, service.UpdatePostInput{
			Title: strPtr("New"),
		})
		require.NoError(t, err)
		require.Equal(t, "New", updated.Title)
		require.Equal(t, "Body", updated.Content)
		require.Equal(t, uint64(1), f.metrics.Snapshot().PostsUpdated)
	})

	t.Run("rejects empty update", func(t *testing.T) {
		t.Parallel()
		f := newPostFixture(t)
		created, err := f.svc.Create(ctx, f.author.ID, service.CreatePostInput{Title: "T", Content: "C"})
		require.NoError(t, err)

		_, err = f.svc.Update(ctx, f.author.ID, created.ID, service.UpdatePostInput{})
		require.ErrorIs(t, err, service.ErrEmptyUpdate)
	})

	t.Run("rejects clearing required field", func(t *testing.T) {
		t.Parallel()
		f := newPostFixture(t)
		created, err := f.svc.Create(ctx, f.author.ID, service.CreatePostInput{Title: "T", Content: "C"})
		require.NoError(t, err)

		_, err = f.svc.Update(ctx, f.author.ID, created.ID, service.UpdatePostInput{Title: strPtr("")})
		require.ErrorIs(t, err, service.ErrMissingPostField)
	})

	t.Run("merged title length counts characters not bytes", func(t *testing.T) {
		t.Parallel()
		f := newPostFixture(t)
		created, err := f.svc.Create(ctx, f.author.ID, service.CreatePostInput{Title: "T", Content: "C"})
		require.NoError(t, err)

		updated, err := f.svc.Update(ctx, f.author.ID, created.ID, service.UpdatePostInput{
			Title: strPtr(strings.Repeat("ü", model.MaxTitleLength)),
		})
		require.NoError(t, err)
		require.Equal(t, strings.Repeat("ü", model.MaxTitleLength), updated.Title)

		_, err = f.svc.Update(ctx, f.author.ID, created.ID, service.UpdatePostInput{
			Title: strPtr(strings.Repeat("ü", model.MaxTitleLength+1)),
		})
		require.ErrorIs(t, err, service.ErrTitleTooLong)
	})

	t.Run("only the author may update", func(t *testing.T) {
		t.Parallel()
		f := newPostFixture(t)
		stranger := f.users.Seed(testutil.NewTestUser(t, "mallory"))
		created, err := f.svc.Create(ctx, f.author.ID, service.CreatePostInput{Title: "T", Content: "C"})
		require.NoError(t, err)

		_, err = f.svc.Update(ctx, stranger.ID, created.ID, service.UpdatePostInput{Title: strPtr("Hijack")})
		require.ErrorIs(t, err, service.ErrNotPostAuthor)
	})

	t.Run("replacing image removes the old file", func(t *testing.T) {
		t.Parallel()
		f := newPostFixture(t)
		created, err := f.svc.Create(ctx, f.author.ID, service.CreatePostInput{
			Title:   "T",
			Content: "C",
			Image:   upload("old.jpg", "old"),
		})
		require.NoError(t, err)
		oldURL := *created.ImageURL

		updated, err := f.svc.Update(ctx, f.author.ID, created.ID, service.UpdatePostInput{
			Image: upload("new.png", "new"),
		})
		require.NoError(t, err)
		require.NotEqual(t, oldURL, *updated.ImageURL)
		require.False(t, f.assets.Exists(oldURL))
		require.True(t, f.assets.Exists(*updated.ImageURL))
		require.Equal(t, uint64(1), f.metrics.Snapshot().AssetsRemoved)
	})

	t.Run("failed row update keeps the old file and drops the new one", func(t *testing.T) {
		t.Parallel()
		f := newPostFixture(t)
		created, err := f.svc.Create(ctx, f.author.ID, service.CreatePostInput{
			Title:   "T",
			Content: "C",
			Image:   upload("old.jpg", "old"),
		})
		require.NoError(t, err)
		oldURL := *created.ImageURL

		f.posts.UpdateErr = errors.New("update failed")
		_, err = f.svc.Update(ctx, f.author.ID, created.ID, service.UpdatePostInput{
			Image: upload("new.png", "new"),
		})
		require.Error(t, err)
		require.True(t, f.assets.Exists(oldURL))
		require.Equal(t, 1, f.assets.Stored())
	})

	t.Run("unknown post", func(t *testing.T) {
		t.Parallel()
		f := newPostFixture(t)

		_, err := f.svc.Update(ctx, f.author.ID, 9999, service.UpdatePostInput{Title: strPtr("T")})
		require.ErrorIs(t, err, service.ErrPostNotFound)
	})
}

func TestPostServiceDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("removes post and image", func(t *testing.T) {
		t.Parallel()
		f := newPostFixture(t)
		created, err := f.svc.Create(ctx, f.author.ID, service.CreatePostInput{
			Title:   "T",
			Content: "C",
			Image:   upload("photo.jpg", "bytes"),
		})
		require.NoError(t, err)

		require.NoError(t, f.svc.Delete(ctx, f.author.ID, created.ID))
		require.Equal(t, 0, f.assets.Stored())
		require.Equal(t, uint64(1), f.metrics.Snapshot().PostsDeleted)

		_, err = f.svc.Get(ctx, created.ID)
		require.ErrorIs(t, err, service.ErrPostNotFound)
	})

	t.Run("only the author may delete", func(t *testing.T) {
		t.Parallel()
		f := newPostFixture(t)
		stranger := f.users.Seed(testutil.NewTestUser(t, "mallory"))
		created, err := f.svc.Create(ctx, f.author.ID, service.CreatePostInput{Title: "T", Content: "C"})
		require.NoError(t, err)

		err = f.svc.Delete(ctx, stranger.ID, created.ID)
		require.ErrorIs(t, err, service.ErrNotPostAuthor)

		_, err = f.svc.Get(ctx, created.ID)
		require.NoError(t, err)
	})

	t.Run("unknown post", func(t *testing.T) {
		t.Parallel()
		f := newPostFixture(t)

		err := f.svc.Delete(ctx, f.author.ID, 9999)
		require.ErrorIs(t, err, service.ErrPostNotFound)
	})
}
