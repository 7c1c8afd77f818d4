package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"strings"
	"testing"

	"glimpse/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newTestPostService(postRepo *postRepoStub, store ImageStore) *PostService {
	return NewPostService(postRepo, noopUserRepo(), NewImageService(), store, nil)
}

func TestPostService_CreatePost_Validation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	img := pngBytes(t, 4, 4)

	t.Run("caption too long", func(t *testing.T) {
		t.Parallel()
		svc := newTestPostService(noopPostRepo(), newMemoryStore())
		_, err := svc.CreatePost(ctx, CreatePostInput{
			UserID:      1,
			Caption:     strings.Repeat("x", 1001),
			ContentType: "image/png",
			Image:       img,
		})
		assertFieldError(t, err, "caption")
	})

	t.Run("missing image", func(t *testing.T) {
		t.Parallel()
		svc := newTestPostService(noopPostRepo(), newMemoryStore())
		_, err := svc.CreatePost(ctx, CreatePostInput{UserID: 1, ContentType: "image/png"})
		assertAppError(t, err, models.CodeValidation)
	})

	t.Run("content type mismatch", func(t *testing.T) {
		t.Parallel()
		svc := newTestPostService(noopPostRepo(), newMemoryStore())
		_, err := svc.CreatePost(ctx, CreatePostInput{
			UserID:      1,
			ContentType: "image/jpeg",
			Image:       img,
		})
		assertAppError(t, err, models.CodeValidation)
	})
}

func TestPostService_CreatePost_StoresFileBeforeRow(t *testing.T) {
	t.Parallel()

	store := newMemoryStore()
	postRepo := noopPostRepo()

	var storedPath string
	postRepo.createFn = func(_ context.Context, p *models.Post) error {
		storedPath = p.ImagePath
		require.Contains(t, store.files, p.ImagePath, "file must exist before the row insert")
		p.ID = 7
		return nil
	}
	postRepo.getByIDFn = func(_ context.Context, id, _ uint) (*models.Post, error) {
		return &models.Post{ID: id, UserID: 1, ImagePath: storedPath}, nil
	}

	svc := newTestPostService(postRepo, store)
	post, err := svc.CreatePost(context.Background(), CreatePostInput{
		UserID:      1,
		Caption:     "first light",
		ContentType: "image/png",
		Image:       pngBytes(t, 4, 4),
	})
	require.NoError(t, err)
	assert.Equal(t, uint(7), post.ID)
	assert.True(t, strings.HasPrefix(post.ImagePath, "posts/"))
}

func TestPostService_CreatePost_RollsBackFileOnInsertFailure(t *testing.T) {
	t.Parallel()

	store := newMemoryStore()
	postRepo := noopPostRepo()
	postRepo.createFn = func(_ context.Context, _ *models.Post) error {
		return errors.New("insert failed")
	}

	svc := newTestPostService(postRepo, store)
	_, err := svc.CreatePost(context.Background(), CreatePostInput{
		UserID:      1,
		ContentType: "image/png",
		Image:       pngBytes(t, 4, 4),
	})
	require.Error(t, err)
	assert.Empty(t, store.files, "stored file must be removed when the row insert fails")
}

func TestPostService_UpdatePost_Ownership(t *testing.T) {
	t.Parallel()

	t.Run("missing post reports not found before forbidden", func(t *testing.T) {
		t.Parallel()
		postRepo := noopPostRepo()
		postRepo.getByIDFn = notFoundGetByID
		svc := newTestPostService(postRepo, newMemoryStore())
		_, err := svc.UpdatePost(context.Background(), UpdatePostInput{UserID: 1, PostID: 9})
		assertAppError(t, err, models.CodeNotFound)
	})

	t.Run("non-owner cannot update", func(t *testing.T) {
		t.Parallel()
		postRepo := noopPostRepo()
		postRepo.getByIDFn = func(_ context.Context, id, _ uint) (*models.Post, error) {
			return &models.Post{ID: id, UserID: 2}, nil
		}
		svc := newTestPostService(postRepo, newMemoryStore())
		_, err := svc.UpdatePost(context.Background(), UpdatePostInput{UserID: 1, PostID: 9, Caption: "new"})
		assertAppError(t, err, models.CodeForbidden)
	})

	t.Run("owner updates caption", func(t *testing.T) {
		t.Parallel()
		postRepo := noopPostRepo()
		postRepo.getByIDFn = func(_ context.Context, id, _ uint) (*models.Post, error) {
			return &models.Post{ID: id, UserID: 1, Caption: "old"}, nil
		}
		svc := newTestPostService(postRepo, newMemoryStore())
		post, err := svc.UpdatePost(context.Background(), UpdatePostInput{UserID: 1, PostID: 9, Caption: "new"})
		require.NoError(t, err)
		assert.Equal(t, "new", post.Caption)
	})
}

func TestPostService_DeletePost_RemovesFileFirst(t *testing.T) {
	t.Parallel()

	store := newMemoryStore()
	store.files["posts/1.png"] = []byte("img")

	deleted := false
	postRepo := noopPostRepo()
	postRepo.getByIDFn = func(_ context.Context, id, _ uint) (*models.Post, error) {
		return &models.Post{ID: id, UserID: 1, ImagePath: "posts/1.png"}, nil
	}
	postRepo.deleteFn = func(_ context.Context, _ uint) error {
		require.Empty(t, store.files, "file must be gone before the row delete")
		deleted = true
		return nil
	}

	svc := newTestPostService(postRepo, store)
	require.NoError(t, svc.DeletePost(context.Background(), 1, 1))
	assert.True(t, deleted)
}

func TestPostService_ToggleLike(t *testing.T) {
	t.Parallel()

	t.Run("missing post", func(t *testing.T) {
		t.Parallel()
		postRepo := noopPostRepo()
		postRepo.getByIDFn = notFoundGetByID
		svc := newTestPostService(postRepo, newMemoryStore())
		_, err := svc.ToggleLike(context.Background(), 1, 42)
		assertAppError(t, err, models.CodeNotFound)
	})

	t.Run("reports fresh count", func(t *testing.T) {
		t.Parallel()
		postRepo := noopPostRepo()
		postRepo.toggleLikeFn = func(_ context.Context, _, _ uint) (bool, int64, error) {
			return true, 3, nil
		}
		svc := newTestPostService(postRepo, newMemoryStore())
		result, err := svc.ToggleLike(context.Background(), 1, 42)
		require.NoError(t, err)
		assert.True(t, result.Liked)
		assert.Equal(t, int64(3), result.LikeCount)
	})
}

func TestPostService_GetUserPosts_UnknownUser(t *testing.T) {
	t.Parallel()

	svc := NewPostService(noopPostRepo(), noopUserRepo(), NewImageService(), newMemoryStore(), nil)
	_, _, _, err := svc.GetUserPosts(context.Background(), "ghost", 10, 0, 1)
	assertAppError(t, err, models.CodeNotFound)
}
