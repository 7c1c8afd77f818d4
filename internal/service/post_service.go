package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"glimpse/internal/models"
	"glimpse/internal/observability"
	"glimpse/internal/repository"
	"glimpse/internal/storage"
	"glimpse/internal/validation"

	"gorm.io/gorm"
)

// ImageStore is the subset of the file store the services need.
type ImageStore interface {
	Save(bucket, filename string, data []byte) (string, error)
	Delete(storedPath string) error
}

// PostService implements post CRUD, the home feed, and like toggling.
type PostService struct {
	postRepo repository.PostRepository
	userRepo repository.UserRepository
	images   *ImageService
	store    ImageStore
	imageURL func(storedPath string) string
}

type CreatePostInput struct {
	UserID      uint
	Caption     string
	ContentType string
	Image       []byte
}

type UpdatePostInput struct {
	UserID  uint
	PostID  uint
	Caption string
}

// LikeResult reports the state after a like toggle. LikeCount comes from a
// fresh count query, not an adjusted counter.
type LikeResult struct {
	Liked     bool  `json:"liked"`
	LikeCount int64 `json:"like_count"`
}

// NewPostService returns a new PostService.
func NewPostService(
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	images *ImageService,
	store ImageStore,
	imageURL func(storedPath string) string,
) *PostService {
	if imageURL == nil {
		imageURL = func(string) string { return "" }
	}
	return &PostService{
		postRepo: postRepo,
		userRepo: userRepo,
		images:   images,
		store:    store,
		imageURL: imageURL,
	}
}

// CreatePost validates the caption and image, writes the image file first,
// and rolls the file back if the row insert fails.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if err := validation.ValidateCaption(in.Caption); err != nil {
		return nil, models.NewFieldError("caption", err.Error())
	}

	validated, err := s.images.Validate(in.ContentType, in.Image)
	if err != nil {
		return nil, err
	}

	filename := fmt.Sprintf("%d.%s", time.Now().UnixNano(), validated.Ext)
	storedPath, err := s.store.Save(storage.BucketPosts, filename, validated.Data)
	if err != nil {
		return nil, models.NewStorageError("Failed to store image", err)
	}

	post := &models.Post{
		UserID:    in.UserID,
		ImagePath: storedPath,
		Caption:   in.Caption,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		_ = s.store.Delete(storedPath)
		return nil, models.NewInternalError(err)
	}

	return s.GetPost(ctx, post.ID, in.UserID)
}

// Feed returns the reverse-chronological timeline of the caller and the
// accounts they follow.
func (s *PostService) Feed(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, int64, error) {
	posts, total, err := s.postRepo.Feed(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	s.decorate(posts)
	return posts, total, nil
}

func (s *PostService) GetPost(ctx context.Context, id uint, currentUserID uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id, currentUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError(err)
	}
	s.decorate([]*models.Post{post})
	return post, nil
}

// GetUserPosts returns a user's posts plus the resolved author, so callers
// can include a profile summary alongside the page.
func (s *PostService) GetUserPosts(ctx context.Context, username string, limit, offset int, currentUserID uint) (*models.User, []*models.Post, int64, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, nil, 0, err
	}
	if user == nil {
		return nil, nil, 0, models.NewNotFoundError("User", username)
	}

	posts, total, err := s.postRepo.GetByUserID(ctx, user.ID, limit, offset, currentUserID)
	if err != nil {
		return nil, nil, 0, models.NewInternalError(err)
	}
	s.decorate(posts)
	user.ProfilePictureURL = s.imageURL(user.ProfilePicture)
	return user, posts, total, nil
}

// UpdatePost is a caption-only, owner-only mutation. A missing post reports
// NotFound before the ownership check reports Forbidden.
func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, in.PostID, in.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", in.PostID)
		}
		return nil, models.NewInternalError(err)
	}

	if post.UserID != in.UserID {
		return nil, models.NewForbiddenError("You can only update your own posts")
	}

	if err := validation.ValidateCaption(in.Caption); err != nil {
		return nil, models.NewFieldError("caption", err.Error())
	}

	post.Caption = in.Caption
	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, models.NewInternalError(err)
	}
	s.decorate([]*models.Post{post})
	return post, nil
}

// DeletePost removes the stored image file before the row.
func (s *PostService) DeletePost(ctx context.Context, userID, postID uint) error {
	post, err := s.postRepo.GetByID(ctx, postID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Post", postID)
		}
		return models.NewInternalError(err)
	}

	if post.UserID != userID {
		return models.NewForbiddenError("You can only delete your own posts")
	}

	if post.ImagePath != "" {
		if err := s.store.Delete(post.ImagePath); err != nil {
			return models.NewStorageError("Failed to delete image", err)
		}
	}

	if err := s.postRepo.Delete(ctx, postID); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// ToggleLike flips the caller's like on the post and reports the fresh count.
func (s *PostService) ToggleLike(ctx context.Context, userID, postID uint) (*LikeResult, error) {
	if _, err := s.postRepo.GetByID(ctx, postID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", postID)
		}
		return nil, models.NewInternalError(err)
	}

	liked, count, err := s.postRepo.ToggleLike(ctx, userID, postID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	outcome := "unliked"
	if liked {
		outcome = "liked"
	}
	observability.LikeToggles.WithLabelValues(outcome).Inc()

	return &LikeResult{Liked: liked, LikeCount: count}, nil
}

// decorate fills derived URL fields on posts and their embedded authors.
func (s *PostService) decorate(posts []*models.Post) {
	for _, p := range posts {
		p.ImageURL = s.imageURL(p.ImagePath)
		p.User.ProfilePictureURL = s.imageURL(p.User.ProfilePicture)
	}
}
