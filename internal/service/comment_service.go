package service

import (
	"context"
	"errors"

	"glimpse/internal/models"
	"glimpse/internal/repository"
	"glimpse/internal/validation"

	"gorm.io/gorm"
)

// CommentService implements comment creation, deletion, and the one-level
// threaded read path.
type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	imageURL    func(storedPath string) string
}

type CreateCommentInput struct {
	UserID   uint
	PostID   uint
	Body     string
	ParentID *uint
}

// NewCommentService returns a new CommentService.
func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	imageURL func(storedPath string) string,
) *CommentService {
	if imageURL == nil {
		imageURL = func(string) string { return "" }
	}
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		imageURL:    imageURL,
	}
}

// CreateComment validates the target post, the body, and the parent. A parent
// must be an existing top-level comment on the same post: replying to a reply
// is rejected so threads cannot fall out of the listing view.
func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	if _, err := s.postRepo.GetByID(ctx, in.PostID, 0); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", in.PostID)
		}
		return nil, models.NewInternalError(err)
	}

	if err := validation.ValidateCommentBody(in.Body); err != nil {
		return nil, models.NewFieldError("body", err.Error())
	}

	if in.ParentID != nil {
		parent, err := s.commentRepo.GetByID(ctx, *in.ParentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, models.NewFieldError("parent_id", "The selected parent comment does not exist")
			}
			return nil, models.NewInternalError(err)
		}
		if parent.PostID != in.PostID {
			return nil, models.NewFieldError("parent_id", "The parent comment does not belong to this post")
		}
		if parent.ParentID != nil {
			return nil, models.NewFieldError("parent_id", "Replies to replies are not supported")
		}
	}

	comment := &models.Comment{
		UserID:   in.UserID,
		PostID:   in.PostID,
		Body:     in.Body,
		ParentID: in.ParentID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, models.NewInternalError(err)
	}

	created, err := s.commentRepo.GetByID(ctx, comment.ID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	s.decorate([]*models.Comment{created})
	return created, nil
}

// DeleteComment is owner-only. A missing comment reports NotFound before the
// ownership check reports Forbidden.
func (s *CommentService) DeleteComment(ctx context.Context, userID, commentID uint) error {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Comment", commentID)
		}
		return models.NewInternalError(err)
	}

	if comment.UserID != userID {
		return models.NewForbiddenError("You can only delete your own comments")
	}

	if err := s.commentRepo.Delete(ctx, commentID); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// ListPostComments returns paginated top-level comments with their direct
// replies, newest top-level comment first.
func (s *CommentService) ListPostComments(ctx context.Context, postID uint, limit, offset int) ([]*models.Comment, int64, error) {
	if _, err := s.postRepo.GetByID(ctx, postID, 0); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, models.NewNotFoundError("Post", postID)
		}
		return nil, 0, models.NewInternalError(err)
	}

	comments, total, err := s.commentRepo.ListTopLevelByPost(ctx, postID, limit, offset)
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	s.decorate(comments)
	return comments, total, nil
}

func (s *CommentService) decorate(comments []*models.Comment) {
	for _, c := range comments {
		c.User.ProfilePictureURL = s.imageURL(c.User.ProfilePicture)
		for i := range c.Replies {
			c.Replies[i].User.ProfilePictureURL = s.imageURL(c.Replies[i].User.ProfilePicture)
		}
	}
}
