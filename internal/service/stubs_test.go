package service

import (
	"context"
	"errors"
	"testing"

	"glimpse/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// Function-field stubs for the repository interfaces. Each noop constructor
// returns a stub whose calls succeed with zero values; tests override the
// fields they care about.

type postRepoStub struct {
	createFn      func(context.Context, *models.Post) error
	getByIDFn     func(context.Context, uint, uint) (*models.Post, error)
	getByUserIDFn func(context.Context, uint, int, int, uint) ([]*models.Post, int64, error)
	feedFn        func(context.Context, uint, int, int) ([]*models.Post, int64, error)
	updateFn      func(context.Context, *models.Post) error
	deleteFn      func(context.Context, uint) error
	isLikedFn     func(context.Context, uint, uint) (bool, error)
	toggleLikeFn  func(context.Context, uint, uint) (bool, int64, error)
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id, currentUserID uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id, currentUserID)
}
func (s *postRepoStub) GetByUserID(ctx context.Context, userID uint, limit, offset int, currentUserID uint) ([]*models.Post, int64, error) {
	return s.getByUserIDFn(ctx, userID, limit, offset, currentUserID)
}
func (s *postRepoStub) Feed(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, int64, error) {
	return s.feedFn(ctx, userID, limit, offset)
}
func (s *postRepoStub) Update(ctx context.Context, post *models.Post) error {
	return s.updateFn(ctx, post)
}
func (s *postRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *postRepoStub) IsLiked(ctx context.Context, userID, postID uint) (bool, error) {
	return s.isLikedFn(ctx, userID, postID)
}
func (s *postRepoStub) ToggleLike(ctx context.Context, userID, postID uint) (bool, int64, error) {
	return s.toggleLikeFn(ctx, userID, postID)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn: func(_ context.Context, _ *models.Post) error { return nil },
		getByIDFn: func(_ context.Context, id, _ uint) (*models.Post, error) {
			return &models.Post{ID: id}, nil
		},
		getByUserIDFn: func(_ context.Context, _ uint, _, _ int, _ uint) ([]*models.Post, int64, error) {
			return nil, 0, nil
		},
		feedFn: func(_ context.Context, _ uint, _, _ int) ([]*models.Post, int64, error) {
			return nil, 0, nil
		},
		updateFn:     func(_ context.Context, _ *models.Post) error { return nil },
		deleteFn:     func(_ context.Context, _ uint) error { return nil },
		isLikedFn:    func(_ context.Context, _, _ uint) (bool, error) { return false, nil },
		toggleLikeFn: func(_ context.Context, _, _ uint) (bool, int64, error) { return true, 1, nil },
	}
}

type commentRepoStub struct {
	createFn  func(context.Context, *models.Comment) error
	getByIDFn func(context.Context, uint) (*models.Comment, error)
	listFn    func(context.Context, uint, int, int) ([]*models.Comment, int64, error)
	deleteFn  func(context.Context, uint) error
}

func (s *commentRepoStub) Create(ctx context.Context, comment *models.Comment) error {
	return s.createFn(ctx, comment)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}
func (s *commentRepoStub) ListTopLevelByPost(ctx context.Context, postID uint, limit, offset int) ([]*models.Comment, int64, error) {
	return s.listFn(ctx, postID, limit, offset)
}
func (s *commentRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn: func(_ context.Context, _ *models.Comment) error { return nil },
		getByIDFn: func(_ context.Context, id uint) (*models.Comment, error) {
			return &models.Comment{ID: id}, nil
		},
		listFn: func(_ context.Context, _ uint, _, _ int) ([]*models.Comment, int64, error) {
			return nil, 0, nil
		},
		deleteFn: func(_ context.Context, _ uint) error { return nil },
	}
}

type userRepoStub struct {
	getByIDFn       func(context.Context, uint) (*models.User, error)
	getByEmailFn    func(context.Context, string) (*models.User, error)
	getByUsernameFn func(context.Context, string) (*models.User, error)
	createFn        func(context.Context, *models.User) error
	updateFn        func(context.Context, *models.User) error
	deleteFn        func(context.Context, uint) error
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}
func (s *userRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id, Username: "someone"}, nil
		},
		getByEmailFn:    func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		getByUsernameFn: func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		createFn:        func(_ context.Context, _ *models.User) error { return nil },
		updateFn:        func(_ context.Context, _ *models.User) error { return nil },
		deleteFn:        func(_ context.Context, _ uint) error { return nil },
	}
}

type followRepoStub struct {
	addEdgeFn        func(context.Context, uint, uint) (bool, error)
	removeEdgeFn     func(context.Context, uint, uint) (bool, error)
	edgeExistsFn     func(context.Context, uint, uint) (bool, error)
	countFollowersFn func(context.Context, uint) (int64, error)
	countFollowingFn func(context.Context, uint) (int64, error)
	listFollowersFn  func(context.Context, uint, int, int) ([]models.User, int64, error)
	listFollowingFn  func(context.Context, uint, int, int) ([]models.User, int64, error)
	followingIDsFn   func(context.Context, uint, []uint) ([]uint, error)
	followerIDsFn    func(context.Context, uint, []uint) ([]uint, error)
}

func (s *followRepoStub) AddEdge(ctx context.Context, followerID, userID uint) (bool, error) {
	return s.addEdgeFn(ctx, followerID, userID)
}
func (s *followRepoStub) RemoveEdge(ctx context.Context, followerID, userID uint) (bool, error) {
	return s.removeEdgeFn(ctx, followerID, userID)
}
func (s *followRepoStub) EdgeExists(ctx context.Context, followerID, userID uint) (bool, error) {
	return s.edgeExistsFn(ctx, followerID, userID)
}
func (s *followRepoStub) CountFollowers(ctx context.Context, userID uint) (int64, error) {
	return s.countFollowersFn(ctx, userID)
}
func (s *followRepoStub) CountFollowing(ctx context.Context, userID uint) (int64, error) {
	return s.countFollowingFn(ctx, userID)
}
func (s *followRepoStub) ListFollowers(ctx context.Context, userID uint, limit, offset int) ([]models.User, int64, error) {
	return s.listFollowersFn(ctx, userID, limit, offset)
}
func (s *followRepoStub) ListFollowing(ctx context.Context, userID uint, limit, offset int) ([]models.User, int64, error) {
	return s.listFollowingFn(ctx, userID, limit, offset)
}
func (s *followRepoStub) FollowingIDs(ctx context.Context, userID uint, candidateIDs []uint) ([]uint, error) {
	return s.followingIDsFn(ctx, userID, candidateIDs)
}
func (s *followRepoStub) FollowerIDs(ctx context.Context, userID uint, candidateIDs []uint) ([]uint, error) {
	return s.followerIDsFn(ctx, userID, candidateIDs)
}

func noopFollowRepo() *followRepoStub {
	return &followRepoStub{
		addEdgeFn:        func(_ context.Context, _, _ uint) (bool, error) { return true, nil },
		removeEdgeFn:     func(_ context.Context, _, _ uint) (bool, error) { return true, nil },
		edgeExistsFn:     func(_ context.Context, _, _ uint) (bool, error) { return false, nil },
		countFollowersFn: func(_ context.Context, _ uint) (int64, error) { return 0, nil },
		countFollowingFn: func(_ context.Context, _ uint) (int64, error) { return 0, nil },
		listFollowersFn: func(_ context.Context, _ uint, _, _ int) ([]models.User, int64, error) {
			return nil, 0, nil
		},
		listFollowingFn: func(_ context.Context, _ uint, _, _ int) ([]models.User, int64, error) {
			return nil, 0, nil
		},
		followingIDsFn: func(_ context.Context, _ uint, _ []uint) ([]uint, error) { return nil, nil },
		followerIDsFn:  func(_ context.Context, _ uint, _ []uint) ([]uint, error) { return nil, nil },
	}
}

// memoryStore is an in-memory ImageStore for tests.
type memoryStore struct {
	files   map[string][]byte
	saveErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{files: make(map[string][]byte)}
}

func (m *memoryStore) Save(bucket, filename string, data []byte) (string, error) {
	if m.saveErr != nil {
		return "", m.saveErr
	}
	path := bucket + "/" + filename
	m.files[path] = data
	return path, nil
}

func (m *memoryStore) Delete(storedPath string) error {
	delete(m.files, storedPath)
	return nil
}

func assertAppError(t *testing.T, err error, code string) *models.AppError {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected *models.AppError, got %T: %v", err, err)
	require.Equal(t, code, appErr.Code)
	return appErr
}

func assertFieldError(t *testing.T, err error, field string) {
	t.Helper()
	appErr := assertAppError(t, err, models.CodeValidation)
	require.Contains(t, appErr.Fields, field)
}

func notFoundGetByID(_ context.Context, _, _ uint) (*models.Post, error) {
	return nil, gorm.ErrRecordNotFound
}
