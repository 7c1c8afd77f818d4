package repository

import (
	"context"

	"glimpse/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FollowRepository exposes explicit operations on the directed follow graph.
type FollowRepository interface {
	// AddEdge inserts follower -> followee. Returns false when the edge
	// already existed (the insert is absorbed by the unique pair constraint).
	AddEdge(ctx context.Context, followerID, userID uint) (bool, error)
	// RemoveEdge deletes follower -> followee. Returns false when no edge existed.
	RemoveEdge(ctx context.Context, followerID, userID uint) (bool, error)
	EdgeExists(ctx context.Context, followerID, userID uint) (bool, error)
	CountFollowers(ctx context.Context, userID uint) (int64, error)
	CountFollowing(ctx context.Context, userID uint) (int64, error)
	ListFollowers(ctx context.Context, userID uint, limit, offset int) ([]models.User, int64, error)
	ListFollowing(ctx context.Context, userID uint, limit, offset int) ([]models.User, int64, error)
	// FollowingIDs returns the subset of candidateIDs the user follows.
	FollowingIDs(ctx context.Context, userID uint, candidateIDs []uint) ([]uint, error)
	// FollowerIDs returns the subset of candidateIDs that follow the user.
	FollowerIDs(ctx context.Context, userID uint, candidateIDs []uint) ([]uint, error)
}

type followRepository struct {
	db *gorm.DB
}

// NewFollowRepository returns a new FollowRepository implementation.
func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

func (r *followRepository) AddEdge(ctx context.Context, followerID, userID uint) (bool, error) {
	edge := models.Follow{FollowerID: followerID, UserID: userID}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&edge)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *followRepository) RemoveEdge(ctx context.Context, followerID, userID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("follower_id = ? AND user_id = ?", followerID, userID).
		Delete(&models.Follow{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *followRepository) EdgeExists(ctx context.Context, followerID, userID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ? AND user_id = ?", followerID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *followRepository) CountFollowers(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

func (r *followRepository) CountFollowing(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ?", userID).
		Count(&count).Error
	return count, err
}

func (r *followRepository) ListFollowers(ctx context.Context, userID uint, limit, offset int) ([]models.User, int64, error) {
	total, err := r.CountFollowers(ctx, userID)
	if err != nil {
		return nil, 0, err
	}

	var users []models.User
	err = r.db.WithContext(ctx).
		Joins("JOIN followers ON followers.follower_id = users.id").
		Where("followers.user_id = ?", userID).
		Order("followers.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *followRepository) ListFollowing(ctx context.Context, userID uint, limit, offset int) ([]models.User, int64, error) {
	total, err := r.CountFollowing(ctx, userID)
	if err != nil {
		return nil, 0, err
	}

	var users []models.User
	err = r.db.WithContext(ctx).
		Joins("JOIN followers ON followers.user_id = users.id").
		Where("followers.follower_id = ?", userID).
		Order("followers.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *followRepository) FollowingIDs(ctx context.Context, userID uint, candidateIDs []uint) ([]uint, error) {
	if len(candidateIDs) == 0 {
		return nil, nil
	}
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ? AND user_id IN ?", userID, candidateIDs).
		Pluck("user_id", &ids).Error
	return ids, err
}

func (r *followRepository) FollowerIDs(ctx context.Context, userID uint, candidateIDs []uint) ([]uint, error) {
	if len(candidateIDs) == 0 {
		return nil, nil
	}
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("user_id = ? AND follower_id IN ?", userID, candidateIDs).
		Pluck("follower_id", &ids).Error
	return ids, err
}
