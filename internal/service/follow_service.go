package service

import (
	"context"

	"glimpse/internal/models"
	"glimpse/internal/observability"
	"glimpse/internal/repository"
)

// FollowService implements the follow graph rules.
type FollowService struct {
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
	imageURL   func(storedPath string) string
}

// FollowState is the result of a graph mutation: the caller's relation to the
// target plus the target's live edge counts.
type FollowState struct {
	IsFollowing    bool  `json:"is_following"`
	FollowersCount int64 `json:"followers_count"`
	FollowingCount int64 `json:"following_count"`
}

// FollowStatus reports both directions of the relation between caller and target.
type FollowStatus struct {
	IsFollowing  bool `json:"is_following"`
	IsFollowedBy bool `json:"is_followed_by"`
}

// ListFollowsInput selects a page of a user's followers or following.
type ListFollowsInput struct {
	Username string
	// Type is "followers" or "following".
	Type          string
	Limit         int
	Offset        int
	CurrentUserID uint
}

// NewFollowService returns a new FollowService. imageURL maps a stored image
// path to its public URL.
func NewFollowService(
	followRepo repository.FollowRepository,
	userRepo repository.UserRepository,
	imageURL func(storedPath string) string,
) *FollowService {
	if imageURL == nil {
		imageURL = func(string) string { return "" }
	}
	return &FollowService{
		followRepo: followRepo,
		userRepo:   userRepo,
		imageURL:   imageURL,
	}
}

func (s *FollowService) resolveTarget(ctx context.Context, callerID uint, username string) (*models.User, error) {
	target, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, models.NewNotFoundError("User", username)
	}
	if target.ID == callerID {
		return nil, models.NewConflictError("You cannot follow yourself")
	}
	return target, nil
}

// Follow adds the caller -> target edge. Following an already-followed target
// is a conflict, not a no-op.
func (s *FollowService) Follow(ctx context.Context, callerID uint, username string) (*FollowState, error) {
	target, err := s.resolveTarget(ctx, callerID, username)
	if err != nil {
		return nil, err
	}

	inserted, err := s.followRepo.AddEdge(ctx, callerID, target.ID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if !inserted {
		return nil, models.NewConflictError("You are already following this user")
	}

	observability.FollowMutations.WithLabelValues("follow").Inc()
	return s.stateFor(ctx, target.ID, true)
}

// Unfollow removes the caller -> target edge. Unfollowing a target that is
// not followed is a conflict.
func (s *FollowService) Unfollow(ctx context.Context, callerID uint, username string) (*FollowState, error) {
	target, err := s.resolveTarget(ctx, callerID, username)
	if err != nil {
		return nil, err
	}

	removed, err := s.followRepo.RemoveEdge(ctx, callerID, target.ID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if !removed {
		return nil, models.NewConflictError("You are not following this user")
	}

	observability.FollowMutations.WithLabelValues("unfollow").Inc()
	return s.stateFor(ctx, target.ID, false)
}

// ToggleFollow flips the edge and never errors on current state. A concurrent
// insert of the same edge is absorbed as "already following".
func (s *FollowService) ToggleFollow(ctx context.Context, callerID uint, username string) (*FollowState, error) {
	target, err := s.resolveTarget(ctx, callerID, username)
	if err != nil {
		return nil, err
	}

	removed, err := s.followRepo.RemoveEdge(ctx, callerID, target.ID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	following := false
	if !removed {
		if _, err := s.followRepo.AddEdge(ctx, callerID, target.ID); err != nil {
			return nil, models.NewInternalError(err)
		}
		following = true
		observability.FollowMutations.WithLabelValues("follow").Inc()
	} else {
		observability.FollowMutations.WithLabelValues("unfollow").Inc()
	}

	return s.stateFor(ctx, target.ID, following)
}

func (s *FollowService) stateFor(ctx context.Context, targetID uint, following bool) (*FollowState, error) {
	followers, err := s.followRepo.CountFollowers(ctx, targetID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	followingCount, err := s.followRepo.CountFollowing(ctx, targetID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &FollowState{
		IsFollowing:    following,
		FollowersCount: followers,
		FollowingCount: followingCount,
	}, nil
}

// Status reports both directions of the relation between caller and target.
func (s *FollowService) Status(ctx context.Context, callerID uint, username string) (*FollowStatus, error) {
	target, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, models.NewNotFoundError("User", username)
	}

	isFollowing, err := s.followRepo.EdgeExists(ctx, callerID, target.ID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	isFollowedBy, err := s.followRepo.EdgeExists(ctx, target.ID, callerID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &FollowStatus{IsFollowing: isFollowing, IsFollowedBy: isFollowedBy}, nil
}

// List returns a page of the target's followers or following, annotated with
// the caller's relation to each listed user.
func (s *FollowService) List(ctx context.Context, in ListFollowsInput) ([]models.UserSummary, int64, error) {
	if in.Type != "followers" && in.Type != "following" {
		return nil, 0, models.NewFieldError("type", "The type must be followers or following")
	}

	target, err := s.userRepo.GetByUsername(ctx, in.Username)
	if err != nil {
		return nil, 0, err
	}
	if target == nil {
		return nil, 0, models.NewNotFoundError("User", in.Username)
	}

	var users []models.User
	var total int64
	if in.Type == "followers" {
		users, total, err = s.followRepo.ListFollowers(ctx, target.ID, in.Limit, in.Offset)
	} else {
		users, total, err = s.followRepo.ListFollowing(ctx, target.ID, in.Limit, in.Offset)
	}
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	summaries := make([]models.UserSummary, len(users))
	for i := range users {
		users[i].ProfilePictureURL = s.imageURL(users[i].ProfilePicture)
		summaries[i] = users[i].Summary()
	}

	if in.CurrentUserID != 0 && len(users) > 0 {
		if err := s.annotateRelations(ctx, in.CurrentUserID, summaries); err != nil {
			return nil, 0, err
		}
	}
	return summaries, total, nil
}

// annotateRelations fills is_following/is_followed_by for each summary using
// two batch queries instead of per-row existence checks.
func (s *FollowService) annotateRelations(ctx context.Context, callerID uint, summaries []models.UserSummary) error {
	ids := make([]uint, len(summaries))
	for i := range summaries {
		ids[i] = summaries[i].ID
	}

	followingIDs, err := s.followRepo.FollowingIDs(ctx, callerID, ids)
	if err != nil {
		return models.NewInternalError(err)
	}
	followerIDs, err := s.followRepo.FollowerIDs(ctx, callerID, ids)
	if err != nil {
		return models.NewInternalError(err)
	}

	followingSet := make(map[uint]bool, len(followingIDs))
	for _, id := range followingIDs {
		followingSet[id] = true
	}
	followerSet := make(map[uint]bool, len(followerIDs))
	for _, id := range followerIDs {
		followerSet[id] = true
	}

	for i := range summaries {
		isFollowing := followingSet[summaries[i].ID]
		isFollowedBy := followerSet[summaries[i].ID]
		summaries[i].IsFollowing = &isFollowing
		summaries[i].IsFollowedBy = &isFollowedBy
	}
	return nil
}
