package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"glimpse/internal/models"
	"glimpse/internal/repository"
	"glimpse/internal/storage"
	"glimpse/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// UserService implements registration, authentication, and profile management.
type UserService struct {
	userRepo   repository.UserRepository
	followRepo repository.FollowRepository
	images     *ImageService
	store      ImageStore
	imageURL   func(storedPath string) string
}

type RegisterInput struct {
	Name                 string
	Username             string
	Email                string
	Password             string
	PasswordConfirmation string
	// Picture is an optional profile picture upload.
	Picture            []byte
	PictureContentType string
}

type UpdateProfileInput struct {
	UserID   uint
	Name     *string
	Username *string
	Email    *string
}

type ChangePasswordInput struct {
	UserID          uint
	CurrentPassword string
	NewPassword     string
}

// NewUserService returns a new UserService.
func NewUserService(
	userRepo repository.UserRepository,
	followRepo repository.FollowRepository,
	images *ImageService,
	store ImageStore,
	imageURL func(storedPath string) string,
) *UserService {
	if imageURL == nil {
		imageURL = func(string) string { return "" }
	}
	return &UserService{
		userRepo:   userRepo,
		followRepo: followRepo,
		images:     images,
		store:      store,
		imageURL:   imageURL,
	}
}

// Register creates an account. All field failures are collected into one
// field-keyed validation error, matching what clients render per input.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	fields := map[string][]string{}

	if err := validation.ValidateName(in.Name); err != nil {
		fields["name"] = append(fields["name"], err.Error())
	}
	if err := validation.ValidateUsername(in.Username); err != nil {
		fields["username"] = append(fields["username"], err.Error())
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		fields["email"] = append(fields["email"], err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		fields["password"] = append(fields["password"], err.Error())
	}
	if in.PasswordConfirmation != "" && in.Password != in.PasswordConfirmation {
		fields["password"] = append(fields["password"], "The password confirmation does not match")
	}

	if len(fields["username"]) == 0 {
		existing, err := s.userRepo.GetByUsername(ctx, in.Username)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			fields["username"] = append(fields["username"], "The username has already been taken")
		}
	}
	if len(fields["email"]) == 0 {
		existing, err := s.userRepo.GetByEmail(ctx, in.Email)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			fields["email"] = append(fields["email"], "The email has already been taken")
		}
	}

	var validatedPicture *ValidatedImage
	if len(in.Picture) > 0 {
		validated, err := s.images.Validate(in.PictureContentType, in.Picture)
		if err != nil {
			var appErr *models.AppError
			if errors.As(err, &appErr) && len(appErr.Fields) > 0 {
				fields["profile_picture"] = appErr.Fields["image"]
			} else {
				return nil, err
			}
		} else {
			validatedPicture = validated
		}
	}

	if len(fields) > 0 {
		return nil, models.NewFieldValidationError(fields)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Name:     in.Name,
		Username: in.Username,
		Email:    in.Email,
		Password: string(hashed),
	}

	var storedPaths []string
	if validatedPicture != nil {
		base := fmt.Sprintf("%d_%s", time.Now().Unix(), in.Username)
		paths, path, err := s.storeAvatar(base, validatedPicture)
		if err != nil {
			return nil, err
		}
		storedPaths = paths
		user.ProfilePicture = path
	}

	// File is on disk before the row; the unique constraint is the backstop
	// for registrations racing the pre-checks above.
	if err := s.userRepo.Create(ctx, user); err != nil {
		s.deleteAvatarFiles(storedPaths)
		return nil, err
	}

	return s.GetProfile(ctx, user.ID)
}

// Authenticate resolves login as an email or username and verifies the
// password. Failures are opaque: the caller never learns which part was wrong.
func (s *UserService) Authenticate(ctx context.Context, login, password string) (*models.User, error) {
	credentialsErr := &models.AppError{
		Code:    models.CodeUnauthorized,
		Message: "The provided credentials do not match our records",
		Fields:  map[string][]string{"login": {"The provided credentials do not match our records"}},
	}

	if login == "" || password == "" {
		return nil, credentialsErr
	}

	var user *models.User
	var err error
	if validation.ValidateEmail(login) == nil {
		user, err = s.userRepo.GetByEmail(ctx, login)
	} else {
		user, err = s.userRepo.GetByUsername(ctx, login)
	}
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, credentialsErr
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, credentialsErr
	}
	return s.withCounts(ctx, user)
}

// GetProfile returns the user with derived counts and picture URL.
func (s *UserService) GetProfile(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.withCounts(ctx, user)
}

// GetPublicProfile resolves a user by username and, when a caller is
// authenticated, annotates the relation between the two. Only the public
// projection is returned; the email stays private to its owner.
func (s *UserService) GetPublicProfile(ctx context.Context, callerID uint, username string) (*models.PublicProfile, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundError("User", username)
	}

	user, err = s.withCounts(ctx, user)
	if err != nil {
		return nil, err
	}

	if callerID != 0 && callerID != user.ID {
		isFollowing, err := s.followRepo.EdgeExists(ctx, callerID, user.ID)
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		isFollowedBy, err := s.followRepo.EdgeExists(ctx, user.ID, callerID)
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		user.IsFollowing = &isFollowing
		user.IsFollowedBy = &isFollowedBy
	}

	profile := user.PublicProfile()
	return &profile, nil
}

// UpdateProfile applies a partial update. Each field is validated only when
// present; uniqueness checks exclude the user's own row.
func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	fields := map[string][]string{}

	if in.Name != nil {
		if err := validation.ValidateName(*in.Name); err != nil {
			fields["name"] = append(fields["name"], err.Error())
		} else {
			user.Name = *in.Name
		}
	}
	if in.Username != nil && *in.Username != user.Username {
		if err := validation.ValidateUsername(*in.Username); err != nil {
			fields["username"] = append(fields["username"], err.Error())
		} else {
			existing, err := s.userRepo.GetByUsername(ctx, *in.Username)
			if err != nil {
				return nil, err
			}
			if existing != nil && existing.ID != user.ID {
				fields["username"] = append(fields["username"], "The username has already been taken")
			} else {
				user.Username = *in.Username
			}
		}
	}
	if in.Email != nil && *in.Email != user.Email {
		if err := validation.ValidateEmail(*in.Email); err != nil {
			fields["email"] = append(fields["email"], err.Error())
		} else {
			existing, err := s.userRepo.GetByEmail(ctx, *in.Email)
			if err != nil {
				return nil, err
			}
			if existing != nil && existing.ID != user.ID {
				fields["email"] = append(fields["email"], "The email has already been taken")
			} else {
				user.Email = *in.Email
			}
		}
	}

	if len(fields) > 0 {
		return nil, models.NewFieldValidationError(fields)
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return s.withCounts(ctx, user)
}

// ChangePassword verifies the current password before accepting the new one.
func (s *UserService) ChangePassword(ctx context.Context, in ChangePasswordInput) error {
	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.CurrentPassword)) != nil {
		return models.NewFieldError("current_password", "The current password is incorrect")
	}

	if err := validation.ValidatePassword(in.NewPassword); err != nil {
		return models.NewFieldError("new_password", err.Error())
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return models.NewInternalError(err)
	}

	user.Password = string(hashed)
	return s.userRepo.Update(ctx, user)
}

// UploadProfilePicture replaces the stored avatar. New files are written
// first; on a row-write failure the new files are removed, and on success the
// previous files are.
func (s *UserService) UploadProfilePicture(ctx context.Context, userID uint, contentType string, content []byte) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	validated, err := s.images.Validate(contentType, content)
	if err != nil {
		return nil, err
	}

	newPaths, newPath, err := s.storeAvatar(fmt.Sprintf("%d_%d", userID, time.Now().Unix()), validated)
	if err != nil {
		return nil, err
	}

	oldPath := user.ProfilePicture
	user.ProfilePicture = newPath
	if err := s.userRepo.Update(ctx, user); err != nil {
		s.deleteAvatarFiles(newPaths)
		return nil, err
	}

	if oldPath != "" {
		s.deleteAvatarFiles(avatarVariantPaths(oldPath))
	}
	return s.withCounts(ctx, user)
}

// RemoveProfilePicture clears the reference and deletes the stored files.
func (s *UserService) RemoveProfilePicture(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if user.ProfilePicture == "" {
		return nil, models.NewBadStateError("No profile picture to remove")
	}

	oldPath := user.ProfilePicture
	user.ProfilePicture = ""
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	s.deleteAvatarFiles(avatarVariantPaths(oldPath))
	return s.withCounts(ctx, user)
}

// storeAvatar writes the normalized JPEG master and WebP variant, returning
// all written paths and the canonical stored path.
func (s *UserService) storeAvatar(base string, validated *ValidatedImage) ([]string, string, error) {
	jpegData, webpData, err := s.images.NormalizeAvatar(validated.Decoded)
	if err != nil {
		return nil, "", err
	}

	jpegPath, err := s.store.Save(storage.BucketProfile, base+".jpg", jpegData)
	if err != nil {
		return nil, "", models.NewStorageError("Failed to store profile picture", err)
	}
	webpPath, err := s.store.Save(storage.BucketProfile, base+".webp", webpData)
	if err != nil {
		s.deleteAvatarFiles([]string{jpegPath})
		return nil, "", models.NewStorageError("Failed to store profile picture", err)
	}
	return []string{jpegPath, webpPath}, jpegPath, nil
}

func (s *UserService) deleteAvatarFiles(paths []string) {
	for _, p := range paths {
		_ = s.store.Delete(p)
	}
}

// avatarVariantPaths expands a stored avatar path to the master and its
// WebP variant.
func avatarVariantPaths(storedPath string) []string {
	paths := []string{storedPath}
	if strings.HasSuffix(storedPath, ".jpg") {
		paths = append(paths, strings.TrimSuffix(storedPath, ".jpg")+".webp")
	}
	return paths
}

func (s *UserService) withCounts(ctx context.Context, user *models.User) (*models.User, error) {
	followers, err := s.followRepo.CountFollowers(ctx, user.ID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	following, err := s.followRepo.CountFollowing(ctx, user.ID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	user.FollowersCount = followers
	user.FollowingCount = following
	user.ProfilePictureURL = s.imageURL(user.ProfilePicture)
	return user, nil
}
