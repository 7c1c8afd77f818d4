// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"math/rand"
	"time"

	"glimpse/internal/models"
	"glimpse/internal/storage"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Options tunes the seeder.
type Options struct {
	// SkipBcrypt stores plaintext passwords to speed up large dev seeds.
	SkipBcrypt bool
	// MaxDays spreads created_at timestamps over this many days back.
	MaxDays int
}

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by the seeder and tests.
type Factory struct {
	db    *gorm.DB
	store *storage.LocalStore
	opts  Options
	rng   *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB. The store
// may be nil, in which case generated posts reference paths without files.
func NewFactory(db *gorm.DB, store *storage.LocalStore, opts Options) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	//nolint:gosec // Weak random number generator is fine for seeding
	return &Factory{
		db:    db,
		store: store,
		opts:  opts,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// CreateUser constructs and persists a sample `models.User`.
// Optional override functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user := &models.User{
		Name:     gofakeit.Name(),
		Username: fmt.Sprintf("%s%d", gofakeit.Username(), gofakeit.Number(100, 999)),
		Email:    gofakeit.Email(),
	}

	// Password handling: allow skipping bcrypt in dev fast mode
	if f.opts.SkipBcrypt {
		user.Password = "password123"
	} else {
		hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
		user.Password = string(hashedPassword)
	}

	for _, override := range overrides {
		override(user)
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreatePost constructs and persists a sample `models.Post` for the given
// user, with a generated placeholder image in the posts bucket.
func (f *Factory) CreatePost(user *models.User, overrides ...func(*models.Post)) (*models.Post, error) {
	post := &models.Post{
		UserID:    user.ID,
		Caption:   gofakeit.Sentence(8),
		ImagePath: f.placeholderImage(),
		CreatedAt: f.spreadTimestamp(),
	}

	for _, override := range overrides {
		override(post)
	}

	if err := f.db.Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// CreateComment constructs and persists a sample `models.Comment` on the
// provided post authored by the provided user.
func (f *Factory) CreateComment(user *models.User, post *models.Post, overrides ...func(*models.Comment)) (*models.Comment, error) {
	comment := &models.Comment{
		UserID: user.ID,
		PostID: post.ID,
		Body:   gofakeit.Sentence(10),
	}

	for _, override := range overrides {
		override(comment)
	}

	if err := f.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// CreateLike persists a like from `user` on `post`. Duplicate likes are
// silently skipped.
func (f *Factory) CreateLike(user *models.User, post *models.Post) error {
	like := &models.Like{
		UserID: user.ID,
		PostID: post.ID,
	}
	return f.db.Clauses(clause.OnConflict{DoNothing: true}).Create(like).Error
}

// CreateFollow persists a follow edge. Duplicate edges are silently skipped.
func (f *Factory) CreateFollow(follower, followee *models.User) error {
	follow := &models.Follow{
		FollowerID: follower.ID,
		UserID:     followee.ID,
	}
	return f.db.Clauses(clause.OnConflict{DoNothing: true}).Create(follow).Error
}

// placeholderImage writes a small solid-color JPEG into the posts bucket so
// seeded posts resolve through the media endpoint.
func (f *Factory) placeholderImage() string {
	filename := fmt.Sprintf("%d.jpg", time.Now().UnixNano())
	if f.store == nil {
		return storage.BucketPosts + "/" + filename
	}

	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	fill := color.RGBA{
		R: uint8(f.rng.Intn(256)),
		G: uint8(f.rng.Intn(256)),
		B: uint8(f.rng.Intn(256)),
		A: 255,
	}
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, fill)
		}
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 60}); err != nil {
		return storage.BucketPosts + "/" + filename
	}

	storedPath, err := f.store.Save(storage.BucketPosts, filename, buf.Bytes())
	if err != nil {
		return storage.BucketPosts + "/" + filename
	}
	return storedPath
}

func (f *Factory) spreadTimestamp() time.Time {
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	daysBack := f.rng.Intn(maxDays)
	hoursBack := f.rng.Intn(24)
	minsBack := f.rng.Intn(60)
	return time.Now().Add(-time.Duration(daysBack)*24*time.Hour -
		time.Duration(hoursBack)*time.Hour - time.Duration(minsBack)*time.Minute)
}
