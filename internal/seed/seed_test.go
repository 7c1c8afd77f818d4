package seed

import (
	"path/filepath"
	"testing"

	"glimpse/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "seed.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Follow{},
		&models.Post{},
		&models.Comment{},
		&models.Like{},
	))
	return db
}

func TestSeeder_PopulatesAndClears(t *testing.T) {
	db := newTestDB(t)
	seeder := NewSeeder(db, nil, Options{SkipBcrypt: true})

	users, err := seeder.SeedSocialMesh(5)
	require.NoError(t, err)
	require.Len(t, users, 5)

	// The well-known login always exists.
	var known models.User
	require.NoError(t, db.Where("username = ?", "test").First(&known).Error)
	assert.Equal(t, "test@example.com", known.Email)

	var edges int64
	require.NoError(t, db.Model(&models.Follow{}).Count(&edges).Error)
	assert.NotZero(t, edges)

	posts, err := seeder.SeedEngagement(users, 10)
	require.NoError(t, err)
	assert.Len(t, posts, 10)

	// Any reply must point at a top-level comment on the same post.
	var replies []models.Comment
	require.NoError(t, db.Where("parent_id IS NOT NULL").Find(&replies).Error)
	for _, reply := range replies {
		var parent models.Comment
		require.NoError(t, db.First(&parent, *reply.ParentID).Error)
		assert.Nil(t, parent.ParentID)
		assert.Equal(t, reply.PostID, parent.PostID)
	}

	require.NoError(t, seeder.ClearAll())
	for _, table := range []string{"users", "followers", "posts", "comments", "likes"} {
		var count int64
		require.NoError(t, db.Table(table).Count(&count).Error)
		assert.Zero(t, count, table)
	}
}

func TestFactory_Overrides(t *testing.T) {
	db := newTestDB(t)
	factory := NewFactory(db, nil, Options{SkipBcrypt: true})

	user, err := factory.CreateUser(func(u *models.User) {
		u.Username = "custom"
	})
	require.NoError(t, err)
	assert.Equal(t, "custom", user.Username)

	post, err := factory.CreatePost(user, func(p *models.Post) {
		p.Caption = "fixed caption"
	})
	require.NoError(t, err)
	assert.Equal(t, "fixed caption", post.Caption)
	assert.NotEmpty(t, post.ImagePath)

	// Duplicate likes and follows are absorbed silently.
	require.NoError(t, factory.CreateLike(user, post))
	require.NoError(t, factory.CreateLike(user, post))
	var likes int64
	require.NoError(t, db.Model(&models.Like{}).Count(&likes).Error)
	assert.Equal(t, int64(1), likes)
}
