package seed

import (
	"fmt"
	"log"

	"glimpse/internal/models"
	"glimpse/internal/storage"

	"gorm.io/gorm"
)

// Seeder populates the database with generated development data.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
}

// NewSeeder creates a Seeder bound to the given DB and file store.
func NewSeeder(db *gorm.DB, store *storage.LocalStore, opts Options) *Seeder {
	return &Seeder{
		db:      db,
		factory: NewFactory(db, store, opts),
	}
}

// Factory exposes the underlying entity factory for tests and presets.
func (s *Seeder) Factory() *Factory {
	return s.factory
}

// ClearAll wipes seeded data. Tables are cleared child-first so the
// statements work on both sqlite and postgres.
func (s *Seeder) ClearAll() error {
	log.Println("🗑️  Clearing existing data...")
	for _, table := range []string{"likes", "comments", "posts", "followers", "users"} {
		if err := s.db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}

// SeedSocialMesh creates users and a random follow graph between them.
// Every user follows roughly a tenth of the others.
func (s *Seeder) SeedSocialMesh(numUsers int) ([]*models.User, error) {
	users := make([]*models.User, 0, numUsers)

	// Always include a well-known login for manual testing.
	known, err := s.factory.CreateUser(func(u *models.User) {
		u.Name = "Test User"
		u.Username = "test"
		u.Email = "test@example.com"
	})
	if err == nil {
		users = append(users, known)
	}

	for i := len(users); i < numUsers; i++ {
		user, err := s.factory.CreateUser()
		if err != nil {
			log.Printf("Failed to create user: %v", err)
			continue
		}
		users = append(users, user)

		if i > 0 && i%100 == 0 {
			log.Printf("Created %d users...", i)
		}
	}

	edges := 0
	for _, follower := range users {
		targets := numUsers / 10
		if targets < 2 {
			targets = 2
		}
		for j := 0; j < targets; j++ {
			followee := users[s.factory.rng.Intn(len(users))]
			if followee.ID == follower.ID {
				continue
			}
			if err := s.factory.CreateFollow(follower, followee); err != nil {
				return nil, fmt.Errorf("create follow edge: %w", err)
			}
			edges++
		}
	}
	log.Printf("✓ %d users and %d follow edges created", len(users), edges)

	return users, nil
}

// SeedEngagement creates posts for the given users, then scatters comments,
// one-level replies, and likes across them.
func (s *Seeder) SeedEngagement(users []*models.User, numPosts int) ([]*models.Post, error) {
	if len(users) == 0 {
		return nil, fmt.Errorf("no users to seed posts for")
	}

	posts := make([]*models.Post, 0, numPosts)
	for i := 0; i < numPosts; i++ {
		author := users[s.factory.rng.Intn(len(users))]
		post, err := s.factory.CreatePost(author)
		if err != nil {
			return nil, fmt.Errorf("create post: %w", err)
		}
		posts = append(posts, post)

		if i > 0 && i%100 == 0 {
			log.Printf("Created %d posts...", i)
		}
	}

	comments, likes := 0, 0
	for _, post := range posts {
		for j := s.factory.rng.Intn(5); j > 0; j-- {
			commenter := users[s.factory.rng.Intn(len(users))]
			comment, err := s.factory.CreateComment(commenter, post)
			if err != nil {
				return nil, fmt.Errorf("create comment: %w", err)
			}
			comments++

			// Occasionally reply to the top-level comment.
			if s.factory.rng.Intn(3) == 0 {
				replier := users[s.factory.rng.Intn(len(users))]
				if _, err := s.factory.CreateComment(replier, post, func(c *models.Comment) {
					c.ParentID = &comment.ID
				}); err != nil {
					return nil, fmt.Errorf("create reply: %w", err)
				}
				comments++
			}
		}

		for j := s.factory.rng.Intn(len(users)/2 + 1); j > 0; j-- {
			liker := users[s.factory.rng.Intn(len(users))]
			if err := s.factory.CreateLike(liker, post); err != nil {
				return nil, fmt.Errorf("create like: %w", err)
			}
			likes++
		}
	}
	log.Printf("✓ %d posts, %d comments, %d likes created", len(posts), comments, likes)

	return posts, nil
}
