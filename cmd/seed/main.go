// Seeds a development database with an admin user, a demo discussion and a
// small nested comment thread. Safe to run more than once: existing
// usernames are reused instead of recreated.
package main

import (
	"context"
	"log"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/forvaidya/icomment/internal/config"
	"github.com/forvaidya/icomment/internal/domain"
	"github.com/forvaidya/icomment/internal/repository"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()
	db, err := config.NewPostgresDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := repository.Migrate(ctx, db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	repos := repository.NewRepositories(db)

	admin := ensureUser(ctx, repos, "admin", true)
	alice := ensureUser(ctx, repos, "alice", false)
	bob := ensureUser(ctx, repos, "bob", false)

	d := &domain.Discussion{
		ID:        uuid.New(),
		Title:     "Welcome to the demo discussion",
		CreatedBy: admin.ID,
	}
	if err := repos.Discussion.Create(ctx, d); err != nil {
		log.Fatalf("Failed to create discussion: %v", err)
	}

	root := &domain.Comment{
		ID:           uuid.New(),
		DiscussionID: d.ID,
		AuthorID:     alice.ID,
		Content:      "First! This thread demonstrates nested replies.",
	}
	if err := repos.Comment.Create(ctx, root); err != nil {
		log.Fatalf("Failed to create comment: %v", err)
	}

	reply := &domain.Comment{
		ID:           uuid.New(),
		DiscussionID: d.ID,
		ParentID:     &root.ID,
		AuthorID:     bob.ID,
		Content:      "Replying to the first comment.",
	}
	if err := repos.Comment.Create(ctx, reply); err != nil {
		log.Fatalf("Failed to create reply: %v", err)
	}

	nested := &domain.Comment{
		ID:           uuid.New(),
		DiscussionID: d.ID,
		ParentID:     &reply.ID,
		AuthorID:     alice.ID,
		Content:      "And one more level down.",
	}
	if err := repos.Comment.Create(ctx, nested); err != nil {
		log.Fatalf("Failed to create nested reply: %v", err)
	}

	log.Printf("Seeded discussion %s with 3 comments (users: admin, alice, bob)", d.ID)
}

func ensureUser(ctx context.Context, repos *repository.Repositories, username string, isAdmin bool) *domain.User {
	existing, err := repos.User.GetByUsername(ctx, username)
	if err != nil {
		log.Fatalf("Failed to look up %s: %v", username, err)
	}
	if existing != nil {
		return existing
	}

	subject := "seed:" + username
	u := &domain.User{
		ID:       uuid.New(),
		Username: username,
		Kind:     domain.UserKindLocal,
		Subject:  &subject,
		IsAdmin:  isAdmin,
	}
	if err := repos.User.Create(ctx, u); err != nil {
		log.Fatalf("Failed to create %s: %v", username, err)
	}
	return u
}
