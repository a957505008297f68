//go:build ignore

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"bookstore/internal/auth"
	"bookstore/internal/config"
	"bookstore/internal/database"
	"bookstore/internal/model"
	"bookstore/internal/repository"

	"github.com/google/uuid"
)

// Creates an admin account. Registration through the API only ever creates users.
//
//	go run scripts/create_admin.go -email admin@example.com -password secret1
func main() {
	name := flag.String("name", "Administrator", "display name")
	email := flag.String("email", "", "login email")
	password := flag.String("password", "", "login password, at least 6 characters")
	flag.Parse()

	if *email == "" || len(*password) < 6 {
		flag.Usage()
		log.Fatal("email and a password of at least 6 characters are required")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger := config.NewLogger(cfg.Logger)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool, logger); err != nil {
		log.Fatalf("Failed to migrate: %v", err)
	}

	hash, err := auth.HashPassword(*password)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	now := time.Now().UTC()
	user := &model.User{
		ID:           uuid.New(),
		Name:         *name,
		Email:        strings.ToLower(strings.TrimSpace(*email)),
		PasswordHash: hash,
		Role:         model.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := repository.NewUserRepository(pool, logger).Create(ctx, user); err != nil {
		log.Fatalf("Failed to create admin: %v", err)
	}

	fmt.Printf("Created admin %s (%s)\n", user.Email, user.ID)
}
