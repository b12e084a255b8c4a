package main

import (
	"context"
	"log"
	"os"
	"time"

	"portfolio-backend/internal/config"
	"portfolio-backend/internal/db"
	"portfolio-backend/internal/skills"
	"portfolio-backend/internal/users"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	client, cols, err := db.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatal(err)
	}
	defer client.Disconnect(context.Background())

	if err := db.EnsureIndexes(ctx, cols); err != nil {
		log.Fatal(err)
	}

	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		log.Printf("seed admin: ADMIN_EMAIL or ADMIN_PASSWORD missing, skipping")
	} else {
		userService := users.NewService(users.NewRepository(cols.Users), cfg.Timezone)
		admin, err := userService.EnsureAdmin(ctx, cfg.AdminEmail, envOrDefault("ADMIN_NAME", "Admin"), cfg.AdminPassword)
		if err != nil {
			log.Fatalf("seed admin error: %v", err)
		}
		log.Printf("seed admin: %s ready", admin.Email)
	}

	tx := db.NewTransactor(client, cfg.MongoTransactions)
	skillService := skills.NewService(skills.NewRepository(cols.Skills), tx, cfg.Timezone)
	if err := skillService.Seed(ctx, skills.Defaults()); err != nil {
		log.Fatalf("seed skills error: %v", err)
	}

	log.Println("seed completed")
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
