package main

import (
	"context"
	"errors"
	"log"
	"os"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"forumhub/internal/config"
	"forumhub/internal/db"
	"forumhub/internal/model"
	"forumhub/internal/repository"
)

// Seeds the initial admin account and the default sections so a fresh
// deployment is usable without touching the database by hand.
func main() {
	log.Println("Starting seed script...")

	cfg := config.Load()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Section{},
		&model.SectionRole{},
	); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	ctx := context.Background()
	users := repository.NewUserRepository(gormDB)
	sections := repository.NewSectionRepository(gormDB)

	adminEmail := envOr("SEED_ADMIN_EMAIL", "admin@forumhub.local")
	adminPass := envOr("SEED_ADMIN_PASSWORD", "changeme")

	if _, err := users.FindByEmail(ctx, adminEmail); err == nil {
		log.Printf("Admin %s already exists, skipping", adminEmail)
	} else if errors.Is(err, gorm.ErrRecordNotFound) {
		hash, err := bcrypt.GenerateFromPassword([]byte(adminPass), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("Failed to hash admin password: %v", err)
		}
		admin := &model.User{
			Name:         "admin",
			Email:        adminEmail,
			PasswordHash: string(hash),
			Role:         model.RoleAdmin,
			Verified:     true,
		}
		if err := users.Create(ctx, admin); err != nil {
			log.Fatalf("Failed to create admin: %v", err)
		}
		log.Printf("Created admin %s", adminEmail)
	} else {
		log.Fatalf("Failed to look up admin: %v", err)
	}

	defaults := []struct {
		name        string
		description string
		allowed     []model.Role
	}{
		{"General", "Open discussion for everyone", []model.Role{model.RoleAdmin, model.RoleMod, model.RoleUser}},
		{"Announcements", "News from the team", []model.Role{model.RoleAdmin, model.RoleMod, model.RoleUser}},
		{"Staff", "Moderator coordination", []model.Role{model.RoleAdmin, model.RoleMod}},
	}

	existing, err := sections.ListForRole(ctx, model.RoleAdmin)
	if err != nil {
		log.Fatalf("Failed to list sections: %v", err)
	}
	have := make(map[string]bool, len(existing))
	for _, s := range existing {
		have[s.Name] = true
	}

	created := 0
	for _, d := range defaults {
		if have[d.name] {
			continue
		}
		desc := d.description
		section := &model.Section{Name: d.name, Description: &desc}
		for _, role := range d.allowed {
			section.AllowedFor = append(section.AllowedFor, model.SectionRole{Role: role})
		}
		if err := sections.Create(ctx, section); err != nil {
			log.Fatalf("Failed to create section %s: %v", d.name, err)
		}
		created++
	}
	log.Printf("Seed complete, %d sections created", created)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
