// cmd/seeduser/main.go: creates or resets a staff account.
// Usage: go run ./cmd/seeduser -username admin -password secret [-role admin]
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"messpos/internal/config"
	"messpos/internal/infra"
	"messpos/internal/model"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm/clause"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	username := flag.String("username", "admin", "login name")
	password := flag.String("password", "", "plain-text password (required)")
	name := flag.String("name", "Admin", "display name")
	role := flag.String("role", model.RoleAdmin, "cashier | admin")
	flag.Parse()

	if *password == "" {
		log.Fatal().Msg("-password is required")
	}
	if *role != model.RoleAdmin && *role != model.RoleCashier {
		log.Fatal().Str("role", *role).Msg("role must be cashier or admin")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), 12)
	if err != nil {
		log.Fatal().Err(err).Msg("bcrypt error")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	u := model.User{
		Username:     *username,
		Name:         *name,
		PasswordHash: string(hash),
		Role:         *role,
		Active:       true,
	}
	err = db.WithContext(context.Background()).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "username"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "password_hash", "role", "active", "updated_at"}),
		}).
		Create(&u).Error
	if err != nil {
		log.Fatal().Err(err).Msg("insert error")
	}
	log.Info().Str("username", *username).Str("role", *role).Msg("user created/updated")
}
