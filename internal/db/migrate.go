package db

import (
	"context"
	"net/http"

	"cmsmall/internal/domain"
	"cmsmall/internal/errors"
	"cmsmall/internal/image"
	"cmsmall/internal/site"
	"cmsmall/internal/user"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Migrate runs database migrations
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&domain.User{},
		&domain.Page{},
		&domain.Block{},
		&domain.Image{},
		&domain.Site{},
	)
	if err != nil {
		return err
	}

	log.Info().Msg("database schema migrated successfully")
	return nil
}

var (
	seedUsers = []domain.User{
		{Username: "admin@cmsmall.local", Name: "Admin", Password: "password", Role: domain.RoleAdmin},
		{Username: "anna@cmsmall.local", Name: "Anna", Password: "password", Role: domain.RoleAuthor},
		{Username: "marco@cmsmall.local", Name: "Marco", Password: "password", Role: domain.RoleAuthor},
	}
	seedImages = []domain.Image{
		{URL: "/static/mountain.jpg", Name: "Mountain"},
		{URL: "/static/sea.jpg", Name: "Sea"},
		{URL: "/static/city.jpg", Name: "City"},
		{URL: "/static/forest.jpg", Name: "Forest"},
	}
)

const seedSiteTitle = "CMSmall"

// SeedData seeds the database with initial data (for development only)
func SeedData(ctx context.Context, db *gorm.DB) error {
	userService := user.NewService(user.NewRepository(db))
	for _, u := range seedUsers {
		u := u
		err := userService.Register(ctx, &u)
		switch {
		case err == nil:
			log.Info().Str("username", u.Username).Str("role", u.Role).Msg("created user")
		case errors.StatusOf(err) == http.StatusConflict:
			log.Info().Str("username", u.Username).Msg("user already exists")
		default:
			return err
		}
	}

	images := append([]domain.Image(nil), seedImages...)
	if err := image.NewService(image.NewRepository(db)).Seed(ctx, images); err != nil {
		return err
	}
	log.Info().Int("count", len(images)).Msg("images seeded")

	siteRepo := site.NewRepository(db)
	if _, err := siteRepo.Get(ctx); err != nil {
		if err != gorm.ErrRecordNotFound {
			return err
		}
		if err := siteRepo.SaveTitle(ctx, seedSiteTitle); err != nil {
			return err
		}
		log.Info().Str("title", seedSiteTitle).Msg("site title set")
	}
	return nil
}
