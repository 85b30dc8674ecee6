package site

import (
	"context"

	"cmsmall/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SiteRepository interface {
	Get(ctx context.Context) (*domain.Site, error)
	SaveTitle(ctx context.Context, title string) error
}

type SiteRepositoryImpl struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) SiteRepository {
	return &SiteRepositoryImpl{db: db}
}

func (r *SiteRepositoryImpl) Get(ctx context.Context) (*domain.Site, error) {
	var site domain.Site
	if err := r.db.WithContext(ctx).First(&site, domain.SiteID).Error; err != nil {
		return nil, err
	}
	return &site, nil
}

// SaveTitle upserts the single site row.
func (r *SiteRepositoryImpl) SaveTitle(ctx context.Context, title string) error {
	site := domain.Site{ID: domain.SiteID, Title: title}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"title"}),
	}).Create(&site).Error
}
