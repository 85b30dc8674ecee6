package image

import (
	"context"

	"cmsmall/internal/domain"

	"gorm.io/gorm"
)

type ImageRepository interface {
	List(ctx context.Context) ([]domain.Image, error)
	CreateMany(ctx context.Context, images []domain.Image) error
}

type ImageRepositoryImpl struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) ImageRepository {
	return &ImageRepositoryImpl{db: db}
}

func (r *ImageRepositoryImpl) List(ctx context.Context) ([]domain.Image, error) {
	var images []domain.Image
	err := r.db.WithContext(ctx).Order("id ASC").Find(&images).Error
	return images, err
}

// CreateMany inserts images whose url is not stored yet.
func (r *ImageRepositoryImpl) CreateMany(ctx context.Context, images []domain.Image) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range images {
			err := tx.Where(domain.Image{URL: images[i].URL}).
				Attrs(domain.Image{Name: images[i].Name}).
				FirstOrCreate(&images[i]).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}
