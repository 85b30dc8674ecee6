package image

import (
	"context"

	"cmsmall/internal/composer"
	"cmsmall/internal/domain"
	"cmsmall/internal/errors"
)

type Service interface {
	List(ctx context.Context) ([]domain.Image, error)
	Catalog(ctx context.Context) (composer.ImageSet, error)
	Seed(ctx context.Context, images []domain.Image) error
}

type DefaultService struct {
	repository ImageRepository
}

func NewService(repository ImageRepository) Service {
	return &DefaultService{repository: repository}
}

func (s *DefaultService) List(ctx context.Context) ([]domain.Image, error) {
	images, err := s.repository.List(ctx)
	if err != nil {
		return nil, errors.StorageFault("Cannot list images", err)
	}
	if images == nil {
		images = []domain.Image{}
	}
	return images, nil
}

// Catalog loads the url of every stored image into a set image blocks are
// checked against.
func (s *DefaultService) Catalog(ctx context.Context) (composer.ImageSet, error) {
	images, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	urls := make([]string, len(images))
	for i, img := range images {
		urls[i] = img.URL
	}
	return composer.NewImageSet(urls...), nil
}

func (s *DefaultService) Seed(ctx context.Context, images []domain.Image) error {
	if err := s.repository.CreateMany(ctx, images); err != nil {
		return errors.StorageFault("Cannot store images", err)
	}
	return nil
}
