package site

import (
	"context"
	defError "errors"
	"time"
	"unicode/utf8"

	"cmsmall/internal/domain"
	"cmsmall/internal/errors"
	"cmsmall/internal/message"
	"cmsmall/redis"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const (
	MaxTitleLength = 50
	titleCacheKey  = "site:title"
)

type Service interface {
	GetTitle(ctx context.Context) (string, error)
	UpdateTitle(ctx context.Context, actor domain.Actor, title string) (string, error)
}

type DefaultService struct {
	repository SiteRepository
	cache      *redis.Cache
	cacheTTL   time.Duration
	events     *message.Emitter
}

func NewService(repository SiteRepository, cache *redis.Cache, cacheTTL time.Duration, events *message.Emitter) Service {
	return &DefaultService{
		repository: repository,
		cache:      cache,
		cacheTTL:   cacheTTL,
		events:     events,
	}
}

func (s *DefaultService) GetTitle(ctx context.Context) (string, error) {
	var title string
	if found, _ := s.cache.Get(ctx, titleCacheKey, &title); found {
		return title, nil
	}

	site, err := s.repository.Get(ctx)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return "", errors.NotFound("Site title not set", err)
		}
		return "", errors.StorageFault("Cannot load site title", err)
	}

	if err := s.cache.Set(ctx, titleCacheKey, site.Title, s.cacheTTL); err != nil {
		log.Warn().Err(err).Msg("cannot cache site title")
	}
	return site.Title, nil
}

func (s *DefaultService) UpdateTitle(ctx context.Context, actor domain.Actor, title string) (string, error) {
	if !actor.IsAdmin() {
		return "", errors.Forbidden("Only an admin can change the site title", nil)
	}
	if n := utf8.RuneCountInString(title); n < 1 || n > MaxTitleLength {
		return "", errors.UnprocessableEntity("Title must be between 1 and 50 characters", nil)
	}

	if err := s.repository.SaveTitle(ctx, title); err != nil {
		return "", errors.StorageFault("Cannot update site title", err)
	}
	if err := s.cache.Set(ctx, titleCacheKey, title, s.cacheTTL); err != nil {
		log.Warn().Err(err).Msg("cannot cache site title")
		_ = s.cache.Delete(ctx, titleCacheKey)
	}

	s.events.Emit(message.SubjectSiteTitle, message.SiteEvent{Title: title, ActorID: actor.ID})
	return title, nil
}
