package page

import (
	"context"
	defError "errors"
	"fmt"
	"net/http"
	"time"

	"cmsmall/internal/composer"
	"cmsmall/internal/domain"
	"cmsmall/internal/errors"
	"cmsmall/internal/message"
	"cmsmall/redis"

	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const pagesVersionKey = "pages:version"

type Service interface {
	ListFrontPages(ctx context.Context, page, pageSize int) (*PaginatedFrontPages, error)
	ListBackPages(ctx context.Context, actor domain.Actor, page, pageSize int) (*PaginatedBackPages, error)
	GetPage(ctx context.Context, actor domain.Actor, id uint64) (*PageResponse, error)
	CreatePage(ctx context.Context, actor domain.Actor, req PageRequest) (*PageResponse, error)
	UpdatePage(ctx context.Context, actor domain.Actor, id uint64, req PageRequest) (*PageResponse, error)
	DeletePage(ctx context.Context, actor domain.Actor, id uint64) error
}

type UserProvider interface {
	GetUserByID(ctx context.Context, id uint64) (*domain.User, error)
}

type ImageProvider interface {
	Catalog(ctx context.Context) (composer.ImageSet, error)
}

type DefaultService struct {
	repository PageRepository
	users      UserProvider
	images     ImageProvider
	cache      *redis.Cache
	cacheTTL   time.Duration
	events     *message.Emitter
	now        func() time.Time
}

func NewService(
	repository PageRepository,
	users UserProvider,
	images ImageProvider,
	cache *redis.Cache,
	cacheTTL time.Duration,
	events *message.Emitter,
) Service {
	return &DefaultService{
		repository: repository,
		users:      users,
		images:     images,
		cache:      cache,
		cacheTTL:   cacheTTL,
		events:     events,
		now:        time.Now,
	}
}

func (s *DefaultService) today() time.Time {
	return domain.TruncateDay(s.now().UTC())
}

func (s *DefaultService) ListFrontPages(ctx context.Context, page, pageSize int) (*PaginatedFrontPages, error) {
	today := s.today()
	// the date is part of the key so scheduled pages show up on their day
	v := s.cache.GetVersion(ctx, pagesVersionKey)
	cacheKey := fmt.Sprintf("pages:front:v:%d:d:%s:p:%d:ps:%d", v, today.Format(domain.DateLayout), page, pageSize)

	var result PaginatedFrontPages
	if found, _ := s.cache.Get(ctx, cacheKey, &result); found {
		return &result, nil
	}

	pages, meta, err := s.repository.ListPublished(ctx, today, page, pageSize)
	if err != nil {
		return nil, errors.StorageFault("Cannot list pages", err)
	}

	result = PaginatedFrontPages{Data: make([]PageSummary, len(pages)), Meta: meta}
	for i := range pages {
		result.Data[i] = toSummary(&pages[i])
	}
	if err := s.cache.Set(ctx, cacheKey, result, s.cacheTTL); err != nil {
		log.Warn().Err(err).Str("key", cacheKey).Msg("cannot cache front pages")
	}

	return &result, nil
}

func (s *DefaultService) ListBackPages(ctx context.Context, actor domain.Actor, page, pageSize int) (*PaginatedBackPages, error) {
	pages, meta, err := s.repository.ListAll(ctx, page, pageSize)
	if err != nil {
		return nil, errors.StorageFault("Cannot list pages", err)
	}

	today := s.today()
	result := &PaginatedBackPages{Data: make([]BackPage, len(pages)), Meta: meta}
	for i := range pages {
		p := &pages[i]
		result.Data[i] = BackPage{
			PageSummary: toSummary(p),
			State:       domain.StateOf(domain.TimeOf(p.PublishedAt), today),
			Editable:    actor.CanManage(p.AuthorID),
		}
	}
	return result, nil
}

func (s *DefaultService) GetPage(ctx context.Context, actor domain.Actor, id uint64) (*PageResponse, error) {
	p, err := s.findPage(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanManage(p.AuthorID) {
		return nil, errors.Forbidden("You cannot access this page", nil)
	}
	return toResponse(p, s.today()), nil
}

func (s *DefaultService) CreatePage(ctx context.Context, actor domain.Actor, req PageRequest) (*PageResponse, error) {
	draft := req.draft()
	if draft.AuthorID == 0 {
		draft.AuthorID = actor.ID
	}
	if err := s.checkAuthor(ctx, actor, actor.ID, draft.AuthorID); err != nil {
		return nil, err
	}
	if draft.CreatedAt == "" {
		draft.CreatedAt = s.today().Format(domain.DateLayout)
	}

	c, err := s.newComposer(ctx)
	if err != nil {
		return nil, err
	}
	validated, err := c.ValidateForCreate(draft)
	if err != nil {
		return nil, validationFailure(err)
	}

	p := &domain.Page{
		Title:       validated.Title,
		AuthorID:    validated.AuthorID,
		CreatedAt:   datatypes.Date(domain.TruncateDay(*validated.CreatedAt)),
		PublishedAt: domain.DateOf(validated.PublishedAt),
		Blocks:      newBlockRows(0, validated.Blocks),
	}
	if err := s.repository.Create(ctx, p); err != nil {
		return nil, errors.StorageFault("Cannot create page", err)
	}

	s.changed(message.SubjectPageCreated, actor, p)
	s.cache.IncrementVersion(ctx, pagesVersionKey)

	return s.reload(ctx, p.ID)
}

func (s *DefaultService) UpdatePage(ctx context.Context, actor domain.Actor, id uint64, req PageRequest) (*PageResponse, error) {
	if req.ID != id {
		return nil, errors.UnprocessableEntity("Page id in body does not match the URL", nil)
	}

	existing, err := s.findPage(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanManage(existing.AuthorID) {
		return nil, errors.Forbidden("You cannot edit this page", nil)
	}

	draft := composer.PageEditDraft{PageDraft: req.draft(), ID: id}
	if draft.AuthorID == 0 {
		draft.AuthorID = existing.AuthorID
	}
	if err := s.checkAuthor(ctx, actor, existing.AuthorID, draft.AuthorID); err != nil {
		return nil, err
	}
	existingCreatedAt := time.Time(existing.CreatedAt).Format(domain.DateLayout)
	if draft.CreatedAt == "" {
		draft.CreatedAt = existingCreatedAt
	}

	c, err := s.newComposer(ctx)
	if err != nil {
		return nil, err
	}
	plan, err := c.ValidateForUpdate(existing.AuthorID, persistedBlocks(existing.Blocks), draft)
	if err != nil {
		return nil, validationFailure(err)
	}
	if !actor.IsAdmin() && plan.CreatedAt.Format(domain.DateLayout) != existingCreatedAt {
		return nil, errors.Forbidden("Only an admin can change the creation date", nil)
	}

	if err := s.repository.ApplyPlan(ctx, plan, existing.Revision); err != nil {
		if defError.Is(err, ErrStaleBlocks) {
			return nil, errors.StorageFault("Page changed while saving, nothing was stored", err)
		}
		return nil, errors.StorageFault("Cannot update page", err)
	}

	updated := &domain.Page{
		ID:          id,
		Title:       plan.Title,
		AuthorID:    plan.AuthorID,
		PublishedAt: domain.DateOf(plan.PublishedAt),
	}
	s.changed(message.SubjectPageUpdated, actor, updated)
	s.cache.IncrementVersion(ctx, pagesVersionKey)

	return s.reload(ctx, id)
}

func (s *DefaultService) DeletePage(ctx context.Context, actor domain.Actor, id uint64) error {
	existing, err := s.findPage(ctx, id)
	if err != nil {
		return err
	}
	if !actor.CanManage(existing.AuthorID) {
		return errors.Forbidden("You cannot delete this page", nil)
	}

	if err := s.repository.Delete(ctx, id); err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return errors.NotFound("Page not found", err)
		}
		return errors.StorageFault("Cannot delete page", err)
	}

	s.changed(message.SubjectPageDeleted, actor, existing)
	s.cache.IncrementVersion(ctx, pagesVersionKey)
	return nil
}

func (s *DefaultService) findPage(ctx context.Context, id uint64) (*domain.Page, error) {
	p, err := s.repository.FindByID(ctx, id)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("Page not found", err)
		}
		return nil, errors.StorageFault("Cannot load page", err)
	}
	return p, nil
}

func (s *DefaultService) reload(ctx context.Context, id uint64) (*PageResponse, error) {
	p, err := s.findPage(ctx, id)
	if err != nil {
		return nil, err
	}
	return toResponse(p, s.today()), nil
}

// checkAuthor allows keeping the current author. Only an admin may name
// someone else, and that user has to exist.
func (s *DefaultService) checkAuthor(ctx context.Context, actor domain.Actor, current, requested uint64) error {
	if requested == current {
		return nil
	}
	if !actor.IsAdmin() {
		return errors.Forbidden("Only an admin can set the author of a page", nil)
	}
	if _, err := s.users.GetUserByID(ctx, requested); err != nil {
		if errors.StatusOf(err) == http.StatusNotFound {
			return errors.NotFound("Author not found", err)
		}
		return err
	}
	return nil
}

func (s *DefaultService) newComposer(ctx context.Context) (*composer.Composer, error) {
	catalog, err := s.images.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	return composer.New(catalog), nil
}

func (s *DefaultService) changed(subject string, actor domain.Actor, p *domain.Page) {
	s.events.Emit(subject, message.PageEvent{
		PageID:      p.ID,
		AuthorID:    p.AuthorID,
		ActorID:     actor.ID,
		Title:       p.Title,
		PublishedAt: domain.FormatDate(p.PublishedAt),
		OccurredAt:  s.now().UTC(),
	})
}

// validationFailure maps a rejected page to its HTTP error. References to
// blocks or images that do not exist are reported as not found.
func validationFailure(err error) error {
	if composer.IsRule(err, composer.RuleUnknownBlock) || composer.IsRule(err, composer.RuleImageNotFound) {
		return errors.NotFound(err.Error(), err)
	}
	return errors.UnprocessableEntity(err.Error(), err)
}
