package page

import (
	"context"
	defError "errors"
	"time"

	"cmsmall/internal/composer"
	"cmsmall/internal/domain"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ErrStaleBlocks aborts a plan validated against a page revision that is no
// longer the stored one.
var ErrStaleBlocks = defError.New("page changed while applying update")

type PageRepository interface {
	Create(ctx context.Context, page *domain.Page) error
	FindByID(ctx context.Context, id uint64) (*domain.Page, error)
	ListPublished(ctx context.Context, today time.Time, page, pageSize int) ([]domain.Page, PagesMeta, error)
	ListAll(ctx context.Context, page, pageSize int) ([]domain.Page, PagesMeta, error)
	ApplyPlan(ctx context.Context, plan *composer.BlockPlan, revision uint64) error
	Delete(ctx context.Context, id uint64) error
}

type PageRepositoryImpl struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) PageRepository {
	return &PageRepositoryImpl{db: db}
}

type PagesMeta struct {
	Total       int64 `json:"total"`
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
	TotalPage   int   `json:"total_page"`
}

func newMeta(total int64, page, pageSize int) PagesMeta {
	return PagesMeta{
		Total:       total,
		CurrentPage: page,
		PerPage:     pageSize,
		TotalPage:   int((total + int64(pageSize) - 1) / int64(pageSize)),
	}
}

// Create inserts the page and its blocks in one transaction.
func (r *PageRepositoryImpl) Create(ctx context.Context, page *domain.Page) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		blocks := page.Blocks
		page.Blocks = nil
		if err := tx.Omit("Author").Create(page).Error; err != nil {
			return err
		}
		for i := range blocks {
			blocks[i].PageID = page.ID
		}
		if len(blocks) > 0 {
			if err := tx.Create(&blocks).Error; err != nil {
				return err
			}
		}
		page.Blocks = blocks
		return nil
	})
}

func (r *PageRepositoryImpl) FindByID(ctx context.Context, id uint64) (*domain.Page, error) {
	var page domain.Page
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Blocks", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&page, id).Error
	if err != nil {
		return nil, err
	}
	return &page, nil
}

// ListPublished returns pages published on or before today, oldest first.
func (r *PageRepositoryImpl) ListPublished(ctx context.Context, today time.Time, page, pageSize int) ([]domain.Page, PagesMeta, error) {
	var pages []domain.Page
	var totalRecords int64

	published := func(db *gorm.DB) *gorm.DB {
		return db.Where("published_at IS NOT NULL AND published_at <= ?", datatypes.Date(today))
	}

	if err := r.db.WithContext(ctx).Model(&domain.Page{}).Scopes(published).Count(&totalRecords).Error; err != nil {
		return nil, PagesMeta{}, err
	}

	err := r.db.WithContext(ctx).
		Scopes(published).
		Preload("Author").
		Order("published_at ASC").
		Order("id ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&pages).Error

	return pages, newMeta(totalRecords, page, pageSize), err
}

func (r *PageRepositoryImpl) ListAll(ctx context.Context, page, pageSize int) ([]domain.Page, PagesMeta, error) {
	var pages []domain.Page
	var totalRecords int64

	if err := r.db.WithContext(ctx).Model(&domain.Page{}).Count(&totalRecords).Error; err != nil {
		return nil, PagesMeta{}, err
	}

	err := r.db.WithContext(ctx).
		Preload("Author").
		Order("id ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&pages).Error

	return pages, newMeta(totalRecords, page, pageSize), err
}

// ApplyPlan writes the page fields and every block operation of plan in a
// single transaction. The page row is only updated while it is still at
// revision, so a concurrent update that committed first makes this one fail.
// Any statement touching an unexpected number of rows rolls the whole plan
// back with ErrStaleBlocks.
func (r *PageRepositoryImpl) ApplyPlan(ctx context.Context, plan *composer.BlockPlan, revision uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fields := map[string]interface{}{
			"title":        plan.Title,
			"author_id":    plan.AuthorID,
			"published_at": nil,
			"revision":     gorm.Expr("revision + 1"),
			"updated_at":   time.Now().UTC(),
		}
		if plan.PublishedAt != nil {
			fields["published_at"] = datatypes.Date(domain.TruncateDay(*plan.PublishedAt))
		}
		if plan.CreatedAt != nil {
			fields["created_at"] = datatypes.Date(domain.TruncateDay(*plan.CreatedAt))
		}
		res := tx.Model(&domain.Page{}).
			Where("id = ? AND revision = ?", plan.PageID, revision).
			Updates(fields)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != 1 {
			return ErrStaleBlocks
		}

		if len(plan.ToDelete) > 0 {
			res = tx.Where("page_id = ? AND id IN ?", plan.PageID, plan.ToDelete).Delete(&domain.Block{})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected != int64(len(plan.ToDelete)) {
				return ErrStaleBlocks
			}
		}

		for _, u := range plan.ToUpdate {
			res = tx.Model(&domain.Block{}).
				Where("id = ? AND page_id = ?", u.ID, plan.PageID).
				Updates(map[string]interface{}{"value": u.Value, "position": u.Position})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected != 1 {
				return ErrStaleBlocks
			}
		}

		if len(plan.ToCreate) > 0 {
			rows := newBlockRows(plan.PageID, plan.ToCreate)
			res = tx.Create(&rows)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected != int64(len(rows)) {
				return ErrStaleBlocks
			}
		}
		return nil
	})
}

// Delete removes the page and its blocks.
func (r *PageRepositoryImpl) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("page_id = ?", id).Delete(&domain.Block{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&domain.Page{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
