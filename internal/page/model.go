package page

import (
	"time"

	"cmsmall/internal/composer"
	"cmsmall/internal/domain"
)

// PageRequest is the body of POST /api/pages and PUT /api/pages/:id.
// Dates are YYYY-MM-DD; a null or missing published_at keeps the page a draft.
type PageRequest struct {
	ID          uint64           `json:"id"`
	Title       string           `json:"title"`
	AuthorID    uint64           `json:"author_id"`
	CreatedAt   string           `json:"created_at"`
	PublishedAt *string          `json:"published_at"`
	Blocks      []composer.Block `json:"blocks"`
}

func (r PageRequest) draft() composer.PageDraft {
	var publishedAt string
	if r.PublishedAt != nil {
		publishedAt = *r.PublishedAt
	}
	return composer.PageDraft{
		Title:       r.Title,
		AuthorID:    r.AuthorID,
		CreatedAt:   r.CreatedAt,
		PublishedAt: publishedAt,
		Blocks:      r.Blocks,
	}
}

type BlockResponse struct {
	ID       uint64 `json:"id"`
	Type     string `json:"type"`
	Value    string `json:"value"`
	Position int    `json:"position"`
}

// PageSummary is a page without its blocks, as listed on the front page.
type PageSummary struct {
	ID          uint64  `json:"id"`
	Title       string  `json:"title"`
	AuthorID    uint64  `json:"author_id"`
	AuthorName  string  `json:"author_name"`
	CreatedAt   string  `json:"created_at"`
	PublishedAt *string `json:"published_at"`
}

// BackPage is a page as listed in the back office.
type BackPage struct {
	PageSummary
	State    domain.PublicationState `json:"state"`
	Editable bool                    `json:"editable"`
}

type PageResponse struct {
	PageSummary
	State  domain.PublicationState `json:"state"`
	Blocks []BlockResponse         `json:"blocks"`
}

type PaginatedFrontPages struct {
	Data []PageSummary `json:"data"`
	Meta PagesMeta     `json:"meta"`
}

type PaginatedBackPages struct {
	Data []BackPage `json:"data"`
	Meta PagesMeta  `json:"meta"`
}

func toSummary(p *domain.Page) PageSummary {
	return PageSummary{
		ID:          p.ID,
		Title:       p.Title,
		AuthorID:    p.AuthorID,
		AuthorName:  p.Author.Name,
		CreatedAt:   time.Time(p.CreatedAt).Format(domain.DateLayout),
		PublishedAt: domain.FormatDate(p.PublishedAt),
	}
}

func toResponse(p *domain.Page, today time.Time) *PageResponse {
	blocks := make([]BlockResponse, len(p.Blocks))
	for i, b := range p.Blocks {
		blocks[i] = BlockResponse{ID: b.ID, Type: b.Type, Value: b.Value, Position: b.Position}
	}
	return &PageResponse{
		PageSummary: toSummary(p),
		State:       domain.StateOf(domain.TimeOf(p.PublishedAt), today),
		Blocks:      blocks,
	}
}

// persistedBlocks converts stored rows into the form the composer compares
// update requests against.
func persistedBlocks(blocks []domain.Block) []composer.Block {
	out := make([]composer.Block, len(blocks))
	for i, b := range blocks {
		out[i] = composer.Block{
			ID:       b.ID,
			Type:     composer.BlockType(b.Type),
			Value:    b.Value,
			Position: b.Position,
		}
	}
	return out
}

func newBlockRows(pageID uint64, blocks []composer.NewBlock) []domain.Block {
	rows := make([]domain.Block, len(blocks))
	for i, b := range blocks {
		rows[i] = domain.Block{
			PageID:   pageID,
			Type:     string(b.Type),
			Value:    b.Value,
			Position: b.Position,
		}
	}
	return rows
}
