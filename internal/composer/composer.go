// Package composer validates the ordered block list of a page and works out
// which block rows have to be inserted, updated or deleted to store it.
//
// Everything here is pure: no I/O, no shared mutable state, and caller-owned
// slices are never modified. A Composer may be used from any number of
// goroutines.
package composer

import (
	"slices"
	"time"
	"unicode/utf8"
)

const dateLayout = "2006-01-02"

// PageDraft is a page as submitted for creation.
type PageDraft struct {
	Title       string
	AuthorID    uint64
	CreatedAt   string
	PublishedAt string
	Blocks      []Block
}

// PageEditDraft is a page as submitted for update. Blocks may mix deletion
// markers, created blocks and existing blocks; persisted blocks it does not
// mention are left as they are.
type PageEditDraft struct {
	PageDraft
	ID uint64
}

// NewBlock is a block to insert.
type NewBlock struct {
	Type     BlockType `json:"type"`
	Value    string    `json:"value"`
	Position int       `json:"position"`
}

// BlockUpdate rewrites the value and position of a persisted block.
type BlockUpdate struct {
	ID       uint64 `json:"id"`
	Value    string `json:"value"`
	Position int    `json:"position"`
}

// ValidatedPage is an accepted new page with its blocks sorted by position.
type ValidatedPage struct {
	Title       string
	AuthorID    uint64
	CreatedAt   *time.Time
	PublishedAt *time.Time
	Blocks      []NewBlock
}

// Draft turns a validated page back into a draft.
func (p *ValidatedPage) Draft() PageDraft {
	blocks := make([]Block, len(p.Blocks))
	for i, b := range p.Blocks {
		blocks[i] = Block{Type: b.Type, Value: b.Value, Position: b.Position, Created: true}
	}
	return PageDraft{
		Title:       p.Title,
		AuthorID:    p.AuthorID,
		CreatedAt:   formatDate(p.CreatedAt),
		PublishedAt: formatDate(p.PublishedAt),
		Blocks:      blocks,
	}
}

// BlockPlan is an accepted page update: the new page fields and the block
// operations, which partition the request blocks.
type BlockPlan struct {
	PageID        uint64
	Title         string
	AuthorID      uint64
	AuthorChanged bool
	CreatedAt     *time.Time
	PublishedAt   *time.Time

	ToDelete []uint64
	ToCreate []NewBlock
	ToUpdate []BlockUpdate
}

// Len is the number of block operations in the plan.
func (p *BlockPlan) Len() int {
	return len(p.ToDelete) + len(p.ToCreate) + len(p.ToUpdate)
}

type Composer struct {
	images ImageCatalog
}

// New returns a Composer. With a nil catalog image values are not looked up.
func New(images ImageCatalog) *Composer {
	return &Composer{images: images}
}

// ValidateForCreate checks a new page and returns it normalized. The first
// violated rule is returned as a *ValidationError.
func (c *Composer) ValidateForCreate(draft PageDraft) (*ValidatedPage, error) {
	createdAt, publishedAt, err := validateHeader(draft.header())
	if err != nil {
		return nil, err
	}
	if len(draft.Blocks) == 0 {
		return nil, pageError(RuleEmptyBlocks, "a page needs at least one block")
	}

	for i, b := range draft.Blocks {
		if b.ID != 0 || b.Deleted {
			return nil, blockError(RuleBlockKind, i, "a new page can only contain new blocks")
		}
		if err := checkPresence(i, b); err != nil {
			return nil, err
		}
	}

	state := make([]slot, len(draft.Blocks))
	for i, b := range draft.Blocks {
		state[i] = slot{index: i, typ: b.Type, position: b.Position}
	}
	if err := checkHeaderMix(state); err != nil {
		return nil, err
	}
	for i, b := range draft.Blocks {
		if !b.Type.Known() {
			return nil, blockError(RuleUnknownType, i, "unknown block type %q", b.Type)
		}
	}
	for i, b := range draft.Blocks {
		if err := c.checkValue(i, b); err != nil {
			return nil, err
		}
	}
	if err := checkPositions(state); err != nil {
		return nil, err
	}

	blocks := make([]NewBlock, len(draft.Blocks))
	for i, b := range draft.Blocks {
		blocks[i] = NewBlock{Type: b.Type, Value: b.Value, Position: b.Position}
	}
	slices.SortStableFunc(blocks, func(a, b NewBlock) int { return a.Position - b.Position })

	return &ValidatedPage{
		Title:       draft.Title,
		AuthorID:    draft.AuthorID,
		CreatedAt:   createdAt,
		PublishedAt: publishedAt,
		Blocks:      blocks,
	}, nil
}

// ValidateForUpdate checks a page update against the page's persisted blocks
// and returns the plan that applies it.
func (c *Composer) ValidateForUpdate(existingAuthorID uint64, current []Block, draft PageEditDraft) (*BlockPlan, error) {
	createdAt, publishedAt, err := validateHeader(draft.header())
	if err != nil {
		return nil, err
	}
	if len(draft.Blocks) == 0 {
		return nil, pageError(RuleEmptyBlocks, "a page needs at least one block")
	}

	persisted := make(map[uint64]Block, len(current))
	for _, b := range current {
		persisted[b.ID] = b
	}

	mentioned := make(map[uint64]bool, len(draft.Blocks))
	for i, b := range draft.Blocks {
		switch {
		case b.Deleted && b.Created:
			return nil, blockError(RuleBlockKind, i, "block cannot be both created and deleted")
		case b.Deleted:
			if err := checkDeletion(i, b); err != nil {
				return nil, err
			}
		case b.Created:
			if b.ID != 0 {
				return nil, blockError(RuleBlockKind, i, "created block cannot carry an id")
			}
			continue
		case b.ID == 0:
			return nil, blockError(RuleBlockKind, i, "block must be created, deleted or carry an id")
		}
		if mentioned[b.ID] {
			return nil, blockError(RuleDuplicateBlock, i, "block %d appears more than once", b.ID)
		}
		mentioned[b.ID] = true
		if _, ok := persisted[b.ID]; !ok {
			return nil, blockError(RuleUnknownBlock, i, "block %d does not belong to the page", b.ID)
		}
	}

	for i, b := range draft.Blocks {
		if b.Deleted {
			continue
		}
		if err := checkPresence(i, b); err != nil {
			return nil, err
		}
	}

	state := make([]slot, 0, len(current)+len(draft.Blocks))
	for _, b := range current {
		if !mentioned[b.ID] {
			state = append(state, slot{index: -1, typ: b.Type, position: b.Position})
		}
	}
	for i, b := range draft.Blocks {
		if !b.Deleted {
			state = append(state, slot{index: i, typ: b.Type, position: b.Position})
		}
	}

	if err := checkHeaderMix(state); err != nil {
		return nil, err
	}
	for i, b := range draft.Blocks {
		if !b.Deleted && !b.Type.Known() {
			return nil, blockError(RuleUnknownType, i, "unknown block type %q", b.Type)
		}
	}
	for i, b := range draft.Blocks {
		if b.Deleted {
			continue
		}
		if !b.Created && persisted[b.ID].Type != b.Type {
			return nil, blockError(RuleTypeChange, i, "block %d cannot change type from %s to %s", b.ID, persisted[b.ID].Type, b.Type)
		}
		if err := c.checkValue(i, b); err != nil {
			return nil, err
		}
	}
	if err := checkPositions(state); err != nil {
		return nil, err
	}

	plan := &BlockPlan{
		PageID:        draft.ID,
		Title:         draft.Title,
		AuthorID:      draft.AuthorID,
		AuthorChanged: draft.AuthorID != existingAuthorID,
		CreatedAt:     createdAt,
		PublishedAt:   publishedAt,
		ToDelete:      []uint64{},
		ToCreate:      []NewBlock{},
		ToUpdate:      []BlockUpdate{},
	}
	for _, b := range draft.Blocks {
		switch {
		case b.Deleted:
			plan.ToDelete = append(plan.ToDelete, b.ID)
		case b.Created:
			plan.ToCreate = append(plan.ToCreate, NewBlock{Type: b.Type, Value: b.Value, Position: b.Position})
		default:
			plan.ToUpdate = append(plan.ToUpdate, BlockUpdate{ID: b.ID, Value: b.Value, Position: b.Position})
		}
	}
	return plan, nil
}

type draftHeader struct {
	title       string
	createdAt   string
	publishedAt string
}

func (d PageDraft) header() draftHeader {
	return draftHeader{title: d.Title, createdAt: d.CreatedAt, publishedAt: d.PublishedAt}
}

func validateHeader(h draftHeader) (createdAt, publishedAt *time.Time, err error) {
	if n := utf8.RuneCountInString(h.title); n < 1 || n > MaxTitleLength {
		return nil, nil, pageError(RuleTitleLength, "title must be between 1 and %d characters", MaxTitleLength)
	}
	if createdAt, err = parseDate("creation date", h.createdAt); err != nil {
		return nil, nil, err
	}
	if publishedAt, err = parseDate("publication date", h.publishedAt); err != nil {
		return nil, nil, err
	}
	return createdAt, publishedAt, nil
}

// parseDate accepts an empty string or a strict YYYY-MM-DD calendar date.
func parseDate(field, s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if len(s) != len(dateLayout) {
		return nil, pageError(RuleDateFormat, "%s must be a YYYY-MM-DD date", field)
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, pageError(RuleDateFormat, "%s must be a YYYY-MM-DD date", field)
	}
	return &t, nil
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}
