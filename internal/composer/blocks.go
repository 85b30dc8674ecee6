package composer

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

type BlockType string

const (
	TypeHeader    BlockType = "header"
	TypeParagraph BlockType = "paragraph"
	TypeImage     BlockType = "image"
)

const (
	MaxTitleLength     = 80
	MaxHeaderLength    = 50
	MaxParagraphLength = 300
)

func (t BlockType) Known() bool {
	switch t {
	case TypeHeader, TypeParagraph, TypeImage:
		return true
	}
	return false
}

// Block is a block as it arrives from a client, or as it is persisted.
// ID is zero for blocks that do not exist yet.
type Block struct {
	ID       uint64    `json:"id,omitempty"`
	Type     BlockType `json:"type,omitempty"`
	Value    string    `json:"value,omitempty"`
	Position int       `json:"position,omitempty"`
	Created  bool      `json:"created,omitempty"`
	Deleted  bool      `json:"deleted,omitempty"`
}

// ImageCatalog answers whether an image block value names a stored image.
type ImageCatalog interface {
	ImageExists(value string) bool
}

// ImageSet is an in-memory ImageCatalog.
type ImageSet map[string]struct{}

func NewImageSet(values ...string) ImageSet {
	set := make(ImageSet, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

func (s ImageSet) ImageExists(value string) bool {
	_, ok := s[value]
	return ok
}

// Schemas. A block is dispatched to exactly one of these by its flags and type.

type blockFields struct {
	Type     BlockType `validate:"required"`
	Value    string    `validate:"required"`
	Position int       `validate:"required"`
}

type HeaderBlock struct {
	Value    string `validate:"required,max=50"`
	Position int
}

type ParagraphBlock struct {
	Value    string `validate:"required,max=300"`
	Position int
}

type ImageBlock struct {
	Value    string `validate:"required"`
	Position int
}

type DeletionMarker struct {
	ID uint64 `validate:"required"`
}

// validate caches struct metadata, one instance serves every Composer.
var validate = validator.New(validator.WithRequiredStructEnabled())

// variantOf maps a non-deleted block of known type to its schema.
func variantOf(b Block) interface{} {
	switch b.Type {
	case TypeHeader:
		return HeaderBlock{Value: b.Value, Position: b.Position}
	case TypeParagraph:
		return ParagraphBlock{Value: b.Value, Position: b.Position}
	case TypeImage:
		return ImageBlock{Value: b.Value, Position: b.Position}
	}
	return nil
}

func checkPresence(index int, b Block) error {
	err := validate.Struct(blockFields{Type: b.Type, Value: b.Value, Position: b.Position})
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return blockError(RuleMissingFields, index, "missing %s", fieldName(verrs[0].Field()))
	}
	return blockError(RuleMissingFields, index, "missing properties")
}

func checkDeletion(index int, b Block) error {
	if err := validate.Struct(DeletionMarker{ID: b.ID}); err != nil {
		return blockError(RuleBlockKind, index, "deleted block must carry an id")
	}
	return nil
}

func (c *Composer) checkValue(index int, b Block) error {
	if err := validate.Struct(variantOf(b)); err != nil {
		switch b.Type {
		case TypeHeader:
			return blockError(RuleValueLength, index, "header must be between 1 and %d characters", MaxHeaderLength)
		case TypeParagraph:
			return blockError(RuleValueLength, index, "paragraph must be between 1 and %d characters", MaxParagraphLength)
		}
		return blockError(RuleValueLength, index, "image must name a stored image")
	}
	if b.Type == TypeImage && c.images != nil && !c.images.ImageExists(b.Value) {
		return blockError(RuleImageNotFound, index, "image %q not found", b.Value)
	}
	return nil
}

func fieldName(field string) string {
	switch field {
	case "Type":
		return "type"
	case "Value":
		return "value"
	case "Position":
		return "position"
	}
	return field
}

// slot is a block of the resulting page state: request index (or -1 for
// untouched persisted blocks), type and position.
type slot struct {
	index    int
	typ      BlockType
	position int
}

func checkHeaderMix(state []slot) error {
	var headers, others int
	for _, s := range state {
		if s.typ == TypeHeader {
			headers++
		} else {
			others++
		}
	}
	if headers == 0 || others == 0 {
		return pageError(RuleHeaderMix, "a page needs at least one header and one non-header block")
	}
	return nil
}

// checkPositions requires every position to lie in [1, len(state)] and to be
// used once. Together these make positions a dense 1..n sequence.
func checkPositions(state []slot) error {
	counts := make([]int, len(state))
	for _, s := range state {
		if s.position < 1 || s.position > len(state) {
			return blockError(RulePositionRange, s.index, "position %d outside 1..%d", s.position, len(state))
		}
		counts[s.position-1]++
		if counts[s.position-1] > 1 {
			return blockError(RulePositionConflict, s.index, "position %d used by more than one block", s.position)
		}
	}
	return nil
}
