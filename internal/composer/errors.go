package composer

import (
	"errors"
	"fmt"
)

// Rule names the page constraint a ValidationError reports.
type Rule string

const (
	RuleTitleLength      Rule = "title_length"
	RuleDateFormat       Rule = "date_format"
	RuleEmptyBlocks      Rule = "empty_blocks"
	RuleBlockKind        Rule = "block_kind"
	RuleDuplicateBlock   Rule = "duplicate_block"
	RuleUnknownBlock     Rule = "unknown_block"
	RuleMissingFields    Rule = "missing_fields"
	RuleHeaderMix        Rule = "header_mix"
	RuleUnknownType      Rule = "unknown_type"
	RuleTypeChange       Rule = "type_change"
	RuleValueLength      Rule = "value_length"
	RuleImageNotFound    Rule = "image_not_found"
	RulePositionRange    Rule = "position_range"
	RulePositionConflict Rule = "position_conflict"
)

// ValidationError is a rule violation in a submitted page. Block is the index
// of the offending block in the request, or -1 when the rule concerns the page
// as a whole.
type ValidationError struct {
	Rule    Rule
	Block   int
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsRule reports whether err is a ValidationError for rule.
func IsRule(err error, rule Rule) bool {
	var verr *ValidationError
	return errors.As(err, &verr) && verr.Rule == rule
}

func pageError(rule Rule, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Rule: rule, Block: -1, Message: fmt.Sprintf(format, args...)}
}

func blockError(rule Rule, index int, format string, args ...interface{}) *ValidationError {
	msg := fmt.Sprintf(format, args...)
	if index >= 0 {
		msg = fmt.Sprintf("block %d: %s", index+1, msg)
	}
	return &ValidationError{Rule: rule, Block: index, Message: msg}
}
