package expr

import (
	"fmt"
	"strings"

	"github.com/starford/taskparser/internal/apperr"
)

// SyntaxError reports an expression that does not follow the grammar. It
// matches apperr.ErrInvalidExpression.
type SyntaxError struct {
	Input  string
	Offset int
	Msg    string
}

func newSyntaxError(input string, offset int, format string, args ...any) *SyntaxError {
	return &SyntaxError{Input: input, Offset: offset, Msg: fmt.Sprintf(format, args...)}
}

// Clause returns the comma-separated clause containing the error offset.
func (e *SyntaxError) Clause() string {
	start := strings.LastIndexByte(e.Input[:min(e.Offset, len(e.Input))], ',') + 1
	end := len(e.Input)
	if i := strings.IndexByte(e.Input[min(e.Offset, len(e.Input)):], ','); i >= 0 {
		end = e.Offset + i
	}
	return strings.TrimSpace(e.Input[start:end])
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("expr: invalid expression %q: %s at offset %d", e.Clause(), e.Msg, e.Offset)
}

func (e *SyntaxError) Is(target error) bool {
	return target == apperr.ErrInvalidExpression
}

// NullOperatorError reports is/not used with a reference other than null.
// It matches apperr.ErrNullReference and apperr.ErrInvalidExpression.
type NullOperatorError struct {
	Tag       string
	Op        Op
	Reference string
}

func (e *NullOperatorError) Error() string {
	return fmt.Sprintf("expr: operator %q on tag %q only accepts null, got %q", e.Op, e.Tag, e.Reference)
}

func (e *NullOperatorError) Is(target error) bool {
	return target == apperr.ErrNullReference || target == apperr.ErrInvalidExpression
}
