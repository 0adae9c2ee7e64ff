package parser

import (
	"fmt"

	"github.com/starford/taskparser/internal/apperr"
)

// YAMLError reports a YAML block that could not be decoded. It matches
// apperr.ErrMalformedYAML, or apperr.ErrMalformedFolderMeta for folder
// metadata files.
type YAMLError struct {
	Path string
	Line int
	Meta bool
	Err  error
}

func newYAMLError(path string, line int, err error) *YAMLError {
	return &YAMLError{Path: path, Line: line, Err: err}
}

func (e *YAMLError) Error() string {
	what := "yaml block"
	if e.Meta {
		what = "folder metadata"
	}
	if e.Line > 0 {
		return fmt.Sprintf("parser: malformed %s in %s (line %d): %v", what, e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("parser: malformed %s in %s: %v", what, e.Path, e.Err)
}

func (e *YAMLError) Unwrap() error {
	return e.Err
}

func (e *YAMLError) Is(target error) bool {
	if e.Meta {
		return target == apperr.ErrMalformedFolderMeta
	}
	return target == apperr.ErrMalformedYAML
}
