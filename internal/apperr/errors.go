// Package apperr holds the error kinds shared across taskparser packages.
package apperr

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidExpression is matched by every filter/sort grammar failure.
	ErrInvalidExpression = errors.New("invalid expression")
	// ErrNullReference is returned when is/not are used with anything but null.
	ErrNullReference = errors.New("invalid null reference")

	// ErrUnknownFormat is returned for an output format other than table, csv or json.
	ErrUnknownFormat = errors.New("unknown output format")

	ErrMalformedYAML       = errors.New("malformed yaml")
	ErrMalformedFolderMeta = errors.New("malformed folder metadata")

	// ErrNotInteractive is returned when watch mode is requested without a terminal.
	ErrNotInteractive = errors.New("output is not an interactive terminal")
)
