// Package apperr holds the sentinel errors shared across layers.
package apperr

import "errors"

var (
	// ErrNotFound means a category/slug pair does not resolve to a readable document.
	ErrNotFound = errors.New("not found")
	// ErrInvalidPath marks a route segment that could escape the content root.
	// It is always reported together with ErrNotFound.
	ErrInvalidPath = errors.New("invalid path segment")
)
