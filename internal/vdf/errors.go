package vdf

import "errors"

// Error variables for document navigation and scalar access.
var (
	ErrNotFound        = errors.New("not found")
	ErrMissingAncestor = errors.New("missing ancestor key")
	ErrMalformed       = errors.New("malformed document")
	ErrNotScalar       = errors.New("key holds a block, not a value")
	ErrInvalidValue    = errors.New("value cannot be stored between quotes")
	ErrRootBlock       = errors.New("cannot insert at document root")
)
