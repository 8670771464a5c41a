package steam

import (
	"errors"

	"github.com/calvinalkan/overbuddy/internal/vdf"
)

// Error variables for Steam config operations.
var (
	ErrReadFailed         = errors.New("cannot read steam config")
	ErrWriteFailed        = errors.New("cannot write steam config")
	ErrProfileNameMissing = errors.New("profile has no name")
	ErrUnsafeDiff         = errors.New("refusing to apply unexpected change")
	ErrNoOriginal         = errors.New("no saved original to restore")
	ErrNoAccounts         = errors.New("no steam accounts found")
)

// Navigation errors, re-exported so callers only need this package.
var (
	ErrNotFound        = vdf.ErrNotFound
	ErrMissingAncestor = vdf.ErrMissingAncestor
	ErrMalformed       = vdf.ErrMalformed
)
