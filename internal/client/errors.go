package client

import "errors"

// Operation failures. Every error returned by a Client operation matches
// exactly one of these with errors.Is; none carries more detail than the
// status code in its message.
var (
	ErrAuthentication = errors.New("authentication failed")
	ErrRegistration   = errors.New("registration failed")
	ErrAuthRequired   = errors.New("authentication required")
	ErrFetch          = errors.New("fetching items failed")
	ErrSearch         = errors.New("searching items failed")
	ErrCreate         = errors.New("creating item failed")
	ErrUpdate         = errors.New("updating item failed")
	ErrDelete         = errors.New("deleting item failed")
	ErrPurchase       = errors.New("purchasing item failed")
)

// ErrNotFound additionally matches a 404 from a by-id lookup.
var ErrNotFound = errors.New("not found")

var (
	errInvalidID       = errors.New("item id must be positive")
	errInvalidPage     = errors.New("page must be >= 0 and pageSize >= 1")
	errEmptyQuery      = errors.New("query required")
	errMissingUsername = errors.New("username required")
	errMissingPassword = errors.New("password required")
	errMissingEmail    = errors.New("email required")
)
