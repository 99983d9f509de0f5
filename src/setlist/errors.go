package setlist

import "errors"

// Error taxonomy for the catalog. Storage adapters translate their native
// errors into these sentinels so callers can match with errors.Is.
var (
	// ErrConstraintViolation means a uniqueness invariant was broken
	// (duplicate title, duplicate (date, venue) show, duplicate
	// (show, song, position) performance).
	ErrConstraintViolation = errors.New("constraint violation")

	// ErrReferenceNotFound means a performance references a show or song
	// that does not exist.
	ErrReferenceNotFound = errors.New("referenced entity not found")

	// ErrNotFound means the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidFilter means a filter specification failed validation and
	// never reached the query layer.
	ErrInvalidFilter = errors.New("invalid filter")
)
