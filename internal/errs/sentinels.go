// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Composition and relation taxonomy. Every one of them is a rejection of a single
// request and is safe to report back to the caller.
var (
	// ErrEmptyCollection indicates a mandatory list (ingredients, tags) was empty.
	ErrEmptyCollection = errors.New("empty collection")

	// ErrUnknownReference indicates an ingredient/tag/recipe id does not exist.
	ErrUnknownReference = errors.New("unknown reference")

	// ErrDuplicateReference indicates the same id was repeated in one submitted list.
	ErrDuplicateReference = errors.New("duplicate reference")

	// ErrOutOfRange indicates a numeric or length bound was violated.
	ErrOutOfRange = errors.New("out of range")

	// ErrConflict indicates a favorite/cart/subscription pair already exists on add,
	// or does not exist on remove.
	ErrConflict = errors.New("conflict")

	// ErrSelfReference indicates a user attempted to subscribe to themselves.
	ErrSelfReference = errors.New("self reference")
)

// Transport-level sentinels.
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates a malformed or incomplete request payload.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates failed authentication.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates the caller may not modify the resource.
	ErrForbidden = errors.New("forbidden")

	// ErrRateLimited indicates temporary login lock due to rate limiting.
	ErrRateLimited = errors.New("rate limited")

	// ErrAlreadyExists indicates a unique constraint violation (e.g., email taken).
	ErrAlreadyExists = errors.New("already exists")
)

// FieldError attaches the name of the offending request field to a sentinel.
type FieldError struct {
	Field string
	Err   error
}

// Field wraps err with the request field it concerns.
func Field(field string, err error) error {
	return &FieldError{Field: field, Err: err}
}

func (e *FieldError) Error() string { return e.Field + ": " + e.Err.Error() }

func (e *FieldError) Unwrap() error { return e.Err }

// FieldOf returns the field name carried by err, if any.
func FieldOf(err error) string {
	var fe *FieldError
	if errors.As(err, &fe) {
		return fe.Field
	}
	return ""
}
