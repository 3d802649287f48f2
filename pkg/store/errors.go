package store

import "errors"

var (
	// ErrNotFound is returned when a document does not exist.
	ErrNotFound = errors.New("store: document not found")

	// ErrAlreadyExists is returned on id collision during Create.
	ErrAlreadyExists = errors.New("store: document already exists")

	// ErrInvalidDest is returned when a decode destination has the wrong type.
	ErrInvalidDest = errors.New("store: destination must be a pointer to a slice")

	// ErrInvalidQuery is returned when a query uses an unknown range operator.
	ErrInvalidQuery = errors.New("store: invalid query")
)
