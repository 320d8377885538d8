package memberrepo

import "errors"

var (
	ErrNotFound      = errors.New("member not found")
	ErrAlreadyExists = errors.New("member id already in use")

	// ErrInvalidID is returned by Create for ids that are not positive.
	ErrInvalidID = errors.New("member id must be positive")
	// ErrUnknownSortKey is returned by Sort for keys other than SortBySurname and SortByExperience.
	ErrUnknownSortKey = errors.New("unknown sort key")
)
