package domain

import "errors"

var (
	// ErrNotFound indicates that a requested contact was not found.
	ErrNotFound = errors.New("contact not found")
	// ErrDuplicateName indicates another contact already has the same
	// first and last name.
	ErrDuplicateName = errors.New("contact with that name already exists")
)
