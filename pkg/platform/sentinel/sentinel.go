// Package sentinel holds the storage facts stores report to services.
package sentinel

import "errors"

var (
	// ErrNotFound means the record does not exist. Services map it to their
	// own not-found error, or treat it as "empty" where absence is valid.
	ErrNotFound = errors.New("not found")
	// ErrConflict means a uniqueness constraint rejected the write, such as a
	// contract already claimed by another project.
	ErrConflict = errors.New("conflict")
)
