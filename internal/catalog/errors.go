package catalog

import (
	"errors"
	"fmt"

	"github.com/okhowto/video-catalog-go/internal/blob"
)

var (
	// ErrValidation is returned when a caller-supplied record fails the
	// single-record validation rules. The store is never touched.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned when a delete target does not exist in the
	// current document.
	ErrNotFound = errors.New("record not found")

	// ErrConflict is returned when the ETag precondition failed and the
	// retry budget is exhausted.
	ErrConflict = errors.New("catalog write conflict")

	// ErrNotEnabled is returned when the backing blob store is not
	// provisioned. Distinct from other store errors so operators can tell
	// a deployment problem apart from a data problem.
	ErrNotEnabled = errors.New("catalog store not enabled")
)

// ItemError marks a validation failure on one element of a bulk payload,
// carrying the element's zero-based position so API responses can point at
// the offending record.
type ItemError struct {
	Index int
	Err   error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("item %d: %v", e.Index, e.Err)
}

func (e *ItemError) Unwrap() error {
	return e.Err
}

// WrapError maps blob-store errors onto the catalog taxonomy and adds the
// failing operation.
func WrapError(err error, operation string) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, blob.ErrNotEnabled):
		return fmt.Errorf("%s: %w", operation, ErrNotEnabled)
	case errors.Is(err, blob.ErrPreconditionFailed):
		return fmt.Errorf("%s: %w", operation, ErrConflict)
	}

	return fmt.Errorf("%s: %w", operation, err)
}

// IsValidation returns true if the error is an ErrValidation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsNotFound returns true if the error is an ErrNotFound error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict returns true if the error is an ErrConflict error.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsNotEnabled returns true if the error is an ErrNotEnabled error.
func IsNotEnabled(err error) bool {
	return errors.Is(err, ErrNotEnabled)
}
