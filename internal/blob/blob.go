// Package blob defines the namespaced key-value blob store the catalog is
// persisted in, together with its pluggable backends. Writes can carry an
// entity-tag precondition so callers get optimistic concurrency across
// separate service invocations.
package blob

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when the requested key has no blob.
	ErrNotFound = errors.New("blob not found")

	// ErrPreconditionFailed is returned when a Set carried an IfMatch ETag
	// that no longer matches the stored blob.
	ErrPreconditionFailed = errors.New("etag precondition failed")

	// ErrNotEnabled is returned when no blob store backend is provisioned.
	ErrNotEnabled = errors.New("blob store not enabled")
)

// Metadata describes a stored blob without its payload.
type Metadata struct {
	ETag        string
	ContentType string
}

// SetOptions control a single write.
type SetOptions struct {
	ContentType string

	// IfMatch, when non-empty, makes the write conditional on the stored
	// blob still carrying this ETag. An empty value writes unconditionally.
	IfMatch string
}

// Store is a namespaced key-value blob store with ETag support.
type Store interface {
	// Get returns the blob payload and its current ETag.
	Get(ctx context.Context, key string) ([]byte, string, error)

	// Set writes the blob and returns the new ETag.
	Set(ctx context.Context, key string, data []byte, opts SetOptions) (string, error)

	// Metadata returns the blob's ETag and content type without the payload.
	Metadata(ctx context.Context, key string) (Metadata, error)
}

// Disabled is the Store used when no backend is configured. Every operation
// reports ErrNotEnabled so callers can surface the deployment problem
// distinctly from data errors.
type Disabled struct{}

func (Disabled) Get(context.Context, string) ([]byte, string, error) {
	return nil, "", ErrNotEnabled
}

func (Disabled) Set(context.Context, string, []byte, SetOptions) (string, error) {
	return "", ErrNotEnabled
}

func (Disabled) Metadata(context.Context, string) (Metadata, error) {
	return Metadata{}, ErrNotEnabled
}

var _ Store = Disabled{}
