package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// Backend tags. The tag recorded on a FileRecord decides how its locator is
// dereferenced later, so values here are part of the persisted data model.
const (
	BackendLocal = "local"
	BackendS3    = "s3"
	BackendDrive = "drive"
)

// ErrObjectNotFound is returned by Open when the locator is well-formed but
// the backing object no longer exists.
var ErrObjectNotFound = errors.New("storage: object not found")

// BlobStore is the capability interface every byte-storage backend satisfies.
// Adding a backend means adding one implementation, not touching the callers.
type BlobStore interface {
	// Backend returns the tag identifying this store.
	Backend() string

	// Put writes the object at the given hierarchical key and returns the
	// backend-specific locator to record (a filesystem-relative path, an
	// object key, or a provider file id).
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)

	// URL returns a publicly resolvable address for the object, or "" when
	// the backend has no public URLs and the bytes must be proxied through
	// this service.
	URL(locator string) string

	// Open returns a stream of the object's bytes. A missing object yields
	// ErrObjectNotFound.
	Open(ctx context.Context, locator string) (io.ReadCloser, error)
}

// Presigner is implemented by backends that can hand out short-lived direct
// download URLs, letting resolve redirect instead of proxying.
type Presigner interface {
	PresignGet(ctx context.Context, locator string, expires time.Duration) (string, error)
}
