package catalog

import "fmt"

// ValidationError covers bad or missing caller input. Never retried.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// StorageError means the blob backend rejected or failed the write. No
// metadata row exists for the attempt.
type StorageError struct {
	Backend string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage backend %q: %v", e.Backend, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// MetadataError means the metadata write failed after the blob write
// succeeded. The blob is an orphan: durable but unindexed, logged and never
// rolled back.
type MetadataError struct {
	Err error
}

func (e *MetadataError) Error() string { return fmt.Sprintf("metadata store: %v", e.Err) }

func (e *MetadataError) Unwrap() error { return e.Err }

// NotFoundError is a resolve-time miss: either the id is unknown or the
// backing object has disappeared.
type NotFoundError struct {
	Reason string
}

func (e *NotFoundError) Error() string { return e.Reason }

// AuthError means identity was required but missing or invalid.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string { return e.Reason }
