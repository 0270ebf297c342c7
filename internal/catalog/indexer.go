// Package catalog is the upload router and metadata indexer: it decides where
// a file's bytes live, catalogues the file by program/semester/subject, and
// reconstructs a unified listing across storage backends.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/chisomo-phiri/studyhub/internal/models"
	"github.com/chisomo-phiri/studyhub/internal/repositories"
	"github.com/chisomo-phiri/studyhub/internal/storage"
)

const presignExpiry = 15 * time.Minute

// Blobs routes uploads to a store and resolves stores by backend tag.
type Blobs interface {
	Select(size int64) storage.BlobStore
	ByBackend(tag string) (storage.BlobStore, bool)
}

// Notifier fans out "new file" events. Implementations must be asynchronous
// and must never surface delivery failures to the ingest path.
type Notifier interface {
	NotifyNewFile(rec *models.FileRecord)
}

// Indexer ties the blob router, the metadata repository and the notifier into
// the ingest/list/resolve operations.
type Indexer struct {
	blobs    Blobs
	files    *repositories.FileRepo
	notifier Notifier // nil disables notifications

	now func() time.Time
}

func NewIndexer(blobs Blobs, files *repositories.FileRepo, notifier Notifier) *Indexer {
	return &Indexer{
		blobs:    blobs,
		files:    files,
		notifier: notifier,
		now:      time.Now,
	}
}

// IngestInput is one upload request after transport decoding.
type IngestInput struct {
	Program     string
	Semester    string
	Subject     string
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
	Owner       *uuid.UUID
}

// Ingest validates the request, writes the bytes to the selected backend, then
// writes the metadata row. The two writes are not a transaction: blob first,
// so a metadata failure leaves a durable-but-unindexed orphan rather than an
// indexed row with no bytes behind it.
func (ix *Indexer) Ingest(ctx context.Context, in IngestInput) (*models.FileRecord, error) {
	if in.Program == "" || in.Semester == "" || in.Subject == "" {
		return nil, &ValidationError{Reason: "missing required field"}
	}
	if in.Body == nil || in.Size <= 0 {
		return nil, &ValidationError{Reason: "missing file"}
	}
	if !ValidProgram(in.Program) {
		return nil, &ValidationError{Reason: "invalid program classification"}
	}

	id := uuid.New()
	now := ix.now()
	name := SanitizeFilename(in.Filename)
	// Timestamp plus id keeps concurrent uploads of identically-named files
	// from colliding, with no existence check against the backend.
	key := fmt.Sprintf("%s/%s/%s/%d-%s-%s",
		in.Program, in.Semester, in.Subject, now.UnixMilli(), id, name)

	store := ix.blobs.Select(in.Size)
	locator, err := store.Put(ctx, key, in.Body, in.Size, in.ContentType)
	if err != nil {
		return nil, &StorageError{Backend: store.Backend(), Err: err}
	}

	url := store.URL(locator)
	if url == "" {
		// Proxy route; the sanitized name keeps download URLs self-describing.
		url = fmt.Sprintf("/files/%s/%s", id, name)
	}

	rec := &models.FileRecord{
		ID:             id,
		Program:        in.Program,
		Semester:       in.Semester,
		Subject:        in.Subject,
		Filename:       in.Filename,
		StoragePath:    locator,
		URL:            url,
		StorageBackend: store.Backend(),
		Size:           in.Size,
		ContentType:    in.ContentType,
		OwnerID:        in.Owner,
		UploadedAt:     now,
	}
	if err := ix.files.Create(ctx, rec); err != nil {
		// The blob stays where it is, unindexed.
		log.Printf("Metadata insert failed, orphaned blob at %s/%s: %v", store.Backend(), locator, err)
		return nil, &MetadataError{Err: err}
	}

	if ix.notifier != nil {
		ix.notifier.NotifyNewFile(rec)
	}
	return rec, nil
}

// List returns catalogued records, most recent first.
func (ix *Indexer) List(ctx context.Context, filter repositories.ListFilter) ([]models.FileRecord, error) {
	records, err := ix.files.List(ctx, filter)
	if err != nil {
		return nil, &MetadataError{Err: err}
	}
	return records, nil
}

// Resolved is the outcome of dereferencing a record: either a direct URL the
// caller should redirect to, or a byte stream proxied from the backend.
type Resolved struct {
	Record      *models.FileRecord
	RedirectURL string
	Body        io.ReadCloser
}

// Resolve dispatches on the record's backend tag. An unknown id and a missing
// backing object are both NotFoundError, with distinct reasons.
func (ix *Indexer) Resolve(ctx context.Context, id uuid.UUID) (*Resolved, error) {
	rec, err := ix.files.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Reason: "unknown file id"}
	}
	if err != nil {
		return nil, &MetadataError{Err: err}
	}

	store, ok := ix.blobs.ByBackend(rec.StorageBackend)
	if !ok {
		return nil, &StorageError{
			Backend: rec.StorageBackend,
			Err:     errors.New("backend not configured in this deployment"),
		}
	}

	if p, ok := store.(storage.Presigner); ok {
		url, err := p.PresignGet(ctx, rec.StoragePath, presignExpiry)
		if err != nil {
			return nil, &StorageError{Backend: rec.StorageBackend, Err: err}
		}
		return &Resolved{Record: rec, RedirectURL: url}, nil
	}

	body, err := store.Open(ctx, rec.StoragePath)
	if errors.Is(err, storage.ErrObjectNotFound) {
		return nil, &NotFoundError{Reason: "object missing from storage"}
	}
	if err != nil {
		return nil, &StorageError{Backend: rec.StorageBackend, Err: err}
	}
	return &Resolved{Record: rec, Body: body}, nil
}

// Delete removes the metadata row. Blob deletion is deliberately not coupled
// to it.
func (ix *Indexer) Delete(ctx context.Context, id uuid.UUID) error {
	err := ix.files.Delete(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &NotFoundError{Reason: "unknown file id"}
	}
	if err != nil {
		return &MetadataError{Err: err}
	}
	return nil
}
