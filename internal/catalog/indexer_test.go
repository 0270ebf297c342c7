package catalog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/chisomo-phiri/studyhub/internal/models"
	"github.com/chisomo-phiri/studyhub/internal/repositories"
	"github.com/chisomo-phiri/studyhub/internal/storage"
)

// fakeStore is an in-memory BlobStore with switchable failure.
type fakeStore struct {
	tag       string
	publicURL string
	failPut   bool

	mu      sync.Mutex
	objects map[string][]byte
}

func newFakeStore(tag string) *fakeStore {
	return &fakeStore{tag: tag, objects: make(map[string][]byte)}
}

func (f *fakeStore) Backend() string { return f.tag }

func (f *fakeStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	if f.failPut {
		return "", errors.New("backend unavailable")
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = data
	return key, nil
}

func (f *fakeStore) URL(locator string) string {
	if f.publicURL == "" {
		return ""
	}
	return f.publicURL + "/" + locator
}

func (f *fakeStore) Open(ctx context.Context, locator string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[locator]
	if !ok {
		return nil, storage.ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.objects)
}

type recordingNotifier struct {
	mu      sync.Mutex
	records []*models.FileRecord
}

func (n *recordingNotifier) NotifyNewFile(rec *models.FileRecord) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.records = append(n.records, rec)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "catalog.db") + "?_busy_timeout=10000"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, repositories.Migrate(db))
	return db
}

func newTestIndexer(t *testing.T) (*Indexer, *fakeStore, *gorm.DB) {
	t.Helper()
	store := newFakeStore(storage.BackendLocal)
	db := newTestDB(t)
	ix := NewIndexer(storage.NewRouter(store, nil, 0), repositories.NewFileRepo(db), nil)
	return ix, store, db
}

func validInput(body string) IngestInput {
	return IngestInput{
		Program:     "Basics",
		Semester:    "1",
		Subject:     "Math",
		Filename:    "notes.pdf",
		ContentType: "application/pdf",
		Size:        int64(len(body)),
		Body:        bytes.NewReader([]byte(body)),
	}
}

func TestIngestSuccess(t *testing.T) {
	ix, store, _ := newTestIndexer(t)
	ctx := context.Background()

	rec, err := ix.Ingest(ctx, validInput("0123456789"))
	require.NoError(t, err)

	assert.Equal(t, "Basics", rec.Program)
	assert.Equal(t, "notes.pdf", rec.Filename)
	assert.Equal(t, storage.BackendLocal, rec.StorageBackend)
	assert.Contains(t, rec.StoragePath, "notes.pdf")
	assert.Equal(t, "/files/"+rec.ID.String()+"/notes.pdf", rec.URL)
	assert.Equal(t, 1, store.count())

	// Listing includes the new record first.
	records, err := ix.List(ctx, repositories.ListFilter{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, rec.ID, records[0].ID)
}

func TestIngestProxyURLEmbedsSanitizedName(t *testing.T) {
	ix, _, _ := newTestIndexer(t)

	// Backends without public URLs get proxy URLs that still carry the
	// sanitized filename, not just the opaque id.
	in := validInput("data")
	in.Filename = "exam revision notes.pdf"
	rec, err := ix.Ingest(context.Background(), in)
	require.NoError(t, err)

	assert.Contains(t, rec.URL, rec.ID.String())
	assert.True(t, strings.HasSuffix(rec.URL, "/exam_revision_notes.pdf"), rec.URL)
}

func TestIngestRoundTrip(t *testing.T) {
	ix, _, _ := newTestIndexer(t)
	ctx := context.Background()

	content := "the quick brown fox"
	rec, err := ix.Ingest(ctx, validInput(content))
	require.NoError(t, err)

	resolved, err := ix.Resolve(ctx, rec.ID)
	require.NoError(t, err)
	require.NotNil(t, resolved.Body)
	defer resolved.Body.Close()

	got, err := io.ReadAll(resolved.Body)
	require.NoError(t, err)
	assert.Equal(t, content, string(got))
}

func TestIngestValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*IngestInput)
		reason string
	}{
		{"missing program", func(in *IngestInput) { in.Program = "" }, "missing required field"},
		{"missing semester", func(in *IngestInput) { in.Semester = "" }, "missing required field"},
		{"missing subject", func(in *IngestInput) { in.Subject = "" }, "missing required field"},
		{"missing file", func(in *IngestInput) { in.Body = nil; in.Size = 0 }, "missing file"},
		{"empty file", func(in *IngestInput) { in.Size = 0 }, "missing file"},
		{"invalid program", func(in *IngestInput) { in.Program = "Invalid" }, "invalid program classification"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ix, store, _ := newTestIndexer(t)

			in := validInput("data")
			tt.mutate(&in)

			_, err := ix.Ingest(context.Background(), in)
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.reason, vErr.Reason)

			// Neither write happened.
			assert.Equal(t, 0, store.count())
			records, err := ix.List(context.Background(), repositories.ListFilter{})
			require.NoError(t, err)
			assert.Empty(t, records)
		})
	}
}

func TestIngestBlobFailure(t *testing.T) {
	ix, store, _ := newTestIndexer(t)
	store.failPut = true

	_, err := ix.Ingest(context.Background(), validInput("data"))
	var sErr *StorageError
	require.ErrorAs(t, err, &sErr)
	assert.Equal(t, storage.BackendLocal, sErr.Backend)

	// No partial record.
	records, err := ix.List(context.Background(), repositories.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestIngestMetadataFailureLeavesOrphan(t *testing.T) {
	ix, store, db := newTestIndexer(t)

	// Break only the metadata side, after the blob write will have succeeded.
	require.NoError(t, db.Migrator().DropTable(&models.FileRecord{}))

	_, err := ix.Ingest(context.Background(), validInput("data"))
	var mErr *MetadataError
	require.ErrorAs(t, err, &mErr)

	// The blob was written and stays behind as a documented orphan.
	assert.Equal(t, 1, store.count())
}

func TestIngestNotifies(t *testing.T) {
	store := newFakeStore(storage.BackendLocal)
	db := newTestDB(t)
	notifier := &recordingNotifier{}
	ix := NewIndexer(storage.NewRouter(store, nil, 0), repositories.NewFileRepo(db), notifier)

	rec, err := ix.Ingest(context.Background(), validInput("data"))
	require.NoError(t, err)

	require.Len(t, notifier.records, 1)
	assert.Equal(t, rec.ID, notifier.records[0].ID)
}

func TestIngestConcurrentSameName(t *testing.T) {
	ix, _, _ := newTestIndexer(t)

	const n = 8
	var wg sync.WaitGroup
	results := make([]*models.FileRecord, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = ix.Ingest(context.Background(), validInput(fmt.Sprintf("content-%d", i)))
		}(i)
	}
	wg.Wait()

	ids := make(map[string]bool)
	paths := make(map[string]bool)
	for i, rec := range results {
		require.NoError(t, errs[i])
		ids[rec.ID.String()] = true
		paths[rec.StoragePath] = true
	}
	assert.Len(t, ids, n, "each ingest must mint a distinct id")
	assert.Len(t, paths, n, "no overwrite between identically-named uploads")
}

func TestListOrderingAndFilters(t *testing.T) {
	ix, _, _ := newTestIndexer(t)
	ctx := context.Background()

	// Strictly increasing timestamps.
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	step := 0
	ix.now = func() time.Time {
		step++
		return base.Add(time.Duration(step) * time.Second)
	}

	programs := []string{"Basics", "Diploma in ICT", "Basics", "Bachelors of Agriculture"}
	var created []*models.FileRecord
	for _, p := range programs {
		in := validInput("data")
		in.Program = p
		rec, err := ix.Ingest(ctx, in)
		require.NoError(t, err)
		created = append(created, rec)
	}

	// Most recently uploaded first: insertion order reversed.
	records, err := ix.List(ctx, repositories.ListFilter{})
	require.NoError(t, err)
	require.Len(t, records, len(created))
	for i, rec := range records {
		assert.Equal(t, created[len(created)-1-i].ID, rec.ID)
	}

	// Program filter returns exactly the matching subset.
	basics, err := ix.List(ctx, repositories.ListFilter{Program: "Basics"})
	require.NoError(t, err)
	require.Len(t, basics, 2)
	for _, rec := range basics {
		assert.Equal(t, "Basics", rec.Program)
	}

	// A program nobody uploaded to yields an empty sequence, not an error.
	none, err := ix.List(ctx, repositories.ListFilter{Program: "Diploma in Nursing"})
	require.NoError(t, err)
	assert.Empty(t, none)

	// Limit/offset pages through the ordered sequence.
	page, err := ix.List(ctx, repositories.ListFilter{Limit: 2, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, created[2].ID, page[0].ID)
	assert.Equal(t, created[1].ID, page[1].ID)
}

func TestResolveErrors(t *testing.T) {
	ix, store, _ := newTestIndexer(t)
	ctx := context.Background()

	// Unknown id.
	_, err := ix.Resolve(ctx, uuid.New())
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "unknown file id", nf.Reason)

	// Known id, object gone from the backend.
	rec, err := ix.Ingest(ctx, validInput("data"))
	require.NoError(t, err)
	store.mu.Lock()
	delete(store.objects, rec.StoragePath)
	store.mu.Unlock()

	_, err = ix.Resolve(ctx, rec.ID)
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "object missing from storage", nf.Reason)
}

func TestResolvePublicURLBackend(t *testing.T) {
	store := newFakeStore(storage.BackendS3)
	store.publicURL = "https://cdn.example.com/notes"
	db := newTestDB(t)
	ix := NewIndexer(storage.NewRouter(store, nil, 0), repositories.NewFileRepo(db), nil)

	rec, err := ix.Ingest(context.Background(), validInput("data"))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/notes/"+rec.StoragePath, rec.URL)
}

func TestDelete(t *testing.T) {
	ix, _, _ := newTestIndexer(t)
	ctx := context.Background()

	rec, err := ix.Ingest(ctx, validInput("data"))
	require.NoError(t, err)

	require.NoError(t, ix.Delete(ctx, rec.ID))

	records, err := ix.List(ctx, repositories.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, records)

	var nf *NotFoundError
	require.ErrorAs(t, ix.Delete(ctx, rec.ID), &nf)
}
