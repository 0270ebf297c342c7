package repositories

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/chisomo-phiri/studyhub/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	return db
}

func seedRecord(t *testing.T, repo *FileRepo, program string, owner *uuid.UUID, uploadedAt time.Time) *models.FileRecord {
	t.Helper()
	rec := &models.FileRecord{
		ID:             uuid.New(),
		Program:        program,
		Semester:       "1",
		Subject:        "Math",
		Filename:       "notes.pdf",
		StoragePath:    program + "/1/Math/" + uuid.NewString(),
		URL:            "/files/x",
		StorageBackend: "local",
		OwnerID:        owner,
		UploadedAt:     uploadedAt,
	}
	require.NoError(t, repo.Create(context.Background(), rec))
	return rec
}

func TestFileRepoListOrdering(t *testing.T) {
	repo := NewFileRepo(newTestDB(t))
	base := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

	var created []*models.FileRecord
	for i := 0; i < 5; i++ {
		created = append(created, seedRecord(t, repo, "Basics", nil, base.Add(time.Duration(i)*time.Minute)))
	}

	records, err := repo.List(context.Background(), ListFilter{})
	require.NoError(t, err)
	require.Len(t, records, 5)
	for i, rec := range records {
		assert.Equal(t, created[4-i].ID, rec.ID, "most recent first")
	}
}

func TestFileRepoListFilters(t *testing.T) {
	repo := NewFileRepo(newTestDB(t))
	base := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

	alice := uuid.New()
	bob := uuid.New()
	seedRecord(t, repo, "Basics", &alice, base)
	seedRecord(t, repo, "Diploma in ICT", &alice, base.Add(time.Minute))
	seedRecord(t, repo, "Basics", &bob, base.Add(2*time.Minute))

	basics, err := repo.List(context.Background(), ListFilter{Program: "Basics"})
	require.NoError(t, err)
	assert.Len(t, basics, 2)

	aliceOnly, err := repo.List(context.Background(), ListFilter{Owner: &alice})
	require.NoError(t, err)
	assert.Len(t, aliceOnly, 2)

	both, err := repo.List(context.Background(), ListFilter{Program: "Basics", Owner: &alice})
	require.NoError(t, err)
	require.Len(t, both, 1)
	assert.Equal(t, &alice, both[0].OwnerID)

	// No matches: empty slice, not an error.
	none, err := repo.List(context.Background(), ListFilter{Program: "Masters"})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestFileRepoListPagination(t *testing.T) {
	repo := NewFileRepo(newTestDB(t))
	base := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

	var created []*models.FileRecord
	for i := 0; i < 4; i++ {
		created = append(created, seedRecord(t, repo, "Basics", nil, base.Add(time.Duration(i)*time.Minute)))
	}

	page, err := repo.List(context.Background(), ListFilter{Limit: 2, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, created[2].ID, page[0].ID)
	assert.Equal(t, created[1].ID, page[1].ID)
}

func TestFileRepoGetAndDelete(t *testing.T) {
	repo := NewFileRepo(newTestDB(t))
	rec := seedRecord(t, repo, "Basics", nil, time.Now())

	got, err := repo.GetByID(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.StoragePath, got.StoragePath)

	require.NoError(t, repo.Delete(context.Background(), rec.ID))

	_, err = repo.GetByID(context.Background(), rec.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	assert.ErrorIs(t, repo.Delete(context.Background(), rec.ID), gorm.ErrRecordNotFound)
}

func TestSubscriptionRepoUpsert(t *testing.T) {
	repo := NewSubscriptionRepo(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, &models.Subscription{
		ID:       uuid.New(),
		Kind:     models.SubscriptionFCM,
		Endpoint: "token-1",
	}))

	// Re-registering the same endpoint must not error or duplicate.
	owner := uuid.New()
	require.NoError(t, repo.Save(ctx, &models.Subscription{
		ID:       uuid.New(),
		Kind:     models.SubscriptionFCM,
		Endpoint: "token-1",
		OwnerID:  &owner,
	}))

	subs, err := repo.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, &owner, subs[0].OwnerID)
}

func TestSubscriptionRepoPrune(t *testing.T) {
	repo := NewSubscriptionRepo(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, &models.Subscription{ID: uuid.New(), Kind: models.SubscriptionFCM, Endpoint: "alive"}))
	require.NoError(t, repo.Save(ctx, &models.Subscription{ID: uuid.New(), Kind: models.SubscriptionFCM, Endpoint: "dead"}))

	require.NoError(t, repo.DeleteByEndpoint(ctx, "dead"))

	subs, err := repo.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "alive", subs[0].Endpoint)
}
