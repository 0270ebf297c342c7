package repositories

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/chisomo-phiri/studyhub/internal/models"
)

// ListFilter narrows a listing; zero values mean "no constraint".
type ListFilter struct {
	Owner   *uuid.UUID
	Program string
	Limit   int
	Offset  int
}

// FileRepo is the metadata side of the catalogue: one denormalized row per
// uploaded file, queried by recency and by classification keys.
type FileRepo struct {
	db *gorm.DB
}

func NewFileRepo(db *gorm.DB) *FileRepo {
	return &FileRepo{db: db}
}

func (r *FileRepo) Create(ctx context.Context, rec *models.FileRecord) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

// List returns records most-recently-uploaded first. A zero-match query yields
// an empty slice, not an error.
func (r *FileRepo) List(ctx context.Context, filter ListFilter) ([]models.FileRecord, error) {
	q := r.db.WithContext(ctx).Order("uploaded_at DESC")
	if filter.Program != "" {
		q = q.Where("program = ?", filter.Program)
	}
	if filter.Owner != nil {
		q = q.Where("owner_id = ?", *filter.Owner)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}

	records := make([]models.FileRecord, 0)
	if err := q.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *FileRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.FileRecord, error) {
	var rec models.FileRecord
	if err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

// Delete removes the metadata row only; the blob in the backing store is left
// behind on purpose.
func (r *FileRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&models.FileRecord{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
