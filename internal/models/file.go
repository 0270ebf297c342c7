package models

import (
	"time"

	"github.com/google/uuid"
)

// FileRecord is the catalogued metadata for one uploaded document. Records are
// created once at ingest and never mutated; (StorageBackend, StoragePath) is
// always sufficient to reach the bytes, URL is a derived convenience.
type FileRecord struct {
	ID             uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	Program        string     `json:"program" gorm:"not null;index:idx_classification"`
	Semester       string     `json:"semester" gorm:"not null;index:idx_classification"`
	Subject        string     `json:"subject" gorm:"not null;index:idx_classification"`
	Filename       string     `json:"filename" gorm:"not null"` // original, human-supplied
	StoragePath    string     `json:"path" gorm:"not null"`     // backend-specific locator
	URL            string     `json:"url" gorm:"not null"`
	StorageBackend string     `json:"storageBackend" gorm:"not null"` // "local", "s3" or "drive"
	Size           int64      `json:"size"`
	ContentType    string     `json:"contentType"`
	OwnerID        *uuid.UUID `json:"ownerId,omitempty" gorm:"type:uuid;index"`
	UploadedAt     time.Time  `json:"uploadedAt" gorm:"not null;index"`
}
