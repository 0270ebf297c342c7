package repositories

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/chisomo-phiri/studyhub/internal/models"
)

// SubscriptionRepo is the system of record for push delivery endpoints.
type SubscriptionRepo struct {
	db *gorm.DB
}

func NewSubscriptionRepo(db *gorm.DB) *SubscriptionRepo {
	return &SubscriptionRepo{db: db}
}

// Save registers an endpoint. Re-registering the same endpoint (clients do so
// on every page load) updates the existing row instead of erroring.
func (r *SubscriptionRepo) Save(ctx context.Context, sub *models.Subscription) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "endpoint"}},
			UpdateAll: true,
		}).
		Create(sub).Error
}

func (r *SubscriptionRepo) ListActive(ctx context.Context) ([]models.Subscription, error) {
	subs := make([]models.Subscription, 0)
	if err := r.db.WithContext(ctx).Find(&subs).Error; err != nil {
		return nil, err
	}
	return subs, nil
}

// DeleteByEndpoint prunes an endpoint the provider reported as permanently
// invalid.
func (r *SubscriptionRepo) DeleteByEndpoint(ctx context.Context, endpoint string) error {
	return r.db.WithContext(ctx).
		Delete(&models.Subscription{}, "endpoint = ?", endpoint).Error
}
