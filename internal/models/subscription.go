package models

import (
	"time"

	"github.com/google/uuid"
)

// Subscription kinds.
const (
	SubscriptionFCM     = "fcm"
	SubscriptionWebPush = "webpush"
)

// Subscription is one push delivery endpoint. For FCM the endpoint is the
// device token; for Web Push it is the subscription endpoint URL plus the
// client keys. Subscriptions live in the database so restarts and multiple
// instances share the active set.
type Subscription struct {
	ID        uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	Kind      string     `json:"kind" gorm:"not null"`
	Endpoint  string     `json:"endpoint" gorm:"uniqueIndex;not null"`
	P256dh    string     `json:"p256dh"` // Web Push only
	Auth      string     `json:"auth"`   // Web Push only
	OwnerID   *uuid.UUID `json:"ownerId,omitempty" gorm:"type:uuid;index"`
	CreatedAt time.Time  `json:"createdAt" gorm:"autoCreateTime"`
}
