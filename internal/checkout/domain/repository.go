package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	// InsertEvent records a webhook delivery. It returns false when an
	// event with the same (provider, provider_event_id) already exists.
	InsertEvent(ctx context.Context, db *gorm.DB, event *WebhookEvent) (bool, error)
	MarkProcessed(ctx context.Context, db *gorm.DB, id int64, at time.Time) error
	FindEvent(ctx context.Context, db *gorm.DB, provider, providerEventID string) (*WebhookEvent, error)
}
