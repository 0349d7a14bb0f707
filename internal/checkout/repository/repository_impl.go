package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/reelforge/reelforge/internal/checkout/domain"
	"github.com/reelforge/reelforge/pkg/db"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertEvent(ctx context.Context, conn *gorm.DB, event *domain.WebhookEvent) (bool, error) {
	if err := conn.WithContext(ctx).Create(event).Error; err != nil {
		if db.IsDuplicateKeyErr(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *repo) MarkProcessed(ctx context.Context, conn *gorm.DB, id int64, at time.Time) error {
	return conn.WithContext(ctx).
		Model(&domain.WebhookEvent{}).
		Where("id = ?", id).
		Update("processed_at", at).Error
}

func (r *repo) FindEvent(ctx context.Context, conn *gorm.DB, provider, providerEventID string) (*domain.WebhookEvent, error) {
	var events []domain.WebhookEvent
	err := conn.WithContext(ctx).
		Where("provider = ? AND provider_event_id = ?", provider, providerEventID).
		Limit(1).
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, nil
	}
	return &events[0], nil
}
