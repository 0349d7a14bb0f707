package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	upgradedomain "github.com/reelforge/reelforge/internal/upgrade/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() upgradedomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, req *upgradedomain.Request) error {
	return db.WithContext(ctx).Create(req).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*upgradedomain.Request, error) {
	var req upgradedomain.Request
	err := db.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&req).Error
	if err != nil {
		return nil, err
	}
	if req.ID == 0 {
		return nil, nil
	}
	return &req, nil
}

func (r *repo) ListByBrand(ctx context.Context, db *gorm.DB, brandID snowflake.ID) ([]upgradedomain.Request, error) {
	var items []upgradedomain.Request
	err := db.WithContext(ctx).
		Where("brand_id = ?", brandID).
		Order("created_at DESC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ListByStatus(ctx context.Context, db *gorm.DB, status string) ([]upgradedomain.Request, error) {
	var items []upgradedomain.Request
	err := db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) HasPending(ctx context.Context, db *gorm.DB, brandID snowflake.ID) (bool, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&upgradedomain.Request{}).
		Where("brand_id = ? AND status = ?", brandID, upgradedomain.StatusPending).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repo) CloseIfPending(ctx context.Context, db *gorm.DB, id snowflake.ID, status, reviewedBy string, reviewedAt time.Time) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE upgrade_requests
		 SET status = ?, reviewed_by = ?, reviewed_at = ?
		 WHERE id = ? AND status = ?`,
		status, reviewedBy, reviewedAt, id, upgradedomain.StatusPending,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
