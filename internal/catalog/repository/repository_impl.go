package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/reelforge/reelforge/internal/catalog/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() catalogdomain.Repository {
	return &repo{}
}

func (r *repo) InsertMilestone(ctx context.Context, db *gorm.DB, m *catalogdomain.Milestone) error {
	return db.WithContext(ctx).Create(m).Error
}

func (r *repo) FindMilestone(ctx context.Context, db *gorm.DB, id snowflake.ID) (*catalogdomain.Milestone, error) {
	var m catalogdomain.Milestone
	err := db.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&m).Error
	if err != nil {
		return nil, err
	}
	if m.ID == 0 {
		return nil, nil
	}
	return &m, nil
}

func (r *repo) ListMilestones(ctx context.Context, db *gorm.DB) ([]catalogdomain.Milestone, error) {
	var items []catalogdomain.Milestone
	err := db.WithContext(ctx).
		Order("min_videos ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) InsertDiscountTier(ctx context.Context, db *gorm.DB, t *catalogdomain.DiscountTier) error {
	return db.WithContext(ctx).Create(t).Error
}

func (r *repo) ListDiscountTiers(ctx context.Context, db *gorm.DB) ([]catalogdomain.DiscountTier, error) {
	var items []catalogdomain.DiscountTier
	err := db.WithContext(ctx).
		Order("min_video_count ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
