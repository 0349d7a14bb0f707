package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	InsertMilestone(ctx context.Context, db *gorm.DB, m *Milestone) error
	FindMilestone(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Milestone, error)
	ListMilestones(ctx context.Context, db *gorm.DB) ([]Milestone, error)
	InsertDiscountTier(ctx context.Context, db *gorm.DB, t *DiscountTier) error
	ListDiscountTiers(ctx context.Context, db *gorm.DB) ([]DiscountTier, error)
}
