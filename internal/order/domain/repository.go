package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/reelforge/reelforge/pkg/db/pagination"
)

type Repository interface {
	InsertOrders(ctx context.Context, db *gorm.DB, orders []*Order) error
	ExistsBySession(ctx context.Context, db *gorm.DB, sessionID string) (bool, error)
	ListByBrand(ctx context.Context, db *gorm.DB, brandID snowflake.ID, page pagination.Pagination) ([]*Order, error)
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Order, error)
	FindForBrand(ctx context.Context, db *gorm.DB, brandID, id snowflake.ID) (*Order, error)
	Save(ctx context.Context, db *gorm.DB, order *Order) error
}
