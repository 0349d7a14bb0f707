package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, item *CartItem) error
	Save(ctx context.Context, db *gorm.DB, item *CartItem) error
	FindByID(ctx context.Context, db *gorm.DB, brandID, id snowflake.ID) (*CartItem, error)
	ListByBrand(ctx context.Context, db *gorm.DB, brandID snowflake.ID) ([]CartItem, error)
	Delete(ctx context.Context, db *gorm.DB, brandID, id snowflake.ID) error
	DeleteByBrand(ctx context.Context, db *gorm.DB, brandID snowflake.ID) error
}
