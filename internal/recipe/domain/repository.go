package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	ListActive(ctx context.Context, db *gorm.DB) ([]VideoRecipe, error)
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*VideoRecipe, error)
	FindBySlug(ctx context.Context, db *gorm.DB, slug string) (*VideoRecipe, error)
	ListBundles(ctx context.Context, db *gorm.DB) ([]Bundle, error)
	ListBundleItems(ctx context.Context, db *gorm.DB, bundleID snowflake.ID) ([]BundleItem, error)
}
