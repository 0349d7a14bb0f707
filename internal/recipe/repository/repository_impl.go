package repository

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	recipedomain "github.com/reelforge/reelforge/internal/recipe/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() recipedomain.Repository {
	return &repo{}
}

func (r *repo) ListActive(ctx context.Context, db *gorm.DB) ([]recipedomain.VideoRecipe, error) {
	var items []recipedomain.VideoRecipe
	err := db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("sort_order ASC, name ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*recipedomain.VideoRecipe, error) {
	var recipe recipedomain.VideoRecipe
	err := db.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&recipe).Error
	if err != nil {
		return nil, err
	}
	if recipe.ID == 0 {
		return nil, nil
	}
	return &recipe, nil
}

func (r *repo) FindBySlug(ctx context.Context, db *gorm.DB, slug string) (*recipedomain.VideoRecipe, error) {
	var recipe recipedomain.VideoRecipe
	err := db.WithContext(ctx).Where("slug = ?", strings.TrimSpace(slug)).Limit(1).Find(&recipe).Error
	if err != nil {
		return nil, err
	}
	if recipe.ID == 0 {
		return nil, nil
	}
	return &recipe, nil
}

func (r *repo) ListBundles(ctx context.Context, db *gorm.DB) ([]recipedomain.Bundle, error) {
	var items []recipedomain.Bundle
	err := db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("sort_order ASC, name ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ListBundleItems(ctx context.Context, db *gorm.DB, bundleID snowflake.ID) ([]recipedomain.BundleItem, error) {
	var items []recipedomain.BundleItem
	err := db.WithContext(ctx).
		Where("bundle_id = ?", bundleID).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
