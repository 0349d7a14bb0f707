package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	cartdomain "github.com/reelforge/reelforge/internal/cart/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() cartdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, item *cartdomain.CartItem) error {
	return db.WithContext(ctx).Create(item).Error
}

func (r *repo) Save(ctx context.Context, db *gorm.DB, item *cartdomain.CartItem) error {
	return db.WithContext(ctx).Save(item).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, brandID, id snowflake.ID) (*cartdomain.CartItem, error) {
	var item cartdomain.CartItem
	err := db.WithContext(ctx).
		Where("brand_id = ? AND id = ?", brandID, id).
		Limit(1).
		Find(&item).Error
	if err != nil {
		return nil, err
	}
	if item.ID == 0 {
		return nil, nil
	}
	return &item, nil
}

func (r *repo) ListByBrand(ctx context.Context, db *gorm.DB, brandID snowflake.ID) ([]cartdomain.CartItem, error) {
	var items []cartdomain.CartItem
	err := db.WithContext(ctx).
		Where("brand_id = ?", brandID).
		Order("created_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, brandID, id snowflake.ID) error {
	return db.WithContext(ctx).
		Where("brand_id = ? AND id = ?", brandID, id).
		Delete(&cartdomain.CartItem{}).Error
}

func (r *repo) DeleteByBrand(ctx context.Context, db *gorm.DB, brandID snowflake.ID) error {
	return db.WithContext(ctx).
		Where("brand_id = ?", brandID).
		Delete(&cartdomain.CartItem{}).Error
}
