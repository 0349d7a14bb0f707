package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/reelforge/reelforge/internal/order/domain"
	"github.com/reelforge/reelforge/pkg/db/pagination"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertOrders(ctx context.Context, db *gorm.DB, orders []*domain.Order) error {
	return db.WithContext(ctx).Create(orders).Error
}

func (r *repo) ExistsBySession(ctx context.Context, db *gorm.DB, sessionID string) (bool, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.Order{}).
		Where("checkout_session_id = ?", sessionID).
		Count(&count).Error
	return count > 0, err
}

func (r *repo) ListByBrand(ctx context.Context, db *gorm.DB, brandID snowflake.ID, page pagination.Pagination) ([]*domain.Order, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.Order{}).
		Where("brand_id = ?", brandID)

	if page.PageToken != "" {
		cursor, err := pagination.DecodeCursor(page.PageToken)
		if err != nil {
			return nil, domain.ErrInvalidOrder
		}
		createdAt, err := time.Parse(time.RFC3339Nano, cursor.CreatedAt)
		if err != nil {
			return nil, domain.ErrInvalidOrder
		}
		id, err := snowflake.ParseString(cursor.ID)
		if err != nil {
			return nil, domain.ErrInvalidOrder
		}
		stmt = stmt.Where("created_at < ? OR (created_at = ? AND id < ?)", createdAt, createdAt, id)
	}
	if page.PageSize > 0 {
		// One extra row so the caller can tell whether more pages exist.
		stmt = stmt.Limit(page.PageSize + 1)
	}

	var orders []*domain.Order
	err := stmt.
		Order("created_at DESC, id DESC").
		Find(&orders).Error
	return orders, err
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Order, error) {
	return r.findOne(ctx, db, "id = ?", id)
}

func (r *repo) FindForBrand(ctx context.Context, db *gorm.DB, brandID, id snowflake.ID) (*domain.Order, error) {
	return r.findOne(ctx, db, "brand_id = ? AND id = ?", brandID, id)
}

func (r *repo) findOne(ctx context.Context, db *gorm.DB, query string, args ...any) (*domain.Order, error) {
	var orders []domain.Order
	err := db.WithContext(ctx).Where(query, args...).Limit(1).Find(&orders).Error
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, nil
	}
	return &orders[0], nil
}

func (r *repo) Save(ctx context.Context, db *gorm.DB, order *domain.Order) error {
	return db.WithContext(ctx).Save(order).Error
}
