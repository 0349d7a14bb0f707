package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	branddomain "github.com/reelforge/reelforge/internal/brand/domain"
	"github.com/reelforge/reelforge/pkg/db"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() branddomain.Repository {
	return &repo{}
}

func (r *repo) InsertBrand(ctx context.Context, conn *gorm.DB, b *branddomain.Brand) error {
	return conn.WithContext(ctx).Create(b).Error
}

func (r *repo) FindBrand(ctx context.Context, conn *gorm.DB, id snowflake.ID) (*branddomain.Brand, error) {
	var brand branddomain.Brand
	err := conn.WithContext(ctx).Raw(
		`SELECT id, user_id, name, created_at FROM brands WHERE id = ?`, id,
	).Scan(&brand).Error
	if err != nil {
		return nil, err
	}
	if brand.ID == 0 {
		return nil, nil
	}
	return &brand, nil
}

func (r *repo) FindLedger(ctx context.Context, conn *gorm.DB, brandID snowflake.ID) (*branddomain.VolumeLedger, error) {
	var ledger branddomain.VolumeLedger
	err := conn.WithContext(ctx).Raw(
		`SELECT brand_id, lifetime_video_count, approved_video_count, current_discount_percent,
		 lifetime_spent_cents, lifetime_saved_cents, updated_at
		 FROM volume_ledgers WHERE brand_id = ?`, brandID,
	).Scan(&ledger).Error
	if err != nil {
		return nil, err
	}
	if ledger.BrandID == 0 {
		return nil, nil
	}
	return &ledger, nil
}

func (r *repo) EnsureLedger(ctx context.Context, conn *gorm.DB, brandID snowflake.ID) error {
	err := conn.WithContext(ctx).Exec(
		`INSERT INTO volume_ledgers (brand_id, updated_at) VALUES (?, ?)`,
		brandID, time.Now().UTC(),
	).Error
	if err != nil && db.IsDuplicateKeyErr(err) {
		return nil
	}
	return err
}

func (r *repo) ApplyCheckout(ctx context.Context, conn *gorm.DB, brandID snowflake.ID, videoCount int, spentCents, savedCents int64) error {
	return conn.WithContext(ctx).Exec(
		`UPDATE volume_ledgers SET
			lifetime_video_count = lifetime_video_count + ?,
			lifetime_spent_cents = lifetime_spent_cents + ?,
			lifetime_saved_cents = lifetime_saved_cents + ?,
			updated_at = ?
		 WHERE brand_id = ?`,
		videoCount, spentCents, savedCents,
		time.Now().UTC(), brandID,
	).Error
}

func (r *repo) RaiseDiscountPercent(ctx context.Context, conn *gorm.DB, brandID snowflake.ID, discountPct int) error {
	// CASE instead of GREATEST keeps the guard portable across postgres
	// and the sqlite used in tests.
	return conn.WithContext(ctx).Exec(
		`UPDATE volume_ledgers SET
			current_discount_percent = CASE WHEN current_discount_percent >= ? THEN current_discount_percent ELSE ? END,
			updated_at = ?
		 WHERE brand_id = ?`,
		discountPct, discountPct,
		time.Now().UTC(), brandID,
	).Error
}

func (r *repo) AdvanceApproval(ctx context.Context, conn *gorm.DB, brandID snowflake.ID, approvedCount, discountPct int) error {
	return conn.WithContext(ctx).Exec(
		`UPDATE volume_ledgers SET
			approved_video_count = CASE WHEN approved_video_count >= ? THEN approved_video_count ELSE ? END,
			current_discount_percent = CASE WHEN current_discount_percent >= ? THEN current_discount_percent ELSE ? END,
			updated_at = ?
		 WHERE brand_id = ?`,
		approvedCount, approvedCount,
		discountPct, discountPct,
		time.Now().UTC(), brandID,
	).Error
}
