package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	InsertBrand(ctx context.Context, db *gorm.DB, b *Brand) error
	FindBrand(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Brand, error)
	FindLedger(ctx context.Context, db *gorm.DB, brandID snowflake.ID) (*VolumeLedger, error)
	EnsureLedger(ctx context.Context, db *gorm.DB, brandID snowflake.ID) error

	// ApplyCheckout advances the lifetime counters with database-level
	// increments so concurrent materializations for one brand cannot
	// interleave a read-then-write. Callers re-read the row afterwards,
	// inside the same transaction, to derive the discount percent from
	// the post-increment count.
	ApplyCheckout(ctx context.Context, db *gorm.DB, brandID snowflake.ID, videoCount int, spentCents, savedCents int64) error

	// RaiseDiscountPercent lifts current_discount_percent to the given
	// value, never lowering it.
	RaiseDiscountPercent(ctx context.Context, db *gorm.DB, brandID snowflake.ID, discountPct int) error

	// AdvanceApproval snaps approved_video_count up to the target rung.
	// Both fields are guarded so a stale approval never regresses them.
	AdvanceApproval(ctx context.Context, db *gorm.DB, brandID snowflake.ID, approvedCount, discountPct int) error
}
