package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Brand struct {
	ID        snowflake.ID `json:"id" gorm:"primaryKey"`
	UserID    string       `json:"user_id" gorm:"type:text;not null;index"`
	Name      string       `json:"name" gorm:"type:text;not null"`
	CreatedAt time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Brand) TableName() string { return "brands" }

// VolumeLedger is the one mutable row per brand. lifetime counters advance
// at checkout, approved_video_count only on tier-upgrade approval, and none
// of them ever move backward.
type VolumeLedger struct {
	BrandID                snowflake.ID `json:"brand_id" gorm:"primaryKey"`
	LifetimeVideoCount     int          `json:"lifetime_video_count" gorm:"not null;default:0"`
	ApprovedVideoCount     int          `json:"approved_video_count" gorm:"not null;default:0"`
	CurrentDiscountPercent int          `json:"current_discount_percent" gorm:"not null;default:0"`
	LifetimeSpentCents     int64        `json:"lifetime_spent_cents" gorm:"not null;default:0"`
	LifetimeSavedCents     int64        `json:"lifetime_saved_cents" gorm:"not null;default:0"`
	UpdatedAt              time.Time    `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (VolumeLedger) TableName() string { return "volume_ledgers" }
