package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Perk is an informational badge attached to a milestone.
type Perk struct {
	Label    string `json:"label"`
	Icon     string `json:"icon"`
	Category string `json:"category"` // support | recipes | other
}

// Milestone is one rung of the loyalty ladder. Pricing fields are immutable
// once published.
type Milestone struct {
	ID                     snowflake.ID                `json:"id" gorm:"primaryKey"`
	MinVideos              int                         `json:"min_videos" gorm:"not null;uniqueIndex"`
	TierName               string                      `json:"tier_name" gorm:"type:text;not null"`
	DiscountPercent        int                         `json:"discount_percent" gorm:"not null;default:0"`
	UnlockedRecipeSlugs    datatypes.JSONSlice[string] `json:"unlocked_recipe_slugs" gorm:"type:jsonb"`
	UnlockedAddons         datatypes.JSONSlice[string] `json:"unlocked_addons" gorm:"type:jsonb"`
	BundlesUnlocked        datatypes.JSONSlice[string] `json:"bundles_unlocked" gorm:"type:jsonb"`
	MaxDurationSeconds     int                         `json:"max_duration_seconds" gorm:"not null;default:0"`
	LandscapeUnlocked      bool                        `json:"landscape_unlocked" gorm:"not null;default:false"`
	DualFormatFree         bool                        `json:"dual_format_free" gorm:"not null;default:false"`
	CustomRequestsUnlocked bool                        `json:"custom_requests_unlocked" gorm:"not null;default:false"`
	SupportLevel           string                      `json:"support_level" gorm:"type:text;not null;default:chat"`
	Perks                  datatypes.JSONSlice[Perk]   `json:"perks" gorm:"type:jsonb"`
	CreatedAt              time.Time                   `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Milestone) TableName() string { return "milestones" }

// DiscountTier drives the lifetime spend-discount applied at checkout. It is
// a deliberately separate table from the milestone ladder: spend discounts
// key off lifetime_video_count while milestone perks key off
// approved_video_count.
type DiscountTier struct {
	ID              snowflake.ID `json:"id" gorm:"primaryKey"`
	MinVideoCount   int          `json:"min_video_count" gorm:"not null;uniqueIndex"`
	DiscountPercent int          `json:"discount_percent" gorm:"not null"`
	CreatedAt       time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (DiscountTier) TableName() string { return "discount_tiers" }
