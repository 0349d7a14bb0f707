package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// CartItem is an ephemeral pre-payment line. Rows are deleted by checkout
// materialization and never mutated once an order exists for them.
type CartItem struct {
	ID                    snowflake.ID      `json:"id" gorm:"primaryKey"`
	BrandID               snowflake.ID      `json:"brand_id" gorm:"not null;index"`
	UserID                string            `json:"user_id" gorm:"type:text;not null"`
	RecipeID              snowflake.ID      `json:"recipe_id" gorm:"not null"`
	IntakeResponses       datatypes.JSONMap `json:"intake_responses" gorm:"type:jsonb"`
	Notes                 string            `json:"notes" gorm:"type:text;not null;default:''"`
	FootageFolderURL      string            `json:"footage_folder_url" gorm:"type:text;not null;default:''"`
	PrimaryPlatform       string            `json:"primary_platform" gorm:"type:text;not null;default:instagram_reels"`
	PrimaryAspectRatio    string            `json:"primary_aspect_ratio" gorm:"type:text;not null;default:9:16"`
	NeedsAdditionalFormat bool              `json:"needs_additional_format" gorm:"not null;default:false"`
	AdditionalAspectRatio string            `json:"additional_aspect_ratio" gorm:"type:text;not null;default:''"`
	CreatedAt             time.Time         `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt             time.Time         `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (CartItem) TableName() string { return "cart_items" }
