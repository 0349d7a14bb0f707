package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// VideoRecipe is a purchasable editing service offering.
type VideoRecipe struct {
	ID               snowflake.ID   `json:"id" gorm:"primaryKey"`
	Slug             string         `json:"slug" gorm:"type:text;not null;uniqueIndex"`
	Name             string         `json:"name" gorm:"type:text;not null"`
	Description      string         `json:"description" gorm:"type:text;not null;default:''"`
	Complexity       string         `json:"complexity" gorm:"type:text;not null;default:standard"`
	PriceCents       int64          `json:"price_cents" gorm:"not null"`
	TurnaroundDays   int            `json:"turnaround_days" gorm:"not null;default:0"`
	MaxOutputSeconds int            `json:"max_output_seconds" gorm:"not null;default:0"`
	IntakeFormSchema datatypes.JSON `json:"intake_form_schema" gorm:"type:jsonb"`
	Deliverables     datatypes.JSON `json:"deliverables" gorm:"type:jsonb"`
	ExampleVideoURL  string         `json:"example_video_url" gorm:"type:text;not null;default:''"`
	IsActive         bool           `json:"is_active" gorm:"not null;default:true"`
	SortOrder        int            `json:"sort_order" gorm:"not null;default:0"`
	CreatedAt        time.Time      `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (VideoRecipe) TableName() string { return "video_recipes" }

// Bundle is a named pack of recipes sold together.
type Bundle struct {
	ID          snowflake.ID `json:"id" gorm:"primaryKey"`
	Slug        string       `json:"slug" gorm:"type:text;not null;uniqueIndex"`
	Name        string       `json:"name" gorm:"type:text;not null"`
	Description string       `json:"description" gorm:"type:text;not null;default:''"`
	IsActive    bool         `json:"is_active" gorm:"not null;default:true"`
	SortOrder   int          `json:"sort_order" gorm:"not null;default:0"`
	CreatedAt   time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Bundle) TableName() string { return "bundles" }

type BundleItem struct {
	ID       snowflake.ID `json:"id" gorm:"primaryKey"`
	BundleID snowflake.ID `json:"bundle_id" gorm:"not null;index"`
	RecipeID snowflake.ID `json:"recipe_id" gorm:"not null"`
	Quantity int          `json:"quantity" gorm:"not null;default:1"`
}

func (BundleItem) TableName() string { return "bundle_items" }
