package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Order is one produced video. Pricing fields are frozen at checkout
// materialization and never recomputed afterwards.
type Order struct {
	ID          snowflake.ID `json:"id" gorm:"primaryKey"`
	OrderNumber string       `json:"order_number" gorm:"type:text;not null;uniqueIndex"`
	BrandID     snowflake.ID `json:"brand_id" gorm:"not null;index"`
	UserID      string       `json:"user_id" gorm:"type:text;not null"`
	RecipeID    snowflake.ID `json:"recipe_id" gorm:"not null"`
	RecipeSlug  string       `json:"recipe_slug" gorm:"type:text;not null"`
	RecipeName  string       `json:"recipe_name" gorm:"type:text;not null"`
	Status      Status       `json:"status" gorm:"type:text;not null;default:'needs_brief'"`

	CheckoutSessionID string `json:"checkout_session_id" gorm:"type:text;not null;index:idx_orders_session"`
	PaymentReference  string `json:"payment_reference" gorm:"type:text;not null;default:''"`
	Provider          string `json:"provider" gorm:"type:text;not null;default:''"`

	ListPriceCents    int64 `json:"list_price_cents" gorm:"not null"`
	DiscountPercent   int   `json:"discount_percent" gorm:"not null;default:0"`
	DiscountCents     int64 `json:"discount_cents" gorm:"not null;default:0"`
	SurchargeCents    int64 `json:"surcharge_cents" gorm:"not null;default:0"`
	TotalChargedCents int64 `json:"total_charged_cents" gorm:"not null"`

	IntakeResponses       datatypes.JSONMap `json:"intake_responses" gorm:"type:jsonb"`
	Notes                 string            `json:"notes" gorm:"type:text;not null;default:''"`
	FootageFolderURL      string            `json:"footage_folder_url" gorm:"type:text;not null;default:''"`
	PrimaryPlatform       string            `json:"primary_platform" gorm:"type:text;not null;default:'instagram_reels'"`
	PrimaryAspectRatio    string            `json:"primary_aspect_ratio" gorm:"type:text;not null;default:'9:16'"`
	NeedsAdditionalFormat bool              `json:"needs_additional_format" gorm:"not null;default:false"`
	AdditionalAspectRatio string            `json:"additional_aspect_ratio" gorm:"type:text;not null;default:''"`

	CreatedAt time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Order) TableName() string { return "orders" }

// Status is the production pipeline state of an order.
type Status string

const (
	StatusNeedsBrief       Status = "needs_brief"
	StatusSubmitted        Status = "submitted"
	StatusAwaitingAssets   Status = "awaiting_assets"
	StatusInProduction     Status = "in_production"
	StatusAwaitingFeedback Status = "awaiting_feedback"
	StatusCompleted        Status = "completed"
	StatusCancelled        Status = "cancelled"
)

var transitions = map[Status][]Status{
	StatusNeedsBrief:       {StatusSubmitted, StatusCancelled},
	StatusSubmitted:        {StatusAwaitingAssets, StatusInProduction, StatusCancelled},
	StatusAwaitingAssets:   {StatusInProduction, StatusCancelled},
	StatusInProduction:     {StatusAwaitingFeedback, StatusCancelled},
	StatusAwaitingFeedback: {StatusCompleted, StatusInProduction},
}

// CanTransition reports whether the pipeline allows moving from one status
// to another. Completed and cancelled are terminal.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func ValidStatus(s Status) bool {
	switch s {
	case StatusNeedsBrief, StatusSubmitted, StatusAwaitingAssets,
		StatusInProduction, StatusAwaitingFeedback, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

var (
	ErrNotFound          = errors.New("order_not_found")
	ErrInvalidBrand      = errors.New("invalid_brand")
	ErrInvalidOrder      = errors.New("invalid_order")
	ErrInvalidStatus     = errors.New("invalid_status")
	ErrInvalidTransition = errors.New("invalid_transition")
	ErrMissingBrief      = errors.New("missing_brief")
	ErrAlreadyProcessed  = errors.New("already_processed")
)
