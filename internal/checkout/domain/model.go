package domain

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// ItemSnapshot is the frozen per-item pricing embedded in the payment
// session at creation time. Materialization copies it verbatim; it is never
// recomputed at confirmation, so what the client approved is what is
// charged.
type ItemSnapshot struct {
	CartItemID            snowflake.ID   `json:"cart_item_id"`
	RecipeID              snowflake.ID   `json:"recipe_id"`
	RecipeSlug            string         `json:"recipe_slug"`
	RecipeName            string         `json:"recipe_name"`
	ListPriceCents        int64          `json:"list_price_cents"`
	DiscountPercent       int            `json:"discount_percent"`
	DiscountCents         int64          `json:"discount_cents"`
	SurchargeCents        int64          `json:"surcharge_cents"`
	TotalChargedCents     int64          `json:"total_charged_cents"`
	IntakeResponses       map[string]any `json:"intake_responses,omitempty"`
	Notes                 string         `json:"notes,omitempty"`
	FootageFolderURL      string         `json:"footage_folder_url,omitempty"`
	PrimaryPlatform       string         `json:"primary_platform"`
	PrimaryAspectRatio    string         `json:"primary_aspect_ratio"`
	NeedsAdditionalFormat bool           `json:"needs_additional_format"`
	AdditionalAspectRatio string         `json:"additional_aspect_ratio,omitempty"`
}

type SessionRequest struct {
	SuccessURL string `json:"success_url"`
	CancelURL  string `json:"cancel_url"`
}

type Session struct {
	ID       string `json:"id"`
	URL      string `json:"url"`
	Provider string `json:"provider"`
}

type CreateSessionParams struct {
	UserID     string
	BrandID    snowflake.ID
	Items      []ItemSnapshot
	TotalCents int64
	SuccessURL string
	CancelURL  string
}

// CompletedEvent is a payment-confirmed webhook normalized by a provider
// adapter.
type CompletedEvent struct {
	Provider         string
	ProviderEventID  string
	SessionID        string
	PaymentReference string
	UserID           string
	BrandID          snowflake.ID
	Items            []ItemSnapshot
	OccurredAt       time.Time
	RawPayload       []byte
}

// ProviderAdapter is one hosted-checkout integration.
type ProviderAdapter interface {
	Provider() string
	CreateSession(ctx context.Context, params CreateSessionParams) (*Session, error)
	Verify(ctx context.Context, payload []byte, headers http.Header) error
	ParseCompleted(ctx context.Context, payload []byte) (*CompletedEvent, error)
}

// WebhookEvent is the dedupe record for at-least-once webhook delivery.
type WebhookEvent struct {
	ID              snowflake.ID   `json:"id" gorm:"primaryKey"`
	Provider        string         `json:"provider" gorm:"type:text;not null;uniqueIndex:uq_webhook_events_provider_event"`
	ProviderEventID string         `json:"provider_event_id" gorm:"type:text;not null;uniqueIndex:uq_webhook_events_provider_event"`
	EventType       string         `json:"event_type" gorm:"type:text;not null;default:''"`
	Payload         datatypes.JSON `json:"payload" gorm:"type:jsonb"`
	ReceivedAt      time.Time      `json:"received_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	ProcessedAt     *time.Time     `json:"processed_at,omitempty"`
}

func (WebhookEvent) TableName() string { return "webhook_events" }

var (
	ErrEmptyCart             = errors.New("empty_cart")
	ErrInvalidBrand          = errors.New("invalid_brand")
	ErrInvalidUser           = errors.New("invalid_user")
	ErrProviderNotFound      = errors.New("provider_not_found")
	ErrProviderUnavailable   = errors.New("provider_unavailable")
	ErrInvalidSignature      = errors.New("invalid_signature")
	ErrInvalidPayload        = errors.New("invalid_payload")
	ErrInvalidEvent          = errors.New("invalid_event")
	ErrInvalidMetadata       = errors.New("invalid_metadata")
	ErrEventIgnored          = errors.New("event_ignored")
	ErrEventAlreadyProcessed = errors.New("event_already_processed")
)
