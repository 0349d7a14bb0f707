package domain

import (
	"context"
	"errors"

	"github.com/reelforge/reelforge/internal/pricing"
)

type Service interface {
	Add(ctx context.Context, brandID, userID string, req AddItemRequest) (*CartItem, error)
	Update(ctx context.Context, brandID, itemID string, req UpdateItemRequest) (*CartItem, error)
	Remove(ctx context.Context, brandID, itemID string) error
	Clear(ctx context.Context, brandID string) error
	List(ctx context.Context, brandID string) ([]CartItem, error)

	// Quote runs the display-mode allocator pass over the brand's cart.
	// Non-authoritative: checkout re-runs the same algorithm and persists
	// that result instead.
	Quote(ctx context.Context, brandID string) (*QuoteResponse, error)
}

type AddItemRequest struct {
	RecipeID              string         `json:"recipe_id"`
	IntakeResponses       map[string]any `json:"intake_responses"`
	Notes                 string         `json:"notes"`
	FootageFolderURL      string         `json:"footage_folder_url"`
	PrimaryPlatform       string         `json:"primary_platform"`
	PrimaryAspectRatio    string         `json:"primary_aspect_ratio"`
	NeedsAdditionalFormat bool           `json:"needs_additional_format"`
	AdditionalAspectRatio string         `json:"additional_aspect_ratio"`
}

type UpdateItemRequest struct {
	IntakeResponses       map[string]any `json:"intake_responses"`
	Notes                 *string        `json:"notes"`
	FootageFolderURL      *string        `json:"footage_folder_url"`
	PrimaryPlatform       *string        `json:"primary_platform"`
	PrimaryAspectRatio    *string        `json:"primary_aspect_ratio"`
	NeedsAdditionalFormat *bool          `json:"needs_additional_format"`
	AdditionalAspectRatio *string        `json:"additional_aspect_ratio"`
}

// QuotedItem joins a cart line with its allocator output and recipe display
// fields.
type QuotedItem struct {
	pricing.ItemQuote
	RecipeSlug string `json:"recipe_slug"`
	RecipeName string `json:"recipe_name"`
}

type QuoteResponse struct {
	Items  []QuotedItem   `json:"items"`
	Totals pricing.Totals `json:"totals"`
}

var (
	ErrInvalidBrand  = errors.New("invalid_brand")
	ErrInvalidItem   = errors.New("invalid_item")
	ErrInvalidRecipe = errors.New("invalid_recipe")
	ErrRecipeLocked  = errors.New("recipe_locked")
	ErrItemNotFound  = errors.New("cart_item_not_found")
	ErrEmptyCart     = errors.New("empty_cart")
)
