package domain

import (
	"context"
	"errors"
)

type Service interface {
	List(ctx context.Context) ([]VideoRecipe, error)
	Get(ctx context.Context, idOrSlug string) (*VideoRecipe, error)
	// ListBundles prices each active bundle for the given brand: the
	// effective discount is the better of the brand's current discount and
	// the bundle-size discount from the tier table.
	ListBundles(ctx context.Context, brandID string) ([]BundleQuote, error)
}

// BundleQuote is a bundle with its effective pricing for one brand.
type BundleQuote struct {
	Bundle               Bundle        `json:"bundle"`
	Recipes              []VideoRecipe `json:"recipes"`
	VideoCount           int           `json:"video_count"`
	ListPriceCents       int64         `json:"list_price_cents"`
	DiscountPercent      int           `json:"discount_percent"`
	DiscountedPriceCents int64         `json:"discounted_price_cents"`
}

var (
	ErrInvalidRecipe = errors.New("invalid_recipe")
	ErrNotFound      = errors.New("recipe_not_found")
)
