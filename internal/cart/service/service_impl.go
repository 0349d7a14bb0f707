package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	branddomain "github.com/reelforge/reelforge/internal/brand/domain"
	cartdomain "github.com/reelforge/reelforge/internal/cart/domain"
	catalogdomain "github.com/reelforge/reelforge/internal/catalog/domain"
	"github.com/reelforge/reelforge/internal/config"
	"github.com/reelforge/reelforge/internal/pricing"
	recipedomain "github.com/reelforge/reelforge/internal/recipe/domain"
	"github.com/reelforge/reelforge/internal/unlock"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Repo       cartdomain.Repository
	RecipeRepo recipedomain.Repository
	Catalog    catalogdomain.Service
	Brands     branddomain.Service
	Pricing    *config.PricingConfigHolder
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	repo       cartdomain.Repository
	recipeRepo recipedomain.Repository
	catalog    catalogdomain.Service
	brands     branddomain.Service
	pricing    *config.PricingConfigHolder
}

func New(p Params) cartdomain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("cart.service"),
		genID:      p.GenID,
		repo:       p.Repo,
		recipeRepo: p.RecipeRepo,
		catalog:    p.Catalog,
		brands:     p.Brands,
		pricing:    p.Pricing,
	}
}

func (s *Service) Add(ctx context.Context, brandID, userID string, req cartdomain.AddItemRequest) (*cartdomain.CartItem, error) {
	bID, err := parseID(brandID)
	if err != nil {
		return nil, cartdomain.ErrInvalidBrand
	}
	recipeID, err := parseID(req.RecipeID)
	if err != nil {
		return nil, cartdomain.ErrInvalidRecipe
	}

	recipe, err := s.recipeRepo.FindByID(ctx, s.db, recipeID)
	if err != nil {
		return nil, err
	}
	if recipe == nil || !recipe.IsActive {
		return nil, cartdomain.ErrInvalidRecipe
	}

	if err := s.checkRecipeUnlocked(ctx, brandID, recipe.Slug); err != nil {
		return nil, err
	}

	platform := strings.TrimSpace(req.PrimaryPlatform)
	if platform == "" {
		platform = "instagram_reels"
	}
	aspect := strings.TrimSpace(req.PrimaryAspectRatio)
	if aspect == "" {
		aspect = "9:16"
	}

	now := time.Now().UTC()
	item := &cartdomain.CartItem{
		ID:                    s.genID.Generate(),
		BrandID:               bID,
		UserID:                strings.TrimSpace(userID),
		RecipeID:              recipeID,
		IntakeResponses:       datatypes.JSONMap(req.IntakeResponses),
		Notes:                 req.Notes,
		FootageFolderURL:      strings.TrimSpace(req.FootageFolderURL),
		PrimaryPlatform:       platform,
		PrimaryAspectRatio:    aspect,
		NeedsAdditionalFormat: req.NeedsAdditionalFormat,
		AdditionalAspectRatio: strings.TrimSpace(req.AdditionalAspectRatio),
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	if err := s.repo.Insert(ctx, s.db, item); err != nil {
		return nil, err
	}
	return item, nil
}

// checkRecipeUnlocked blocks recipes that some milestone gates and the brand
// has not reached yet. Recipes no rung mentions stay purchasable at list
// price, so an empty or broken ladder never blocks a basic purchase.
func (s *Service) checkRecipeUnlocked(ctx context.Context, brandID, slug string) error {
	ladder, err := s.catalog.ListMilestones(ctx)
	if err != nil || len(ladder) == 0 {
		return nil
	}
	gate := unlock.RecipeUnlockMilestone(slug, ladder)
	if gate == nil {
		return nil
	}

	state, err := s.brands.GetUnlockState(ctx, brandID)
	if err != nil {
		return nil
	}
	for _, unlocked := range state.UnlockedRecipeSlugs {
		if unlocked == slug {
			return nil
		}
	}
	return cartdomain.ErrRecipeLocked
}

func (s *Service) Update(ctx context.Context, brandID, itemID string, req cartdomain.UpdateItemRequest) (*cartdomain.CartItem, error) {
	bID, err := parseID(brandID)
	if err != nil {
		return nil, cartdomain.ErrInvalidBrand
	}
	id, err := parseID(itemID)
	if err != nil {
		return nil, cartdomain.ErrInvalidItem
	}

	item, err := s.repo.FindByID(ctx, s.db, bID, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, cartdomain.ErrItemNotFound
	}

	if req.IntakeResponses != nil {
		item.IntakeResponses = datatypes.JSONMap(req.IntakeResponses)
	}
	if req.Notes != nil {
		item.Notes = *req.Notes
	}
	if req.FootageFolderURL != nil {
		item.FootageFolderURL = strings.TrimSpace(*req.FootageFolderURL)
	}
	if req.PrimaryPlatform != nil {
		item.PrimaryPlatform = strings.TrimSpace(*req.PrimaryPlatform)
	}
	if req.PrimaryAspectRatio != nil {
		item.PrimaryAspectRatio = strings.TrimSpace(*req.PrimaryAspectRatio)
	}
	if req.NeedsAdditionalFormat != nil {
		item.NeedsAdditionalFormat = *req.NeedsAdditionalFormat
	}
	if req.AdditionalAspectRatio != nil {
		item.AdditionalAspectRatio = strings.TrimSpace(*req.AdditionalAspectRatio)
	}
	item.UpdatedAt = time.Now().UTC()

	if err := s.repo.Save(ctx, s.db, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *Service) Remove(ctx context.Context, brandID, itemID string) error {
	bID, err := parseID(brandID)
	if err != nil {
		return cartdomain.ErrInvalidBrand
	}
	id, err := parseID(itemID)
	if err != nil {
		return cartdomain.ErrInvalidItem
	}
	return s.repo.Delete(ctx, s.db, bID, id)
}

func (s *Service) Clear(ctx context.Context, brandID string) error {
	bID, err := parseID(brandID)
	if err != nil {
		return cartdomain.ErrInvalidBrand
	}
	return s.repo.DeleteByBrand(ctx, s.db, bID)
}

func (s *Service) List(ctx context.Context, brandID string) ([]cartdomain.CartItem, error) {
	bID, err := parseID(brandID)
	if err != nil {
		return nil, cartdomain.ErrInvalidBrand
	}
	return s.repo.ListByBrand(ctx, s.db, bID)
}

func (s *Service) Quote(ctx context.Context, brandID string) (*cartdomain.QuoteResponse, error) {
	items, err := s.List(ctx, brandID)
	if err != nil {
		return nil, err
	}

	ledger, err := s.brands.GetLedger(ctx, brandID)
	if err != nil {
		return nil, err
	}

	tiers, err := s.catalog.ListDiscountTiers(ctx)
	if err != nil {
		s.log.Warn("discount tiers unavailable, quoting at list price", zap.Error(err))
		tiers = nil
	}

	priced, names, err := s.priceItems(ctx, brandID, items)
	if err != nil {
		return nil, err
	}

	quotes := pricing.Allocate(priced, ledger.LifetimeVideoCount, tiers)
	resp := &cartdomain.QuoteResponse{Items: make([]cartdomain.QuotedItem, 0, len(quotes))}
	for i, q := range quotes {
		resp.Items = append(resp.Items, cartdomain.QuotedItem{
			ItemQuote:  q,
			RecipeSlug: names[i].slug,
			RecipeName: names[i].name,
		})
	}
	resp.Totals = pricing.SumQuotes(quotes)
	return resp, nil
}

type recipeRef struct {
	slug string
	name string
}

// priceItems resolves list prices and extras surcharges for the allocator.
// The additional-aspect-ratio fee applies unless the brand has earned free
// dual format.
func (s *Service) priceItems(ctx context.Context, brandID string, items []cartdomain.CartItem) ([]pricing.Item, []recipeRef, error) {
	dualFormatFree := false
	if state, err := s.brands.GetUnlockState(ctx, brandID); err == nil {
		dualFormatFree = state.DualFormatFree
	}
	surchargeCents := s.pricing.Get().BothAspectRatioSurchargeCents

	priced := make([]pricing.Item, 0, len(items))
	refs := make([]recipeRef, 0, len(items))
	for _, item := range items {
		recipe, err := s.recipeRepo.FindByID(ctx, s.db, item.RecipeID)
		if err != nil {
			return nil, nil, err
		}
		if recipe == nil {
			return nil, nil, cartdomain.ErrInvalidRecipe
		}

		var surcharge int64
		if item.NeedsAdditionalFormat && !dualFormatFree {
			surcharge = surchargeCents
		}
		priced = append(priced, pricing.Item{
			ID:             item.ID,
			RecipeID:       item.RecipeID,
			PriceCents:     recipe.PriceCents,
			SurchargeCents: surcharge,
		})
		refs = append(refs, recipeRef{slug: recipe.Slug, name: recipe.Name})
	}
	return priced, refs, nil
}

func parseID(value string) (snowflake.ID, error) {
	return snowflake.ParseString(strings.TrimSpace(value))
}
