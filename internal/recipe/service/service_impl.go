package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	branddomain "github.com/reelforge/reelforge/internal/brand/domain"
	catalogdomain "github.com/reelforge/reelforge/internal/catalog/domain"
	"github.com/reelforge/reelforge/internal/pricing"
	recipedomain "github.com/reelforge/reelforge/internal/recipe/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Repo    recipedomain.Repository
	Catalog catalogdomain.Service
	Brands  branddomain.Service
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	repo    recipedomain.Repository
	catalog catalogdomain.Service
	brands  branddomain.Service
}

func New(p Params) recipedomain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("recipe.service"),
		repo:    p.Repo,
		catalog: p.Catalog,
		brands:  p.Brands,
	}
}

func (s *Service) List(ctx context.Context) ([]recipedomain.VideoRecipe, error) {
	return s.repo.ListActive(ctx, s.db)
}

func (s *Service) Get(ctx context.Context, idOrSlug string) (*recipedomain.VideoRecipe, error) {
	idOrSlug = strings.TrimSpace(idOrSlug)
	if idOrSlug == "" {
		return nil, recipedomain.ErrInvalidRecipe
	}

	if id, err := snowflake.ParseString(idOrSlug); err == nil {
		recipe, err := s.repo.FindByID(ctx, s.db, id)
		if err != nil {
			return nil, err
		}
		if recipe != nil {
			return recipe, nil
		}
	}

	recipe, err := s.repo.FindBySlug(ctx, s.db, idOrSlug)
	if err != nil {
		return nil, err
	}
	if recipe == nil {
		return nil, recipedomain.ErrNotFound
	}
	return recipe, nil
}

func (s *Service) ListBundles(ctx context.Context, brandID string) ([]recipedomain.BundleQuote, error) {
	bundles, err := s.repo.ListBundles(ctx, s.db)
	if err != nil {
		return nil, err
	}

	brandDiscount := 0
	if strings.TrimSpace(brandID) != "" {
		ledger, err := s.brands.GetLedger(ctx, brandID)
		if err == nil {
			brandDiscount = ledger.CurrentDiscountPercent
		} else {
			s.log.Warn("ledger lookup failed, pricing bundles at list", zap.Error(err))
		}
	}

	tiers, err := s.catalog.ListDiscountTiers(ctx)
	if err != nil {
		s.log.Warn("discount tiers unavailable, pricing bundles at brand discount only", zap.Error(err))
		tiers = nil
	}

	quotes := make([]recipedomain.BundleQuote, 0, len(bundles))
	for i := range bundles {
		quote, err := s.quoteBundle(ctx, bundles[i], brandDiscount, tiers)
		if err != nil {
			return nil, err
		}
		quotes = append(quotes, *quote)
	}
	return quotes, nil
}

func (s *Service) quoteBundle(ctx context.Context, bundle recipedomain.Bundle, brandDiscount int, tiers []catalogdomain.DiscountTier) (*recipedomain.BundleQuote, error) {
	items, err := s.repo.ListBundleItems(ctx, s.db, bundle.ID)
	if err != nil {
		return nil, err
	}

	quote := recipedomain.BundleQuote{Bundle: bundle, Recipes: []recipedomain.VideoRecipe{}}
	for _, item := range items {
		recipe, err := s.repo.FindByID(ctx, s.db, item.RecipeID)
		if err != nil {
			return nil, err
		}
		if recipe == nil {
			continue
		}
		quote.Recipes = append(quote.Recipes, *recipe)
		quote.VideoCount += item.Quantity
		quote.ListPriceCents += recipe.PriceCents * int64(item.Quantity)
	}

	// Best of the brand's earned discount and the discount a cart of this
	// size would reach on its own.
	pct := pricing.DiscountPercentFor(quote.VideoCount, tiers)
	if brandDiscount > pct {
		pct = brandDiscount
	}
	quote.DiscountPercent = pct
	quote.DiscountedPriceCents = quote.ListPriceCents - (quote.ListPriceCents*int64(pct)+50)/100

	return &quote, nil
}
