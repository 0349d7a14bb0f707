package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	branddomain "github.com/reelforge/reelforge/internal/brand/domain"
	brandrepo "github.com/reelforge/reelforge/internal/brand/repository"
	brandsvc "github.com/reelforge/reelforge/internal/brand/service"
	cartdomain "github.com/reelforge/reelforge/internal/cart/domain"
	cartrepo "github.com/reelforge/reelforge/internal/cart/repository"
	catalogdomain "github.com/reelforge/reelforge/internal/catalog/domain"
	catalogrepo "github.com/reelforge/reelforge/internal/catalog/repository"
	catalogsvc "github.com/reelforge/reelforge/internal/catalog/service"
	"github.com/reelforge/reelforge/internal/config"
	recipedomain "github.com/reelforge/reelforge/internal/recipe/domain"
	reciperepo "github.com/reelforge/reelforge/internal/recipe/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type fixture struct {
	db      *gorm.DB
	node    *snowflake.Node
	svc     cartdomain.Service
	brands  branddomain.Repository
	brandID snowflake.ID
	recipes map[string]snowflake.ID
}

func setup(t *testing.T) *fixture {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&catalogdomain.Milestone{},
		&catalogdomain.DiscountTier{},
		&branddomain.Brand{},
		&branddomain.VolumeLedger{},
		&recipedomain.VideoRecipe{},
		&cartdomain.CartItem{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	ctx := context.Background()

	cRepo := catalogrepo.Provide()
	for threshold, pct := range map[int]int{3: 10, 8: 15, 12: 20} {
		require.NoError(t, cRepo.InsertDiscountTier(ctx, conn, &catalogdomain.DiscountTier{
			ID:              node.Generate(),
			MinVideoCount:   threshold,
			DiscountPercent: pct,
		}))
	}
	require.NoError(t, cRepo.InsertMilestone(ctx, conn, &catalogdomain.Milestone{
		ID:        node.Generate(),
		MinVideos: 0,
		TierName:  "New",
	}))
	require.NoError(t, cRepo.InsertMilestone(ctx, conn, &catalogdomain.Milestone{
		ID:                  node.Generate(),
		MinVideos:           8,
		TierName:            "Silver",
		DiscountPercent:     15,
		MaxDurationSeconds:  60,
		DualFormatFree:      true,
		UnlockedRecipeSlugs: datatypes.NewJSONSlice([]string{"brand-film"}),
	}))

	recipes := map[string]snowflake.ID{}
	for _, r := range []struct {
		slug   string
		name   string
		price  int64
		active bool
	}{
		{"ugc-hook-pack", "UGC Hook Pack", 15000, true},
		{"product-demo", "Product Demo", 9500, true},
		{"brand-film", "Brand Film", 45000, true},
		{"retired-cut", "Retired Cut", 5000, false},
	} {
		id := node.Generate()
		recipes[r.slug] = id
		require.NoError(t, conn.Create(&recipedomain.VideoRecipe{
			ID:         id,
			Slug:       r.slug,
			Name:       r.name,
			PriceCents: r.price,
			IsActive:   r.active,
		}).Error)
		// The model's gorm default:true tag makes Create ignore a false
		// IsActive, so persist the flag explicitly for inactive rows.
		if !r.active {
			require.NoError(t, conn.Model(&recipedomain.VideoRecipe{}).
				Where("id = ?", id).Update("is_active", false).Error)
		}
	}

	catalog := catalogsvc.New(catalogsvc.Params{
		DB:    conn,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  cRepo,
	})
	bRepo := brandrepo.Provide()
	brands := brandsvc.New(brandsvc.Params{
		DB:      conn,
		Log:     zap.NewNop(),
		GenID:   node,
		Repo:    bRepo,
		Catalog: catalog,
	})

	brandID := node.Generate()
	require.NoError(t, bRepo.InsertBrand(ctx, conn, &branddomain.Brand{ID: brandID, UserID: "user-1", Name: "Acme Clips"}))
	require.NoError(t, bRepo.EnsureLedger(ctx, conn, brandID))

	svc := New(Params{
		DB:         conn,
		Log:        zap.NewNop(),
		GenID:      node,
		Repo:       cartrepo.Provide(),
		RecipeRepo: reciperepo.Provide(),
		Catalog:    catalog,
		Brands:     brands,
		Pricing:    config.NewStaticPricingConfigHolder(config.DefaultPricingConfig()),
	})

	return &fixture{
		db:      conn,
		node:    node,
		svc:     svc,
		brands:  bRepo,
		brandID: brandID,
		recipes: recipes,
	}
}

func (f *fixture) add(t *testing.T, slug string, req cartdomain.AddItemRequest) *cartdomain.CartItem {
	t.Helper()
	req.RecipeID = f.recipes[slug].String()
	item, err := f.svc.Add(context.Background(), f.brandID.String(), "user-1", req)
	require.NoError(t, err)
	return item
}

func TestAddDefaultsPlatformAndAspect(t *testing.T) {
	f := setup(t)

	item := f.add(t, "ugc-hook-pack", cartdomain.AddItemRequest{Notes: "punchy opener"})
	assert.Equal(t, "instagram_reels", item.PrimaryPlatform)
	assert.Equal(t, "9:16", item.PrimaryAspectRatio)

	items, err := f.svc.List(context.Background(), f.brandID.String())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "punchy opener", items[0].Notes)
}

func TestAddRejectsInactiveRecipe(t *testing.T) {
	f := setup(t)

	_, err := f.svc.Add(context.Background(), f.brandID.String(), "user-1", cartdomain.AddItemRequest{
		RecipeID: f.recipes["retired-cut"].String(),
	})
	assert.ErrorIs(t, err, cartdomain.ErrInvalidRecipe)
}

func TestAddBlocksGatedRecipeUntilApproved(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.Add(ctx, f.brandID.String(), "user-1", cartdomain.AddItemRequest{
		RecipeID: f.recipes["brand-film"].String(),
	})
	assert.ErrorIs(t, err, cartdomain.ErrRecipeLocked)

	// Recipes no rung gates stay purchasable at any approved count.
	f.add(t, "ugc-hook-pack", cartdomain.AddItemRequest{})

	require.NoError(t, f.brands.AdvanceApproval(ctx, f.db, f.brandID, 8, 15))
	f.add(t, "brand-film", cartdomain.AddItemRequest{})
}

func TestQuoteAppliesLifetimeTierAcrossCart(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	// Two prior videos: both cart slots price as the 3rd and 4th lifetime
	// video and land in the 10% tier.
	require.NoError(t, f.brands.ApplyCheckout(ctx, f.db, f.brandID, 2, 20000, 0))
	f.add(t, "ugc-hook-pack", cartdomain.AddItemRequest{})
	f.add(t, "product-demo", cartdomain.AddItemRequest{})

	quote, err := f.svc.Quote(ctx, f.brandID.String())
	require.NoError(t, err)
	require.Len(t, quote.Items, 2)

	bySlug := map[string]cartdomain.QuotedItem{}
	for _, q := range quote.Items {
		bySlug[q.RecipeSlug] = q
	}
	assert.Equal(t, 10, bySlug["ugc-hook-pack"].DiscountPercent)
	assert.Equal(t, int64(1500), bySlug["ugc-hook-pack"].DiscountCents)
	assert.Equal(t, int64(13500), bySlug["ugc-hook-pack"].TotalChargedCents)
	assert.Equal(t, 10, bySlug["product-demo"].DiscountPercent)
	assert.Equal(t, int64(950), bySlug["product-demo"].DiscountCents)
	assert.Equal(t, int64(8550), bySlug["product-demo"].TotalChargedCents)

	assert.Equal(t, int64(24500), quote.Totals.ListCents)
	assert.Equal(t, int64(2450), quote.Totals.DiscountCents)
	assert.Equal(t, int64(22050), quote.Totals.ChargedCents)
}

func TestQuoteSurchargeForAdditionalFormat(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	f.add(t, "product-demo", cartdomain.AddItemRequest{
		NeedsAdditionalFormat: true,
		AdditionalAspectRatio: "16:9",
	})

	quote, err := f.svc.Quote(ctx, f.brandID.String())
	require.NoError(t, err)
	require.Len(t, quote.Items, 1)
	assert.Equal(t, int64(2000), quote.Items[0].SurchargeCents)
	assert.Equal(t, int64(0), quote.Items[0].DiscountCents)
	assert.Equal(t, int64(11500), quote.Items[0].TotalChargedCents)

	// The Silver rung waives the fee once approvals reach it.
	require.NoError(t, f.brands.AdvanceApproval(ctx, f.db, f.brandID, 8, 15))
	quote, err = f.svc.Quote(ctx, f.brandID.String())
	require.NoError(t, err)
	assert.Equal(t, int64(0), quote.Items[0].SurchargeCents)
	assert.Equal(t, int64(9500), quote.Items[0].TotalChargedCents)
}

func TestQuoteEmptyCart(t *testing.T) {
	f := setup(t)

	quote, err := f.svc.Quote(context.Background(), f.brandID.String())
	require.NoError(t, err)
	assert.Empty(t, quote.Items)
	assert.Equal(t, int64(0), quote.Totals.ChargedCents)
}

func TestUpdateAndRemoveItem(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	item := f.add(t, "ugc-hook-pack", cartdomain.AddItemRequest{})

	notes := "cut to the beat"
	updated, err := f.svc.Update(ctx, f.brandID.String(), item.ID.String(), cartdomain.UpdateItemRequest{Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, notes, updated.Notes)

	_, err = f.svc.Update(ctx, f.brandID.String(), f.node.Generate().String(), cartdomain.UpdateItemRequest{Notes: &notes})
	assert.ErrorIs(t, err, cartdomain.ErrItemNotFound)

	require.NoError(t, f.svc.Remove(ctx, f.brandID.String(), item.ID.String()))
	items, err := f.svc.List(ctx, f.brandID.String())
	require.NoError(t, err)
	assert.Empty(t, items)
}
