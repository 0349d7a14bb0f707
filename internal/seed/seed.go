// Package seed derives the dev/test schema from the domain models and loads
// the demo catalog: the milestone ladder, lifetime discount tiers and a
// starter recipe lineup.
package seed

import (
	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	branddomain "github.com/reelforge/reelforge/internal/brand/domain"
	cartdomain "github.com/reelforge/reelforge/internal/cart/domain"
	catalogdomain "github.com/reelforge/reelforge/internal/catalog/domain"
	checkoutdomain "github.com/reelforge/reelforge/internal/checkout/domain"
	orderdomain "github.com/reelforge/reelforge/internal/order/domain"
	recipedomain "github.com/reelforge/reelforge/internal/recipe/domain"
	upgradedomain "github.com/reelforge/reelforge/internal/upgrade/domain"
)

// AutoMigrate creates the full schema from the domain models. Production
// deployments run versioned SQL migrations instead.
func AutoMigrate(conn *gorm.DB) error {
	return conn.AutoMigrate(
		&catalogdomain.Milestone{},
		&catalogdomain.DiscountTier{},
		&recipedomain.VideoRecipe{},
		&recipedomain.Bundle{},
		&recipedomain.BundleItem{},
		&branddomain.Brand{},
		&branddomain.VolumeLedger{},
		&cartdomain.CartItem{},
		&upgradedomain.Request{},
		&orderdomain.Order{},
		&checkoutdomain.WebhookEvent{},
	)
}

// EnsureCatalog seeds the demo catalog. It is idempotent: a non-empty
// milestone table leaves everything untouched.
func EnsureCatalog(conn *gorm.DB) error {
	var count int64
	if err := conn.Model(&catalogdomain.Milestone{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	node, err := snowflake.NewNode(63)
	if err != nil {
		return err
	}

	return conn.Transaction(func(tx *gorm.DB) error {
		if err := seedMilestones(tx, node); err != nil {
			return err
		}
		if err := seedDiscountTiers(tx, node); err != nil {
			return err
		}
		return seedRecipes(tx, node)
	})
}

// Each rung repeats everything below it: the unlock calculator unions the
// sets anyway, but keeping rows self-contained means a single rung reads as
// the complete offer for that tier.
func seedMilestones(tx *gorm.DB, node *snowflake.Node) error {
	slugs := func(s ...string) datatypes.JSONSlice[string] { return datatypes.NewJSONSlice(s) }

	milestones := []catalogdomain.Milestone{
		{
			ID:                  node.Generate(),
			MinVideos:           0,
			TierName:            "New",
			DiscountPercent:     0,
			UnlockedRecipeSlugs: slugs("ugc-hook-pack", "product-demo"),
			UnlockedAddons:      slugs(),
			BundlesUnlocked:     slugs(),
			MaxDurationSeconds:  30,
			SupportLevel:        "chat",
			Perks: datatypes.NewJSONSlice([]catalogdomain.Perk{
				{Label: "Chat support", Icon: "chat", Category: "support"},
			}),
		},
		{
			ID:                  node.Generate(),
			MinVideos:           3,
			TierName:            "Bronze",
			DiscountPercent:     10,
			UnlockedRecipeSlugs: slugs("ugc-hook-pack", "product-demo", "founder-story"),
			UnlockedAddons:      slugs("subtitles-pack"),
			BundlesUnlocked:     slugs("launch-pack"),
			MaxDurationSeconds:  45,
			SupportLevel:        "chat",
			Perks: datatypes.NewJSONSlice([]catalogdomain.Perk{
				{Label: "10% loyalty discount", Icon: "percent", Category: "other"},
			}),
		},
		{
			ID:                  node.Generate(),
			MinVideos:           8,
			TierName:            "Silver",
			DiscountPercent:     15,
			UnlockedRecipeSlugs: slugs("ugc-hook-pack", "product-demo", "founder-story", "testimonial-cut"),
			UnlockedAddons:      slugs("subtitles-pack", "thumbnail-pack"),
			BundlesUnlocked:     slugs("launch-pack", "always-on-pack"),
			MaxDurationSeconds:  60,
			LandscapeUnlocked:   true,
			SupportLevel:        "priority",
			Perks: datatypes.NewJSONSlice([]catalogdomain.Perk{
				{Label: "Landscape formats", Icon: "monitor", Category: "recipes"},
				{Label: "Priority support", Icon: "bolt", Category: "support"},
			}),
		},
		{
			ID:                     node.Generate(),
			MinVideos:              12,
			TierName:               "Gold",
			DiscountPercent:        20,
			UnlockedRecipeSlugs:    slugs("ugc-hook-pack", "product-demo", "founder-story", "testimonial-cut", "brand-film"),
			UnlockedAddons:         slugs("subtitles-pack", "thumbnail-pack", "rush-delivery"),
			BundlesUnlocked:        slugs("launch-pack", "always-on-pack", "quarterly-pack"),
			MaxDurationSeconds:     90,
			LandscapeUnlocked:      true,
			DualFormatFree:         true,
			CustomRequestsUnlocked: true,
			SupportLevel:           "dedicated",
			Perks: datatypes.NewJSONSlice([]catalogdomain.Perk{
				{Label: "Free dual format", Icon: "layers", Category: "recipes"},
				{Label: "Custom requests", Icon: "sparkles", Category: "other"},
				{Label: "Dedicated producer", Icon: "user", Category: "support"},
			}),
		},
	}
	return tx.Create(&milestones).Error
}

func seedDiscountTiers(tx *gorm.DB, node *snowflake.Node) error {
	tiers := []catalogdomain.DiscountTier{
		{ID: node.Generate(), MinVideoCount: 3, DiscountPercent: 10},
		{ID: node.Generate(), MinVideoCount: 8, DiscountPercent: 15},
		{ID: node.Generate(), MinVideoCount: 12, DiscountPercent: 20},
	}
	return tx.Create(&tiers).Error
}

func seedRecipes(tx *gorm.DB, node *snowflake.Node) error {
	recipes := []recipedomain.VideoRecipe{
		{
			ID: node.Generate(), Slug: "ugc-hook-pack", Name: "UGC Hook Pack",
			Description: "Three hook variations cut from your raw footage.",
			Complexity:  "standard", PriceCents: 15000, TurnaroundDays: 3, MaxOutputSeconds: 30,
			IntakeFormSchema: datatypes.JSON(`{"fields":[{"name":"hook","type":"text","required":true}]}`),
			Deliverables:     datatypes.JSON(`["3x 9:16 mp4","srt captions"]`),
			SortOrder:        1,
		},
		{
			ID: node.Generate(), Slug: "product-demo", Name: "Product Demo",
			Description: "A clean walkthrough of one product or feature.",
			Complexity:  "standard", PriceCents: 9500, TurnaroundDays: 4, MaxOutputSeconds: 45,
			IntakeFormSchema: datatypes.JSON(`{"fields":[{"name":"product_url","type":"url","required":true}]}`),
			Deliverables:     datatypes.JSON(`["1x 9:16 mp4"]`),
			SortOrder:        2,
		},
		{
			ID: node.Generate(), Slug: "founder-story", Name: "Founder Story",
			Description: "An interview-style brand narrative.",
			Complexity:  "premium", PriceCents: 24000, TurnaroundDays: 6, MaxOutputSeconds: 60,
			IntakeFormSchema: datatypes.JSON(`{"fields":[{"name":"talking_points","type":"textarea","required":true}]}`),
			Deliverables:     datatypes.JSON(`["1x 9:16 mp4","1x 1:1 mp4"]`),
			SortOrder:        3,
		},
		{
			ID: node.Generate(), Slug: "testimonial-cut", Name: "Testimonial Cut",
			Description: "Customer quotes edited into a social proof reel.",
			Complexity:  "standard", PriceCents: 12000, TurnaroundDays: 4, MaxOutputSeconds: 45,
			Deliverables: datatypes.JSON(`["1x 9:16 mp4"]`),
			SortOrder:    4,
		},
		{
			ID: node.Generate(), Slug: "brand-film", Name: "Brand Film",
			Description: "A flagship piece for site and paid placements.",
			Complexity:  "premium", PriceCents: 45000, TurnaroundDays: 10, MaxOutputSeconds: 90,
			Deliverables: datatypes.JSON(`["1x 16:9 mp4","1x 9:16 cutdown"]`),
			SortOrder:    5,
		},
	}
	if err := tx.Create(&recipes).Error; err != nil {
		return err
	}

	recipeID := func(slug string) snowflake.ID {
		for _, r := range recipes {
			if r.Slug == slug {
				return r.ID
			}
		}
		return 0
	}

	bundles := []recipedomain.Bundle{
		{ID: node.Generate(), Slug: "launch-pack", Name: "Launch Pack",
			Description: "Everything a first campaign needs.", SortOrder: 1},
		{ID: node.Generate(), Slug: "always-on-pack", Name: "Always-On Pack",
			Description: "A month of steady social output.", SortOrder: 2},
		{ID: node.Generate(), Slug: "quarterly-pack", Name: "Quarterly Pack",
			Description: "A full quarter of content in one order.", SortOrder: 3},
	}
	if err := tx.Create(&bundles).Error; err != nil {
		return err
	}

	items := []recipedomain.BundleItem{
		{ID: node.Generate(), BundleID: bundles[0].ID, RecipeID: recipeID("ugc-hook-pack"), Quantity: 1},
		{ID: node.Generate(), BundleID: bundles[0].ID, RecipeID: recipeID("product-demo"), Quantity: 1},
		{ID: node.Generate(), BundleID: bundles[1].ID, RecipeID: recipeID("ugc-hook-pack"), Quantity: 2},
		{ID: node.Generate(), BundleID: bundles[1].ID, RecipeID: recipeID("testimonial-cut"), Quantity: 1},
		{ID: node.Generate(), BundleID: bundles[1].ID, RecipeID: recipeID("product-demo"), Quantity: 1},
		{ID: node.Generate(), BundleID: bundles[2].ID, RecipeID: recipeID("ugc-hook-pack"), Quantity: 4},
		{ID: node.Generate(), BundleID: bundles[2].ID, RecipeID: recipeID("founder-story"), Quantity: 1},
		{ID: node.Generate(), BundleID: bundles[2].ID, RecipeID: recipeID("testimonial-cut"), Quantity: 3},
		{ID: node.Generate(), BundleID: bundles[2].ID, RecipeID: recipeID("product-demo"), Quantity: 4},
	}
	return tx.Create(&items).Error
}
