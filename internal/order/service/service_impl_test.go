package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	branddomain "github.com/reelforge/reelforge/internal/brand/domain"
	brandrepo "github.com/reelforge/reelforge/internal/brand/repository"
	cartdomain "github.com/reelforge/reelforge/internal/cart/domain"
	cartrepo "github.com/reelforge/reelforge/internal/cart/repository"
	catalogdomain "github.com/reelforge/reelforge/internal/catalog/domain"
	catalogrepo "github.com/reelforge/reelforge/internal/catalog/repository"
	checkoutdomain "github.com/reelforge/reelforge/internal/checkout/domain"
	"github.com/reelforge/reelforge/internal/clock"
	"github.com/reelforge/reelforge/internal/order/domain"
	orderrepo "github.com/reelforge/reelforge/internal/order/repository"
	"github.com/reelforge/reelforge/pkg/db/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	db      *gorm.DB
	node    *snowflake.Node
	svc     domain.Service
	repo    domain.Repository
	brands  branddomain.Repository
	carts   cartdomain.Repository
	brandID snowflake.ID
}

func setup(t *testing.T) *fixture {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&catalogdomain.DiscountTier{},
		&branddomain.Brand{},
		&branddomain.VolumeLedger{},
		&cartdomain.CartItem{},
		&domain.Order{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	fc := clock.NewFakeClock(time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC))

	ctx := context.Background()
	cRepo := catalogrepo.Provide()
	for threshold, pct := range map[int]int{3: 10, 8: 15, 12: 20} {
		require.NoError(t, cRepo.InsertDiscountTier(ctx, conn, &catalogdomain.DiscountTier{
			ID:              node.Generate(),
			MinVideoCount:   threshold,
			DiscountPercent: pct,
		}))
	}

	bRepo := brandrepo.Provide()
	brandID := node.Generate()
	require.NoError(t, bRepo.InsertBrand(ctx, conn, &branddomain.Brand{ID: brandID, UserID: "user-1", Name: "Acme Clips"}))
	require.NoError(t, bRepo.EnsureLedger(ctx, conn, brandID))

	carts := cartrepo.Provide()
	repo := orderrepo.Provide()
	svc := New(Params{
		DB:          conn,
		Log:         zap.NewNop(),
		GenID:       node,
		Clock:       fc,
		Repo:        repo,
		CartRepo:    carts,
		BrandRepo:   bRepo,
		CatalogRepo: cRepo,
	})

	return &fixture{
		db:      conn,
		node:    node,
		svc:     svc,
		repo:    repo,
		brands:  bRepo,
		carts:   carts,
		brandID: brandID,
	}
}

func (f *fixture) completedEvent(t *testing.T, sessionID string, items ...checkoutdomain.ItemSnapshot) *checkoutdomain.CompletedEvent {
	t.Helper()
	return &checkoutdomain.CompletedEvent{
		Provider:         "stub",
		ProviderEventID:  "evt_" + sessionID,
		SessionID:        sessionID,
		PaymentReference: "pi_" + sessionID,
		UserID:           "user-1",
		BrandID:          f.brandID,
		Items:            items,
		OccurredAt:       time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC),
	}
}

func snapshot(node *snowflake.Node, price, discount, surcharge int64, pct int) checkoutdomain.ItemSnapshot {
	return checkoutdomain.ItemSnapshot{
		CartItemID:         node.Generate(),
		RecipeID:           node.Generate(),
		RecipeSlug:         "ugc-hook-pack",
		RecipeName:         "UGC Hook Pack",
		ListPriceCents:     price,
		DiscountPercent:    pct,
		DiscountCents:      discount,
		SurchargeCents:     surcharge,
		TotalChargedCents:  price - discount + surcharge,
		PrimaryPlatform:    "tiktok",
		PrimaryAspectRatio: "9:16",
	}
}

func TestMaterializeCreatesOrdersAndAdvancesLedger(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	require.NoError(t, f.carts.Insert(ctx, f.db, &cartdomain.CartItem{
		ID: f.node.Generate(), BrandID: f.brandID, UserID: "user-1", RecipeID: f.node.Generate(),
	}))

	event := f.completedEvent(t, "cs_1",
		snapshot(f.node, 15000, 1500, 0, 10),
		snapshot(f.node, 9500, 0, 2000, 0),
	)
	require.NoError(t, f.svc.Materialize(ctx, event))

	orders, err := f.repo.ListByBrand(ctx, f.db, f.brandID, pagination.Pagination{})
	require.NoError(t, err)
	require.Len(t, orders, 2)
	for _, o := range orders {
		assert.Equal(t, domain.StatusNeedsBrief, o.Status)
		assert.Equal(t, "cs_1", o.CheckoutSessionID)
		assert.Equal(t, "pi_cs_1", o.PaymentReference)
		assert.True(t, strings.HasPrefix(o.OrderNumber, "RF-"), o.OrderNumber)
	}

	items, err := f.carts.ListByBrand(ctx, f.db, f.brandID)
	require.NoError(t, err)
	assert.Empty(t, items, "materialization clears the cart")

	ledger, err := f.brands.FindLedger(ctx, f.db, f.brandID)
	require.NoError(t, err)
	assert.Equal(t, 2, ledger.LifetimeVideoCount)
	assert.Equal(t, int64(13500+11500), ledger.LifetimeSpentCents)
	assert.Equal(t, int64(1500), ledger.LifetimeSavedCents)
	assert.Equal(t, 0, ledger.CurrentDiscountPercent, "two videos stay under the first tier")
}

func TestMaterializeIsIdempotentPerSession(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	event := f.completedEvent(t, "cs_dup", snapshot(f.node, 15000, 0, 0, 0))
	require.NoError(t, f.svc.Materialize(ctx, event))

	err := f.svc.Materialize(ctx, event)
	assert.ErrorIs(t, err, domain.ErrAlreadyProcessed)

	orders, err := f.repo.ListByBrand(ctx, f.db, f.brandID, pagination.Pagination{})
	require.NoError(t, err)
	assert.Len(t, orders, 1)

	ledger, err := f.brands.FindLedger(ctx, f.db, f.brandID)
	require.NoError(t, err)
	assert.Equal(t, 1, ledger.LifetimeVideoCount)
	assert.Equal(t, int64(15000), ledger.LifetimeSpentCents)
}

func TestMaterializeRecomputesLifetimeDiscount(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	require.NoError(t, f.svc.Materialize(ctx, f.completedEvent(t, "cs_a",
		snapshot(f.node, 10000, 0, 0, 0),
		snapshot(f.node, 10000, 0, 0, 0),
	)))
	require.NoError(t, f.svc.Materialize(ctx, f.completedEvent(t, "cs_b",
		snapshot(f.node, 10000, 0, 0, 0),
	)))

	ledger, err := f.brands.FindLedger(ctx, f.db, f.brandID)
	require.NoError(t, err)
	assert.Equal(t, 3, ledger.LifetimeVideoCount)
	assert.Equal(t, 10, ledger.CurrentDiscountPercent, "third lifetime video reaches the 10% tier")
}

func TestCanTransitionTable(t *testing.T) {
	allowed := []struct{ from, to domain.Status }{
		{domain.StatusNeedsBrief, domain.StatusSubmitted},
		{domain.StatusNeedsBrief, domain.StatusCancelled},
		{domain.StatusSubmitted, domain.StatusAwaitingAssets},
		{domain.StatusSubmitted, domain.StatusInProduction},
		{domain.StatusSubmitted, domain.StatusCancelled},
		{domain.StatusAwaitingAssets, domain.StatusInProduction},
		{domain.StatusAwaitingAssets, domain.StatusCancelled},
		{domain.StatusInProduction, domain.StatusAwaitingFeedback},
		{domain.StatusInProduction, domain.StatusCancelled},
		{domain.StatusAwaitingFeedback, domain.StatusCompleted},
		{domain.StatusAwaitingFeedback, domain.StatusInProduction},
	}
	for _, tc := range allowed {
		assert.True(t, domain.CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}

	denied := []struct{ from, to domain.Status }{
		{domain.StatusNeedsBrief, domain.StatusInProduction},
		{domain.StatusNeedsBrief, domain.StatusCompleted},
		{domain.StatusAwaitingFeedback, domain.StatusCancelled},
		{domain.StatusCompleted, domain.StatusInProduction},
		{domain.StatusCancelled, domain.StatusNeedsBrief},
		{domain.StatusSubmitted, domain.StatusCompleted},
	}
	for _, tc := range denied {
		assert.False(t, domain.CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestSubmitBriefMovesOrderToSubmitted(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	require.NoError(t, f.svc.Materialize(ctx, f.completedEvent(t, "cs_brief", snapshot(f.node, 15000, 0, 0, 0))))
	orders, err := f.repo.ListByBrand(ctx, f.db, f.brandID, pagination.Pagination{})
	require.NoError(t, err)
	order := orders[0]

	_, err = f.svc.SubmitBrief(ctx, f.brandID.String(), order.ID.String(), domain.BriefRequest{})
	assert.ErrorIs(t, err, domain.ErrMissingBrief)

	updated, err := f.svc.SubmitBrief(ctx, f.brandID.String(), order.ID.String(), domain.BriefRequest{
		IntakeResponses: map[string]any{"hook": "before/after reveal"},
		Notes:           "logo in last frame",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSubmitted, updated.Status)
	assert.Equal(t, "logo in last frame", updated.Notes)

	_, err = f.svc.SubmitBrief(ctx, f.brandID.String(), order.ID.String(), domain.BriefRequest{
		IntakeResponses: map[string]any{"hook": "again"},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestApproveDeliveryRequiresAwaitingFeedback(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	require.NoError(t, f.svc.Materialize(ctx, f.completedEvent(t, "cs_approve", snapshot(f.node, 15000, 0, 0, 0))))
	orders, err := f.repo.ListByBrand(ctx, f.db, f.brandID, pagination.Pagination{})
	require.NoError(t, err)
	order := orders[0]

	_, err = f.svc.ApproveDelivery(ctx, f.brandID.String(), order.ID.String())
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	for _, to := range []domain.Status{domain.StatusSubmitted, domain.StatusInProduction, domain.StatusAwaitingFeedback} {
		_, err = f.svc.Transition(ctx, order.ID.String(), to)
		require.NoError(t, err)
	}

	approved, err := f.svc.ApproveDelivery(ctx, f.brandID.String(), order.ID.String())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, approved.Status)
}

func TestTransitionRejectsUnknownStatus(t *testing.T) {
	f := setup(t)

	_, err := f.svc.Transition(context.Background(), f.node.Generate().String(), domain.Status("shipped"))
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestListOrdersPaginates(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	require.NoError(t, f.svc.Materialize(ctx, f.completedEvent(t, "cs_page",
		snapshot(f.node, 10000, 0, 0, 0),
		snapshot(f.node, 11000, 0, 0, 0),
		snapshot(f.node, 12000, 0, 0, 0),
	)))

	first, err := f.svc.List(ctx, f.brandID.String(), domain.ListOrdersRequest{PageSize: 2})
	require.NoError(t, err)
	require.Len(t, first.Orders, 2)
	assert.True(t, first.HasMore)
	require.NotEmpty(t, first.NextPageToken)

	second, err := f.svc.List(ctx, f.brandID.String(), domain.ListOrdersRequest{
		PageSize:  2,
		PageToken: first.NextPageToken,
	})
	require.NoError(t, err)
	require.Len(t, second.Orders, 1)
	assert.False(t, second.HasMore)

	seen := map[snowflake.ID]bool{}
	for _, o := range append(first.Orders, second.Orders...) {
		assert.False(t, seen[o.ID], "page overlap at %s", o.ID)
		seen[o.ID] = true
	}
}
