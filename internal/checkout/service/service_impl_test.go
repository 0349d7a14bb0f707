package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	cartdomain "github.com/reelforge/reelforge/internal/cart/domain"
	"github.com/reelforge/reelforge/internal/checkout/adapters"
	"github.com/reelforge/reelforge/internal/checkout/adapters/stub"
	"github.com/reelforge/reelforge/internal/checkout/domain"
	checkoutrepo "github.com/reelforge/reelforge/internal/checkout/repository"
	"github.com/reelforge/reelforge/internal/clock"
	"github.com/reelforge/reelforge/internal/config"
	orderdomain "github.com/reelforge/reelforge/internal/order/domain"
	"github.com/reelforge/reelforge/internal/pricing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type cartStub struct {
	items []cartdomain.CartItem
	quote *cartdomain.QuoteResponse
}

func (c *cartStub) Add(context.Context, string, string, cartdomain.AddItemRequest) (*cartdomain.CartItem, error) {
	return nil, nil
}
func (c *cartStub) Update(context.Context, string, string, cartdomain.UpdateItemRequest) (*cartdomain.CartItem, error) {
	return nil, nil
}
func (c *cartStub) Remove(context.Context, string, string) error { return nil }
func (c *cartStub) Clear(context.Context, string) error          { return nil }
func (c *cartStub) List(context.Context, string) ([]cartdomain.CartItem, error) {
	return c.items, nil
}
func (c *cartStub) Quote(context.Context, string) (*cartdomain.QuoteResponse, error) {
	return c.quote, nil
}

type orderStub struct {
	materialized  []*domain.CompletedEvent
	knownSessions map[string]bool
}

func (o *orderStub) Materialize(_ context.Context, event *domain.CompletedEvent) error {
	if o.knownSessions == nil {
		o.knownSessions = map[string]bool{}
	}
	if o.knownSessions[event.SessionID] {
		return orderdomain.ErrAlreadyProcessed
	}
	o.knownSessions[event.SessionID] = true
	o.materialized = append(o.materialized, event)
	return nil
}
func (o *orderStub) List(context.Context, string, orderdomain.ListOrdersRequest) (orderdomain.ListOrdersResponse, error) {
	return orderdomain.ListOrdersResponse{}, nil
}
func (o *orderStub) Get(context.Context, string, string) (*orderdomain.Order, error) {
	return nil, nil
}
func (o *orderStub) SubmitBrief(context.Context, string, string, orderdomain.BriefRequest) (*orderdomain.Order, error) {
	return nil, nil
}
func (o *orderStub) ApproveDelivery(context.Context, string, string) (*orderdomain.Order, error) {
	return nil, nil
}
func (o *orderStub) Transition(context.Context, string, orderdomain.Status) (*orderdomain.Order, error) {
	return nil, nil
}

type fixture struct {
	svc     domain.Service
	adapter *stub.Adapter
	cart    *cartStub
	orders  *orderStub
	brandID snowflake.ID
}

func setup(t *testing.T) *fixture {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.WebhookEvent{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	brandID := node.Generate()

	itemID := node.Generate()
	recipeID := node.Generate()
	cart := &cartStub{
		items: []cartdomain.CartItem{{
			ID:                 itemID,
			BrandID:            brandID,
			UserID:             "user-1",
			RecipeID:           recipeID,
			Notes:              "logo in last frame",
			PrimaryPlatform:    "tiktok",
			PrimaryAspectRatio: "9:16",
		}},
		quote: &cartdomain.QuoteResponse{
			Items: []cartdomain.QuotedItem{{
				ItemQuote: pricing.ItemQuote{
					ItemID:            itemID,
					RecipeID:          recipeID,
					ListPriceCents:    15000,
					DiscountPercent:   10,
					DiscountCents:     1500,
					TotalChargedCents: 13500,
				},
				RecipeSlug: "ugc-hook-pack",
				RecipeName: "UGC Hook Pack",
			}},
			Totals: pricing.Totals{
				ListCents:     15000,
				DiscountCents: 1500,
				ChargedCents:  13500,
			},
		},
	}
	orders := &orderStub{}
	adapter := stub.New()

	svc := New(Params{
		DB:       conn,
		Log:      zap.NewNop(),
		GenID:    node,
		Clock:    clock.NewFakeClock(time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)),
		Config:   config.Config{CheckoutProvider: "stub"},
		Repo:     checkoutrepo.Provide(),
		Registry: adapters.NewRegistry(adapter),
		Cart:     cart,
		Orders:   orders,
	})

	return &fixture{svc: svc, adapter: adapter, cart: cart, orders: orders, brandID: brandID}
}

func TestCreateSessionRejectsEmptyCart(t *testing.T) {
	f := setup(t)
	f.cart.items = nil

	_, err := f.svc.CreateSession(context.Background(), "user-1", f.brandID.String(), domain.SessionRequest{})
	assert.ErrorIs(t, err, domain.ErrEmptyCart)
}

func TestCreateSessionRejectsUnknownProvider(t *testing.T) {
	f := setup(t)
	svc := f.svc.(*service)
	svc.provider = "nope"

	_, err := svc.CreateSession(context.Background(), "user-1", f.brandID.String(), domain.SessionRequest{})
	assert.ErrorIs(t, err, domain.ErrProviderNotFound)
}

func TestSessionMetadataMatchesQuote(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	session, err := f.svc.CreateSession(ctx, "user-1", f.brandID.String(), domain.SessionRequest{
		SuccessURL: "https://app.example/success",
		CancelURL:  "https://app.example/cancel",
	})
	require.NoError(t, err)
	assert.Equal(t, "stub", session.Provider)
	assert.NotEmpty(t, session.URL)

	// What the provider hands back at completion must be exactly what the
	// quote produced, brief fields included.
	payload, err := f.adapter.CompletionPayload(session.ID)
	require.NoError(t, err)
	event, err := f.adapter.ParseCompleted(ctx, payload)
	require.NoError(t, err)

	require.Len(t, event.Items, 1)
	got := event.Items[0]
	want := f.cart.quote.Items[0]
	assert.Equal(t, want.ItemID, got.CartItemID)
	assert.Equal(t, want.ListPriceCents, got.ListPriceCents)
	assert.Equal(t, want.DiscountPercent, got.DiscountPercent)
	assert.Equal(t, want.DiscountCents, got.DiscountCents)
	assert.Equal(t, want.TotalChargedCents, got.TotalChargedCents)
	assert.Equal(t, "logo in last frame", got.Notes)
	assert.Equal(t, f.brandID, event.BrandID)
}

func TestHandleWebhookMaterializesOnce(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	session, err := f.svc.CreateSession(ctx, "user-1", f.brandID.String(), domain.SessionRequest{})
	require.NoError(t, err)
	payload, err := f.adapter.CompletionPayload(session.ID)
	require.NoError(t, err)

	require.NoError(t, f.svc.HandleWebhook(ctx, "stub", payload, http.Header{}))
	require.Len(t, f.orders.materialized, 1)
	assert.Equal(t, session.ID, f.orders.materialized[0].SessionID)

	// Same event redelivered: acknowledged as a duplicate, not re-applied.
	err = f.svc.HandleWebhook(ctx, "stub", payload, http.Header{})
	assert.ErrorIs(t, err, domain.ErrEventAlreadyProcessed)
	assert.Len(t, f.orders.materialized, 1)

	// A fresh event id for an already-materialized session is still a
	// duplicate.
	payload2, err := f.adapter.CompletionPayload(session.ID)
	require.NoError(t, err)
	err = f.svc.HandleWebhook(ctx, "stub", payload2, http.Header{})
	assert.ErrorIs(t, err, domain.ErrEventAlreadyProcessed)
	assert.Len(t, f.orders.materialized, 1)
}

func TestHandleWebhookIgnoresOtherEventTypes(t *testing.T) {
	f := setup(t)

	err := f.svc.HandleWebhook(context.Background(), "stub", []byte(`{"id":"evt_1","type":"checkout.expired"}`), http.Header{})
	assert.ErrorIs(t, err, domain.ErrEventIgnored)
	assert.Empty(t, f.orders.materialized)
}

func TestHandleWebhookUnknownProvider(t *testing.T) {
	f := setup(t)

	err := f.svc.HandleWebhook(context.Background(), "paypal", []byte(`{}`), http.Header{})
	assert.ErrorIs(t, err, domain.ErrProviderNotFound)
}
