package service

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	cartdomain "github.com/reelforge/reelforge/internal/cart/domain"
	"github.com/reelforge/reelforge/internal/checkout/adapters"
	"github.com/reelforge/reelforge/internal/checkout/domain"
	"github.com/reelforge/reelforge/internal/clock"
	"github.com/reelforge/reelforge/internal/config"
	obsmetrics "github.com/reelforge/reelforge/internal/observability/metrics"
	orderdomain "github.com/reelforge/reelforge/internal/order/domain"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Config   config.Config
	Repo     domain.Repository
	Registry *adapters.Registry
	Cart     cartdomain.Service
	Orders   orderdomain.Service
	Metrics  *obsmetrics.Metrics `optional:"true"`
}

type service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	provider string
	repo     domain.Repository
	registry *adapters.Registry
	cart     cartdomain.Service
	orders   orderdomain.Service
	metrics  *obsmetrics.Metrics
}

func New(p Params) domain.Service {
	return &service{
		db:       p.DB,
		log:      p.Log.Named("checkout.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		provider: p.Config.CheckoutProvider,
		repo:     p.Repo,
		registry: p.Registry,
		cart:     p.Cart,
		orders:   p.Orders,
		metrics:  p.Metrics,
	}
}

func (s *service) CreateSession(ctx context.Context, userID, brandID string, req domain.SessionRequest) (*domain.Session, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, domain.ErrInvalidUser
	}
	bid, err := snowflake.ParseString(strings.TrimSpace(brandID))
	if err != nil {
		return nil, domain.ErrInvalidBrand
	}

	adapter, err := s.registry.Get(s.provider)
	if err != nil {
		return nil, err
	}

	items, err := s.cart.List(ctx, brandID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, domain.ErrEmptyCart
	}

	// One quote pass over one snapshot of ledger and tiers. This result is
	// frozen into the session metadata and becomes the charged pricing; the
	// display quote the client saw is never trusted.
	quote, err := s.cart.Quote(ctx, brandID)
	if err != nil {
		return nil, err
	}

	snapshots, err := buildSnapshots(items, quote.Items)
	if err != nil {
		return nil, err
	}

	session, err := adapter.CreateSession(ctx, domain.CreateSessionParams{
		UserID:     userID,
		BrandID:    bid,
		Items:      snapshots,
		TotalCents: quote.Totals.ChargedCents,
		SuccessURL: req.SuccessURL,
		CancelURL:  req.CancelURL,
	})
	if err != nil {
		// Nothing was persisted, so the caller can simply retry.
		s.log.Warn("session create failed",
			zap.String("brand_id", bid.String()),
			zap.String("provider", s.provider),
			zap.Error(err),
		)
		return nil, err
	}

	s.log.Info("checkout session created",
		zap.String("brand_id", bid.String()),
		zap.String("provider", session.Provider),
		zap.String("session_id", session.ID),
		zap.Int("item_count", len(snapshots)),
		zap.Int64("total_charged_cents", quote.Totals.ChargedCents),
	)
	s.metrics.RecordCheckoutSession(ctx, session.Provider)
	return session, nil
}

// buildSnapshots zips the cart lines with their allocator quotes. Both come
// from the same List call ordering, but the join is by item id so a
// reordering bug cannot mispair briefs and prices.
func buildSnapshots(items []cartdomain.CartItem, quotes []cartdomain.QuotedItem) ([]domain.ItemSnapshot, error) {
	quoted := make(map[snowflake.ID]cartdomain.QuotedItem, len(quotes))
	for _, q := range quotes {
		quoted[q.ItemID] = q
	}

	snapshots := make([]domain.ItemSnapshot, 0, len(items))
	for _, item := range items {
		q, ok := quoted[item.ID]
		if !ok {
			return nil, domain.ErrInvalidMetadata
		}
		snapshots = append(snapshots, domain.ItemSnapshot{
			CartItemID:            item.ID,
			RecipeID:              q.RecipeID,
			RecipeSlug:            q.RecipeSlug,
			RecipeName:            q.RecipeName,
			ListPriceCents:        q.ListPriceCents,
			DiscountPercent:       q.DiscountPercent,
			DiscountCents:         q.DiscountCents,
			SurchargeCents:        q.SurchargeCents,
			TotalChargedCents:     q.TotalChargedCents,
			IntakeResponses:       item.IntakeResponses,
			Notes:                 item.Notes,
			FootageFolderURL:      item.FootageFolderURL,
			PrimaryPlatform:       item.PrimaryPlatform,
			PrimaryAspectRatio:    item.PrimaryAspectRatio,
			NeedsAdditionalFormat: item.NeedsAdditionalFormat,
			AdditionalAspectRatio: item.AdditionalAspectRatio,
		})
	}
	return snapshots, nil
}

func (s *service) HandleWebhook(ctx context.Context, provider string, payload []byte, headers http.Header) error {
	adapter, err := s.registry.Get(provider)
	if err != nil {
		return err
	}

	if err := adapter.Verify(ctx, payload, headers); err != nil {
		s.metrics.RecordWebhookEvent(ctx, provider, "", "rejected")
		return err
	}

	event, err := adapter.ParseCompleted(ctx, payload)
	if err != nil {
		if errors.Is(err, domain.ErrEventIgnored) {
			s.metrics.RecordWebhookEvent(ctx, provider, "", "ignored")
			return err
		}
		s.metrics.RecordWebhookEvent(ctx, provider, "", "invalid")
		return err
	}

	log := s.log.With(
		zap.String("provider", provider),
		zap.String("provider_event_id", event.ProviderEventID),
		zap.String("session_id", event.SessionID),
	)

	record := &domain.WebhookEvent{
		ID:              s.genID.Generate(),
		Provider:        provider,
		ProviderEventID: event.ProviderEventID,
		EventType:       "checkout.completed",
		Payload:         datatypes.JSON(event.RawPayload),
		ReceivedAt:      s.clock.Now(),
	}

	// The event record is an audit trail and a fast dedupe path. The
	// authoritative idempotency barrier is the session-existence check
	// inside Materialize's transaction, so a crash between the insert and
	// the materialization stays safely retryable.
	inserted, err := s.repo.InsertEvent(ctx, s.db, record)
	if err != nil {
		return err
	}
	if !inserted {
		existing, err := s.repo.FindEvent(ctx, s.db, provider, event.ProviderEventID)
		if err != nil {
			return err
		}
		if existing != nil && existing.ProcessedAt != nil {
			log.Info("webhook event already processed")
			s.metrics.RecordWebhookEvent(ctx, provider, "checkout.completed", "duplicate")
			return domain.ErrEventAlreadyProcessed
		}
		if existing != nil {
			record = existing
		}
	}

	if err := s.orders.Materialize(ctx, event); err != nil {
		// A redelivered event with a fresh event id still maps onto an
		// already-materialized session.
		if errors.Is(err, orderdomain.ErrAlreadyProcessed) {
			if markErr := s.repo.MarkProcessed(ctx, s.db, int64(record.ID), s.clock.Now()); markErr != nil {
				log.Warn("mark processed failed", zap.Error(markErr))
			}
			log.Info("checkout session already materialized")
			s.metrics.RecordWebhookEvent(ctx, provider, "checkout.completed", "duplicate")
			return domain.ErrEventAlreadyProcessed
		}
		log.Error("webhook processing failed", zap.Error(err))
		s.metrics.RecordWebhookEvent(ctx, provider, "checkout.completed", "failed")
		return err
	}

	if err := s.repo.MarkProcessed(ctx, s.db, int64(record.ID), s.clock.Now()); err != nil {
		log.Warn("mark processed failed", zap.Error(err))
	}

	log.Info("webhook event processed")
	s.metrics.RecordWebhookEvent(ctx, provider, "checkout.completed", "processed")
	return nil
}
