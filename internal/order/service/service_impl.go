package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/oklog/ulid/v2"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	branddomain "github.com/reelforge/reelforge/internal/brand/domain"
	cartdomain "github.com/reelforge/reelforge/internal/cart/domain"
	catalogdomain "github.com/reelforge/reelforge/internal/catalog/domain"
	checkoutdomain "github.com/reelforge/reelforge/internal/checkout/domain"
	"github.com/reelforge/reelforge/internal/clock"
	obsmetrics "github.com/reelforge/reelforge/internal/observability/metrics"
	"github.com/reelforge/reelforge/internal/order/domain"
	"github.com/reelforge/reelforge/internal/pricing"
	"github.com/reelforge/reelforge/pkg/db/pagination"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	Repo        domain.Repository
	CartRepo    cartdomain.Repository
	BrandRepo   branddomain.Repository
	CatalogRepo catalogdomain.Repository
	Metrics     *obsmetrics.Metrics `optional:"true"`
}

type service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	repo        domain.Repository
	cartRepo    cartdomain.Repository
	brandRepo   branddomain.Repository
	catalogRepo catalogdomain.Repository
	metrics     *obsmetrics.Metrics
}

func New(p Params) domain.Service {
	return &service{
		db:          p.DB,
		log:         p.Log.Named("order.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		repo:        p.Repo,
		cartRepo:    p.CartRepo,
		brandRepo:   p.BrandRepo,
		catalogRepo: p.CatalogRepo,
		metrics:     p.Metrics,
	}
}

func (s *service) Materialize(ctx context.Context, event *checkoutdomain.CompletedEvent) error {
	if event == nil || event.SessionID == "" || len(event.Items) == 0 {
		return domain.ErrInvalidOrder
	}

	log := s.log.With(
		zap.String("brand_id", event.BrandID.String()),
		zap.String("checkout_session_id", event.SessionID),
		zap.String("provider", event.Provider),
	)

	var created int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exists, err := s.repo.ExistsBySession(ctx, tx, event.SessionID)
		if err != nil {
			return err
		}
		if exists {
			return domain.ErrAlreadyProcessed
		}

		orders := make([]*domain.Order, 0, len(event.Items))
		var spent, saved int64
		for _, item := range event.Items {
			orders = append(orders, s.orderFromSnapshot(event, item))
			spent += item.TotalChargedCents
			saved += item.DiscountCents
		}
		if err := s.repo.InsertOrders(ctx, tx, orders); err != nil {
			return err
		}
		created = len(orders)

		if err := s.cartRepo.DeleteByBrand(ctx, tx, event.BrandID); err != nil {
			return err
		}

		if err := s.brandRepo.EnsureLedger(ctx, tx, event.BrandID); err != nil {
			return err
		}
		if err := s.brandRepo.ApplyCheckout(ctx, tx, event.BrandID, len(event.Items), spent, saved); err != nil {
			return err
		}

		// Re-read behind ApplyCheckout's row lock: concurrent
		// materializations for one brand each see their own increment
		// applied, so the percent is derived from the true count.
		ledger, err := s.brandRepo.FindLedger(ctx, tx, event.BrandID)
		if err != nil {
			return err
		}
		lifetime := len(event.Items)
		if ledger != nil {
			lifetime = ledger.LifetimeVideoCount
		}
		tiers, err := s.catalogRepo.ListDiscountTiers(ctx, tx)
		if err != nil {
			return err
		}
		discountPct := pricing.DiscountPercentFor(lifetime, tiers)
		return s.brandRepo.RaiseDiscountPercent(ctx, tx, event.BrandID, discountPct)
	})
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyProcessed) {
			log.Info("checkout session already materialized")
			return err
		}
		log.Error("materialization failed", zap.Error(err))
		return err
	}

	log.Info("checkout materialized", zap.Int("order_count", created))
	s.metrics.RecordOrdersMaterialized(ctx, int64(created))
	s.metrics.RecordLedgerUpdate(ctx, "checkout")
	return nil
}

func (s *service) orderFromSnapshot(event *checkoutdomain.CompletedEvent, item checkoutdomain.ItemSnapshot) *domain.Order {
	now := s.clock.Now()
	intake := datatypes.JSONMap{}
	for k, v := range item.IntakeResponses {
		intake[k] = v
	}
	return &domain.Order{
		ID:                    s.genID.Generate(),
		OrderNumber:           s.newOrderNumber(),
		BrandID:               event.BrandID,
		UserID:                event.UserID,
		RecipeID:              item.RecipeID,
		RecipeSlug:            item.RecipeSlug,
		RecipeName:            item.RecipeName,
		Status:                domain.StatusNeedsBrief,
		CheckoutSessionID:     event.SessionID,
		PaymentReference:      event.PaymentReference,
		Provider:              event.Provider,
		ListPriceCents:        item.ListPriceCents,
		DiscountPercent:       item.DiscountPercent,
		DiscountCents:         item.DiscountCents,
		SurchargeCents:        item.SurchargeCents,
		TotalChargedCents:     item.TotalChargedCents,
		IntakeResponses:       intake,
		Notes:                 item.Notes,
		FootageFolderURL:      item.FootageFolderURL,
		PrimaryPlatform:       item.PrimaryPlatform,
		PrimaryAspectRatio:    item.PrimaryAspectRatio,
		NeedsAdditionalFormat: item.NeedsAdditionalFormat,
		AdditionalAspectRatio: item.AdditionalAspectRatio,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
}

func (s *service) newOrderNumber() string {
	return fmt.Sprintf("RF-%s", ulid.MustNew(ulid.Timestamp(s.clock.Now()), ulid.DefaultEntropy()))
}

func (s *service) List(ctx context.Context, brandID string, req domain.ListOrdersRequest) (domain.ListOrdersResponse, error) {
	bid, err := parseID(brandID)
	if err != nil {
		return domain.ListOrdersResponse{}, domain.ErrInvalidBrand
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.ListByBrand(ctx, s.db, bid, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  int(pageSize),
	})
	if err != nil {
		return domain.ListOrdersResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(order *domain.Order) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        order.ID.String(),
			CreatedAt: order.CreatedAt.Format(time.RFC3339Nano),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	orders := make([]domain.Order, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		orders = append(orders, *item)
	}

	resp := domain.ListOrdersResponse{Orders: orders}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *service) Get(ctx context.Context, brandID, orderID string) (*domain.Order, error) {
	order, err := s.findForBrand(ctx, brandID, orderID)
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *service) SubmitBrief(ctx context.Context, brandID, orderID string, req domain.BriefRequest) (*domain.Order, error) {
	order, err := s.findForBrand(ctx, brandID, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != domain.StatusNeedsBrief {
		return nil, domain.ErrInvalidTransition
	}
	if len(req.IntakeResponses) == 0 && len(order.IntakeResponses) == 0 {
		return nil, domain.ErrMissingBrief
	}

	if len(req.IntakeResponses) > 0 {
		intake := datatypes.JSONMap{}
		for k, v := range req.IntakeResponses {
			intake[k] = v
		}
		order.IntakeResponses = intake
	}
	if req.Notes != "" {
		order.Notes = req.Notes
	}
	if req.FootageFolderURL != "" {
		order.FootageFolderURL = req.FootageFolderURL
	}
	if req.PrimaryPlatform != "" {
		order.PrimaryPlatform = strings.ToLower(req.PrimaryPlatform)
	}
	if req.PrimaryAspectRatio != "" {
		order.PrimaryAspectRatio = req.PrimaryAspectRatio
	}
	if req.NeedsAdditionalFormat != nil {
		order.NeedsAdditionalFormat = *req.NeedsAdditionalFormat
	}
	if req.AdditionalAspectRatio != "" {
		order.AdditionalAspectRatio = req.AdditionalAspectRatio
	}
	return s.move(ctx, order, domain.StatusSubmitted)
}

func (s *service) ApproveDelivery(ctx context.Context, brandID, orderID string) (*domain.Order, error) {
	order, err := s.findForBrand(ctx, brandID, orderID)
	if err != nil {
		return nil, err
	}
	return s.move(ctx, order, domain.StatusCompleted)
}

func (s *service) Transition(ctx context.Context, orderID string, to domain.Status) (*domain.Order, error) {
	if !domain.ValidStatus(to) {
		return nil, domain.ErrInvalidStatus
	}
	oid, err := parseID(orderID)
	if err != nil {
		return nil, domain.ErrInvalidOrder
	}
	order, err := s.repo.FindByID(ctx, s.db, oid)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	return s.move(ctx, order, to)
}

// move applies one pipeline edge. Invalid edges are rejected, never
// clamped to the nearest legal status.
func (s *service) move(ctx context.Context, order *domain.Order, to domain.Status) (*domain.Order, error) {
	from := order.Status
	if !domain.CanTransition(from, to) {
		return nil, domain.ErrInvalidTransition
	}
	order.Status = to
	order.UpdatedAt = s.clock.Now()
	if err := s.repo.Save(ctx, s.db, order); err != nil {
		return nil, err
	}
	s.log.Info("order transitioned",
		zap.String("order_number", order.OrderNumber),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
	)
	return order, nil
}

func (s *service) findForBrand(ctx context.Context, brandID, orderID string) (*domain.Order, error) {
	bid, err := parseID(brandID)
	if err != nil {
		return nil, domain.ErrInvalidBrand
	}
	oid, err := parseID(orderID)
	if err != nil {
		return nil, domain.ErrInvalidOrder
	}
	order, err := s.repo.FindForBrand(ctx, s.db, bid, oid)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	return order, nil
}

func parseID(raw string) (snowflake.ID, error) {
	return snowflake.ParseString(strings.TrimSpace(raw))
}
