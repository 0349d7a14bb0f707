package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/reelforge/reelforge/internal/brand"
	branddomain "github.com/reelforge/reelforge/internal/brand/domain"
	"github.com/reelforge/reelforge/internal/cart"
	cartdomain "github.com/reelforge/reelforge/internal/cart/domain"
	"github.com/reelforge/reelforge/internal/catalog"
	catalogdomain "github.com/reelforge/reelforge/internal/catalog/domain"
	"github.com/reelforge/reelforge/internal/checkout"
	checkoutdomain "github.com/reelforge/reelforge/internal/checkout/domain"
	"github.com/reelforge/reelforge/internal/clock"
	"github.com/reelforge/reelforge/internal/config"
	"github.com/reelforge/reelforge/internal/migration"
	"github.com/reelforge/reelforge/internal/observability"
	obsmiddleware "github.com/reelforge/reelforge/internal/observability/logger"
	obsmetrics "github.com/reelforge/reelforge/internal/observability/metrics"
	obstracing "github.com/reelforge/reelforge/internal/observability/tracing"
	"github.com/reelforge/reelforge/internal/order"
	orderdomain "github.com/reelforge/reelforge/internal/order/domain"
	"github.com/reelforge/reelforge/internal/ratelimit"
	"github.com/reelforge/reelforge/internal/recipe"
	recipedomain "github.com/reelforge/reelforge/internal/recipe/domain"
	"github.com/reelforge/reelforge/internal/upgrade"
	upgradedomain "github.com/reelforge/reelforge/internal/upgrade/domain"
)

var Module = fx.Module("http.server",
	config.Module,
	clock.Module,
	fx.Provide(registerGin),
	migration.Module,
	catalog.Module,
	recipe.Module,
	brand.Module,
	cart.Module,
	upgrade.Module,
	checkout.Module,
	order.Module,
	ratelimit.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine      *gin.Engine
	cfg         config.Config
	db          *gorm.DB
	genID       *snowflake.Node
	catalogSvc  catalogdomain.Service
	recipeSvc   recipedomain.Service
	brandSvc    branddomain.Service
	cartSvc     cartdomain.Service
	upgradeSvc  upgradedomain.Service
	checkoutSvc checkoutdomain.Service
	orderSvc    orderdomain.Service
	limiter     *ratelimit.CheckoutLimiter
	obsMetrics  *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin         *gin.Engine
	Cfg         config.Config
	DB          *gorm.DB
	GenID       *snowflake.Node
	CatalogSvc  catalogdomain.Service
	RecipeSvc   recipedomain.Service
	BrandSvc    branddomain.Service
	CartSvc     cartdomain.Service
	UpgradeSvc  upgradedomain.Service
	CheckoutSvc checkoutdomain.Service
	OrderSvc    orderdomain.Service
	Limiter     *ratelimit.CheckoutLimiter `optional:"true"`
	ObsMetrics  *obsmetrics.Metrics        `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:      p.Gin,
		cfg:         p.Cfg,
		db:          p.DB,
		genID:       p.GenID,
		catalogSvc:  p.CatalogSvc,
		recipeSvc:   p.RecipeSvc,
		brandSvc:    p.BrandSvc,
		cartSvc:     p.CartSvc,
		upgradeSvc:  p.UpgradeSvc,
		checkoutSvc: p.CheckoutSvc,
		orderSvc:    p.OrderSvc,
		limiter:     p.Limiter,
		obsMetrics:  p.ObsMetrics,
	}

	svc.registerAPIRoutes()
	svc.registerAdminRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	// -------- Catalog --------
	api.GET("/recipes", s.ListRecipes)
	api.GET("/recipes/:id", s.GetRecipeByID)
	api.GET("/bundles", s.BrandRequired(), s.ListBundles)
	api.GET("/milestones", s.ListMilestones)
	api.GET("/discount-tiers", s.ListDiscountTiers)

	// -------- Brands --------
	api.POST("/brands", s.UserRequired(), s.CreateBrand)
	api.GET("/brands/:id/unlocks", s.GetBrandUnlocks)
	api.GET("/brands/:id/ledger", s.GetBrandLedger)

	// -------- Cart --------
	cartGroup := api.Group("/cart", s.BrandRequired())
	{
		cartGroup.GET("", s.ListCartItems)
		cartGroup.POST("", s.AddCartItem)
		cartGroup.PATCH("/:id", s.UpdateCartItem)
		cartGroup.DELETE("/:id", s.RemoveCartItem)
		cartGroup.DELETE("", s.ClearCart)
		cartGroup.GET("/quote", s.QuoteCart)
	}

	// -------- Checkout --------
	api.POST("/checkout", s.BrandRequired(), s.CheckoutRateLimit(), s.CreateCheckoutSession)
	api.POST("/payments/webhooks/:provider", s.WebhookRateLimit(), s.HandlePaymentWebhook)

	// -------- Tier upgrades --------
	api.POST("/upgrade-requests", s.BrandRequired(), s.SubmitUpgradeRequest)
	api.GET("/upgrade-requests", s.BrandRequired(), s.ListUpgradeRequests)

	// -------- Orders --------
	orders := api.Group("/orders", s.BrandRequired())
	{
		orders.GET("", s.ListOrders)
		orders.GET("/:id", s.GetOrderByID)
		orders.POST("/:id/brief", s.SubmitOrderBrief)
		orders.POST("/:id/approve", s.ApproveOrderDelivery)
	}
}

func (s *Server) registerAdminRoutes() {
	admin := s.engine.Group("/admin", s.AdminRequired())

	admin.POST("/milestones", s.CreateMilestone)
	admin.POST("/discount-tiers", s.CreateDiscountTier)

	admin.GET("/upgrade-requests", s.ListPendingUpgradeRequests)
	admin.POST("/upgrade-requests/:id/approve", s.ApproveUpgradeRequest)
	admin.POST("/upgrade-requests/:id/reject", s.RejectUpgradeRequest)

	admin.POST("/orders/:id/transition", s.TransitionOrder)
}
