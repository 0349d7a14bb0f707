package checkout

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/reelforge/reelforge/internal/checkout/adapters"
	"github.com/reelforge/reelforge/internal/checkout/adapters/stripecheckout"
	"github.com/reelforge/reelforge/internal/checkout/adapters/stub"
	"github.com/reelforge/reelforge/internal/checkout/repository"
	"github.com/reelforge/reelforge/internal/checkout/service"
	"github.com/reelforge/reelforge/internal/config"
)

var Module = fx.Module("checkout.service",
	fx.Provide(newRegistry),
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)

func newRegistry(cfg config.Config, log *zap.Logger) *adapters.Registry {
	return adapters.NewRegistry(
		stripecheckout.New(stripecheckout.Config{
			APIKey:        cfg.StripeAPIKey,
			WebhookSecret: cfg.StripeWebhookSecret,
		}, log),
		stub.New(),
	)
}
