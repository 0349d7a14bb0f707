package order

import (
	"go.uber.org/fx"

	"github.com/reelforge/reelforge/internal/order/repository"
	"github.com/reelforge/reelforge/internal/order/service"
)

var Module = fx.Module("order.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
