package cart

import (
	"github.com/reelforge/reelforge/internal/cart/repository"
	"github.com/reelforge/reelforge/internal/cart/service"
	"go.uber.org/fx"
)

var Module = fx.Module("cart.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
