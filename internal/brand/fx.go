package brand

import (
	"github.com/reelforge/reelforge/internal/brand/repository"
	"github.com/reelforge/reelforge/internal/brand/service"
	"go.uber.org/fx"
)

var Module = fx.Module("brand.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
