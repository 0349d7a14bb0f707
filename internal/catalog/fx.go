package catalog

import (
	"github.com/reelforge/reelforge/internal/catalog/repository"
	"github.com/reelforge/reelforge/internal/catalog/service"
	"go.uber.org/fx"
)

var Module = fx.Module("catalog.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
