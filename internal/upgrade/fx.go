package upgrade

import (
	"github.com/reelforge/reelforge/internal/upgrade/repository"
	"github.com/reelforge/reelforge/internal/upgrade/service"
	"go.uber.org/fx"
)

var Module = fx.Module("upgrade.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
