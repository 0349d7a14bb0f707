package recipe

import (
	"github.com/reelforge/reelforge/internal/recipe/repository"
	"github.com/reelforge/reelforge/internal/recipe/service"
	"go.uber.org/fx"
)

var Module = fx.Module("recipe.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
