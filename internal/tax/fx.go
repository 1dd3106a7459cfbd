package tax

import (
	"github.com/smallbiznis/facturador/internal/cache"
	"github.com/smallbiznis/facturador/internal/tax/repository"
	"github.com/smallbiznis/facturador/internal/tax/service"
	"go.uber.org/fx"
)

var Module = fx.Module("tax.service",
	fx.Provide(cache.NewRateCache),
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewResolver),
	fx.Provide(service.NewService),
)
