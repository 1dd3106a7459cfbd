package documentapi

import (
	"github.com/smallbiznis/facturador/internal/config"
	invoicedomain "github.com/smallbiznis/facturador/internal/invoice/domain"
	"go.uber.org/fx"
)

var Module = fx.Module("providers.documentapi",
	fx.Provide(func(cfg config.Config) invoicedomain.DocumentGateway {
		return NewClient(cfg.DocumentAPI)
	}),
)
