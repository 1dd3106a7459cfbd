package invoice

import (
	"github.com/smallbiznis/facturador/internal/audit"
	"github.com/smallbiznis/facturador/internal/invoice/service"
	"github.com/smallbiznis/facturador/internal/invoice/session"
	"github.com/smallbiznis/facturador/internal/tax"
	"go.uber.org/fx"
)

var Module = fx.Module("invoice.service",
	tax.Module,
	audit.Module,
	session.Module,
	fx.Provide(service.NewService),
)
