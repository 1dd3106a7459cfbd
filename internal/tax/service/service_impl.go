package service

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/facturador/internal/cache"
	"github.com/smallbiznis/facturador/internal/config"
	taxdomain "github.com/smallbiznis/facturador/internal/tax/domain"
	"go.uber.org/fx"
)

type resolverParam struct {
	fx.In

	Repository taxdomain.Repository
	TaxConfig  *config.TaxConfigHolder
	Cache      cache.RateCache `optional:"true"`
}

type resolver struct {
	repo      taxdomain.Repository
	taxConfig *config.TaxConfigHolder
	cache     cache.RateCache
}

func NewResolver(p resolverParam) taxdomain.RateResolver {
	return &resolver{repo: p.Repository, taxConfig: p.TaxConfig, cache: p.Cache}
}

// ResolveRate prefers an enabled tax definition and falls back to the
// configured IGV rate. Unknown codes without a definition resolve to zero.
func (r *resolver) ResolveRate(ctx context.Context, code string) (decimal.Decimal, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		code = taxdomain.TaxCodeIGV
	}

	if r.cache != nil {
		if rate, ok := r.cache.GetRate(code); ok {
			return rate, nil
		}
	}

	def, err := r.repo.GetActiveByCode(ctx, code)
	if err != nil {
		return decimal.Zero, err
	}
	if def != nil {
		if r.cache != nil {
			r.cache.SetRate(code, def.Rate)
		}
		return def.Rate, nil
	}

	if code == taxdomain.TaxCodeIGV && r.taxConfig != nil {
		return r.taxConfig.IGVRate(), nil
	}
	return decimal.Zero, nil
}
