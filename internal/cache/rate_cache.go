package cache

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const defaultRateTTL = 30 * time.Second

// RateCache keeps resolved tax rates so live totals do not hit the database
// on every edit.
type RateCache interface {
	GetRate(code string) (decimal.Decimal, bool)
	SetRate(code string, rate decimal.Decimal)
	Invalidate(code string)
}

type rateCache struct {
	rates Cache[string, decimal.Decimal]
	ttl   time.Duration
}

func NewRateCache() RateCache {
	return &rateCache{
		rates: NewTTLCache[string, decimal.Decimal](),
		ttl:   defaultRateTTL,
	}
}

func (c *rateCache) GetRate(code string) (decimal.Decimal, bool) {
	return c.rates.Get(cacheKey(code))
}

func (c *rateCache) SetRate(code string, rate decimal.Decimal) {
	c.rates.Set(cacheKey(code), rate, c.ttl)
}

// Invalidate drops one code, or every code when code is blank.
func (c *rateCache) Invalidate(code string) {
	key := cacheKey(code)
	if key == "" {
		c.rates.Purge()
		return
	}
	c.rates.Delete(key)
}

func cacheKey(parts ...string) string {
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		values = append(values, strings.ToLower(trimmed))
	}
	return strings.Join(values, "|")
}
