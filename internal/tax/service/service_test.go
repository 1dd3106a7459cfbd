package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/facturador/internal/cache"
	"github.com/smallbiznis/facturador/internal/config"
	taxdomain "github.com/smallbiznis/facturador/internal/tax/domain"
	"github.com/smallbiznis/facturador/internal/tax/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupRepo(t *testing.T) taxdomain.Repository {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&taxdomain.TaxDefinition{}))
	return repository.NewRepository(db)
}

func newTestService(t *testing.T, repo taxdomain.Repository) taxdomain.Service {
	t.Helper()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	return NewService(serviceParams{Log: zap.NewNop(), GenID: node, Repo: repo})
}

func TestResolveRate_FallsBackToConfig(t *testing.T) {
	repo := setupRepo(t)
	holder := config.NewStaticTaxConfigHolder(config.DefaultTaxConfig())
	r := NewResolver(resolverParam{Repository: repo, TaxConfig: holder})

	rate, err := r.ResolveRate(context.Background(), "")
	require.NoError(t, err)
	assert.True(t, rate.Equal(decimal.RequireFromString("0.18")))

	rate, err = r.ResolveRate(context.Background(), taxdomain.TaxCodeIVAP)
	require.NoError(t, err)
	assert.True(t, rate.IsZero())
}

func TestResolveRate_PrefersEnabledDefinition(t *testing.T) {
	repo := setupRepo(t)
	svc := newTestService(t, repo)
	ctx := context.Background()

	created, err := svc.Create(ctx, taxdomain.CreateRequest{
		Code: "igv",
		Name: "IGV reducido",
		Rate: decimal.RequireFromString("0.10"),
	})
	require.NoError(t, err)
	assert.Equal(t, "IGV", created.Code)
	assert.Equal(t, "0.1000", created.Rate)

	r := NewResolver(resolverParam{Repository: repo, TaxConfig: config.NewStaticTaxConfigHolder(config.DefaultTaxConfig())})
	rate, err := r.ResolveRate(ctx, "IGV")
	require.NoError(t, err)
	assert.True(t, rate.Equal(decimal.RequireFromString("0.10")))

	_, err = svc.Disable(ctx, created.ID)
	require.NoError(t, err)

	rate, err = r.ResolveRate(ctx, "IGV")
	require.NoError(t, err)
	assert.True(t, rate.Equal(decimal.RequireFromString("0.18")))
}

func TestCreate_Validation(t *testing.T) {
	svc := newTestService(t, setupRepo(t))
	ctx := context.Background()

	_, err := svc.Create(ctx, taxdomain.CreateRequest{Name: "x", Rate: decimal.Zero})
	assert.ErrorIs(t, err, taxdomain.ErrInvalidTaxCode)

	_, err = svc.Create(ctx, taxdomain.CreateRequest{Code: "IGV", Rate: decimal.Zero})
	assert.ErrorIs(t, err, taxdomain.ErrInvalidName)

	_, err = svc.Create(ctx, taxdomain.CreateRequest{Code: "VAT", Name: "x", Rate: decimal.Zero})
	assert.ErrorIs(t, err, taxdomain.ErrInvalidTaxCode)

	_, err = svc.Create(ctx, taxdomain.CreateRequest{Code: "IGV", Name: "x", Rate: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, taxdomain.ErrInvalidTaxRate)

	_, err = svc.Create(ctx, taxdomain.CreateRequest{Code: "IGV", Name: "x", Rate: decimal.RequireFromString("1e-200000000")})
	assert.ErrorIs(t, err, taxdomain.ErrInvalidTaxRate)
}

func TestUpdateAndList(t *testing.T) {
	svc := newTestService(t, setupRepo(t))
	ctx := context.Background()

	created, err := svc.Create(ctx, taxdomain.CreateRequest{
		Code: "IVAP",
		Name: "IVAP",
		Rate: decimal.RequireFromString("0.04"),
	})
	require.NoError(t, err)

	name := "Arroz pilado"
	rate := decimal.RequireFromString("0.05")
	updated, err := svc.Update(ctx, taxdomain.UpdateRequest{ID: created.ID, Name: &name, Rate: &rate})
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)
	assert.Equal(t, "0.0500", updated.Rate)

	enabled := true
	items, err := svc.List(ctx, taxdomain.ListRequest{Code: "ivap", IsEnabled: &enabled})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, created.ID, items[0].ID)

	_, err = svc.Update(ctx, taxdomain.UpdateRequest{ID: "not-an-id"})
	assert.ErrorIs(t, err, taxdomain.ErrInvalidID)

	_, err = svc.Disable(ctx, "12345")
	assert.ErrorIs(t, err, taxdomain.ErrNotFound)
}

func TestCreate_DuplicateCodeAndName(t *testing.T) {
	svc := newTestService(t, setupRepo(t))
	ctx := context.Background()

	req := taxdomain.CreateRequest{Code: "IGV", Name: "IGV general", Rate: decimal.RequireFromString("0.18")}
	_, err := svc.Create(ctx, req)
	require.NoError(t, err)

	_, err = svc.Create(ctx, req)
	assert.ErrorIs(t, err, taxdomain.ErrDuplicate)
}

func TestResolveRate_CacheInvalidatedOnChange(t *testing.T) {
	repo := setupRepo(t)
	rates := cache.NewRateCache()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	svc := NewService(serviceParams{Log: zap.NewNop(), GenID: node, Repo: repo, Cache: rates})
	r := NewResolver(resolverParam{
		Repository: repo,
		TaxConfig:  config.NewStaticTaxConfigHolder(config.DefaultTaxConfig()),
		Cache:      rates,
	})
	ctx := context.Background()

	created, err := svc.Create(ctx, taxdomain.CreateRequest{Code: "IGV", Name: "IGV", Rate: decimal.RequireFromString("0.10")})
	require.NoError(t, err)

	rate, err := r.ResolveRate(ctx, "IGV")
	require.NoError(t, err)
	assert.True(t, rate.Equal(decimal.RequireFromString("0.10")))
	cached, ok := rates.GetRate("IGV")
	require.True(t, ok)
	assert.True(t, cached.Equal(decimal.RequireFromString("0.10")))

	newRate := decimal.RequireFromString("0.12")
	_, err = svc.Update(ctx, taxdomain.UpdateRequest{ID: created.ID, Rate: &newRate})
	require.NoError(t, err)
	_, ok = rates.GetRate("IGV")
	assert.False(t, ok)

	rate, err = r.ResolveRate(ctx, "IGV")
	require.NoError(t, err)
	assert.True(t, rate.Equal(newRate))
}
