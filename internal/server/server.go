package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	auditdomain "github.com/smallbiznis/facturador/internal/audit/domain"
	"github.com/smallbiznis/facturador/internal/config"
	"github.com/smallbiznis/facturador/internal/invoice"
	invoicedomain "github.com/smallbiznis/facturador/internal/invoice/domain"
	"github.com/smallbiznis/facturador/internal/observability"
	obsmiddleware "github.com/smallbiznis/facturador/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/facturador/internal/observability/metrics"
	obstracing "github.com/smallbiznis/facturador/internal/observability/tracing"
	"github.com/smallbiznis/facturador/internal/providers/documentapi"
	"github.com/smallbiznis/facturador/internal/ratelimit"
	taxdomain "github.com/smallbiznis/facturador/internal/tax/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	invoice.Module,
	documentapi.Module,
	ratelimit.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

// submitGuard admits a submission; release must run when it finishes.
type submitGuard interface {
	Acquire(ctx context.Context, clientKey, sessionID string) (func(), *ratelimit.RateLimitResult, error)
}

type Server struct {
	engine      *gin.Engine
	cfg         config.Config
	invoiceSvc  invoicedomain.Service
	documents   invoicedomain.DocumentGateway
	taxSvc      taxdomain.Service
	submissions auditdomain.Service
	submitGuard submitGuard
}

type ServerParams struct {
	fx.In

	Gin         *gin.Engine
	Cfg         config.Config
	InvoiceSvc  invoicedomain.Service
	Documents   invoicedomain.DocumentGateway
	TaxSvc      taxdomain.Service
	Submissions auditdomain.Service
	Limiter     *ratelimit.SubmitLimiter `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:      p.Gin,
		cfg:         p.Cfg,
		invoiceSvc:  p.InvoiceSvc,
		documents:   p.Documents,
		taxSvc:      p.TaxSvc,
		submissions: p.Submissions,
	}
	if p.Limiter.Enabled() {
		svc.submitGuard = p.Limiter
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	// -------- Catalogs --------
	api.GET("/tax-treatments", s.ListTaxTreatments)
	api.GET("/units-of-measure", s.ListUnitsOfMeasure)
	api.GET("/document-types", s.ListDocumentTypes)
	api.GET("/currencies", s.ListCurrencies)

	api.POST("/ruc/validate", s.ValidateRUC)

	// -------- Totals --------
	api.POST("/totals", s.ComputeTotals)

	// -------- Editing sessions --------
	api.POST("/sessions", s.CreateSession)
	api.GET("/sessions/:id", s.GetSession)
	api.PATCH("/sessions/:id", s.UpdateSessionHeader)
	api.DELETE("/sessions/:id", s.DeleteSession)
	api.POST("/sessions/:id/items", s.AddSessionItem)
	api.PATCH("/sessions/:id/items/:itemId", s.UpdateSessionItem)
	api.DELETE("/sessions/:id/items/:itemId", s.RemoveSessionItem)
	api.POST("/sessions/:id/clear", s.ClearSession)
	api.GET("/sessions/:id/totals", s.GetSessionTotals)
	api.POST("/sessions/:id/submit", s.SubmitSession)

	// -------- Submission log --------
	api.GET("/submissions", s.ListSubmissions)

	// -------- Documents --------
	api.POST("/documents/:id/send", s.SendDocument)
	api.GET("/documents/:id", s.GetDocument)

	// -------- Tax Definitions --------
	api.GET("/tax-definitions", s.ListTaxDefinitions)
	api.POST("/tax-definitions", s.CreateTaxDefinition)
	api.PATCH("/tax-definitions/:id", s.UpdateTaxDefinition)
	api.POST("/tax-definitions/:id/disable", s.DisableTaxDefinition)
}
