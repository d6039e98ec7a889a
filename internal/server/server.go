package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/docbrief/docbrief/internal/config"
	"github.com/docbrief/docbrief/internal/entitlement"
	"github.com/docbrief/docbrief/internal/export"
	exportdomain "github.com/docbrief/docbrief/internal/export/domain"
	"github.com/docbrief/docbrief/internal/extract"
	"github.com/docbrief/docbrief/internal/observability"
	obsmiddleware "github.com/docbrief/docbrief/internal/observability/logger"
	obsmetrics "github.com/docbrief/docbrief/internal/observability/metrics"
	obstracing "github.com/docbrief/docbrief/internal/observability/tracing"
	"github.com/docbrief/docbrief/internal/processing"
	processingdomain "github.com/docbrief/docbrief/internal/processing/domain"
	"github.com/docbrief/docbrief/internal/ratelimit"
	"github.com/docbrief/docbrief/internal/storage"
	"github.com/docbrief/docbrief/internal/subscription"
	subscriptiondomain "github.com/docbrief/docbrief/internal/subscription/domain"
	"github.com/docbrief/docbrief/internal/summarizer"
	"github.com/docbrief/docbrief/internal/summary"
	summarydomain "github.com/docbrief/docbrief/internal/summary/domain"
	"github.com/docbrief/docbrief/internal/usage"
	usagedomain "github.com/docbrief/docbrief/internal/usage/domain"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	storage.Module,
	subscription.Module,
	usage.Module,
	extract.Module,
	summarizer.Module,
	summary.Module,
	entitlement.Module,
	processing.Module,
	export.Module,
	ratelimit.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config) *gin.Engine {
	return NewEngine(obsCfg)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine          *gin.Engine
	cfg             config.Config
	db              *gorm.DB
	genID           *snowflake.Node
	processingSvc   processingdomain.Service
	subscriptionSvc subscriptiondomain.Service
	usageLedger     usagedomain.Ledger
	summarySvc      summarydomain.Service
	exportRegistry  exportdomain.Registry
	store           *storage.UploadStore
	guestLimiter    *ratelimit.GuestUploadLimiter
	obsMetrics      *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin             *gin.Engine
	Cfg             config.Config
	DB              *gorm.DB
	GenID           *snowflake.Node
	ProcessingSvc   processingdomain.Service
	SubscriptionSvc subscriptiondomain.Service
	UsageLedger     usagedomain.Ledger
	SummarySvc      summarydomain.Service
	ExportRegistry  exportdomain.Registry
	Store           *storage.UploadStore
	GuestLimiter    *ratelimit.GuestUploadLimiter `optional:"true"`
	ObsMetrics      *obsmetrics.Metrics           `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		db:              p.DB,
		genID:           p.GenID,
		processingSvc:   p.ProcessingSvc,
		subscriptionSvc: p.SubscriptionSvc,
		usageLedger:     p.UsageLedger,
		summarySvc:      p.SummarySvc,
		exportRegistry:  p.ExportRegistry,
		store:           p.Store,
		guestLimiter:    p.GuestLimiter,
		obsMetrics:      p.ObsMetrics,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	api.POST("/documents", s.AuthRequired(), s.UploadDocument)
	api.POST("/documents/guest", s.GuestRateLimit(), s.UploadGuestDocument)

	api.GET("/usage", s.AuthRequired(), s.GetUsage)

	summaries := api.Group("/summaries", s.AuthRequired())
	{
		summaries.GET("", s.ListSummaries)
		summaries.GET("/:id", s.GetSummary)
		summaries.GET("/:id/export", s.ExportSummary)
	}
}
