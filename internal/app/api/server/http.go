package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/fatflowers/saasgen/internal/app/api/handlers"
	mw "github.com/fatflowers/saasgen/internal/app/api/middleware"
	"github.com/fatflowers/saasgen/internal/app/service/generator"
	"github.com/fatflowers/saasgen/internal/app/service/report"
	cfgpkg "github.com/fatflowers/saasgen/pkg/config"
	metrics "github.com/fatflowers/saasgen/pkg/metrics"
)

func newEngine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	// request logger & access log are attached per group in registerRoutes
	r.Use(mw.TraceMiddleware())
	return r
}

type routeParams struct {
	fx.In

	Log       *zap.SugaredLogger
	Cfg       *cfgpkg.Config
	Engine    *gin.Engine
	Generator *generator.Generator
	Reports   *report.Service
	Registry  prometheus.Registerer
	Gatherer  prometheus.Gatherer
}

func registerRoutes(p routeParams) error {
	prom, err := metrics.NewPrometheus(metrics.NewPrometheusOptions{
		Subsystem:  metrics.GeneratorSubsystem,
		Registerer: p.Registry,
		Gatherer:   p.Gatherer,
		Logger:     p.Log,
	})
	if err != nil {
		return fmt.Errorf("register http metrics: %w", err)
	}
	// an empty address serves /metrics from the main engine
	prom.SetListenAddress(p.Cfg.MetricsAddr)
	prom.Use(p.Engine)
	p.Log.Infow("metrics enabled", "path", prom.MetricsPath, "addr", p.Cfg.MetricsAddr)

	pub := p.Engine.Group("/")
	pub.Use(mw.RequestLoggerMiddleware(p.Log), mw.AccessLogMiddleware())
	handlers.RegisterHealthRoutes(pub)

	apiV1 := p.Engine.Group("/api/v1")
	apiV1.Use(mw.RequestLoggerMiddleware(p.Log), mw.AccessLogMiddleware())
	handlers.RegisterDatasetRoutes(apiV1.Group("/datasets"), p.Generator, p.Cfg)
	handlers.RegisterReportRoutes(apiV1.Group("/reports"), p.Reports)
	return nil
}

func runServer(lc fx.Lifecycle, shutdowner fx.Shutdowner, log *zap.SugaredLogger, cfg *cfgpkg.Config, r *gin.Engine) {
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 5 * time.Second}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting HTTP server", "addr", addr)
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Errorf("server error: %v", err)
					_ = shutdowner.Shutdown(fx.ExitCode(1))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Infow("stopping HTTP server")
			shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

var Module = fx.Options(
	fx.Provide(newEngine),
	fx.Invoke(registerRoutes),
	fx.Invoke(runServer),
)
