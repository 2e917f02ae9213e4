package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/shulefund/payments/internal/app/api/handlers"
	mw "github.com/shulefund/payments/internal/app/api/middleware"
	"github.com/shulefund/payments/internal/app/service/acklog"
	"github.com/shulefund/payments/internal/app/service/donation"
	"github.com/shulefund/payments/internal/app/service/orchestrator"
	"github.com/shulefund/payments/internal/app/service/poller"
	cfgpkg "github.com/shulefund/payments/pkg/config"
	metrics "github.com/shulefund/payments/pkg/metrics"
)

func newEngine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	// Tracing and session pass-through apply to everything; request logger &
	// access log are attached per group in registerRoutes.
	r.Use(mw.TraceMiddleware(), mw.SessionMiddleware())
	return r
}

func registerRoutes(
	r *gin.Engine,
	log *zap.SugaredLogger,
	cfg *cfgpkg.Config,
	m *metrics.Metrics,
	orc orchestrator.PaymentOrchestrator,
	p *poller.Poller,
	src poller.StatusSource,
	don *donation.Service,
	ack *acklog.Service,
) {
	if cfg != nil && cfg.MetricsAddr != "" {
		r.Use(m.GinMiddleware())
		m.Serve(cfg.MetricsAddr, log)
	}

	pub := r.Group("/")
	pub.Use(mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware())
	handlers.RegisterHealthRoutes(pub)

	apiV1 := r.Group("/api/v1")
	apiV1.Use(mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware())
	handlers.RegisterPaymentRoutes(apiV1, orc, p, src, don, ack)

	handlers.RegisterAdminRoutes(apiV1.Group("/admin"), ack)
}

func runServer(lc fx.Lifecycle, log *zap.SugaredLogger, cfg *cfgpkg.Config, r *gin.Engine) {
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 5 * time.Second}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting HTTP server", "addr", addr)
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Errorf("server error: %v", err)
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Infow("stopping HTTP server")
			shutdownCtx, cancel := context.WithTimeout(ctx, 120*time.Second)
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
