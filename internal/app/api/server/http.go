package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/routina/payments/docs"
	"github.com/routina/payments/internal/app/api/handlers"
	"github.com/routina/payments/internal/app/service/callbacklog"
	"github.com/routina/payments/internal/app/service/checkout"
	"github.com/routina/payments/internal/app/service/entitlement"
	"github.com/routina/payments/internal/app/service/notifier"
	"github.com/routina/payments/internal/app/service/statistics"
	cfgpkg "github.com/routina/payments/pkg/config"

	mw "github.com/routina/payments/internal/app/api/middleware"

	metrics "github.com/routina/payments/pkg/metrics"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func newEngine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	// Add request tracing middleware only; request logger & access log are attached per group in registerRoutes
	r.Use(mw.TraceMiddleware())
	return r
}

func registerRoutes(r *gin.Engine, log *zap.SugaredLogger, cfg *cfgpkg.Config, co *checkout.Service, n *notifier.Service, ent *entitlement.Service, logs *callbacklog.Service, stats *statistics.Service) {
	// Prometheus metrics
	if cfg != nil && cfg.MetricsAddr != "" {
		p := metrics.NewPrometheus(metrics.NewPrometheusOptions{
			ReqCntURLLabelMappingFn: func(c *gin.Context) string {
				if fp := c.FullPath(); fp != "" {
					return fp
				}
				return c.Request.URL.Path
			},
			Logger: log,
		})
		p.SetListenAddress(cfg.MetricsAddr)
		p.Use(r)

		log.Infow("metrics started", "addr", cfg.MetricsAddr)
	}
	// Public group: request logger + access log
	pub := r.Group("/")
	pub.Use(mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware())
	handlers.RegisterHealthRoutes(pub)
	handlers.RegisterLandingRoutes(pub)
	// Swagger UI
	docs.SwaggerInfo.BasePath = "/"
	pub.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Payment v1 APIs: checkout initiation plus the gateway IPN listener.
	apiV1Payment := r.Group("/api/v1/payment")
	apiV1Payment.Use(mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware())
	handlers.RegisterPaymentV1Routes(apiV1Payment, co, n)

	// Admin APIs behind JWT auth
	admin := r.Group("/api/v1/admin")
	admin.Use(mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware(), mw.AdminAuthMiddleware(cfg.AdminAuth.JWTSecret))
	handlers.RegisterAdminRoutes(admin, ent, logs, stats, cfg)
}

func runServer(lc fx.Lifecycle, log *zap.SugaredLogger, cfg *cfgpkg.Config, r *gin.Engine) {
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 5 * time.Second}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting HTTP server", "addr", addr)
			go func() {
				if err := srv.ListenAndServe(); err != nil {
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
