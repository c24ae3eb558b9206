package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/racebio/promoter/docs"
	"github.com/racebio/promoter/internal/app/api/handlers"
	mw "github.com/racebio/promoter/internal/app/api/middleware"
	ambsvc "github.com/racebio/promoter/internal/app/service/ambassador"
	"github.com/racebio/promoter/internal/app/service/promocode"
	"github.com/racebio/promoter/internal/app/service/redemption"
	"github.com/racebio/promoter/internal/app/service/statistics"
	"github.com/racebio/promoter/internal/app/service/trialsweep"
	cfgpkg "github.com/racebio/promoter/pkg/config"
	metrics "github.com/racebio/promoter/pkg/metrics"
)

func newEngine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	// Tracing only here; request logger & access log are attached per group
	r.Use(mw.TraceMiddleware())
	return r
}

func registerRoutes(r *gin.Engine, log *zap.SugaredLogger, cfg *cfgpkg.Config,
	reg *promocode.Registry, eng *redemption.Engine, amb *ambsvc.Service,
	stats *statistics.Service, sweep *trialsweep.Service) {

	if cfg != nil && cfg.MetricsAddr != "" {
		p := metrics.NewPrometheus(log)
		p.SetListenAddress(cfg.MetricsAddr)
		p.Use(r)
		log.Infow("metrics started", "addr", cfg.MetricsAddr)
	}

	// Public group: request logger + access log
	pub := r.Group("/")
	pub.Use(mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware())
	handlers.RegisterHealthRoutes(pub)
	// Swagger UI
	docs.SwaggerInfo.BasePath = "/"
	pub.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	apiV1 := r.Group("/api/v1")
	apiV1.Use(mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware())
	handlers.RegisterPromoRoutes(apiV1, reg, eng)
	handlers.RegisterPlanRoutes(apiV1, eng)

	admin := apiV1.Group("/admin")
	if cfg.Admin.JWTSecret == "" {
		log.Warnw("admin jwt secret is not configured; tokens signed with an empty key will validate")
	}
	admin.Use(mw.AdminAuthMiddleware(cfg.Admin.JWTSecret))
	handlers.RegisterAdminRoutes(admin, amb, stats)

	scheduler := apiV1.Group("/scheduler")
	if cfg.Sweep.Secret == "" {
		log.Warnw("sweep secret is not configured; the scheduler endpoint is open")
	}
	scheduler.Use(mw.SweepAuthMiddleware(cfg.Sweep.Secret))
	handlers.RegisterSchedulerRoutes(scheduler, sweep)
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
