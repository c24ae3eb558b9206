package trialsweep

import (
	"context"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/racebio/promoter/pkg/config"
)

var Module = fx.Options(
	fx.Provide(NewService),
	fx.Invoke(registerTicker),
)

// registerTicker runs the sweep on an in-process interval when configured.
// External schedulers hitting the HTTP trigger remain the primary mechanism;
// the ticker is for single-instance deployments without one.
func registerTicker(lc fx.Lifecycle, log *zap.SugaredLogger, cfg *config.Config, svc *Service) {
	if cfg.Sweep.Interval <= 0 {
		return
	}

	done := make(chan struct{})
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("trial sweep ticker started", "interval", cfg.Sweep.Interval)
			go func() {
				ticker := time.NewTicker(cfg.Sweep.Interval)
				defer ticker.Stop()
				for {
					select {
					case <-ticker.C:
						if _, err := svc.Run(context.Background()); err != nil {
							log.Errorf("scheduled trial sweep failed: %v", err)
						}
					case <-done:
						return
					}
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			close(done)
			return nil
		},
	})
}
