package checkout

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/routina/payments/internal/platform/sslcommerz"
	"github.com/routina/payments/pkg/config"
)

var Module = fx.Options(
	fx.Provide(func(cfg *config.Config, gw *sslcommerz.Client, log *zap.SugaredLogger) *Service {
		return New(cfg, gw, log)
	}),
)
