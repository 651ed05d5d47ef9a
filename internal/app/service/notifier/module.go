package notifier

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/routina/payments/internal/app/service/callbacklog"
	"github.com/routina/payments/internal/app/service/entitlement"
	"github.com/routina/payments/internal/platform/sslcommerz"
	"github.com/routina/payments/pkg/config"
)

var Module = fx.Options(
	fx.Provide(func(cfg *config.Config, gw *sslcommerz.Client, store *entitlement.Service, logs *callbacklog.Service, log *zap.SugaredLogger) *Service {
		return New(cfg, gw, store, logs, log)
	}),
)
