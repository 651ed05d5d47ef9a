package sslcommerz

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/routina/payments/pkg/config"
)

func NewFromConfig(cfg *config.Config, log *zap.SugaredLogger) (*Client, error) {
	return NewClient(&Options{
		StoreID:       cfg.Gateway.StoreID,
		StorePassword: cfg.Gateway.StorePassword,
		Sandbox:       cfg.Gateway.Sandbox,
		Timeout:       cfg.Gateway.Timeout,
	}, log)
}

var Module = fx.Options(
	fx.Provide(NewFromConfig),
)
