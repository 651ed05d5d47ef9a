package app

import (
	"time"

	"github.com/routina/payments/internal/app/api/server"
	"github.com/routina/payments/internal/app/service/callbacklog"
	"github.com/routina/payments/internal/app/service/checkout"
	"github.com/routina/payments/internal/app/service/entitlement"
	"github.com/routina/payments/internal/app/service/notifier"
	"github.com/routina/payments/internal/app/service/statistics"
	"github.com/routina/payments/internal/platform/db"
	"github.com/routina/payments/internal/platform/sslcommerz"
	"github.com/routina/payments/pkg/config"
	"github.com/routina/payments/pkg/logger"

	"go.uber.org/fx"
)

const (
	DefaultStartTimeout = 15 * time.Second
	DefaultStopTimeout  = 10 * time.Second
)

var Module = fx.Options(
	logger.Module,
	config.Module,
	db.Module,
	server.Module,
	sslcommerz.Module,
	callbacklog.Module,
	entitlement.Module,
	notifier.Module,
	checkout.Module,
	statistics.Module,
)
