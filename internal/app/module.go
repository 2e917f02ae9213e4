package app

import (
	"time"

	"go.uber.org/fx"

	"github.com/shulefund/payments/internal/app/api/server"
	"github.com/shulefund/payments/internal/app/service/acklog"
	"github.com/shulefund/payments/internal/app/service/donation"
	"github.com/shulefund/payments/internal/app/service/orchestrator"
	"github.com/shulefund/payments/internal/app/service/poller"
	"github.com/shulefund/payments/internal/platform/backend"
	"github.com/shulefund/payments/internal/platform/db"
	"github.com/shulefund/payments/pkg/config"
	"github.com/shulefund/payments/pkg/logger"
	"github.com/shulefund/payments/pkg/metrics"
)

const (
	DefaultStartTimeout = 15 * time.Second
	DefaultStopTimeout  = 10 * time.Second
)

var Module = fx.Options(
	logger.Module,
	config.Module,
	metrics.Module,
	db.Module,
	backend.Module,
	orchestrator.Module,
	poller.Module,
	donation.Module,
	acklog.Module,
	server.Module,
)
