package app

import (
	"time"

	"go.uber.org/fx"

	"github.com/racebio/promoter/internal/app/api/server"
	"github.com/racebio/promoter/internal/app/service/ambassador"
	"github.com/racebio/promoter/internal/app/service/promocode"
	"github.com/racebio/promoter/internal/app/service/redemption"
	"github.com/racebio/promoter/internal/app/service/statistics"
	"github.com/racebio/promoter/internal/app/service/trialsweep"
	"github.com/racebio/promoter/internal/platform/db"
	"github.com/racebio/promoter/pkg/config"
	"github.com/racebio/promoter/pkg/logger"
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
	promocode.Module,
	redemption.Module,
	ambassador.Module,
	statistics.Module,
	trialsweep.Module,
)
