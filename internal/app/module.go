package app

import (
	"time"

	"go.uber.org/fx"

	"github.com/fatflowers/saasgen/internal/app/api/server"
	"github.com/fatflowers/saasgen/internal/app/service/dataset"
	"github.com/fatflowers/saasgen/internal/app/service/generator"
	"github.com/fatflowers/saasgen/internal/app/service/loader"
	"github.com/fatflowers/saasgen/internal/app/service/report"
	"github.com/fatflowers/saasgen/internal/platform/db"
	"github.com/fatflowers/saasgen/pkg/config"
	"github.com/fatflowers/saasgen/pkg/logger"
	"github.com/fatflowers/saasgen/pkg/metrics"
)

const (
	DefaultStartTimeout = 15 * time.Second
	DefaultStopTimeout  = 10 * time.Second
)

// CoreModule is everything needed to generate and write a dataset.
var CoreModule = fx.Options(
	logger.Module,
	config.Module,
	metrics.Module,
	generator.Module,
	dataset.Module,
)

// DatabaseModule adds the database connection and the services using it.
var DatabaseModule = fx.Options(
	db.Module,
	loader.Module,
	report.Module,
)

// Module runs the HTTP service.
var Module = fx.Options(
	CoreModule,
	DatabaseModule,
	server.Module,
)
