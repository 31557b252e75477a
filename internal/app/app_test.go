package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/fatflowers/saasgen/internal/app/service/dataset"
	"github.com/fatflowers/saasgen/internal/app/service/generator"
	"github.com/fatflowers/saasgen/internal/app/service/loader"
	"github.com/fatflowers/saasgen/internal/app/service/report"
	"github.com/fatflowers/saasgen/pkg/config"
	"github.com/fatflowers/saasgen/pkg/logctx"
)

func TestModules_Validate(t *testing.T) {
	require.NoError(t, fx.ValidateApp(CoreModule, JobsModule, fx.Invoke(func(*Jobs) {})))
	require.NoError(t, fx.ValidateApp(CoreModule, DatabaseModule, JobsModule, fx.Invoke(func(*Jobs) {})))
	require.NoError(t, fx.ValidateApp(Module))
}

func TestOverrides_Apply(t *testing.T) {
	cfg := config.Default()
	seed, customers := uint64(7), 250
	got := Overrides{Seed: &seed, Customers: &customers, OutDir: "/tmp/out", Driver: "sqlite"}.Apply(cfg)

	assert.Equal(t, uint64(7), got.Generator.Seed)
	assert.Equal(t, 250, got.Generator.Customers)
	assert.Equal(t, "/tmp/out", got.Output.Dir)
	assert.Equal(t, "sqlite", got.Database.Driver)
	assert.Equal(t, cfg.Database.DSN, got.Database.DSN)
	assert.Equal(t, cfg.Generator.Workers, got.Generator.Workers)

	// the input is not modified
	assert.Equal(t, uint64(42), cfg.Generator.Seed)
	assert.Equal(t, "./data", cfg.Output.Dir)
}

func newJobs(t *testing.T, cfg *config.Config) *Jobs {
	t.Helper()
	log := zaptest.NewLogger(t).Sugar()
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())),
		&gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	ld, err := loader.New(log, db, cfg)
	require.NoError(t, err)
	return NewJobs(jobParams{
		Log:       log,
		Cfg:       cfg,
		Generator: generator.New(log, nil),
		Writer:    dataset.NewWriter(log),
		Loader:    ld,
		Reports:   report.New(log, db),
		Exporter:  report.NewExporter(log, cfg),
	})
}

func TestJobs_GenerateThenLoad(t *testing.T) {
	cfg := config.Default()
	cfg.Generator.Customers = 60
	cfg.Output.Dir = filepath.Join(t.TempDir(), "data")
	j := newJobs(t, cfg)
	ctx := j.WithRun(context.Background(), "test")
	require.NotEmpty(t, logctx.RunID(ctx))

	sum, err := j.Generate(ctx)
	require.NoError(t, err)
	assert.Equal(t, 60, sum.Customers)
	for _, f := range dataset.Files {
		_, err := os.Stat(filepath.Join(cfg.Output.Dir, f))
		require.NoError(t, err, f)
	}

	v, err := j.Load(ctx, cfg.Output.Dir)
	require.NoError(t, err)
	assert.Equal(t, int64(60), v.Customers)
	assert.Equal(t, int64(sum.Payments), v.Payments)
	assert.Equal(t, int64(sum.CostMonths), v.Costs)

	// without a bundle the dataset is generated in memory; same config, same rows
	v2, err := j.Load(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, *v, *v2)
}

func TestJobs_LoadMissingBundle(t *testing.T) {
	j := newJobs(t, config.Default())
	_, err := j.Load(context.Background(), filepath.Join(t.TempDir(), "missing"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestJobs_InvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Generator.Customers = 0
	_, err := newJobs(t, cfg).Generate(context.Background())
	require.ErrorIs(t, err, generator.ErrInvalidConfig)
}

func TestJobs_ReportWithoutTables(t *testing.T) {
	cfg := config.Default()
	cfg.Report.Dir = t.TempDir()
	// nothing was loaded, so every query fails
	_, err := newJobs(t, cfg).Report(context.Background())
	require.ErrorIs(t, err, report.ErrAllReportsFailed)
}

func TestJobs_NotConfigured(t *testing.T) {
	log := zaptest.NewLogger(t).Sugar()
	j := NewJobs(jobParams{Log: log, Cfg: config.Default(), Generator: generator.New(log, nil), Writer: dataset.NewWriter(log)})
	_, err := j.Load(context.Background(), "")
	require.Error(t, err)
	_, err = j.Report(context.Background())
	require.Error(t, err)
}
