package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/fatflowers/saasgen/internal/app/service/dataset"
	"github.com/fatflowers/saasgen/internal/app/service/generator"
	"github.com/fatflowers/saasgen/internal/app/service/loader"
	"github.com/fatflowers/saasgen/internal/app/service/report"
	"github.com/fatflowers/saasgen/internal/models"
	"github.com/fatflowers/saasgen/pkg/config"
	"github.com/fatflowers/saasgen/pkg/logctx"
	"github.com/fatflowers/saasgen/pkg/tool"
)

// Jobs are the batch operations behind the CLI commands.
type Jobs struct {
	log       *zap.SugaredLogger
	cfg       *config.Config
	generator *generator.Generator
	writer    *dataset.Writer
	loader    *loader.Loader
	reports   *report.Service
	exporter  *report.Exporter
}

type jobParams struct {
	fx.In

	Log       *zap.SugaredLogger
	Cfg       *config.Config
	Generator *generator.Generator
	Writer    *dataset.Writer
	Loader    *loader.Loader   `optional:"true"`
	Reports   *report.Service  `optional:"true"`
	Exporter  *report.Exporter `optional:"true"`
}

func NewJobs(p jobParams) *Jobs {
	return &Jobs{
		log:       p.Log,
		cfg:       p.Cfg,
		generator: p.Generator,
		writer:    p.Writer,
		loader:    p.Loader,
		reports:   p.Reports,
		exporter:  p.Exporter,
	}
}

var JobsModule = fx.Provide(NewJobs)

// WithRun tags ctx with a fresh run id used by every log line of the job.
func (j *Jobs) WithRun(ctx context.Context, job string) context.Context {
	runID := tool.GenerateUUIDV7()
	ctx = logctx.WithRunID(ctx, runID)
	return logctx.WithLogger(ctx, j.log.With("run_id", runID, "job", job))
}

func (j *Jobs) dataset(ctx context.Context) (*models.Dataset, error) {
	p, err := generator.ParamsFromConfig(j.cfg.Generator)
	if err != nil {
		return nil, err
	}
	return j.generator.Generate(ctx, p)
}

// Generate builds a dataset from the configuration and writes the CSV bundle
// to the output directory.
func (j *Jobs) Generate(ctx context.Context) (*models.Summary, error) {
	ds, err := j.dataset(ctx)
	if err != nil {
		return nil, err
	}
	if err := j.writer.Write(ctx, j.cfg.Output.Dir, ds); err != nil {
		return nil, err
	}
	sum := ds.Summary()
	return &sum, nil
}

// Load loads the bundle in from, or a freshly generated dataset when from is
// empty, into the database.
func (j *Jobs) Load(ctx context.Context, from string) (*loader.Verification, error) {
	if j.loader == nil {
		return nil, errors.New("loader is not configured")
	}
	log := logctx.FromCtx(ctx, j.log)
	var (
		ds  *models.Dataset
		err error
	)
	if from != "" {
		log.Infow("reading dataset bundle", "dir", from)
		ds, err = dataset.Read(from)
	} else {
		ds, err = j.dataset(ctx)
	}
	if err != nil {
		return nil, err
	}
	return j.loader.Load(ctx, ds)
}

// Report runs every KPI query and exports the results to the report directory.
func (j *Jobs) Report(ctx context.Context) (*report.Bundle, error) {
	if j.reports == nil || j.exporter == nil {
		return nil, errors.New("reports are not configured")
	}
	res, err := j.reports.RunAll(ctx)
	if err != nil {
		return nil, err
	}
	if n := len(res.Failures); n > 0 {
		logctx.FromCtx(ctx, j.log).Warnw("some reports failed", "failed", n, "succeeded", len(res.Tables))
	}
	b, err := j.exporter.ExportBundle(ctx, j.cfg.Report.Dir, res)
	if err != nil {
		return nil, fmt.Errorf("export reports: %w", err)
	}
	return b, nil
}
