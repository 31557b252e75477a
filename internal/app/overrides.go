package app

import (
	"go.uber.org/fx"

	"github.com/fatflowers/saasgen/pkg/config"
)

// Overrides are command-line values that take precedence over the config
// file and environment. Zero values leave the configuration untouched.
type Overrides struct {
	Seed      *uint64
	Customers *int
	Workers   *int
	OutDir    string
	ReportDir string
	DSN       string
	Driver    string
}

// Apply returns a copy of cfg with the overrides applied.
func (o Overrides) Apply(cfg *config.Config) *config.Config {
	c := *cfg
	if o.Seed != nil {
		c.Generator.Seed = *o.Seed
	}
	if o.Customers != nil {
		c.Generator.Customers = *o.Customers
	}
	if o.Workers != nil {
		c.Generator.Workers = *o.Workers
	}
	if o.OutDir != "" {
		c.Output.Dir = o.OutDir
	}
	if o.ReportDir != "" {
		c.Report.Dir = o.ReportDir
	}
	if o.DSN != "" {
		c.Database.DSN = o.DSN
	}
	if o.Driver != "" {
		c.Database.Driver = o.Driver
	}
	return &c
}

// Decorate installs the overrides into an fx graph.
func (o Overrides) Decorate() fx.Option {
	return fx.Decorate(o.Apply)
}
