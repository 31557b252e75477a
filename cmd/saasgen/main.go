package main

// @title           saasgen API
// @version         1.0
// @description     Synthetic SaaS dataset previews and KPI reports.

// @host      localhost:8888
// @BasePath  /

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/fatflowers/saasgen/internal/app"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type rootFlags struct {
	seed      uint64
	customers int
	workers   int
	out       string
	dsn       string
	driver    string
}

func (f *rootFlags) overrides(cmd *cobra.Command) app.Overrides {
	o := app.Overrides{OutDir: f.out, DSN: f.dsn, Driver: f.driver}
	if cmd.Flags().Changed("seed") {
		o.Seed = &f.seed
	}
	if cmd.Flags().Changed("customers") {
		o.Customers = &f.customers
	}
	if cmd.Flags().Changed("workers") {
		o.Workers = &f.workers
	}
	return o
}

func newRootCmd() *cobra.Command {
	f := &rootFlags{}
	root := &cobra.Command{
		Use:           "saasgen",
		Short:         "Synthetic SaaS dataset generator",
		Version:       readVersionFromEnv(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.Uint64Var(&f.seed, "seed", 0, "random seed (default from config)")
	pf.IntVar(&f.customers, "customers", 0, "number of customers (default from config)")
	pf.IntVar(&f.workers, "workers", 0, "parallel lifecycle workers (default from config)")
	pf.StringVar(&f.out, "out", "", "dataset directory (default from config)")
	pf.StringVar(&f.dsn, "dsn", "", "database DSN (default from config)")
	pf.StringVar(&f.driver, "driver", "", "database driver: postgres, mysql or sqlite")

	root.AddCommand(newGenerateCmd(f), newLoadCmd(f), newReportCmd(f), newServeCmd(f))
	return root
}

func newGenerateCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "generate",
		Short: "Generate a dataset and write it as CSV files",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJob(cmd, f.overrides(cmd), false, func(ctx context.Context, j *app.Jobs) error {
				sum, err := j.Generate(ctx)
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				fmt.Fprintf(w, "customers:     %d (%d active)\n", sum.Customers, sum.ActiveCustomers)
				fmt.Fprintf(w, "subscriptions: %d (%d churned)\n", sum.Subscriptions, sum.Churned)
				fmt.Fprintf(w, "payments:      %d (%d failed), revenue %s\n", sum.Payments, sum.FailedPayments, sum.Revenue.StringFixed(2))
				fmt.Fprintf(w, "cost months:   %d, total %s\n", sum.CostMonths, sum.TotalCosts.StringFixed(2))
				return nil
			})
		},
	}
}

func newLoadCmd(f *rootFlags) *cobra.Command {
	var from string
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Load a dataset into the database and verify it",
		Long:  "Loads the CSV bundle given by --from, or a freshly generated dataset, into the configured database.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJob(cmd, f.overrides(cmd), true, func(ctx context.Context, j *app.Jobs) error {
				v, err := j.Load(ctx, from)
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				fmt.Fprintf(w, "customers:     %d\n", v.Customers)
				fmt.Fprintf(w, "subscriptions: %d\n", v.Subscriptions)
				fmt.Fprintf(w, "payments:      %d\n", v.Payments)
				fmt.Fprintf(w, "costs:         %d\n", v.Costs)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "CSV bundle directory to load instead of generating")
	return cmd
}

func newReportCmd(f *rootFlags) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Run the KPI queries and export CSV and spreadsheet reports",
		RunE: func(cmd *cobra.Command, args []string) error {
			o := f.overrides(cmd)
			o.ReportDir = dir
			return runJob(cmd, o, true, func(ctx context.Context, j *app.Jobs) error {
				b, err := j.Report(ctx)
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				fmt.Fprintf(w, "csv files: %d\n", len(b.CSV))
				if b.Excel != "" {
					fmt.Fprintf(w, "excel:     %s\n", b.Excel)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "report output directory (default from config)")
	return cmd
}

func newServeCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(f.overrides(cmd))
		},
	}
}

// runJob starts an fx app with the modules a batch job needs, runs job and
// stops the app. SIGINT/SIGTERM cancel the job context.
func runJob(cmd *cobra.Command, o app.Overrides, withDB bool, job func(ctx context.Context, j *app.Jobs) error) error {
	var jobs *app.Jobs
	opts := []fx.Option{app.CoreModule, app.JobsModule, o.Decorate(), fx.Populate(&jobs)}
	if withDB {
		opts = append(opts, app.DatabaseModule)
	}
	a := fx.New(opts...)
	if err := a.Err(); err != nil {
		return err
	}

	startCtx, cancel := context.WithTimeout(context.Background(), app.DefaultStartTimeout)
	defer cancel()
	if err := a.Start(startCtx); err != nil {
		return fmt.Errorf("failed to start app: %w", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), app.DefaultStopTimeout)
		defer cancel()
		_ = a.Stop(stopCtx)
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return job(jobs.WithRun(ctx, cmd.Name()), jobs)
}

func runServe(o app.Overrides) error {
	a := fx.New(app.Module, o.Decorate())
	startCtx, cancel := context.WithTimeout(context.Background(), app.DefaultStartTimeout)
	defer cancel()
	if err := a.Start(startCtx); err != nil {
		// Logging might not be ready; fallback to zap example
		zap.NewExample().Sugar().Errorf("failed to start app: %v", err)
		return err
	}

	// Block until signal
	sig := <-a.Wait()

	stopCtx, cancel2 := context.WithTimeout(context.Background(), app.DefaultStopTimeout)
	defer cancel2()
	if err := a.Stop(stopCtx); err != nil {
		return fmt.Errorf("failed to stop app: %w", err)
	}
	if sig.ExitCode != 0 {
		return fmt.Errorf("server exited with code %d", sig.ExitCode)
	}
	return nil
}

func readVersionFromEnv() string {
	if v := strings.TrimSpace(os.Getenv("APP_VERSION")); v != "" {
		return v
	}
	return "dev"
}
