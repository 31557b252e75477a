package generator

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fatflowers/saasgen/internal/models"
	"github.com/fatflowers/saasgen/pkg/logctx"
	"github.com/fatflowers/saasgen/pkg/metrics"
	"github.com/fatflowers/saasgen/pkg/tool"
)

const (
	StageCustomers = "customers"
	StageLifecycle = "subscriptions_payments"
	StageCosts     = "costs"
	StageStatus    = "status"
)

// Generator runs the generation pipeline:
// customers -> subscriptions -> {payments, status}, with costs alongside.
type Generator struct {
	log     *zap.SugaredLogger
	metrics *metrics.Generator
}

func New(log *zap.SugaredLogger, m *metrics.Generator) *Generator {
	return &Generator{log: log, metrics: m}
}

type lifecycle struct {
	subscription *models.Subscription
	payments     []*models.Payment
}

// Generate validates p and builds a complete dataset. Nothing is returned
// unless every stage succeeded.
func (g *Generator) Generate(ctx context.Context, p *Params) (*models.Dataset, error) {
	log := logctx.FromCtx(ctx, g.log)
	if err := p.Validate(); err != nil {
		g.metrics.Run("invalid_config")
		return nil, err
	}
	log.Infow("generating dataset",
		"customers", p.Customers,
		"seed", p.Seed,
		"window_start", p.Start.String(),
		"window_end", p.End.String(),
		"workers", p.Workers,
	)

	src := NewSource(p.Seed)
	ds := &models.Dataset{}
	eg, egCtx := errgroup.WithContext(ctx)

	// costs share nothing with the customer pipeline
	eg.Go(func() error {
		started := time.Now()
		ds.Costs = GenerateCosts(src.Costs(), p)
		g.metrics.ObserveStage(StageCosts, started)
		return nil
	})

	eg.Go(func() error {
		started := time.Now()
		ds.Customers = GenerateCustomers(src.Customers(), p)
		g.metrics.ObserveStage(StageCustomers, started)

		started = time.Now()
		lcs, err := g.lifecycles(egCtx, src, p, ds.Customers)
		if err != nil {
			return err
		}
		ds.Subscriptions, ds.Payments = flatten(lcs)
		g.metrics.ObserveStage(StageLifecycle, started)
		return nil
	})

	if err := eg.Wait(); err != nil {
		g.metrics.Run("failed")
		log.Errorw("generation aborted", "err", err)
		return nil, err
	}

	started := time.Now()
	ReconcileStatus(ds.Customers, ds.Subscriptions)
	g.metrics.ObserveStage(StageStatus, started)

	g.metrics.AddRows("customers", len(ds.Customers))
	g.metrics.AddRows("subscriptions", len(ds.Subscriptions))
	g.metrics.AddRows("payments", len(ds.Payments))
	g.metrics.AddRows("costs", len(ds.Costs))
	g.metrics.Run("ok")

	sum := ds.Summary()
	log.Infow("dataset ready",
		"customers", sum.Customers,
		"active_customers", sum.ActiveCustomers,
		"subscriptions", sum.Subscriptions,
		"payments", sum.Payments,
		"failed_payments", sum.FailedPayments,
		"cost_months", sum.CostMonths,
	)
	return ds, nil
}

// lifecycles builds subscription and payments for every customer. Each
// customer draws from its own stream, so the worker count does not change
// the result.
func (g *Generator) lifecycles(ctx context.Context, src Source, p *Params, customers []*models.Customer) ([]lifecycle, error) {
	out := make([]lifecycle, len(customers))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(p.Workers)
	for i, c := range customers {
		if egCtx.Err() != nil {
			break
		}
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			r := src.Lifecycle(i)
			s, err := NewSubscription(r, p, c, i)
			if err != nil {
				return err
			}
			out[i] = lifecycle{subscription: s, payments: NewPayments(r, p, s)}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("generation cancelled: %w", err)
	}
	return out, nil
}

func flatten(lcs []lifecycle) ([]*models.Subscription, []*models.Payment) {
	subs := make([]*models.Subscription, 0, len(lcs))
	var total int
	for _, lc := range lcs {
		total += len(lc.payments)
	}
	payments := make([]*models.Payment, 0, total)
	for _, lc := range lcs {
		subs = append(subs, lc.subscription)
		payments = append(payments, lc.payments...)
	}
	width := max(tool.IDWidth(total), tool.MinIDWidth+1)
	for i, pay := range payments {
		pay.ID = tool.SequentialID("P", i, width)
	}
	return subs, payments
}
