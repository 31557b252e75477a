package models

import (
	"github.com/fatflowers/saasgen/pkg/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// Dataset is the complete output of one generation run.
type Dataset struct {
	Customers     []*Customer
	Subscriptions []*Subscription
	Payments      []*Payment
	Costs         []*Cost
}

// Summary holds headline figures of a dataset, printed after a run and
// returned by the preview API.
type Summary struct {
	Customers       int             `json:"customers"`
	ActiveCustomers int             `json:"active_customers"`
	Subscriptions   int             `json:"subscriptions"`
	Churned         int             `json:"churned_subscriptions"`
	Payments        int             `json:"payments"`
	FailedPayments  int             `json:"failed_payments"`
	Revenue         decimal.Decimal `json:"revenue"`
	CostMonths      int             `json:"cost_months"`
	TotalCosts      decimal.Decimal `json:"total_costs"`
}

func (d *Dataset) Summary() Summary {
	if d == nil {
		return Summary{}
	}
	revenue := lo.Reduce(d.Payments, func(acc decimal.Decimal, p *Payment, _ int) decimal.Decimal {
		return acc.Add(p.Amount)
	}, decimal.Zero)
	costs := lo.Reduce(d.Costs, func(acc decimal.Decimal, c *Cost, _ int) decimal.Decimal {
		return acc.Add(c.Total())
	}, decimal.Zero)
	return Summary{
		Customers:       len(d.Customers),
		ActiveCustomers: lo.CountBy(d.Customers, func(c *Customer) bool { return c.IsActive }),
		Subscriptions:   len(d.Subscriptions),
		Churned:         lo.CountBy(d.Subscriptions, func(s *Subscription) bool { return !s.Open() }),
		Payments:        len(d.Payments),
		FailedPayments:  lo.CountBy(d.Payments, func(p *Payment) bool { return p.Status == types.PaymentStatusFailed }),
		Revenue:         revenue,
		CostMonths:      len(d.Costs),
		TotalCosts:      costs,
	}
}
