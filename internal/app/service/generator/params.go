package generator

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fatflowers/saasgen/pkg/config"
	"github.com/fatflowers/saasgen/pkg/types"
)

// daysPerMonth is the length of one tenure month.
const daysPerMonth = 30

type Segment struct {
	Name             types.Segment
	Weight           float64
	ChurnProbability float64
}

type Plan struct {
	Name         types.PlanType
	MonthlyPrice decimal.Decimal
}

// Range is an inclusive range of whole currency units.
type Range struct {
	Min int64
	Max int64
}

type CostParams struct {
	Infra              Range
	Marketing          Range
	Support            Range
	SeasonalMultiplier decimal.Decimal
	SeasonalMonths     []time.Month
}

func (c CostParams) seasonal(m time.Month) bool {
	for _, sm := range c.SeasonalMonths {
		if sm == m {
			return true
		}
	}
	return false
}

// Params are validated generation inputs. Segments and Plans are ordered
// slices so that draws are stable across runs.
type Params struct {
	Customers int
	Seed      uint64
	// Start and End bound the window, both inclusive.
	Start   types.Date
	End     types.Date
	Workers int

	MaxStartDelayDays  int
	MinTenureMonths    int
	MaxTenureMonths    int
	BillingCycleDays   int
	PaymentFailureRate float64

	Segments  []Segment
	Plans     []Plan
	Countries []string
	Channels  []string
	Costs     CostParams
}

// DefaultParams mirrors the default configuration.
func DefaultParams() *Params {
	p, err := ParamsFromConfig(config.Default().Generator)
	if err != nil {
		panic(err)
	}
	return p
}

// ParamsFromConfig converts and validates raw configuration.
func ParamsFromConfig(c config.GeneratorConfig) (*Params, error) {
	var errs []error
	p := &Params{
		Customers:          c.Customers,
		Seed:               c.Seed,
		Workers:            c.Workers,
		MaxStartDelayDays:  c.MaxStartDelayDays,
		MinTenureMonths:    c.MinTenureMonths,
		MaxTenureMonths:    c.MaxTenureMonths,
		BillingCycleDays:   c.BillingCycleDays,
		PaymentFailureRate: c.PaymentFailureRate,
		Countries:          c.Countries,
		Channels:           c.Channels,
		Costs: CostParams{
			Infra:     Range(c.Costs.Infra),
			Marketing: Range(c.Costs.Marketing),
			Support:   Range(c.Costs.Support),
		},
	}

	var err error
	if p.Start, err = types.ParseDate(c.StartDate); err != nil {
		errs = append(errs, configErr("start_date", "%v", err))
	}
	if p.End, err = types.ParseDate(c.EndDate); err != nil {
		errs = append(errs, configErr("end_date", "%v", err))
	}
	for _, s := range c.Segments {
		p.Segments = append(p.Segments, Segment{Name: types.Segment(s.Name), Weight: s.Weight, ChurnProbability: s.ChurnProbability})
	}
	for _, pl := range c.Plans {
		price, err := decimal.NewFromString(pl.MonthlyPrice)
		if err != nil {
			errs = append(errs, configErr("plans."+pl.Name, "invalid monthly price %q", pl.MonthlyPrice))
			continue
		}
		p.Plans = append(p.Plans, Plan{Name: types.PlanType(pl.Name), MonthlyPrice: price})
	}
	if p.Costs.SeasonalMultiplier, err = decimal.NewFromString(c.Costs.SeasonalMultiplier); err != nil {
		errs = append(errs, configErr("costs.seasonal_multiplier", "invalid multiplier %q", c.Costs.SeasonalMultiplier))
	}
	for _, m := range c.Costs.SeasonalMonths {
		p.Costs.SeasonalMonths = append(p.Costs.SeasonalMonths, time.Month(m))
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate reports every configuration problem at once. The returned error
// matches ErrInvalidConfig.
func (p *Params) Validate() error {
	if p == nil {
		return configErr("params", "missing")
	}
	var errs []error
	add := func(field, format string, args ...any) {
		errs = append(errs, configErr(field, format, args...))
	}

	if p.Customers <= 0 {
		add("customers", "must be positive, got %d", p.Customers)
	}
	switch {
	case p.Start.IsZero() || p.End.IsZero():
		add("window", "start and end dates are required")
	case !p.End.After(p.Start):
		// at least two days so a subscription can start before the window end
		add("window", "end %s must be after start %s", p.End, p.Start)
	}
	if p.Workers < 1 {
		add("workers", "must be at least 1, got %d", p.Workers)
	}
	if p.MaxStartDelayDays < 0 {
		add("max_start_delay_days", "must not be negative, got %d", p.MaxStartDelayDays)
	}
	if p.MinTenureMonths < 1 || p.MaxTenureMonths < p.MinTenureMonths {
		add("tenure", "need 1 <= min <= max, got [%d, %d]", p.MinTenureMonths, p.MaxTenureMonths)
	}
	if p.BillingCycleDays <= 0 {
		add("billing_cycle_days", "must be positive, got %d", p.BillingCycleDays)
	}
	if p.PaymentFailureRate < 0 || p.PaymentFailureRate > 1 {
		add("payment_failure_rate", "must be within [0, 1], got %v", p.PaymentFailureRate)
	}

	if len(p.Segments) == 0 {
		add("segments", "at least one segment is required")
	}
	var totalWeight float64
	seen := make(map[types.Segment]bool, len(p.Segments))
	for _, s := range p.Segments {
		if !s.Name.Valid() {
			add("segments", "unknown segment %q", s.Name)
		}
		if seen[s.Name] {
			add("segments", "duplicate segment %q", s.Name)
		}
		seen[s.Name] = true
		if s.Weight < 0 {
			add("segments."+string(s.Name), "weight must not be negative, got %v", s.Weight)
		}
		if s.ChurnProbability < 0 || s.ChurnProbability > 1 {
			add("segments."+string(s.Name), "churn probability must be within [0, 1], got %v", s.ChurnProbability)
		}
		totalWeight += s.Weight
	}
	if len(p.Segments) > 0 && totalWeight <= 0 {
		add("segments", "weights must sum to a positive value")
	}

	if len(p.Plans) == 0 {
		add("plans", "at least one plan is required")
	}
	for _, pl := range p.Plans {
		if !pl.Name.Valid() {
			add("plans", "unknown plan %q", pl.Name)
		}
		if !pl.MonthlyPrice.IsPositive() {
			add("plans."+string(pl.Name), "monthly price must be positive, got %s", pl.MonthlyPrice)
		}
	}

	validateCandidates(add, "countries", p.Countries)
	validateCandidates(add, "channels", p.Channels)

	validateRange(add, "costs.infra", p.Costs.Infra)
	validateRange(add, "costs.marketing", p.Costs.Marketing)
	validateRange(add, "costs.support", p.Costs.Support)
	if p.Costs.SeasonalMultiplier.LessThan(decimal.NewFromInt(1)) {
		add("costs.seasonal_multiplier", "must be at least 1, got %s", p.Costs.SeasonalMultiplier)
	}
	for _, m := range p.Costs.SeasonalMonths {
		if m < time.January || m > time.December {
			add("costs.seasonal_months", "invalid month %d", m)
		}
	}

	return errors.Join(errs...)
}

func validateCandidates(add func(string, string, ...any), field string, values []string) {
	if len(values) == 0 {
		add(field, "candidate set is empty")
		return
	}
	for _, v := range values {
		if v == "" {
			add(field, "contains an empty value")
			return
		}
	}
}

func validateRange(add func(string, string, ...any), field string, r Range) {
	if r.Min <= 0 || r.Max < r.Min {
		add(field, "need 0 < min <= max, got [%d, %d]", r.Min, r.Max)
	}
}

func (p *Params) churnProbability(s types.Segment) (float64, bool) {
	for _, seg := range p.Segments {
		if seg.Name == s {
			return seg.ChurnProbability, true
		}
	}
	return 0, false
}
