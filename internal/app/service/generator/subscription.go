package generator

import (
	"fmt"
	"math/rand/v2"

	"github.com/fatflowers/saasgen/internal/models"
	"github.com/fatflowers/saasgen/pkg/tool"
	"github.com/fatflowers/saasgen/pkg/types"
)

// NewSubscription draws the single subscription of customer c from r.
//
// The start date is signup plus a uniform delay, capped at the day before the
// window end. A churned subscription ends after a uniform number of 30-day
// months, clamped to the window end; since start < p.End the clamped end is
// always after start.
func NewSubscription(r *rand.Rand, p *Params, c *models.Customer, index int) (*models.Subscription, error) {
	churnProbability, ok := p.churnProbability(c.Segment)
	if !ok {
		return nil, &InvariantError{Entity: "customer", ID: c.ID, Reason: fmt.Sprintf("unknown segment %q", c.Segment)}
	}

	plan := pick(r, p.Plans)
	start := c.SignupDate.AddDays(intBetween(r, 0, p.MaxStartDelayDays))
	if latest := p.End.AddDays(-1); start.After(latest) {
		start = latest
	}

	end := types.NoDate()
	if chance(r, churnProbability) {
		months := intBetween(r, p.MinTenureMonths, p.MaxTenureMonths)
		end = types.SomeDate(types.MinDate(start.AddDays(months*daysPerMonth), p.End))
	}

	s := &models.Subscription{
		ID:           tool.SequentialID("S", index, tool.IDWidth(p.Customers)),
		CustomerID:   c.ID,
		PlanType:     plan.Name,
		StartDate:    start,
		EndDate:      end,
		MonthlyPrice: plan.MonthlyPrice,
	}
	if err := checkSubscription(p, c, s); err != nil {
		return nil, err
	}
	return s, nil
}

func checkSubscription(p *Params, c *models.Customer, s *models.Subscription) error {
	violation := func(format string, args ...any) error {
		return &InvariantError{Entity: "subscription", ID: s.ID, Reason: fmt.Sprintf(format, args...)}
	}
	if s.StartDate.Before(c.SignupDate) {
		return violation("start %s before signup %s", s.StartDate, c.SignupDate)
	}
	if s.StartDate.After(c.SignupDate.AddDays(p.MaxStartDelayDays)) {
		return violation("start %s more than %d days after signup %s", s.StartDate, p.MaxStartDelayDays, c.SignupDate)
	}
	if end, ok := s.EndDate.Get(); ok {
		if !end.After(s.StartDate) {
			return violation("end %s not after start %s", end, s.StartDate)
		}
		if end.After(p.End) {
			return violation("end %s after window end %s", end, p.End)
		}
	}
	return nil
}
