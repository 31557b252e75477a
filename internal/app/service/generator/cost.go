package generator

import (
	"math/rand/v2"

	"github.com/shopspring/decimal"

	"github.com/fatflowers/saasgen/internal/models"
)

// GenerateCosts emits one record per calendar month touched by the window.
// Marketing is drawn from its base range first and scaled by the seasonal
// multiplier in seasonal months; the unscaled draw is kept in MarketingBase.
func GenerateCosts(r *rand.Rand, p *Params) []*models.Cost {
	last := p.End.FirstOfMonth()
	var costs []*models.Cost
	for m := p.Start.FirstOfMonth(); !m.After(last); m = m.AddMonths(1) {
		base := decimal.NewFromInt(int64Between(r, p.Costs.Marketing.Min, p.Costs.Marketing.Max))
		infra := decimal.NewFromInt(int64Between(r, p.Costs.Infra.Min, p.Costs.Infra.Max))
		support := decimal.NewFromInt(int64Between(r, p.Costs.Support.Min, p.Costs.Support.Max))

		marketing := base
		if p.Costs.seasonal(m.Month()) {
			marketing = base.Mul(p.Costs.SeasonalMultiplier).Round(2)
		}
		costs = append(costs, &models.Cost{
			Month:         m.MonthString(),
			InfraCost:     infra,
			MarketingCost: marketing,
			SupportCost:   support,
			MarketingBase: base,
		})
	}
	return costs
}
