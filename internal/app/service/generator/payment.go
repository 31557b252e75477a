package generator

import (
	"math/rand/v2"

	"github.com/shopspring/decimal"

	"github.com/fatflowers/saasgen/internal/models"
	"github.com/fatflowers/saasgen/pkg/types"
)

// NewPayments emits one payment per billing cycle of s, from its start date
// through min(end date, window end) inclusive. Each cycle fails independently
// with p.PaymentFailureRate; failed payments are kept with a zero amount.
// IDs are assigned by the caller once all payments are known.
func NewPayments(r *rand.Rand, p *Params, s *models.Subscription) []*models.Payment {
	last := types.MinDate(s.EndDate.OrElse(p.End), p.End)
	var payments []*models.Payment
	for d := s.StartDate; !d.After(last); d = d.AddDays(p.BillingCycleDays) {
		status := types.PaymentStatusSuccess
		amount := s.MonthlyPrice
		if chance(r, p.PaymentFailureRate) {
			status = types.PaymentStatusFailed
			amount = decimal.Zero
		}
		payments = append(payments, &models.Payment{
			CustomerID:  s.CustomerID,
			PaymentDate: d,
			Amount:      amount,
			Status:      status,
		})
	}
	return payments
}
