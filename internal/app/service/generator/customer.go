package generator

import (
	"math/rand/v2"

	"github.com/fatflowers/saasgen/internal/models"
	"github.com/fatflowers/saasgen/pkg/tool"
)

// GenerateCustomers draws p.Customers customers from r. Signup dates are
// uniform over [p.Start, p.End-1d]: the last day of the window is never a
// signup date, so every customer can hold a subscription of at least one day
// inside the window. IsActive is provisional until ReconcileStatus runs.
func GenerateCustomers(r *rand.Rand, p *Params) []*models.Customer {
	width := tool.IDWidth(p.Customers)
	lastSignup := p.End.AddDays(-1)
	customers := make([]*models.Customer, 0, p.Customers)
	for i := range p.Customers {
		customers = append(customers, &models.Customer{
			ID:                 tool.SequentialID("C", i, width),
			SignupDate:         dateBetween(r, p.Start, lastSignup),
			Segment:            pickSegment(r, p.Segments),
			Country:            pick(r, p.Countries),
			AcquisitionChannel: pick(r, p.Channels),
			IsActive:           true,
		})
	}
	return customers
}
