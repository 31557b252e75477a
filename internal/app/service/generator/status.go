package generator

import (
	"github.com/samber/lo"

	"github.com/fatflowers/saasgen/internal/models"
)

// ReconcileStatus sets IsActive on every customer: true iff the customer owns
// at least one subscription without an end date. It is idempotent.
func ReconcileStatus(customers []*models.Customer, subscriptions []*models.Subscription) {
	open := lo.Keyify(lo.FilterMap(subscriptions, func(s *models.Subscription, _ int) (string, bool) {
		return s.CustomerID, s.Open()
	}))
	for _, c := range customers {
		_, c.IsActive = open[c.ID]
	}
}
