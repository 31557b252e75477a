package loader

import (
	"context"
	"errors"
	"fmt"

	"github.com/fatflowers/saasgen/internal/models"
	"github.com/fatflowers/saasgen/pkg/types"
)

// Verification holds row counts and referential checks of the loaded tables.
type Verification struct {
	Customers     int64 `json:"customers"`
	Subscriptions int64 `json:"subscriptions"`
	Payments      int64 `json:"payments"`
	Costs         int64 `json:"costs"`

	// rows whose customer_id has no matching customer
	OrphanSubscriptions int64 `json:"orphan_subscriptions"`
	OrphanPayments      int64 `json:"orphan_payments"`
}

func (l *Loader) Verify(ctx context.Context) (*Verification, error) {
	db := l.db.WithContext(ctx)
	v := &Verification{}
	counts := []struct {
		model any
		dst   *int64
	}{
		{&models.Customer{}, &v.Customers},
		{&models.Subscription{}, &v.Subscriptions},
		{&models.Payment{}, &v.Payments},
		{&models.Cost{}, &v.Costs},
	}
	for _, c := range counts {
		if err := db.Model(c.model).Count(c.dst).Error; err != nil {
			return nil, fmt.Errorf("count rows: %w", err)
		}
	}

	orphans := func(table string, dst *int64) error {
		return db.Table(table + " AS t").
			Joins("LEFT JOIN customers c ON c.customer_id = t.customer_id").
			Where("c.customer_id IS NULL").
			Count(dst).Error
	}
	if err := orphans("subscriptions", &v.OrphanSubscriptions); err != nil {
		return nil, fmt.Errorf("count orphan subscriptions: %w", err)
	}
	if err := orphans("payments", &v.OrphanPayments); err != nil {
		return nil, fmt.Errorf("count orphan payments: %w", err)
	}
	return v, nil
}

// Check compares v with the dataset that was loaded. Replace mode expects
// exact counts; upsert mode only requires every row to be present.
func (v *Verification) Check(ds *models.Dataset, mode types.LoadMode) error {
	var errs []error
	cmp := func(table string, got int64, want int) {
		ok := got == int64(want)
		if mode == types.LoadModeUpsert {
			ok = got >= int64(want)
		}
		if !ok {
			errs = append(errs, fmt.Errorf("%w: %s has %d rows, expected %d", ErrVerificationFailed, table, got, want))
		}
	}
	cmp("customers", v.Customers, len(ds.Customers))
	cmp("subscriptions", v.Subscriptions, len(ds.Subscriptions))
	cmp("payments", v.Payments, len(ds.Payments))
	cmp("costs", v.Costs, len(ds.Costs))
	if v.OrphanSubscriptions > 0 || v.OrphanPayments > 0 {
		errs = append(errs, fmt.Errorf("%w: %d subscriptions and %d payments reference missing customers",
			ErrVerificationFailed, v.OrphanSubscriptions, v.OrphanPayments))
	}
	return errors.Join(errs...)
}
