package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/fatflowers/saasgen/internal/models"
	"github.com/fatflowers/saasgen/pkg/types"
)

// ErrMalformedBundle is returned when a bundle file does not match the
// expected layout.
var ErrMalformedBundle = errors.New("malformed dataset bundle")

// Read parses a bundle previously written by Writer.Write.
func Read(dir string) (*models.Dataset, error) {
	ds := &models.Dataset{}
	var err error
	if ds.Customers, err = readFile(dir, CustomersFile, models.Customer{}.CSVHeader(), parseCustomer); err != nil {
		return nil, err
	}
	if ds.Subscriptions, err = readFile(dir, SubscriptionsFile, models.Subscription{}.CSVHeader(), parseSubscription); err != nil {
		return nil, err
	}
	if ds.Payments, err = readFile(dir, PaymentsFile, models.Payment{}.CSVHeader(), parsePayment); err != nil {
		return nil, err
	}
	if ds.Costs, err = readFile(dir, CostsFile, models.Cost{}.CSVHeader(), parseCost); err != nil {
		return nil, err
	}
	return ds, nil
}

func readFile[T any](dir, name string, header []string, parse func([]string) (*T, error)) ([]*T, error) {
	f, err := os.Open(filepath.Join(dir, name))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w (run generate first or pass the bundle directory)", name, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(header)
	got, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: read header: %v", ErrMalformedBundle, name, err)
	}
	if !slices.Equal(got, header) {
		return nil, fmt.Errorf("%w: %s: header %v, want %v", ErrMalformedBundle, name, got, header)
	}

	var out []*T
	for line := 2; ; line++ {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrMalformedBundle, name, err)
		}
		v, err := parse(rec)
		if err != nil {
			return nil, fmt.Errorf("%w: %s line %d: %v", ErrMalformedBundle, name, line, err)
		}
		out = append(out, v)
	}
}

func parseCustomer(rec []string) (*models.Customer, error) {
	signup, err := types.ParseDate(rec[1])
	if err != nil {
		return nil, err
	}
	active, err := strconv.ParseBool(rec[5])
	if err != nil {
		return nil, fmt.Errorf("is_active: %w", err)
	}
	return &models.Customer{
		ID:                 rec[0],
		SignupDate:         signup,
		Segment:            types.Segment(rec[2]),
		Country:            rec[3],
		AcquisitionChannel: rec[4],
		IsActive:           active,
	}, nil
}

func parseSubscription(rec []string) (*models.Subscription, error) {
	start, err := types.ParseDate(rec[3])
	if err != nil {
		return nil, err
	}
	end, err := types.ParseNullDate(rec[4])
	if err != nil {
		return nil, err
	}
	price, err := decimal.NewFromString(rec[5])
	if err != nil {
		return nil, fmt.Errorf("monthly_price: %w", err)
	}
	return &models.Subscription{
		ID:           rec[0],
		CustomerID:   rec[1],
		PlanType:     types.PlanType(rec[2]),
		StartDate:    start,
		EndDate:      end,
		MonthlyPrice: price,
	}, nil
}

func parsePayment(rec []string) (*models.Payment, error) {
	date, err := types.ParseDate(rec[2])
	if err != nil {
		return nil, err
	}
	amount, err := decimal.NewFromString(rec[3])
	if err != nil {
		return nil, fmt.Errorf("amount: %w", err)
	}
	status := types.PaymentStatus(rec[4])
	if !status.Valid() {
		return nil, fmt.Errorf("unknown payment_status %q", rec[4])
	}
	return &models.Payment{
		ID:          rec[0],
		CustomerID:  rec[1],
		PaymentDate: date,
		Amount:      amount,
		Status:      status,
	}, nil
}

func parseCost(rec []string) (*models.Cost, error) {
	values := make([]decimal.Decimal, 3)
	for i, field := range []string{"infra_cost", "marketing_cost", "support_cost"} {
		v, err := decimal.NewFromString(rec[i+1])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", field, err)
		}
		values[i] = v
	}
	return &models.Cost{
		Month:         rec[0],
		InfraCost:     values[0],
		MarketingCost: values[1],
		SupportCost:   values[2],
	}, nil
}
