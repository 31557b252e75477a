package dataset

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/fatflowers/saasgen/internal/models"
	"github.com/fatflowers/saasgen/pkg/logctx"
	"github.com/fatflowers/saasgen/pkg/tool"
)

const (
	CustomersFile     = "customers.csv"
	SubscriptionsFile = "subscriptions.csv"
	PaymentsFile      = "payments.csv"
	CostsFile         = "costs.csv"
)

// Files lists the bundle files in load order.
var Files = []string{CustomersFile, SubscriptionsFile, PaymentsFile, CostsFile}

type table struct {
	file   string
	header []string
	n      int
	record func(i int) []string
}

func tables(ds *models.Dataset) []table {
	return []table{
		{file: CustomersFile, header: models.Customer{}.CSVHeader(), n: len(ds.Customers), record: func(i int) []string { return ds.Customers[i].CSVRecord() }},
		{file: SubscriptionsFile, header: models.Subscription{}.CSVHeader(), n: len(ds.Subscriptions), record: func(i int) []string { return ds.Subscriptions[i].CSVRecord() }},
		{file: PaymentsFile, header: models.Payment{}.CSVHeader(), n: len(ds.Payments), record: func(i int) []string { return ds.Payments[i].CSVRecord() }},
		{file: CostsFile, header: models.Cost{}.CSVHeader(), n: len(ds.Costs), record: func(i int) []string { return ds.Costs[i].CSVRecord() }},
	}
}

func encode(w io.Writer, t table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.header); err != nil {
		return err
	}
	for i := range t.n {
		if err := cw.Write(t.record(i)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Encode renders every table of ds as CSV keyed by file name.
func Encode(ds *models.Dataset) (map[string][]byte, error) {
	out := make(map[string][]byte, len(Files))
	for _, t := range tables(ds) {
		var buf bytes.Buffer
		if err := encode(&buf, t); err != nil {
			return nil, fmt.Errorf("encode %s: %w", t.file, err)
		}
		out[t.file] = buf.Bytes()
	}
	return out, nil
}

type Writer struct {
	log    *zap.SugaredLogger
	rename func(oldpath, newpath string) error
}

func NewWriter(log *zap.SugaredLogger) *Writer { return &Writer{log: log, rename: os.Rename} }

// Write stores the four tables in dir. Files are staged in a temporary
// directory inside dir and only moved into place once all of them are
// complete. If moving them in fails, the files already replaced are rolled
// back to the previous bundle.
func (w *Writer) Write(ctx context.Context, dir string, ds *models.Dataset) error {
	log := logctx.FromCtx(ctx, w.log)
	if ds == nil {
		return fmt.Errorf("nil dataset")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir %s: %w", dir, err)
	}
	staging := filepath.Join(dir, ".staging-"+tool.GenerateUUIDV7())
	if err := os.Mkdir(staging, 0o755); err != nil {
		return fmt.Errorf("create staging dir: %w", err)
	}
	defer os.RemoveAll(staging)

	for _, t := range tables(ds) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := writeFile(filepath.Join(staging, t.file), t); err != nil {
			return fmt.Errorf("write %s: %w (check that %s is writable and has free space)", t.file, err, dir)
		}
	}
	if err := w.swap(staging, dir); err != nil {
		return err
	}

	sum := ds.Summary()
	log.Infow("dataset written",
		"dir", dir,
		"customers", sum.Customers,
		"subscriptions", sum.Subscriptions,
		"payments", sum.Payments,
		"cost_records", sum.CostMonths,
	)
	return nil
}

// swap moves the staged files into dir. Files they replace are parked in
// staging and restored if a later move fails.
func (w *Writer) swap(staging, dir string) error {
	type moved struct {
		name string
		prev bool
	}
	var done []moved
	rollback := func() {
		for i := len(done) - 1; i >= 0; i-- {
			m := done[i]
			target := filepath.Join(dir, m.name)
			if m.prev {
				_ = w.rename(filepath.Join(staging, m.name+".prev"), target)
			} else {
				_ = os.Remove(target)
			}
		}
	}

	for _, name := range Files {
		target := filepath.Join(dir, name)
		prev := false
		if _, err := os.Stat(target); err == nil {
			if err := w.rename(target, filepath.Join(staging, name+".prev")); err != nil {
				rollback()
				return fmt.Errorf("move %s into %s: %w", name, dir, err)
			}
			prev = true
		}
		if err := w.rename(filepath.Join(staging, name), target); err != nil {
			if prev {
				_ = w.rename(filepath.Join(staging, name+".prev"), target)
			}
			rollback()
			return fmt.Errorf("move %s into %s: %w", name, dir, err)
		}
		done = append(done, moved{name: name, prev: prev})
	}
	return nil
}

func writeFile(path string, t table) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return encode(f, t)
}

var Module = fx.Options(
	fx.Provide(NewWriter),
)
