package report

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/samber/lo"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fatflowers/saasgen/pkg/logctx"
)

var (
	ErrUnknownReport = errors.New("unknown report")
	// ErrAllReportsFailed is returned by RunAll when not a single query succeeded.
	ErrAllReportsFailed = errors.New("all reports failed")
)

// Table is the generic result of a report query.
type Table struct {
	Name    Name     `json:"name"`
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

func (t *Table) Empty() bool { return t == nil || len(t.Rows) == 0 }

// Results holds the outcome of RunAll. Failed reports are listed in Failures
// and absent from Tables.
type Results struct {
	Tables   []*Table       `json:"tables"`
	Failures map[Name]error `json:"-"`
}

// Service runs KPI queries against a loaded dataset.
type Service struct {
	log *zap.SugaredLogger
	db  *gorm.DB
}

func New(log *zap.SugaredLogger, db *gorm.DB) *Service { return &Service{log: log, db: db} }

// Run executes a single report.
func (s *Service) Run(ctx context.Context, name Name) (*Table, error) {
	query, ok := queries[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownReport, name)
	}
	rows, err := s.db.WithContext(ctx).Raw(query).Rows()
	if err != nil {
		return nil, fmt.Errorf("run report %s: %w", name, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("report %s columns: %w", name, err)
	}
	t := &Table{Name: name, Columns: columns, Rows: [][]any{}}
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan report %s: %w", name, err)
		}
		t.Rows = append(t.Rows, lo.Map(values, func(v any, _ int) any { return normalize(v) }))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read report %s: %w", name, err)
	}
	return t, nil
}

// RunAll executes every report concurrently. A failing query does not stop
// the others; the error is only returned when every report failed.
func (s *Service) RunAll(ctx context.Context) (*Results, error) {
	log := logctx.FromCtx(ctx, s.log)
	tables := make([]*Table, len(names))
	errs := make([]error, len(names))

	var wg sync.WaitGroup
	for i, name := range names {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tables[i], errs[i] = s.Run(ctx, name)
		}()
	}
	wg.Wait()

	res := &Results{Failures: map[Name]error{}}
	for i, name := range names {
		if errs[i] != nil {
			log.Warnw("report failed", "report", name, "err", errs[i])
			res.Failures[name] = errs[i]
			continue
		}
		log.Infow("report done", "report", name, "rows", len(tables[i].Rows))
		res.Tables = append(res.Tables, tables[i])
	}
	if len(res.Tables) == 0 {
		return res, fmt.Errorf("%w: %w", ErrAllReportsFailed, errors.Join(errs...))
	}
	return res, nil
}

// normalize converts driver values into something both CSV and JSON render
// readably: text columns arrive as []byte and DATE_TRUNC yields timestamps.
func normalize(v any) any {
	switch x := v.(type) {
	case []byte:
		return string(x)
	case time.Time:
		if x.Hour() == 0 && x.Minute() == 0 && x.Second() == 0 && x.Nanosecond() == 0 {
			return x.Format(time.DateOnly)
		}
		return x.Format(time.RFC3339)
	default:
		return v
	}
}

// cell renders a normalized value for CSV output.
func cell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	default:
		return fmt.Sprint(x)
	}
}

var Module = fx.Options(
	fx.Provide(New),
	fx.Provide(NewExporter),
)
