package report

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap/zaptest"

	"github.com/fatflowers/saasgen/pkg/config"
)

func newTestExporter(t *testing.T, excel bool) *Exporter {
	cfg := config.Default()
	cfg.Report.Excel = excel
	e := NewExporter(zaptest.NewLogger(t).Sugar(), cfg)
	e.now = func() time.Time { return time.Date(2024, 12, 31, 23, 59, 1, 0, time.UTC) }
	return e
}

func sampleResults() *Results {
	return &Results{
		Tables: []*Table{
			{
				Name:    MonthlyRevenue,
				Columns: []string{"month", "monthly_revenue", "paying_customers"},
				Rows: [][]any{
					{"2022-02-01", "1859.38", int64(21)},
					{"2022-01-01", "899.70", int64(10)},
				},
			},
			{Name: ChurnRate, Columns: []string{"month"}, Rows: [][]any{}},
			{
				Name:    RevenueBySegment,
				Columns: []string{"segment", "total_revenue", "customers"},
				Rows:    [][]any{{"Mid-Market", 540.5, nil}},
			},
		},
	}
}

func TestExporter_ExportBundle(t *testing.T) {
	dir := t.TempDir()
	b, err := newTestExporter(t, true).ExportBundle(context.Background(), dir, sampleResults())
	require.NoError(t, err)

	require.Len(t, b.CSV, 2, "empty tables are skipped")
	_, err = os.Stat(filepath.Join(dir, "csv", "churn_rate.csv"))
	require.ErrorIs(t, err, os.ErrNotExist)

	body, err := os.ReadFile(filepath.Join(dir, "csv", "monthly_revenue.csv"))
	require.NoError(t, err)
	assert.Equal(t, "month,monthly_revenue,paying_customers\n2022-02-01,1859.38,21\n2022-01-01,899.70,10\n", string(body))

	body, err = os.ReadFile(filepath.Join(dir, "csv", "revenue_by_segment.csv"))
	require.NoError(t, err)
	assert.Equal(t, "segment,total_revenue,customers\nMid-Market,540.5,\n", string(body))

	require.Equal(t, filepath.Join(dir, "dashboard_data_20241231_235901.xlsx"), b.Excel)
	f, err := excelize.OpenFile(b.Excel)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"monthly_revenue", "revenue_by_segment"}, f.GetSheetList())
	rows, err := f.GetRows("monthly_revenue")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"month", "monthly_revenue", "paying_customers"}, rows[0])
	assert.Equal(t, "21", rows[1][2])
}

func TestExporter_NoExcel(t *testing.T) {
	dir := t.TempDir()
	b, err := newTestExporter(t, false).ExportBundle(context.Background(), dir, sampleResults())
	require.NoError(t, err)
	assert.Empty(t, b.Excel)
	matches, err := filepath.Glob(filepath.Join(dir, "*.xlsx"))
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestWriteWorkbook_LongSheetName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "long.xlsx")
	long := Name("a_report_name_that_is_longer_than_thirty_one_characters")
	require.NoError(t, writeWorkbook(path, []*Table{{Name: long, Columns: []string{"x"}, Rows: [][]any{{int64(1)}}}}))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{string(long[:maxSheetName])}, f.GetSheetList())
}
