package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/fatflowers/saasgen/pkg/config"
	"github.com/fatflowers/saasgen/pkg/logctx"
)

// maxSheetName is the sheet name limit of the xlsx format.
const maxSheetName = 31

// Bundle lists the files written by ExportBundle.
type Bundle struct {
	CSV   []string `json:"csv"`
	Excel string   `json:"excel,omitempty"`
}

type Exporter struct {
	log   *zap.SugaredLogger
	excel bool
	now   func() time.Time
}

func NewExporter(log *zap.SugaredLogger, cfg *config.Config) *Exporter {
	return &Exporter{log: log, excel: cfg.Report.Excel, now: time.Now}
}

// ExportBundle writes dir/csv/<name>.csv for every non-empty table and, when
// enabled, one workbook dir/dashboard_data_<timestamp>.xlsx with a sheet per
// table. Empty tables are skipped.
func (e *Exporter) ExportBundle(ctx context.Context, dir string, res *Results) (*Bundle, error) {
	log := logctx.FromCtx(ctx, e.log)
	csvDir := filepath.Join(dir, "csv")
	if err := os.MkdirAll(csvDir, 0o755); err != nil {
		return nil, fmt.Errorf("create report dir %s: %w", csvDir, err)
	}

	b := &Bundle{}
	for _, t := range res.Tables {
		if t.Empty() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		path := filepath.Join(csvDir, string(t.Name)+".csv")
		if err := writeCSV(path, t); err != nil {
			return nil, fmt.Errorf("write %s: %w", path, err)
		}
		b.CSV = append(b.CSV, path)
	}

	if e.excel && len(b.CSV) > 0 {
		path := filepath.Join(dir, fmt.Sprintf("dashboard_data_%s.xlsx", e.now().Format("20060102_150405")))
		if err := writeWorkbook(path, res.Tables); err != nil {
			return nil, fmt.Errorf("write %s: %w", path, err)
		}
		b.Excel = path
	}
	log.Infow("report bundle exported", "dir", dir, "csv_files", len(b.CSV), "excel", b.Excel)
	return b, nil
}

func writeCSV(path string, t *Table) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	w := csv.NewWriter(f)
	if err := w.Write(t.Columns); err != nil {
		return err
	}
	record := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for i, v := range row {
			record[i] = cell(v)
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func writeWorkbook(path string, tables []*Table) error {
	f := excelize.NewFile()
	defer f.Close()

	first := true
	for _, t := range tables {
		if t.Empty() {
			continue
		}
		sheet := string(t.Name)
		if len(sheet) > maxSheetName {
			sheet = sheet[:maxSheetName]
		}
		if first {
			// reuse the default sheet so the workbook has no blank tab
			if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
				return err
			}
			first = false
		} else if _, err := f.NewSheet(sheet); err != nil {
			return err
		}

		header := make([]any, len(t.Columns))
		for i, c := range t.Columns {
			header[i] = c
		}
		if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
			return err
		}
		for r, row := range t.Rows {
			axis, err := excelize.CoordinatesToCellName(1, r+2)
			if err != nil {
				return err
			}
			values := append([]any(nil), row...)
			if err := f.SetSheetRow(sheet, axis, &values); err != nil {
				return err
			}
		}
	}
	return f.SaveAs(path)
}
