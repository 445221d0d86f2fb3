// Package export writes report rows as xlsx, CSV or JSON files.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"aftermarket-report/internal/model"
	"aftermarket-report/pkg/utils"
)

// DefaultSheet is the worksheet name used for report workbooks
const DefaultSheet = "After Market"

// ExportResult represents the result of an export operation
type ExportResult struct {
	Format      string    `json:"format"` // "xlsx", "csv", "json"
	Path        string    `json:"path"`
	RecordCount int       `json:"record_count"`
	ExportedAt  time.Time `json:"exported_at"`
}

// Header returns the column order of an export: the first row's fields
func Header(rows []model.Row) []string {
	if len(rows) == 0 {
		return nil
	}
	return rows[0].Columns()
}

// WriteWorkbook writes rows to a single-sheet workbook
func WriteWorkbook(w io.Writer, sheet string, rows []model.Row) (int, error) {
	f, err := Workbook(sheet, rows)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return 0, fmt.Errorf("failed to write workbook: %w", err)
	}
	return len(rows), nil
}

// Workbook builds the in-memory workbook for rows
func Workbook(sheet string, rows []model.Row) (*excelize.File, error) {
	if sheet == "" {
		sheet = DefaultSheet
	}
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		f.Close()
		return nil, err
	}

	header := Header(rows)
	headerRow := make([]any, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &headerRow); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			f.Close()
			return nil, err
		}
		values := make([]any, len(header))
		for j, col := range header {
			v, _ := row.Get(col)
			values[j] = cellValue(v)
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}
	return f, nil
}

// WriteCSV writes rows as comma separated values with a header line
func WriteCSV(w io.Writer, rows []model.Row) (int, error) {
	writer := csv.NewWriter(w)

	header := Header(rows)
	if len(header) > 0 {
		if err := writer.Write(header); err != nil {
			return 0, fmt.Errorf("failed to write header: %w", err)
		}
	}

	recordCount := 0
	for _, row := range rows {
		record := make([]string, len(header))
		for i, col := range header {
			v, _ := row.Get(col)
			record[i] = utils.FormatValue(v)
		}
		if err := writer.Write(record); err != nil {
			return recordCount, fmt.Errorf("failed to write row: %w", err)
		}
		recordCount++
	}

	writer.Flush()
	return recordCount, writer.Error()
}

// WriteJSON writes rows with export metadata
func WriteJSON(w io.Writer, runID string, rows []model.Row) (int, error) {
	if rows == nil {
		rows = []model.Row{}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	exportData := map[string]interface{}{
		"export_info": map[string]interface{}{
			"run_id":       runID,
			"exported_at":  time.Now().UTC(),
			"record_count": len(rows),
			"export_type":  "aftermarket_report",
		},
		"data": rows,
	}

	if err := encoder.Encode(exportData); err != nil {
		return 0, fmt.Errorf("failed to encode JSON: %w", err)
	}
	return len(rows), nil
}

// Write dispatches on format; unknown formats fall back to CSV
func Write(w io.Writer, format, runID string, rows []model.Row) (int, error) {
	switch strings.ToLower(format) {
	case "xlsx":
		return WriteWorkbook(w, DefaultSheet, rows)
	case "json":
		return WriteJSON(w, runID, rows)
	default:
		return WriteCSV(w, rows)
	}
}

// ToFile exports rows to path, choosing the format from its extension
func ToFile(path, runID string, rows []model.Row) (ExportResult, error) {
	format := utils.NewOutputManager("").GetFileType(path)
	if format == "unknown" {
		format = "csv"
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return ExportResult{}, fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return ExportResult{}, fmt.Errorf("failed to create file: %w", err)
	}

	n, err := Write(file, format, runID, rows)
	if cerr := file.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("failed to close file: %w", cerr)
	}
	if err != nil {
		return ExportResult{}, err
	}

	return ExportResult{
		Format:      format,
		Path:        path,
		RecordCount: n,
		ExportedAt:  time.Now(),
	}, nil
}

// DefaultPath returns the timestamped xlsx path for a run under baseDir
func DefaultPath(baseDir, runID string, now time.Time) (string, error) {
	name := fmt.Sprintf("After_Market_%s.xlsx", now.Format("20060102_150405"))
	return utils.NewOutputManager(baseDir).GetOutputFilePath(runID, name)
}

// FileName returns the attachment or download name for a dataset
func FileName(kind, format string, now time.Time) string {
	return fmt.Sprintf("After_Market_%s_%s.%s", kind, now.Format("20060102_150405"), format)
}

func cellValue(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case decimal.Decimal:
		return val.InexactFloat64()
	case []byte:
		return string(val)
	case json.Number:
		if f, err := val.Float64(); err == nil {
			return f
		}
		return val.String()
	default:
		return val
	}
}
