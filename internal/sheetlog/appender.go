// Package sheetlog appends selected report rows to the shared After Market
// workbook kept on a network folder.
package sheetlog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"aftermarket-report/internal/logging"
	"aftermarket-report/internal/model"
)

// SheetName is the worksheet holding the log
const SheetName = "Base - AfterMarket"

// Header is the first row of the log sheet
var Header = []any{"PN Voss", "PN Cliente", "Planta", "Loja", "Ultima NF", "Preço atual", "Data"}

// Appender writes log entries to a workbook, waiting out other writers
type Appender struct {
	path   string
	retry  model.RetryConfig
	logger zerolog.Logger

	probe func(path string) error
	sleep func(ctx context.Context, d time.Duration) error
}

// NewAppender creates an appender for the workbook at path
func NewAppender(path string, retry model.RetryConfig, logger zerolog.Logger) *Appender {
	return &Appender{
		path:   path,
		retry:  retry,
		logger: logger.With().Str("component", "sheetlog").Logger(),
		probe:  probeLock,
		sleep:  sleepContext,
	}
}

// Path returns the workbook location
func (a *Appender) Path() string { return a.path }

// Append adds entries after the last used row of the log sheet.
func (a *Appender) Append(ctx context.Context, entries []model.LogEntry) (int, error) {
	if len(entries) == 0 {
		return 0, nil
	}

	if err := os.MkdirAll(filepath.Dir(a.path), 0755); err != nil {
		return 0, fmt.Errorf("failed to create log directory: %w", err)
	}

	if err := a.waitUnlocked(ctx); err != nil {
		return 0, err
	}

	f, fresh, err := a.open()
	if err != nil {
		return 0, err
	}
	defer logging.DeferClose(a.logger, f, "failed to close workbook")

	next, err := prepareSheet(f, fresh)
	if err != nil {
		return 0, err
	}

	for i, e := range entries {
		cell, err := excelize.CoordinatesToCellName(1, next+i)
		if err != nil {
			return 0, err
		}
		row := []any{e.VendorPart, e.ClientPart, e.Plant, e.Store, e.LastInvoice, e.CurrentPrice, e.Date}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return 0, fmt.Errorf("failed to write row %d: %w", next+i, err)
		}
	}

	if err := f.SaveAs(a.path); err != nil {
		return 0, fmt.Errorf("failed to save %s: %w", a.path, err)
	}

	a.logger.Info().
		Str("path", a.path).
		Int("rows", len(entries)).
		Msg("Selection appended to log")
	return len(entries), nil
}

func (a *Appender) waitUnlocked(ctx context.Context) error {
	attempts := a.retry.MaxRetries
	if attempts < 1 {
		attempts = 1
	}
	for attempt := 0; attempt < attempts; attempt++ {
		err := a.probe(a.path)
		if err == nil {
			return nil
		}
		if !isLockError(err) {
			return fmt.Errorf("failed to check %s: %w", a.path, err)
		}

		a.logger.Warn().
			Str("path", a.path).
			Int("attempt", attempt+1).
			Int("max_attempts", attempts).
			Msg("Log file locked, waiting")

		if attempt == attempts-1 {
			break
		}
		if err := a.sleep(ctx, a.retry.Delay(attempt)); err != nil {
			return err
		}
	}
	return &model.ResourceLockError{Path: a.path, Attempts: attempts}
}

func (a *Appender) open() (*excelize.File, bool, error) {
	f, err := excelize.OpenFile(a.path)
	if err == nil {
		return f, false, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return excelize.NewFile(), true, nil
	}
	return nil, false, fmt.Errorf("failed to open %s: %w", a.path, err)
}

// prepareSheet makes sure the log sheet exists with its header and returns
// the first free row number.
func prepareSheet(f *excelize.File, fresh bool) (int, error) {
	idx, err := f.GetSheetIndex(SheetName)
	if err != nil {
		return 0, err
	}
	if idx == -1 {
		if _, err := f.NewSheet(SheetName); err != nil {
			return 0, err
		}
		// a new workbook carries an empty default sheet
		if fresh {
			if err := f.DeleteSheet("Sheet1"); err != nil {
				return 0, err
			}
		}
	}

	rows, err := f.GetRows(SheetName)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		header := Header
		if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
			return 0, err
		}
		return 2, nil
	}
	return len(rows) + 1, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
