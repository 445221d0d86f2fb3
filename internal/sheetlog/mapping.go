package sheetlog

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"aftermarket-report/internal/model"
	"aftermarket-report/internal/report"
)

const dateLayout = "02/01/2006"

// Input layouts accepted for invoice dates coming back from clients.
var dateInputs = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"20060102",
	dateLayout,
}

// MapSelection turns selected report rows into log entries for one store.
// Every row must carry the identity fields and the store's last invoice
// and sale price columns; otherwise nothing is mapped.
func MapSelection(rows []model.Row, store string, now time.Time) ([]model.LogEntry, error) {
	store = strings.TrimSpace(store)
	lastInvoice := report.StoreLabel(report.LabelLastInvoice, store)
	salePrice := report.StoreLabel(report.LabelSalePrice, store)
	required := []string{report.LabelVendorPart, report.LabelClientPart, report.LabelPlant, lastInvoice, salePrice}

	entries := make([]model.LogEntry, 0, len(rows))
	for _, row := range rows {
		values := make(map[string]any, len(required))
		for _, field := range required {
			v, ok := row.Get(field)
			if !ok {
				return nil, &model.MappingError{Field: field, Store: store}
			}
			values[field] = v
		}

		entries = append(entries, model.LogEntry{
			VendorPart:   text(values[report.LabelVendorPart]),
			ClientPart:   text(values[report.LabelClientPart]),
			Plant:        text(values[report.LabelPlant]),
			Store:        store,
			LastInvoice:  FormatDate(values[lastInvoice]),
			CurrentPrice: price(values[salePrice]),
			Date:         now.Format(dateLayout),
		})
	}
	return entries, nil
}

// FormatDate renders a date as dd/mm/yyyy; unparseable values yield "".
func FormatDate(v any) string {
	switch val := v.(type) {
	case time.Time:
		if val.IsZero() {
			return ""
		}
		return val.Format(dateLayout)
	case string:
		s := strings.TrimSpace(val)
		for _, layout := range dateInputs {
			if t, err := time.Parse(layout, s); err == nil {
				return t.Format(dateLayout)
			}
		}
	}
	return ""
}

func text(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return strings.TrimSpace(fmt.Sprint(val))
	}
}

func price(v any) any {
	switch val := v.(type) {
	case decimal.Decimal:
		return val.InexactFloat64()
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(val))
		if err != nil {
			return val
		}
		return d.InexactFloat64()
	case json.Number:
		if f, err := val.Float64(); err == nil {
			return f
		}
		return val.String()
	default:
		return val
	}
}
