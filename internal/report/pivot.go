package report

import (
	"fmt"
	"sort"
	"strings"
)

// ColumnsPerStore is the width of one store's column group
const ColumnsPerStore = 7

// Column label prefixes of a store's group, in projection order.
const (
	LabelShortName     = "Nome Reduzido"
	LabelFirstInvoice  = "Primeira NF"
	LabelLastInvoice   = "Última NF"
	LabelForecastDate  = "Previsão Vendas"
	LabelForecastQty   = "Qtd Previsão Futura"
	LabelDaysSinceLast = "Dias"
	LabelSalePrice     = "Preço Venda"
)

type pivotColumn struct {
	label    string
	source   string
	zeroNull bool
}

var storeColumns = [ColumnsPerStore]pivotColumn{
	{label: LabelShortName, source: "T.StoreShortName"},
	{label: LabelFirstInvoice, source: "T.FirstInvoiceDate"},
	{label: LabelLastInvoice, source: "T.LastInvoiceDate"},
	{label: LabelForecastDate, source: "T.ForecastDate"},
	{label: LabelForecastQty, source: "T.ForecastQuantity", zeroNull: true},
	{label: LabelDaysSinceLast, source: "T.DaysSinceLastInvoice"},
	{label: LabelSalePrice, source: "T.SalePrice"},
}

// StoreLabel returns the output field name for a column of a store's group
func StoreLabel(prefix, store string) string {
	return prefix + " " + store
}

// EscapeIdentifier doubles closing brackets so the value can sit inside [...]
func EscapeIdentifier(s string) string {
	return strings.ReplaceAll(s, "]", "]]")
}

// Pivot holds the per-store conditional aggregates and their bound values
type Pivot struct {
	Columns []string
	Args    []any
}

// BuildPivot emits seven aggregate columns per store, in store order.
// Store codes only reach the SQL text escaped, inside labels; the
// comparison value is always a placeholder bound to the raw code.
func BuildPivot(stores []string) Pivot {
	p := Pivot{
		Columns: make([]string, 0, len(stores)*ColumnsPerStore),
		Args:    make([]any, 0, len(stores)*ColumnsPerStore),
	}
	for _, store := range stores {
		escaped := EscapeIdentifier(store)
		for _, col := range storeColumns {
			expr := fmt.Sprintf("MAX(CASE WHEN T.StoreCode = ? THEN %s END)", col.source)
			if col.zeroNull {
				expr = fmt.Sprintf("ISNULL(%s, 0)", expr)
			}
			p.Columns = append(p.Columns, fmt.Sprintf("%s AS [%s]", expr, StoreLabel(col.label, escaped)))
			p.Args = append(p.Args, store)
		}
	}
	return p
}

// OrderStores returns the distinct, trimmed, sorted codes with primary moved
// to the front. When primary is not among them the sorted list is returned.
func OrderStores(stores []string, primary string) []string {
	seen := make(map[string]struct{}, len(stores))
	ordered := make([]string, 0, len(stores))
	for _, s := range stores {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		ordered = append(ordered, s)
	}
	sort.Strings(ordered)

	primary = strings.TrimSpace(primary)
	for i, s := range ordered {
		if s == primary {
			copy(ordered[1:i+1], ordered[:i])
			ordered[0] = primary
			break
		}
	}
	return ordered
}
