package report

import (
	"fmt"
	"strings"

	"aftermarket-report/internal/model"
)

// MaxRows caps the rows returned by the report query
const MaxRows = 5000

// Identity column labels of every report row, in projection order.
const (
	LabelClient          = "Cliente"
	LabelVendorPart      = "PN Voss"
	LabelClientPart      = "PN Cliente"
	LabelPlant           = "Planta"
	LabelMasterShortName = "Nome Reduzido"
)

// Query is SQL text with positional placeholders and the values bound to
// them, in placeholder order.
type Query struct {
	SQL  string
	Args []any
}

// Placeholders counts the positional placeholders in the SQL text
func (q Query) Placeholders() int {
	return countPlaceholders(q.SQL)
}

const storesSQL = `
SELECT DISTINCT TRIM(A1_LOJA)
FROM [dbo].[SA1010]
WHERE A1_COD = ? AND D_E_L_E_T_ <> '*'
ORDER BY 1`

// StoresQuery returns the store discovery statement for a plant
func StoresQuery(plant string) Query {
	return Query{SQL: storesSQL, Args: []any{plant}}
}

// The %s verb receives the optional predicate clause of FilteredProducts.
const baseCTE = `
WITH InvoiceDates AS (
	SELECT
		TRIM(D2_COD) AS Product, TRIM(D2_CLIENTE) AS Client, TRIM(D2_LOJA) AS StoreCode,
		MAX(D2_EMISSAO) AS LastInvoiceDate, MIN(D2_EMISSAO) AS FirstInvoiceDate
	FROM [dbo].[SD2010]
	WHERE D_E_L_E_T_ <> '*' AND D2_CLIENTE = ?
	GROUP BY TRIM(D2_COD), TRIM(D2_CLIENTE), TRIM(D2_LOJA)
),
SalesForecast AS (
	SELECT
		TRIM(C4_PRODUTO) AS Product, TRIM(C4_CLIENTE) AS Client, TRIM(C4_LOJA) AS StoreCode,
		SUM(CASE WHEN TRY_CAST(C4_DATA AS DATE) >= CAST(GETDATE() AS DATE) THEN C4_QUANT ELSE 0 END) AS FutureQuantity,
		CAST(MAX(C4_DATA) AS DATE) AS ForecastDate
	FROM [dbo].[SC4010]
	WHERE D_E_L_E_T_ <> '*' AND C4_CLIENTE = ? AND C4_DATA <> ''
	GROUP BY TRIM(C4_PRODUTO), TRIM(C4_CLIENTE), TRIM(C4_LOJA)
),
FilteredProducts AS (
	SELECT DISTINCT
		A1.A1_COD AS Plant,
		TRIM(A1.A1_NOME) AS Client,
		TRIM(A1.A1_NREDUZ) AS MasterShortName,
		REPLACE(TRIM(A7.A7_CODCLI), ' ', '') AS ClientPart,
		A7.A7_PRODUTO AS VendorPart
	FROM [dbo].[SA1010] AS A1
	INNER JOIN [dbo].[SA7010] AS A7
		ON A7.A7_CLIENTE = A1.A1_COD
		AND TRIM(A7.A7_LOJA) = TRIM(A1.A1_LOJA)
		AND A7.D_E_L_E_T_ <> '*'
	WHERE A1.A1_COD = ?
		AND TRIM(A1.A1_LOJA) = ?
		AND A1.D_E_L_E_T_ <> '*'%s
),
StoreNames AS (
	SELECT DISTINCT
		TRIM(A1_LOJA) AS StoreCode, TRIM(A1_NREDUZ) AS StoreShortName
	FROM [dbo].[SA1010]
	WHERE A1_COD = ?
		AND D_E_L_E_T_ <> '*'
),
SalePrices AS (
	SELECT
		A7_CLIENTE AS Client,
		TRIM(A7_LOJA) AS StoreCode,
		A7_PRODUTO AS Product,
		A7_XPRCLIQ AS Price
	FROM [dbo].[SA7010]
	WHERE A7_CLIENTE = ?
		AND D_E_L_E_T_ <> '*'
),
BaseTable AS (
	SELECT
		PF.Client,
		PF.MasterShortName,
		PF.ClientPart,
		PF.VendorPart,
		PF.Plant,
		SN.StoreCode,
		SN.StoreShortName,
		CAST(ID.LastInvoiceDate AS DATE) AS LastInvoiceDate,
		CAST(ID.FirstInvoiceDate AS DATE) AS FirstInvoiceDate,
		SF.ForecastDate,
		ISNULL(SF.FutureQuantity, 0) AS ForecastQuantity,
		DATEDIFF(DAY, ID.LastInvoiceDate, GETDATE()) AS DaysSinceLastInvoice,
		CAST(SP.Price AS DECIMAL(18,2)) AS SalePrice
	FROM FilteredProducts AS PF
	CROSS JOIN StoreNames AS SN
	LEFT JOIN InvoiceDates AS ID
		ON ID.Product = PF.VendorPart
		AND ID.Client = PF.Plant
		AND ID.StoreCode = SN.StoreCode
	LEFT JOIN SalesForecast AS SF
		ON SF.Product = PF.VendorPart
		AND SF.Client = PF.Plant
		AND SF.StoreCode = SN.StoreCode
	LEFT JOIN SalePrices AS SP
		ON SP.Product = PF.VendorPart
		AND SP.Client = PF.Plant
		AND SP.StoreCode = SN.StoreCode
)`

const projection = `
SELECT TOP %d
	T.Client AS [%s],
	T.VendorPart AS [%s],
	T.ClientPart AS [%s],
	T.Plant AS [%s],
	T.MasterShortName AS [%s]%s
FROM BaseTable AS T
GROUP BY T.Client, T.VendorPart, T.ClientPart, T.Plant, T.MasterShortName
ORDER BY T.Client, T.VendorPart;`

// BuildQuery assembles the report statement for an already ordered,
// primary-first store list.
func BuildQuery(f model.FilterSet, stores []string) Query {
	f = f.Normalize()
	preds := BuildPredicates(f)
	pivot := BuildPivot(stores)

	var cols strings.Builder
	for _, c := range pivot.Columns {
		cols.WriteString(",\n\t")
		cols.WriteString(c)
	}

	sql := fmt.Sprintf(baseCTE, preds.Clause()) + fmt.Sprintf(projection,
		MaxRows,
		LabelClient, LabelVendorPart, LabelClientPart, LabelPlant, LabelMasterShortName,
		cols.String(),
	)

	args := make([]any, 0, 6+len(preds.Args)+len(pivot.Args))
	args = append(args, f.Plant, f.Plant, f.Plant, f.PrimaryStore)
	args = append(args, preds.Args...)
	args = append(args, f.Plant) // StoreNames
	args = append(args, f.Plant) // SalePrices
	args = append(args, pivot.Args...)

	return Query{SQL: sql, Args: args}
}
