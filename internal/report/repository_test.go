package report

import (
	"context"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	mssql "github.com/microsoft/go-mssqldb"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aftermarket-report/internal/model"
)

func newMockRepository(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewRepository(sqlx.NewDb(db, "sqlserver"), zerolog.Nop()), mock
}

func driverArgs(args []any) []driver.Value {
	out := make([]driver.Value, len(args))
	for i, a := range args {
		out[i] = a
	}
	return out
}

const storesPattern = `SELECT DISTINCT TRIM\(A1_LOJA\) FROM \[dbo\]\.\[SA1010\] WHERE A1_COD = @p1`

func TestRepository_Stores(t *testing.T) {
	repo, mock := newMockRepository(t)
	mock.ExpectQuery(storesPattern).
		WithArgs("P1").
		WillReturnRows(sqlmock.NewRows([]string{"loja"}).AddRow("02 ").AddRow(nil).AddRow(" 01").AddRow("03"))

	stores, err := repo.Stores(context.Background(), repo.db, "P1")

	require.NoError(t, err)
	assert.Equal(t, []string{"02", "01", "03"}, stores)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Fetch_MissingRequiredFilters(t *testing.T) {
	repo, mock := newMockRepository(t)

	for _, f := range []model.FilterSet{
		{},
		{Plant: "P1"},
		{PrimaryStore: "01"},
		{Plant: "  ", PrimaryStore: "01"},
	} {
		rows, err := repo.Fetch(context.Background(), f)
		require.NoError(t, err)
		assert.NotNil(t, rows)
		assert.Empty(t, rows)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Fetch_NoStoresSkipsMainQuery(t *testing.T) {
	repo, mock := newMockRepository(t)
	mock.ExpectQuery(storesPattern).
		WithArgs("P1").
		WillReturnRows(sqlmock.NewRows([]string{"loja"}))

	rows, err := repo.Fetch(context.Background(), model.FilterSet{Plant: "P1", PrimaryStore: "01"})

	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Fetch_PivotedRows(t *testing.T) {
	repo, mock := newMockRepository(t)
	filters := model.FilterSet{Plant: "P1", PrimaryStore: "01", VendorPartNumber: "ABC"}

	mock.ExpectQuery(storesPattern).
		WithArgs("P1").
		WillReturnRows(sqlmock.NewRows([]string{"loja"}).AddRow("02").AddRow("01"))

	expected := BuildQuery(filters, []string{"01", "02"})
	require.Equal(t, []any{"P1", "P1", "P1", "01", "%ABC%", "P1", "P1"}, expected.Args[:7])

	last := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	columns := []string{
		"Cliente", "PN Voss", "PN Cliente", "Planta", "Nome Reduzido",
		"Nome Reduzido 01", "Primeira NF 01", "Última NF 01", "Previsão Vendas 01",
		"Qtd Previsão Futura 01", "Dias 01", "Preço Venda 01",
		"Nome Reduzido 02", "Primeira NF 02", "Última NF 02", "Previsão Vendas 02",
		"Qtd Previsão Futura 02", "Dias 02", "Preço Venda 02",
	}
	mock.ExpectQuery(`WITH InvoiceDates AS .* SELECT TOP 5000 .* FROM BaseTable AS T`).
		WithArgs(driverArgs(expected.Args)...).
		WillReturnRows(sqlmock.NewRows(columns).AddRow(
			"ACME", "ABC-1", "X1", "P1", "ACME",
			"ACME SP", last.AddDate(-1, 0, 0), last, nil, int64(0), int64(30), []byte("12.50"),
			"ACME RJ", nil, nil, nil, int64(0), nil, nil,
		))

	rows, err := repo.Fetch(context.Background(), filters)

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, columns, rows[0].Columns())

	price, ok := rows[0].Get("Preço Venda 01")
	require.True(t, ok)
	assert.True(t, decimal.RequireFromString("12.5").Equal(price.(decimal.Decimal)))

	lastNF, _ := rows[0].Get("Última NF 01")
	assert.Equal(t, last, lastNF)

	name, _ := rows[0].Get("Nome Reduzido 01")
	assert.Equal(t, "ACME SP", name)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Fetch_DatabaseErrorIsWrapped(t *testing.T) {
	repo, mock := newMockRepository(t)
	mock.ExpectQuery(storesPattern).
		WithArgs("P1").
		WillReturnRows(sqlmock.NewRows([]string{"loja"}).AddRow("01"))
	mock.ExpectQuery(`WITH InvoiceDates AS`).
		WillReturnError(mssql.Error{Number: 208, State: 1, Message: "Invalid object name 'dbo.SD2010'."})

	rows, err := repo.Fetch(context.Background(), model.FilterSet{Plant: "P1", PrimaryStore: "01"})

	require.Error(t, err)
	assert.Nil(t, rows)
	var dae *model.DataAccessError
	require.True(t, errors.As(err, &dae))
	assert.Equal(t, "208.1", dae.SQLState)
	assert.EqualValues(t, 208, dae.Number)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Fetch_StoreDiscoveryErrorPropagates(t *testing.T) {
	repo, mock := newMockRepository(t)
	mock.ExpectQuery(storesPattern).
		WithArgs("P1").
		WillReturnError(errors.New("connection reset"))

	_, err := repo.Fetch(context.Background(), model.FilterSet{Plant: "P1", PrimaryStore: "01"})

	var dae *model.DataAccessError
	require.True(t, errors.As(err, &dae))
	assert.Equal(t, "UNKNOWN", dae.SQLState)
	assert.EqualError(t, errors.Unwrap(err), "connection reset")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNormalizeValue(t *testing.T) {
	assert.True(t, decimal.RequireFromString("3.10").Equal(normalizeValue([]byte("3.10")).(decimal.Decimal)))
	assert.Equal(t, "ABC", normalizeValue([]byte("ABC")))
	assert.Equal(t, int64(4), normalizeValue(int64(4)))
	assert.Nil(t, normalizeValue(nil))
}
