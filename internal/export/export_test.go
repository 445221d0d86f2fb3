package export

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"aftermarket-report/internal/model"
)

func sampleRows() []model.Row {
	return []model.Row{
		{
			{Name: "Cliente", Value: "ACME"},
			{Name: "PN Voss", Value: "V-1"},
			{Name: "Preço Venda 01", Value: decimal.RequireFromString("10.25")},
			{Name: "Última NF 01", Value: nil},
		},
		{
			{Name: "Cliente", Value: "ACME, Ltd"},
			{Name: "PN Voss", Value: "V-2"},
			{Name: "Preço Venda 01", Value: decimal.RequireFromString("3")},
			{Name: "Última NF 01", Value: time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)},
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer

	n, err := WriteCSV(&buf, sampleRows())

	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t,
		"Cliente,PN Voss,Preço Venda 01,Última NF 01\n"+
			"ACME,V-1,10.25,\n"+
			"\"ACME, Ltd\",V-2,3,31/01/2024\n",
		buf.String())
}

func TestWriteCSV_Empty(t *testing.T) {
	var buf bytes.Buffer

	n, err := WriteCSV(&buf, nil)

	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, buf.String())
}

func TestWriteJSON_KeepsColumnOrder(t *testing.T) {
	var buf bytes.Buffer

	n, err := WriteJSON(&buf, "run-1", sampleRows()[:1])
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	out := buf.String()
	assert.Less(t, strings.Index(out, `"Cliente"`), strings.Index(out, `"PN Voss"`))
	assert.Less(t, strings.Index(out, `"PN Voss"`), strings.Index(out, `"Preço Venda 01"`))

	var decoded struct {
		ExportInfo map[string]any `json:"export_info"`
		Data       []model.Row    `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "run-1", decoded.ExportInfo["run_id"])
	assert.Equal(t, []string{"Cliente", "PN Voss", "Preço Venda 01", "Última NF 01"}, decoded.Data[0].Columns())
}

func TestWriteWorkbook(t *testing.T) {
	var buf bytes.Buffer

	n, err := WriteWorkbook(&buf, "", sampleRows())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{DefaultSheet}, f.GetSheetList())
	rows, err := f.GetRows(DefaultSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Cliente", "PN Voss", "Preço Venda 01", "Última NF 01"}, rows[0])
	require.GreaterOrEqual(t, len(rows[1]), 3)
	assert.Equal(t, []string{"ACME", "V-1", "10.25"}, rows[1][:3])
	assert.Equal(t, "V-2", rows[2][1])
}

func TestToFile_ChoosesFormatByExtension(t *testing.T) {
	dir := t.TempDir()

	res, err := ToFile(filepath.Join(dir, "out", "report.json"), "run-1", sampleRows())
	require.NoError(t, err)
	assert.Equal(t, "json", res.Format)
	assert.Equal(t, 2, res.RecordCount)

	res, err = ToFile(filepath.Join(dir, "report.dat"), "run-1", sampleRows())
	require.NoError(t, err)
	assert.Equal(t, "csv", res.Format)
	data, err := os.ReadFile(res.Path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "Cliente,PN Voss"))
}

func TestDefaultPath(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2024, 6, 3, 9, 5, 7, 0, time.UTC)

	path, err := DefaultPath(dir, "run-1", now)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "run-1", "After_Market_20240603_090507.xlsx"), path)
	assert.Equal(t, "After_Market_Selecao_20240603_090507.xlsx", FileName("Selecao", "xlsx", now))
}
