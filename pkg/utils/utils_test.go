package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"", 15 * time.Second},
		{"30s", 30 * time.Second},
		{"2m", 2 * time.Minute},
		{"45", 45 * time.Second},
		{"abc", 15 * time.Second},
		{"4x", 15 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseDuration(tt.in, 15*time.Second))
		})
	}
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "", FormatValue(nil))
	assert.Equal(t, "12.50", FormatValue(decimal.RequireFromString("12.50")))
	assert.Equal(t, "05/03/2024", FormatValue(time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "05/03/2024 10:30:00", FormatValue(time.Date(2024, 3, 5, 10, 30, 0, 0, time.UTC)))
	assert.Equal(t, "42", FormatValue(int64(42)))
	assert.Equal(t, "raw", FormatValue([]byte("raw")))
}

func TestSplitIndexes(t *testing.T) {
	got, err := SplitIndexes("0, 2,5,")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2, 5}, got)

	_, err = SplitIndexes("1,x")
	assert.Error(t, err)

	_, err = SplitIndexes("-1")
	assert.Error(t, err)
}

func TestOutputManager_GetOutputFilePath(t *testing.T) {
	om := NewOutputManager(t.TempDir())

	path, err := om.GetOutputFilePath("run-1", "../escape/report.xlsx")

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(om.BaseOutputDir, "run-1", "report.xlsx"), path)
	info, err := os.Stat(filepath.Dir(path))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestOutputManager_GetFileType(t *testing.T) {
	om := NewOutputManager("")
	assert.Equal(t, "xlsx", om.GetFileType("a.XLSX"))
	assert.Equal(t, "csv", om.GetFileType("a.csv"))
	assert.Equal(t, "json", om.GetFileType("a.json"))
	assert.Equal(t, "unknown", om.GetFileType("a.txt"))
	assert.Equal(t, "application/json", ContentType("json"))
}
