package usage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aftermarket-report/internal/model"
)

func TestNextFileNumber(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"data1.csv", "DATA7.CSV", "data3.csv", "data.csv", "other9.csv", "data10.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}

	n, err := NextFileNumber(dir)

	require.NoError(t, err)
	assert.Equal(t, 8, n)
}

func TestNextFileNumber_MissingDir(t *testing.T) {
	n, err := NextFileNumber(filepath.Join(t.TempDir(), "absent"))

	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRecord(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "usage")
	l := NewLogger(dir, zerolog.Nop())

	path, err := l.Record(model.UsageEvent{
		User:      "jdoe",
		Timestamp: time.Date(2024, 6, 3, 9, 5, 0, 0, time.UTC),
		Items:     3,
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "data1.csv"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t,
		"\ufeffUsuario;Rotina;Data/Hora;Quantidade de itens;Tempo_humano(segundos);Tempo_bot(segundos)\n"+
			"jdoe;Vendas - After Market;2024-06-03 09:05:00;3;540;20\n",
		string(data))

	path, err = l.Record(model.UsageEvent{User: "jdoe", Items: 1})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "data2.csv"), path)
}

func TestRecord_UnwritableDir(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	l := NewLogger(filepath.Join(file, "sub"), zerolog.Nop())

	_, err := l.Record(model.UsageEvent{User: "jdoe", Items: 1})

	assert.Error(t, err)
}
