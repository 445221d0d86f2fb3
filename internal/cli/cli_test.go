package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aftermarket-report/internal/model"
)

var rows = []model.Row{
	{{Name: "Cliente", Value: "ACME"}, {Name: "PN Voss", Value: "V-1"}},
	{{Name: "Cliente", Value: "ACME"}, {Name: "PN Voss", Value: "V-2"}},
}

func TestPrintRows(t *testing.T) {
	var buf bytes.Buffer

	printRows(&buf, rows)

	out := buf.String()
	assert.Contains(t, out, "Cliente")
	assert.Contains(t, out, "V-2")
	assert.Contains(t, out, "2 rows")

	buf.Reset()
	printRows(&buf, nil)
	assert.Equal(t, "No rows found.\n", buf.String())
}

func TestPick(t *testing.T) {
	picked, err := pick(rows, []int{1})
	require.NoError(t, err)
	assert.Equal(t, []model.Row{rows[1]}, picked)

	_, err = pick(rows, []int{2})
	assert.Error(t, err)
}

func TestPrintRuns(t *testing.T) {
	var buf bytes.Buffer
	created := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)

	printRuns(&buf, []model.Run{{ID: "run-1", Status: model.RunCompleted, RowCount: 3, Filters: model.FilterSet{Plant: "P1", PrimaryStore: "01"}, CreatedAt: created}})
	assert.Contains(t, buf.String(), "run-1")
	assert.Contains(t, buf.String(), "completed")

	buf.Reset()
	printRunErrors(&buf, model.Run{ID: "run-1", Status: model.RunFailed}, []model.RunError{{Message: "boom", CreatedAt: created}})
	assert.Contains(t, buf.String(), "boom")
}

func TestReportCmd_RequiresPlantAndStore(t *testing.T) {
	cmd := newReportCmd()
	cmd.SetArgs([]string{"--plant", "P1"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	err := cmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "--plant and --store are required")
}

func TestReportCmd_InvalidSelection(t *testing.T) {
	cmd := newReportCmd()
	cmd.SetArgs([]string{"--plant", "P1", "--store", "01", "--select", "a"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	err := cmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --select")
}

func TestRootCommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"report", "serve", "runs", "version"} {
		assert.True(t, names[want], want)
	}
}
