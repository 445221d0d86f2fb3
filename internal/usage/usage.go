// Package usage records how often the report is used, one CSV file per
// event in a shared folder picked up by the automation dashboard.
package usage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"aftermarket-report/internal/logging"
	"aftermarket-report/internal/model"
)

const (
	// Routine identifies this report in the usage files
	Routine = "Vendas - After Market"

	// SecondsPerItemManual is the time one item takes when done by hand
	SecondsPerItemManual = 180
	// SecondsPerRun is the time the automated run takes
	SecondsPerRun = 20
)

var header = []string{
	"Usuario",
	"Rotina",
	"Data/Hora",
	"Quantidade de itens",
	"Tempo_humano(segundos)",
	"Tempo_bot(segundos)",
}

var fileNamePattern = regexp.MustCompile(`(?i)^data(\d+)\.csv$`)

// Logger writes usage events to numbered files in a folder
type Logger struct {
	dir    string
	logger zerolog.Logger
}

// NewLogger creates a usage logger writing into dir
func NewLogger(dir string, logger zerolog.Logger) *Logger {
	return &Logger{
		dir:    dir,
		logger: logger.With().Str("component", "usage").Logger(),
	}
}

// Record writes the event to the next data<N>.csv file and returns its path.
func (l *Logger) Record(event model.UsageEvent) (string, error) {
	path, err := l.write(event)
	if err != nil {
		l.logger.Error().Err(err).Str("dir", l.dir).Msg("Failed to record usage")
		return "", err
	}
	l.logger.Debug().Str("path", path).Int("items", event.Items).Msg("Usage recorded")
	return path, nil
}

func (l *Logger) write(event model.UsageEvent) (string, error) {
	if err := os.MkdirAll(l.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create usage directory: %w", err)
	}

	n, err := NextFileNumber(l.dir)
	if err != nil {
		return "", err
	}
	path := filepath.Join(l.dir, fmt.Sprintf("data%d.csv", n))

	// O_EXCL keeps two concurrent writers from sharing a number
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer logging.DeferClose(l.logger, file, "failed to close usage file")

	routine := event.Routine
	if routine == "" {
		routine = Routine
	}
	ts := event.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	tw := transform.NewWriter(file, unicode.UTF8BOM.NewEncoder())
	w := csv.NewWriter(tw)
	w.Comma = ';'
	records := [][]string{
		header,
		{
			event.User,
			routine,
			ts.Format("2006-01-02 15:04:05"),
			strconv.Itoa(event.Items),
			strconv.Itoa(event.Items * SecondsPerItemManual),
			strconv.Itoa(SecondsPerRun),
		},
	}
	if err := w.WriteAll(records); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tw.Close(); err != nil {
		return "", fmt.Errorf("failed to flush %s: %w", path, err)
	}
	return path, nil
}

// NextFileNumber returns one past the highest data<N>.csv number in dir
func NextFileNumber(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 1, nil
		}
		return 0, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	highest := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := fileNamePattern.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		if n, err := strconv.Atoi(m[1]); err == nil && n > highest {
			highest = n
		}
	}
	return highest + 1, nil
}
