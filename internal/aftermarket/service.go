// Package aftermarket ties the report query to its collaborators: run
// history, the shared spreadsheet log, usage tracking and email.
package aftermarket

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"aftermarket-report/internal/mailer"
	"aftermarket-report/internal/model"
	"aftermarket-report/internal/sheetlog"
)

// Fetcher runs the report query
type Fetcher interface {
	Fetch(ctx context.Context, filters model.FilterSet) ([]model.Row, error)
}

// RunStore records report runs
type RunStore interface {
	SaveRun(ctx context.Context, runID string, filters model.FilterSet) error
	UpdateRunStatus(ctx context.Context, runID, status string, rowCount int) error
	SaveRunError(ctx context.Context, runID string, err error) error
}

// Appender writes entries to the spreadsheet log
type Appender interface {
	Append(ctx context.Context, entries []model.LogEntry) (int, error)
}

// UsageRecorder records one usage event
type UsageRecorder interface {
	Record(event model.UsageEvent) (string, error)
}

// Sender sends the report email
type Sender interface {
	Send(ctx context.Context, req mailer.Request) error
}

// Service runs the report workflow
type Service struct {
	reports Fetcher
	runs    RunStore
	sheet   Appender
	usage   UsageRecorder
	mail    Sender
	logger  zerolog.Logger

	now func() time.Time
}

// NewService wires the workflow. runs, sheet, usage and mail may be nil
// when the caller does not need that part.
func NewService(reports Fetcher, runs RunStore, sheet Appender, usage UsageRecorder, mail Sender, logger zerolog.Logger) *Service {
	return &Service{
		reports: reports,
		runs:    runs,
		sheet:   sheet,
		usage:   usage,
		mail:    mail,
		logger:  logger.With().Str("component", "aftermarket").Logger(),
		now:     time.Now,
	}
}

// RunReport fetches the report and records the run around it.
func (s *Service) RunReport(ctx context.Context, filters model.FilterSet) (runID string, rows []model.Row, err error) {
	filters = filters.Normalize()
	runID = uuid.New().String()
	start := s.now()

	s.logger.Info().
		Str("run_id", runID).
		Str("plant", filters.Plant).
		Str("store", filters.PrimaryStore).
		Msg("Starting report run")

	if s.runs != nil {
		if err := s.runs.SaveRun(ctx, runID, filters); err != nil {
			s.logger.Warn().Err(err).Str("run_id", runID).Msg("Failed to save run")
		}
		defer func() {
			status := model.RunCompleted
			if err != nil {
				status = model.RunFailed
				if serr := s.runs.SaveRunError(context.WithoutCancel(ctx), runID, err); serr != nil {
					s.logger.Warn().Err(serr).Str("run_id", runID).Msg("Failed to save run error")
				}
			}
			if uerr := s.runs.UpdateRunStatus(context.WithoutCancel(ctx), runID, status, len(rows)); uerr != nil {
				s.logger.Warn().Err(uerr).Str("run_id", runID).Msg("Failed to update run status")
			}
		}()
	}

	rows, err = s.reports.Fetch(ctx, filters)
	if err != nil {
		return runID, nil, err
	}

	s.logger.Info().
		Str("run_id", runID).
		Int("rows", len(rows)).
		Dur("duration", s.now().Sub(start)).
		Msg("Report run completed")
	return runID, rows, nil
}

// AppendSelection logs the selected rows of one store to the shared
// workbook, then records the usage event. A usage failure is logged only.
func (s *Service) AppendSelection(ctx context.Context, user, store string, rows []model.Row) (int, error) {
	if s.sheet == nil {
		return 0, &model.ConfigurationError{Missing: []string{"FOLDER_PATH_LOCAL"}, Reason: "spreadsheet log not configured"}
	}
	if len(rows) == 0 {
		return 0, &model.ValidationError{Reason: "no rows selected"}
	}

	entries, err := sheetlog.MapSelection(rows, store, s.now())
	if err != nil {
		return 0, err
	}

	n, err := s.sheet.Append(ctx, entries)
	if err != nil {
		return 0, fmt.Errorf("failed to append selection: %w", err)
	}

	if s.usage != nil {
		// failure is already logged by the recorder
		_, _ = s.usage.Record(model.UsageEvent{User: user, Timestamp: s.now(), Items: n})
	}
	return n, nil
}

// SendEmail sends the filtered and selected datasets
func (s *Service) SendEmail(ctx context.Context, req mailer.Request) error {
	if s.mail == nil {
		return &model.ConfigurationError{Missing: []string{"SMTP_SERVER"}, Reason: "email not configured"}
	}
	return s.mail.Send(ctx, req)
}
