package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"aftermarket-report/internal/aftermarket"
	"aftermarket-report/internal/export"
	"aftermarket-report/internal/mailer"
	"aftermarket-report/internal/model"
	"aftermarket-report/internal/store"
	"aftermarket-report/pkg/utils"
)

// Reports is the report workflow served over HTTP
type Reports interface {
	RunReport(ctx context.Context, filters model.FilterSet) (string, []model.Row, error)
	AppendSelection(ctx context.Context, user, storeCode string, rows []model.Row) (int, error)
	SendEmail(ctx context.Context, req mailer.Request) error
}

// RunHistory reads recorded runs
type RunHistory interface {
	ListRuns(ctx context.Context, limit int) ([]model.Run, error)
	GetRun(ctx context.Context, runID string) (model.Run, error)
	GetRunErrors(ctx context.Context, runID string) ([]model.RunError, error)
}

// Handler serves the report endpoints
type Handler struct {
	reports Reports
	runs    RunHistory
	logger  zerolog.Logger
	getenv  func(string) string
}

// New creates the HTTP handlers. runs may be nil when history is disabled.
func New(reports Reports, runs RunHistory, logger zerolog.Logger) *Handler {
	return &Handler{
		reports: reports,
		runs:    runs,
		logger:  logger.With().Str("component", "api").Logger(),
		getenv:  os.Getenv,
	}
}

// ReportResponse is the body returned for a report run
type ReportResponse struct {
	RunID    string      `json:"run_id"`
	RowCount int         `json:"row_count"`
	Rows     []model.Row `json:"rows"`
}

// SelectionRequest carries the rows picked for one store
type SelectionRequest struct {
	Store string      `json:"store"`
	Rows  []model.Row `json:"rows"`
}

// EmailRequest asks for the report to be emailed
type EmailRequest struct {
	Recipient string          `json:"recipient"`
	Filters   model.FilterSet `json:"filters"`
	Selection []model.Row     `json:"selection"`
}

// CreateReport runs the After Market report
// @Summary Run the report
// @Description Run the After Market report for a plant and primary store
// @Tags reports
// @Accept json
// @Produce json
// @Param filters body model.FilterSet true "Report filters"
// @Success 200 {object} ReportResponse "Report rows"
// @Failure 400 {object} map[string]interface{} "Invalid request payload"
// @Failure 502 {object} map[string]interface{} "Database error"
// @Router /reports [post]
func (h *Handler) CreateReport(w http.ResponseWriter, r *http.Request) {
	var filters model.FilterSet
	if err := json.NewDecoder(r.Body).Decode(&filters); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	runID, rows, err := h.reports.RunReport(r.Context(), filters)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if rows == nil {
		rows = []model.Row{}
	}

	writeJSON(w, http.StatusOK, ReportResponse{RunID: runID, RowCount: len(rows), Rows: rows})
}

// ExportReport runs the report and returns it as a file
// @Summary Export the report
// @Description Run the report and download it as xlsx, csv or json
// @Tags reports
// @Produce application/octet-stream
// @Param format query string false "xlsx, csv or json" default(xlsx)
// @Param plant query string true "Plant code"
// @Param store query string true "Primary store"
// @Param client query string false "Client name contains"
// @Param client_pn query string false "Client part number contains"
// @Param vendor_pn query string false "Vendor part number contains"
// @Success 200 {file} file "Report file"
// @Failure 400 {object} map[string]interface{} "Unsupported format"
// @Failure 502 {object} map[string]interface{} "Database error"
// @Router /reports/export [get]
func (h *Handler) ExportReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	format := strings.ToLower(q.Get("format"))
	if format == "" {
		format = "xlsx"
	}
	if format != "xlsx" && format != "csv" && format != "json" {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Unsupported format %q", format))
		return
	}

	filters := model.FilterSet{
		Plant:            q.Get("plant"),
		PrimaryStore:     q.Get("store"),
		ClientName:       q.Get("client"),
		ClientPartNumber: q.Get("client_pn"),
		VendorPartNumber: q.Get("vendor_pn"),
	}

	runID, rows, err := h.reports.RunReport(r.Context(), filters)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	name := export.FileName("Filtrado", format, time.Now())
	w.Header().Set("Content-Type", utils.ContentType(format))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("X-Run-ID", runID)
	if _, err := export.Write(w, format, runID, rows); err != nil {
		h.logger.Error().Err(err).Str("run_id", runID).Msg("Failed to stream export")
	}
}

// AppendSelection logs selected rows to the shared workbook
// @Summary Log a selection
// @Description Append the selected rows of a store to the After Market log
// @Tags selections
// @Accept json
// @Produce json
// @Param user query string false "User running the report"
// @Param selection body SelectionRequest true "Selected rows"
// @Success 200 {object} map[string]interface{} "Rows appended"
// @Failure 400 {object} map[string]interface{} "Invalid request payload"
// @Failure 422 {object} map[string]interface{} "Selected rows lack a required column"
// @Failure 423 {object} map[string]interface{} "Log file locked"
// @Router /selections [post]
func (h *Handler) AppendSelection(w http.ResponseWriter, r *http.Request) {
	var req SelectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}
	if strings.TrimSpace(req.Store) == "" {
		writeError(w, http.StatusBadRequest, "Store is required")
		return
	}

	user := aftermarket.ResolveUser(r.URL.Query(), h.getenv)
	n, err := h.reports.AppendSelection(r.Context(), user, req.Store, req.Rows)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":  "Selection logged",
		"appended": n,
		"user":     user,
	})
}

// SendEmail emails the filtered report and the selection
// @Summary Email the report
// @Description Run the report and email it with the selection attached
// @Tags reports
// @Accept json
// @Produce json
// @Param user query string false "User running the report"
// @Param email body EmailRequest true "Recipient, filters and selection"
// @Success 200 {object} map[string]interface{} "Email sent"
// @Failure 400 {object} map[string]interface{} "Invalid request"
// @Failure 503 {object} map[string]interface{} "Email not configured"
// @Router /reports/email [post]
func (h *Handler) SendEmail(w http.ResponseWriter, r *http.Request) {
	var req EmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	var rows []model.Row
	if req.Filters.HasRequired() {
		var err error
		if _, rows, err = h.reports.RunReport(r.Context(), req.Filters); err != nil {
			h.fail(w, r, err)
			return
		}
	}

	user := aftermarket.ResolveUser(r.URL.Query(), h.getenv)
	err := h.reports.SendEmail(r.Context(), mailer.Request{
		Recipient: req.Recipient,
		User:      user,
		Main:      rows,
		Selection: req.Selection,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":   "Email sent",
		"recipient": req.Recipient,
		"rows":      len(rows),
		"selected":  len(req.Selection),
	})
}

// ListRuns lists recorded report runs
// @Summary List runs
// @Description Get the most recent report runs
// @Tags runs
// @Produce json
// @Param limit query int false "Maximum runs returned" default(100)
// @Success 200 {array} model.Run "Runs"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /runs [get]
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	if h.runs == nil {
		writeError(w, http.StatusServiceUnavailable, "Run history disabled")
		return
	}

	limit := 100 // default
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsedLimit, err := strconv.Atoi(limitStr); err == nil && parsedLimit > 0 {
			limit = parsedLimit
		}
	}

	runs, err := h.runs.ListRuns(r.Context(), limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

// GetRun retrieves one report run
// @Summary Get run
// @Description Retrieve one report run
// @Tags runs
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} model.Run "Run details"
// @Failure 404 {object} map[string]interface{} "Run not found"
// @Router /runs/{id} [get]
func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	if h.runs == nil {
		writeError(w, http.StatusServiceUnavailable, "Run history disabled")
		return
	}

	runID, ok := pathID(r.URL.Path, "/api/v1/runs/", "")
	if !ok {
		writeError(w, http.StatusBadRequest, "Run ID is required")
		return
	}

	run, err := h.runs.GetRun(r.Context(), runID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// GetRunErrors retrieves errors of one run
// @Summary Get run errors
// @Description Retrieve the errors recorded for a report run
// @Tags runs
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} map[string]interface{} "Run errors"
// @Failure 400 {object} map[string]interface{} "Invalid run ID"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /runs/{id}/errors [get]
func (h *Handler) GetRunErrors(w http.ResponseWriter, r *http.Request) {
	if h.runs == nil {
		writeError(w, http.StatusServiceUnavailable, "Run history disabled")
		return
	}

	runID, ok := pathID(r.URL.Path, "/api/v1/runs/", "/errors")
	if !ok {
		writeError(w, http.StatusBadRequest, "Run ID is required")
		return
	}

	runErrors, err := h.runs.GetRunErrors(r.Context(), runID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"run_id": runID,
		"errors": runErrors,
		"count":  len(runErrors),
	})
}

// StatusFor maps an error to the HTTP status returned for it
func StatusFor(err error) int {
	var (
		validation *model.ValidationError
		config     *model.ConfigurationError
		dataAccess *model.DataAccessError
		mapping    *model.MappingError
		locked     *model.ResourceLockError
	)
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &mapping):
		return http.StatusUnprocessableEntity
	case errors.As(err, &locked):
		return http.StatusLocked
	case errors.As(err, &config):
		return http.StatusServiceUnavailable
	case errors.As(err, &dataAccess):
		return http.StatusBadGateway
	case errors.Is(err, store.ErrRunNotFound):
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	event := h.logger.Warn()
	if status >= 500 {
		event = h.logger.Error()
	}
	event.Err(err).Str("path", r.URL.Path).Int("status", status).Msg("Request failed")
	writeError(w, status, err.Error())
}

// pathID extracts the ID between prefix and suffix
func pathID(path, prefix, suffix string) (string, bool) {
	if !strings.HasPrefix(path, prefix) || !strings.HasSuffix(path, suffix) {
		return "", false
	}
	id := path[len(prefix) : len(path)-len(suffix)]
	if id == "" || strings.Contains(id, "/") {
		return "", false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{"error": msg})
}
