package report

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/jmoiron/sqlx"
	mssql "github.com/microsoft/go-mssqldb"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"aftermarket-report/internal/logging"
	"aftermarket-report/internal/model"
)

// Repository runs the After Market report against the ERP database.
// It holds no per-call state; every Fetch acquires its own connection.
type Repository struct {
	db     *sqlx.DB
	logger zerolog.Logger
}

// NewRepository creates a repository over an open pool
func NewRepository(db *sqlx.DB, logger zerolog.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger.With().Str("component", "report").Logger(),
	}
}

// Stores returns the distinct trimmed store codes of a plant, skipping
// soft-deleted customers, in the order the database sorts them.
func (r *Repository) Stores(ctx context.Context, q sqlx.QueryerContext, plant string) ([]string, error) {
	query := StoresQuery(plant)
	rows, err := q.QueryContext(ctx, rebind(r.db.DriverName(), query.SQL), query.Args...)
	if err != nil {
		return nil, r.dataAccess(err, "store discovery")
	}
	defer logging.DeferClose(r.logger, rows, "failed to close store rows")

	var stores []string
	for rows.Next() {
		var code sql.NullString
		if err := rows.Scan(&code); err != nil {
			return nil, r.dataAccess(err, "store discovery")
		}
		if !code.Valid {
			continue
		}
		if c := strings.TrimSpace(code.String); c != "" {
			stores = append(stores, c)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, r.dataAccess(err, "store discovery")
	}
	return stores, nil
}

// Fetch runs the pivoted report for the given filters. A missing plant or
// primary store, or a plant without stores, yields an empty result.
func (r *Repository) Fetch(ctx context.Context, filters model.FilterSet) ([]model.Row, error) {
	filters = filters.Normalize()
	log := r.logger.With().
		Str("plant", filters.Plant).
		Str("store", filters.PrimaryStore).
		Logger()

	if !filters.HasRequired() {
		log.Error().Msg("Required filters (plant, store) not provided")
		return []model.Row{}, nil
	}
	log.Info().Interface("filters", filters).Msg("Fetching after market report")

	conn, err := r.db.Connx(ctx)
	if err != nil {
		return nil, r.dataAccess(err, "connect")
	}
	defer logging.DeferClose(r.logger, conn, "failed to release connection")

	found, err := r.Stores(ctx, conn, filters.Plant)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		log.Warn().Msg("No stores found for plant")
		return []model.Row{}, nil
	}
	stores := OrderStores(found, filters.PrimaryStore)

	query := BuildQuery(filters, stores)
	if n := query.Placeholders(); n != len(query.Args) {
		return nil, fmt.Errorf("report query has %d placeholders but %d args", n, len(query.Args))
	}
	log.Info().
		Int("stores", len(stores)).
		Int("params", len(query.Args)).
		Msg("Executing dynamic report query")

	rows, err := conn.QueryxContext(ctx, rebind(r.db.DriverName(), query.SQL), query.Args...)
	if err != nil {
		return nil, r.dataAccess(err, "report query")
	}
	defer logging.DeferClose(r.logger, rows, "failed to close report rows")

	columns, err := rows.Columns()
	if err != nil {
		return nil, r.dataAccess(err, "report columns")
	}

	result := []model.Row{}
	for rows.Next() {
		values, err := rows.SliceScan()
		if err != nil {
			return nil, r.unexpected(err, "scanning report row")
		}
		row := make(model.Row, len(columns))
		for i, name := range columns {
			row[i] = model.Field{Name: name, Value: normalizeValue(values[i])}
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, r.dataAccess(err, "report rows")
	}

	log.Info().Int("rows", len(result)).Msg("Report fetched")
	return result, nil
}

// dataAccess logs a database failure with its SQL error details and wraps it
func (r *Repository) dataAccess(err error, op string) error {
	dae := &model.DataAccessError{SQLState: "UNKNOWN", Err: err}

	var msErr mssql.Error
	if errors.As(err, &msErr) {
		dae.Number = msErr.Number
		dae.SQLState = fmt.Sprintf("%d.%d", msErr.Number, msErr.State)
	}

	r.logger.Error().
		Err(err).
		Str("op", op).
		Str("sqlstate", dae.SQLState).
		Msg("Database error")
	return dae
}

// unexpected logs a non-database failure with a stack trace
func (r *Repository) unexpected(err error, op string) error {
	r.logger.Error().
		Err(err).
		Str("op", op).
		Str("trace", string(debug.Stack())).
		Msg("Unexpected error")
	return fmt.Errorf("%s: %w", op, err)
}

// normalizeValue converts driver byte slices: DECIMAL columns arrive as
// their textual form and become decimal.Decimal, anything else a string.
func normalizeValue(v any) any {
	b, ok := v.([]byte)
	if !ok {
		return v
	}
	s := string(b)
	if d, err := decimal.NewFromString(s); err == nil {
		return d
	}
	return s
}
