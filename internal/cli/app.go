package cli

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"

	"aftermarket-report/internal/aftermarket"
	"aftermarket-report/internal/config"
	"aftermarket-report/internal/logging"
	"aftermarket-report/internal/mailer"
	"aftermarket-report/internal/model"
	"aftermarket-report/internal/report"
	"aftermarket-report/internal/sheetlog"
	"aftermarket-report/internal/store"
	"aftermarket-report/internal/usage"
)

// app holds everything a command needs, built from the environment
type app struct {
	cfg     config.Config
	logger  zerolog.Logger
	erp     *sqlx.DB
	history *store.Store
	service *aftermarket.Service
}

func loadConfig(envFile string) (config.Config, zerolog.Logger) {
	cfg, warnings := config.Load(envFile)
	logger := logging.New(logging.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})
	for _, w := range warnings {
		logger.Debug().Msg(w)
	}
	return cfg, logger
}

// newApp connects to the ERP and the run history and wires the service
func newApp(envFile string) (*app, error) {
	cfg, logger := loadConfig(envFile)

	if err := cfg.ValidateDatabase(); err != nil {
		return nil, err
	}

	erp, err := sqlx.Open("sqlserver", cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open ERP connection: %w", err)
	}

	a := &app{cfg: cfg, logger: logger, erp: erp}

	var runs aftermarket.RunStore
	if cfg.HistoryDB != "" {
		history, err := store.Open(cfg.HistoryDB)
		if err != nil {
			erp.Close()
			return nil, fmt.Errorf("failed to open run history: %w", err)
		}
		a.history = history
		runs = history
	}

	var mail aftermarket.Sender
	if cfg.SMTP.Server != "" {
		mail = mailer.New(cfg.SMTP, logger)
	}

	a.service = aftermarket.NewService(
		report.NewRepository(erp, logger),
		runs,
		sheetlog.NewAppender(cfg.SheetLogPath, model.DefaultLockRetry(), logger),
		usage.NewLogger(cfg.UsageLogDir, logger),
		mail,
		logger,
	)
	return a, nil
}

func (a *app) close() {
	if a.history != nil {
		logging.DeferClose(a.logger, a.history, "failed to close run history")
	}
	logging.DeferClose(a.logger, a.erp, "failed to close ERP connection")
}
