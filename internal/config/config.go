// Package config loads the service settings from the environment,
// optionally seeded from a .env file.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"aftermarket-report/internal/model"
	"aftermarket-report/pkg/utils"
)

// Database holds the ERP connection settings
type Database struct {
	Server         string
	Port           int
	Name           string
	User           string
	Password       string
	ConnectTimeout time.Duration
}

// SMTP holds the mail relay settings
type SMTP struct {
	Server   string
	Port     string
	User     string
	Password string
	CCDomain string
}

// Config is the full service configuration
type Config struct {
	Database Database
	SMTP     SMTP

	UsageLogDir  string // FOLDER_PATH
	SheetLogPath string // FOLDER_PATH_LOCAL
	HistoryDB    string
	ExportDir    string
	HTTPAddr     string

	LogLevel  string
	LogPretty bool
}

// Load reads the configuration. Files are loaded with godotenv first; a
// missing file is not an error, variables already set win.
func Load(envFiles ...string) (Config, []string) {
	var warnings []string
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil {
			warnings = append(warnings, fmt.Sprintf("env file %s not loaded: %v", f, err))
		}
	}

	port, err := strconv.Atoi(getEnv("DB_PORT", "1433"))
	if err != nil {
		warnings = append(warnings, fmt.Sprintf("invalid DB_PORT, using 1433: %v", err))
		port = 1433
	}

	cfg := Config{
		Database: Database{
			Server:         os.Getenv("DB_SERVER"),
			Port:           port,
			Name:           os.Getenv("DB_DATABASE"),
			User:           os.Getenv("DB_USER"),
			Password:       os.Getenv("DB_PASSWORD"),
			ConnectTimeout: utils.ParseDuration(os.Getenv("DB_CONNECT_TIMEOUT"), 15*time.Second),
		},
		SMTP: SMTP{
			Server:   os.Getenv("SMTP_SERVER"),
			Port:     os.Getenv("SMTP_PORT"),
			User:     os.Getenv("SMTP_USER"),
			Password: os.Getenv("SMTP_PASSWORD"),
			CCDomain: getEnv("MAIL_CC_DOMAIN", "example.com"),
		},
		UsageLogDir:  getEnv("FOLDER_PATH", "./logs/"),
		SheetLogPath: getEnv("FOLDER_PATH_LOCAL", "./logs/AfterMarket_Base.xlsx"),
		HistoryDB:    getEnv("HISTORY_DB", "aftermarket.db"),
		ExportDir:    getEnv("EXPORT_DIR", "exports"),
		HTTPAddr:     getEnv("HTTP_ADDR", ":8080"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		LogPretty:    getEnv("LOG_PRETTY", "true") != "false",
	}
	return cfg, warnings
}

// ValidateDatabase reports every missing ERP setting at once
func (c Config) ValidateDatabase() error {
	var missing []string
	if c.Database.Server == "" {
		missing = append(missing, "DB_SERVER")
	}
	if c.Database.Name == "" {
		missing = append(missing, "DB_DATABASE")
	}
	if c.Database.User == "" {
		missing = append(missing, "DB_USER")
	}
	if c.Database.Password == "" {
		missing = append(missing, "DB_PASSWORD")
	}
	if len(missing) > 0 {
		return &model.ConfigurationError{Missing: missing, Reason: "database connection settings incomplete"}
	}
	return nil
}

// DSN builds the sqlserver connection URL
func (d Database) DSN() string {
	q := url.Values{}
	q.Set("database", d.Name)
	q.Set("connection timeout", strconv.Itoa(int(d.ConnectTimeout/time.Second)))

	u := &url.URL{
		Scheme:   "sqlserver",
		User:     url.UserPassword(d.User, d.Password),
		Host:     d.Server,
		RawQuery: q.Encode(),
	}

	// HOST\INSTANCE goes in the path; the browser service resolves the port
	if i := strings.LastIndex(d.Server, `\`); i >= 0 {
		u.Host = d.Server[:i]
		u.Path = "/" + d.Server[i+1:]
	} else if !strings.Contains(d.Server, ":") && d.Port > 0 {
		u.Host = fmt.Sprintf("%s:%d", d.Server, d.Port)
	}
	return u.String()
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
