// Package mailer sends the After Market report by email with the filtered
// and selected datasets attached as workbooks.
package mailer

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"

	"aftermarket-report/internal/config"
	"aftermarket-report/internal/export"
	"aftermarket-report/internal/logging"
	"aftermarket-report/internal/model"
)

// UnknownUser is the placeholder used when no user could be identified
const UnknownUser = "Usuário desconhecido"

const body = "Segue em anexo o relatório de análise de After Market.\n\nAtenciosamente,\nBot"

// Request describes one report email
type Request struct {
	Recipient string
	User      string
	Main      []model.Row
	Selection []model.Row
}

// Mailer builds and sends report emails over SMTP
type Mailer struct {
	cfg    config.SMTP
	logger zerolog.Logger

	send func(port int, msgs ...*gomail.Message) error
	now  func() time.Time
}

// New creates a mailer for the given relay settings
func New(cfg config.SMTP, logger zerolog.Logger) *Mailer {
	m := &Mailer{
		cfg:    cfg,
		logger: logger.With().Str("component", "mailer").Logger(),
		now:    time.Now,
	}
	m.send = m.dialAndSend
	return m
}

// Validate checks the request and relay settings without sending
func (m *Mailer) Validate(req Request) (int, error) {
	user := strings.TrimSpace(req.User)
	if user == "" || user == UnknownUser {
		return 0, &model.ValidationError{Reason: "user could not be identified"}
	}
	if strings.TrimSpace(req.Recipient) == "" {
		return 0, &model.ValidationError{Reason: "recipient is required"}
	}
	if len(req.Main) == 0 && len(req.Selection) == 0 {
		return 0, &model.ValidationError{Reason: "there is no data to send"}
	}

	var missing []string
	if m.cfg.Server == "" {
		missing = append(missing, "SMTP_SERVER")
	}
	if m.cfg.Port == "" {
		missing = append(missing, "SMTP_PORT")
	}
	if m.cfg.User == "" {
		missing = append(missing, "SMTP_USER")
	}
	if len(missing) > 0 {
		return 0, &model.ConfigurationError{Missing: missing, Reason: "SMTP settings incomplete"}
	}

	port, err := strconv.Atoi(m.cfg.Port)
	if err != nil || port <= 0 {
		return 0, &model.ConfigurationError{Reason: fmt.Sprintf("SMTP_PORT %q is not a valid port", m.cfg.Port)}
	}
	return port, nil
}

// Send validates the request, builds the message and hands it to the relay.
func (m *Mailer) Send(ctx context.Context, req Request) error {
	port, err := m.Validate(req)
	if err != nil {
		return err
	}

	msg, err := m.Message(req)
	if err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := m.send(port, msg); err != nil {
		m.logger.Error().Err(err).Str("recipient", req.Recipient).Msg("Failed to send report email")
		return fmt.Errorf("failed to send email: %w", err)
	}

	m.logger.Info().
		Str("recipient", req.Recipient).
		Str("user", req.User).
		Int("rows", len(req.Main)).
		Int("selected", len(req.Selection)).
		Msg("Report email sent")
	return nil
}

// Message builds the email for req
func (m *Mailer) Message(req Request) (*gomail.Message, error) {
	now := m.now()

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.User)
	msg.SetHeader("To", strings.TrimSpace(req.Recipient))
	if m.cfg.CCDomain != "" {
		msg.SetHeader("Cc", fmt.Sprintf("%s@%s", strings.TrimSpace(req.User), m.cfg.CCDomain))
	}
	msg.SetHeader("Subject", "Análise de After Market - "+now.Format("02/01/2006"))
	msg.SetBody("text/plain", body)

	if err := m.attach(msg, export.FileName("Filtrado", "xlsx", now), req.Main); err != nil {
		return nil, err
	}
	if err := m.attach(msg, export.FileName("Selecao", "xlsx", now), req.Selection); err != nil {
		return nil, err
	}
	return msg, nil
}

// attach builds the workbook up front so failures surface before sending
func (m *Mailer) attach(msg *gomail.Message, name string, rows []model.Row) error {
	if len(rows) == 0 {
		return nil
	}
	f, err := export.Workbook(export.DefaultSheet, rows)
	if err != nil {
		return fmt.Errorf("failed to build %s: %w", name, err)
	}
	buf, err := f.WriteToBuffer()
	logging.DeferClose(m.logger, f, "failed to close attachment workbook")
	if err != nil {
		return fmt.Errorf("failed to build %s: %w", name, err)
	}
	data := buf.Bytes()

	msg.Attach(name,
		gomail.SetHeader(map[string][]string{
			"Content-Type": {"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"},
		}),
		gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(data)
			return err
		}),
	)
	return nil
}

func (m *Mailer) dialAndSend(port int, msgs ...*gomail.Message) error {
	d := &gomail.Dialer{Host: m.cfg.Server, Port: port}
	if m.cfg.Password != "" {
		d.Username = m.cfg.User
		d.Password = m.cfg.Password
	}
	return d.DialAndSend(msgs...)
}
