package mailer

import (
	"context"
	"fmt"
	"net/smtp"

	"go.uber.org/zap"

	"subsidyledger/pkg/config"
)

// Mailer delivers one-time passcodes to applicants.
type Mailer interface {
	SendOTP(ctx context.Context, email, code string) error
}

// New returns an SMTP mailer, or the console fallback when no SMTP host is
// configured (dev environments).
func New(cfg config.SMTPConfig, logger *zap.Logger) Mailer {
	if cfg.Host == "" {
		logger.Warn("SMTP not configured, OTP codes will be logged to console")
		return &ConsoleMailer{logger: logger}
	}
	return &SMTPMailer{cfg: cfg, logger: logger}
}

// SMTPMailer sends OTP mail over plain SMTP.
type SMTPMailer struct {
	cfg    config.SMTPConfig
	logger *zap.Logger
}

func (m *SMTPMailer) SendOTP(ctx context.Context, email, code string) error {
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)

	var auth smtp.Auth
	if m.cfg.User != "" {
		auth = smtp.PlainAuth("", m.cfg.User, m.cfg.Password, m.cfg.Host)
	}

	msg := []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: Your verification code\r\n\r\nYour one-time passcode is %s. It expires in 10 minutes.\r\n",
		m.cfg.From, email, code,
	))

	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{email}, msg); err != nil {
		m.logger.Error("Failed to send OTP mail",
			zap.String("email", email),
			zap.Error(err),
		)
		return fmt.Errorf("failed to send otp mail: %w", err)
	}

	m.logger.Info("OTP mail sent", zap.String("email", email))
	return nil
}

// ConsoleMailer logs the code instead of mailing it. Deliberate dev fallback.
type ConsoleMailer struct {
	logger *zap.Logger
}

func (m *ConsoleMailer) SendOTP(ctx context.Context, email, code string) error {
	m.logger.Info("OTP (console fallback)",
		zap.String("email", email),
		zap.String("code", code),
	)
	return nil
}
