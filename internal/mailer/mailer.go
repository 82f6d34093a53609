// Package mailer sends transactional email. Sends are fire-and-forget:
// a failed delivery is logged, never surfaced to the request that
// triggered it.
package mailer

import (
	"fmt"

	"github.com/bitnshop/bitnshop/internal/config"
	"github.com/bitnshop/bitnshop/pkg/logger"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Mailer is what services depend on; NoopMailer stands in when SMTP is
// not configured (and in tests).
type Mailer interface {
	SendWelcome(email, username string)
	SendPasswordReset(email, username, code string)
	SendAccountCredentials(email, username, password string)
}

// SMTPMailer delivers through an SMTP relay using gomail.
type SMTPMailer struct {
	dialer *gomail.Dialer
	sender string
}

func NewSMTPMailer(cfg *config.Config) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword),
		sender: cfg.MailSender,
	}
}

func (m *SMTPMailer) SendWelcome(email, username string) {
	body := fmt.Sprintf("Hi %s,\n\nWelcome to BitnShop! Your account is ready.\n", username)
	m.sendAsync(email, "Welcome to BitnShop", body)
}

func (m *SMTPMailer) SendPasswordReset(email, username, code string) {
	body := fmt.Sprintf("Hi %s,\n\nUse this code to reset your password: %s\n\nIf you did not request a reset, ignore this email.\n", username, code)
	m.sendAsync(email, "Reset Your Password", body)
}

func (m *SMTPMailer) SendAccountCredentials(email, username, password string) {
	body := fmt.Sprintf("Hi %s,\n\nAn account has been created for you.\n\nUsername: %s\nTemporary password: %s\n\nPlease change your password after your first login.\n", username, username, password)
	m.sendAsync(email, "Your BitnShop Account", body)
}

// sendAsync dispatches the message on its own goroutine so request
// handling never waits on the SMTP round trip.
func (m *SMTPMailer) sendAsync(to, subject, body string) {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.sender)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	go func() {
		if err := m.dialer.DialAndSend(msg); err != nil {
			logger.Log.Error("Failed to send email",
				zap.String("to", to),
				zap.String("subject", subject),
				zap.Error(err),
			)
			return
		}
		logger.Log.Info("Email sent",
			zap.String("to", to),
			zap.String("subject", subject),
		)
	}()
}

// NoopMailer drops all mail. Used when SMTP is not configured.
type NoopMailer struct{}

func (NoopMailer) SendWelcome(email, username string)                      {}
func (NoopMailer) SendPasswordReset(email, username, code string)          {}
func (NoopMailer) SendAccountCredentials(email, username, password string) {}
