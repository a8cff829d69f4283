// Package mailer sends account lifecycle emails over SMTP.
package mailer

import (
	"context"
	"fmt"

	"github.com/caarlos0/env/v11"
	"gopkg.in/gomail.v2"
)

// Config holds SMTP settings, parsed from SMTP_* environment variables.
type Config struct {
	Host     string `env:"SMTP_HOST"`
	Port     int    `env:"SMTP_PORT"`
	Username string `env:"SMTP_USERNAME"`
	Password string `env:"SMTP_PASSWORD"`
	From     string `env:"SMTP_FROM"`
}

// ConfigFromEnv parses and validates the SMTP configuration.
func ConfigFromEnv() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, err
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	if c.Host == "" {
		return fmt.Errorf("missing SMTP_HOST environment variable")
	}
	if c.Port == 0 {
		return fmt.Errorf("missing SMTP_PORT environment variable")
	}
	if c.From == "" {
		return fmt.Errorf("missing SMTP_FROM environment variable")
	}
	return nil
}

// Mailer implements the account notifier interface over a gomail dialer.
// FrontendURL anchors the links embedded in every message.
type Mailer struct {
	dialer      *gomail.Dialer
	from        string
	frontendURL string
}

// New builds a Mailer from an SMTP configuration.
func New(cfg Config, frontendURL string) *Mailer {
	return &Mailer{
		dialer:      gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:        cfg.From,
		frontendURL: frontendURL,
	}
}

// send delivers one message, bounded by ctx. The gomail dialer carries
// no deadline of its own, so the dial-and-send runs in a goroutine and
// a hung SMTP server costs the context timeout, not forever. On timeout
// the goroutine is abandoned to finish or fail on its own.
func (m *Mailer) send(ctx context.Context, to, subject, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	errCh := make(chan error, 1)
	go func() {
		errCh <- m.dialer.DialAndSend(msg)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SendVerification emails the link that activates a fresh account.
func (m *Mailer) SendVerification(ctx context.Context, name, email, token string) error {
	body := fmt.Sprintf(
		`<p>Hello %s, your account is almost ready.</p>
<p>Confirm it here: <a href="%s/auth/confirm-account/%s">confirm account</a></p>
<p>If you did not create this account, ignore this message.</p>`,
		name, m.frontendURL, token,
	)
	return m.send(ctx, email, "AppSalon - Confirm your account", body)
}

// SendDeletionConfirmation emails the link that finalizes account
// removal. The link is only valid for a limited time.
func (m *Mailer) SendDeletionConfirmation(ctx context.Context, name, email, token string) error {
	body := fmt.Sprintf(
		`<p>Hello %s, we received a request to delete your account.</p>
<p>Confirm the deletion here: <a href="%s/auth/confirm-delete-account/%s">delete account</a></p>
<p>The link expires in one hour. If you did not request this, ignore this message and your account stays untouched.</p>`,
		name, m.frontendURL, token,
	)
	return m.send(ctx, email, "AppSalon - Confirm account deletion", body)
}

// SendPasswordRecovery emails the link that opens the password reset
// form.
func (m *Mailer) SendPasswordRecovery(ctx context.Context, name, email, token string) error {
	body := fmt.Sprintf(
		`<p>Hello %s, you requested to reset your password.</p>
<p>Choose a new one here: <a href="%s/auth/forgot-password/%s">reset password</a></p>
<p>If you did not request this, ignore this message.</p>`,
		name, m.frontendURL, token,
	)
	return m.send(ctx, email, "AppSalon - Reset your password", body)
}

// SendAccountBlocked warns the owner that repeated failed logins locked
// the account and that a password reset will unlock it.
func (m *Mailer) SendAccountBlocked(ctx context.Context, name, email string) error {
	body := fmt.Sprintf(
		`<p>Hello %s, your account was blocked after too many failed login attempts.</p>
<p>If this was you, reset your password here: <a href="%s/auth/forgot-password">reset password</a></p>
<p>If it was not you, someone may be trying to guess your password and we recommend resetting it anyway.</p>`,
		name, m.frontendURL,
	)
	return m.send(ctx, email, "AppSalon - Your account has been blocked", body)
}
