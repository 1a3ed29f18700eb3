// Package mail отправляет письма пользователям через SMTP.
package mail

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net"
	"net/smtp"
	"strconv"

	"go.uber.org/zap"

	"notespace/internal/config"
	svc "notespace/internal/users/ports/services"
	"notespace/pkg/logger"
	"notespace/pkg/resilience"
)

const (
	methodSendPasswordReset = "SMTPMailer.SendPasswordReset"
	resetSubject            = "Reset your password"
	msgResetMailSent        = "password reset email sent"
	errMsgRenderTemplate    = "failed to render password reset template"
	errMsgSendMail          = "failed to send password reset email"
)

var resetTemplate = template.Must(template.New("reset").Parse(`<!DOCTYPE html>
<html>
<body>
<p>We received a request to reset your notespace password.</p>
<p><a href="{{.Link}}">Reset password</a></p>
<p>The link expires in one hour. If you did not request a reset, ignore this email.</p>
</body>
</html>
`))

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPMailer отправляет письма сброса пароля.
type SMTPMailer struct {
	addr string
	from string
	auth smtp.Auth
	send sendFunc
}

var _ svc.Mailer = (*SMTPMailer)(nil)

// NewSMTPMailer создает отправителя. Без пользователя авторизация не используется.
func NewSMTPMailer(cfg *config.SMTPConfig) *SMTPMailer {
	var auth smtp.Auth
	if cfg.User != "" {
		auth = smtp.PlainAuth("", cfg.User, cfg.Password, cfg.Host)
	}

	return &SMTPMailer{
		addr: net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		from: cfg.From,
		auth: auth,
		send: smtp.SendMail,
	}
}

// SendPasswordReset отправляет ссылку сброса пароля.
func (m *SMTPMailer) SendPasswordReset(ctx context.Context, to, resetLink string) error {
	log := logger.Log(ctx).With(zap.String("method", methodSendPasswordReset))

	msg, err := m.buildMessage(to, resetSubject, resetLink)
	if err != nil {
		log.Error(ctx, errMsgRenderTemplate, zap.Error(err))
		return fmt.Errorf("%s: %w", errMsgRenderTemplate, err)
	}

	if err := m.send(m.addr, m.auth, m.from, []string{to}, msg); err != nil {
		log.Warn(ctx, errMsgSendMail, zap.Error(err))
		return fmt.Errorf("%s: %w", errMsgSendMail, err)
	}

	log.Info(ctx, msgResetMailSent)
	return nil
}

func (m *SMTPMailer) buildMessage(to, subject, link string) ([]byte, error) {
	var body bytes.Buffer
	if err := resetTemplate.Execute(&body, struct{ Link string }{Link: link}); err != nil {
		return nil, err
	}

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s\r\n", m.from)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n")
	msg.Write(body.Bytes())

	return msg.Bytes(), nil
}

// ResilientMailer оборачивает Mailer повторами и автоматическим выключателем.
type ResilientMailer struct {
	next   svc.Mailer
	policy *resilience.Policy
}

var _ svc.Mailer = (*ResilientMailer)(nil)

// NewResilientMailer создает обертку.
func NewResilientMailer(next svc.Mailer, policy *resilience.Policy) *ResilientMailer {
	return &ResilientMailer{next: next, policy: policy}
}

// SendPasswordReset отправляет письмо с учетом политики устойчивости.
func (m *ResilientMailer) SendPasswordReset(ctx context.Context, to, resetLink string) error {
	return m.policy.Run(ctx, "SendPasswordReset", func() error {
		return m.next.SendPasswordReset(ctx, to, resetLink)
	})
}
