package notification

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"

	"go.uber.org/zap"
	gomail "gopkg.in/gomail.v2"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

type SMTPConfig struct {
	Host string
	Port int
	User string
	Pass string
	From string
}

// EmailSender renders HTML templates and delivers them over SMTP.
type EmailSender struct {
	dialer    *gomail.Dialer
	from      string
	templates *template.Template
	logger    *zap.Logger
}

func NewEmailSender(cfg SMTPConfig, logger *zap.Logger) (*EmailSender, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	tmpl, err := template.New("email").Funcs(template.FuncMap{
		"centsToUnits": func(cents int64) float64 { return float64(cents) / 100 },
	}).ParseFS(templatesFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse email templates: %w", err)
	}
	return &EmailSender{
		dialer:    gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Pass),
		from:      cfg.From,
		templates: tmpl,
		logger:    logger,
	}, nil
}

func (s *EmailSender) SendOrderConfirmation(_ context.Context, data OrderConfirmationData) error {
	subject := fmt.Sprintf("Order %s confirmed", data.Order.OrderNumber)
	return s.send(data.Order.Email, subject, "order_confirmation.tmpl", data)
}

func (s *EmailSender) SendSubscriptionWelcome(_ context.Context, data SubscriptionWelcomeData) error {
	subject := fmt.Sprintf("Your %s subscription is active", data.ProductName)
	return s.send(data.Email, subject, "subscription_welcome.tmpl", data)
}

func (s *EmailSender) send(to, subject, templateName string, data interface{}) error {
	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, templateName, data); err != nil {
		return fmt.Errorf("render %s: %w", templateName, err)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", s.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body.String())

	if err := s.dialer.DialAndSend(msg); err != nil {
		s.logger.Warn("email: send failed", zap.String("to", to), zap.String("template", templateName), zap.Error(err))
		return err
	}
	return nil
}
