package notify

import (
	"context"
	"fmt"

	"storefront-service/internal/service"

	"go.uber.org/zap"
	gopkgmail "gopkg.in/gomail.v2"
)

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	SSL      bool
}

// StaffMailer дублирует сводку заказа на почту магазина.
type StaffMailer struct {
	to     string
	from   string
	sender gopkgmail.Sender
	dialer *gopkgmail.Dialer
	log    *zap.Logger
}

func NewStaffMailer(cfg SMTPConfig, to string, log *zap.Logger) *StaffMailer {
	d := gopkgmail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password)
	d.SSL = cfg.SSL
	return &StaffMailer{to: to, from: cfg.From, dialer: d, log: log}
}

// NewStaffMailerWithSender использует готовый Sender вместо SMTP-соединения.
func NewStaffMailerWithSender(from, to string, sender gopkgmail.Sender, log *zap.Logger) *StaffMailer {
	return &StaffMailer{to: to, from: from, sender: sender, log: log}
}

func (m *StaffMailer) Name() string { return "staff-mail" }

func (m *StaffMailer) OnOrderPlaced(ctx context.Context, e service.OrderPlacedEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := Render(SummaryFromEvent(e))
	if err != nil {
		return fmt.Errorf("render order summary: %w", err)
	}

	msg := gopkgmail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", m.to)
	msg.SetHeader("Subject", fmt.Sprintf("New order #%d", e.OrderID))
	msg.SetBody("text/plain", body)

	if m.sender != nil {
		err = gopkgmail.Send(m.sender, msg)
	} else {
		err = m.dialer.DialAndSend(msg)
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDeliveryFailed, err)
	}
	m.log.Info("staff email sent", zap.Uint64("order_id", e.OrderID), zap.String("to", m.to))
	return nil
}
