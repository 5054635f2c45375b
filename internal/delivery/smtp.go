package delivery

import (
	"context"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"
)

type SMTPConfig struct {
	Server   string
	Port     int
	Username string
	Password string
	From     string
}

// Mailer sends HTML mail over SMTP with mandatory STARTTLS and PLAIN auth.
type Mailer struct {
	cfg     SMTPConfig
	timeout time.Duration
	now     func() time.Time
}

func NewMailer(cfg SMTPConfig) *Mailer {
	if cfg.Username == "" {
		cfg.Username = cfg.From
	}
	return &Mailer{
		cfg:     cfg,
		timeout: 30 * time.Second,
		now:     time.Now,
	}
}

func (m *Mailer) Deliver(ctx context.Context, msg Message) error {
	email, err := m.buildMessage(msg)
	if err != nil {
		return err
	}

	client, err := mail.NewClient(m.cfg.Server,
		mail.WithPort(m.cfg.Port),
		mail.WithTLSPolicy(mail.TLSMandatory),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(m.cfg.Username),
		mail.WithPassword(m.cfg.Password),
		mail.WithTimeout(m.timeout),
	)
	if err != nil {
		return fmt.Errorf("creating smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, email); err != nil {
		return fmt.Errorf("sending mail via %s:%d: %w", m.cfg.Server, m.cfg.Port, err)
	}
	return nil
}

func (m *Mailer) buildMessage(msg Message) (*mail.Msg, error) {
	email := mail.NewMsg()
	if err := email.From(m.cfg.From); err != nil {
		return nil, fmt.Errorf("invalid sender %q: %w", m.cfg.From, err)
	}
	if err := email.To(msg.To); err != nil {
		return nil, fmt.Errorf("invalid recipient %q: %w", msg.To, err)
	}
	email.Subject(msg.Subject)
	email.SetDateWithValue(m.now())
	email.SetMessageID()
	email.SetBodyString(mail.TypeTextHTML, msg.HTML)
	return email, nil
}
