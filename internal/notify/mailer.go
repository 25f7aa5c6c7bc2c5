package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/lexiqai/meeting-analyzer/internal/config"
)

// Message is one outgoing report email
type Message struct {
	To      []string
	Subject string
	Text    string
	HTML    string
}

// Sender delivers a Message. One call is one delivery attempt.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// MailConfig is the process-wide SMTP transport configuration
type MailConfig struct {
	Username string
	Password string
	From     string
	FromName string
	Server   string
	Port     int
	StartTLS bool
	SSLTLS   bool
	Timeout  time.Duration

	UseCredentials bool
	ValidateCerts  bool
}

// MailConfigFromConfig extracts the SMTP settings from cfg
func MailConfigFromConfig(cfg *config.Config) MailConfig {
	return MailConfig{
		Username: cfg.MailUsername,
		Password: cfg.MailPassword,
		From:     cfg.MailFrom,
		FromName: cfg.MailFromName,
		Server:   cfg.MailServer,
		Port:     cfg.MailPort,
		StartTLS: cfg.MailStartTLS,
		SSLTLS:   cfg.MailSSLTLS,
		Timeout:  cfg.MailTimeout,

		UseCredentials: cfg.MailUseCredentials,
		ValidateCerts:  cfg.MailValidateCerts,
	}
}

// Missing lists the required settings that are empty. Credentials are only
// required when UseCredentials is set.
func (c MailConfig) Missing() []string {
	var missing []string
	if c.UseCredentials {
		if strings.TrimSpace(c.Username) == "" {
			missing = append(missing, "MAIL_USERNAME")
		}
		if c.Password == "" {
			missing = append(missing, "MAIL_PASSWORD")
		}
	}
	if strings.TrimSpace(c.From) == "" {
		missing = append(missing, "MAIL_FROM")
	}
	if strings.TrimSpace(c.Server) == "" {
		missing = append(missing, "MAIL_SERVER")
	}
	return missing
}

// Mailer sends messages over SMTP. It keeps no connection between sends.
type Mailer struct {
	cfg MailConfig
}

// NewMailer creates a Mailer for cfg
func NewMailer(cfg MailConfig) *Mailer {
	return &Mailer{cfg: cfg}
}

// Send dials the SMTP server, delivers msg and disconnects
func (m *Mailer) Send(ctx context.Context, msg Message) error {
	if missing := m.cfg.Missing(); len(missing) > 0 {
		return fmt.Errorf("mail transport not configured: missing %s", strings.Join(missing, ", "))
	}

	email := mail.NewMsg()
	if err := email.FromFormat(m.cfg.FromName, m.cfg.From); err != nil {
		return fmt.Errorf("invalid sender address: %w", err)
	}
	if err := email.To(msg.To...); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}
	email.Subject(msg.Subject)
	email.SetBodyString(mail.TypeTextPlain, msg.Text)
	if msg.HTML != "" {
		email.AddAlternativeString(mail.TypeTextHTML, msg.HTML)
	}

	client, err := mail.NewClient(m.cfg.Server, m.clientOptions()...)
	if err != nil {
		return fmt.Errorf("create smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, email); err != nil {
		return fmt.Errorf("send mail via %s: %w", m.cfg.Server, err)
	}
	return nil
}

func (m *Mailer) clientOptions() []mail.Option {
	opts := []mail.Option{
		mail.WithPort(m.cfg.Port),
		mail.WithTLSConfig(m.tlsConfig()),
	}
	if m.cfg.UseCredentials {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.cfg.Username),
			mail.WithPassword(m.cfg.Password),
		)
	}
	if m.cfg.Timeout > 0 {
		opts = append(opts, mail.WithTimeout(m.cfg.Timeout))
	}

	switch {
	case m.cfg.SSLTLS:
		opts = append(opts, mail.WithSSL())
	case m.cfg.StartTLS:
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	default:
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}
	return opts
}

func (m *Mailer) tlsConfig() *tls.Config {
	return &tls.Config{
		ServerName:         m.cfg.Server,
		InsecureSkipVerify: !m.cfg.ValidateCerts,
		MinVersion:         tls.VersionTLS12,
	}
}
