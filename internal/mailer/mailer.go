// Package mailer delivers rendered certificates over SMTP.
package mailer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/textproto"
	"strings"

	mail "github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"github.com/certifyhq/certify/internal/config"
)

var (
	// ErrNotConfigured means EMAIL_USER / EMAIL_PASS are not set.
	ErrNotConfigured = errors.New("email credentials not configured")
	// ErrAuth means the relay rejected the configured credentials.
	ErrAuth = errors.New("smtp authentication failed")
)

// Attachment is one rendered certificate riding along an email.
type Attachment struct {
	Filename string
	Data     []byte
}

// Message is a single outgoing certificate email. The sender address comes
// from configuration, not from the message.
type Message struct {
	To          string
	Subject     string
	BodyPlain   string
	BodyHTML    string
	Attachments []Attachment
}

// Sender delivers certificate emails. Handlers depend on this interface so
// tests can swap in a recorder.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SMTP sends mail through the configured relay, one connection per send.
type SMTP struct {
	cfg config.SMTP
	log *zap.Logger
}

// NewSMTP creates a Sender for the given relay configuration.
func NewSMTP(cfg config.SMTP, log *zap.Logger) *SMTP {
	if log == nil {
		log = zap.NewNop()
	}
	return &SMTP{cfg: cfg, log: log}
}

// Send assembles and delivers msg. Authentication failures come back
// wrapping ErrAuth so callers can distinguish them from transport trouble.
func (s *SMTP) Send(ctx context.Context, msg Message) error {
	if !s.cfg.Configured() {
		return ErrNotConfigured
	}

	m, err := s.buildMessage(msg)
	if err != nil {
		return fmt.Errorf("build message: %w", err)
	}
	client, err := s.client()
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		if isAuthError(err) {
			return fmt.Errorf("%w: %v", ErrAuth, err)
		}
		return fmt.Errorf("send email: %w", err)
	}
	s.log.Info("email sent",
		zap.String("to", msg.To),
		zap.Int("attachments", len(msg.Attachments)))
	return nil
}

// buildMessage maps a Message onto the wire format: plain body, optional
// HTML alternative, attachments in order.
func (s *SMTP) buildMessage(msg Message) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(s.cfg.User); err != nil {
		return nil, fmt.Errorf("sender address: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return nil, fmt.Errorf("recipient address: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextPlain, msg.BodyPlain)
	if strings.TrimSpace(msg.BodyHTML) != "" {
		m.AddAlternativeString(mail.TypeTextHTML, msg.BodyHTML)
	}
	for _, att := range msg.Attachments {
		if err := m.AttachReader(att.Filename, bytes.NewReader(att.Data)); err != nil {
			return nil, fmt.Errorf("attach %s: %w", att.Filename, err)
		}
	}
	return m, nil
}

// client builds the SMTP client: implicit TLS when UseTLS is set (the 465
// convention), otherwise mandatory STARTTLS.
func (s *SMTP) client() (*mail.Client, error) {
	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(s.cfg.User),
		mail.WithPassword(s.cfg.Pass),
	}
	if s.cfg.UseTLS {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	}
	return mail.NewClient(s.cfg.Host, opts...)
}

// isAuthError reports whether err is an authentication rejection. The
// relay's reply surfaces as a wrapped textproto error, so the reply code
// is the classifier.
func isAuthError(err error) bool {
	var protoErr *textproto.Error
	if errors.As(err, &protoErr) {
		switch protoErr.Code {
		case 530, 534, 535:
			return true
		}
	}
	return false
}
