package mailer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/textproto"
	"strings"
	"testing"

	mail "github.com/wneessen/go-mail"

	"github.com/certifyhq/certify/internal/config"
)

func testSMTP() *SMTP {
	return NewSMTP(config.SMTP{
		Host: "smtp.example.com",
		Port: 465,
		User: "certs@example.com",
		Pass: "secret",
	}, nil)
}

func writeMessage(t *testing.T, m *mail.Msg) string {
	t.Helper()
	var buf bytes.Buffer
	if _, err := m.WriteTo(&buf); err != nil {
		t.Fatalf("write message: %v", err)
	}
	return buf.String()
}

func TestSendNotConfigured(t *testing.T) {
	s := NewSMTP(config.SMTP{Host: "smtp.example.com", Port: 465}, nil)
	err := s.Send(context.Background(), Message{To: "jane@example.com"})
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("err = %v, want ErrNotConfigured", err)
	}
}

func TestBuildMessage(t *testing.T) {
	s := testSMTP()
	m, err := s.buildMessage(Message{
		To:        "jane@example.com",
		Subject:   "Your certificate",
		BodyPlain: "Congratulations, your certificate is attached.",
		BodyHTML:  "<p>Congratulations!</p>",
		Attachments: []Attachment{
			{Filename: "Jane_Doe.jpg", Data: []byte{0xff, 0xd8, 0xff}},
			{Filename: "Jane_Doe.pdf", Data: []byte("%PDF-1.4")},
		},
	})
	if err != nil {
		t.Fatalf("buildMessage: %v", err)
	}

	out := writeMessage(t, m)
	for _, want := range []string{
		"certs@example.com",
		"jane@example.com",
		"Subject: Your certificate",
		"text/plain",
		"text/html",
		"Jane_Doe.jpg",
		"Jane_Doe.pdf",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("message is missing %q", want)
		}
	}
}

func TestBuildMessageSkipsBlankHTML(t *testing.T) {
	s := testSMTP()
	m, err := s.buildMessage(Message{
		To:        "jane@example.com",
		Subject:   "Your certificate",
		BodyPlain: "plain only",
		BodyHTML:  "   ",
	})
	if err != nil {
		t.Fatalf("buildMessage: %v", err)
	}
	if out := writeMessage(t, m); strings.Contains(out, "text/html") {
		t.Fatal("blank HTML still produced an alternative part")
	}
}

func TestBuildMessageRejectsBadRecipient(t *testing.T) {
	s := testSMTP()
	if _, err := s.buildMessage(Message{To: "not an address"}); err == nil {
		t.Fatal("bad recipient accepted")
	}
}

func TestIsAuthError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"send error", &mail.SendError{Reason: mail.ErrSMTPMailFrom}, false},
		{"535 reply", fmt.Errorf("wrapped: %w", &textproto.Error{Code: 535, Msg: "5.7.8 bad credentials"}), true},
		{"534 reply", &textproto.Error{Code: 534, Msg: "5.7.9 auth mechanism too weak"}, true},
		{"530 reply", &textproto.Error{Code: 530, Msg: "5.7.0 auth required"}, true},
		{"550 reply", &textproto.Error{Code: 550, Msg: "mailbox unavailable"}, false},
		{"plain error", errors.New("connection refused"), false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isAuthError(tt.err); got != tt.want {
				t.Fatalf("isAuthError = %v, want %v", got, tt.want)
			}
		})
	}
}
