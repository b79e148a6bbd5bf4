package config

import (
	"os"
	"testing"
)

var configKeys = []string{
	"PORT", "FONTS_DIR", "CORS_ORIGINS",
	"EMAIL_HOST", "EMAIL_PORT", "EMAIL_USER", "EMAIL_PASS", "EMAIL_USE_TLS",
}

// clearEnv unsets every config variable for the duration of the test.
// t.Setenv registers the restore; Unsetenv makes the variable truly absent
// so envDefault values apply.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configKeys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8001" {
		t.Errorf("Port = %q, want 8001", cfg.Port)
	}
	if cfg.FontsDir != "fonts" {
		t.Errorf("FontsDir = %q, want fonts", cfg.FontsDir)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "*" {
		t.Errorf("CORSOrigins = %v, want [*]", cfg.CORSOrigins)
	}
	if cfg.SMTP.Host != "smtp.gmail.com" {
		t.Errorf("SMTP.Host = %q, want smtp.gmail.com", cfg.SMTP.Host)
	}
	if cfg.SMTP.Port != 465 {
		t.Errorf("SMTP.Port = %d, want 465", cfg.SMTP.Port)
	}
	if !cfg.SMTP.UseTLS {
		t.Error("SMTP.UseTLS = false, want true")
	}
	if cfg.SMTP.Configured() {
		t.Error("Configured() = true without credentials")
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("FONTS_DIR", "/srv/fonts")
	t.Setenv("CORS_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("EMAIL_HOST", "mail.example.com")
	t.Setenv("EMAIL_PORT", "587")
	t.Setenv("EMAIL_USER", "certs@example.com")
	t.Setenv("EMAIL_PASS", "hunter2")
	t.Setenv("EMAIL_USE_TLS", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9000" {
		t.Errorf("Port = %q, want 9000", cfg.Port)
	}
	if cfg.FontsDir != "/srv/fonts" {
		t.Errorf("FontsDir = %q, want /srv/fonts", cfg.FontsDir)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example" {
		t.Errorf("CORSOrigins = %v, want two origins", cfg.CORSOrigins)
	}
	if cfg.SMTP.Host != "mail.example.com" || cfg.SMTP.Port != 587 {
		t.Errorf("SMTP host/port = %q/%d", cfg.SMTP.Host, cfg.SMTP.Port)
	}
	if cfg.SMTP.UseTLS {
		t.Error("SMTP.UseTLS = true, want false")
	}
	if !cfg.SMTP.Configured() {
		t.Error("Configured() = false with credentials set")
	}
}

func TestSMTPConfigured(t *testing.T) {
	tests := []struct {
		name string
		smtp SMTP
		want bool
	}{
		{"both set", SMTP{User: "u", Pass: "p"}, true},
		{"user only", SMTP{User: "u"}, false},
		{"pass only", SMTP{Pass: "p"}, false},
		{"neither", SMTP{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.smtp.Configured(); got != tt.want {
				t.Fatalf("Configured() = %v, want %v", got, tt.want)
			}
		})
	}
}
