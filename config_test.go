package groundbase

import (
	"errors"
	"testing"
	"time"
)

func TestRetryConfigValidate(t *testing.T) {
	if err := DefaultRetryConfig().Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*RetryConfig)
	}{
		{"zero retries", func(c *RetryConfig) { c.MaxRetries = 0 }},
		{"negative backoff", func(c *RetryConfig) { c.InitialBackoff = -time.Millisecond }},
		{"zero multiple", func(c *RetryConfig) { c.BackoffMultiple = 0 }},
		{"cap below initial", func(c *RetryConfig) { c.MaxBackoff = time.Nanosecond }},
		{"jitter above one", func(c *RetryConfig) { c.JitterPercent = 1.5 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultRetryConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("want ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestBackendConfigValidate(t *testing.T) {
	t.Run("embedded only", func(t *testing.T) {
		cfg := BackendConfig{EmbeddedPath: "./data/app.db"}
		if err := cfg.Validate(); err != nil {
			t.Errorf("embedded-only config should validate: %v", err)
		}
	})

	t.Run("hosted only", func(t *testing.T) {
		cfg := BackendConfig{HostedURL: "postgres://db.example.com:5432/app"}
		if err := cfg.Validate(); err != nil {
			t.Errorf("hosted-only config should validate: %v", err)
		}
	})

	t.Run("nothing configured", func(t *testing.T) {
		if err := (BackendConfig{}).Validate(); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("want ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("force embedded without path", func(t *testing.T) {
		cfg := BackendConfig{ForceEmbedded: true, HostedURL: "postgres://db.example.com/app"}
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("want ErrInvalidConfig, got %v", err)
		}
	})
}
