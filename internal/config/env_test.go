package config

import (
	"testing"
	"time"
)

func TestClampTokenBudget(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"", DefaultMaxOutputTokens},
		{"   ", DefaultMaxOutputTokens},
		{"8192", 8192},
		{" 2048 ", 2048},
		{"abc", MinMaxOutputTokens},
		{"12.5", MinMaxOutputTokens},
		{"10", MinMaxOutputTokens},
		{"-1", MinMaxOutputTokens},
		{"1024", 1024},
	}
	for _, tc := range cases {
		if got := ClampTokenBudget(tc.in); got != tc.want {
			t.Fatalf("ClampTokenBudget(%q)=%d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestLoadEnv_DefaultsAndOverrides(t *testing.T) {
	t.Setenv("OPENAI_MODEL", "")
	t.Setenv("MAX_OUTPUT_TOKENS", "")
	t.Setenv("ALLOWED_ORIGIN", "")
	t.Setenv("APP_ENV", "")
	t.Setenv("REQUEST_TIMEOUT", "")

	cfg := LoadEnv()
	if cfg.OpenAI.Model != "gpt-4o" {
		t.Fatalf("expected default model, got %q", cfg.OpenAI.Model)
	}
	if cfg.MaxOutputTokens != DefaultMaxOutputTokens {
		t.Fatalf("expected default budget, got %d", cfg.MaxOutputTokens)
	}
	if cfg.AllowedOrigin != "*" {
		t.Fatalf("expected wildcard origin, got %q", cfg.AllowedOrigin)
	}
	if cfg.Production {
		t.Fatalf("expected development mode by default")
	}
	if cfg.RequestTimeout != 120*time.Second {
		t.Fatalf("expected 120s timeout, got %v", cfg.RequestTimeout)
	}

	t.Setenv("OPENAI_MODEL", "gpt-4.1-mini")
	t.Setenv("MAX_OUTPUT_TOKENS", "not-a-number")
	t.Setenv("ALLOWED_ORIGIN", "https://sketch.example.com")
	t.Setenv("APP_ENV", "Production")
	t.Setenv("REQUEST_TIMEOUT", "45s")

	cfg = LoadEnv()
	if cfg.OpenAI.Model != "gpt-4.1-mini" {
		t.Fatalf("unexpected model %q", cfg.OpenAI.Model)
	}
	if cfg.MaxOutputTokens != MinMaxOutputTokens {
		t.Fatalf("expected clamped budget, got %d", cfg.MaxOutputTokens)
	}
	if cfg.AllowedOrigin != "https://sketch.example.com" {
		t.Fatalf("unexpected origin %q", cfg.AllowedOrigin)
	}
	if !cfg.Production {
		t.Fatalf("expected production mode")
	}
	if cfg.RequestTimeout != 45*time.Second {
		t.Fatalf("expected 45s timeout, got %v", cfg.RequestTimeout)
	}
}

func TestParseHeaders(t *testing.T) {
	got := parseHeaders(" a=1 , b = 2,broken, =x, c=")
	if len(got) != 2 || got["a"] != "1" || got["b"] != "2" {
		t.Fatalf("unexpected headers: %#v", got)
	}
	if parseHeaders("") != nil {
		t.Fatalf("expected nil for empty input")
	}
}
