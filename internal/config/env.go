package config

import (
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultMaxOutputTokens is used when MAX_OUTPUT_TOKENS is unset.
	DefaultMaxOutputTokens = 4096
	// MinMaxOutputTokens is the floor applied to non-numeric or too-small budgets.
	MinMaxOutputTokens = 1024

	MaxOutputTokensEnv = "MAX_OUTPUT_TOKENS"
)

// EnvConfig is read once at process start and never modified afterwards.
type EnvConfig struct {
	ListenAddr      string
	AllowedOrigin   string
	Production      bool
	RequestTimeout  time.Duration
	MaxOutputTokens int
	PromptsPath     string
	TranscriptPath  string
	OpenAI          OpenAIEnvConfig
	OTel            OTelEnvConfig
}

type OpenAIEnvConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	OTel    OpenAIOTelEnvConfig
}

type OpenAIOTelEnvConfig struct {
	Enabled       bool
	CaptureBodies bool
	MaxBodyBytes  int
}

type OTelEnvConfig struct {
	Enabled     bool
	ServiceName string
	Endpoint    string
	Protocol    string // "grpc" or "http/protobuf"
	Headers     map[string]string
	Insecure    bool
	SampleRatio float64
}

func LoadEnv() EnvConfig {
	otlpEndpoint := strings.TrimSpace(envString("OTEL_EXPORTER_OTLP_ENDPOINT", ""))

	return EnvConfig{
		ListenAddr:      envString("LISTEN_ADDR", ":8080"),
		AllowedOrigin:   envString("ALLOWED_ORIGIN", "*"),
		Production:      strings.EqualFold(envString("APP_ENV", "development"), "production"),
		RequestTimeout:  envDuration("REQUEST_TIMEOUT", 120*time.Second),
		MaxOutputTokens: ClampTokenBudget(os.Getenv(MaxOutputTokensEnv)),
		PromptsPath:     envString("PROMPTS_PATH", ""),
		TranscriptPath:  envString("TRANSCRIPT_PATH", ""),
		OpenAI: OpenAIEnvConfig{
			APIKey:  envString("OPENAI_API_KEY", ""),
			BaseURL: envString("OPENAI_BASE_URL", ""),
			Model:   envString("OPENAI_MODEL", "gpt-4o"),
			OTel: OpenAIOTelEnvConfig{
				Enabled:       envBool("OTEL_OPENAI_ENABLED", true),
				CaptureBodies: envBool("OTEL_CAPTURE_OPENAI_BODIES", false),
				MaxBodyBytes:  envInt("OTEL_OPENAI_MAX_BODY_BYTES", 64*1024),
			},
		},
		OTel: OTelEnvConfig{
			Enabled:     envBool("OTEL_ENABLED", false),
			ServiceName: envString("OTEL_SERVICE_NAME", "frameforge"),
			Endpoint:    otlpEndpoint,
			Protocol:    strings.ToLower(envString("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc")),
			Headers:     parseHeaders(envString("OTEL_EXPORTER_OTLP_HEADERS", "")),
			Insecure:    envBool("OTEL_EXPORTER_OTLP_INSECURE", defaultInsecure(otlpEndpoint)),
			SampleRatio: clamp01(envFloat("OTEL_TRACES_SAMPLE_RATIO", 1.0)),
		},
	}
}

// ClampTokenBudget parses a configured token budget. Empty means the default;
// non-numeric or below-floor values clamp to MinMaxOutputTokens.
func ClampTokenBudget(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultMaxOutputTokens
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < MinMaxOutputTokens {
		return MinMaxOutputTokens
	}
	return n
}

func envString(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	switch strings.ToLower(v) {
	case "1", "true", "yes", "y", "on":
		return true
	default:
		return false
	}
}

func envInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}

func envFloat(key string, fallback float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func parseHeaders(raw string) map[string]string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	out := map[string]string{}
	for _, part := range strings.Split(raw, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		k = strings.TrimSpace(k)
		v = strings.TrimSpace(v)
		if k == "" || v == "" {
			continue
		}
		out[k] = v
	}
	return out
}

func defaultInsecure(endpoint string) bool {
	if endpoint == "" {
		return true
	}
	if strings.Contains(endpoint, "://") {
		u, err := url.Parse(endpoint)
		if err != nil {
			return false
		}
		return u.Scheme == "http"
	}
	return strings.HasPrefix(endpoint, "localhost:") ||
		strings.HasPrefix(endpoint, "127.0.0.1:") ||
		strings.HasPrefix(endpoint, "0.0.0.0:")
}
