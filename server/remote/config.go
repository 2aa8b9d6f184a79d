package remote

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config locates the batch inference service.
type Config struct {
	BaseURL      string
	APIKey       string
	HeaderName   string
	HeaderPrefix string
	Timeout      time.Duration
	ExtraHeaders map[string]string
}

const defaultTimeout = 45 * time.Second

// ConfigFromEnv reads INFERENCE_* variables. The key is optional so local
// services can run unauthenticated.
func ConfigFromEnv() (Config, error) {
	cfg := Config{ExtraHeaders: map[string]string{}}

	cfg.BaseURL = strings.TrimRight(firstNonEmpty(
		os.Getenv("INFERENCE_API_BASE"),
		os.Getenv("INFERENCE_BASE_URL"),
	), "/")
	if cfg.BaseURL == "" {
		return Config{}, errors.New("inference base missing: set INFERENCE_API_BASE")
	}
	cfg.APIKey = strings.TrimSpace(os.Getenv("INFERENCE_API_KEY"))

	cfg.HeaderName = firstNonEmpty(os.Getenv("INFERENCE_API_KEY_HEADER"), "Authorization")
	cfg.HeaderPrefix = os.Getenv("INFERENCE_API_KEY_PREFIX")
	if cfg.HeaderName == "Authorization" && strings.TrimSpace(cfg.HeaderPrefix) == "" {
		cfg.HeaderPrefix = "Bearer "
	}

	cfg.Timeout = defaultTimeout
	if v := strings.TrimSpace(os.Getenv("INFERENCE_TIMEOUT_SEC")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Timeout = time.Duration(n) * time.Second
		}
	}
	if v := strings.TrimSpace(os.Getenv("INFERENCE_SITE_URL")); v != "" {
		cfg.ExtraHeaders["HTTP-Referer"] = v
		cfg.ExtraHeaders["Referer"] = v
	}
	if v := strings.TrimSpace(os.Getenv("INFERENCE_TITLE")); v != "" {
		cfg.ExtraHeaders["X-Title"] = v
	}
	return cfg, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
