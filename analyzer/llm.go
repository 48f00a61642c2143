package analyzer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"
)

// PlaceholderAPIKey 是默认配置中的占位密钥，视同未配置。
const PlaceholderAPIKey = "YOUR_API_KEY_HERE"

// Generator 抽象生成服务客户端，便于替换/Mock。
type Generator interface {
	Generate(ctx context.Context, prompt Prompt, cfg GenerationConfig) (RawResult, error)
}

// GenerationConfig is a read-only snapshot handed to a single Generate call.
type GenerationConfig struct {
	Endpoint    string
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// ConfigSource returns the configuration snapshot for one pipeline run.
type ConfigSource func() GenerationConfig

// StaticConfig wraps a fixed GenerationConfig as a ConfigSource.
func StaticConfig(cfg GenerationConfig) ConfigSource {
	return func() GenerationConfig { return cfg }
}

// HasAPIKey reports whether a usable key is configured.
func (c GenerationConfig) HasAPIKey() bool {
	return c.APIKey != "" && c.APIKey != PlaceholderAPIKey
}

// Validate checks the parameter ranges. A missing key is reported by the
// generator at call time, not here.
func (c GenerationConfig) Validate() error {
	if c.Endpoint == "" {
		return errors.New("endpoint is required")
	}
	u, err := url.Parse(c.Endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("endpoint %q is not an absolute URL", c.Endpoint)
	}
	if c.Model == "" {
		return errors.New("model is required")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature %.2f out of range [0,2]", c.Temperature)
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("max tokens must be positive, got %d", c.MaxTokens)
	}
	return nil
}

// LogValue keeps the key out of structured logs.
func (c GenerationConfig) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("endpoint", c.Endpoint),
		slog.String("model", c.Model),
		slog.Float64("temperature", c.Temperature),
		slog.Int("max_tokens", c.MaxTokens),
		slog.Bool("api_key_set", c.HasAPIKey()),
	)
}
