// Package config 提供分层配置：环境变量 > 配置文件 > 默认值。
package config

import (
	"time"

	"english_analyzer/analyzer"
)

// EnvPrefix 环境变量前缀，例如 ANALYZER_AI_API_KEY 对应 ai.api_key。
const EnvPrefix = "ANALYZER"

// Config 应用配置根结构
type Config struct {
	AI     AIConfig     `yaml:"ai" mapstructure:"ai"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// AIConfig 生成服务配置
type AIConfig struct {
	Endpoint    string        `yaml:"endpoint" mapstructure:"endpoint"`
	APIKey      string        `yaml:"api_key" mapstructure:"api_key"`
	Model       string        `yaml:"model" mapstructure:"model"`
	Temperature float64       `yaml:"temperature" mapstructure:"temperature"`
	MaxTokens   int           `yaml:"max_tokens" mapstructure:"max_tokens"`
	Timeout     time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// ServerConfig HTTP 服务配置。CORSOrigins 为空时只允许同源访问。
type ServerConfig struct {
	Addr        string   `yaml:"addr" mapstructure:"addr"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
	Release     bool     `yaml:"release" mapstructure:"release"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// DefaultConfig returns the built-in defaults, the lowest configuration layer.
func DefaultConfig() Config {
	return Config{
		AI: AIConfig{
			Endpoint:    "https://api.openai.com/v1",
			APIKey:      analyzer.PlaceholderAPIKey,
			Model:       "gpt-4o-mini",
			Temperature: 0.7,
			MaxTokens:   2000,
			Timeout:     60 * time.Second,
		},
		Server: ServerConfig{
			Addr:        ":8080",
			CORSOrigins: []string{},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Generation 返回一次请求使用的只读生成配置快照。
func (c *Config) Generation() analyzer.GenerationConfig {
	return analyzer.GenerationConfig{
		Endpoint:    c.AI.Endpoint,
		APIKey:      c.AI.APIKey,
		Model:       c.AI.Model,
		Temperature: c.AI.Temperature,
		MaxTokens:   c.AI.MaxTokens,
		Timeout:     c.AI.Timeout,
	}
}
