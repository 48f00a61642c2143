package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"english_analyzer/analyzer"
)

// ErrInvalidSettings wraps validation failures from Save.
var ErrInvalidSettings = errors.New("invalid settings")

// Settings 是前端设置页可以读写的生成服务配置。
type Settings struct {
	Endpoint    string  `json:"apiEndpoint"`
	APIKey      string  `json:"apiKey,omitempty"`
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"maxTokens"`
}

// View is the read side of Settings; the key itself is never exposed.
type View struct {
	Endpoint         string  `json:"apiEndpoint"`
	Model            string  `json:"model"`
	Temperature      float64 `json:"temperature"`
	MaxTokens        int     `json:"maxTokens"`
	APIKeyConfigured bool    `json:"apiKeyConfigured"`
}

// View returns the non-secret part of the current generation settings.
func (m *Manager) View() View {
	g := m.Generation()
	return View{
		Endpoint:         g.Endpoint,
		Model:            g.Model,
		Temperature:      g.Temperature,
		MaxTokens:        g.MaxTokens,
		APIKeyConfigured: g.HasAPIKey(),
	}
}

// Save 持久化设置到配置文件并重新加载。环境变量仍然优先。
// APIKey 为空时保留已有密钥。文件格式由扩展名决定（.yaml/.yml/.json）。
func (m *Manager) Save(s Settings) error {
	current := m.Get().Generation()
	next := current
	next.Endpoint = s.Endpoint
	next.Model = s.Model
	next.Temperature = s.Temperature
	next.MaxTokens = s.MaxTokens
	if s.APIKey != "" {
		next.APIKey = s.APIKey
	}
	if err := next.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}

	path := m.Path()
	if _, err := formatOf(path); err != nil {
		return err
	}

	m.vmu.Lock()
	cfg, err := m.saveLocked(path, next, s.APIKey != "")
	m.vmu.Unlock()
	if err != nil {
		return err
	}
	m.notify(cfg)
	return nil
}

func (m *Manager) saveLocked(path string, next analyzer.GenerationConfig, withKey bool) (*Config, error) {
	doc, err := readSettings(path)
	if err != nil {
		return nil, err
	}
	ai, _ := doc["ai"].(map[string]any)
	if ai == nil {
		ai = map[string]any{}
	}
	ai["endpoint"] = next.Endpoint
	ai["model"] = next.Model
	ai["temperature"] = next.Temperature
	ai["max_tokens"] = next.MaxTokens
	if withKey {
		ai["api_key"] = next.APIKey
	}
	doc["ai"] = ai

	if err := writeSettings(path, doc, nil, 0o600); err != nil {
		return nil, err
	}
	return m.reloadLocked()
}

type fileFormat int

const (
	formatYAML fileFormat = iota
	formatJSON
)

// ErrUnsupportedFormat is returned when the settings file extension is not yaml or json.
var ErrUnsupportedFormat = errors.New("unsupported settings file format")

func formatOf(path string) (fileFormat, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return formatYAML, nil
	case ".json":
		return formatJSON, nil
	default:
		return 0, fmt.Errorf("%w: %s (use .yaml, .yml or .json)", ErrUnsupportedFormat, path)
	}
}

// readSettings 读取已有配置文件；JSON 是 YAML 的子集，统一用 yaml.v3 解析。
func readSettings(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]any{}, nil
		}
		return nil, fmt.Errorf("read settings: %w", err)
	}
	doc := map[string]any{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse settings %s: %w", path, err)
	}
	return doc, nil
}

// writeSettings encodes v according to the file extension. header is only
// written for YAML files, which allow comments.
func writeSettings(path string, v any, header []byte, perm os.FileMode) error {
	format, err := formatOf(path)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if format == formatJSON {
		// 经 yaml 往返一次，保证键名与 yaml 标签一致（如 max_tokens、1m0s）
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		if data, err = json.MarshalIndent(doc, "", "  "); err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		data = append(data, '\n')
	} else {
		data = append(header, data...)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, perm)
}

// WriteDefault writes the default configuration to the specified path.
func WriteDefault(path string) error {
	header := []byte(`# English analyzer configuration
# Environment variables override this file, e.g.
#   export ` + EnvPrefix + `_AI_API_KEY=sk-xxx
# An api_key of ` + analyzer.PlaceholderAPIKey + ` counts as unset.

`)
	return writeSettings(path, DefaultConfig(), header, 0o600)
}
