package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"english_analyzer/analyzer"
)

// DefaultFile is used when no config file is given and none is found.
const DefaultFile = "config.yaml"

// Manager handles loading and hot-reloading configuration.
type Manager struct {
	mu        sync.RWMutex
	vmu       sync.Mutex // guards v and the settings file; viper is not safe for concurrent use
	v         *viper.Viper
	path      string
	config    *Config
	callbacks []func(*Config)
	watcher   *fsnotify.Watcher
}

// NewManager creates a new config manager and loads initial config.
// A missing config file is not an error; defaults and env still apply.
func NewManager(cfgFile string) (*Manager, error) {
	m := &Manager{
		v:         viper.New(),
		callbacks: make([]func(*Config), 0),
	}
	if err := m.initViper(cfgFile); err != nil {
		return nil, err
	}

	cfg, err := m.load()
	if err != nil {
		return nil, err
	}
	m.config = cfg
	return m, nil
}

func (m *Manager) initViper(cfgFile string) error {
	setDefaults(m.v)

	m.v.SetEnvPrefix(EnvPrefix)
	m.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	m.v.AutomaticEnv()

	if cfgFile != "" {
		m.v.SetConfigFile(cfgFile)
		m.path = cfgFile
	} else {
		m.v.SetConfigName("config")
		m.v.SetConfigType("yaml")
		m.v.AddConfigPath(".")
		m.path = DefaultFile
	}

	return m.readFile()
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

func (m *Manager) readFile() error {
	if err := m.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || isNotExist(err) {
			return nil
		}
		return fmt.Errorf("error reading config file: %w", err)
	}
	if used := m.v.ConfigFileUsed(); used != "" {
		m.mu.Lock()
		m.path = used
		m.mu.Unlock()
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("ai.endpoint", d.AI.Endpoint)
	v.SetDefault("ai.api_key", d.AI.APIKey)
	v.SetDefault("ai.model", d.AI.Model)
	v.SetDefault("ai.temperature", d.AI.Temperature)
	v.SetDefault("ai.max_tokens", d.AI.MaxTokens)
	v.SetDefault("ai.timeout", d.AI.Timeout)

	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.cors_origins", d.Server.CORSOrigins)
	v.SetDefault("server.release", d.Server.Release)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

// load parses the current viper state into a Config struct.
func (m *Manager) load() (*Config, error) {
	var cfg Config
	if err := m.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Generation().Validate(); err != nil {
		return nil, fmt.Errorf("invalid ai config: %w", err)
	}
	return &cfg, nil
}

// Get returns the current configuration (thread-safe).
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// Generation snapshots the generation settings; usable as an analyzer.ConfigSource.
func (m *Manager) Generation() analyzer.GenerationConfig {
	return m.Get().Generation()
}

// Path returns the settings file that Save writes to.
func (m *Manager) Path() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.path
}

// OnChange registers a callback for config changes.
func (m *Manager) OnChange(fn func(*Config)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callbacks = append(m.callbacks, fn)
}

// Reload re-reads the config file and swaps in the new snapshot.
// On error the previous snapshot stays in place.
func (m *Manager) Reload() error {
	m.vmu.Lock()
	cfg, err := m.reloadLocked()
	m.vmu.Unlock()
	if err != nil {
		return err
	}
	m.notify(cfg)
	return nil
}

// reloadLocked must be called with vmu held.
func (m *Manager) reloadLocked() (*Config, error) {
	if err := m.readFile(); err != nil {
		return nil, err
	}
	cfg, err := m.load()
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.config = cfg
	m.mu.Unlock()
	return cfg, nil
}

func (m *Manager) notify(cfg *Config) {
	m.mu.RLock()
	callbacks := make([]func(*Config), len(m.callbacks))
	copy(callbacks, m.callbacks)
	m.mu.RUnlock()

	for _, fn := range callbacks {
		fn(cfg)
	}
}

// WatchConfig enables hot-reloading of configuration. The directory is watched
// so that editors replacing the file are seen too. Every change goes through
// Reload, which serializes with Save.
func (m *Manager) WatchConfig() error {
	path, err := filepath.Abs(m.Path())
	if err != nil {
		return err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create config watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		_ = w.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}

	m.mu.Lock()
	if m.watcher != nil {
		m.mu.Unlock()
		_ = w.Close()
		return errors.New("config is already being watched")
	}
	m.watcher = w
	m.mu.Unlock()

	go m.watch(w, path)
	return nil
}

func (m *Manager) watch(w *fsnotify.Watcher, path string) {
	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			// a truncate-then-write shows up as an empty file first
			if info, err := os.Stat(path); err != nil || info.Size() == 0 {
				continue
			}
			if err := m.Reload(); err != nil {
				slog.Warn("config reload failed, keeping previous settings", "path", path, "error", err)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			slog.Warn("config watcher error", "path", path, "error", err)
		}
	}
}

// Close stops the watcher started by WatchConfig.
func (m *Manager) Close() error {
	m.mu.Lock()
	w := m.watcher
	m.watcher = nil
	m.mu.Unlock()
	if w == nil {
		return nil
	}
	return w.Close()
}
