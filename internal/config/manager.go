// Package config loads and validates mcp-demo configuration.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/brbranch/mcp-demo-server/internal/model"
	"gopkg.in/yaml.v3"
)

// デフォルト値
const (
	DefaultHTTPHost = "127.0.0.1"
	DefaultHTTPPort = 8765
)

// ErrInvalidConfig は設定値が不正な場合のエラー
var ErrInvalidConfig = errors.New("invalid config")

// Manager は設定の読み込みを管理する
type Manager struct {
	mu         sync.RWMutex
	config     *model.Config
	configPath string
}

// NewManager は新しいManagerを作成する
// configPathが空文字の場合、デフォルトパス（~/.mcp-demo/config.json）を使用
func NewManager(configPath string) (*Manager, error) {
	if configPath == "" {
		defaultPath, err := GetDefaultConfigPath()
		if err != nil {
			return nil, fmt.Errorf("failed to get default config path: %w", err)
		}
		configPath = defaultPath
	}

	expanded, err := ExpandTilde(configPath)
	if err != nil {
		return nil, err
	}

	return &Manager{
		config:     DefaultConfig(),
		configPath: expanded,
	}, nil
}

// Load は設定ファイルを読み込む
// ファイルが存在しない場合はデフォルト設定を使用（エラーなし）
// 拡張子が .yaml / .yml ならYAML、それ以外はJSONとして解釈する
// ファイルにないフィールドはデフォルト値のまま
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := os.ReadFile(m.configPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	switch strings.ToLower(filepath.Ext(m.configPath)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, config); err != nil {
			return fmt.Errorf("failed to parse config file: %w", err)
		}
	default:
		if err := json.Unmarshal(data, config); err != nil {
			return fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	m.config = config
	return nil
}

// GetConfig は現在の設定を返す
func (m *Manager) GetConfig() *model.Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// GetConfigPath は設定ファイルパスを返す
func (m *Manager) GetConfigPath() string {
	return m.configPath
}

// DefaultConfig はデフォルト設定を返す
func DefaultConfig() *model.Config {
	return &model.Config{
		TransportDefaults: model.TransportDefaults{
			DefaultTransport: model.TransportStdio,
		},
		HTTP: model.HTTPConfig{
			Host: DefaultHTTPHost,
			Port: DefaultHTTPPort,
		},
		Store: model.StoreConfig{
			Type: model.StoreTypeMemory,
		},
		Weather: model.WeatherConfig{
			Provider: model.WeatherSimulated,
		},
		Files: model.FilesConfig{
			Enabled: false,
		},
		Log: model.LogConfig{
			Level:  "info",
			Format: model.LogFormatText,
		},
	}
}

var (
	validTransports = []string{model.TransportStdio, model.TransportHTTP, model.TransportBoth}
	validStores     = []string{model.StoreTypeMemory, model.StoreTypeSQLite, model.StoreTypeQdrant, model.StoreTypeRedis}
	validWeathers   = []string{model.WeatherSimulated, model.WeatherOpenMeteo}
	validLogFormats = []string{model.LogFormatText, model.LogFormatJSON}
)

// Validate は設定値を検証する
func Validate(cfg *model.Config) error {
	if !slices.Contains(validTransports, cfg.TransportDefaults.DefaultTransport) {
		return fmt.Errorf("%w: unknown transport %q", ErrInvalidConfig, cfg.TransportDefaults.DefaultTransport)
	}
	if cfg.HTTP.Port < 1 || cfg.HTTP.Port > 65535 {
		return fmt.Errorf("%w: http port out of range: %d", ErrInvalidConfig, cfg.HTTP.Port)
	}
	if !slices.Contains(validStores, cfg.Store.Type) {
		return fmt.Errorf("%w: unknown store type %q", ErrInvalidConfig, cfg.Store.Type)
	}
	if !slices.Contains(validWeathers, cfg.Weather.Provider) {
		return fmt.Errorf("%w: unknown weather provider %q", ErrInvalidConfig, cfg.Weather.Provider)
	}
	if cfg.Weather.TimeoutSeconds < 0 {
		return fmt.Errorf("%w: weather timeout must be non-negative: %d", ErrInvalidConfig, cfg.Weather.TimeoutSeconds)
	}
	if _, err := ParseLogLevel(cfg.Log.Level); err != nil {
		return err
	}
	if !slices.Contains(validLogFormats, cfg.Log.Format) {
		return fmt.Errorf("%w: unknown log format %q", ErrInvalidConfig, cfg.Log.Format)
	}
	return nil
}

// ParseLogLevel はログレベル名をslog.Levelに変換する（空文字はinfo）
func ParseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, level)
	}
}
