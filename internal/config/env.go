package config

import (
	"errors"
	"fmt"

	"github.com/brbranch/mcp-demo-server/internal/model"
	"github.com/joeshaw/envdecode"
)

// 環境変数名の定数
const (
	EnvTransport       = "MCP_DEMO_TRANSPORT"
	EnvStore           = "MCP_DEMO_STORE"
	EnvStoreURL        = "MCP_DEMO_STORE_URL"
	EnvWeatherProvider = "MCP_DEMO_WEATHER_PROVIDER"
	EnvLogLevel        = "MCP_DEMO_LOG_LEVEL"
	EnvFilesRoot       = "MCP_DEMO_FILES_ROOT"
)

// envOverrides は環境変数から読み込む上書き値
type envOverrides struct {
	Transport       string `env:"MCP_DEMO_TRANSPORT"`
	Store           string `env:"MCP_DEMO_STORE"`
	StoreURL        string `env:"MCP_DEMO_STORE_URL"`
	WeatherProvider string `env:"MCP_DEMO_WEATHER_PROVIDER"`
	LogLevel        string `env:"MCP_DEMO_LOG_LEVEL"`
	FilesRoot       string `env:"MCP_DEMO_FILES_ROOT"`
}

// ApplyEnvOverrides は環境変数による設定上書きを適用する
// config を直接変更する。MCP_DEMO_FILES_ROOT を設定するとファイルツールも有効になる
func ApplyEnvOverrides(config *model.Config) error {
	var env envOverrides
	if err := envdecode.Decode(&env); err != nil {
		// 環境変数が1つも設定されていない場合は何もしない
		if errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
			return nil
		}
		return fmt.Errorf("failed to decode environment: %w", err)
	}

	if env.Transport != "" {
		config.TransportDefaults.DefaultTransport = env.Transport
	}
	if env.Store != "" {
		config.Store.Type = env.Store
	}
	if env.StoreURL != "" {
		url := env.StoreURL
		config.Store.URL = &url
	}
	if env.WeatherProvider != "" {
		config.Weather.Provider = env.WeatherProvider
	}
	if env.LogLevel != "" {
		config.Log.Level = env.LogLevel
	}
	if env.FilesRoot != "" {
		config.Files.Enabled = true
		config.Files.Root = env.FilesRoot
	}
	return nil
}
