package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// TestConfig_JSONRoundTrip はConfigのJSONキー名をテスト
func TestConfig_JSONRoundTrip(t *testing.T) {
	url := "localhost:6379"
	seed := int64(42)
	cfg := &Config{
		TransportDefaults: TransportDefaults{DefaultTransport: TransportBoth},
		HTTP:              HTTPConfig{Host: "127.0.0.1", Port: 8765},
		Store:             StoreConfig{Type: StoreTypeRedis, URL: &url},
		Weather:           WeatherConfig{Provider: WeatherSimulated, Seed: &seed},
		Log:               LogConfig{Level: "info", Format: LogFormatText},
	}

	data, err := json.Marshal(cfg)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))

	assert.Equal(t, "both", raw["transportDefaults"].(map[string]any)["defaultTransport"])
	assert.Equal(t, "localhost:6379", raw["store"].(map[string]any)["url"])
	assert.Equal(t, float64(42), raw["weather"].(map[string]any)["seed"])
	// corsOriginsは空なら省略
	_, ok := raw["http"].(map[string]any)["corsOrigins"]
	assert.False(t, ok)
}

// TestConfig_YAMLUnmarshal はYAMLのキー名がJSONと一致することをテスト
func TestConfig_YAMLUnmarshal(t *testing.T) {
	src := `
transportDefaults:
  defaultTransport: http
http:
  host: 0.0.0.0
  port: 9000
  corsOrigins: [http://localhost:3000]
store:
  type: sqlite
files:
  enabled: true
  root: /tmp/demo
`
	var cfg Config
	require.NoError(t, yaml.Unmarshal([]byte(src), &cfg))

	assert.Equal(t, TransportHTTP, cfg.TransportDefaults.DefaultTransport)
	assert.Equal(t, 9000, cfg.HTTP.Port)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.HTTP.CORSOrigins)
	assert.Equal(t, StoreTypeSQLite, cfg.Store.Type)
	assert.Nil(t, cfg.Store.URL)
	assert.True(t, cfg.Files.Enabled)
	assert.Equal(t, "/tmp/demo", cfg.Files.Root)
}
