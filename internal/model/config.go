package model

// Config はサーバー全体の設定を表す
type Config struct {
	TransportDefaults TransportDefaults `json:"transportDefaults" yaml:"transportDefaults"`
	HTTP              HTTPConfig        `json:"http" yaml:"http"`
	Store             StoreConfig       `json:"store" yaml:"store"`
	Weather           WeatherConfig     `json:"weather" yaml:"weather"`
	Files             FilesConfig       `json:"files" yaml:"files"`
	Log               LogConfig         `json:"log" yaml:"log"`
}

// TransportDefaults はtransportのデフォルト設定
type TransportDefaults struct {
	DefaultTransport string `json:"defaultTransport" yaml:"defaultTransport"` // "stdio" | "http" | "both"
}

// HTTPConfig はHTTP transport設定
type HTTPConfig struct {
	Host        string   `json:"host" yaml:"host"`
	Port        int      `json:"port" yaml:"port"`
	CORSOrigins []string `json:"corsOrigins,omitempty" yaml:"corsOrigins,omitempty"` // 空ならCORS無効
}

// StoreConfig はノートストア設定
type StoreConfig struct {
	Type string  `json:"type" yaml:"type"`                   // "memory" | "sqlite" | "qdrant" | "redis"
	URL  *string `json:"url,omitempty" yaml:"url,omitempty"` // nullable（Qdrant/Redis用）
}

// WeatherConfig は天気プロバイダー設定
type WeatherConfig struct {
	Provider       string `json:"provider" yaml:"provider"`                             // "simulated" | "open-meteo"
	Seed           *int64 `json:"seed,omitempty" yaml:"seed,omitempty"`                 // nullable（simulated用）
	GeocodingURL   string `json:"geocodingUrl,omitempty" yaml:"geocodingUrl,omitempty"` // 省略時はOpen-Meteo公開API
	ForecastURL    string `json:"forecastUrl,omitempty" yaml:"forecastUrl,omitempty"`
	TimeoutSeconds int    `json:"timeoutSeconds,omitempty" yaml:"timeoutSeconds,omitempty"`
}

// FilesConfig はファイルツール設定
type FilesConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Root    string `json:"root,omitempty" yaml:"root,omitempty"` // 空ならカレントディレクトリ
}

// LogConfig はログ設定
type LogConfig struct {
	Level  string `json:"level" yaml:"level"`   // "debug" | "info" | "warn" | "error"
	Format string `json:"format" yaml:"format"` // "text" | "json"
}

// Transport定数
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
	TransportBoth  = "both"
)

// Store Type定数
const (
	StoreTypeMemory = "memory"
	StoreTypeSQLite = "sqlite"
	StoreTypeQdrant = "qdrant"
	StoreTypeRedis  = "redis"
)

// Weather Provider定数
const (
	WeatherSimulated = "simulated"
	WeatherOpenMeteo = "open-meteo"
)

// Log Format定数
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)
