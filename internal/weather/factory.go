package weather

import (
	"net/http"
	"time"

	"github.com/brbranch/mcp-demo-server/internal/model"
)

// NewProvider はWeatherConfigからProviderを作成
func NewProvider(cfg *model.WeatherConfig) (Provider, error) {
	switch cfg.Provider {
	case "", model.WeatherSimulated:
		if cfg.Seed != nil {
			return NewSeededProvider(*cfg.Seed), nil
		}
		return NewSimulatedProvider(nil), nil

	case model.WeatherOpenMeteo:
		timeout := DefaultTimeout
		if cfg.TimeoutSeconds > 0 {
			timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
		}

		opts := []OpenMeteoOption{
			WithHTTPClient(&http.Client{Timeout: timeout}),
		}
		if cfg.GeocodingURL != "" {
			opts = append(opts, WithGeocodingURL(cfg.GeocodingURL))
		}
		if cfg.ForecastURL != "" {
			opts = append(opts, WithForecastURL(cfg.ForecastURL))
		}
		return NewOpenMeteoProvider(opts...), nil

	default:
		return nil, ErrUnknownProvider
	}
}
