package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	DefaultGeocodingURL = "https://geocoding-api.open-meteo.com/v1/search"
	DefaultForecastURL  = "https://api.open-meteo.com/v1/forecast"
	DefaultTimeout      = 10 * time.Second
)

// OpenMeteoProvider はOpen-Meteo公開APIを使用するProvider実装
// 都市名をジオコーディングしてから現在の気象を取得する
type OpenMeteoProvider struct {
	httpClient   *http.Client
	geocodingURL string
	forecastURL  string
}

// OpenMeteoOption はOpenMeteoProviderのオプション
type OpenMeteoOption func(*OpenMeteoProvider)

// WithGeocodingURL はジオコーディングAPIのURLを設定
func WithGeocodingURL(u string) OpenMeteoOption {
	return func(p *OpenMeteoProvider) {
		p.geocodingURL = u
	}
}

// WithForecastURL は予報APIのURLを設定
func WithForecastURL(u string) OpenMeteoOption {
	return func(p *OpenMeteoProvider) {
		p.forecastURL = u
	}
}

// WithHTTPClient はHTTPクライアントを設定
func WithHTTPClient(client *http.Client) OpenMeteoOption {
	return func(p *OpenMeteoProvider) {
		p.httpClient = client
	}
}

// NewOpenMeteoProvider は新しいOpenMeteoProviderを作成
func NewOpenMeteoProvider(opts ...OpenMeteoOption) *OpenMeteoProvider {
	p := &OpenMeteoProvider{
		httpClient:   &http.Client{Timeout: DefaultTimeout},
		geocodingURL: DefaultGeocodingURL,
		forecastURL:  DefaultForecastURL,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// geocodingResponse はジオコーディングAPIレスポンスの構造
type geocodingResponse struct {
	Results []struct {
		Name      string  `json:"name"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		Country   string  `json:"country"`
	} `json:"results"`
}

// forecastResponse は予報APIレスポンスの構造
type forecastResponse struct {
	Current *struct {
		Temperature float64 `json:"temperature_2m"`
		WeatherCode int     `json:"weather_code"`
		WindSpeed   float64 `json:"wind_speed_10m"`
	} `json:"current"`
}

// Current は都市の現在の天気を取得する
func (p *OpenMeteoProvider) Current(ctx context.Context, city string) (*Report, error) {
	q := url.Values{}
	q.Set("name", city)
	q.Set("count", "1")
	q.Set("language", "en")
	q.Set("format", "json")

	var geo geocodingResponse
	if err := p.getJSON(ctx, p.geocodingURL+"?"+q.Encode(), &geo); err != nil {
		return nil, err
	}
	if len(geo.Results) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrCityNotFound, city)
	}
	loc := geo.Results[0]

	country := loc.Country
	if country == "" {
		country = "Unknown"
	}

	forecastURL := fmt.Sprintf("%s?latitude=%.2f&longitude=%.2f&current=temperature_2m,weather_code,wind_speed_10m&temperature_unit=celsius",
		p.forecastURL, loc.Latitude, loc.Longitude)

	var forecast forecastResponse
	if err := p.getJSON(ctx, forecastURL, &forecast); err != nil {
		return nil, err
	}
	if forecast.Current == nil {
		return nil, fmt.Errorf("%w: missing current weather", ErrInvalidResponse)
	}

	return &Report{
		City:         city,
		Country:      country,
		TemperatureC: forecast.Current.Temperature,
		Condition:    InterpretWMOCode(forecast.Current.WeatherCode),
		WindKmh:      forecast.Current.WindSpeed,
		Measured:     true,
	}, nil
}

// getJSON はGETリクエストを送りJSONレスポンスをoutにデコードする
func (p *OpenMeteoProvider) getJSON(ctx context.Context, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAPIRequestFailed, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		// context.Canceledやcontext.DeadlineExceededはそのまま返す
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %v", ErrAPIRequestFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: failed to read response: %v", ErrAPIRequestFailed, err)
	}

	if resp.StatusCode != http.StatusOK {
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
		}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return nil
}

// InterpretWMOCode はWMO天気コードを表示用の天候名に変換する
func InterpretWMOCode(code int) string {
	switch code {
	case 0:
		return "Clear sky"
	case 1, 2:
		return "Partly cloudy"
	case 3:
		return "Overcast"
	case 45, 48:
		return "Foggy"
	case 51, 53, 55:
		return "Drizzle"
	case 61, 63, 65:
		return "Rain"
	case 71, 73, 75:
		return "Snow"
	case 77:
		return "Snow grains"
	case 80, 81, 82:
		return "Rain showers"
	case 85, 86:
		return "Snow showers"
	case 95, 96, 99:
		return "Thunderstorm"
	default:
		return "Unknown"
	}
}
