// Package weather provides current-weather providers for the get_weather tool.
package weather

import (
	"context"
	"errors"
	"fmt"
	"strconv"
)

// Provider は都市名から現在の天気を返すインターフェース
type Provider interface {
	Current(ctx context.Context, city string) (*Report, error)
}

// Report は天気情報
type Report struct {
	City         string
	Country      string // 実測プロバイダーのみ
	TemperatureC float64
	Condition    string
	WindKmh      float64
	Measured     bool // trueなら小数1桁で表示
}

// Format はツール結果として返すテキストを生成
func (r *Report) Format() string {
	header := "Weather in " + r.City
	if r.Country != "" {
		header += " (" + r.Country + ")"
	}
	return fmt.Sprintf("%s:\n🌡️ Temperature: %s°C\n☁️ Condition: %s\n💨 Wind: %s km/h",
		header, r.formatValue(r.TemperatureC), r.Condition, r.formatValue(r.WindKmh))
}

func (r *Report) formatValue(v float64) string {
	if r.Measured {
		return strconv.FormatFloat(v, 'f', 1, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// エラー定義
var (
	ErrUnknownProvider  = errors.New("unknown weather provider")
	ErrCityNotFound     = errors.New("city not found")
	ErrAPIRequestFailed = errors.New("weather API request failed")
	ErrInvalidResponse  = errors.New("invalid weather API response")
)

// APIError は詳細なAPIエラー情報を保持
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("weather API error (status %d): %s", e.StatusCode, e.Message)
}

func (e *APIError) Is(target error) bool {
	return target == ErrAPIRequestFailed
}
