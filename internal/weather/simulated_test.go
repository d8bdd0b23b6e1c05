package weather

import (
	"context"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSimulatedProvider_Bounds は繰り返し呼び出しで値が範囲内に収まることをテスト
func TestSimulatedProvider_Bounds(t *testing.T) {
	p := NewSimulatedProvider(rand.New(rand.NewPCG(1, 2)))
	ctx := context.Background()

	seen := map[string]bool{}
	for i := 0; i < 500; i++ {
		r, err := p.Current(ctx, "Tokyo")
		require.NoError(t, err)

		assert.GreaterOrEqual(t, r.TemperatureC, 10.0)
		assert.LessOrEqual(t, r.TemperatureC, 39.0)
		assert.GreaterOrEqual(t, r.WindKmh, 0.0)
		assert.LessOrEqual(t, r.WindKmh, 19.0)
		assert.Contains(t, simulatedConditions, r.Condition)
		seen[r.Condition] = true
	}
	// 500回あれば全天候が出現する
	assert.Len(t, seen, len(simulatedConditions))
}

// TestSeededProvider_Deterministic は同じシードで同じ系列になることをテスト
func TestSeededProvider_Deterministic(t *testing.T) {
	a := NewSeededProvider(42)
	b := NewSeededProvider(42)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		ra, err := a.Current(ctx, "Paris")
		require.NoError(t, err)
		rb, err := b.Current(ctx, "Paris")
		require.NoError(t, err)
		assert.Equal(t, ra, rb)
	}
}

// TestReport_Format_Simulated は整数表示の出力形式をテスト
func TestReport_Format_Simulated(t *testing.T) {
	r := &Report{City: "London", TemperatureC: 21, Condition: "Cloudy", WindKmh: 7}

	assert.Equal(t, "Weather in London:\n🌡️ Temperature: 21°C\n☁️ Condition: Cloudy\n💨 Wind: 7 km/h", r.Format())
}

// TestReport_Format_Measured は実測値の出力形式をテスト
func TestReport_Format_Measured(t *testing.T) {
	r := &Report{City: "Berlin", Country: "Germany", TemperatureC: 12.34, Condition: "Rain", WindKmh: 5, Measured: true}

	out := r.Format()
	assert.True(t, strings.HasPrefix(out, "Weather in Berlin (Germany):\n"))
	assert.Contains(t, out, "Temperature: 12.3°C")
	assert.Contains(t, out, "Wind: 5.0 km/h")
}
