package weather

import (
	"context"
	"math/rand/v2"
	"sync"
)

// simulatedConditions はシミュレーションで選ばれる天候
var simulatedConditions = []string{"Sunny", "Cloudy", "Rainy", "Partly Cloudy"}

// SimulatedProvider は乱数で天気を生成するProvider実装（デフォルト）
// 気温は10〜39℃、風速は0〜19km/hの整数
type SimulatedProvider struct {
	mu  sync.Mutex // rand.Randは並行利用できない
	rng *rand.Rand
}

// NewSimulatedProvider は新しいSimulatedProviderを作成
// rngがnilの場合は毎回異なる系列を使う
func NewSimulatedProvider(rng *rand.Rand) *SimulatedProvider {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &SimulatedProvider{rng: rng}
}

// NewSeededProvider はシード固定のSimulatedProviderを作成
func NewSeededProvider(seed int64) *SimulatedProvider {
	return NewSimulatedProvider(rand.New(rand.NewPCG(uint64(seed), 0)))
}

// Current はシミュレーションした天気を返す
func (p *SimulatedProvider) Current(ctx context.Context, city string) (*Report, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	return &Report{
		City:         city,
		Condition:    simulatedConditions[p.rng.IntN(len(simulatedConditions))],
		TemperatureC: float64(p.rng.IntN(30) + 10),
		WindKmh:      float64(p.rng.IntN(20)),
	}, nil
}
