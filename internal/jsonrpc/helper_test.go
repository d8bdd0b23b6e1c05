package jsonrpc

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/brbranch/mcp-demo-server/internal/model"
	"github.com/brbranch/mcp-demo-server/internal/service"
	"github.com/brbranch/mcp-demo-server/internal/store"
	"github.com/brbranch/mcp-demo-server/internal/weather"
	"github.com/stretchr/testify/require"
)

// testNow はノート作成時刻の固定値
var testNow = time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

// stubWeather は固定の天気を返すProvider
type stubWeather struct {
	err error
}

func (s *stubWeather) Current(ctx context.Context, city string) (*weather.Report, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &weather.Report{City: city, TemperatureC: 20, Condition: "Sunny", WindKmh: 5}, nil
}

// testResponse はレスポンスのデコード先
type testResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *model.RPCError `json:"error"`
}

// setupHandler はメモリストアを使うHandlerを作成
func setupHandler(t *testing.T, opts ...Option) *Handler {
	t.Helper()

	st := store.NewMemoryStore()
	require.NoError(t, st.Initialize(context.Background(), "test"))
	t.Cleanup(func() { st.Close() })

	notes := service.NewNoteService(st, service.WithClock(func() time.Time { return testNow }))
	return New(notes, service.NewCalculatorService(), &stubWeather{}, opts...)
}

// rpc はリクエストを送りレスポンスをデコードする
func rpc(t *testing.T, h *Handler, method string, params any) testResponse {
	t.Helper()

	req := map[string]any{"jsonrpc": "2.0", "id": 1, "method": method}
	if params != nil {
		req["params"] = params
	}
	b, err := json.Marshal(req)
	require.NoError(t, err)

	out := h.Handle(context.Background(), b)
	require.NotNil(t, out)

	var resp testResponse
	require.NoError(t, json.Unmarshal(out, &resp))
	return resp
}

// decodeResult はResultを指定の型にデコードする
func decodeResult[T any](t *testing.T, resp testResponse) T {
	t.Helper()
	require.Nil(t, resp.Error, "unexpected error: %+v", resp.Error)

	var v T
	require.NoError(t, json.Unmarshal(resp.Result, &v))
	return v
}

// callTool は tools/call を呼び出し結果を返す
func callTool(t *testing.T, h *Handler, name string, args any) model.ToolsCallResult {
	t.Helper()
	params := map[string]any{"name": name}
	if args != nil {
		params["arguments"] = args
	}
	return decodeResult[model.ToolsCallResult](t, rpc(t, h, "tools/call", params))
}

// toolText は単一テキストの結果から本文を取り出す
func toolText(t *testing.T, r model.ToolsCallResult) string {
	t.Helper()
	require.Len(t, r.Content, 1)
	require.Equal(t, "text", r.Content[0].Type)
	return r.Content[0].Text
}
