//go:build e2e || store_e2e

package e2e

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/brbranch/mcp-demo-server/internal/bootstrap"
	"github.com/brbranch/mcp-demo-server/internal/config"
	"github.com/brbranch/mcp-demo-server/internal/jsonrpc"
	"github.com/brbranch/mcp-demo-server/internal/model"
)

// RawResponse はJSON-RPCレスポンス（成功/エラー両方）
type RawResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *model.RPCError `json:"error,omitempty"`
}

// setupTestHandler は設定を組み立ててHandlerを構築する
// mutateでデフォルト設定（メモリストア・シード付き天気）を変更できる
func setupTestHandler(t *testing.T, mutate func(cfg *model.Config)) *jsonrpc.Handler {
	t.Helper()

	cfg := config.DefaultConfig()
	seed := int64(42)
	cfg.Weather.Seed = &seed
	if mutate != nil {
		mutate(cfg)
	}
	if err := config.Validate(cfg); err != nil {
		t.Fatalf("invalid config: %v", err)
	}

	services, cleanup, err := bootstrap.Build(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("failed to build services: %v", err)
	}
	t.Cleanup(cleanup)
	return services.Handler
}

// call はメソッドを呼び出しレスポンスを返す
func call(t *testing.T, h *jsonrpc.Handler, id int, method string, params any) RawResponse {
	t.Helper()

	reqBytes, err := json.Marshal(model.Request{
		JSONRPC: "2.0",
		ID:      id,
		Method:  method,
		Params:  params,
	})
	if err != nil {
		t.Fatalf("failed to marshal request: %v", err)
	}

	respBytes := h.Handle(context.Background(), reqBytes)
	if respBytes == nil {
		t.Fatalf("%s: expected a response", method)
	}

	var resp RawResponse
	if err := json.Unmarshal(respBytes, &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	return resp
}

// result はエラーがないことを確認して結果をデコードする
func result[T any](t *testing.T, resp RawResponse) T {
	t.Helper()
	if resp.Error != nil {
		t.Fatalf("unexpected error: %+v", resp.Error)
	}
	var v T
	if err := json.Unmarshal(resp.Result, &v); err != nil {
		t.Fatalf("failed to unmarshal result: %v", err)
	}
	return v
}

// callTool は tools/call を呼び出し、テキストとisErrorを返す
func callTool(t *testing.T, h *jsonrpc.Handler, name string, args map[string]any) (string, bool) {
	t.Helper()
	r := result[model.ToolsCallResult](t, call(t, h, 100, "tools/call", map[string]any{"name": name, "arguments": args}))
	if len(r.Content) != 1 {
		t.Fatalf("expected 1 content item, got %d", len(r.Content))
	}
	return r.Content[0].Text, r.IsError
}
