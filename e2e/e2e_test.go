//go:build e2e

package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/brbranch/mcp-demo-server/internal/model"
)

// TestE2E_FullFlow はクライアントの典型的な一連の呼び出しをテスト
// initialize → notifications/initialized → tools → resources → prompts
func TestE2E_FullFlow(t *testing.T) {
	h := setupTestHandler(t, nil)
	ctx := context.Background()

	t.Run("initialize", func(t *testing.T) {
		initRes := result[model.InitializeResult](t, call(t, h, 1, "initialize", map[string]any{
			"protocolVersion": "2024-11-05",
			"clientInfo":      map[string]any{"name": "e2e", "version": "1.0.0"},
			"capabilities":    map[string]any{},
		}))
		if initRes.ProtocolVersion != "2024-11-05" {
			t.Errorf("expected 2024-11-05, got %q", initRes.ProtocolVersion)
		}
		if initRes.ServerInfo.Name != "mcp-demo-server" {
			t.Errorf("unexpected server name: %q", initRes.ServerInfo.Name)
		}
	})

	t.Run("initialized notification", func(t *testing.T) {
		if resp := h.Handle(ctx, []byte(`{"jsonrpc":"2.0","method":"notifications/initialized"}`)); resp != nil {
			t.Errorf("expected no response, got %s", resp)
		}
	})

	t.Run("tools/list", func(t *testing.T) {
		tools := result[model.ToolsListResult](t, call(t, h, 2, "tools/list", nil))
		if len(tools.Tools) != 4 {
			t.Errorf("expected 4 tools, got %d", len(tools.Tools))
		}
	})

	t.Run("create notes", func(t *testing.T) {
		for i, title := range []string{"Groceries", "Ideas"} {
			text, isErr := callTool(t, h, "create_note", map[string]any{"title": title, "content": "content of " + title})
			if isErr {
				t.Fatalf("create_note failed: %s", text)
			}
			want := fmt.Sprintf("Note created successfully!\nID: %d\nTitle: %s", i+1, title)
			if text != want {
				t.Errorf("expected %q, got %q", want, text)
			}
		}
	})

	t.Run("list notes", func(t *testing.T) {
		text, _ := callTool(t, h, "list_notes", map[string]any{})
		if text != "Available notes (2):\nID 1: Groceries\nID 2: Ideas" {
			t.Errorf("unexpected list: %q", text)
		}
	})

	t.Run("resources include notes", func(t *testing.T) {
		res := result[model.ResourcesListResult](t, call(t, h, 3, "resources/list", nil))
		var uris []string
		for _, r := range res.Resources {
			uris = append(uris, r.URI)
		}
		want := []string{"demo://info", "demo://capabilities", "note://1", "note://2"}
		if strings.Join(uris, ",") != strings.Join(want, ",") {
			t.Errorf("expected %v, got %v", want, uris)
		}
	})

	t.Run("read note", func(t *testing.T) {
		res := result[model.ResourcesReadResult](t, call(t, h, 4, "resources/read", map[string]any{"uri": "note://2"}))
		if !strings.HasPrefix(res.Contents[0].Text, "Title: Ideas\nCreated: ") {
			t.Errorf("unexpected note text: %q", res.Contents[0].Text)
		}
		if !strings.HasSuffix(res.Contents[0].Text, "\n\ncontent of Ideas") {
			t.Errorf("unexpected note body: %q", res.Contents[0].Text)
		}
	})

	t.Run("read missing note", func(t *testing.T) {
		resp := call(t, h, 5, "resources/read", map[string]any{"uri": "note://999999"})
		if resp.Error == nil || resp.Error.Code != model.ErrCodeResourceNotFound {
			t.Errorf("expected -32002, got %+v", resp.Error)
		}
	})

	t.Run("summarize prompt", func(t *testing.T) {
		p := result[model.PromptsGetResult](t, call(t, h, 6, "prompts/get", map[string]any{"name": "summarize_notes"}))
		text := p.Messages[0].Content.Text
		if !strings.Contains(text, "**Groceries** (ID: 1)") || !strings.Contains(text, "\n\n---\n\n**Ideas** (ID: 2)") {
			t.Errorf("unexpected summary prompt: %q", text)
		}
	})
}

// TestE2E_Errors はプロトコルレベルのエラーコードをテスト
func TestE2E_Errors(t *testing.T) {
	h := setupTestHandler(t, nil)
	ctx := context.Background()

	tests := []struct {
		name string
		body string
		code int
	}{
		{name: "parse error", body: `{"jsonrpc":`, code: model.ErrCodeParseError},
		{name: "invalid request", body: `{"jsonrpc":"1.0","id":1,"method":"ping"}`, code: model.ErrCodeInvalidRequest},
		{name: "method not found", body: `{"jsonrpc":"2.0","id":1,"method":"notes/search"}`, code: model.ErrCodeMethodNotFound},
		{name: "unknown tool", body: `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"nope"}}`, code: model.ErrCodeInvalidParams},
		{name: "unknown prompt", body: `{"jsonrpc":"2.0","id":1,"method":"prompts/get","params":{"name":"nope"}}`, code: model.ErrCodeInvalidParams},
		{name: "unknown resource", body: `{"jsonrpc":"2.0","id":1,"method":"resources/read","params":{"uri":"demo://nope"}}`, code: model.ErrCodeResourceNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var resp RawResponse
			if err := json.Unmarshal(h.Handle(ctx, []byte(tt.body)), &resp); err != nil {
				t.Fatalf("failed to unmarshal response: %v", err)
			}
			if resp.Error == nil || resp.Error.Code != tt.code {
				t.Errorf("expected code %d, got %+v", tt.code, resp.Error)
			}
		})
	}
}

// TestE2E_ConcurrentCreate は並行作成でIDが一意であることをテスト
func TestE2E_ConcurrentCreate(t *testing.T) {
	for _, storeType := range []string{model.StoreTypeMemory, model.StoreTypeSQLite} {
		t.Run(storeType, func(t *testing.T) {
			h := setupTestHandler(t, func(cfg *model.Config) { cfg.Store.Type = storeType })

			const n = 25
			var wg sync.WaitGroup
			for i := range n {
				wg.Add(1)
				go func() {
					defer wg.Done()
					h.Handle(context.Background(), []byte(fmt.Sprintf(
						`{"jsonrpc":"2.0","id":%d,"method":"tools/call","params":{"name":"create_note","arguments":{"title":"n%d","content":"c"}}}`, i, i)))
				}()
			}
			wg.Wait()

			res := result[model.ResourcesListResult](t, call(t, h, 1, "resources/list", nil))
			seen := map[string]bool{}
			for _, r := range res.Resources[2:] {
				if seen[r.URI] {
					t.Errorf("duplicate resource %s", r.URI)
				}
				seen[r.URI] = true
			}
			for id := 1; id <= n; id++ {
				if !seen[fmt.Sprintf("note://%d", id)] {
					t.Errorf("missing note://%d", id)
				}
			}
		})
	}
}

// TestE2E_FileTools はファイルツールの書き込みと一覧をテスト
func TestE2E_FileTools(t *testing.T) {
	root := t.TempDir()
	h := setupTestHandler(t, func(cfg *model.Config) {
		cfg.Files.Enabled = true
		cfg.Files.Root = root
	})

	if text, isErr := callTool(t, h, "write_file", map[string]any{"file_path": "notes/today.md", "content": "# Today"}); isErr {
		t.Fatalf("write_file failed: %s", text)
	}
	b, err := os.ReadFile(filepath.Join(root, "notes", "today.md"))
	if err != nil || string(b) != "# Today" {
		t.Fatalf("unexpected file content: %q (%v)", b, err)
	}

	text, _ := callTool(t, h, "list_directory", map[string]any{"pattern": "**/*.md"})
	if !strings.Contains(text, "[FILE] notes/today.md (7 bytes)") {
		t.Errorf("unexpected listing: %q", text)
	}

	text, isErr := callTool(t, h, "read_file", map[string]any{"file_path": "../../etc/passwd"})
	if !isErr || !strings.HasPrefix(text, "Error: ") {
		t.Errorf("expected path error, got %q", text)
	}
}
