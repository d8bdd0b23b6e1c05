package bootstrap

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/brbranch/mcp-demo-server/internal/config"
	"github.com/brbranch/mcp-demo-server/internal/model"
)

// clearEnv はテスト中の環境変数による上書きを無効化する
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		config.EnvTransport, config.EnvStore, config.EnvStoreURL,
		config.EnvWeatherProvider, config.EnvLogLevel, config.EnvFilesRoot,
	} {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

// toolNames は tools/list の結果からツール名を取り出す
func toolNames(t *testing.T, services *Services) []string {
	t.Helper()
	out := services.Handler.Handle(context.Background(), []byte(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))

	var resp struct {
		Result model.ToolsListResult `json:"result"`
	}
	if err := json.Unmarshal(out, &resp); err != nil {
		t.Fatalf("failed to parse tools/list: %v", err)
	}
	names := make([]string, 0, len(resp.Result.Tools))
	for _, tool := range resp.Result.Tools {
		names = append(names, tool.Name)
	}
	return names
}

func TestInitialize_WithValidConfig(t *testing.T) {
	clearEnv(t)
	configPath := writeConfig(t, "config.json", `{"store": {"type": "memory"}, "weather": {"provider": "simulated", "seed": 1}}`)

	services, cleanup, err := Initialize(context.Background(), configPath)
	if err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	defer cleanup()

	if services.Handler == nil || services.NoteService == nil {
		t.Fatal("expected handler and note service to be non-nil")
	}
	if !strings.HasPrefix(services.Namespace, config.NamespacePrefix) {
		t.Errorf("unexpected namespace: %q", services.Namespace)
	}
	if got := toolNames(t, services); len(got) != 4 {
		t.Errorf("expected 4 tools, got %v", got)
	}
}

func TestInitialize_NonExistentConfigPath(t *testing.T) {
	clearEnv(t)

	services, cleanup, err := Initialize(context.Background(), filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	defer cleanup()

	if services.Config.Store.Type != model.StoreTypeMemory {
		t.Errorf("expected default memory store, got %q", services.Config.Store.Type)
	}
}

func TestInitialize_SQLite(t *testing.T) {
	clearEnv(t)
	dbPath := filepath.Join(t.TempDir(), "notes.db")
	configPath := writeConfig(t, "config.yaml", "store:\n  type: sqlite\n  url: "+dbPath+"\n")

	services, cleanup, err := Initialize(context.Background(), configPath)
	if err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	defer cleanup()

	note, err := services.NoteService.Create(context.Background(), "title", "content")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if note.ID != 1 {
		t.Errorf("expected id 1, got %d", note.ID)
	}
	if _, err := os.Stat(dbPath); err != nil {
		t.Errorf("expected database file to exist: %v", err)
	}
}

func TestInitialize_FilesEnabled(t *testing.T) {
	clearEnv(t)
	t.Setenv(config.EnvFilesRoot, t.TempDir())

	services, cleanup, err := Initialize(context.Background(), filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	defer cleanup()

	names := toolNames(t, services)
	if len(names) != 7 || names[6] != "list_directory" {
		t.Errorf("expected file tools, got %v", names)
	}
}

func TestInitialize_FilesRootMissing(t *testing.T) {
	clearEnv(t)
	t.Setenv(config.EnvFilesRoot, filepath.Join(t.TempDir(), "missing"))

	_, _, err := Initialize(context.Background(), filepath.Join(t.TempDir(), "missing.json"))
	if err == nil {
		t.Fatal("expected error for missing files root")
	}
}

func TestInitialize_InvalidConfig(t *testing.T) {
	clearEnv(t)
	configPath := writeConfig(t, "config.json", `{"store": {"type": "mongodb"}}`)

	_, _, err := Initialize(context.Background(), configPath)
	if !errors.Is(err, config.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestBuild_UnknownStore(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Store.Type = "mongodb"

	if _, _, err := Build(context.Background(), cfg, slog.Default()); err == nil {
		t.Fatal("expected error for unknown store type")
	}
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	clearEnv(t)
	t.Setenv(config.EnvTransport, "http")
	configPath := writeConfig(t, "config.json", `{"transportDefaults": {"defaultTransport": "stdio"}}`)

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.TransportDefaults.DefaultTransport != model.TransportHTTP {
		t.Errorf("expected env override to win, got %q", cfg.TransportDefaults.DefaultTransport)
	}
}

func TestLoadConfig_BrokenFileNamesPath(t *testing.T) {
	clearEnv(t)
	configPath := writeConfig(t, "config.yaml", "store: [unclosed")

	_, err := LoadConfig(configPath)
	if err == nil {
		t.Fatal("expected error for broken config")
	}
	if !strings.Contains(err.Error(), configPath) {
		t.Errorf("expected error to mention %s, got %v", configPath, err)
	}
}
