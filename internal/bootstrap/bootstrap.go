// Package bootstrap provides common initialization logic for mcp-demo.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/brbranch/mcp-demo-server/internal/config"
	"github.com/brbranch/mcp-demo-server/internal/jsonrpc"
	"github.com/brbranch/mcp-demo-server/internal/model"
	"github.com/brbranch/mcp-demo-server/internal/service"
	"github.com/brbranch/mcp-demo-server/internal/store"
	"github.com/brbranch/mcp-demo-server/internal/weather"
)

// Services は初期化されたサービス群を保持
type Services struct {
	Handler     *jsonrpc.Handler
	NoteService service.NoteService
	Config      *model.Config
	Namespace   string
}

// LoadConfig は設定ファイルと環境変数から設定を組み立てる
// 検証は呼び出し側がフラグを反映した後に config.Validate で行う
func LoadConfig(configPath string) (*model.Config, error) {
	configManager, err := config.NewManager(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	if err := configManager.Load(); err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", configManager.GetConfigPath(), err)
	}
	slog.Debug("config loaded", "path", configManager.GetConfigPath())

	cfg := configManager.GetConfig()
	if err := config.ApplyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Initialize は設定を読み込み、必要なサービスを初期化する
func Initialize(ctx context.Context, configPath string) (*Services, func(), error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, nil, err
	}
	return Build(ctx, cfg, slog.Default())
}

// Build は検証済みの設定からストア・サービス・Handlerを組み立てる
// 戻り値のcleanupでストアを閉じる（Qdrant/Redisではこのプロセスのデータを削除する）
func Build(ctx context.Context, cfg *model.Config, logger *slog.Logger) (*Services, func(), error) {
	namespace := config.GenerateNamespace()

	// 1. Store初期化
	st, err := newStore(&cfg.Store)
	if err != nil {
		return nil, nil, err
	}
	if err := st.Initialize(ctx, namespace); err != nil {
		st.Close()
		return nil, nil, fmt.Errorf("failed to initialize store: %w", err)
	}

	cleanup := func() {
		if err := st.Close(); err != nil {
			logger.Warn("failed to close store", "error", err)
		}
	}

	// 2. Weather初期化
	provider, err := weather.NewProvider(&cfg.Weather)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to create weather provider: %w", err)
	}

	// 3. Services初期化
	noteService := service.NewNoteService(st)
	opts := []jsonrpc.Option{jsonrpc.WithLogger(logger)}

	if cfg.Files.Enabled {
		root := cfg.Files.Root
		if root == "" {
			root = "."
		}
		resolved, err := config.ResolvePath(root)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		fileService, err := service.NewFileService(resolved)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("failed to create file service: %w", err)
		}
		opts = append(opts, jsonrpc.WithFileService(fileService))
		logger.Info("file tools enabled", "root", resolved)
	}

	handler := jsonrpc.New(noteService, service.NewCalculatorService(), provider, opts...)

	logger.Debug("services initialized",
		"store", cfg.Store.Type,
		"weather", cfg.Weather.Provider,
		"namespace", namespace,
	)

	return &Services{
		Handler:     handler,
		NoteService: noteService,
		Config:      cfg,
		Namespace:   namespace,
	}, cleanup, nil
}

// newStore は設定に応じたストアを生成する
func newStore(cfg *model.StoreConfig) (store.Store, error) {
	url := ""
	if cfg.URL != nil {
		url = *cfg.URL
	}

	switch cfg.Type {
	case model.StoreTypeSQLite:
		// URL未指定ならプロセス内のみのDB
		dbPath := store.InMemoryDSN
		if url != "" {
			expanded, err := config.ExpandTilde(url)
			if err != nil {
				return nil, err
			}
			dbPath = expanded
		}
		st, err := store.NewSQLiteStore(dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create sqlite store: %w", err)
		}
		return st, nil
	case model.StoreTypeQdrant:
		st, err := store.NewQdrantStore(url)
		if err != nil {
			return nil, fmt.Errorf("failed to create qdrant store: %w", err)
		}
		return st, nil
	case model.StoreTypeRedis:
		st, err := store.NewRedisStore(url)
		if err != nil {
			return nil, fmt.Errorf("failed to create redis store: %w", err)
		}
		return st, nil
	case model.StoreTypeMemory, "":
		return store.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store type: %s", cfg.Type)
	}
}
