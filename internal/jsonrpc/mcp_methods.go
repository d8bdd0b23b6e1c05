package jsonrpc

import (
	"context"
	"slices"

	"github.com/brbranch/mcp-demo-server/internal/model"
)

// ServerName はinitializeで返すサーバー名
const ServerName = "mcp-demo-server"

// ServerVersion はサーバーのバージョン（ビルド時に設定可能）
var ServerVersion = "1.0.0"

// DefaultProtocolVersion はクライアントの要求が未対応の場合に返すプロトコルバージョン
const DefaultProtocolVersion = "2024-11-05"

// supportedProtocolVersions はクライアントの要求をそのまま返せるバージョン
var supportedProtocolVersions = []string{"2024-11-05", "2025-03-26", "2025-06-18"}

// handleInitialize は initialize メソッドを処理
func (h *Handler) handleInitialize(ctx context.Context, params any) (any, error) {
	// パラメータをパース（検証は最小限）
	var p model.InitializeParams
	if err := mapParams(params, &p); err != nil {
		return nil, err
	}

	version := DefaultProtocolVersion
	if slices.Contains(supportedProtocolVersions, p.ProtocolVersion) {
		version = p.ProtocolVersion
	}

	h.logger.InfoContext(ctx, "initialize",
		"client", p.ClientInfo.Name,
		"clientVersion", p.ClientInfo.Version,
		"protocolVersion", version,
	)

	return &model.InitializeResult{
		ProtocolVersion: version,
		ServerInfo: model.ServerInfo{
			Name:    ServerName,
			Version: ServerVersion,
		},
		Capabilities: model.Capabilities{
			Tools:     &model.ToolsCapability{},
			Resources: &model.ResourcesCapability{},
			Prompts:   &model.PromptsCapability{},
		},
	}, nil
}

// handlePing は ping メソッドを処理
func (h *Handler) handlePing(ctx context.Context, params any) (any, error) {
	return struct{}{}, nil
}
