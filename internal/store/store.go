// Package store provides note storage interfaces and implementations.
package store

import (
	"context"
	"time"

	"github.com/brbranch/mcp-demo-server/internal/model"
)

// Store はノートストアの抽象インターフェース
// どの実装もプロセス内スコープで、Closeで内容を破棄する
type Store interface {
	// Create はIDを採番してノートを保存する
	// 採番と保存は不可分に行われ、IDは1始まりで再利用されない
	Create(ctx context.Context, title, content string, created time.Time) (*model.Note, error)

	// Get はIDでノートを取得する（存在しない場合は ErrNotFound）
	Get(ctx context.Context, id int64) (*model.Note, error)

	// List は全ノートを挿入順で返す
	List(ctx context.Context) ([]*model.Note, error)

	// 初期化・終了
	Initialize(ctx context.Context, namespace string) error
	Close() error
}
