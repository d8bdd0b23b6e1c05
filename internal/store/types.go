package store

import (
	"errors"

	"github.com/brbranch/mcp-demo-server/internal/model"
)

// エラー定義
var (
	ErrNotFound         = errors.New("note not found")
	ErrNotInitialized   = errors.New("store not initialized")
	ErrConnectionFailed = errors.New("failed to connect to store")
)

// copyNote はノートのコピーを返す
func copyNote(note *model.Note) *model.Note {
	c := *note
	return &c
}
