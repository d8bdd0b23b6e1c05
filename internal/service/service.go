// Package service implements the note, calculator and file operations behind the MCP tools.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/brbranch/mcp-demo-server/internal/model"
)

// NoteService はノートの作成・取得・一覧を提供
type NoteService interface {
	Create(ctx context.Context, title, content string) (*model.Note, error)
	Get(ctx context.Context, id int64) (*model.Note, error)
	List(ctx context.Context) ([]*model.Note, error)
}

// CalculatorService は四則演算を提供
type CalculatorService interface {
	Calculate(op string, a, b float64) (*Calculation, error)
}

// FileService はルートディレクトリ配下のファイル操作を提供
type FileService interface {
	Read(ctx context.Context, path string) (string, error)
	Write(ctx context.Context, path, content string) error
	List(ctx context.Context, dir, pattern string) ([]FileEntry, error)
}

// エラー定義
// 呼び出し側は errors.Is で分類し、メッセージは detailError が組み立てる
var (
	ErrNoteNotFound     = errors.New("note not found")
	ErrInvalidArguments = errors.New("invalid arguments")
	ErrInvalidOperation = errors.New("invalid operation")
	ErrUnknownOperation = fmt.Errorf("%w: unknown operation", ErrInvalidOperation)
	ErrUnknownTool      = errors.New("unknown tool")
	ErrUnknownResource  = errors.New("unknown resource")
	ErrUnknownPrompt    = errors.New("unknown prompt")
	ErrPathOutsideRoot  = fmt.Errorf("%w: path is outside the allowed root", ErrInvalidArguments)
)

// detailError は分類用のsentinelと利用者向けメッセージを組み合わせたエラー
type detailError struct {
	kind    error
	message string
}

func (e *detailError) Error() string { return e.message }

func (e *detailError) Unwrap() error { return e.kind }

// NewError はkindに分類される、メッセージが format のエラーを生成
func NewError(kind error, format string, args ...any) error {
	return &detailError{kind: kind, message: fmt.Sprintf(format, args...)}
}
