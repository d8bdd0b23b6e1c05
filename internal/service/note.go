package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/brbranch/mcp-demo-server/internal/model"
	"github.com/brbranch/mcp-demo-server/internal/store"
)

// noteService はNoteServiceの実装
type noteService struct {
	store store.Store
	clock Clock
}

// NoteOption はnoteServiceのオプション
type NoteOption func(*noteService)

// WithClock は作成時刻の取得元を設定（テスト用）
func WithClock(clock Clock) NoteOption {
	return func(s *noteService) {
		s.clock = clock
	}
}

// NewNoteService はNoteServiceの新しいインスタンスを作成
func NewNoteService(s store.Store, opts ...NoteOption) NoteService {
	svc := &noteService{
		store: s,
		clock: time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Create はノートを作成する
func (s *noteService) Create(ctx context.Context, title, content string) (*model.Note, error) {
	// 表示はミリ秒精度のため保存時点で揃える
	created := s.clock().UTC().Truncate(time.Millisecond)

	note, err := s.store.Create(ctx, title, content, created)
	if err != nil {
		return nil, fmt.Errorf("failed to create note: %w", err)
	}
	if err := note.Validate(); err != nil {
		return nil, fmt.Errorf("store returned invalid note: %w", err)
	}
	return note, nil
}

// Get はIDでノートを取得する
func (s *noteService) Get(ctx context.Context, id int64) (*model.Note, error) {
	note, err := s.store.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, NewError(ErrNoteNotFound, "note not found: %d", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get note: %w", err)
	}
	return note, nil
}

// List は全ノートを作成順で返す
func (s *noteService) List(ctx context.Context) ([]*model.Note, error) {
	notes, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	return notes, nil
}
