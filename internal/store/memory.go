package store

import (
	"context"
	"sync"
	"time"

	"github.com/brbranch/mcp-demo-server/internal/model"
)

// MemoryStore はインメモリのStore実装（デフォルト）
type MemoryStore struct {
	mu          sync.RWMutex
	notes       map[int64]*model.Note // key: note.ID
	order       []int64               // 挿入順
	nextID      int64
	initialized bool
	namespace   string
}

// NewMemoryStore はMemoryStoreを作成する
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		notes: make(map[int64]*model.Note),
	}
}

// Initialize はストアを初期化する
func (s *MemoryStore) Initialize(ctx context.Context, namespace string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.namespace = namespace
	s.initialized = true
	return nil
}

// Close はストアをクローズする
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notes = make(map[int64]*model.Note)
	s.order = nil
	s.initialized = false
	return nil
}

// Create はノートを追加する
func (s *MemoryStore) Create(ctx context.Context, title, content string, created time.Time) (*model.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return nil, ErrNotInitialized
	}

	s.nextID++
	note := &model.Note{
		ID:      s.nextID,
		Title:   title,
		Content: content,
		Created: created.UTC(),
	}
	s.notes[note.ID] = note
	s.order = append(s.order, note.ID)

	return copyNote(note), nil
}

// Get はIDでノートを取得する
func (s *MemoryStore) Get(ctx context.Context, id int64) (*model.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return nil, ErrNotInitialized
	}

	note, ok := s.notes[id]
	if !ok {
		return nil, ErrNotFound
	}

	return copyNote(note), nil
}

// List は全ノートを挿入順で返す
func (s *MemoryStore) List(ctx context.Context) ([]*model.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return nil, ErrNotInitialized
	}

	notes := make([]*model.Note, 0, len(s.order))
	for _, id := range s.order {
		notes = append(notes, copyNote(s.notes[id]))
	}
	return notes, nil
}
