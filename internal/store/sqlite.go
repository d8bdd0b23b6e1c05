package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/brbranch/mcp-demo-server/internal/model"
	_ "modernc.org/sqlite"
)

const (
	// InMemoryDSN はプロセス内でのみ有効なSQLiteデータベース
	InMemoryDSN = ":memory:"

	// noteCountWarningThreshold は警告を出すノート件数の閾値
	noteCountWarningThreshold = 5000
)

// SQLiteStore はSQLiteを使用したStore実装
type SQLiteStore struct {
	mu          sync.RWMutex
	db          *sql.DB
	dbPath      string
	namespace   string
	initialized bool
}

// NewSQLiteStore はSQLiteStoreを作成する
// dbPathに InMemoryDSN を渡すとプロセス終了で内容が消える
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// :memory: は接続ごとに別DBになるため接続を1本に固定
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}

	return &SQLiteStore{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// Initialize はストアを初期化する
func (s *SQLiteStore) Initialize(ctx context.Context, namespace string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// IDは名前空間ごとに1から採番する
	notesSQL := `
	CREATE TABLE IF NOT EXISTS demo_notes (
		namespace TEXT NOT NULL,
		id INTEGER NOT NULL,
		title TEXT NOT NULL,
		content TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		PRIMARY KEY (namespace, id)
	);
	`

	if _, err := s.db.ExecContext(ctx, notesSQL); err != nil {
		return fmt.Errorf("failed to create notes table: %w", err)
	}

	s.namespace = namespace
	s.initialized = true
	return nil
}

// Close はストアをクローズする
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	// プロセス終了時にこの名前空間のノートを削除する
	if s.initialized {
		if _, err := s.db.Exec(`DELETE FROM demo_notes WHERE namespace = ?`, s.namespace); err != nil {
			slog.Warn("failed to delete notes", "namespace", s.namespace, "error", err)
		}
	}
	s.initialized = false
	return s.db.Close()
}

// Create はノートを追加する
func (s *SQLiteStore) Create(ctx context.Context, title, content string, created time.Time) (*model.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return nil, ErrNotInitialized
	}

	// 採番と挿入を1文で行うため、失敗時にIDは消費されない
	created = created.UTC()
	var id int64
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO demo_notes (namespace, id, title, content, created_at)
		SELECT ?, COALESCE(MAX(id), 0) + 1, ?, ?, ? FROM demo_notes WHERE namespace = ?
		RETURNING id`,
		s.namespace, title, content, created.UnixMilli(), s.namespace,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to insert note: %w", err)
	}

	return &model.Note{
		ID:      id,
		Title:   title,
		Content: content,
		Created: created.Truncate(time.Millisecond),
	}, nil
}

// Get はIDでノートを取得する
func (s *SQLiteStore) Get(ctx context.Context, id int64) (*model.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return nil, ErrNotInitialized
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, content, created_at FROM demo_notes WHERE namespace = ? AND id = ?`,
		s.namespace, id,
	)
	note, err := scanNote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get note: %w", err)
	}
	return note, nil
}

// List は全ノートを挿入順で返す
func (s *SQLiteStore) List(ctx context.Context) ([]*model.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return nil, ErrNotInitialized
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, content, created_at FROM demo_notes WHERE namespace = ? ORDER BY id`,
		s.namespace,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	defer rows.Close()

	notes := []*model.Note{}
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		notes = append(notes, note)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notes: %w", err)
	}

	if len(notes) > noteCountWarningThreshold {
		slog.Warn("sqlite store holds many notes", "count", len(notes), "threshold", noteCountWarningThreshold)
	}

	return notes, nil
}

// rowScanner は *sql.Row と *sql.Rows の共通インターフェース
type rowScanner interface {
	Scan(dest ...any) error
}

func scanNote(row rowScanner) (*model.Note, error) {
	var (
		note      model.Note
		createdMs int64
	)
	if err := row.Scan(&note.ID, &note.Title, &note.Content, &createdMs); err != nil {
		return nil, err
	}
	note.Created = time.UnixMilli(createdMs).UTC()
	return &note, nil
}
