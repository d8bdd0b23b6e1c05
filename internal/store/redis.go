package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/brbranch/mcp-demo-server/internal/model"
	"github.com/redis/go-redis/v9"
)

// redisKeyPrefix はすべてのキーの接頭辞
const redisKeyPrefix = "mcp-demo:"

// maxCreateRetries は採番が競合した場合の再試行回数
const maxCreateRetries = 20

// RedisStore はRedisを使用したStore実装
// キーは "mcp-demo:<namespace>:" 配下に置き、Closeで削除する
//
//	<prefix>seq        最後に保存できたID
//	<prefix>order      挿入順のIDリスト
//	<prefix>note:<id>  ノート本体（hash）
type RedisStore struct {
	client      *redis.Client
	keyPrefix   string
	initialized bool
	mu          sync.RWMutex
	createMu    sync.Mutex // プロセス内の採番競合を避ける
}

// NewRedisStore はRedisStoreを作成する
// addrは "host:port" または "redis://" 形式のURL
func NewRedisStore(addr string) (*RedisStore, error) {
	opts, err := parseRedisAddr(addr)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	// 接続確認
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, ErrConnectionFailed
	}

	return &RedisStore{client: client}, nil
}

func parseRedisAddr(addr string) (*redis.Options, error) {
	if addr == "" {
		return &redis.Options{Addr: "localhost:6379"}, nil
	}
	if strings.Contains(addr, "://") {
		opts, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse redis URL: %w", err)
		}
		return opts, nil
	}
	return &redis.Options{Addr: addr}, nil
}

// Initialize はストアを初期化する
func (s *RedisStore) Initialize(ctx context.Context, namespace string) error {
	if s.client == nil {
		return ErrConnectionFailed
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.keyPrefix = redisKeyPrefix + namespace + ":"
	s.initialized = true
	return nil
}

// Close は名前空間配下のキーを削除してクライアントを閉じる
func (s *RedisStore) Close() error {
	s.mu.Lock()
	wasInitialized := s.initialized
	s.initialized = false
	s.mu.Unlock()

	if s.client == nil {
		return nil
	}
	defer s.client.Close()

	if wasInitialized {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.deleteByPattern(ctx, s.keyPrefix+"*"); err != nil {
			return fmt.Errorf("failed to delete keys: %w", err)
		}
	}
	return nil
}

func (s *RedisStore) isInitialized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.initialized
}

func (s *RedisStore) seqKey() string   { return s.keyPrefix + "seq" }
func (s *RedisStore) orderKey() string { return s.keyPrefix + "order" }

func (s *RedisStore) noteKey(id int64) string {
	return s.keyPrefix + "note:" + strconv.FormatInt(id, 10)
}

// Create はノートを追加する
// seqをWATCHしたうえでMULTI/EXECで採番と書き込みを行うため、失敗時にIDは消費されない
// 別プロセスと競合した場合は再試行する
func (s *RedisStore) Create(ctx context.Context, title, content string, created time.Time) (*model.Note, error) {
	if !s.isInitialized() {
		return nil, ErrNotInitialized
	}

	s.createMu.Lock()
	defer s.createMu.Unlock()

	note := &model.Note{
		Title:   title,
		Content: content,
		Created: created.UTC().Truncate(time.Millisecond),
	}

	for range maxCreateRetries {
		err := s.client.Watch(ctx, func(tx *redis.Tx) error {
			last, err := tx.Get(ctx, s.seqKey()).Int64()
			if err != nil && !errors.Is(err, redis.Nil) {
				return err
			}
			note.ID = last + 1

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, s.seqKey(), note.ID, 0)
				pipe.HSet(ctx, s.noteKey(note.ID),
					"title", note.Title,
					"content", note.Content,
					"createdAt", note.Created.UnixMilli(),
				)
				pipe.RPush(ctx, s.orderKey(), note.ID)
				return nil
			})
			return err
		}, s.seqKey())
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to store note: %w", err)
		}
		return note, nil
	}
	return nil, fmt.Errorf("failed to store note: id allocation conflicted %d times", maxCreateRetries)
}

// Get はIDでノートを取得する
func (s *RedisStore) Get(ctx context.Context, id int64) (*model.Note, error) {
	if !s.isInitialized() {
		return nil, ErrNotInitialized
	}

	fields, err := s.client.HGetAll(ctx, s.noteKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get note: %w", err)
	}
	if len(fields) == 0 {
		return nil, ErrNotFound
	}

	return hashToNote(id, fields)
}

// List は全ノートを挿入順で返す
func (s *RedisStore) List(ctx context.Context) ([]*model.Note, error) {
	if !s.isInitialized() {
		return nil, ErrNotInitialized
	}

	ids, err := s.client.LRange(ctx, s.orderKey(), 0, -1).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to list note ids: %w", err)
	}
	if len(ids) == 0 {
		return []*model.Note{}, nil
	}

	parsed := make([]int64, len(ids))
	cmds := make([]*redis.MapStringStringCmd, len(ids))
	_, err = s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, raw := range ids {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid note id %q: %w", raw, err)
			}
			parsed[i] = id
			cmds[i] = pipe.HGetAll(ctx, s.noteKey(id))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch notes: %w", err)
	}

	notes := make([]*model.Note, 0, len(ids))
	for i, cmd := range cmds {
		fields := cmd.Val()
		if len(fields) == 0 {
			continue
		}
		note, err := hashToNote(parsed[i], fields)
		if err != nil {
			return nil, err
		}
		notes = append(notes, note)
	}
	return notes, nil
}

// deleteByPattern はパターンに一致するキーをSCANで列挙して削除する
func (s *RedisStore) deleteByPattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := s.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

func hashToNote(id int64, fields map[string]string) (*model.Note, error) {
	createdMs, err := strconv.ParseInt(fields["createdAt"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid createdAt for note %d: %w", id, err)
	}
	return &model.Note{
		ID:      id,
		Title:   fields["title"],
		Content: fields["content"],
		Created: time.UnixMilli(createdMs).UTC(),
	}, nil
}
