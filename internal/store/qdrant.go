package store

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/brbranch/mcp-demo-server/internal/model"
	"github.com/qdrant/go-client/qdrant"
)

// qdrantCollectionPrefix はノート用コレクション名の接頭辞
const qdrantCollectionPrefix = "mcp_demo_notes_"

// sanitizeCollectionName はQdrantのコレクション名として使用できる文字列に変換する
func sanitizeCollectionName(name string) string {
	return strings.NewReplacer(":", "_", "-", "_").Replace(name)
}

// QdrantStore はQdrantを使用したStore実装
// ノートは1次元のダミーベクトルを持つポイントとして保存し、payloadに本文を持つ
// コレクションはプロセスごとに作成し、Closeで削除する
type QdrantStore struct {
	client      *qdrant.Client
	url         string
	collection  string
	nextID      atomic.Int64 // 最後に保存できたID
	initialized bool
	mu          sync.RWMutex // initializedフラグの保護
	createMu    sync.Mutex   // 採番と書き込みを直列化
}

// NewQdrantStore はQdrantStoreを作成する
func NewQdrantStore(urlStr string) (*QdrantStore, error) {
	host, port, err := parseQdrantURL(urlStr)
	if err != nil {
		return nil, err
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:                   host,
		Port:                   port,
		SkipCompatibilityCheck: true, // バージョンチェックをスキップ
	})
	if err != nil {
		return nil, ErrConnectionFailed
	}

	// 接続確認
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.HealthCheck(ctx); err != nil {
		client.Close()
		return nil, ErrConnectionFailed
	}

	return &QdrantStore{
		client: client,
		url:    urlStr,
	}, nil
}

// parseQdrantURL はURLからgRPC接続先を取得する
// Qdrant gRPCポートはデフォルト6334（HTTPの6333が指定された場合も6334に変換）
func parseQdrantURL(urlStr string) (string, int, error) {
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return "", 0, fmt.Errorf("failed to parse URL: %w", err)
	}

	host := parsedURL.Hostname()
	if host == "" {
		host = "localhost"
	}

	port := 6334
	if portStr := parsedURL.Port(); portStr != "" {
		p, err := strconv.Atoi(portStr)
		if err != nil {
			return "", 0, fmt.Errorf("invalid port %q: %w", portStr, err)
		}
		if p != 6333 {
			port = p
		}
	}
	return host, port, nil
}

// Initialize はストアを初期化する
func (s *QdrantStore) Initialize(ctx context.Context, namespace string) error {
	if s.client == nil {
		return ErrConnectionFailed
	}

	collection := qdrantCollectionPrefix + sanitizeCollectionName(namespace)

	exists, err := s.client.CollectionExists(ctx, collection)
	if err != nil {
		return fmt.Errorf("failed to check collection existence: %w", err)
	}
	if !exists {
		err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: collection,
			VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
				Size:     1, // ダミーベクトル（1次元）
				Distance: qdrant.Distance_Cosine,
			}),
		})
		if err != nil {
			return fmt.Errorf("failed to create collection: %w", err)
		}
	}

	s.mu.Lock()
	s.collection = collection
	s.initialized = true
	s.mu.Unlock()
	return nil
}

// Close はコレクションを削除してクライアントを閉じる
func (s *QdrantStore) Close() error {
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
		if err := s.client.DeleteCollection(ctx, s.collection); err != nil {
			return fmt.Errorf("failed to delete collection: %w", err)
		}
	}
	return nil
}

// isInitialized は初期化状態を安全に取得する
func (s *QdrantStore) isInitialized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.initialized
}

// Create はノートを追加する
func (s *QdrantStore) Create(ctx context.Context, title, content string, created time.Time) (*model.Note, error) {
	if !s.isInitialized() {
		return nil, ErrNotInitialized
	}

	s.createMu.Lock()
	defer s.createMu.Unlock()

	// 書き込みに成功した場合のみIDを確定する
	note := &model.Note{
		ID:      s.nextID.Load() + 1,
		Title:   title,
		Content: content,
		Created: created.UTC().Truncate(time.Millisecond),
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Wait:           qdrant.PtrOf(true),
		Points: []*qdrant.PointStruct{
			{
				Id:      qdrant.NewIDNum(uint64(note.ID)),
				Vectors: qdrant.NewVectors(1.0),
				Payload: buildPayload(note),
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upsert point: %w", err)
	}
	s.nextID.Store(note.ID)

	return note, nil
}

// Get はIDでノートを取得する
func (s *QdrantStore) Get(ctx context.Context, id int64) (*model.Note, error) {
	if !s.isInitialized() {
		return nil, ErrNotInitialized
	}
	if id <= 0 {
		return nil, ErrNotFound
	}

	points, err := s.client.Get(ctx, &qdrant.GetPoints{
		CollectionName: s.collection,
		Ids:            []*qdrant.PointId{qdrant.NewIDNum(uint64(id))},
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get point: %w", err)
	}
	if len(points) == 0 {
		return nil, ErrNotFound
	}

	return payloadToNote(int64(points[0].GetId().GetNum()), points[0].GetPayload()), nil
}

// List は全ノートをID昇順（挿入順）で返す
func (s *QdrantStore) List(ctx context.Context) ([]*model.Note, error) {
	if !s.isInitialized() {
		return nil, ErrNotInitialized
	}

	// 採番済み件数以上は存在しないため、それを上限に一括取得する
	limit := s.nextID.Load()
	if limit == 0 {
		return []*model.Note{}, nil
	}

	points, err := s.client.Scroll(ctx, &qdrant.ScrollPoints{
		CollectionName: s.collection,
		Limit:          qdrant.PtrOf(uint32(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
		WithVectors:    qdrant.NewWithVectors(false),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scroll points: %w", err)
	}

	notes := make([]*model.Note, 0, len(points))
	for _, point := range points {
		notes = append(notes, payloadToNote(int64(point.GetId().GetNum()), point.GetPayload()))
	}

	// Scrollの順序に依存せずID順に並べる
	sort.Slice(notes, func(i, j int) bool {
		return notes[i].ID < notes[j].ID
	})

	return notes, nil
}

// buildPayload はノートをQdrantのpayloadに変換する
func buildPayload(note *model.Note) map[string]*qdrant.Value {
	return map[string]*qdrant.Value{
		"title":     qdrant.NewValueString(note.Title),
		"content":   qdrant.NewValueString(note.Content),
		"createdAt": qdrant.NewValueInt(note.Created.UnixMilli()),
	}
}

// payloadToNote はQdrantのpayloadからNoteを構築する
func payloadToNote(id int64, payload map[string]*qdrant.Value) *model.Note {
	note := &model.Note{ID: id}
	if v, ok := payload["title"]; ok {
		note.Title = v.GetStringValue()
	}
	if v, ok := payload["content"]; ok {
		note.Content = v.GetStringValue()
	}
	if v, ok := payload["createdAt"]; ok {
		note.Created = time.UnixMilli(v.GetIntegerValue()).UTC()
	}
	return note
}
