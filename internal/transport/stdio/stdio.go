// Package stdio implements the newline-delimited stdio transport for mcp-demo.
package stdio

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// MaxBufferSize はScannerの最大バッファサイズ（1MB）
const MaxBufferSize = 1024 * 1024

// Handler はJSON-RPCリクエストを処理するインターフェース
// 通知など応答不要の場合はnilを返す
type Handler interface {
	Handle(ctx context.Context, requestBytes []byte) []byte
}

// Server はstdio JSON-RPCサーバー
type Server struct {
	handler Handler
	reader  io.Reader
	writer  io.Writer
	logger  *slog.Logger

	mu sync.Mutex // writerへの書き込みを直列化
}

// Option はサーバーオプション
type Option func(*Server)

// WithReader はreaderを設定（テスト用）
func WithReader(r io.Reader) Option {
	return func(s *Server) {
		s.reader = r
	}
}

// WithWriter はwriterを設定（テスト用）
func WithWriter(w io.Writer) Option {
	return func(s *Server) {
		s.writer = w
	}
}

// WithLogger はロガーを設定
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// New は新しいServerを生成
func New(handler Handler, opts ...Option) *Server {
	s := &Server{
		handler: handler,
		reader:  os.Stdin,
		writer:  os.Stdout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run はサーバーを起動し、EOFまたはcontextがキャンセルされるまで実行
// リクエストは受信順に1件ずつ処理する
func (s *Server) Run(ctx context.Context) error {
	lines := make(chan string)
	errc := make(chan error, 1)

	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(s.reader)
		scanner.Buffer(make([]byte, 0, 64*1024), MaxBufferSize)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				errc <- ctx.Err()
				return
			}
		}
		errc <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				// EOF: 正常終了
				if err := <-errc; err != nil {
					return err
				}
				s.logger.DebugContext(ctx, "stdin closed")
				return nil
			}
			if err := s.serveLine(ctx, line); err != nil {
				return err
			}
		}
	}
}

// serveLine は1行を処理して応答を書き込む
func (s *Server) serveLine(ctx context.Context, line string) error {
	// 空行はスキップ
	if strings.TrimSpace(line) == "" {
		return nil
	}

	response := s.handler.Handle(ctx, []byte(line))
	if response == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.writer.Write(append(response, '\n')); err != nil {
		return err
	}
	return nil
}
