// Package http implements the HTTP transport for mcp-demo.
package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"slices"
	"time"

	"github.com/elnormous/contenttype"
	"github.com/google/uuid"
)

const (
	// DefaultAddr はAddr未設定時のlisten address
	DefaultAddr = "127.0.0.1:8765"
	// MaxBodySize はリクエストボディの上限（1MB）
	MaxBodySize = 1024 * 1024
	// RequestIDHeader はリクエストIDを返すヘッダー
	RequestIDHeader = "X-Request-Id"
)

var jsonMediaType = contenttype.NewMediaType("application/json")

// Handler はJSON-RPCリクエストを処理する
// 通知など応答不要の場合はnilを返す
type Handler interface {
	Handle(ctx context.Context, requestBytes []byte) []byte
}

// Config はHTTPサーバー設定
type Config struct {
	Addr        string       // listen address (例: "127.0.0.1:8765")
	CORSOrigins []string     // 許可するオリジンリスト、空ならCORS無効
	Logger      *slog.Logger // 省略時は slog.Default
}

// Server はHTTP JSON-RPCサーバー
type Server struct {
	handler Handler
	config  Config
	logger  *slog.Logger
	srv     *http.Server
}

// New は新しいServerを生成
func New(handler Handler, config Config) *Server {
	if config.Addr == "" {
		config.Addr = DefaultAddr
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		handler: handler,
		config:  config,
		logger:  logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/rpc", s.handleRPC)

	s.srv = &http.Server{
		Addr:              config.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// Listen は設定されたアドレスでlistenする
// 待ち受け開始はServeで行う
func (s *Server) Listen() (net.Listener, error) {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", s.srv.Addr, err)
	}
	return ln, nil
}

// Serve は指定のlistenerで待ち受ける（テストではポート0のlistenerを渡す）
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	// contextキャンセル時にShutdownを呼ぶ
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.srv.Shutdown(shutdownCtx)
	}()

	s.logger.DebugContext(ctx, "http transport listening", "addr", ln.Addr().String())

	err := s.srv.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		// Graceful shutdownはエラーではない
		return nil
	}
	return err
}

// handleRPC はJSON-RPCリクエストを処理
func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.NewString()
	w.Header().Set(RequestIDHeader, requestID)
	logger := s.logger.With("requestId", requestID)

	// CORS処理
	s.handleCORS(w, r)

	// Preflightリクエスト
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	// POSTのみ許可
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST, OPTIONS")
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Content-Type確認
	ctype, err := contenttype.GetMediaType(r)
	if err != nil || !ctype.Matches(jsonMediaType) {
		logger.WarnContext(r.Context(), "unsupported content type", "contentType", r.Header.Get("Content-Type"))
		http.Error(w, "Unsupported Media Type", http.StatusUnsupportedMediaType)
		return
	}

	// リクエストボディ読み取り
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodySize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "Request Entity Too Large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	// JSON-RPC処理
	respBytes := s.handler.Handle(r.Context(), body)

	// 通知には本文なしで応答
	if respBytes == nil {
		w.WriteHeader(http.StatusAccepted)
		return
	}

	// レスポンス送信
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(respBytes)
}

// handleCORS はCORSヘッダーを設定
func (s *Server) handleCORS(w http.ResponseWriter, r *http.Request) {
	// CORS無効ならスキップ
	if len(s.config.CORSOrigins) == 0 {
		return
	}

	origin := r.Header.Get("Origin")
	if origin == "" || !slices.Contains(s.config.CORSOrigins, origin) {
		return
	}

	w.Header().Set("Access-Control-Allow-Origin", origin)
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Add("Vary", "Origin")
}
