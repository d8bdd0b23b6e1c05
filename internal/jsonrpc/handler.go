// Package jsonrpc implements the JSON-RPC 2.0 dispatcher for mcp-demo.
package jsonrpc

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/brbranch/mcp-demo-server/internal/model"
	"github.com/brbranch/mcp-demo-server/internal/service"
	"github.com/brbranch/mcp-demo-server/internal/weather"
)

// methodFunc はメソッドハンドラーの型
type methodFunc func(ctx context.Context, params any) (any, error)

// Handler はJSON-RPCリクエストを処理する
type Handler struct {
	noteService       service.NoteService
	calculatorService service.CalculatorService
	weatherProvider   weather.Provider
	fileService       service.FileService // nilならファイルツール無効
	logger            *slog.Logger

	methods map[string]methodFunc
	tools   *toolRegistry
	prompts map[string]promptFunc
}

// Option はHandlerのオプション
type Option func(*Handler)

// WithFileService はファイルツール（read_file, write_file, list_directory）を有効化
func WithFileService(fs service.FileService) Option {
	return func(h *Handler) {
		h.fileService = fs
	}
}

// WithLogger はロガーを設定（省略時は slog.Default）
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		h.logger = logger
	}
}

// New は新しいHandlerを生成
func New(
	noteService service.NoteService,
	calculatorService service.CalculatorService,
	weatherProvider weather.Provider,
	opts ...Option,
) *Handler {
	h := &Handler{
		noteService:       noteService,
		calculatorService: calculatorService,
		weatherProvider:   weatherProvider,
		logger:            slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}

	h.methods = map[string]methodFunc{
		"initialize":               h.handleInitialize,
		"ping":                     h.handlePing,
		"tools/list":               h.handleToolsList,
		"tools/call":               h.handleToolsCall,
		"resources/list":           h.handleResourcesList,
		"resources/templates/list": h.handleResourceTemplatesList,
		"resources/read":           h.handleResourcesRead,
		"prompts/list":             h.handlePromptsList,
		"prompts/get":              h.handlePromptsGet,
	}
	h.tools = h.buildTools()
	h.prompts = h.buildPrompts()

	return h
}

// Handle はJSON-RPCリクエストをパースしてディスパッチ
// 戻り値は *model.Response または *model.ErrorResponse のJSON bytes
// 通知（idを持たないリクエスト）の場合はnilを返す
func (h *Handler) Handle(ctx context.Context, requestBytes []byte) []byte {
	// 1. パース
	if !json.Valid(requestBytes) {
		return h.encodeError(model.NewParseError("invalid JSON"))
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(requestBytes, &fields); err != nil {
		return h.encodeError(model.NewInvalidRequest(nil, "request must be a JSON object"))
	}
	var req model.Request
	if err := json.Unmarshal(requestBytes, &req); err != nil {
		return h.encodeError(model.NewInvalidRequest(nil, err.Error()))
	}
	_, hasID := fields["id"]

	// 2. バージョン確認
	if req.JSONRPC != model.JSONRPCVersion {
		if !hasID {
			return nil
		}
		return h.encodeError(model.NewInvalidRequest(req.ID, "jsonrpc must be 2.0"))
	}

	// 3. method確認
	if req.Method == "" {
		if !hasID {
			return nil
		}
		return h.encodeError(model.NewInvalidRequest(req.ID, "method is required"))
	}

	// 4. 通知は処理するが応答しない
	if !hasID {
		h.handleNotification(ctx, req.Method)
		return nil
	}

	h.logger.DebugContext(ctx, "handling request", "method", req.Method, "id", req.ID)

	// 5. ディスパッチ
	result, err := h.dispatch(ctx, req.Method, req.Params)
	if err != nil {
		return h.encodeError(h.mapError(req.ID, err))
	}

	// 6. 成功レスポンス
	return h.encodeResponse(model.NewResponse(req.ID, result))
}

// dispatch はメソッドに応じて適切なハンドラーを呼び出す
func (h *Handler) dispatch(ctx context.Context, method string, params any) (any, error) {
	fn, ok := h.methods[method]
	if !ok {
		return nil, &methodNotFoundError{method: method}
	}
	return fn(ctx, params)
}

// handleNotification は通知をログに記録する
func (h *Handler) handleNotification(ctx context.Context, method string) {
	switch method {
	case "notifications/initialized":
		h.logger.InfoContext(ctx, "client initialized")
	default:
		h.logger.DebugContext(ctx, "notification received", "method", method)
	}
}

// mapError はサービスエラーをJSON-RPCエラーに変換
func (h *Handler) mapError(id any, err error) *model.ErrorResponse {
	// method not found
	var mnfErr *methodNotFoundError
	if errors.As(err, &mnfErr) {
		return model.NewMethodNotFound(id, mnfErr.method)
	}

	// resource not found
	var resErr *resourceError
	if errors.As(err, &resErr) {
		return model.NewResourceNotFound(id, err.Error(), resErr.uri)
	}

	// invalid params
	if errors.Is(err, errInvalidParams) ||
		errors.Is(err, service.ErrUnknownTool) ||
		errors.Is(err, service.ErrUnknownPrompt) ||
		errors.Is(err, service.ErrInvalidArguments) {
		return model.NewInvalidParams(id, err.Error())
	}

	// internal error
	h.logger.Error("request failed", "id", id, "error", err)
	return model.NewInternalError(id, err.Error())
}

func (h *Handler) encodeResponse(resp *model.Response) []byte {
	b, _ := json.Marshal(resp)
	return b
}

func (h *Handler) encodeError(resp *model.ErrorResponse) []byte {
	b, _ := json.Marshal(resp)
	return b
}

// methodNotFoundError はメソッド未検出エラー
type methodNotFoundError struct {
	method string
}

func (e *methodNotFoundError) Error() string {
	return "method not found: " + e.method
}

// resourceError はresources/readの失敗（-32002）
type resourceError struct {
	uri string
	err error
}

func (e *resourceError) Error() string { return e.err.Error() }

func (e *resourceError) Unwrap() error { return e.err }
