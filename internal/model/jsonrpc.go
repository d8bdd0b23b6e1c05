package model

import "fmt"

// JSONRPCVersion はサポートするJSON-RPCのバージョン
const JSONRPCVersion = "2.0"

// Request はJSON-RPC 2.0リクエスト
// IDキーを持たないリクエストは通知として扱う（jsonrpc.Handler参照）
type Request struct {
	JSONRPC string `json:"jsonrpc"`
	ID      any    `json:"id"` // string | number | null
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

// Response は成功時のレスポンス
type Response struct {
	JSONRPC string `json:"jsonrpc"`
	ID      any    `json:"id"`
	Result  any    `json:"result"`
}

// ErrorResponse はエラー時のレスポンス
// パースに失敗した場合のIDはnull
type ErrorResponse struct {
	JSONRPC string   `json:"jsonrpc"`
	ID      any      `json:"id"`
	Error   RPCError `json:"error"`
}

// RPCError はエラーオブジェクト
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Error はerrorインターフェースを実装
func (e *RPCError) Error() string {
	return fmt.Sprintf("%s (code %d)", e.Message, e.Code)
}

// 標準エラーコード
const (
	ErrCodeParseError     = -32700
	ErrCodeInvalidRequest = -32600
	ErrCodeMethodNotFound = -32601
	ErrCodeInvalidParams  = -32602
	ErrCodeInternalError  = -32603
)

// MCPで使うサーバー定義エラーコード
const (
	ErrCodeResourceNotFound = -32002 // resources/read で対象が存在しない
)

// NewResponse は成功レスポンスを生成
func NewResponse(id any, result any) *Response {
	return &Response{JSONRPC: JSONRPCVersion, ID: id, Result: result}
}

// NewErrorResponse はエラーレスポンスを生成
func NewErrorResponse(id any, code int, message string, data any) *ErrorResponse {
	return &ErrorResponse{
		JSONRPC: JSONRPCVersion,
		ID:      id,
		Error:   RPCError{Code: code, Message: message, Data: data},
	}
}

// NewParseError はパースエラーを生成（IDは常にnull）
func NewParseError(data any) *ErrorResponse {
	return NewErrorResponse(nil, ErrCodeParseError, "Parse error", data)
}

// NewInvalidRequest はリクエスト形式エラーを生成
func NewInvalidRequest(id any, data any) *ErrorResponse {
	return NewErrorResponse(id, ErrCodeInvalidRequest, "Invalid Request", data)
}

// NewMethodNotFound はdataにメソッド名を入れる
func NewMethodNotFound(id any, method string) *ErrorResponse {
	return NewErrorResponse(id, ErrCodeMethodNotFound, "Method not found", method)
}

func NewInvalidParams(id any, message string) *ErrorResponse {
	return NewErrorResponse(id, ErrCodeInvalidParams, message, nil)
}

// NewResourceNotFound はdataに {"uri": ...} を入れる
func NewResourceNotFound(id any, message string, uri string) *ErrorResponse {
	return NewErrorResponse(id, ErrCodeResourceNotFound, message, map[string]string{"uri": uri})
}

func NewInternalError(id any, message string) *ErrorResponse {
	return NewErrorResponse(id, ErrCodeInternalError, message, nil)
}
