package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// TestCORS はオリジン許可リストごとのヘッダーをテスト
func TestCORS(t *testing.T) {
	tests := []struct {
		name       string
		origins    []string
		origin     string
		wantOrigin string
	}{
		{name: "disabled", origins: nil, origin: "http://example.com", wantOrigin: ""},
		{name: "allowed", origins: []string{"http://example.com"}, origin: "http://example.com", wantOrigin: "http://example.com"},
		{name: "not allowed", origins: []string{"http://example.com"}, origin: "http://evil.com", wantOrigin: ""},
		{name: "second of many", origins: []string{"http://example.com", "http://localhost:3000"}, origin: "http://localhost:3000", wantOrigin: "http://localhost:3000"},
		{name: "no origin header", origins: []string{"http://example.com"}, origin: "", wantOrigin: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := newMockHandler()
			handler.SetResponse("ping", map[string]any{})
			server := New(handler, Config{CORSOrigins: tt.origins})

			req := httptest.NewRequest(http.MethodPost, "/rpc", strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"ping"}`))
			req.Header.Set("Content-Type", "application/json")
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			w := httptest.NewRecorder()

			server.handleRPC(w, req)

			// CORSはブラウザ側でブロックされるため、応答自体は常に返る
			if w.Code != http.StatusOK {
				t.Errorf("expected status 200, got %d", w.Code)
			}
			if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Errorf("expected Access-Control-Allow-Origin %q, got %q", tt.wantOrigin, got)
			}
			if tt.wantOrigin != "" {
				if got := w.Header().Get("Access-Control-Allow-Methods"); got != "POST, OPTIONS" {
					t.Errorf("expected methods POST, OPTIONS, got %q", got)
				}
				if got := w.Header().Get("Vary"); got != "Origin" {
					t.Errorf("expected Vary: Origin, got %q", got)
				}
			}
		})
	}
}

// TestCORS_Preflight はOPTIONSリクエストをテスト
func TestCORS_Preflight(t *testing.T) {
	server := New(newMockHandler(), Config{CORSOrigins: []string{"http://example.com"}})

	req := httptest.NewRequest(http.MethodOptions, "/rpc", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")
	w := httptest.NewRecorder()

	server.handleRPC(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Headers"); got != "Content-Type" {
		t.Errorf("expected headers Content-Type, got %q", got)
	}
	if w.Body.Len() != 0 {
		t.Errorf("expected empty body, got %q", w.Body.String())
	}
}
