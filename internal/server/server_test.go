package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/idilsaglam/todos/internal/model"
	"github.com/idilsaglam/todos/internal/store/remote"
	"github.com/idilsaglam/todos/internal/store/sqlite"
)

func setupTestServer(t *testing.T, opts Options) (*Server, *sqlite.Store) {
	t.Helper()
	s, err := sqlite.Open(":memory:")
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	return New(s, opts), s
}

func TestListTodos_Empty(t *testing.T) {
	srv, _ := setupTestServer(t, Options{})

	req := httptest.NewRequest("GET", "/todos", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if body := strings.TrimSpace(rec.Body.String()); body != `{"todos":[]}` {
		t.Errorf("unexpected body %s", body)
	}
}

func TestCreateTodo_ThenList(t *testing.T) {
	srv, _ := setupTestServer(t, Options{})

	for _, payload := range []string{`{"body":"a","completed":false}`, `{"body":"b"}`} {
		req := httptest.NewRequest("POST", "/todos", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("POST %s: expected 201, got %d: %s", payload, rec.Code, rec.Body.String())
		}
	}

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest("GET", "/todos", nil))

	var out struct {
		Todos []model.Item `json:"todos"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Todos) != 2 || out.Todos[0].Body != "a" || out.Todos[1].Body != "b" {
		t.Fatalf("unexpected todos %+v", out.Todos)
	}
	if out.Todos[0].ID != model.NumericID(1) {
		t.Errorf("first id: got %s", out.Todos[0].ID)
	}
}

func TestCreateTodo_RejectsBadShape(t *testing.T) {
	srv, _ := setupTestServer(t, Options{})

	tests := []struct {
		name    string
		payload string
		wantErr string
	}{
		{"not json", `{`, "invalid json"},
		{"missing body", `{"completed":true}`, "body"},
		{"body not string", `{"body":1}`, "body"},
		{"completed not bool", `{"body":"x","completed":"yes"}`, "completed"},
		{"array", `[]`, "expected object"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/todos", strings.NewReader(tt.payload))
			rec := httptest.NewRecorder()
			srv.ServeHTTP(rec, req)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
			var out map[string]string
			if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if !strings.Contains(out["error"], tt.wantErr) {
				t.Errorf("error %q should mention %q", out["error"], tt.wantErr)
			}
		})
	}
}

func TestCreateTodo_EmptyBodyAccepted(t *testing.T) {
	srv, _ := setupTestServer(t, Options{})
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest("POST", "/todos", strings.NewReader(`{"body":""}`)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
}

func TestRequireToken(t *testing.T) {
	srv, _ := setupTestServer(t, Options{Token: "t0k"})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest("GET", "/todos", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	req := httptest.NewRequest("GET", "/todos", nil)
	req.Header.Set("Authorization", "Bearer t0k")
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", rec.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	srv, _ := setupTestServer(t, Options{Token: "t0k", CORSOrigins: []string{"http://localhost:3000"}})

	req := httptest.NewRequest("OPTIONS", "/todos", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code >= 300 {
		t.Fatalf("preflight failed with %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Access-Control-Allow-Origin: got %q", got)
	}
}

func TestUnknownRoute(t *testing.T) {
	srv, _ := setupTestServer(t, Options{})
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest("DELETE", "/todos", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", rec.Code)
	}
}

// The remote client and the server agree on the wire contract.
func TestRemoteClientRoundTrip(t *testing.T) {
	srv, _ := setupTestServer(t, Options{Token: "abc"})
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	c, err := remote.New(remote.Config{BaseURL: ts.URL, Token: "abc", HTTPClient: ts.Client()})
	if err != nil {
		t.Fatalf("remote.New: %v", err)
	}
	ctx := context.Background()

	created, err := c.Create(ctx, "a", true)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID.IsZero() || !created.Completed {
		t.Errorf("created: %+v", created)
	}
	items, err := c.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(items) != 1 || items[0] != created {
		t.Errorf("items: %+v", items)
	}

	bad, _ := remote.New(remote.Config{BaseURL: ts.URL, HTTPClient: ts.Client()})
	_, err = bad.ListAll(ctx)
	var se *remote.ServerError
	if !errors.As(err, &se) || se.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 ServerError, got %v", err)
	}
}

func TestListenAndServeStopsOnCancel(t *testing.T) {
	srv, _ := setupTestServer(t, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.ListenAndServe(ctx, "127.0.0.1:0") }()
	cancel()
	if err := <-done; err != nil {
		t.Errorf("ListenAndServe: %v", err)
	}
}
