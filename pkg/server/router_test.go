package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"headless-cms-backend/pkg/config"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details []struct {
			Field   string `json:"field"`
			Message string `json:"message"`
		} `json:"details"`
	} `json:"error"`
	Pagination *struct {
		Page       int `json:"page"`
		PerPage    int `json:"per_page"`
		Total      int `json:"total"`
		TotalPages int `json:"total_pages"`
	} `json:"pagination"`
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	cfg := &config.Config{
		Environment:    "test",
		Port:           "0",
		DatabaseDriver: "sqlite",
		SQLitePath:     filepath.Join(t.TempDir(), "cms.db"),
		AllowedOrigins: []string{"*"},
		MaxBodyBytes:   1 << 16,
		RequestTimeout: 5 * time.Second,
	}
	app, err := NewApp(context.Background(), cfg, zap.NewNop().Sugar())
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	srv := httptest.NewServer(app.Handler)
	t.Cleanup(func() {
		srv.Close()
		app.Close()
	})
	return srv
}

func do(t *testing.T, srv *httptest.Server, method, path, body string) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, srv.URL+path, reader)
	if err != nil {
		t.Fatal(err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("%s %s: decode: %v", method, path, err)
	}
	return resp.StatusCode, env
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	code, env := do(t, srv, http.MethodGet, "/api/health", "")
	if code != http.StatusOK || !env.Success {
		t.Fatalf("health: %d %+v", code, env)
	}
}

func TestCollectionLifecycle(t *testing.T) {
	srv := newTestServer(t)

	code, env := do(t, srv, http.MethodPost, "/api/collections", `{
		"name": "Blog Posts!!",
		"description": "articles",
		"fields": [
			{"name": "title", "type": "string", "required": true, "maxLength": 5},
			{"name": "category", "type": "select", "options": ["tech", "life"]}
		]
	}`)
	if code != http.StatusCreated {
		t.Fatalf("create: %d %+v", code, env.Error)
	}
	var created struct {
		Slug string `json:"slug"`
	}
	json.Unmarshal(env.Data, &created)
	if created.Slug != "blog-posts" {
		t.Fatalf("slug = %q", created.Slug)
	}

	code, env = do(t, srv, http.MethodPost, "/api/collections", `{"name": "blog posts"}`)
	if code != http.StatusConflict || env.Error == nil || env.Error.Code != "CONFLICT" {
		t.Fatalf("duplicate: %d %+v", code, env.Error)
	}

	code, env = do(t, srv, http.MethodPost, "/api/collections", `{"name": "Bad", "fields": "nope"}`)
	if code != http.StatusBadRequest || env.Error.Message != "Fields must be an array" || len(env.Error.Details) != 0 {
		t.Fatalf("bad fields: %d %+v", code, env.Error)
	}

	code, env = do(t, srv, http.MethodPatch, "/api/collections/blog-posts", `{"description": "updated"}`)
	if code != http.StatusOK {
		t.Fatalf("patch: %d %+v", code, env.Error)
	}

	code, env = do(t, srv, http.MethodGet, "/api/collections", "")
	var list []struct {
		Slug       string `json:"slug"`
		EntryCount int    `json:"entry_count"`
	}
	json.Unmarshal(env.Data, &list)
	if code != http.StatusOK || len(list) != 1 || list[0].Slug != "blog-posts" {
		t.Fatalf("list: %d %s", code, env.Data)
	}

	code, _ = do(t, srv, http.MethodDelete, "/api/collections/blog-posts", "")
	if code != http.StatusOK {
		t.Fatalf("delete: %d", code)
	}
	code, env = do(t, srv, http.MethodGet, "/api/collections/blog-posts", "")
	if code != http.StatusNotFound || env.Error.Code != "NOT_FOUND" {
		t.Fatalf("get deleted: %d %+v", code, env.Error)
	}
}

func TestEntryLifecycle(t *testing.T) {
	srv := newTestServer(t)
	code, _ := do(t, srv, http.MethodPost, "/api/collections", `{
		"name": "Posts",
		"fields": [
			{"name": "title", "type": "string", "required": true, "maxLength": 5},
			{"name": "category", "type": "select", "options": ["tech", "life"]}
		]
	}`)
	if code != http.StatusCreated {
		t.Fatalf("create collection: %d", code)
	}

	code, env := do(t, srv, http.MethodPost, "/api/collections/posts/entries", `{"data": {"title": "toolong"}}`)
	if code != http.StatusBadRequest || env.Error.Code != "VALIDATION_ERROR" {
		t.Fatalf("invalid entry: %d %+v", code, env.Error)
	}
	if len(env.Error.Details) != 1 || env.Error.Details[0].Field != "title" || !strings.Contains(env.Error.Details[0].Message, "5") {
		t.Fatalf("unexpected details %+v", env.Error.Details)
	}

	for i := 0; i < 3; i++ {
		body := fmt.Sprintf(`{"data": {"title": "p%d", "category": "tech"}, "status": "published"}`, i)
		if code, env = do(t, srv, http.MethodPost, "/api/collections/posts/entries", body); code != http.StatusCreated {
			t.Fatalf("create entry: %d %+v", code, env.Error)
		}
	}
	var entry struct {
		ID     int64                  `json:"id"`
		Status string                 `json:"status"`
		Data   map[string]interface{} `json:"data"`
	}
	json.Unmarshal(env.Data, &entry)
	if entry.Status != "published" || entry.Data["title"] != "p2" {
		t.Fatalf("unexpected entry %+v", entry)
	}

	code, env = do(t, srv, http.MethodGet, "/api/collections/posts/entries?status=published&filter.category=tech&sort=-id&page=2&per_page=2", "")
	if code != http.StatusOK || env.Pagination == nil {
		t.Fatalf("list: %d %+v", code, env.Error)
	}
	if p := env.Pagination; p.Page != 2 || p.PerPage != 2 || p.Total != 3 || p.TotalPages != 2 {
		t.Fatalf("pagination %+v", env.Pagination)
	}

	path := fmt.Sprintf("/api/collections/posts/entries/%d", entry.ID)
	code, env = do(t, srv, http.MethodPut, path, `{"status": "draft"}`)
	if code != http.StatusOK {
		t.Fatalf("update: %d %+v", code, env.Error)
	}
	json.Unmarshal(env.Data, &entry)
	if entry.Status != "draft" || entry.Data["title"] != "p2" {
		t.Fatalf("unexpected updated entry %+v", entry)
	}

	if code, _ = do(t, srv, http.MethodDelete, path, ""); code != http.StatusOK {
		t.Fatalf("delete: %d", code)
	}
	if code, _ = do(t, srv, http.MethodGet, path, ""); code != http.StatusNotFound {
		t.Fatalf("get deleted: %d", code)
	}
	if code, _ = do(t, srv, http.MethodGet, "/api/collections/posts/entries/abc", ""); code != http.StatusNotFound {
		t.Fatalf("non-numeric id: %d", code)
	}
	if code, _ = do(t, srv, http.MethodGet, "/api/collections/missing/entries", ""); code != http.StatusNotFound {
		t.Fatalf("missing collection: %d", code)
	}
}

func TestRequestErrors(t *testing.T) {
	srv := newTestServer(t)

	code, env := do(t, srv, http.MethodPost, "/api/collections", `{not json`)
	if code != http.StatusBadRequest || env.Error.Code != "BAD_REQUEST" {
		t.Fatalf("bad json: %d %+v", code, env.Error)
	}

	big := fmt.Sprintf(`{"name": "x", "description": %q}`, strings.Repeat("a", 1<<16))
	code, env = do(t, srv, http.MethodPost, "/api/collections", big)
	if code != http.StatusRequestEntityTooLarge {
		t.Fatalf("oversized body: %d %+v", code, env.Error)
	}

	code, env = do(t, srv, http.MethodGet, "/api/nowhere", "")
	if code != http.StatusNotFound || env.Success {
		t.Fatalf("unknown route: %d", code)
	}

	code, _ = do(t, srv, http.MethodPost, "/api/collections/x/entries/1", `{}`)
	if code != http.StatusMethodNotAllowed {
		t.Fatalf("method not allowed: %d", code)
	}

	code, env = do(t, srv, http.MethodGet, "/api/collections/none/entries?filter.bad-name=1", "")
	if code != http.StatusNotFound {
		t.Fatalf("collection lookup precedes filter validation: %d", code)
	}
}

func TestTrailingSlashAndFieldExtras(t *testing.T) {
	srv := newTestServer(t)

	code, env := do(t, srv, http.MethodPost, "/api/collections/", `{
		"name": "Blog",
		"fields": [{"name": "title", "type": "text", "maxLength": "10", "placeholder": "Say hi"}]
	}`)
	if code != http.StatusCreated {
		t.Fatalf("create: %d %+v", code, env.Error)
	}

	code, env = do(t, srv, http.MethodGet, "/api//collections/blog/", "")
	if code != http.StatusOK {
		t.Fatalf("get with trailing slash: %d %+v", code, env.Error)
	}
	var got struct {
		Fields []map[string]interface{} `json:"fields"`
	}
	json.Unmarshal(env.Data, &got)
	if len(got.Fields) != 1 || got.Fields[0]["placeholder"] != "Say hi" || got.Fields[0]["maxLength"] != "10" {
		t.Fatalf("field definition not kept as given: %s", env.Data)
	}

	code, env = do(t, srv, http.MethodPost, "/api/collections", `{
		"name": "Scores",
		"fields": [{"name": "n", "type": "number", "default": "abc"}]
	}`)
	if code != http.StatusBadRequest || len(env.Error.Details) != 1 || env.Error.Details[0].Field != "fields[0].default" {
		t.Fatalf("bad default: %d %+v", code, env.Error)
	}
}
