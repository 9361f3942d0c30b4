package api

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/notion"
	"github.com/starford/ansuz/internal/postservice"
	"github.com/starford/ansuz/internal/testutil"
)

func newTestRouter(t *testing.T, f *testutil.FakeContentStore, authEnabled bool, token string) http.Handler {
	t.Helper()
	client := notion.NewClient(notion.ClientConfig{BaseURL: f.URL(), Token: "store-secret"})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := postservice.NewService(client, "db", 0, logger)
	return NewRouter(svc, authEnabled, token)
}

func seedPost(f *testutil.FakeContentStore, id, title string) {
	f.SetQueryPages(fmt.Sprintf(`[{
		"id": %q,
		"created_time": "2024-01-01T00:00:00Z",
		"last_edited_time": "2024-02-01T00:00:00Z",
		"properties": {
			"Title": {"type":"title","title":[{"plain_text":%q,"annotations":{}}]},
			"Published": {"type":"checkbox","checkbox":true}
		}
	}]`, id, title))
}

func doRequest(t *testing.T, h http.Handler, method, target string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestListPostsEndpoint(t *testing.T) {
	f := testutil.NewFakeContentStore(t)
	seedPost(f, "id-1", "Hello")
	f.SetChildren("id-1", `[{"id":"blk","type":"paragraph","paragraph":{"rich_text":[{"plain_text":"Body","annotations":{}}]}}]`)

	rec := doRequest(t, newTestRouter(t, f, false, ""), http.MethodGet, "/posts", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("content-type = %q", ct)
	}

	var posts []models.Post
	if err := json.Unmarshal(rec.Body.Bytes(), &posts); err != nil {
		t.Fatalf("response is not a post array: %v", err)
	}
	if len(posts) != 1 {
		t.Fatalf("got %d posts, want 1", len(posts))
	}
	if posts[0].Title != "Hello" || posts[0].Slug != "hello" {
		t.Errorf("post = %+v", posts[0])
	}
	if posts[0].Content != "Body" {
		t.Errorf("content = %q, want backfilled Body", posts[0].Content)
	}
}

func TestGetPostEndpoint(t *testing.T) {
	f := testutil.NewFakeContentStore(t)
	seedPost(f, "id-1", "Hello")
	f.SetChildren("id-1", `[{"id":"blk","type":"heading_1","heading_1":{"rich_text":[{"plain_text":"Body","annotations":{}}]}}]`)

	rec := doRequest(t, newTestRouter(t, f, false, ""), http.MethodGet, "/posts/hello", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", rec.Code, rec.Body.String())
	}

	var post models.Post
	if err := json.Unmarshal(rec.Body.Bytes(), &post); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if post.Markdown != "# Body" {
		t.Errorf("markdown = %q, want # Body", post.Markdown)
	}
	if post.ContentHTML != "<h1>Body</h1>" {
		t.Errorf("contentHtml = %q, want <h1>Body</h1>", post.ContentHTML)
	}
}

func TestGetPostNotFound(t *testing.T) {
	f := testutil.NewFakeContentStore(t)
	seedPost(f, "id-1", "Hello")

	rec := doRequest(t, newTestRouter(t, f, false, ""), http.MethodGet, "/posts/missing", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	var body errResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if body.Error != "not found" {
		t.Errorf("error = %q, want not found", body.Error)
	}
}

func TestUpstreamStatusPassthrough(t *testing.T) {
	f := testutil.NewFakeContentStore(t)
	f.FailQuery(http.StatusServiceUnavailable, `{"message":"store down"}`)

	rec := doRequest(t, newTestRouter(t, f, false, ""), http.MethodGet, "/posts", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	var body errResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	// The upstream body must not leak to the client.
	if body.Error != "upstream error" {
		t.Errorf("error = %q, want the generic upstream message", body.Error)
	}
}

func TestAuthMiddleware(t *testing.T) {
	f := testutil.NewFakeContentStore(t)
	seedPost(f, "id-1", "Hello")
	h := newTestRouter(t, f, true, "s3cret")

	tests := []struct {
		name   string
		header map[string]string
		want   int
	}{
		{"missing header", nil, http.StatusUnauthorized},
		{"wrong token", map[string]string{"Authorization": "Bearer nope"}, http.StatusUnauthorized},
		{"wrong scheme", map[string]string{"Authorization": "Basic s3cret"}, http.StatusUnauthorized},
		{"valid token", map[string]string{"Authorization": "Bearer s3cret"}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, h, http.MethodGet, "/posts", tt.header)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}
