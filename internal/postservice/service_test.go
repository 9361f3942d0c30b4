package postservice

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/notion"
	"github.com/starford/ansuz/internal/testutil"
)

func newTestService(t *testing.T, f *testutil.FakeContentStore) *Service {
	t.Helper()
	client := notion.NewClient(notion.ClientConfig{BaseURL: f.URL(), Token: "secret"})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(client, "db", 0, logger)
}

// recordJSON builds one query result record. extraProps is appended
// inside the properties object.
func recordJSON(id, title, status, extraProps string) string {
	props := fmt.Sprintf(`"Title": {"type":"title","title":[{"plain_text":%q,"annotations":{}}]},
		"Status": {"type":"status","status":{"name":%q}}`, title, status)
	if extraProps != "" {
		props += "," + extraProps
	}
	return fmt.Sprintf(`{
		"id": %q,
		"created_time": "2024-01-01T00:00:00Z",
		"last_edited_time": "2024-02-01T00:00:00Z",
		"properties": {%s}
	}`, id, props)
}

func TestGetPostRendersBody(t *testing.T) {
	const id = "aaaa1111-2222-3333-4444-555566667777"
	f := testutil.NewFakeContentStore(t)
	f.SetQueryPages("[" + recordJSON(id, "Hello", "公開",
		`"Tags": {"type":"multi_select","multi_select":[{"name":"x"},{"name":"y"}]}`) + "]")
	f.SetChildren(id, `[{"id":"blk-1","type":"paragraph","paragraph":{"rich_text":[{"plain_text":"Hi","annotations":{}}]}}]`)

	svc := newTestService(t, f)
	post, err := svc.GetPost(context.Background(), "hello")
	if err != nil {
		t.Fatalf("GetPost: %v", err)
	}
	if post.Title != "Hello" {
		t.Errorf("title = %q", post.Title)
	}
	if len(post.Tags) != 2 || post.Tags[0] != "x" || post.Tags[1] != "y" {
		t.Errorf("tags = %v, want [x y]", post.Tags)
	}
	if post.Content != "Hi" {
		t.Errorf("content = %q, want Hi", post.Content)
	}
	if post.Markdown != "Hi" {
		t.Errorf("markdown = %q, want Hi", post.Markdown)
	}
	if post.ContentHTML != "<p>Hi</p>" {
		t.Errorf("contentHtml = %q, want <p>Hi</p>", post.ContentHTML)
	}
}

func TestGetPostIDFormsEquivalent(t *testing.T) {
	const id = "aaaa1111-2222-3333-4444-555566667777"
	f := testutil.NewFakeContentStore(t)
	f.SetQueryPages("[" + recordJSON(id, "Hello", "公開", "") + "]")

	svc := newTestService(t, f)
	for _, lookup := range []string{
		id,
		"aaaa11112222333344445555" + "66667777",
		"AAAA1111-2222-3333-4444-555566667777",
	} {
		post, err := svc.GetPost(context.Background(), lookup)
		if err != nil {
			t.Fatalf("GetPost(%q): %v", lookup, err)
		}
		if post.ID != id {
			t.Errorf("GetPost(%q) returned id %q", lookup, post.ID)
		}
	}
}

func TestGetPostNotFound(t *testing.T) {
	f := testutil.NewFakeContentStore(t)
	f.SetQueryPages("[" + recordJSON("id-1", "Hello", "公開", "") + "]")

	svc := newTestService(t, f)
	if _, err := svc.GetPost(context.Background(), "nope"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestGetPostDraftHidden(t *testing.T) {
	f := testutil.NewFakeContentStore(t)
	f.SetQueryPages("[" + recordJSON("id-1", "Secret", "ドラフト", "") + "]")

	svc := newTestService(t, f)
	if _, err := svc.GetPost(context.Background(), "secret"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound for a draft", err)
	}
}

func TestListPostsBackfillsEmptyContent(t *testing.T) {
	f := testutil.NewFakeContentStore(t)
	withExcerpt := recordJSON("id-full", "Has Excerpt", "公開",
		`"Description": {"type":"rich_text","rich_text":[{"plain_text":"ready-made","annotations":{}}]}`)
	withoutExcerpt := recordJSON("id-empty", "Needs Body", "公開", "")
	f.SetQueryPages("[" + withExcerpt + "," + withoutExcerpt + "]")
	f.SetChildren("id-empty", `[{"id":"blk","type":"paragraph","paragraph":{"rich_text":[{"plain_text":"fetched body","annotations":{}}]}}]`)

	svc := newTestService(t, f)
	posts, err := svc.ListPosts(context.Background())
	if err != nil {
		t.Fatalf("ListPosts: %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("got %d posts, want 2", len(posts))
	}

	byID := make(map[string]string, len(posts))
	for _, p := range posts {
		byID[p.ID] = p.Content
	}
	if byID["id-full"] != "ready-made" {
		t.Errorf("excerpt post content = %q, want ready-made", byID["id-full"])
	}
	if byID["id-empty"] != "fetched body" {
		t.Errorf("backfilled content = %q, want fetched body", byID["id-empty"])
	}
	if calls := f.ChildrenCalls("id-full"); calls != 0 {
		t.Errorf("excerpt post triggered %d block fetches, want 0", calls)
	}
}

func TestListPostsBackfillFailureTolerated(t *testing.T) {
	f := testutil.NewFakeContentStore(t)
	f.SetQueryPages("[" +
		recordJSON("id-ok", "Fine", "公開", "") + "," +
		recordJSON("id-bad", "Broken", "公開", "") + "]")
	f.SetChildren("id-ok", `[{"id":"blk","type":"paragraph","paragraph":{"rich_text":[{"plain_text":"body","annotations":{}}]}}]`)
	f.FailChildren("id-bad", http.StatusInternalServerError, `{"message":"nope"}`)

	svc := newTestService(t, f)
	posts, err := svc.ListPosts(context.Background())
	if err != nil {
		t.Fatalf("ListPosts: %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("got %d posts, want 2", len(posts))
	}
	for _, p := range posts {
		switch p.ID {
		case "id-ok":
			if p.Content != "body" {
				t.Errorf("healthy post content = %q, want body", p.Content)
			}
		case "id-bad":
			if p.Content != "" {
				t.Errorf("failed post content = %q, want empty", p.Content)
			}
		}
	}
}

func TestGetPostEnrichErrorPropagates(t *testing.T) {
	f := testutil.NewFakeContentStore(t)
	f.SetQueryPages("[" + recordJSON("id-1", "Hello", "公開", "") + "]")
	f.FailChildren("id-1", http.StatusBadGateway, `{"message":"down"}`)

	svc := newTestService(t, f)
	_, err := svc.GetPost(context.Background(), "hello")
	var upstream *apperr.UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("error = %v, want UpstreamError", err)
	}
	if upstream.StatusCode != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", upstream.StatusCode)
	}
}
