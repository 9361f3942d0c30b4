package postservice

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/starford/ansuz/internal/notion"
)

func pageFromJSON(t *testing.T, raw string) notion.Page {
	t.Helper()
	var p notion.Page
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		t.Fatalf("decode page: %v", err)
	}
	return p
}

// publishedPage builds a minimal eligible record.
func publishedPage(t *testing.T, id, title, lastEdited string) notion.Page {
	t.Helper()
	return pageFromJSON(t, fmt.Sprintf(`{
		"id": %q,
		"created_time": "2024-01-01T00:00:00Z",
		"last_edited_time": %q,
		"url": "https://store.example.com/%s",
		"properties": {
			"Title": {"type":"title","title":[{"plain_text":%q,"annotations":{}}]},
			"Published": {"type":"checkbox","checkbox":true}
		}
	}`, id, lastEdited, id, title))
}

func TestAssemblePostsSkipsIneligible(t *testing.T) {
	archived := publishedPage(t, "id-1", "Archived", "2024-02-01T00:00:00Z")
	archived.Archived = true

	untitled := pageFromJSON(t, `{
		"id": "id-2",
		"properties": {
			"Title": {"type":"title","title":[{"plain_text":"   ","annotations":{}}]},
			"Published": {"type":"checkbox","checkbox":true}
		}
	}`)

	draft := pageFromJSON(t, `{
		"id": "id-3",
		"properties": {
			"Title": {"type":"title","title":[{"plain_text":"Draft","annotations":{}}]},
			"Published": {"type":"checkbox","checkbox":false}
		}
	}`)

	good := publishedPage(t, "id-4", "Keeper", "2024-02-01T00:00:00Z")

	posts := assemblePosts([]notion.Page{archived, untitled, draft, good})
	if len(posts) != 1 {
		t.Fatalf("got %d posts, want 1", len(posts))
	}
	if posts[0].Title != "Keeper" {
		t.Errorf("kept post = %q, want Keeper", posts[0].Title)
	}
}

func TestAssemblePostsSlugDedup(t *testing.T) {
	a := publishedPage(t, "aaaa1111-2222-3333-4444-555566667777", "Hello World", "2024-02-01T00:00:00Z")
	b := publishedPage(t, "deadbeef-2222-3333-4444-555566667777", "Hello World", "2024-01-15T00:00:00Z")

	posts := assemblePosts([]notion.Page{a, b})
	if len(posts) != 2 {
		t.Fatalf("got %d posts, want 2", len(posts))
	}
	// Sorted newest first; a is newer and was also first in input, so
	// it keeps the plain slug.
	if posts[0].Slug != "hello-world" {
		t.Errorf("first slug = %q, want hello-world", posts[0].Slug)
	}
	if posts[1].Slug != "hello-world-deadbe" {
		t.Errorf("second slug = %q, want hello-world-deadbe", posts[1].Slug)
	}
}

func TestAssemblePostsRecencyOrder(t *testing.T) {
	pages := []notion.Page{
		publishedPage(t, "id-a", "Oldest", "2024-01-01T00:00:00Z"),
		publishedPage(t, "id-b", "Newest", "2024-03-01T00:00:00Z"),
		publishedPage(t, "id-c", "Middle", "2024-02-01T00:00:00Z"),
	}
	posts := assemblePosts(pages)
	if len(posts) != 3 {
		t.Fatalf("got %d posts, want 3", len(posts))
	}
	for i, want := range []string{"Newest", "Middle", "Oldest"} {
		if posts[i].Title != want {
			t.Errorf("posts[%d] = %q, want %q", i, posts[i].Title, want)
		}
	}
}

func TestAssemblePostFields(t *testing.T) {
	page := pageFromJSON(t, `{
		"id": "id-x",
		"created_time": "2024-01-01T00:00:00Z",
		"last_edited_time": "2024-02-01T00:00:00Z",
		"url": "https://store.example.com/id-x",
		"cover": {"type":"external","external":{"url":"https://img.example.com/cover.png"}},
		"properties": {
			"Title": {"type":"title","title":[{"plain_text":"My Post","annotations":{}}]},
			"Description": {"type":"rich_text","rich_text":[{"plain_text":"An excerpt.","annotations":{}}]},
			"Tags": {"type":"multi_select","multi_select":[{"name":"go"},{"name":"web"}]},
			"Published": {"type":"checkbox","checkbox":true}
		}
	}`)

	posts := assemblePosts([]notion.Page{page})
	if len(posts) != 1 {
		t.Fatalf("got %d posts, want 1", len(posts))
	}
	p := posts[0]
	if p.Slug != "my-post" {
		t.Errorf("slug = %q", p.Slug)
	}
	if p.Subtitle != "An excerpt." || p.Content != "An excerpt." {
		t.Errorf("subtitle/content = %q/%q, want the excerpt in both", p.Subtitle, p.Content)
	}
	if len(p.Tags) != 2 || p.Tags[0] != "go" || p.Tags[1] != "web" {
		t.Errorf("tags = %v", p.Tags)
	}
	if p.CoverURL != "https://img.example.com/cover.png" {
		t.Errorf("cover = %q", p.CoverURL)
	}
	if p.URL != "https://store.example.com/id-x" {
		t.Errorf("url = %q", p.URL)
	}
}

func TestAssemblePostTagsNeverNil(t *testing.T) {
	page := publishedPage(t, "id-y", "No Tags", "2024-02-01T00:00:00Z")
	posts := assemblePosts([]notion.Page{page})
	if len(posts) != 1 {
		t.Fatalf("got %d posts, want 1", len(posts))
	}
	if posts[0].Tags == nil || len(posts[0].Tags) != 0 {
		t.Errorf("tags = %#v, want empty non-nil slice", posts[0].Tags)
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hello World", "hello-world"},
		{"  Go 1.22 -- what's new?  ", "go-1-22-what-s-new"},
		{"ALL CAPS", "all-caps"},
		{"---", "post"},
		{"こんにちは", "post"},
		{strings.Repeat("a", 250), strings.Repeat("a", 200)},
	}
	for _, tt := range tests {
		if got := slugify(tt.in); got != tt.want {
			t.Errorf("slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeID(t *testing.T) {
	dashed := "AAAA1111-2222-3333-4444-555566667777"
	undashed := "aaaa111122223333444455556666" + "7777"
	if normalizeID(dashed) != normalizeID(undashed) {
		t.Errorf("dashed and undashed forms differ: %q vs %q",
			normalizeID(dashed), normalizeID(undashed))
	}
}
