// Package testutil provides a fake content-store HTTP server for tests.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
)

// FakeContentStore imitates the content-store API: a cursor-paginated
// database query endpoint and a block-children listing endpoint.
// Responses are configured as raw JSON results arrays; the envelope
// (has_more, next_cursor) is synthesized from the configured pages.
type FakeContentStore struct {
	mu            sync.Mutex
	queryPages    []string
	queryStatus   int
	queryBody     string
	children      map[string][]string
	childrenFail  map[string]failure
	queryCalls    int
	childrenCalls map[string]int

	srv *httptest.Server
}

// NewFakeContentStore starts the fake server; it shuts down with the test.
func NewFakeContentStore(t *testing.T) *FakeContentStore {
	t.Helper()
	f := &FakeContentStore{
		children:      make(map[string][]string),
		childrenFail:  make(map[string]failure),
		childrenCalls: make(map[string]int),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /databases/{id}/query", f.handleQuery)
	mux.HandleFunc("GET /blocks/{id}/children", f.handleChildren)

	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

// URL returns the fake API base URL.
func (f *FakeContentStore) URL() string {
	return f.srv.URL
}

// SetQueryPages configures the paginated query result: each argument is
// one page's raw JSON results array, served in order via cursors. The
// sequence is repeatable, so multiple full drains see the same data.
func (f *FakeContentStore) SetQueryPages(pages ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queryPages = pages
}

// FailQuery makes the query endpoint return the given status and body.
func (f *FakeContentStore) FailQuery(status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queryStatus = status
	f.queryBody = body
}

// SetChildren configures the children pages returned for one parent
// block id. Multiple pages are served via cursors.
func (f *FakeContentStore) SetChildren(blockID string, pages ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.children[blockID] = pages
}

type failure struct {
	status int
	body   string
}

// FailChildren makes the children endpoint for one parent block id
// return the given status and body.
func (f *FakeContentStore) FailChildren(blockID string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.childrenFail[blockID] = failure{status: status, body: body}
}

// QueryCalls reports how many query requests were served.
func (f *FakeContentStore) QueryCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queryCalls
}

// ChildrenCalls reports how many children requests were served for the
// given block id.
func (f *FakeContentStore) ChildrenCalls(blockID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.childrenCalls[blockID]
}

func (f *FakeContentStore) handleQuery(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.queryCalls++
	status, failBody := f.queryStatus, f.queryBody
	pages := f.queryPages
	f.mu.Unlock()

	if status != 0 {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(failBody))
		return
	}

	var req struct {
		PageSize    int    `json:"page_size"`
		StartCursor string `json:"start_cursor"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)
	servePage(w, pages, req.StartCursor)
}

func (f *FakeContentStore) handleChildren(w http.ResponseWriter, r *http.Request) {
	blockID := r.PathValue("id")

	f.mu.Lock()
	f.childrenCalls[blockID]++
	pages := f.children[blockID]
	fail, failing := f.childrenFail[blockID]
	f.mu.Unlock()

	if failing {
		w.WriteHeader(fail.status)
		_, _ = w.Write([]byte(fail.body))
		return
	}
	servePage(w, pages, r.URL.Query().Get("start_cursor"))
}

// servePage picks the page addressed by the cursor ("" means the first)
// and wraps it in the pagination envelope.
func servePage(w http.ResponseWriter, pages []string, cursor string) {
	w.Header().Set("Content-Type", "application/json")

	idx := 0
	if cursor != "" {
		n, err := strconv.Atoi(strings.TrimPrefix(cursor, "cursor-"))
		if err != nil {
			http.Error(w, `{"error":"bad cursor"}`, http.StatusBadRequest)
			return
		}
		idx = n
	}
	if idx >= len(pages) {
		_, _ = fmt.Fprint(w, `{"results":[],"has_more":false,"next_cursor":null}`)
		return
	}

	hasMore := idx < len(pages)-1
	next := "null"
	if hasMore {
		next = `"cursor-` + strconv.Itoa(idx+1) + `"`
	}
	_, _ = fmt.Fprintf(w, `{"results":%s,"has_more":%t,"next_cursor":%s}`, pages[idx], hasMore, next)
}
