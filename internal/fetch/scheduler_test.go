package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/itsmostafa/codegrab/internal/doctree"
	"github.com/itsmostafa/codegrab/internal/icc"
	"github.com/itsmostafa/codegrab/internal/store"
)

// contentServer serves content/chapter-xml/<doc>/<id> with a JSON-wrapped
// markup fragment per section, counts content requests, and fails the IDs
// in failing with a 500.
type contentServer struct {
	srv      *httptest.Server
	requests atomic.Int64

	mu      sync.Mutex
	failing map[int]bool
}

func newContentServer(t *testing.T) *contentServer {
	t.Helper()
	cs := &contentServer{failing: make(map[int]bool)}
	cs.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		if len(parts) != 4 || parts[1] != "chapter-xml" {
			http.NotFound(w, r)
			return
		}
		id, err := strconv.Atoi(parts[3])
		if err != nil {
			http.NotFound(w, r)
			return
		}
		cs.requests.Add(1)
		if cs.isFailing(id) {
			http.Error(w, "upstream hiccup", http.StatusInternalServerError)
			return
		}
		body, _ := json.Marshal(fmt.Sprintf("<p>content %d</p>", id))
		w.Write(body)
	}))
	t.Cleanup(cs.srv.Close)
	return cs
}

func (cs *contentServer) isFailing(id int) bool {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.failing[id]
}

func (cs *contentServer) setFailing(id int, fail bool) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.failing[id] = fail
}

func (cs *contentServer) client() *icc.Client {
	return icc.NewClient(icc.ClientOptions{
		BaseURL: cs.srv.URL,
		Limiter: icc.NewLimiter(time.Nanosecond, 1),
	})
}

func testNodes() []*doctree.Node {
	chapter := &doctree.Node{Title: "Chapter 1"} // container without content
	s1 := &doctree.Node{ID: 101, Title: "Section 101", Depth: 1}
	s2 := &doctree.Node{ID: 102, Title: "Section 102", Depth: 1, Ordinal: 1}
	s3 := &doctree.Node{ID: 103, Title: "Section 103", Depth: 1, Ordinal: 2}
	chapter.Children = []*doctree.Node{s1, s2, s3}
	return doctree.Flatten([]*doctree.Node{chapter})
}

func TestRunFetchesAllSections(t *testing.T) {
	cs := newContentServer(t)
	st, _ := store.New(t.TempDir())

	var out bytes.Buffer
	res, err := Run(context.Background(), Config{
		DocumentID: 1240,
		Client:     cs.client(),
		Store:      st,
		Output:     &out,
	}, testNodes())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if res.Fetched != 3 || res.Skipped != 0 {
		t.Errorf("Result = %+v, want 3 fetched, 0 skipped", res)
	}
	if cs.requests.Load() != 3 {
		t.Errorf("issued %d requests, want 3", cs.requests.Load())
	}
	for _, id := range []int{101, 102, 103} {
		if !st.Has(icc.ContentPath(1240, id)) {
			t.Errorf("section %d not cached", id)
		}
	}
	// Container nodes are never fetched by the scheduler.
	if st.Has(icc.ContentPath(1240, 0)) {
		t.Error("container node was fetched")
	}
	if !strings.Contains(out.String(), "Section 102") {
		t.Error("progress output missing section title")
	}
}

func TestRunIdempotent(t *testing.T) {
	cs := newContentServer(t)
	st, _ := store.New(t.TempDir())
	cfg := Config{DocumentID: 1240, Client: cs.client(), Store: st}

	if _, err := Run(context.Background(), cfg, testNodes()); err != nil {
		t.Fatalf("first Run() error: %v", err)
	}
	before := cs.requests.Load()

	res, err := Run(context.Background(), cfg, testNodes())
	if err != nil {
		t.Fatalf("second Run() error: %v", err)
	}
	if got := cs.requests.Load() - before; got != 0 {
		t.Errorf("second run issued %d network calls, want 0", got)
	}
	if res.Fetched != 0 || res.Skipped != 3 {
		t.Errorf("second run Result = %+v, want 0 fetched, 3 skipped", res)
	}
}

func TestRunFailFastAndResume(t *testing.T) {
	cs := newContentServer(t)
	cs.setFailing(102, true)
	st, _ := store.New(t.TempDir())
	cfg := Config{DocumentID: 1240, Client: cs.client(), Store: st}

	res, err := Run(context.Background(), cfg, testNodes())
	if err == nil {
		t.Fatal("Run() succeeded despite failing section")
	}

	// The error names the failing section and carries the cause.
	var nodeErr *NodeError
	if !errors.As(err, &nodeErr) {
		t.Fatalf("error = %v (%T), want *NodeError", err, err)
	}
	if nodeErr.Node.ID != 102 {
		t.Errorf("failed node ID = %d, want 102", nodeErr.Node.ID)
	}
	if !strings.Contains(err.Error(), "Section 102") {
		t.Errorf("error %q does not name the section", err)
	}
	var apiErr *icc.APIError
	if !errors.As(err, &apiErr) {
		t.Errorf("cause = %v, want *icc.APIError", errors.Unwrap(err))
	}

	// Fail-fast: 101 cached, nothing at or past the failure.
	if res.Fetched != 1 {
		t.Errorf("Fetched = %d before failure, want 1", res.Fetched)
	}
	if !st.Has(icc.ContentPath(1240, 101)) {
		t.Error("section before failure not cached")
	}
	if st.Has(icc.ContentPath(1240, 102)) || st.Has(icc.ContentPath(1240, 103)) {
		t.Error("sections at or past the failure were cached")
	}

	// Fix upstream and re-run: exactly the remaining sections, in order.
	cs.setFailing(102, false)
	before := cs.requests.Load()
	res, err = Run(context.Background(), cfg, testNodes())
	if err != nil {
		t.Fatalf("resumed Run() error: %v", err)
	}
	if got := cs.requests.Load() - before; got != 2 {
		t.Errorf("resumed run issued %d requests, want 2", got)
	}
	if res.Fetched != 2 || res.Skipped != 1 {
		t.Errorf("resumed Result = %+v, want 2 fetched, 1 skipped", res)
	}

	// Final state matches an uninterrupted run.
	for _, id := range []int{101, 102, 103} {
		if !st.Has(icc.ContentPath(1240, id)) {
			t.Errorf("section %d missing after resume", id)
		}
	}
}

func TestRunCancelledContext(t *testing.T) {
	cs := newContentServer(t)
	st, _ := store.New(t.TempDir())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, Config{DocumentID: 1240, Client: cs.client(), Store: st}, testNodes())
	if err == nil {
		t.Fatal("Run() succeeded with cancelled context")
	}
	var nodeErr *NodeError
	if !errors.As(err, &nodeErr) {
		t.Fatalf("error = %v (%T), want *NodeError", err, err)
	}
}
