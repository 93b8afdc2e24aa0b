package resolver

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/japanese"
)

// lookupServer answers by-code lookups from a table of canned bodies and counts
// the calls made for each code.
type lookupServer struct {
	mu     sync.Mutex
	calls  map[string]int
	bodies map[string]string
	status map[string]int
	delay  map[string]time.Duration
}

func newLookupServer(t *testing.T) (*lookupServer, *httptest.Server) {
	t.Helper()
	ls := &lookupServer{
		calls:  map[string]int{},
		bodies: map[string]string{},
		status: map[string]int{},
		delay:  map[string]time.Duration{},
	}
	srv := httptest.NewServer(http.HandlerFunc(ls.serve))
	t.Cleanup(srv.Close)
	return ls, srv
}

func (ls *lookupServer) serve(w http.ResponseWriter, r *http.Request) {
	code, ok := strings.CutPrefix(r.URL.Path, lookupPath)
	if !ok {
		http.NotFound(w, r)
		return
	}

	ls.mu.Lock()
	ls.calls[code]++
	body, status, delay := ls.bodies[code], ls.status[code], ls.delay[code]
	ls.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
	}
	if status != 0 {
		w.WriteHeader(status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(body))
}

func (ls *lookupServer) callCount(code string) int {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return ls.calls[code]
}

func links(html, pdf []string) string {
	quote := func(urls []string) string {
		parts := make([]string, len(urls))
		for i, u := range urls {
			parts[i] = fmt.Sprintf(`{"url":%q,"title":"doc"}`, u)
		}
		return "[" + strings.Join(parts, ",") + "]"
	}
	return fmt.Sprintf(`{"document_links":{"html":%s,"pdf":%s}}`, quote(html), quote(pdf))
}

func TestResolveOneCallPerUniqueCode(t *testing.T) {
	ls, srv := newLookupServer(t)
	ls.bodies["A"] = links([]string{"u1", "u2"}, nil)
	ls.bodies["B"] = links([]string{"u1"}, nil)

	r := New(Config{BaseURL: srv.URL + "/", Timeout: time.Second})
	cache := r.Resolve(context.Background(), []string{"A", "A", "B", "A", " B "})

	assert.Equal(t, 1, ls.callCount("A"))
	assert.Equal(t, 1, ls.callCount("B"))
	assert.Equal(t, []string{"u1", "u2"}, cache["A"])
	assert.Equal(t, []string{"u1"}, cache["B"])
}

func TestResolveFallsBackToPDFPerCode(t *testing.T) {
	ls, srv := newLookupServer(t)
	ls.bodies["HTML"] = links([]string{"h1"}, []string{"p1"})
	ls.bodies["PDF"] = links(nil, []string{"p2", "p3"})
	ls.bodies["NONE"] = links(nil, nil)

	r := New(Config{BaseURL: srv.URL})
	cache := r.Resolve(context.Background(), []string{"HTML", "PDF", "NONE"})

	assert.Equal(t, []string{"h1"}, cache["HTML"])
	assert.Equal(t, []string{"p2", "p3"}, cache["PDF"])
	assert.Empty(t, cache["NONE"])
}

func TestResolveIsolatesFailures(t *testing.T) {
	ls, srv := newLookupServer(t)
	ls.bodies["OK"] = links([]string{"good"}, nil)
	ls.status["ERR"] = http.StatusInternalServerError
	ls.bodies["BAD"] = `{"document_links": [`
	ls.delay["SLOW"] = 2 * time.Second

	r := New(Config{BaseURL: srv.URL, Timeout: 100 * time.Millisecond})
	cache := r.Resolve(context.Background(), []string{"ERR", "OK", "BAD", "SLOW"})

	assert.Equal(t, []string{"good"}, cache["OK"])
	for _, code := range []string{"ERR", "BAD", "SLOW"} {
		urls, present := cache[code]
		assert.True(t, present, code)
		assert.Empty(t, urls, code)
	}
}

func TestResolveUnreachableService(t *testing.T) {
	r := New(Config{BaseURL: "http://127.0.0.1:1", Timeout: time.Second})

	cache := r.Resolve(context.Background(), []string{"A"})

	require.Contains(t, cache, "A")
	assert.Empty(t, cache["A"])
}

func TestResolveEscapesCode(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		_, _ = w.Write([]byte(links([]string{"u"}, nil)))
	}))
	defer srv.Close()

	cache := New(Config{BaseURL: srv.URL}).Resolve(context.Background(), []string{"A B/C"})

	assert.Equal(t, lookupPath+"A%20B%2FC", gotPath)
	assert.Equal(t, []string{"u"}, cache["A B/C"])
}

func TestResolveShiftJISBody(t *testing.T) {
	body, err := japanese.ShiftJIS.NewEncoder().String(`{"document_links":{"html":[{"url":"https://example.com/添付文書"}]}}`)
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	cache := New(Config{BaseURL: srv.URL}).Resolve(context.Background(), []string{"A"})

	assert.Equal(t, []string{"https://example.com/添付文書"}, cache["A"])
}

func TestResolveCancelledContext(t *testing.T) {
	ls, srv := newLookupServer(t)
	ls.bodies["A"] = links([]string{"u"}, nil)
	ls.delay["A"] = time.Second

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	cache := New(Config{BaseURL: srv.URL}).Resolve(ctx, []string{"A"})

	assert.Empty(t, cache)
	assert.Less(t, time.Since(start), 900*time.Millisecond)
}

func TestResolveNoCodes(t *testing.T) {
	cache := New(Config{BaseURL: "http://unused"}).Resolve(context.Background(), []string{"", " "})
	assert.Empty(t, cache)
	assert.NotNil(t, cache)
}
