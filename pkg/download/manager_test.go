package download

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/glorpus-work/digipathos/pkg/catalog"
	pkgerrors "github.com/glorpus-work/digipathos/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// archiveServer serves the given path→content map and counts requests per path.
type archiveServer struct {
	*httptest.Server
	mu    sync.Mutex
	hits  map[string]int
	files map[string]string
}

func newArchiveServer(t *testing.T, files map[string]string) *archiveServer {
	t.Helper()
	s := &archiveServer{hits: make(map[string]int), files: files}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.hits[r.URL.Path]++
		s.mu.Unlock()
		content, ok := s.files[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(content))
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *archiveServer) hitsFor(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

func TestNewManager(t *testing.T) {
	tests := []struct {
		name       string
		timeout    time.Duration
		userAgent  string
		expectedUA string
	}{
		{name: "default user agent", expectedUA: "digipathos/1.0"},
		{name: "custom user agent", timeout: 2 * time.Second, userAgent: "test-agent/1.0", expectedUA: "test-agent/1.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager("https://example.com", tt.timeout, tt.userAgent)
			require.NotNil(t, m)
			assert.Equal(t, tt.timeout, m.http.Timeout())
			assert.Equal(t, tt.expectedUA, m.http.UserAgent())
		})
	}
}

func TestResolveURL(t *testing.T) {
	tests := []struct {
		base, link, expect string
	}{
		{"https://repo.example", "/jspui/bitstream/1/a.zip", "https://repo.example/jspui/bitstream/1/a.zip"},
		{"https://repo.example", "jurubeba", "https://repo.example/jurubeba"},
		{"https://repo.example/", "/a.zip", "https://repo.example/a.zip"},
		{"https://repo.example", "https://mirror.example/a.zip", "https://mirror.example/a.zip"},
	}
	for _, tt := range tests {
		t.Run(tt.link, func(t *testing.T) {
			assert.Equal(t, tt.expect, ResolveURL(tt.base, tt.link))
		})
	}
}

func TestFetch_Success(t *testing.T) {
	srv := newArchiveServer(t, map[string]string{"/bitstream/1/a.zip": "zip content"})
	dir := t.TempDir()
	m := NewManager(srv.URL, time.Second, "test")

	item := Item{Name: "Abacaxi (Pineapple) - Broca - 1.zip", Link: "/bitstream/1/a.zip"}
	err := m.Fetch(context.Background(), item, Options{Dir: dir})
	require.NoError(t, err)

	content, err := os.ReadFile(filepath.Join(dir, item.Name))
	require.NoError(t, err)
	assert.Equal(t, "zip content", string(content))
	assert.Equal(t, 1, srv.hitsFor("/bitstream/1/a.zip"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFetch_FailsAfterMaxAttempts(t *testing.T) {
	tests := []struct {
		name        string
		maxAttempts int
		expectHits  int
	}{
		{name: "default budget", maxAttempts: 0, expectHits: DefaultMaxAttempts},
		{name: "custom budget", maxAttempts: 5, expectHits: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newArchiveServer(t, nil)
			dir := t.TempDir()
			m := NewManager(srv.URL, time.Second, "test")

			err := m.Fetch(context.Background(), Item{Name: "a.zip", Link: "jurubeba"}, Options{Dir: dir, MaxAttempts: tt.maxAttempts})
			require.Error(t, err)

			var dlErr *Error
			require.ErrorAs(t, err, &dlErr)
			assert.Equal(t, srv.URL+"/jurubeba", dlErr.URL)
			assert.Equal(t, tt.expectHits, dlErr.Attempts)
			assert.Equal(t, tt.expectHits, srv.hitsFor("/jurubeba"))
			assert.ErrorIs(t, err, pkgerrors.ErrDownloadFailed)
			assert.Contains(t, err.Error(), "unexpected status code: 404")

			assert.NoFileExists(t, filepath.Join(dir, "a.zip"))
		})
	}
}

func TestFetch_RetriesUntilSuccess(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("third time lucky"))
	}))
	defer server.Close()

	dir := t.TempDir()
	m := NewManager(server.URL, time.Second, "test")
	require.NoError(t, m.Fetch(context.Background(), Item{Name: "a.zip", Link: "/a.zip"}, Options{Dir: dir}))
	assert.Equal(t, int32(3), calls.Load())

	content, err := os.ReadFile(filepath.Join(dir, "a.zip"))
	require.NoError(t, err)
	assert.Equal(t, "third time lucky", string(content))
}

func TestFetch_NetworkErrorCountsAsAttempt(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	base := server.URL
	server.Close()

	m := NewManager(base, time.Second, "test")
	err := m.Fetch(context.Background(), Item{Name: "a.zip", Link: "/a.zip"}, Options{Dir: t.TempDir()})

	var dlErr *Error
	require.ErrorAs(t, err, &dlErr)
	assert.Equal(t, DefaultMaxAttempts, dlErr.Attempts)
	assert.Equal(t, base+"/a.zip", dlErr.URL)
}

func TestFetch_WriteFailure(t *testing.T) {
	srv := newArchiveServer(t, map[string]string{"/a.zip": "content"})
	missingDir := filepath.Join(t.TempDir(), "not-created")
	m := NewManager(srv.URL, time.Second, "test")

	err := m.Fetch(context.Background(), Item{Name: "a.zip", Link: "/a.zip"}, Options{Dir: missingDir})

	var dlErr *Error
	require.ErrorAs(t, err, &dlErr)
	assert.Equal(t, srv.URL+"/a.zip", dlErr.URL)
	assert.Equal(t, 1, dlErr.Attempts, "write failures are not retried")
	assert.Equal(t, 1, srv.hitsFor("/a.zip"))
}

func TestFetch_RejectsUnsafeNames(t *testing.T) {
	srv := newArchiveServer(t, map[string]string{"/a.zip": "content"})
	m := NewManager(srv.URL, time.Second, "test")

	for _, name := range []string{"", ".", "..", "../escape.zip", "nested/a.zip"} {
		t.Run(name, func(t *testing.T) {
			err := m.Fetch(context.Background(), Item{Name: name, Link: "/a.zip"}, Options{Dir: t.TempDir()})
			require.Error(t, err)
			assert.ErrorIs(t, err, pkgerrors.ErrInvalidPath)
		})
	}
	assert.Zero(t, srv.hitsFor("/a.zip"))
}

func TestFetch_CanceledContextStopsRetrying(t *testing.T) {
	srv := newArchiveServer(t, nil)
	m := NewManager(srv.URL, time.Second, "test")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := m.Fetch(ctx, Item{Name: "a.zip", Link: "/a.zip"}, Options{Dir: t.TempDir()})
	var dlErr *Error
	require.ErrorAs(t, err, &dlErr)
	assert.Equal(t, 1, dlErr.Attempts)
}

func TestFetchAll(t *testing.T) {
	files := map[string]string{
		"/bitstream/1/a.zip": "content a",
		"/bitstream/2/b.zip": "content b",
		"/bitstream/3/c.zip": "content c",
	}
	srv := newArchiveServer(t, files)

	entries := catalog.Catalog{
		{Name: "Abacaxi - 1.zip", Link: "/bitstream/1/a.zip"},
		{Name: "Abacaxi - 2.zip", Link: "/bitstream/2/b.zip"},
		{Name: "Abacaxi - 3.zip", Link: "/bitstream/3/c.zip"},
	}

	tests := []struct {
		name        string
		concurrency int
	}{
		{name: "sequential", concurrency: 0},
		{name: "concurrent", concurrency: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			m := NewManager(srv.URL, 5*time.Second, "test")

			var progressed []string
			failed := m.FetchAll(context.Background(), ItemsFromCatalog(entries), Options{
				Dir:         dir,
				Concurrency: tt.concurrency,
				Progress: func(_ int, item Item, err error) {
					assert.NoError(t, err)
					progressed = append(progressed, item.Name)
				},
			})
			assert.Empty(t, failed)
			assert.ElementsMatch(t, entries.Names(), progressed)

			names, err := os.ReadDir(dir)
			require.NoError(t, err)
			assert.Len(t, names, len(entries))
			for _, e := range entries {
				content, err := os.ReadFile(filepath.Join(dir, e.Name))
				require.NoError(t, err)
				assert.Equal(t, files[e.Link], string(content))
			}
		})
	}
}

func TestFetchAll_AllUnreachable(t *testing.T) {
	srv := newArchiveServer(t, nil)
	dir := t.TempDir()
	m := NewManager(srv.URL, time.Second, "test")

	items := []Item{
		{Name: "a.zip", Link: "/this_is_not_a_link"},
		{Name: "b.zip", Link: "/no_link_here"},
		{Name: "c.zip", Link: "empty_empty"},
	}
	failed := m.FetchAll(context.Background(), items, Options{Dir: dir})

	assert.Equal(t, []string{
		srv.URL + "/this_is_not_a_link",
		srv.URL + "/no_link_here",
		srv.URL + "/empty_empty",
	}, failed)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFetchAll_PartialFailureKeepsOrder(t *testing.T) {
	srv := newArchiveServer(t, map[string]string{"/b.zip": "b"})
	m := NewManager(srv.URL, time.Second, "test")

	items := []Item{{Name: "a.zip", Link: "/a.zip"}, {Name: "b.zip", Link: "/b.zip"}, {Name: "c.zip", Link: "/c.zip"}}
	for _, concurrency := range []int{1, 2} {
		failed := m.FetchAll(context.Background(), items, Options{Dir: t.TempDir(), Concurrency: concurrency})
		require.Len(t, failed, 2)
		assert.True(t, strings.HasSuffix(failed[0], "/a.zip"))
		assert.True(t, strings.HasSuffix(failed[1], "/c.zip"))
	}
}
