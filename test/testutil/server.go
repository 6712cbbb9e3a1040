// Package testutil provides a fake dataset repository for tests.
package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/glorpus-work/digipathos/pkg/archive"
	"github.com/glorpus-work/digipathos/pkg/catalog"
)

// ListPath is the listing endpoint served by RepoServer.
const ListPath = "/jspui/zipsincollection/123456789/3"

// Fixture describes one archive published by RepoServer.
type Fixture struct {
	Name    string            // archive file name, e.g. "Soja - Ferrugem - cropped.zip"
	Files   map[string]string // archive contents; ignored when Missing or Corrupt is set
	Missing bool              // listed but answers 404
	Corrupt bool              // served as bytes that are not a ZIP
}

// RepoServer serves a listing and the archives it references.
type RepoServer struct {
	*httptest.Server
	Fixtures []Fixture

	mu       sync.Mutex
	entries  []catalog.Entry
	archives map[string][]byte
	requests map[string]int
}

// SampleFixtures returns three known-good archives, two of them cropped.
func SampleFixtures() []Fixture {
	return []Fixture{
		{Name: "Abacaxi (Pineapple) - Broca - cropped.zip", Files: map[string]string{"img_01.jpg": "a1", "img_02.jpg": "a2"}},
		{Name: "Soja (Soybean) - Ferrugem - cropped.zip", Files: map[string]string{"img_01.jpg": "s1", "leaf/img_02.jpg": "s2"}},
		{Name: "Milho (Corn) - Mancha.zip", Files: map[string]string{"img_01.jpg": "m1"}},
	}
}

// NewRepoServer builds the fixture archives and starts a server that is closed with the test.
func NewRepoServer(t *testing.T, fixtures []Fixture) *RepoServer {
	t.Helper()

	rs := &RepoServer{
		Fixtures: fixtures,
		archives: make(map[string][]byte),
		requests: make(map[string]int),
	}

	for i, f := range fixtures {
		dir := fmt.Sprintf("/jspui/bitstream/123456789/%d/", i+1)
		path := dir + f.Name
		rs.entries = append(rs.entries, catalog.Entry{
			Name:   f.Name,
			Size:   "1 KB",
			Link:   dir + url.PathEscape(f.Name),
			Format: "ZIP",
		})
		switch {
		case f.Missing:
		case f.Corrupt:
			rs.archives[path] = []byte("<html>temporarily unavailable</html>")
		default:
			rs.archives[path] = buildArchive(t, f.Files)
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc(ListPath, rs.serveListing)
	mux.HandleFunc("/", rs.serveArchive)
	rs.Server = httptest.NewServer(mux)
	t.Cleanup(rs.Close)
	return rs
}

// Entries returns the listing as served.
func (rs *RepoServer) Entries() catalog.Catalog {
	return append(catalog.Catalog(nil), rs.entries...)
}

// Requests returns how often path was requested. The listing counts under ListPath.
func (rs *RepoServer) Requests(path string) int {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return rs.requests[path]
}

func (rs *RepoServer) serveListing(w http.ResponseWriter, r *http.Request) {
	rs.mu.Lock()
	rs.requests[r.URL.Path]++
	rs.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"bitstreams": rs.entries})
}

func (rs *RepoServer) serveArchive(w http.ResponseWriter, r *http.Request) {
	rs.mu.Lock()
	rs.requests[r.URL.Path]++
	rs.mu.Unlock()

	data, ok := rs.archives[r.URL.Path]
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/zip")
	_, _ = w.Write(data)
}

func buildArchive(t *testing.T, files map[string]string) []byte {
	t.Helper()

	src := t.TempDir()
	for name, content := range files {
		path := filepath.Join(src, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("Failed to create fixture directory: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("Failed to write fixture file: %v", err)
		}
	}

	out := filepath.Join(t.TempDir(), "fixture.zip")
	if err := archive.NewManager().Create(context.Background(), src, out); err != nil {
		t.Fatalf("Failed to build fixture archive: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("Failed to read fixture archive: %v", err)
	}
	return data
}

// SetupTestConfig writes a config file pointing at baseURL into a temporary directory.
func SetupTestConfig(t *testing.T, baseURL, workDir string) string {
	t.Helper()

	config := fmt.Sprintf(`settings:
  dataset_dir: %s
  scratch_dir: %s
  name_filter: all
  base_url: %s
  list_path: %s
  http_timeout: 5s
  max_attempts: 3
  concurrency: 1
  log_level: info
  output_format: text
`, filepath.Join(workDir, "plant-disease-db"), filepath.Join(workDir, "tmp"), baseURL, ListPath)

	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte(config), 0o600); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
	return configPath
}
