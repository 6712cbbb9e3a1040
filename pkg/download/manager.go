package download

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/glorpus-work/digipathos/internal/logger"
	pkgerrors "github.com/glorpus-work/digipathos/pkg/errors"
	"github.com/glorpus-work/digipathos/pkg/fsutil"
	"github.com/glorpus-work/digipathos/pkg/http"
)

// DefaultMaxAttempts is the number of requests made per archive before giving up.
const DefaultMaxAttempts = 3

// Error describes an archive that could not be downloaded or saved.
type Error struct {
	Name     string
	URL      string // fully-qualified source URL
	Attempts int
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("download %s from %s failed after %d attempt(s): %v", e.Name, e.URL, e.Attempts, e.Err)
}

// Unwrap exposes both ErrDownloadFailed and the underlying cause.
func (e *Error) Unwrap() []error {
	return []error{pkgerrors.ErrDownloadFailed, e.Err}
}

// ManagerImpl is a sequential HTTP download manager with a bounded retry loop.
type ManagerImpl struct {
	http    *http.HTTPClient
	baseURL string
}

// NewManager creates a new download manager for archives published below baseURL.
// A zero timeout leaves requests unbounded.
func NewManager(baseURL string, timeout time.Duration, userAgent string) *ManagerImpl {
	return &ManagerImpl{
		http:    http.NewHTTPClient(timeout, userAgent),
		baseURL: baseURL,
	}
}

// ResolveURL joins a repository base URL and a relative link with exactly one slash.
// Links that already carry a scheme are returned unchanged.
func ResolveURL(baseURL, link string) string {
	if strings.HasPrefix(link, "http://") || strings.HasPrefix(link, "https://") {
		return link
	}
	base := strings.TrimRight(baseURL, "/")
	if strings.HasPrefix(link, "/") {
		return base + link
	}
	return base + "/" + link
}

// FetchAll downloads items and returns the URLs that failed, in item order.
func (m *ManagerImpl) FetchAll(ctx context.Context, items []Item, opts Options) []string {
	results := make([]error, len(items))
	if opts.Concurrency <= 1 {
		for i, it := range items {
			results[i] = m.Fetch(ctx, it, opts)
			report(opts, i, it, results[i])
		}
	} else {
		m.runDownloadWorkers(ctx, items, opts, results)
	}

	var failed []string
	for i, err := range results {
		if err == nil {
			continue
		}
		failed = append(failed, failedURL(m.baseURL, items[i], err))
	}
	return failed
}

func failedURL(baseURL string, item Item, err error) string {
	if dlErr, ok := err.(*Error); ok {
		return dlErr.URL
	}
	return ResolveURL(baseURL, item.Link)
}

func report(opts Options, i int, item Item, err error) {
	if opts.Progress != nil {
		opts.Progress(i, item, err)
	}
}

func (m *ManagerImpl) runDownloadWorkers(ctx context.Context, items []Item, opts Options, results []error) {
	var mu sync.Mutex
	tasks := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < opts.Concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range tasks {
				err := m.Fetch(ctx, items[idx], opts)
				mu.Lock()
				results[idx] = err
				report(opts, idx, items[idx], err)
				mu.Unlock()
			}
		}()
	}

	for i := range items {
		tasks <- i
	}
	close(tasks)
	wg.Wait()
}

// Fetch downloads one archive with up to opts.MaxAttempts requests and writes it to opts.Dir.
// Transport errors, non-2xx responses and truncated bodies all count as failed attempts;
// retries happen immediately. A failure to write the file is not retried.
func (m *ManagerImpl) Fetch(ctx context.Context, item Item, opts Options) error {
	fullURL := ResolveURL(m.baseURL, item.Link)
	if !isPlainFileName(item.Name) {
		return &Error{
			Name: item.Name,
			URL:  fullURL,
			Err:  fmt.Errorf("archive name %q is not a plain file name: %w", item.Name, pkgerrors.ErrInvalidPath),
		}
	}

	maxAttempts := opts.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	var (
		body     []byte
		lastErr  error
		attempts int
	)
	for attempts < maxAttempts {
		attempts++
		body, lastErr = m.http.Get(ctx, fullURL, "")
		if lastErr == nil || ctx.Err() != nil {
			break
		}
		if attempts < maxAttempts {
			logger.Warn("Error while downloading archive, retrying", logger.Fields{
				"name":    item.Name,
				"attempt": attempts,
				"error":   lastErr.Error(),
			})
		}
	}
	if lastErr != nil {
		logger.Error("Failed to download archive, please try to download it manually", logger.Fields{
			"name": item.Name,
			"url":  fullURL,
		})
		return &Error{Name: item.Name, URL: fullURL, Attempts: attempts, Err: lastErr}
	}

	dest := filepath.Join(opts.Dir, item.Name)
	if err := fsutil.WriteFileAtomic(dest, body, fsutil.FileModeDefault); err != nil {
		logger.Error("Failed to write archive, please try to download it manually", logger.Fields{
			"name": item.Name,
			"dir":  opts.Dir,
			"url":  fullURL,
		})
		return &Error{Name: item.Name, URL: fullURL, Attempts: attempts, Err: err}
	}

	logger.Debug("Downloaded archive", logger.Fields{"name": item.Name, "bytes": len(body)})
	return nil
}

func isPlainFileName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`)
}
