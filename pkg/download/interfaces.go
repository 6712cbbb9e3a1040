//go:generate mockgen -destination=mocks/download.go . Manager
package download

import (
	"context"

	"github.com/glorpus-work/digipathos/pkg/catalog"
)

// Manager downloads dataset archives into a scratch directory.
type Manager interface {
	// FetchAll downloads every item in order and returns the fully-qualified URLs
	// that could not be retrieved. An empty result means every item was saved.
	FetchAll(ctx context.Context, items []Item, opts Options) []string

	// Fetch downloads a single item to opts.Dir/item.Name. The returned error,
	// when non-nil, is an *Error carrying the URL that failed.
	Fetch(ctx context.Context, item Item, opts Options) error
}

// Item represents one remote archive.
type Item struct {
	Name string // file name inside the scratch directory
	Link string // path relative to the repository base URL
}

// ItemsFromCatalog converts catalog entries into download items, preserving order.
func ItemsFromCatalog(c catalog.Catalog) []Item {
	items := make([]Item, len(c))
	for i, e := range c {
		items[i] = Item{Name: e.Name, Link: e.Link}
	}
	return items
}

// Options control the behavior of the download manager.
type Options struct {
	Dir         string // scratch directory; must already exist
	MaxAttempts int    // attempts per item; if <=0, DefaultMaxAttempts is used
	Concurrency int    // parallel downloads; if <=1, items are fetched one after another

	// Progress, if set, is called once per item after it finished (err is nil on success).
	// Calls are serialized.
	Progress func(index int, item Item, err error)
}
