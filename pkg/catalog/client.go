package catalog

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/glorpus-work/digipathos/pkg/errors"
	"github.com/glorpus-work/digipathos/pkg/http"
)

// Defaults for the public Digipathos repository.
const (
	DefaultBaseURL  = "https://www.digipathos-rep.cnptia.embrapa.br"
	DefaultListPath = "/jspui/zipsincollection/123456789/3"

	// listLimit is large enough to return the whole collection in one page.
	listLimit = 100000
)

// Client fetches the archive listing from the repository.
type Client struct {
	http     *http.HTTPClient
	baseURL  string
	listPath string
}

// NewClient creates a catalog client. A zero timeout leaves requests unbounded.
func NewClient(baseURL, listPath string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if listPath == "" {
		listPath = DefaultListPath
	}
	return &Client{
		http:     http.NewHTTPClient(timeout, ""),
		baseURL:  strings.TrimRight(baseURL, "/"),
		listPath: listPath,
	}
}

// ListURL returns the fully-qualified listing URL including the paging query.
func (c *Client) ListURL() (string, error) {
	u, err := url.Parse(c.baseURL + c.listPath)
	if err != nil {
		return "", errors.Wrapf(errors.ErrInvalidPath, "invalid listing URL %s", c.baseURL+c.listPath)
	}
	q := u.Query()
	q.Set("offset", "0")
	q.Set("limit", strconv.Itoa(listLimit))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Fetch downloads the listing and returns the entries selected by nameFilter.
// Every failure wraps ErrCatalogFetch; there is no retry at this layer.
func (c *Client) Fetch(ctx context.Context, nameFilter string) (Catalog, error) {
	listURL, err := c.ListURL()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrCatalogFetch, err)
	}

	data, err := c.http.Get(ctx, listURL, "application/json")
	if err != nil {
		return nil, fmt.Errorf("%w from %s: %w", errors.ErrCatalogFetch, listURL, err)
	}

	all, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w from %s: %w", errors.ErrCatalogFetch, listURL, err)
	}
	return all.Filter(nameFilter), nil
}
