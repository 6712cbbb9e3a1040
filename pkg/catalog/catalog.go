// Package catalog fetches and filters the remote listing of dataset archives.
package catalog

import (
	"encoding/json"
	"strings"

	"github.com/glorpus-work/digipathos/pkg/errors"
)

// Name filters understood by Catalog.Filter. Any other value selects every entry.
const (
	FilterCropped  = "cropped"
	FilterOriginal = "original"
	FilterAll      = "all"
)

// croppedMarker is the name fragment that identifies cropped-image archives.
const croppedMarker = "cropped"

// Entry describes one downloadable archive.
type Entry struct {
	Name   string `json:"name"`
	Size   string `json:"size"`   // human readable label as published, e.g. "20.45 MB"
	Link   string `json:"bsLink"` // path relative to the repository base URL
	Format string `json:"format"`
}

// IsCropped reports whether the entry holds cropped images.
func (e Entry) IsCropped() bool {
	return strings.Contains(strings.ToLower(e.Name), croppedMarker)
}

// Catalog is the ordered list of archives for one run.
type Catalog []Entry

// Filter returns the entries selected by nameFilter, preserving order.
// "cropped" keeps cropped archives, "original" keeps the rest and any other value
// returns the catalog unchanged. The filter itself is case-insensitive.
func (c Catalog) Filter(nameFilter string) Catalog {
	switch strings.ToLower(nameFilter) {
	case FilterCropped:
		return c.where(func(e Entry) bool { return e.IsCropped() })
	case FilterOriginal:
		return c.where(func(e Entry) bool { return !e.IsCropped() })
	default:
		return c
	}
}

func (c Catalog) where(keep func(Entry) bool) Catalog {
	out := make(Catalog, 0, len(c))
	for _, e := range c {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}

// Names returns the archive names in catalog order.
func (c Catalog) Names() []string {
	names := make([]string, len(c))
	for i, e := range c {
		names[i] = e.Name
	}
	return names
}

// listing mirrors the JSON document served by the listing endpoint.
type listing struct {
	Bitstreams *[]Entry `json:"bitstreams"`
}

// Parse decodes a listing document and returns every entry it contains.
func Parse(data []byte) (Catalog, error) {
	var doc listing
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCatalogMalformed, err.Error())
	}
	if doc.Bitstreams == nil {
		return nil, errors.Wrap(errors.ErrCatalogMalformed, "listing has no bitstreams field")
	}
	return Catalog(*doc.Bitstreams), nil
}
