// Package catalog holds the per-locale rarity baselines used for luck
// scoring. The catalog is fixed data injected at startup: single-writer
// at construction, many readers for the life of the process.
package catalog

import (
	"fmt"
	"sort"
)

// Catalog maps a locale identifier to the baseline probability that a
// random encounter qualifies as perfect under that locale's filter.
// Immutable after New.
type Catalog struct {
	baselines map[string]float64
}

// New builds a catalog from the supplied baselines. Every probability
// must lie strictly inside (0,1): a zero or one baseline would make
// every luck score degenerate, so construction fails instead of
// defaulting.
func New(baselines map[string]float64) (*Catalog, error) {
	if len(baselines) == 0 {
		return nil, ErrEmptyCatalog
	}
	copied := make(map[string]float64, len(baselines))
	for locale, p := range baselines {
		if p <= 0 || p >= 1 {
			return nil, fmt.Errorf("%w: locale %q has baseline %v", ErrInvalidBaseline, locale, p)
		}
		copied[locale] = p
	}
	return &Catalog{baselines: copied}, nil
}

// BaselineFor returns the expected perfect probability for locale.
func (c *Catalog) BaselineFor(locale string) (float64, error) {
	p, ok := c.baselines[locale]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownLocale, locale)
	}
	return p, nil
}

// Locales returns the sorted set of known locale identifiers.
func (c *Catalog) Locales() []string {
	out := make([]string, 0, len(c.baselines))
	for locale := range c.baselines {
		out = append(out, locale)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of locales in the catalog.
func (c *Catalog) Len() int {
	return len(c.baselines)
}
