package overlay

import (
	"log"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// VisibleSet holds catalog indices of the entries matching the query, in catalog order.
// Treat it as read-only: memoized sets are shared.
type VisibleSet []int

// Matches reports whether entry is shown for an already-lowered query.
func Matches(entry *AppEntry, lowerQuery string) bool {
	if lowerQuery == "" {
		return true
	}
	return strings.Contains(entry.lowerName, lowerQuery) || strings.Contains(entry.lowerID, lowerQuery)
}

// Filter derives the visible subset of catalog for query. Matching is a
// case-insensitive (ASCII) substring test against the display name and the ID.
func Filter(catalog Catalog, query string) VisibleSet {
	q := asciiLower(query)
	visible := make(VisibleSet, 0, len(catalog))
	for i := range catalog {
		if Matches(&catalog[i], q) {
			visible = append(visible, i)
		}
	}
	return visible
}

// asciiLower lowers A-Z only, leaving every other byte alone.
func asciiLower(s string) string {
	for i := 0; i < len(s); i++ {
		if c := s[i]; 'A' <= c && c <= 'Z' {
			b := []byte(s)
			for j := i; j < len(b); j++ {
				if 'A' <= b[j] && b[j] <= 'Z' {
					b[j] += 'a' - 'A'
				}
			}
			return string(b)
		}
	}
	return s
}

// filterMemo remembers query results for the current catalog only; it is purged on
// every Open so nothing survives across sessions.
type filterMemo struct {
	cache *lru.Cache[string, VisibleSet]
}

func newFilterMemo(size int) *filterMemo {
	if size <= 0 {
		return &filterMemo{}
	}
	cache, err := lru.New[string, VisibleSet](size)
	if err != nil {
		log.Printf("[OVERLAY] Failed to create filter memo: %v", err)
		return &filterMemo{}
	}
	return &filterMemo{cache: cache}
}

func (m *filterMemo) filter(catalog Catalog, query string) VisibleSet {
	if m.cache == nil {
		return Filter(catalog, query)
	}
	if visible, ok := m.cache.Get(query); ok {
		return visible
	}
	visible := Filter(catalog, query)
	m.cache.Add(query, visible)
	return visible
}

func (m *filterMemo) reset() {
	if m.cache != nil {
		m.cache.Purge()
	}
}
