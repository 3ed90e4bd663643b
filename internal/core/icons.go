package core

import (
	"fmt"
	"log"
	"path/filepath"
	"sync"

	"github.com/chess10kp/locus-overlay/internal/config"
	"github.com/gotk3/gotk3/gdk"
	"github.com/gotk3/gotk3/gtk"
	lru "github.com/hashicorp/golang-lru/v2"
)

// IconCache shares pixbufs between cells of one open, e.g. every entry using the
// fallback icon. Reset empties it when the overlay opens again.
type IconCache struct {
	cache     *lru.Cache[string, *gdk.Pixbuf]
	theme     *gtk.IconTheme
	mu        sync.Mutex
	fallback  string
	cacheHits int64
	cacheMiss int64
}

func NewIconCache(cfg *config.Config) (*IconCache, error) {
	cache, err := lru.New[string, *gdk.Pixbuf](cfg.Launcher.Icons.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create icon cache: %w", err)
	}

	iconTheme, err := gtk.IconThemeGetDefault()
	if err != nil {
		return nil, fmt.Errorf("failed to get default icon theme: %w", err)
	}

	fallback := cfg.Launcher.Icons.FallbackIcon
	if fallback == "" {
		fallback = "application-x-executable"
	}

	return &IconCache{
		cache:    cache,
		theme:    iconTheme,
		fallback: fallback,
	}, nil
}

// GetIcon returns name at size pixels. name is a theme icon name or an absolute
// path; anything that fails to load falls back to the configured fallback icon.
func (ic *IconCache) GetIcon(name string, size int) (*gdk.Pixbuf, error) {
	if name == "" {
		name = ic.fallback
	}

	key := fmt.Sprintf("%s@%d", name, size)

	ic.mu.Lock()
	defer ic.mu.Unlock()

	if pixbuf, ok := ic.cache.Get(key); ok && pixbuf != nil {
		ic.cacheHits++
		return pixbuf, nil
	}
	ic.cacheMiss++

	pixbuf, err := ic.load(name, size)
	if err != nil && name != ic.fallback {
		debugLogger.Printf("ICON: failed to load %q (%v), using %q", name, err, ic.fallback)
		pixbuf, err = ic.load(ic.fallback, size)
	}
	if err != nil {
		return nil, err
	}

	ic.cache.Add(key, pixbuf)
	return pixbuf, nil
}

func (ic *IconCache) load(name string, size int) (*gdk.Pixbuf, error) {
	if filepath.IsAbs(name) {
		return gdk.PixbufNewFromFileAtScale(name, size, size, true)
	}

	if !ic.theme.HasIcon(name) {
		return nil, fmt.Errorf("icon %q not found in theme", name)
	}

	pixbuf, err := ic.theme.LoadIcon(name, size, gtk.ICON_LOOKUP_FORCE_SIZE)
	if err != nil {
		return nil, err
	}
	if pixbuf == nil {
		return nil, fmt.Errorf("icon %q loaded empty", name)
	}
	return pixbuf, nil
}

func (ic *IconCache) Reset() {
	ic.mu.Lock()
	defer ic.mu.Unlock()

	ic.cache.Purge()
	ic.cacheHits = 0
	ic.cacheMiss = 0
}

func (ic *IconCache) LogStats() {
	ic.mu.Lock()
	defer ic.mu.Unlock()

	total := ic.cacheHits + ic.cacheMiss
	if total == 0 {
		return
	}
	log.Printf("[OVERLAY] Icon cache: %d hits, %d misses (%.0f%%), %d stored",
		ic.cacheHits, ic.cacheMiss, float64(ic.cacheHits)/float64(total)*100, ic.cache.Len())
}
