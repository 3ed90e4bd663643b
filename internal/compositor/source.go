package compositor

import (
	"context"
	"log"
	"os"
	"sync"
	"time"

	"github.com/chess10kp/locus-overlay/internal/config"
)

const defaultReconnectDelay = 5 * time.Second

// Source delivers toggle events from a compositor. Run blocks until ctx is done and
// calls onToggle from its own goroutine.
type Source interface {
	Name() string
	Run(ctx context.Context, onToggle func()) error
}

// Detect returns the sources enabled in cfg whose compositor is running.
func Detect(cfg *config.Config) []Source {
	var sources []Source

	if cfg.Compositor.Hyprland.Enabled && os.Getenv("HYPRLAND_INSTANCE_SIGNATURE") != "" {
		if path, err := HyprlandSocketPath(); err == nil {
			sources = append(sources, NewHyprlandSource(path, cfg.Compositor.Hyprland.Event))
		} else {
			log.Printf("[HYPRLAND] %v", err)
		}
	}

	if cfg.Compositor.Sway.Enabled && os.Getenv("SWAYSOCK") != "" {
		sources = append(sources, NewSwaySource(cfg.Compositor.Sway.TickPayload))
	}

	return sources
}

// Start runs every source in the background. The returned wait function blocks until
// all of them have returned after ctx is cancelled.
func Start(ctx context.Context, sources []Source, onToggle func()) (wait func()) {
	var wg sync.WaitGroup
	for _, src := range sources {
		wg.Add(1)
		go func(src Source) {
			defer wg.Done()
			log.Printf("[%s] Toggle source started", src.Name())
			if err := src.Run(ctx, onToggle); err != nil && ctx.Err() == nil {
				log.Printf("[%s] Toggle source stopped: %v", src.Name(), err)
			}
		}(src)
	}
	return wg.Wait
}

// sleepCtx waits for d and reports false if ctx ended first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
