package compositor

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"
)

var ErrNoHyprland = errors.New("HYPRLAND_INSTANCE_SIGNATURE not set")

// HyprlandSocketPath locates the event socket (socket2) of the running instance.
func HyprlandSocketPath() (string, error) {
	sig := os.Getenv("HYPRLAND_INSTANCE_SIGNATURE")
	if sig == "" {
		return "", ErrNoHyprland
	}

	var candidates []string
	if runtime := os.Getenv("XDG_RUNTIME_DIR"); runtime != "" {
		candidates = append(candidates, filepath.Join(runtime, "hypr", sig, ".socket2.sock"))
	}
	candidates = append(candidates, filepath.Join("/tmp/hypr", sig, ".socket2.sock"))

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("no hyprland event socket found in %v", candidates)
}

// HyprlandSource toggles on `custom>>EVENT` lines, as produced by
// `hyprctl dispatch event EVENT`.
type HyprlandSource struct {
	socketPath     string
	event          string
	reconnectDelay time.Duration
}

func NewHyprlandSource(socketPath, event string) *HyprlandSource {
	return &HyprlandSource{
		socketPath:     socketPath,
		event:          event,
		reconnectDelay: defaultReconnectDelay,
	}
}

func (h *HyprlandSource) Name() string { return "HYPRLAND" }

func (h *HyprlandSource) Run(ctx context.Context, onToggle func()) error {
	for {
		err := h.listen(ctx, onToggle)
		if ctx.Err() != nil {
			return nil
		}
		log.Printf("[HYPRLAND] %v, reconnecting in %v", err, h.reconnectDelay)
		if !sleepCtx(ctx, h.reconnectDelay) {
			return nil
		}
	}
}

func (h *HyprlandSource) listen(ctx context.Context, onToggle func()) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", h.socketPath)
	if err != nil {
		return fmt.Errorf("failed to connect to socket %s: %w", h.socketPath, err)
	}
	defer conn.Close()
	log.Printf("[HYPRLAND] Connected to %s", h.socketPath)

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		if h.matches(scanner.Text()) {
			log.Printf("[HYPRLAND] Toggle event received")
			onToggle()
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("socket read error: %w", err)
	}
	return errors.New("socket closed")
}

func (h *HyprlandSource) matches(line string) bool {
	name, data, ok := strings.Cut(line, ">>")
	if !ok || name != "custom" {
		return false
	}
	return strings.TrimSpace(data) == h.event
}
