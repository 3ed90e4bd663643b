package compositor

import (
	"context"
	"log"
	"time"

	"github.com/joshuarubin/go-sway"
)

// SwaySource toggles on tick events sent with `swaymsg -t send_tick PAYLOAD`.
type SwaySource struct {
	payload        string
	reconnectDelay time.Duration
}

func NewSwaySource(payload string) *SwaySource {
	return &SwaySource{
		payload:        payload,
		reconnectDelay: defaultReconnectDelay,
	}
}

func (s *SwaySource) Name() string { return "SWAY" }

func (s *SwaySource) Run(ctx context.Context, onToggle func()) error {
	handler := newTickHandler(s.payload, onToggle)
	for {
		err := sway.Subscribe(ctx, handler, sway.EventTypeTick)
		if ctx.Err() != nil {
			return nil
		}
		log.Printf("[SWAY] Subscription ended: %v, retrying in %v", err, s.reconnectDelay)
		if !sleepCtx(ctx, s.reconnectDelay) {
			return nil
		}
	}
}

type tickHandler struct {
	sway.EventHandler
	payload  string
	onToggle func()
}

func newTickHandler(payload string, onToggle func()) *tickHandler {
	return &tickHandler{
		EventHandler: sway.NoOpEventHandler(),
		payload:      payload,
		onToggle:     onToggle,
	}
}

// Tick ignores the tick sway sends on subscription.
func (h *tickHandler) Tick(ctx context.Context, e sway.TickEvent) {
	if e.First || e.Payload != h.payload {
		return
	}
	log.Printf("[SWAY] Toggle tick received")
	h.onToggle()
}
