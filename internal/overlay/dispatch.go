package overlay

import (
	"log"

	"github.com/chess10kp/locus-overlay/internal/apps"
)

// LaunchService is the OS process-launch service. Launch must not block on the child.
type LaunchService interface {
	Launch(app *apps.App) error
}

// Dispatcher hands selected entries to the launch service.
type Dispatcher struct {
	service LaunchService
	onError func(entry AppEntry, err error)
}

func NewDispatcher(service LaunchService) *Dispatcher {
	return &Dispatcher{service: service}
}

// OnError registers a callback for launches the service refused outright.
func (d *Dispatcher) OnError(fn func(entry AppEntry, err error)) {
	d.onError = fn
}

// Launch hands entry's descriptor to the launch service and reports whether a hand-off
// happened. A nil entry is a no-op. Failures are logged and reported, but still count
// as a hand-off: the core does not wait for the child.
func (d *Dispatcher) Launch(entry *AppEntry) bool {
	if entry == nil {
		debugLogger.Printf("LAUNCH: nothing to launch")
		return false
	}

	log.Printf("[OVERLAY] Launching %s (%s)", entry.Name, entry.ID)
	if err := d.service.Launch(entry.Descriptor); err != nil {
		log.Printf("[OVERLAY] Launch of %s failed: %v", entry.ID, err)
		if d.onError != nil {
			d.onError(*entry, err)
		}
	}
	return true
}
