package overlay

import (
	"log"
	"strings"
	"sync"
)

// Request is a visibility request from outside the UI thread.
type Request int

const (
	RequestToggle Request = iota
	RequestShow           // toggle only if Closed
	RequestHide           // toggle only if Open
)

func (r Request) String() string {
	switch r {
	case RequestShow:
		return "show"
	case RequestHide:
		return "hide"
	}
	return "toggle"
}

// ParseRequest maps an IPC command onto a Request.
func ParseRequest(s string) (Request, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "toggle":
		return RequestToggle, true
	case "show", "launcher":
		return RequestShow, true
	case "hide":
		return RequestHide, true
	}
	return RequestToggle, false
}

// ToggleQueue carries requests from listener goroutines to the UI thread. Producers
// call Submit from any goroutine; the UI thread calls Drain. Requests submitted before
// Bind are held and replayed once a wake function is bound.
type ToggleQueue struct {
	ch   chan Request
	mu   sync.Mutex
	wake func()
}

func NewToggleQueue(capacity int) *ToggleQueue {
	if capacity <= 0 {
		capacity = 16
	}
	return &ToggleQueue{ch: make(chan Request, capacity)}
}

// Submit enqueues req without blocking. It returns false when the queue is full.
func (q *ToggleQueue) Submit(req Request) bool {
	select {
	case q.ch <- req:
	default:
		log.Printf("[OVERLAY] Toggle queue full, dropping %s request", req)
		return false
	}

	q.mu.Lock()
	wake := q.wake
	q.mu.Unlock()

	if wake != nil {
		wake()
	}
	return true
}

// RequestToggle is the thread-safe toggle entry point.
func (q *ToggleQueue) RequestToggle() {
	q.Submit(RequestToggle)
}

// Bind installs the function that schedules a Drain on the UI thread, and fires it at
// once if requests arrived before the overlay existed.
func (q *ToggleQueue) Bind(wake func()) {
	q.mu.Lock()
	q.wake = wake
	q.mu.Unlock()

	if wake != nil && len(q.ch) > 0 {
		log.Printf("[OVERLAY] Replaying %d request(s) queued before init", len(q.ch))
		wake()
	}
}

// Drain applies every pending request in arrival order and returns how many it applied.
// It must only be called on the UI thread.
func (q *ToggleQueue) Drain(apply func(Request)) int {
	n := 0
	for {
		select {
		case req := <-q.ch:
			apply(req)
			n++
		default:
			return n
		}
	}
}

func (q *ToggleQueue) Pending() int {
	return len(q.ch)
}
