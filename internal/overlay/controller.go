package overlay

import (
	"log"
)

type State int

const (
	Closed State = iota
	Open
)

func (s State) String() string {
	if s == Open {
		return "Open"
	}
	return "Closed"
}

// Surface is the presentation layer. The controller calls it on the UI thread after
// its own state has changed; implementations must not call back into transitions.
type Surface interface {
	// Opened rebuilds the grid from catalog and shows the overlay.
	Opened(catalog Catalog)
	Closed()
	VisibleChanged(visible VisibleSet)
	FocusChanged(target FocusTarget)
}

type nopSurface struct{}

func (nopSurface) Opened(Catalog)            {}
func (nopSurface) Closed()                   {}
func (nopSurface) VisibleChanged(VisibleSet) {}
func (nopSurface) FocusChanged(FocusTarget)  {}

// Controller owns the overlay state: visibility, catalog snapshot, query, visible set
// and keyboard focus. All methods must be called from the UI thread; other goroutines
// go through a ToggleQueue.
type Controller struct {
	source     Enumerator
	dispatcher *Dispatcher
	surface    Surface
	memo       *filterMemo

	state   State
	catalog Catalog
	query   string
	visible VisibleSet
	focus   FocusTarget
	opens   int
}

type Option func(*Controller)

func WithSurface(s Surface) Option {
	return func(c *Controller) { c.AttachSurface(s) }
}

// WithFilterCacheSize sizes the per-open filter memo; 0 disables it.
func WithFilterCacheSize(n int) Option {
	return func(c *Controller) { c.memo = newFilterMemo(n) }
}

func WithLaunchErrorHandler(fn func(entry AppEntry, err error)) Option {
	return func(c *Controller) { c.dispatcher.OnError(fn) }
}

func NewController(source Enumerator, launcher LaunchService, opts ...Option) *Controller {
	c := &Controller{
		source:     source,
		dispatcher: NewDispatcher(launcher),
		surface:    nopSurface{},
		memo:       newFilterMemo(0),
		state:      Closed,
		focus:      SearchField(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) AttachSurface(s Surface) {
	if s == nil {
		s = nopSurface{}
	}
	c.surface = s
}

// Toggle opens a closed overlay and closes an open one.
func (c *Controller) Toggle() {
	if c.state == Open {
		c.close("toggle")
		return
	}
	c.open()
}

// Apply performs a queued request.
func (c *Controller) Apply(req Request) {
	switch req {
	case RequestShow:
		if c.state == Closed {
			c.Toggle()
		}
	case RequestHide:
		if c.state == Open {
			c.Toggle()
		}
	default:
		c.Toggle()
	}
}

func (c *Controller) open() {
	c.catalog = BuildCatalog(c.source)
	c.memo.reset()
	c.query = ""
	c.visible = c.memo.filter(c.catalog, "")
	c.focus = SearchField()
	c.state = Open
	c.opens++

	log.Printf("[OVERLAY] Open #%d with %d entries", c.opens, len(c.catalog))

	c.surface.Opened(c.catalog)
	c.surface.VisibleChanged(c.visible)
	c.surface.FocusChanged(c.focus)
}

func (c *Controller) close(reason string) {
	if c.state == Closed {
		return
	}
	c.state = Closed
	log.Printf("[OVERLAY] Closed (%s)", reason)
	c.surface.Closed()
}

// SetQuery replaces the query and re-runs the filter synchronously. Ignored while
// Closed. A focused entry keeps focus if it is still visible, otherwise focus returns
// to the search field.
func (c *Controller) SetQuery(query string) {
	if c.state != Open {
		debugLogger.Printf("QUERY: ignoring %q while closed", query)
		return
	}
	if query == c.query {
		return
	}

	focusedCatalogIndex := -1
	if c.focus.IsEntry() && c.focus.Index < len(c.visible) {
		focusedCatalogIndex = c.visible[c.focus.Index]
	}

	c.query = query
	c.visible = c.memo.filter(c.catalog, query)
	debugLogger.Printf("QUERY: %q -> %d visible", query, len(c.visible))
	c.surface.VisibleChanged(c.visible)

	if c.focus.IsEntry() {
		if pos := c.visiblePosition(focusedCatalogIndex); pos >= 0 {
			c.setFocus(Entry(pos))
		} else {
			c.setFocus(SearchField())
		}
	}
}

// NoteSearchFocus records that the toolkit moved focus to the search field.
func (c *Controller) NoteSearchFocus() {
	if c.state == Open {
		c.focus = SearchField()
	}
}

// NoteEntryFocus records that the toolkit moved focus onto a grid cell, e.g. by arrow
// keys or pointer. catalogIndex identifies the cell.
func (c *Controller) NoteEntryFocus(catalogIndex int) {
	if c.state != Open {
		return
	}
	if pos := c.visiblePosition(catalogIndex); pos >= 0 {
		c.focus = Entry(pos)
	}
}

// ActivateCatalogEntry launches the cell identified by catalogIndex, as a pointer
// activation does. Hidden or unknown cells are ignored.
func (c *Controller) ActivateCatalogEntry(catalogIndex int) bool {
	if c.state != Open {
		return false
	}
	pos := c.visiblePosition(catalogIndex)
	if pos < 0 {
		return false
	}
	return c.launch(c.visibleEntry(pos))
}

func (c *Controller) launch(entry *AppEntry) bool {
	if !c.dispatcher.Launch(entry) {
		return false
	}
	c.close("launch")
	return true
}

func (c *Controller) setFocus(target FocusTarget) {
	if target == c.focus {
		return
	}
	c.focus = target
	c.surface.FocusChanged(target)
}

func (c *Controller) visibleEntry(pos int) *AppEntry {
	if pos < 0 || pos >= len(c.visible) {
		return nil
	}
	return &c.catalog[c.visible[pos]]
}

func (c *Controller) visiblePosition(catalogIndex int) int {
	for pos, idx := range c.visible {
		if idx == catalogIndex {
			return pos
		}
	}
	return -1
}

func (c *Controller) State() State {
	return c.state
}

func (c *Controller) Query() string {
	return c.query
}

func (c *Controller) Focus() FocusTarget {
	return c.focus
}

func (c *Controller) Catalog() Catalog {
	return c.catalog
}

func (c *Controller) VisibleSet() VisibleSet {
	return c.visible
}

// CurrentVisibleSet returns the visible entries in catalog order.
func (c *Controller) CurrentVisibleSet() []AppEntry {
	entries := make([]AppEntry, 0, len(c.visible))
	for _, idx := range c.visible {
		entries = append(entries, c.catalog[idx])
	}
	return entries
}

// FocusedEntry returns the entry under keyboard focus, or nil for the search field.
func (c *Controller) FocusedEntry() *AppEntry {
	if !c.focus.IsEntry() {
		return nil
	}
	return c.visibleEntry(c.focus.Index)
}
