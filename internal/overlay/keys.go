package overlay

// Key is a toolkit-independent key identity. The presentation maps raw key symbols
// onto these; anything else is KeyOther and left to the focused widget.
type Key int

const (
	KeyOther Key = iota
	KeyEscape
	KeyEnter
	KeyTab
	KeyBackTab
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
)

func (k Key) String() string {
	switch k {
	case KeyEscape:
		return "Escape"
	case KeyEnter:
		return "Enter"
	case KeyTab:
		return "Tab"
	case KeyBackTab:
		return "BackTab"
	case KeyUp:
		return "Up"
	case KeyDown:
		return "Down"
	case KeyLeft:
		return "Left"
	case KeyRight:
		return "Right"
	}
	return "Other"
}

// keyAction runs against an open controller and reports whether the key was consumed.
type keyAction func(c *Controller) bool

// Arrow keys stay with the grid widget's own traversal.
var keyTable = map[Key]keyAction{
	KeyEscape:  (*Controller).escape,
	KeyEnter:   (*Controller).enter,
	KeyTab:     (*Controller).tab,
	KeyBackTab: (*Controller).backTab,
}

// HandleKey routes a key press arriving in the capture phase. It returns true when the
// key is consumed and must not reach nested widgets. Keys are ignored while Closed.
func (c *Controller) HandleKey(k Key) bool {
	if c.state != Open {
		return false
	}
	action, ok := keyTable[k]
	if !ok {
		return false
	}
	consumed := action(c)
	debugLogger.Printf("KEY: %s focus=%s consumed=%v", k, c.focus, consumed)
	return consumed
}

func (c *Controller) escape() bool {
	c.close("escape")
	return true
}

// enter launches the first visible entry from the search field, or the focused entry.
// With nothing to launch the event propagates and the overlay stays open.
func (c *Controller) enter() bool {
	if c.focus.IsEntry() {
		return c.activateFocusedEntry()
	}
	return c.launch(c.visibleEntry(0))
}

func (c *Controller) activateFocusedEntry() bool {
	if !c.focus.IsEntry() {
		return false
	}
	return c.launch(c.visibleEntry(c.focus.Index))
}

func (c *Controller) tab() bool {
	if c.focus.IsEntry() {
		c.setFocus(FocusNext(len(c.visible), c.focus))
	} else {
		c.setFocus(FocusFirstVisible(len(c.visible), c.focus))
	}
	return true
}

func (c *Controller) backTab() bool {
	c.setFocus(FocusPrev(len(c.visible), c.focus))
	return true
}
