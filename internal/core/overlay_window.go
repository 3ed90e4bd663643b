package core

import (
	"fmt"
	"log"

	"github.com/chess10kp/locus-overlay/internal/config"
	"github.com/chess10kp/locus-overlay/internal/layer"
	"github.com/chess10kp/locus-overlay/internal/overlay"
	"github.com/gotk3/gotk3/gdk"
	"github.com/gotk3/gotk3/gtk"
	"github.com/gotk3/gotk3/pango"
)

var debugLogger = log.New(log.Writer(), "[OVERLAY-DEBUG] ", log.LstdFlags|log.Lmicroseconds)

// OverlayWindow is the GTK surface of the overlay: a full-output layer-shell window
// with a centered search field above a grid of application cells. Every user action
// is forwarded to the controller; the window only mirrors what the controller reports.
type OverlayWindow struct {
	config      *config.Config
	controller  *overlay.Controller
	icons       *IconCache
	window      *gtk.Window
	searchEntry *gtk.SearchEntry
	flowBox     *gtk.FlowBox
	scrolled    *gtk.ScrolledWindow

	// cells[i] renders catalog[i]
	cells   []*gtk.FlowBoxChild
	visible overlay.VisibleSet
}

func NewOverlayWindow(cfg *config.Config, controller *overlay.Controller, icons *IconCache) (*OverlayWindow, error) {
	window, err := gtk.WindowNew(gtk.WINDOW_TOPLEVEL)
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	window.SetDecorated(false)
	window.SetSkipTaskbarHint(true)
	window.SetSkipPagerHint(true)
	window.SetName("overlay-window")
	window.SetTitle(cfg.AppName)
	addClass(&window.Widget, "search-window")

	if screen, err := gdk.ScreenGetDefault(); err == nil && screen != nil {
		if visual, err := screen.GetRGBAVisual(); err == nil && visual != nil {
			window.SetVisual(visual)
			window.SetAppPaintable(true)
		}
	}

	if layer.IsSupported() {
		layer.InitForWindow(window)
		layer.SetNamespace(window, cfg.AppName)
		layer.SetLayer(window, layer.LayerOverlay)
		layer.SetKeyboardMode(window, layer.KeyboardModeExclusive)
		layer.AnchorAll(window)
		layer.SetExclusiveZone(window, -1)
	} else {
		log.Printf("[OVERLAY] Compositor has no layer-shell, using a regular window")
	}

	container, err := gtk.BoxNew(gtk.ORIENTATION_VERTICAL, 20)
	if err != nil {
		return nil, fmt.Errorf("failed to create box: %w", err)
	}
	container.SetName("search-container")
	addClass(&container.Widget, "search-container")
	container.SetHAlign(gtk.ALIGN_CENTER)
	container.SetVAlign(gtk.ALIGN_CENTER)
	container.SetSizeRequest(cfg.Launcher.Window.Width, cfg.Launcher.Window.Height)
	window.Add(container)

	searchEntry, err := gtk.SearchEntryNew()
	if err != nil {
		return nil, fmt.Errorf("failed to create search entry: %w", err)
	}
	searchEntry.SetName("search-entry")
	searchEntry.SetPlaceholderText("Search applications...")
	container.PackStart(searchEntry, false, false, 0)

	scrolled, err := gtk.ScrolledWindowNew(nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create scrolled window: %w", err)
	}
	scrolled.SetPolicy(gtk.POLICY_NEVER, gtk.POLICY_AUTOMATIC)
	scrolled.SetVExpand(true)
	container.PackStart(scrolled, true, true, 0)

	flowBox, err := gtk.FlowBoxNew()
	if err != nil {
		return nil, fmt.Errorf("failed to create flow box: %w", err)
	}
	flowBox.SetName("app-container")
	addClass(&flowBox.Widget, "app-container")
	flowBox.SetSelectionMode(gtk.SELECTION_NONE)
	flowBox.SetMaxChildrenPerLine(uint(cfg.Launcher.Grid.MaxChildrenPerLine))
	flowBox.SetMinChildrenPerLine(1)
	flowBox.SetHomogeneous(true)
	flowBox.SetActivateOnSingleClick(true)
	flowBox.SetHAlign(gtk.ALIGN_START)
	flowBox.SetVAlign(gtk.ALIGN_START)
	scrolled.Add(flowBox)

	container.ShowAll()

	w := &OverlayWindow{
		config:      cfg,
		controller:  controller,
		icons:       icons,
		window:      window,
		searchEntry: searchEntry,
		flowBox:     flowBox,
		scrolled:    scrolled,
	}
	w.setupSignals()

	return w, nil
}

func (w *OverlayWindow) setupSignals() {
	// "changed" rather than "search-changed": the latter is delayed by GTK.
	w.searchEntry.Connect("changed", func() {
		text, _ := w.searchEntry.GetText()
		w.controller.SetQuery(text)
	})

	w.searchEntry.Connect("focus-in-event", func() bool {
		w.controller.NoteSearchFocus()
		return false
	})

	w.flowBox.Connect("child-activated", func(_ *gtk.FlowBox, child *gtk.FlowBoxChild) {
		idx := child.GetIndex()
		debugLogger.Printf("ACTIVATED: cell %d", idx)
		w.controller.ActivateCatalogEntry(idx)
	})

	// Runs before the focused widget sees the key, so Tab and Enter never reach
	// GTK's own focus chain or the entry's activate handler.
	w.window.Connect("key-press-event", func(_ *gtk.Window, event *gdk.Event) bool {
		keyEvent := gdk.EventKeyNewFromEvent(event)
		key := translateKey(keyEvent.KeyVal(), gdk.ModifierType(keyEvent.State()))
		if key == overlay.KeyOther {
			return false
		}
		handled := w.controller.HandleKey(key)
		debugLogger.Printf("KEY: %s handled=%v focus=%s", key, handled, w.controller.Focus())
		return handled
	})

	w.window.Connect("delete-event", func() bool {
		w.controller.HandleKey(overlay.KeyEscape)
		return true
	})
}

// Opened implements overlay.Surface.
func (w *OverlayWindow) Opened(catalog overlay.Catalog) {
	w.clearCells()
	if w.icons != nil {
		w.icons.Reset()
	}

	w.cells = make([]*gtk.FlowBoxChild, 0, len(catalog))
	for i := range catalog {
		cell, err := w.createCell(&catalog[i], i)
		if err != nil {
			// The controller's catalog indices must stay aligned with the grid.
			log.Printf("[OVERLAY] Failed to create cell for %s: %v", catalog[i].ID, err)
			cell, _ = gtk.FlowBoxChildNew()
		}
		w.flowBox.Insert(cell, -1)
		w.cells = append(w.cells, cell)
	}

	w.searchEntry.SetText("")
	w.window.Show()
	w.window.Present()

	if w.icons != nil {
		w.icons.LogStats()
	}
}

// Closed implements overlay.Surface.
func (w *OverlayWindow) Closed() {
	w.window.Hide()
	w.searchEntry.SetText("")
	w.clearCells()
}

// VisibleChanged implements overlay.Surface.
func (w *OverlayWindow) VisibleChanged(visible overlay.VisibleSet) {
	w.visible = visible

	show := make([]bool, len(w.cells))
	for _, idx := range visible {
		if idx >= 0 && idx < len(show) {
			show[idx] = true
		}
	}
	for i, cell := range w.cells {
		cell.SetVisible(show[i])
	}
}

// FocusChanged implements overlay.Surface.
func (w *OverlayWindow) FocusChanged(target overlay.FocusTarget) {
	if !target.IsEntry() {
		w.searchEntry.GrabFocus()
		w.searchEntry.SetPosition(-1)
		return
	}

	if target.Index < 0 || target.Index >= len(w.visible) {
		return
	}
	idx := w.visible[target.Index]
	if idx < 0 || idx >= len(w.cells) {
		return
	}
	w.cells[idx].GrabFocus()
}

func (w *OverlayWindow) clearCells() {
	for _, cell := range w.cells {
		w.flowBox.Remove(cell)
	}
	w.cells = nil
	w.visible = nil
}

func (w *OverlayWindow) createCell(entry *overlay.AppEntry, idx int) (*gtk.FlowBoxChild, error) {
	cell, err := gtk.FlowBoxChildNew()
	if err != nil {
		return nil, err
	}
	addClass(&cell.Widget, "app-btn")
	cell.SetCanFocus(true)
	cell.SetTooltipText(entry.Name)

	vbox, err := gtk.BoxNew(gtk.ORIENTATION_VERTICAL, 5)
	if err != nil {
		return nil, err
	}
	vbox.SetHAlign(gtk.ALIGN_CENTER)
	vbox.SetVAlign(gtk.ALIGN_END)

	image, err := w.createIcon(entry.Icon)
	if err != nil {
		return nil, err
	}
	vbox.PackStart(image, false, false, 0)

	label, err := gtk.LabelNew(entry.Name)
	if err != nil {
		return nil, err
	}
	label.SetLineWrap(true)
	label.SetLineWrapMode(pango.WRAP_WORD_CHAR)
	label.SetMaxWidthChars(w.config.Launcher.Grid.LabelMaxChars)
	label.SetJustify(gtk.JUSTIFY_CENTER)
	label.SetLines(2)
	label.SetEllipsize(pango.ELLIPSIZE_END)
	vbox.PackStart(label, false, false, 0)

	cell.Add(vbox)

	cell.Connect("focus-in-event", func() bool {
		w.controller.NoteEntryFocus(idx)
		return false
	})

	cell.ShowAll()
	return cell, nil
}

func (w *OverlayWindow) createIcon(icon string) (*gtk.Image, error) {
	size := w.config.Launcher.Icons.IconSize

	if w.icons != nil {
		if pixbuf, err := w.icons.GetIcon(icon, size); err == nil {
			return gtk.ImageNewFromPixbuf(pixbuf)
		}
	}

	if icon == "" {
		icon = w.config.Launcher.Icons.FallbackIcon
	}
	image, err := gtk.ImageNewFromIconName(icon, gtk.ICON_SIZE_DIALOG)
	if err != nil {
		return nil, err
	}
	image.SetPixelSize(size)
	return image, nil
}

func (w *OverlayWindow) Destroy() {
	w.clearCells()
	w.window.Destroy()
}

func addClass(widget *gtk.Widget, class string) {
	if ctx, err := widget.GetStyleContext(); err == nil {
		ctx.AddClass(class)
	}
}
