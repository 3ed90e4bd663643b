package layer

/*
#cgo pkg-config: gtk-layer-shell-0
#include <stdlib.h>
#include <gtk-layer-shell.h>
*/
import "C"
import (
	"unsafe"

	"github.com/gotk3/gotk3/gtk"
)

func native(window *gtk.Window) *C.GtkWindow {
	return (*C.GtkWindow)(unsafe.Pointer(window.Native()))
}

// IsSupported reports whether the compositor speaks wlr-layer-shell.
func IsSupported() bool {
	return C.gtk_layer_is_supported() != 0
}

// InitForWindow turns window into a layer surface. Must be called before it is realized.
func InitForWindow(window *gtk.Window) {
	C.gtk_layer_init_for_window(native(window))
}

func SetNamespace(window *gtk.Window, namespace string) {
	cs := C.CString(namespace)
	defer C.free(unsafe.Pointer(cs))
	C.gtk_layer_set_namespace(native(window), cs)
}

func SetLayer(window *gtk.Window, layer Layer) {
	C.gtk_layer_set_layer(native(window), C.GtkLayerShellLayer(layer))
}

func SetAnchor(window *gtk.Window, edge Edge, anchorTo bool) {
	var anchor C.gboolean
	if anchorTo {
		anchor = 1
	}
	C.gtk_layer_set_anchor(native(window), C.GtkLayerShellEdge(edge), anchor)
}

// AnchorAll stretches the surface over the whole output.
func AnchorAll(window *gtk.Window) {
	for _, edge := range []Edge{EdgeLeft, EdgeRight, EdgeTop, EdgeBottom} {
		SetAnchor(window, edge, true)
	}
}

// SetExclusiveZone of -1 draws over panels instead of being pushed aside by them.
func SetExclusiveZone(window *gtk.Window, zone int) {
	C.gtk_layer_set_exclusive_zone(native(window), C.int(zone))
}

func SetKeyboardMode(window *gtk.Window, mode KeyboardMode) {
	C.gtk_layer_set_keyboard_mode(native(window), C.GtkLayerShellKeyboardMode(mode))
}

type Layer int

const (
	LayerBackground Layer = 0
	LayerBottom     Layer = 1
	LayerTop        Layer = 2
	LayerOverlay    Layer = 3
)

type Edge int

const (
	EdgeLeft   Edge = 0
	EdgeRight  Edge = 1
	EdgeTop    Edge = 2
	EdgeBottom Edge = 3
)

type KeyboardMode int

const (
	KeyboardModeNone      KeyboardMode = 0
	KeyboardModeExclusive KeyboardMode = 1
	KeyboardModeOnDemand  KeyboardMode = 2
)
