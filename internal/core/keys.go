package core

import (
	"github.com/chess10kp/locus-overlay/internal/overlay"
	"github.com/gotk3/gotk3/gdk"
)

func translateKey(keyval uint, state gdk.ModifierType) overlay.Key {
	switch keyval {
	case gdk.KEY_Escape:
		return overlay.KeyEscape
	case gdk.KEY_Return, gdk.KEY_KP_Enter, gdk.KEY_ISO_Enter:
		return overlay.KeyEnter
	case gdk.KEY_ISO_Left_Tab:
		return overlay.KeyBackTab
	case gdk.KEY_Tab, gdk.KEY_KP_Tab:
		if state&gdk.SHIFT_MASK != 0 {
			return overlay.KeyBackTab
		}
		return overlay.KeyTab
	case gdk.KEY_Up:
		return overlay.KeyUp
	case gdk.KEY_Down:
		return overlay.KeyDown
	case gdk.KEY_Left:
		return overlay.KeyLeft
	case gdk.KEY_Right:
		return overlay.KeyRight
	}
	return overlay.KeyOther
}
