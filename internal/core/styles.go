package core

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/chess10kp/locus-overlay/internal/config"
	"github.com/gotk3/gotk3/gdk"
	"github.com/gotk3/gotk3/gtk"
)

const stylesTemplate = `
* {
    font-family: %[1]s;
    font-size: %[2]dpx;
}

window.search-window {
    background-color: transparent;
}

.search-container {
    background-color: %[3]s;
    color: %[4]s;
    border: 1px solid %[5]s;
    border-radius: %[6]dpx;
    padding: 16px;
}

#search-entry {
    background-color: %[7]s;
    color: %[4]s;
    padding: 12px;
    border: none;
    border-bottom: 1px solid %[5]s;
}

#search-entry:focus {
    border-bottom: 1px solid %[8]s;
}

.app-container {
    background-color: transparent;
}

.app-btn {
    padding: 8px;
    border-radius: %[6]dpx;
}

.app-btn label {
    color: %[4]s;
}

.app-btn:hover {
    background-color: %[5]s;
}

.app-btn:focus {
    background-color: %[8]s;
}

.app-btn:focus label {
    color: %[3]s;
}
`

func buildStyles(s config.StylingConfig) string {
	return fmt.Sprintf(stylesTemplate,
		s.FontFamily,
		s.FontSize,
		s.BackgroundColor,
		s.ForegroundColor,
		s.BorderColor,
		s.BorderRadius,
		s.EntryBackground,
		s.AccentColor,
	)
}

// SetupStyles installs the generated stylesheet and, if present, style.css from the
// config directory on top of it.
func SetupStyles(cfg *config.Config) {
	screen, err := gdk.ScreenGetDefault()
	if err != nil || screen == nil {
		log.Printf("[OVERLAY] Warning: Failed to get default screen: %v", err)
		return
	}

	provider, err := gtk.CssProviderNew()
	if err != nil {
		log.Printf("[OVERLAY] Warning: Failed to create css provider: %v", err)
		return
	}
	if err := provider.LoadFromData(buildStyles(cfg.Launcher.Styling)); err != nil {
		log.Printf("[OVERLAY] Warning: Failed to load default styles: %v", err)
		return
	}
	gtk.AddProviderForScreen(screen, provider, gtk.STYLE_PROVIDER_PRIORITY_APPLICATION)

	loadCustomCSS(screen, filepath.Join(config.ExpandPath(cfg.ConfigDir), "style.css"))
}

func loadCustomCSS(screen *gdk.Screen, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}

	provider, err := gtk.CssProviderNew()
	if err != nil {
		return
	}
	if err := provider.LoadFromData(string(data)); err != nil {
		log.Printf("[OVERLAY] Warning: Failed to load %s: %v", path, err)
		return
	}
	gtk.AddProviderForScreen(screen, provider, gtk.STYLE_PROVIDER_PRIORITY_USER)
	log.Printf("[OVERLAY] Loaded custom styles from %s", path)
}
