package overlay

import (
	"errors"
	"log"
	"time"

	"github.com/chess10kp/locus-overlay/internal/apps"
)

var (
	ErrNoDescriptor = errors.New("application has no launch descriptor")
	ErrNoName       = errors.New("application has no display name")
)

var debugLogger = log.New(log.Writer(), "[OVERLAY-DEBUG] ", log.LstdFlags|log.Lmicroseconds)

// Enumerator is the OS application-enumeration service.
type Enumerator interface {
	Enumerate() ([]apps.App, error)
}

// AppEntry is one launchable application inside a catalog snapshot. Entries are
// immutable once built; Descriptor is handed to the launch service untouched.
type AppEntry struct {
	ID         string
	Name       string
	Icon       string
	Descriptor *apps.App

	lowerID   string
	lowerName string
}

func newAppEntry(app *apps.App) (AppEntry, error) {
	if app.Name == "" {
		return AppEntry{}, ErrNoName
	}
	if !app.Launchable() {
		return AppEntry{}, ErrNoDescriptor
	}
	return AppEntry{
		ID:         app.ID,
		Name:       app.Name,
		Icon:       app.Icon,
		Descriptor: app,
		lowerID:    asciiLower(app.ID),
		lowerName:  asciiLower(app.Name),
	}, nil
}

// Catalog is the ordered snapshot of launchable applications taken at Open time.
type Catalog []AppEntry

// BuildCatalog enumerates applications and keeps the user-visible ones with a usable
// name and descriptor, in enumeration order. Bad entries are skipped, and an
// enumeration error still yields whatever the service returned.
func BuildCatalog(source Enumerator) Catalog {
	start := time.Now()

	descriptors, err := source.Enumerate()
	if err != nil {
		log.Printf("[OVERLAY] Enumeration failed, building partial catalog: %v", err)
	}

	catalog := make(Catalog, 0, len(descriptors))
	hidden, skipped := 0, 0
	for i := range descriptors {
		app := &descriptors[i]
		if !app.Visible {
			hidden++
			continue
		}
		entry, err := newAppEntry(app)
		if err != nil {
			skipped++
			debugLogger.Printf("BUILD: skipping %q: %v", app.ID, err)
			continue
		}
		catalog = append(catalog, entry)
	}

	log.Printf("[OVERLAY] Catalog built: %d entries (%d hidden, %d skipped) in %v",
		len(catalog), hidden, skipped, time.Since(start))
	return catalog
}
