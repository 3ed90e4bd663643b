package launcher

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/chess10kp/locus-overlay/internal/config"
	"github.com/godbus/dbus/v5"
)

const (
	notificationsName = "org.freedesktop.Notifications"
	notificationsPath = "/org/freedesktop/Notifications"
)

// BusActivator implements Activator with org.freedesktop.Application.Activate.
type BusActivator struct {
	conn *dbus.Conn
}

func NewBusActivator() (*BusActivator, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}
	return &BusActivator{conn: conn}, nil
}

func (b *BusActivator) Activate(ctx context.Context, desktopID string) error {
	name, path, err := ApplicationBusName(desktopID)
	if err != nil {
		return err
	}
	obj := b.conn.Object(name, path)
	call := obj.CallWithContext(ctx, "org.freedesktop.Application.Activate", 0, map[string]dbus.Variant{})
	return call.Err
}

// ApplicationBusName derives the well-known name and object path of a D-Bus activatable
// application from its desktop-file ID: org.gnome.Nautilus.desktop is served by
// org.gnome.Nautilus at /org/gnome/Nautilus.
func ApplicationBusName(desktopID string) (string, dbus.ObjectPath, error) {
	name := strings.TrimSuffix(desktopID, ".desktop")
	if !strings.Contains(name, ".") {
		return "", "", fmt.Errorf("desktop ID %q is not a valid bus name", desktopID)
	}
	path := dbus.ObjectPath("/" + strings.NewReplacer(".", "/", "-", "_").Replace(name))
	if !path.IsValid() {
		return "", "", fmt.Errorf("desktop ID %q gives invalid object path %q", desktopID, path)
	}
	return name, path, nil
}

// Notifier shows launch failures as desktop notifications.
type Notifier struct {
	appName string
	enabled bool
	mu      sync.Mutex
	conn    *dbus.Conn
}

func NewNotifier(cfg *config.Config) *Notifier {
	return &Notifier{
		appName: cfg.AppName,
		enabled: cfg.Launcher.Launch.NotifyFailures,
	}
}

// LaunchFailed sends the notification in the background; it never blocks the caller.
func (n *Notifier) LaunchFailed(name string, err error) {
	if !n.enabled {
		return
	}
	summary, body := failureMessage(name, err)
	go func() {
		if err := n.notify(summary, body); err != nil {
			log.Printf("[LAUNCH] Failed to send notification: %v", err)
		}
	}()
}

func (n *Notifier) notify(summary, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.conn == nil {
		conn, err := dbus.SessionBus()
		if err != nil {
			return fmt.Errorf("failed to connect to session bus: %w", err)
		}
		n.conn = conn
	}

	obj := n.conn.Object(notificationsName, notificationsPath)
	call := obj.Call(notificationsName+".Notify", 0,
		n.appName, uint32(0), "dialog-error", summary, body,
		[]string{}, map[string]dbus.Variant{}, int32(5000))
	return call.Err
}

func failureMessage(name string, err error) (string, string) {
	if name == "" {
		name = "application"
	}
	return fmt.Sprintf("Failed to launch %s", name), err.Error()
}
