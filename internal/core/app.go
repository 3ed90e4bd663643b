package core

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chess10kp/locus-overlay/internal/apps"
	"github.com/chess10kp/locus-overlay/internal/compositor"
	"github.com/chess10kp/locus-overlay/internal/config"
	"github.com/chess10kp/locus-overlay/internal/ipc"
	"github.com/chess10kp/locus-overlay/internal/launcher"
	"github.com/chess10kp/locus-overlay/internal/overlay"
	"github.com/gotk3/gotk3/glib"
	"github.com/gotk3/gotk3/gtk"
)

// App wires the toggle sources, the overlay controller and the GTK surface together.
type App struct {
	config   *config.Config
	running  bool
	sigChan  chan os.Signal
	queue    *overlay.ToggleQueue
	ipc      *ipc.Server
	notifier *launcher.Notifier

	controller *overlay.Controller
	window     *OverlayWindow

	ctx         context.Context
	cancel      context.CancelFunc
	waitSources func()
}

func NewApp(cfg *config.Config) (*App, error) {
	ctx, cancel := context.WithCancel(context.Background())
	return &App{
		config:   cfg,
		sigChan:  make(chan os.Signal, 1),
		queue:    overlay.NewToggleQueue(16),
		notifier: launcher.NewNotifier(cfg),
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// Run starts listening for toggles, then brings up GTK and blocks in its main loop.
// Toggles that arrive before the overlay exists are queued and replayed.
func (a *App) Run() error {
	a.running = true

	signal.Notify(a.sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-a.sigChan
		log.Printf("Received signal: %v", sig)
		glib.IdleAdd(a.Quit)
	}()

	log.Println("Locus overlay starting...")

	a.startToggleSources()

	if err := a.initialize(); err != nil {
		a.stopToggleSources()
		return err
	}

	gtk.Main()
	return nil
}

func (a *App) startToggleSources() {
	server := ipc.NewServer(a.config.SocketPath, a.queue)
	if err := server.Start(); err != nil {
		log.Printf("Failed to start IPC server: %v", err)
	} else {
		a.ipc = server
	}

	sources := compositor.Detect(a.config)
	if len(sources) == 0 {
		log.Printf("No compositor toggle source detected, IPC only")
	}
	a.waitSources = compositor.Start(a.ctx, sources, a.queue.RequestToggle)
}

func (a *App) stopToggleSources() {
	a.cancel()
	if a.ipc != nil {
		a.ipc.Stop()
	}
	if a.waitSources != nil {
		a.waitSources()
	}
}

func (a *App) initialize() error {
	log.Println("Initializing components...")

	gtk.Init(nil)
	SetupStyles(a.config)

	go a.monitorGTKMainLoop()

	icons, err := NewIconCache(a.config)
	if err != nil {
		log.Printf("Failed to create icon cache: %v", err)
		icons = nil
	}

	opts := []launcher.ServiceOption{launcher.WithFailureReporter(a.notifier)}
	if activator, err := launcher.NewBusActivator(); err == nil {
		opts = append(opts, launcher.WithActivator(activator))
	} else {
		log.Printf("D-Bus activation unavailable: %v", err)
	}
	service := launcher.NewService(a.config, opts...)

	a.controller = overlay.NewController(
		apps.NewAppLoader(a.config),
		service,
		overlay.WithFilterCacheSize(a.config.Launcher.Search.FilterCacheSize),
		overlay.WithLaunchErrorHandler(func(entry overlay.AppEntry, err error) {
			a.notifier.LaunchFailed(entry.Name, err)
		}),
	)

	window, err := NewOverlayWindow(a.config, a.controller, icons)
	if err != nil {
		return err
	}
	a.window = window
	a.controller.AttachSurface(window)

	a.queue.Bind(func() {
		glib.IdleAdd(func() {
			a.queue.Drain(a.controller.Apply)
		})
	})

	log.Println("Initialization complete")
	return nil
}

// Quit must run on the UI thread.
func (a *App) Quit() {
	if !a.running {
		return
	}
	a.running = false

	log.Println("Shutting down...")

	a.stopToggleSources()

	if a.window != nil {
		a.window.Destroy()
	}

	gtk.MainQuit()
}

// monitorGTKMainLoop logs when the main loop stops servicing idle callbacks.
func (a *App) monitorGTKMainLoop() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-a.ctx.Done():
			return
		case <-ticker.C:
		}

		done := make(chan struct{}, 1)
		glib.IdleAdd(func() {
			done <- struct{}{}
		})

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			log.Printf("[MONITOR] WARNING: GTK main loop appears to be BLOCKED (callback not executed in 2s)")
		}
	}
}
