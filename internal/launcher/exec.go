package launcher

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"github.com/chess10kp/locus-overlay/internal/apps"
	"github.com/chess10kp/locus-overlay/internal/config"
	"github.com/google/shlex"
)

var (
	ErrNoApp     = errors.New("no application to launch")
	ErrEmptyExec = errors.New("empty Exec line")
)

const activationTimeout = 5 * time.Second

// Activator starts DBusActivatable applications by desktop-file ID.
type Activator interface {
	Activate(ctx context.Context, desktopID string) error
}

// FailureReporter is told about launches that failed after Launch returned.
type FailureReporter interface {
	LaunchFailed(name string, err error)
}

// Service is the process-launch service. Launch never waits for the child.
type Service struct {
	terminal  []string
	activator Activator
	reporter  FailureReporter
	start     func(*exec.Cmd) error
}

type ServiceOption func(*Service)

func WithActivator(a Activator) ServiceOption {
	return func(s *Service) { s.activator = a }
}

func WithFailureReporter(r FailureReporter) ServiceOption {
	return func(s *Service) { s.reporter = r }
}

func NewService(cfg *config.Config, opts ...ServiceOption) *Service {
	s := &Service{
		terminal: append([]string{}, cfg.Launcher.Launch.Terminal...),
		start:    (*exec.Cmd).Start,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Launch starts app. DBusActivatable apps are activated on the session bus in the
// background, falling back to their Exec line; other apps are spawned directly and
// a spawn failure is returned.
func (s *Service) Launch(app *apps.App) error {
	if app == nil {
		return ErrNoApp
	}

	if app.DBusActivatable && s.activator != nil {
		go s.activate(app)
		return nil
	}

	return s.spawn(app)
}

func (s *Service) activate(app *apps.App) {
	ctx, cancel := context.WithTimeout(context.Background(), activationTimeout)
	defer cancel()

	err := s.activator.Activate(ctx, app.ID)
	if err == nil {
		log.Printf("[LAUNCH] Activated %s over D-Bus", app.ID)
		return
	}

	log.Printf("[LAUNCH] D-Bus activation of %s failed: %v", app.ID, err)
	if app.Exec == "" {
		s.report(app, fmt.Errorf("d-bus activation failed: %w", err))
		return
	}
	if err := s.spawn(app); err != nil {
		s.report(app, err)
	}
}

func (s *Service) report(app *apps.App, err error) {
	if s.reporter != nil {
		s.reporter.LaunchFailed(app.Name, err)
	}
}

func (s *Service) spawn(app *apps.App) error {
	cmd, err := s.buildCommand(app)
	if err != nil {
		return err
	}

	if err := s.start(cmd); err != nil {
		return fmt.Errorf("failed to start %s: %w", cmd.Path, err)
	}
	log.Printf("[LAUNCH] Started %s: %v", app.ID, cmd.Args)

	if cmd.Process != nil {
		go func() {
			if err := cmd.Wait(); err != nil {
				log.Printf("[LAUNCH] %s exited: %v", app.ID, err)
			}
		}()
	}
	return nil
}

func (s *Service) buildCommand(app *apps.App) (*exec.Cmd, error) {
	argv, err := ExpandExec(app)
	if err != nil {
		return nil, err
	}
	if app.Terminal && len(s.terminal) > 0 {
		argv = append(append([]string{}, s.terminal...), argv...)
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	if app.Path != "" {
		if info, err := os.Stat(app.Path); err == nil && info.IsDir() {
			cmd.Dir = app.Path
		}
	}
	cmd.Env = launchEnv(app)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	return cmd, nil
}

// launchEnv strips LD_PRELOAD, which breaks some children, and records the desktop file.
func launchEnv(app *apps.App) []string {
	env := make([]string, 0, len(os.Environ())+1)
	for _, e := range os.Environ() {
		if strings.HasPrefix(e, "LD_PRELOAD=") || strings.HasPrefix(e, "GIO_LAUNCHED_DESKTOP_FILE=") {
			continue
		}
		env = append(env, e)
	}
	if app.File != "" {
		env = append(env, "GIO_LAUNCHED_DESKTOP_FILE="+app.File)
	}
	return env
}

// ExpandExec turns an Exec line into argv. File and URL field codes are dropped since
// the overlay never passes arguments; %i, %c and %k expand from the entry.
func ExpandExec(app *apps.App) ([]string, error) {
	if strings.TrimSpace(app.Exec) == "" {
		return nil, ErrEmptyExec
	}

	tokens, err := shlex.Split(app.Exec)
	if err != nil {
		return nil, fmt.Errorf("failed to split Exec %q: %w", app.Exec, err)
	}

	argv := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		switch tok {
		case "%f", "%F", "%u", "%U", "%d", "%D", "%n", "%N", "%v", "%m":
			continue
		case "%i":
			if app.Icon != "" {
				argv = append(argv, "--icon", app.Icon)
			}
			continue
		}
		if expanded := expandFieldCodes(tok, app); expanded != "" {
			argv = append(argv, expanded)
		}
	}

	if len(argv) == 0 {
		return nil, ErrEmptyExec
	}
	return argv, nil
}

func expandFieldCodes(tok string, app *apps.App) string {
	if !strings.Contains(tok, "%") {
		return tok
	}
	var b strings.Builder
	for i := 0; i < len(tok); i++ {
		if tok[i] != '%' || i+1 == len(tok) {
			b.WriteByte(tok[i])
			continue
		}
		i++
		switch tok[i] {
		case '%':
			b.WriteByte('%')
		case 'c':
			b.WriteString(app.Name)
		case 'k':
			b.WriteString(app.File)
		}
	}
	return b.String()
}
