package config

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

const DefaultPath = "~/.config/locus/config.toml"

type Config struct {
	AppName    string           `toml:"app_name"`
	AppID      string           `toml:"app_id"`
	SocketPath string           `toml:"socket_path"`
	ConfigDir  string           `toml:"config_dir"`
	Launcher   LauncherConfig   `toml:"launcher"`
	Compositor CompositorConfig `toml:"compositor"`
}

type LauncherConfig struct {
	Window      WindowConfig      `toml:"window"`
	Grid        GridConfig        `toml:"grid"`
	Search      SearchConfig      `toml:"search"`
	Icons       IconsConfig       `toml:"icons"`
	DesktopApps DesktopAppsConfig `toml:"desktop_apps"`
	Launch      LaunchConfig      `toml:"launch"`
	Styling     StylingConfig     `toml:"styling"`
}

// WindowConfig sizes the centered container; the surface itself always covers the output.
type WindowConfig struct {
	Width  int `toml:"width"`
	Height int `toml:"height"`
}

type GridConfig struct {
	MaxChildrenPerLine int `toml:"max_children_per_line"`
	LabelMaxChars      int `toml:"label_max_chars"`
}

type SearchConfig struct {
	FilterCacheSize int `toml:"filter_cache_size"` // 0 disables the per-open memo
}

type IconsConfig struct {
	IconSize     int    `toml:"icon_size"`
	FallbackIcon string `toml:"fallback_icon"`
	CacheSize    int    `toml:"cache_size"`
}

type DesktopAppsConfig struct {
	ScanUserDir    bool     `toml:"scan_user_dir"`
	ScanSystemDirs bool     `toml:"scan_system_dirs"`
	CustomDirs     []string `toml:"custom_dirs"`
}

type LaunchConfig struct {
	Terminal       []string `toml:"terminal"`
	NotifyFailures bool     `toml:"notify_failures"`
}

type StylingConfig struct {
	BackgroundColor string `toml:"background_color"`
	ForegroundColor string `toml:"foreground_color"`
	BorderColor     string `toml:"border_color"`
	AccentColor     string `toml:"accent_color"`
	EntryBackground string `toml:"entry_background"`
	BorderRadius    int    `toml:"border_radius"`
	FontFamily      string `toml:"font_family"`
	FontSize        int    `toml:"font_size"`
}

type CompositorConfig struct {
	Hyprland HyprlandConfig `toml:"hyprland"`
	Sway     SwayConfig     `toml:"sway"`
}

type HyprlandConfig struct {
	Enabled bool   `toml:"enabled"`
	Event   string `toml:"event"` // payload of `hyprctl dispatch event <payload>`
}

type SwayConfig struct {
	Enabled     bool   `toml:"enabled"`
	TickPayload string `toml:"tick_payload"` // payload of `swaymsg -t send_tick <payload>`
}

var DefaultConfig = Config{
	AppName:    "locus",
	AppID:      "com.github.chess10kp.locus",
	SocketPath: "/tmp/locus_socket",
	ConfigDir:  "~/.config/locus",
	Launcher: LauncherConfig{
		Window: WindowConfig{
			Width:  680,
			Height: 500,
		},
		Grid: GridConfig{
			MaxChildrenPerLine: 5,
			LabelMaxChars:      12,
		},
		Search: SearchConfig{
			FilterCacheSize: 128,
		},
		Icons: IconsConfig{
			IconSize:     64,
			FallbackIcon: "application-x-executable",
			CacheSize:    256,
		},
		DesktopApps: DesktopAppsConfig{
			ScanUserDir:    true,
			ScanSystemDirs: true,
			CustomDirs:     []string{},
		},
		Launch: LaunchConfig{
			Terminal:       []string{"foot"},
			NotifyFailures: true,
		},
		Styling: StylingConfig{
			BackgroundColor: "rgba(14, 20, 25, 0.85)",
			ForegroundColor: "#ebdbb2",
			BorderColor:     "#313244",
			AccentColor:     "#89b4fa",
			EntryBackground: "#181825",
			BorderRadius:    8,
			FontFamily:      "Iosevka, monospace",
			FontSize:        16,
		},
	},
	Compositor: CompositorConfig{
		Hyprland: HyprlandConfig{
			Enabled: true,
			Event:   "locus-toggle",
		},
		Sway: SwayConfig{
			Enabled:     true,
			TickPayload: "locus-toggle",
		},
	},
}

// Default returns a copy of DefaultConfig whose slices are not shared.
func Default() *Config {
	cfg := DefaultConfig
	cfg.Launcher.DesktopApps.CustomDirs = append([]string{}, DefaultConfig.Launcher.DesktopApps.CustomDirs...)
	cfg.Launcher.Launch.Terminal = append([]string{}, DefaultConfig.Launcher.Launch.Terminal...)
	return &cfg
}

// LoadConfig reads path over the defaults, so keys missing from the file keep their
// default values. A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	expandedPath := ExpandPath(path)
	cfg := Default()

	if _, err := os.Stat(expandedPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(expandedPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", expandedPath, err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", expandedPath, err)
	}

	cfg.ConfigDir = ExpandPath(cfg.ConfigDir)
	cfg.SocketPath = ExpandPath(cfg.SocketPath)
	for i, dir := range cfg.Launcher.DesktopApps.CustomDirs {
		cfg.Launcher.DesktopApps.CustomDirs[i] = ExpandPath(dir)
	}

	return cfg, nil
}

func LoadAndValidateConfig(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// ExpandPath expands a leading ~ to the current user's home directory.
func ExpandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		usr, err := user.Current()
		if err == nil {
			return filepath.Join(usr.HomeDir, path[1:])
		}
	}
	return path
}

func SaveConfig(cfg *Config, path string) error {
	expandedPath := ExpandPath(path)

	dir := filepath.Dir(expandedPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(expandedPath, data, 0644)
}

func (c *Config) Validate() error {
	if c.SocketPath == "" {
		return fmt.Errorf("socket_path must not be empty")
	}
	if err := c.validateWindow(); err != nil {
		return err
	}
	if err := c.validateGrid(); err != nil {
		return err
	}
	if err := c.validateSearch(); err != nil {
		return err
	}
	if err := c.validateIcons(); err != nil {
		return err
	}
	if err := c.validateCompositor(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateWindow() error {
	w := c.Launcher.Window
	if w.Width < 100 || w.Width > 4000 {
		return fmt.Errorf("invalid window width: %d (must be 100-4000)", w.Width)
	}
	if w.Height < 100 || w.Height > 4000 {
		return fmt.Errorf("invalid window height: %d (must be 100-4000)", w.Height)
	}
	return nil
}

func (c *Config) validateGrid() error {
	g := c.Launcher.Grid
	if g.MaxChildrenPerLine < 1 || g.MaxChildrenPerLine > 20 {
		return fmt.Errorf("invalid max_children_per_line: %d (must be 1-20)", g.MaxChildrenPerLine)
	}
	if g.LabelMaxChars < 1 || g.LabelMaxChars > 100 {
		return fmt.Errorf("invalid label_max_chars: %d (must be 1-100)", g.LabelMaxChars)
	}
	return nil
}

func (c *Config) validateSearch() error {
	s := c.Launcher.Search
	if s.FilterCacheSize < 0 || s.FilterCacheSize > 10000 {
		return fmt.Errorf("invalid filter_cache_size: %d (must be 0-10000)", s.FilterCacheSize)
	}
	return nil
}

func (c *Config) validateIcons() error {
	i := c.Launcher.Icons
	if i.IconSize < 16 || i.IconSize > 256 {
		return fmt.Errorf("invalid icon_size: %d (must be 16-256)", i.IconSize)
	}
	if i.CacheSize < 1 {
		return fmt.Errorf("invalid icon cache_size: %d (must be positive)", i.CacheSize)
	}
	return nil
}

func (c *Config) validateCompositor() error {
	h := c.Compositor.Hyprland
	if h.Enabled && h.Event == "" {
		return fmt.Errorf("hyprland toggle source enabled but event is empty")
	}
	s := c.Compositor.Sway
	if s.Enabled && s.TickPayload == "" {
		return fmt.Errorf("sway toggle source enabled but tick_payload is empty")
	}
	return nil
}

func ValidateConfig(path string) error {
	_, err := LoadAndValidateConfig(path)
	return err
}
