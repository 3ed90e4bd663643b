package apps

import (
	"bufio"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/chess10kp/locus-overlay/internal/config"
)

const desktopEntryGroup = "Desktop Entry"

// App is one application descriptor as found on disk. Visible carries the result of
// the NoDisplay/OnlyShowIn/NotShowIn/TryExec checks for the running desktop.
type App struct {
	ID              string
	Name            string
	GenericName     string
	Comment         string
	Exec            string
	TryExec         string
	Icon            string
	File            string
	Path            string
	Keywords        []string
	Terminal        bool
	DBusActivatable bool
	NoDisplay       bool
	OnlyShowIn      []string
	NotShowIn       []string
	Visible         bool
}

// Launchable reports whether the descriptor can be handed to the launch service.
func (a *App) Launchable() bool {
	return a.Exec != "" || a.DBusActivatable
}

// ShowIn applies the OnlyShowIn/NotShowIn rules against the current desktop names.
func (a *App) ShowIn(desktops []string) bool {
	for _, d := range desktops {
		if containsFold(a.NotShowIn, d) {
			return false
		}
	}
	if len(a.OnlyShowIn) == 0 {
		return true
	}
	for _, d := range desktops {
		if containsFold(a.OnlyShowIn, d) {
			return true
		}
	}
	return false
}

// AppLoader enumerates desktop applications from the XDG data directories.
type AppLoader struct {
	dirs     []string
	desktops []string
	locales  []string
	lookPath func(string) (string, error)
}

// NewAppLoader creates a loader for the directories selected by cfg.
func NewAppLoader(cfg *config.Config) *AppLoader {
	return NewAppLoaderWithDirs(ApplicationDirs(cfg), CurrentDesktops())
}

// NewAppLoaderWithDirs creates a loader over dirs, in precedence order.
func NewAppLoaderWithDirs(dirs []string, desktops []string) *AppLoader {
	return &AppLoader{
		dirs:     dirs,
		desktops: desktops,
		locales:  localeKeys(),
		lookPath: exec.LookPath,
	}
}

// ApplicationDirs lists the applications directories to scan, highest precedence first.
func ApplicationDirs(cfg *config.Config) []string {
	var dirs []string
	da := cfg.Launcher.DesktopApps

	for _, dir := range da.CustomDirs {
		dirs = append(dirs, config.ExpandPath(dir))
	}

	if da.ScanUserDir {
		dataHome := os.Getenv("XDG_DATA_HOME")
		if dataHome == "" {
			dataHome = filepath.Join(os.Getenv("HOME"), ".local", "share")
		}
		dirs = append(dirs, filepath.Join(dataHome, "applications"))
	}

	if da.ScanSystemDirs {
		dataDirs := os.Getenv("XDG_DATA_DIRS")
		if dataDirs == "" {
			dataDirs = "/usr/local/share:/usr/share"
		}
		for _, d := range strings.Split(dataDirs, ":") {
			if d != "" {
				dirs = append(dirs, filepath.Join(d, "applications"))
			}
		}
	}

	return dirs
}

// CurrentDesktops splits $XDG_CURRENT_DESKTOP.
func CurrentDesktops() []string {
	var desktops []string
	for _, d := range strings.Split(os.Getenv("XDG_CURRENT_DESKTOP"), ":") {
		if d != "" {
			desktops = append(desktops, d)
		}
	}
	return desktops
}

// Enumerate returns every application descriptor in directory precedence order.
// Unreadable directories and unparsable files are skipped; the first file claiming a
// desktop ID wins, and a Hidden=true file removes the ID altogether.
func (l *AppLoader) Enumerate() ([]App, error) {
	start := time.Now()
	seen := make(map[string]bool)
	var apps []App
	skipped := 0

	for _, dir := range l.dirs {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if path == dir {
					return fs.SkipDir
				}
				return nil
			}
			if d.IsDir() || !strings.HasSuffix(path, ".desktop") {
				return nil
			}

			id := desktopID(dir, path)
			if seen[id] {
				return nil
			}

			app, hidden, err := l.parseDesktopFile(path)
			if err != nil {
				skipped++
				log.Printf("[APPS-LOADER] Skipping %s: %v", path, err)
				return nil
			}
			seen[id] = true
			if hidden {
				return nil
			}

			app.ID = id
			app.Visible = !app.NoDisplay && app.ShowIn(l.desktops) && l.tryExecOK(app.TryExec)
			apps = append(apps, app)
			return nil
		})
		if err != nil {
			log.Printf("[APPS-LOADER] Failed to walk %s: %v", dir, err)
		}
	}

	log.Printf("[APPS-LOADER] Enumerated %d applications (%d skipped) in %v", len(apps), skipped, time.Since(start))
	return apps, nil
}

func (l *AppLoader) tryExecOK(tryExec string) bool {
	if tryExec == "" || l.lookPath == nil {
		return true
	}
	if filepath.IsAbs(tryExec) {
		info, err := os.Stat(tryExec)
		return err == nil && !info.IsDir() && info.Mode()&0111 != 0
	}
	_, err := l.lookPath(tryExec)
	return err == nil
}

// desktopID derives the desktop-file ID: the path below the applications directory
// with separators replaced by '-'.
func desktopID(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = filepath.Base(path)
	}
	return strings.ReplaceAll(filepath.ToSlash(rel), "/", "-")
}

// parseDesktopFile reads the [Desktop Entry] group of a single .desktop file.
func (l *AppLoader) parseDesktopFile(path string) (app App, hidden bool, err error) {
	file, err := os.Open(path)
	if err != nil {
		return App{}, false, err
	}
	defer file.Close()

	app = App{File: path}
	inEntry := false
	sawEntry := false
	entryType := ""
	nameRank, genericRank, commentRank := -1, -1, -1

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			inEntry = line[1:len(line)-1] == desktopEntryGroup
			if inEntry {
				sawEntry = true
			}
			continue
		}

		// Desktop Action groups reuse Name/Exec; only the main group describes the app.
		if !inEntry {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = unescapeValue(strings.TrimSpace(value))

		base, locale := splitLocale(key)
		switch base {
		case "Name":
			if rank := l.localeRank(locale); rank > nameRank {
				app.Name, nameRank = value, rank
			}
		case "GenericName":
			if rank := l.localeRank(locale); rank > genericRank {
				app.GenericName, genericRank = value, rank
			}
		case "Comment":
			if rank := l.localeRank(locale); rank > commentRank {
				app.Comment, commentRank = value, rank
			}
		case "Keywords":
			if locale == "" || app.Keywords == nil {
				app.Keywords = splitList(value)
			}
		case "Exec":
			app.Exec = value
		case "TryExec":
			app.TryExec = value
		case "Icon":
			app.Icon = value
		case "Path":
			app.Path = value
		case "Type":
			entryType = value
		case "Terminal":
			app.Terminal = parseBool(value)
		case "DBusActivatable":
			app.DBusActivatable = parseBool(value)
		case "NoDisplay":
			app.NoDisplay = parseBool(value)
		case "Hidden":
			hidden = parseBool(value)
		case "OnlyShowIn":
			app.OnlyShowIn = splitList(value)
		case "NotShowIn":
			app.NotShowIn = splitList(value)
		}
	}

	if err := scanner.Err(); err != nil {
		return App{}, false, fmt.Errorf("failed to read desktop file: %w", err)
	}
	if !sawEntry {
		return App{}, false, fmt.Errorf("invalid desktop file: missing [%s] group", desktopEntryGroup)
	}
	if entryType != "Application" && !hidden {
		return App{}, false, fmt.Errorf("not an application: Type=%q", entryType)
	}

	return app, hidden, nil
}

// localeRank scores a key's locale against the user's locale: 0 for the unlocalized
// key, higher for more specific matches, -1 when it does not apply.
func (l *AppLoader) localeRank(locale string) int {
	if locale == "" {
		return 0
	}
	for i, want := range l.locales {
		if locale == want {
			return len(l.locales) - i
		}
	}
	return -1
}

func splitLocale(key string) (string, string) {
	open := strings.IndexByte(key, '[')
	if open < 0 || !strings.HasSuffix(key, "]") {
		return key, ""
	}
	return key[:open], key[open+1 : len(key)-1]
}

// localeKeys turns LC_ALL/LC_MESSAGES/LANG into lookup keys, most specific first:
// "de_DE.UTF-8@euro" gives [de_DE@euro de_DE de@euro de].
func localeKeys() []string {
	var raw string
	for _, env := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		if v := os.Getenv(env); v != "" {
			raw = v
			break
		}
	}
	if raw == "" || raw == "C" || raw == "POSIX" {
		return nil
	}

	modifier := ""
	if at := strings.IndexByte(raw, '@'); at >= 0 {
		raw, modifier = raw[:at], raw[at:]
	}
	if dot := strings.IndexByte(raw, '.'); dot >= 0 {
		raw = raw[:dot]
	}

	lang, country, hasCountry := strings.Cut(raw, "_")
	var keys []string
	if hasCountry {
		if modifier != "" {
			keys = append(keys, lang+"_"+country+modifier)
		}
		keys = append(keys, lang+"_"+country)
	}
	if modifier != "" {
		keys = append(keys, lang+modifier)
	}
	return append(keys, lang)
}

func unescapeValue(value string) string {
	if !strings.Contains(value, `\`) {
		return value
	}
	var b strings.Builder
	for i := 0; i < len(value); i++ {
		c := value[i]
		if c != '\\' || i+1 == len(value) {
			b.WriteByte(c)
			continue
		}
		i++
		switch value[i] {
		case 's':
			b.WriteByte(' ')
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case '\\':
			b.WriteByte('\\')
		default:
			// keep unknown escapes (e.g. "\;" in lists, quoting in Exec) for later stages
			b.WriteByte('\\')
			b.WriteByte(value[i])
		}
	}
	return b.String()
}

func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ";") {
		item = strings.TrimSpace(strings.ReplaceAll(item, `\`, ""))
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}

func parseBool(value string) bool {
	return strings.EqualFold(value, "true")
}

func containsFold(list []string, s string) bool {
	for _, item := range list {
		if strings.EqualFold(item, s) {
			return true
		}
	}
	return false
}
