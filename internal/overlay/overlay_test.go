package overlay

import (
	"errors"
	"fmt"
	"testing"

	"github.com/chess10kp/locus-overlay/internal/apps"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func app(id, name string) apps.App {
	return apps.App{ID: id, Name: name, Exec: id, Visible: true}
}

type fakeSource struct {
	snapshots [][]apps.App
	err       error
	calls     int
}

func (s *fakeSource) Enumerate() ([]apps.App, error) {
	i := s.calls
	if i >= len(s.snapshots) {
		i = len(s.snapshots) - 1
	}
	s.calls++
	if i < 0 {
		return nil, s.err
	}
	out := make([]apps.App, len(s.snapshots[i]))
	copy(out, s.snapshots[i])
	return out, s.err
}

type fakeLauncher struct {
	launched []string
	err      error
}

func (l *fakeLauncher) Launch(a *apps.App) error {
	l.launched = append(l.launched, a.ID)
	return l.err
}

type recordingSurface struct {
	events []string
}

func (s *recordingSurface) Opened(catalog Catalog) {
	s.events = append(s.events, fmt.Sprintf("opened:%d", len(catalog)))
}

func (s *recordingSurface) Closed() {
	s.events = append(s.events, "closed")
}

func (s *recordingSurface) VisibleChanged(visible VisibleSet) {
	s.events = append(s.events, fmt.Sprintf("visible:%v", []int(visible)))
}

func (s *recordingSurface) FocusChanged(target FocusTarget) {
	s.events = append(s.events, "focus:"+target.String())
}

func threeApps() []apps.App {
	return []apps.App{
		app("firefox.desktop", "Firefox"),
		app("org.gnome.Nautilus.desktop", "Files"),
		app("gimp.desktop", "GIMP"),
	}
}

func newTestController(t *testing.T, snapshots ...[]apps.App) (*Controller, *fakeLauncher, *recordingSurface) {
	t.Helper()
	launcher := &fakeLauncher{}
	surface := &recordingSurface{}
	c := NewController(&fakeSource{snapshots: snapshots}, launcher,
		WithSurface(surface), WithFilterCacheSize(16))
	return c, launcher, surface
}

func visibleNames(c *Controller) []string {
	var names []string
	for _, e := range c.CurrentVisibleSet() {
		names = append(names, e.Name)
	}
	return names
}

func TestOpenShowsFullCatalogWithSearchFocus(t *testing.T) {
	c, _, surface := newTestController(t, threeApps())
	assert.Equal(t, Closed, c.State())

	c.Toggle()

	require.Equal(t, Open, c.State())
	assert.Equal(t, "", c.Query())
	assert.Equal(t, []string{"Firefox", "Files", "GIMP"}, visibleNames(c))
	assert.Equal(t, SearchField(), c.Focus())
	assert.Equal(t, []string{"opened:3", "visible:[0 1 2]", "focus:SearchField"}, surface.events)
}

func TestTypingFiltersAndTabWraps(t *testing.T) {
	c, _, _ := newTestController(t, threeApps())
	c.Toggle()

	c.SetQuery("fi")
	assert.Equal(t, []string{"Firefox", "Files"}, visibleNames(c))

	assert.True(t, c.HandleKey(KeyTab))
	assert.Equal(t, Entry(0), c.Focus())
	assert.Equal(t, "Firefox", c.FocusedEntry().Name)

	assert.True(t, c.HandleKey(KeyTab))
	assert.Equal(t, Entry(1), c.Focus())
	assert.Equal(t, "Files", c.FocusedEntry().Name)

	assert.True(t, c.HandleKey(KeyTab))
	assert.Equal(t, Entry(0), c.Focus(), "tab from the last entry wraps to the first")
}

func TestBackTabTraversesBackwards(t *testing.T) {
	c, _, _ := newTestController(t, threeApps())
	c.Toggle()

	assert.True(t, c.HandleKey(KeyBackTab))
	assert.Equal(t, Entry(2), c.Focus())
	assert.True(t, c.HandleKey(KeyBackTab))
	assert.Equal(t, Entry(1), c.Focus())
	c.HandleKey(KeyBackTab)
	c.HandleKey(KeyBackTab)
	assert.Equal(t, Entry(2), c.Focus())
}

func TestEscapeClosesFromAnyFocus(t *testing.T) {
	for tabs := 0; tabs < 4; tabs++ {
		t.Run(fmt.Sprintf("after %d tabs", tabs), func(t *testing.T) {
			c, launcher, _ := newTestController(t, threeApps())
			c.Toggle()
			c.SetQuery("fi")
			for i := 0; i < tabs; i++ {
				c.HandleKey(KeyTab)
			}

			assert.True(t, c.HandleKey(KeyEscape))
			assert.Equal(t, Closed, c.State())
			assert.Empty(t, launcher.launched)
		})
	}
}

func TestTabWithEmptyCatalogKeepsSearchFocus(t *testing.T) {
	c, _, surface := newTestController(t, []apps.App{})
	c.Toggle()
	surface.events = nil

	assert.True(t, c.HandleKey(KeyTab), "tab is always consumed")
	assert.Equal(t, SearchField(), c.Focus())
	assert.Empty(t, surface.events)
}

func TestEnterWithNothingVisibleStaysOpen(t *testing.T) {
	c, launcher, _ := newTestController(t, threeApps())
	c.Toggle()
	c.SetQuery("zz")
	require.Empty(t, c.VisibleSet())

	assert.False(t, c.HandleKey(KeyEnter), "enter propagates when there is nothing to launch")
	assert.Equal(t, Open, c.State())
	assert.Empty(t, launcher.launched)
}

func TestEnterFromSearchLaunchesFirstVisible(t *testing.T) {
	c, launcher, surface := newTestController(t, threeApps())
	c.Toggle()
	c.SetQuery("gimp")

	assert.True(t, c.HandleKey(KeyEnter))
	assert.Equal(t, []string{"gimp.desktop"}, launcher.launched)
	assert.Equal(t, Closed, c.State())
	assert.Equal(t, "closed", surface.events[len(surface.events)-1])
}

func TestEnterOnFocusedEntryActivatesIt(t *testing.T) {
	c, launcher, _ := newTestController(t, threeApps())
	c.Toggle()
	c.HandleKey(KeyTab)
	c.HandleKey(KeyTab)

	assert.True(t, c.HandleKey(KeyEnter))
	assert.Equal(t, []string{"org.gnome.Nautilus.desktop"}, launcher.launched)
	assert.Equal(t, Closed, c.State())
}

func TestArrowAndOtherKeysAreNotConsumed(t *testing.T) {
	c, _, _ := newTestController(t, threeApps())
	c.Toggle()

	for _, k := range []Key{KeyUp, KeyDown, KeyLeft, KeyRight, KeyOther} {
		assert.False(t, c.HandleKey(k), k.String())
	}
	assert.Equal(t, Open, c.State())
}

func TestKeysAndQueryIgnoredWhileClosed(t *testing.T) {
	c, launcher, _ := newTestController(t, threeApps())

	assert.False(t, c.HandleKey(KeyEscape))
	assert.False(t, c.HandleKey(KeyEnter))
	c.SetQuery("fi")
	assert.Equal(t, "", c.Query())
	assert.Empty(t, launcher.launched)

	c.Toggle()
	c.SetQuery("fi")
	c.Toggle()
	c.SetQuery("gimp")
	assert.Equal(t, "fi", c.Query(), "query is not mutated while closed")
}

func TestReopenRebuildsCatalogAndResetsQuery(t *testing.T) {
	first := threeApps()
	second := append(threeApps()[:2], app("foot.desktop", "Foot"))
	source := &fakeSource{snapshots: [][]apps.App{first, second}}
	c := NewController(source, &fakeLauncher{}, WithFilterCacheSize(16))

	c.Toggle()
	c.SetQuery("gimp")
	c.HandleKey(KeyTab)
	require.Equal(t, []string{"GIMP"}, visibleNames(c))

	c.Toggle()
	require.Equal(t, Closed, c.State())

	c.Toggle()
	assert.Equal(t, 2, source.calls)
	assert.Equal(t, "", c.Query())
	assert.Equal(t, SearchField(), c.Focus())
	assert.Equal(t, []string{"Firefox", "Files", "Foot"}, visibleNames(c))

	c.SetQuery("gimp")
	assert.Empty(t, c.VisibleSet(), "memoized results from the previous open must not leak")
}

func TestLaunchFailureIsReportedAndStillCloses(t *testing.T) {
	launcher := &fakeLauncher{err: errors.New("exec: not found")}
	var reported []string
	c := NewController(&fakeSource{snapshots: [][]apps.App{threeApps()}}, launcher,
		WithLaunchErrorHandler(func(e AppEntry, err error) {
			reported = append(reported, e.ID+": "+err.Error())
		}))

	c.Toggle()
	assert.True(t, c.HandleKey(KeyEnter))
	assert.Equal(t, Closed, c.State())
	assert.Equal(t, []string{"firefox.desktop: exec: not found"}, reported)
}

func TestFocusFollowsEntryAcrossQueryChanges(t *testing.T) {
	c, _, _ := newTestController(t, threeApps())
	c.Toggle()
	c.HandleKey(KeyTab)
	c.HandleKey(KeyTab)
	require.Equal(t, "Files", c.FocusedEntry().Name)

	c.SetQuery("files")
	assert.Equal(t, Entry(0), c.Focus())
	assert.Equal(t, "Files", c.FocusedEntry().Name)

	c.SetQuery("gimp")
	assert.Equal(t, SearchField(), c.Focus(), "focus returns to the search field when its entry disappears")
}

func TestNoteFocusAndPointerActivation(t *testing.T) {
	c, launcher, _ := newTestController(t, threeApps())
	c.Toggle()
	c.SetQuery("i") // Firefox, Files, GIMP all contain "i"

	c.NoteEntryFocus(2)
	assert.Equal(t, Entry(2), c.Focus())
	c.NoteSearchFocus()
	assert.Equal(t, SearchField(), c.Focus())

	c.SetQuery("fi")
	assert.False(t, c.ActivateCatalogEntry(2), "hidden cells cannot be activated")
	assert.Equal(t, Open, c.State())

	assert.True(t, c.ActivateCatalogEntry(1))
	assert.Equal(t, []string{"org.gnome.Nautilus.desktop"}, launcher.launched)
	assert.Equal(t, Closed, c.State())
}

func TestApplyRequests(t *testing.T) {
	c, _, _ := newTestController(t, threeApps())

	c.Apply(RequestHide)
	assert.Equal(t, Closed, c.State())
	c.Apply(RequestShow)
	assert.Equal(t, Open, c.State())
	c.Apply(RequestShow)
	assert.Equal(t, Open, c.State())
	c.Apply(RequestToggle)
	assert.Equal(t, Closed, c.State())
	c.Apply(RequestToggle)
	c.Apply(RequestHide)
	assert.Equal(t, Closed, c.State())
}

func TestBuildCatalogDropsHiddenAndIncompleteEntries(t *testing.T) {
	hidden := app("hidden.desktop", "Hidden")
	hidden.Visible = false
	noName := app("noname.desktop", "")
	noExec := app("noexec.desktop", "No Exec")
	noExec.Exec = ""
	dbusOnly := app("org.example.Dbus.desktop", "DBus")
	dbusOnly.Exec = ""
	dbusOnly.DBusActivatable = true

	source := &fakeSource{snapshots: [][]apps.App{{
		app("a.desktop", "A"), hidden, noName, noExec, dbusOnly, app("b.desktop", "B"),
	}}}

	catalog := BuildCatalog(source)
	var got []string
	for _, e := range catalog {
		got = append(got, e.ID)
		require.NotNil(t, e.Descriptor)
	}
	assert.Equal(t, []string{"a.desktop", "org.example.Dbus.desktop", "b.desktop"}, got)
}

func TestBuildCatalogKeepsPartialResultOnError(t *testing.T) {
	source := &fakeSource{
		snapshots: [][]apps.App{{app("a.desktop", "A")}},
		err:       errors.New("permission denied"),
	}
	assert.Len(t, BuildCatalog(source), 1)
}
