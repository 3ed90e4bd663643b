package overlay

import (
	"strings"
	"testing"

	"github.com/chess10kp/locus-overlay/internal/apps"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func catalogOf(t *testing.T, descriptors ...apps.App) Catalog {
	t.Helper()
	return BuildCatalog(&fakeSource{snapshots: [][]apps.App{descriptors}})
}

// referenceFilter is the set-builder definition, kept deliberately naive.
func referenceFilter(catalog Catalog, query string) VisibleSet {
	visible := VisibleSet{}
	q := asciiLower(query)
	for i, e := range catalog {
		if query == "" || strings.Contains(asciiLower(e.Name), q) || strings.Contains(asciiLower(e.ID), q) {
			visible = append(visible, i)
		}
	}
	return visible
}

func TestFilterMatchesNameOrID(t *testing.T) {
	catalog := catalogOf(t,
		app("firefox.desktop", "Firefox"),
		app("org.gnome.Nautilus.desktop", "Files"),
		app("gimp.desktop", "GIMP"),
		app("org.kde.konsole.desktop", "Konsole"),
	)

	testCases := []struct {
		query string
		want  VisibleSet
	}{
		{"", VisibleSet{0, 1, 2, 3}},
		{"fi", VisibleSet{0, 1}},
		{"FI", VisibleSet{0, 1}},
		{"nautilus", VisibleSet{1}},
		{"GiMp", VisibleSet{2}},
		{"org.", VisibleSet{1, 3}},
		{".desktop", VisibleSet{0, 1, 2, 3}},
		{"zz", VisibleSet{}},
		{" ", VisibleSet{}},
	}

	for _, tc := range testCases {
		t.Run(tc.query, func(t *testing.T) {
			assert.Equal(t, tc.want, Filter(catalog, tc.query))
		})
	}
}

func TestFilterAgreesWithReferenceAndPreservesOrder(t *testing.T) {
	catalog := catalogOf(t,
		app("zathura.desktop", "Zathura"),
		app("alacritty.desktop", "Alacritty"),
		app("org.mozilla.Thunderbird.desktop", "Thunderbird Mail"),
		app("mpv.desktop", "mpv Media Player"),
		app("signal-desktop.desktop", "Signal"),
		app("code.desktop", "Visual Studio Code"),
	)

	queries := []string{"", "a", "A", "al", "thunder", "MAIL", "desktop", "-", "o", "code", "mpv m", "xyz"}
	for _, q := range queries {
		got := Filter(catalog, q)
		assert.Equal(t, referenceFilter(catalog, q), got, q)
		for i := 1; i < len(got); i++ {
			assert.Less(t, got[i-1], got[i], "visible set must keep catalog order")
		}
		assert.Equal(t, got, Filter(catalog, q), "filter is deterministic")
	}
}

func TestFilterLowersASCIIOnly(t *testing.T) {
	catalog := catalogOf(t,
		app("editor.desktop", "ÉDITEUR"),
		app("browser.desktop", "Browser"),
	)

	assert.Equal(t, VisibleSet{0}, Filter(catalog, "Éditeur"), "non-ASCII bytes compare exactly")
	assert.Equal(t, VisibleSet{}, Filter(catalog, "éditeur"))
	assert.Equal(t, VisibleSet{1}, Filter(catalog, "BROWSER"))
}

func TestASCIILower(t *testing.T) {
	assert.Equal(t, "firefox", asciiLower("FireFox"))
	assert.Equal(t, "already lower", asciiLower("already lower"))
	assert.Equal(t, "Ärger", asciiLower("Ärger"))
	assert.Equal(t, "", asciiLower(""))
}

func TestFilterMemo(t *testing.T) {
	catalog := catalogOf(t, app("firefox.desktop", "Firefox"), app("foot.desktop", "Foot"))

	memo := newFilterMemo(4)
	require.NotNil(t, memo.cache)

	first := memo.filter(catalog, "foo")
	assert.Equal(t, VisibleSet{1}, first)
	assert.Equal(t, 1, memo.cache.Len())

	assert.Equal(t, first, memo.filter(catalog, "foo"))

	memo.reset()
	assert.Equal(t, 0, memo.cache.Len())

	disabled := newFilterMemo(0)
	assert.Nil(t, disabled.cache)
	assert.Equal(t, VisibleSet{0, 1}, disabled.filter(catalog, "f"))
	disabled.reset()
}
