package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withCustomCatalog restores the embedded catalog after the test.
func withCustomCatalog(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		require.NoError(t, SetCustom(nil))
	})
}

const customYAML = `
categories:
  bgm:
    title: {en: Music, ja: ＢＧＭ}
    entries:
      - {id: 7, name: 独自曲}
functions:
  - name: bgm
    description: {en: Play music.}
    params:
      - {name: name, category: bgm}
attribute_types:
  - {name: 独自属性}
`

func TestDefault(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	t.Run("CategoriesFromManual", func(t *testing.T) {
		for _, name := range []string{
			"person", "hub", "city", "castle", "village", "sea_fort", "power",
			"lords", "merchant", "ninja", "pirate", "army", "item", "region",
			"country", "store_name", "school", "position", "kanshoku", "kani",
			"koueki_area", "weather", "image_effect", "army_target", "army_plan",
			"personal_category", "scene", "field_background", "event_still",
			"bgm", "se",
		} {
			cat, ok := c.Category(name)
			if assert.True(t, ok, name) {
				assert.NotEmpty(t, cat.Entries, name)
				assert.False(t, cat.Title.IsZero(), name)
			}
		}
	})

	t.Run("Keywords", func(t *testing.T) {
		assert.NotEmpty(t, c.AttributeTypes)
		assert.NotEmpty(t, c.TriggerTypes)
		assert.NotEmpty(t, c.ClassTypes)
		assert.NotEmpty(t, c.Operators)
		assert.NotEmpty(t, c.EventSnippets)
	})

	t.Run("Cached", func(t *testing.T) {
		again, err := Default()
		require.NoError(t, err)
		assert.Same(t, c, again)
	})
}

func TestFunction(t *testing.T) {
	c := MustDefault()

	f, ok := c.Function("army_order")
	require.True(t, ok)
	assert.Equal(t, "army_order(${1:army}, ${2:plan}, ${3:target})", f.Snippet())
	assert.Equal(t, "army_order(army army, plan army_plan, target army_target)", f.Signature())

	f, ok = c.Function("wait")
	require.True(t, ok)
	assert.Equal(t, "wait(frames)", f.Signature())

	_, ok = c.Function("nope")
	assert.False(t, ok)
}

func TestEntrySortText(t *testing.T) {
	assert.Equal(t, "0000", Entry{ID: 0}.SortText())
	assert.Equal(t, "0042", Entry{ID: 42}.SortText())
	assert.Equal(t, "12345", Entry{ID: 12345}.SortText())
}

func TestParse(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		c, err := Parse([]byte(customYAML))
		require.NoError(t, err)
		assert.Equal(t, []string{"bgm"}, c.CategoryNames())
	})

	t.Run("Malformed", func(t *testing.T) {
		_, err := Parse([]byte("categories: ["))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to decode catalog")
	})

	t.Run("DuplicateIDAndUnknownCategory", func(t *testing.T) {
		_, err := Parse([]byte(`
categories:
  se:
    entries:
      - {id: 1, name: a}
      - {id: 1, name: b}
functions:
  - name: bgm
    params:
      - {name: name, category: music}
`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate entry id 1 in category se")
		assert.Contains(t, err.Error(), "function bgm references unknown category music")
	})
}

func TestSetCustom(t *testing.T) {
	withCustomCatalog(t)

	t.Run("Override", func(t *testing.T) {
		require.NoError(t, SetCustom([]byte(customYAML)))
		c, err := Default()
		require.NoError(t, err)
		cat, ok := c.Category("bgm")
		require.True(t, ok)
		assert.Equal(t, []Entry{{ID: 7, Name: "独自曲"}}, cat.Entries)
	})

	t.Run("InvalidKeepsPrevious", func(t *testing.T) {
		require.Error(t, SetCustom([]byte("categories: [")))
		c, err := Default()
		require.NoError(t, err)
		_, ok := c.Category("bgm")
		assert.True(t, ok)
		assert.Len(t, c.AttributeTypes, 1)
	})

	t.Run("Reset", func(t *testing.T) {
		require.NoError(t, SetCustom(nil))
		c, err := Default()
		require.NoError(t, err)
		_, ok := c.Category("person")
		assert.True(t, ok)
	})
}

func TestLoadCustomFile(t *testing.T) {
	withCustomCatalog(t)

	t.Run("Missing", func(t *testing.T) {
		err := LoadCustomFile(filepath.Join(t.TempDir(), "missing.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to load custom catalog")
	})

	t.Run("Valid", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "catalog.yaml")
		require.NoError(t, os.WriteFile(path, []byte(customYAML), 0o644))
		require.NoError(t, LoadCustomFile(path))
		assert.Len(t, MustDefault().AttributeTypes, 1)
	})
}

func TestWatch(t *testing.T) {
	withCustomCatalog(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, Watch(ctx, path, nil))

	require.NoError(t, os.WriteFile(path, []byte(customYAML), 0o644))
	require.Eventually(t, func() bool {
		return len(MustDefault().AttributeTypes) == 1
	}, 5*time.Second, 10*time.Millisecond)
}
