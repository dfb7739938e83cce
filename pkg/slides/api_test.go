package slides

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemplateFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "template.pptx")
	require.NoError(t, os.WriteFile(path, testTemplateBytes(t), 0o644))
	return path
}

func TestEnginePrepareFile(t *testing.T) {
	path := writeTemplateFile(t)

	t.Run("cached", func(t *testing.T) {
		config := testConfig()
		config.CacheMaxSize = 4
		engine := NewWithConfig(config)
		defer engine.Close()

		first, err := engine.PrepareFile(path)
		require.NoError(t, err)
		second, err := engine.PrepareFile(path)
		require.NoError(t, err)
		assert.Same(t, first, second)
		assert.Same(t, config, first.Config())

		engine.Evict(path)
		third, err := engine.PrepareFile(path)
		require.NoError(t, err)
		assert.NotSame(t, first, third)

		// evicted templates are closed
		_, err = first.Generate(nil)
		assert.Error(t, err)

		engine.ClearCache()
		_, err = third.Generate(nil)
		assert.Error(t, err)
	})

	t.Run("uncached", func(t *testing.T) {
		config := testConfig()
		config.CacheMaxSize = 0
		engine := NewWithConfig(config)
		defer engine.Close()

		first, err := engine.PrepareFile(path)
		require.NoError(t, err)
		second, err := engine.PrepareFile(path)
		require.NoError(t, err)
		assert.NotSame(t, first, second)
	})

	t.Run("missing file", func(t *testing.T) {
		engine := NewWithConfig(testConfig())
		defer engine.Close()

		_, err := engine.PrepareFile(filepath.Join(t.TempDir(), "missing.pptx"))
		assert.Error(t, err)
	})

	t.Run("not a presentation", func(t *testing.T) {
		bad := filepath.Join(t.TempDir(), "bad.pptx")
		require.NoError(t, os.WriteFile(bad, []byte("plain text"), 0o644))

		engine := NewWithConfig(testConfig())
		defer engine.Close()

		_, err := engine.PrepareFile(bad)
		require.Error(t, err)
		var cerr *ContextError
		assert.ErrorAs(t, err, &cerr)
	})
}

func TestEngineGenerateFile(t *testing.T) {
	path := writeTemplateFile(t)
	out := filepath.Join(t.TempDir(), "deck.pptx")

	engine := NewWithConfig(testConfig())
	defer engine.Close()

	require.NoError(t, engine.GenerateFile(path, allKindRecords(), out))

	deck, err := OpenPresentationFile(out)
	require.NoError(t, err)
	assert.Equal(t, 7, deck.NumSlides())
	assert.Equal(t, "Review", shapeTexts(deck.Slides()[0])[1])
}

func TestEngineOptions(t *testing.T) {
	base := testConfig()

	engine := NewWithOptions(
		WithConfig(base),
		WithTemplate(KindSection, "Chapter"),
		WithImportantColor("#00FF00"),
		WithCache(0),
	)
	defer engine.Close()

	config := engine.Config()
	assert.Equal(t, "Chapter", config.Templates["section"])
	assert.Equal(t, "title", config.Templates["title"])
	assert.Equal(t, "#00FF00", config.ImportantColor)
	assert.Equal(t, 0, config.CacheMaxSize)

	// options never modify the configuration they started from
	assert.Equal(t, "section", base.Templates["section"])
	assert.Equal(t, DefaultImportantColor, base.ImportantColor)
	assert.Equal(t, 100, base.CacheMaxSize)

	engine.SetConfig(base)
	assert.Same(t, base, engine.Config())
}

func TestEngineGeneratesWithOptions(t *testing.T) {
	path := writeTemplateFile(t)
	engine := NewWithOptions(
		WithConfig(testConfig()),
		WithTemplate(KindSection, "title"),
		WithImportantColor("blue"),
	)
	defer engine.Close()

	tmpl, err := engine.PrepareFile(path)
	require.NoError(t, err)

	r, err := tmpl.Generate([]Record{SectionRecord{Title: "[[Chapter]]"}})
	require.NoError(t, err)
	deck := readDeck(t, r)

	require.Equal(t, 1, deck.NumSlides())
	slide := deck.Slides()[0]
	assert.Equal(t, "title", slide.Name())
	title := slide.TextShapes()[1].TextFrame()
	assert.Equal(t, "Chapter", title.Text())
	assert.Equal(t, "0000FF", title.body.Find("a:srgbClr").AttrOr("val", ""))
}
