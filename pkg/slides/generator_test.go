package slides

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *Config {
	config := DefaultConfig()
	config.LogLevel = "error"
	return config
}

func prepareFixture(t *testing.T, slides []fixtureSlide, config *Config, opts ...fixtureOptions) *PreparedTemplate {
	t.Helper()
	tmpl, err := prepare(bytes.NewReader(buildPPTX(t, slides, opts...)), config)
	require.NoError(t, err)
	t.Cleanup(func() { tmpl.Close() })
	return tmpl
}

func readDeck(t *testing.T, r io.Reader) *Presentation {
	t.Helper()
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	p, err := OpenPresentation(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	return p
}

func generateDeck(t *testing.T, slides []fixtureSlide, records []Record, config *Config, opts ...fixtureOptions) *Presentation {
	t.Helper()
	tmpl := prepareFixture(t, slides, config, opts...)
	r, err := tmpl.Generate(records)
	require.NoError(t, err)
	return readDeck(t, r)
}

func shapeTexts(s *Slide) []string {
	var out []string
	for _, sh := range s.TextShapes() {
		out = append(out, sh.TextFrame().Text())
	}
	return out
}

func tableTexts(t *testing.T, s *Slide) [][]string {
	t.Helper()
	tables := s.Tables()
	require.NotEmpty(t, tables)
	return cellTexts(t, tables[0])
}

func allKindRecords() []Record {
	return []Record{
		TitleRecord{To: "Acme", Title: "Review", Body: "Q3", Date: "2025.08.29"},
		AgendaRecord{Title: "Agenda", Items: []string{"One", "Two"}},
		SectionRecord{Title: "Part 1"},
		BulletRecord{Title: "Points", Header: "Why", Items: []string{"**fast**", "[[safe]]", "plain"}},
		CompareRecord{
			Title: "A vs B", Description: "Choose",
			LeftBoxHeader: "A", LeftBoxItems: []string{"cheap"},
			RightBoxHeader: "B", RightBoxItems: []string{"**quick**", "[[robust]]"},
		},
		TableRecord{
			Title: "Numbers", Description: "Per region",
			Headers: Cells("Region", "Q1", "Q2"),
			Rows: [][]Cell{
				Cells("North", "1", "2"),
				Cells("South", "3"),
				Cells("East", "5", "6"),
			},
		},
		ClosingRecord{},
	}
}

func TestGenerateAllKinds(t *testing.T) {
	deck := generateDeck(t, standardTemplate(), allKindRecords(), testConfig())

	slides := deck.Slides()
	require.Len(t, slides, 7)
	for i, s := range slides {
		assert.Equal(t, uint32(256+i), s.ID())
		assert.Empty(t, s.PlaceholderTokens(), "slide %d", i)
	}

	assert.Equal(t, []string{"Acme", "Review", "Q3", "2025.08.29"}, shapeTexts(slides[0]))
	assert.Equal(t, []string{"Agenda", "One\nTwo"}, shapeTexts(slides[1]))
	assert.Equal(t, []string{"Part 1"}, shapeTexts(slides[2]))
	assert.Equal(t, []string{"Points", "Why", "fast\nsafe\nplain"}, shapeTexts(slides[3]))
	assert.Equal(t, []string{"A vs B", "Choose", "A", "cheap", "B", "quick\nrobust"}, shapeTexts(slides[4]))
	assert.Equal(t, []string{"Numbers", "Per region"}, shapeTexts(slides[5]))
	assert.Equal(t, []string{"Thank you"}, shapeTexts(slides[6]))

	assert.Equal(t, [][]string{
		{"Region", "Q1", "Q2"},
		{"North", "1", "2"},
		{"South", "3", ""},
		{"East", "5", "6"},
	}, tableTexts(t, slides[5]))

	items := slides[3].TextShapes()[2].TextFrame()
	assert.Equal(t, "1", runNamed(t, items, "fast").Child("a:rPr").AttrOr("b", ""))
	assert.Nil(t, runNamed(t, items, "fast").Find("a:solidFill"))
	safe := runNamed(t, items, "safe").Child("a:rPr")
	assert.Equal(t, "1", safe.AttrOr("b", ""))
	assert.Equal(t, "0E7BCF", safe.Path("a:solidFill", "a:srgbClr").AttrOr("val", ""))
	assert.Equal(t, "", runNamed(t, items, "plain").Child("a:rPr").AttrOr("b", ""))
	assert.Equal(t, "2000", runNamed(t, items, "plain").Child("a:rPr").AttrOr("sz", ""))

	// template notes survive when the record has none
	assert.Equal(t, "template notes", slides[6].Notes())
	assert.Equal(t, "", slides[0].Notes())
}

func TestGenerateKeepsRecordOrder(t *testing.T) {
	records := []Record{
		SectionRecord{Title: "One"},
		ClosingRecord{},
		SectionRecord{Title: "Two"},
		SectionRecord{Title: "Three"},
	}
	deck := generateDeck(t, standardTemplate(), records, testConfig())

	var got []string
	for _, s := range deck.Slides() {
		got = append(got, shapeTexts(s)[0])
	}
	assert.Equal(t, []string{"One", "Thank you", "Two", "Three"}, got)
}

func TestGenerateKeepsExistingSlides(t *testing.T) {
	config := testConfig()
	config.DeleteExistingSlides = false

	deck := generateDeck(t, standardTemplate(), []Record{SectionRecord{Title: "Appendix"}}, config)

	require.Equal(t, 8, deck.NumSlides())
	last := deck.Slides()[7]
	assert.Equal(t, uint32(263), last.ID())
	assert.Equal(t, []string{"Appendix"}, shapeTexts(last))
	assert.Equal(t, []string{"{{title}}"}, shapeTexts(deck.Slides()[2]))
}

func TestGenerateEmptyRecords(t *testing.T) {
	deck := generateDeck(t, standardTemplate(), nil, testConfig())
	assert.Equal(t, 0, deck.NumSlides())
}

func TestGenerateMissingTemplate(t *testing.T) {
	template := standardTemplate()[:4]
	records := []Record{
		SectionRecord{Title: "Kept"},
		CompareRecord{Title: "No template"},
		BulletRecord{Title: "Also kept"},
	}

	t.Run("fails", func(t *testing.T) {
		tmpl := prepareFixture(t, template, testConfig())
		_, err := tmpl.Generate(records)
		require.Error(t, err)

		assert.True(t, IsRecordError(err))
		assert.True(t, IsTemplateNotFound(err))

		var rerr *RecordError
		require.True(t, errors.As(err, &rerr))
		assert.Equal(t, 1, rerr.Index)
	})

	t.Run("skips", func(t *testing.T) {
		config := testConfig()
		config.SkipMissingTemplates = true

		deck := generateDeck(t, template, records, config)
		require.Equal(t, 2, deck.NumSlides())
		assert.Equal(t, "Kept", shapeTexts(deck.Slides()[0])[0])
		assert.Equal(t, "Also kept", shapeTexts(deck.Slides()[1])[0])
	})
}

func TestGenerateNilRecord(t *testing.T) {
	tmpl := prepareFixture(t, standardTemplate(), testConfig())
	_, err := tmpl.Generate([]Record{SectionRecord{Title: "a"}, nil})
	assert.True(t, IsRecordError(err))
}

func TestGenerateStrictMode(t *testing.T) {
	records := []Record{TitleRecord{To: "Acme"}}

	config := testConfig()
	config.StrictMode = true
	tmpl := prepareFixture(t, standardTemplate(), config)
	_, err := tmpl.Generate(records)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "got %v", err)
	assert.Equal(t, "records[0].title", verr.Issues[0].Field)

	// lenient mode only logs the issues
	deck := generateDeck(t, standardTemplate(), records, testConfig())
	assert.Equal(t, 1, deck.NumSlides())
}

func TestGenerateDebugMode(t *testing.T) {
	config := testConfig()
	config.Debug = true

	deck := generateDeck(t, standardTemplate(), []Record{SectionRecord{Title: "ignored"}}, config)
	slides := deck.Slides()
	require.Len(t, slides, len(SampleRecords()))

	assert.Equal(t, []string{"章タイトル"}, shapeTexts(slides[2]))
	assert.Equal(t, "アイテム1\nアイテム2\nアイテム3", shapeTexts(slides[3])[2])
	assert.Equal(t, "右ボックスアイテム1\n右ボックスアイテム2\n右ボックスアイテム3", shapeTexts(slides[4])[5])

	table := tableTexts(t, slides[5])
	require.Len(t, table, 4)
	assert.Equal(t, []string{"ヘッダー1", "ヘッダー2", "ヘッダー3", "ヘッダー4"}, table[0])
	assert.Equal(t, "データ4-3", table[3][3])

	for i, s := range slides {
		assert.Equal(t, "スピーカノート", s.Notes(), "slide %d", i)
	}
}

func TestGenerateTemplateMapping(t *testing.T) {
	config := NewConfigWithDefaults(&Config{
		LogLevel:  "error",
		Templates: map[string]string{"section": "256"},
	})

	deck := generateDeck(t, standardTemplate(), []Record{SectionRecord{Title: "Chapter"}}, config)
	require.Equal(t, 1, deck.NumSlides())
	assert.Equal(t, []string{"{{to}}", "Chapter", "{{body}}", "{{date}}"}, shapeTexts(deck.Slides()[0]))
}

func TestGenerateImportantColor(t *testing.T) {
	tests := []struct {
		color string
		want  string
	}{
		{"red", "FF0000"},
		{"#00ff00", "00FF00"},
		{"rgb(1, 2, 3)", "010203"},
		{"", "0E7BCF"},
	}

	for _, tt := range tests {
		t.Run(tt.color, func(t *testing.T) {
			config := testConfig()
			config.ImportantColor = tt.color

			deck := generateDeck(t, standardTemplate(), []Record{SectionRecord{Title: "[[x]]"}}, config)
			frame := frameOf(t, deck.Slides()[0])
			assert.Equal(t, tt.want, frame.body.Find("a:srgbClr").AttrOr("val", ""))
		})
	}

	config := testConfig()
	config.ImportantColor = "not-a-color"
	tmpl := prepareFixture(t, standardTemplate(), config)
	_, err := tmpl.Generate([]Record{SectionRecord{Title: "x"}})
	assert.Error(t, err)
}

func TestGenerateNotes(t *testing.T) {
	t.Run("new notes slide", func(t *testing.T) {
		deck := generateDeck(t, standardTemplate(), []Record{
			SectionRecord{Title: "S", Notes: "line one\nline two"},
			ClosingRecord{Notes: "bye"},
		}, testConfig())

		assert.Equal(t, "line one\nline two", deck.Slides()[0].Notes())
		assert.Equal(t, "bye", deck.Slides()[1].Notes())
	})

	t.Run("without notes master", func(t *testing.T) {
		template := []fixtureSlide{{name: "section", body: textShape(2, "Title", para("{{title}}"))}}
		deck := generateDeck(t, template, []Record{SectionRecord{Title: "S", Notes: "dropped"}}, testConfig(), fixtureOptions{noNotesMaster: true})

		require.Equal(t, 1, deck.NumSlides())
		assert.Equal(t, "", deck.Slides()[0].Notes())
	})
}

func TestGenerateTableResize(t *testing.T) {
	record := TableRecord{
		Title:   "T",
		Headers: Cells("a", "b", "c"),
		Rows:    [][]Cell{Cells("1", "2", "3")},
	}

	t.Run("fixed widths grow the frame", func(t *testing.T) {
		deck := generateDeck(t, standardTemplate(), []Record{record}, testConfig())
		table := deck.Slides()[0].Tables()[0]

		assert.Equal(t, []int{1000, 1000, 1000}, table.ColumnWidths())
		cx, _ := frameExtent(table)
		assert.Equal(t, "3000", cx)
	})

	t.Run("redistribute keeps the frame width", func(t *testing.T) {
		config := testConfig()
		config.ColumnResize = ColumnResizeRedistribute

		deck := generateDeck(t, standardTemplate(), []Record{record}, config)
		table := deck.Slides()[0].Tables()[0]

		total := 0
		for _, w := range table.ColumnWidths() {
			total += w
		}
		assert.Equal(t, 2000, total)
		cx, _ := frameExtent(table)
		assert.Equal(t, "2000", cx)
	})

	t.Run("smaller data keeps the template size", func(t *testing.T) {
		small := TableRecord{Title: "T", Headers: Cells("only")}
		deck := generateDeck(t, standardTemplate(), []Record{small}, testConfig())

		assert.Equal(t, [][]string{{"only", "H2"}, {"a", "b"}}, tableTexts(t, deck.Slides()[0]))
	})
}

func TestGenerateStyleTableCells(t *testing.T) {
	record := TableRecord{Title: "T", Headers: Cells("**h**", "x"), Rows: [][]Cell{Cells("[[v]]", "y")}}

	deck := generateDeck(t, standardTemplate(), []Record{record}, testConfig())
	assert.Equal(t, "**h**", tableTexts(t, deck.Slides()[0])[0][0])

	config := testConfig()
	config.StyleTableCells = true
	deck = generateDeck(t, standardTemplate(), []Record{record}, config)

	table := deck.Slides()[0].Tables()[0]
	assert.Equal(t, [][]string{{"h", "x"}, {"v", "y"}}, cellTexts(t, table))
	cell, err := table.Cell(1, 0)
	require.NoError(t, err)
	assert.Equal(t, "0E7BCF", cell.node.Find("a:srgbClr").AttrOr("val", ""))
}

func TestGenerateConcurrent(t *testing.T) {
	tmpl := prepareFixture(t, standardTemplate(), testConfig())

	const workers = 8
	results := make([][]byte, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r, err := tmpl.Generate([]Record{
				SectionRecord{Title: fmt.Sprintf("**Deck %d**", i)},
				TableRecord{Title: "T", Headers: Cells("a", "b", "c"), Rows: [][]Cell{Cells(fmt.Sprint(i))}},
			})
			if err != nil {
				errs[i] = err
				return
			}
			results[i], errs[i] = io.ReadAll(r)
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		deck := readDeck(t, bytes.NewReader(results[i]))
		require.Equal(t, 2, deck.NumSlides())
		assert.Equal(t, fmt.Sprintf("Deck %d", i), shapeTexts(deck.Slides()[0])[0])
		assert.Equal(t, fmt.Sprint(i), tableTexts(t, deck.Slides()[1])[1][0])
	}

	// the prepared template itself is never modified
	assert.Equal(t, 7, tmpl.Presentation().NumSlides())
}

func TestPreparedTemplate(t *testing.T) {
	t.Run("generate file", func(t *testing.T) {
		tmpl := prepareFixture(t, standardTemplate(), testConfig())
		path := filepath.Join(t.TempDir(), "deck.pptx")

		require.NoError(t, tmpl.GenerateFile(allKindRecords(), path))

		deck, err := OpenPresentationFile(path)
		require.NoError(t, err)
		assert.Equal(t, 7, deck.NumSlides())
	})

	t.Run("config override", func(t *testing.T) {
		tmpl := prepareFixture(t, standardTemplate(), testConfig())
		config := testConfig()
		config.DeleteExistingSlides = false

		r, err := tmpl.GenerateWithConfig([]Record{ClosingRecord{}}, config)
		require.NoError(t, err)
		assert.Equal(t, 8, readDeck(t, r).NumSlides())
	})

	t.Run("closed", func(t *testing.T) {
		tmpl := prepareFixture(t, standardTemplate(), testConfig())
		require.NoError(t, tmpl.Close())
		require.NoError(t, tmpl.Close())

		_, err := tmpl.Generate(nil)
		assert.Error(t, err)
	})

	t.Run("nil template", func(t *testing.T) {
		var tmpl *PreparedTemplate
		_, err := tmpl.GenerateWithConfig(nil, nil)
		assert.Error(t, err)
	})

	t.Run("invalid package", func(t *testing.T) {
		_, err := prepare(bytes.NewReader([]byte("not a pptx")), testConfig())
		assert.Error(t, err)
	})
}
