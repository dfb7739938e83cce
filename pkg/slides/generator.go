package slides

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/benjaminschreck/go-slides/pkg/slides/render"
)

// generator holds the state of one generation run
type generator struct {
	config *Config
	source *Presentation
	target *Presentation
	set    TemplateSet
	styles MarkupStyles
	logger *Logger
}

// generate builds a deck from the template bytes. The template is opened
// twice: source is only read for lookups, target receives the new slides.
func generate(template []byte, records []Record, config *Config) ([]byte, error) {
	logger := GetLogger()

	if config.Debug {
		logger.Info("Debug mode, generating the sample deck")
		records = SampleRecords()
	}

	if err := ValidateRecords(records); err != nil {
		if config.StrictMode {
			return nil, err
		}
		logger.Warn("Records have issues: %v", err)
	}

	important := config.ImportantColor
	if important == "" {
		important = DefaultImportantColor
	}
	color, err := ParseColor(important)
	if err != nil {
		return nil, err
	}

	source, err := OpenPresentation(bytes.NewReader(template), int64(len(template)))
	if err != nil {
		return nil, err
	}
	target, err := OpenPresentation(bytes.NewReader(template), int64(len(template)))
	if err != nil {
		return nil, err
	}

	g := &generator{
		config: config,
		source: source,
		target: target,
		set:    config.TemplateSet(),
		styles: NewMarkupStyles(color),
		logger: logger,
	}

	logger.Info("Generating %d slides", len(records))

	if config.DeleteExistingSlides {
		logger.Debug("Deleting %d existing slides", target.NumSlides())
		if err := target.RemoveAllSlides(); err != nil {
			return nil, WithContext(err, "delete existing slides", nil)
		}
	}

	for i, record := range records {
		if err := g.addSlide(i, record); err != nil {
			return nil, err
		}
	}

	data, err := target.Bytes()
	if err != nil {
		return nil, err
	}
	logger.Info("Generated %d slides", target.NumSlides())
	return data, nil
}

func (g *generator) addSlide(index int, record Record) error {
	if record == nil {
		return NewRecordError(index, "", "record is nil", nil)
	}
	kind := record.Kind()
	log := g.logger.WithFields(Fields{"index": index, "type": kind})
	log.Debug("Adding slide")
	g.logger.DebugRecord(index, record)

	var template *Slide
	switch lookup := LookupTemplate(g.source, g.set, kind).(type) {
	case Found:
		template = lookup.Slide
	case NotFound:
		if g.config.SkipMissingTemplates {
			log.Warn("Skipping record, template slide %q not found", lookup.Ref)
			return nil
		}
		return NewRecordError(index, string(kind), "no template slide", lookup.Err())
	default:
		return fmt.Errorf("unexpected template lookup result %T", lookup)
	}

	slide, err := g.target.AppendSlide(template)
	if err != nil {
		return NewRecordError(index, string(kind), "failed to copy template slide", err)
	}

	if err := g.fill(slide, record); err != nil {
		return NewRecordError(index, string(kind), "failed to fill slide", err)
	}

	styled := g.style(slide)

	if notes := record.SpeakerNotes(); notes != "" {
		switch err := slide.SetNotes(notes); {
		case errors.Is(err, ErrNoNotesMaster):
			log.Warn("Speaker notes dropped: %v", err)
		case err != nil:
			return NewRecordError(index, string(kind), "failed to set speaker notes", err)
		}
	}

	log.WithFields(Fields{"slide": slide.ID(), "styled": styled}).Debug("Slide added")
	return nil
}

// fill substitutes the placeholders of the record and fills its table.
func (g *generator) fill(slide *Slide, record Record) error {
	placeholders, err := Placeholders(record)
	if err != nil {
		return err
	}
	for _, ph := range placeholders {
		if n := slide.ReplaceAllText(ph.Token, ph.Value); n == 0 {
			g.logger.Debug("Placeholder %s not found on slide %s", ph.Token, slide.PartName())
		}
	}

	if table, ok := record.(TableRecord); ok {
		return g.fillTable(slide, table)
	}
	return nil
}

func (g *generator) fillTable(slide *Slide, record TableRecord) error {
	tables := slide.Tables()
	if len(tables) == 0 {
		return fmt.Errorf("template slide has no table")
	}
	table := tables[0]

	dims := render.NewTableDimensions(table.NumRows(), table.NumColumns(), len(record.Headers), len(record.Rows))
	g.logger.Debug("Resizing table %dx%d to %dx%d", dims.CurrentRows, dims.CurrentCols, dims.TargetRows, dims.TargetCols)
	if err := table.Resize(dims, g.config.ColumnResize); err != nil {
		return err
	}

	for col, header := range record.HeaderStrings() {
		cell, err := table.Cell(0, col)
		if err != nil {
			return err
		}
		cell.SetText(header)
	}
	for row := range record.Rows {
		for col := range record.Headers {
			cell, err := table.Cell(row+1, col)
			if err != nil {
				return err
			}
			cell.SetText(record.CellValue(row, col))
		}
	}
	return nil
}

// style runs the marker styler over the text shapes of the slide, and over
// its table cells when configured.
func (g *generator) style(slide *Slide) int {
	var frames []*TextFrame
	for _, sh := range slide.TextShapes() {
		frames = append(frames, sh.TextFrame())
	}
	if g.config.StyleTableCells {
		for _, t := range slide.Tables() {
			frames = append(frames, t.TextFrames()...)
		}
	}

	styled := 0
	for _, f := range frames {
		styled += ApplyMarkup(f, g.styles)
	}
	return styled
}
