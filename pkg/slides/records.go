package slides

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// SlideKind is the type discriminator of a slide record.
type SlideKind string

const (
	KindTitle   SlideKind = "title"
	KindAgenda  SlideKind = "agenda"
	KindSection SlideKind = "section"
	KindBullet  SlideKind = "bullet"
	KindCompare SlideKind = "compare"
	KindTable   SlideKind = "table"
	KindClosing SlideKind = "closing"
)

// AllSlideKinds lists every supported kind.
var AllSlideKinds = []SlideKind{
	KindTitle,
	KindAgenda,
	KindSection,
	KindBullet,
	KindCompare,
	KindTable,
	KindClosing,
}

// Valid reports whether k is a supported kind.
func (k SlideKind) Valid() bool {
	for _, kind := range AllSlideKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// Record is one slide to generate. The concrete types below are the only
// implementations.
type Record interface {
	Kind() SlideKind
	SpeakerNotes() string
	isRecord()
}

// TitleRecord is the cover slide.
type TitleRecord struct {
	To    string `json:"to" yaml:"to"`
	Title string `json:"title" yaml:"title"`
	Body  string `json:"body" yaml:"body"`
	Date  string `json:"date" yaml:"date"`
	Notes string `json:"notes" yaml:"notes"`
}

// AgendaRecord lists the agenda items.
type AgendaRecord struct {
	Title string   `json:"title" yaml:"title"`
	Items []string `json:"items" yaml:"items"`
	Notes string   `json:"notes" yaml:"notes"`
}

// SectionRecord opens a chapter.
type SectionRecord struct {
	Title string `json:"title" yaml:"title"`
	Notes string `json:"notes" yaml:"notes"`
}

// BulletRecord is a titled bullet list.
type BulletRecord struct {
	Title  string   `json:"title" yaml:"title"`
	Header string   `json:"header" yaml:"header"`
	Items  []string `json:"items" yaml:"items"`
	Notes  string   `json:"notes" yaml:"notes"`
}

// CompareRecord shows two boxes side by side.
type CompareRecord struct {
	Title          string   `json:"title" yaml:"title"`
	Description    string   `json:"description" yaml:"description"`
	LeftBoxHeader  string   `json:"left_box_header" yaml:"left_box_header"`
	LeftBoxItems   []string `json:"left_box_items" yaml:"left_box_items"`
	RightBoxHeader string   `json:"right_box_header" yaml:"right_box_header"`
	RightBoxItems  []string `json:"right_box_items" yaml:"right_box_items"`
	Notes          string   `json:"notes" yaml:"notes"`
}

// TableRecord fills the table of its template slide. Headers and Rows may
// instead come from a spreadsheet via Source.
type TableRecord struct {
	Title       string       `json:"title" yaml:"title"`
	Description string       `json:"description" yaml:"description"`
	Headers     []Cell       `json:"headers" yaml:"headers"`
	Rows        [][]Cell     `json:"rows" yaml:"rows"`
	Source      *TableSource `json:"source,omitempty" yaml:"source,omitempty"`
	Notes       string       `json:"notes" yaml:"notes"`
}

// ClosingRecord is the final slide. It has no placeholders.
type ClosingRecord struct {
	Notes string `json:"notes" yaml:"notes"`
}

func (TitleRecord) Kind() SlideKind   { return KindTitle }
func (AgendaRecord) Kind() SlideKind  { return KindAgenda }
func (SectionRecord) Kind() SlideKind { return KindSection }
func (BulletRecord) Kind() SlideKind  { return KindBullet }
func (CompareRecord) Kind() SlideKind { return KindCompare }
func (TableRecord) Kind() SlideKind   { return KindTable }
func (ClosingRecord) Kind() SlideKind { return KindClosing }

func (r TitleRecord) SpeakerNotes() string   { return r.Notes }
func (r AgendaRecord) SpeakerNotes() string  { return r.Notes }
func (r SectionRecord) SpeakerNotes() string { return r.Notes }
func (r BulletRecord) SpeakerNotes() string  { return r.Notes }
func (r CompareRecord) SpeakerNotes() string { return r.Notes }
func (r TableRecord) SpeakerNotes() string   { return r.Notes }
func (r ClosingRecord) SpeakerNotes() string { return r.Notes }

func (TitleRecord) isRecord()   {}
func (AgendaRecord) isRecord()  {}
func (SectionRecord) isRecord() {}
func (BulletRecord) isRecord()  {}
func (CompareRecord) isRecord() {}
func (TableRecord) isRecord()   {}
func (ClosingRecord) isRecord() {}

// HeaderStrings returns the headers as plain strings.
func (r TableRecord) HeaderStrings() []string {
	out := make([]string, len(r.Headers))
	for i, h := range r.Headers {
		out[i] = string(h)
	}
	return out
}

// CellValue returns the data cell at row, col. Missing cells are "".
func (r TableRecord) CellValue(row, col int) string {
	if row < 0 || row >= len(r.Rows) {
		return ""
	}
	cells := r.Rows[row]
	if col < 0 || col >= len(cells) {
		return ""
	}
	return string(cells[col])
}

// Placeholder is one token substitution on a slide.
type Placeholder struct {
	Token string
	Value string
}

func placeholder(name, value string) Placeholder {
	return Placeholder{Token: "{{" + name + "}}", Value: value}
}

func joinItems(items []string) string {
	return strings.Join(items, "\n")
}

// Placeholders returns the token substitutions for a record. List fields are
// joined with newlines, one paragraph per item.
func Placeholders(record Record) ([]Placeholder, error) {
	switch r := record.(type) {
	case TitleRecord:
		return []Placeholder{
			placeholder("to", r.To),
			placeholder("title", r.Title),
			placeholder("body", r.Body),
			placeholder("date", r.Date),
		}, nil
	case AgendaRecord:
		return []Placeholder{
			placeholder("title", r.Title),
			placeholder("items", joinItems(r.Items)),
		}, nil
	case SectionRecord:
		return []Placeholder{
			placeholder("title", r.Title),
		}, nil
	case BulletRecord:
		return []Placeholder{
			placeholder("title", r.Title),
			placeholder("header", r.Header),
			placeholder("items", joinItems(r.Items)),
		}, nil
	case CompareRecord:
		return []Placeholder{
			placeholder("title", r.Title),
			placeholder("description", r.Description),
			placeholder("left_box_header", r.LeftBoxHeader),
			placeholder("left_box_items", joinItems(r.LeftBoxItems)),
			placeholder("right_box_header", r.RightBoxHeader),
			placeholder("right_box_items", joinItems(r.RightBoxItems)),
		}, nil
	case TableRecord:
		return []Placeholder{
			placeholder("title", r.Title),
			placeholder("description", r.Description),
		}, nil
	case ClosingRecord:
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported record type %T", record)
	}
}

// Cell is a table cell value. It decodes from any scalar; null becomes "".
type Cell string

// UnmarshalJSON accepts strings, numbers, booleans and null.
func (c *Cell) UnmarshalJSON(data []byte) error {
	d := json.NewDecoder(bytes.NewReader(data))
	d.UseNumber()

	var v interface{}
	if err := d.Decode(&v); err != nil {
		return err
	}

	switch x := v.(type) {
	case nil:
		*c = ""
	case string:
		*c = Cell(x)
	case json.Number:
		*c = Cell(x.String())
	case bool:
		*c = Cell(strconv.FormatBool(x))
	default:
		return fmt.Errorf("table cell must be a scalar, got %T", v)
	}
	return nil
}

// UnmarshalYAML accepts any scalar node.
func (c *Cell) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: table cell must be a scalar", node.Line)
	}
	if node.Tag == "!!null" {
		*c = ""
		return nil
	}
	*c = Cell(node.Value)
	return nil
}

// UnmarshalYAML decodes a table record. Headers and rows are read node by
// node since yaml.v3 drops null entries from a sequence of scalars.
func (r *TableRecord) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		Title       string       `yaml:"title"`
		Description string       `yaml:"description"`
		Headers     yaml.Node    `yaml:"headers"`
		Rows        yaml.Node    `yaml:"rows"`
		Source      *TableSource `yaml:"source"`
		Notes       string       `yaml:"notes"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}

	headers, err := cellsFromNode(&raw.Headers)
	if err != nil {
		return err
	}
	rowNodes, err := sequenceItems(&raw.Rows)
	if err != nil {
		return err
	}
	var rows [][]Cell
	for _, rowNode := range rowNodes {
		row, err := cellsFromNode(rowNode)
		if err != nil {
			return err
		}
		rows = append(rows, row)
	}

	*r = TableRecord{
		Title:       raw.Title,
		Description: raw.Description,
		Headers:     headers,
		Rows:        rows,
		Source:      raw.Source,
		Notes:       raw.Notes,
	}
	return nil
}

// sequenceItems returns the entries of a sequence node. An absent or null
// node has none.
func sequenceItems(node *yaml.Node) ([]*yaml.Node, error) {
	if node.Kind == yaml.AliasNode {
		node = node.Alias
	}
	switch {
	case node.Kind == 0, node.Kind == yaml.ScalarNode && node.Tag == "!!null":
		return nil, nil
	case node.Kind != yaml.SequenceNode:
		return nil, fmt.Errorf("line %d: expected a list", node.Line)
	}
	return node.Content, nil
}

func cellsFromNode(node *yaml.Node) ([]Cell, error) {
	items, err := sequenceItems(node)
	if err != nil {
		return nil, err
	}
	if items == nil {
		return nil, nil
	}
	cells := make([]Cell, len(items))
	for i, item := range items {
		if item.Kind == yaml.AliasNode {
			item = item.Alias
		}
		if err := cells[i].UnmarshalYAML(item); err != nil {
			return nil, err
		}
	}
	return cells, nil
}

// Cells converts plain strings into cells.
func Cells(values ...string) []Cell {
	out := make([]Cell, len(values))
	for i, v := range values {
		out[i] = Cell(v)
	}
	return out
}
