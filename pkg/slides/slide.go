package slides

import (
	"regexp"
	"sort"
	"strconv"

	"github.com/benjaminschreck/go-slides/pkg/slides/xml"
)

var placeholderTokenPattern = regexp.MustCompile(`\{\{[A-Za-z0-9_]+\}\}`)

// Slide is one slide part of a presentation.
type Slide struct {
	pres     *Presentation
	id       uint32
	relID    string
	partName string
	doc      *xml.Node
	rels     *Relationships
	notes    *notesPage
}

// ID returns the slide id from the presentation's slide list.
func (s *Slide) ID() uint32 { return s.id }

// PartName returns the package path of the slide part.
func (s *Slide) PartName() string { return s.partName }

// Name returns the name of the slide's common data, which is where template
// slides keep their lookup name.
func (s *Slide) Name() string {
	return s.root().Path("p:cSld").AttrOr("name", "")
}

// SetName changes the slide name.
func (s *Slide) SetName(name string) {
	if cSld := s.root().Child("p:cSld"); cSld != nil {
		cSld.SetAttr("name", name)
	}
}

// Index returns the zero-based position in the presentation, or -1 once the
// slide has been removed.
func (s *Slide) Index() int {
	if s.pres == nil {
		return -1
	}
	for i, other := range s.pres.slides {
		if other == s {
			return i
		}
	}
	return -1
}

// Ref returns the reference used to look the slide up: its name when set,
// else its id.
func (s *Slide) Ref() string {
	if name := s.Name(); name != "" {
		return name
	}
	return strconv.FormatUint(uint64(s.id), 10)
}

func (s *Slide) root() *xml.Node {
	return s.doc.Root()
}

func (s *Slide) shapeTree() *xml.Node {
	return s.root().Path("p:cSld", "p:spTree")
}

// Shapes returns every shape of the slide, including shapes inside groups.
func (s *Slide) Shapes() []*Shape {
	var out []*Shape
	for _, n := range s.shapeTree().FindAll("p:sp") {
		out = append(out, &Shape{node: n})
	}
	return out
}

// TextShapes returns the shapes that carry a text body.
func (s *Slide) TextShapes() []*Shape {
	var out []*Shape
	for _, sh := range s.Shapes() {
		if sh.HasText() {
			out = append(out, sh)
		}
	}
	return out
}

// Tables returns the tables of the slide in document order.
func (s *Slide) Tables() []*Table {
	var out []*Table
	for _, frame := range s.shapeTree().FindAll("p:graphicFrame") {
		if tbl := frame.Path("a:graphic", "a:graphicData", "a:tbl"); tbl != nil {
			out = append(out, &Table{frame: frame, tbl: tbl})
		}
	}
	return out
}

// TextFrames returns the text bodies of all shapes followed by those of all
// table cells.
func (s *Slide) TextFrames() []*TextFrame {
	var out []*TextFrame
	for _, sh := range s.TextShapes() {
		out = append(out, sh.TextFrame())
	}
	for _, t := range s.Tables() {
		out = append(out, t.TextFrames()...)
	}
	return out
}

// ReplaceAllText replaces find in every text frame of the slide and returns
// the number of replacements.
func (s *Slide) ReplaceAllText(find, replacement string) int {
	count := 0
	for _, f := range s.TextFrames() {
		count += f.ReplaceAll(find, replacement)
	}
	return count
}

// PlaceholderTokens returns the distinct {{name}} tokens found in the slide
// text, sorted.
func (s *Slide) PlaceholderTokens() []string {
	seen := make(map[string]bool)
	for _, f := range s.TextFrames() {
		for _, tok := range placeholderTokenPattern.FindAllString(f.Text(), -1) {
			seen[tok] = true
		}
	}
	tokens := make([]string, 0, len(seen))
	for tok := range seen {
		tokens = append(tokens, tok)
	}
	sort.Strings(tokens)
	return tokens
}

func (s *Slide) flush() error {
	s.pres.setPart(s.partName, s.doc.Bytes())
	if len(s.rels.Relationship) > 0 {
		data, err := s.rels.Marshal()
		if err != nil {
			return NewDocumentError("write relationships", s.partName, err)
		}
		s.pres.setPart(relsPartFor(s.partName), data)
	}
	if s.notes != nil {
		return s.notes.flush(s.pres)
	}
	return nil
}

// Shape is a p:sp element.
type Shape struct {
	node *xml.Node
}

// Name returns the shape name shown in the selection pane.
func (sh *Shape) Name() string {
	return sh.node.Path("p:nvSpPr", "p:cNvPr").AttrOr("name", "")
}

// PlaceholderType returns the placeholder type of the shape. Placeholders
// without an explicit type are "obj".
func (sh *Shape) PlaceholderType() (string, bool) {
	ph := sh.node.Path("p:nvSpPr", "p:nvPr", "p:ph")
	if ph == nil {
		return "", false
	}
	return ph.AttrOr("type", "obj"), true
}

// IsPlaceholder reports whether the shape is a layout placeholder.
func (sh *Shape) IsPlaceholder() bool {
	_, ok := sh.PlaceholderType()
	return ok
}

// HasText reports whether the shape carries a text body.
func (sh *Shape) HasText() bool {
	return sh.node.Child("p:txBody") != nil
}

// TextFrame returns the text body, or nil for shapes without text.
func (sh *Shape) TextFrame() *TextFrame {
	return newTextFrame(sh.node.Child("p:txBody"))
}
