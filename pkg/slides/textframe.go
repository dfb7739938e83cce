package slides

import (
	"strings"
	"unicode/utf8"

	"github.com/benjaminschreck/go-slides/pkg/slides/xml"
)

// In frame text, paragraphs are separated by "\n" and an a:br inside a
// paragraph reads as "\v". Offsets into frame text count runes.
const (
	paragraphBreak = "\n"
	lineBreak      = "\v"
)

// fill elements that may appear in a:rPr, all replaced by a new solid fill
var fillElements = []string{"a:noFill", "a:solidFill", "a:gradFill", "a:blipFill", "a:pattFill", "a:grpFill"}

// TextStyle is character formatting applied to a range of text.
type TextStyle struct {
	Bold bool
	// Color is RRGGBB hex. Empty leaves the color alone.
	Color string
}

// IsZero reports whether the style changes nothing.
func (s TextStyle) IsZero() bool {
	return !s.Bold && s.Color == ""
}

func (s TextStyle) applyTo(rPr *xml.Node) {
	if s.Bold {
		rPr.SetAttr("b", "1")
	}
	if s.Color != "" {
		setSolidFill(rPr, s.Color)
	}
}

func setSolidFill(rPr *xml.Node, hex string) {
	for _, name := range fillElements {
		for _, c := range rPr.ChildrenNamed(name) {
			rPr.RemoveChild(c)
		}
	}
	fill := xml.NewElement("a:solidFill")
	fill.AppendChild(xml.NewElement("a:srgbClr", "val", hex))
	// a:ln is the only child that precedes the fill
	if ln := rPr.Child("a:ln"); ln != nil {
		rPr.InsertAfter(fill, ln)
	} else {
		rPr.PrependChild(fill)
	}
}

// TextFrame is a text body (p:txBody or a:txBody) of a shape or table cell.
type TextFrame struct {
	body *xml.Node
}

func newTextFrame(body *xml.Node) *TextFrame {
	if body == nil {
		return nil
	}
	return &TextFrame{body: body}
}

func (f *TextFrame) paragraphs() []*xml.Node {
	return f.body.ChildrenNamed("a:p")
}

type segmentKind int

const (
	segmentRun segmentKind = iota
	segmentBreak
	segmentField
)

// segment is one text-bearing child of a paragraph
type segment struct {
	node *xml.Node
	kind segmentKind
	text string
}

func paragraphSegments(p *xml.Node) []segment {
	var segs []segment
	for _, c := range p.Elements() {
		switch c.Name {
		case "a:r":
			segs = append(segs, segment{node: c, kind: segmentRun, text: textOf(c.Child("a:t"))})
		case "a:br":
			segs = append(segs, segment{node: c, kind: segmentBreak, text: lineBreak})
		case "a:fld":
			segs = append(segs, segment{node: c, kind: segmentField, text: textOf(c.Child("a:t"))})
		}
	}
	return segs
}

func paragraphText(p *xml.Node) string {
	var sb strings.Builder
	for _, seg := range paragraphSegments(p) {
		sb.WriteString(seg.text)
	}
	return sb.String()
}

func textOf(n *xml.Node) string {
	if n == nil {
		return ""
	}
	return n.Text()
}

func setRunText(r *xml.Node, s string) {
	t := r.Child("a:t")
	if t == nil {
		t = xml.NewElement("a:t")
		r.AppendChild(t)
	}
	t.SetText(s)
}

// runProperties returns the a:rPr of a run or field, creating it when absent.
func runProperties(r *xml.Node) *xml.Node {
	if rPr := r.Child("a:rPr"); rPr != nil {
		return rPr
	}
	rPr := xml.NewElement("a:rPr")
	r.PrependChild(rPr)
	return rPr
}

// Text returns the plain text of the frame.
func (f *TextFrame) Text() string {
	paras := f.paragraphs()
	texts := make([]string, len(paras))
	for i, p := range paras {
		texts[i] = paragraphText(p)
	}
	return strings.Join(texts, paragraphBreak)
}

// SetText replaces the text of the frame. Each line becomes a paragraph that
// keeps the paragraph properties and first run properties of the paragraph
// at the same position, or of the last paragraph when there are more lines
// than before.
func (f *TextFrame) SetText(s string) {
	old := f.paragraphs()
	lines := strings.Split(s, paragraphBreak)

	var ref *xml.Node
	if len(old) > 0 {
		ref = old[0]
	}
	for i, line := range lines {
		var base *xml.Node
		if len(old) > 0 {
			base = old[min(i, len(old)-1)]
		}
		f.body.InsertBefore(buildParagraph(base, line), ref)
	}
	for _, p := range old {
		f.body.RemoveChild(p)
	}
}

func buildParagraph(base *xml.Node, line string) *xml.Node {
	p := xml.NewElement("a:p")

	var pPr, rPr, endRPr *xml.Node
	if base != nil {
		pPr = base.Child("a:pPr")
		endRPr = base.Child("a:endParaRPr")
		for _, seg := range paragraphSegments(base) {
			if seg.kind != segmentBreak {
				rPr = seg.node.Child("a:rPr")
				break
			}
		}
	}
	if rPr == nil && endRPr != nil {
		rPr = endRPr.Clone()
		rPr.Name = "a:rPr"
	}

	if pPr != nil {
		p.AppendChild(pPr.Clone())
	}
	for i, part := range strings.Split(line, lineBreak) {
		if i > 0 {
			p.AppendChild(newBreak(rPr))
		}
		if part != "" {
			p.AppendChild(newRun(rPr, part))
		}
	}
	switch {
	case endRPr != nil:
		p.AppendChild(endRPr.Clone())
	case rPr != nil && line == "":
		// keeps the run format for text set later
		end := rPr.Clone()
		end.Name = "a:endParaRPr"
		p.AppendChild(end)
	}
	return p
}

func newRun(rPr *xml.Node, text string) *xml.Node {
	r := xml.NewElement("a:r")
	if rPr != nil {
		r.AppendChild(rPr.Clone())
	}
	t := xml.NewElement("a:t")
	t.SetText(text)
	r.AppendChild(t)
	return r
}

func newBreak(rPr *xml.Node) *xml.Node {
	br := xml.NewElement("a:br")
	if rPr != nil {
		br.AppendChild(rPr.Clone())
	}
	return br
}

// ApplyStyle formats the runes in [start, end) of the frame text. Runs are
// split at the range boundaries; fields and breaks are never split.
func (f *TextFrame) ApplyStyle(start, end int, style TextStyle) {
	if end <= start || style.IsZero() {
		return
	}

	offset := 0
	for _, p := range f.paragraphs() {
		for _, seg := range paragraphSegments(p) {
			segLen := utf8.RuneCountInString(seg.text)
			segStart := offset
			offset += segLen

			lo, hi := max(start, segStart), min(end, segStart+segLen)
			if lo >= hi {
				continue
			}
			switch seg.kind {
			case segmentRun:
				run := splitRun(p, seg.node, lo-segStart, hi-segStart)
				style.applyTo(runProperties(run))
			case segmentField:
				style.applyTo(runProperties(seg.node))
			}
		}
		offset++ // paragraph break
	}
}

// splitRun cuts run r so that the runes [from, to) of its text sit in a run
// of their own, and returns that run.
func splitRun(p, r *xml.Node, from, to int) *xml.Node {
	text := []rune(textOf(r.Child("a:t")))
	if from <= 0 && to >= len(text) {
		return r
	}
	if from > 0 {
		before := r.Clone()
		setRunText(before, string(text[:from]))
		p.InsertBefore(before, r)
	}
	if to < len(text) {
		after := r.Clone()
		setRunText(after, string(text[to:]))
		p.InsertAfter(after, r)
	}
	setRunText(r, string(text[from:to]))
	return r
}

// RemoveText deletes the runes in [start, end) when the range lies within the
// runs of one paragraph, keeping all run formatting. It reports false and
// leaves the frame untouched otherwise.
func (f *TextFrame) RemoveText(start, end int) bool {
	if end <= start {
		return end == start
	}

	type cut struct {
		run      *xml.Node
		from, to int
	}
	var cuts []cut

	offset := 0
	for _, p := range f.paragraphs() {
		paraStart := offset
		for _, seg := range paragraphSegments(p) {
			segLen := utf8.RuneCountInString(seg.text)
			segStart := offset
			offset += segLen

			lo, hi := max(start, segStart), min(end, segStart+segLen)
			if lo >= hi {
				continue
			}
			if seg.kind != segmentRun {
				return false
			}
			cuts = append(cuts, cut{run: seg.node, from: lo - segStart, to: hi - segStart})
		}
		paraEnd := offset
		offset++

		if start >= paraStart && start < paraEnd+1 {
			if end > paraEnd {
				return false
			}
			break
		}
	}
	if len(cuts) == 0 {
		return false
	}

	for _, c := range cuts {
		text := []rune(textOf(c.run.Child("a:t")))
		setRunText(c.run, string(text[:c.from])+string(text[c.to:]))
	}
	return true
}

// ReplaceAll substitutes every occurrence of find, also when the occurrence
// is split over several runs. The replacement takes the formatting of the
// run the occurrence starts in. Newlines in the replacement start new
// paragraphs and "\v" becomes a line break. It returns the number of
// replacements.
func (f *TextFrame) ReplaceAll(find, replacement string) int {
	if find == "" {
		return 0
	}

	count := 0
	for _, p := range f.paragraphs() {
		count += replaceInParagraph(p, find, replacement)
	}
	if count > 0 && strings.ContainsAny(replacement, paragraphBreak+lineBreak) {
		f.normalizeBreaks()
	}
	return count
}

func replaceInParagraph(p *xml.Node, find, replacement string) int {
	count := 0
	pos := 0
	for {
		segs := paragraphSegments(p)
		starts := make([]int, len(segs)+1)
		var sb strings.Builder
		for i, seg := range segs {
			starts[i] = sb.Len()
			sb.WriteString(seg.text)
		}
		starts[len(segs)] = sb.Len()
		text := sb.String()

		if pos > len(text) {
			return count
		}
		i := strings.Index(text[pos:], find)
		if i < 0 {
			return count
		}
		i += pos
		j := i + len(find)

		first, last := -1, -1
		for k := range segs {
			if first < 0 && i < starts[k+1] {
				first = k
			}
			if j <= starts[k+1] {
				last = k
				break
			}
		}

		// occurrences that touch a field or a line break stay as they are
		crossesNonRun := false
		for k := first; k <= last; k++ {
			if segs[k].kind != segmentRun {
				crossesNonRun = true
				break
			}
		}
		if crossesNonRun {
			pos = i + 1
			continue
		}

		head := segs[first].text[:i-starts[first]]
		tail := segs[last].text[j-starts[last]:]
		setRunText(segs[first].node, head+replacement+tail)
		for k := first + 1; k <= last; k++ {
			p.RemoveChild(segs[k].node)
		}

		pos = i + len(replacement)
		count++
	}
}

// normalizeBreaks turns "\n" inside runs into paragraph boundaries and "\v"
// into a:br elements.
func (f *TextFrame) normalizeBreaks() {
	for _, p := range f.paragraphs() {
		if !runsContain(p, paragraphBreak+lineBreak) {
			continue
		}
		for _, np := range splitParagraph(p) {
			f.body.InsertBefore(np, p)
		}
		f.body.RemoveChild(p)
	}
}

func runsContain(p *xml.Node, chars string) bool {
	for _, r := range p.ChildrenNamed("a:r") {
		if strings.ContainsAny(textOf(r.Child("a:t")), chars) {
			return true
		}
	}
	return false
}

func splitParagraph(p *xml.Node) []*xml.Node {
	pPr := p.Child("a:pPr")
	endRPr := p.Child("a:endParaRPr")

	newPara := func() *xml.Node {
		np := xml.NewElement("a:p")
		if pPr != nil {
			np.AppendChild(pPr.Clone())
		}
		return np
	}
	closePara := func(np, rPr *xml.Node) {
		switch {
		case endRPr != nil:
			np.AppendChild(endRPr.Clone())
		case rPr != nil:
			end := rPr.Clone()
			end.Name = "a:endParaRPr"
			np.AppendChild(end)
		}
	}

	current := newPara()
	out := []*xml.Node{current}
	for _, c := range p.Elements() {
		switch c.Name {
		case "a:pPr", "a:endParaRPr":
			continue
		case "a:r":
			text := textOf(c.Child("a:t"))
			if !strings.ContainsAny(text, paragraphBreak+lineBreak) {
				current.AppendChild(c.Clone())
				continue
			}
			rPr := c.Child("a:rPr")
			for li, line := range strings.Split(text, paragraphBreak) {
				if li > 0 {
					closePara(current, rPr)
					current = newPara()
					out = append(out, current)
				}
				for pi, part := range strings.Split(line, lineBreak) {
					if pi > 0 {
						current.AppendChild(newBreak(rPr))
					}
					if part != "" {
						r := c.Clone()
						setRunText(r, part)
						current.AppendChild(r)
					}
				}
			}
		default:
			current.AppendChild(c.Clone())
		}
	}
	if endRPr != nil {
		current.AppendChild(endRPr.Clone())
	}
	return out
}
