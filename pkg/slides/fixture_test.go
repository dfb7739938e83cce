package slides

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const fixtureNamespaces = `xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"`

// fixtureSlide describes one slide of an in-memory test presentation.
type fixtureSlide struct {
	name  string
	body  string // shapes placed in p:spTree
	notes string // non-empty adds a notes slide
}

type fixtureOptions struct {
	noNotesMaster bool
}

// para builds a paragraph with one run per text.
func para(texts ...string) string {
	var sb strings.Builder
	sb.WriteString(`<a:p><a:pPr marL="0" indent="0"/>`)
	for _, t := range texts {
		fmt.Fprintf(&sb, `<a:r><a:rPr lang="en-US" sz="2000"/><a:t>%s</a:t></a:r>`, t)
	}
	sb.WriteString(`<a:endParaRPr lang="en-US" sz="2000"/></a:p>`)
	return sb.String()
}

// textShape builds a p:sp whose text body holds the given paragraphs.
func textShape(id int, name string, paragraphs ...string) string {
	return fmt.Sprintf(`<p:sp><p:nvSpPr><p:cNvPr id="%d" name="%s"/><p:cNvSpPr txBox="1"/><p:nvPr/></p:nvSpPr>`+
		`<p:spPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="100" cy="100"/></a:xfrm></p:spPr>`+
		`<p:txBody><a:bodyPr/><a:lstStyle/>%s</p:txBody></p:sp>`, id, name, strings.Join(paragraphs, ""))
}

// tableFrame builds a graphic frame holding a table with the given cell
// texts. Every column is 1000 EMU wide and every row 300 EMU high.
func tableFrame(id int, cells [][]string) string {
	cols := 0
	if len(cells) > 0 {
		cols = len(cells[0])
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `<p:graphicFrame><p:nvGraphicFramePr><p:cNvPr id="%d" name="Table %d"/><p:cNvGraphicFramePr><a:graphicFrameLocks noGrp="1"/></p:cNvGraphicFramePr><p:nvPr/></p:nvGraphicFramePr>`, id, id)
	fmt.Fprintf(&sb, `<p:xfrm><a:off x="0" y="0"/><a:ext cx="%d" cy="%d"/></p:xfrm>`, cols*1000, len(cells)*300)
	sb.WriteString(`<a:graphic><a:graphicData uri="http://schemas.openxmlformats.org/drawingml/2006/table"><a:tbl><a:tblPr firstRow="1" bandRow="1"/><a:tblGrid>`)
	for c := 0; c < cols; c++ {
		fmt.Fprintf(&sb, `<a:gridCol w="1000"><a:extLst><a:ext uri="{9D8B030D-6E8A-4147-A177-3AD203B41FA5}"><a16:colId xmlns:a16="http://schemas.microsoft.com/office/drawing/2014/main" val="%d"/></a:ext></a:extLst></a:gridCol>`, 1000+c)
	}
	sb.WriteString(`</a:tblGrid>`)
	for _, row := range cells {
		sb.WriteString(`<a:tr h="300">`)
		for _, text := range row {
			fmt.Fprintf(&sb, `<a:tc><a:txBody><a:bodyPr/><a:lstStyle/><a:p><a:r><a:rPr lang="en-US" sz="1200"/><a:t>%s</a:t></a:r></a:p></a:txBody><a:tcPr/></a:tc>`, text)
		}
		sb.WriteString(`</a:tr>`)
	}
	sb.WriteString(`</a:tbl></a:graphicData></a:graphic></p:graphicFrame>`)
	return sb.String()
}

func fixtureSlideXML(s fixtureSlide) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n" +
		`<p:sld ` + fixtureNamespaces + `><p:cSld name="` + s.name + `"><p:spTree>` +
		`<p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr><p:grpSpPr/>` +
		s.body +
		`</p:spTree></p:cSld><p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr></p:sld>`
}

func fixtureRels(rels ...Relationship) string {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n")
	sb.WriteString(`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)
	for _, r := range rels {
		fmt.Fprintf(&sb, `<Relationship Id="%s" Type="%s" Target="%s"/>`, r.ID, r.Type, r.Target)
	}
	sb.WriteString(`</Relationships>`)
	return sb.String()
}

// buildPPTX assembles a minimal but complete presentation package.
func buildPPTX(t *testing.T, slides []fixtureSlide, opts ...fixtureOptions) []byte {
	t.Helper()

	var opt fixtureOptions
	if len(opts) > 0 {
		opt = opts[0]
	}

	parts := map[string]string{}
	var order []string
	add := func(name, content string) {
		parts[name] = content
		order = append(order, name)
	}

	var overrides strings.Builder
	override := func(part, ct string) {
		fmt.Fprintf(&overrides, `<Override PartName="/%s" ContentType="%s"/>`, part, ct)
	}
	override("ppt/presentation.xml", "application/vnd.openxmlformats-officedocument.presentationml.presentation.main+xml")
	override("ppt/slideMasters/slideMaster1.xml", "application/vnd.openxmlformats-officedocument.presentationml.slideMaster+xml")
	override("ppt/slideLayouts/slideLayout1.xml", "application/vnd.openxmlformats-officedocument.presentationml.slideLayout+xml")

	presRels := []Relationship{{ID: "rId1", Type: "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideMaster", Target: "slideMasters/slideMaster1.xml"}}
	var sldIDs strings.Builder
	for i := range slides {
		n := i + 1
		rid := fmt.Sprintf("rId%d", n+1)
		presRels = append(presRels, Relationship{ID: rid, Type: slideRelationshipType, Target: fmt.Sprintf("slides/slide%d.xml", n)})
		fmt.Fprintf(&sldIDs, `<p:sldId id="%d" r:id="%s"/>`, 255+n, rid)
		override(fmt.Sprintf("ppt/slides/slide%d.xml", n), slideContentType)
	}

	notesMasterList := ""
	if !opt.noNotesMaster {
		rid := fmt.Sprintf("rId%d", len(slides)+2)
		presRels = append(presRels, Relationship{ID: rid, Type: notesMasterRelationshipType, Target: "notesMasters/notesMaster1.xml"})
		notesMasterList = `<p:notesMasterIdLst><p:notesMasterId r:id="` + rid + `"/></p:notesMasterIdLst>`
		override("ppt/notesMasters/notesMaster1.xml", "application/vnd.openxmlformats-officedocument.presentationml.notesMaster+xml")
	}

	for i, s := range slides {
		if s.notes != "" {
			override(fmt.Sprintf("ppt/notesSlides/notesSlide%d.xml", i+1), notesSlideContentType)
		}
	}

	add(contentTypesPart, `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`+"\n"+
		`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">`+
		`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>`+
		`<Default Extension="xml" ContentType="application/xml"/>`+
		`<Default Extension="png" ContentType="image/png"/>`+
		overrides.String()+`</Types>`)
	add("_rels/.rels", fixtureRels(Relationship{ID: "rId1", Type: "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument", Target: "ppt/presentation.xml"}))
	add(presentationPart, `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`+"\n"+
		`<p:presentation `+fixtureNamespaces+`>`+
		`<p:sldMasterIdLst><p:sldMasterId id="2147483648" r:id="rId1"/></p:sldMasterIdLst>`+
		notesMasterList+
		`<p:sldIdLst>`+sldIDs.String()+`</p:sldIdLst>`+
		`<p:sldSz cx="9144000" cy="6858000"/><p:notesSz cx="6858000" cy="9144000"/></p:presentation>`)
	add(presentationRelsPart, fixtureRels(presRels...))

	add("ppt/slideMasters/slideMaster1.xml", `<p:sldMaster `+fixtureNamespaces+`><p:cSld><p:spTree/></p:cSld></p:sldMaster>`)
	add("ppt/slideMasters/_rels/slideMaster1.xml.rels", fixtureRels(Relationship{ID: "rId1", Type: slideLayoutRelationshipType, Target: "../slideLayouts/slideLayout1.xml"}))
	add("ppt/slideLayouts/slideLayout1.xml", `<p:sldLayout `+fixtureNamespaces+`><p:cSld><p:spTree/></p:cSld></p:sldLayout>`)
	add("ppt/slideLayouts/_rels/slideLayout1.xml.rels", fixtureRels(Relationship{ID: "rId1", Type: "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideMaster", Target: "../slideMasters/slideMaster1.xml"}))
	if !opt.noNotesMaster {
		add("ppt/notesMasters/notesMaster1.xml", `<p:notesMaster `+fixtureNamespaces+`><p:cSld><p:spTree/></p:cSld></p:notesMaster>`)
	}

	for i, s := range slides {
		n := i + 1
		slidePart := fmt.Sprintf("ppt/slides/slide%d.xml", n)
		rels := []Relationship{{ID: "rId1", Type: slideLayoutRelationshipType, Target: "../slideLayouts/slideLayout1.xml"}}
		if s.notes != "" {
			notesPart := fmt.Sprintf("ppt/notesSlides/notesSlide%d.xml", n)
			rels = append(rels, Relationship{ID: "rId2", Type: notesSlideRelationshipType, Target: fmt.Sprintf("../notesSlides/notesSlide%d.xml", n)})
			notes := strings.Replace(notesSlideXML, `<a:p><a:endParaRPr lang="en-US"/></a:p>`, `<a:p><a:r><a:rPr lang="en-US"/><a:t>`+s.notes+`</a:t></a:r></a:p>`, 1)
			add(notesPart, notes)
			add(relsPartFor(notesPart), fixtureRels(
				Relationship{ID: "rId1", Type: notesMasterRelationshipType, Target: "../notesMasters/notesMaster1.xml"},
				Relationship{ID: "rId2", Type: slideRelationshipType, Target: fmt.Sprintf("../slides/slide%d.xml", n)},
			))
		}
		add(slidePart, fixtureSlideXML(s))
		add(relsPartFor(slidePart), fixtureRels(rels...))
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range order {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(parts[name]))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

// openFixture builds and opens a presentation.
func openFixture(t *testing.T, slides []fixtureSlide, opts ...fixtureOptions) *Presentation {
	t.Helper()
	data := buildPPTX(t, slides, opts...)
	p, err := OpenPresentation(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	return p
}

// reopen writes p and opens the result.
func reopen(t *testing.T, p *Presentation) *Presentation {
	t.Helper()
	data, err := p.Bytes()
	require.NoError(t, err)
	out, err := OpenPresentation(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	return out
}

// frameOf returns the text frame of the first text shape on a slide.
func frameOf(t *testing.T, s *Slide) *TextFrame {
	t.Helper()
	shapes := s.TextShapes()
	require.NotEmpty(t, shapes)
	return shapes[0].TextFrame()
}

// standardTemplate has one template slide per kind, named after the kind.
func standardTemplate() []fixtureSlide {
	return []fixtureSlide{
		{name: "title", body: textShape(2, "To", para("{{to}}")) + textShape(3, "Title", para("{{title}}")) +
			textShape(4, "Body", para("{{body}}")) + textShape(5, "Date", para("{{date}}"))},
		{name: "agenda", body: textShape(2, "Title", para("{{title}}")) + textShape(3, "Items", para("{{items}}"))},
		{name: "section", body: textShape(2, "Title", para("{{title}}"))},
		{name: "bullet", body: textShape(2, "Title", para("{{title}}")) + textShape(3, "Header", para("{{header}}")) +
			textShape(4, "Items", para("{{items}}"))},
		{name: "compare", body: textShape(2, "Title", para("{{title}}")) + textShape(3, "Description", para("{{description}}")) +
			textShape(4, "Left header", para("{{left_box_header}}")) + textShape(5, "Left items", para("{{left_box_items}}")) +
			textShape(6, "Right header", para("{{right_box_header}}")) + textShape(7, "Right items", para("{{right_box_items}}"))},
		{name: "table", body: textShape(2, "Title", para("{{title}}")) + textShape(3, "Description", para("{{description}}")) +
			tableFrame(4, [][]string{{"H1", "H2"}, {"a", "b"}})},
		{name: "closing", body: textShape(2, "Thanks", para("Thank you")), notes: "template notes"},
	}
}
