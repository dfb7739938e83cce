package slides

import (
	"fmt"

	"github.com/benjaminschreck/go-slides/pkg/slides/xml"
)

const notesSlideXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:notes xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"><p:cSld><p:spTree><p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr><p:grpSpPr/><p:sp><p:nvSpPr><p:cNvPr id="2" name="Slide Image Placeholder 1"/><p:cNvSpPr><a:spLocks noGrp="1" noRot="1" noChangeAspect="1"/></p:cNvSpPr><p:nvPr><p:ph type="sldImg"/></p:nvPr></p:nvSpPr><p:spPr/></p:sp><p:sp><p:nvSpPr><p:cNvPr id="3" name="Notes Placeholder 2"/><p:cNvSpPr><a:spLocks noGrp="1"/></p:cNvSpPr><p:nvPr><p:ph type="body" idx="1"/></p:nvPr></p:nvSpPr><p:spPr/><p:txBody><a:bodyPr/><a:lstStyle/><a:p><a:endParaRPr lang="en-US"/></a:p></p:txBody></p:sp></p:spTree></p:cSld><p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr></p:notes>`

// notesPage is the notes slide that belongs to a slide
type notesPage struct {
	partName string
	doc      *xml.Node
	rels     *Relationships
}

// bodyShape returns the body placeholder that holds the speaker notes
func (n *notesPage) bodyShape() *xml.Node {
	for _, sp := range n.doc.Root().FindAll("p:sp") {
		sh := &Shape{node: sp}
		if t, ok := sh.PlaceholderType(); ok && t == "body" && sh.HasText() {
			return sp
		}
	}
	return nil
}

func (n *notesPage) bodyFrame() *TextFrame {
	sp := n.bodyShape()
	if sp == nil {
		tree := n.doc.Root().Path("p:cSld", "p:spTree")
		if tree == nil {
			return nil
		}
		sp = (&notesPage{doc: xml.MustParseString(notesSlideXML)}).bodyShape()
		tree.AppendChild(sp)
	}
	return newTextFrame(sp.Child("p:txBody"))
}

func (n *notesPage) flush(p *Presentation) error {
	p.setPart(n.partName, n.doc.Bytes())
	data, err := n.rels.Marshal()
	if err != nil {
		return NewDocumentError("write relationships", n.partName, err)
	}
	p.setPart(relsPartFor(n.partName), data)
	return nil
}

// notesPage loads the notes slide of s. With create set, a missing notes
// slide is created from the presentation's notes master.
func (s *Slide) notesPage(create bool) (*notesPage, error) {
	if s.notes != nil {
		return s.notes, nil
	}

	if rels := s.rels.ByType(notesSlideRelationshipType); len(rels) > 0 {
		part := resolveTarget(s.partName, rels[0].Target)
		page, err := s.pres.loadNotesPage(part)
		if err != nil {
			return nil, err
		}
		s.notes = page
		return page, nil
	}

	if !create {
		return nil, nil
	}

	master := s.pres.notesMasterPart()
	if master == "" {
		return nil, ErrNoNotesMaster
	}

	part := nextPartName(s.pres.parts, "ppt/notesSlides/notesSlide", ".xml")
	page := &notesPage{
		partName: part,
		doc:      xml.MustParseString(notesSlideXML),
		rels:     &Relationships{},
	}
	page.rels.Add(notesMasterRelationshipType, relativeTarget(part, master))
	page.rels.Add(slideRelationshipType, relativeTarget(part, s.partName))
	s.rels.Add(notesSlideRelationshipType, relativeTarget(s.partName, part))
	s.pres.contentTypes.SetOverride(part, notesSlideContentType)
	s.pres.setPart(part, page.doc.Bytes())

	s.notes = page
	return page, nil
}

func (p *Presentation) loadNotesPage(part string) (*notesPage, error) {
	data, ok := p.parts[part]
	if !ok {
		return nil, NewDocumentError("load notes", part, fmt.Errorf("part is missing"))
	}
	doc, err := xml.ParseBytes(data)
	if err != nil {
		return nil, NewDocumentError("load notes", part, err)
	}
	rels := &Relationships{}
	if data, ok := p.parts[relsPartFor(part)]; ok {
		if rels, err = parseRelationships(data); err != nil {
			return nil, NewDocumentError("load notes", part, err)
		}
	}
	return &notesPage{partName: part, doc: doc, rels: rels}, nil
}

// Notes returns the speaker notes of the slide.
func (s *Slide) Notes() string {
	page, err := s.notesPage(false)
	if err != nil || page == nil {
		return ""
	}
	sp := page.bodyShape()
	if sp == nil {
		return ""
	}
	return newTextFrame(sp.Child("p:txBody")).Text()
}

// SetNotes replaces the speaker notes. A notes slide is created when the
// slide has none; that needs a notes master, else ErrNoNotesMaster.
func (s *Slide) SetNotes(text string) error {
	page, err := s.notesPage(text != "")
	if err != nil {
		return err
	}
	if page == nil {
		return nil
	}
	frame := page.bodyFrame()
	if frame == nil {
		return NewDocumentError("set notes", page.partName, fmt.Errorf("notes slide has no shape tree"))
	}
	frame.SetText(text)
	return nil
}

// cloneNotes copies the notes slide of src onto dst, which must belong to p.
func (p *Presentation) cloneNotes(src, dst *Slide) error {
	srcPage, err := src.notesPage(false)
	if err != nil || srcPage == nil {
		return err
	}
	master := p.notesMasterPart()
	if master == "" {
		GetLogger().WithField("slide", dst.partName).Debug("Dropping notes, presentation has no notes master")
		return nil
	}

	part := nextPartName(p.parts, "ppt/notesSlides/notesSlide", ".xml")
	page := &notesPage{partName: part, doc: srcPage.doc.Clone(), rels: &Relationships{}}
	for _, rel := range srcPage.rels.Relationship {
		switch {
		case rel.Type == slideRelationshipType:
			rel.Target = relativeTarget(part, dst.partName)
		case rel.Type == notesMasterRelationshipType:
			rel.Target = relativeTarget(part, master)
		case !rel.IsExternal():
			target := resolveTarget(srcPage.partName, rel.Target)
			if err := p.copyRelatedPart(src.pres, target, rel.Type, map[string]bool{}); err != nil {
				return err
			}
		}
		page.rels.Relationship = append(page.rels.Relationship, rel)
	}

	dst.rels.Add(notesSlideRelationshipType, relativeTarget(dst.partName, part))
	p.contentTypes.SetOverride(part, notesSlideContentType)
	p.setPart(part, page.doc.Bytes())
	dst.notes = page
	return nil
}
