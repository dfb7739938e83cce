package slides

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path"
	"strconv"

	"github.com/benjaminschreck/go-slides/pkg/slides/xml"
)

// first id PowerPoint hands out in p:sldIdLst
const minSlideID = 256

// Presentation is an opened PPTX package. Parts that are never touched are
// written back byte for byte.
type Presentation struct {
	parts        map[string][]byte
	order        []string
	contentTypes *ContentTypes
	doc          *xml.Node
	rels         *Relationships
	slides       []*Slide
}

// OpenPresentation reads a PPTX package.
func OpenPresentation(r io.ReaderAt, size int64) (*Presentation, error) {
	reader, err := NewPptxReader(r, size)
	if err != nil {
		return nil, NewDocumentError("open", "presentation", err)
	}
	parts, err := reader.ReadAll()
	if err != nil {
		return nil, NewDocumentError("open", "presentation", err)
	}

	p := &Presentation{
		parts: parts,
		order: reader.ListParts(),
		rels:  &Relationships{},
	}

	if p.contentTypes, err = parseContentTypes(parts[contentTypesPart]); err != nil {
		return nil, NewDocumentError("open", contentTypesPart, err)
	}
	if p.doc, err = xml.ParseBytes(parts[presentationPart]); err != nil {
		return nil, NewDocumentError("open", presentationPart, err)
	}
	if data, ok := parts[presentationRelsPart]; ok {
		if p.rels, err = parseRelationships(data); err != nil {
			return nil, NewDocumentError("open", presentationRelsPart, err)
		}
	}

	for _, entry := range p.slideIDList().ChildrenNamed("p:sldId") {
		id, err := strconv.ParseUint(entry.AttrOr("id", ""), 10, 32)
		if err != nil {
			return nil, NewDocumentError("open", presentationPart, fmt.Errorf("invalid slide id %q", entry.AttrOr("id", "")))
		}
		relID := entry.AttrOr("r:id", "")
		rel, ok := p.rels.Get(relID)
		if !ok {
			return nil, NewDocumentError("open", presentationPart, fmt.Errorf("slide %d has no relationship %q", id, relID))
		}
		slide, err := p.loadSlide(resolveTarget(presentationPart, rel.Target), uint32(id), relID)
		if err != nil {
			return nil, err
		}
		p.slides = append(p.slides, slide)
	}

	return p, nil
}

// OpenPresentationFile reads a PPTX file from disk.
func OpenPresentationFile(path string) (*Presentation, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, NewDocumentError("open", path, err)
	}
	return OpenPresentation(bytes.NewReader(content), int64(len(content)))
}

func (p *Presentation) loadSlide(part string, id uint32, relID string) (*Slide, error) {
	data, ok := p.parts[part]
	if !ok {
		return nil, NewDocumentError("load slide", part, fmt.Errorf("part is missing"))
	}
	doc, err := xml.ParseBytes(data)
	if err != nil {
		return nil, NewDocumentError("load slide", part, err)
	}
	rels := &Relationships{}
	if data, ok := p.parts[relsPartFor(part)]; ok {
		if rels, err = parseRelationships(data); err != nil {
			return nil, NewDocumentError("load slide", part, err)
		}
	}
	return &Slide{pres: p, id: id, relID: relID, partName: part, doc: doc, rels: rels}, nil
}

func (p *Presentation) slideIDList() *xml.Node {
	return p.doc.Root().Child("p:sldIdLst")
}

// ensureSlideIDList returns p:sldIdLst, creating it after the master and
// notes master lists when the presentation has no slides yet.
func (p *Presentation) ensureSlideIDList() *xml.Node {
	if lst := p.slideIDList(); lst != nil {
		return lst
	}
	root := p.doc.Root()
	xml.DeclareNamespaces(root, xml.NamespaceRelationships)
	lst := xml.NewElement("p:sldIdLst")
	var after *xml.Node
	for _, name := range []string{"p:sldMasterIdLst", "p:notesMasterIdLst", "p:handoutMasterIdLst"} {
		if n := root.Child(name); n != nil {
			after = n
		}
	}
	if after != nil {
		root.InsertAfter(lst, after)
	} else {
		root.PrependChild(lst)
	}
	return lst
}

func (p *Presentation) notesMasterPart() string {
	rels := p.rels.ByType(notesMasterRelationshipType)
	if len(rels) == 0 {
		return ""
	}
	part := resolveTarget(presentationPart, rels[0].Target)
	if _, ok := p.parts[part]; !ok {
		return ""
	}
	return part
}

// Slides returns the slides in presentation order.
func (p *Presentation) Slides() []*Slide {
	out := make([]*Slide, len(p.slides))
	copy(out, p.slides)
	return out
}

// NumSlides returns the number of slides.
func (p *Presentation) NumSlides() int {
	return len(p.slides)
}

// Slide finds a slide by name, falling back to its numeric id.
func (p *Presentation) Slide(ref string) (*Slide, bool) {
	for _, s := range p.slides {
		if s.Name() == ref {
			return s, true
		}
	}
	if id, err := strconv.ParseUint(ref, 10, 32); err == nil {
		for _, s := range p.slides {
			if s.id == uint32(id) {
				return s, true
			}
		}
	}
	return nil, false
}

func (p *Presentation) nextSlideID() uint32 {
	next := uint32(minSlideID)
	for _, s := range p.slides {
		if s.id >= next {
			next = s.id + 1
		}
	}
	return next
}

// AppendSlide adds a copy of src at the end of the presentation. src may
// belong to another presentation; parts it refers to that are missing here
// are copied along, except slide layouts, which must already exist.
func (p *Presentation) AppendSlide(src *Slide) (*Slide, error) {
	if src == nil || src.pres == nil {
		return nil, fmt.Errorf("cannot append a removed slide")
	}

	part := nextPartName(p.parts, "ppt/slides/slide", ".xml")
	dst := &Slide{
		pres:     p,
		partName: part,
		doc:      src.doc.Clone(),
		rels:     &Relationships{},
	}

	for _, rel := range src.rels.Relationship {
		if rel.Type == notesSlideRelationshipType {
			continue
		}
		if !rel.IsExternal() {
			target := resolveTarget(src.partName, rel.Target)
			if err := p.copyRelatedPart(src.pres, target, rel.Type, map[string]bool{}); err != nil {
				return nil, err
			}
			rel.Target = relativeTarget(part, target)
		}
		dst.rels.Relationship = append(dst.rels.Relationship, rel)
	}

	p.contentTypes.SetOverride(part, slideContentType)
	p.setPart(part, dst.doc.Bytes())

	dst.relID = p.rels.Add(slideRelationshipType, relativeTarget(presentationPart, part))
	dst.id = p.nextSlideID()
	entry := xml.NewElement("p:sldId", "id", strconv.FormatUint(uint64(dst.id), 10), "r:id", dst.relID)
	p.ensureSlideIDList().AppendChild(entry)
	p.addToLastSection(dst.id)
	p.slides = append(p.slides, dst)

	if err := p.cloneNotes(src, dst); err != nil {
		return nil, err
	}
	return dst, nil
}

// copyRelatedPart makes sure part exists in p, copying it and the parts it
// refers to from src when needed.
func (p *Presentation) copyRelatedPart(src *Presentation, part, relType string, visited map[string]bool) error {
	if _, ok := p.parts[part]; ok || visited[part] {
		return nil
	}
	visited[part] = true

	if relType == slideLayoutRelationshipType || src == p {
		return NewDocumentError("copy slide", part, fmt.Errorf("referenced part is missing"))
	}
	data, ok := src.parts[part]
	if !ok {
		return NewDocumentError("copy slide", part, fmt.Errorf("referenced part is missing in source"))
	}

	p.setPart(part, data)
	if ct := src.contentTypes.TypeOf(part); ct != "" && p.contentTypes.TypeOf(part) != ct {
		if ext := path.Ext(part); ext != "" {
			p.contentTypes.EnsureDefault(ext[1:], ct)
		}
		if p.contentTypes.TypeOf(part) != ct {
			p.contentTypes.SetOverride(part, ct)
		}
	}

	relsData, ok := src.parts[relsPartFor(part)]
	if !ok {
		return nil
	}
	p.setPart(relsPartFor(part), relsData)
	rels, err := parseRelationships(relsData)
	if err != nil {
		return NewDocumentError("copy slide", part, err)
	}
	for _, rel := range rels.Relationship {
		if rel.IsExternal() {
			continue
		}
		if err := p.copyRelatedPart(src, resolveTarget(part, rel.Target), rel.Type, visited); err != nil {
			return err
		}
	}
	return nil
}

// addToLastSection puts a new slide into the last section when the
// presentation is divided into sections.
func (p *Presentation) addToLastSection(id uint32) {
	sections := p.doc.Root().FindAll("p14:section")
	if len(sections) == 0 {
		return
	}
	last := sections[len(sections)-1]
	lst := last.Child("p14:sldIdLst")
	if lst == nil {
		lst = xml.NewElement("p14:sldIdLst")
		last.AppendChild(lst)
	}
	lst.AppendChild(xml.NewElement("p14:sldId", "id", strconv.FormatUint(uint64(id), 10)))
}

// RemoveSlide deletes a slide, its notes slide and every reference to it
// from the presentation.
func (p *Presentation) RemoveSlide(s *Slide) error {
	idx := -1
	for i, other := range p.slides {
		if other == s {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("slide %s is not part of the presentation", s.partName)
	}

	id := strconv.FormatUint(uint64(s.id), 10)
	p.doc.Walk(func(n *xml.Node) bool {
		for _, c := range n.Elements() {
			switch {
			case c.Is("p:sldId") && c.AttrOr("r:id", "") == s.relID,
				c.Is("p:sld") && c.AttrOr("r:id", "") == s.relID,
				c.Is("p14:sldId") && c.AttrOr("id", "") == id:
				n.RemoveChild(c)
			}
		}
		return true
	})
	p.rels.Remove(s.relID)

	for _, rel := range s.rels.ByType(notesSlideRelationshipType) {
		p.deletePart(resolveTarget(s.partName, rel.Target))
	}
	p.deletePart(s.partName)

	p.slides = append(p.slides[:idx], p.slides[idx+1:]...)
	s.pres = nil
	return nil
}

// RemoveAllSlides deletes every slide.
func (p *Presentation) RemoveAllSlides() error {
	for _, s := range p.Slides() {
		if err := p.RemoveSlide(s); err != nil {
			return err
		}
	}
	return nil
}

func (p *Presentation) setPart(name string, data []byte) {
	if _, ok := p.parts[name]; !ok {
		p.order = append(p.order, name)
	}
	p.parts[name] = data
}

func (p *Presentation) deletePart(name string) {
	for _, n := range []string{name, relsPartFor(name)} {
		if _, ok := p.parts[n]; !ok {
			continue
		}
		delete(p.parts, n)
		for i, o := range p.order {
			if o == n {
				p.order = append(p.order[:i], p.order[i+1:]...)
				break
			}
		}
	}
	p.contentTypes.RemoveOverride(name)
}

func (p *Presentation) flush() error {
	for _, s := range p.slides {
		if err := s.flush(); err != nil {
			return err
		}
	}
	p.setPart(presentationPart, p.doc.Bytes())

	rels, err := p.rels.Marshal()
	if err != nil {
		return NewDocumentError("write", presentationRelsPart, err)
	}
	p.setPart(presentationRelsPart, rels)

	ct, err := p.contentTypes.Marshal()
	if err != nil {
		return NewDocumentError("write", contentTypesPart, err)
	}
	p.setPart(contentTypesPart, ct)
	return nil
}

// WriteTo serializes the presentation as a PPTX package.
func (p *Presentation) WriteTo(w io.Writer) (int64, error) {
	data, err := p.Bytes()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	return int64(n), err
}

// Bytes serializes the presentation into memory.
func (p *Presentation) Bytes() ([]byte, error) {
	if err := p.flush(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := writePackage(&buf, p.parts, p.order); err != nil {
		return nil, NewDocumentError("write", "presentation", err)
	}
	return buf.Bytes(), nil
}

// Save writes the presentation to a file.
func (p *Presentation) Save(path string) error {
	data, err := p.Bytes()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return NewDocumentError("save", path, err)
	}
	return nil
}

// Clone returns an independent copy of the presentation.
func (p *Presentation) Clone() (*Presentation, error) {
	data, err := p.Bytes()
	if err != nil {
		return nil, err
	}
	return OpenPresentation(bytes.NewReader(data), int64(len(data)))
}
