package slides

// TemplateSet maps each slide kind to the reference of its template slide:
// the slide name, or the numeric slide id.
type TemplateSet map[SlideKind]string

// Ref returns the reference for kind, defaulting to the kind name.
func (s TemplateSet) Ref(kind SlideKind) string {
	if ref, ok := s[kind]; ok && ref != "" {
		return ref
	}
	return string(kind)
}

// TemplateLookup is the result of looking up a template slide. It is either
// Found or NotFound.
type TemplateLookup interface {
	isTemplateLookup()
}

// Found carries the template slide.
type Found struct {
	Slide *Slide
}

// NotFound tells which kind had no template and what was looked for.
type NotFound struct {
	Kind SlideKind
	Ref  string
}

func (Found) isTemplateLookup()    {}
func (NotFound) isTemplateLookup() {}

// Err converts the miss into a TemplateNotFoundError.
func (n NotFound) Err() error {
	return &TemplateNotFoundError{Kind: n.Kind, Ref: n.Ref}
}

// LookupTemplate finds the template slide for kind in p.
func LookupTemplate(p *Presentation, set TemplateSet, kind SlideKind) TemplateLookup {
	ref := set.Ref(kind)
	if slide, ok := p.Slide(ref); ok {
		return Found{Slide: slide}
	}
	return NotFound{Kind: kind, Ref: ref}
}
