package slides

import (
	"fmt"
	"strings"
)

// IssueSeverity indicates template issue severity.
type IssueSeverity string

const (
	IssueSeverityError   IssueSeverity = "error"
	IssueSeverityWarning IssueSeverity = "warning"
)

// TemplateIssueCode identifies the kind of template problem.
type TemplateIssueCode string

const (
	IssueCodeMissingSlide       TemplateIssueCode = "MISSING_TEMPLATE_SLIDE"
	IssueCodeMissingPlaceholder TemplateIssueCode = "MISSING_PLACEHOLDER"
	IssueCodeUnknownPlaceholder TemplateIssueCode = "UNKNOWN_PLACEHOLDER"
	IssueCodeMissingTable       TemplateIssueCode = "MISSING_TABLE"
	IssueCodeNoNotesMaster      TemplateIssueCode = "NO_NOTES_MASTER"
)

// TemplateIssue is one problem found in a template presentation.
type TemplateIssue struct {
	Severity IssueSeverity     `json:"severity" yaml:"severity"`
	Code     TemplateIssueCode `json:"code" yaml:"code"`
	Kind     SlideKind         `json:"kind,omitempty" yaml:"kind,omitempty"`
	Message  string            `json:"message" yaml:"message"`
}

// TemplateSummary contains validation counters.
type TemplateSummary struct {
	ErrorCount   int  `json:"errorCount" yaml:"error_count"`
	WarningCount int  `json:"warningCount" yaml:"warning_count"`
	Valid        bool `json:"valid" yaml:"valid"`
}

// TemplateValidationResult contains the outcome of ValidateTemplate.
type TemplateValidationResult struct {
	Slides  []TemplateSlideInfo `json:"slides" yaml:"slides"`
	Issues  []TemplateIssue     `json:"issues" yaml:"issues"`
	Summary TemplateSummary     `json:"summary" yaml:"summary"`
}

// TemplateSlideInfo describes the template slide used for one kind.
type TemplateSlideInfo struct {
	Kind         SlideKind   `json:"kind" yaml:"kind"`
	Ref          string      `json:"ref" yaml:"ref"`
	Found        bool        `json:"found" yaml:"found"`
	SlideID      uint32      `json:"slideId,omitempty" yaml:"slide_id,omitempty"`
	Part         string      `json:"part,omitempty" yaml:"part,omitempty"`
	Placeholders []string    `json:"placeholders,omitempty" yaml:"placeholders,omitempty"`
	Tables       []TableInfo `json:"tables,omitempty" yaml:"tables,omitempty"`
}

// TableInfo is the size of a template table.
type TableInfo struct {
	Name    string `json:"name" yaml:"name"`
	Rows    int    `json:"rows" yaml:"rows"`
	Columns int    `json:"columns" yaml:"columns"`
}

// SlideInfo describes any slide of a presentation.
type SlideInfo struct {
	Index        int         `json:"index" yaml:"index"`
	ID           uint32      `json:"id" yaml:"id"`
	Name         string      `json:"name" yaml:"name"`
	Part         string      `json:"part" yaml:"part"`
	Placeholders []string    `json:"placeholders,omitempty" yaml:"placeholders,omitempty"`
	Tables       []TableInfo `json:"tables,omitempty" yaml:"tables,omitempty"`
	Notes        string      `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// InspectPresentation lists every slide with its placeholders and tables.
func InspectPresentation(p *Presentation) []SlideInfo {
	infos := make([]SlideInfo, 0, p.NumSlides())
	for i, s := range p.Slides() {
		infos = append(infos, SlideInfo{
			Index:        i,
			ID:           s.ID(),
			Name:         s.Name(),
			Part:         s.PartName(),
			Placeholders: s.PlaceholderTokens(),
			Tables:       tableInfos(s),
			Notes:        s.Notes(),
		})
	}
	return infos
}

func tableInfos(s *Slide) []TableInfo {
	var out []TableInfo
	for _, t := range s.Tables() {
		out = append(out, TableInfo{Name: t.Name(), Rows: t.NumRows(), Columns: t.NumColumns()})
	}
	return out
}

// expectedTokens returns the placeholder tokens a kind fills.
func expectedTokens(kind SlideKind) []string {
	empty, ok := newRecord(kind)
	if !ok {
		return nil
	}
	placeholders, err := Placeholders(deref(empty))
	if err != nil {
		return nil
	}
	tokens := make([]string, len(placeholders))
	for i, ph := range placeholders {
		tokens[i] = ph.Token
	}
	return tokens
}

// ValidateTemplate checks that every slide kind has a template slide with the
// placeholders and table the generator fills.
func ValidateTemplate(p *Presentation, set TemplateSet) TemplateValidationResult {
	result := TemplateValidationResult{}
	add := func(severity IssueSeverity, code TemplateIssueCode, kind SlideKind, format string, args ...interface{}) {
		result.Issues = append(result.Issues, TemplateIssue{
			Severity: severity,
			Code:     code,
			Kind:     kind,
			Message:  fmt.Sprintf(format, args...),
		})
	}

	for _, kind := range AllSlideKinds {
		info := TemplateSlideInfo{Kind: kind, Ref: set.Ref(kind)}

		switch lookup := LookupTemplate(p, set, kind).(type) {
		case NotFound:
			add(IssueSeverityError, IssueCodeMissingSlide, kind, "no slide named or numbered %q", lookup.Ref)
		case Found:
			s := lookup.Slide
			info.Found = true
			info.SlideID = s.ID()
			info.Part = s.PartName()
			info.Placeholders = s.PlaceholderTokens()
			info.Tables = tableInfos(s)

			present := make(map[string]bool, len(info.Placeholders))
			for _, tok := range info.Placeholders {
				present[tok] = true
			}
			expected := make(map[string]bool)
			for _, tok := range expectedTokens(kind) {
				expected[tok] = true
				if !present[tok] {
					add(IssueSeverityWarning, IssueCodeMissingPlaceholder, kind, "slide %q has no %s", lookup.Slide.Ref(), tok)
				}
			}
			for _, tok := range info.Placeholders {
				if !expected[tok] {
					add(IssueSeverityWarning, IssueCodeUnknownPlaceholder, kind, "slide %q has %s, which %s records do not fill", lookup.Slide.Ref(), tok, kind)
				}
			}
			if kind == KindTable && len(info.Tables) == 0 {
				add(IssueSeverityError, IssueCodeMissingTable, kind, "slide %q has no table", lookup.Slide.Ref())
			}
		}

		result.Slides = append(result.Slides, info)
	}

	if p.notesMasterPart() == "" {
		add(IssueSeverityWarning, IssueCodeNoNotesMaster, "", "presentation has no notes master, speaker notes can only be kept on slides that already have notes")
	}

	for _, issue := range result.Issues {
		switch issue.Severity {
		case IssueSeverityError:
			result.Summary.ErrorCount++
		case IssueSeverityWarning:
			result.Summary.WarningCount++
		}
	}
	result.Summary.Valid = result.Summary.ErrorCount == 0
	return result
}

// ValidateRecords reports records the generator would render poorly: titled
// kinds without a title and tables whose rows do not fit their headers.
func ValidateRecords(records []Record) error {
	var issues []ValidationIssue
	add := func(index int, field, format string, args ...interface{}) {
		issues = append(issues, ValidationIssue{
			Field:   fmt.Sprintf("records[%d].%s", index, field),
			Message: fmt.Sprintf(format, args...),
		})
	}

	for i, record := range records {
		switch r := record.(type) {
		case TitleRecord:
			if strings.TrimSpace(r.Title) == "" {
				add(i, "title", "title slide has no title")
			}
		case AgendaRecord:
			if len(r.Items) == 0 {
				add(i, "items", "agenda has no items")
			}
		case SectionRecord:
			if strings.TrimSpace(r.Title) == "" {
				add(i, "title", "section slide has no title")
			}
		case BulletRecord:
			if strings.TrimSpace(r.Title) == "" {
				add(i, "title", "bullet slide has no title")
			}
		case CompareRecord:
			if strings.TrimSpace(r.Title) == "" {
				add(i, "title", "compare slide has no title")
			}
		case TableRecord:
			if len(r.Headers) == 0 {
				add(i, "headers", "table has no headers")
			}
			for row, cells := range r.Rows {
				if len(r.Headers) > 0 && len(cells) > len(r.Headers) {
					add(i, fmt.Sprintf("rows[%d]", row), "row has %d cells but there are only %d headers", len(cells), len(r.Headers))
				}
			}
		case ClosingRecord:
		case nil:
			add(i, "type", "record is nil")
		default:
			add(i, "type", "unsupported record type %T", record)
		}
	}

	if len(issues) == 0 {
		return nil
	}
	return &ValidationError{Issues: issues}
}
