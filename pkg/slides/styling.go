package slides

import (
	"github.com/benjaminschreck/go-slides/pkg/slides/render"
)

// MarkupStyles holds the text style for each marker kind.
type MarkupStyles struct {
	Bold      TextStyle
	Important TextStyle
}

// NewMarkupStyles returns bold for **text** and bold plus importantColor
// (RRGGBB) for [[text]].
func NewMarkupStyles(importantColor string) MarkupStyles {
	return MarkupStyles{
		Bold:      TextStyle{Bold: true},
		Important: TextStyle{Bold: true, Color: importantColor},
	}
}

// For returns the style of a marker kind.
func (m MarkupStyles) For(kind render.MarkerKind) TextStyle {
	switch kind {
	case render.Important:
		return m.Important
	default:
		return m.Bold
	}
}

// ApplyMarkup removes the markers from the text of f and styles what they
// enclosed. It returns the number of styled ranges; frames without markup
// are left untouched.
func ApplyMarkup(f *TextFrame, styles MarkupStyles) int {
	text := f.Text()
	plain, ranges := render.Style(text)
	if ranges == nil {
		return 0
	}

	// Cutting the delimiters out of their runs keeps mixed formatting
	// inside a paragraph. SetText is the fallback for markers it cannot cut.
	if !removeDelimiters(f, text) || f.Text() != plain {
		f.SetText(plain)
	}
	for _, r := range ranges {
		f.ApplyStyle(r.Start, r.End, styles.For(r.Kind))
	}

	GetLogger().DebugStyle(text, plain, ranges)
	return len(ranges)
}

func removeDelimiters(f *TextFrame, text string) bool {
	markers := render.FindMarkers(text)

	spans := make([][2]int, 0, 2*len(markers))
	prevEnd := 0
	for _, m := range markers {
		if m.Start < prevEnd {
			return false
		}
		prevEnd = m.End
		spans = append(spans, [2]int{m.Start, m.Start + 2}, [2]int{m.End - 2, m.End})
	}

	for i := len(spans) - 1; i >= 0; i-- {
		if !f.RemoveText(spans[i][0], spans[i][1]) {
			return false
		}
	}
	return true
}

// StyleText runs the marker styler over plain text. It is the text-only
// counterpart of ApplyMarkup, used by the CLI.
func StyleText(text string) (string, []render.StyleRange) {
	return render.Style(text)
}
