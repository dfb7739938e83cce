package render

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// MarkerKind identifies the styling a marker asks for.
type MarkerKind int

const (
	// Bold is written as **text**.
	Bold MarkerKind = iota
	// Important is written as [[text]] and rendered bold and colored.
	Important
)

func (k MarkerKind) String() string {
	switch k {
	case Bold:
		return "bold"
	case Important:
		return "important"
	default:
		return "unknown"
	}
}

// Marker is one occurrence of inline markup in the original text.
// Start and End are half-open rune offsets covering the delimiters.
type Marker struct {
	Start   int
	End     int
	Content string
	Kind    MarkerKind
}

// StyleRange is a half-open rune range of the de-markered text that needs
// the style of Kind.
type StyleRange struct {
	Start int
	End   int
	Kind  MarkerKind
}

// Len returns the number of runes covered by the range.
func (r StyleRange) Len() int {
	return r.End - r.Start
}

const (
	boldDelimiter      = "**"
	importantDelimiter = "[["
)

var markerPatterns = []struct {
	kind    MarkerKind
	pattern *regexp.Regexp
}{
	{Bold, regexp.MustCompile(`\*\*([^\n\r\x{2028}\x{2029}]*?)\*\*`)},
	{Important, regexp.MustCompile(`\[\[([^\n\r\x{2028}\x{2029}]*?)\]\]`)},
}

// HasMarkup reports whether text contains an opening delimiter of any kind.
// It is only a cheap pre-check: "**" alone does not make a marker.
func HasMarkup(text string) bool {
	return strings.Contains(text, boldDelimiter) || strings.Contains(text, importantDelimiter)
}

// FindMarkers scans text for bold and important markers.
//
// Each kind is scanned on its own with a non-greedy pattern, so
// "**a** and **b**" gives two markers. Markers never cross a line
// terminator (\n, \r, U+2028 or U+2029).
// The result is sorted by Start; markers sharing a start keep discovery
// order, which puts Bold before Important.
func FindMarkers(text string) []Marker {
	var markers []Marker
	for _, mp := range markerPatterns {
		for _, loc := range mp.pattern.FindAllStringSubmatchIndex(text, -1) {
			markers = append(markers, Marker{
				Start:   runeOffset(text, loc[0]),
				End:     runeOffset(text, loc[1]),
				Content: text[loc[2]:loc[3]],
				Kind:    mp.kind,
			})
		}
	}

	sort.SliceStable(markers, func(i, j int) bool {
		return markers[i].Start < markers[j].Start
	})
	return markers
}

// RemoveMarkers replaces every marker with its content and returns the
// resulting text together with one StyleRange per marker.
//
// Markers must be sorted by Start. The walk keeps a single running count of
// removed delimiter runes; each marker is shifted left by that count before
// it is replaced. Positions that fall outside the running text (which only
// happens for markers of different kinds overlapping each other) are clamped
// into it.
func RemoveMarkers(text string, markers []Marker) (string, []StyleRange) {
	if len(markers) == 0 {
		return text, nil
	}

	processed := []rune(text)
	ranges := make([]StyleRange, 0, len(markers))
	cumulativeOffset := 0

	for _, marker := range markers {
		content := []rune(marker.Content)
		actualStart := clamp(marker.Start-cumulativeOffset, len(processed))
		actualEnd := clamp(marker.End-cumulativeOffset, len(processed))
		if actualStart > actualEnd {
			actualStart, actualEnd = actualEnd, actualStart
		}

		next := make([]rune, 0, len(processed)-(actualEnd-actualStart)+len(content))
		next = append(next, processed[:actualStart]...)
		next = append(next, content...)
		next = append(next, processed[actualEnd:]...)
		processed = next

		ranges = append(ranges, StyleRange{
			Start: actualStart,
			End:   actualStart + len(content),
			Kind:  marker.Kind,
		})

		cumulativeOffset += (marker.End - marker.Start) - len(content)
	}

	return string(processed), ranges
}

// Style removes all markup from text and reports the ranges to style.
// Text without any opening delimiter is returned as is with no ranges.
func Style(text string) (string, []StyleRange) {
	if !HasMarkup(text) {
		return text, nil
	}
	return RemoveMarkers(text, FindMarkers(text))
}

// runeOffset converts a byte offset of s into a rune offset.
func runeOffset(s string, byteOffset int) int {
	return utf8.RuneCountInString(s[:byteOffset])
}

func clamp(v, upper int) int {
	if v < 0 {
		return 0
	}
	if v > upper {
		return upper
	}
	return v
}
