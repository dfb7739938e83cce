// Package render provides the pure text and table helpers used while
// generating slides.
//
// Nothing in this package touches a presentation package. The functions take
// plain values and return plain values, so the slides package (and anything
// else) can call them without setting up a document.
//
// # Structure Organization
//
//   - markers.go: inline markup scanning (**bold**, [[important]]) and the
//     offset bookkeeping that maps markers onto the de-markered text
//   - grid.go: append-only row/column insertion plans for tables
//
// # Key Functions
//
// Style: Removes marker delimiters from a text and reports which ranges of the
// resulting plain text need styling.
//
//	plain, ranges := render.Style("これは**太字**のテスト")
//	// plain  == "これは太字のテスト"
//	// ranges == []render.StyleRange{{Start: 3, End: 5, Kind: render.Bold}}
//
// Offsets are counted in runes, not bytes.
//
// PlanColumnInsertions / PlanRowInsertions: Compute where new columns and
// rows go when a table can only grow.
//
//	render.PlanColumnInsertions(1, 4) // [1 2 3]
//	render.PlanColumnInsertions(5, 4) // []
//
// # Design Principles
//
// Pure Functions: All functions in this package
//   - Do not maintain state
//   - Do not call back into the slides package
//   - Never return errors for malformed input
//
// They are safe for concurrent use.
package render
