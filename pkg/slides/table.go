package slides

import (
	"fmt"
	"strconv"

	"github.com/benjaminschreck/go-slides/pkg/slides/render"
	"github.com/benjaminschreck/go-slides/pkg/slides/xml"
)

// merge attributes a copied cell must not inherit
var cellMergeAttrs = []string{"gridSpan", "rowSpan", "hMerge", "vMerge"}

// Table is an a:tbl inside a graphic frame. It implements render.Grid.
type Table struct {
	frame *xml.Node
	tbl   *xml.Node
}

var _ render.Grid = (*Table)(nil)

// Name returns the frame name shown in the selection pane.
func (t *Table) Name() string {
	return t.frame.Path("p:nvGraphicFramePr", "p:cNvPr").AttrOr("name", "")
}

func (t *Table) rows() []*xml.Node {
	return t.tbl.ChildrenNamed("a:tr")
}

func (t *Table) gridColumns() []*xml.Node {
	return t.tbl.Path("a:tblGrid").ChildrenNamed("a:gridCol")
}

// NumRows returns the number of rows.
func (t *Table) NumRows() int {
	return len(t.rows())
}

// NumColumns returns the number of grid columns.
func (t *Table) NumColumns() int {
	return len(t.gridColumns())
}

// Cell returns the cell at row, col.
func (t *Table) Cell(row, col int) (*TableCell, error) {
	rows := t.rows()
	if row < 0 || row >= len(rows) {
		return nil, fmt.Errorf("row %d out of range (table has %d rows)", row, len(rows))
	}
	cells := rows[row].ChildrenNamed("a:tc")
	if col < 0 || col >= len(cells) {
		return nil, fmt.Errorf("column %d out of range (row %d has %d cells)", col, row, len(cells))
	}
	return &TableCell{node: cells[col]}, nil
}

// TextFrames returns the text bodies of all cells, row by row.
func (t *Table) TextFrames() []*TextFrame {
	var out []*TextFrame
	for _, tr := range t.rows() {
		for _, tc := range tr.ChildrenNamed("a:tc") {
			if f := newTextFrame(tc.Child("a:txBody")); f != nil {
				out = append(out, f)
			}
		}
	}
	return out
}

// InsertRow inserts an empty row at index, copying the formatting of the row
// above it (or of the first row when index is 0).
func (t *Table) InsertRow(index int) error {
	rows := t.rows()
	if index < 0 || index > len(rows) {
		return fmt.Errorf("row index %d out of range [0, %d]", index, len(rows))
	}
	if len(rows) == 0 {
		return fmt.Errorf("table has no row to copy")
	}

	row := rows[max(index-1, 0)].Clone()
	for _, ext := range row.ChildrenNamed("a:extLst") {
		row.RemoveChild(ext)
	}
	for _, tc := range row.ChildrenNamed("a:tc") {
		clearCell(tc)
	}

	if index < len(rows) {
		t.tbl.InsertBefore(row, rows[index])
	} else {
		t.tbl.InsertAfter(row, rows[len(rows)-1])
	}
	return nil
}

// InsertColumn inserts an empty column at index, copying the formatting of
// the column to its left (or of the first column when index is 0).
func (t *Table) InsertColumn(index int) error {
	cols := t.gridColumns()
	if index < 0 || index > len(cols) {
		return fmt.Errorf("column index %d out of range [0, %d]", index, len(cols))
	}
	if len(cols) == 0 {
		return fmt.Errorf("table has no column to copy")
	}

	src := max(index-1, 0)
	col := cols[src].Clone()
	for _, ext := range col.ChildrenNamed("a:extLst") {
		col.RemoveChild(ext)
	}
	insertAt(t.tbl.Child("a:tblGrid"), col, cols, index)

	for _, tr := range t.rows() {
		cells := tr.ChildrenNamed("a:tc")
		if len(cells) == 0 {
			continue
		}
		tc := cells[min(src, len(cells)-1)].Clone()
		clearCell(tc)
		insertAt(tr, tc, cells, index)
	}
	return nil
}

// insertAt puts n into parent so that it ends up at position index among
// siblings.
func insertAt(parent, n *xml.Node, siblings []*xml.Node, index int) {
	if index < len(siblings) {
		parent.InsertBefore(n, siblings[index])
		return
	}
	parent.InsertAfter(n, siblings[len(siblings)-1])
}

func clearCell(tc *xml.Node) {
	for _, attr := range cellMergeAttrs {
		tc.RemoveAttr(attr)
	}
	(&TableCell{node: tc}).SetText("")
}

// ColumnWidths returns the grid column widths in EMU.
func (t *Table) ColumnWidths() []int {
	cols := t.gridColumns()
	widths := make([]int, len(cols))
	for i, c := range cols {
		widths[i], _ = strconv.Atoi(c.AttrOr("w", "0"))
	}
	return widths
}

func (t *Table) setColumnWidths(widths []int) {
	for i, c := range t.gridColumns() {
		if i < len(widths) {
			c.SetAttr("w", strconv.Itoa(widths[i]))
		}
	}
}

// Resize grows the table to the given dimensions. Widths of the grown grid
// follow strategy: ColumnResizeFixed keeps every width and widens the frame,
// ColumnResizeRedistribute makes all columns equally wide and
// ColumnResizeProportional scales the columns; both keep the frame width.
func (t *Table) Resize(dims render.TableDimensions, strategy string) error {
	originalWidth := sum(t.ColumnWidths())

	plan := dims.Plan()
	if plan.Empty() {
		return nil
	}
	if err := plan.Apply(t); err != nil {
		return err
	}

	if len(plan.Columns) > 0 {
		t.setColumnWidths(fitColumnWidths(t.ColumnWidths(), originalWidth, strategy))
	}
	t.updateFrameSize()
	return nil
}

// fitColumnWidths adjusts widths after columns were added so that the table
// keeps total width, unless the strategy is fixed.
func fitColumnWidths(widths []int, total int, strategy string) []int {
	current := sum(widths)
	if len(widths) == 0 || total <= 0 || current == total {
		return widths
	}

	newWidths := make([]int, len(widths))
	switch strategy {
	case ColumnResizeRedistribute:
		// Every column gets an equal share, the last one takes the remainder
		share := total / len(widths)
		for i := range newWidths {
			newWidths[i] = share
		}
		newWidths[len(newWidths)-1] += total - share*len(widths)

	case ColumnResizeProportional:
		// Scale each column, the last one absorbs rounding
		used := 0
		for i, width := range widths {
			ratio := float64(width) / float64(current)
			newWidths[i] = int(float64(total) * ratio)
			used += newWidths[i]
		}
		newWidths[len(newWidths)-1] += total - used

	default: // ColumnResizeFixed
		copy(newWidths, widths)
	}
	return newWidths
}

func (t *Table) updateFrameSize() {
	ext := t.frame.Path("p:xfrm", "a:ext")
	if ext == nil {
		return
	}
	ext.SetAttr("cx", strconv.Itoa(sum(t.ColumnWidths())))

	height := 0
	for _, tr := range t.rows() {
		h, _ := strconv.Atoi(tr.AttrOr("h", "0"))
		height += h
	}
	if height > 0 {
		ext.SetAttr("cy", strconv.Itoa(height))
	}
}

func sum(values []int) int {
	total := 0
	for _, v := range values {
		total += v
	}
	return total
}

// TableCell is an a:tc element.
type TableCell struct {
	node *xml.Node
}

// TextFrame returns the text body of the cell, creating an empty one when
// the cell has none.
func (c *TableCell) TextFrame() *TextFrame {
	body := c.node.Child("a:txBody")
	if body == nil {
		body = xml.NewElement("a:txBody")
		body.AppendChild(xml.NewElement("a:bodyPr"))
		body.AppendChild(xml.NewElement("a:lstStyle"))
		body.AppendChild(xml.NewElement("a:p"))
		c.node.PrependChild(body)
	}
	return newTextFrame(body)
}

// Text returns the cell text.
func (c *TableCell) Text() string {
	if body := c.node.Child("a:txBody"); body != nil {
		return newTextFrame(body).Text()
	}
	return ""
}

// SetText replaces the cell text.
func (c *TableCell) SetText(s string) {
	c.TextFrame().SetText(s)
}
