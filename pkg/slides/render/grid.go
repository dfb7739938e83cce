package render

import "fmt"

// Grid is a table that can only grow. Insert* adds one row or column at the
// given index, shifting everything at or after it.
type Grid interface {
	InsertRow(index int) error
	InsertColumn(index int) error
}

// TableDimensions holds the current and wanted size of a table.
type TableDimensions struct {
	CurrentRows int
	CurrentCols int
	TargetRows  int
	TargetCols  int
}

// NewTableDimensions builds the dimensions for a table holding one header
// row plus dataRows rows, with one column per header.
func NewTableDimensions(currentRows, currentCols, headers, dataRows int) TableDimensions {
	return TableDimensions{
		CurrentRows: currentRows,
		CurrentCols: currentCols,
		TargetRows:  dataRows + 1,
		TargetCols:  headers,
	}
}

// GridPlan is the ordered list of insertions that grows a table.
type GridPlan struct {
	Columns []int
	Rows    []int
}

// Empty reports whether the plan inserts nothing.
func (p GridPlan) Empty() bool {
	return len(p.Columns) == 0 && len(p.Rows) == 0
}

// Plan computes the column insertions followed by the row insertions.
func (d TableDimensions) Plan() GridPlan {
	return GridPlan{
		Columns: PlanColumnInsertions(d.CurrentCols, d.TargetCols),
		Rows:    PlanRowInsertions(d.CurrentRows, d.TargetRows),
	}
}

// Apply runs the plan against g, columns first. It stops at the first error.
func (p GridPlan) Apply(g Grid) error {
	for _, idx := range p.Columns {
		if err := g.InsertColumn(idx); err != nil {
			return fmt.Errorf("insert column %d: %w", idx, err)
		}
	}
	for _, idx := range p.Rows {
		if err := g.InsertRow(idx); err != nil {
			return fmt.Errorf("insert row %d: %w", idx, err)
		}
	}
	return nil
}

// PlanColumnInsertions returns the indices at which columns must be inserted
// to go from current to target columns. Shrinking is not supported: when
// target <= current the plan is empty.
func PlanColumnInsertions(current, target int) []int {
	return planInsertions(current, target)
}

// PlanRowInsertions is PlanColumnInsertions for rows.
func PlanRowInsertions(current, target int) []int {
	return planInsertions(current, target)
}

// planInsertions appends at the trailing edge: the k-th insertion lands at
// current+k because every earlier insertion already grew the grid.
func planInsertions(current, target int) []int {
	if target <= current {
		return []int{}
	}
	plan := make([]int, 0, target-current)
	for i := 0; i < target-current; i++ {
		plan = append(plan, current+i)
	}
	return plan
}
