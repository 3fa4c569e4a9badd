package dataprocessing

import (
	"fmt"
	"slices"
)

// Cell is a nullable table value. An empty field or a field missing from a
// short row reads as null.
type Cell struct {
	Value string
	Valid bool
}

// Str returns a non-null cell
func Str(v string) Cell {
	return Cell{Value: v, Valid: true}
}

// Null returns a null cell
func Null() Cell {
	return Cell{}
}

func cellOf(v string) Cell {
	if v == "" {
		return Null()
	}
	return Str(v)
}

// Table is an in-memory tabular dataset read from a raw corpus file
type Table struct {
	Columns []string
	Rows    [][]Cell
}

// Len returns the number of data rows
func (t *Table) Len() int {
	return len(t.Rows)
}

// ColumnIndex returns the position of name, or -1
func (t *Table) ColumnIndex(name string) int {
	return slices.Index(t.Columns, name)
}

// Cell returns the value at row i of column j; out-of-range columns are null
func (t *Table) Cell(i, j int) Cell {
	row := t.Rows[i]
	if j < 0 || j >= len(row) {
		return Null()
	}
	return row[j]
}

// Rename replaces column names positionally. names must cover every column.
func (t *Table) Rename(names []string) error {
	if len(names) != len(t.Columns) {
		return fmt.Errorf("rename needs %d column names, got %d", len(t.Columns), len(names))
	}
	t.Columns = slices.Clone(names)
	return nil
}

// Drop removes the named columns. Names not present are ignored.
func (t *Table) Drop(names ...string) {
	keep := make([]int, 0, len(t.Columns))
	for j, col := range t.Columns {
		if !slices.Contains(names, col) {
			keep = append(keep, j)
		}
	}
	if len(keep) == len(t.Columns) {
		return
	}

	columns := make([]string, len(keep))
	for k, j := range keep {
		columns[k] = t.Columns[j]
	}
	for i := range t.Rows {
		row := make([]Cell, len(keep))
		for k, j := range keep {
			row[k] = t.Cell(i, j)
		}
		t.Rows[i] = row
	}
	t.Columns = columns
}

// Pairs projects the text and sentiment columns
func (t *Table) Pairs(textColumn, sentimentColumn string) ([]Pair, error) {
	ti := t.ColumnIndex(textColumn)
	if ti < 0 {
		return nil, fmt.Errorf("column %q not found in %v", textColumn, t.Columns)
	}
	si := t.ColumnIndex(sentimentColumn)
	if si < 0 {
		return nil, fmt.Errorf("column %q not found in %v", sentimentColumn, t.Columns)
	}

	pairs := make([]Pair, len(t.Rows))
	for i := range t.Rows {
		pairs[i] = Pair{Text: t.Cell(i, ti), Sentiment: t.Cell(i, si)}
	}
	return pairs, nil
}

// Pair is a (text, raw sentiment) row before normalization
type Pair struct {
	Text      Cell
	Sentiment Cell
}

// P builds a non-null pair
func P(text, sentiment string) Pair {
	return Pair{Text: Str(text), Sentiment: Str(sentiment)}
}

// DedupStats records the row count after each deduplication stage
type DedupStats struct {
	Initial           int
	AfterNullDrop     int
	AfterSentinelDrop int
	AfterExactDedup   int
	AfterConflictDrop int
	// ConflictingTexts is the number of distinct texts removed for carrying
	// more than one row after exact deduplication
	ConflictingTexts int
}

// Dropped returns the rows removed per reason
func (s DedupStats) Dropped() map[string]int {
	return map[string]int{
		"null":     s.Initial - s.AfterNullDrop,
		"sentinel": s.AfterNullDrop - s.AfterSentinelDrop,
		"exact":    s.AfterSentinelDrop - s.AfterExactDedup,
		"conflict": s.AfterExactDedup - s.AfterConflictDrop,
	}
}
