// Package tree flattens a parsed JSON document into an ordered row
// sequence and tracks which of those rows are expanded and visible.
//
// Rows are emitted in pre-order, so a row's descendants always occupy the
// contiguous range directly after it. Both Flatten and State rely on this:
// subtree operations walk that range once instead of searching by parent.
package tree

import (
	"fmt"

	"github.com/mcncl/jsonlens/internal/errors"
	"github.com/mcncl/jsonlens/internal/models"
)

// RootKey labels the single row produced for a primitive document.
const RootKey = "Root"

// Row is one flattened entry: an object member, an array element, or the
// synthetic root of a primitive document.
type Row struct {
	ID          string
	ParentID    string // empty for level-0 rows
	Key         string
	Level       int
	Kind        models.Kind
	Summary     string
	HasChildren bool
	Children    []string

	// IsIndex is set for array elements and the primitive root, whose keys
	// are positional labels rather than names from the document.
	IsIndex bool
}

// IsRoot reports whether the row sits at the top level.
func (r *Row) IsRoot() bool {
	return r.ParentID == ""
}

// Tree is the result of one Flatten call.
type Tree struct {
	Rows     []*Row
	MaxLevel int

	index  map[string]int
	parent []int // index of the parent row, -1 for roots
	end    []int // one past the last descendant
}

// Len returns the number of rows.
func (t *Tree) Len() int {
	return len(t.Rows)
}

// Empty reports whether the document produced no rows at all.
// Callers render this as an explicit empty state.
func (t *Tree) Empty() bool {
	return len(t.Rows) == 0
}

// Row looks up a row by ID.
func (t *Tree) Row(id string) (*Row, bool) {
	i, ok := t.index[id]
	if !ok {
		return nil, false
	}
	return t.Rows[i], true
}

// Parent returns the parent row, or nil for a root.
func (t *Tree) Parent(id string) *Row {
	i, ok := t.index[id]
	if !ok || t.parent[i] < 0 {
		return nil
	}
	return t.Rows[t.parent[i]]
}

// Subtree returns the row and all of its descendants in pre-order.
func (t *Tree) Subtree(id string) ([]*Row, error) {
	i, err := t.lookup(id)
	if err != nil {
		return nil, err
	}
	return t.Rows[i:t.end[i]], nil
}

func (t *Tree) lookup(id string) (int, error) {
	i, ok := t.index[id]
	if !ok {
		return 0, errors.NewTreeError(fmt.Sprintf("row %q not found", id), errors.ErrUnknownRow)
	}
	return i, nil
}

type frame struct {
	key     string
	value   *models.Value
	level   int
	parent  int
	isIndex bool
}

// Flatten walks v depth-first and emits one row per object member or array
// element. The members of a top-level container become level-0 rows; the
// container itself is not materialized. A primitive document yields one row
// keyed RootKey. Row IDs are "row-0", "row-1", ... and only mean something
// within the returned Tree.
func Flatten(v *models.Value) *Tree {
	t := &Tree{index: make(map[string]int)}
	if v == nil {
		return t
	}

	var stack []frame
	if v.Kind.IsContainer() {
		stack = pushEntries(stack, v, 0, -1)
	} else {
		stack = append(stack, frame{key: RootKey, value: v, level: 0, parent: -1, isIndex: true})
	}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		i := len(t.Rows)
		row := &Row{
			ID:          fmt.Sprintf("row-%d", i),
			Key:         f.key,
			Level:       f.level,
			Kind:        f.value.Kind,
			Summary:     f.value.Summary(),
			HasChildren: f.value.Len() > 0,
			IsIndex:     f.isIndex,
		}
		if f.parent >= 0 {
			p := t.Rows[f.parent]
			row.ParentID = p.ID
			p.Children = append(p.Children, row.ID)
		}
		if f.level > t.MaxLevel {
			t.MaxLevel = f.level
		}

		t.Rows = append(t.Rows, row)
		t.index[row.ID] = i
		t.parent = append(t.parent, f.parent)
		t.end = append(t.end, 0)

		if row.HasChildren {
			stack = pushEntries(stack, f.value, f.level+1, i)
		}
	}

	// Pre-order: a subtree ends where the next row at the same or a
	// shallower level begins.
	var open []int
	for i, row := range t.Rows {
		for len(open) > 0 && t.Rows[open[len(open)-1]].Level >= row.Level {
			t.end[open[len(open)-1]] = i
			open = open[:len(open)-1]
		}
		open = append(open, i)
	}
	for _, i := range open {
		t.end[i] = len(t.Rows)
	}

	return t
}

// pushEntries pushes the children of v in reverse so they pop in order.
func pushEntries(stack []frame, v *models.Value, level, parent int) []frame {
	entries := v.Entries()
	isIndex := v.Kind == models.KindArray
	for i := len(entries) - 1; i >= 0; i-- {
		stack = append(stack, frame{
			key:     entries[i].Key,
			value:   entries[i].Value,
			level:   level,
			parent:  parent,
			isIndex: isIndex,
		})
	}
	return stack
}
