package tree

import (
	"fmt"

	"github.com/mcncl/jsonlens/internal/errors"
)

// State holds the expand/collapse and visibility flags for one Tree.
// It maintains the invariant that a row is visible iff it is a root, or
// its parent is both visible and expanded.
type State struct {
	tree     *Tree
	expanded []bool
	visible  []bool
}

// NewState returns the initial, fully expanded view of t.
func NewState(t *Tree) *State {
	s := &State{
		tree:     t,
		expanded: make([]bool, t.Len()),
		visible:  make([]bool, t.Len()),
	}
	s.ExpandAll()
	return s
}

// Tree returns the tree this state belongs to.
func (s *State) Tree() *Tree {
	return s.tree
}

// Expanded reports whether the row shows its direct children.
func (s *State) Expanded(id string) bool {
	i, ok := s.tree.index[id]
	return ok && s.expanded[i]
}

// Visible reports whether the row is shown.
func (s *State) Visible(id string) bool {
	i, ok := s.tree.index[id]
	return ok && s.visible[i]
}

// SetExpanded sets the row's expanded flag and recomputes visibility for
// its descendants. Collapsing hides the whole subtree. Expanding reveals
// the direct children and, below them, only what each descendant's own
// retained flag allows.
func (s *State) SetExpanded(id string, expanded bool) error {
	i, err := s.tree.lookup(id)
	if err != nil {
		return err
	}
	if !s.tree.Rows[i].HasChildren {
		return errors.NewTreeError(fmt.Sprintf("row %q cannot be expanded", id), errors.ErrNoChildren)
	}
	s.expanded[i] = expanded
	s.propagate(i)
	return nil
}

// Toggle flips the row's expanded flag.
func (s *State) Toggle(id string) error {
	i, err := s.tree.lookup(id)
	if err != nil {
		return err
	}
	return s.SetExpanded(id, !s.expanded[i])
}

// propagate recomputes visibility for the descendants of row i.
// Parents precede children in the range, so one forward pass suffices.
func (s *State) propagate(i int) {
	for j := i + 1; j < s.tree.end[i]; j++ {
		p := s.tree.parent[j]
		s.visible[j] = s.visible[p] && s.expanded[p]
	}
}

// ExpandAll expands every row that has children and shows every row.
func (s *State) ExpandAll() {
	for i, row := range s.tree.Rows {
		s.expanded[i] = row.HasChildren
		s.visible[i] = true
	}
}

// CollapseAll collapses every row. Only level-0 rows stay visible.
func (s *State) CollapseAll() {
	for i, row := range s.tree.Rows {
		s.expanded[i] = false
		s.visible[i] = row.IsRoot()
	}
}

// RevealToDepth shows exactly the rows above level n and expands every
// parent above level n-1, independent of earlier toggles. n is clamped to
// 1 so that roots always stay visible; MaxLevel+1 reveals everything.
func (s *State) RevealToDepth(n int) {
	if n < 1 {
		n = 1
	}
	for i, row := range s.tree.Rows {
		s.visible[i] = row.Level < n
		s.expanded[i] = row.HasChildren && row.Level < n-1
	}
}

// VisibleRows returns the visible rows in pre-order.
func (s *State) VisibleRows() []*Row {
	rows := make([]*Row, 0, len(s.tree.Rows))
	for i, row := range s.tree.Rows {
		if s.visible[i] {
			rows = append(rows, row)
		}
	}
	return rows
}

// VisibleCount returns the number of visible rows.
func (s *State) VisibleCount() int {
	n := 0
	for _, v := range s.visible {
		if v {
			n++
		}
	}
	return n
}

// Check verifies the visibility invariant and reports the first row that
// violates it.
func (s *State) Check() error {
	for i, row := range s.tree.Rows {
		want := true
		if p := s.tree.parent[i]; p >= 0 {
			want = s.visible[p] && s.expanded[p]
		}
		if s.visible[i] != want {
			return errors.NewTreeError(
				fmt.Sprintf("row %q visible=%t, want %t", row.ID, s.visible[i], want),
				nil,
			)
		}
	}
	return nil
}
