// Package session owns the current row sequence and its visibility state.
// Each successful load replaces both at once; a failed load leaves the
// previous tree untouched.
package session

import (
	"github.com/charmbracelet/log"

	"github.com/mcncl/jsonlens/internal/errors"
	"github.com/mcncl/jsonlens/internal/logging"
	"github.com/mcncl/jsonlens/internal/models"
	"github.com/mcncl/jsonlens/internal/parser"
	"github.com/mcncl/jsonlens/internal/tree"
)

// Session is the tree view over one JSON input.
type Session struct {
	logger       *log.Logger
	initialDepth int

	doc   models.Document
	tree  *tree.Tree
	state *tree.State
}

// New creates an empty session. initialDepth > 0 applies RevealToDepth to
// every freshly loaded tree; 0 keeps it fully expanded.
func New(logger *log.Logger, initialDepth int) *Session {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Session{logger: logger, initialDepth: initialDepth}
}

// Load parses text and replaces the current tree.
func (s *Session) Load(text string) error {
	doc, err := parser.ParseString(text)
	if err != nil {
		s.logger.Debug("load rejected, keeping previous tree", "err", err)
		return err
	}
	s.replace(doc)
	return nil
}

// LoadFile reads and parses path and replaces the current tree.
func (s *Session) LoadFile(path string) error {
	doc, err := parser.ParseFile(path)
	if err != nil {
		s.logger.Debug("load rejected, keeping previous tree", "path", path, "err", err)
		return err
	}
	s.replace(doc)
	return nil
}

func (s *Session) replace(doc models.Document) {
	timer := logging.Start(s.logger)
	t := tree.Flatten(doc.Root)
	st := tree.NewState(t)
	if s.initialDepth > 0 {
		st.RevealToDepth(s.initialDepth)
	}

	s.doc, s.tree, s.state = doc, t, st
	timer.Done("flattened document", "rows", t.Len(), "max_level", t.MaxLevel)
}

// Loaded reports whether a document has been loaded successfully.
func (s *Session) Loaded() bool {
	return s.tree != nil
}

// Document returns the last successfully loaded document.
func (s *Session) Document() models.Document {
	return s.doc
}

// Tree returns the current tree, or nil before the first load.
func (s *Session) Tree() *tree.Tree {
	return s.tree
}

// State returns the current visibility state, or nil before the first load.
func (s *Session) State() *tree.State {
	return s.state
}

// Require returns the tree and state, or an error if nothing is loaded.
func (s *Session) Require() (*tree.Tree, *tree.State, error) {
	if s.tree == nil {
		return nil, nil, errors.NewTreeError("nothing to show yet", errors.ErrNoDocument)
	}
	return s.tree, s.state, nil
}
