// Package export renders tree rows as tab-delimited text that pastes into
// a spreadsheet with keys stepping one column per level and all values
// lined up in a single column.
//
// A parent that contributes no value of its own writes its key and a tab
// and leaves the line open, so its first descendant continues on the same
// line. Leaves are padded with (maxLevel - level) tabs before the value.
package export

import (
	"fmt"
	"strings"

	"github.com/iancoleman/strcase"

	"github.com/mcncl/jsonlens/internal/errors"
	"github.com/mcncl/jsonlens/internal/tree"
)

// Mode selects which columns are written.
type Mode string

const (
	ModeRow   Mode = "row"   // key and value
	ModeKey   Mode = "key"   // keys only
	ModeValue Mode = "value" // values only
)

// ParseMode converts a user-supplied name into a Mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeRow, "":
		return ModeRow, nil
	case ModeKey:
		return ModeKey, nil
	case ModeValue:
		return ModeValue, nil
	}
	return "", errors.NewExportError(fmt.Sprintf("unknown export mode %q (want row, key or value)", s), nil)
}

// KeyCase rewrites object keys in exported text.
type KeyCase string

const (
	KeyCaseNone       KeyCase = ""
	KeyCaseSnake      KeyCase = "snake"
	KeyCaseCamel      KeyCase = "camel"
	KeyCaseLowerCamel KeyCase = "lower_camel"
	KeyCaseKebab      KeyCase = "kebab"
)

func (k KeyCase) apply(key string) string {
	switch k {
	case KeyCaseSnake:
		return strcase.ToSnake(key)
	case KeyCaseCamel:
		return strcase.ToCamel(key)
	case KeyCaseLowerCamel:
		return strcase.ToLowerCamel(key)
	case KeyCaseKebab:
		return strcase.ToKebab(key)
	default:
		return key
	}
}

// Options controls an Exporter.
type Options struct {
	Mode Mode
	// ContainerSummary prints Object{n} / Array(n) as the value of a
	// collapsed parent in a visible-rows export. When false the value
	// cell is left empty.
	ContainerSummary bool
	KeyCase          KeyCase
}

// DefaultOptions returns key+value export with container summaries.
func DefaultOptions() Options {
	return Options{Mode: ModeRow, ContainerSummary: true}
}

// Exporter turns row selections into aligned text.
type Exporter struct {
	opts Options
}

// New creates an Exporter.
func New(opts Options) *Exporter {
	if opts.Mode == "" {
		opts.Mode = ModeRow
	}
	return &Exporter{opts: opts}
}

// WithMode returns a copy of the exporter writing in mode m.
func (e *Exporter) WithMode(m Mode) *Exporter {
	opts := e.opts
	opts.Mode = m
	return New(opts)
}

// Mode returns the exporter's mode.
func (e *Exporter) Mode() Mode {
	return e.opts.Mode
}

// Visible exports the rows currently visible in s. An expanded parent
// merges onto its first child's line. A collapsed parent is written like
// a leaf, since its children are not part of the output. Value mode
// never prints a parent, collapsed or not.
func (e *Exporter) Visible(s *tree.State) (string, error) {
	rows := s.VisibleRows()
	if len(rows) == 0 {
		return "", errors.NewExportError("no visible rows", errors.ErrNoRows)
	}
	merges := func(r *tree.Row) bool {
		if e.opts.Mode == ModeValue {
			return r.HasChildren
		}
		return r.HasChildren && s.Expanded(r.ID)
	}
	out := e.write(rows, merges)
	if out == "" {
		return "", errors.NewExportError("no visible values", errors.ErrNoRows)
	}
	return out, nil
}

// Subtree exports the row id and all its descendants regardless of what
// is currently visible. Every parent merges; in value mode parents print
// nothing at all.
func (e *Exporter) Subtree(t *tree.Tree, id string) (string, error) {
	rows, err := t.Subtree(id)
	if err != nil {
		return "", err
	}
	if len(rows) == 0 {
		return "", errors.NewExportError("empty subtree", errors.ErrNoRows)
	}
	merges := func(r *tree.Row) bool {
		return r.HasChildren
	}
	return e.write(rows, merges), nil
}

// Key returns the display key of a single row.
func (e *Exporter) Key(t *tree.Tree, id string) (string, error) {
	row, ok := t.Row(id)
	if !ok {
		return "", errors.NewTreeError(fmt.Sprintf("row %q not found", id), errors.ErrUnknownRow)
	}
	return e.key(row), nil
}

func (e *Exporter) key(r *tree.Row) string {
	if r.IsIndex {
		return r.Key
	}
	return e.opts.KeyCase.apply(r.Key)
}

// value is the bare literal used in exported text.
func (e *Exporter) value(r *tree.Row) string {
	if r.Kind.IsContainer() && !e.opts.ContainerSummary {
		return ""
	}
	return r.Summary
}

func (e *Exporter) write(rows []*tree.Row, merges func(*tree.Row) bool) string {
	maxLevel := 0
	for _, r := range rows {
		if r.Level > maxLevel {
			maxLevel = r.Level
		}
	}

	var b strings.Builder
	pendingMerge := false
	for _, r := range rows {
		merge := merges(r)

		if e.opts.Mode == ModeValue {
			if !merge {
				b.WriteString(e.value(r))
				b.WriteByte('\n')
			}
			continue
		}

		if !pendingMerge {
			b.WriteString(strings.Repeat("\t", r.Level))
		}
		pendingMerge = false
		b.WriteString(e.key(r))

		if merge {
			b.WriteByte('\t')
			pendingMerge = true
			continue
		}
		if e.opts.Mode == ModeKey {
			b.WriteByte('\n')
			continue
		}
		b.WriteString(strings.Repeat("\t", maxLevel-r.Level))
		b.WriteByte('\t')
		b.WriteString(e.value(r))
		b.WriteByte('\n')
	}
	return b.String()
}
