// Package tui renders a session as an interactive collapsible tree.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/mattn/go-runewidth"
	"github.com/sahilm/fuzzy"

	"github.com/mcncl/jsonlens/internal/clipboard"
	"github.com/mcncl/jsonlens/internal/errors"
	"github.com/mcncl/jsonlens/internal/export"
	"github.com/mcncl/jsonlens/internal/logging"
	"github.com/mcncl/jsonlens/internal/session"
	"github.com/mcncl/jsonlens/internal/tree"
)

// ReloadMsg asks the model to re-read its source file.
// The file watcher sends it from its own goroutine via tea.Program.Send.
type ReloadMsg struct{}

const (
	defaultHeight = 24
	indentWidth   = 2
	// chrome is the header, status and help lines.
	chrome = 3
)

// Options configures a Model.
type Options struct {
	// Path is re-read on ReloadMsg. Empty disables reloading.
	Path     string
	Exporter *export.Exporter
	Sink     clipboard.Sink
	Logger   *log.Logger
}

// Model is the bubbletea model for the browse command.
type Model struct {
	session  *session.Session
	exporter *export.Exporter
	sink     clipboard.Sink
	logger   *log.Logger
	path     string

	rows   []*tree.Row
	cursor int
	offset int
	width  int
	height int

	search    textinput.Model
	searching bool
	matches   []string // row IDs, best match first
	match     int

	keys     keyMap
	help     help.Model
	status   string
	failed   bool
	quitting bool
}

// New builds a model over s. s may be empty; the view then says so.
func New(s *session.Session, opts Options) Model {
	if opts.Exporter == nil {
		opts.Exporter = export.New(export.DefaultOptions())
	}
	if opts.Sink == nil {
		opts.Sink = clipboard.System{}
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}

	ti := textinput.New()
	ti.Prompt = "/"
	ti.Placeholder = "key"
	ti.CharLimit = 128

	m := Model{
		session:  s,
		exporter: opts.Exporter,
		sink:     opts.Sink,
		logger:   opts.Logger,
		path:     opts.Path,
		search:   ti,
		keys:     defaultKeyMap(),
		help:     help.New(),
	}
	m.refresh("")
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ensureVisible()
		return m, nil

	case ReloadMsg:
		m.reload()
		return m, nil

	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Up):
		m.move(-1)
	case key.Matches(msg, m.keys.Down):
		m.move(1)
	case key.Matches(msg, m.keys.PageUp):
		m.move(-m.bodyHeight())
	case key.Matches(msg, m.keys.PageDown):
		m.move(m.bodyHeight())
	case key.Matches(msg, m.keys.Top):
		m.move(-len(m.rows))
	case key.Matches(msg, m.keys.Bottom):
		m.move(len(m.rows))
	case key.Matches(msg, m.keys.Toggle):
		m.toggle()
	case key.Matches(msg, m.keys.ExpandAll):
		m.withState(func(s *tree.State) { s.ExpandAll() })
	case key.Matches(msg, m.keys.CollapseAll):
		m.withState(func(s *tree.State) { s.CollapseAll() })
	case key.Matches(msg, m.keys.Depth):
		m.revealDepth(msg.String())
	case key.Matches(msg, m.keys.CopyVisible):
		m.copyVisible()
	case key.Matches(msg, m.keys.CopyRow):
		m.copySubtree(export.ModeRow)
	case key.Matches(msg, m.keys.CopyKeys):
		m.copySubtree(export.ModeKey)
	case key.Matches(msg, m.keys.CopyValues):
		m.copySubtree(export.ModeValue)
	case key.Matches(msg, m.keys.Search):
		if m.session.Loaded() {
			m.searching = true
			m.search.SetValue("")
			m.matches = nil
			return m, m.search.Focus()
		}
	case key.Matches(msg, m.keys.NextMatch):
		m.stepMatch(1)
	case key.Matches(msg, m.keys.PrevMatch):
		m.stepMatch(-1)
	}
	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.searching = false
		m.search.Blur()
		m.matches = nil
		return m, nil
	case tea.KeyEnter:
		m.searching = false
		m.search.Blur()
		if len(m.matches) == 0 {
			m.setStatus(fmt.Sprintf("No key matches %q", m.search.Value()), true)
			return m, nil
		}
		m.match = 0
		m.jumpTo(m.matches[0])
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.findMatches()
	return m, cmd
}

// refresh re-reads the visible rows and tries to keep the cursor on keep.
func (m *Model) refresh(keep string) {
	m.rows = nil
	if st := m.session.State(); st != nil {
		m.rows = st.VisibleRows()
	}
	// A hidden row hands the cursor to its nearest visible ancestor.
	for t := m.session.Tree(); keep != "" && t != nil; {
		if i := m.indexOf(keep); i >= 0 {
			m.cursor = i
			break
		}
		p := t.Parent(keep)
		if p == nil {
			break
		}
		keep = p.ID
	}
	m.clampCursor()
	m.ensureVisible()
}

func (m *Model) indexOf(id string) int {
	for i, r := range m.rows {
		if r.ID == id {
			return i
		}
	}
	return -1
}

func (m *Model) clampCursor() {
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) bodyHeight() int {
	h := m.height
	if h <= 0 {
		h = defaultHeight
	}
	h -= chrome
	if m.searching {
		h--
	}
	if h < 1 {
		h = 1
	}
	return h
}

// ensureVisible adjusts scroll to keep the cursor on screen.
func (m *Model) ensureVisible() {
	height := m.bodyHeight()
	if m.cursor < m.offset {
		m.offset = m.cursor
	} else if m.cursor >= m.offset+height {
		m.offset = m.cursor - height + 1
	}

	maxOffset := len(m.rows) - height
	if maxOffset < 0 {
		maxOffset = 0
	}
	if m.offset > maxOffset {
		m.offset = maxOffset
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

func (m *Model) move(delta int) {
	m.cursor += delta
	m.clampCursor()
	m.ensureVisible()
}

// Selected returns the row under the cursor, or nil.
func (m Model) Selected() *tree.Row {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return nil
	}
	return m.rows[m.cursor]
}

func (m *Model) setStatus(s string, failed bool) {
	m.status = s
	m.failed = failed
}

func (m *Model) withState(fn func(*tree.State)) {
	st := m.session.State()
	if st == nil {
		return
	}
	keep := ""
	if r := m.Selected(); r != nil {
		keep = r.ID
	}
	fn(st)
	m.refresh(keep)
}

func (m *Model) toggle() {
	r := m.Selected()
	if r == nil {
		return
	}
	if !r.HasChildren {
		m.setStatus(fmt.Sprintf("%s has no children", r.Key), false)
		return
	}
	if err := m.session.State().Toggle(r.ID); err != nil {
		m.setStatus(errors.UserFriendlyError(err), true)
		return
	}
	m.refresh(r.ID)
}

func (m *Model) revealDepth(k string) {
	t := m.session.Tree()
	if t == nil {
		return
	}
	n := int(k[0] - '0')
	if n == 0 {
		n = t.MaxLevel + 1
	}
	m.withState(func(s *tree.State) { s.RevealToDepth(n) })
	m.setStatus(fmt.Sprintf("Depth %d", n), false)
}

func (m *Model) copyVisible() {
	st := m.session.State()
	if st == nil {
		m.setStatus(errors.UserFriendlyError(errors.NewExportError("nothing loaded", errors.ErrNoRows)), false)
		return
	}
	text, err := m.exporter.Visible(st)
	m.deliver(text, err, "visible rows")
}

func (m *Model) copySubtree(mode export.Mode) {
	r := m.Selected()
	if r == nil {
		m.setStatus(errors.UserFriendlyError(errors.NewExportError("nothing selected", errors.ErrNoRows)), false)
		return
	}
	text, err := m.exporter.WithMode(mode).Subtree(m.session.Tree(), r.ID)
	m.deliver(text, err, fmt.Sprintf("%s (%s)", r.Key, mode))
}

func (m *Model) deliver(text string, err error, what string) {
	if errors.IsNoRows(err) {
		m.setStatus(errors.UserFriendlyError(err), false)
		return
	}
	if err != nil {
		m.setStatus(errors.UserFriendlyError(err), true)
		return
	}
	if err := m.sink.WriteAll(text); err != nil {
		m.logger.Warn("clipboard write failed", "err", err)
		m.setStatus(errors.UserFriendlyError(err), true)
		return
	}
	lines := strings.Count(text, "\n")
	m.setStatus(fmt.Sprintf("Copied %d line(s) of %s", lines, what), false)
}

func (m *Model) reload() {
	if m.path == "" {
		return
	}
	keep := ""
	if r := m.Selected(); r != nil {
		keep = r.ID
	}
	if err := m.session.LoadFile(m.path); err != nil {
		m.logger.Warn("reload failed", "path", m.path, "err", err)
		m.setStatus("Reload failed, showing previous document: "+errors.UserFriendlyError(err), true)
		return
	}
	m.matches = nil
	m.refresh(keep)
	m.setStatus("Reloaded "+m.path, false)
}

// findMatches ranks every row, hidden ones included, by fuzzy key match.
func (m *Model) findMatches() {
	m.matches = nil
	m.match = 0
	t := m.session.Tree()
	query := strings.TrimSpace(m.search.Value())
	if t == nil || query == "" {
		return
	}

	keys := make([]string, t.Len())
	for i, r := range t.Rows {
		keys[i] = r.Key
	}
	for _, found := range fuzzy.Find(query, keys) {
		m.matches = append(m.matches, t.Rows[found.Index].ID)
	}
}

func (m *Model) stepMatch(delta int) {
	if len(m.matches) == 0 {
		return
	}
	m.match = (m.match + delta + len(m.matches)) % len(m.matches)
	m.jumpTo(m.matches[m.match])
}

// jumpTo expands every ancestor of id and moves the cursor onto it.
func (m *Model) jumpTo(id string) {
	t, st := m.session.Tree(), m.session.State()
	if t == nil {
		return
	}

	var chain []string
	for p := t.Parent(id); p != nil; p = t.Parent(p.ID) {
		chain = append(chain, p.ID)
	}
	for i := len(chain) - 1; i >= 0; i-- {
		if err := st.SetExpanded(chain[i], true); err != nil {
			m.setStatus(errors.UserFriendlyError(err), true)
			return
		}
	}
	m.refresh(id)
	if len(m.matches) > 1 {
		m.setStatus(fmt.Sprintf("Match %d of %d", m.match+1, len(m.matches)), false)
	} else {
		m.setStatus("", false)
	}
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.header())
	b.WriteString("\n")

	switch {
	case !m.session.Loaded():
		b.WriteString(emptyStyle.Render("No document loaded"))
		b.WriteString("\n")
	case m.session.Tree().Empty():
		b.WriteString(emptyStyle.Render("Empty JSON"))
		b.WriteString("\n")
	default:
		b.WriteString(m.body())
	}

	if m.searching {
		b.WriteString(m.search.View())
		b.WriteString(subtleStyle.Render(fmt.Sprintf("  %d match(es)", len(m.matches))))
		b.WriteString("\n")
	}
	if m.status != "" {
		if m.failed {
			b.WriteString(errorStyle.Render(m.status))
		} else {
			b.WriteString(statusStyle.Render(m.status))
		}
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) header() string {
	title := titleStyle.Render("jsonlens")
	if m.path != "" {
		title += " " + subtleStyle.Render(m.path)
	}
	if t := m.session.Tree(); t != nil {
		title += subtleStyle.Render(fmt.Sprintf("  %d/%d rows  depth %d", len(m.rows), t.Len(), t.MaxLevel+1))
	}
	return title
}

func (m Model) body() string {
	end := m.offset + m.bodyHeight()
	if end > len(m.rows) {
		end = len(m.rows)
	}
	window := m.rows[m.offset:end]

	keyWidth := 0
	for _, r := range window {
		if w := r.Level*indentWidth + runewidth.StringWidth(r.Key); w > keyWidth {
			keyWidth = w
		}
	}
	if limit := m.maxKeyWidth(); keyWidth > limit {
		keyWidth = limit
	}

	st := m.session.State()
	var b strings.Builder
	for i, r := range window {
		b.WriteString(m.renderRow(r, st.Expanded(r.ID), keyWidth, m.offset+i == m.cursor))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) maxKeyWidth() int {
	if m.width <= 0 {
		return 40
	}
	w := m.width / 2
	if w < 8 {
		w = 8
	}
	return w
}

func (m Model) renderRow(r *tree.Row, expanded bool, keyWidth int, selected bool) string {
	marker := "  "
	if r.HasChildren {
		if expanded {
			marker = "▾ "
		} else {
			marker = "▸ "
		}
	}

	indent := strings.Repeat(" ", r.Level*indentWidth)
	avail := keyWidth - len(indent)
	if avail < 1 {
		avail = 1
	}
	label := runewidth.Truncate(r.Key, avail, "…")
	pad := runewidth.FillRight("", avail-runewidth.StringWidth(label))

	ks := keyStyle
	if r.IsIndex {
		ks = indexStyle
	}

	value := r.Summary
	if r.HasChildren && expanded {
		value = ""
	}

	line := markerStyle.Render(marker) + indent + ks.Render(label) + pad + "  " + valueStyle(r.Kind).Render(value)
	if selected {
		return cursorStyle.Render(line)
	}
	return line
}
