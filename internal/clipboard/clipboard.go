// Package clipboard delivers exported text to the system clipboard.
package clipboard

import (
	"github.com/atotto/clipboard"

	"github.com/mcncl/jsonlens/internal/errors"
)

// Sink receives exported text verbatim.
type Sink interface {
	WriteAll(text string) error
}

// System writes to the OS clipboard via atotto/clipboard.
type System struct{}

// WriteAll implements Sink.
func (System) WriteAll(text string) error {
	if clipboard.Unsupported {
		return errors.NewClipboardError("no clipboard utility available", nil)
	}
	if err := clipboard.WriteAll(text); err != nil {
		return errors.NewClipboardError("failed to write to clipboard", err)
	}
	return nil
}

// Disabled rejects every write. It backs clipboard.enabled: false.
type Disabled struct{}

// WriteAll implements Sink.
func (Disabled) WriteAll(string) error {
	return errors.NewClipboardError("clipboard is disabled in configuration", nil)
}

// Memory keeps the last written text. Tests and dry runs use it.
type Memory struct {
	Text   string
	Writes int
	Err    error
}

// WriteAll implements Sink.
func (m *Memory) WriteAll(text string) error {
	if m.Err != nil {
		return m.Err
	}
	m.Text = text
	m.Writes++
	return nil
}

// New returns the system sink, or Disabled when enabled is false.
func New(enabled bool) Sink {
	if !enabled {
		return Disabled{}
	}
	return System{}
}
