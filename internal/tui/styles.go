package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/mcncl/jsonlens/internal/models"
)

var (
	colorText    = lipgloss.Color("#F8F8F2")
	colorMuted   = lipgloss.Color("#6272A4")
	colorPrimary = lipgloss.Color("#BD93F9")
	colorInfo    = lipgloss.Color("#8BE9FD")
	colorSuccess = lipgloss.Color("#50FA7B")
	colorWarning = lipgloss.Color("#FFB86C")
	colorDanger  = lipgloss.Color("#FF5555")
	colorYellow  = lipgloss.Color("#F1FA8C")
	colorCursor  = lipgloss.Color("#44475A")
)

var (
	titleStyle   = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	subtleStyle  = lipgloss.NewStyle().Foreground(colorMuted)
	keyStyle     = lipgloss.NewStyle().Foreground(colorInfo)
	indexStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	markerStyle  = lipgloss.NewStyle().Foreground(colorPrimary)
	cursorStyle  = lipgloss.NewStyle().Background(colorCursor).Bold(true)
	statusStyle  = lipgloss.NewStyle().Foreground(colorSuccess)
	errorStyle   = lipgloss.NewStyle().Foreground(colorDanger)
	emptyStyle   = lipgloss.NewStyle().Foreground(colorMuted).Italic(true).Padding(1, 2)
	summaryStyle = lipgloss.NewStyle().Foreground(colorMuted).Italic(true)
)

var valueStyles = map[models.Kind]lipgloss.Style{
	models.KindString: lipgloss.NewStyle().Foreground(colorYellow),
	models.KindNumber: lipgloss.NewStyle().Foreground(colorWarning),
	models.KindBool:   lipgloss.NewStyle().Foreground(colorPrimary),
	models.KindNull:   lipgloss.NewStyle().Foreground(colorMuted),
	models.KindObject: summaryStyle,
	models.KindArray:  summaryStyle,
}

func valueStyle(k models.Kind) lipgloss.Style {
	if s, ok := valueStyles[k]; ok {
		return s
	}
	return lipgloss.NewStyle().Foreground(colorText)
}
