// Package style provides shared styling primitives for the CLI: colors,
// icons, and the text styles used by summaries and the logger.
package style

import "github.com/charmbracelet/lipgloss"

// Colors.
var (
	Teal   = lipgloss.Color("#14B8A6")
	Slate  = lipgloss.Color("#667085")
	Green  = lipgloss.Color("#22A06B")
	Red    = lipgloss.Color("#D93025")
	Yellow = lipgloss.Color("#F59E0B")
	Blue   = lipgloss.Color("#3B82F6")
)

// Icons.
const (
	Check   = "✓"
	Cross   = "✗"
	Warning = "!"
	Plus    = "+"
	Minus   = "-"
	Tilde   = "~"
	Dot     = "●"
)

// Text styles.
var (
	Header  = lipgloss.NewStyle().Bold(true)
	Muted   = lipgloss.NewStyle().Foreground(Slate)
	Success = lipgloss.NewStyle().Foreground(Green)
	Failure = lipgloss.NewStyle().Foreground(Red)
	Changed = lipgloss.NewStyle().Foreground(Yellow)
	Accent  = lipgloss.NewStyle().Foreground(Teal)
	Info    = lipgloss.NewStyle().Foreground(Blue)
)
