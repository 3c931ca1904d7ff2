package cli

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// theme is the colour palette for interactive output.
type theme struct {
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Muted     lipgloss.Color
	Error     lipgloss.Color
}

func defaultTheme() theme {
	return theme{
		Primary:   lipgloss.Color("#7C3AED"), // Purple
		Secondary: lipgloss.Color("#06B6D4"), // Cyan
		Muted:     lipgloss.Color("#6C7086"), // Medium gray
		Error:     lipgloss.Color("#F38BA8"), // Red
	}
}

// textStyle is a lipgloss style that can be switched off for plain output.
type textStyle struct {
	style lipgloss.Style
	plain bool
}

// Render styles text, or returns it unchanged for plain output.
func (t textStyle) Render(text string) string {
	if t.plain {
		return text
	}
	return t.style.Render(text)
}

// styles renders chat output.
type styles struct {
	Prompt textStyle
	Answer textStyle
	Tool   textStyle
	Muted  textStyle
	Error  textStyle
}

func newStyles(t theme) styles {
	return styles{
		Prompt: textStyle{style: lipgloss.NewStyle().Bold(true).Foreground(t.Primary)},
		Answer: textStyle{style: lipgloss.NewStyle().Foreground(t.Secondary)},
		Tool:   textStyle{style: lipgloss.NewStyle().Italic(true).Foreground(t.Muted)},
		Muted:  textStyle{style: lipgloss.NewStyle().Foreground(t.Muted)},
		Error:  textStyle{style: lipgloss.NewStyle().Foreground(t.Error)},
	}
}

func plainStyles() styles {
	p := textStyle{plain: true}
	return styles{Prompt: p, Answer: p, Tool: p, Muted: p, Error: p}
}

// stylesFor colours output only when w is a terminal.
func stylesFor(w io.Writer) styles {
	if isTerminal(w) {
		return newStyles(defaultTheme())
	}
	return plainStyles()
}

func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
