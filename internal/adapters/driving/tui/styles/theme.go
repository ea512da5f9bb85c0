// Package styles provides the colour palette and lipgloss styles for the TUI.
package styles

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme is the colour palette.
type Theme struct {
	Primary    lipgloss.Color // titles and the selection background
	Secondary  lipgloss.Color // page references and subtitles
	Background lipgloss.Color
	Foreground lipgloss.Color
	Muted      lipgloss.Color
	Success    lipgloss.Color
	Warning    lipgloss.Color // not-found answers
	Error      lipgloss.Color
	Border     lipgloss.Color
	Bar        lipgloss.Color // status bar background
}

// DefaultTheme is a dark palette of brass and ink on charcoal.
func DefaultTheme() *Theme {
	return &Theme{
		Primary:    lipgloss.Color("#B4833D"),
		Secondary:  lipgloss.Color("#5B8DB8"),
		Background: lipgloss.Color("#1B1D23"),
		Foreground: lipgloss.Color("#E6E1D6"),
		Muted:      lipgloss.Color("#7A7F8A"),
		Success:    lipgloss.Color("#7FB77E"),
		Warning:    lipgloss.Color("#E0B95B"),
		Error:      lipgloss.Color("#D9656B"),
		Border:     lipgloss.Color("#3D414B"),
		Bar:        lipgloss.Color("#14161B"),
	}
}

// Styles holds the styles the views render with.
type Styles struct {
	theme *Theme

	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Normal   lipgloss.Style
	Muted    lipgloss.Style
	Help     lipgloss.Style
	Selected lipgloss.Style

	Error   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style

	// Answer is the body of a composed answer.
	Answer lipgloss.Style
	// Page renders reporter page references.
	Page lipgloss.Style
	// Quote renders cited snippets with a rule down the left edge.
	Quote lipgloss.Style

	InputField lipgloss.Style
	StatusBar  lipgloss.Style
}

// NewStyles builds styles from a theme. A nil theme selects DefaultTheme.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}
	fg := func(c lipgloss.Color) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(c)
	}

	return &Styles{
		theme: theme,

		Title:    fg(theme.Primary).Bold(true),
		Subtitle: fg(theme.Secondary).Bold(true),
		Normal:   fg(theme.Foreground),
		Muted:    fg(theme.Muted),
		Help:     fg(theme.Muted),
		Selected: fg(theme.Background).Background(theme.Primary).Bold(true),

		Error:   fg(theme.Error),
		Success: fg(theme.Success),
		Warning: fg(theme.Warning),

		Answer: fg(theme.Foreground).PaddingLeft(1),
		Page:   fg(theme.Secondary).Bold(true),
		Quote: fg(theme.Muted).Italic(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderLeft(true).
			BorderForeground(theme.Border).
			PaddingLeft(1),

		InputField: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),
		StatusBar: fg(theme.Muted).Background(theme.Bar).Padding(0, 1),
	}
}

// DefaultStyles returns styles with the default theme.
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

// Theme returns the theme used by these styles.
func (s *Styles) Theme() *Theme {
	return s.theme
}

// PageRef renders a single page reference, "p. 12".
func (s *Styles) PageRef(page int) string {
	return s.Page.Render(fmt.Sprintf("p. %d", page))
}

// PageList renders page hits as "pp. 3, 7, 12", or "p. 3" for one page.
func (s *Styles) PageList(pages []int) string {
	switch len(pages) {
	case 0:
		return ""
	case 1:
		return s.PageRef(pages[0])
	}
	parts := make([]string, len(pages))
	for i, p := range pages {
		parts[i] = fmt.Sprint(p)
	}
	return s.Page.Render("pp. " + strings.Join(parts, ", "))
}

// Citation renders a page reference above its quoted snippet, wrapped to width.
func (s *Styles) Citation(page int, snippet string, width int) string {
	quote := s.Quote
	if width > 0 {
		quote = quote.Width(width)
	}
	return s.PageRef(page) + "\n" + quote.Render(snippet)
}
