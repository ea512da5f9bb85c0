// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/lexbrief/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/lexbrief/internal/core/domain"
)

// linesPerPassage is the height of one rendered passage.
const linesPerPassage = 2

// PassageList displays retrieved passages in a navigable list.
type PassageList struct {
	passages []domain.RetrievedPassage
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewPassageList creates a new passage list component.
func NewPassageList(s *styles.Styles) *PassageList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &PassageList{
		styles: s,
		width:  80,
		height: 10,
	}
}

// Init initialises the passage list.
func (l *PassageList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (l *PassageList) Update(msg tea.Msg) (*PassageList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			l.MoveUp()
		case "down", "j":
			l.MoveDown()
		}
	}
	return l, nil
}

// View renders the passage list.
func (l *PassageList) View() string {
	if len(l.passages) == 0 {
		return l.styles.Muted.Render("No passages")
	}

	lines := make([]string, 0, len(l.passages)*linesPerPassage+2)
	lines = append(lines, l.styles.Subtitle.Render(fmt.Sprintf("Passages (%d)", len(l.passages))), "")

	visible := max((l.height-2)/linesPerPassage, 1)
	start := 0
	if l.selected >= visible {
		start = l.selected - visible + 1
	}
	end := min(start+visible, len(l.passages))

	for i := start; i < end; i++ {
		lines = append(lines, l.renderPassage(i, l.passages[i]))
	}

	return strings.Join(lines, "\n")
}

// renderPassage formats one passage as a page/score line and a preview line.
func (l *PassageList) renderPassage(index int, p domain.RetrievedPassage) string {
	indicator := "  "
	if index == l.selected {
		indicator = "> "
	}

	head := fmt.Sprintf("%s[%d] p. %d", indicator, index+1, p.PageNum)
	score := fmt.Sprintf("%.3f", p.Score)

	var headLine string
	if index == l.selected {
		headLine = l.styles.Selected.Render(head + "  " + score)
	} else {
		headLine = l.styles.Page.Render(head) + "  " + l.styles.Muted.Render(score)
	}

	preview := truncate(strings.Join(strings.Fields(p.Text), " "), max(l.width-6, 20))
	return headLine + "\n" + l.styles.Muted.Render("    "+preview)
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// SetPassages replaces the passages and resets the selection.
func (l *PassageList) SetPassages(passages []domain.RetrievedPassage) {
	l.passages = passages
	l.selected = 0
}

// Passages returns the current passages.
func (l *PassageList) Passages() []domain.RetrievedPassage {
	return l.passages
}

// Selected returns the index of the selected passage.
func (l *PassageList) Selected() int {
	return l.selected
}

// SelectedPassage returns the selected passage, or nil if there is none.
func (l *PassageList) SelectedPassage() *domain.RetrievedPassage {
	if l.selected < 0 || l.selected >= len(l.passages) {
		return nil
	}
	return &l.passages[l.selected]
}

// MoveUp moves selection up.
func (l *PassageList) MoveUp() {
	if l.selected > 0 {
		l.selected--
	}
}

// MoveDown moves selection down.
func (l *PassageList) MoveDown() {
	if l.selected < len(l.passages)-1 {
		l.selected++
	}
}

// SetDimensions sets the component dimensions.
func (l *PassageList) SetDimensions(width, height int) {
	l.width = width
	l.height = height
}

// Count returns the number of passages.
func (l *PassageList) Count() int {
	return len(l.passages)
}
