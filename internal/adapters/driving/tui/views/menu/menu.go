// Package menu provides the main navigation menu view for the TUI.
package menu

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/lexbrief/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/lexbrief/internal/adapters/driving/tui/styles"
)

// Item is one menu entry. Key jumps straight to it.
type Item struct {
	Label       string
	Description string
	Key         string
	View        messages.ViewType
	Quit        bool
}

// View is the landing screen: the menu plus a summary of the session library.
type View struct {
	styles   *styles.Styles
	items    []Item
	session  string
	selected int
	width    int
	height   int
	ready    bool

	// library counts, unknown until the first DocumentsLoaded
	known     bool
	documents int
	pages     int
}

// NewView creates a new menu view for a session.
func NewView(s *styles.Styles, session string) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &View{
		styles:  s,
		session: session,
		items: []Item{
			{Label: "Ask", Description: "Ask a question about the loaded documents", Key: "a", View: messages.ViewAsk},
			{Label: "Documents", Description: "Manage the documents in this session", Key: "d", View: messages.ViewDocuments},
			{Label: "Help", Description: "Key bindings", Key: "?", View: messages.ViewHelp},
			{Label: "Quit", Key: "q", Quit: true},
		},
		width:  80,
		height: 24,
	}
}

// Init initialises the menu view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update handles messages for the menu view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)

	case messages.DocumentsLoaded:
		if msg.Err == nil {
			v.known = true
			v.documents = len(msg.Documents)
			v.pages = 0
			for _, doc := range msg.Documents {
				v.pages += doc.PageCount
			}
		}

	case messages.SessionCleared:
		if msg.Err == nil {
			v.known = true
			v.documents, v.pages = 0, 0
		}

	case tea.KeyMsg:
		return v, v.handleKey(msg.String())
	}
	return v, nil
}

func (v *View) handleKey(key string) tea.Cmd {
	switch key {
	case "up", "k":
		if v.selected > 0 {
			v.selected--
		}
		return nil
	case "down", "j":
		if v.selected < len(v.items)-1 {
			v.selected++
		}
		return nil
	case "enter":
		return v.choose(v.selected)
	}

	for i, item := range v.items {
		if item.Key == key {
			v.selected = i
			return v.choose(i)
		}
	}
	return nil
}

func (v *View) choose(i int) tea.Cmd {
	item := v.items[i]
	if item.Quit {
		return tea.Quit
	}
	return func() tea.Msg {
		return messages.ViewChanged{View: item.View}
	}
}

// View renders the menu.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder
	b.WriteString(v.styles.Title.Render("lexbrief"))
	b.WriteString("\n\n")
	b.WriteString(v.styles.Muted.Render("Cited answers from your documents"))
	if v.session != "" {
		b.WriteString(v.styles.Muted.Render("  ·  session " + v.session))
	}
	b.WriteString("\n")
	if summary := v.Summary(); summary != "" {
		b.WriteString(v.styles.Page.Render(summary))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	for i, item := range v.items {
		key := v.styles.Muted.Render("[" + item.Key + "]")
		if i == v.selected {
			fmt.Fprintf(&b, "> %s %s", key, v.styles.Subtitle.Render(item.Label))
			if item.Description != "" {
				b.WriteString("  " + v.styles.Muted.Render(item.Description))
			}
		} else {
			fmt.Fprintf(&b, "  %s %s", key, v.styles.Normal.Render(item.Label))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render("[j/k] Navigate  [Enter] Select  [q] Quit"))
	return b.String()
}

// Summary describes the session library, or "" before it is known.
func (v *View) Summary() string {
	switch {
	case !v.known:
		return ""
	case v.documents == 0:
		return "No documents loaded. Press d to add one."
	case v.documents == 1:
		return fmt.Sprintf("1 document, %d pages", v.pages)
	default:
		return fmt.Sprintf("%d documents, %d pages", v.documents, v.pages)
	}
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Selected returns the currently selected index.
func (v *View) Selected() int {
	return v.selected
}

// SelectedItem returns the highlighted item.
func (v *View) SelectedItem() Item {
	return v.items[v.selected]
}
