// Package status provides status bar components for the TUI.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/lexbrief/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/lexbrief/internal/adapters/driving/tui/styles"
)

// State represents the current application state for display.
type State string

const (
	StateReady     State = "ready"
	StateThinking  State = "thinking"
	StateIngesting State = "ingesting"
	StateError     State = "error"
	StateAnswered  State = "answered"
	StateNotFound  State = "not_found"
)

// Bar displays application status and keybinding hints.
type Bar struct {
	styles       *styles.Styles
	keymap       *keymap.KeyMap
	state        State
	message      string
	passageCount int
	session      string
	width        int
}

// NewBar creates a new status bar component.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &Bar{
		styles: s,
		keymap: km,
		state:  StateReady,
		width:  80,
	}
}

// Init initialises the status bar.
func (b *Bar) Init() tea.Cmd {
	return nil
}

// Update handles status bar messages.
func (b *Bar) Update(_ tea.Msg) (*Bar, tea.Cmd) {
	// Bar is passive, updated via Set methods
	return b, nil
}

// View renders the status bar.
func (b *Bar) View() string {
	left := b.renderLeft()
	right := b.renderRight()

	padding := max(b.width-lipgloss.Width(left)-lipgloss.Width(right), 1)

	return b.styles.StatusBar.Width(b.width).Render(
		left + strings.Repeat(" ", padding) + right,
	)
}

// renderLeft renders the state, message and session.
func (b *Bar) renderLeft() string {
	var left string
	switch b.state {
	case StateThinking:
		left = b.styles.Muted.Render("Reading passages...")
	case StateIngesting:
		left = b.styles.Muted.Render("Ingesting...")
	case StateError:
		if b.message != "" {
			left = b.styles.Error.Render("Error: " + b.message)
		} else {
			left = b.styles.Error.Render("Error")
		}
	case StateNotFound:
		left = b.styles.Warning.Render("Not found in document")
	case StateAnswered:
		left = b.styles.Normal.Render(fmt.Sprintf("Answered from %d passages", b.passageCount))
	default:
		if b.message != "" {
			left = b.styles.Normal.Render(b.message)
		} else {
			left = b.styles.Muted.Render("Ready")
		}
	}

	if b.session != "" {
		left = b.styles.Muted.Render("["+b.session+"] ") + left
	}
	return left
}

// renderRight renders keybinding hints.
func (b *Bar) renderRight() string {
	var bindings []key.Binding
	if b.state == StateAnswered || b.state == StateNotFound {
		bindings = b.keymap.AnswerHelp()
	} else {
		bindings = b.keymap.ShortHelp()
	}

	hints := make([]string, 0, len(bindings))
	for _, binding := range bindings {
		h := binding.Help()
		hints = append(hints, fmt.Sprintf("%s: %s", h.Key, h.Desc))
	}
	return b.styles.Muted.Render(strings.Join(hints, " | "))
}

// SetState sets the current state.
func (b *Bar) SetState(state State) {
	b.state = state
}

// State returns the current state.
func (b *Bar) State() State {
	return b.state
}

// SetMessage sets a custom message.
func (b *Bar) SetMessage(message string) {
	b.message = message
}

// Message returns the current message.
func (b *Bar) Message() string {
	return b.message
}

// SetPassageCount sets the number of passages behind the current answer.
func (b *Bar) SetPassageCount(count int) {
	b.passageCount = count
}

// PassageCount returns the number of passages behind the current answer.
func (b *Bar) PassageCount() int {
	return b.passageCount
}

// SetSession sets the session name shown on the left.
func (b *Bar) SetSession(session string) {
	b.session = session
}

// SetWidth sets the status bar width.
func (b *Bar) SetWidth(width int) {
	b.width = width
}

// Width returns the current width.
func (b *Bar) Width() int {
	return b.width
}

// Clear resets the status bar to its ready state. The session is kept.
func (b *Bar) Clear() {
	b.state = StateReady
	b.message = ""
	b.passageCount = 0
}
