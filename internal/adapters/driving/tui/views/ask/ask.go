// Package ask provides the question and answer view for the TUI.
package ask

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/lexbrief/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/lexbrief/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/lexbrief/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/lexbrief/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/lexbrief/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/lexbrief/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/lexbrief/internal/core/domain"
	"github.com/custodia-labs/lexbrief/internal/core/ports/driving"
)

// reservedLines is the height taken by the header, input and status bar.
const reservedLines = 8

// View shows the question input, the cited answer and the passages behind it.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.Prompt
	answer    viewport.Model
	passages  *list.PassageList
	statusbar *status.Bar

	answerService driving.AnswerService
	session       string
	ctx           context.Context

	result       *domain.AskResult
	question     string
	width        int
	height       int
	ready        bool
	err          error
	focusInput   bool // true = typing a question, false = reading the answer
	showPassages bool
}

// NewView creates a new ask view bound to one session.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	answerService driving.AnswerService,
	session string,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	bar := status.NewBar(s, km)
	bar.SetSession(session)

	return &View{
		styles:        s,
		keymap:        km,
		input:         input.NewQuestionInput(s),
		answer:        viewport.New(80, 24-reservedLines),
		passages:      list.NewPassageList(s),
		statusbar:     bar,
		answerService: answerService,
		session:       session,
		ctx:           context.Background(),
		width:         80,
		height:        24,
		focusInput:    true,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the ask view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.QuestionSubmitted:
		v.input.SetValue(msg.Question)
		return v, v.submit()

	case messages.AnswerCompleted:
		v.handleAnswerCompleted(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.setError(msg.Err)
		return v, nil
	}

	if v.focusInput {
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}
	return v, nil
}

// handleKeyMsg processes keyboard input.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if msg.Type == tea.KeyEsc {
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}

	if v.focusInput {
		if msg.Type == tea.KeyEnter {
			return v, v.submit()
		}
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}

	switch {
	case keymap.Matches(msg.String(), v.keymap.NewQuestion):
		v.focusInput = true
		v.showPassages = false
		v.input.SetValue("")
		return v, v.input.Focus()

	case keymap.Matches(msg.String(), v.keymap.TogglePassages):
		v.showPassages = !v.showPassages
		return v, nil

	case v.showPassages:
		v.passages, _ = v.passages.Update(msg)
		return v, nil
	}

	var cmd tea.Cmd
	v.answer, cmd = v.answer.Update(msg)
	return v, cmd
}

// submit sends the typed question. A blank question is ignored.
func (v *View) submit() tea.Cmd {
	question := strings.TrimSpace(v.input.Value())
	if question == "" {
		return nil
	}
	v.question = question
	v.err = nil
	v.statusbar.SetState(status.StateThinking)
	v.focusInput = false
	v.input.Blur()
	return v.ask(question)
}

// ask returns a command that answers question from the session.
func (v *View) ask(question string) tea.Cmd {
	return func() tea.Msg {
		if v.answerService == nil {
			return messages.ErrorOccurred{Err: ErrNoAnswerService}
		}
		result, err := v.answerService.Ask(v.ctx, v.session, question)
		return messages.AnswerCompleted{Question: question, Result: result, Err: err}
	}
}

// handleAnswerCompleted shows a composed answer.
func (v *View) handleAnswerCompleted(msg messages.AnswerCompleted) {
	if msg.Err != nil {
		v.setError(msg.Err)
		return
	}
	if msg.Result == nil {
		v.setError(fmt.Errorf("no answer returned for %q", msg.Question))
		return
	}

	v.err = nil
	v.result = msg.Result
	v.passages.SetPassages(msg.Result.Passages())
	v.answer.SetContent(v.renderAnswer(msg.Result.Answer))
	v.answer.GotoTop()

	v.statusbar.SetMessage("")
	v.statusbar.SetPassageCount(len(msg.Result.Retrieved))
	if msg.Result.Answer.IsNotFound() {
		v.statusbar.SetState(status.StateNotFound)
	} else {
		v.statusbar.SetState(status.StateAnswered)
	}
	v.focusInput = false
	v.input.Blur()
}

func (v *View) setError(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
	// Let the user edit and resubmit.
	v.focusInput = true
	v.input.Focus()
}

// renderAnswer formats an answer with its pages, citations and reasoning.
func (v *View) renderAnswer(a domain.Answer) string {
	wrap := lipgloss.NewStyle().Width(max(v.width-4, 20))
	sections := make([]string, 0, len(a.Citations)+6)

	if a.IsNotFound() {
		sections = append(sections, v.styles.Warning.Render(a.Answer))
	} else {
		sections = append(sections, v.styles.Answer.Render(wrap.Render(a.Answer)))
	}

	if len(a.PageHits) > 0 {
		sections = append(sections, "", v.styles.Subtitle.Render("Pages: ")+v.styles.PageList(a.PageHits))
	}

	if len(a.Citations) > 0 {
		sections = append(sections, "", v.styles.Subtitle.Render("Citations"))
		for _, c := range a.Citations {
			sections = append(sections, v.styles.Citation(c.Page, c.Snippet, max(v.width-6, 20)))
		}
	}

	if a.Reasoning != "" {
		sections = append(sections, "", v.styles.Muted.Render(wrap.Render(a.Reasoning)))
	}

	return strings.Join(sections, "\n")
}

// View renders the ask view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 8)
	sections = append(sections, v.styles.Title.Render("lexbrief"), "", v.input.View(), "")

	switch {
	case v.err != nil:
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()))
	case v.result == nil:
		sections = append(sections, v.styles.Muted.Render("Ask a question about the documents in this session."))
	case v.showPassages:
		sections = append(sections, v.passages.View())
	default:
		sections = append(sections, v.answer.View())
	}

	sections = append(sections, "", v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	bodyHeight := max(height-reservedLines, 3)
	v.input.SetWidth(width)
	v.answer.Width = width
	v.answer.Height = bodyHeight
	v.passages.SetDimensions(width, bodyHeight)
	v.statusbar.SetWidth(width)

	if v.result != nil {
		v.answer.SetContent(v.renderAnswer(v.result.Answer))
	}
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

// Question returns the last submitted question.
func (v *View) Question() string {
	return v.question
}

// Result returns the last answer, or nil.
func (v *View) Result() *domain.AskResult {
	return v.result
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// InputFocused returns whether the input has focus.
func (v *View) InputFocused() bool {
	return v.focusInput
}

// ShowingPassages returns whether the passages list is shown instead of the answer.
func (v *View) ShowingPassages() bool {
	return v.showPassages
}

// Status returns the status bar state.
func (v *View) Status() status.State {
	return v.statusbar.State()
}

// Reset returns the view to question input mode.
func (v *View) Reset() {
	v.focusInput = true
	v.showPassages = false
	v.input.Focus()
	v.input.SetValue("")
	v.result = nil
	v.err = nil
	v.passages.SetPassages(nil)
	v.answer.SetContent("")
	v.statusbar.Clear()
}
