// Package documents provides the session documents view for the TUI.
package documents

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/lexbrief/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/lexbrief/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/lexbrief/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/lexbrief/internal/core/domain"
	"github.com/custodia-labs/lexbrief/internal/core/ports/driving"
)

// Errors reported when a port is missing.
var (
	ErrNoSessionService = errors.New("session service not available")
	ErrNoIngestService  = errors.New("ingest service not available")
)

// mode is what the view's keys currently drive.
type mode int

const (
	modeList mode = iota
	modeAddFile
	modeConfirmClear
	modeConfirmRemove
)

// View lists the session's documents and lets the user add files or clear the session.
type View struct {
	styles         *styles.Styles
	sessionService driving.SessionService
	ingestService  driving.IngestService
	session        string
	ctx            context.Context

	path         *input.Prompt
	documents    []domain.Document
	selected     int
	scrollOffset int
	mode         mode
	width        int
	height       int
	ready        bool
	loading      bool
	err          error
	notice       string
}

// NewView creates a new documents view bound to one session.
func NewView(
	s *styles.Styles,
	sessionService driving.SessionService,
	ingestService driving.IngestService,
	session string,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:         s,
		sessionService: sessionService,
		ingestService:  ingestService,
		session:        session,
		ctx:            context.Background(),
		path:           input.NewPathInput(s),
		documents:      []domain.Document{},
		width:          80,
		height:         24,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init loads the session's documents.
func (v *View) Init() tea.Cmd {
	v.mode = modeList
	v.loading = true
	return v.loadDocuments()
}

// loadDocuments returns a command that lists the session's documents.
func (v *View) loadDocuments() tea.Cmd {
	return func() tea.Msg {
		if v.sessionService == nil {
			return messages.DocumentsLoaded{Err: ErrNoSessionService}
		}
		docs, err := v.sessionService.ListDocuments(v.ctx, v.session)
		return messages.DocumentsLoaded{Documents: docs, Err: err}
	}
}

// ingestFile returns a command that reads path and ingests it into the session.
func (v *View) ingestFile(path string) tea.Cmd {
	return func() tea.Msg {
		if v.ingestService == nil {
			return messages.DocumentIngested{Path: path, Err: ErrNoIngestService}
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return messages.DocumentIngested{Path: path, Err: fmt.Errorf("reading %s: %w", path, err)}
		}
		doc, err := v.ingestService.IngestFile(v.ctx, v.session, filepath.Base(path), "", data)
		return messages.DocumentIngested{Path: path, Document: doc, Err: err}
	}
}

// removeDocument returns a command that removes doc from the session.
func (v *View) removeDocument(doc domain.Document) tea.Cmd {
	return func() tea.Msg {
		if v.sessionService == nil {
			return messages.DocumentRemoved{Document: doc, Err: ErrNoSessionService}
		}
		return messages.DocumentRemoved{Document: doc, Err: v.sessionService.RemoveDocument(v.ctx, v.session, doc.ID)}
	}
}

// clearSession returns a command that removes every document from the session.
func (v *View) clearSession() tea.Cmd {
	return func() tea.Msg {
		if v.sessionService == nil {
			return messages.SessionCleared{Err: ErrNoSessionService}
		}
		return messages.SessionCleared{Err: v.sessionService.Clear(v.ctx, v.session)}
	}
}

// Update handles messages for the documents view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		switch v.mode {
		case modeAddFile:
			return v.handleAddFileKey(msg)
		case modeConfirmClear, modeConfirmRemove:
			return v.handleConfirmKey(msg)
		default:
			return v.handleKeyMsg(msg)
		}

	case messages.DocumentsLoaded:
		v.loading = false
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.err = nil
		v.documents = msg.Documents
		if v.selected >= len(v.documents) {
			v.selected = max(len(v.documents)-1, 0)
		}
		v.adjustScroll()
		return v, nil

	case messages.DocumentIngested:
		v.loading = false
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.err = nil
		v.notice = fmt.Sprintf("Added %s (%d pages)", msg.Document.Name, msg.Document.PageCount)
		return v, v.loadDocuments()

	case messages.DocumentRemoved:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.err = nil
		v.notice = "Removed " + msg.Document.Name
		return v, v.loadDocuments()

	case messages.SessionCleared:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.err = nil
		v.notice = "Session cleared"
		v.documents = []domain.Document{}
		v.selected = 0
		v.scrollOffset = 0
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		return v, nil
	}

	if v.mode == modeAddFile {
		var cmd tea.Cmd
		v.path, cmd = v.path.Update(msg)
		return v, cmd
	}
	return v, nil
}

// handleKeyMsg handles key presses in list mode.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if v.selected > 0 {
			v.selected--
			v.adjustScroll()
		}
	case "down", "j":
		if v.selected < len(v.documents)-1 {
			v.selected++
			v.adjustScroll()
		}
	case "a":
		v.mode = modeAddFile
		v.notice = ""
		v.path.SetValue("")
		return v, v.path.Focus()
	case "d":
		if v.SelectedDocument() != nil {
			v.mode = modeConfirmRemove
		}
	case "x":
		if len(v.documents) > 0 {
			v.mode = modeConfirmClear
		}
	case "r":
		v.loading = true
		return v, v.loadDocuments()
	case "esc":
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}
	return v, nil
}

// handleAddFileKey handles key presses while a path is typed.
func (v *View) handleAddFileKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	//nolint:exhaustive // handling only relevant key types
	switch msg.Type {
	case tea.KeyEsc:
		v.mode = modeList
		v.path.Blur()
		return v, nil
	case tea.KeyEnter:
		path := strings.TrimSpace(v.path.Value())
		if path == "" {
			return v, nil
		}
		v.mode = modeList
		v.path.Blur()
		v.loading = true
		return v, v.ingestFile(path)
	}

	var cmd tea.Cmd
	v.path, cmd = v.path.Update(msg)
	return v, cmd
}

// handleConfirmKey handles the remove and clear confirmation prompts.
func (v *View) handleConfirmKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	confirming := v.mode
	v.mode = modeList
	if msg.String() != "y" {
		return v, nil
	}
	if confirming == modeConfirmRemove {
		if doc := v.SelectedDocument(); doc != nil {
			return v, v.removeDocument(*doc)
		}
		return v, nil
	}
	return v, v.clearSession()
}

// adjustScroll keeps the selected item visible.
func (v *View) adjustScroll() {
	visible := v.visibleItemCount()
	if v.selected < v.scrollOffset {
		v.scrollOffset = v.selected
	} else if v.selected >= v.scrollOffset+visible {
		v.scrollOffset = v.selected - visible + 1
	}
}

// visibleItemCount returns the number of items that can be displayed.
func (v *View) visibleItemCount() int {
	// Reserve lines for title, input, notices and help.
	return max(v.height-10, 1)
}

// View renders the documents view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render(fmt.Sprintf("Documents - %s (%d)", v.session, len(v.documents))))
	b.WriteString("\n\n")

	if v.mode == modeAddFile {
		b.WriteString(v.path.View())
		b.WriteString("\n\n")
		b.WriteString(v.styles.Help.Render("[enter] ingest  [esc] cancel"))
		return b.String()
	}

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Working..."))
		b.WriteString("\n\n")
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
		b.WriteString("\n\n")
	case v.notice != "":
		b.WriteString(v.styles.Success.Render(v.notice))
		b.WriteString("\n\n")
	}

	if len(v.documents) == 0 {
		b.WriteString(v.styles.Muted.Render("No documents in this session. Press [a] to add a PDF, DOCX, HTML or text file."))
		b.WriteString("\n\n")
		b.WriteString(v.renderHelp())
		return b.String()
	}

	visible := v.visibleItemCount()
	for i := v.scrollOffset; i < len(v.documents) && i < v.scrollOffset+visible; i++ {
		b.WriteString(v.renderDocument(i, &v.documents[i]))
		b.WriteString("\n")
	}

	if len(v.documents) > visible {
		b.WriteString("\n")
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  [%d-%d of %d]",
			v.scrollOffset+1,
			min(v.scrollOffset+visible, len(v.documents)),
			len(v.documents))))
	}

	b.WriteString("\n\n")
	switch v.mode {
	case modeConfirmClear:
		b.WriteString(v.styles.Warning.Render(
			fmt.Sprintf("Remove all %d documents from this session? [y/N]", len(v.documents))))
		return b.String()
	case modeConfirmRemove:
		if doc := v.SelectedDocument(); doc != nil {
			b.WriteString(v.styles.Warning.Render(fmt.Sprintf("Remove %s? [y/N]", doc.Name)))
			return b.String()
		}
	}
	b.WriteString(v.renderHelp())
	return b.String()
}

// renderDocument renders a single document line.
func (v *View) renderDocument(index int, doc *domain.Document) string {
	indicator := "  "
	if index == v.selected {
		indicator = "> "
	}

	name := doc.Name
	maxNameLen := max(v.width/2-4, 10)
	if len(name) > maxNameLen {
		name = name[:maxNameLen-3] + "..."
	}

	pages := fmt.Sprintf("%d pages", doc.PageCount)
	if doc.PageCount == 1 {
		pages = "1 page"
	}
	added := ""
	if !doc.CreatedAt.IsZero() {
		added = "  added " + doc.CreatedAt.Format("15:04")
	}

	if index == v.selected {
		return v.styles.Selected.Render(fmt.Sprintf("%s%-*s  %s%s", indicator, maxNameLen, name, pages, added))
	}
	return v.styles.Normal.Render(fmt.Sprintf("%s%-*s  ", indicator, maxNameLen, name)) +
		v.styles.Muted.Render(pages+added)
}

// renderHelp renders the help footer.
func (v *View) renderHelp() string {
	return v.styles.Help.Render("[↑/↓] navigate  [a] add file  [d] remove  [x] clear session  [r] reload  [esc] back")
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.path.SetWidth(width)
}

// Documents returns the current list of documents.
func (v *View) Documents() []domain.Document {
	return v.documents
}

// SelectedIndex returns the currently selected document index.
func (v *View) SelectedIndex() int {
	return v.selected
}

// SelectedDocument returns the currently selected document.
func (v *View) SelectedDocument() *domain.Document {
	if v.selected < len(v.documents) {
		return &v.documents[v.selected]
	}
	return nil
}

// AddingFile returns true while a file path is being typed.
func (v *View) AddingFile() bool {
	return v.mode == modeAddFile
}

// ConfirmingClear returns true while the clear confirmation is shown.
func (v *View) ConfirmingClear() bool {
	return v.mode == modeConfirmClear
}

// ConfirmingRemove returns true while the remove confirmation is shown.
func (v *View) ConfirmingRemove() bool {
	return v.mode == modeConfirmRemove
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
