// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/lexbrief/internal/core/domain"
)

// QuestionSubmitted asks the ask view to answer a question as if it were typed.
type QuestionSubmitted struct {
	Question string
}

// AnswerCompleted carries a composed answer back to the model.
type AnswerCompleted struct {
	Question string
	Result   *domain.AskResult
	Err      error
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewAsk is the question input and answer view.
	ViewAsk
	// ViewDocuments lists the documents loaded into the session.
	ViewDocuments
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewAsk:
		return "ask"
	case ViewDocuments:
		return "documents"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}

// DocumentsLoaded carries the documents of the session.
type DocumentsLoaded struct {
	Documents []domain.Document
	Err       error
}

// DocumentIngested signals a file finished ingesting.
type DocumentIngested struct {
	Path     string
	Document *domain.Document
	Err      error
}

// DocumentRemoved signals one document was removed from the session.
type DocumentRemoved struct {
	Document domain.Document
	Err      error
}

// SessionCleared signals every document was removed from the session.
type SessionCleared struct {
	Err error
}
