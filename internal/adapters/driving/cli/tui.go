package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/lexbrief/internal/adapters/driving/tui"
	"github.com/custodia-labs/lexbrief/internal/logger"
)

var (
	tuiFiles    []string
	tuiQuestion string
	tuiWatchDir string
)

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive terminal user interface for lexbrief.

Ask questions, read cited answers with the passages behind them, and
add or clear documents in the session. With --watch, the session follows
a folder: new and changed files are ingested and removed files dropped.

Controls:
  Enter    - Ask / Select
  n        - New question
  Tab      - Show passages
  Esc      - Back
  ctrl+c   - Quit`,
	RunE: runTUI,
}

func init() {
	tuiCmd.Flags().StringSliceVarP(&tuiFiles, "file", "f", nil, "files to ingest before starting")
	tuiCmd.Flags().StringVarP(&tuiQuestion, "ask", "q", "", "question to ask on start")
	tuiCmd.Flags().StringVarP(&tuiWatchDir, "watch", "w", "", "folder to keep the session in step with")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	// Add panic recovery to get stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("tui requires an interactive terminal, use 'ask' instead")
	}

	if _, err := ingestFiles(cmd.Context(), tuiFiles); err != nil {
		return err
	}

	if tuiWatchDir != "" {
		// Log lines would tear the alternate screen.
		logger.SetOutput(io.Discard)
		defer logger.SetOutput(cmd.ErrOrStderr())

		stop, err := startFolderSync(cmd.Context(), tuiWatchDir, sessionID, nil)
		if err != nil {
			return err
		}
		defer stop()
	}

	app, err := tui.NewApp(tui.NewPorts(answerService, sessionService, ingestService), sessionID)
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	app.WithContext(cmd.Context())
	if tuiQuestion != "" {
		app.WithQuestion(tuiQuestion)
	}

	if err := app.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
