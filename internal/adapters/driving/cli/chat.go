package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lexbrief/internal/core/domain"
)

var chatSnippets string

var chatCmd = &cobra.Command{
	Use:   "chat [question]",
	Short: "Answer from supplied passages without retrieval",
	Long: `Answers a question from passages you provide, skipping retrieval.

--snippets reads a JSON array of {"pageNum", "text", "score"} objects, as
printed by 'retrieve --json'. Use "-" to read from stdin.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVar(&chatSnippets, "snippets", "", "JSON file of passages (- for stdin)")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	if answerService == nil {
		return errors.New("answer service not configured")
	}

	snippets, err := readSnippets(cmd, chatSnippets)
	if err != nil {
		return err
	}

	answer, err := answerService.Chat(cmd.Context(), strings.Join(args, " "), snippets)
	if err != nil {
		return fmt.Errorf("chat failed: %w", err)
	}
	cmd.Println(answer)
	return nil
}

func readSnippets(cmd *cobra.Command, path string) ([]domain.RetrievedPassage, error) {
	if path == "" {
		return nil, nil
	}

	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading snippets: %w", err)
	}

	var snippets []domain.RetrievedPassage
	if err := json.Unmarshal(data, &snippets); err != nil {
		return nil, fmt.Errorf("%w: snippets must be a JSON array: %w", domain.ErrInvalidInput, err)
	}
	return snippets, nil
}
