package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lexbrief/internal/core/domain"
)

var (
	askFiles     []string
	askJSON      bool
	askPassages  bool
	retrieveK    int
	retrieveJSON bool
	retrieveFile []string
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question with page citations",
	Long: `Retrieves the passages closest to the question and asks the configured LLM
for a short answer citing printed page numbers. Without an LLM the answer
quotes the best passage.

Files given with --file are ingested first.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

var retrieveCmd = &cobra.Command{
	Use:   "retrieve [question]",
	Short: "Show the passages closest to a question",
	Long:  `Embeds the question and lists the top-k chunks by cosine similarity, most similar first.`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRetrieve,
}

func init() {
	askCmd.Flags().StringSliceVarP(&askFiles, "file", "f", nil, "files to ingest before asking")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	askCmd.Flags().BoolVar(&askPassages, "passages", false, "also print the retrieved passages")
	rootCmd.AddCommand(askCmd)

	retrieveCmd.Flags().StringSliceVarP(&retrieveFile, "file", "f", nil, "files to ingest before retrieving")
	retrieveCmd.Flags().IntVarP(&retrieveK, "top", "k", domain.DefaultTopK, "number of passages to return")
	retrieveCmd.Flags().BoolVar(&retrieveJSON, "json", false, "output passages as JSON")
	rootCmd.AddCommand(retrieveCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if answerService == nil {
		return errors.New("answer service not configured")
	}
	if _, err := ingestFiles(cmd.Context(), askFiles); err != nil {
		return err
	}

	question := strings.Join(args, " ")
	result, err := answerService.Ask(cmd.Context(), sessionID, question)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		return printJSON(cmd, struct {
			domain.Answer
			Retrieved []domain.RetrievedPassage `json:"retrieved"`
		}{result.Answer, result.Passages()})
	}

	printAnswer(cmd, result.Answer)
	if askPassages {
		cmd.Println()
		printPassages(cmd, result.Passages())
	}
	return nil
}

func runRetrieve(cmd *cobra.Command, args []string) error {
	if retrievalService == nil {
		return errors.New("retrieval service not configured")
	}
	if _, err := ingestFiles(cmd.Context(), retrieveFile); err != nil {
		return err
	}

	results, err := retrievalService.Retrieve(cmd.Context(), sessionID, strings.Join(args, " "), retrieveK)
	if err != nil {
		return fmt.Errorf("retrieve failed: %w", err)
	}

	passages := make([]domain.RetrievedPassage, len(results))
	for i, r := range results {
		passages[i] = r.Passage()
	}

	if retrieveJSON {
		return printJSON(cmd, passages)
	}
	printPassages(cmd, passages)
	return nil
}

func printAnswer(cmd *cobra.Command, a domain.Answer) {
	cmd.Println(a.Answer)
	if a.IsNotFound() {
		return
	}

	if len(a.PageHits) > 0 {
		pages := make([]string, len(a.PageHits))
		for i, p := range a.PageHits {
			pages[i] = fmt.Sprintf("%d", p)
		}
		cmd.Printf("\nPages: %s\n", strings.Join(pages, ", "))
	}
	for _, c := range a.Citations {
		cmd.Printf("  p. %d: %q\n", c.Page, c.Snippet)
	}
	if a.Reasoning != "" {
		cmd.Printf("\n%s\n", a.Reasoning)
	}
}

func printPassages(cmd *cobra.Command, passages []domain.RetrievedPassage) {
	if len(passages) == 0 {
		cmd.Println("No passages found.")
		return
	}

	cmd.Println("Passages:")
	cmd.Println()
	for i, p := range passages {
		cmd.Printf("  [%d] p. %d (%.3f)\n", i+1, p.PageNum, p.Score)
		cmd.Printf("      %s\n", preview(p.Text, 200))
		cmd.Println()
	}
}

// preview collapses whitespace and truncates text to n runes.
func preview(text string, n int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n-3]) + "..."
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
