package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lexbrief/internal/core/domain"
)

var ingestJSON bool

var ingestCmd = &cobra.Command{
	Use:   "ingest [file...]",
	Short: "Extract, chunk and embed documents",
	Long: `Reads PDF, DOCX, HTML and text files, labels each page with its printed page
number, splits the text into overlapping chunks and embeds them into the session.

Sessions live in memory, so documents ingested here are only searchable by the
same process. Use 'ask --file' or 'serve' to query them.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestJSON, "json", false, "output documents as JSON")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	docs, err := ingestFiles(cmd.Context(), args)
	if err != nil {
		return err
	}

	if ingestJSON {
		return printJSON(cmd, docs)
	}

	for _, doc := range docs {
		cmd.Printf("Ingested %s (%d pages) as %s\n", doc.Name, doc.PageCount, doc.ID)
	}
	return nil
}

// ingestFiles reads each path and ingests it into the command's session.
func ingestFiles(ctx context.Context, paths []string) ([]domain.Document, error) {
	if ingestService == nil {
		return nil, errors.New("ingest service not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	docs := make([]domain.Document, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return docs, fmt.Errorf("reading %s: %w", path, err)
		}
		doc, err := ingestService.IngestFile(ctx, sessionID, filepath.Base(path), "", data)
		if err != nil {
			return docs, fmt.Errorf("ingesting %s: %w", path, err)
		}
		docs = append(docs, *doc)
	}
	return docs, nil
}
