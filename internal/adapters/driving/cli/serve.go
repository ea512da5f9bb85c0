package cli

import (
	"errors"
	"fmt"
	"net"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lexbrief/internal/adapters/driving/api"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the JSON HTTP API used by the web client.

Routes:
  GET    /api/health       liveness
  POST   /api/upload       multipart field "files", ingests the first file
  POST   /api/retrieve     {"question"} returns the top passages
  POST   /api/ask          {"question"} returns a cited answer
  POST   /api/chat         {"question", "context": {"snippets"}} answers without retrieval
  GET    /api/documents    documents in the caller's session
  DELETE /api/session      clears the caller's session

Each browser gets its own session through the lb_session_id cookie.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", "", "listen address (default from server.address)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if ingestService == nil || answerService == nil {
		return errors.New("services not configured")
	}

	settings := currentSettings()
	addr := serveAddr
	if addr == "" {
		addr = settings.Server.Address
	}

	server, err := api.NewServer(&api.Ports{
		Ingest:    ingestService,
		Retrieval: retrievalService,
		Answer:    answerService,
		Session:   sessionService,
	},
		api.WithRateLimit(settings.Server.RequestsPerSecond, settings.Server.Burst),
		api.WithMaxUploadBytes(settings.Server.MaxUploadBytes),
		api.WithTopK(settings.Retrieval.TopK),
	)
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	cmd.Printf("API listening on http://%s\n", ln.Addr())
	return server.Serve(cmd.Context(), ln)
}
