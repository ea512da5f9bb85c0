package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lexbrief/internal/adapters/driving/mcp"
	"github.com/custodia-labs/lexbrief/internal/core/services"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can load documents
and ask cited questions about them.

Tools: ingest_text, ingest_file, retrieve, ask, list_documents, remove_document,
clear_session.
Tools use the "mcp" session unless a session is passed.

By default, the server communicates over stdio using JSON-RPC.
Use --port to start an HTTP server instead, for example to test with MCP Inspector.

Examples:
  # Stdio mode (default, for desktop assistants)
  lexbrief mcp serve

  # HTTP mode
  lexbrief mcp serve --port 8080

  # Keep the "mcp" session in step with a folder
  lexbrief mcp serve --watch ~/cases/smith

Assistant configuration:
  {
    "mcpServers": {
      "lexbrief": {
        "command": "/path/to/lexbrief",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpServeCmd.Flags().StringP("watch", "w", "", "folder to keep the default session in step with")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	ports := &mcp.Ports{
		Retrieval: retrievalService,
		Answer:    answerService,
		Ingest:    ingestService,
		Session:   sessionService,
	}

	server, err := mcp.NewServer(ports, currentSettings().Retrieval.TopK)
	if err != nil {
		return err
	}

	watchDir, err := cmd.Flags().GetString("watch")
	if err != nil {
		return fmt.Errorf("getting watch flag: %w", err)
	}
	if watchDir != "" {
		// Stdout carries JSON-RPC in stdio mode, so progress goes to stderr.
		stop, err := startFolderSync(cmd.Context(), watchDir, mcp.DefaultSession, func(e services.SyncEvent) {
			cmd.PrintErrln(describeSyncEvent(e))
		})
		if err != nil {
			return err
		}
		defer stop()
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		cmd.PrintErrf("MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}
