package main

import (
	"newsgraph/logger"
	"newsgraph/mcp"
	"newsgraph/retrieval"

	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the related-article lookups as MCP tools over stdio",
	Long: `Serve the seven related-article lookups as Model Context Protocol tools.

Requests are newline-delimited JSON-RPC 2.0 on stdin, responses go to stdout
and logs to stderr, so a chat agent can spawn newsgraphctl as a tool server:

  {"command": "newsgraphctl", "args": ["mcp", "--endpoint", "http://localhost:8529"]}`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	svc := retrieval.NewRetriever(newConnector(cfg.Arango), cfg.Arango)
	server := mcp.NewServer(svc, endpoint)
	logger.Info("serving MCP tools on stdio", "tools", len(server.Tools()))
	return server.Serve(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
}
