package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragline/internal/adapters/driving/mcp"
	"github.com/custodia-labs/ragline/internal/core/services"
)

// Range scanned by --auto-port.
const (
	autoPortStart = 8080
	autoPortEnd   = 8180
)

var (
	mcpPort     int
	mcpAutoPort bool
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so assistants can search,
ask and ingest through ragline.

By default the server speaks JSON-RPC over stdio. Use --port (or --auto-port)
to serve streamable HTTP instead, for example to test with MCP Inspector.

Examples:
  ragline mcp serve
  ragline mcp serve --port 8080
  ragline mcp serve --auto-port

Assistant configuration:
  {
    "mcpServers": {
      "ragline": {
        "command": "/path/to/ragline",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	Args: cobra.NoArgs,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntVarP(&mcpPort, "port", "p", 0, "HTTP port (0 = use stdio)")
	mcpServeCmd.Flags().BoolVar(&mcpAutoPort, "auto-port", false,
		fmt.Sprintf("serve HTTP on the first free port in %d-%d", autoPortStart, autoPortEnd))
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	if retrievalService == nil {
		return notConfigured("retrieval service")
	}

	server, err := mcp.NewServer(&mcp.Ports{
		Retrieval: retrievalService,
		Ingestion: ingestionService,
		Document:  documentService,
	})
	if err != nil {
		return err
	}

	port := mcpPort
	if mcpAutoPort {
		port, err = services.FindAvailablePort(autoPortStart, autoPortEnd)
		if err != nil {
			return err
		}
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		cmd.PrintErrf("MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}
