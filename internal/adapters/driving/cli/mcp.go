package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/chainaudit/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can ask
security questions, analyse deployed contracts and ingest reports.

By default, the server communicates over stdio using JSON-RPC.
Use --port to serve the streamable HTTP transport instead.

Examples:
  # Stdio mode (default, for desktop assistants)
  chainaudit mcp serve

  # HTTP mode (for MCP Inspector, remote access)
  chainaudit mcp serve --port 8080

Assistant configuration:
  {
    "mcpServers": {
      "chainaudit": {
        "command": "/path/to/chainaudit",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	Args: cobra.NoArgs,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpServeCmd.Flags().Bool("ask-only", false, "register only the ask tool")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}
	askOnly, err := cmd.Flags().GetBool("ask-only")
	if err != nil {
		return fmt.Errorf("getting ask-only flag: %w", err)
	}

	rt, _, err := startRuntime(cmd.Context(), nil)
	if err != nil {
		return err
	}
	defer rt.close()

	ports := &mcp.Ports{Ask: rt.Ask}
	if !askOnly {
		ports.Audit = rt.Audit
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		cmd.PrintErrf("MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}
