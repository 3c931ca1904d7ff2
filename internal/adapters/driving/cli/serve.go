package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/trials-mcp/internal/adapters/driving/mcp"
	"github.com/custodia-labs/trials-mcp/internal/core/services"
	"github.com/custodia-labs/trials-mcp/internal/logger"
)

var (
	servePort     int
	serveStdio    bool
	serveNextFree bool
)

// portScanRange is how many ports above the requested one --next-free tries.
const portScanRange = 20

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server exposing the ClinicalTrials.gov tools.

By default the server listens for streamable HTTP on http://localhost:3000/mcp
(the port comes from --port or the "port" setting).

Use --stdio to communicate over stdin/stdout instead, for MCP hosts that
launch the server as a subprocess.

Examples:
  # HTTP mode on the configured port
  trials-mcp serve

  # HTTP mode on another port
  trials-mcp serve --port 8080

  # Move to the next free port if 3000 is taken
  trials-mcp serve --next-free

  # Stdio mode
  trials-mcp serve --stdio

Host configuration for stdio:
  {
    "mcpServers": {
      "clinical-trials": {
        "command": "/path/to/trials-mcp",
        "args": ["serve", "--stdio"]
      }
    }
  }`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "HTTP port (default from settings, 3000)")
	serveCmd.Flags().BoolVar(&serveStdio, "stdio", false, "serve over stdin/stdout instead of HTTP")
	serveCmd.Flags().BoolVar(&serveNextFree, "next-free", false, "use the next free port if the requested one is taken")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	logger.SetTimestamps(true)
	defer logger.SetTimestamps(false)
	logger.Section("MCP Server")

	settings := currentSettings()
	logger.Debug("registry: %s (timeout %s, retries %d)",
		settings.ClinicalTrials.BaseURL, settings.ClinicalTrials.Timeout, settings.ClinicalTrials.MaxRetries)

	registry, err := localTools(settings)
	if err != nil {
		return err
	}

	server, err := mcp.NewServer(&mcp.Ports{Tools: registry})
	if err != nil {
		return err
	}

	if serveStdio {
		return server.Run(cmd.Context())
	}

	port := settings.Port
	if servePort != 0 {
		if servePort < 1 || servePort > 65535 {
			return fmt.Errorf("invalid port %d", servePort)
		}
		port = servePort
	}
	if serveNextFree {
		free, err := services.FindAvailablePort(port, min(port+portScanRange, 65535))
		if err != nil {
			return err
		}
		if free != port {
			logger.Info("port %d is in use, using %d", port, free)
		}
		port = free
	}

	addr := fmt.Sprintf(":%d", port)
	return server.RunHTTP(cmd.Context(), addr, func(string) {
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost:%d%s\n", port, mcp.Path)
	})
}
