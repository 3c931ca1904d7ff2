package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/trials-mcp/internal/core/domain"
	"github.com/custodia-labs/trials-mcp/internal/core/services"
)

var (
	toolsEndpoint string
	toolsJSON     bool
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the published tools",
	Long: `List the tools and their arguments.

Without --endpoint the tools built into this binary are listed. With
--endpoint the list is fetched from a running MCP server.`,
	Args: cobra.NoArgs,
	RunE: runTools,
}

func init() {
	toolsCmd.Flags().StringVar(&toolsEndpoint, "endpoint", "", "list the tools of a running MCP server")
	toolsCmd.Flags().BoolVar(&toolsJSON, "json", false, "print the OpenAI function declarations as JSON")
	rootCmd.AddCommand(toolsCmd)
}

func runTools(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	var descriptors []domain.ToolDescriptor
	if toolsEndpoint != "" {
		remote, err := dialTools(ctx, toolsEndpoint)
		if err != nil {
			return fmt.Errorf("connecting to %s: %w", toolsEndpoint, err)
		}
		defer remote.Close()

		descriptors, err = remote.Tools(ctx)
		if err != nil {
			return fmt.Errorf("listing tools: %w", err)
		}
	} else {
		registry, err := localTools(currentSettings())
		if err != nil {
			return err
		}
		descriptors = registry.Descriptors()
	}

	if toolsJSON {
		data, err := json.MarshalIndent(services.NewBridge(descriptors).Definitions(), "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal tools: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	for i, d := range descriptors {
		if i > 0 {
			cmd.Println()
		}
		cmd.Printf("%s\n", d.Name)
		cmd.Printf("  %s\n", d.Description)
		for _, f := range d.Schema.Fields {
			req := ""
			if f.Required {
				req = ", required"
			}
			cmd.Printf("  - %s (%s%s)", f.Name, f.Type, req)
			if f.Description != "" {
				cmd.Printf(": %s", f.Description)
			}
			cmd.Println()
		}
	}
	return nil
}
