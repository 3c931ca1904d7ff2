package cli

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/trials-mcp/internal/core/domain"
	"github.com/custodia-labs/trials-mcp/internal/core/services"
)

var (
	clientEndpoint  string
	clientCondition string
	clientLocation  string
	clientStatus    string
	clientLimit     int
	clientJSON      bool
)

var clientCmd = &cobra.Command{
	Use:   "client",
	Short: "Exercise a running MCP server",
	Long: `Connect to a running trials-mcp server, list its tools, search for trials
and fetch the details of the first match.

Examples:
  trials-mcp client
  trials-mcp client --condition "breast cancer" --status recruiting
  trials-mcp client --endpoint http://trials.example.com:3000/mcp --json`,
	Args: cobra.NoArgs,
	RunE: runClient,
}

func init() {
	clientCmd.Flags().StringVar(&clientEndpoint, "endpoint", "", "MCP endpoint (default http://localhost:<port>/mcp)")
	clientCmd.Flags().StringVar(&clientCondition, "condition", "diabetes", "condition to search for")
	clientCmd.Flags().StringVar(&clientLocation, "location", "", "optional location filter")
	clientCmd.Flags().StringVar(&clientStatus, "status", "recruiting", "recruitment status filter (empty for any)")
	clientCmd.Flags().IntVarP(&clientLimit, "limit", "n", 5, "number of trials to list")
	clientCmd.Flags().BoolVar(&clientJSON, "json", false, "print structured results as JSON")
	rootCmd.AddCommand(clientCmd)
}

func runClient(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	endpoint := clientEndpoint
	if endpoint == "" {
		endpoint = currentSettings().MCPEndpoint()
	}

	tools, err := dialTools(ctx, endpoint)
	if err != nil {
		return fmt.Errorf("connecting to %s: %w", endpoint, err)
	}
	defer tools.Close()

	descriptors, err := tools.Tools(ctx)
	if err != nil {
		return fmt.Errorf("listing tools: %w", err)
	}
	cmd.Printf("Connected to %s\n", endpoint)
	cmd.Println("Available tools:")
	for _, d := range descriptors {
		cmd.Printf("  - %s\n", d.Name)
	}
	cmd.Println()

	args := map[string]any{"condition": clientCondition, "page_size": clientLimit}
	if clientLocation != "" {
		args["location"] = clientLocation
	}
	if clientStatus != "" {
		args["status"] = clientStatus
	}

	search := tools.Invoke(ctx, domain.ToolCall{ID: uuid.NewString(), Name: services.ToolSearchTrials, Arguments: args})
	if err := printResult(cmd, search); err != nil {
		return err
	}
	if search.Failed() {
		return fmt.Errorf("%s failed: %s", services.ToolSearchTrials, search.Error.Message)
	}
	if search.Page == nil || len(search.Page.Trials) == 0 {
		return nil
	}

	cmd.Println()
	details := tools.Invoke(ctx, domain.ToolCall{
		ID:        uuid.NewString(),
		Name:      services.ToolGetTrialDetails,
		Arguments: map[string]any{"nct_id": search.Page.Trials[0].NCTID},
	})
	if err := printResult(cmd, details); err != nil {
		return err
	}
	if details.Failed() {
		return fmt.Errorf("%s failed: %s", services.ToolGetTrialDetails, details.Error.Message)
	}
	return nil
}

func printResult(cmd *cobra.Command, r domain.ToolResult) error {
	if clientJSON {
		data, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal result: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}
	cmd.Println(services.RenderResult(r))
	return nil
}
