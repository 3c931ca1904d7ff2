package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/trials-mcp/internal/core/services"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage application settings",
	Long: `View and change settings stored in ~/.trials-mcp/config.toml.

Keys:
  port                           MCP HTTP port (default 3000)
  clinicaltrials.base_url        registry API root
  clinicaltrials.timeout_seconds per-request timeout
  clinicaltrials.max_retries     extra attempts after a transient failure (0-5)
  openai.base_url                chat completions API root
  openai.model                   chat model
  openai.api_key                 API key (OPENAI_API_KEY takes precedence)
  client.endpoint                MCP endpoint used by client and chat`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a setting",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if configStore == nil {
			return errors.New("config store not configured")
		}
		cmd.Println(configStore.Path())
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings := settingsService.Get()

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Server]")
	cmd.Printf("  Port: %d\n", settings.Port)
	cmd.Println()

	cmd.Println("[ClinicalTrials.gov]")
	cmd.Printf("  Base URL: %s\n", settings.ClinicalTrials.BaseURL)
	cmd.Printf("  Timeout: %s\n", settings.ClinicalTrials.Timeout)
	cmd.Printf("  Max retries: %d\n", settings.ClinicalTrials.MaxRetries)
	cmd.Println()

	cmd.Println("[OpenAI]")
	cmd.Printf("  Base URL: %s\n", settings.OpenAI.BaseURL)
	cmd.Printf("  Model: %s\n", settings.OpenAI.Model)
	if settings.OpenAI.APIKey != "" {
		cmd.Printf("  API Key: %s\n", maskAPIKey(settings.OpenAI.APIKey))
	} else {
		cmd.Printf("  API Key: (not set)\n")
	}
	cmd.Println()

	cmd.Println("[Client]")
	cmd.Printf("  Endpoint: %s\n", settings.MCPEndpoint())

	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	key, value := args[0], strings.TrimSpace(args[1])
	if err := settingsService.Set(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w (valid keys: %s)", key, err, strings.Join(services.SettingKeys(), ", "))
	}

	shown := value
	if key == services.KeyOpenAIAPIKey {
		shown = maskAPIKey(value)
	}
	cmd.Printf("%s = %s\n", key, shown)
	return nil
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
