// Package cli provides the trials-mcp command line interface.
package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/trials-mcp/internal/adapters/driven/clinicaltrials"
	"github.com/custodia-labs/trials-mcp/internal/adapters/driven/config/file"
	"github.com/custodia-labs/trials-mcp/internal/adapters/driven/config/memory"
	"github.com/custodia-labs/trials-mcp/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/trials-mcp/internal/adapters/driven/mcpclient"
	"github.com/custodia-labs/trials-mcp/internal/core/domain"
	"github.com/custodia-labs/trials-mcp/internal/core/ports/driven"
	"github.com/custodia-labs/trials-mcp/internal/core/ports/driving"
	"github.com/custodia-labs/trials-mcp/internal/core/services"
	"github.com/custodia-labs/trials-mcp/internal/logger"
)

// version is set at build time with -ldflags "-X .../cli.version=...".
var version = "dev"

var (
	verbose   bool
	configDir string
	noConfig  bool
)

var (
	configStore     driven.ConfigStore
	settingsService *services.SettingsService
	promptStore     driven.PromptStore
)

// remoteTools is a tool invoker that holds a connection.
type remoteTools interface {
	driving.ToolInvoker
	Close() error
}

// Constructors for outbound adapters. Tests replace them.
var (
	newTrialsAPI = func(s domain.ClinicalTrialsSettings) driven.TrialsAPI {
		retries := s.MaxRetries
		if retries == 0 {
			retries = -1
		}
		return clinicaltrials.NewClient(clinicaltrials.Config{
			BaseURL:    s.BaseURL,
			Timeout:    s.Timeout,
			MaxRetries: retries,
		})
	}

	newChatModel = func(s domain.OpenAISettings) (driven.ChatModel, error) {
		return openai.NewChatModel(openai.Config{
			APIKey:  s.APIKey,
			BaseURL: s.BaseURL,
			Model:   s.Model,
		})
	}

	dialTools = func(ctx context.Context, endpoint string) (remoteTools, error) {
		return mcpclient.Dial(ctx, endpoint)
	}
)

var rootCmd = &cobra.Command{
	Use:   "trials-mcp",
	Short: "ClinicalTrials.gov tools over the Model Context Protocol",
	Long: `trials-mcp publishes ClinicalTrials.gov search as MCP tools.

Run "trials-mcp serve" to start the server, "trials-mcp client" to exercise
it, and "trials-mcp chat" to ask questions through an OpenAI-compatible model
that calls the tools.

Settings are read from ~/.trials-mcp/config.toml.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging on stderr")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.trials-mcp)")
	rootCmd.PersistentFlags().BoolVar(&noConfig, "no-config", false, "ignore the configuration file and use defaults")
}

// Execute runs the root command. Cancelling ctx stops long-running
// commands such as serve and chat.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// SetVersion overrides the reported version.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

func setup(_ *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if noConfig {
		configStore = memory.NewConfigStore(nil)
		promptStore = nil
	} else {
		store, err := file.NewConfigStore(configDir)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		configStore = store

		promptDir := ""
		if configDir != "" {
			promptDir = filepath.Join(configDir, "prompts")
		}
		prompts, err := file.NewPromptStore(promptDir)
		if err != nil {
			return fmt.Errorf("loading prompts: %w", err)
		}
		promptStore = prompts
	}

	settingsService = services.NewSettingsService(configStore)
	logger.Debug("config: %s", configStore.Path())
	return nil
}

// localTools builds the in-process tool registry.
func localTools(settings domain.AppSettings) (*services.ToolRegistry, error) {
	return services.NewToolRegistry(services.TrialTools(newTrialsAPI(settings.ClinicalTrials))...)
}

func currentSettings() domain.AppSettings {
	if settingsService == nil {
		return domain.DefaultAppSettings()
	}
	return settingsService.Get()
}
