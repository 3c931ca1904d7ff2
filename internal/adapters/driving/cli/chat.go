package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/trials-mcp/internal/core/domain"
	"github.com/custodia-labs/trials-mcp/internal/core/ports/driven"
	"github.com/custodia-labs/trials-mcp/internal/core/ports/driving"
	"github.com/custodia-labs/trials-mcp/internal/core/services"
	"github.com/custodia-labs/trials-mcp/internal/logger"
)

var (
	chatEndpoint string
	chatModel    string
	chatLocal    bool
)

var chatCmd = &cobra.Command{
	Use:   "chat [question]",
	Short: "Ask questions answered with the trial tools",
	Long: `Chat with an OpenAI-compatible model that can call the ClinicalTrials.gov tools.

With a question argument, prints one answer and exits. Without one, starts an
interactive session; type "exit" to leave or "/reset" to clear the history.

The tools run on the MCP server at --endpoint (default http://localhost:<port>/mcp),
or in this process with --local.

The API key is read from OPENAI_API_KEY or the "openai.api_key" setting.
The system prompt can be overridden in ~/.trials-mcp/prompts/chat_system.txt.`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVar(&chatEndpoint, "endpoint", "", "MCP endpoint (default http://localhost:<port>/mcp)")
	chatCmd.Flags().StringVar(&chatModel, "model", "", "chat model (default from settings)")
	chatCmd.Flags().BoolVar(&chatLocal, "local", false, "run the tools in-process instead of connecting to a server")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	settings := currentSettings()
	if chatModel != "" {
		settings.OpenAI.Model = chatModel
	}
	if settings.OpenAI.APIKey == "" {
		return errors.New("OpenAI API key not set: export OPENAI_API_KEY or run 'trials-mcp config set openai.api_key <key>'")
	}

	model, err := newChatModel(settings.OpenAI)
	if err != nil {
		return fmt.Errorf("creating chat model: %w", err)
	}
	defer model.Close()

	invoker, closeTools, err := chatTools(ctx, settings)
	if err != nil {
		return err
	}
	defer closeTools()

	descriptors, err := invoker.Tools(ctx)
	if err != nil {
		return fmt.Errorf("listing tools: %w", err)
	}

	svc := services.NewChatService(model, invoker, services.NewBridge(descriptors))
	if prompt, ok := loadPrompt(driven.PromptChatSystem); ok {
		svc.SetSystemPrompt(prompt)
	}

	st := stylesFor(cmd.OutOrStdout())

	if len(args) > 0 {
		answer, history, err := svc.Ask(ctx, nil, strings.Join(args, " "))
		printToolActivity(cmd, st, history)
		if err != nil {
			return err
		}
		cmd.Println(st.Answer.Render(answer))
		return nil
	}

	return chatLoop(ctx, cmd, svc, st, model.ModelName())
}

func chatTools(ctx context.Context, settings domain.AppSettings) (driving.ToolInvoker, func(), error) {
	if chatLocal {
		registry, err := localTools(settings)
		if err != nil {
			return nil, nil, err
		}
		return registry, func() {}, nil
	}

	endpoint := chatEndpoint
	if endpoint == "" {
		endpoint = settings.MCPEndpoint()
	}
	remote, err := dialTools(ctx, endpoint)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to %s (start one with 'trials-mcp serve' or use --local): %w", endpoint, err)
	}
	return remote, func() { _ = remote.Close() }, nil
}

func loadPrompt(name string) (string, bool) {
	if promptStore == nil {
		return "", false
	}
	prompt, ok, err := promptStore.Load(name)
	if err != nil {
		logger.Warn("prompts: %v", err)
		return "", false
	}
	return prompt, ok
}

func chatLoop(ctx context.Context, cmd *cobra.Command, svc driving.ChatService, st styles, modelName string) error {
	interactive := isTerminal(cmd.InOrStdin())
	if interactive {
		cmd.Println(st.Muted.Render(fmt.Sprintf("Chatting with %s. Type 'exit' to quit, '/reset' to start over.", modelName)))
	}

	var history []domain.ChatMessage
	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		if interactive {
			cmd.Print(st.Prompt.Render("you> "))
		}
		if !scanner.Scan() {
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "exit", "quit":
			return nil
		case "/reset":
			history = nil
			cmd.Println(st.Muted.Render("History cleared."))
			continue
		}

		before := len(history)
		answer, updated, err := svc.Ask(ctx, history, line)
		if len(updated) > before {
			printToolActivity(cmd, st, updated[before:])
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			cmd.Println(st.Error.Render("error: " + err.Error()))
			continue
		}
		history = updated
		cmd.Println(st.Answer.Render(answer))
		cmd.Println()
	}
}

func printToolActivity(cmd *cobra.Command, st styles, msgs []domain.ChatMessage) {
	for _, m := range msgs {
		for _, fc := range m.ToolCalls {
			cmd.Println(st.Tool.Render(fmt.Sprintf("[tool] %s %s", fc.Name, fc.Arguments)))
		}
	}
}
