package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloo-solutions/concierge/internal/domain"
	"github.com/cloo-solutions/concierge/internal/server"
	"github.com/cloo-solutions/concierge/internal/telemetry"
	"github.com/spf13/cobra"
)

// AskCmd runs one chat turn in-process against the configured providers.
func AskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Answer one question without starting the server",
		Long: `Runs a single chat turn through retrieval, web search and the model,
using the same configuration as serve. Useful as a smoke test.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runAsk,
	}

	cmd.Flags().StringP("output", "o", "text", "Output format (text or json)")
	cmd.Flags().BoolP("verbose", "v", false, "Show knowledge items and search provider used")

	return cmd
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := strings.Join(args, " ")
	outputFormat, _ := cmd.Flags().GetString("output")
	verbose, _ := cmd.Flags().GetBool("verbose")

	cfg, err := loadConfig(true)
	if err != nil {
		return err
	}

	closeLogs := setupLogging(cfg)
	defer closeLogs.Close()

	shutdownTelemetry := initTelemetry(cfg)
	defer shutdownTelemetry()

	app, err := server.NewApp(cfg)
	if err != nil {
		return err
	}

	ctx, span := telemetry.StartTransaction(context.Background(), "cli.ask", "cli")
	defer span.End()

	reply, err := app.Chat.Reply(ctx, []domain.ChatMessage{{Role: domain.RoleUser, Content: question}})
	if err != nil {
		span.SetError(err)
		return fmt.Errorf("chat turn failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if outputFormat == "json" {
		jsonBytes, _ := json.MarshalIndent(reply, "", "  ")
		fmt.Fprintln(out, string(jsonBytes))
		return nil
	}

	fmt.Fprintln(out, reply.Message)
	if verbose {
		fmt.Fprintf(out, "\nKnowledge: %s\n", strings.Join(reply.KnowledgeIDs, ", "))
		if reply.SearchUsed {
			fmt.Fprintf(out, "Web search: %s\n", reply.SearchProvider)
		} else {
			fmt.Fprintln(out, "Web search: not used")
		}
	}
	return nil
}
