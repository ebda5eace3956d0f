package admin

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/cloo-solutions/concierge/internal/retrieval"
	"github.com/cloo-solutions/concierge/internal/server"
	"github.com/cloo-solutions/concierge/internal/service"
	"github.com/spf13/cobra"
)

func KBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kb",
		Short: "Inspect the knowledge base",
		Long:  "List, browse and test retrieval against the knowledge corpus",
	}

	cmd.PersistentFlags().StringP("output", "o", "text", "Output format (text or json)")

	cmd.AddCommand(kbListCmd())
	cmd.AddCommand(kbCategoriesCmd())
	cmd.AddCommand(kbSearchCmd())

	return cmd
}

func kbListCmd() *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List knowledge items",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := knowledgeService()
			if err != nil {
				return err
			}

			items := svc.List(cmd.Context(), category)
			out := cmd.OutOrStdout()
			if outputJSON(cmd) {
				return writeJSON(out, items)
			}

			if len(items) == 0 {
				fmt.Fprintln(out, "No items found.")
				return nil
			}
			fmt.Fprintf(out, "Found %d items:\n\n", len(items))
			for _, item := range items {
				fmt.Fprintf(out, "%s. %s [%s]\n", item.ID, item.Title, item.Category)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "Only items in this category")

	return cmd
}

func kbCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List knowledge categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := knowledgeService()
			if err != nil {
				return err
			}

			categories := svc.Categories()
			if outputJSON(cmd) {
				return writeJSON(cmd.OutOrStdout(), categories)
			}
			for _, c := range categories {
				fmt.Fprintln(cmd.OutOrStdout(), c)
			}
			return nil
		},
	}
}

type scoredResult struct {
	ID    string  `json:"id"`
	Title string  `json:"title"`
	Score float64 `json:"score"`
}

func kbSearchCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Rank knowledge items against a query",
		Long:  "Shows which items a chat turn with this question would pull into its prompt, with similarity scores.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := knowledgeService()
			if err != nil {
				return err
			}

			scored := svc.Search(strings.Join(args, " "), limit)
			results := make([]scoredResult, len(scored))
			for i, s := range scored {
				results[i] = scoredResult{ID: s.Item.ID, Title: s.Item.Title, Score: s.Score}
			}

			out := cmd.OutOrStdout()
			if outputJSON(cmd) {
				return writeJSON(out, results)
			}

			if len(results) == 0 {
				fmt.Fprintln(out, "No results found.")
				return nil
			}
			for i, r := range results {
				fmt.Fprintf(out, "%d. %s (%.3f)\n   ID: %s\n", i+1, r.Title, r.Score, r.ID)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", retrieval.DefaultTopK, "Maximum number of results")

	return cmd
}

func knowledgeService() (*service.KnowledgeService, error) {
	cfg, err := loadConfig(false)
	if err != nil {
		return nil, err
	}

	store, err := server.LoadStore(cfg)
	if err != nil {
		return nil, err
	}
	return service.NewKnowledgeService(store, retrieval.NewRetriever(store.Items())), nil
}

func outputJSON(cmd *cobra.Command) bool {
	format, _ := cmd.Flags().GetString("output")
	return format == "json"
}

func writeJSON(w io.Writer, v interface{}) error {
	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	fmt.Fprintln(w, string(jsonBytes))
	return nil
}
