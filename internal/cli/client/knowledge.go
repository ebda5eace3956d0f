package client

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// KnowledgeCmd browses the server's knowledge base.
func KnowledgeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "knowledge",
		Aliases: []string{"kb"},
		Short:   "Browse the knowledge base",
	}

	cmd.AddCommand(knowledgeListCmd())
	cmd.AddCommand(knowledgeCategoriesCmd())
	cmd.AddCommand(knowledgeGetCmd())

	return cmd
}

func knowledgeListCmd() *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List knowledge items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}

			items, err := api.ListKnowledge(cmd.Context(), category)
			if err != nil {
				return fmt.Errorf("list failed: %w", err)
			}

			out := cmd.OutOrStdout()
			if isJSONOutput(cmd) {
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

func knowledgeCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List knowledge categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}

			categories, err := api.Categories(cmd.Context())
			if err != nil {
				return fmt.Errorf("categories failed: %w", err)
			}

			if isJSONOutput(cmd) {
				return writeJSON(cmd.OutOrStdout(), categories)
			}
			for _, c := range categories {
				fmt.Fprintln(cmd.OutOrStdout(), c)
			}
			return nil
		},
	}
}

func knowledgeGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one knowledge item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}

			item, err := api.GetKnowledge(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("get failed: %w", err)
			}

			out := cmd.OutOrStdout()
			if isJSONOutput(cmd) {
				return writeJSON(out, item)
			}
			fmt.Fprintf(out, "%s [%s]\n\n%s\n", item.Title, item.Category, item.Content)
			return nil
		},
	}
}

func isJSONOutput(cmd *cobra.Command) bool {
	outputJSON, _ := cmd.Flags().GetBool("output")
	return outputJSON
}

func writeJSON(w io.Writer, v interface{}) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	fmt.Fprintln(w, string(output))
	return nil
}
