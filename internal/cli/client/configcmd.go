package client

import (
	"fmt"

	"github.com/spf13/cobra"
)

// ConfigCmd manages the saved server URL.
func ConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage client configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set-url <url>",
		Short: "Save the server URL and check it answers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClientWithConfig(args[0])
			if err != nil {
				return err
			}
			if err := api.Health(cmd.Context()); err != nil {
				return fmt.Errorf("server at %s is not reachable: %w", api.baseURL, err)
			}
			if err := SaveGlobalConfig(&GlobalConfig{APIURL: api.baseURL}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved API URL: %s\n", api.baseURL)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective server URL and where it came from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flagURL, _ := cmd.Flags().GetString("api-url")
			apiURL, source, err := ResolveAPIURL(flagURL)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "API URL: %s (%s)\n", apiURL, source)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Delete the saved configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := DeleteGlobalConfig(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Configuration removed.")
			return nil
		},
	})

	return cmd
}

