package main

import (
	"fmt"
	"os"

	"github.com/cloo-solutions/concierge/internal/cli"
	"github.com/cloo-solutions/concierge/internal/cli/admin"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "conciergd",
		Short: "Wellness concierge daemon and operator CLI",
		Long:  "Runs the chat API server and provides operator commands for the knowledge base and one-off chat turns",
	}

	cli.AddHelpJSONFlag(rootCmd)
	rootCmd.AddCommand(admin.ServeCmd())
	rootCmd.AddCommand(admin.AskCmd())
	rootCmd.AddCommand(admin.KBCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
