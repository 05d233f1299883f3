package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jobwatch/jobwatch/cmd/admin/commands"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "jobwatch-admin",
		Short: "Administration tool for Jobwatch",
		Long:  "CLI tool for schema migration, manual checklist submission, and tag inspection",
	}

	rootCmd.AddCommand(commands.NewMigrateCmd())
	rootCmd.AddCommand(commands.NewSubmitCmd())
	rootCmd.AddCommand(commands.NewTagsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
