package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/tidytasks/api/cmd/api/commands"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "tidytasks",
		Short: "TidyTasks API server",
		Long:  `TidyTasks is a personal to-do API with per-user task isolation, filtering and sorting.`,
	}

	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewMigrateCommand())
	rootCmd.AddCommand(commands.NewTokenCommand())

	if err := rootCmd.Execute(); err != nil {
		log.Printf("Command execution failed: %v", err)
		os.Exit(1)
	}
}
