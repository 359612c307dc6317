package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/studyplanner/core/cmd/api/commands"
)

// @title Study Planner API
// @version 1.0
// @description Tasks, weekly classes and colour-coded subjects on a calendar

// @license.name MIT

// @host localhost:5000
// @BasePath /

func main() {
	rootCmd := &cobra.Command{
		Use:          "planner",
		Short:        "Study Planner server",
		Long:         `Study Planner keeps tasks, weekly classes and colour-coded subjects in one schedule document and serves them to a calendar page.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewMigrateCommand())
	rootCmd.AddCommand(commands.NewDataCommand())
	rootCmd.AddCommand(commands.NewBackupCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	if err := rootCmd.Execute(); err != nil {
		log.Printf("Command execution failed: %v", err)
		os.Exit(1)
	}
}
