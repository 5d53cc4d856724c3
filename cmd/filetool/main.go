package main

import (
	"os"

	"github.com/saurab2057/Filetool/cmd/filetool/cmd"
	"github.com/saurab2057/Filetool/internal/logger"

	"github.com/spf13/cobra"
)

func main() {
	logger.Init(true, "")

	rootCmd := &cobra.Command{
		Use:          "filetool",
		Short:        "Maintenance tools for the Filetool backend",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(cmd.MigrateCmd())
	rootCmd.AddCommand(cmd.UserCmd())
	rootCmd.AddCommand(cmd.SettingsCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
