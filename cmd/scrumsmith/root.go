package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/scrumsmith/scrumsmith/internal/logging"
)

var (
	debug   bool
	rootCmd = &cobra.Command{
		Use:           "scrumsmith",
		Short:         "scrumsmith turns meeting transcripts into Agile documentation packages",
		SilenceErrors: true,
	}
)

// Execute runs the root command.
func Execute() error {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		logging.Init(debug, os.Getenv("SCRUMSMITH_ENV") == "production")
	}
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(generateCmd())
	return rootCmd.Execute()
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, err)
}
