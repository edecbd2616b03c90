package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:          "igfa",
		Short:        "Instagram Friendship Analyzer - reply times and chat stats from an Instagram data export",
		Version:      version,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(analyzeCmd())
	rootCmd.AddCommand(insightsCmd())
	rootCmd.AddCommand(storiesCmd())
	rootCmd.AddCommand(doctorCmd())
	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
