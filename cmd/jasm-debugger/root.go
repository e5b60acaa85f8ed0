package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "jasm-debugger",
	Short: "Visual debugger for jasm state machines",
	Long: `jasm-debugger renders live state machine diagrams for debugged processes.
Processes connect over TCP, send their machine layout once and stream state
changes; the debugger serves the resulting SVG diagrams over HTTP.`,
	SilenceUsage: true,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
}
