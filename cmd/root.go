// Package cmd implements the mechkit CLI using cobra.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mechkit/mechkit/pkg/runner"
)

var configPath string

// rootCmd is the base command.
var rootCmd = &cobra.Command{
	Use:   "mechkit",
	Short: "mechkit routes marketplace tool requests to their toolkits",
	Long: "mechkit serves payment, market data and permanent storage toolkits " +
		"behind one WebSocket gateway, rotating API keys when an upstream " +
		"starts rate limiting.",
}

// Execute runs the root command and exits on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = runner.Version
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"Path to the YAML config file (built-in defaults apply when empty)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(callCmd)
	rootCmd.AddCommand(opsCmd)
	rootCmd.AddCommand(mcpCmd)
}
