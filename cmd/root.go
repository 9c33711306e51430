// Package cmd implements the CLI commands using Cobra.
package cmd

import (
	"fmt"
	"os"

	"github.com/unsuns06/ReplayTV-Stremio-sub000/config"
	"github.com/unsuns06/ReplayTV-Stremio-sub000/logger"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"
)

// Global flags
var (
	flagLogLevel string
	flagJSON     bool
)

var rootCmd = &cobra.Command{
	Use:   "replaytv",
	Short: "Resolve protected replay streams into playable urls",
	Long: `replaytv picks the best asset of a replay, unlocks cenc protected dash
manifests through an external key exchange and hands back a clearkey proxy
url, a remuxed asset or the protected manifest as a last resort.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

// Execute runs the root command.
func Execute() {
	defer logger.Sync()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug | info | warn | error")
	rootCmd.PersistentFlags().BoolVarP(&flagJSON, "json", "j", false, "Print results as JSON")

	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(rewriteCmd)
	rootCmd.AddCommand(keysCmd)
}

// loadConfig loads env and broadcaster configuration, flags win.
func loadConfig(cmd *cobra.Command, args []string) error {
	logger.Init(config.Env.LogLevel, false)
	if err := config.Load(); err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	level := config.Env.LogLevel
	if flagLogLevel != "" {
		level = flagLogLevel
	}
	logger.Init(level, config.Env.LogFile)
	return nil
}

func printJSON(cmd *cobra.Command, value any) error {
	data, err := sonic.ConfigStd.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
