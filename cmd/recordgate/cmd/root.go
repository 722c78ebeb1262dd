/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/recordgate/recordgate/pkg/config"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "recordgate",
	Short: "RecordGate - REST gateway for record-oriented databases",
	Long: `RecordGate translates HTTP CRUD requests into operations against a
record-oriented backend, with repeating fields, container data and
script hooks exposed over a uniform JSON message format.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to config file (defaults to ~/.recordgate/config.yaml)")
}

// configPath resolves the --config flag, falling back to the default
// location when the flag is empty.
func configPath(cmd *cobra.Command) string {
	path, _ := cmd.Flags().GetString("config")
	if path != "" {
		return path
	}
	return config.GetDefaultConfigPath()
}
