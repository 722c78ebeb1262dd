/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/recordgate/recordgate/pkg/config"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize recordgate configuration",
	Long: `Initialize the recordgate configuration file with a generated API key.

This command will:
- Create the config directory
- Generate a secure random API key
- Write the config file with default settings

Examples:
  recordgate init
  recordgate init --data-dir=./data --force`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath(cmd)
		dataDir, _ := cmd.Flags().GetString("data-dir")
		force, _ := cmd.Flags().GetBool("force")

		if config.ConfigExists(path) && !force {
			cmd.Printf("Config already exists at %s. Use --force to overwrite.\n", path)
			return nil
		}

		cfg, err := config.BootstrapConfig(path, dataDir)
		if err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		cmd.Printf("Config written to %s\n", path)
		cmd.Printf("API key: %s\n", cfg.Security.APIKey)
		cmd.Printf("\nYou can now start the gateway with:\n")
		cmd.Printf("  recordgate serve --config=%s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().String("data-dir", "", "Data directory for the record store")
	initCmd.Flags().Bool("force", false, "Overwrite an existing config file")
}
