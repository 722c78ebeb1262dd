/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/recordgate/recordgate/internal/logger"
	"github.com/recordgate/recordgate/pkg/api"
	"github.com/recordgate/recordgate/pkg/config"
	"github.com/recordgate/recordgate/pkg/engine"
	"github.com/recordgate/recordgate/pkg/store"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST gateway",
	Long: `Start the RecordGate REST gateway over the embedded record store.

Configuration is read from the config file created by 'recordgate init';
the --port, --bind and --data-dir flags override individual settings.

Examples:
  recordgate serve
  recordgate serve --port=9090 --data-dir=./data`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath(cmd)
		cfg, err := config.LoadConfig(path)
		if err != nil {
			return fmt.Errorf("failed to load config (run 'recordgate init' first): %w", err)
		}

		if port, _ := cmd.Flags().GetInt("port"); port != 0 {
			cfg.Port = port
		}
		if bind, _ := cmd.Flags().GetString("bind"); bind != "" {
			cfg.Bind = bind
		}
		if dataDir, _ := cmd.Flags().GetString("data-dir"); dataDir != "" {
			cfg.DataDir = dataDir
		}

		log := logger.New(logger.Config{
			Level:  cfg.Logging.Level,
			Pretty: cfg.Logging.Pretty,
		})

		db, err := store.Open(store.Config{DataDir: cfg.DataDir})
		if err != nil {
			return err
		}
		defer db.Close()

		svc := engine.New(db, log)

		return api.StartServer(svc, api.ServerConfig{
			Port:   cfg.Port,
			Bind:   cfg.Bind,
			APIKey: cfg.Security.APIKey,
		}, log)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 0, "Port to listen on (overrides config)")
	serveCmd.Flags().String("bind", "", "Address to bind to (overrides config)")
	serveCmd.Flags().String("data-dir", "", "Data directory for the record store (overrides config)")
}
