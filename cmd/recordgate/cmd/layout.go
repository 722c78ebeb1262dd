/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/recordgate/recordgate/pkg/backend"
	"github.com/recordgate/recordgate/pkg/config"
	"github.com/recordgate/recordgate/pkg/store"
)

// layoutCmd represents the layout command
var layoutCmd = &cobra.Command{
	Use:   "layout <name>",
	Short: "Define a layout and its field catalog",
	Long: `Define a layout on the embedded record store.

Each --field takes a spec of the form name:type[:maxRepeat], where type is
one of text, number, date or container and maxRepeat defaults to 1.

Examples:
  recordgate layout people --field name:text --field phone:text:3
  recordgate layout assets --field title:text --field photo:container`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		specs, _ := cmd.Flags().GetStringArray("field")
		if len(specs) == 0 {
			return fmt.Errorf("at least one --field is required")
		}

		meta := make([]backend.FieldMeta, 0, len(specs))
		for _, spec := range specs {
			fm, err := parseFieldSpec(spec)
			if err != nil {
				return err
			}
			meta = append(meta, fm)
		}

		cfg, err := config.LoadConfig(configPath(cmd))
		if err != nil {
			return fmt.Errorf("failed to load config (run 'recordgate init' first): %w", err)
		}
		if dataDir, _ := cmd.Flags().GetString("data-dir"); dataDir != "" {
			cfg.DataDir = dataDir
		}

		db, err := store.Open(store.Config{DataDir: cfg.DataDir})
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.DefineLayout(args[0], meta); err != nil {
			return fmt.Errorf("failed to define layout %s: %w", args[0], err)
		}
		cmd.Printf("Layout %s defined with %d fields\n", args[0], len(meta))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(layoutCmd)
	layoutCmd.Flags().StringArray("field", nil, "Field spec name:type[:maxRepeat] (repeatable)")
	layoutCmd.Flags().String("data-dir", "", "Data directory for the record store (overrides config)")
}

func parseFieldSpec(spec string) (backend.FieldMeta, error) {
	parts := strings.Split(spec, ":")
	if len(parts) < 2 || len(parts) > 3 || parts[0] == "" {
		return backend.FieldMeta{}, fmt.Errorf("invalid field spec %q, want name:type[:maxRepeat]", spec)
	}

	switch parts[1] {
	case backend.TypeText, backend.TypeNumber, backend.TypeDate, backend.TypeContainer:
	default:
		return backend.FieldMeta{}, fmt.Errorf("invalid field type %q in spec %q", parts[1], spec)
	}

	maxRepeat := 1
	if len(parts) == 3 {
		n, err := strconv.Atoi(parts[2])
		if err != nil || n < 1 {
			return backend.FieldMeta{}, fmt.Errorf("invalid maxRepeat in spec %q", spec)
		}
		maxRepeat = n
	}

	return backend.FieldMeta{
		Name:       parts[0],
		ResultType: parts[1],
		MaxRepeat:  maxRepeat,
	}, nil
}
