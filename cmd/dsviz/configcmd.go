package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"

	"github.com/spf13/cobra"
)

func newConfigCmd(opts *rootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or write the settings file",
	}
	cmd.AddCommand(newConfigShowCmd(opts), newConfigInitCmd(opts))
	return cmd
}

func newConfigShowCmd(opts *rootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.config()
			if err != nil {
				return err
			}
			table := newTable(cmd.OutOrStdout(), "SETTING", "VALUE")
			v := reflect.ValueOf(cfg)
			t := v.Type()
			for i := 0; i < t.NumField(); i++ {
				table.Append([]string{t.Field(i).Tag.Get("json"), fmt.Sprint(v.Field(i).Interface())})
			}
			table.Render()
			return nil
		},
	}
}

func newConfigInitCmd(opts *rootOpts) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the effective configuration to the settings file",
		Long: `Write the effective configuration, defaults merged with any DSVIZ_* env vars,
to the settings file so it can be edited and reloaded with SIGHUP.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.config()
			if err != nil {
				return err
			}
			path := opts.cfgFile
			if path == "" {
				path = settingsPath()
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists, use --force to overwrite", path)
			}
			if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
				return fmt.Errorf("cannot create %s: %w", filepath.Dir(path), err)
			}
			data, err := json.MarshalIndent(settingsFile(cfg), "", "  ")
			if err != nil {
				return err
			}
			if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
				return fmt.Errorf("cannot write %s: %w", path, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Config written to %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing settings file")
	return cmd
}

// settingsFile is Config as written to disk: durations as strings so viper
// reads them back.
func settingsFile(cfg Config) map[string]any {
	out := make(map[string]any)
	v := reflect.ValueOf(cfg)
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		val := v.Field(i).Interface()
		if s, ok := val.(fmt.Stringer); ok {
			val = s.String()
		}
		out[t.Field(i).Tag.Get("json")] = val
	}
	return out
}
