package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/nforb26-art/tradeanalyser/config"
)

func (a *app) newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or edit the configuration file",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printConfig(cmd.OutOrStdout(), a.cfg)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Check the configuration and report the first problem",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "config OK (backend %s)\n", a.cfg.BackendURL)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the configuration file location",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.configPath
			if path == "" {
				p, err := config.DefaultPath()
				if err != nil {
					return err
				}
				path = p
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write the effective configuration to the config file if none exists",
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := a.manager()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "config at %s\n", mgr.Path())
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:     "set KEY VALUE",
		Short:   "Change one key in the config file",
		Example: "  tradeanalyser config set debounce 500ms\n  tradeanalyser config set backend_url http://localhost:9000",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := a.manager()
			if err != nil {
				return err
			}
			updated, err := setKey(mgr.Get(), args[0], args[1])
			if err != nil {
				return err
			}
			if err := mgr.Update(updated); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", args[0], args[1])
			return nil
		},
	})

	return cmd
}

func (a *app) manager() (*config.Manager, error) {
	return config.NewManager(
		config.WithConfigPath(a.configPath),
		config.WithInitialConfig(a.cfg),
	)
}

func printConfig(out io.Writer, cfg *config.Config) error {
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return err
	}
	return enc.Close()
}

// setKey round-trips cfg through its YAML form so every yaml-tagged
// field can be set by name with the same parsing the file uses.
func setKey(cfg config.Config, key, value string) (config.Config, error) {
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return cfg, err
	}
	fields := map[string]any{}
	if err := yaml.Unmarshal(raw, &fields); err != nil {
		return cfg, err
	}
	if _, ok := fields[key]; !ok && key != "metrics_addr" {
		return cfg, fmt.Errorf("unknown config key %q", key)
	}

	var parsed any
	if err := yaml.Unmarshal([]byte(value), &parsed); err != nil {
		return cfg, fmt.Errorf("parse value for %s: %w", key, err)
	}
	fields[key] = parsed

	raw, err = yaml.Marshal(fields)
	if err != nil {
		return cfg, err
	}
	var out config.Config
	if err := yaml.Unmarshal(raw, &out); err != nil {
		return cfg, fmt.Errorf("set %s: %w", key, err)
	}
	return out, out.Validate()
}
