package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/pantry/internal/paths"
	"github.com/mesh-intelligence/pantry/pkg/types"
)

func (a *app) newInitCmd() *cobra.Command {
	var global bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize pantry storage",
		Long: `Create the configuration directory with a default config.yaml and
initialize the data directory. With --global the data directory is pinned to
the per-user data location instead of $(CWD)/.pantry-db.`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath := paths.ConfigFile(a.configDir)

			// setup already wrote a default config.yaml; pin data_dir only
			// when asked and when the file does not name one yet.
			if global && a.v.GetString(cfgKeyDataDir) == "" {
				dataDir, err := paths.DefaultDataDir()
				if err != nil {
					return dataError("resolve default data dir", err)
				}
				if err := pinDataDir(a, configPath, dataDir); err != nil {
					return err
				}
			}

			err := a.withItems(func(types.ItemRepository) error { return nil })
			if err != nil {
				return err
			}
			cfg, err := a.backendConfig()
			if err != nil {
				return err
			}

			if a.flags.jsonMode {
				return a.printJSON(map[string]string{
					"config_file": configPath,
					"data_dir":    cfg.DataDir,
				})
			}
			fmt.Fprintln(a.stdout, "Pantry initialized successfully")
			fmt.Fprintln(a.stdout, "  config:", configPath)
			fmt.Fprintln(a.stdout, "  data:  ", cfg.DataDir)
			return nil
		},
	}
	cmd.Flags().BoolVar(&global, "global", false, "store items in the per-user data directory")
	return cmd
}

// pinDataDir records dataDir in config.yaml and in the loaded settings.
// Other keys in the file are preserved.
func pinDataDir(a *app, configPath, dataDir string) error {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return dataError("read config", err)
	}
	var cfg configFile
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return usageError(fmt.Errorf("parse %s: %w", configPath, err))
	}
	cfg.DataDir = dataDir

	out, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(configPath, append([]byte(configHeader), out...), 0o644); err != nil {
		return dataError("write config", err)
	}
	a.v.Set(cfgKeyDataDir, dataDir)
	return nil
}
