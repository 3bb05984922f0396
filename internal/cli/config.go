// Config loading and the config command for the pantry CLI.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/pantry/internal/paths"
	"github.com/mesh-intelligence/pantry/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	envPrefix      = "PANTRY"

	cfgKeyBackend       = "backend"
	cfgKeyDataDir       = "data_dir"
	cfgKeySyncStrategy  = "sqlite.sync_strategy"
	cfgKeyBatchSize     = "sqlite.batch_size"
	cfgKeyBatchInterval = "sqlite.batch_interval"
	cfgKeyLogLevel      = "log_level"
	cfgKeyTimezone      = "timezone"
)

// envKeys are the settings PANTRY_* variables may override. data_dir is
// left to paths.ResolveDataDir so config.yaml keeps precedence over
// PANTRY_DATA_DIR.
var envKeys = []string{
	cfgKeyBackend,
	cfgKeySyncStrategy,
	cfgKeyBatchSize,
	cfgKeyBatchInterval,
	cfgKeyLogLevel,
	cfgKeyTimezone,
}

const configHeader = "# pantry configuration\n"

// configFile is the structure written to config.yaml.
type configFile struct {
	Backend  string             `yaml:"backend"`
	DataDir  string             `yaml:"data_dir,omitempty"`
	SQLite   types.SQLiteConfig `yaml:"sqlite"`
	LogLevel string             `yaml:"log_level,omitempty"`
	Timezone string             `yaml:"timezone,omitempty"`
}

// defaultConfigFile is written on first run.
func defaultConfigFile(dataDir string) configFile {
	return configFile{
		Backend: types.BackendSQLite,
		DataDir: dataDir,
		SQLite: types.SQLiteConfig{
			SyncStrategy:  types.SyncImmediate,
			BatchSize:     types.DefaultBatchSize,
			BatchInterval: types.DefaultBatchInterval,
		},
		LogLevel: "warn",
	}
}

// loadConfig reads config.yaml from configDir using Viper. It creates the
// directory and a default config.yaml on first run.
func loadConfig(configDir string) (*viper.Viper, error) {
	if err := ensureConfigDir(configDir); err != nil {
		return nil, dataError("ensure config dir", err)
	}
	if err := writeConfigIfMissing(paths.ConfigFile(configDir), ""); err != nil {
		return nil, dataError("ensure default config", err)
	}

	v := viper.New()
	v.SetDefault(cfgKeyBackend, types.BackendSQLite)
	v.SetDefault(cfgKeySyncStrategy, types.SyncImmediate)
	v.SetDefault(cfgKeyBatchSize, types.DefaultBatchSize)
	v.SetDefault(cfgKeyBatchInterval, types.DefaultBatchInterval)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, usageError(fmt.Errorf("read config: %w", err))
	}
	return v, nil
}

// ensureConfigDir creates the config directory if it does not exist.
func ensureConfigDir(configDir string) error {
	return os.MkdirAll(configDir, 0o755)
}

// writeConfigIfMissing creates config.yaml with default values if the file
// does not exist. An existing file is left alone.
func writeConfigIfMissing(path, dataDir string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}

	cfg := defaultConfigFile(dataDir)
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, append([]byte(configHeader), data...), 0o644)
}

// backendConfig assembles the Config passed to Attach.
func (a *app) backendConfig() (types.Config, error) {
	dataDir, err := paths.ResolveDataDir(a.flags.dataDir, a.v.GetString(cfgKeyDataDir))
	if err != nil {
		return types.Config{}, dataError("resolve data dir", err)
	}
	cfg := types.Config{
		Backend: a.v.GetString(cfgKeyBackend),
		DataDir: dataDir,
		SQLiteConfig: types.SQLiteConfig{
			SyncStrategy:  a.v.GetString(cfgKeySyncStrategy),
			BatchSize:     a.v.GetInt(cfgKeyBatchSize),
			BatchInterval: a.v.GetInt(cfgKeyBatchInterval),
		},
	}
	if err := cfg.Validate(); err != nil {
		return types.Config{}, usageError(fmt.Errorf("config %s: %w", paths.ConfigFile(a.configDir), err))
	}
	return cfg, nil
}

// effectiveConfig is what the config command prints.
type effectiveConfig struct {
	ConfigFile string             `json:"config_file" yaml:"config_file"`
	Backend    string             `json:"backend" yaml:"backend"`
	DataDir    string             `json:"data_dir" yaml:"data_dir"`
	SQLite     types.SQLiteConfig `json:"sqlite" yaml:"sqlite"`
	LogLevel   string             `json:"log_level" yaml:"log_level"`
	Timezone   string             `json:"timezone" yaml:"timezone"`
}

func (a *app) newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.backendConfig()
			if err != nil {
				return err
			}
			level := a.flags.logLevel
			if level == "" {
				level = a.v.GetString(cfgKeyLogLevel)
			}
			out := effectiveConfig{
				ConfigFile: paths.ConfigFile(a.configDir),
				Backend:    cfg.Backend,
				DataDir:    cfg.DataDir,
				SQLite:     cfg.SQLiteConfig,
				LogLevel:   level,
				Timezone:   a.location.String(),
			}

			if a.flags.jsonMode {
				return a.printJSON(out)
			}
			data, err := yaml.Marshal(&out)
			if err != nil {
				return fmt.Errorf("marshal config: %w", err)
			}
			_, err = a.stdout.Write(data)
			return err
		},
	}
}

// printJSON writes v as indented JSON.
func (a *app) printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(a.stdout, string(out))
	return err
}
