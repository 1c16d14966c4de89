// Package cmd holds the root command and the shared config loader. Each
// subcommand lives in its own package and registers itself in init.
package cmd

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	wphmr "github.com/artkrsk/vite-plugin-wp-hmr"
	"github.com/artkrsk/vite-plugin-wp-hmr/wphmr-cli/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// ConfigName is the file looked up in the working directory.
const ConfigName = "wphmr"

var configFile string

var RootCmd = &cobra.Command{
	Use:   "wphmr",
	Short: "Bridge a Vite dev server into WordPress",
	Long: `wphmr writes a must-use style WordPress plugin that loads the Vite client
on development hosts while the dev server runs, and removes it afterwards.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// flagKeys maps persistent flags to config keys.
var flagKeys = map[string]string{
	"output-dir": "output_dir",
	"file-name":  "file_name",
	"origin":     "origin",
	"log-level":  "log_level",
}

// envKeys are bound explicitly so WPHMR_* works for keys without defaults.
var envKeys = []string{
	"output_dir", "file_name", "dev_patterns", "css_reload_events", "csp",
	"cache_ttl", "cleanup", "origin", "candidates", "log_level",
	"cache.type", "cache.redis_addr", "cache.redis_password", "cache.redis_db",
	"cache.redis_tls", "cache.redis_prefix",
}

func init() {
	flags := RootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file (default ./wphmr.yaml)")
	flags.String("output-dir", "", "directory the plugin is written to")
	flags.String("file-name", "", "plugin file name")
	flags.String("origin", "", "dev server origin, skips auto-detection")
	flags.String("log-level", "", "debug, info, warn or error")
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		logger.L.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}

// Quiet reports whether args ask for machine-readable stdout.
func Quiet(args []string) bool {
	return slices.Contains(args, "--stdout") || slices.Contains(args, "types") || slices.Contains(args, "version")
}

// LoadConfig reads file, env and flags into a fresh Config. It is safe to
// call again after the file changes.
func LoadConfig() (wphmr.Config, error) {
	var config wphmr.Config
	v := viper.New()

	defaults := wphmr.DefaultConfig()
	v.SetDefault("file_name", defaults.FileName)
	v.SetDefault("cache_ttl", defaults.CacheTTL)
	v.SetDefault("cleanup", defaults.Cleanup)
	v.SetDefault("candidates", defaults.Candidates)
	v.SetDefault("log_level", defaults.LogLevel)
	v.SetDefault("cache.type", "local")

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(ConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("WPHMR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return config, err
		}
	}
	for flag, key := range flagKeys {
		if f := RootCmd.PersistentFlags().Lookup(flag); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return config, err
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return config, fmt.Errorf("read config: %w", err)
		}
		logger.L.Debug().Msg("No config file found, using defaults")
	}

	if err := v.Unmarshal(&config); err != nil {
		return config, fmt.Errorf("decode config: %w", err)
	}
	csp, err := wphmr.ParseCSP(v.Get("csp"))
	if err != nil {
		return config, err
	}
	config.CSP = csp
	config.ConfigFile = v.ConfigFileUsed()

	logger.SetLevel(config.LogLevel)
	return config, nil
}
