package main

import (
	"fmt"

	"github.com/jonathan/career-portal/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "career_portal",
	Short: "Career Portal HTTP API server",
	Long: `Career Portal runs the career assessment conversation, resolves interests
to curated role roadmaps and serves the student dashboard API.

Configuration comes from an optional YAML file (--config) and the environment.
Environment variables win over the file and flags win over both.`,
	SilenceUsage: true,
}

var (
	configPath string
	logJSON    bool
	logDebug   bool
)

// flagKeys maps config keys to the flags that override them.
var flagKeys = map[string]string{
	"log_json":  "json",
	"log_debug": "debug",
	"port":      "port",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "json", false, "Write logs as JSON")
	rootCmd.PersistentFlags().BoolVar(&logDebug, "debug", false, "Enable debug logging")
}

// loadConfig builds the viper instance for cmd and decodes the app config.
// The viper instance is returned so subsystems can read their own keys.
func loadConfig(cmd *cobra.Command) (*config.AppConfig, *viper.Viper, error) {
	v := config.NewViper()
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
		}
	}

	for key, name := range flagKeys {
		flag := cmd.Flags().Lookup(name)
		if flag == nil || !flag.Changed {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return nil, nil, fmt.Errorf("failed to bind --%s: %w", name, err)
		}
	}

	cfg, err := config.FromViper(v)
	if err != nil {
		return nil, nil, err
	}
	return cfg, v, nil
}
