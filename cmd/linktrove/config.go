// Config loading for the linktrove CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/linktrove/linktrove/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	// Config keys.
	cfgKeyBackend      = "backend"
	cfgKeyDataDir      = "data_dir"
	cfgKeySyncRemote   = "sync.remote_url"
	cfgKeySyncToken    = "sync.token"
	cfgKeySyncAuto     = "sync.auto"
	cfgKeySyncDebounce = "sync.debounce"
)

// loadedConfig is the parsed config.yaml, set by PersistentPreRunE.
var loadedConfig *viper.Viper

// defaultConfigYAML is written to config.yaml on first run.
const defaultConfigYAML = `# Linktrove CLI configuration

# Backend selection
backend: sqlite

# Data directory (optional; overridable by --data-dir flag)
# data_dir:

# Background backup to a snapshot server (optional)
# sync:
#   remote_url: https://backup.example.com
#   token: <device token>
#   auto: true
#   debounce: 2s
`

// loadConfig reads config.yaml from the resolved config directory using
// Viper. It creates the config directory and a default config.yaml on
// first run. A missing config.yaml is not an error.
func loadConfig(configDir string) (*viper.Viper, error) {
	if err := ensureConfigDir(configDir); err != nil {
		return nil, fmt.Errorf("ensure config dir: %w", err)
	}

	if err := ensureDefaultConfigFile(configDir); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	v.SetDefault(cfgKeyBackend, types.BackendSQLite)
	v.SetDefault(cfgKeySyncDebounce, "2s")
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	return v, nil
}

// buildStoreConfig assembles the store Config from flags and config.yaml.
func buildStoreConfig() (types.Config, error) {
	dataDir, err := resolveDataDir()
	if err != nil {
		return types.Config{}, fmt.Errorf("resolve data dir: %w", err)
	}

	cfg := types.Config{
		Backend: loadedConfig.GetString(cfgKeyBackend),
		DataDir: dataDir,
	}
	cfg.Sync = types.SyncConfig{
		RemoteURL: loadedConfig.GetString(cfgKeySyncRemote),
		Token:     loadedConfig.GetString(cfgKeySyncToken),
		Auto:      loadedConfig.GetBool(cfgKeySyncAuto),
	}
	if raw := loadedConfig.GetString(cfgKeySyncDebounce); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return types.Config{}, fmt.Errorf("parse sync.debounce: %w", err)
		}
		cfg.Sync.Debounce = d
	}
	return cfg, nil
}

// ensureConfigDir creates the config directory if it does not exist.
func ensureConfigDir(configDir string) error {
	return os.MkdirAll(configDir, 0o755)
}

// ensureDefaultConfigFile creates a default config.yaml if the file does
// not exist in the config directory.
func ensureDefaultConfigFile(configDir string) error {
	path := filepath.Join(configDir, configFileExt)

	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}

	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}
