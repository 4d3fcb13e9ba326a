// Package config loads bpkg configuration from an ini file with sane
// defaults when none exists.
package config

import (
	"fmt"
	"path/filepath"

	"gopkg.in/ini.v1"

	"bpkg/util"
)

// Config holds bpkg configuration
type Config struct {
	// RootDir is the target filesystem root packages are installed into
	RootDir string

	// DBPath is the installed package database file
	DBPath string

	// CachePath is where downloaded packages are cached
	CachePath string

	// LogsPath is where transaction logs are written
	LogsPath string

	// Repositories are the configured repository locations, in priority
	// order
	Repositories []string

	Debug bool
	Yes   bool
}

var globalConfig *Config

// GetConfig returns the global configuration
func GetConfig() *Config {
	return globalConfig
}

// SetConfig sets the global configuration
func SetConfig(cfg *Config) {
	globalConfig = cfg
}

// LoadConfig loads configuration from bpkg.ini under configDir (default
// /etc/bpkg). A missing config file is not an error; defaults apply.
func LoadConfig(configDir string) (*Config, error) {
	cfg := &Config{
		RootDir: "/",
	}

	configFile := "/etc/bpkg/bpkg.ini"
	if configDir != "" {
		configFile = filepath.Join(configDir, "bpkg.ini")
	}

	if util.FileExists(configFile) {
		iniFile, err := ini.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}

		global := iniFile.Section("global")
		if key := global.Key("rootdir"); key.String() != "" {
			cfg.RootDir = key.String()
		}
		if key := global.Key("dbpath"); key.String() != "" {
			cfg.DBPath = key.String()
		}
		if key := global.Key("cachedir"); key.String() != "" {
			cfg.CachePath = key.String()
		}
		if key := global.Key("logsdir"); key.String() != "" {
			cfg.LogsPath = key.String()
		}
		cfg.Debug = global.Key("debug").MustBool(false)

		// One repository per key under [repositories], in file order.
		repos := iniFile.Section("repositories")
		for _, key := range repos.Keys() {
			if key.String() != "" {
				cfg.Repositories = append(cfg.Repositories, key.String())
			}
		}
	}

	cfg.applyDefaults()
	return cfg, nil
}

// applyDefaults fills unset paths relative to RootDir.
func (cfg *Config) applyDefaults() {
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(cfg.RootDir, "var/db/bpkg/pkgdb.db")
	}
	if cfg.CachePath == "" {
		cfg.CachePath = filepath.Join(cfg.RootDir, "var/cache/bpkg")
	}
	if cfg.LogsPath == "" {
		cfg.LogsPath = filepath.Join(cfg.RootDir, "var/log/bpkg")
	}
}
