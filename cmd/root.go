// Package cmd implements the bpkg command line interface.
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"bpkg/config"
	"bpkg/log"
	"bpkg/pkgdb"
	"bpkg/repo"
	"bpkg/util"
)

var (
	flagConfigDir string
	flagDebug     bool
	flagYes       bool
)

var rootCmd = &cobra.Command{
	Use:           "bpkg",
	Short:         "Binary package manager",
	Long:          `bpkg resolves, installs and removes binary packages from configured repositories.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(flagConfigDir)
		if err != nil {
			return err
		}
		if flagDebug {
			cfg.Debug = true
		}
		if flagYes {
			cfg.Yes = true
		}
		config.SetConfig(cfg)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfigDir, "config", "C", "", "Config base directory")
	rootCmd.PersistentFlags().BoolVarP(&flagDebug, "debug", "d", false, "Debug verbosity")
	rootCmd.PersistentFlags().BoolVarP(&flagYes, "yes", "y", false, "Answer yes to all prompts")
}

// Execute runs the root command.
func Execute(version string) {
	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "bpkg: %v\n", err)
		os.Exit(1)
	}
}

// openDB opens the installed package database, creating its directory on
// first use.
func openDB(cfg *config.Config) (*pkgdb.DB, error) {
	if err := util.EnsureDir(filepath.Dir(cfg.DBPath)); err != nil {
		return nil, err
	}
	return pkgdb.Open(cfg.DBPath)
}

// loadPool loads the configured repositories.
func loadPool(cfg *config.Config) (*repo.Pool, error) {
	if len(cfg.Repositories) == 0 {
		return nil, fmt.Errorf("no repositories configured")
	}
	for _, uri := range cfg.Repositories {
		if !util.DirExists(uri) {
			return nil, fmt.Errorf("repository %s does not exist", uri)
		}
	}
	return repo.LoadPool(cfg.Repositories)
}

// newLogger returns the logger for a command run and a cleanup func. With
// --debug everything goes to the console (warnings and errors to stderr,
// the rest to stdout); otherwise to the transaction log.
func newLogger(cfg *config.Config) (log.LibraryLogger, func()) {
	if cfg.Debug {
		return log.StdoutLogger{}, func() {}
	}
	l, err := log.NewLogger(cfg.LogsPath, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: cannot open transaction log: %v\n", err)
		return log.NoOpLogger{}, func() {}
	}
	return l, l.Close
}
