package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"bpkg/config"
	"bpkg/util"
)

var showCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show details of an installed or repository package",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	cfg := config.GetConfig()
	name := args[0]

	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	rec, err := db.FindPkg(name)
	if err != nil {
		return err
	}
	if rec == nil {
		// Not installed; try the repository pool.
		pool, err := loadPool(cfg)
		if err != nil {
			return err
		}
		rec, err = pool.FindPkg(name)
		if err != nil {
			return err
		}
	}
	if rec == nil {
		return fmt.Errorf("package %q not found", name)
	}

	fmt.Printf("pkgname:     %s\n", rec.Pkgname)
	fmt.Printf("pkgver:      %s\n", rec.Pkgver)
	if rec.ShortDesc != "" {
		fmt.Printf("description: %s\n", rec.ShortDesc)
	}
	if rec.State != "" {
		fmt.Printf("state:       %s\n", rec.State)
	}
	if rec.Repository != "" {
		fmt.Printf("repository:  %s\n", rec.Repository)
	}
	if rec.SizeBytes > 0 {
		fmt.Printf("size:        %s\n", util.FormatBytes(rec.SizeBytes))
	}
	if len(rec.RunDepends) > 0 {
		fmt.Printf("run_depends: %s\n", strings.Join(rec.RunDepends, " "))
	}
	if len(rec.Provides) > 0 {
		fmt.Printf("provides:    %s\n", strings.Join(rec.Provides, " "))
	}
	fmt.Printf("automatic:   %v\n", rec.AutomaticInstall)
	return nil
}
