package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"bpkg/config"
	"bpkg/transaction"
	"bpkg/util"
)

var (
	removeRecursive bool
	removeOrphans   bool
)

var removeCmd = &cobra.Command{
	Use:   "remove [pkgs...]",
	Short: "Queue installed packages for removal",
	Long: `Queue the given installed packages for removal. Packages still
required by other installed packages are refused unless --recursive is
given, in which case their dependents are queued first.`,
	RunE: runRemove,
}

func init() {
	rootCmd.AddCommand(removeCmd)
	removeCmd.Flags().BoolVarP(&removeRecursive, "recursive", "R", false,
		"Also remove packages depending on the targets")
	removeCmd.Flags().BoolVarP(&removeOrphans, "autoremove", "o", false,
		"Also remove orphans: automatically installed packages nothing depends on")
}

func runRemove(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && !removeOrphans {
		return fmt.Errorf("no packages specified")
	}
	cfg := config.GetConfig()

	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Lock(); err != nil {
		return err
	}
	defer db.Unlock()

	tr := transaction.New()
	for _, name := range args {
		err := transaction.RemovePkg(tr, db, name, removeRecursive)
		var revErr *transaction.RevdepsError
		if errors.As(err, &revErr) {
			fmt.Printf("%s is required by:\n", revErr.Pkgname)
			for _, pkgver := range revErr.Revdeps {
				fmt.Printf("  %s\n", pkgver)
			}
			return err
		}
		if err != nil {
			return err
		}
	}
	if removeOrphans {
		if err := transaction.AutoremovePkgs(tr, db); err != nil {
			return err
		}
	}

	if len(tr.UnsortedDeps) == 0 {
		fmt.Println("Nothing to do.")
		return nil
	}
	// Dependents were queued before their dependencies; keep that order.
	fmt.Printf("%d package(s) will be removed:\n\n", len(tr.UnsortedDeps))
	for _, rec := range tr.UnsortedDeps {
		fmt.Printf("  %s\n", rec.Pkgver)
	}

	if !cfg.Yes && !util.AskYN("Continue?", false) {
		return nil
	}
	for _, rec := range tr.UnsortedDeps {
		if err := db.Remove(rec.Pkgname); err != nil {
			return err
		}
		fmt.Printf("Removed %s.\n", rec.Pkgver)
	}
	return nil
}
