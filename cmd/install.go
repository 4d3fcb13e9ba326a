package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"bpkg/config"
	"bpkg/log"
	"bpkg/pkg"
	"bpkg/transaction"
	"bpkg/util"
)

var installDryRun bool

var installCmd = &cobra.Command{
	Use:   "install [pkgs...]",
	Short: "Resolve and queue packages for installation",
	Long: `Resolve the runtime dependencies of the given packages against the
installed database and the repository pool, and print the resulting
transaction plan.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runInstall,
}

func init() {
	rootCmd.AddCommand(installCmd)
	installCmd.Flags().BoolVarP(&installDryRun, "dry-run", "n", false,
		"Resolve and print the plan without taking the database lock")
}

func runInstall(cmd *cobra.Command, args []string) error {
	cfg := config.GetConfig()
	start := time.Now()

	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if !installDryRun {
		if err := db.Lock(); err != nil {
			return err
		}
		defer db.Unlock()
	}

	pool, err := loadPool(cfg)
	if err != nil {
		return err
	}
	logger, closeLogger := newLogger(cfg)
	defer closeLogger()

	tr := transaction.New()
	rs := transaction.NewResolver(db, pool, logger)

	done := make([]string, 0, len(args))
	for _, target := range args {
		if util.Contains(done, target) {
			continue
		}
		done = append(done, target)
		err := rs.InstallPkg(tr, target)
		if errors.Is(err, transaction.ErrAlreadyInstalled) {
			fmt.Printf("%s is already installed.\n", target)
			continue
		}
		if err != nil {
			return err
		}
	}

	sorted, err := transaction.SortDeps(tr)
	if err != nil {
		return err
	}

	printPlan(sorted)
	if l, ok := logger.(*log.Logger); ok {
		l.WriteSummary(tr.ID, len(tr.UnsortedDeps), len(tr.MissingDeps), time.Since(start))
	}

	if len(tr.MissingDeps) > 0 {
		fmt.Println("\nUnresolved dependencies:")
		for _, pattern := range tr.MissingDeps {
			fmt.Printf("  %s\n", pattern)
		}
		return fmt.Errorf("%d unresolved dependencies", len(tr.MissingDeps))
	}
	return nil
}

func printPlan(records []*pkg.Record) {
	if len(records) == 0 {
		fmt.Println("Nothing to do.")
		return
	}

	fmt.Printf("%d package(s) will be processed:\n\n", len(records))
	var total int64
	for _, rec := range records {
		origin := rec.Repository
		if origin == "" {
			origin = "installed"
		}
		fmt.Printf("  %-10s %-30s %s\n", rec.Transaction, rec.Pkgver, origin)
		total += rec.SizeBytes
	}
	if total > 0 {
		fmt.Printf("\nTotal installed size: %s\n", util.FormatBytes(total))
	}
}
