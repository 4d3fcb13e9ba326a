package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"bpkg/config"
)

var queryRevdeps bool

var queryCmd = &cobra.Command{
	Use:   "query [name]",
	Short: "List installed packages",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().BoolVarP(&queryRevdeps, "revdeps", "R", false,
		"Show installed packages depending on the given package")
}

func runQuery(cmd *cobra.Command, args []string) error {
	cfg := config.GetConfig()

	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if queryRevdeps {
		if len(args) != 1 {
			return fmt.Errorf("--revdeps requires a package name")
		}
		revdeps, err := db.Revdeps(args[0])
		if err != nil {
			return err
		}
		for _, pkgver := range revdeps {
			fmt.Println(pkgver)
		}
		return nil
	}

	all, err := db.AllPkgs()
	if err != nil {
		return err
	}
	for _, rec := range all {
		if len(args) == 1 && rec.Pkgname != args[0] {
			continue
		}
		auto := ""
		if rec.AutomaticInstall {
			auto = " (automatic)"
		}
		fmt.Printf("%-30s %s%s\n", rec.Pkgver, rec.State, auto)
	}
	return nil
}
