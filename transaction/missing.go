package transaction

import "bpkg/pkg"

// addMissingDep records a dependency pattern no candidate was found for.
// The missing deps set holds at most one entry per package name; when a
// second pattern for the same name arrives, the one with the greater
// version constraint survives. Exact duplicates and older constraints
// return errAlreadyPresent.
func addMissingDep(t *Transaction, reqpkg string) error {
	newname, err := pkg.PatternName(reqpkg)
	if err != nil {
		return err
	}
	newver, newhasver := pkg.PatternVersion(reqpkg)

	replace := -1
	for i, cur := range t.MissingDeps {
		curname, err := pkg.PatternName(cur)
		if err != nil {
			return err
		}
		if curname != newname {
			continue
		}
		curver, curhasver := pkg.PatternVersion(cur)
		// Bare-name patterns carry no version to merge on; dedup
		// them by name only.
		if !curhasver || !newhasver {
			return errAlreadyPresent
		}
		if curver == newver {
			return errAlreadyPresent
		}
		if pkg.CompareVersions(curver, newver) >= 0 {
			// Existing constraint is newer, keep it.
			return errAlreadyPresent
		}
		replace = i
		break
	}

	if replace >= 0 {
		t.MissingDeps = append(t.MissingDeps[:replace], t.MissingDeps[replace+1:]...)
	}
	t.MissingDeps = append(t.MissingDeps, reqpkg)
	return nil
}
