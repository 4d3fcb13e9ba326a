package transaction

import "bpkg/pkg"

// RemovalDB extends InstalledDB with the queries removal planning needs.
type RemovalDB interface {
	InstalledDB

	// Revdeps returns the pkgvers of installed packages whose runtime
	// dependencies match the named package.
	Revdeps(name string) ([]string, error)

	// AllPkgs returns every installed package record.
	AllPkgs() ([]*pkg.Record, error)
}

// RemovePkg queues an installed package for removal. When other installed
// packages still depend on it, the call fails with a RevdepsError unless
// recursive is set, in which case the dependents are queued first so that,
// processed in queue order, they are removed before their dependency.
func RemovePkg(t *Transaction, db RemovalDB, name string, recursive bool) error {
	rec, err := db.FindPkg(name)
	if err != nil {
		return &LookupError{Op: "installed", Name: name, Err: err}
	}
	if rec == nil {
		return &ResolveError{Pattern: name, Err: ErrNotInstalled}
	}
	if queuedForRemoval(t, name) {
		return nil
	}

	revdeps, err := db.Revdeps(name)
	if err != nil {
		return &LookupError{Op: "revdeps", Name: name, Err: err}
	}
	pending := make([]string, 0, len(revdeps))
	for _, pkgver := range revdeps {
		rname, err := pkg.PkgverName(pkgver)
		if err != nil {
			return &ResolveError{Pattern: pkgver, Err: err}
		}
		if !queuedForRemoval(t, rname) {
			pending = append(pending, rname)
		}
	}
	if len(pending) > 0 && !recursive {
		return &RevdepsError{Pkgname: name, Revdeps: revdeps}
	}
	for _, rname := range pending {
		if err := RemovePkg(t, db, rname, true); err != nil {
			return err
		}
	}

	r := rec.Clone()
	r.Transaction = pkg.ActionRemove
	t.UnsortedDeps = append(t.UnsortedDeps, r)
	return nil
}

// AutoremovePkgs queues every orphan for removal: packages installed as
// dependencies that no remaining installed package requires. Orphan chains
// are drained by iterating until a pass queues nothing new.
func AutoremovePkgs(t *Transaction, db RemovalDB) error {
	all, err := db.AllPkgs()
	if err != nil {
		return &LookupError{Op: "installed", Name: "*", Err: err}
	}

	for changed := true; changed; {
		changed = false
		for _, rec := range all {
			if !rec.AutomaticInstall || queuedForRemoval(t, rec.Pkgname) {
				continue
			}
			revdeps, err := db.Revdeps(rec.Pkgname)
			if err != nil {
				return &LookupError{Op: "revdeps", Name: rec.Pkgname, Err: err}
			}
			orphan := true
			for _, pkgver := range revdeps {
				rname, err := pkg.PkgverName(pkgver)
				if err != nil {
					return &ResolveError{Pattern: pkgver, Err: err}
				}
				if !queuedForRemoval(t, rname) {
					orphan = false
					break
				}
			}
			if !orphan {
				continue
			}
			r := rec.Clone()
			r.Transaction = pkg.ActionRemove
			t.UnsortedDeps = append(t.UnsortedDeps, r)
			changed = true
		}
	}
	return nil
}

func queuedForRemoval(t *Transaction, name string) bool {
	for _, rec := range t.UnsortedDeps {
		if rec.Pkgname == name && rec.Transaction == pkg.ActionRemove {
			return true
		}
	}
	return false
}
