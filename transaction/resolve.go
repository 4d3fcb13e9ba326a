package transaction

import (
	"errors"
	"strings"

	"bpkg/log"
	"bpkg/pkg"
)

// MaxDepth bounds the dependency recursion. Graphs deeper than this abort
// with ErrDepthExceeded.
const MaxDepth = 512

// Resolver walks the runtime dependencies of repository packages and fills
// a Transaction with the packages that must be installed, updated or
// configured. It is single-threaded; one ResolveDeps call owns its
// Transaction exclusively for the duration.
type Resolver struct {
	db   InstalledDB
	pool RepoPool
	log  log.LibraryLogger
}

// NewResolver creates a resolver over the given installed database and
// repository pool. A nil logger disables logging.
func NewResolver(db InstalledDB, pool RepoPool, logger log.LibraryLogger) *Resolver {
	if logger == nil {
		logger = log.NoOpLogger{}
	}
	return &Resolver{db: db, pool: pool, log: logger}
}

// ResolveDeps resolves the transitive runtime dependencies of the
// repository record r into t. For every reachable dependency pattern,
// either an installed or queued package satisfies it, a repository
// candidate is queued with an action tag, or the pattern lands in
// t.MissingDeps.
//
// On error the transaction is left partially mutated and must be
// discarded by the caller.
func (rs *Resolver) ResolveDeps(t *Transaction, r *pkg.Record) error {
	if r == nil || len(r.RunDepends) == 0 {
		return nil
	}
	rs.log.Debug("finding required dependencies for %s:", r.Pkgver)

	path := make([]string, 0, 8)
	if r.Pkgname != "" {
		path = append(path, r.Pkgname)
	}
	return rs.findDeps(t, r.RunDepends, r.Pkgver, 0, path)
}

// findDeps processes one run_depends list. For each pattern it runs four
// passes in order: installed check, already-queued check, repository pool
// lookup and post-lookup installed check, then recurses into the queued
// candidate's own dependencies.
func (rs *Resolver) findDeps(t *Transaction, rundeps []string, curpkg string, depth int, path []string) error {
	if depth >= MaxDepth {
		return &ResolveError{RequiredBy: curpkg, Err: ErrDepthExceeded}
	}
	indent := strings.Repeat(" ", depth)

	for _, reqpkg := range rundeps {
		var action pkg.Action
		var state pkg.State

		pkgname, err := pkg.PatternName(reqpkg)
		if err != nil {
			return &ResolveError{Pattern: reqpkg, RequiredBy: curpkg, Err: err}
		}
		rs.log.Debug("%s%s requires dependency '%s'", indent, curpkg, reqpkg)

		// Pass 1: check if the dependency is already installed, as a
		// real package first and as a virtual package second.
		instd, err := rs.db.FindPkg(pkgname)
		if err != nil {
			return &LookupError{Op: "installed", Name: pkgname, Err: err}
		}
		if instd == nil {
			instd, err = rs.db.FindVirtualPkg(pkgname)
			if err != nil {
				return &LookupError{Op: "installed virtual", Name: pkgname, Err: err}
			}
		}
		if instd == nil {
			rs.log.Debug("%s '%s' not installed", indent, reqpkg)
			action = pkg.ActionInstall
			state = pkg.StateNotInstalled
		} else {
			state = instd.State
			if pkg.MatchVirtual(instd, reqpkg) {
				rs.log.Debug("%s '%s' [virtual] satisfied by %s",
					indent, reqpkg, instd.Pkgver)
				continue
			}
			matched, err := pkg.MatchPattern(instd.Pkgver, reqpkg)
			if err != nil {
				return &ResolveError{Pattern: reqpkg, RequiredBy: curpkg, Err: err}
			}
			if matched {
				if state == pkg.StateUnpacked {
					// Matches the pattern but was only
					// unpacked, mark it to be configured.
					rs.log.Debug("%s '%s' satisfied by unpacked %s, must be configured",
						indent, reqpkg, instd.Pkgver)
					action = pkg.ActionConfigure
				} else {
					rs.log.Debug("%s '%s' satisfied by installed %s",
						indent, reqpkg, instd.Pkgver)
					continue
				}
			}
			// Installed but the version does not match the
			// pattern: fall through to the repository passes.
		}

		// Pass 2: check if something already queued in the
		// transaction satisfies the pattern.
		queued := findVirtualPkgInUnsorted(t, reqpkg)
		if queued == nil {
			queued = findPkgInUnsorted(t, reqpkg)
		}
		if queued != nil {
			rs.log.Debug("%s '%s' queued in transaction as %s",
				indent, reqpkg, queued.Pkgver)
			continue
		}

		// Pass 3: find a candidate in the repository pool. Without
		// one the pattern goes to the missing deps set.
		cand, err := rs.pool.FindVirtualPkg(reqpkg)
		if err != nil {
			return &LookupError{Op: "repository pool virtual", Name: reqpkg, Err: err}
		}
		if cand == nil {
			cand, err = rs.pool.FindPkg(reqpkg)
			if err != nil {
				return &LookupError{Op: "repository pool", Name: reqpkg, Err: err}
			}
		}
		if cand == nil {
			if instd != nil {
				rs.log.Debug("%s installed %s does not satisfy '%s'",
					indent, instd.Pkgver, reqpkg)
			}
			err := addMissingDep(t, reqpkg)
			if errors.Is(err, errAlreadyPresent) {
				rs.log.Debug("%s '%s' missing dep already recorded", indent, reqpkg)
				continue
			}
			if err != nil {
				return &ResolveError{Pattern: reqpkg, RequiredBy: curpkg, Err: err}
			}
			rs.log.Debug("%s '%s' added into the missing deps set", indent, reqpkg)
			continue
		}

		// Pass 4: the candidate may already be installed under
		// another version or as a virtual provider; its installed
		// state decides the action tag.
		candname, err := pkg.PkgverName(cand.Pkgver)
		if err != nil {
			return &ResolveError{Pattern: reqpkg, RequiredBy: curpkg, Err: err}
		}
		tmpd, err := rs.db.FindPkg(candname)
		if err != nil {
			return &LookupError{Op: "installed", Name: candname, Err: err}
		}
		if tmpd == nil {
			tmpd, err = rs.db.FindVirtualPkg(candname)
			if err != nil {
				return &LookupError{Op: "installed virtual", Name: candname, Err: err}
			}
		}
		if tmpd == nil {
			action = pkg.ActionInstall
		} else {
			state = tmpd.State
			switch tmpd.State {
			case pkg.StateInstalled:
				action = pkg.ActionUpdate
			case pkg.StateUnpacked:
				action = pkg.ActionInstall
			default:
				// Other states keep the tag from Pass 1.
				if action == "" {
					action = pkg.ActionInstall
				}
			}
		}

		cand.Transaction = action
		if err := storeDependency(t, cand, state); err != nil {
			if errors.Is(err, errAlreadyPresent) {
				rs.log.Warn("%s already queued, skipping %s", candname, cand.Pkgver)
				continue
			}
			return &ResolveError{Pattern: reqpkg, RequiredBy: curpkg, Err: err}
		}
		rs.log.Debug("%s%s: added into the transaction (%s)",
			indent, cand.Pkgver, cand.Repository)

		if len(cand.RunDepends) == 0 {
			continue
		}
		if pathContains(path, candname) {
			return &CycleError{Pkgname: candname, Path: append(path, candname)}
		}
		path = append(path, candname)
		err = rs.findDeps(t, cand.RunDepends, cand.Pkgver, depth+1, path)
		path = path[:len(path)-1]
		if err != nil {
			return err
		}
	}
	return nil
}

// InstallPkg looks up target (a package name or dependency pattern) in the
// repository pool, resolves its runtime dependencies into t and queues the
// target itself last, tagged install, update or configure depending on the
// installed state. Unlike dependencies, the target is not marked
// automatic-install.
func (rs *Resolver) InstallPkg(t *Transaction, target string) error {
	cand, err := rs.pool.FindPkg(target)
	if err != nil {
		return &LookupError{Op: "repository pool", Name: target, Err: err}
	}
	if cand == nil {
		cand, err = rs.pool.FindVirtualPkg(target)
		if err != nil {
			return &LookupError{Op: "repository pool virtual", Name: target, Err: err}
		}
	}
	if cand == nil {
		return &ResolveError{Pattern: target, Err: ErrPkgNotFound}
	}

	action := pkg.ActionInstall
	state := pkg.StateNotInstalled
	instd, err := rs.db.FindPkg(cand.Pkgname)
	if err != nil {
		return &LookupError{Op: "installed", Name: cand.Pkgname, Err: err}
	}
	if instd != nil {
		state = instd.State
		switch instd.State {
		case pkg.StateInstalled:
			if instd.Pkgver == cand.Pkgver {
				return &ResolveError{Pattern: target, Err: ErrAlreadyInstalled}
			}
			action = pkg.ActionUpdate
		case pkg.StateUnpacked:
			action = pkg.ActionConfigure
		}
	}

	if err := rs.ResolveDeps(t, cand); err != nil {
		return err
	}

	cand.Transaction = action
	if err := appendRecord(t, cand, state, false); err != nil {
		if errors.Is(err, errAlreadyPresent) {
			return nil
		}
		return err
	}
	rs.log.Info("%s queued for %s", cand.Pkgver, action)
	return nil
}

func pathContains(path []string, name string) bool {
	for _, p := range path {
		if p == name {
			return true
		}
	}
	return false
}
