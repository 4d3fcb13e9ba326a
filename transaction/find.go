package transaction

import "bpkg/pkg"

// findPkgInUnsorted returns the first queued record whose pkgver satisfies
// the dependency pattern, or nil.
func findPkgInUnsorted(t *Transaction, pattern string) *pkg.Record {
	for _, rec := range t.UnsortedDeps {
		ok, err := pkg.MatchPattern(rec.Pkgver, pattern)
		if err != nil {
			continue
		}
		if ok {
			return rec
		}
	}
	return nil
}

// findVirtualPkgInUnsorted returns the first queued record providing the
// pattern as a virtual package, or nil.
func findVirtualPkgInUnsorted(t *Transaction, pattern string) *pkg.Record {
	for _, rec := range t.UnsortedDeps {
		if pkg.MatchVirtual(rec, pattern) {
			return rec
		}
	}
	return nil
}
