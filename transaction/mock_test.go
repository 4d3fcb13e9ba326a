package transaction

import (
	"sort"

	"bpkg/pkg"
)

// fakeDB is an in-memory InstalledDB/RemovalDB for resolver tests.
type fakeDB struct {
	pkgs map[string]*pkg.Record // keyed by pkgname
	err  error                  // forced lookup failure
}

func newFakeDB(recs ...*pkg.Record) *fakeDB {
	db := &fakeDB{pkgs: make(map[string]*pkg.Record)}
	for _, rec := range recs {
		db.pkgs[rec.Pkgname] = rec
	}
	return db
}

func (f *fakeDB) FindPkg(name string) (*pkg.Record, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.pkgs[name], nil
}

func (f *fakeDB) FindVirtualPkg(name string) (*pkg.Record, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, rec := range f.sorted() {
		for _, provides := range rec.Provides {
			vname, err := pkg.PkgverName(provides)
			if err != nil {
				continue
			}
			if vname == name {
				return rec, nil
			}
		}
	}
	return nil, nil
}

func (f *fakeDB) Revdeps(name string) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	target := f.pkgs[name]
	var revdeps []string
	for _, rec := range f.sorted() {
		if rec.Pkgname == name {
			continue
		}
		for _, pattern := range rec.RunDepends {
			depname, err := pkg.PatternName(pattern)
			if err != nil {
				continue
			}
			if depname == name || (target != nil && pkg.MatchVirtual(target, pattern)) {
				revdeps = append(revdeps, rec.Pkgver)
				break
			}
		}
	}
	return revdeps, nil
}

func (f *fakeDB) AllPkgs() ([]*pkg.Record, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.sorted(), nil
}

func (f *fakeDB) sorted() []*pkg.Record {
	names := make([]string, 0, len(f.pkgs))
	for name := range f.pkgs {
		names = append(names, name)
	}
	sort.Strings(names)
	recs := make([]*pkg.Record, 0, len(names))
	for _, name := range names {
		recs = append(recs, f.pkgs[name])
	}
	return recs
}

// fakePool is an in-memory RepoPool. Like the real pool it hands out
// clones so resolver mutations never touch the index.
type fakePool struct {
	recs []*pkg.Record
	err  error
}

func newFakePool(recs ...*pkg.Record) *fakePool {
	return &fakePool{recs: recs}
}

func (f *fakePool) FindPkg(pattern string) (*pkg.Record, error) {
	if f.err != nil {
		return nil, f.err
	}
	var best *pkg.Record
	for _, rec := range f.recs {
		ok, err := pkg.MatchPattern(rec.Pkgver, pattern)
		if err != nil || !ok {
			continue
		}
		if best == nil || pkg.CompareVersions(rec.Version, best.Version) > 0 {
			best = rec
		}
	}
	return best.Clone(), nil
}

func (f *fakePool) FindVirtualPkg(pattern string) (*pkg.Record, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, rec := range f.recs {
		if pkg.MatchVirtual(rec, pattern) {
			return rec.Clone(), nil
		}
	}
	return nil, nil
}
