package repo

import "bpkg/pkg"

// Pool is the ordered set of configured repositories. Lookups walk the
// repositories in configuration order; the pool hands out clones so that
// resolver mutations never touch the underlying indexes.
type Pool struct {
	repos []*Repository
}

// NewPool creates a pool over the given repositories.
func NewPool(repos ...*Repository) *Pool {
	return &Pool{repos: repos}
}

// LoadPool loads the repositories at the given URIs into a pool.
func LoadPool(uris []string) (*Pool, error) {
	pool := &Pool{repos: make([]*Repository, 0, len(uris))}
	for _, uri := range uris {
		r, err := LoadRepository(uri)
		if err != nil {
			return nil, err
		}
		pool.repos = append(pool.repos, r)
	}
	return pool, nil
}

// Repositories returns the number of repositories in the pool.
func (p *Pool) Repositories() int {
	return len(p.repos)
}

// FindPkg returns the best real package candidate for the dependency
// pattern across all repositories: the greatest matching version, with the
// earlier repository winning ties. Clean not-found is (nil, nil).
func (p *Pool) FindPkg(pattern string) (*pkg.Record, error) {
	var best *pkg.Record
	for _, r := range p.repos {
		rec, err := r.findPkg(pattern)
		if err != nil {
			return nil, err
		}
		if rec == nil {
			continue
		}
		if best == nil || pkg.CompareVersions(rec.Version, best.Version) > 0 {
			best = rec
		}
	}
	return best.Clone(), nil
}

// FindVirtualPkg returns the first candidate across all repositories that
// provides the pattern as a virtual package. First match wins; there is no
// conflict detection between alternative providers.
func (p *Pool) FindVirtualPkg(pattern string) (*pkg.Record, error) {
	for _, r := range p.repos {
		if rec := r.findVirtualPkg(pattern); rec != nil {
			return rec.Clone(), nil
		}
	}
	return nil, nil
}
