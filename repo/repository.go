// Package repo implements the repository pool: per-repository package
// indexes and best-candidate lookup by dependency pattern.
package repo

import (
	"encoding/json"
	"os"
	"path/filepath"

	"bpkg/pkg"
)

// IndexFile is the package index filename inside a repository directory.
const IndexFile = "index.json"

// Repository is one package repository with its index loaded in memory.
type Repository struct {
	// URI is the repository locator, stamped into every record handed out
	URI string

	records []*pkg.Record
	byName  map[string][]*pkg.Record
}

// LoadRepository reads the index of the repository rooted at uri (a local
// directory for now) into memory.
func LoadRepository(uri string) (*Repository, error) {
	data, err := os.ReadFile(filepath.Join(uri, IndexFile))
	if err != nil {
		return nil, &IndexError{URI: uri, Err: err}
	}
	var records []*pkg.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, &IndexError{URI: uri, Err: ErrCorruptedIndex}
	}
	return NewRepository(uri, records)
}

// NewRepository builds a repository from records already in memory. Records
// missing Pkgname or Version are completed from Pkgver; malformed records
// are rejected.
func NewRepository(uri string, records []*pkg.Record) (*Repository, error) {
	r := &Repository{
		URI:     uri,
		records: records,
		byName:  make(map[string][]*pkg.Record, len(records)),
	}
	for _, rec := range records {
		if rec.Pkgname == "" {
			name, err := pkg.PkgverName(rec.Pkgver)
			if err != nil {
				return nil, &IndexError{URI: uri, Err: err}
			}
			rec.Pkgname = name
		}
		if rec.Version == "" {
			version, err := pkg.PkgverVersion(rec.Pkgver)
			if err != nil {
				return nil, &IndexError{URI: uri, Err: err}
			}
			rec.Version = version
		}
		rec.Repository = uri
		r.byName[rec.Pkgname] = append(r.byName[rec.Pkgname], rec)
	}
	return r, nil
}

// findPkg returns the best (greatest version) record matching the pattern,
// or nil.
func (r *Repository) findPkg(pattern string) (*pkg.Record, error) {
	name, err := pkg.PatternName(pattern)
	if err != nil {
		return nil, err
	}
	candidates := r.byName[name]
	if candidates == nil {
		// A bare target may be a full pkgver ("zsh-5.9").
		if pname, err := pkg.PkgverName(pattern); err == nil {
			candidates = r.byName[pname]
		}
	}
	var best *pkg.Record
	for _, rec := range candidates {
		ok, err := pkg.MatchPattern(rec.Pkgver, pattern)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if best == nil || pkg.CompareVersions(rec.Version, best.Version) > 0 {
			best = rec
		}
	}
	return best, nil
}

// findVirtualPkg returns the first record providing the pattern as a
// virtual package, or nil.
func (r *Repository) findVirtualPkg(pattern string) *pkg.Record {
	for _, rec := range r.records {
		if pkg.MatchVirtual(rec, pattern) {
			return rec
		}
	}
	return nil
}
