// Package pkgdb provides the installed package database using bbolt for
// persistent storage of package records and the virtual package alias map.
package pkgdb

import (
	"encoding/json"

	bolt "go.etcd.io/bbolt"

	"bpkg/pkg"
)

// Bucket names for the bbolt database
const (
	BucketPackages = "packages"
	BucketVirtual  = "virtual"
)

// DB wraps a bbolt database holding the installed package set. The
// packages bucket maps pkgname to the record JSON; the virtual bucket maps
// each provided virtual name to the pkgname of its provider and is kept in
// sync on Put and Remove.
type DB struct {
	db   *bolt.DB
	path string
	lock *dbLock
}

// Open opens or creates the package database at the given path and
// initializes the required buckets. The database file is created with
// 0600 permissions.
//
// Example:
//
//	db, err := pkgdb.Open("/var/db/bpkg/pkgdb.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
func Open(path string) (*DB, error) {
	bdb, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, &DatabaseError{Op: "open", Err: err}
	}

	err = bdb.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(BucketPackages)); err != nil {
			return &DatabaseError{Op: "create bucket", Bucket: BucketPackages, Err: err}
		}
		if _, err := tx.CreateBucketIfNotExists([]byte(BucketVirtual)); err != nil {
			return &DatabaseError{Op: "create bucket", Bucket: BucketVirtual, Err: err}
		}
		return nil
	})
	if err != nil {
		bdb.Close()
		return nil, err
	}

	return &DB{db: bdb, path: path}, nil
}

// Close releases the advisory lock if held and closes the database.
// Safe to call multiple times.
func (d *DB) Close() error {
	if d.lock != nil {
		d.lock.release()
		d.lock = nil
	}
	if d.db == nil {
		return nil
	}
	err := d.db.Close()
	d.db = nil
	return err
}

// FindPkg returns the installed package with the given name, or (nil, nil)
// when it is not installed.
func (d *DB) FindPkg(name string) (*pkg.Record, error) {
	if name == "" {
		return nil, &ValidationError{Field: "name", Err: ErrEmptyPkgname}
	}
	var rec *pkg.Record
	err := d.view(func(tx *bolt.Tx) error {
		data := tx.Bucket([]byte(BucketPackages)).Get([]byte(name))
		if data == nil {
			return nil
		}
		r := &pkg.Record{}
		if err := json.Unmarshal(data, r); err != nil {
			return &RecordError{Op: "unmarshal", Pkgname: name, Err: ErrCorruptedData}
		}
		rec = r
		return nil
	})
	return rec, err
}

// FindVirtualPkg returns the installed package providing the given virtual
// package name, or (nil, nil) when nothing provides it.
func (d *DB) FindVirtualPkg(name string) (*pkg.Record, error) {
	if name == "" {
		return nil, &ValidationError{Field: "name", Err: ErrEmptyPkgname}
	}
	var provider string
	err := d.view(func(tx *bolt.Tx) error {
		if data := tx.Bucket([]byte(BucketVirtual)).Get([]byte(name)); data != nil {
			provider = string(data)
		}
		return nil
	})
	if err != nil || provider == "" {
		return nil, err
	}
	return d.FindPkg(provider)
}

// Put stores an installed package record, replacing any previous record
// under the same pkgname and registering its provided virtual names.
func (d *DB) Put(rec *pkg.Record) error {
	if rec == nil || rec.Pkgname == "" {
		return &ValidationError{Field: "record.Pkgname", Err: ErrEmptyPkgname}
	}
	if !rec.State.Valid() {
		return &ValidationError{Field: "record.State", Err: ErrInvalidState}
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return &RecordError{Op: "marshal", Pkgname: rec.Pkgname, Err: err}
	}
	return d.update(func(tx *bolt.Tx) error {
		if err := tx.Bucket([]byte(BucketPackages)).Put([]byte(rec.Pkgname), data); err != nil {
			return &RecordError{Op: "put", Pkgname: rec.Pkgname, Err: err}
		}
		virtual := tx.Bucket([]byte(BucketVirtual))
		for _, provides := range rec.Provides {
			vname, err := pkg.PkgverName(provides)
			if err != nil {
				vname = provides
			}
			if err := virtual.Put([]byte(vname), []byte(rec.Pkgname)); err != nil {
				return &RecordError{Op: "put virtual", Pkgname: rec.Pkgname, Err: err}
			}
		}
		return nil
	})
}

// Remove deletes an installed package record and any virtual names it
// provided. Removing an absent package returns ErrRecordNotFound.
func (d *DB) Remove(name string) error {
	if name == "" {
		return &ValidationError{Field: "name", Err: ErrEmptyPkgname}
	}
	return d.update(func(tx *bolt.Tx) error {
		packages := tx.Bucket([]byte(BucketPackages))
		if packages.Get([]byte(name)) == nil {
			return &RecordError{Op: "remove", Pkgname: name, Err: ErrRecordNotFound}
		}
		if err := packages.Delete([]byte(name)); err != nil {
			return &RecordError{Op: "remove", Pkgname: name, Err: err}
		}
		virtual := tx.Bucket([]byte(BucketVirtual))
		cur := virtual.Cursor()
		for k, v := cur.First(); k != nil; k, v = cur.Next() {
			if string(v) == name {
				if err := cur.Delete(); err != nil {
					return &RecordError{Op: "remove virtual", Pkgname: name, Err: err}
				}
			}
		}
		return nil
	})
}

// SetState updates the lifecycle state of an installed package record.
func (d *DB) SetState(name string, state pkg.State) error {
	rec, err := d.FindPkg(name)
	if err != nil {
		return err
	}
	if rec == nil {
		return &RecordError{Op: "set state", Pkgname: name, Err: ErrRecordNotFound}
	}
	rec.State = state
	return d.Put(rec)
}

// AllPkgs returns every installed package record in pkgname order.
func (d *DB) AllPkgs() ([]*pkg.Record, error) {
	var recs []*pkg.Record
	err := d.view(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(BucketPackages)).ForEach(func(k, v []byte) error {
			rec := &pkg.Record{}
			if err := json.Unmarshal(v, rec); err != nil {
				return &RecordError{Op: "unmarshal", Pkgname: string(k), Err: ErrCorruptedData}
			}
			recs = append(recs, rec)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return recs, nil
}

// Revdeps returns the pkgvers of installed packages whose runtime
// dependencies match the named package, either directly or through a
// virtual name it provides.
func (d *DB) Revdeps(name string) ([]string, error) {
	target, err := d.FindPkg(name)
	if err != nil {
		return nil, err
	}
	all, err := d.AllPkgs()
	if err != nil {
		return nil, err
	}
	var revdeps []string
	for _, rec := range all {
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

func (d *DB) view(fn func(tx *bolt.Tx) error) error {
	if d.db == nil {
		return ErrDatabaseNotOpen
	}
	return d.db.View(fn)
}

func (d *DB) update(fn func(tx *bolt.Tx) error) error {
	if d.db == nil {
		return ErrDatabaseNotOpen
	}
	return d.db.Update(fn)
}
