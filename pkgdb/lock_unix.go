//go:build unix

package pkgdb

import (
	"os"

	"golang.org/x/sys/unix"
)

// dbLock holds the advisory flock taken on the lock file next to the
// database. It keeps concurrent bpkg processes from mutating the installed
// set underneath each other; bbolt's own file lock only covers the open
// database handle.
type dbLock struct {
	file *os.File
}

// Lock takes an exclusive advisory lock for the database. Returns
// ErrLocked when another process holds it.
func (d *DB) Lock() error {
	if d.lock != nil {
		return nil
	}
	f, err := os.OpenFile(d.path+".lock", os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return &DatabaseError{Op: "lock", Err: err}
	}
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		f.Close()
		if err == unix.EWOULDBLOCK {
			return ErrLocked
		}
		return &DatabaseError{Op: "lock", Err: err}
	}
	d.lock = &dbLock{file: f}
	return nil
}

// Unlock releases the advisory lock if held.
func (d *DB) Unlock() {
	if d.lock != nil {
		d.lock.release()
		d.lock = nil
	}
}

func (l *dbLock) release() {
	unix.Flock(int(l.file.Fd()), unix.LOCK_UN)
	l.file.Close()
}
