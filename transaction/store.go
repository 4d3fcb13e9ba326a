package transaction

import "bpkg/pkg"

// storeDependency queues a resolved repository candidate. The record's
// state is overwritten with the pre-transaction state of its pkgname on
// disk so downstream consumers see what the executor will find, and the
// record is flagged automatic-install.
func storeDependency(t *Transaction, rec *pkg.Record, installedState pkg.State) error {
	return appendRecord(t, rec, installedState, true)
}

// appendRecord appends rec to the unsorted transaction set. UnsortedDeps is
// keyed by pkgname; a second record with an already queued name is rejected
// with errAlreadyPresent.
func appendRecord(t *Transaction, rec *pkg.Record, installedState pkg.State, automatic bool) error {
	for _, queued := range t.UnsortedDeps {
		if queued.Pkgname == rec.Pkgname {
			return errAlreadyPresent
		}
	}
	rec.State = installedState
	rec.AutomaticInstall = automatic
	t.UnsortedDeps = append(t.UnsortedDeps, rec)
	return nil
}
