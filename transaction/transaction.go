// Package transaction implements the dependency resolution core of bpkg:
// given a repository package record it computes the transitive set of
// packages that must be installed, updated or configured so that every
// runtime dependency of the target is satisfied, accumulating the result
// in a Transaction.
package transaction

import (
	"github.com/google/uuid"

	"bpkg/pkg"
)

// Transaction is the pending package transaction. UnsortedDeps holds the
// queued package records in depth-first pre-order of the dependency forest;
// MissingDeps holds dependency patterns no candidate was found for, at most
// one entry per package name.
//
// A Transaction is owned by its caller and must not be shared between
// concurrent resolver invocations. After a resolver call fails, the
// transaction is in an indeterminate state and must be discarded.
type Transaction struct {
	ID           string
	UnsortedDeps []*pkg.Record
	MissingDeps  []string
}

// New creates an empty transaction.
func New() *Transaction {
	return &Transaction{
		ID:           uuid.NewString(),
		UnsortedDeps: make([]*pkg.Record, 0),
		MissingDeps:  make([]string, 0),
	}
}

// InstalledDB is the view of the installed package database the resolver
// needs. A clean not-found is (nil, nil); an error return always means the
// lookup itself failed.
type InstalledDB interface {
	// FindPkg returns the installed package with the given name.
	FindPkg(name string) (*pkg.Record, error)

	// FindVirtualPkg returns the installed package providing the given
	// virtual package name.
	FindVirtualPkg(name string) (*pkg.Record, error)
}

// RepoPool is the view of the repository pool the resolver needs. Lookups
// return the best candidate matching a dependency pattern, or (nil, nil)
// when no repository has one.
type RepoPool interface {
	// FindPkg returns the best real package candidate for the pattern.
	FindPkg(pattern string) (*pkg.Record, error)

	// FindVirtualPkg returns the first candidate providing the pattern
	// as a virtual package.
	FindVirtualPkg(pattern string) (*pkg.Record, error)
}
