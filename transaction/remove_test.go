package transaction

import (
	"errors"
	"testing"

	"bpkg/pkg"
)

func TestRemovePkgLeaf(t *testing.T) {
	db := newFakeDB(installedRec(t, "leaf-1", pkg.StateInstalled))
	tr := New()

	if err := RemovePkg(tr, db, "leaf", false); err != nil {
		t.Fatalf("RemovePkg failed: %v", err)
	}
	if len(tr.UnsortedDeps) != 1 {
		t.Fatalf("expected one queued record, got %v", queuedNames(tr))
	}
	rec := tr.UnsortedDeps[0]
	if rec.Pkgname != "leaf" || rec.Transaction != pkg.ActionRemove {
		t.Errorf("expected leaf tagged remove, got %s %q", rec.Pkgname, rec.Transaction)
	}
}

func TestRemovePkgNotInstalled(t *testing.T) {
	tr := New()
	err := RemovePkg(tr, newFakeDB(), "ghost", false)
	if !errors.Is(err, ErrNotInstalled) {
		t.Fatalf("expected ErrNotInstalled, got %v", err)
	}
}

func TestRemovePkgRevdepsGuard(t *testing.T) {
	db := newFakeDB(
		installedRec(t, "libz-1", pkg.StateInstalled),
		installedRec(t, "app-1", pkg.StateInstalled, "libz>=1"),
	)
	tr := New()

	err := RemovePkg(tr, db, "libz", false)
	if err == nil {
		t.Fatal("expected revdeps to block removal")
	}
	var revErr *RevdepsError
	if !errors.As(err, &revErr) {
		t.Fatalf("expected *RevdepsError, got %T: %v", err, err)
	}
	if len(revErr.Revdeps) != 1 || revErr.Revdeps[0] != "app-1" {
		t.Errorf("expected revdeps [app-1], got %v", revErr.Revdeps)
	}
	if len(tr.UnsortedDeps) != 0 {
		t.Errorf("nothing should be queued on revdeps error, got %v", queuedNames(tr))
	}
}

func TestRemovePkgRecursive(t *testing.T) {
	db := newFakeDB(
		installedRec(t, "libz-1", pkg.StateInstalled),
		installedRec(t, "app-1", pkg.StateInstalled, "libz>=1"),
		installedRec(t, "tool-1", pkg.StateInstalled, "app>=1"),
	)
	tr := New()

	if err := RemovePkg(tr, db, "libz", true); err != nil {
		t.Fatalf("RemovePkg failed: %v", err)
	}
	got := queuedNames(tr)
	// Dependents queue before their dependency.
	want := []string{"tool-1", "app-1", "libz-1"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
	for _, rec := range tr.UnsortedDeps {
		if rec.Transaction != pkg.ActionRemove {
			t.Errorf("%s: expected remove tag, got %q", rec.Pkgver, rec.Transaction)
		}
	}
}

func TestAutoremoveOrphans(t *testing.T) {
	libz := installedRec(t, "libz-1", pkg.StateInstalled)
	libz.AutomaticInstall = true
	helper := installedRec(t, "helper-1", pkg.StateInstalled, "libz>=1")
	helper.AutomaticInstall = true
	app := installedRec(t, "app-1", pkg.StateInstalled)

	db := newFakeDB(libz, helper, app)
	tr := New()

	// helper is an orphan; once it goes, libz becomes one too. app was
	// manually installed and stays.
	if err := AutoremovePkgs(tr, db); err != nil {
		t.Fatalf("AutoremovePkgs failed: %v", err)
	}
	if len(tr.UnsortedDeps) != 2 {
		t.Fatalf("expected two orphans queued, got %v", queuedNames(tr))
	}
	queued := map[string]bool{}
	for _, rec := range tr.UnsortedDeps {
		queued[rec.Pkgname] = true
		if rec.Transaction != pkg.ActionRemove {
			t.Errorf("%s: expected remove tag, got %q", rec.Pkgver, rec.Transaction)
		}
	}
	if !queued["helper"] || !queued["libz"] {
		t.Errorf("expected helper and libz queued, got %v", queuedNames(tr))
	}
	if queued["app"] {
		t.Error("manually installed app must not be autoremoved")
	}
}

func TestAutoremoveKeepsRequiredDeps(t *testing.T) {
	libz := installedRec(t, "libz-1", pkg.StateInstalled)
	libz.AutomaticInstall = true
	app := installedRec(t, "app-1", pkg.StateInstalled, "libz>=1")

	db := newFakeDB(libz, app)
	tr := New()

	if err := AutoremovePkgs(tr, db); err != nil {
		t.Fatalf("AutoremovePkgs failed: %v", err)
	}
	if len(tr.UnsortedDeps) != 0 {
		t.Errorf("libz is still required, got %v queued", queuedNames(tr))
	}
}
