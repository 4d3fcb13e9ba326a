package repo

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"bpkg/pkg"
)

func rec(pkgver string, deps ...string) *pkg.Record {
	return &pkg.Record{Pkgver: pkgver, RunDepends: deps}
}

func mustRepo(t *testing.T, uri string, records ...*pkg.Record) *Repository {
	t.Helper()
	r, err := NewRepository(uri, records)
	if err != nil {
		t.Fatalf("NewRepository(%s) failed: %v", uri, err)
	}
	return r
}

func TestPoolFindPkgBest(t *testing.T) {
	pool := NewPool(
		mustRepo(t, "repo-a", rec("foo-1.0"), rec("foo-2.0")),
		mustRepo(t, "repo-b", rec("foo-1.5")),
	)

	got, err := pool.FindPkg("foo>=1")
	if err != nil {
		t.Fatalf("FindPkg failed: %v", err)
	}
	if got == nil || got.Pkgver != "foo-2.0" {
		t.Fatalf("expected best candidate foo-2.0, got %+v", got)
	}
	if got.Repository != "repo-a" {
		t.Errorf("expected origin repo-a, got %q", got.Repository)
	}
}

func TestPoolFindPkgConstraint(t *testing.T) {
	pool := NewPool(mustRepo(t, "repo-a", rec("foo-1.0"), rec("foo-2.0")))

	got, err := pool.FindPkg("foo<2.0")
	if err != nil {
		t.Fatalf("FindPkg failed: %v", err)
	}
	if got == nil || got.Pkgver != "foo-1.0" {
		t.Errorf("expected foo-1.0 under foo<2.0, got %+v", got)
	}

	got, err = pool.FindPkg("foo>=3")
	if err != nil {
		t.Fatalf("FindPkg failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected clean not-found, got %+v", got)
	}
}

func TestPoolFindPkgBareAndPkgver(t *testing.T) {
	pool := NewPool(mustRepo(t, "repo-a", rec("zsh-5.9")))

	got, err := pool.FindPkg("zsh")
	if err != nil || got == nil || got.Pkgver != "zsh-5.9" {
		t.Errorf("bare name lookup = (%+v, %v), want zsh-5.9", got, err)
	}

	got, err = pool.FindPkg("zsh-5.9")
	if err != nil || got == nil || got.Pkgver != "zsh-5.9" {
		t.Errorf("pkgver lookup = (%+v, %v), want zsh-5.9", got, err)
	}
}

func TestPoolFindVirtualFirstMatch(t *testing.T) {
	gawk := rec("gawk-5.1")
	gawk.Provides = []string{"awk-1.0_1"}
	mawk := rec("mawk-1.3")
	mawk.Provides = []string{"awk-1.0_1"}

	pool := NewPool(
		mustRepo(t, "repo-a", gawk),
		mustRepo(t, "repo-b", mawk),
	)

	got, err := pool.FindVirtualPkg("awk>=1")
	if err != nil {
		t.Fatalf("FindVirtualPkg failed: %v", err)
	}
	if got == nil || got.Pkgname != "gawk" {
		t.Errorf("expected first provider gawk, got %+v", got)
	}
}

func TestPoolHandsOutClones(t *testing.T) {
	pool := NewPool(mustRepo(t, "repo-a", rec("foo-1.0")))

	first, err := pool.FindPkg("foo")
	if err != nil || first == nil {
		t.Fatalf("FindPkg failed: %v", err)
	}
	first.Transaction = pkg.ActionInstall
	first.State = pkg.StateNotInstalled

	second, err := pool.FindPkg("foo")
	if err != nil || second == nil {
		t.Fatalf("FindPkg failed: %v", err)
	}
	if second.Transaction != "" || second.State != "" {
		t.Errorf("index record mutated through a handed-out clone: %+v", second)
	}
}

func TestLoadRepository(t *testing.T) {
	dir := t.TempDir()
	index := `[
		{"pkgver": "foo-1.0", "run_depends": ["bar>=1"]},
		{"pkgver": "bar-1.2", "provides": ["baz-1.0_1"]}
	]`
	if err := os.WriteFile(filepath.Join(dir, IndexFile), []byte(index), 0644); err != nil {
		t.Fatal(err)
	}

	r, err := LoadRepository(dir)
	if err != nil {
		t.Fatalf("LoadRepository failed: %v", err)
	}
	pool := NewPool(r)

	got, err := pool.FindPkg("foo>=1")
	if err != nil || got == nil {
		t.Fatalf("FindPkg = (%+v, %v)", got, err)
	}
	if got.Pkgname != "foo" || got.Repository != dir {
		t.Errorf("unexpected record %+v", got)
	}
	vgot, err := pool.FindVirtualPkg("baz>=1")
	if err != nil || vgot == nil || vgot.Pkgname != "bar" {
		t.Errorf("virtual lookup = (%+v, %v), want bar", vgot, err)
	}
}

func TestLoadRepositoryCorrupt(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, IndexFile), []byte("not json"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadRepository(dir)
	if !errors.Is(err, ErrCorruptedIndex) {
		t.Fatalf("expected ErrCorruptedIndex, got %v", err)
	}
	var indexErr *IndexError
	if !errors.As(err, &indexErr) {
		t.Fatalf("expected *IndexError, got %T", err)
	}
}

func TestLoadRepositoryMissing(t *testing.T) {
	_, err := LoadRepository(filepath.Join(t.TempDir(), "nope"))
	if err == nil {
		t.Fatal("expected error for missing index")
	}
}
