package index

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/quay/cargo-registry/internal/registry/crate"
)

func mustName(t *testing.T, s string) crate.Name {
	t.Helper()
	n, err := crate.Parse(s)
	if err != nil {
		t.Fatalf("crate.Parse(%q): %v", s, err)
	}
	return n
}

func mustVersion(t *testing.T, s string) crate.Version {
	t.Helper()
	v, err := crate.ParseVersion(s)
	if err != nil {
		t.Fatalf("crate.ParseVersion(%q): %v", s, err)
	}
	return v
}

func mustVersionReq(t *testing.T, s string) crate.VersionReq {
	t.Helper()
	r, err := crate.ParseVersionReq(s)
	if err != nil {
		t.Fatalf("crate.ParseVersionReq(%q): %v", s, err)
	}
	return r
}

func TestAppendAndLatest(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "te", "st", "test")

	if got, err := Latest(p); err != nil || got != nil {
		t.Fatalf("Latest on missing file = (%v, %v), want (nil, nil)", got, err)
	}

	name := mustName(t, "test")
	link := "https://example.com/test"
	want := []Release{
		{
			Name: name, Vers: mustVersion(t, "1.0.0"),
			Deps:     []Dependency{{Name: "libc", Req: mustVersionReq(t, "^0.2"), Features: []string{}}},
			Cksum:    "abc123",
			Features: map[string][]string{},
		},
		{
			Name: name, Vers: mustVersion(t, "1.1.0"),
			Features: map[string][]string{"default": {"std"}},
			Links:    &link,
		},
	}
	for _, rel := range want {
		if err := Append(p, rel); err != nil {
			t.Fatalf("Append(%s): %v", rel.Vers, err)
		}
	}

	got, err := Latest(p)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil {
		t.Fatal("Latest() = nil, want the 1.1.0 release")
	}
	if diff := cmp.Diff(want[1], *got); diff != "" {
		t.Errorf("Latest() mismatch (-want +got):\n%s", diff)
	}

	all, err := readAll(p)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(want, all); diff != "" {
		t.Errorf("readAll() mismatch (-want +got):\n%s", diff)
	}
}

func TestUpdateYankRoundtrip(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "test")
	name := mustName(t, "test")

	link := "https://example.com/test"
	before := []Release{
		{
			Name: name, Vers: mustVersion(t, "1.0.0"),
			Deps:     []Dependency{{Name: "libc", Req: mustVersionReq(t, "^0.2"), Features: []string{}}},
			Cksum:    "abc123",
			Features: map[string][]string{},
			Links:    &link,
		},
		{Name: name, Vers: mustVersion(t, "1.1.0"), Features: map[string][]string{}},
	}
	for _, rel := range before {
		if err := Append(p, rel); err != nil {
			t.Fatalf("Append(%s): %v", rel.Vers, err)
		}
	}

	// Yanking 1.0.0 must flip only its Yanked field; every other field on
	// both releases must come back unchanged.
	ignoreYanked := cmpopts.IgnoreFields(Release{}, "Yanked")

	if err := UpdateYank(p, before[0].Vers, true); err != nil {
		t.Fatal(err)
	}
	releases, err := readAll(p)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(before, releases, ignoreYanked); diff != "" {
		t.Errorf("yank changed fields other than Yanked (-before +after):\n%s", diff)
	}
	if !releases[0].Yanked {
		t.Errorf("release 1.0.0 should be yanked")
	}
	if releases[1].Yanked {
		t.Errorf("release 1.1.0 should not be yanked")
	}

	if err := UpdateYank(p, before[0].Vers, false); err != nil {
		t.Fatal(err)
	}
	releases, err = readAll(p)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(before, releases); diff != "" {
		t.Errorf("unyank did not restore the original records (-want +got):\n%s", diff)
	}
}

func TestUpdateYankNotFound(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "test")
	name := mustName(t, "test")
	if err := Append(p, Release{Name: name, Vers: mustVersion(t, "1.0.0"), Features: map[string][]string{}}); err != nil {
		t.Fatal(err)
	}
	if err := UpdateYank(p, mustVersion(t, "9.9.9"), true); err == nil {
		t.Fatal("expected error for missing version")
	}
}
