package vcs

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/quay/cargo-registry/internal/registry/index"
)

func testIdentity() Identity {
	return Identity{Name: "registry", Email: "registry@localhost"}
}

func TestOpenInitializesRepo(t *testing.T) {
	dir := t.TempDir()
	cfg := index.Config{DL: "http://localhost/api/v1/crates", API: "http://localhost"}

	r, err := Open(dir, testIdentity(), cfg)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(filepath.Join(dir, "README.md")); err != nil {
		t.Errorf("README.md not seeded: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "config.json")); err != nil {
		t.Errorf("config.json not written: %v", err)
	}
	_ = r
}

func TestReconcileConfigIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	cfg := index.Config{DL: "http://a", API: "http://a"}

	if _, err := Open(dir, testIdentity(), cfg); err != nil {
		t.Fatal(err)
	}
	r2, err := Open(dir, testIdentity(), cfg)
	if err != nil {
		t.Fatal(err)
	}

	dirty, err := r2.IsDirty("config.json")
	if err != nil {
		t.Fatal(err)
	}
	if dirty {
		t.Errorf("config.json should be clean after a second identical Open")
	}
}

func TestReconcileConfigUpdatesOnChange(t *testing.T) {
	dir := t.TempDir()
	cfg1 := index.Config{DL: "http://a", API: "http://a"}
	cfg2 := index.Config{DL: "http://b", API: "http://a"}

	if _, err := Open(dir, testIdentity(), cfg1); err != nil {
		t.Fatal(err)
	}
	r2, err := Open(dir, testIdentity(), cfg2)
	if err != nil {
		t.Fatal(err)
	}

	b, err := os.ReadFile(filepath.Join(dir, "config.json"))
	if err != nil {
		t.Fatal(err)
	}
	var got index.Config
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("config.json does not decode: %v", err)
	}
	if diff := cmp.Diff(cfg2, got); diff != "" {
		t.Errorf("config.json mismatch after reconciliation (-want +got):\n%s", diff)
	}
	_ = r2
}

func TestCommitFile(t *testing.T) {
	dir := t.TempDir()
	cfg := index.Config{DL: "http://a", API: "http://a"}

	r, err := Open(dir, testIdentity(), cfg)
	if err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(filepath.Join(dir, "te", "st", "test"), nil, 0o644); err == nil {
		t.Fatal("expected write to missing directory to fail")
	}
	if err := os.MkdirAll(filepath.Join(dir, "te", "st"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "te", "st", "test"), []byte(`{"name":"test"}`+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := r.CommitFile("te/st/test", `Publish crate "test@1.0.0"`); err != nil {
		t.Fatal(err)
	}

	content, err := r.HeadContent("te/st/test")
	if err != nil {
		t.Fatal(err)
	}
	if string(content) != `{"name":"test"}`+"\n" {
		t.Errorf("HeadContent = %q, want the committed file content", content)
	}
}
