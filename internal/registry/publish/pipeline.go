// Package publish implements the publish/yank/unyank pipeline that ties the
// index log, the blob store, and the VCS adapter together under a single
// writer guard (spec.md §4.5).
package publish

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/quay/cargo-registry/internal/registry/blobstore"
	"github.com/quay/cargo-registry/internal/registry/crate"
	"github.com/quay/cargo-registry/internal/registry/index"
	"github.com/quay/cargo-registry/internal/registry/regerr"
	"github.com/quay/cargo-registry/internal/registry/vcs"
)

// Request is the parsed metadata half of a publish envelope (spec.md §3,
// §6). The raw tarball bytes travel alongside it.
type Request struct {
	Name     crate.Name
	Vers     crate.Version
	Deps     []index.Dependency
	Features map[string][]string
	Links    *string
}

// Pipeline coordinates a crate index repository and a blob store under a
// single process-wide mutual-exclusion guard: at most one publish, yank, or
// unyank is in flight at a time (spec.md §5). Downloads and plain reads
// bypass the guard entirely and talk to the blob store / index log
// directly.
type Pipeline struct {
	mu    sync.Mutex
	repo  *vcs.Repo
	blobs *blobstore.Store
}

// New builds a Pipeline over an already-open index repository and blob
// store.
func New(repo *vcs.Repo, blobs *blobstore.Store) *Pipeline {
	return &Pipeline{repo: repo, blobs: blobs}
}

// Publish runs the algorithm from spec.md §4.5: check monotonic versioning,
// write the blob, append the release record, then commit.
func (p *Pipeline) Publish(req Request, tarball []byte) error {
	const op = "publish.Publish"

	p.mu.Lock()
	defer p.mu.Unlock()

	relPath := crate.IndexPath(req.Name)
	absPath := filepath.Join(p.repo.Root(), relPath)

	if err := p.recoverUncommitted(relPath, absPath); err != nil {
		return regerr.New(op, regerr.VCSError, err)
	}

	latest, err := index.Latest(absPath)
	if err != nil {
		return err
	}
	if latest != nil && !latest.Vers.Less(req.Vers) {
		return regerr.New(op, regerr.VersionNotNewer, fmt.Errorf(
			"crate %s: version %s is not newer than existing %s", req.Name, req.Vers, latest.Vers))
	}

	// Storage-first order: if this fails, nothing has touched the index.
	if err := p.blobs.Store(req.Name, req.Vers, tarball); err != nil {
		return err
	}

	sum := sha256.Sum256(tarball)
	rel := index.Release{
		Name:     req.Name,
		Vers:     req.Vers,
		Deps:     req.Deps,
		Cksum:    hex.EncodeToString(sum[:]),
		Features: req.Features,
		Yanked:   false,
		Links:    req.Links,
	}
	if rel.Deps == nil {
		rel.Deps = []index.Dependency{}
	}
	if rel.Features == nil {
		rel.Features = map[string][]string{}
	}

	if err := index.Append(absPath, rel); err != nil {
		return err
	}

	msg := fmt.Sprintf("Publish crate \"%s@%s\"", req.Name, req.Vers)
	if err := p.repo.CommitFile(relPath, msg); err != nil {
		return err
	}
	return nil
}

// Yank marks (name, version) withdrawn without deleting it.
func (p *Pipeline) Yank(name crate.Name, version crate.Version) error {
	return p.setYanked(name, version, true)
}

// Unyank clears the withdrawn flag set by Yank.
func (p *Pipeline) Unyank(name crate.Name, version crate.Version) error {
	return p.setYanked(name, version, false)
}

func (p *Pipeline) setYanked(name crate.Name, version crate.Version, yank bool) error {
	const op = "publish.setYanked"

	p.mu.Lock()
	defer p.mu.Unlock()

	relPath := crate.IndexPath(name)
	absPath := filepath.Join(p.repo.Root(), relPath)

	if err := p.recoverUncommitted(relPath, absPath); err != nil {
		return regerr.New(op, regerr.VCSError, err)
	}

	if err := index.UpdateYank(absPath, version, yank); err != nil {
		return err
	}

	verb := "Yank"
	if !yank {
		verb = "Unyank"
	}
	msg := fmt.Sprintf("%s crate \"%s@%s\"", verb, name, version)
	return p.repo.CommitFile(relPath, msg)
}

// recoverUncommitted implements the "revert" half of spec.md §4.5's
// partial-failure semantics: if a prior pipeline run appended or rewrote
// relPath but failed to commit it, truncate the working tree back to HEAD's
// content before proceeding, so the one-file-per-commit invariant (I5) holds
// for the run about to start.
func (p *Pipeline) recoverUncommitted(relPath, absPath string) error {
	dirty, err := p.repo.IsDirty(relPath)
	if err != nil {
		return err
	}
	if !dirty {
		return nil
	}

	head, err := p.repo.HeadContent(relPath)
	if err != nil {
		return err
	}
	if head == nil {
		return os.Remove(absPath)
	}
	return index.Truncate(absPath, head)
}

// Download opens the blob for (name, version) without acquiring the writer
// guard; spec.md §5 allows downloads to race a publish and observe either
// the pre- or post-commit state.
func (p *Pipeline) Download(name crate.Name, version crate.Version) (io.ReadCloser, error) {
	return p.blobs.Get(name, version)
}

// LatestRelease reads the current latest release for name without
// acquiring the writer guard.
func (p *Pipeline) LatestRelease(name crate.Name) (*index.Release, error) {
	absPath := filepath.Join(p.repo.Root(), crate.IndexPath(name))
	return index.Latest(absPath)
}
