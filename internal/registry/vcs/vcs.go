// Package vcs wraps an on-disk git working tree as the registry's index
// repository (spec.md §4.4). It commits one logical file per call and keeps
// HEAD linear, as the publish pipeline relies on both.
package vcs

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/quay/cargo-registry/internal/registry/index"
	"github.com/quay/cargo-registry/internal/registry/regerr"
)

const readme = "# Crate index\n\nThis repository is managed by the registry server. Do not edit by hand.\n"

// Identity is the commit author/committer signature used for every commit
// this package makes.
type Identity struct {
	Name  string
	Email string
}

func (id Identity) signature(now time.Time) *object.Signature {
	return &object.Signature{Name: id.Name, Email: id.Email, When: now}
}

// Repo wraps a single git working tree. The zero value is not usable; build
// one with Open.
//
// Repo is not safe for concurrent use; the publish pipeline serializes
// access to it behind its own writer guard (spec.md §5).
type Repo struct {
	root  string
	repo  *git.Repository
	id    Identity
	nowFn func() time.Time
}

// Open opens the repository rooted at location, initializing it with a
// seeded README and an initial commit if it doesn't already exist, then
// reconciles config.json against cfg (spec.md §4.4).
func Open(location string, id Identity, cfg index.Config) (*Repo, error) {
	const op = "vcs.Open"

	r := &Repo{root: location, id: id, nowFn: time.Now}

	repo, err := git.PlainOpen(location)
	switch {
	case err == nil:
		r.repo = repo
	case errors.Is(err, git.ErrRepositoryNotExists):
		repo, initErr := r.init(location)
		if initErr != nil {
			return nil, regerr.New(op, regerr.VCSError, initErr)
		}
		r.repo = repo
	default:
		return nil, regerr.New(op, regerr.VCSError, err)
	}

	if err := r.reconcileConfig(cfg); err != nil {
		return nil, regerr.New(op, regerr.VCSError, err)
	}
	return r, nil
}

func (r *Repo) init(location string) (*git.Repository, error) {
	if err := os.MkdirAll(location, 0o755); err != nil {
		return nil, err
	}
	repo, err := git.PlainInitWithOptions(location, &git.PlainInitOptions{
		InitOptions: git.InitOptions{DefaultBranch: plumbing.NewBranchReferenceName("master")},
	})
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(filepath.Join(location, "README.md"), []byte(readme), 0o644); err != nil {
		return nil, err
	}

	wt, err := repo.Worktree()
	if err != nil {
		return nil, err
	}
	if _, err := wt.Add("README.md"); err != nil {
		return nil, err
	}
	now := r.nowFn()
	if _, err := wt.Commit("Initial commit", &git.CommitOptions{
		Author:    r.id.signature(now),
		Committer: r.id.signature(now),
	}); err != nil {
		return nil, err
	}
	if err := wt.Checkout(&git.CheckoutOptions{Force: true}); err != nil {
		return nil, err
	}
	return repo, nil
}

// reconcileConfig writes config.json and commits it if it differs from cfg,
// or doesn't exist yet. It is a no-op if the on-disk config already matches.
func (r *Repo) reconcileConfig(cfg index.Config) error {
	path := filepath.Join(r.root, "config.json")

	current, err := os.ReadFile(path)
	var existing *index.Config
	switch {
	case err == nil:
		var c index.Config
		if jsonErr := json.Unmarshal(current, &c); jsonErr != nil {
			return jsonErr
		}
		existing = &c
	case errors.Is(err, fs.ErrNotExist):
		existing = nil
	default:
		return err
	}

	if existing != nil && *existing == cfg {
		return nil
	}

	b, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return err
	}
	return r.CommitFile("config.json", "Update config")
}

// CommitFile stages exactly relPath (relative to the repository root),
// writes a tree, and creates a commit whose sole parent is the current HEAD
// (spec.md §4.4, I5/I6).
func (r *Repo) CommitFile(relPath, message string) error {
	const op = "vcs.CommitFile"

	wt, err := r.repo.Worktree()
	if err != nil {
		return regerr.New(op, regerr.VCSError, err)
	}
	if _, err := wt.Add(filepath.ToSlash(relPath)); err != nil {
		return regerr.New(op, regerr.VCSError, err)
	}
	now := r.nowFn()
	if _, err := wt.Commit(message, &git.CommitOptions{
		Author:    r.id.signature(now),
		Committer: r.id.signature(now),
	}); err != nil {
		return regerr.New(op, regerr.VCSError, err)
	}
	if err := wt.Checkout(&git.CheckoutOptions{Force: false}); err != nil {
		return regerr.New(op, regerr.VCSError, err)
	}
	return nil
}

// HeadContent returns the byte content of relPath as recorded at HEAD, or
// nil if the path doesn't exist there. Used by the publish pipeline to
// revert an uncommitted append (spec.md §4.5).
func (r *Repo) HeadContent(relPath string) ([]byte, error) {
	const op = "vcs.HeadContent"

	head, err := r.repo.Head()
	if err != nil {
		return nil, regerr.New(op, regerr.VCSError, err)
	}
	commit, err := r.repo.CommitObject(head.Hash())
	if err != nil {
		return nil, regerr.New(op, regerr.VCSError, err)
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, regerr.New(op, regerr.VCSError, err)
	}
	f, err := tree.File(filepath.ToSlash(relPath))
	if err != nil {
		if errors.Is(err, object.ErrFileNotFound) {
			return nil, nil
		}
		return nil, regerr.New(op, regerr.VCSError, err)
	}
	contents, err := f.Contents()
	if err != nil {
		return nil, regerr.New(op, regerr.VCSError, err)
	}
	return []byte(contents), nil
}

// IsDirty reports whether relPath has unstaged or staged changes against
// HEAD.
func (r *Repo) IsDirty(relPath string) (bool, error) {
	const op = "vcs.IsDirty"

	wt, err := r.repo.Worktree()
	if err != nil {
		return false, regerr.New(op, regerr.VCSError, err)
	}
	status, err := wt.Status()
	if err != nil {
		return false, regerr.New(op, regerr.VCSError, err)
	}
	// Status lists only changed paths; Status.File would report an absent
	// path as untracked, so look the path up directly.
	s, ok := status[filepath.ToSlash(relPath)]
	if !ok {
		return false, nil
	}
	return s.Worktree != git.Unmodified || s.Staging != git.Unmodified, nil
}

// Root returns the repository's working tree root.
func (r *Repo) Root() string { return r.root }
