// Package blobstore persists and streams back tarball blobs addressed by
// (name, version), per spec.md §4.2.
package blobstore

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/quay/cargo-registry/internal/registry/crate"
	"github.com/quay/cargo-registry/internal/registry/regerr"
)

// Store is a filesystem-backed blob store rooted at a single directory.
// Concurrent Get calls are safe; a Store for a given (name, version) is
// expected to be serialized by the caller (the publish pipeline holds the
// writer guard, spec.md §4.2/§5).
type Store struct {
	root string
}

// New creates a Store rooted at root. The directory is created lazily by
// Store, not here.
func New(root string) *Store { return &Store{root: root} }

func blobPath(root string, name crate.Name, version crate.Version) string {
	return filepath.Join(root, name.String(), fmt.Sprintf("%s-%s.crate", name, version))
}

// Store writes data to <root>/<name>/<name>-<version>.crate, creating parent
// directories. Overwriting an existing blob is permitted here but is an
// invariant violation the publish pipeline must prevent by constructions
// upstream (spec.md §4.2).
func (s *Store) Store(name crate.Name, version crate.Version, data []byte) error {
	const op = "blobstore.Store"

	path := blobPath(s.root, name, version)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return regerr.New(op, regerr.IOError, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return regerr.New(op, regerr.IOError, err)
	}
	return nil
}

// Get opens the blob for (name, version) for reading. It returns (nil, nil)
// if the blob doesn't exist.
func (s *Store) Get(name crate.Name, version crate.Version) (io.ReadCloser, error) {
	const op = "blobstore.Get"

	path := blobPath(s.root, name, version)
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, regerr.New(op, regerr.IOError, err)
	}
	return f, nil
}
