package index

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/quay/cargo-registry/internal/registry/crate"
	"github.com/quay/cargo-registry/internal/registry/regerr"
)

// Latest opens the crate file at cratePath and returns the last non-empty
// line parsed as a Release. A missing file reports (nil, nil); malformed
// JSON is a fatal read error.
func Latest(cratePath string) (*Release, error) {
	const op = "index.Latest"

	f, err := os.Open(cratePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, regerr.New(op, regerr.IOError, err)
	}
	defer f.Close()

	var last []byte
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		last = append(last[:0], line...)
	}
	if err := sc.Err(); err != nil {
		return nil, regerr.New(op, regerr.IOError, err)
	}
	if last == nil {
		return nil, nil
	}

	var rel Release
	if err := json.Unmarshal(last, &rel); err != nil {
		return nil, regerr.New(op, regerr.Internal, fmt.Errorf("malformed release record: %w", err))
	}
	return &rel, nil
}

// Append writes rel as a new JSON line to the crate file at cratePath,
// creating parent directories as needed. No existing content is truncated.
func Append(cratePath string, rel Release) error {
	const op = "index.Append"

	if err := os.MkdirAll(filepath.Dir(cratePath), 0o755); err != nil {
		return regerr.New(op, regerr.IOError, err)
	}

	f, err := os.OpenFile(cratePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return regerr.New(op, regerr.IOError, err)
	}
	defer f.Close()

	b, err := json.Marshal(rel)
	if err != nil {
		return regerr.New(op, regerr.Internal, err)
	}

	w := bufio.NewWriter(f)
	if _, err := w.Write(b); err != nil {
		return regerr.New(op, regerr.IOError, err)
	}
	if err := w.WriteByte('\n'); err != nil {
		return regerr.New(op, regerr.IOError, err)
	}
	if err := w.Flush(); err != nil {
		return regerr.New(op, regerr.IOError, err)
	}
	return nil
}

// UpdateYank reads every Release at cratePath, flips the yanked flag on the
// one matching version exactly (including pre-release/build metadata), and
// rewrites the full file in place. It's an error if version isn't found.
func UpdateYank(cratePath string, version crate.Version, yank bool) error {
	const op = "index.UpdateYank"

	releases, err := readAll(cratePath)
	if err != nil {
		return err
	}

	found := false
	for i := range releases {
		if releases[i].Vers.String() == version.String() {
			releases[i].Yanked = yank
			found = true
			break
		}
	}
	if !found {
		return regerr.New(op, regerr.NotFound, fmt.Errorf("version %s not found", version))
	}

	return writeAll(cratePath, releases)
}

// readAll parses every line of the crate file into a Release, in order.
func readAll(cratePath string) ([]Release, error) {
	const op = "index.readAll"

	f, err := os.Open(cratePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, regerr.New(op, regerr.NotFound, err)
		}
		return nil, regerr.New(op, regerr.IOError, err)
	}
	defer f.Close()

	var releases []Release
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var rel Release
		if err := json.Unmarshal(line, &rel); err != nil {
			return nil, regerr.New(op, regerr.Internal, fmt.Errorf("malformed release record: %w", err))
		}
		releases = append(releases, rel)
	}
	if err := sc.Err(); err != nil {
		return nil, regerr.New(op, regerr.IOError, err)
	}
	return releases, nil
}

// writeAll replaces the full content of cratePath with one JSON line per
// release, in order.
func writeAll(cratePath string, releases []Release) error {
	const op = "index.writeAll"

	f, err := os.Create(cratePath)
	if err != nil {
		return regerr.New(op, regerr.IOError, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for _, rel := range releases {
		if err := enc.Encode(rel); err != nil {
			return regerr.New(op, regerr.Internal, err)
		}
	}
	if err := w.Flush(); err != nil {
		return regerr.New(op, regerr.IOError, err)
	}
	return nil
}

// Truncate reverts cratePath's content to data, used by the publish pipeline
// to recover an append that succeeded but whose commit failed (spec.md §4.5
// partial-failure semantics, option (b): revert).
func Truncate(cratePath string, data []byte) error {
	const op = "index.Truncate"
	if err := os.WriteFile(cratePath, data, 0o644); err != nil {
		return regerr.New(op, regerr.IOError, err)
	}
	return nil
}
