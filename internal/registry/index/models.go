// Package index implements the per-crate append-only JSONL metadata log
// described in spec.md §4.3, plus the Release/Dependency record shapes from
// §3.
package index

import "github.com/quay/cargo-registry/internal/registry/crate"

// Dependency is the index-form dependency record (spec.md §3). Unlike
// Release, Name is a free string: dependencies may point at crates hosted on
// other registries with different naming rules.
type Dependency struct {
	Name            string               `json:"name"`
	Req             crate.VersionReq     `json:"req"`
	Features        []string             `json:"features"`
	Optional        bool                 `json:"optional"`
	DefaultFeatures bool                 `json:"default_features"`
	Target          *string              `json:"target,omitempty"`
	Kind            crate.DependencyKind `json:"kind"`
	Registry        *string              `json:"registry,omitempty"`
	Package         *string              `json:"package,omitempty"`
}

// Release is a single published (name, version) record inside the index.
type Release struct {
	Name     crate.Name          `json:"name"`
	Vers     crate.Version       `json:"vers"`
	Deps     []Dependency        `json:"deps"`
	Cksum    string              `json:"cksum"`
	Features map[string][]string `json:"features"`
	Yanked   bool                `json:"yanked"`
	Links    *string             `json:"links,omitempty"`
}

// Config is the `config.json` file stored at the index root (spec.md §3,
// §4.4).
type Config struct {
	DL  string `json:"dl"`
	API string `json:"api"`
}
