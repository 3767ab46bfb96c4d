// Package httpapi exposes the registry's publish/yank/unyank/download core
// over the Cargo publishing HTTP protocol (spec.md §4.6), plus the stub
// owners and search endpoints.
package httpapi

import "github.com/quay/cargo-registry/internal/registry/crate"

// publishRequest is the JSON shape of the metadata half of a publish
// envelope. It mirrors the crates.io publish payload (spec.md §6) and is
// distinct from index.Release: most fields here carry no meaning past the
// publish call and are accepted but not persisted, and the dependency
// requirement field is spelled "version_req" on the wire but "req" in the
// index (spec.md §6).
type publishRequest struct {
	Name          crate.Name                    `json:"name"`
	Vers          crate.Version                 `json:"vers"`
	Deps          []dependencyWire              `json:"deps"`
	Features      map[string][]string           `json:"features"`
	Authors       []string                      `json:"authors"`
	Description   *string                       `json:"description"`
	Documentation *string                       `json:"documentation"`
	Homepage      *string                       `json:"homepage"`
	Readme        *string                       `json:"readme"`
	ReadmeFile    *string                       `json:"readme_file"`
	Keywords      []string                      `json:"keywords"`
	Categories    []string                      `json:"categories"`
	License       *string                       `json:"license"`
	LicenseFile   *string                       `json:"license_file"`
	Repository    *string                       `json:"repository"`
	Badges        map[string]map[string]string `json:"badges"`
	Links         *string                       `json:"links"`
}

type dependencyWire struct {
	Name               string               `json:"name"`
	VersionReq         crate.VersionReq     `json:"version_req"`
	Features           []string             `json:"features"`
	Optional           bool                 `json:"optional"`
	DefaultFeatures    bool                 `json:"default_features"`
	Target             *string              `json:"target,omitempty"`
	Kind               crate.DependencyKind `json:"kind"`
	Registry           *string              `json:"registry,omitempty"`
	ExplicitNameInToml *string              `json:"explicit_name_in_toml,omitempty"`
}

type warnings struct {
	InvalidCategories []string `json:"invalid_categories"`
	InvalidBadges     []string `json:"invalid_badges"`
	Other             []string `json:"other"`
}

type publishResponse struct {
	Warnings warnings `json:"warnings"`
}

func newPublishResponse() publishResponse {
	return publishResponse{Warnings: warnings{
		InvalidCategories: []string{},
		InvalidBadges:     []string{},
		Other:             []string{},
	}}
}

type yankResponse struct {
	OK bool `json:"ok"`
}

type errorDetail struct {
	Detail string `json:"detail"`
}

type errorResponse struct {
	Errors []errorDetail `json:"errors"`
}

type user struct {
	ID    int     `json:"id"`
	Login string  `json:"login"`
	Name  *string `json:"name"`
}

type listOwnersResponse struct {
	Users []user `json:"users"`
}

type addOwnersRequest struct {
	Users []string `json:"users"`
}

type addOwnersResponse struct {
	OK  bool   `json:"ok"`
	Msg string `json:"msg"`
}

type removeOwnersRequest struct {
	Users []string `json:"users"`
}

type removeOwnersResponse struct {
	OK  bool   `json:"ok"`
	Msg string `json:"msg"`
}

type searchedCrate struct {
	Name        crate.Name    `json:"name"`
	MaxVersion  crate.Version `json:"max_version"`
	Description string        `json:"description"`
}

type searchMeta struct {
	Total int `json:"total"`
}

type searchResponse struct {
	Crates []searchedCrate `json:"crates"`
	Meta   searchMeta      `json:"meta"`
}
