package httpapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/quay/cargo-registry/internal/registry/crate"
	"github.com/quay/cargo-registry/internal/registry/index"
	"github.com/quay/cargo-registry/internal/registry/publish"
	"github.com/quay/cargo-registry/internal/registry/regerr"
)

// maxBodyBytes is the publish body size cap from spec.md §4.6/Q5.
const maxBodyBytes = 10 << 20 // 10 MiB

// Server holds the dependencies the HTTP handlers need.
type Server struct {
	pipeline *publish.Pipeline
}

// NewServer builds a Server around an already-wired publish pipeline.
func NewServer(p *publish.Pipeline) *Server {
	return &Server{pipeline: p}
}

func pathParams(r *http.Request) (name crate.Name, version crate.Version, err error) {
	name, err = crate.Parse(r.PathValue("name"))
	if err != nil {
		return crate.Name{}, crate.Version{}, err
	}
	if vs := r.PathValue("version"); vs != "" {
		version, err = crate.ParseVersion(vs)
		if err != nil {
			return crate.Name{}, crate.Version{}, err
		}
	}
	return name, version, nil
}

// handlePublish serves PUT /api/v1/crates/new.
func (s *Server) handlePublish(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)

	req, tarball, err := parsePublishEnvelope(body)
	if err != nil {
		writeError(w, r, err)
		return
	}

	deps := make([]index.Dependency, 0, len(req.Deps))
	for _, d := range req.Deps {
		features := d.Features
		if features == nil {
			features = []string{}
		}
		deps = append(deps, index.Dependency{
			Name:            d.Name,
			Req:             d.VersionReq,
			Features:        features,
			Optional:        d.Optional,
			DefaultFeatures: d.DefaultFeatures,
			Target:          d.Target,
			Kind:            d.Kind,
			Registry:        d.Registry,
			Package:         d.ExplicitNameInToml,
		})
	}

	preq := publish.Request{
		Name:     req.Name,
		Vers:     req.Vers,
		Deps:     deps,
		Features: req.Features,
		Links:    req.Links,
	}

	if err := s.pipeline.Publish(preq, tarball); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newPublishResponse())
}

// handleYank serves DELETE /api/v1/crates/{name}/{version}/yank.
func (s *Server) handleYank(w http.ResponseWriter, r *http.Request) {
	name, version, err := pathParams(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.pipeline.Yank(name, version); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, yankResponse{OK: true})
}

// handleUnyank serves PUT /api/v1/crates/{name}/{version}/unyank.
func (s *Server) handleUnyank(w http.ResponseWriter, r *http.Request) {
	name, version, err := pathParams(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.pipeline.Unyank(name, version); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, yankResponse{OK: true})
}

// handleDownload serves GET /api/v1/crates/{name}/{version}/download.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	name, version, err := pathParams(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	rc, err := s.pipeline.Download(name, version)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if rc == nil {
		err := regerr.New("httpapi.handleDownload", regerr.NotFound,
			fmt.Errorf("crate %s with version %s not found", name, version))
		writeError(w, r, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	if _, err := io.Copy(w, rc); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("error streaming download")
	}
}

// handleListOwners serves GET /api/v1/crates/{name}/owners. Per spec.md §9
// (Q4) this is a stub returning fixed data.
func (s *Server) handleListOwners(w http.ResponseWriter, r *http.Request) {
	name := "Core"
	writeJSON(w, http.StatusOK, listOwnersResponse{Users: []user{
		{ID: 70, Login: "github:rust-lang:core", Name: &name},
	}})
}

// handleAddOwners serves PUT /api/v1/crates/{name}/owners (stub).
func (s *Server) handleAddOwners(w http.ResponseWriter, r *http.Request) {
	var req addOwnersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, regerr.New("httpapi.handleAddOwners", regerr.ParseError, err))
		return
	}
	writeJSON(w, http.StatusOK, addOwnersResponse{
		OK:  true,
		Msg: "user ehuss has been invited to be an owner of crate cargo",
	})
}

// handleRemoveOwners serves DELETE /api/v1/crates/{name}/owners (stub).
func (s *Server) handleRemoveOwners(w http.ResponseWriter, r *http.Request) {
	var req removeOwnersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, regerr.New("httpapi.handleRemoveOwners", regerr.ParseError, err))
		return
	}
	writeJSON(w, http.StatusOK, removeOwnersResponse{OK: true, Msg: ""})
}

// handleSearch serves GET /api/v1/crates/?q=&per_page= (stub).
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	name, _ := crate.Parse("rand")
	version, _ := crate.ParseVersion("0.6.1")
	writeJSON(w, http.StatusOK, searchResponse{
		Crates: []searchedCrate{{
			Name:        name,
			MaxVersion:  version,
			Description: "Random number generators and other randomness functionality.\n",
		}},
		Meta: searchMeta{Total: 119},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
