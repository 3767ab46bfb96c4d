package httpapi

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/quay/cargo-registry/internal/registry/blobstore"
	"github.com/quay/cargo-registry/internal/registry/index"
	"github.com/quay/cargo-registry/internal/registry/publish"
	"github.com/quay/cargo-registry/internal/registry/vcs"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	indexDir := t.TempDir()
	blobDir := t.TempDir()

	repo, err := vcs.Open(indexDir, vcs.Identity{Name: "registry", Email: "registry@localhost"}, index.Config{
		DL:  "http://localhost/api/v1/crates",
		API: "http://localhost",
	})
	if err != nil {
		t.Fatal(err)
	}
	p := publish.New(repo, blobstore.New(blobDir))
	return NewRouter(NewServer(p), zerolog.Nop())
}

func envelopeBody(t *testing.T, metadata string, tarball []byte) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	meta := []byte(metadata)
	binary.Write(&buf, binary.LittleEndian, uint32(len(meta)))
	buf.Write(meta)
	binary.Write(&buf, binary.LittleEndian, uint32(len(tarball)))
	buf.Write(tarball)
	return &buf
}

func TestPublishThenDownloadEndToEnd(t *testing.T) {
	h := newTestServer(t)

	body := envelopeBody(t, `{"name":"test","vers":"1.0.0","deps":[],"features":{}}`, []byte("hello"))
	req := httptest.NewRequest(http.MethodPut, "/api/v1/crates/new", body)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("publish status = %d, body = %s", rec.Code, rec.Body.String())
	}

	dlReq := httptest.NewRequest(http.MethodGet, "/api/v1/crates/test/1.0.0/download", nil)
	dlRec := httptest.NewRecorder()
	h.ServeHTTP(dlRec, dlReq)

	if dlRec.Code != http.StatusOK {
		t.Fatalf("download status = %d", dlRec.Code)
	}
	if dlRec.Body.String() != "hello" {
		t.Errorf("download body = %q, want hello", dlRec.Body.String())
	}
}

func TestDownloadMissingReturns404(t *testing.T) {
	h := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/crates/missing/1.0.0/download", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}

	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Errors) == 0 {
		t.Fatal("expected at least one error detail")
	}
}

func TestYankUnyankEndpoints(t *testing.T) {
	h := newTestServer(t)

	body := envelopeBody(t, `{"name":"test","vers":"1.0.0","deps":[],"features":{}}`, []byte("hello"))
	pubReq := httptest.NewRequest(http.MethodPut, "/api/v1/crates/new", body)
	pubRec := httptest.NewRecorder()
	h.ServeHTTP(pubRec, pubReq)
	if pubRec.Code != http.StatusOK {
		t.Fatalf("publish status = %d", pubRec.Code)
	}

	yankReq := httptest.NewRequest(http.MethodDelete, "/api/v1/crates/test/1.0.0/yank", nil)
	yankRec := httptest.NewRecorder()
	h.ServeHTTP(yankRec, yankReq)
	if yankRec.Code != http.StatusOK {
		t.Fatalf("yank status = %d, body = %s", yankRec.Code, yankRec.Body.String())
	}

	unyankReq := httptest.NewRequest(http.MethodPut, "/api/v1/crates/test/1.0.0/unyank", nil)
	unyankRec := httptest.NewRecorder()
	h.ServeHTTP(unyankRec, unyankReq)
	if unyankRec.Code != http.StatusOK {
		t.Fatalf("unyank status = %d, body = %s", unyankRec.Code, unyankRec.Body.String())
	}
}

func TestSearchStub(t *testing.T) {
	h := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/crates/?q=rand&per_page=10", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp searchResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Crates) != 1 || resp.Crates[0].Name.String() != "rand" {
		t.Errorf("unexpected search response: %+v", resp)
	}
}
