package httpapi

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"

	"github.com/quay/cargo-registry/internal/registry/regerr"
)

// parsePublishEnvelope reads the binary publish envelope from body:
//
//	u32 LE metadata_len | metadata_bytes (JSON) | u32 LE tarball_len | tarball_bytes
//
// Both embedded lengths are validated against the actual remaining bytes
// (spec.md §4.6); mismatches fail with regerr.ParseError.
func parsePublishEnvelope(body io.Reader) (publishRequest, []byte, error) {
	const op = "httpapi.parsePublishEnvelope"

	all, err := io.ReadAll(body)
	if err != nil {
		return publishRequest{}, nil, regerr.New(op, regerr.ParseError, fmt.Errorf("reading body: %w", err))
	}

	metaLen, rest, err := readU32LE(all)
	if err != nil {
		return publishRequest{}, nil, regerr.New(op, regerr.ParseError, err)
	}
	if uint64(metaLen) > uint64(len(rest)) {
		return publishRequest{}, nil, regerr.New(op, regerr.ParseError,
			fmt.Errorf("metadata length %d exceeds %d remaining bytes", metaLen, len(rest)))
	}
	metaBytes, rest := rest[:metaLen], rest[metaLen:]

	var req publishRequest
	if err := json.Unmarshal(metaBytes, &req); err != nil {
		return publishRequest{}, nil, regerr.New(op, regerr.ParseError, fmt.Errorf("decoding metadata: %w", err))
	}

	tarballLen, rest, err := readU32LE(rest)
	if err != nil {
		return publishRequest{}, nil, regerr.New(op, regerr.ParseError, err)
	}
	if uint64(tarballLen) != uint64(len(rest)) {
		return publishRequest{}, nil, regerr.New(op, regerr.ParseError,
			fmt.Errorf("tarball length %d does not match %d remaining bytes", tarballLen, len(rest)))
	}

	return req, rest, nil
}

func readU32LE(b []byte) (uint32, []byte, error) {
	if len(b) < 4 {
		return 0, nil, fmt.Errorf("expected 4 length-prefix bytes but only %d remaining", len(b))
	}
	return binary.LittleEndian.Uint32(b[:4]), b[4:], nil
}
