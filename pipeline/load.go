package pipeline

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"os"

	"github.com/docpipeline/indexer/parse"
)

// streamThreshold is the fileSize cutoff above which Load streams to a
// temp file instead of buffering in memory.
const streamThreshold = 50 * 1024 * 1024

// ObjectStore is the read-only contract the Load stage needs. A
// StorageTerminal-classified error (NotFound, AccessDenied) must not be
// retried; any other error is treated as StorageTransient.
type ObjectStore interface {
	Get(ctx context.Context, key string) (io.ReadCloser, int64, error)
}

// ErrObjectNotFound and ErrAccessDenied are the sentinel errors an
// ObjectStore implementation returns for terminal failures; the
// orchestrator maps them to KindStorageTerminal, everything else to
// KindStorageTransient.
var (
	ErrObjectNotFound = errors.New("objectstore: not found")
	ErrAccessDenied   = errors.New("objectstore: access denied")
)

// LoadResult is the Load stage's output: the bytes read plus the metadata
// the spec requires (checksum, load method, effective MIME type).
type LoadResult struct {
	Data       []byte
	MD5        string
	LoadMethod string // "buffer" or "stream"
	MimeType   string
}

// Load retrieves a file from the object store, computing MD5 while
// reading and detecting the effective MIME type by magic bytes when the
// declared type is missing or the detection disagrees with it.
func Load(ctx context.Context, store ObjectStore, job Job) (*LoadResult, error) {
	rc, size, err := store.Get(ctx, job.FilePath)
	if err != nil {
		return nil, classifyObjectStoreError(err)
	}
	defer rc.Close()

	var data []byte
	var loadMethod string

	if size > 0 && size < streamThreshold {
		loadMethod = "buffer"
		data, err = io.ReadAll(rc)
		if err != nil {
			return nil, StorageTransient("load", err)
		}
	} else {
		loadMethod = "stream"
		data, err = streamToTemp(rc)
		if err != nil {
			return nil, StorageTransient("load", err)
		}
	}

	sum := md5.Sum(data)
	detected := http.DetectContentType(data)
	effective := job.MimeType
	if effective == "" || !mimeMatches(effective, detected) {
		effective = normalizeDetected(detected, job.MimeType)
	}

	if !parse.IsAllowed(effective) {
		return nil, UnsupportedFormat("load", errors.New("mime type not in allowed set: "+effective))
	}

	return &LoadResult{
		Data:       data,
		MD5:        hex.EncodeToString(sum[:]),
		LoadMethod: loadMethod,
		MimeType:   effective,
	}, nil
}

// streamToTemp copies r to a temp file, owned exclusively by the caller
// and deleted on every exit path, then reads it back. The temp file
// indirection exists so very large files never require a matching
// in-memory buffer at read time from the object store's connection.
func streamToTemp(r io.Reader) ([]byte, error) {
	f, err := os.CreateTemp("", "docpipeline-load-*")
	if err != nil {
		return nil, err
	}
	path := f.Name()
	defer os.Remove(path)
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return nil, err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	return io.ReadAll(f)
}

// classifyObjectStoreError maps an ObjectStore error to the error
// taxonomy's storage kinds.
func classifyObjectStoreError(err error) error {
	if errors.Is(err, ErrObjectNotFound) || errors.Is(err, ErrAccessDenied) {
		return StorageTerminal("load", err)
	}
	return StorageTransient("load", err)
}

// mimeMatches reports whether the declared type and the magic-byte
// detection agree on the base media type (ignoring charset parameters).
func mimeMatches(declared, detected string) bool {
	return baseMediaType(declared) == baseMediaType(detected)
}

func baseMediaType(mt string) string {
	for i, c := range mt {
		if c == ';' {
			return mt[:i]
		}
	}
	return mt
}

// normalizeDetected reconciles http.DetectContentType's output (which only
// knows generic categories like "application/octet-stream" or
// "application/zip" for the zip-based Office formats) against the
// declared type, preferring the declared type when detection is too
// coarse to distinguish DOCX/DOC from a bare ZIP.
func normalizeDetected(detected, declared string) string {
	if detected == "application/zip" && declared != "" {
		return declared
	}
	if baseMediaType(detected) == "text/plain" && declared == "text/markdown" {
		return declared
	}
	return baseMediaType(detected)
}
