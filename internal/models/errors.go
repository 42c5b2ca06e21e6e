package models

import "errors"

// Error taxonomy for the ingestion and answer pipelines. Handlers map these
// to HTTP status codes; everything else is treated as an internal error.
var (
	// ErrUnsupportedFileType is a client input error detected before any I/O.
	ErrUnsupportedFileType = errors.New("unsupported file type")

	// ErrIndexBuild wraps embedding or storage failures during an index
	// rebuild. Fatal to the ingestion attempt.
	ErrIndexBuild = errors.New("index build failed")

	// ErrRetrieval wraps query-time index failures. Stored state is not
	// affected.
	ErrRetrieval = errors.New("retrieval failed")

	// ErrNotReady means no index or retriever is initialized yet. This is a
	// normal early-lifecycle state, not a fault.
	ErrNotReady = errors.New("no documents uploaded yet")

	// ErrGraphWrite wraps concept-graph store failures. Non-fatal: the graph
	// is best-effort, ingestion proceeds without it.
	ErrGraphWrite = errors.New("graph write failed")
)
