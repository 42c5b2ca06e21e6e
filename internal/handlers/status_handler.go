package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"
)

// StatusHandler reports pipeline readiness and exposes the stored chunks
type StatusHandler struct {
	state  StateReader
	logger arbor.ILogger
}

func NewStatusHandler(state StateReader, logger arbor.ILogger) *StatusHandler {
	return &StatusHandler{
		state:  state,
		logger: logger,
	}
}

// StatusHandler reports whether the system can answer questions yet
func (h *StatusHandler) StatusHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	gen := h.state.Get()
	ready := gen.Answerer != nil

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"system_ready":  ready,
		"chunks_count":  len(gen.Chunks),
		"has_index":     gen.Retriever != nil,
		"has_retriever": gen.Retriever != nil,
		"has_answerer":  ready,
	})
}

// ChunksHandler returns the chunk contents from the most recent ingestion
func (h *StatusHandler) ChunksHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	gen := h.state.Get()
	if len(gen.Chunks) == 0 {
		WriteError(w, http.StatusNotFound, "No chunks found. Upload a document first.")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"chunks": gen.Chunks,
		"count":  len(gen.Chunks),
	})
}
