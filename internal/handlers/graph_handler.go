package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"
)

// GraphHandler exposes read-only views of the concept graph
type GraphHandler struct {
	graph  GraphReader
	logger arbor.ILogger
}

// NewGraphHandler creates the graph view handler. graph may be nil when the
// concept graph is disabled.
func NewGraphHandler(graph GraphReader, logger arbor.ILogger) *GraphHandler {
	return &GraphHandler{
		graph:  graph,
		logger: logger,
	}
}

// KnowledgeGraphHandler returns the full concept graph snapshot
func (h *GraphHandler) KnowledgeGraphHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	if h.graph == nil {
		WriteError(w, http.StatusServiceUnavailable, "Concept graph is not configured")
		return
	}

	snapshot, err := h.graph.Snapshot(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to read concept graph")
		WriteError(w, http.StatusInternalServerError, "Failed to read concept graph")
		return
	}

	if len(snapshot.Nodes) == 0 {
		WriteError(w, http.StatusNotFound, "No data. Upload a document first.")
		return
	}

	WriteJSON(w, http.StatusOK, snapshot)
}

// ConceptsHandler lists the concept node names
func (h *GraphHandler) ConceptsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	if h.graph == nil {
		WriteError(w, http.StatusServiceUnavailable, "Concept graph is not configured")
		return
	}

	names, err := h.graph.ConceptNames(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list concepts")
		WriteError(w, http.StatusInternalServerError, "Failed to list concepts")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"concepts": names,
		"count":    len(names),
	})
}
