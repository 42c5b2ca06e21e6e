package handlers

import (
	"errors"
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/AnjiB/graphkg-rag-demo/internal/models"
)

// maxUploadBytes bounds multipart form memory before spilling to disk
const maxUploadBytes = 32 << 20

// DocumentHandler accepts document uploads and hands them to the ingestion
// pipeline.
type DocumentHandler struct {
	ingestor Ingestor
	logger   arbor.ILogger
}

func NewDocumentHandler(ingestor Ingestor, logger arbor.ILogger) *DocumentHandler {
	return &DocumentHandler{
		ingestor: ingestor,
		logger:   logger,
	}
}

// UploadHandler ingests a multipart document upload from the "file" field.
// Serves both the generic upload route and its PDF-specific alias.
func (h *DocumentHandler) UploadHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Missing file field")
		return
	}
	defer file.Close()

	result, err := h.ingestor.Ingest(r.Context(), header.Filename, file)
	if err != nil {
		if errors.Is(err, models.ErrUnsupportedFileType) {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error().Err(err).Str("file", header.Filename).Msg("Document ingestion failed")
		WriteError(w, http.StatusInternalServerError, "Failed to process document")
		return
	}

	WriteJSON(w, http.StatusOK, result)
}
