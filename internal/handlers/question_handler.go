package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"

	"github.com/AnjiB/graphkg-rag-demo/internal/models"
)

// QuestionRequest is the ask-question payload
type QuestionRequest struct {
	Question string `json:"question" validate:"required,min=1"`
}

// QuestionHandler answers questions against the current query generation
type QuestionHandler struct {
	asker    Asker
	validate *validator.Validate
	logger   arbor.ILogger
}

func NewQuestionHandler(asker Asker, logger arbor.ILogger) *QuestionHandler {
	return &QuestionHandler{
		asker:    asker,
		validate: validator.New(),
		logger:   logger,
	}
}

// AskHandler answers a question from the uploaded documents. Returns 404
// until a document has been ingested.
func (h *QuestionHandler) AskHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req QuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Question is required")
		return
	}

	answer, err := h.asker.Ask(r.Context(), req.Question)
	if err != nil {
		if errors.Is(err, models.ErrNotReady) {
			WriteError(w, http.StatusNotFound, "No documents uploaded yet.")
			return
		}
		h.logger.Error().Err(err).Msg("Failed to answer question")
		WriteError(w, http.StatusInternalServerError, "Failed to generate answer")
		return
	}

	WriteJSON(w, http.StatusOK, answer)
}
