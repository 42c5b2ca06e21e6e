package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/AnjiB/graphkg-rag-demo/internal/models"
	"github.com/AnjiB/graphkg-rag-demo/internal/services/pipeline"
)

type stubIngestor struct {
	result   *models.IngestResult
	err      error
	lastName string
}

func (s *stubIngestor) Ingest(_ context.Context, filename string, _ io.Reader) (*models.IngestResult, error) {
	s.lastName = filename
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

type stubAnswerer struct {
	answer *models.Answer
	err    error
}

func (s *stubAnswerer) Answer(context.Context, string) (*models.Answer, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.answer, nil
}

type stubState struct {
	gen pipeline.Generation
}

func (s *stubState) Get() pipeline.Generation { return s.gen }
func (s *stubState) Ready() bool              { return s.gen.Retriever != nil }

func (s *stubState) Ask(ctx context.Context, question string) (*models.Answer, error) {
	if s.gen.Answerer == nil {
		return nil, models.ErrNotReady
	}
	return s.gen.Answerer.Answer(ctx, question)
}

type emptyRetriever struct{}

func (emptyRetriever) Query(context.Context, string, int) ([]models.RetrievedChunk, error) {
	return nil, nil
}

type stubGraph struct {
	snapshot *models.GraphSnapshot
	names    []string
	err      error
}

func (s *stubGraph) ConceptNames(context.Context) ([]string, error) {
	return s.names, s.err
}

func (s *stubGraph) Snapshot(context.Context) (*models.GraphSnapshot, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.snapshot, nil
}

func multipartUpload(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestUploadHandler_Success(t *testing.T) {
	ingestor := &stubIngestor{result: &models.IngestResult{
		Message:    "Uploaded notes.txt (.txt), stored 4 chunks.",
		ChunkCount: 4,
	}}
	handler := NewDocumentHandler(ingestor, arbor.NewLogger())

	body, contentType := multipartUpload(t, "notes.txt", "some notes")
	req := httptest.NewRequest(http.MethodPost, "/api/upload_document", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.UploadHandler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "notes.txt", ingestor.lastName)
	resp := decodeBody(t, rec)
	assert.Equal(t, float64(4), resp["chunk_count"])
}

func TestUploadHandler_UnsupportedType(t *testing.T) {
	ingestor := &stubIngestor{err: models.ErrUnsupportedFileType}
	handler := NewDocumentHandler(ingestor, arbor.NewLogger())

	body, contentType := multipartUpload(t, "app.exe", "MZ")
	req := httptest.NewRequest(http.MethodPost, "/api/upload_document", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.UploadHandler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadHandler_MissingFileField(t *testing.T) {
	handler := NewDocumentHandler(&stubIngestor{}, arbor.NewLogger())

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.WriteField("other", "value"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload_document", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()

	handler.UploadHandler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadHandler_IngestFailure(t *testing.T) {
	ingestor := &stubIngestor{err: errors.New("index build failed")}
	handler := NewDocumentHandler(ingestor, arbor.NewLogger())

	body, contentType := multipartUpload(t, "notes.txt", "text")
	req := httptest.NewRequest(http.MethodPost, "/api/upload_document", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.UploadHandler(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestUploadHandler_MethodNotAllowed(t *testing.T) {
	handler := NewDocumentHandler(&stubIngestor{}, arbor.NewLogger())
	req := httptest.NewRequest(http.MethodGet, "/api/upload_document", nil)
	rec := httptest.NewRecorder()

	handler.UploadHandler(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestAskHandler_BeforeAnyUpload(t *testing.T) {
	handler := NewQuestionHandler(&stubState{}, arbor.NewLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/ask_question",
		strings.NewReader(`{"question":"What is onboarding?"}`))
	rec := httptest.NewRecorder()

	handler.AskHandler(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	resp := decodeBody(t, rec)
	assert.Equal(t, "No documents uploaded yet.", resp["error"])
}

func TestAskHandler_Answers(t *testing.T) {
	state := &stubState{gen: pipeline.Generation{
		Retriever: emptyRetriever{},
		Answerer: &stubAnswerer{answer: &models.Answer{
			Answer:            "Two weeks.",
			AnswerSource:      models.SourceDocument,
			RetrievedDocCount: 3,
		}},
	}}
	handler := NewQuestionHandler(state, arbor.NewLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/ask_question",
		strings.NewReader(`{"question":"How long is onboarding?"}`))
	rec := httptest.NewRecorder()

	handler.AskHandler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody(t, rec)
	assert.Equal(t, "Two weeks.", resp["answer"])
	assert.Equal(t, models.SourceDocument, resp["answer_source"])
}

func TestAskHandler_EmptyQuestion(t *testing.T) {
	state := &stubState{gen: pipeline.Generation{Answerer: &stubAnswerer{}}}
	handler := NewQuestionHandler(state, arbor.NewLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/ask_question",
		strings.NewReader(`{"question":""}`))
	rec := httptest.NewRecorder()

	handler.AskHandler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAskHandler_InvalidJSON(t *testing.T) {
	handler := NewQuestionHandler(&stubState{}, arbor.NewLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/ask_question", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()

	handler.AskHandler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAskHandler_AnswerError(t *testing.T) {
	state := &stubState{gen: pipeline.Generation{
		Answerer: &stubAnswerer{err: errors.New("completion failed")},
	}}
	handler := NewQuestionHandler(state, arbor.NewLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/ask_question",
		strings.NewReader(`{"question":"anything"}`))
	rec := httptest.NewRecorder()

	handler.AskHandler(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestStatusHandler_NotReady(t *testing.T) {
	handler := NewStatusHandler(&stubState{}, arbor.NewLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	rec := httptest.NewRecorder()

	handler.StatusHandler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody(t, rec)
	assert.Equal(t, false, resp["system_ready"])
	assert.Equal(t, float64(0), resp["chunks_count"])
}

func TestStatusHandler_Ready(t *testing.T) {
	state := &stubState{gen: pipeline.Generation{
		Retriever: emptyRetriever{},
		Answerer:  &stubAnswerer{},
		Chunks:    []string{"a", "b", "c"},
	}}
	handler := NewStatusHandler(state, arbor.NewLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	rec := httptest.NewRecorder()

	handler.StatusHandler(rec, req)

	resp := decodeBody(t, rec)
	assert.Equal(t, true, resp["system_ready"])
	assert.Equal(t, float64(3), resp["chunks_count"])
	assert.Equal(t, true, resp["has_index"])
	assert.Equal(t, true, resp["has_retriever"])
}

func TestChunksHandler_Empty(t *testing.T) {
	handler := NewStatusHandler(&stubState{}, arbor.NewLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/chunks", nil)
	rec := httptest.NewRecorder()

	handler.ChunksHandler(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestChunksHandler_ReturnsChunks(t *testing.T) {
	state := &stubState{gen: pipeline.Generation{Chunks: []string{"first", "second"}}}
	handler := NewStatusHandler(state, arbor.NewLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/chunks", nil)
	rec := httptest.NewRecorder()

	handler.ChunksHandler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody(t, rec)
	assert.Equal(t, float64(2), resp["count"])
}

func TestKnowledgeGraphHandler_Empty(t *testing.T) {
	graph := &stubGraph{snapshot: &models.GraphSnapshot{}}
	handler := NewGraphHandler(graph, arbor.NewLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/kg", nil)
	rec := httptest.NewRecorder()

	handler.KnowledgeGraphHandler(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestKnowledgeGraphHandler_ReturnsSnapshot(t *testing.T) {
	graph := &stubGraph{snapshot: &models.GraphSnapshot{
		Nodes: []string{"Apple", "Banana"},
		Edges: []models.GraphEdge{{From: "Apple", To: "Banana", Rel: "RELATED_TO"}},
	}}
	handler := NewGraphHandler(graph, arbor.NewLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/kg", nil)
	rec := httptest.NewRecorder()

	handler.KnowledgeGraphHandler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody(t, rec)
	assert.Len(t, resp["nodes"], 2)
	assert.Len(t, resp["edges"], 1)
}

func TestKnowledgeGraphHandler_Disabled(t *testing.T) {
	handler := NewGraphHandler(nil, arbor.NewLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/kg", nil)
	rec := httptest.NewRecorder()

	handler.KnowledgeGraphHandler(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestConceptsHandler(t *testing.T) {
	graph := &stubGraph{names: []string{"Apple", "Cherry"}}
	handler := NewGraphHandler(graph, arbor.NewLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/concepts", nil)
	rec := httptest.NewRecorder()

	handler.ConceptsHandler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody(t, rec)
	assert.Equal(t, float64(2), resp["count"])
}

func TestAPIHandler_HealthAndNotFound(t *testing.T) {
	handler := NewAPIHandler()

	rec := httptest.NewRecorder()
	handler.HealthHandler(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.NotFoundHandler(rec, httptest.NewRequest(http.MethodGet, "/api/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	resp := decodeBody(t, rec)
	assert.Equal(t, "/api/nope", resp["path"])
}
