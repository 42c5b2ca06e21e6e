package server

import "net/http"

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// Document ingestion; upload_pdf is kept as an alias for clients that
	// predate multi-format support
	mux.HandleFunc("/api/upload_document", s.app.DocumentHandler.UploadHandler)
	mux.HandleFunc("/api/upload_pdf", s.app.DocumentHandler.UploadHandler)

	// Question answering
	mux.HandleFunc("/api/ask_question", s.app.QuestionHandler.AskHandler)

	// Pipeline state
	mux.HandleFunc("/api/status", s.app.StatusHandler.StatusHandler)
	mux.HandleFunc("/api/chunks", s.app.StatusHandler.ChunksHandler)

	// Concept graph views
	mux.HandleFunc("/api/kg", s.app.GraphHandler.KnowledgeGraphHandler)
	mux.HandleFunc("/api/concepts", s.app.GraphHandler.ConceptsHandler)

	// System
	mux.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)
	mux.HandleFunc("/api/health", s.app.APIHandler.HealthHandler)

	// Unknown API paths get a JSON 404
	mux.HandleFunc("/api/", s.app.APIHandler.NotFoundHandler)
	mux.HandleFunc("/", s.app.APIHandler.NotFoundHandler)

	return mux
}
