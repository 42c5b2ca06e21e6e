package chunker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/AnjiB/graphkg-rag-demo/internal/common"
	"github.com/AnjiB/graphkg-rag-demo/internal/models"
	"github.com/AnjiB/graphkg-rag-demo/internal/services/pdf"
)

// supportedExtensions is the closed set of ingestible file types. PDF gets
// page-aware extraction; everything else is loaded as UTF-8 text.
var supportedExtensions = map[string]bool{
	".pdf":  true,
	".txt":  true,
	".md":   true,
	".py":   true,
	".js":   true,
	".go":   true,
	".html": true,
	".css":  true,
	".json": true,
	".xml":  true,
}

// IsSupported reports whether the (lower-cased, dotted) extension is in the
// supported set.
func IsSupported(ext string) bool {
	return supportedExtensions[strings.ToLower(ext)]
}

// SupportedExtensions returns the supported set for error messages.
func SupportedExtensions() []string {
	exts := make([]string, 0, len(supportedExtensions))
	for ext := range supportedExtensions {
		exts = append(exts, ext)
	}
	return exts
}

// Chunker splits a document file into an ordered sequence of chunks.
// It holds no state between calls and does not persist anything.
type Chunker struct {
	splitter  *Splitter
	extractor *pdf.Extractor
	logger    arbor.ILogger
}

// New creates a chunker with the given splitter configuration
func New(cfg common.ChunkingConfig, extractor *pdf.Extractor, logger arbor.ILogger) *Chunker {
	return &Chunker{
		splitter:  NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap),
		extractor: extractor,
		logger:    logger,
	}
}

// SplitFile loads the document at path and splits it into ordered chunks.
// originalName is the client-supplied filename recorded as chunk source.
// Returns models.ErrUnsupportedFileType for extensions outside the
// supported set, before any file I/O.
func (c *Chunker) SplitFile(ctx context.Context, path, originalName string) ([]models.Chunk, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !IsSupported(ext) {
		return nil, fmt.Errorf("%w: %s", models.ErrUnsupportedFileType, ext)
	}

	docID := common.NewDocumentID()

	var chunks []models.Chunk
	appendChunk := func(content string, page int) {
		seq := len(chunks)
		chunks = append(chunks, models.Chunk{
			ID:         common.NewChunkID(docID, seq),
			DocumentID: docID,
			Sequence:   seq,
			Content:    content,
			Source:     originalName,
			Page:       page,
		})
	}

	if ext == ".pdf" {
		pages, err := c.extractor.ExtractPages(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("failed to extract PDF text: %w", err)
		}
		for _, page := range pages {
			for _, segment := range c.splitter.Split(page.Text) {
				appendChunk(segment, page.PageNumber)
			}
		}
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read document: %w", err)
		}
		for _, segment := range c.splitter.Split(string(data)) {
			appendChunk(segment, 0)
		}
	}

	c.logger.Debug().
		Str("doc_id", docID).
		Str("source", originalName).
		Str("type", ext).
		Int("chunks", len(chunks)).
		Msg("Document split into chunks")

	return chunks, nil
}
