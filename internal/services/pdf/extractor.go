// -----------------------------------------------------------------------
// PDF Extractor Service - Extract text content from PDF documents
// Uses pdfcpu for Go-native PDF processing
// -----------------------------------------------------------------------

package pdf

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/ternarybob/arbor"
)

// PageContent holds the extracted text of a single PDF page
type PageContent struct {
	PageNumber int
	Text       string
}

// Extractor extracts page-ordered text from PDF files using pdfcpu
type Extractor struct {
	logger  arbor.ILogger
	tempDir string
}

// NewExtractor creates a new PDF extractor service
func NewExtractor(logger arbor.ILogger) *Extractor {
	tempDir := filepath.Join(os.TempDir(), "graphkg-pdf")
	os.MkdirAll(tempDir, 0755)

	return &Extractor{
		logger:  logger,
		tempDir: tempDir,
	}
}

// ExtractPages extracts text content by page from the PDF at filePath.
// Pages that yield no extractable text are returned with empty Text so the
// caller keeps correct page numbering.
func (e *Extractor) ExtractPages(ctx context.Context, filePath string) ([]PageContent, error) {
	pdfCtx, err := api.ReadContextFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF context: %w", err)
	}
	pageCount := pdfCtx.PageCount

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	outDir, err := e.newExtractionDir()
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(outDir)

	conf := model.NewDefaultConfiguration()
	pages := make([]PageContent, 0, pageCount)

	if err := api.ExtractContentFile(filePath, outDir, nil, conf); err != nil {
		e.logger.Warn().Err(err).Str("file", filepath.Base(filePath)).Msg("PDF content extraction failed, returning empty pages")
		for pageNum := 1; pageNum <= pageCount; pageNum++ {
			pages = append(pages, PageContent{PageNumber: pageNum})
		}
		return pages, nil
	}

	pageTexts := e.readExtractedPages(outDir)
	for pageNum := 1; pageNum <= pageCount; pageNum++ {
		pages = append(pages, PageContent{
			PageNumber: pageNum,
			Text:       pageTexts[pageNum],
		})
	}

	return pages, nil
}

// newExtractionDir creates a directory private to one extraction call, so
// concurrent PDF ingestions never read or delete each other's page files.
func (e *Extractor) newExtractionDir() (string, error) {
	outDir, err := os.MkdirTemp(e.tempDir, "pages_")
	if err != nil {
		return "", fmt.Errorf("failed to create extraction directory: %w", err)
	}
	return outDir, nil
}

// readExtractedPages maps pdfcpu output files back to page numbers.
func (e *Extractor) readExtractedPages(outDir string) map[int]string {
	pageTexts := make(map[int]string)

	files, _ := os.ReadDir(outDir)
	for _, file := range files {
		if file.IsDir() {
			continue
		}
		content, err := os.ReadFile(filepath.Join(outDir, file.Name()))
		if err != nil {
			continue
		}
		var pageNum int
		if _, err := fmt.Sscanf(file.Name(), "page_%d", &pageNum); err == nil {
			pageTexts[pageNum] = string(content)
			continue
		}
		if _, err := fmt.Sscanf(file.Name(), "Content_page_%d", &pageNum); err == nil {
			pageTexts[pageNum] = string(content)
		}
	}

	return pageTexts
}
