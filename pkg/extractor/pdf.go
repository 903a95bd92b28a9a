package extractor

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/dslipak/pdf"

	"github.com/mtessier/ircc-rag/internal/models"
)

// extractPDF turns each page with extractable text into one section named by
// its 1-based page number. Pages that render to whitespace are dropped.
func (e *Extractor) extractPDF(rawURL string, data []byte) (*models.ExtractedDocument, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &ParseError{URL: rawURL, Err: err}
	}

	pages := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		pages = append(pages, pageText(reader.Page(i)))
	}

	sections := pageSections(pages)

	texts := make([]string, 0, len(sections))
	for _, s := range sections {
		texts = append(texts, s.Text)
	}

	return &models.ExtractedDocument{
		URL:         rawURL,
		Title:       pdfTitle(reader),
		Sections:    sections,
		ContentHash: fingerprint(strings.Join(texts, "\n\n")),
	}, nil
}

// pageText treats unreadable pages as empty rather than failing the whole
// document; government PDFs routinely mix text pages with scanned ones.
func pageText(page pdf.Page) string {
	if page.V.IsNull() {
		return ""
	}
	text, err := page.GetPlainText(nil)
	if err != nil {
		return ""
	}
	return text
}

func pageSections(pages []string) []models.Section {
	var sections []models.Section
	for i, raw := range pages {
		text := collapseWhitespace(raw)
		if text == "" {
			continue
		}
		sections = append(sections, models.Section{
			Heading: fmt.Sprintf("Page %d", i+1),
			Text:    text,
		})
	}
	return sections
}

func pdfTitle(reader *pdf.Reader) string {
	defer func() {
		// Trailer access can panic on malformed cross-reference tables.
		_ = recover()
	}()

	info := reader.Trailer().Key("Info")
	if info.Kind() != pdf.Dict {
		return ""
	}
	title := info.Key("Title")
	if title.Kind() != pdf.String {
		return ""
	}
	return strings.TrimSpace(title.RawString())
}
