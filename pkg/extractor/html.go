package extractor

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/mtessier/ircc-rag/internal/models"
)

const (
	introHeading    = "Intro"
	unnamedHeading  = "Section"
	maxHeadingRunes = 180
	minSectionRunes = 80
)

// extractHTML walks heading and content-bearing elements in document order.
// Each h1/h2/h3 flushes the accumulated buffer and starts a new section;
// p/li/table text accumulates under the current heading. Sections at or
// under the length floor are dropped to shed navigation boilerplate.
func (e *Extractor) extractHTML(rawURL string, data []byte) (*models.ExtractedDocument, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, &ParseError{URL: rawURL, Err: err}
	}

	title := collapseWhitespace(doc.Find("title").First().Text())

	doc.Find("script, style, noscript, svg").Remove()

	root := doc.Find("body")
	if root.Length() == 0 {
		root = doc.Selection
	}

	var sections []models.Section
	heading := introHeading
	var buf []string

	flush := func() {
		text := collapseWhitespace(strings.Join(buf, " "))
		if utf8.RuneCountInString(text) > minSectionRunes {
			sections = append(sections, models.Section{Heading: heading, Text: text})
		}
		buf = buf[:0]
	}

	root.Find("h1, h2, h3, p, li, table").Each(func(_ int, sel *goquery.Selection) {
		switch goquery.NodeName(sel) {
		case "h1", "h2", "h3":
			flush()
			heading = headingText(sel.Text())
		default:
			if text := collapseWhitespace(sel.Text()); text != "" {
				buf = append(buf, text)
			}
		}
	})
	flush()

	blocks := make([]string, 0, len(sections))
	for _, s := range sections {
		blocks = append(blocks, s.Heading+"\n"+s.Text)
	}

	return &models.ExtractedDocument{
		URL:         rawURL,
		Title:       title,
		Sections:    sections,
		ContentHash: fingerprint(strings.Join(blocks, "\n\n")),
	}, nil
}

func headingText(raw string) string {
	h := collapseWhitespace(raw)
	if r := []rune(h); len(r) > maxHeadingRunes {
		h = string(r[:maxHeadingRunes])
	}
	if h == "" {
		return unnamedHeading
	}
	return h
}
