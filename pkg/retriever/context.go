package retriever

import (
	"fmt"
	"strings"

	"github.com/mtessier/ircc-rag/internal/models"
)

// BuildContext renders retrieved rows as numbered, attributable snippets for
// the generation step. Pure formatting; order is preserved.
func BuildContext(rows []models.RetrievedRow) string {
	parts := make([]string, 0, len(rows))
	for i, row := range rows {
		parts = append(parts, fmt.Sprintf("[%d] URL: %s\nSection: %s\nText: %s",
			i+1, row.URL, row.Section, row.Content))
	}
	return strings.Join(parts, "\n\n")
}
