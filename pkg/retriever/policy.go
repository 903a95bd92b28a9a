package retriever

import (
	"strings"

	"github.com/mtessier/ircc-rag/internal/models"
)

// TopicPolicy narrows retrieval for a known query topic. Vector similarity
// alone conflates near-duplicate government forms across unrelated programs;
// when a trigger keyword appears in the query, candidates are restricted to
// sources whose URL contains one of the allowed identifiers.
type TopicPolicy struct {
	Name     string
	Triggers []string // case-insensitive substrings of the query
	Allow    []string // URL identifiers kept when the policy triggers
	Fallback string   // URL identifier used when Allow removes every candidate
}

func (p TopicPolicy) Matches(query string) bool {
	q := strings.ToLower(query)
	for _, trigger := range p.Triggers {
		if strings.Contains(q, trigger) {
			return true
		}
	}
	return false
}

// Apply restricts rows to the allow set, preserving order. If that eliminates
// every candidate it falls back to the topic-canonical source instead of
// returning nothing.
func (p TopicPolicy) Apply(rows []models.RetrievedRow) []models.RetrievedRow {
	filtered := filterByIdentifiers(rows, p.Allow)
	if len(filtered) == 0 && p.Fallback != "" {
		filtered = filterByIdentifiers(rows, []string{p.Fallback})
	}
	return filtered
}

func filterByIdentifiers(rows []models.RetrievedRow, identifiers []string) []models.RetrievedRow {
	var kept []models.RetrievedRow
	for _, row := range rows {
		url := strings.ToLower(row.URL)
		for _, id := range identifiers {
			if strings.Contains(url, id) {
				kept = append(kept, row)
				break
			}
		}
	}
	return kept
}

// DefaultPolicies covers the work-permit application package (IMM 1295 and
// its supporting forms), the one topic where cross-program leakage was
// observed in practice.
func DefaultPolicies() []TopicPolicy {
	return []TopicPolicy{
		{
			Name:     "imm1295-work-permit",
			Triggers: []string{"imm1295", "imm 1295"},
			Allow: []string{
				"guide-5487",
				"imm1295",
				"imm5488", // checklist
				"imm5707",
				"imm5409",
				"imm5476",
				"imm5475",
			},
			Fallback: "guide-5487",
		},
	}
}

// DefaultExcludedURLs lists pure navigation/index pages that rank well on
// similarity but carry no answerable content.
func DefaultExcludedURLs() []string {
	return []string{
		"https://www.canada.ca/en/immigration-refugees-citizenship/services/application/application-forms-guides.html",
	}
}
