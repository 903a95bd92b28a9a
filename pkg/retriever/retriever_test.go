package retriever

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtessier/ircc-rag/internal/models"
)

type fakeEmbedder struct {
	err   error
	calls int
}

func (f *fakeEmbedder) CreateEmbedding(_ context.Context, texts []string) ([][]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = []float32{1, 0, 0}
	}
	return vectors, nil
}

type fakeSearcher struct {
	rows     []models.RetrievedRow
	err      error
	gotLimit int
}

func (f *fakeSearcher) NearestChunks(_ context.Context, _ []float32, limit int) ([]models.RetrievedRow, error) {
	f.gotLimit = limit
	if f.err != nil {
		return nil, f.err
	}
	return f.rows, nil
}

func row(url, section string) models.RetrievedRow {
	return models.RetrievedRow{URL: url, Section: section, Content: "some chunk text"}
}

func newTestRetriever(config RetrieverConfig, searcher *fakeSearcher) *Retriever {
	return NewWithConfig(config, &fakeEmbedder{}, searcher)
}

func TestRetrieveOrderAndTopK(t *testing.T) {
	searcher := &fakeSearcher{rows: []models.RetrievedRow{
		row("https://canada.ca/a", "1"),
		row("https://canada.ca/b", "2"),
		row("https://canada.ca/c", "3"),
		row("https://canada.ca/d", "4"),
		row("https://canada.ca/e", "5"),
	}}
	r := newTestRetriever(RetrieverConfig{FetchK: 30}, searcher)

	rows, err := r.Retrieve(context.Background(), "how long is processing", 3)
	require.NoError(t, err)

	// Store order is distance order; truncation must preserve it.
	require.Len(t, rows, 3)
	assert.Equal(t, "https://canada.ca/a", rows[0].URL)
	assert.Equal(t, "https://canada.ca/b", rows[1].URL)
	assert.Equal(t, "https://canada.ca/c", rows[2].URL)
	assert.Equal(t, 30, searcher.gotLimit)
}

func TestRetrieveDefaultTopK(t *testing.T) {
	var stored []models.RetrievedRow
	for i := 0; i < 10; i++ {
		stored = append(stored, row("https://canada.ca/page", "s"))
	}
	r := newTestRetriever(RetrieverConfig{TopK: 4}, &fakeSearcher{rows: stored})

	rows, err := r.Retrieve(context.Background(), "question", 0)
	require.NoError(t, err)
	assert.Len(t, rows, 4)
}

func TestRetrieveDropsExcludedURLs(t *testing.T) {
	excluded := "https://www.canada.ca/en/immigration-refugees-citizenship/services/application/application-forms-guides.html"
	searcher := &fakeSearcher{rows: []models.RetrievedRow{
		row(excluded, "nav"), // best similarity rank, still dropped
		row("https://canada.ca/real-content", "Eligibility"),
	}}
	r := newTestRetriever(RetrieverConfig{}, searcher)

	rows, err := r.Retrieve(context.Background(), "question", 5)
	require.NoError(t, err)

	require.Len(t, rows, 1)
	assert.Equal(t, "https://canada.ca/real-content", rows[0].URL)
}

func TestRetrieveTopicAllowList(t *testing.T) {
	searcher := &fakeSearcher{rows: []models.RetrievedRow{
		row("https://canada.ca/guide-5487.html", "Intro"),
		row("https://canada.ca/study-permit-guide.html", "Intro"), // unrelated program
		row("https://canada.ca/forms/IMM5707e.pdf", "Page 1"),
	}}
	r := newTestRetriever(RetrieverConfig{}, searcher)

	rows, err := r.Retrieve(context.Background(), "What goes in the IMM 1295 application?", 10)
	require.NoError(t, err)

	require.Len(t, rows, 2)
	assert.Equal(t, "https://canada.ca/guide-5487.html", rows[0].URL)
	assert.Equal(t, "https://canada.ca/forms/IMM5707e.pdf", rows[1].URL)
}

func TestRetrieveAllowListFallback(t *testing.T) {
	// The allow set matches nothing, so the policy must fall back to the
	// canonical source instead of returning empty results.
	searcher := &fakeSearcher{rows: []models.RetrievedRow{
		row("https://canada.ca/unrelated-a.html", "1"),
		row("https://canada.ca/pilot-program-overview.html", "2"),
		row("https://canada.ca/unrelated-b.html", "3"),
	}}
	r := newTestRetriever(RetrieverConfig{
		Policies: []TopicPolicy{{
			Name:     "pilot",
			Triggers: []string{"pilot program"},
			Allow:    []string{"guide-0001", "imm0008"},
			Fallback: "pilot-program-overview",
		}},
	}, searcher)

	rows, err := r.Retrieve(context.Background(), "Who qualifies for the pilot program?", 10)
	require.NoError(t, err)

	require.Len(t, rows, 1)
	assert.Equal(t, "https://canada.ca/pilot-program-overview.html", rows[0].URL)
}

func TestRetrieveNoTriggerLeavesRowsAlone(t *testing.T) {
	searcher := &fakeSearcher{rows: []models.RetrievedRow{
		row("https://canada.ca/study-permit-guide.html", "Intro"),
		row("https://canada.ca/guide-5487.html", "Intro"),
	}}
	r := newTestRetriever(RetrieverConfig{}, searcher)

	rows, err := r.Retrieve(context.Background(), "how do I extend my study permit", 10)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestRetrieveErrors(t *testing.T) {
	t.Run("embedding failure", func(t *testing.T) {
		r := NewWithConfig(RetrieverConfig{}, &fakeEmbedder{err: errors.New("rate limited")}, &fakeSearcher{})
		_, err := r.Retrieve(context.Background(), "question", 5)
		assert.ErrorContains(t, err, "rate limited")
	})

	t.Run("store failure", func(t *testing.T) {
		r := newTestRetriever(RetrieverConfig{}, &fakeSearcher{err: errors.New("connection refused")})
		_, err := r.Retrieve(context.Background(), "question", 5)
		assert.ErrorContains(t, err, "connection refused")
	})
}

func TestTopicPolicyMatches(t *testing.T) {
	policy := DefaultPolicies()[0]

	assert.True(t, policy.Matches("Documents for IMM1295?"))
	assert.True(t, policy.Matches("what is imm 1295"))
	assert.False(t, policy.Matches("how do I renew my PR card"))
}
