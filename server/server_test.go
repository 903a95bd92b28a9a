package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtessier/ircc-rag/internal/models"
)

type fakeRetriever struct {
	rows []models.RetrievedRow
	err  error
}

func (f *fakeRetriever) Retrieve(_ context.Context, _ string, _ int) ([]models.RetrievedRow, error) {
	return f.rows, f.err
}

type fakeAnswerer struct {
	answer      string
	err         error
	lastContext string
}

func (f *fakeAnswerer) Answer(_ context.Context, _, sourceContext string) (string, error) {
	f.lastContext = sourceContext
	return f.answer, f.err
}

func newTestServer(retriever *fakeRetriever, engine *fakeAnswerer) *httptest.Server {
	return httptest.NewServer(New(retriever, engine, nil).Handler())
}

func postChat(t *testing.T, ts *httptest.Server, question string) *http.Response {
	t.Helper()
	body, err := json.Marshal(ChatRequest{Question: question})
	require.NoError(t, err)

	resp, err := http.Post(ts.URL+"/chat", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	return resp
}

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer(&fakeRetriever{}, &fakeAnswerer{})
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestChatAnswersWithRetrievedContext(t *testing.T) {
	retriever := &fakeRetriever{rows: []models.RetrievedRow{
		{URL: "https://canada.ca/guide-5487.html", Section: "Fees", Content: "The fee is 155 dollars."},
	}}
	engine := &fakeAnswerer{answer: "The processing fee is 155 dollars."}

	ts := newTestServer(retriever, engine)
	defer ts.Close()

	resp := postChat(t, ts, "How much does it cost?")
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var chatResp ChatResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&chatResp))
	assert.Equal(t, "The processing fee is 155 dollars.", chatResp.Answer)

	// The engine must see the numbered source block, not raw rows.
	assert.Contains(t, engine.lastContext, "[1] URL: https://canada.ca/guide-5487.html")
	assert.Contains(t, engine.lastContext, "Section: Fees")
}

func TestChatEmptyQuestion(t *testing.T) {
	ts := newTestServer(&fakeRetriever{}, &fakeAnswerer{})
	defer ts.Close()

	resp := postChat(t, ts, "   ")
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var chatResp ChatResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&chatResp))
	assert.Equal(t, "Please ask a question.", chatResp.Answer)
}

func TestChatRejectsGet(t *testing.T) {
	ts := newTestServer(&fakeRetriever{}, &fakeAnswerer{})
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/chat")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestChatInvalidBody(t *testing.T) {
	ts := newTestServer(&fakeRetriever{}, &fakeAnswerer{})
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/chat", "application/json", bytes.NewReader([]byte("{not json")))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestChatRetrievalFailure(t *testing.T) {
	ts := newTestServer(&fakeRetriever{err: errors.New("database down")}, &fakeAnswerer{})
	defer ts.Close()

	resp := postChat(t, ts, "Am I eligible?")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}
