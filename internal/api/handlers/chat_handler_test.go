package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAnswerer struct {
	gotQuestion string
	gotLimit    int
	reply       string
	calls       int
}

func (f *fakeAnswerer) Answer(ctx context.Context, question string, limit int) string {
	f.calls++
	f.gotQuestion = question
	f.gotLimit = limit
	return f.reply
}

func postQuery(t *testing.T, h *ChatHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/chat/query", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.QueryDocuments(rec, req)
	return rec
}

func TestQueryDocuments(t *testing.T) {
	fa := &fakeAnswerer{reply: "here you go"}
	h := NewChatHandler(fa)

	rec := postQuery(t, h, `{"query": "how do I install?", "n_results": 3}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var res queryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "here you go", res.Response)
	assert.Equal(t, "how do I install?", fa.gotQuestion)
	assert.Equal(t, 3, fa.gotLimit)
}

func TestQueryDocumentsDefaultsNResults(t *testing.T) {
	fa := &fakeAnswerer{reply: "ok"}
	h := NewChatHandler(fa)

	rec := postQuery(t, h, `{"query": "q"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, fa.gotLimit)
}

func TestQueryDocumentsRejectsEmptyQuery(t *testing.T) {
	fa := &fakeAnswerer{}
	h := NewChatHandler(fa)

	for _, body := range []string{`{}`, `{"query": "   "}`, `not json`} {
		rec := postQuery(t, h, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body: %s", body)
	}
	assert.Zero(t, fa.calls)
}

func TestQueryDocumentsRejectsOutOfRangeNResults(t *testing.T) {
	fa := &fakeAnswerer{}
	h := NewChatHandler(fa)

	for _, body := range []string{
		`{"query": "q", "n_results": -1}`,
		`{"query": "q", "n_results": 21}`,
	} {
		rec := postQuery(t, h, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body: %s", body)
	}
	assert.Zero(t, fa.calls)
}
