package handlers

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devonochie/academia-ai/api/config"
	"github.com/devonochie/academia-ai/api/services"
)

type stubProvider struct {
	reply string
	err   error
}

func (s *stubProvider) GenerateText(ctx context.Context, prompt, systemPrompt string, params services.SamplingParams) (string, error) {
	return s.reply, s.err
}

func (s *stubProvider) GenerateJSON(ctx context.Context, prompt, systemPrompt string, params services.SamplingParams) (string, error) {
	return s.reply, s.err
}

func (s *stubProvider) GetProviderName() string {
	return "stub"
}

func newTestRouter(provider services.AIProvider) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{MaxUploadSize: 10 * 1024 * 1024}
	h := New(nil, cfg, provider)

	router := gin.New()
	router.POST("/api/paraphrase", h.ParaphraseContent)
	router.POST("/api/paraphrase/batch", h.BatchParaphrase)
	router.POST("/api/paraphrase/document", h.ParaphraseDocument)
	return router
}

func postJSON(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestParaphraseContentOK(t *testing.T) {
	provider := &stubProvider{reply: "A fast dark fox leaps above the sleepy canine."}
	router := newTestRouter(provider)

	w := postJSON(router, "/api/paraphrase", `{"text": "The quick brown fox jumps over the lazy dog."}`)
	require.Equal(t, http.StatusOK, w.Code)

	var result services.ParaphraseResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, provider.reply, result.Text)
	assert.True(t, result.Success)
	assert.Equal(t, 1, result.Attempts)
	assert.Less(t, result.PlagiarismScore, 80)
}

func TestParaphraseContentRejectsEmptyText(t *testing.T) {
	router := newTestRouter(&stubProvider{reply: "unused"})

	for _, body := range []string{`{"text": ""}`, `{"text": "   "}`, `{}`} {
		w := postJSON(router, "/api/paraphrase", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, "body %s", body)
		assert.Contains(t, w.Body.String(), "Text must be a non-empty string")
	}
}

func TestParaphraseContentRejectsWrongType(t *testing.T) {
	router := newTestRouter(&stubProvider{reply: "unused"})

	w := postJSON(router, "/api/paraphrase", `{"text": 42}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestParaphraseContentProviderFailure(t *testing.T) {
	provider := &stubProvider{err: assert.AnError}
	router := newTestRouter(provider)

	w := postJSON(router, "/api/paraphrase", `{"text": "Some text worth rewriting.", "maxAttempts": 1}`)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "Failed to generate valid paraphrase")
}

func TestBatchParaphraseValidation(t *testing.T) {
	router := newTestRouter(&stubProvider{reply: "unused"})

	for _, body := range []string{`{"texts": []}`, `{"texts": ["ok", "  "]}`, `{}`} {
		w := postJSON(router, "/api/paraphrase/batch", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, "body %s", body)
		assert.Contains(t, w.Body.String(), "Texts must be a non-empty array")
	}
}

func TestBatchParaphraseStreamsProgress(t *testing.T) {
	provider := &stubProvider{reply: "A fast dark fox leaps above the sleepy canine."}
	router := newTestRouter(provider)

	w := postJSON(router, "/api/paraphrase/batch", `{"texts": ["The quick brown fox jumps over the lazy dog.", "The quick brown fox jumps over the lazy dog again."]}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/x-ndjson", w.Header().Get("Content-Type"))

	var lines []string
	scanner := bufio.NewScanner(bytes.NewReader(w.Body.Bytes()))
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	require.Len(t, lines, 3, "two progress lines plus a summary line")

	var first services.BatchProgress
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, 50, first.Progress)
	assert.Equal(t, 1, first.Completed)
	assert.Equal(t, 2, first.Total)

	var summary struct {
		Success bool                        `json:"success"`
		Results []services.ParaphraseResult `json:"results"`
		Count   int                         `json:"count"`
	}
	require.NoError(t, json.Unmarshal([]byte(lines[2]), &summary))
	assert.True(t, summary.Success)
	assert.Equal(t, 2, summary.Count)
	require.Len(t, summary.Results, 2)
	assert.Equal(t, provider.reply, summary.Results[0].Text)
}

func TestParaphraseDocumentTxtUpload(t *testing.T) {
	provider := &stubProvider{reply: "A fast dark fox leaps above the sleepy canine."}
	router := newTestRouter(provider)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "notes.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("The quick brown fox jumps over the lazy dog."))
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("tone", "casual"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/paraphrase/document", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		OriginalFilename string `json:"originalFilename"`
		Text             string `json:"text"`
		Success          bool   `json:"success"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "notes.txt", resp.OriginalFilename)
	assert.Equal(t, provider.reply, resp.Text)
	assert.True(t, resp.Success)
}

func TestParaphraseDocumentRejectsUnsupportedType(t *testing.T) {
	router := newTestRouter(&stubProvider{reply: "unused"})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "image.png")
	require.NoError(t, err)
	_, err = part.Write([]byte{0x89, 0x50, 0x4e, 0x47})
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/paraphrase/document", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid file type")
}

func TestParaphraseDocumentRequiresFile(t *testing.T) {
	router := newTestRouter(&stubProvider{reply: "unused"})

	req := httptest.NewRequest(http.MethodPost, "/api/paraphrase/document", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "No file uploaded")
}
