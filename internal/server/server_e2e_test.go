package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"

	"github.com/Dipak-sahani/brainlocker/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newE2EServer(t *testing.T) (*store.Store, *httptest.Server) {
	t.Helper()
	cfg := store.DefaultConfig()
	cfg.DataDir = t.TempDir()

	s, err := store.New(cfg)
	require.NoError(t, err)

	httpServer := httptest.NewServer(New(s, 0, nil).Handler())
	t.Cleanup(func() {
		httpServer.Close()
		_ = s.Close()
	})

	return s, httpServer
}

func sendJSON(t *testing.T, client *http.Client, method, url string, body any) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req, err := http.NewRequest(method, url, bytes.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	require.NoError(t, err)
	return resp
}

func postJSON(t *testing.T, client *http.Client, url string, body any) *http.Response {
	t.Helper()
	return sendJSON(t, client, http.MethodPost, url, body)
}

func doRequest(t *testing.T, client *http.Client, method, url string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, nil)
	require.NoError(t, err)
	resp, err := client.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeJSON[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestHealthAssignsRequestID(t *testing.T) {
	_, ts := newE2EServer(t)

	resp := doRequest(t, ts.Client(), http.MethodGet, ts.URL+"/health")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	body := decodeJSON[map[string]any](t, resp)
	assert.Equal(t, "ok", body["status"])

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/health", nil)
	require.NoError(t, err)
	req.Header.Set("X-Request-ID", "caller-chosen")
	resp, err = ts.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "caller-chosen", resp.Header.Get("X-Request-ID"))
}

func TestQuestionLifecycleE2E(t *testing.T) {
	_, ts := newE2EServer(t)
	client := ts.Client()

	resp := postJSON(t, client, ts.URL+"/questions", map[string]any{
		"topic":    "Go",
		"question": "What is a goroutine?",
		"answer":   "A lightweight thread managed by the runtime",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeJSON[store.Question](t, resp)
	require.NotZero(t, created.ID)
	assert.Equal(t, "Go", created.TopicName)
	assert.NotNil(t, created.CreatedAt)

	resp = postJSON(t, client, ts.URL+"/questions", map[string]any{
		"topic":    "Go",
		"question": "What is a channel?",
		"answer":   "A typed conduit",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = doRequest(t, client, http.MethodGet, ts.URL+"/questions?topic=Go&q=THREAD")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	found := decodeJSON[[]store.Question](t, resp)
	require.Len(t, found, 1)
	assert.Equal(t, created.ID, found[0].ID)

	resp = doRequest(t, client, http.MethodGet, ts.URL+"/questions?sort=oldest")
	ordered := decodeJSON[[]store.Question](t, resp)
	require.Len(t, ordered, 2)
	assert.Equal(t, created.ID, ordered[0].ID)

	idURL := ts.URL + "/questions/" + strconv.FormatInt(created.ID, 10)

	resp = doRequest(t, client, http.MethodDelete, idURL)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doRequest(t, client, http.MethodGet, idURL)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp = doRequest(t, client, http.MethodDelete, idURL)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp = doRequest(t, client, http.MethodGet, ts.URL+"/questions/abc")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestAddQuestionValidationE2E(t *testing.T) {
	_, ts := newE2EServer(t)

	resp := postJSON(t, ts.Client(), ts.URL+"/questions", map[string]any{
		"topic":    "Go",
		"question": "   ",
		"answer":   "x",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decodeJSON[map[string]string](t, resp)
	assert.Equal(t, "Please enter a question", body["error"])

	req, err := http.NewRequest(http.MethodPost, ts.URL+"/questions", bytes.NewBufferString("{not json"))
	require.NoError(t, err)
	resp, err = ts.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestTopicsE2E(t *testing.T) {
	s, ts := newE2EServer(t)
	client := ts.Client()

	_, err := s.AddQuestion(store.AddQuestionParams{TopicName: "Go", Question: "Q", Answer: "A"})
	require.NoError(t, err)

	resp := postJSON(t, client, ts.URL+"/topics", map[string]any{"name": " Biology "})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	topic := decodeJSON[store.Topic](t, resp)
	assert.Equal(t, "Biology", topic.Name)

	resp = postJSON(t, client, ts.URL+"/topics", map[string]any{"name": "Biology"})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	resp = postJSON(t, client, ts.URL+"/topics", map[string]any{"name": ""})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = doRequest(t, client, http.MethodGet, ts.URL+"/topics")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	topics := decodeJSON[[]topicView](t, resp)

	counts := map[string]int{}
	for _, tv := range topics {
		counts[tv.Name] = tv.Total
	}
	assert.Equal(t, 1, counts["Go"])
	assert.Contains(t, counts, "Biology")
	assert.Contains(t, counts, "General")
}

func TestBulkImportE2E(t *testing.T) {
	_, ts := newE2EServer(t)
	client := ts.Client()
	text := "Q1: What is a closure?\nA1: A function plus its scope\nQ2: What is hoisting?\nQ3: What is NaN?\nA3: Not a number"

	resp := postJSON(t, client, ts.URL+"/import/preview", map[string]any{"text": text})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	preview := decodeJSON[previewResponse](t, resp)
	assert.Equal(t, 2, preview.Valid)
	assert.Equal(t, 1, preview.Invalid)
	require.Len(t, preview.Items, 3)
	assert.Equal(t, "Missing answer", preview.Items[1].Error)

	resp = postJSON(t, client, ts.URL+"/import", map[string]any{"topic": "JavaScript", "text": text})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	result := decodeJSON[map[string]int](t, resp)
	assert.Equal(t, 2, result["success"])
	assert.Equal(t, 0, result["failed"])
	assert.Equal(t, 1, result["skipped"])

	resp = postJSON(t, client, ts.URL+"/import", map[string]any{"topic": "JavaScript", "text": "Q1: lonely"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = postJSON(t, client, ts.URL+"/import", map[string]any{"topic": "", "text": text})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decodeJSON[map[string]string](t, resp)
	assert.Equal(t, "Please select or enter a topic name", body["error"])

	resp = doRequest(t, client, http.MethodGet, ts.URL+"/stats")
	stats := decodeJSON[store.Stats](t, resp)
	assert.Equal(t, 2, stats.TotalQuestions)
}

func TestProfileE2E(t *testing.T) {
	_, ts := newE2EServer(t)
	client := ts.Client()

	resp := doRequest(t, client, http.MethodGet, ts.URL+"/profile")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp = sendJSON(t, client, http.MethodPut, ts.URL+"/profile", map[string]any{
		"name": "Asha", "age": 19, "className": "CS-2", "email": "asha@example.com",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	first := decodeJSON[store.User](t, resp)

	resp = sendJSON(t, client, http.MethodPut, ts.URL+"/profile", map[string]any{
		"name": "Asha K", "age": 20, "email": "asha@example.com",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	second := decodeJSON[store.User](t, resp)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Asha K", second.Name)
	assert.Equal(t, 20, second.Age)

	resp = sendJSON(t, client, http.MethodPut, ts.URL+"/profile", map[string]any{"name": "Asha", "age": 200, "email": "a@b.c"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = doRequest(t, client, http.MethodDelete, ts.URL+"/profile")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doRequest(t, client, http.MethodGet, ts.URL+"/profile")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestExportE2E(t *testing.T) {
	s, ts := newE2EServer(t)
	client := ts.Client()

	_, err := s.AddQuestion(store.AddQuestionParams{TopicName: "Go", Question: "What is defer?", Answer: "Runs at return"})
	require.NoError(t, err)
	_, err = s.AddQuestion(store.AddQuestionParams{TopicName: "React", Question: "What is JSX?", Answer: "Syntax"})
	require.NoError(t, err)

	resp := doRequest(t, client, http.MethodGet, ts.URL+"/export")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := decodeJSON[store.ExportData](t, resp)
	assert.Len(t, data.Questions, 2)

	resp = doRequest(t, client, http.MethodGet, ts.URL+"/export?format=text&topic=Go")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	raw, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Question: What is defer?")
	assert.NotContains(t, string(raw), "JSX")

	resp = doRequest(t, client, http.MethodGet, ts.URL+"/export?format=pdf")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestStorageFailureIsGeneric500(t *testing.T) {
	cfg := store.DefaultConfig()
	cfg.DataDir = t.TempDir()
	s, err := store.New(cfg)
	require.NoError(t, err)
	// A directory where the database file should be makes every open fail.
	require.NoError(t, os.MkdirAll(s.Path(), 0o755))

	ts := httptest.NewServer(New(s, 0, nil).Handler())
	t.Cleanup(ts.Close)

	resp := doRequest(t, ts.Client(), http.MethodGet, ts.URL+"/stats")
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	body := decodeJSON[map[string]string](t, resp)
	assert.Equal(t, "internal error", body["error"])
}
