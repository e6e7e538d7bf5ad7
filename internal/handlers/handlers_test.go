package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lehigh-university-libraries/labelaudit/internal/extract"
	"github.com/lehigh-university-libraries/labelaudit/internal/matcher"
	"github.com/lehigh-university-libraries/labelaudit/internal/models"
	"github.com/lehigh-university-libraries/labelaudit/internal/storage"
	"github.com/lehigh-university-libraries/labelaudit/internal/verify"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	h := New(storage.NewMemory(), matcher.New(matcher.DefaultOptions()),
		extract.New(extract.Options{}, nil), verify.Options{Concurrency: 2})
	srv := httptest.NewServer(h.Routes())
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHealthcheck(t *testing.T) {
	srv := newServer(t)
	resp, err := http.Get(srv.URL + "/healthcheck")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMatchValue(t *testing.T) {
	srv := newServer(t)
	value := "INV-001"
	resp := postJSON(t, srv.URL+"/api/match", models.MatchRequest{
		Value: &value,
		Field: "Invoice Number",
		Text:  "Invoice Number: inv-001",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out models.MatchResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.NotNil(t, out.Verdict)
	assert.Equal(t, matcher.StatusFoundCaseInsensitive, out.Verdict.Status)
}

func TestMatchRecord(t *testing.T) {
	srv := newServer(t)
	resp := postJSON(t, srv.URL+"/api/match", map[string]any{
		"record": map[string]any{"Seller": map[string]any{"Name": "ACME"}, "Note": nil},
		"text":   "Sold by ACME",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out models.MatchResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Len(t, out.Rows, 2)
	statuses := map[string]matcher.Status{}
	for _, row := range out.Rows {
		statuses[row.FieldPath] = row.Status
	}
	assert.Equal(t, matcher.StatusFound, statuses["Seller.Name"])
	assert.Equal(t, matcher.StatusNA, statuses["Note"])
}

func TestMatchBadRequests(t *testing.T) {
	srv := newServer(t)

	resp := postJSON(t, srv.URL+"/api/match", map[string]any{"text": "x"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = postJSON(t, srv.URL+"/api/match", map[string]any{"value": "a", "record": map[string]any{"a": 1}, "text": "x"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	r, err := http.Post(srv.URL+"/api/match", "application/json", strings.NewReader("{"))
	require.NoError(t, err)
	defer r.Body.Close()
	assert.Equal(t, http.StatusBadRequest, r.StatusCode)
}

func TestRunLifecycle(t *testing.T) {
	srv := newServer(t)
	text := "Invoice Number: INV-001\nTotal 10.00"
	resp := postJSON(t, srv.URL+"/api/runs", map[string]any{
		"records": "api",
		"entries": []map[string]any{
			{"id": "a", "record": map[string]any{"Invoice Number": "INV-001", "Total": "10.00"}, "text": text},
			{"id": "b", "record": map[string]any{"Invoice Number": "INV-002"}},
		},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created models.Run
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	require.NotEmpty(t, created.ID)
	assert.Equal(t, 2, created.Summary.Records)
	assert.Equal(t, 1, created.Summary.Verified)
	assert.Equal(t, 1, created.Summary.WithMissing)
	require.NotNil(t, created.Report)
	assert.Equal(t, []string{"b"}, created.Report.TextUnavailable)

	get, err := http.Get(srv.URL + "/api/runs/" + created.ID)
	require.NoError(t, err)
	defer get.Body.Close()
	require.Equal(t, http.StatusOK, get.StatusCode)
	var fetched models.Run
	require.NoError(t, json.NewDecoder(get.Body).Decode(&fetched))
	assert.Equal(t, created.ID, fetched.ID)
	assert.Len(t, fetched.Report.Rows, 3)

	list, err := http.Get(srv.URL + "/api/runs")
	require.NoError(t, err)
	defer list.Body.Close()
	var runs []models.Run
	require.NoError(t, json.NewDecoder(list.Body).Decode(&runs))
	require.Len(t, runs, 1)
	assert.Nil(t, runs[0].Report)
}

func TestRunErrors(t *testing.T) {
	srv := newServer(t)

	resp := postJSON(t, srv.URL+"/api/runs", map[string]any{"entries": []any{}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = postJSON(t, srv.URL+"/api/runs", map[string]any{"entries": []map[string]any{{"record": map[string]any{}}}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	get, err := http.Get(srv.URL + "/api/runs/missing")
	require.NoError(t, err)
	defer get.Body.Close()
	assert.Equal(t, http.StatusNotFound, get.StatusCode)
}

func upload(t *testing.T, url, name string, data []byte) *http.Response {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	resp, err := http.Post(url, mw.FormDataContentType(), &body)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestExtractUpload(t *testing.T) {
	srv := newServer(t)

	resp := upload(t, srv.URL+"/api/extract", "invoice.txt", []byte("Invoice INV-001"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var res extract.Result
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	assert.Equal(t, "Invoice INV-001", res.Text)
	assert.Equal(t, extract.MethodText, res.Method)
	assert.Equal(t, "invoice.txt", res.Path)

	resp = upload(t, srv.URL+"/api/extract", "invoice.exe", []byte("x"))
	assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)

	resp = upload(t, srv.URL+"/api/extract", "scan.png", []byte("x"))
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}
