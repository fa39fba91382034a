package handlers

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Brownie44l1/classify-ui/internal/model"
)

var pngDataURL = "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("\x89PNG\r\n\x1a\nfake"))

func newTestHandler(t *testing.T, backend http.HandlerFunc) *Handler {
	t.Helper()
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	h, err := NewHandler(model.NewClient(srv.URL, 5*time.Second), 8, 1<<20)
	require.NoError(t, err)
	return h
}

func successBackend(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/remote.png" {
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("remote-bytes"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(model.PredictResponse{
		ProcessedImage: pngDataURL,
		Predictions: []model.Prediction{
			{ClassID: 0, ClassName: "cat", Confidence: 0.93, BBox: [4]float64{1, 2, 3, 4}},
		},
	})
}

func uploadRequest(t *testing.T, field string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile(field, "cat.png")
	require.NoError(t, err)
	part.Write([]byte("image-bytes"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func withSession(req *http.Request, cookies []*http.Cookie) *http.Request {
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req
}

func getState(t *testing.T, h *Handler, cookies []*http.Cookie) model.ViewState {
	t.Helper()
	rec := httptest.NewRecorder()
	h.State(rec, withSession(httptest.NewRequest(http.MethodGet, "/api/state", nil), cookies))
	require.Equal(t, http.StatusOK, rec.Code)

	var s model.ViewState
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&s))
	return s
}

func upload(t *testing.T, h *Handler) []*http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	h.Upload(rec, uploadRequest(t, "file"))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	require.Eventually(t, func() bool {
		return !getState(t, h, cookies).IsLoading
	}, 5*time.Second, 10*time.Millisecond)
	return cookies
}

func TestIndexIdle(t *testing.T) {
	h := newTestHandler(t, successBackend)

	rec := httptest.NewRecorder()
	h.Index(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Choose an image to upload")
	assert.NotEmpty(t, rec.Result().Cookies())

	rec = httptest.NewRecorder()
	h.Index(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUploadFlow(t *testing.T) {
	h := newTestHandler(t, successBackend)
	cookies := upload(t, h)

	s := getState(t, h, cookies)
	assert.Equal(t, pngDataURL, s.ImageURL)
	require.Len(t, s.Predictions, 1)
	assert.Equal(t, "cat", s.Predictions[0].ClassName)
	assert.Empty(t, s.Error)

	rec := httptest.NewRecorder()
	h.Index(rec, withSession(httptest.NewRequest(http.MethodGet, "/", nil), cookies))
	page := rec.Body.String()
	assert.Contains(t, page, "93.00%")
	assert.Contains(t, page, `href="/download"`)

	rec = httptest.NewRecorder()
	h.Download(rec, withSession(httptest.NewRequest(http.MethodGet, "/download", nil), cookies))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="processed_image.png"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "\x89PNG\r\n\x1a\nfake", rec.Body.String())

	rec = httptest.NewRecorder()
	h.Preview(rec, withSession(httptest.NewRequest(http.MethodGet, "/preview", nil), cookies))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "\x89PNG\r\n\x1a\nfake", rec.Body.String())
}

func TestUploadBackendFailure(t *testing.T) {
	h := newTestHandler(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	cookies := upload(t, h)

	s := getState(t, h, cookies)
	assert.Empty(t, s.ImageURL)
	assert.Empty(t, s.Predictions)
	assert.Equal(t, "Failed to process image", s.Error)

	rec := httptest.NewRecorder()
	h.Download(rec, withSession(httptest.NewRequest(http.MethodGet, "/download", nil), cookies))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	h.Index(rec, withSession(httptest.NewRequest(http.MethodGet, "/", nil), cookies))
	assert.Contains(t, rec.Body.String(), "Failed to process image")
}

func TestDownloadRemoteImage(t *testing.T) {
	var remote string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/remote.png" {
			successBackend(w, r)
			return
		}
		json.NewEncoder(w).Encode(model.PredictResponse{ProcessedImage: remote})
	}))
	defer srv.Close()
	remote = srv.URL + "/remote.png"

	h, err := NewHandler(model.NewClient(srv.URL, 5*time.Second), 8, 1<<20)
	require.NoError(t, err)
	cookies := upload(t, h)

	rec := httptest.NewRecorder()
	h.Download(rec, withSession(httptest.NewRequest(http.MethodGet, "/download", nil), cookies))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "remote-bytes", rec.Body.String())
}

func TestUploadRejectsBadRequests(t *testing.T) {
	h := newTestHandler(t, successBackend)

	rec := httptest.NewRecorder()
	h.Upload(rec, httptest.NewRequest(http.MethodGet, "/upload", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = httptest.NewRecorder()
	h.Upload(rec, uploadRequest(t, "image"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSessionsAreIsolated(t *testing.T) {
	h := newTestHandler(t, successBackend)
	cookies := upload(t, h)
	require.Len(t, getState(t, h, cookies).Predictions, 1)

	other := getState(t, h, nil)
	assert.Empty(t, other.Predictions)
	assert.Empty(t, other.ImageURL)
}

func TestHealth(t *testing.T) {
	h := newTestHandler(t, successBackend)
	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
}
