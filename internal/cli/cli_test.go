package cli

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Brownie44l1/classify-ui/internal/config"
	"github.com/Brownie44l1/classify-ui/internal/model"
)

func runCmd(t *testing.T, backendURL string, args ...string) (string, error) {
	t.Helper()
	stdout, _, err := runCmdSplit(t, backendURL, args...)
	return stdout, err
}

func runCmdSplit(t *testing.T, backendURL string, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCmd(config.Config{BackendURL: backendURL, RequestTimeout: 5 * time.Second})

	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeImage(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cat.png")
	require.NoError(t, os.WriteFile(path, []byte("image-bytes"), 0644))
	return path
}

func TestPredictPrintsPredictionsAndSaves(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(model.PredictResponse{
			ProcessedImage: "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("annotated")),
			Predictions: []model.Prediction{
				{ClassID: 15, ClassName: "cat", Confidence: 0.93, BBox: [4]float64{1, 2, 3, 4}},
				{ClassID: 16, ClassName: "dog", Confidence: 0.5},
			},
		})
	}))
	defer srv.Close()

	savePath := filepath.Join(t.TempDir(), "processed_image.png")
	out, err := runCmd(t, srv.URL, "predict", writeImage(t), "--save", savePath)
	require.NoError(t, err)

	assert.Contains(t, out, "cat")
	assert.Contains(t, out, "93.00%")
	assert.Contains(t, out, "50.00%")

	saved, err := os.ReadFile(savePath)
	require.NoError(t, err)
	assert.Equal(t, "annotated", string(saved))
}

func TestPredictFailureExitsWithMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	stdout, stderr, err := runCmdSplit(t, srv.URL, "predict", writeImage(t))
	require.Error(t, err)
	assert.Equal(t, "Failed to process image", err.Error())

	var shown *renderedError
	assert.True(t, errors.As(err, &shown))
	assert.Equal(t, 1, strings.Count(stdout, "Failed to process image"))
	assert.Contains(t, stdout, "Error: Failed to process image")
	assert.Empty(t, stderr)
}

func TestPredictMissingFile(t *testing.T) {
	_, stderr, err := runCmdSplit(t, "http://127.0.0.1:1", "predict", filepath.Join(t.TempDir(), "nope.png"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read image")
	assert.Empty(t, stderr)

	var shown *renderedError
	assert.False(t, errors.As(err, &shown))
}

func TestHealthCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"healthy"}`))
	}))
	defer srv.Close()

	out, err := runCmd(t, srv.URL, "health")
	require.NoError(t, err)
	assert.Contains(t, out, "healthy")
}
