package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/Brownie44l1/classify-ui/internal/model"
	"github.com/Brownie44l1/classify-ui/internal/ui"
)

const sessionCookie = "classify_session"

// Backend is what the handlers need from the classification service.
type Backend interface {
	ui.Predictor
	FetchImage(ctx context.Context, url string) ([]byte, string, error)
}

// Handler serves the upload page and keeps one controller per browser session.
type Handler struct {
	backend        Backend
	maxUploadBytes int64

	mu       sync.Mutex
	sessions *lru.Cache[string, *ui.Controller]
}

// NewHandler returns a Handler holding at most sessionCapacity sessions.
func NewHandler(backend Backend, sessionCapacity int, maxUploadBytes int64) (*Handler, error) {
	sessions, err := lru.New[string, *ui.Controller](sessionCapacity)
	if err != nil {
		return nil, fmt.Errorf("failed to create session store: %w", err)
	}

	return &Handler{
		backend:        backend,
		maxUploadBytes: maxUploadBytes,
		sessions:       sessions,
	}, nil
}

// controller returns the caller's controller, starting a new session when the
// cookie is missing, malformed or was evicted.
func (h *Handler) controller(w http.ResponseWriter, r *http.Request) *ui.Controller {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := ""
	if c, err := r.Cookie(sessionCookie); err == nil {
		if parsed, err := uuid.Parse(c.Value); err == nil {
			id = parsed.String()
		}
	}

	if id != "" {
		if ctrl, ok := h.sessions.Get(id); ok {
			return ctrl
		}
	} else {
		id = uuid.New().String()
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	ctrl := ui.NewController(h.backend)
	if evicted := h.sessions.Add(id, ctrl); evicted {
		log.Printf("Session store full, evicted least recently used session")
	}
	return ctrl
}

// Health reports that the front-end itself is up.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
}

// Index renders the page for the caller's session.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	state := h.controller(w, r).State()

	var buf bytes.Buffer
	if err := ui.RenderHTML(&buf, state, ui.PageOptions{
		ImageSrc:     "/preview?" + cacheBuster(),
		DownloadHref: "/download",
	}); err != nil {
		log.Printf("Render error: %v", err)
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(buf.Bytes())
}

// Upload starts an upload of the "file" form field and redirects back to the page.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile(model.FileField)
	if err != nil {
		http.Error(w, "No image file provided. Use 'file' as the form field name", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "Failed to read uploaded file", http.StatusBadRequest)
		return
	}

	log.Printf("Received file: %s, size: %d bytes", header.Filename, len(data))

	ctrl := h.controller(w, r)
	started := time.Now()
	done := ctrl.Start(context.WithoutCancel(r.Context()), header.Filename, data)
	go func() {
		<-done
		s := ctrl.State()
		if s.Error != "" {
			log.Printf("Upload %s failed after %v: %s", header.Filename, time.Since(started), s.Error)
			return
		}
		log.Printf("Upload %s finished after %v: %d predictions", header.Filename, time.Since(started), len(s.Predictions))
	}()

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Download is the Save action: it serves the processed image as an attachment.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	data, contentType, ok := h.currentImage(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", ui.SaveFilename))
	w.Write(data)
}

// Preview serves a display-sized copy of the processed image.
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	data, contentType, ok := h.currentImage(w, r)
	if !ok {
		return
	}

	thumb, resized, err := ui.Thumbnail(data, ui.PreviewHeight)
	if err != nil {
		log.Printf("Thumbnail error: %v", err)
		http.Error(w, "Failed to build preview", http.StatusInternalServerError)
		return
	}
	if resized {
		contentType = "image/png"
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "no-store")
	w.Write(thumb)
}

// State returns the session's view state as JSON.
func (h *Handler) State(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s := h.controller(w, r).State()
	if s.Predictions == nil {
		s.Predictions = []model.Prediction{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s)
}

// currentImage resolves the session's processed image to bytes. It writes the
// error response itself and reports ok=false when there is nothing to serve.
func (h *Handler) currentImage(w http.ResponseWriter, r *http.Request) ([]byte, string, bool) {
	imageURL := h.controller(w, r).State().ImageURL
	if imageURL == "" {
		http.Error(w, "No processed image", http.StatusNotFound)
		return nil, "", false
	}

	if ui.IsDataURL(imageURL) {
		data, contentType, err := ui.DecodeImageURL(imageURL)
		if err != nil {
			log.Printf("Data URL error: %v", err)
			http.Error(w, "Processed image is not decodable", http.StatusBadGateway)
			return nil, "", false
		}
		return data, contentType, true
	}

	data, contentType, err := h.backend.FetchImage(r.Context(), imageURL)
	if err != nil {
		log.Printf("Image fetch error: %v", err)
		http.Error(w, "Failed to fetch processed image", http.StatusBadGateway)
		return nil, "", false
	}
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return data, contentType, true
}

func cacheBuster() string {
	return fmt.Sprintf("t=%d", time.Now().UnixNano())
}
