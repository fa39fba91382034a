package main

import (
	"log"
	"net/http"

	"github.com/Brownie44l1/classify-ui/internal/config"
	"github.com/Brownie44l1/classify-ui/internal/handlers"
	"github.com/Brownie44l1/classify-ui/internal/model"
)

func enableCORS(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}

func main() {
	cfg := config.Load()

	client := model.NewClient(cfg.BackendURL, cfg.RequestTimeout)

	handler, err := handlers.NewHandler(client, cfg.SessionCapacity, cfg.MaxUploadBytes)
	if err != nil {
		log.Fatalf("Failed to initialize handlers: %v", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", handler.Index)
	mux.HandleFunc("/upload", handler.Upload)
	mux.HandleFunc("/download", handler.Download)
	mux.HandleFunc("/preview", handler.Preview)
	mux.HandleFunc("/api/state", enableCORS(handler.State))
	mux.HandleFunc("/health", enableCORS(handler.Health))

	log.Printf("Server starting on port %s", cfg.Port)
	log.Printf("Backend: %s (timeout %v)", client.BaseURL, cfg.RequestTimeout)
	log.Println("Endpoints:")
	log.Println("  GET  /           - Upload page")
	log.Println("  POST /upload     - Submit an image (form field 'file')")
	log.Println("  GET  /download   - Save the processed image")
	log.Println("  GET  /preview    - Processed image thumbnail")
	log.Println("  GET  /api/state  - Current view state")
	log.Println("  GET  /health     - Health check")

	if err := http.ListenAndServe(":"+cfg.Port, mux); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
