// handler.go

package storage

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-chi/chi/v5"

	"github.com/grigoryblack/friendly-reminder/internal/config"
	"github.com/grigoryblack/friendly-reminder/internal/core"
)

var allowedImageTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/jpg":  {},
	"image/png":  {},
	"image/gif":  {},
	"image/webp": {},
}

type Handler struct {
	client  Client
	maxSize int64
}

func NewHandler(client Client, cfg config.UploadConfig) *Handler {
	return &Handler{
		client:  client,
		maxSize: cfg.MaxSizeBytes,
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Group(func(r chi.Router) {
		r.Use(authenticator)
		r.Post("/upload", h.Upload)
	})

	// The proxy is unauthenticated so <img> tags can load stored images.
	r.Get("/image-proxy", h.ImageProxy)
}

func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxSize+1)

	if err := r.ParseMultipartForm(h.maxSize); err != nil {
		core.JSONError(w, core.BadRequestError(
			"File too large. Maximum size is 5MB.",
		))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		core.JSONError(w, core.BadRequestError("No file provided"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		core.InternalServerError(w, fmt.Errorf("read upload: %w", err))
		return
	}

	if int64(len(data)) > h.maxSize {
		core.JSONError(w, core.BadRequestError(
			"File too large. Maximum size is 5MB.",
		))
		return
	}

	mtype := mimetype.Detect(data)
	if _, ok := allowedImageTypes[mtype.String()]; !ok {
		core.JSONError(w, core.BadRequestError(
			"Invalid file type. Only images are allowed.",
		))
		return
	}

	ext := strings.TrimPrefix(path.Ext(header.Filename), ".")
	if ext == "" {
		ext = strings.TrimPrefix(mtype.Extension(), ".")
	}

	random, err := core.GenerateSecureToken(8)
	if err != nil {
		core.InternalServerError(w, fmt.Errorf("generate filename: %w", err))
		return
	}

	filename := fmt.Sprintf("%d-%s.%s", time.Now().UnixMilli(), random, ext)

	url, err := h.client.Upload(r.Context(), filename, data)
	if err != nil {
		core.InternalServerError(w, fmt.Errorf("upload to store: %w", err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck // best-effort response write
	_ = json.NewEncoder(w).Encode(UploadResponse{
		Success:  true,
		URL:      url,
		Filename: filename,
		Size:     int64(len(data)),
		Type:     mtype.String(),
	})
}

func (h *Handler) ImageProxy(w http.ResponseWriter, r *http.Request) {
	url := r.URL.Query().Get("url")
	if url == "" {
		core.JSONError(w, core.BadRequestError("URL parameter is required"))
		return
	}

	data, err := h.client.Fetch(r.Context(), url)
	if err != nil {
		core.InternalServerError(w, fmt.Errorf("proxy image: %w", err))
		return
	}

	contentType := mimetype.Detect(data).String()

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=31536000")
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck // best-effort response write
	_, _ = w.Write(data)
}

type UploadResponse struct {
	Success  bool   `json:"success"`
	URL      string `json:"url"`
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
	Type     string `json:"type"`
}
