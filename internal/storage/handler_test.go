// handler_test.go

package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/grigoryblack/friendly-reminder/internal/config"
)

// Smallest valid 1x1 PNG.
var pngBytes = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a,
	0x00, 0x00, 0x00, 0x0d, 0x49, 0x48, 0x44, 0x52,
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4,
	0x89, 0x00, 0x00, 0x00, 0x0a, 0x49, 0x44, 0x41,
	0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00,
	0x00, 0x00, 0x00, 0x49, 0x45, 0x4e, 0x44, 0xae,
	0x42, 0x60, 0x82,
}

type stubClient struct {
	uploaded map[string][]byte
	fetched  []byte
}

func newStubClient() *stubClient {
	return &stubClient{uploaded: make(map[string][]byte)}
}

func (c *stubClient) Upload(
	_ context.Context,
	filename string,
	data []byte,
) (string, error) {
	c.uploaded[filename] = data
	return "https://cdn.example.com/" + filename, nil
}

func (c *stubClient) Fetch(_ context.Context, _ string) ([]byte, error) {
	return c.fetched, nil
}

func passthroughAuth(next http.Handler) http.Handler {
	return next
}

func newTestRouter(client Client, maxSize int64) chi.Router {
	handler := NewHandler(client, config.UploadConfig{MaxSizeBytes: maxSize})
	r := chi.NewRouter()
	handler.RegisterRoutes(r, passthroughAuth)
	return r
}

func multipartUpload(
	t *testing.T,
	r chi.Router,
	fieldName, filename string,
	content []byte,
) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(fieldName, filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func errorMessage(t *testing.T, body []byte) string {
	t.Helper()
	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		t.Fatalf("decode error envelope: %v", err)
	}
	return envelope.Error.Message
}

// ---------------------------------------------------------------------------
// Upload tests
// ---------------------------------------------------------------------------

func TestUpload_Success(t *testing.T) {
	client := newStubClient()
	r := newTestRouter(client, 5*1024*1024)

	rec := multipartUpload(t, r, "file", "avatar.png", pngBytes)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	// The upload endpoint answers with a flat body, not the data envelope.
	var resp UploadResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Success {
		t.Error("expected success=true")
	}
	if resp.Type != "image/png" {
		t.Errorf("expected image/png, got %q", resp.Type)
	}
	if resp.Size != int64(len(pngBytes)) {
		t.Errorf("expected size %d, got %d", len(pngBytes), resp.Size)
	}
	if !strings.HasSuffix(resp.Filename, ".png") {
		t.Errorf("expected .png filename, got %q", resp.Filename)
	}
	if !strings.HasPrefix(resp.URL, "https://cdn.example.com/") {
		t.Errorf("unexpected url %q", resp.URL)
	}
	if _, ok := client.uploaded[resp.Filename]; !ok {
		t.Error("file was not handed to the storage client")
	}
}

func TestUpload_WrongFieldName(t *testing.T) {
	r := newTestRouter(newStubClient(), 5*1024*1024)

	rec := multipartUpload(t, r, "attachment", "avatar.png", pngBytes)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if msg := errorMessage(t, rec.Body.Bytes()); msg != "No file provided" {
		t.Errorf("expected %q, got %q", "No file provided", msg)
	}
}

func TestUpload_NonImageRejected(t *testing.T) {
	client := newStubClient()
	r := newTestRouter(client, 5*1024*1024)

	rec := multipartUpload(t, r, "file", "notes.txt", []byte("just some text"))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	want := "Invalid file type. Only images are allowed."
	if msg := errorMessage(t, rec.Body.Bytes()); msg != want {
		t.Errorf("expected %q, got %q", want, msg)
	}
	if len(client.uploaded) != 0 {
		t.Error("rejected file must not reach the storage client")
	}
}

func TestUpload_SpoofedExtensionRejected(t *testing.T) {
	r := newTestRouter(newStubClient(), 5*1024*1024)

	// Content sniffing decides, not the filename.
	rec := multipartUpload(t, r, "file", "fake.png", []byte("<html></html>"))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for spoofed extension, got %d", rec.Code)
	}
}

func TestUpload_TooLarge(t *testing.T) {
	r := newTestRouter(newStubClient(), 16)

	rec := multipartUpload(t, r, "file", "avatar.png", pngBytes)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	want := "File too large. Maximum size is 5MB."
	if msg := errorMessage(t, rec.Body.Bytes()); msg != want {
		t.Errorf("expected %q, got %q", want, msg)
	}
}

// ---------------------------------------------------------------------------
// Image proxy tests
// ---------------------------------------------------------------------------

func TestImageProxy_MissingURL(t *testing.T) {
	r := newTestRouter(newStubClient(), 5*1024*1024)

	req := httptest.NewRequest(http.MethodGet, "/image-proxy", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	want := "URL parameter is required"
	if msg := errorMessage(t, rec.Body.Bytes()); msg != want {
		t.Errorf("expected %q, got %q", want, msg)
	}
}

func TestImageProxy_ServesWithLongCache(t *testing.T) {
	client := newStubClient()
	client.fetched = pngBytes
	r := newTestRouter(client, 5*1024*1024)

	req := httptest.NewRequest(
		http.MethodGet,
		"/image-proxy?url=https://cdn.example.com/a.png",
		nil,
	)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("expected image/png, got %q", ct)
	}
	if cc := rec.Header().Get("Cache-Control"); cc != "public, max-age=31536000" {
		t.Errorf("unexpected cache header %q", cc)
	}
	if !bytes.Equal(rec.Body.Bytes(), pngBytes) {
		t.Error("proxied body does not match source")
	}
}
