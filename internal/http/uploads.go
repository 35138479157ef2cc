package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/goliatone/go-pagebuilder/internal/logging"
	"github.com/goliatone/go-pagebuilder/pkg/interfaces"
)

// DefaultMaxUploadBytes bounds upload request bodies.
const DefaultMaxUploadBytes = 10 << 20

// allowedImageTypes is the accept list for uploaded assets, checked against
// the file's magic bytes rather than its claimed content type.
var allowedImageTypes = []string{
	"image/jpeg",
	"image/png",
	"image/gif",
	"image/webp",
}

// FileStore persists uploaded bytes and returns the public URL.
type FileStore interface {
	Save(ctx context.Context, filename string, body io.Reader) (string, error)
}

// LocalFileStore writes uploads to a directory served under a URL prefix.
type LocalFileStore struct {
	dir       string
	urlPrefix string
}

// NewLocalFileStore constructs the store. Files land in dir and are
// addressed as urlPrefix/<name>.
func NewLocalFileStore(dir, urlPrefix string) *LocalFileStore {
	return &LocalFileStore{
		dir:       dir,
		urlPrefix: strings.TrimRight(urlPrefix, "/"),
	}
}

func (s *LocalFileStore) Save(_ context.Context, filename string, body io.Reader) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("uploads: create directory: %w", err)
	}
	target := filepath.Join(s.dir, filename)
	file, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("uploads: create file: %w", err)
	}
	defer file.Close()
	if _, err := io.Copy(file, body); err != nil {
		return "", fmt.Errorf("uploads: write file: %w", err)
	}
	return s.urlPrefix + "/" + filename, nil
}

// UploadHandler accepts multipart image uploads, sniffs the actual content
// type, and stores accepted files under a generated name.
type UploadHandler struct {
	store    FileStore
	maxBytes int64
	logger   interfaces.Logger
}

// UploadOption customises the handler.
type UploadOption func(*UploadHandler)

// WithMaxUploadBytes overrides the request body limit.
func WithMaxUploadBytes(limit int64) UploadOption {
	return func(h *UploadHandler) {
		if limit > 0 {
			h.maxBytes = limit
		}
	}
}

// WithUploadLoggerProvider wires a logger for upload diagnostics.
func WithUploadLoggerProvider(provider interfaces.LoggerProvider) UploadOption {
	return func(h *UploadHandler) {
		h.logger = logging.HTTPLogger(provider)
	}
}

// NewUploadHandler constructs the handler over the file store.
func NewUploadHandler(store FileStore, opts ...UploadOption) *UploadHandler {
	h := &UploadHandler{
		store:    store,
		maxBytes: DefaultMaxUploadBytes,
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *UploadHandler) handle(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	file, _, err := r.FormFile("file")
	if err != nil {
		status := http.StatusBadRequest
		message := "no file provided"
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
			message = "file too large"
		}
		writeJSON(w, status, failureResponse{Error: message})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, failureResponse{Error: "unreadable file"})
		return
	}

	detected := mimetype.Detect(data)
	if !isAllowedImage(detected) {
		h.logger.Warn("upload rejected", "detected", detected.String())
		writeJSON(w, http.StatusUnsupportedMediaType, failureResponse{
			Error: fmt.Sprintf("file type %s not allowed", detected.String()),
		})
		return
	}

	name := uuid.NewString() + detected.Extension()
	url, err := h.store.Save(r.Context(), name, bytes.NewReader(data))
	if err != nil {
		h.logger.Error("upload store failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, failureResponse{Error: "upload failed"})
		return
	}

	h.logger.Info("upload stored", "name", name, "bytes", len(data), "type", detected.String())
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "url": url})
}

func isAllowedImage(detected *mimetype.MIME) bool {
	for _, allowed := range allowedImageTypes {
		if detected.Is(allowed) {
			return true
		}
	}
	return false
}
