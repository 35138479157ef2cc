package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/goliatone/go-pagebuilder/internal/document"
	"github.com/goliatone/go-pagebuilder/internal/pages"
	"github.com/goliatone/go-pagebuilder/internal/registry"
)

// failureResponse is the editor's error envelope.
type failureResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func joinPath(base, suffix string) string {
	trimmedBase := strings.TrimSpace(base)
	trimmedSuffix := strings.TrimSpace(suffix)
	if trimmedBase == "" {
		if trimmedSuffix == "" {
			return "/"
		}
		return "/" + strings.Trim(trimmedSuffix, "/")
	}
	baseClean := "/" + strings.Trim(trimmedBase, "/")
	if trimmedSuffix == "" {
		return baseClean
	}
	return baseClean + "/" + strings.Trim(trimmedSuffix, "/")
}

func decodeJSON(r *http.Request, target any) error {
	if r == nil || r.Body == nil {
		return io.EOF
	}
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeFailure(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), failureResponse{Error: err.Error()})
}

func statusFor(err error) int {
	if err == nil {
		return http.StatusInternalServerError
	}

	var notFound *pages.PageNotFoundError
	if errors.As(err, &notFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, pages.ErrSlugExists) {
		return http.StatusConflict
	}
	if errors.Is(err, document.ErrMalformedDocument) ||
		errors.Is(err, registry.ErrConstraintViolation) {
		return http.StatusUnprocessableEntity
	}
	if errors.Is(err, pages.ErrTitleRequired) || errors.Is(err, pages.ErrSlugInvalid) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func parseUUID(value string) (uuid.UUID, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return uuid.Nil, errors.New("uuid required")
	}
	return uuid.Parse(trimmed)
}
