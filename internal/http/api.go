// Package http exposes the editor's backend endpoints: page CRUD, content
// saves, and asset uploads. Responses follow the editor wire contract, a
// {"success": ...} envelope rather than bare resources.
package http

import (
	"net/http"
	"strings"

	"github.com/goliatone/go-pagebuilder/internal/logging"
	"github.com/goliatone/go-pagebuilder/internal/pages"
	"github.com/goliatone/go-pagebuilder/pkg/interfaces"
)

// EditorAPI wires the page service and the upload store into an http mux.
type EditorAPI struct {
	pages   pages.Service
	uploads *UploadHandler
	token   string
	logger  interfaces.Logger
}

// APIOption customises the API.
type APIOption func(*EditorAPI)

// WithAuthenticityToken requires the X-CSRFToken header on mutating requests.
func WithAuthenticityToken(token string) APIOption {
	return func(api *EditorAPI) {
		api.token = strings.TrimSpace(token)
	}
}

// WithUploadHandler wires the asset upload endpoint.
func WithUploadHandler(handler *UploadHandler) APIOption {
	return func(api *EditorAPI) {
		api.uploads = handler
	}
}

// WithLoggerProvider wires a logger for request diagnostics.
func WithLoggerProvider(provider interfaces.LoggerProvider) APIOption {
	return func(api *EditorAPI) {
		api.logger = logging.HTTPLogger(provider)
	}
}

// NewEditorAPI constructs the API over the page service.
func NewEditorAPI(pageService pages.Service, opts ...APIOption) *EditorAPI {
	api := &EditorAPI{
		pages:  pageService,
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		opt(api)
	}
	return api
}

// Register mounts every route on the mux under the base path.
func (api *EditorAPI) Register(mux *http.ServeMux, base string) {
	if mux == nil {
		return
	}
	api.registerPageRoutes(mux, base)
	if api.uploads != nil {
		mux.HandleFunc("POST "+joinPath(base, "uploads"), api.requireToken(api.uploads.handle))
	}
}

// requireToken rejects mutating requests without the configured
// authenticity token. A blank configured token disables the check.
func (api *EditorAPI) requireToken(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if api.token != "" && r.Header.Get("X-CSRFToken") != api.token {
			api.logger.Warn("request rejected: token mismatch", "path", r.URL.Path)
			writeJSON(w, http.StatusForbidden, failureResponse{Error: "invalid authenticity token"})
			return
		}
		next(w, r)
	}
}
