package http

import (
	"fmt"
	"net/http"

	"github.com/goliatone/go-pagebuilder/internal/pages"
)

type pageCreatePayload struct {
	Title           string `json:"title"`
	Slug            string `json:"slug,omitempty"`
	MetaTitle       string `json:"meta_title,omitempty"`
	MetaDescription string `json:"meta_description,omitempty"`
}

type pageSettingsPayload struct {
	Title           *string `json:"title,omitempty"`
	Slug            *string `json:"slug,omitempty"`
	MetaTitle       *string `json:"meta_title,omitempty"`
	MetaDescription *string `json:"meta_description,omitempty"`
	FeaturedImage   *string `json:"featured_image,omitempty"`
	IsPublished     *bool   `json:"is_published,omitempty"`
	ShowInNav       *bool   `json:"show_in_nav,omitempty"`
	NavOrder        *int    `json:"nav_order,omitempty"`
}

// saveResponse acknowledges a successful content save.
type saveResponse struct {
	Success  bool   `json:"success"`
	Redirect string `json:"redirect,omitempty"`
	Message  string `json:"message,omitempty"`
}

func (api *EditorAPI) registerPageRoutes(mux *http.ServeMux, base string) {
	root := joinPath(base, "pages")
	mux.HandleFunc("GET "+root, api.handlePageList)
	mux.HandleFunc("POST "+root, api.requireToken(api.handlePageCreate))
	mux.HandleFunc("GET "+root+"/{id}", api.handlePageGet)
	mux.HandleFunc("PATCH "+root+"/{id}", api.requireToken(api.handlePageSettings))
	mux.HandleFunc("DELETE "+root+"/{id}", api.requireToken(api.handlePageDelete))
	mux.HandleFunc("POST "+root+"/{id}/content", api.requireToken(api.handlePageContentSave))
}

func (api *EditorAPI) handlePageList(w http.ResponseWriter, r *http.Request) {
	list, err := api.pages.List(r.Context())
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "pages": list})
}

func (api *EditorAPI) handlePageCreate(w http.ResponseWriter, r *http.Request) {
	var payload pageCreatePayload
	if err := decodeJSON(r, &payload); err != nil {
		writeJSON(w, http.StatusBadRequest, failureResponse{Error: "invalid request body"})
		return
	}

	var page *pages.Page
	var err error
	if payload.Title == "" && payload.Slug == "" {
		page, err = api.pages.CreateUntitled(r.Context())
	} else {
		page, err = api.pages.Create(r.Context(), pages.CreateInput{
			Title:           payload.Title,
			Slug:            payload.Slug,
			MetaTitle:       payload.MetaTitle,
			MetaDescription: payload.MetaDescription,
		})
	}
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "page": page})
}

func (api *EditorAPI) handlePageGet(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, failureResponse{Error: "invalid page id"})
		return
	}
	page, err := api.pages.Get(r.Context(), id)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "page": page})
}

func (api *EditorAPI) handlePageSettings(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, failureResponse{Error: "invalid page id"})
		return
	}
	var payload pageSettingsPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeJSON(w, http.StatusBadRequest, failureResponse{Error: "invalid request body"})
		return
	}
	page, err := api.pages.UpdateSettings(r.Context(), id, pages.SettingsInput{
		Title:           payload.Title,
		Slug:            payload.Slug,
		MetaTitle:       payload.MetaTitle,
		MetaDescription: payload.MetaDescription,
		FeaturedImage:   payload.FeaturedImage,
		IsPublished:     payload.IsPublished,
		ShowInNav:       payload.ShowInNav,
		NavOrder:        payload.NavOrder,
	})
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "page": page})
}

func (api *EditorAPI) handlePageDelete(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, failureResponse{Error: "invalid page id"})
		return
	}
	if err := api.pages.Delete(r.Context(), id); err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// handlePageContentSave accepts the serialized block document, validates it
// against the catalog, and stores it along with the rendered HTML.
func (api *EditorAPI) handlePageContentSave(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, failureResponse{Error: "invalid page id"})
		return
	}
	var payload map[string]any
	if err := decodeJSON(r, &payload); err != nil {
		writeJSON(w, http.StatusBadRequest, failureResponse{Error: "invalid request body"})
		return
	}

	page, err := api.pages.SaveContent(r.Context(), id, payload)
	if err != nil {
		api.logger.Warn("content save rejected", "page_id", id, "error", err)
		writeFailure(w, err)
		return
	}
	api.logger.Info("content saved", "page_id", page.ID, "slug", page.Slug)
	writeJSON(w, http.StatusOK, saveResponse{
		Success:  true,
		Redirect: fmt.Sprintf("/pages/%s/", page.Slug),
		Message:  "Page saved",
	})
}
