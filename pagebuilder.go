// Package pagebuilder is a schema driven page composition module for drag
// and drop block editors: a typed block catalog, a recursive page document
// with named zones, HTML rendering, persistence, and the backend endpoints
// the editor talks to.
package pagebuilder

import (
	"net/http"

	"github.com/goliatone/go-pagebuilder/internal/di"
	"github.com/goliatone/go-pagebuilder/internal/document"
	"github.com/goliatone/go-pagebuilder/internal/gateway"
	editorhttp "github.com/goliatone/go-pagebuilder/internal/http"
	"github.com/goliatone/go-pagebuilder/internal/pages"
	"github.com/goliatone/go-pagebuilder/internal/registry"
	"github.com/goliatone/go-pagebuilder/internal/render"
	"github.com/goliatone/go-pagebuilder/internal/session"
)

// PageService exports the page persistence contract.
type PageService = pages.Service

// Page exports the stored page record.
type Page = pages.Page

// PageRepository exports the storage contract for custom backends.
type PageRepository = pages.PageRepository

// Registry exports the block catalog.
type Registry = registry.Registry

// ComponentDefinition exports the catalog entry type.
type ComponentDefinition = registry.ComponentDefinition

// FieldSpec exports the per-property constraint type.
type FieldSpec = registry.FieldSpec

// BlockType exports the block type identifier.
type BlockType = registry.BlockType

// Document exports the page tree aggregate.
type Document = document.Document

// BlockInstance exports a single placed block.
type BlockInstance = document.BlockInstance

// ZoneRef exports the insertion slot address.
type ZoneRef = document.ZoneRef

// Session exports the editing session.
type Session = session.Session

// FieldControl exports one editable control of the selected block.
type FieldControl = session.FieldControl

// SaveResult exports the backend save acknowledgement.
type SaveResult = gateway.SaveResult

// FileStore exports the upload storage contract.
type FileStore = editorhttp.FileStore

// Module is the top level page builder runtime facade.
type Module struct {
	container *di.Container
}

// New constructs the module from configuration with optional wiring
// overrides.
func New(cfg Config, opts ...di.Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying wiring for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Pages returns the configured page service.
func (m *Module) Pages() PageService {
	return m.container.PageService()
}

// Catalog returns the block catalog.
func (m *Module) Catalog() *Registry {
	return m.container.Registry()
}

// Renderer returns the HTML renderer.
func (m *Module) Renderer() *render.Renderer {
	return m.container.Renderer()
}

// Mount registers the editor endpoints on the host mux under the
// configured base path.
func (m *Module) Mount(mux *http.ServeMux) {
	m.container.EditorAPI().Register(mux, m.container.Config.HTTP.BasePath)
}
