package pagebuilder

import (
	"context"
	"html/template"
	"io"

	"github.com/goliatone/go-pagebuilder/internal/document"
	"github.com/goliatone/go-pagebuilder/internal/gateway"
	"github.com/goliatone/go-pagebuilder/internal/session"
)

// Editor is one open editing surface: a document, the selection session
// over it, and the gateway that saves it back.
type Editor struct {
	doc     *document.Document
	session *session.Session
	gateway *gateway.Gateway
	module  *Module
}

// OpenEditor starts an editing session over an empty document.
func (m *Module) OpenEditor() *Editor {
	return m.newEditor(document.New(m.container.Registry()))
}

// OpenEditorWith starts an editing session over a stored document payload,
// validating it against the catalog first.
func (m *Module) OpenEditorWith(payload map[string]any) (*Editor, error) {
	doc, err := document.FromSerializable(m.container.Registry(), payload)
	if err != nil {
		return nil, err
	}
	return m.newEditor(doc), nil
}

// LoadEditor reads a stored JSON document and opens an editor over it.
func (m *Module) LoadEditor(r io.Reader) (*Editor, error) {
	doc, err := m.newGateway().Load(r)
	if err != nil {
		return nil, err
	}
	return m.newEditor(doc), nil
}

func (m *Module) newEditor(doc *document.Document) *Editor {
	cfg := m.container.Config
	uploader := session.NewHTTPUploader(cfg.UploadEndpoint, cfg.AuthenticityToken)
	return &Editor{
		doc: doc,
		session: session.New(doc,
			session.WithUploader(uploader),
			session.WithLoggerProvider(m.container.LoggerProvider()),
		),
		gateway: m.newGateway(),
		module:  m,
	}
}

func (m *Module) newGateway() *gateway.Gateway {
	cfg := m.container.Config
	return gateway.New(m.container.Registry(), cfg.SaveEndpoint, cfg.AuthenticityToken,
		gateway.WithLoggerProvider(m.container.LoggerProvider()),
	)
}

// Document returns the page tree under edit.
func (e *Editor) Document() *Document {
	return e.doc
}

// Session returns the selection and field editing session.
func (e *Editor) Session() *Session {
	return e.session
}

// Render produces the current HTML for the whole document.
func (e *Editor) Render() (template.HTML, error) {
	return e.module.Renderer().RenderDocument(e.doc)
}

// Save serializes the document and posts it to the configured endpoint.
func (e *Editor) Save(ctx context.Context) (*SaveResult, error) {
	return e.gateway.Save(ctx, e.doc)
}
