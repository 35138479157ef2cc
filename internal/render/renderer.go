// Package render walks a page document and produces its HTML representation.
// Rendering is a pure function of the document and the block catalog; the
// renderer keeps no state that outlives a call.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"

	"github.com/goliatone/go-pagebuilder/internal/document"
	"github.com/goliatone/go-pagebuilder/internal/logging"
	"github.com/goliatone/go-pagebuilder/internal/registry"
	"github.com/goliatone/go-pagebuilder/pkg/interfaces"
)

//go:embed templates/*.html
var templateFS embed.FS

// componentTemplates maps block types to their template files.
var componentTemplates = map[registry.BlockType]string{
	registry.TypeHero:      "hero.html",
	registry.TypeText:      "text.html",
	registry.TypeImage:     "image.html",
	registry.TypeTwoColumn: "two_column.html",
	registry.TypeCard:      "card.html",
	registry.TypeButton:    "button.html",
	registry.TypeSpacer:    "spacer.html",
}

// Renderer turns block instances into HTML via per-type templates,
// recursing through declared zones without a depth limit.
type Renderer struct {
	registry  *registry.Registry
	templates *template.Template
	sanitizer Sanitizer
	logger    interfaces.Logger
}

// Option customises the renderer.
type Option func(*Renderer)

// WithSanitizer overrides the default output sanitizer.
func WithSanitizer(s Sanitizer) Option {
	return func(r *Renderer) {
		if s != nil {
			r.sanitizer = s
		}
	}
}

// WithLoggerProvider wires a logger for render diagnostics.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(r *Renderer) {
		r.logger = logging.RenderLogger(provider)
	}
}

// New constructs a renderer bound to the supplied catalog.
func New(reg *registry.Registry, opts ...Option) (*Renderer, error) {
	r := &Renderer{
		registry:  reg,
		sanitizer: NewSanitizer(),
		logger:    logging.NoOp(),
	}
	for _, opt := range opts {
		opt(r)
	}

	funcs := template.FuncMap{
		// safe admits stored HTML fragments after scrubbing them.
		"safe": func(value any) template.HTML {
			s, _ := value.(string)
			return template.HTML(r.sanitizer.Sanitize(s))
		},
	}
	templates, err := template.New("blocks").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("render: parse templates: %w", err)
	}
	r.templates = templates
	return r, nil
}

// RenderDocument renders the full page: every root block in order,
// sanitized as a whole.
func (r *Renderer) RenderDocument(doc *document.Document) (template.HTML, error) {
	parts := make([]string, 0, len(doc.Root()))
	for _, id := range doc.Root() {
		rendered, err := r.RenderNode(doc, id)
		if err != nil {
			return "", err
		}
		if rendered != "" {
			parts = append(parts, string(rendered))
		}
	}
	return template.HTML(r.sanitizer.Sanitize(strings.Join(parts, "\n"))), nil
}

// RenderNode renders a single block and, recursively, its zone contents.
// A block type missing from the catalog or the template set renders as an
// HTML comment so one stale block cannot take down the whole page.
func (r *Renderer) RenderNode(doc *document.Document, id string) (template.HTML, error) {
	inst, ok := doc.Get(id)
	if !ok {
		return "", fmt.Errorf("%w: %s", document.ErrNotFound, id)
	}

	name, ok := componentTemplates[inst.Type]
	if !ok {
		r.logger.Warn("no template for block type", "type", inst.Type, "block_id", id)
		return template.HTML(fmt.Sprintf("<!-- unknown component: %s -->", inst.Type)), nil
	}
	def, err := r.registry.DefinitionFor(inst.Type)
	if err != nil {
		r.logger.Warn("block type missing from catalog", "type", inst.Type, "block_id", id)
		return template.HTML(fmt.Sprintf("<!-- unknown component: %s -->", inst.Type)), nil
	}

	data := map[string]any{
		"id":    inst.ID,
		"props": inst.Props,
	}

	if def.IsContainer() {
		zones := make(map[string]template.HTML, len(def.Zones))
		for _, zone := range def.Zones {
			rendered, err := r.renderZone(doc, inst, zone)
			if err != nil {
				return "", err
			}
			zones[zone] = rendered
		}
		data["zones"] = zones
	}
	enrichDerived(inst, data)

	tpl := r.templates.Lookup(name)
	if tpl == nil {
		return "", fmt.Errorf("render: template %s not found", name)
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render: %s: %w", inst.Type, err)
	}
	return template.HTML(buf.String()), nil
}

// renderZone renders the ordered children of one zone. An empty zone still
// yields a visible placeholder so it stays reachable as a drop target.
func (r *Renderer) renderZone(doc *document.Document, inst *document.BlockInstance, zone string) (template.HTML, error) {
	children := inst.Zones[zone]
	if len(children) == 0 {
		placeholder := fmt.Sprintf(
			`<div class="pb-zone pb-zone--empty" data-zone="%s:%s" style="min-height: 40px"></div>`,
			template.HTMLEscapeString(inst.ID), template.HTMLEscapeString(zone),
		)
		return template.HTML(placeholder), nil
	}

	parts := make([]string, 0, len(children))
	for _, child := range children {
		rendered, err := r.RenderNode(doc, child)
		if err != nil {
			return "", err
		}
		if rendered != "" {
			parts = append(parts, string(rendered))
		}
	}
	return template.HTML(r.sanitizer.Sanitize(strings.Join(parts, "\n"))), nil
}

// enrichDerived adds computed values templates need. The two column block
// stores only the left width; the right width is always its complement so
// the pair sums to 100 unconditionally.
func enrichDerived(inst *document.BlockInstance, data map[string]any) {
	if inst.Type != registry.TypeTwoColumn {
		return
	}
	leftWidth, _ := inst.Props["leftWidth"].(float64)
	data["leftWidth"] = leftWidth
	data["rightWidth"] = 100 - leftWidth
}
