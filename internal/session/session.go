// Package session tracks transient editor state: the selected block, the
// editable controls derived from its schema, and in-flight asset uploads.
// Nothing here is persisted; a session is rebuilt on every editor load.
package session

import (
	"errors"
	"fmt"
	"sync"

	"github.com/goliatone/go-pagebuilder/internal/document"
	"github.com/goliatone/go-pagebuilder/internal/logging"
	"github.com/goliatone/go-pagebuilder/internal/registry"
	"github.com/goliatone/go-pagebuilder/pkg/interfaces"
)

var (
	ErrNoSelection      = errors.New("session: no block selected")
	ErrNotUploadField   = errors.New("session: field is not an upload control")
	ErrUploaderRequired = errors.New("session: uploader not configured")
)

// FieldControl is one editable control bound to a property of the selected
// block, in the order the component definition declares.
type FieldControl struct {
	Name  string
	Spec  registry.FieldSpec
	Value any
}

// Session owns the selection state for one open editor instance. All
// document mutations go through the underlying document and stay atomic
// relative to rendering.
type Session struct {
	mu       sync.Mutex
	doc      *document.Document
	selected string
	uploader Uploader
	uploads  map[fieldKey]*uploadSlot
	logger   interfaces.Logger
}

// Option customises session construction.
type Option func(*Session)

// WithUploader wires the remote asset uploader used by upload fields.
func WithUploader(uploader Uploader) Option {
	return func(s *Session) {
		s.uploader = uploader
	}
}

// WithLoggerProvider wires a logger for session diagnostics.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(s *Session) {
		s.logger = logging.SessionLogger(provider)
	}
}

// New constructs a session over the supplied document.
func New(doc *document.Document, opts ...Option) *Session {
	s := &Session{
		doc:     doc,
		uploads: make(map[fieldKey]*uploadSlot),
		logger:  logging.NoOp(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Select marks the block as the editing target.
func (s *Session) Select(id string) error {
	if _, ok := s.doc.Get(id); !ok {
		return fmt.Errorf("%w: %s", document.ErrNotFound, id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = id
	return nil
}

// Deselect clears the editing target.
func (s *Session) Deselect() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = ""
}

// Selected returns the current editing target, if any.
func (s *Session) Selected() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected, s.selected != ""
}

// Fields derives the editable control list for the selected block from its
// component definition, preserving the declared field order.
func (s *Session) Fields() ([]FieldControl, error) {
	id, ok := s.Selected()
	if !ok {
		return nil, ErrNoSelection
	}
	inst, ok := s.doc.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", document.ErrNotFound, id)
	}
	def, err := s.doc.Registry().DefinitionFor(inst.Type)
	if err != nil {
		return nil, err
	}

	controls := make([]FieldControl, 0, len(def.FieldOrder))
	for _, name := range def.FieldOrder {
		controls = append(controls, FieldControl{
			Name:  name,
			Spec:  def.Fields[name],
			Value: inst.Props[name],
		})
	}
	return controls, nil
}

// SetField writes one property of the selected block through the document's
// validation path. Constraint failures propagate without mutating anything.
// For upload fields this is the manual-entry fallback (e.g. a pasted URL).
func (s *Session) SetField(name string, value any) error {
	id, ok := s.Selected()
	if !ok {
		return ErrNoSelection
	}
	return s.doc.SetProperty(id, name, value)
}
