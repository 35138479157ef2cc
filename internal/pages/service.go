// Package pages persists page records: metadata, the serialized block
// document, and a cached HTML rendition refreshed on every content save.
package pages

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-slug"
	"github.com/google/uuid"

	"github.com/goliatone/go-pagebuilder/internal/document"
	"github.com/goliatone/go-pagebuilder/internal/logging"
	"github.com/goliatone/go-pagebuilder/internal/registry"
	"github.com/goliatone/go-pagebuilder/internal/render"
	"github.com/goliatone/go-pagebuilder/pkg/interfaces"
)

var (
	ErrTitleRequired = errors.New("pages: title required")
	ErrSlugExists    = errors.New("pages: slug already exists")
	ErrSlugInvalid   = errors.New("pages: slug invalid")
)

type Service interface {
	Create(ctx context.Context, input CreateInput) (*Page, error)
	CreateUntitled(ctx context.Context) (*Page, error)
	SaveContent(ctx context.Context, id uuid.UUID, payload map[string]any) (*Page, error)
	UpdateSettings(ctx context.Context, id uuid.UUID, input SettingsInput) (*Page, error)
	Get(ctx context.Context, id uuid.UUID) (*Page, error)
	GetBySlug(ctx context.Context, slug string) (*Page, error)
	List(ctx context.Context) ([]*Page, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// CreateInput captures the fields needed to create a page. An empty slug is
// derived from the title.
type CreateInput struct {
	Title           string
	Slug            string
	MetaTitle       string
	MetaDescription string
}

// SettingsInput updates page metadata without touching content. Nil fields
// keep their stored value.
type SettingsInput struct {
	Title           *string
	Slug            *string
	MetaTitle       *string
	MetaDescription *string
	FeaturedImage   *string
	IsPublished     *bool
	ShowInNav       *bool
	NavOrder        *int
}

type IDGenerator func() uuid.UUID

type ServiceOption func(*service)

func WithClock(clock func() time.Time) ServiceOption {
	return func(s *service) {
		if clock != nil {
			s.now = clock
		}
	}
}

func WithIDGenerator(generator IDGenerator) ServiceOption {
	return func(s *service) {
		if generator != nil {
			s.id = generator
		}
	}
}

// WithLoggerProvider wires a logger for page lifecycle events.
func WithLoggerProvider(provider interfaces.LoggerProvider) ServiceOption {
	return func(s *service) {
		s.logger = logging.PagesLogger(provider)
	}
}

type service struct {
	repo     PageRepository
	registry *registry.Registry
	renderer *render.Renderer
	now      func() time.Time
	id       IDGenerator
	logger   interfaces.Logger
}

// NewService wires page persistence to the catalog and renderer. Content
// saves re-render the page so the stored HTML never drifts from the stored
// document.
func NewService(repo PageRepository, reg *registry.Registry, renderer *render.Renderer, opts ...ServiceOption) Service {
	s := &service{
		repo:     repo,
		registry: reg,
		renderer: renderer,
		now:      time.Now,
		id:       uuid.New,
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Create(ctx context.Context, input CreateInput) (*Page, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}

	source := input.Slug
	if strings.TrimSpace(source) == "" {
		source = title
	}
	normalized, err := slug.Normalize(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSlugInvalid, err)
	}
	if _, err := s.repo.GetBySlug(ctx, normalized); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrSlugExists, normalized)
	} else if !isNotFound(err) {
		return nil, err
	}

	now := s.now().UTC()
	emptyDoc := document.New(s.registry)
	record := &Page{
		ID:              s.id(),
		Title:           title,
		Slug:            normalized,
		MetaTitle:       strings.TrimSpace(input.MetaTitle),
		MetaDescription: strings.TrimSpace(input.MetaDescription),
		Content:         emptyDoc.ToSerializable(),
		ShowInNav:       true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	created, err := s.repo.Create(ctx, record)
	if err != nil {
		return nil, err
	}
	s.logger.Info("page created", "page_id", created.ID, "slug", created.Slug)
	return created, nil
}

// CreateUntitled creates a placeholder page the editor opens immediately,
// picking the first free untitled slug.
func (s *service) CreateUntitled(ctx context.Context) (*Page, error) {
	title := "Untitled"
	candidate := "untitled"
	for n := 2; ; n++ {
		_, err := s.repo.GetBySlug(ctx, candidate)
		if isNotFound(err) {
			break
		}
		if err != nil {
			return nil, err
		}
		title = fmt.Sprintf("Untitled %d", n)
		candidate = fmt.Sprintf("untitled-%d", n)
	}
	return s.Create(ctx, CreateInput{Title: title, Slug: candidate})
}

// SaveContent validates the document payload against the catalog, renders
// it, and stores both representations atomically on the record.
func (s *service) SaveContent(ctx context.Context, id uuid.UUID, payload map[string]any) (*Page, error) {
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	doc, err := document.FromSerializable(s.registry, payload)
	if err != nil {
		return nil, err
	}
	html, err := s.renderer.RenderDocument(doc)
	if err != nil {
		return nil, fmt.Errorf("pages: render content: %w", err)
	}

	record.Content = doc.ToSerializable()
	record.RenderedHTML = string(html)
	record.UpdatedAt = s.now().UTC()

	updated, err := s.repo.Update(ctx, record)
	if err != nil {
		return nil, err
	}
	s.logger.Info("page content saved", "page_id", updated.ID, "blocks", doc.Len())
	return updated, nil
}

func (s *service) UpdateSettings(ctx context.Context, id uuid.UUID, input SettingsInput) (*Page, error) {
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, ErrTitleRequired
		}
		record.Title = title
	}
	if input.Slug != nil {
		normalized, err := slug.Normalize(*input.Slug)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSlugInvalid, err)
		}
		if normalized != record.Slug {
			if _, err := s.repo.GetBySlug(ctx, normalized); err == nil {
				return nil, fmt.Errorf("%w: %s", ErrSlugExists, normalized)
			} else if !isNotFound(err) {
				return nil, err
			}
			record.Slug = normalized
		}
	}
	if input.MetaTitle != nil {
		record.MetaTitle = strings.TrimSpace(*input.MetaTitle)
	}
	if input.MetaDescription != nil {
		record.MetaDescription = strings.TrimSpace(*input.MetaDescription)
	}
	if input.FeaturedImage != nil {
		record.FeaturedImage = strings.TrimSpace(*input.FeaturedImage)
	}
	if input.IsPublished != nil {
		record.IsPublished = *input.IsPublished
	}
	if input.ShowInNav != nil {
		record.ShowInNav = *input.ShowInNav
	}
	if input.NavOrder != nil {
		record.NavOrder = *input.NavOrder
	}
	record.UpdatedAt = s.now().UTC()

	return s.repo.Update(ctx, record)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Page, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) GetBySlug(ctx context.Context, slug string) (*Page, error) {
	return s.repo.GetBySlug(ctx, slug)
}

func (s *service) List(ctx context.Context) ([]*Page, error) {
	return s.repo.List(ctx)
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("page deleted", "page_id", id)
	return nil
}

func isNotFound(err error) bool {
	var notFound *PageNotFoundError
	return errors.As(err, &notFound)
}
