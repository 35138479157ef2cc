package pages_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-pagebuilder/internal/document"
	"github.com/goliatone/go-pagebuilder/internal/pages"
	"github.com/goliatone/go-pagebuilder/internal/registry"
	"github.com/goliatone/go-pagebuilder/internal/render"
)

func newService(t *testing.T) pages.Service {
	t.Helper()
	renderer, err := render.New(registry.Builtin())
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	return pages.NewService(
		pages.NewMemoryPageRepository(),
		registry.Builtin(),
		renderer,
		pages.WithClock(func() time.Time {
			return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		}),
	)
}

func samplePayload(t *testing.T) map[string]any {
	t.Helper()
	doc := document.New(registry.Builtin())
	hero, err := doc.CreateInstance(registry.TypeHero)
	if err != nil {
		t.Fatalf("create hero: %v", err)
	}
	if err := doc.Insert(document.Root(), hero, 0); err != nil {
		t.Fatalf("insert hero: %v", err)
	}
	if err := doc.SetProperty(hero.ID, "title", "Saved Title"); err != nil {
		t.Fatalf("set title: %v", err)
	}
	return doc.ToSerializable()
}

func TestCreateDerivesSlug(t *testing.T) {
	svc := newService(t)

	page, err := svc.Create(context.Background(), pages.CreateInput{Title: "About Our Team"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if page.Slug != "about-our-team" {
		t.Fatalf("expected derived slug got %q", page.Slug)
	}
	if page.ID == uuid.Nil {
		t.Fatal("expected generated id")
	}
	content, ok := page.Content["content"].([]any)
	if !ok || len(content) != 0 {
		t.Fatalf("expected empty document content got %v", page.Content)
	}
	if !page.ShowInNav || page.IsPublished {
		t.Fatalf("unexpected defaults: show_in_nav=%v is_published=%v", page.ShowInNav, page.IsPublished)
	}
}

func TestCreateRequiresTitle(t *testing.T) {
	svc := newService(t)
	if _, err := svc.Create(context.Background(), pages.CreateInput{Title: "   "}); !errors.Is(err, pages.ErrTitleRequired) {
		t.Fatalf("expected ErrTitleRequired got %v", err)
	}
}

func TestCreateRejectsDuplicateSlug(t *testing.T) {
	svc := newService(t)
	if _, err := svc.Create(context.Background(), pages.CreateInput{Title: "Home"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(context.Background(), pages.CreateInput{Title: "Home Again", Slug: "home"}); !errors.Is(err, pages.ErrSlugExists) {
		t.Fatalf("expected ErrSlugExists got %v", err)
	}
}

func TestCreateUntitledPicksFreeSlug(t *testing.T) {
	svc := newService(t)

	first, err := svc.CreateUntitled(context.Background())
	if err != nil {
		t.Fatalf("create untitled: %v", err)
	}
	if first.Slug != "untitled" || first.Title != "Untitled" {
		t.Fatalf("unexpected first untitled %q %q", first.Slug, first.Title)
	}

	second, err := svc.CreateUntitled(context.Background())
	if err != nil {
		t.Fatalf("create second untitled: %v", err)
	}
	if second.Slug != "untitled-2" || second.Title != "Untitled 2" {
		t.Fatalf("unexpected second untitled %q %q", second.Slug, second.Title)
	}
}

func TestSaveContentRendersAndStores(t *testing.T) {
	svc := newService(t)
	page, err := svc.Create(context.Background(), pages.CreateInput{Title: "Landing"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := svc.SaveContent(context.Background(), page.ID, samplePayload(t))
	if err != nil {
		t.Fatalf("save content: %v", err)
	}
	if !strings.Contains(updated.RenderedHTML, "Saved Title") {
		t.Fatalf("expected rendered html cached, got %q", updated.RenderedHTML)
	}
	content, ok := updated.Content["content"].([]any)
	if !ok || len(content) != 1 {
		t.Fatalf("expected one stored node got %v", updated.Content)
	}

	fetched, err := svc.Get(context.Background(), page.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if fetched.RenderedHTML != updated.RenderedHTML {
		t.Fatal("expected stored html to round trip")
	}
}

func TestSaveContentRejectsMalformedPayload(t *testing.T) {
	svc := newService(t)
	page, err := svc.Create(context.Background(), pages.CreateInput{Title: "Landing"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	payload := map[string]any{
		"content": []any{
			map[string]any{"type": "Mystery", "props": map[string]any{"id": "x"}},
		},
	}
	if _, err := svc.SaveContent(context.Background(), page.ID, payload); !errors.Is(err, document.ErrMalformedDocument) {
		t.Fatalf("expected ErrMalformedDocument got %v", err)
	}

	fetched, err := svc.Get(context.Background(), page.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if fetched.RenderedHTML != "" {
		t.Fatal("rejected save must not touch the record")
	}
}

func TestUpdateSettings(t *testing.T) {
	svc := newService(t)
	page, err := svc.Create(context.Background(), pages.CreateInput{Title: "Landing"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	published := true
	newTitle := "Landing Page"
	updated, err := svc.UpdateSettings(context.Background(), page.ID, pages.SettingsInput{
		Title:       &newTitle,
		IsPublished: &published,
	})
	if err != nil {
		t.Fatalf("update settings: %v", err)
	}
	if updated.Title != "Landing Page" || !updated.IsPublished {
		t.Fatalf("unexpected record %+v", updated)
	}
	if updated.Slug != "landing" {
		t.Fatalf("slug must not change implicitly, got %q", updated.Slug)
	}
}

func TestUpdateSettingsRejectsTakenSlug(t *testing.T) {
	svc := newService(t)
	if _, err := svc.Create(context.Background(), pages.CreateInput{Title: "Home"}); err != nil {
		t.Fatalf("create home: %v", err)
	}
	page, err := svc.Create(context.Background(), pages.CreateInput{Title: "Landing"})
	if err != nil {
		t.Fatalf("create landing: %v", err)
	}

	taken := "home"
	if _, err := svc.UpdateSettings(context.Background(), page.ID, pages.SettingsInput{Slug: &taken}); !errors.Is(err, pages.ErrSlugExists) {
		t.Fatalf("expected ErrSlugExists got %v", err)
	}
}

func TestListOrdersByNavPosition(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, pages.CreateInput{Title: "Zulu"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(ctx, pages.CreateInput{Title: "Alpha"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	order := -1
	if _, err := svc.UpdateSettings(ctx, first.ID, pages.SettingsInput{NavOrder: &order}); err != nil {
		t.Fatalf("update settings: %v", err)
	}

	records, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 2 || records[0].Title != "Zulu" || records[1].Title != "Alpha" {
		titles := make([]string, len(records))
		for i, record := range records {
			titles[i] = record.Title
		}
		t.Fatalf("unexpected order %v", titles)
	}
}

func TestDelete(t *testing.T) {
	svc := newService(t)
	page, err := svc.Create(context.Background(), pages.CreateInput{Title: "Temp"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.Delete(context.Background(), page.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	var notFound *pages.PageNotFoundError
	if _, err := svc.Get(context.Background(), page.ID); !errors.As(err, &notFound) {
		t.Fatalf("expected PageNotFoundError got %v", err)
	}
}
