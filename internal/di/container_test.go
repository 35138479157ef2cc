package di_test

import (
	"context"
	"errors"
	"testing"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/goliatone/go-pagebuilder/internal/di"
	"github.com/goliatone/go-pagebuilder/internal/pages"
	"github.com/goliatone/go-pagebuilder/internal/registry"
	"github.com/goliatone/go-pagebuilder/internal/runtimeconfig"
	"github.com/goliatone/go-pagebuilder/pkg/testsupport"
)

func TestNewContainerDefaults(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()

	container, err := di.NewContainer(cfg)
	if err != nil {
		t.Fatalf("new container: %v", err)
	}
	if container.PageService() == nil {
		t.Fatal("expected page service")
	}
	if container.Renderer() == nil {
		t.Fatal("expected renderer")
	}
	if container.EditorAPI() == nil {
		t.Fatal("expected editor api")
	}
	if _, err := container.Registry().DefinitionFor(registry.TypeHero); err != nil {
		t.Fatalf("expected builtin catalog: %v", err)
	}
	if container.BunDB() != nil {
		t.Fatal("memory storage must not open a database")
	}

	page, err := container.PageService().Create(context.Background(), pages.CreateInput{Title: "Smoke"})
	if err != nil {
		t.Fatalf("create page through container: %v", err)
	}
	if page.Slug != "smoke" {
		t.Fatalf("unexpected slug %q", page.Slug)
	}
}

func TestNewContainerRejectsInvalidConfig(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.SaveEndpoint = ""

	if _, err := di.NewContainer(cfg); !errors.Is(err, runtimeconfig.ErrSaveEndpointRequired) {
		t.Fatalf("expected ErrSaveEndpointRequired got %v", err)
	}
}

func TestNewContainerWithBunStorage(t *testing.T) {
	sqlDB, err := testsupport.NewSQLiteMemoryDB()
	if err != nil {
		t.Fatalf("new sqlite db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	bunDB := bun.NewDB(sqlDB, sqlitedialect.New())
	bunDB.SetMaxOpenConns(1)
	if _, err := bunDB.NewCreateTable().Model((*pages.Page)(nil)).IfNotExists().Exec(context.Background()); err != nil {
		t.Fatalf("create pages table: %v", err)
	}

	cfg := runtimeconfig.DefaultConfig()
	cfg.Storage.Provider = "bun"
	cfg.Storage.DSN = "file::memory:?cache=shared"

	container, err := di.NewContainer(cfg, di.WithBunDB(bunDB))
	if err != nil {
		t.Fatalf("new container: %v", err)
	}
	if container.BunDB() != bunDB {
		t.Fatal("expected injected database handle")
	}

	page, err := container.PageService().Create(context.Background(), pages.CreateInput{Title: "Stored"})
	if err != nil {
		t.Fatalf("create page: %v", err)
	}
	fetched, err := container.PageService().GetBySlug(context.Background(), page.Slug)
	if err != nil {
		t.Fatalf("get by slug: %v", err)
	}
	if fetched.ID != page.ID {
		t.Fatalf("expected %s got %s", page.ID, fetched.ID)
	}
}

func TestNewContainerWithRepositoryOverride(t *testing.T) {
	repo := pages.NewMemoryPageRepository()
	cfg := runtimeconfig.DefaultConfig()
	cfg.Storage.Provider = "bun"
	cfg.Storage.DSN = "ignored"

	container, err := di.NewContainer(cfg, di.WithPageRepository(repo))
	if err != nil {
		t.Fatalf("new container: %v", err)
	}
	if container.PageRepository() != pages.PageRepository(repo) {
		t.Fatal("expected injected repository")
	}
	if container.BunDB() != nil {
		t.Fatal("repository override must skip database setup")
	}
}
