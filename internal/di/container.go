// Package di wires the page builder's dependencies from runtime
// configuration: catalog, renderer, storage, upload handling, and the
// editor API.
package di

import (
	"database/sql"
	"fmt"
	"strings"

	repocache "github.com/goliatone/go-repository-cache/cache"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	editorhttp "github.com/goliatone/go-pagebuilder/internal/http"
	"github.com/goliatone/go-pagebuilder/internal/logging/gologger"
	"github.com/goliatone/go-pagebuilder/internal/pages"
	"github.com/goliatone/go-pagebuilder/internal/registry"
	"github.com/goliatone/go-pagebuilder/internal/render"
	"github.com/goliatone/go-pagebuilder/internal/runtimeconfig"
	"github.com/goliatone/go-pagebuilder/pkg/interfaces"
)

// Container wires module dependencies from the runtime configuration.
type Container struct {
	Config runtimeconfig.Config

	registry       *registry.Registry
	loggerProvider interfaces.LoggerProvider

	bunDB         *bun.DB
	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer

	pageRepo  pages.PageRepository
	pageSvc   pages.Service
	renderer  *render.Renderer
	fileStore editorhttp.FileStore
	api       *editorhttp.EditorAPI
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithRegistry overrides the builtin block catalog.
func WithRegistry(reg *registry.Registry) Option {
	return func(c *Container) {
		if reg != nil {
			c.registry = reg
		}
	}
}

// WithLoggerProvider overrides the logging backend resolved from config.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		if provider != nil {
			c.loggerProvider = provider
		}
	}
}

// WithBunDB injects an existing database handle instead of opening one
// from the configured DSN.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithCache injects the cache service pair used to wrap the bun repository.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// WithPageRepository overrides page storage entirely.
func WithPageRepository(repo pages.PageRepository) Option {
	return func(c *Container) {
		c.pageRepo = repo
	}
}

// WithFileStore overrides where uploaded assets land.
func WithFileStore(store editorhttp.FileStore) Option {
	return func(c *Container) {
		c.fileStore = store
	}
}

// NewContainer validates the configuration and resolves every dependency
// that was not injected through options.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{
		Config:   cfg,
		registry: registry.Builtin(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.loggerProvider == nil {
		c.loggerProvider = resolveLoggerProvider(cfg.Logging)
	}

	if c.pageRepo == nil {
		if err := c.resolveStorage(); err != nil {
			return nil, err
		}
	}

	renderer, err := render.New(c.registry, render.WithLoggerProvider(c.loggerProvider))
	if err != nil {
		return nil, err
	}
	c.renderer = renderer

	c.pageSvc = pages.NewService(c.pageRepo, c.registry, c.renderer,
		pages.WithLoggerProvider(c.loggerProvider),
	)

	if c.fileStore == nil {
		c.fileStore = editorhttp.NewLocalFileStore(cfg.Storage.MediaDir, cfg.Storage.MediaURLPrefix)
	}
	uploads := editorhttp.NewUploadHandler(c.fileStore,
		editorhttp.WithMaxUploadBytes(cfg.Upload.MaxBytes),
		editorhttp.WithUploadLoggerProvider(c.loggerProvider),
	)
	c.api = editorhttp.NewEditorAPI(c.pageSvc,
		editorhttp.WithAuthenticityToken(cfg.AuthenticityToken),
		editorhttp.WithUploadHandler(uploads),
		editorhttp.WithLoggerProvider(c.loggerProvider),
	)
	return c, nil
}

func (c *Container) resolveStorage() error {
	provider := strings.ToLower(strings.TrimSpace(c.Config.Storage.Provider))
	switch provider {
	case "memory", "":
		c.pageRepo = pages.NewMemoryPageRepository()
		return nil
	case "bun":
	default:
		return fmt.Errorf("%w: %s", runtimeconfig.ErrStorageProviderUnknown, provider)
	}

	if c.bunDB == nil {
		sqlDB, err := sql.Open("sqlite3", c.Config.Storage.DSN)
		if err != nil {
			return fmt.Errorf("di: open database: %w", err)
		}
		c.bunDB = bun.NewDB(sqlDB, sqlitedialect.New())
	}

	if c.Config.Cache.Enabled && c.cacheService == nil {
		cacheCfg := repocache.DefaultConfig()
		if c.Config.Cache.DefaultTTL > 0 {
			cacheCfg.TTL = c.Config.Cache.DefaultTTL
		}
		service, err := repocache.NewCacheService(cacheCfg)
		if err != nil {
			return fmt.Errorf("di: cache service: %w", err)
		}
		c.cacheService = service
		c.keySerializer = repocache.NewDefaultKeySerializer()
	}

	c.pageRepo = pages.NewBunPageRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
	return nil
}

func resolveLoggerProvider(cfg runtimeconfig.LoggingConfig) interfaces.LoggerProvider {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if provider == "" {
		return nil
	}
	format := cfg.Format
	if provider == "console" && format == "" {
		format = "console"
	}
	resolved, err := gologger.NewProvider(gologger.Config{
		Level:     cfg.Level,
		Format:    format,
		AddSource: cfg.AddSource,
		Focus:     cfg.Focus,
	})
	if err != nil {
		return nil
	}
	return resolved
}

// Registry exposes the block catalog.
func (c *Container) Registry() *registry.Registry {
	return c.registry
}

// Renderer exposes the HTML renderer.
func (c *Container) Renderer() *render.Renderer {
	return c.renderer
}

// PageService exposes the configured page service.
func (c *Container) PageService() pages.Service {
	return c.pageSvc
}

// PageRepository exposes the resolved page storage.
func (c *Container) PageRepository() pages.PageRepository {
	return c.pageRepo
}

// EditorAPI exposes the HTTP surface for mounting into a host mux.
func (c *Container) EditorAPI() *editorhttp.EditorAPI {
	return c.api
}

// LoggerProvider exposes the resolved logging backend; nil means silent.
func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}

// BunDB exposes the database handle when bun storage is active.
func (c *Container) BunDB() *bun.DB {
	return c.bunDB
}
