// Command example runs a small page builder backend: it seeds a demo page,
// mounts the editor API, and serves uploaded media from disk.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/joho/godotenv"

	pagebuilder "github.com/goliatone/go-pagebuilder"
	"github.com/goliatone/go-pagebuilder/internal/document"
	"github.com/goliatone/go-pagebuilder/internal/pages"
	"github.com/goliatone/go-pagebuilder/internal/registry"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg := pagebuilder.DefaultConfig()
	cfg.AuthenticityToken = getEnv("PAGEBUILDER_TOKEN", "")
	cfg.Storage.Provider = getEnv("PAGEBUILDER_STORAGE", "memory")
	cfg.Storage.DSN = getEnv("PAGEBUILDER_DSN", "file:pagebuilder.db?cache=shared")
	cfg.Storage.MediaDir = getEnv("PAGEBUILDER_MEDIA_DIR", "media/uploads")
	cfg.Logging.Provider = "gologger"
	cfg.Logging.Level = getEnv("PAGEBUILDER_LOG_LEVEL", "info")
	cfg.Logging.Format = getEnv("PAGEBUILDER_LOG_FORMAT", "console")

	module, err := pagebuilder.New(cfg)
	if err != nil {
		log.Fatalf("pagebuilder: %v", err)
	}

	if err := seedDemoPage(context.Background(), module); err != nil {
		log.Fatalf("seed demo page: %v", err)
	}

	mux := http.NewServeMux()
	module.Mount(mux)
	mux.Handle("GET "+cfg.Storage.MediaURLPrefix+"/",
		http.StripPrefix(cfg.Storage.MediaURLPrefix+"/", http.FileServer(http.Dir(cfg.Storage.MediaDir))))
	mux.HandleFunc("GET /pages/{slug}/", func(w http.ResponseWriter, r *http.Request) {
		page, err := module.Pages().GetBySlug(r.Context(), r.PathValue("slug"))
		if err != nil {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(page.RenderedHTML))
	})

	addr := ":" + getEnv("PORT", "8080")
	log.Printf("page builder listening on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("serve: %v", err)
	}
}

// seedDemoPage stores a small composed page so the API has content to show.
func seedDemoPage(ctx context.Context, module *pagebuilder.Module) error {
	svc := module.Pages()
	if _, err := svc.GetBySlug(ctx, "welcome"); err == nil {
		return nil
	}

	page, err := svc.Create(ctx, pages.CreateInput{
		Title:           "Welcome",
		MetaDescription: "A demo page composed from builtin blocks",
	})
	if err != nil {
		return err
	}

	doc := document.New(module.Catalog())
	hero, err := doc.CreateInstance(registry.TypeHero)
	if err != nil {
		return err
	}
	if err := doc.Insert(document.Root(), hero, 0); err != nil {
		return err
	}
	if err := doc.SetProperty(hero.ID, "title", "Build pages with blocks"); err != nil {
		return err
	}

	columns, err := doc.CreateInstance(registry.TypeTwoColumn)
	if err != nil {
		return err
	}
	if err := doc.Insert(document.Root(), columns, 1); err != nil {
		return err
	}
	text, err := doc.CreateInstance(registry.TypeText)
	if err != nil {
		return err
	}
	if err := doc.Insert(document.ZoneOf(columns.ID, "left"), text, 0); err != nil {
		return err
	}
	button, err := doc.CreateInstance(registry.TypeButton)
	if err != nil {
		return err
	}
	if err := doc.Insert(document.ZoneOf(columns.ID, "right"), button, 0); err != nil {
		return err
	}

	_, err = svc.SaveContent(ctx, page.ID, doc.ToSerializable())
	return err
}

func getEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}
