package pagebuilder_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	pagebuilder "github.com/goliatone/go-pagebuilder"
	"github.com/goliatone/go-pagebuilder/internal/document"
	"github.com/goliatone/go-pagebuilder/internal/registry"
)

func newModule(t *testing.T, saveEndpoint string) *pagebuilder.Module {
	t.Helper()
	cfg := pagebuilder.DefaultConfig()
	cfg.Storage.MediaDir = t.TempDir()
	if saveEndpoint != "" {
		cfg.SaveEndpoint = saveEndpoint
	}
	module, err := pagebuilder.New(cfg)
	if err != nil {
		t.Fatalf("new module: %v", err)
	}
	return module
}

func TestEditorComposeRenderSave(t *testing.T) {
	var savedPayload string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("read body: %v", err)
		}
		savedPayload = string(body)
		fmt.Fprint(w, `{"success": true, "redirect": "/pages/demo/", "message": "Page saved"}`)
	}))
	defer server.Close()

	module := newModule(t, server.URL)
	editor := module.OpenEditor()
	doc := editor.Document()

	hero, err := doc.CreateInstance(registry.TypeHero)
	if err != nil {
		t.Fatalf("create hero: %v", err)
	}
	if err := doc.Insert(document.Root(), hero, 0); err != nil {
		t.Fatalf("insert hero: %v", err)
	}

	sess := editor.Session()
	if err := sess.Select(hero.ID); err != nil {
		t.Fatalf("select: %v", err)
	}
	if err := sess.SetField("title", "Composed Page"); err != nil {
		t.Fatalf("set field: %v", err)
	}

	html, err := editor.Render()
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(string(html), "Composed Page") {
		t.Fatalf("expected edited title in render:\n%s", html)
	}

	result, err := editor.Save(context.Background())
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if result.Redirect != "/pages/demo/" {
		t.Fatalf("unexpected save result %+v", result)
	}
	if !strings.Contains(savedPayload, "Composed Page") {
		t.Fatalf("expected document in save payload, got %q", savedPayload)
	}
}

func TestOpenEditorWithStoredPayload(t *testing.T) {
	module := newModule(t, "")

	source := module.OpenEditor()
	text, err := source.Document().CreateInstance(registry.TypeText)
	if err != nil {
		t.Fatalf("create text: %v", err)
	}
	if err := source.Document().Insert(document.Root(), text, 0); err != nil {
		t.Fatalf("insert text: %v", err)
	}

	reopened, err := module.OpenEditorWith(source.Document().ToSerializable())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if reopened.Document().Len() != 1 {
		t.Fatalf("expected one block got %d", reopened.Document().Len())
	}

	if _, err := module.OpenEditorWith(map[string]any{"content": "not a list"}); err == nil {
		t.Fatal("expected malformed payload rejection")
	}
}

func TestModuleMountServesAPI(t *testing.T) {
	module := newModule(t, "")
	mux := http.NewServeMux()
	module.Mount(mux)
	server := httptest.NewServer(mux)
	defer server.Close()

	res, err := http.Get(server.URL + "/api/pages")
	if err != nil {
		t.Fatalf("list pages: %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 got %d", res.StatusCode)
	}
}
