package session_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-pagebuilder/internal/document"
	"github.com/goliatone/go-pagebuilder/internal/registry"
	"github.com/goliatone/go-pagebuilder/internal/session"
)

// fakeUploader resolves uploads on demand so tests control completion order.
type fakeUploader struct {
	mu      sync.Mutex
	pending map[string]chan result
}

type result struct {
	url string
	err error
}

func (f *fakeUploader) Upload(ctx context.Context, filename string, body io.Reader) (string, error) {
	gate := make(chan result, 1)
	f.mu.Lock()
	if f.pending == nil {
		f.pending = make(map[string]chan result)
	}
	f.pending[filename] = gate
	f.mu.Unlock()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-gate:
		return res.url, res.err
	}
}

func (f *fakeUploader) gateFor(t *testing.T, filename string) chan result {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		f.mu.Lock()
		gate, ok := f.pending[filename]
		f.mu.Unlock()
		if ok {
			return gate
		}
		if time.Now().After(deadline) {
			t.Fatalf("upload %s never started", filename)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func (f *fakeUploader) resolve(t *testing.T, filename string, res result) {
	t.Helper()
	f.gateFor(t, filename) <- res
}

func waitResult(t *testing.T, results <-chan session.UploadResult) session.UploadResult {
	t.Helper()
	select {
	case res := <-results:
		return res
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for upload result")
		return session.UploadResult{}
	}
}

func newImageSession(t *testing.T, uploader session.Uploader) (*document.Document, *session.Session, *document.BlockInstance) {
	t.Helper()
	doc := newDocument(t)
	image := insertBlock(t, doc, registry.TypeImage)
	sess := session.New(doc, session.WithUploader(uploader))
	if err := sess.Select(image.ID); err != nil {
		t.Fatalf("select: %v", err)
	}
	return doc, sess, image
}

func TestStartUploadRequiresSelection(t *testing.T) {
	sess := session.New(newDocument(t), session.WithUploader(&fakeUploader{}))
	_, err := sess.StartUpload(context.Background(), "src", "a.png", strings.NewReader("x"))
	if !errors.Is(err, session.ErrNoSelection) {
		t.Fatalf("expected ErrNoSelection got %v", err)
	}
}

func TestStartUploadRequiresUploader(t *testing.T) {
	doc := newDocument(t)
	image := insertBlock(t, doc, registry.TypeImage)
	sess := session.New(doc)
	if err := sess.Select(image.ID); err != nil {
		t.Fatalf("select: %v", err)
	}

	_, err := sess.StartUpload(context.Background(), "src", "a.png", strings.NewReader("x"))
	if !errors.Is(err, session.ErrUploaderRequired) {
		t.Fatalf("expected ErrUploaderRequired got %v", err)
	}
}

func TestStartUploadRejectsNonUploadField(t *testing.T) {
	_, sess, _ := newImageSession(t, &fakeUploader{})

	_, err := sess.StartUpload(context.Background(), "alt", "a.png", strings.NewReader("x"))
	if !errors.Is(err, session.ErrNotUploadField) {
		t.Fatalf("expected ErrNotUploadField got %v", err)
	}
	_, err = sess.StartUpload(context.Background(), "bogus", "a.png", strings.NewReader("x"))
	if !errors.Is(err, session.ErrNotUploadField) {
		t.Fatalf("expected ErrNotUploadField for unknown field got %v", err)
	}
}

func TestUploadSuccessWritesProperty(t *testing.T) {
	uploader := &fakeUploader{}
	doc, sess, image := newImageSession(t, uploader)

	results, err := sess.StartUpload(context.Background(), "src", "photo.png", strings.NewReader("bytes"))
	if err != nil {
		t.Fatalf("start upload: %v", err)
	}
	if got := sess.UploadStatusFor(image.ID, "src"); got != session.UploadInProgress {
		t.Fatalf("expected uploading status got %s", got)
	}

	uploader.resolve(t, "photo.png", result{url: "/media/photo.png"})
	res := waitResult(t, results)
	if res.Status != session.UploadSucceeded || res.URL != "/media/photo.png" {
		t.Fatalf("unexpected result %+v", res)
	}

	got, _ := doc.Get(image.ID)
	if got.Props["src"] != "/media/photo.png" {
		t.Fatalf("expected url written to block got %v", got.Props["src"])
	}
	if status := sess.UploadStatusFor(image.ID, "src"); status != session.UploadSucceeded {
		t.Fatalf("expected succeeded status got %s", status)
	}
}

func TestUploadFailureLeavesPropertyAlone(t *testing.T) {
	uploader := &fakeUploader{}
	doc, sess, image := newImageSession(t, uploader)

	results, err := sess.StartUpload(context.Background(), "src", "photo.png", strings.NewReader("bytes"))
	if err != nil {
		t.Fatalf("start upload: %v", err)
	}
	uploader.resolve(t, "photo.png", result{err: fmt.Errorf("disk full")})

	res := waitResult(t, results)
	if res.Status != session.UploadFailed || !strings.Contains(res.Message, "disk full") {
		t.Fatalf("unexpected result %+v", res)
	}
	got, _ := doc.Get(image.ID)
	if got.Props["src"] != "" {
		t.Fatalf("failed upload must not write, got %v", got.Props["src"])
	}
}

func TestSecondUploadSupersedesFirst(t *testing.T) {
	uploader := &fakeUploader{}
	doc, sess, image := newImageSession(t, uploader)

	first, err := sess.StartUpload(context.Background(), "src", "a.png", strings.NewReader("a"))
	if err != nil {
		t.Fatalf("start first upload: %v", err)
	}
	uploader.gateFor(t, "a.png")

	second, err := sess.StartUpload(context.Background(), "src", "b.png", strings.NewReader("b"))
	if err != nil {
		t.Fatalf("start second upload: %v", err)
	}

	// The first transfer is still pending when the second one finishes.
	uploader.resolve(t, "b.png", result{url: "/media/b.png"})
	if res := waitResult(t, second); res.Status != session.UploadSucceeded || res.URL != "/media/b.png" {
		t.Fatalf("unexpected second result %+v", res)
	}
	if res := waitResult(t, first); res.Status != session.UploadSuperseded {
		t.Fatalf("expected first upload superseded got %+v", res)
	}

	got, _ := doc.Get(image.ID)
	if got.Props["src"] != "/media/b.png" {
		t.Fatalf("expected winner url kept got %v", got.Props["src"])
	}
}

func TestUploadToRemovedBlockFails(t *testing.T) {
	uploader := &fakeUploader{}
	doc, sess, image := newImageSession(t, uploader)

	results, err := sess.StartUpload(context.Background(), "src", "a.png", strings.NewReader("a"))
	if err != nil {
		t.Fatalf("start upload: %v", err)
	}
	uploader.gateFor(t, "a.png")

	if err := doc.Remove(image.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	uploader.resolve(t, "a.png", result{url: "/media/a.png"})

	res := waitResult(t, results)
	if res.Status != session.UploadFailed {
		t.Fatalf("expected failed result for removed block got %+v", res)
	}
	// The reported slot state must agree with the delivered result.
	if status := sess.UploadStatusFor(image.ID, "src"); status != session.UploadFailed {
		t.Fatalf("expected failed status got %s", status)
	}
}

func TestStaleResultAfterReselectionStillLands(t *testing.T) {
	uploader := &fakeUploader{}
	doc, sess, image := newImageSession(t, uploader)
	hero := insertBlock(t, doc, registry.TypeHero)

	results, err := sess.StartUpload(context.Background(), "src", "a.png", strings.NewReader("a"))
	if err != nil {
		t.Fatalf("start upload: %v", err)
	}
	// Selection moves on while the transfer is in flight.
	if err := sess.Select(hero.ID); err != nil {
		t.Fatalf("select hero: %v", err)
	}

	uploader.resolve(t, "a.png", result{url: "/media/a.png"})
	if res := waitResult(t, results); res.Status != session.UploadSucceeded {
		t.Fatalf("unexpected result %+v", res)
	}

	imageInst, _ := doc.Get(image.ID)
	if imageInst.Props["src"] != "/media/a.png" {
		t.Fatalf("expected url on the originally bound block got %v", imageInst.Props["src"])
	}
	heroInst, _ := doc.Get(hero.ID)
	if heroInst.Props["backgroundImage"] != "" {
		t.Fatalf("newly selected block must stay untouched, got %v", heroInst.Props["backgroundImage"])
	}
}

func TestHTTPUploaderSuccess(t *testing.T) {
	var gotToken, gotFilename string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("X-CSRFToken")
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("form file: %v", err)
			return
		}
		defer file.Close()
		gotFilename = header.Filename
		fmt.Fprint(w, `{"success": true, "url": "/media/uploads/final.png"}`)
	}))
	defer server.Close()

	uploader := session.NewHTTPUploader(server.URL, "csrf-token-1")
	url, err := uploader.Upload(context.Background(), "final.png", strings.NewReader("content"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if url != "/media/uploads/final.png" {
		t.Fatalf("unexpected url %q", url)
	}
	if gotToken != "csrf-token-1" {
		t.Fatalf("expected csrf header got %q", gotToken)
	}
	if gotFilename != "final.png" {
		t.Fatalf("expected filename forwarded got %q", gotFilename)
	}
}

func TestHTTPUploaderRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"success": false, "error": "file type not allowed"}`)
	}))
	defer server.Close()

	uploader := session.NewHTTPUploader(server.URL, "")
	_, err := uploader.Upload(context.Background(), "bad.exe", strings.NewReader("x"))
	if !errors.Is(err, session.ErrUploadRejected) {
		t.Fatalf("expected ErrUploadRejected got %v", err)
	}
	if !strings.Contains(err.Error(), "file type not allowed") {
		t.Fatalf("expected server message preserved got %v", err)
	}
}

func TestHTTPUploaderNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	uploader := session.NewHTTPUploader(server.URL, "")
	if _, err := uploader.Upload(context.Background(), "a.png", strings.NewReader("x")); err == nil {
		t.Fatal("expected transport error")
	}
}
