// Package gateway moves page documents between the editor and the backend:
// serialized saves over HTTP and loads from a stored payload.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"

	"github.com/goliatone/go-pagebuilder/internal/document"
	"github.com/goliatone/go-pagebuilder/internal/logging"
	"github.com/goliatone/go-pagebuilder/internal/registry"
	"github.com/goliatone/go-pagebuilder/pkg/interfaces"
)

var (
	ErrSaveInFlight   = errors.New("gateway: save already in progress")
	ErrNetwork        = errors.New("gateway: save endpoint unreachable")
	ErrServerRejected = errors.New("gateway: save rejected")
)

// RejectionError carries the backend's refusal message.
type RejectionError struct {
	StatusCode int
	Reason     string
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("gateway: save rejected (%d): %s", e.StatusCode, e.Reason)
}

func (e *RejectionError) Unwrap() error {
	return ErrServerRejected
}

// SaveResult is the backend's acknowledgement of a successful save.
type SaveResult struct {
	Redirect string
	Message  string
}

type saveResponse struct {
	Success  bool   `json:"success"`
	Redirect string `json:"redirect"`
	Message  string `json:"message"`
	Error    string `json:"error"`
}

// Gateway persists documents to a save endpoint and reconstructs them from
// stored payloads. Saves are single flight: a second save while one is in
// progress fails fast instead of queueing.
type Gateway struct {
	registry *registry.Registry
	endpoint string
	token    string
	client   *http.Client
	saving   atomic.Bool
	logger   interfaces.Logger
}

// Option customises the gateway.
type Option func(*Gateway)

// WithHTTPClient overrides the default http client.
func WithHTTPClient(client *http.Client) Option {
	return func(g *Gateway) {
		if client != nil {
			g.client = client
		}
	}
}

// WithLoggerProvider wires a logger for gateway diagnostics.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(g *Gateway) {
		g.logger = logging.GatewayLogger(provider)
	}
}

// New constructs a gateway for the save endpoint. The token is sent as the
// X-CSRFToken header on every save.
func New(reg *registry.Registry, endpoint, token string, opts ...Option) *Gateway {
	g := &Gateway{
		registry: reg,
		endpoint: endpoint,
		token:    token,
		client:   http.DefaultClient,
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Save serializes the document and posts it to the save endpoint. The
// payload is snapshotted before any network I/O, so edits made while the
// request is in flight never leak into it.
func (g *Gateway) Save(ctx context.Context, doc *document.Document) (*SaveResult, error) {
	if !g.saving.CompareAndSwap(false, true) {
		return nil, ErrSaveInFlight
	}
	defer g.saving.Store(false)

	snapshot, err := json.Marshal(doc.ToSerializable())
	if err != nil {
		return nil, fmt.Errorf("gateway: encode document: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(snapshot))
	if err != nil {
		return nil, fmt.Errorf("gateway: build save request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if g.token != "" {
		req.Header.Set("X-CSRFToken", g.token)
	}

	res, err := g.client.Do(req)
	if err != nil {
		g.logger.Error("save request failed", "endpoint", g.endpoint, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer res.Body.Close()

	// A non-2xx status is a rejection no matter what the body claims.
	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		reason := res.Status
		var decoded saveResponse
		if err := json.NewDecoder(res.Body).Decode(&decoded); err == nil && decoded.Error != "" {
			reason = decoded.Error
		}
		g.logger.Warn("save rejected", "status", res.StatusCode, "reason", reason)
		return nil, &RejectionError{StatusCode: res.StatusCode, Reason: reason}
	}

	var decoded saveResponse
	if err := json.NewDecoder(res.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("%w: undecodable response: %v", ErrNetwork, err)
	}
	if !decoded.Success {
		reason := decoded.Error
		if reason == "" {
			reason = res.Status
		}
		g.logger.Warn("save rejected", "status", res.StatusCode, "reason", reason)
		return nil, &RejectionError{StatusCode: res.StatusCode, Reason: reason}
	}

	g.logger.Info("document saved", "blocks", doc.Len(), "redirect", decoded.Redirect)
	return &SaveResult{Redirect: decoded.Redirect, Message: decoded.Message}, nil
}

// Load reconstructs a document from a stored JSON payload, validating it
// against the catalog before any node is admitted.
func (g *Gateway) Load(r io.Reader, opts ...document.Option) (*document.Document, error) {
	var payload map[string]any
	if err := json.NewDecoder(r).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", document.ErrMalformedDocument, err)
	}
	return document.FromSerializable(g.registry, payload, opts...)
}
