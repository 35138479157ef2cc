package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

// ErrUploadRejected marks a well-formed refusal from the upload endpoint,
// as opposed to transport failures.
var ErrUploadRejected = errors.New("session: upload rejected")

// HTTPUploader posts files to the editor's upload endpoint as multipart
// form data and expects a JSON body of either {"success": true, "url": ...}
// or {"success": false, "error": ...}.
type HTTPUploader struct {
	endpoint string
	token    string
	client   *http.Client
}

// HTTPUploaderOption customises the uploader.
type HTTPUploaderOption func(*HTTPUploader)

// WithHTTPClient overrides the default http client.
func WithHTTPClient(client *http.Client) HTTPUploaderOption {
	return func(u *HTTPUploader) {
		if client != nil {
			u.client = client
		}
	}
}

// NewHTTPUploader constructs an uploader for the endpoint. The token is sent
// as the X-CSRFToken header on every request.
func NewHTTPUploader(endpoint, token string, opts ...HTTPUploaderOption) *HTTPUploader {
	u := &HTTPUploader{
		endpoint: endpoint,
		token:    token,
		client:   http.DefaultClient,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

type uploadResponse struct {
	Success bool   `json:"success"`
	URL     string `json:"url"`
	Error   string `json:"error"`
}

// Upload sends the file and returns the public URL the server assigned.
func (u *HTTPUploader) Upload(ctx context.Context, filename string, body io.Reader) (string, error) {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("session: build upload form: %w", err)
	}
	if _, err := io.Copy(part, body); err != nil {
		return "", fmt.Errorf("session: read upload body: %w", err)
	}
	if err := form.Close(); err != nil {
		return "", fmt.Errorf("session: finalize upload form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.endpoint, &buf)
	if err != nil {
		return "", fmt.Errorf("session: build upload request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	if u.token != "" {
		req.Header.Set("X-CSRFToken", u.token)
	}

	res, err := u.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("session: upload request: %w", err)
	}
	defer res.Body.Close()

	var decoded uploadResponse
	if err := json.NewDecoder(res.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("session: decode upload response: %w", err)
	}
	if !decoded.Success {
		message := decoded.Error
		if message == "" {
			message = res.Status
		}
		return "", fmt.Errorf("%w: %s", ErrUploadRejected, message)
	}
	if decoded.URL == "" {
		return "", fmt.Errorf("%w: response carried no url", ErrUploadRejected)
	}
	return decoded.URL, nil
}
