// Package upload implements the file upload and delete HTTP contract used by
// file fields.
package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/goliatone/go-formwizard/pkg/field"
)

// MsgUploadFailed is the field error shown when no server message exists.
const MsgUploadFailed = "Upload failed"

// ErrNoEndpoint is returned when a client method is called without a URL.
var ErrNoEndpoint = errors.New("upload: endpoint not configured")

// ErrMissingURL is returned when the endpoint reports success without a url.
var ErrMissingURL = errors.New("upload: response missing url")

// RejectedError is returned when the endpoint answers success=false.
type RejectedError struct {
	Message string
}

func (e *RejectedError) Error() string {
	if e.Message == "" {
		return "upload: rejected"
	}
	return "upload: rejected: " + e.Message
}

// Message returns the user-facing text for an upload error.
func Message(err error) string {
	var rejected *RejectedError
	if errors.As(err, &rejected) && rejected.Message != "" {
		return rejected.Message
	}
	return MsgUploadFailed
}

// File is a picked file waiting to be uploaded.
type File struct {
	Name string
	Type string
	Size int64
	Body io.Reader
	// Path is the optional destination folder sent alongside the file.
	Path string
}

// Result is the decoded upload response.
type Result struct {
	Success bool   `json:"success"`
	URL     string `json:"url,omitempty"`
	Key     string `json:"key,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Client uploads and deletes files.
type Client interface {
	Upload(ctx context.Context, f File) (Result, error)
	Delete(ctx context.Context, key string) error
}

// HTTPClient talks to the upload and delete endpoints.
type HTTPClient struct {
	uploadURL string
	deleteURL string
	http      *http.Client
}

// Option configures HTTPClient.
type Option func(*HTTPClient)

// WithHTTPClient overrides http.DefaultClient.
func WithHTTPClient(client *http.Client) Option {
	return func(c *HTTPClient) {
		if client != nil {
			c.http = client
		}
	}
}

// WithDeleteURL sets the delete endpoint; it defaults to the upload URL.
func WithDeleteURL(raw string) Option {
	return func(c *HTTPClient) {
		if raw != "" {
			c.deleteURL = raw
		}
	}
}

// NewHTTPClient returns a client posting to uploadURL.
func NewHTTPClient(uploadURL string, opts ...Option) *HTTPClient {
	c := &HTTPClient{uploadURL: uploadURL, deleteURL: uploadURL, http: http.DefaultClient}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Upload posts f as multipart form data with fields "file" and, when set,
// "path". A response with success=false becomes a *RejectedError carrying
// the server message; success without a url is ErrMissingURL.
func (c *HTTPClient) Upload(ctx context.Context, f File) (Result, error) {
	if c.uploadURL == "" {
		return Result{}, ErrNoEndpoint
	}
	if f.Body == nil {
		return Result{}, errors.New("upload: file body is nil")
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", f.Name)
	if err != nil {
		return Result{}, fmt.Errorf("upload: encode: %w", err)
	}
	if _, err := io.Copy(part, f.Body); err != nil {
		return Result{}, fmt.Errorf("upload: encode: %w", err)
	}
	if f.Path != "" {
		if err := mw.WriteField("path", f.Path); err != nil {
			return Result{}, fmt.Errorf("upload: encode: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return Result{}, fmt.Errorf("upload: encode: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.uploadURL, &body)
	if err != nil {
		return Result{}, fmt.Errorf("upload: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("upload: %w", err)
	}
	defer resp.Body.Close()

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return Result{}, fmt.Errorf("upload: decode response (%s): %w", resp.Status, err)
	}
	if !result.Success {
		return result, &RejectedError{Message: result.Error}
	}
	if result.URL == "" {
		return Result{}, ErrMissingURL
	}
	return result, nil
}

// Delete issues DELETE <deleteURL>?key=<key>. The response body is ignored.
func (c *HTTPClient) Delete(ctx context.Context, key string) error {
	if c.deleteURL == "" {
		return ErrNoEndpoint
	}
	target, err := url.Parse(c.deleteURL)
	if err != nil {
		return fmt.Errorf("upload: delete url: %w", err)
	}
	query := target.Query()
	query.Set("key", key)
	target.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, target.String(), nil)
	if err != nil {
		return fmt.Errorf("upload: delete: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("upload: delete: %w", err)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.Body.Close()
}

// DeriveKey returns ref.Key or, when absent, the last two path segments of
// ref.URL joined by "/".
func DeriveKey(ref field.FileRef) string {
	if ref.Key != "" {
		return ref.Key
	}
	path := ref.URL
	if u, err := url.Parse(ref.URL); err == nil && u.Path != "" {
		path = u.Path
	}
	segments := strings.Split(strings.Trim(path, "/"), "/")
	if len(segments) > 2 {
		segments = segments[len(segments)-2:]
	}
	return strings.Join(segments, "/")
}

// Ref builds the stored value for a successful upload of f.
func Ref(f File, res Result) field.FileRef {
	return field.FileRef{URL: res.URL, Name: f.Name, Key: res.Key, Size: f.Size, Type: f.Type}
}
