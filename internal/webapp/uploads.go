package webapp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/goliatone/go-formwizard/pkg/upload"
)

// DefaultMaxUploadBytes caps a single upload accepted by DiskUploads.
const DefaultMaxUploadBytes = 10 << 20

// DiskUploads stores uploaded files below a root directory. It serves the
// upload and delete HTTP contract and also satisfies upload.Client, so an
// in-process wizard can skip the network round trip.
type DiskUploads struct {
	root     string
	baseURL  string
	maxBytes int64
	logger   *slog.Logger
}

var _ upload.Client = (*DiskUploads)(nil)

// NewDiskUploads creates root when missing. baseURL prefixes the public URL
// of stored files, e.g. "/files".
func NewDiskUploads(root, baseURL string, logger *slog.Logger) (*DiskUploads, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("webapp: create upload dir: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DiskUploads{
		root:     root,
		baseURL:  strings.TrimRight(baseURL, "/"),
		maxBytes: DefaultMaxUploadBytes,
		logger:   logger,
	}, nil
}

// Root returns the storage directory.
func (d *DiskUploads) Root() string { return d.root }

// Upload stores f as <path>/<uuid>-<name>.
func (d *DiskUploads) Upload(_ context.Context, f upload.File) (upload.Result, error) {
	if f.Body == nil {
		return upload.Result{}, errors.New("webapp: file body is nil")
	}
	name := cleanName(f.Name)
	if name == "" {
		return upload.Result{Success: false, Error: "File name is required"}, &upload.RejectedError{Message: "File name is required"}
	}
	dir, err := cleanDir(f.Path)
	if err != nil {
		return upload.Result{Success: false, Error: "Invalid upload path"}, &upload.RejectedError{Message: "Invalid upload path"}
	}

	key := path.Join(dir, uuid.NewString()+"-"+name)
	target := filepath.Join(d.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return upload.Result{}, fmt.Errorf("webapp: create upload dir: %w", err)
	}
	out, err := os.Create(target)
	if err != nil {
		return upload.Result{}, fmt.Errorf("webapp: create upload: %w", err)
	}
	n, err := io.Copy(out, io.LimitReader(f.Body, d.maxBytes+1))
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err == nil && n > d.maxBytes {
		err = &upload.RejectedError{Message: "File too large"}
	}
	if err != nil {
		_ = os.Remove(target)
		var rejected *upload.RejectedError
		if errors.As(err, &rejected) {
			return upload.Result{Success: false, Error: rejected.Message}, err
		}
		return upload.Result{}, fmt.Errorf("webapp: write upload: %w", err)
	}

	d.logger.Info("upload_stored", "key", key, "size", n)
	return upload.Result{Success: true, URL: d.baseURL + "/" + key, Key: key}, nil
}

// Delete removes the stored file for key. Unknown keys are not an error.
func (d *DiskUploads) Delete(_ context.Context, key string) error {
	clean, err := cleanDir(key)
	if err != nil || clean == "" {
		return fmt.Errorf("webapp: invalid key %q", key)
	}
	err = os.Remove(filepath.Join(d.root, filepath.FromSlash(clean)))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("webapp: delete upload: %w", err)
	}
	d.logger.Info("upload_deleted", "key", clean)
	return nil
}

// ServeHTTP implements the endpoint side: POST multipart "file" with an
// optional "path", DELETE ?key=.
func (d *DiskUploads) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		d.handleUpload(w, r)
	case http.MethodDelete:
		if err := d.Delete(r.Context(), r.URL.Query().Get("key")); err != nil {
			writeJSON(w, http.StatusBadRequest, upload.Result{Success: false, Error: err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, upload.Result{Success: true})
	default:
		w.Header().Set("Allow", "POST, DELETE")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (d *DiskUploads) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, d.maxBytes+(1<<20))
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeJSON(w, http.StatusBadRequest, upload.Result{Success: false, Error: "Invalid multipart payload"})
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, upload.Result{Success: false, Error: "File field is required"})
		return
	}
	defer file.Close()

	res, err := d.Upload(r.Context(), upload.File{
		Name: header.Filename,
		Type: header.Header.Get("Content-Type"),
		Size: header.Size,
		Body: file,
		Path: r.FormValue("path"),
	})
	if err != nil {
		var rejected *upload.RejectedError
		if errors.As(err, &rejected) {
			writeJSON(w, http.StatusOK, res)
			return
		}
		d.logger.Error("upload_failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, upload.Result{Success: false, Error: upload.MsgUploadFailed})
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func cleanName(name string) string {
	name = filepath.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if name == "." || name == "/" || name == ".." {
		return ""
	}
	return name
}

// cleanDir normalises a slash separated relative path and rejects escapes.
func cleanDir(raw string) (string, error) {
	raw = strings.Trim(strings.TrimSpace(raw), "/")
	if raw == "" {
		return "", nil
	}
	clean := path.Clean(raw)
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("path %q escapes the upload root", raw)
	}
	return clean, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
