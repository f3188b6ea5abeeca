// Package storage keeps uploaded images on local disk. The rest of the
// system only ever sees filenames; enforcement of size and content type
// happens here at the boundary.
package storage

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

const (
	// MaxUploadBytes caps a single uploaded image.
	MaxUploadBytes = 8 * 1024 * 1024
)

var allowedContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

type UploadStore interface {
	// Save validates and writes the payload, returning the final filename.
	Save(filename string, payload []byte) (string, error)
	// Remove deletes a stored file; a missing file is not an error.
	Remove(filename string) error
	// Dir returns the directory served under /uploads/.
	Dir() string
}

type localStore struct {
	dir string
}

func NewLocalStore(dir string) (UploadStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload dir failed: %w", err)
	}
	return &localStore{dir: dir}, nil
}

func (s *localStore) Save(filename string, payload []byte) (string, error) {
	if len(payload) > MaxUploadBytes {
		return "", fmt.Errorf("upload of %d bytes exceeds limit", len(payload))
	}
	if !allowedContentTypes[http.DetectContentType(payload)] {
		return "", fmt.Errorf("unsupported content type")
	}

	safe := sanitizeFilename(filename)
	path := filepath.Join(s.dir, safe)
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return "", fmt.Errorf("writing upload failed: %w", err)
	}
	return safe, nil
}

func (s *localStore) Remove(filename string) error {
	path := filepath.Join(s.dir, filepath.Base(filename))
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *localStore) Dir() string {
	return s.dir
}

// sanitizeFilename strips path separators so a crafted name cannot escape
// the upload directory.
func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, string(os.PathSeparator), "_")
	if name == "" || name == "." {
		name = "upload"
	}
	return name
}

// ValidContentType reports whether the payload sniffs as an accepted image
// type. Exposed for the handlers to reject uploads before buffering to disk.
func ValidContentType(payload []byte) bool {
	return allowedContentTypes[http.DetectContentType(payload)]
}
