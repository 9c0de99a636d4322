// Package media stores photo and video attachments of progress entries on
// the local filesystem.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// PathPrefix is the prefix of every stored media_path value.
const PathPrefix = "media/"

// DefaultMaxBytes caps a single upload.
const DefaultMaxBytes int64 = 50 << 20

var (
	ErrUnsupportedType = errors.New("unsupported media type")
	ErrTooLarge        = errors.New("media file too large")
	ErrInvalidPath     = errors.New("invalid media path")
)

// AllowedExtensions lists accepted upload types, lower-case without the dot.
var AllowedExtensions = []string{"jpg", "jpeg", "png", "mp4", "mov"}

var contentTypes = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"mp4":  "video/mp4",
	"mov":  "video/quicktime",
}

// LocalStorage writes attachments as <uuid>.<ext> under one directory.
type LocalStorage struct {
	dir      string
	maxBytes int64
}

// NewLocalStorage creates dir if needed. maxBytes <= 0 means DefaultMaxBytes.
func NewLocalStorage(dir string, maxBytes int64) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create media dir: %w", err)
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &LocalStorage{dir: dir, maxBytes: maxBytes}, nil
}

// Dir returns the directory files are written to.
func (s *LocalStorage) Dir() string { return s.dir }

// Extension returns the lower-cased extension of name if it is allowed.
func Extension(name string) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	if _, ok := contentTypes[ext]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, filepath.Ext(name))
	}
	return ext, nil
}

// ContentType returns the MIME type served for a stored media path.
func ContentType(path string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if ct, ok := contentTypes[ext]; ok {
		return ct
	}
	return "application/octet-stream"
}

// Save copies r into a new file and returns its media path ("media/<uuid>.<ext>").
// The bytes land in a temp file first and are renamed into place only after a
// successful sync, so a failed save never leaves a partial file behind.
func (s *LocalStorage) Save(ctx context.Context, originalName string, r io.Reader) (string, error) {
	ext, err := Extension(originalName)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	n, err := io.Copy(tmp, io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("failed to write media: %w", err)
	}
	if n > s.maxBytes {
		return "", fmt.Errorf("%w: limit is %d bytes", ErrTooLarge, s.maxBytes)
	}
	if err := tmp.Sync(); err != nil {
		return "", fmt.Errorf("failed to sync media: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close media: %w", err)
	}

	name := uuid.NewString() + "." + ext
	if err := os.Rename(tmpName, filepath.Join(s.dir, name)); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to store media: %w", err)
	}
	committed = true
	return PathPrefix + name, nil
}

// Open returns a reader for a path previously returned by Save.
func (s *LocalStorage) Open(path string) (*os.File, error) {
	name, err := fileName(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(filepath.Join(s.dir, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %q", os.ErrNotExist, path)
		}
		return nil, fmt.Errorf("failed to open media: %w", err)
	}
	return f, nil
}

// fileName validates a media path and returns its bare file name. Anything
// that could resolve outside the media directory is rejected.
func fileName(path string) (string, error) {
	name := strings.TrimPrefix(path, PathPrefix)
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, path)
	}
	if _, err := Extension(name); err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, path)
	}
	return name, nil
}

// Remove deletes a stored file. Missing files are not an error.
func (s *LocalStorage) Remove(path string) error {
	name, err := fileName(path)
	if err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove media: %w", err)
	}
	return nil
}
